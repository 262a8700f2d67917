// Package engine defines the flat call surface of the native PDF engine
// and its handle types. The viewer talks only to the Engine interface;
// the pdfium-backed implementation lives behind the "pdfium" build tag
// and enginetest provides a deterministic in-memory fake.
//
// Handles are opaque references to native-side resources. They are
// never returned to callers of the viewer — only copied value types
// cross that boundary — and every acquire has a paired release.
package engine

import "errors"

// ErrUnavailable is returned by New when the binary was built without
// native engine support.
var ErrUnavailable = errors.New("engine: native pdfium support not compiled in (build with -tags pdfium)")

type (
	DocumentHandle   uintptr
	PageHandle       uintptr
	BitmapHandle     uintptr
	TextPageHandle   uintptr
	SearchHandle     uintptr
	AnnotationHandle uintptr
	PageObjectHandle uintptr
	FontHandle       uintptr
	SaveBufferHandle uintptr
	BookmarkHandle   uintptr
)

// RenderStatus mirrors the native progressive-render status codes.
type RenderStatus int

const (
	RenderReady RenderStatus = iota
	RenderToBeContinued
	RenderDone
	RenderFailed
)

// AnnotationSubtype mirrors the native annotation subtype codes.
type AnnotationSubtype int

const (
	AnnotUnknown   AnnotationSubtype = 0
	AnnotText      AnnotationSubtype = 1
	AnnotLink      AnnotationSubtype = 2
	AnnotFreeText  AnnotationSubtype = 3
	AnnotSquare    AnnotationSubtype = 5
	AnnotCircle    AnnotationSubtype = 6
	AnnotHighlight AnnotationSubtype = 9
	AnnotUnderline AnnotationSubtype = 10
	AnnotStrikeout AnnotationSubtype = 12
	AnnotStamp     AnnotationSubtype = 13
	AnnotInk       AnnotationSubtype = 15
	AnnotWidget    AnnotationSubtype = 17
)

// SaveFlags select the native serialization mode.
type SaveFlags uint32

const (
	SaveIncremental    SaveFlags = 1
	SaveNoIncremental  SaveFlags = 2
	SaveRemoveSecurity SaveFlags = 3
)

// Native error codes reported by LastError.
const (
	ErrCodeSuccess  uint32 = 0
	ErrCodeUnknown  uint32 = 1
	ErrCodeFile     uint32 = 2
	ErrCodeFormat   uint32 = 3
	ErrCodePassword uint32 = 4
	ErrCodeSecurity uint32 = 5
	ErrCodePage     uint32 = 6
)

// Render flags.
const (
	RenderFlagAnnotations = 0x01
	RenderFlagLCDText     = 0x02
)

// PointF is a page-space point in the native float layout.
type PointF struct {
	X, Y float32
}

// RectF is a page-space rectangle in the native float layout
// (Bottom < Top, origin bottom-left).
type RectF struct {
	Left, Top, Right, Bottom float32
}

// QuadPointsF is the native attachment-point quad: corners 1..4 are
// top-left, top-right, bottom-left, bottom-right in page space.
type QuadPointsF struct {
	X1, Y1, X2, Y2, X3, Y3, X4, Y4 float32
}

// Color is an RGBA color with 8-bit channels.
type Color struct {
	R, G, B, A uint8
}

// Engine is the flat native call table. All multi-output calls follow
// the native convention of "pass buffer and capacity, get required
// size" internally; the Go surface hides that behind slices/strings.
// None of these methods are safe for concurrent use — the engine is
// not reentrant, and the viewer serializes access.
type Engine interface {
	// Library lifecycle.
	Init() error
	Destroy()
	LastError() uint32

	// Document. LoadDocument copies data into an engine-owned backing
	// buffer that lives exactly as long as the returned handle;
	// CloseDocument releases both.
	LoadDocument(data []byte, password string) (DocumentHandle, error)
	CloseDocument(DocumentHandle)
	PageCount(DocumentHandle) int

	// Page.
	LoadPage(DocumentHandle, int) (PageHandle, error)
	ClosePage(PageHandle)
	PageWidth(PageHandle) float64
	PageHeight(PageHandle) float64

	// Coordinate mapping through the engine's own matrix computation.
	PageToDevice(p PageHandle, startX, startY, sizeX, sizeY, rotate int, pageX, pageY float64) (deviceX, deviceY int)
	DeviceToPage(p PageHandle, startX, startY, sizeX, sizeY, rotate int, deviceX, deviceY int) (pageX, pageY float64)

	// Bitmap. BitmapBuffer returns a view of the native pixel memory
	// (BGRA), valid until DestroyBitmap.
	CreateBitmap(width, height int, alpha bool) (BitmapHandle, error)
	DestroyBitmap(BitmapHandle)
	FillBitmapRect(b BitmapHandle, left, top, width, height int, argb uint32)
	BitmapStride(BitmapHandle) int
	BitmapBuffer(BitmapHandle) []byte

	// Rasterization: one blocking call, or a resumable sequence of
	// Start/Continue/Close. The cancel flag is read by the native
	// pause callback between bands.
	RenderPage(b BitmapHandle, p PageHandle, startX, startY, sizeX, sizeY, rotate, flags int)
	StartProgressiveRender(b BitmapHandle, p PageHandle, startX, startY, sizeX, sizeY, rotate, flags int) RenderStatus
	ContinueRender(p PageHandle) RenderStatus
	CloseRender(p PageHandle)
	SetRenderCancelFlag(bool)

	// Text page.
	LoadTextPage(PageHandle) (TextPageHandle, error)
	CloseTextPage(TextPageHandle)
	CountChars(TextPageHandle) int
	CountRects(tp TextPageHandle, start, count int) int
	Rect(tp TextPageHandle, index int) (RectF, bool)
	BoundedText(tp TextPageHandle, left, top, right, bottom float64) string
	CharIndexAtPos(tp TextPageHandle, x, y, xTolerance, yTolerance float64) int
	FontSize(tp TextPageHandle, charIndex int) float64
	FontInfo(tp TextPageHandle, charIndex int) (name string, flags int, ok bool)

	// Search cursor.
	FindStart(tp TextPageHandle, text string, flags uint32, startIndex int) (SearchHandle, error)
	FindNext(SearchHandle) bool
	ResultIndex(SearchHandle) int
	ResultCount(SearchHandle) int
	FindClose(SearchHandle)

	// Annotations.
	AnnotationCount(PageHandle) int
	OpenAnnotation(p PageHandle, index int) (AnnotationHandle, error)
	CloseAnnotation(AnnotationHandle)
	CreateAnnotation(p PageHandle, subtype AnnotationSubtype) (AnnotationHandle, error)
	AnnotationSubtype(AnnotationHandle) AnnotationSubtype
	AnnotationColor(AnnotationHandle) (Color, bool)
	SetAnnotationColor(AnnotationHandle, Color) bool
	AnnotationRect(AnnotationHandle) (RectF, bool)
	SetAnnotationRect(AnnotationHandle, RectF) bool
	AnnotationBorder(AnnotationHandle) (horizontalRadius, verticalRadius, width float32, ok bool)
	SetAnnotationBorder(a AnnotationHandle, horizontalRadius, verticalRadius, width float32) bool

	// Ink lists. InkListPath called with a nil buffer reports the
	// required point count, so callers query then allocate.
	InkListCount(AnnotationHandle) int
	InkListPath(a AnnotationHandle, pathIndex int, buf []PointF) int
	AddInkStroke(a AnnotationHandle, points []PointF) (int, error)

	// Attachment points (highlight quads).
	AttachmentPointCount(AnnotationHandle) int
	AttachmentPoints(a AnnotationHandle, quadIndex int) (QuadPointsF, bool)
	AppendAttachmentPoints(a AnnotationHandle, quad QuadPointsF) bool

	// Link resolution. URI comes from the annotation's action; the
	// destination page from the action's destination or the link's own.
	LinkURI(doc DocumentHandle, a AnnotationHandle) (string, bool)
	LinkDestPage(doc DocumentHandle, a AnnotationHandle) (int, bool)
	SetLinkURI(a AnnotationHandle, uri string) bool

	// Page content editing (flattened text).
	LoadStandardFont(doc DocumentHandle, name string) (FontHandle, error)
	CloseFont(FontHandle)
	NewTextObject(doc DocumentHandle, font FontHandle, fontSize float32) (PageObjectHandle, error)
	SetTextObjectText(PageObjectHandle, string) bool
	SetPageObjectFillColor(PageObjectHandle, Color) bool
	TransformPageObject(o PageObjectHandle, a, b, c, d, e, f float64)
	InsertPageObject(PageHandle, PageObjectHandle)
	GenerateContent(PageHandle) bool

	// Serialization. The save buffer is native memory and must be
	// freed exactly once regardless of copy success.
	SaveToMemory(doc DocumentHandle, flags SaveFlags, version int) (SaveBufferHandle, int, error)
	SaveBufferBytes(b SaveBufferHandle, size int) []byte
	FreeSaveBuffer(SaveBufferHandle)

	// Outline and metadata.
	BookmarkFirstChild(doc DocumentHandle, bm BookmarkHandle) (BookmarkHandle, bool)
	BookmarkNextSibling(doc DocumentHandle, bm BookmarkHandle) (BookmarkHandle, bool)
	BookmarkTitle(bm BookmarkHandle) string
	BookmarkDestPage(doc DocumentHandle, bm BookmarkHandle) int
	MetaText(doc DocumentHandle, tag string) string
}
