//go:build pdfium && cgo

package engine

/*
#cgo LDFLAGS: -lpdfium
#include <stdlib.h>
#include <string.h>
#include "fpdfview.h"
#include "fpdf_annot.h"
#include "fpdf_doc.h"
#include "fpdf_edit.h"
#include "fpdf_progressive.h"
#include "fpdf_save.h"
#include "fpdf_text.h"

// Growable sink for FPDF_SaveAsCopy. The FPDF_FILEWRITE must be the
// first member so the callback can recover the wrapper.
typedef struct {
	FPDF_FILEWRITE fw;
	unsigned char  *data;
	size_t          size;
	size_t          cap;
} pv_mem_writer;

static int pv_mem_writer_block(FPDF_FILEWRITE *fw, const void *data, unsigned long size) {
	pv_mem_writer *w = (pv_mem_writer *)fw;
	if (w->size + size > w->cap) {
		size_t cap = w->cap ? w->cap * 2 : 4096;
		while (cap < w->size + size) {
			cap *= 2;
		}
		unsigned char *grown = (unsigned char *)realloc(w->data, cap);
		if (!grown) {
			return 0;
		}
		w->data = grown;
		w->cap  = cap;
	}
	memcpy(w->data + w->size, data, size);
	w->size += size;
	return 1;
}

static pv_mem_writer *pv_mem_writer_new(void) {
	pv_mem_writer *w = (pv_mem_writer *)calloc(1, sizeof(pv_mem_writer));
	if (w) {
		w->fw.version    = 1;
		w->fw.WriteBlock = pv_mem_writer_block;
	}
	return w;
}

static void pv_mem_writer_free(pv_mem_writer *w) {
	if (w) {
		free(w->data);
		free(w);
	}
}

// Pause hook for progressive rendering. The flag is flipped from Go via
// SetRenderCancelFlag; pdfium polls it between raster bands.
typedef struct {
	IFSDK_PAUSE pause;
	int        *flag;
} pv_pause;

static FPDF_BOOL pv_pause_need(IFSDK_PAUSE *p) {
	return *((pv_pause *)p)->flag;
}

static void pv_pause_init(pv_pause *p, int *flag) {
	p->pause.version       = 1;
	p->pause.NeedToPauseNow = pv_pause_need;
	p->flag                = flag;
}
*/
import "C"

import (
	"errors"
	"unsafe"
)

// pdfium is the real engine. It is not safe for concurrent use; the
// viewer serializes every call. The pause struct and cancel flag live
// in C memory: pdfium keeps a pointer to them across progressive
// passes, which Go-managed memory must not be exposed to.
type pdfium struct {
	cancel *C.int
	pause  *C.pv_pause
	// Document data buffers are pinned in C memory for the lifetime of
	// the document handle (pdfium reads from them lazily).
	docData map[DocumentHandle]unsafe.Pointer
}

// New returns the pdfium-backed engine.
func New() (Engine, error) {
	e := &pdfium{
		cancel:  (*C.int)(C.calloc(1, C.sizeof_int)),
		pause:   (*C.pv_pause)(C.calloc(1, C.sizeof_pv_pause)),
		docData: make(map[DocumentHandle]unsafe.Pointer),
	}
	if e.cancel == nil || e.pause == nil {
		return nil, errors.New("engine: pause state allocation failed")
	}
	C.pv_pause_init(e.pause, e.cancel)
	return e, nil
}

func (e *pdfium) Init() error {
	var cfg C.FPDF_LIBRARY_CONFIG
	cfg.version = 2
	C.FPDF_InitLibraryWithConfig(&cfg)
	return nil
}

func (e *pdfium) Destroy() {
	C.FPDF_DestroyLibrary()
}

func (e *pdfium) LastError() uint32 {
	return uint32(C.FPDF_GetLastError())
}

func (e *pdfium) LoadDocument(data []byte, password string) (DocumentHandle, error) {
	if len(data) == 0 {
		return 0, errors.New("engine: empty document data")
	}
	buf := C.CBytes(data)
	var cpw *C.char
	if password != "" {
		cpw = C.CString(password)
		defer C.free(unsafe.Pointer(cpw))
	}
	doc := C.FPDF_LoadMemDocument(buf, C.int(len(data)), cpw)
	if doc == nil {
		C.free(buf)
		return 0, errors.New("engine: document load rejected")
	}
	h := DocumentHandle(uintptr(unsafe.Pointer(doc)))
	e.docData[h] = buf
	return h, nil
}

func (e *pdfium) CloseDocument(h DocumentHandle) {
	C.FPDF_CloseDocument(C.FPDF_DOCUMENT(unsafe.Pointer(h)))
	if buf, ok := e.docData[h]; ok {
		C.free(buf)
		delete(e.docData, h)
	}
}

func (e *pdfium) PageCount(h DocumentHandle) int {
	return int(C.FPDF_GetPageCount(C.FPDF_DOCUMENT(unsafe.Pointer(h))))
}

func (e *pdfium) LoadPage(h DocumentHandle, index int) (PageHandle, error) {
	p := C.FPDF_LoadPage(C.FPDF_DOCUMENT(unsafe.Pointer(h)), C.int(index))
	if p == nil {
		return 0, errors.New("engine: page load rejected")
	}
	return PageHandle(uintptr(unsafe.Pointer(p))), nil
}

func (e *pdfium) ClosePage(p PageHandle) {
	C.FPDF_ClosePage(C.FPDF_PAGE(unsafe.Pointer(p)))
}

func (e *pdfium) PageWidth(p PageHandle) float64 {
	return float64(C.FPDF_GetPageWidth(C.FPDF_PAGE(unsafe.Pointer(p))))
}

func (e *pdfium) PageHeight(p PageHandle) float64 {
	return float64(C.FPDF_GetPageHeight(C.FPDF_PAGE(unsafe.Pointer(p))))
}

func (e *pdfium) PageToDevice(p PageHandle, startX, startY, sizeX, sizeY, rotate int, pageX, pageY float64) (int, int) {
	var dx, dy C.int
	C.FPDF_PageToDevice(C.FPDF_PAGE(unsafe.Pointer(p)),
		C.int(startX), C.int(startY), C.int(sizeX), C.int(sizeY), C.int(rotate),
		C.double(pageX), C.double(pageY), &dx, &dy)
	return int(dx), int(dy)
}

func (e *pdfium) DeviceToPage(p PageHandle, startX, startY, sizeX, sizeY, rotate int, deviceX, deviceY int) (float64, float64) {
	var px, py C.double
	C.FPDF_DeviceToPage(C.FPDF_PAGE(unsafe.Pointer(p)),
		C.int(startX), C.int(startY), C.int(sizeX), C.int(sizeY), C.int(rotate),
		C.int(deviceX), C.int(deviceY), &px, &py)
	return float64(px), float64(py)
}

func (e *pdfium) CreateBitmap(width, height int, alpha bool) (BitmapHandle, error) {
	a := C.int(0)
	if alpha {
		a = 1
	}
	b := C.FPDFBitmap_Create(C.int(width), C.int(height), a)
	if b == nil {
		return 0, errors.New("engine: bitmap allocation failed")
	}
	return BitmapHandle(uintptr(unsafe.Pointer(b))), nil
}

func (e *pdfium) DestroyBitmap(b BitmapHandle) {
	C.FPDFBitmap_Destroy(C.FPDF_BITMAP(unsafe.Pointer(b)))
}

func (e *pdfium) FillBitmapRect(b BitmapHandle, left, top, width, height int, argb uint32) {
	C.FPDFBitmap_FillRect(C.FPDF_BITMAP(unsafe.Pointer(b)),
		C.int(left), C.int(top), C.int(width), C.int(height), C.FPDF_DWORD(argb))
}

func (e *pdfium) BitmapStride(b BitmapHandle) int {
	return int(C.FPDFBitmap_GetStride(C.FPDF_BITMAP(unsafe.Pointer(b))))
}

func (e *pdfium) BitmapBuffer(b BitmapHandle) []byte {
	bm := C.FPDF_BITMAP(unsafe.Pointer(b))
	buf := C.FPDFBitmap_GetBuffer(bm)
	if buf == nil {
		return nil
	}
	n := int(C.FPDFBitmap_GetStride(bm)) * int(C.FPDFBitmap_GetHeight(bm))
	return unsafe.Slice((*byte)(buf), n)
}

func (e *pdfium) RenderPage(b BitmapHandle, p PageHandle, startX, startY, sizeX, sizeY, rotate, flags int) {
	C.FPDF_RenderPageBitmap(C.FPDF_BITMAP(unsafe.Pointer(b)), C.FPDF_PAGE(unsafe.Pointer(p)),
		C.int(startX), C.int(startY), C.int(sizeX), C.int(sizeY), C.int(rotate), C.int(flags))
}

func (e *pdfium) StartProgressiveRender(b BitmapHandle, p PageHandle, startX, startY, sizeX, sizeY, rotate, flags int) RenderStatus {
	return RenderStatus(C.FPDF_RenderPageBitmap_Start(
		C.FPDF_BITMAP(unsafe.Pointer(b)), C.FPDF_PAGE(unsafe.Pointer(p)),
		C.int(startX), C.int(startY), C.int(sizeX), C.int(sizeY), C.int(rotate), C.int(flags),
		&e.pause.pause))
}

func (e *pdfium) ContinueRender(p PageHandle) RenderStatus {
	return RenderStatus(C.FPDF_RenderPage_Continue(C.FPDF_PAGE(unsafe.Pointer(p)), &e.pause.pause))
}

func (e *pdfium) SetRenderCancelFlag(v bool) {
	if v {
		*e.cancel = 1
	} else {
		*e.cancel = 0
	}
}

func (e *pdfium) CloseRender(p PageHandle) {
	C.FPDF_RenderPage_Close(C.FPDF_PAGE(unsafe.Pointer(p)))
}

func (e *pdfium) LoadTextPage(p PageHandle) (TextPageHandle, error) {
	tp := C.FPDFText_LoadPage(C.FPDF_PAGE(unsafe.Pointer(p)))
	if tp == nil {
		return 0, errors.New("engine: text page load rejected")
	}
	return TextPageHandle(uintptr(unsafe.Pointer(tp))), nil
}

func (e *pdfium) CloseTextPage(tp TextPageHandle) {
	C.FPDFText_ClosePage(C.FPDF_TEXTPAGE(unsafe.Pointer(tp)))
}

func (e *pdfium) CountChars(tp TextPageHandle) int {
	return int(C.FPDFText_CountChars(C.FPDF_TEXTPAGE(unsafe.Pointer(tp))))
}

func (e *pdfium) CountRects(tp TextPageHandle, start, count int) int {
	return int(C.FPDFText_CountRects(C.FPDF_TEXTPAGE(unsafe.Pointer(tp)), C.int(start), C.int(count)))
}

func (e *pdfium) Rect(tp TextPageHandle, index int) (RectF, bool) {
	var l, t, r, b C.double
	ok := C.FPDFText_GetRect(C.FPDF_TEXTPAGE(unsafe.Pointer(tp)), C.int(index), &l, &t, &r, &b)
	if ok == 0 {
		return RectF{}, false
	}
	return RectF{Left: float32(l), Top: float32(t), Right: float32(r), Bottom: float32(b)}, true
}

func (e *pdfium) BoundedText(tp TextPageHandle, left, top, right, bottom float64) string {
	h := C.FPDF_TEXTPAGE(unsafe.Pointer(tp))
	n := C.FPDFText_GetBoundedText(h, C.double(left), C.double(top), C.double(right), C.double(bottom), nil, 0)
	if n <= 0 {
		return ""
	}
	buf := make([]uint16, int(n))
	C.FPDFText_GetBoundedText(h, C.double(left), C.double(top), C.double(right), C.double(bottom),
		(*C.ushort)(unsafe.Pointer(&buf[0])), n)
	return DecodeWide(u16ToBytes(buf))
}

func (e *pdfium) CharIndexAtPos(tp TextPageHandle, x, y, xTolerance, yTolerance float64) int {
	return int(C.FPDFText_GetCharIndexAtPos(C.FPDF_TEXTPAGE(unsafe.Pointer(tp)),
		C.double(x), C.double(y), C.double(xTolerance), C.double(yTolerance)))
}

func (e *pdfium) FontSize(tp TextPageHandle, charIndex int) float64 {
	return float64(C.FPDFText_GetFontSize(C.FPDF_TEXTPAGE(unsafe.Pointer(tp)), C.int(charIndex)))
}

func (e *pdfium) FontInfo(tp TextPageHandle, charIndex int) (string, int, bool) {
	h := C.FPDF_TEXTPAGE(unsafe.Pointer(tp))
	var flags C.int
	n := C.FPDFText_GetFontInfo(h, C.int(charIndex), nil, 0, &flags)
	if n <= 0 {
		return "", 0, false
	}
	buf := make([]byte, int(n))
	C.FPDFText_GetFontInfo(h, C.int(charIndex), unsafe.Pointer(&buf[0]), C.ulong(n), &flags)
	// n includes the trailing NUL.
	name := string(buf[:n-1])
	return name, int(flags), true
}

func (e *pdfium) FindStart(tp TextPageHandle, text string, flags uint32, startIndex int) (SearchHandle, error) {
	wide := EncodeWide(text)
	s := C.FPDFText_FindStart(C.FPDF_TEXTPAGE(unsafe.Pointer(tp)),
		(*C.ushort)(unsafe.Pointer(&wide[0])), C.ulong(flags), C.int(startIndex))
	if s == nil {
		return 0, errors.New("engine: search open rejected")
	}
	return SearchHandle(uintptr(unsafe.Pointer(s))), nil
}

func (e *pdfium) FindNext(s SearchHandle) bool {
	return C.FPDFText_FindNext(C.FPDF_SCHHANDLE(unsafe.Pointer(s))) != 0
}

func (e *pdfium) ResultIndex(s SearchHandle) int {
	return int(C.FPDFText_GetSchResultIndex(C.FPDF_SCHHANDLE(unsafe.Pointer(s))))
}

func (e *pdfium) ResultCount(s SearchHandle) int {
	return int(C.FPDFText_GetSchCount(C.FPDF_SCHHANDLE(unsafe.Pointer(s))))
}

func (e *pdfium) FindClose(s SearchHandle) {
	C.FPDFText_FindClose(C.FPDF_SCHHANDLE(unsafe.Pointer(s)))
}

func (e *pdfium) AnnotationCount(p PageHandle) int {
	return int(C.FPDFPage_GetAnnotCount(C.FPDF_PAGE(unsafe.Pointer(p))))
}

func (e *pdfium) OpenAnnotation(p PageHandle, index int) (AnnotationHandle, error) {
	a := C.FPDFPage_GetAnnot(C.FPDF_PAGE(unsafe.Pointer(p)), C.int(index))
	if a == nil {
		return 0, errors.New("engine: annotation open rejected")
	}
	return AnnotationHandle(uintptr(unsafe.Pointer(a))), nil
}

func (e *pdfium) CloseAnnotation(a AnnotationHandle) {
	C.FPDFPage_CloseAnnot(C.FPDF_ANNOTATION(unsafe.Pointer(a)))
}

func (e *pdfium) CreateAnnotation(p PageHandle, subtype AnnotationSubtype) (AnnotationHandle, error) {
	a := C.FPDFPage_CreateAnnot(C.FPDF_PAGE(unsafe.Pointer(p)), C.FPDF_ANNOTATION_SUBTYPE(subtype))
	if a == nil {
		return 0, errors.New("engine: annotation create rejected")
	}
	return AnnotationHandle(uintptr(unsafe.Pointer(a))), nil
}

func (e *pdfium) AnnotationSubtype(a AnnotationHandle) AnnotationSubtype {
	return AnnotationSubtype(C.FPDFAnnot_GetSubtype(C.FPDF_ANNOTATION(unsafe.Pointer(a))))
}

func (e *pdfium) AnnotationColor(a AnnotationHandle) (Color, bool) {
	var r, g, b, al C.uint
	ok := C.FPDFAnnot_GetColor(C.FPDF_ANNOTATION(unsafe.Pointer(a)), C.FPDFANNOT_COLORTYPE_Color, &r, &g, &b, &al)
	if ok == 0 {
		return Color{}, false
	}
	return Color{R: uint8(r), G: uint8(g), B: uint8(b), A: uint8(al)}, true
}

func (e *pdfium) SetAnnotationColor(a AnnotationHandle, c Color) bool {
	return C.FPDFAnnot_SetColor(C.FPDF_ANNOTATION(unsafe.Pointer(a)), C.FPDFANNOT_COLORTYPE_Color,
		C.uint(c.R), C.uint(c.G), C.uint(c.B), C.uint(c.A)) != 0
}

func (e *pdfium) AnnotationRect(a AnnotationHandle) (RectF, bool) {
	var r C.FS_RECTF
	if C.FPDFAnnot_GetRect(C.FPDF_ANNOTATION(unsafe.Pointer(a)), &r) == 0 {
		return RectF{}, false
	}
	return RectF{Left: float32(r.left), Top: float32(r.top), Right: float32(r.right), Bottom: float32(r.bottom)}, true
}

func (e *pdfium) SetAnnotationRect(a AnnotationHandle, r RectF) bool {
	cr := C.FS_RECTF{left: C.float(r.Left), top: C.float(r.Top), right: C.float(r.Right), bottom: C.float(r.Bottom)}
	return C.FPDFAnnot_SetRect(C.FPDF_ANNOTATION(unsafe.Pointer(a)), &cr) != 0
}

func (e *pdfium) AnnotationBorder(a AnnotationHandle) (float32, float32, float32, bool) {
	var hr, vr, w C.float
	if C.FPDFAnnot_GetBorder(C.FPDF_ANNOTATION(unsafe.Pointer(a)), &hr, &vr, &w) == 0 {
		return 0, 0, 0, false
	}
	return float32(hr), float32(vr), float32(w), true
}

func (e *pdfium) SetAnnotationBorder(a AnnotationHandle, hr, vr, w float32) bool {
	return C.FPDFAnnot_SetBorder(C.FPDF_ANNOTATION(unsafe.Pointer(a)), C.float(hr), C.float(vr), C.float(w)) != 0
}

func (e *pdfium) InkListCount(a AnnotationHandle) int {
	return int(C.FPDFAnnot_GetInkListCount(C.FPDF_ANNOTATION(unsafe.Pointer(a))))
}

func (e *pdfium) InkListPath(a AnnotationHandle, pathIndex int, buf []PointF) int {
	var p *C.FS_POINTF
	if len(buf) > 0 {
		p = (*C.FS_POINTF)(unsafe.Pointer(&buf[0]))
	}
	return int(C.FPDFAnnot_GetInkListPath(C.FPDF_ANNOTATION(unsafe.Pointer(a)),
		C.ulong(pathIndex), p, C.ulong(len(buf))))
}

func (e *pdfium) AddInkStroke(a AnnotationHandle, points []PointF) (int, error) {
	if len(points) == 0 {
		return -1, errors.New("engine: empty ink stroke")
	}
	idx := C.FPDFAnnot_AddInkStroke(C.FPDF_ANNOTATION(unsafe.Pointer(a)),
		(*C.FS_POINTF)(unsafe.Pointer(&points[0])), C.size_t(len(points)))
	if idx < 0 {
		return -1, errors.New("engine: ink stroke rejected")
	}
	return int(idx), nil
}

func (e *pdfium) AttachmentPointCount(a AnnotationHandle) int {
	return int(C.FPDFAnnot_CountAttachmentPoints(C.FPDF_ANNOTATION(unsafe.Pointer(a))))
}

func (e *pdfium) AttachmentPoints(a AnnotationHandle, quadIndex int) (QuadPointsF, bool) {
	var q C.FS_QUADPOINTSF
	if C.FPDFAnnot_GetAttachmentPoints(C.FPDF_ANNOTATION(unsafe.Pointer(a)), C.size_t(quadIndex), &q) == 0 {
		return QuadPointsF{}, false
	}
	return QuadPointsF{
		X1: float32(q.x1), Y1: float32(q.y1),
		X2: float32(q.x2), Y2: float32(q.y2),
		X3: float32(q.x3), Y3: float32(q.y3),
		X4: float32(q.x4), Y4: float32(q.y4),
	}, true
}

func (e *pdfium) AppendAttachmentPoints(a AnnotationHandle, quad QuadPointsF) bool {
	q := C.FS_QUADPOINTSF{
		x1: C.float(quad.X1), y1: C.float(quad.Y1),
		x2: C.float(quad.X2), y2: C.float(quad.Y2),
		x3: C.float(quad.X3), y3: C.float(quad.Y3),
		x4: C.float(quad.X4), y4: C.float(quad.Y4),
	}
	return C.FPDFAnnot_AppendAttachmentPoints(C.FPDF_ANNOTATION(unsafe.Pointer(a)), &q) != 0
}

func (e *pdfium) LinkURI(doc DocumentHandle, a AnnotationHandle) (string, bool) {
	link := C.FPDFAnnot_GetLink(C.FPDF_ANNOTATION(unsafe.Pointer(a)))
	if link == nil {
		return "", false
	}
	action := C.FPDFLink_GetAction(link)
	if action == nil {
		return "", false
	}
	d := C.FPDF_DOCUMENT(unsafe.Pointer(doc))
	n := C.FPDFAction_GetURIPath(d, action, nil, 0)
	if n <= 1 {
		return "", false
	}
	buf := make([]byte, int(n))
	C.FPDFAction_GetURIPath(d, action, unsafe.Pointer(&buf[0]), n)
	return string(buf[:n-1]), true
}

func (e *pdfium) LinkDestPage(doc DocumentHandle, a AnnotationHandle) (int, bool) {
	link := C.FPDFAnnot_GetLink(C.FPDF_ANNOTATION(unsafe.Pointer(a)))
	if link == nil {
		return 0, false
	}
	d := C.FPDF_DOCUMENT(unsafe.Pointer(doc))
	dest := C.FPDFLink_GetDest(d, link)
	if dest == nil {
		action := C.FPDFLink_GetAction(link)
		if action == nil {
			return 0, false
		}
		dest = C.FPDFAction_GetDest(d, action)
		if dest == nil {
			return 0, false
		}
	}
	return int(C.FPDFDest_GetDestPageIndex(d, dest)), true
}

func (e *pdfium) SetLinkURI(a AnnotationHandle, uri string) bool {
	curi := C.CString(uri)
	defer C.free(unsafe.Pointer(curi))
	return C.FPDFAnnot_SetURI(C.FPDF_ANNOTATION(unsafe.Pointer(a)), curi) != 0
}

func (e *pdfium) LoadStandardFont(doc DocumentHandle, name string) (FontHandle, error) {
	cname := C.CString(name)
	defer C.free(unsafe.Pointer(cname))
	f := C.FPDFText_LoadStandardFont(C.FPDF_DOCUMENT(unsafe.Pointer(doc)), cname)
	if f == nil {
		return 0, errors.New("engine: standard font load rejected")
	}
	return FontHandle(uintptr(unsafe.Pointer(f))), nil
}

func (e *pdfium) CloseFont(f FontHandle) {
	C.FPDFFont_Close(C.FPDF_FONT(unsafe.Pointer(f)))
}

func (e *pdfium) NewTextObject(doc DocumentHandle, font FontHandle, fontSize float32) (PageObjectHandle, error) {
	o := C.FPDFPageObj_CreateTextObj(C.FPDF_DOCUMENT(unsafe.Pointer(doc)),
		C.FPDF_FONT(unsafe.Pointer(font)), C.float(fontSize))
	if o == nil {
		return 0, errors.New("engine: text object create rejected")
	}
	return PageObjectHandle(uintptr(unsafe.Pointer(o))), nil
}

func (e *pdfium) SetTextObjectText(o PageObjectHandle, text string) bool {
	wide := EncodeWide(text)
	return C.FPDFText_SetText(C.FPDF_PAGEOBJECT(unsafe.Pointer(o)),
		(*C.ushort)(unsafe.Pointer(&wide[0]))) != 0
}

func (e *pdfium) SetPageObjectFillColor(o PageObjectHandle, c Color) bool {
	return C.FPDFPageObj_SetFillColor(C.FPDF_PAGEOBJECT(unsafe.Pointer(o)),
		C.uint(c.R), C.uint(c.G), C.uint(c.B), C.uint(c.A)) != 0
}

func (e *pdfium) TransformPageObject(o PageObjectHandle, a, b, c, d, ee, f float64) {
	C.FPDFPageObj_Transform(C.FPDF_PAGEOBJECT(unsafe.Pointer(o)),
		C.double(a), C.double(b), C.double(c), C.double(d), C.double(ee), C.double(f))
}

func (e *pdfium) InsertPageObject(p PageHandle, o PageObjectHandle) {
	C.FPDFPage_InsertObject(C.FPDF_PAGE(unsafe.Pointer(p)), C.FPDF_PAGEOBJECT(unsafe.Pointer(o)))
}

func (e *pdfium) GenerateContent(p PageHandle) bool {
	return C.FPDFPage_GenerateContent(C.FPDF_PAGE(unsafe.Pointer(p))) != 0
}

func (e *pdfium) SaveToMemory(doc DocumentHandle, flags SaveFlags, version int) (SaveBufferHandle, int, error) {
	w := C.pv_mem_writer_new()
	if w == nil {
		return 0, 0, errors.New("engine: save writer allocation failed")
	}
	var ok C.FPDF_BOOL
	if version > 0 {
		ok = C.FPDF_SaveWithVersion(C.FPDF_DOCUMENT(unsafe.Pointer(doc)), &w.fw, C.FPDF_DWORD(flags), C.int(version))
	} else {
		ok = C.FPDF_SaveAsCopy(C.FPDF_DOCUMENT(unsafe.Pointer(doc)), &w.fw, C.FPDF_DWORD(flags))
	}
	if ok == 0 {
		C.pv_mem_writer_free(w)
		return 0, 0, errors.New("engine: save rejected")
	}
	return SaveBufferHandle(uintptr(unsafe.Pointer(w))), int(w.size), nil
}

func (e *pdfium) SaveBufferBytes(b SaveBufferHandle, size int) []byte {
	w := (*C.pv_mem_writer)(unsafe.Pointer(b))
	if w == nil || w.data == nil || size <= 0 {
		return nil
	}
	return C.GoBytes(unsafe.Pointer(w.data), C.int(size))
}

func (e *pdfium) FreeSaveBuffer(b SaveBufferHandle) {
	C.pv_mem_writer_free((*C.pv_mem_writer)(unsafe.Pointer(b)))
}

func (e *pdfium) BookmarkFirstChild(doc DocumentHandle, bm BookmarkHandle) (BookmarkHandle, bool) {
	child := C.FPDFBookmark_GetFirstChild(C.FPDF_DOCUMENT(unsafe.Pointer(doc)),
		C.FPDF_BOOKMARK(unsafe.Pointer(bm)))
	if child == nil {
		return 0, false
	}
	return BookmarkHandle(uintptr(unsafe.Pointer(child))), true
}

func (e *pdfium) BookmarkNextSibling(doc DocumentHandle, bm BookmarkHandle) (BookmarkHandle, bool) {
	next := C.FPDFBookmark_GetNextSibling(C.FPDF_DOCUMENT(unsafe.Pointer(doc)),
		C.FPDF_BOOKMARK(unsafe.Pointer(bm)))
	if next == nil {
		return 0, false
	}
	return BookmarkHandle(uintptr(unsafe.Pointer(next))), true
}

func (e *pdfium) BookmarkTitle(bm BookmarkHandle) string {
	h := C.FPDF_BOOKMARK(unsafe.Pointer(bm))
	n := C.FPDFBookmark_GetTitle(h, nil, 0)
	if n <= 2 {
		return ""
	}
	buf := make([]byte, int(n))
	C.FPDFBookmark_GetTitle(h, unsafe.Pointer(&buf[0]), n)
	return DecodeWide(buf)
}

func (e *pdfium) BookmarkDestPage(doc DocumentHandle, bm BookmarkHandle) int {
	d := C.FPDF_DOCUMENT(unsafe.Pointer(doc))
	dest := C.FPDFBookmark_GetDest(d, C.FPDF_BOOKMARK(unsafe.Pointer(bm)))
	if dest == nil {
		action := C.FPDFBookmark_GetAction(C.FPDF_BOOKMARK(unsafe.Pointer(bm)))
		if action == nil {
			return -1
		}
		dest = C.FPDFAction_GetDest(d, action)
		if dest == nil {
			return -1
		}
	}
	return int(C.FPDFDest_GetDestPageIndex(d, dest))
}

func (e *pdfium) MetaText(doc DocumentHandle, tag string) string {
	ctag := C.CString(tag)
	defer C.free(unsafe.Pointer(ctag))
	d := C.FPDF_DOCUMENT(unsafe.Pointer(doc))
	n := C.FPDF_GetMetaText(d, ctag, nil, 0)
	if n <= 2 {
		return ""
	}
	buf := make([]byte, int(n))
	C.FPDF_GetMetaText(d, ctag, unsafe.Pointer(&buf[0]), n)
	return DecodeWide(buf)
}

// u16ToBytes reinterprets UTF-16 code units as the little-endian byte
// stream DecodeWide expects.
func u16ToBytes(u []uint16) []byte {
	b := make([]byte, 0, len(u)*2)
	for _, c := range u {
		b = append(b, byte(c), byte(c>>8))
	}
	return b
}
