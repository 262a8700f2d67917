package enginetest

import (
	"encoding/json"
	"errors"
	"math"
	"strings"
	"sync"
	"unicode/utf8"

	"github.com/wudi/pdfview/engine"
)

// Fake implements engine.Engine in memory. It keeps acquire/release
// counters for every handle class so tests can assert that the viewer
// never leaks or double-frees a native resource.
//
// Knobs (set before use):
//
//	InitFailures   — number of Init calls that fail before one succeeds.
//	FailLoadCode   — when nonzero, LoadDocument rejects with this code.
//	ContinueSteps  — progressive renders need this many ContinueRender
//	                 calls before completing (0 = complete at start).
//	StrideSlack    — extra bytes per bitmap row, to force the per-pixel
//	                 BGRA conversion path.
//	RenderColor    — pixel written by a completed render (stored BGRA).
//	SaveEmpty      — SaveToMemory reports a zero-size buffer.
type Fake struct {
	mu sync.Mutex

	InitFailures  int
	FailLoadCode  uint32
	ContinueSteps int
	StrideSlack   int
	RenderColor   engine.Color
	SaveEmpty     bool

	InitCalls       int
	DestroyCalls    int
	DocOpens        int
	DocCloses       int
	PageOpens       int
	PageCloses      int
	TextPageOpens   int
	TextPageCloses  int
	CursorOpens     int
	CursorCloses    int
	AnnotOpens      int
	AnnotCloses     int
	BitmapsLive     int
	SaveBufferFrees int
	RenderCloses    int

	lastErr uint32
	cancel  bool

	next      uintptr
	docs      map[engine.DocumentHandle]*fakeDoc
	pages     map[engine.PageHandle]*fakePage
	bitmaps   map[engine.BitmapHandle]*fakeBitmap
	textPages map[engine.TextPageHandle]*fakePage
	searches  map[engine.SearchHandle]*fakeSearch
	annots    map[engine.AnnotationHandle]*annotRef
	fonts     map[engine.FontHandle]string
	objects   map[engine.PageObjectHandle]*fakeObject
	saves     map[engine.SaveBufferHandle][]byte
	renders   map[engine.PageHandle]*fakeRender
}

type fakeDoc struct {
	fx        Fixture
	bookmarks []flatBookmark
}

type flatBookmark struct {
	title      string
	page       int
	firstChild int // index+1, 0 = none
	next       int
}

type fakePage struct {
	doc *fakeDoc
	idx int
	// sel is the rect selection computed by the last CountRects call,
	// mirroring the native compute-then-index protocol.
	sel []engine.RectF
}

type fakeBitmap struct {
	w, h, stride int
	buf          []byte
}

type fakeSearch struct {
	page    *fakePage
	matches []matchSpan
	pos     int // -1 before first FindNext
}

type matchSpan struct {
	index, count int
}

type fakeRender struct {
	bitmap    *fakeBitmap
	remaining int
}

type annotRef struct {
	page *fakePage
	a    *AnnotFixture
}

type fakeObject struct {
	font   string
	size   float64
	text   string
	matrix [6]float64
	fill   engine.Color
}

// New returns a Fake with default knobs.
func New() *Fake {
	return &Fake{
		RenderColor: engine.Color{R: 0x33, G: 0x22, B: 0x11, A: 0xFF},
		docs:        make(map[engine.DocumentHandle]*fakeDoc),
		pages:       make(map[engine.PageHandle]*fakePage),
		bitmaps:     make(map[engine.BitmapHandle]*fakeBitmap),
		textPages:   make(map[engine.TextPageHandle]*fakePage),
		searches:    make(map[engine.SearchHandle]*fakeSearch),
		annots:      make(map[engine.AnnotationHandle]*annotRef),
		fonts:       make(map[engine.FontHandle]string),
		objects:     make(map[engine.PageObjectHandle]*fakeObject),
		saves:       make(map[engine.SaveBufferHandle][]byte),
		renders:     make(map[engine.PageHandle]*fakeRender),
	}
}

// CancelFlag reports the current render-cancel flag, for asserting the
// reset invariant.
func (f *Fake) CancelFlag() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.cancel
}

func (f *Fake) handle() uintptr {
	f.next++
	return f.next
}

func (f *Fake) Init() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.InitCalls++
	if f.InitFailures > 0 {
		f.InitFailures--
		return errors.New("enginetest: simulated init failure")
	}
	return nil
}

func (f *Fake) Destroy() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.DestroyCalls++
}

func (f *Fake) LastError() uint32 {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.lastErr
}

func (f *Fake) LoadDocument(data []byte, password string) (engine.DocumentHandle, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.FailLoadCode != 0 {
		f.lastErr = f.FailLoadCode
		return 0, errors.New("enginetest: simulated load rejection")
	}
	var fx Fixture
	if err := json.Unmarshal(data, &fx); err != nil || len(fx.Pages) == 0 {
		f.lastErr = engine.ErrCodeFormat
		return 0, errors.New("enginetest: unparseable document")
	}
	d := &fakeDoc{fx: fx}
	d.bookmarks = flattenBookmarks(fx.Bookmarks)
	h := engine.DocumentHandle(f.handle())
	f.docs[h] = d
	f.DocOpens++
	f.lastErr = engine.ErrCodeSuccess
	return h, nil
}

func flattenBookmarks(nodes []BookmarkFixture) []flatBookmark {
	var flat []flatBookmark
	var walk func(nodes []BookmarkFixture) int
	walk = func(nodes []BookmarkFixture) int {
		if len(nodes) == 0 {
			return 0
		}
		first := 0
		prev := -1
		for _, n := range nodes {
			flat = append(flat, flatBookmark{title: n.Title, page: n.Page})
			idx := len(flat) - 1
			if prev >= 0 {
				flat[prev].next = idx + 1
			} else {
				first = idx + 1
			}
			prev = idx
			flat[idx].firstChild = walk(n.Children)
		}
		return first
	}
	walk(nodes)
	return flat
}

func (f *Fake) CloseDocument(h engine.DocumentHandle) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.docs[h]; ok {
		delete(f.docs, h)
		f.DocCloses++
	}
}

func (f *Fake) PageCount(h engine.DocumentHandle) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	d := f.docs[h]
	if d == nil {
		return 0
	}
	return len(d.fx.Pages)
}

func (f *Fake) LoadPage(h engine.DocumentHandle, index int) (engine.PageHandle, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	d := f.docs[h]
	if d == nil || index < 0 || index >= len(d.fx.Pages) {
		f.lastErr = engine.ErrCodePage
		return 0, errors.New("enginetest: page out of range")
	}
	p := engine.PageHandle(f.handle())
	f.pages[p] = &fakePage{doc: d, idx: index}
	f.PageOpens++
	return p, nil
}

func (f *Fake) ClosePage(p engine.PageHandle) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.pages[p]; ok {
		delete(f.pages, p)
		f.PageCloses++
	}
}

func (f *Fake) page(p engine.PageHandle) *PageFixture {
	pg := f.pages[p]
	if pg == nil {
		return nil
	}
	return &pg.doc.fx.Pages[pg.idx]
}

func (f *Fake) PageWidth(p engine.PageHandle) float64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	if pg := f.page(p); pg != nil {
		return pg.Width
	}
	return 0
}

func (f *Fake) PageHeight(p engine.PageHandle) float64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	if pg := f.page(p); pg != nil {
		return pg.Height
	}
	return 0
}

// PageToDevice implements the page-to-device affine for all four
// quarter-turn rotations: x maps proportionally, y flips (page origin
// bottom-left, device top-left), and each turn permutes the axes the
// way the native matrix does.
func (f *Fake) PageToDevice(p engine.PageHandle, startX, startY, sizeX, sizeY, rotate int, pageX, pageY float64) (int, int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	pg := f.page(p)
	if pg == nil || pg.Width == 0 || pg.Height == 0 {
		return 0, 0
	}
	sx, sy := float64(sizeX), float64(sizeY)
	var dx, dy float64
	switch rotate & 3 {
	case 0:
		dx = pageX * sx / pg.Width
		dy = (pg.Height - pageY) * sy / pg.Height
	case 1:
		dx = pageY * sx / pg.Height
		dy = pageX * sy / pg.Width
	case 2:
		dx = (pg.Width - pageX) * sx / pg.Width
		dy = pageY * sy / pg.Height
	case 3:
		dx = (pg.Height - pageY) * sx / pg.Height
		dy = (pg.Width - pageX) * sy / pg.Width
	}
	return int(math.Round(float64(startX) + dx)), int(math.Round(float64(startY) + dy))
}

func (f *Fake) DeviceToPage(p engine.PageHandle, startX, startY, sizeX, sizeY, rotate int, deviceX, deviceY int) (float64, float64) {
	f.mu.Lock()
	defer f.mu.Unlock()
	pg := f.page(p)
	if pg == nil || sizeX == 0 || sizeY == 0 {
		return 0, 0
	}
	ux := float64(deviceX - startX)
	uy := float64(deviceY - startY)
	sx, sy := float64(sizeX), float64(sizeY)
	var px, py float64
	switch rotate & 3 {
	case 0:
		px = ux * pg.Width / sx
		py = pg.Height - uy*pg.Height/sy
	case 1:
		py = ux * pg.Height / sx
		px = uy * pg.Width / sy
	case 2:
		px = pg.Width - ux*pg.Width/sx
		py = uy * pg.Height / sy
	case 3:
		py = pg.Height - ux*pg.Height/sx
		px = pg.Width - uy*pg.Width/sy
	}
	return px, py
}

func (f *Fake) CreateBitmap(width, height int, alpha bool) (engine.BitmapHandle, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if width <= 0 || height <= 0 {
		return 0, errors.New("enginetest: bad bitmap dimensions")
	}
	stride := 4*width + f.StrideSlack
	b := engine.BitmapHandle(f.handle())
	f.bitmaps[b] = &fakeBitmap{w: width, h: height, stride: stride, buf: make([]byte, stride*height)}
	f.BitmapsLive++
	return b, nil
}

func (f *Fake) DestroyBitmap(b engine.BitmapHandle) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.bitmaps[b]; ok {
		delete(f.bitmaps, b)
		f.BitmapsLive--
	}
}

func (f *Fake) FillBitmapRect(b engine.BitmapHandle, left, top, width, height int, argb uint32) {
	f.mu.Lock()
	defer f.mu.Unlock()
	bm := f.bitmaps[b]
	if bm == nil {
		return
	}
	bb := byte(argb)
	g := byte(argb >> 8)
	r := byte(argb >> 16)
	a := byte(argb >> 24)
	for y := top; y < top+height && y < bm.h; y++ {
		row := bm.buf[y*bm.stride:]
		for x := left; x < left+width && x < bm.w; x++ {
			row[x*4+0] = bb
			row[x*4+1] = g
			row[x*4+2] = r
			row[x*4+3] = a
		}
	}
}

func (f *Fake) BitmapStride(b engine.BitmapHandle) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	if bm := f.bitmaps[b]; bm != nil {
		return bm.stride
	}
	return 0
}

func (f *Fake) BitmapBuffer(b engine.BitmapHandle) []byte {
	f.mu.Lock()
	defer f.mu.Unlock()
	if bm := f.bitmaps[b]; bm != nil {
		return bm.buf
	}
	return nil
}

func (f *Fake) paint(bm *fakeBitmap) {
	c := f.RenderColor
	for y := 0; y < bm.h; y++ {
		row := bm.buf[y*bm.stride:]
		for x := 0; x < bm.w; x++ {
			row[x*4+0] = c.B
			row[x*4+1] = c.G
			row[x*4+2] = c.R
			row[x*4+3] = c.A
		}
	}
}

func (f *Fake) RenderPage(b engine.BitmapHandle, p engine.PageHandle, startX, startY, sizeX, sizeY, rotate, flags int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if bm := f.bitmaps[b]; bm != nil {
		f.paint(bm)
	}
}

func (f *Fake) StartProgressiveRender(b engine.BitmapHandle, p engine.PageHandle, startX, startY, sizeX, sizeY, rotate, flags int) engine.RenderStatus {
	f.mu.Lock()
	defer f.mu.Unlock()
	bm := f.bitmaps[b]
	if bm == nil {
		return engine.RenderFailed
	}
	if f.ContinueSteps <= 0 {
		f.paint(bm)
		return engine.RenderDone
	}
	f.renders[p] = &fakeRender{bitmap: bm, remaining: f.ContinueSteps}
	return engine.RenderToBeContinued
}

func (f *Fake) ContinueRender(p engine.PageHandle) engine.RenderStatus {
	f.mu.Lock()
	defer f.mu.Unlock()
	r := f.renders[p]
	if r == nil {
		return engine.RenderFailed
	}
	if f.cancel {
		// The native rasterizer yields without progress while the
		// pause callback keeps returning true.
		return engine.RenderToBeContinued
	}
	r.remaining--
	if r.remaining > 0 {
		return engine.RenderToBeContinued
	}
	f.paint(r.bitmap)
	return engine.RenderDone
}

func (f *Fake) CloseRender(p engine.PageHandle) {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.renders, p)
	f.RenderCloses++
}

func (f *Fake) SetRenderCancelFlag(v bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.cancel = v
}

func (f *Fake) LoadTextPage(p engine.PageHandle) (engine.TextPageHandle, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	pg := f.pages[p]
	if pg == nil {
		return 0, errors.New("enginetest: text page for closed page")
	}
	tp := engine.TextPageHandle(f.handle())
	f.textPages[tp] = &fakePage{doc: pg.doc, idx: pg.idx}
	f.TextPageOpens++
	return tp, nil
}

func (f *Fake) CloseTextPage(tp engine.TextPageHandle) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.textPages[tp]; ok {
		delete(f.textPages, tp)
		f.TextPageCloses++
	}
}

func (f *Fake) textFixture(tp engine.TextPageHandle) (*fakePage, *PageFixture) {
	pg := f.textPages[tp]
	if pg == nil {
		return nil, nil
	}
	return pg, &pg.doc.fx.Pages[pg.idx]
}

func (f *Fake) CountChars(tp engine.TextPageHandle) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, fx := f.textFixture(tp)
	if fx == nil {
		return 0
	}
	n := 0
	for _, t := range fx.Texts {
		n += utf8.RuneCountInString(t.Text)
	}
	return n
}

// CountRects computes the rect selection for the char range and caches
// it for subsequent Rect calls, like the native text API. A run that
// partially overlaps the range contributes a proportional horizontal
// slice of its rect.
func (f *Fake) CountRects(tp engine.TextPageHandle, start, count int) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	pg, fx := f.textFixture(tp)
	if fx == nil {
		return 0
	}
	end := math.MaxInt
	if count >= 0 {
		end = start + count
	}
	pg.sel = pg.sel[:0]
	off := 0
	for _, t := range fx.Texts {
		n := utf8.RuneCountInString(t.Text)
		lo, hi := max(start, off), min(end, off+n)
		if lo < hi && n > 0 {
			w := t.Right - t.Left
			pg.sel = append(pg.sel, engine.RectF{
				Left:   float32(t.Left + w*float64(lo-off)/float64(n)),
				Top:    float32(t.Top),
				Right:  float32(t.Left + w*float64(hi-off)/float64(n)),
				Bottom: float32(t.Bottom),
			})
		}
		off += n
	}
	return len(pg.sel)
}

func (f *Fake) Rect(tp engine.TextPageHandle, index int) (engine.RectF, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	pg, _ := f.textFixture(tp)
	if pg == nil || index < 0 || index >= len(pg.sel) {
		return engine.RectF{}, false
	}
	return pg.sel[index], true
}

// BoundedText collects the characters whose centers fall inside the
// bounds, like the native text API: a rect covering part of a run
// returns only that part.
func (f *Fake) BoundedText(tp engine.TextPageHandle, left, top, right, bottom float64) string {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, fx := f.textFixture(tp)
	if fx == nil {
		return ""
	}
	const tol = 0.5
	var sb strings.Builder
	for _, t := range fx.Texts {
		cy := (t.Top + t.Bottom) / 2
		if cy < bottom-tol || cy > top+tol {
			continue
		}
		runes := []rune(t.Text)
		if len(runes) == 0 {
			continue
		}
		w := (t.Right - t.Left) / float64(len(runes))
		for i, r := range runes {
			cx := t.Left + w*(float64(i)+0.5)
			if cx >= left-tol && cx <= right+tol {
				sb.WriteRune(r)
			}
		}
	}
	return sb.String()
}

func (f *Fake) CharIndexAtPos(tp engine.TextPageHandle, x, y, xTolerance, yTolerance float64) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, fx := f.textFixture(tp)
	if fx == nil {
		return -1
	}
	off := 0
	for _, t := range fx.Texts {
		n := utf8.RuneCountInString(t.Text)
		if x >= t.Left-xTolerance && x <= t.Right+xTolerance &&
			y >= t.Bottom-yTolerance && y <= t.Top+yTolerance {
			return off
		}
		off += n
	}
	return -1
}

func (f *Fake) runAt(tp engine.TextPageHandle, charIndex int) *TextFixture {
	_, fx := f.textFixture(tp)
	if fx == nil {
		return nil
	}
	off := 0
	for i := range fx.Texts {
		n := utf8.RuneCountInString(fx.Texts[i].Text)
		if charIndex < off+n {
			return &fx.Texts[i]
		}
		off += n
	}
	return nil
}

func (f *Fake) FontSize(tp engine.TextPageHandle, charIndex int) float64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	if t := f.runAt(tp, charIndex); t != nil {
		return t.Size
	}
	return 0
}

func (f *Fake) FontInfo(tp engine.TextPageHandle, charIndex int) (string, int, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if t := f.runAt(tp, charIndex); t != nil {
		return t.Font, 0, true
	}
	return "", 0, false
}

func (f *Fake) FindStart(tp engine.TextPageHandle, text string, flags uint32, startIndex int) (engine.SearchHandle, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	pg, fx := f.textFixture(tp)
	if fx == nil || text == "" {
		return 0, errors.New("enginetest: search open rejected")
	}
	var sb strings.Builder
	for _, t := range fx.Texts {
		sb.WriteString(t.Text)
	}
	haystack := sb.String()
	needle := text
	if flags&1 == 0 { // match-case flag unset
		haystack = strings.ToLower(haystack)
		needle = strings.ToLower(needle)
	}
	var matches []matchSpan
	runeCount := utf8.RuneCountInString(needle)
	byteOff := 0
	runeOff := 0
	for {
		i := strings.Index(haystack[byteOff:], needle)
		if i < 0 {
			break
		}
		runeOff += utf8.RuneCountInString(haystack[byteOff : byteOff+i])
		if runeOff >= startIndex {
			matches = append(matches, matchSpan{index: runeOff, count: runeCount})
		}
		adv := i + len(needle)
		runeOff += runeCount
		byteOff += adv
	}
	s := engine.SearchHandle(f.handle())
	f.searches[s] = &fakeSearch{page: pg, matches: matches, pos: -1}
	f.CursorOpens++
	return s, nil
}

func (f *Fake) FindNext(s engine.SearchHandle) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	c := f.searches[s]
	if c == nil || c.pos+1 >= len(c.matches) {
		return false
	}
	c.pos++
	return true
}

func (f *Fake) ResultIndex(s engine.SearchHandle) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	c := f.searches[s]
	if c == nil || c.pos < 0 {
		return -1
	}
	return c.matches[c.pos].index
}

func (f *Fake) ResultCount(s engine.SearchHandle) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	c := f.searches[s]
	if c == nil || c.pos < 0 {
		return 0
	}
	return c.matches[c.pos].count
}

func (f *Fake) FindClose(s engine.SearchHandle) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.searches[s]; ok {
		delete(f.searches, s)
		f.CursorCloses++
	}
}

func (f *Fake) AnnotationCount(p engine.PageHandle) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	if pg := f.page(p); pg != nil {
		return len(pg.Annots)
	}
	return 0
}

func (f *Fake) OpenAnnotation(p engine.PageHandle, index int) (engine.AnnotationHandle, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	pg := f.pages[p]
	if pg == nil {
		return 0, errors.New("enginetest: annotation on closed page")
	}
	fx := &pg.doc.fx.Pages[pg.idx]
	if index < 0 || index >= len(fx.Annots) {
		return 0, errors.New("enginetest: annotation index out of range")
	}
	h := engine.AnnotationHandle(f.handle())
	f.annots[h] = &annotRef{page: pg, a: &fx.Annots[index]}
	f.AnnotOpens++
	return h, nil
}

func (f *Fake) CloseAnnotation(a engine.AnnotationHandle) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.annots[a]; ok {
		delete(f.annots, a)
		f.AnnotCloses++
	}
}

func (f *Fake) CreateAnnotation(p engine.PageHandle, subtype engine.AnnotationSubtype) (engine.AnnotationHandle, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	pg := f.pages[p]
	if pg == nil {
		return 0, errors.New("enginetest: annotation on closed page")
	}
	fx := &pg.doc.fx.Pages[pg.idx]
	fx.Annots = append(fx.Annots, AnnotFixture{Subtype: int(subtype)})
	h := engine.AnnotationHandle(f.handle())
	f.annots[h] = &annotRef{page: pg, a: &fx.Annots[len(fx.Annots)-1]}
	f.AnnotOpens++
	return h, nil
}

func (f *Fake) annot(a engine.AnnotationHandle) *AnnotFixture {
	ref := f.annots[a]
	if ref == nil {
		return nil
	}
	return ref.a
}

func (f *Fake) AnnotationSubtype(a engine.AnnotationHandle) engine.AnnotationSubtype {
	f.mu.Lock()
	defer f.mu.Unlock()
	if an := f.annot(a); an != nil {
		return engine.AnnotationSubtype(an.Subtype)
	}
	return engine.AnnotUnknown
}

func (f *Fake) AnnotationColor(a engine.AnnotationHandle) (engine.Color, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	an := f.annot(a)
	if an == nil || an.Color == nil {
		return engine.Color{}, false
	}
	return engine.Color{R: an.Color.R, G: an.Color.G, B: an.Color.B, A: an.Color.A}, true
}

func (f *Fake) SetAnnotationColor(a engine.AnnotationHandle, c engine.Color) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	an := f.annot(a)
	if an == nil {
		return false
	}
	an.Color = &ColorFixture{R: c.R, G: c.G, B: c.B, A: c.A}
	return true
}

func (f *Fake) AnnotationRect(a engine.AnnotationHandle) (engine.RectF, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	an := f.annot(a)
	if an == nil || an.Rect == nil {
		return engine.RectF{}, false
	}
	return engine.RectF{
		Left: float32(an.Rect.Left), Top: float32(an.Rect.Top),
		Right: float32(an.Rect.Right), Bottom: float32(an.Rect.Bottom),
	}, true
}

func (f *Fake) SetAnnotationRect(a engine.AnnotationHandle, r engine.RectF) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	an := f.annot(a)
	if an == nil {
		return false
	}
	an.Rect = &RectFixture{
		Left: float64(r.Left), Top: float64(r.Top),
		Right: float64(r.Right), Bottom: float64(r.Bottom),
	}
	return true
}

func (f *Fake) AnnotationBorder(a engine.AnnotationHandle) (float32, float32, float32, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	an := f.annot(a)
	if an == nil || an.Border == nil {
		return 0, 0, 0, false
	}
	return float32(an.Border.HorizontalRadius), float32(an.Border.VerticalRadius), float32(an.Border.Width), true
}

func (f *Fake) SetAnnotationBorder(a engine.AnnotationHandle, hr, vr, w float32) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	an := f.annot(a)
	if an == nil {
		return false
	}
	an.Border = &BorderFixture{HorizontalRadius: float64(hr), VerticalRadius: float64(vr), Width: float64(w)}
	return true
}

func (f *Fake) InkListCount(a engine.AnnotationHandle) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	if an := f.annot(a); an != nil {
		return len(an.Ink)
	}
	return 0
}

func (f *Fake) InkListPath(a engine.AnnotationHandle, pathIndex int, buf []engine.PointF) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	an := f.annot(a)
	if an == nil || pathIndex < 0 || pathIndex >= len(an.Ink) {
		return 0
	}
	path := an.Ink[pathIndex]
	if len(buf) == 0 {
		return len(path)
	}
	n := min(len(buf), len(path))
	for i := 0; i < n; i++ {
		buf[i] = engine.PointF{X: float32(path[i].X), Y: float32(path[i].Y)}
	}
	return n
}

func (f *Fake) AddInkStroke(a engine.AnnotationHandle, points []engine.PointF) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	an := f.annot(a)
	if an == nil || len(points) == 0 {
		return -1, errors.New("enginetest: ink stroke rejected")
	}
	path := make([]PointFixture, len(points))
	for i, p := range points {
		path[i] = PointFixture{X: float64(p.X), Y: float64(p.Y)}
	}
	an.Ink = append(an.Ink, path)
	return len(an.Ink) - 1, nil
}

func (f *Fake) AttachmentPointCount(a engine.AnnotationHandle) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	if an := f.annot(a); an != nil {
		return len(an.Quads)
	}
	return 0
}

func (f *Fake) AttachmentPoints(a engine.AnnotationHandle, quadIndex int) (engine.QuadPointsF, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	an := f.annot(a)
	if an == nil || quadIndex < 0 || quadIndex >= len(an.Quads) {
		return engine.QuadPointsF{}, false
	}
	q := an.Quads[quadIndex]
	return engine.QuadPointsF{
		X1: float32(q.X1), Y1: float32(q.Y1),
		X2: float32(q.X2), Y2: float32(q.Y2),
		X3: float32(q.X3), Y3: float32(q.Y3),
		X4: float32(q.X4), Y4: float32(q.Y4),
	}, true
}

func (f *Fake) AppendAttachmentPoints(a engine.AnnotationHandle, quad engine.QuadPointsF) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	an := f.annot(a)
	if an == nil {
		return false
	}
	an.Quads = append(an.Quads, QuadFixture{
		X1: float64(quad.X1), Y1: float64(quad.Y1),
		X2: float64(quad.X2), Y2: float64(quad.Y2),
		X3: float64(quad.X3), Y3: float64(quad.Y3),
		X4: float64(quad.X4), Y4: float64(quad.Y4),
	})
	return true
}

func (f *Fake) LinkURI(doc engine.DocumentHandle, a engine.AnnotationHandle) (string, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	an := f.annot(a)
	if an == nil || an.URI == "" {
		return "", false
	}
	return an.URI, true
}

func (f *Fake) LinkDestPage(doc engine.DocumentHandle, a engine.AnnotationHandle) (int, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	an := f.annot(a)
	if an == nil || an.DestPage == nil {
		return 0, false
	}
	return *an.DestPage, true
}

func (f *Fake) SetLinkURI(a engine.AnnotationHandle, uri string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	an := f.annot(a)
	if an == nil {
		return false
	}
	an.URI = uri
	return true
}

func (f *Fake) LoadStandardFont(doc engine.DocumentHandle, name string) (engine.FontHandle, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.docs[doc]; !ok {
		return 0, errors.New("enginetest: font for closed document")
	}
	h := engine.FontHandle(f.handle())
	f.fonts[h] = name
	return h, nil
}

func (f *Fake) CloseFont(h engine.FontHandle) {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.fonts, h)
}

func (f *Fake) NewTextObject(doc engine.DocumentHandle, font engine.FontHandle, fontSize float32) (engine.PageObjectHandle, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	name, ok := f.fonts[font]
	if !ok {
		return 0, errors.New("enginetest: text object with closed font")
	}
	h := engine.PageObjectHandle(f.handle())
	f.objects[h] = &fakeObject{font: name, size: float64(fontSize), matrix: [6]float64{1, 0, 0, 1, 0, 0}}
	return h, nil
}

func (f *Fake) SetTextObjectText(o engine.PageObjectHandle, text string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	obj := f.objects[o]
	if obj == nil {
		return false
	}
	obj.text = text
	return true
}

func (f *Fake) SetPageObjectFillColor(o engine.PageObjectHandle, c engine.Color) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	obj := f.objects[o]
	if obj == nil {
		return false
	}
	obj.fill = c
	return true
}

func (f *Fake) TransformPageObject(o engine.PageObjectHandle, a, b, c, d, e, ff float64) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if obj := f.objects[o]; obj != nil {
		obj.matrix = [6]float64{a, b, c, d, e, ff}
	}
}

func (f *Fake) InsertPageObject(p engine.PageHandle, o engine.PageObjectHandle) {
	f.mu.Lock()
	defer f.mu.Unlock()
	pg := f.pages[p]
	obj := f.objects[o]
	if pg == nil || obj == nil {
		return
	}
	fx := &pg.doc.fx.Pages[pg.idx]
	fx.Flattened = append(fx.Flattened, FlattenedFixture{
		Text: obj.text, Font: obj.font, Size: obj.size, Matrix: obj.matrix,
	})
	// Ownership transfers to the page.
	delete(f.objects, o)
}

func (f *Fake) GenerateContent(p engine.PageHandle) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.pages[p] != nil
}

func (f *Fake) SaveToMemory(doc engine.DocumentHandle, flags engine.SaveFlags, version int) (engine.SaveBufferHandle, int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	d := f.docs[doc]
	if d == nil {
		return 0, 0, errors.New("enginetest: save of closed document")
	}
	h := engine.SaveBufferHandle(f.handle())
	if f.SaveEmpty {
		f.saves[h] = nil
		f.lastErr = engine.ErrCodeUnknown
		return h, 0, nil
	}
	data, err := json.Marshal(d.fx)
	if err != nil {
		return 0, 0, err
	}
	f.saves[h] = data
	return h, len(data), nil
}

func (f *Fake) SaveBufferBytes(b engine.SaveBufferHandle, size int) []byte {
	f.mu.Lock()
	defer f.mu.Unlock()
	data := f.saves[b]
	if data == nil || size <= 0 || size > len(data) {
		return nil
	}
	out := make([]byte, size)
	copy(out, data)
	return out
}

func (f *Fake) FreeSaveBuffer(b engine.SaveBufferHandle) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.saves[b]; ok {
		delete(f.saves, b)
		f.SaveBufferFrees++
	}
}

func (f *Fake) BookmarkFirstChild(doc engine.DocumentHandle, bm engine.BookmarkHandle) (engine.BookmarkHandle, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	d := f.docs[doc]
	if d == nil {
		return 0, false
	}
	if bm == 0 {
		if len(d.bookmarks) == 0 {
			return 0, false
		}
		return 1, true
	}
	idx := int(bm) - 1
	if idx < 0 || idx >= len(d.bookmarks) || d.bookmarks[idx].firstChild == 0 {
		return 0, false
	}
	return engine.BookmarkHandle(d.bookmarks[idx].firstChild), true
}

func (f *Fake) BookmarkNextSibling(doc engine.DocumentHandle, bm engine.BookmarkHandle) (engine.BookmarkHandle, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	d := f.docs[doc]
	idx := int(bm) - 1
	if d == nil || idx < 0 || idx >= len(d.bookmarks) || d.bookmarks[idx].next == 0 {
		return 0, false
	}
	return engine.BookmarkHandle(d.bookmarks[idx].next), true
}

func (f *Fake) bookmarkDoc(bm engine.BookmarkHandle) *fakeDoc {
	for _, d := range f.docs {
		if int(bm) >= 1 && int(bm) <= len(d.bookmarks) {
			return d
		}
	}
	return nil
}

func (f *Fake) BookmarkTitle(bm engine.BookmarkHandle) string {
	f.mu.Lock()
	defer f.mu.Unlock()
	if d := f.bookmarkDoc(bm); d != nil {
		return d.bookmarks[int(bm)-1].title
	}
	return ""
}

func (f *Fake) BookmarkDestPage(doc engine.DocumentHandle, bm engine.BookmarkHandle) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	d := f.docs[doc]
	idx := int(bm) - 1
	if d == nil || idx < 0 || idx >= len(d.bookmarks) {
		return -1
	}
	return d.bookmarks[idx].page
}

func (f *Fake) MetaText(doc engine.DocumentHandle, tag string) string {
	f.mu.Lock()
	defer f.mu.Unlock()
	if d := f.docs[doc]; d != nil {
		return d.fx.Meta[tag]
	}
	return ""
}
