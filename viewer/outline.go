package viewer

import (
	"github.com/wudi/pdfview/engine"
)

// OutlineItem is one bookmark with its destination page (-1 when the
// bookmark carries no destination) and nested children.
type OutlineItem struct {
	Title    string
	Page     int
	Children []OutlineItem
}

// Outline extracts the document's bookmark tree. Read-only: bookmark
// edits are not persisted through this layer.
func (c *Controller) Outline() ([]OutlineItem, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.doc == 0 {
		return nil, ErrNoDocument
	}
	return c.outlineLevel(0), nil
}

// outlineLevel walks the sibling chain starting at parent's first
// child. Callers must hold c.mu.
func (c *Controller) outlineLevel(parent engine.BookmarkHandle) []OutlineItem {
	var items []OutlineItem
	bm, ok := c.eng.BookmarkFirstChild(c.doc, parent)
	for ok {
		items = append(items, OutlineItem{
			Title:    c.eng.BookmarkTitle(bm),
			Page:     c.eng.BookmarkDestPage(c.doc, bm),
			Children: c.outlineLevel(bm),
		})
		bm, ok = c.eng.BookmarkNextSibling(c.doc, bm)
	}
	return items
}

// Metadata holds the standard info-dictionary fields. Absent fields
// are empty strings.
type Metadata struct {
	Title        string
	Author       string
	Subject      string
	Keywords     string
	Creator      string
	Producer     string
	CreationDate string
	ModDate      string
}

// Metadata reads the document information dictionary.
func (c *Controller) Metadata() (Metadata, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.doc == 0 {
		return Metadata{}, ErrNoDocument
	}
	return Metadata{
		Title:        c.eng.MetaText(c.doc, "Title"),
		Author:       c.eng.MetaText(c.doc, "Author"),
		Subject:      c.eng.MetaText(c.doc, "Subject"),
		Keywords:     c.eng.MetaText(c.doc, "Keywords"),
		Creator:      c.eng.MetaText(c.doc, "Creator"),
		Producer:     c.eng.MetaText(c.doc, "Producer"),
		CreationDate: c.eng.MetaText(c.doc, "CreationDate"),
		ModDate:      c.eng.MetaText(c.doc, "ModDate"),
	}, nil
}
