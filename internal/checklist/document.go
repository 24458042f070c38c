package checklist

import (
	"errors"
	"path/filepath"
	"strings"
)

// ErrEmptyText is returned when an item would be created without any text.
var ErrEmptyText = errors.New("checklist: item text is required")

// Item is a single checkable entry. Items carry no identity beyond the
// pointer held by their owning Document.
type Item struct {
	Checked bool
	Text    string
}

// Document is a titled, ordered checklist backed by one file.
type Document struct {
	// Path is the file the document was read from and will be written back to.
	Path  string
	Title string
	Items []*Item
}

// NewDocument returns an empty document for path titled after the file name.
func NewDocument(path string) *Document {
	return &Document{Path: path, Title: DisplayName(path)}
}

// DisplayName is the fallback title for a document stored at path.
func DisplayName(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// Append adds an unchecked item to the end of the document.
func (d *Document) Append(text string) (*Item, error) {
	text = normalizeText(text)
	if text == "" {
		return nil, ErrEmptyText
	}
	item := &Item{Text: text}
	d.Items = append(d.Items, item)
	return item, nil
}

// Remove deletes the given items by reference and reports how many were
// removed. The remaining items keep their relative order.
func (d *Document) Remove(items ...*Item) int {
	if len(items) == 0 || len(d.Items) == 0 {
		return 0
	}
	drop := make(map[*Item]struct{}, len(items))
	for _, item := range items {
		if item != nil {
			drop[item] = struct{}{}
		}
	}
	kept := d.Items[:0]
	removed := 0
	for _, item := range d.Items {
		if _, ok := drop[item]; ok {
			removed++
			continue
		}
		kept = append(kept, item)
	}
	for i := len(kept); i < len(d.Items); i++ {
		d.Items[i] = nil
	}
	d.Items = kept
	return removed
}

// Toggle flips the checked state of item if it belongs to the document and
// returns the new state.
func (d *Document) Toggle(item *Item) bool {
	if d.IndexOf(item) < 0 {
		return false
	}
	item.Checked = !item.Checked
	return item.Checked
}

// IndexOf returns the position of item, or -1.
func (d *Document) IndexOf(item *Item) int {
	if item == nil {
		return -1
	}
	for i, candidate := range d.Items {
		if candidate == item {
			return i
		}
	}
	return -1
}

// Progress reports how many items are checked out of the total.
func (d *Document) Progress() (done, total int) {
	for _, item := range d.Items {
		if item.Checked {
			done++
		}
	}
	return done, len(d.Items)
}

func normalizeText(text string) string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")
	return strings.TrimSpace(strings.ReplaceAll(text, "\n", " "))
}
