package checklist

import (
	"bytes"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

// Codec converts between checklist documents and their markdown form.
type Codec struct {
	md goldmark.Markdown
}

// NewCodec returns a codec whose parser understands checkbox markers.
func NewCodec() *Codec {
	return &Codec{md: goldmark.New(goldmark.WithExtensions(Checkbox))}
}

// Parse reads a checklist document. The last top-level heading becomes the
// title; items of every top-level list are concatenated in order. Blocks of
// any other type are ignored.
func (c *Codec) Parse(src []byte, path string) (*Document, error) {
	source := normalizeNewlines(src)
	root := c.md.Parser().Parse(text.NewReader(source))
	doc := NewDocument(path)
	for node := root.FirstChild(); node != nil; node = node.NextSibling() {
		switch block := node.(type) {
		case *ast.Heading:
			doc.Title = unescapeClosingHashes(linesText(block.Lines(), 0, source))
		case *ast.List:
			items, err := listItems(block, source)
			if err != nil {
				err.Path = path
				return nil, err
			}
			doc.Items = append(doc.Items, items...)
		}
	}
	return doc, nil
}

// Serialize renders doc in canonical form.
func (c *Codec) Serialize(doc *Document) []byte {
	return Serialize(doc)
}

// Serialize renders a heading line followed by one list line per item.
// Formatting of the file it was parsed from is not preserved.
func Serialize(doc *Document) []byte {
	var buf bytes.Buffer
	buf.WriteString(strings.TrimRight("# "+escapeClosingHashes(singleLine(doc.Title)), " "))
	buf.WriteByte('\n')
	for _, item := range doc.Items {
		buf.WriteString("- ")
		buf.WriteString(marker(item.Checked))
		buf.WriteByte(' ')
		buf.WriteString(singleLine(item.Text))
		buf.WriteByte('\n')
	}
	return buf.Bytes()
}

func listItems(list *ast.List, source []byte) ([]*Item, *MalformedDocumentError) {
	var items []*Item
	for child := list.FirstChild(); child != nil; child = child.NextSibling() {
		li, ok := child.(*ast.ListItem)
		if !ok {
			continue
		}
		item, err := parseItem(li, source)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, nil
}

func parseItem(li *ast.ListItem, source []byte) (*Item, *MalformedDocumentError) {
	first := li.FirstChild()
	if first == nil {
		return nil, &MalformedDocumentError{Reason: "empty list item"}
	}
	line := firstLine(first, source)
	if first.Kind() != ast.KindParagraph && first.Kind() != ast.KindTextBlock {
		return nil, &MalformedDocumentError{Line: line, Reason: "list item does not start with text"}
	}
	box, ok := first.FirstChild().(*CheckboxNode)
	if !ok {
		return nil, &MalformedDocumentError{Line: line, Reason: "list item has no checkbox marker"}
	}
	content := linesText(first.Lines(), box.Segment.Stop, source)
	if content == "" {
		return nil, &MalformedDocumentError{Line: line, Reason: "list item has no text after its checkbox"}
	}
	if next := first.NextSibling(); next != nil {
		return nil, &MalformedDocumentError{Line: blockLine(next, source), Reason: "list item has nested content"}
	}
	return &Item{Checked: box.Checked, Text: content}, nil
}

// linesText joins the trimmed source of lines from offset onward with single
// spaces.
func linesText(lines *text.Segments, offset int, source []byte) string {
	var parts []string
	for i := 0; i < lines.Len(); i++ {
		seg := lines.At(i)
		if seg.Stop <= offset {
			continue
		}
		start := seg.Start
		if start < offset {
			start = offset
		}
		if part := strings.TrimSpace(string(source[start:seg.Stop])); part != "" {
			parts = append(parts, part)
		}
	}
	return strings.Join(parts, " ")
}

func firstLine(node ast.Node, source []byte) int {
	lines := node.Lines()
	if lines == nil || lines.Len() == 0 {
		return 0
	}
	return bytes.Count(source[:lines.At(0).Start], []byte("\n")) + 1
}

// blockLine is firstLine for container blocks, which carry no lines of
// their own.
func blockLine(node ast.Node, source []byte) int {
	for n := node; n != nil; n = n.FirstChild() {
		if line := firstLine(n, source); line > 0 {
			return line
		}
	}
	return 0
}

// escapeClosingHashes protects a trailing run of '#' that a heading parser
// would otherwise drop as an ATX closing sequence.
func escapeClosingHashes(title string) string {
	run := len(title) - len(strings.TrimRight(title, "#"))
	if run == 0 {
		return title
	}
	start := len(title) - run
	if start > 0 && title[start-1] != ' ' && title[start-1] != '\\' {
		return title
	}
	return title[:start] + "\\" + title[start:]
}

func unescapeClosingHashes(title string) string {
	run := len(title) - len(strings.TrimRight(title, "#"))
	if run == 0 || run == len(title) {
		return title
	}
	start := len(title) - run
	if title[start-1] != '\\' {
		return title
	}
	return title[:start-1] + title[start:]
}

func singleLine(value string) string {
	value = strings.ReplaceAll(value, "\r", "")
	return strings.TrimSpace(strings.ReplaceAll(value, "\n", " "))
}

func normalizeNewlines(content []byte) []byte {
	return bytes.ReplaceAll(content, []byte("\r\n"), []byte("\n"))
}
