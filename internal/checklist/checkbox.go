package checklist

import (
	"strconv"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/text"
	"github.com/yuin/goldmark/util"
)

// KindCheckbox is the node kind of a checkbox marker.
var KindCheckbox = ast.NewNodeKind("Checkbox")

// CheckboxNode is an inline `[ ]` or `[x]` marker.
type CheckboxNode struct {
	ast.BaseInline

	Checked bool
	// Segment covers the marker in the source.
	Segment text.Segment
}

// Kind implements ast.Node.Kind.
func (n *CheckboxNode) Kind() ast.NodeKind {
	return KindCheckbox
}

// Dump implements ast.Node.Dump.
func (n *CheckboxNode) Dump(source []byte, level int) {
	ast.DumpHelper(n, source, level, map[string]string{
		"Checked": strconv.FormatBool(n.Checked),
	}, nil)
}

// Marker renders the checkbox the way it is written in a document.
func (n *CheckboxNode) Marker() string {
	return marker(n.Checked)
}

type checkboxParser struct{}

// NewCheckboxParser returns an inline parser that recognises checkbox
// markers wherever inline text is scanned.
func NewCheckboxParser() parser.InlineParser {
	return &checkboxParser{}
}

func (p *checkboxParser) Trigger() []byte {
	return []byte{'['}
}

func (p *checkboxParser) Parse(parent ast.Node, block text.Reader, pc parser.Context) ast.Node {
	line, segment := block.PeekLine()
	n, checked, ok := scanMarker(line)
	if !ok {
		return nil
	}
	block.Advance(n)
	return &CheckboxNode{
		Checked: checked,
		Segment: text.NewSegment(segment.Start, segment.Start+n),
	}
}

// scanMarker matches `[]`, `[ ]` or `[x]` at the start of line.
func scanMarker(line []byte) (n int, checked bool, ok bool) {
	if len(line) < 2 || line[0] != '[' {
		return 0, false, false
	}
	if line[1] == ']' {
		return 2, false, true
	}
	if len(line) < 3 || line[2] != ']' {
		return 0, false, false
	}
	switch line[1] {
	case ' ':
		return 3, false, true
	case 'x':
		return 3, true, true
	}
	return 0, false, false
}

type checkboxExtension struct{}

// Checkbox is the goldmark extension that adds checkbox markers. It runs
// ahead of the link parser so `[ ]` never becomes a link label.
var Checkbox goldmark.Extender = &checkboxExtension{}

func (e *checkboxExtension) Extend(m goldmark.Markdown) {
	m.Parser().AddOptions(parser.WithInlineParsers(
		util.Prioritized(NewCheckboxParser(), 150),
	))
}

func marker(checked bool) string {
	if checked {
		return "[x]"
	}
	return "[ ]"
}
