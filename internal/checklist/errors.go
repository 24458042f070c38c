package checklist

import (
	"errors"
	"fmt"
)

// ErrMalformedDocument matches every MalformedDocumentError.
var ErrMalformedDocument = errors.New("checklist: malformed document")

// MalformedDocumentError reports a list item that is not a checkbox followed
// by text. Such documents are rejected rather than rewritten without the item.
type MalformedDocumentError struct {
	Path string
	// Line is 1-based; zero when the position is unknown.
	Line   int
	Reason string
}

func (e *MalformedDocumentError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("checklist: %s:%d: %s", e.Path, e.Line, e.Reason)
	}
	return fmt.Sprintf("checklist: %s: %s", e.Path, e.Reason)
}

func (e *MalformedDocumentError) Unwrap() error {
	return ErrMalformedDocument
}

// IOError wraps a failed read or write of a document file.
type IOError struct {
	Op   string
	Path string
	Err  error
}

func (e *IOError) Error() string {
	return fmt.Sprintf("checklist: %s %s: %v", e.Op, e.Path, e.Err)
}

func (e *IOError) Unwrap() error {
	return e.Err
}
