package pdfstamp

import (
	"errors"
	"fmt"
)

// ErrAlreadyStamped is returned by Apply when the source already carries an
// annotation layer and the configuration asks to reject it.
var ErrAlreadyStamped = errors.New("pdfstamp: document already has an annotation layer")

// DocumentAccessError reports a document that cannot be opened or read,
// or a page number outside the document.
type DocumentAccessError struct {
	Op   string
	Page int // 0 when the failure is not tied to a page
	Err  error
}

func (e *DocumentAccessError) Error() string {
	return formatError("document access", e.Op, e.Page, e.Err)
}

func (e *DocumentAccessError) Unwrap() error { return e.Err }

// RenderError reports a failure while drawing overlay content.
type RenderError struct {
	Op   string
	Page int
	Err  error
}

func (e *RenderError) Error() string {
	return formatError("render", e.Op, e.Page, e.Err)
}

func (e *RenderError) Unwrap() error { return e.Err }

// UnsupportedTargetSizeError reports a target size that is unknown or has no usable dimensions.
type UnsupportedTargetSizeError struct {
	Name string
	ID   int
}

func (e *UnsupportedTargetSizeError) Error() string {
	if e.Name != "" {
		return fmt.Sprintf("pdfstamp: size [%s] not supported", e.Name)
	}
	return fmt.Sprintf("pdfstamp: size id %d not supported", e.ID)
}

func formatError(kind, op string, page int, err error) string {
	msg := "pdfstamp: " + kind
	if op != "" {
		msg += ": " + op
	}
	if page > 0 {
		msg += fmt.Sprintf(" (page %d)", page)
	}
	if err != nil {
		msg += ": " + err.Error()
	}
	return msg
}
