package pdfstamp

import (
	"bytes"
	"fmt"
)

// lineGap is the extra space between consecutive lines of one annotation.
const lineGap = 2

// StampResult is the output of Stamp.
type StampResult struct {
	Data      []byte       // Complete stamped document
	Last      PageGeometry // Geometry of the last page kept by the selection
	PageCount int          // Number of pages in the document
}

// Stamp draws annotations on top of the pages of src that are kept by sel.
// Pages outside the selection are copied unchanged. When no annotation
// applies to any kept page the source bytes are returned as they are.
//
// Any drawing failure aborts the whole operation; no partial output is returned.
func Stamp(codec Codec, src []byte, sel PageSelection, annotations []TextAnnotation, font FontConfig) (StampResult, error) {
	for i, a := range annotations {
		if err := a.Validate(); err != nil {
			return StampResult{}, fmt.Errorf("annotation %d: %w", i+1, err)
		}
	}

	doc, err := codec.Open(src)
	if err != nil {
		return StampResult{}, asAccessError("open", 0, err)
	}
	defer doc.Close()

	res := StampResult{PageCount: doc.PageCount()}

	for _, a := range annotations {
		for _, p := range a.Pages {
			if p > res.PageCount {
				return StampResult{}, &DocumentAccessError{
					Op:   "validate annotation",
					Page: p,
					Err:  fmt.Errorf("document has %d pages", res.PageCount),
				}
			}
		}
	}

	// Resolve every kept page up front; the flip from top-down annotation
	// positions to page coordinates needs each page's own height.
	geometries := make(map[int]PageGeometry)
	var pages []int
	for i := 1; i <= res.PageCount; i++ {
		if !sel.Includes(i) {
			continue
		}
		g, err := ResolveGeometry(doc, i)
		if err != nil {
			return StampResult{}, err
		}
		res.Last = g
		if annotationsOnPage(annotations, i) {
			geometries[i] = g
			pages = append(pages, i)
		}
	}

	if len(pages) == 0 {
		res.Data = append([]byte(nil), src...)
		return res, nil
	}

	var buf bytes.Buffer
	w, err := codec.NewOverlayWriter(doc, &buf)
	if err != nil {
		return StampResult{}, asAccessError("open overlay writer", 0, err)
	}
	closed := false
	defer func() {
		if !closed {
			w.Close()
		}
	}()

	for _, i := range pages {
		surface, err := w.Surface(i)
		if err != nil {
			return StampResult{}, asRenderError("overlay surface", i, err)
		}
		for _, a := range annotations {
			if !a.OnPage(i) {
				continue
			}
			if err := drawAnnotation(surface, a, geometries[i].Height, font); err != nil {
				return StampResult{}, asRenderError("draw text", i, err)
			}
		}
	}

	closed = true
	if err := w.Close(); err != nil {
		return StampResult{}, asRenderError("write stamped document", 0, err)
	}
	res.Data = buf.Bytes()
	return res, nil
}

// drawAnnotation draws one annotation as a single text block, one line
// below the other.
func drawAnnotation(s Surface, a TextAnnotation, pageHeight float64, font FontConfig) error {
	if err := s.BeginText(); err != nil {
		return err
	}
	if err := s.SetFont(font, a.FontSize); err != nil {
		return err
	}
	lineHeight := a.FontSize + lineGap
	for n, line := range splitLines(a.Text) {
		y := pageHeight - a.Y - float64(n)*lineHeight
		if err := s.ShowText(a.Align, line, a.X, y); err != nil {
			return fmt.Errorf("line %d: %w", n+1, err)
		}
	}
	return s.EndText()
}

func annotationsOnPage(annotations []TextAnnotation, page int) bool {
	for _, a := range annotations {
		if a.OnPage(page) && len(splitLines(a.Text)) > 0 {
			return true
		}
	}
	return false
}
