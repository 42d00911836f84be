package pdfstamp

import (
	"fmt"
	"sort"
)

// largeFormatThreshold separates large sheets (A3 and up) from letter/A4 class sheets.
const largeFormatThreshold = 1000

// PageGeometry is the effective size of a rendered page in points,
// with any page rotation already applied.
type PageGeometry struct {
	Width  float64
	Height float64
}

// IsLandscape reports whether the page is wider than it is tall.
func (g PageGeometry) IsLandscape() bool {
	return g.Width > g.Height
}

// IsLargeFormat reports whether either side exceeds the large sheet threshold.
func (g PageGeometry) IsLargeFormat() bool {
	return g.Width > largeFormatThreshold || g.Height > largeFormatThreshold
}

// IsA3OrLandscape selects the placement table used by the overlay planner.
func (g PageGeometry) IsA3OrLandscape() bool {
	return g.IsLargeFormat() || g.IsLandscape()
}

// Rect returns the geometry as a rectangle anchored at the origin.
func (g PageGeometry) Rect() Rectangle {
	return NewRectangle(g.Width, g.Height)
}

func (g PageGeometry) String() string {
	return fmt.Sprintf("%.2fx%.2f", g.Width, g.Height)
}

// Rectangle is an axis aligned box in first-quadrant coordinates.
type Rectangle struct {
	X0, Y0 float64
	X1, Y1 float64
}

// NewRectangle returns a w by h rectangle with its lower-left corner at (0,0).
func NewRectangle(w, h float64) Rectangle {
	return Rectangle{X1: w, Y1: h}
}

// Width returns the horizontal extent of r.
func (r Rectangle) Width() float64 {
	return r.X1 - r.X0
}

// Height returns the vertical extent of r.
func (r Rectangle) Height() float64 {
	return r.Y1 - r.Y0
}

// Rotate returns a copy of r with width and height swapped.
func (r Rectangle) Rotate() Rectangle {
	return Rectangle{X0: r.Y0, Y0: r.X0, X1: r.Y1, Y1: r.X1}
}

// IsZero reports whether r has no area.
func (r Rectangle) IsZero() bool {
	return r.Width() <= 0 || r.Height() <= 0
}

// Alignment controls how a line of text is anchored at its x position.
type Alignment int

const (
	AlignLeft Alignment = iota
	AlignCenter
	AlignRight
)

func (a Alignment) String() string {
	switch a {
	case AlignLeft:
		return "left"
	case AlignCenter:
		return "center"
	case AlignRight:
		return "right"
	}
	return fmt.Sprintf("Alignment(%d)", int(a))
}

// TextAnnotation is a block of text to be stamped onto one or more pages.
type TextAnnotation struct {
	Text string // May contain line breaks; each non-empty line is drawn separately

	// Position of the first baseline. X is measured from the left edge,
	// Y from the top edge of the page.
	X float64
	Y float64

	FontSize float64
	Pages    []int // 1-based page numbers; empty means every page
	Align    Alignment
}

// OnPage reports whether the annotation is drawn on the given page.
// An annotation without a page list is drawn on every page.
func (t TextAnnotation) OnPage(page int) bool {
	if len(t.Pages) == 0 {
		return true
	}
	for _, p := range t.Pages {
		if p == page {
			return true
		}
	}
	return false
}

// Validate checks the font size and page numbers of the annotation.
func (t TextAnnotation) Validate() error {
	if t.FontSize <= 0 {
		return &RenderError{Op: "validate annotation", Err: fmt.Errorf("font size must be positive, got %v", t.FontSize)}
	}
	for _, p := range t.Pages {
		if p < 1 {
			return &RenderError{Op: "validate annotation", Err: fmt.Errorf("page numbers start at 1, got %d", p)}
		}
	}
	if t.Align < AlignLeft || t.Align > AlignRight {
		return &RenderError{Op: "validate annotation", Err: fmt.Errorf("unknown alignment %v", t.Align)}
	}
	return nil
}

// PageSelection is an ascending set of 1-based page numbers to keep.
// The empty selection keeps every page.
type PageSelection []int

// NewPageSelection sorts and de-duplicates pages.
func NewPageSelection(pages ...int) PageSelection {
	if len(pages) == 0 {
		return nil
	}
	sorted := append([]int(nil), pages...)
	sort.Ints(sorted)

	sel := sorted[:0]
	for i, p := range sorted {
		if i > 0 && p == sorted[i-1] {
			continue
		}
		sel = append(sel, p)
	}
	return PageSelection(sel)
}

// Includes reports whether page is retained. The stamper and the
// repaginator both filter pages through this method.
func (s PageSelection) Includes(page int) bool {
	if len(s) == 0 {
		return true
	}
	for _, p := range s {
		if p == page {
			return true
		}
	}
	return false
}

// IsEmpty reports whether the selection keeps every page.
func (s PageSelection) IsEmpty() bool {
	return len(s) == 0
}

// Count returns the number of pages retained from a document of pageCount pages.
func (s PageSelection) Count(pageCount int) int {
	if len(s) == 0 {
		return pageCount
	}
	n := 0
	for _, p := range s {
		if p >= 1 && p <= pageCount {
			n++
		}
	}
	return n
}

// Validate rejects page numbers outside 1..pageCount.
func (s PageSelection) Validate(pageCount int) error {
	for _, p := range s {
		if p < 1 || p > pageCount {
			return &DocumentAccessError{
				Op:   "select pages",
				Page: p,
				Err:  fmt.Errorf("document has %d pages", pageCount),
			}
		}
	}
	return nil
}
