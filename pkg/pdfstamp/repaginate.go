package pdfstamp

import (
	"bytes"
	"fmt"
	"math"
	"strings"
)

// Trigger is a set of reasons to rebuild a stamped document.
type Trigger uint8

const (
	TriggerRescale Trigger = 1 << iota // A named target size was requested
	TriggerSelect                      // Only some pages are kept

	TriggerNone Trigger = 0
)

// Triggers evaluates which repagination triggers apply to a request.
// Keeping a page subset always needs a rebuilt document, even when the
// target size equals the source size.
func Triggers(size TargetSize, sel PageSelection) Trigger {
	t := TriggerNone
	if !size.IsOriginal() {
		t |= TriggerRescale
	}
	if !sel.IsEmpty() {
		t |= TriggerSelect
	}
	return t
}

// Has reports whether every trigger in x is set in t.
func (t Trigger) Has(x Trigger) bool {
	return t&x == x
}

func (t Trigger) String() string {
	if t == TriggerNone {
		return "none"
	}
	var parts []string
	if t.Has(TriggerRescale) {
		parts = append(parts, "rescale")
	}
	if t.Has(TriggerSelect) {
		parts = append(parts, "select")
	}
	return strings.Join(parts, "|")
}

// Placement positions a scaled page inside a target rectangle.
type Placement struct {
	Scale   float64 // Uniform scale factor applied to both axes
	OffsetX float64 // Offset of the lower-left corner from the target's lower-left corner
	OffsetY float64
}

// FitPage scales page uniformly so that it fits inside target without
// cropping, and centers it.
func FitPage(page, target Rectangle) Placement {
	scale := math.Min(target.Width()/page.Width(), target.Height()/page.Height())
	return Placement{
		Scale:   scale,
		OffsetX: (target.Width() - page.Width()*scale) / 2,
		OffsetY: (target.Height() - page.Height()*scale) / 2,
	}
}

// TargetRect returns the output page rectangle for size. The rectangle is
// rotated when the reference page is landscape, so orientation survives the
// rescale. For Original the second result is false: every page keeps its
// own size.
func TargetRect(size TargetSize, reference PageGeometry) (Rectangle, bool) {
	if size.IsOriginal() {
		return Rectangle{}, false
	}
	r := size.Rect()
	if reference.IsLandscape() {
		r = r.Rotate()
	}
	return r, true
}

// Repaginate rebuilds stamped as a new document containing the pages kept
// by sel, in order, each scaled to fit and centered on a page of the target
// size. last is the geometry of the last page the stamper kept; it decides
// the orientation of the target rectangle.
func Repaginate(codec Codec, stamped []byte, sel PageSelection, size TargetSize, last PageGeometry) ([]byte, error) {
	if err := size.Validate(); err != nil {
		return nil, err
	}

	doc, err := codec.Open(stamped)
	if err != nil {
		return nil, asAccessError("open", 0, err)
	}
	defer doc.Close()

	count := doc.PageCount()
	if err := sel.Validate(count); err != nil {
		return nil, err
	}
	if sel.Count(count) == 0 {
		return nil, &DocumentAccessError{Op: "repaginate", Err: fmt.Errorf("no pages to keep")}
	}

	target, fixed := TargetRect(size, last)
	initial := target
	if !fixed {
		first := 1
		for !sel.Includes(first) {
			first++
		}
		g, err := ResolveGeometry(doc, first)
		if err != nil {
			return nil, err
		}
		initial = g.Rect()
	}

	var buf bytes.Buffer
	c, err := codec.NewComposer(initial, &buf)
	if err != nil {
		return nil, asRenderError("new document", 0, err)
	}
	closed := false
	defer func() {
		if !closed {
			c.Close()
		}
	}()

	for i := 1; i <= count; i++ {
		if !sel.Includes(i) {
			continue
		}

		pageSize := target
		if !fixed {
			g, err := ResolveGeometry(doc, i)
			if err != nil {
				return nil, err
			}
			pageSize = g.Rect()
		}

		if err := c.NewPage(pageSize); err != nil {
			return nil, asRenderError("new page", i, err)
		}
		tpl, err := c.ImportPage(doc, i)
		if err != nil {
			return nil, asAccessError("import page", i, err)
		}
		if tpl.Width() <= 0 || tpl.Height() <= 0 {
			return nil, &DocumentAccessError{
				Op:   "import page",
				Page: i,
				Err:  fmt.Errorf("empty page box %.2fx%.2f", tpl.Width(), tpl.Height()),
			}
		}

		p := FitPage(NewRectangle(tpl.Width(), tpl.Height()), pageSize)
		if err := c.DrawTemplate(tpl, p.Scale, p.Scale, p.OffsetX, p.OffsetY); err != nil {
			return nil, asRenderError("draw page", i, err)
		}
	}

	closed = true
	if err := c.Close(); err != nil {
		return nil, asRenderError("write document", 0, err)
	}
	return buf.Bytes(), nil
}
