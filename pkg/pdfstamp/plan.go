package pdfstamp

import (
	"time"
)

// OverlayRequest describes the stamps wanted on the first page.
type OverlayRequest struct {
	Header    string
	Footer    string
	PrintDate bool
	Date      time.Time // Date printed by the date stamp; zero means now
}

// placement is one row of the position table, in points.
type placement struct {
	marginX      float64
	topY         float64
	footerOffset float64
	fontSize     float64
}

var (
	standardPlacement = placement{marginX: 46, topY: 28, footerOffset: 21, fontSize: 8}
	largePlacement    = placement{marginX: 50, topY: 28, footerOffset: 20, fontSize: 12}
)

// firstPage restricts planned annotations to the first page.
func firstPage() []int { return []int{1} }

// Plan positions the header, footer and date stamp for a page of the given
// geometry. Empty header or footer text is skipped.
func Plan(geometry PageGeometry, req OverlayRequest) []TextAnnotation {
	p := standardPlacement
	if geometry.IsA3OrLandscape() {
		p = largePlacement
	}

	// Positions are integer Point coordinates, so page sizes are truncated
	// first: an A4 date lands at x=545, not 545.28.
	width := float64(int(geometry.Width))
	height := float64(int(geometry.Height))

	var texts []TextAnnotation
	if req.Header != "" {
		texts = append(texts, TextAnnotation{
			Text:     req.Header,
			X:        p.marginX,
			Y:        p.topY,
			FontSize: p.fontSize,
			Pages:    firstPage(),
			Align:    AlignLeft,
		})
	}
	if req.Footer != "" {
		texts = append(texts, TextAnnotation{
			Text:     req.Footer,
			X:        p.marginX,
			Y:        height - p.footerOffset,
			FontSize: p.fontSize,
			Pages:    firstPage(),
			Align:    AlignLeft,
		})
	}
	if req.PrintDate {
		date := req.Date
		if date.IsZero() {
			date = time.Now()
		}
		texts = append(texts, TextAnnotation{
			Text:     DateStamp(date),
			X:        width - p.marginX,
			Y:        p.topY,
			FontSize: p.fontSize,
			Pages:    firstPage(),
			Align:    AlignRight,
		})
	}
	return texts
}

// DateStamp formats the date stamp text, e.g. "Print 03.01.2024".
func DateStamp(t time.Time) string {
	return "Print " + t.Format("02.01.2006")
}
