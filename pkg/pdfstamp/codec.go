package pdfstamp

import "io"

// Codec is the document capability the engine drives. It opens source
// documents, draws on top of existing pages and composes new documents
// from imported pages. NewCodec returns the fpdf/pdfcpu implementation.
type Codec interface {
	// Open parses src. It fails with a *DocumentAccessError on missing
	// or corrupt input.
	Open(src []byte) (Document, error)

	// NewOverlayWriter starts a copy of doc that can receive additional
	// content on top of the existing pages. The finished document is
	// written to out when the writer is closed; out itself is never closed.
	NewOverlayWriter(doc Document, out io.Writer) (OverlayWriter, error)

	// NewComposer starts an empty document with the given default page
	// size. The document is written to out on Close; out is never closed.
	NewComposer(size Rectangle, out io.Writer) (Composer, error)
}

// Document is an open read handle.
type Document interface {
	PageCount() int
	// PageGeometry returns the size of page (1-based) with rotation applied.
	PageGeometry(page int) (PageGeometry, error)
	Close() error
}

// OverlayWriter hands out drawing surfaces for existing pages. Surfaces
// must be requested in ascending page order.
type OverlayWriter interface {
	Surface(page int) (Surface, error)
	Close() error
}

// Surface draws on top of one page. Coordinates are first quadrant
// (origin lower-left), in points.
type Surface interface {
	BeginText() error
	SetFont(font FontConfig, size float64) error
	ShowText(align Alignment, text string, x, y float64) error
	EndText() error
}

// Composer builds a new document out of imported pages.
type Composer interface {
	ImportPage(src Document, page int) (Template, error)
	NewPage(size Rectangle) error
	// DrawTemplate places t on the current page, scaled by (scaleX, scaleY)
	// with its lower-left corner at (offsetX, offsetY).
	DrawTemplate(t Template, scaleX, scaleY, offsetX, offsetY float64) error
	Close() error
}

// Template is an imported page that can be drawn as a unit.
type Template interface {
	Width() float64
	Height() float64
}
