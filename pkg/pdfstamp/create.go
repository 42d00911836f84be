package pdfstamp

import (
	"errors"
	"fmt"
	"io"

	"codeberg.org/go-pdf/fpdf"
	"codeberg.org/go-pdf/fpdf/contrib/gofpdi"
)

// composer builds a new fpdf document out of pages imported with gofpdi.
type composer struct {
	pdf      *fpdf.Fpdf
	importer *gofpdi.Importer
	out      io.Writer
	page     Rectangle // Size of the current page
	pages    int
	closed   bool
}

// template is a page imported into a composer.
type template struct {
	id     int
	width  float64
	height float64
}

func (t *template) Width() float64  { return t.width }
func (t *template) Height() float64 { return t.height }

func (c *fpdfCodec) NewComposer(size Rectangle, out io.Writer) (Composer, error) {
	if size.IsZero() {
		return nil, &RenderError{Op: "new document", Err: fmt.Errorf("invalid page size %.2fx%.2f", size.Width(), size.Height())}
	}

	pdf := fpdf.NewCustom(&fpdf.InitType{
		OrientationStr: "P",
		UnitStr:        "pt",
		Size:           fpdf.SizeType{Wd: size.Width(), Ht: size.Height()},
	})
	pdf.SetAutoPageBreak(false, 0)
	pdf.SetCompression(true)

	return &composer{
		pdf:      pdf,
		importer: gofpdi.NewImporter(),
		out:      out,
		page:     size,
	}, nil
}

func (c *composer) NewPage(size Rectangle) error {
	if size.IsZero() {
		return fmt.Errorf("invalid page size %.2fx%.2f", size.Width(), size.Height())
	}
	c.pdf.AddPageFormat("P", fpdf.SizeType{Wd: size.Width(), Ht: size.Height()})
	c.page = size
	c.pages++
	return c.pdf.Error()
}

func (c *composer) ImportPage(src Document, page int) (_ Template, err error) {
	d, err := sourceDocument(src)
	if err != nil {
		return nil, err
	}
	g, err := d.PageGeometry(page)
	if err != nil {
		return nil, err
	}

	defer recoverPanic(&err)
	id := c.importer.ImportPageFromStream(c.pdf, &d.rs, page, "/MediaBox")
	if err := c.pdf.Error(); err != nil {
		return nil, err
	}
	return &template{id: id, width: g.Width, height: g.Height}, nil
}

// DrawTemplate places t with its lower-left corner at (offsetX, offsetY).
func (c *composer) DrawTemplate(t Template, scaleX, scaleY, offsetX, offsetY float64) (err error) {
	tpl, ok := t.(*template)
	if !ok {
		return fmt.Errorf("unsupported template type %T", t)
	}
	if c.pages == 0 {
		return errors.New("no current page")
	}

	w := tpl.width * scaleX
	h := tpl.height * scaleY
	top := c.page.Height() - offsetY - h

	defer recoverPanic(&err)
	c.importer.UseImportedTemplate(c.pdf, tpl.id, offsetX, top, w, h)
	return c.pdf.Error()
}

func (c *composer) Close() error {
	if c.closed {
		return nil
	}
	c.closed = true

	if c.pages == 0 {
		return errors.New("document has no pages")
	}
	if err := c.pdf.Output(c.out); err != nil {
		return fmt.Errorf("failed to generate PDF: %w", err)
	}
	return nil
}
