package pdfstamp

import (
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// Fake documents are plain text: "FAKE 595x842 842x595". Anything after a
// "%%" token is ignored and can carry extra bytes for layer detection.

func fakePDF(pages ...PageGeometry) []byte {
	var b strings.Builder
	b.WriteString("FAKE")
	for _, p := range pages {
		b.WriteString(" " + strconv.FormatFloat(p.Width, 'g', -1, 64) + "x" + strconv.FormatFloat(p.Height, 'g', -1, 64))
	}
	return []byte(b.String())
}

func parseFake(data []byte) ([]PageGeometry, error) {
	fields := strings.Fields(string(data))
	if len(fields) == 0 || fields[0] != "FAKE" {
		return nil, errors.New("not a fake document")
	}
	var pages []PageGeometry
	for _, f := range fields[1:] {
		if f == "%%" {
			break
		}
		ws, hs, ok := strings.Cut(f, "x")
		if !ok {
			return nil, fmt.Errorf("bad page %q", f)
		}
		w, err := strconv.ParseFloat(ws, 64)
		if err != nil {
			return nil, err
		}
		h, err := strconv.ParseFloat(hs, 64)
		if err != nil {
			return nil, err
		}
		pages = append(pages, PageGeometry{Width: w, Height: h})
	}
	return pages, nil
}

type drawCall struct {
	Page  int
	Text  string
	X, Y  float64
	Align Alignment
	Font  FontConfig
	Size  float64
}

type placedPage struct {
	Size     Rectangle
	Source   int
	Template PageGeometry
	ScaleX   float64
	ScaleY   float64
	OffsetX  float64
	OffsetY  float64
}

// fakeCodec records every drawing operation.
type fakeCodec struct {
	draws    []drawCall
	blocks   int // Completed text blocks
	placed   []placedPage
	opened   int
	closed   int
	overlays int
	failText string // ShowText fails for this line
}

func (c *fakeCodec) Open(src []byte) (Document, error) {
	pages, err := parseFake(src)
	if err != nil {
		return nil, &DocumentAccessError{Op: "open", Err: err}
	}
	c.opened++
	return &fakeDocument{codec: c, pages: pages}, nil
}

func (c *fakeCodec) NewOverlayWriter(doc Document, out io.Writer) (OverlayWriter, error) {
	c.overlays++
	return &fakeOverlay{codec: c, doc: doc.(*fakeDocument), out: out}, nil
}

func (c *fakeCodec) NewComposer(size Rectangle, out io.Writer) (Composer, error) {
	return &fakeComposer{codec: c, out: out}, nil
}

type fakeDocument struct {
	codec *fakeCodec
	pages []PageGeometry
}

func (d *fakeDocument) PageCount() int { return len(d.pages) }

func (d *fakeDocument) PageGeometry(page int) (PageGeometry, error) {
	if page < 1 || page > len(d.pages) {
		return PageGeometry{}, fmt.Errorf("no page %d", page)
	}
	return d.pages[page-1], nil
}

func (d *fakeDocument) Close() error {
	d.codec.closed++
	return nil
}

type fakeOverlay struct {
	codec *fakeCodec
	doc   *fakeDocument
	out   io.Writer
}

func (w *fakeOverlay) Surface(page int) (Surface, error) {
	return &fakeSurface{codec: w.codec, page: page}, nil
}

func (w *fakeOverlay) Close() error {
	_, err := w.out.Write(fakePDF(w.doc.pages...))
	return err
}

type fakeSurface struct {
	codec  *fakeCodec
	page   int
	font   FontConfig
	size   float64
	inText bool
}

func (s *fakeSurface) BeginText() error {
	if s.inText {
		return errors.New("nested text block")
	}
	s.inText = true
	return nil
}

func (s *fakeSurface) SetFont(font FontConfig, size float64) error {
	s.font, s.size = font, size
	return nil
}

func (s *fakeSurface) ShowText(align Alignment, text string, x, y float64) error {
	if !s.inText {
		return errors.New("text outside text block")
	}
	if s.codec.failText != "" && text == s.codec.failText {
		return errors.New("unsupported character")
	}
	s.codec.draws = append(s.codec.draws, drawCall{
		Page: s.page, Text: text, X: x, Y: y, Align: align, Font: s.font, Size: s.size,
	})
	return nil
}

func (s *fakeSurface) EndText() error {
	if !s.inText {
		return errors.New("EndText without BeginText")
	}
	s.inText = false
	s.codec.blocks++
	return nil
}

type fakeTemplate struct {
	source int
	g      PageGeometry
}

func (t *fakeTemplate) Width() float64  { return t.g.Width }
func (t *fakeTemplate) Height() float64 { return t.g.Height }

type fakeComposer struct {
	codec *fakeCodec
	out   io.Writer
	pages []placedPage
}

func (c *fakeComposer) ImportPage(src Document, page int) (Template, error) {
	g, err := src.PageGeometry(page)
	if err != nil {
		return nil, err
	}
	return &fakeTemplate{source: page, g: g}, nil
}

func (c *fakeComposer) NewPage(size Rectangle) error {
	c.pages = append(c.pages, placedPage{Size: size})
	return nil
}

func (c *fakeComposer) DrawTemplate(t Template, scaleX, scaleY, offsetX, offsetY float64) error {
	if len(c.pages) == 0 {
		return errors.New("no page")
	}
	tpl := t.(*fakeTemplate)
	p := &c.pages[len(c.pages)-1]
	p.Source = tpl.source
	p.Template = tpl.g
	p.ScaleX, p.ScaleY = scaleX, scaleY
	p.OffsetX, p.OffsetY = offsetX, offsetY
	return nil
}

func (c *fakeComposer) Close() error {
	c.codec.placed = append(c.codec.placed, c.pages...)
	sizes := make([]PageGeometry, len(c.pages))
	for i, p := range c.pages {
		sizes[i] = PageGeometry{Width: p.Size.Width(), Height: p.Size.Height()}
	}
	_, err := c.out.Write(fakePDF(sizes...))
	return err
}
