package pdfstamp

import (
	"bytes"
	"errors"
	"io"
	"strings"
	"testing"

	"codeberg.org/go-pdf/fpdf"
	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/types"
)

// makePDF renders a document with one page per geometry, each carrying its
// page number as text.
func makePDF(t *testing.T, pages ...PageGeometry) []byte {
	t.Helper()

	pdf := fpdf.New("P", "pt", "", "")
	pdf.SetAutoPageBreak(false, 0)
	pdf.SetFont("Helvetica", "", 24)
	for i, g := range pages {
		pdf.AddPageFormat("P", fpdf.SizeType{Wd: g.Width, Ht: g.Height})
		pdf.Text(72, 144, "Page "+string(rune('1'+i)))
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		t.Fatalf("cannot create test PDF: %v", err)
	}
	return buf.Bytes()
}

// packPDF rewrites src with object streams and a cross-reference stream.
func packPDF(t *testing.T, src []byte) []byte {
	t.Helper()

	conf := newConfiguration()
	conf.WriteObjectStream = true
	conf.WriteXRefStream = true

	var buf bytes.Buffer
	if err := api.Optimize(bytes.NewReader(src), &buf, conf); err != nil {
		t.Fatalf("cannot pack test PDF: %v", err)
	}
	if !bytes.Contains(buf.Bytes(), []byte("/ObjStm")) {
		t.Fatal("packed test PDF has no object stream")
	}
	return buf.Bytes()
}

// rotatePDF sets /Rotate on every page of src.
func rotatePDF(t *testing.T, src []byte, rotate int) []byte {
	t.Helper()

	ctx, err := readContext(src)
	if err != nil {
		t.Fatalf("cannot read test PDF: %v", err)
	}
	for i := 1; i <= ctx.PageCount; i++ {
		d, _, _, err := ctx.PageDict(i, false)
		if err != nil {
			t.Fatalf("cannot read page %d: %v", i, err)
		}
		d["Rotate"] = types.Integer(rotate)
	}

	var buf bytes.Buffer
	if err := api.WriteContext(ctx, &buf); err != nil {
		t.Fatalf("cannot write rotated PDF: %v", err)
	}
	return buf.Bytes()
}

// pageContent returns the decoded content streams of a page.
func pageContent(t *testing.T, data []byte, page int) string {
	t.Helper()

	ctx, err := readContext(data)
	if err != nil {
		t.Fatalf("cannot read output: %v", err)
	}
	d, _, _, err := ctx.PageDict(page, false)
	if err != nil {
		t.Fatalf("cannot read page %d: %v", page, err)
	}
	content, err := ctx.PageContent(d)
	if err != nil {
		t.Fatalf("cannot decode page %d content: %v", page, err)
	}
	return string(content)
}

func defaultTestConfig() Config {
	config := DefaultConfig()
	config.Logger = io.Discard
	return config
}

func readPages(t *testing.T, data []byte) []PageGeometry {
	t.Helper()
	doc, err := readDocument(data)
	if err != nil {
		t.Fatalf("cannot read output: %v", err)
	}
	defer doc.Close()
	return append([]PageGeometry(nil), doc.pages...)
}

func TestReadDocumentGeometry(t *testing.T) {
	src := makePDF(t, a4Portrait, a4Landscape)

	got := readPages(t, src)
	if len(got) != 2 {
		t.Fatalf("got %d pages, want 2", len(got))
	}
	for i, want := range []PageGeometry{a4Portrait, a4Landscape} {
		if !almostEqual(got[i].Width, want.Width, 0.01) || !almostEqual(got[i].Height, want.Height, 0.01) {
			t.Errorf("page %d = %v, want %v", i+1, got[i], want)
		}
	}
}

func TestRotatedGeometry(t *testing.T) {
	tests := []struct {
		rotate int
		want   PageGeometry
	}{
		{0, PageGeometry{595, 842}},
		{90, PageGeometry{842, 595}},
		{180, PageGeometry{595, 842}},
		{270, PageGeometry{842, 595}},
		{-90, PageGeometry{842, 595}},
		{450, PageGeometry{842, 595}},
	}
	for _, tt := range tests {
		if got := rotatedGeometry(595, 842, tt.rotate); got != tt.want {
			t.Errorf("rotatedGeometry(595, 842, %d) = %v, want %v", tt.rotate, got, tt.want)
		}
	}
}

func TestOpenInvalidDocument(t *testing.T) {
	codec := NewCodec(defaultTestConfig())
	var accessErr *DocumentAccessError

	if _, err := codec.Open(nil); !errors.As(err, &accessErr) {
		t.Errorf("Open(nil) error = %v, want *DocumentAccessError", err)
	}
	if _, err := codec.Open([]byte("%PDF-1.4\nthis is not a pdf")); !errors.As(err, &accessErr) {
		t.Errorf("Open(corrupt) error = %v, want *DocumentAccessError", err)
	}
}

func TestApplyDefaultCodecStamps(t *testing.T) {
	src := makePDF(t, a4Portrait, a4Portrait)
	config := defaultTestConfig()

	out, err := Apply(src, Job{Header: "Order 4711", Footer: "Internal", PrintDate: true}, config)
	if err != nil {
		t.Fatalf("Apply() error: %v", err)
	}

	pages := readPages(t, out)
	if len(pages) != 2 {
		t.Fatalf("got %d pages, want 2", len(pages))
	}
	for i, g := range pages {
		if !almostEqual(g.Width, 595, 0.01) || !almostEqual(g.Height, 842, 0.01) {
			t.Errorf("page %d = %v, want 595x842", i+1, g)
		}
	}

	result, err := DetectStampLayer(out, config.LayerName)
	if err != nil {
		t.Fatalf("DetectStampLayer() error: %v", err)
	}
	if !result.HasStampLayer {
		t.Errorf("annotation layer not found, layers: %q", result.Layers)
	}

	config.RejectRestamp = true
	if _, err := Apply(out, Job{Header: "again"}, config); !errors.Is(err, ErrAlreadyStamped) {
		t.Errorf("second Apply() error = %v, want ErrAlreadyStamped", err)
	}
}

func TestApplyDefaultCodecRepaginates(t *testing.T) {
	a3 := PageGeometry{Width: 842, Height: 1191}
	src := makePDF(t, a3, a3, a3)

	out, err := Apply(src, Job{Header: "H", Size: A4, Pages: PageSelection{1, 3}}, defaultTestConfig())
	if err != nil {
		t.Fatalf("Apply() error: %v", err)
	}

	pages := readPages(t, out)
	if len(pages) != 2 {
		t.Fatalf("got %d pages, want 2", len(pages))
	}
	for i, g := range pages {
		if !almostEqual(g.Width, A4.Width, 0.01) || !almostEqual(g.Height, A4.Height, 0.01) {
			t.Errorf("page %d = %v, want %v", i+1, g, A4)
		}
	}
}

func TestApplyDefaultCodecKeepsLandscape(t *testing.T) {
	src := makePDF(t, PageGeometry{Width: 1191, Height: 842})

	out, err := Apply(src, Job{Footer: "F", Size: A4}, defaultTestConfig())
	if err != nil {
		t.Fatalf("Apply() error: %v", err)
	}

	pages := readPages(t, out)
	if len(pages) != 1 {
		t.Fatalf("got %d pages, want 1", len(pages))
	}
	if !almostEqual(pages[0].Width, A4.Height, 0.01) || !almostEqual(pages[0].Height, A4.Width, 0.01) {
		t.Errorf("page = %v, want landscape A4", pages[0])
	}
}

func TestApplyDefaultCodecOriginalSelection(t *testing.T) {
	src := makePDF(t, a4Portrait, a4Landscape)

	out, err := Apply(src, Job{Pages: PageSelection{2}}, defaultTestConfig())
	if err != nil {
		t.Fatalf("Apply() error: %v", err)
	}
	pages := readPages(t, out)
	if len(pages) != 1 || !almostEqual(pages[0].Width, 842, 0.01) || !almostEqual(pages[0].Height, 595, 0.01) {
		t.Errorf("pages = %v, want a single 842x595 page", pages)
	}
}

func TestApplyDefaultCodecUnencodableText(t *testing.T) {
	src := makePDF(t, a4Portrait)

	_, err := Apply(src, Job{Header: "漢字"}, defaultTestConfig())
	var renderErr *RenderError
	if !errors.As(err, &renderErr) {
		t.Fatalf("Apply() error = %v, want *RenderError", err)
	}
	if renderErr.Page != 1 {
		t.Errorf("error page = %d, want 1", renderErr.Page)
	}
}

func TestApplyDefaultCodecDrawsOnTop(t *testing.T) {
	src := makePDF(t, a4Portrait)

	out, err := Apply(src, Job{Header: "Order (4711)"}, defaultTestConfig())
	if err != nil {
		t.Fatalf("Apply() error: %v", err)
	}

	content := pageContent(t, out, 1)
	source := strings.Index(content, "(Page 1) Tj")
	stamp := strings.Index(content, `(Order \(4711\)) Tj`)
	if source < 0 || stamp < 0 {
		t.Fatalf("content is missing the page text or the header:\n%s", content)
	}
	if stamp < source {
		t.Error("header is drawn below the page content")
	}
	for _, want := range []string{"/OC /StampOC BDC", "/StampF1 8.00 Tf", "1 0 0 1 46.00 814.00 Tm"} {
		if !strings.Contains(content, want) {
			t.Errorf("content missing %q:\n%s", want, content)
		}
	}
}

func TestApplyDefaultCodecKeepsLinks(t *testing.T) {
	const uri = "https://example.com/orders/4711"

	pdf := fpdf.New("P", "pt", "", "")
	pdf.SetFont("Helvetica", "", 12)
	pdf.AddPageFormat("P", fpdf.SizeType{Wd: a4Portrait.Width, Ht: a4Portrait.Height})
	pdf.Text(72, 144, "Open order")
	pdf.LinkString(72, 130, 120, 20, uri)
	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		t.Fatalf("cannot create test PDF: %v", err)
	}

	out, err := Apply(buf.Bytes(), Job{Header: "H"}, defaultTestConfig())
	if err != nil {
		t.Fatalf("Apply() error: %v", err)
	}

	ctx, err := readContext(out)
	if err != nil {
		t.Fatalf("cannot read output: %v", err)
	}
	d, _, _, err := ctx.PageDict(1, false)
	if err != nil {
		t.Fatalf("cannot read page: %v", err)
	}
	annots, err := ctx.DereferenceArray(d["Annots"])
	if err != nil {
		t.Fatalf("cannot read annotations: %v", err)
	}
	if len(annots) != 1 {
		t.Errorf("got %d annotations, want the link", len(annots))
	}
	if !bytes.Contains(out, []byte(uri)) {
		t.Errorf("link target %q missing from output", uri)
	}
}

func TestApplyDefaultCodecObjectStreams(t *testing.T) {
	src := packPDF(t, makePDF(t, a4Portrait, a4Portrait))

	doc, err := readDocument(src)
	if err != nil {
		t.Fatalf("readDocument() error: %v", err)
	}
	if bytes.Contains(doc.data, []byte("/ObjStm")) {
		t.Error("normalized document still uses object streams")
	}
	doc.Close()

	out, err := Apply(src, Job{Header: "H"}, defaultTestConfig())
	if err != nil {
		t.Fatalf("Apply() error: %v", err)
	}
	if pages := readPages(t, out); len(pages) != 2 {
		t.Errorf("stamped: got %d pages, want 2", len(pages))
	}

	out, err = Apply(src, Job{Header: "H", Size: A3}, defaultTestConfig())
	if err != nil {
		t.Fatalf("Apply() with repagination error: %v", err)
	}
	pages := readPages(t, out)
	if len(pages) != 2 {
		t.Fatalf("repaginated: got %d pages, want 2", len(pages))
	}
	for i, g := range pages {
		if !almostEqual(g.Width, A3.Width, 0.01) || !almostEqual(g.Height, A3.Height, 0.01) {
			t.Errorf("page %d = %v, want %v", i+1, g, A3)
		}
	}
}

func TestApplyDefaultCodecRotatedPage(t *testing.T) {
	src := rotatePDF(t, makePDF(t, a4Portrait), 90)

	if got := readPages(t, src); len(got) != 1 || got[0] != a4Landscape {
		t.Fatalf("rotated source pages = %v, want %v", got, a4Landscape)
	}

	out, err := Apply(src, Job{Header: "H", PrintDate: true}, defaultTestConfig())
	if err != nil {
		t.Fatalf("Apply() error: %v", err)
	}
	if got := readPages(t, out); len(got) != 1 || got[0] != a4Landscape {
		t.Errorf("stamped pages = %v, want %v", got, a4Landscape)
	}
	// Header at (50, 28) from the top left of the page as displayed.
	content := pageContent(t, out, 1)
	for _, want := range []string{"0.00000 1.00000 -1.00000 0.00000 595.00000 0.00000 cm", "1 0 0 1 50.00 567.00 Tm"} {
		if !strings.Contains(content, want) {
			t.Errorf("content missing %q:\n%s", want, content)
		}
	}

	out, err = Apply(src, Job{Header: "H", Size: A4}, defaultTestConfig())
	if err != nil {
		t.Fatalf("Apply() with repagination error: %v", err)
	}
	pages := readPages(t, out)
	if len(pages) != 1 {
		t.Fatalf("got %d pages, want 1", len(pages))
	}
	if !almostEqual(pages[0].Width, A4.Height, 0.01) || !almostEqual(pages[0].Height, A4.Width, 0.01) {
		t.Errorf("page = %v, want landscape A4", pages[0])
	}
}

func TestOverlayMatrix(t *testing.T) {
	apply := func(m [6]float64, u, v float64) [2]float64 {
		return [2]float64{m[0]*u + m[2]*v + m[4], m[1]*u + m[3]*v + m[5]}
	}

	// Media box at (10, 20), 595 by 842.
	tests := []struct {
		rotate   int
		u, v     float64
		want     [2]float64
		describe string
	}{
		{0, 0, 0, [2]float64{10, 20}, "bottom left stays"},
		{0, 595, 842, [2]float64{605, 862}, "top right stays"},
		{90, 0, 0, [2]float64{605, 20}, "shown bottom left is the bottom right corner"},
		{90, 0, 595, [2]float64{10, 20}, "shown top left is the bottom left corner"},
		{180, 0, 0, [2]float64{605, 862}, "shown bottom left is the top right corner"},
		{270, 0, 0, [2]float64{10, 862}, "shown bottom left is the top left corner"},
		{-90, 842, 0, [2]float64{10, 20}, "shown bottom right is the bottom left corner"},
	}
	for _, tt := range tests {
		got := apply(overlayMatrix(10, 20, 595, 842, tt.rotate), tt.u, tt.v)
		if got != tt.want {
			t.Errorf("rotate %d (%v, %v) = %v, want %v: %s", tt.rotate, tt.u, tt.v, got, tt.want, tt.describe)
		}
	}
}

func TestStandardFont(t *testing.T) {
	tests := []struct {
		font FontConfig
		want string
	}{
		{FontConfig{Name: "Helvetica", Style: "B"}, "Helvetica-Bold"},
		{FontConfig{Name: "Arial"}, "Helvetica"},
		{FontConfig{Name: "Times"}, "Times-Roman"},
		{FontConfig{Name: "Times", Style: "BI"}, "Times-BoldItalic"},
		{FontConfig{Name: "Courier", Style: "I"}, "Courier-Oblique"},
	}
	for _, tt := range tests {
		got, err := standardFont(tt.font)
		if err != nil {
			t.Errorf("standardFont(%+v) error: %v", tt.font, err)
			continue
		}
		if got != tt.want {
			t.Errorf("standardFont(%+v) = %q, want %q", tt.font, got, tt.want)
		}
	}

	if _, err := standardFont(FontConfig{Name: "Comic Sans"}); err == nil {
		t.Error("standardFont(Comic Sans) should fail")
	}
}
