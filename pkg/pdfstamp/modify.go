package pdfstamp

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	"codeberg.org/go-pdf/fpdf"
	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/types"
)

// Resource names of the overlay inside each page's resource dictionary.
const (
	overlayFontPrefix = "StampF"
	overlayLayerName  = "StampOC"
)

// overlayWriter adds annotations to the source document in place. Each
// stamped page gets a font resource and one more content stream; its existing
// content, annotations and the document catalog are kept.
type overlayWriter struct {
	ctx      *model.Context
	doc      *pdfDocument
	out      io.Writer
	layer    string
	debug    bool
	measure  *fpdf.Fpdf                    // Measures text for alignment
	fonts    map[string]*types.IndirectRef // Font dictionaries by base font
	ocg      *types.IndirectRef            // Optional content group, created on first use
	surfaces []*surface
	last     int // Last page a surface was requested for
	closed   bool
}

func (c *fpdfCodec) NewOverlayWriter(doc Document, out io.Writer) (OverlayWriter, error) {
	d, err := sourceDocument(doc)
	if err != nil {
		return nil, &DocumentAccessError{Op: "open overlay writer", Err: err}
	}

	ctx, err := readContext(d.data)
	if err != nil {
		return nil, &DocumentAccessError{Op: "open overlay writer", Err: err}
	}

	return &overlayWriter{
		ctx:     ctx,
		doc:     d,
		out:     out,
		layer:   c.layerName,
		debug:   c.debug,
		measure: fpdf.New("P", "pt", "", ""),
		fonts:   make(map[string]*types.IndirectRef),
	}, nil
}

// Surface returns a surface drawing on top of page. Pages must be requested
// in ascending order.
func (w *overlayWriter) Surface(page int) (Surface, error) {
	if w.closed {
		return nil, fmt.Errorf("overlay writer is closed")
	}
	if page <= w.last {
		return nil, fmt.Errorf("page %d requested after page %d", page, w.last)
	}
	if _, err := w.doc.PageGeometry(page); err != nil {
		return nil, err
	}
	w.last = page

	s := &surface{
		w:     w,
		page:  page,
		fonts: make(map[string]string),
	}
	w.surfaces = append(w.surfaces, s)
	return s, nil
}

// fontRef returns the indirect reference of a standard Type 1 font
// dictionary, adding it to the document on first use.
func (w *overlayWriter) fontRef(baseFont string) (*types.IndirectRef, error) {
	if ref, ok := w.fonts[baseFont]; ok {
		return ref, nil
	}
	ref, err := w.ctx.IndRefForNewObject(types.Dict{
		"Type":     types.Name("Font"),
		"Subtype":  types.Name("Type1"),
		"BaseFont": types.Name(baseFont),
		"Encoding": types.Name("WinAnsiEncoding"),
	})
	if err != nil {
		return nil, err
	}
	w.fonts[baseFont] = ref
	return ref, nil
}

// layerRef returns the optional content group holding the annotations and
// registers it in the catalog's /OCProperties.
func (w *overlayWriter) layerRef() (*types.IndirectRef, error) {
	if w.ocg != nil {
		return w.ocg, nil
	}

	name, err := types.Escape(w.layer)
	if err != nil {
		return nil, err
	}
	ref, err := w.ctx.IndRefForNewObject(types.Dict{
		"Type": types.Name("OCG"),
		"Name": types.StringLiteral(*name),
	})
	if err != nil {
		return nil, err
	}

	root, err := w.ctx.Catalog()
	if err != nil {
		return nil, err
	}
	props, err := w.ctx.DereferenceDict(root["OCProperties"])
	if err != nil {
		return nil, err
	}
	if props == nil {
		props = types.Dict{}
		root["OCProperties"] = props
	}
	groups, err := w.ctx.DereferenceArray(props["OCGs"])
	if err != nil {
		return nil, err
	}
	props["OCGs"] = append(groups, *ref)

	config, err := w.ctx.DereferenceDict(props["D"])
	if err != nil {
		return nil, err
	}
	if config == nil {
		config = types.Dict{}
		props["D"] = config
	}
	order, err := w.ctx.DereferenceArray(config["Order"])
	if err != nil {
		return nil, err
	}
	config["Order"] = append(order, *ref)

	w.ocg = ref
	return ref, nil
}

// attach adds the content drawn on s to its page.
func (w *overlayWriter) attach(s *surface) error {
	pageDict, _, inh, err := w.ctx.PageDict(s.page, false)
	if err != nil {
		return err
	}
	if pageDict == nil || inh == nil || inh.MediaBox == nil {
		return errors.New("page dictionary not found")
	}

	if err := w.attachResources(pageDict, s); err != nil {
		return err
	}

	// The source content is wrapped in q/Q so that a graphics state it leaves
	// behind does not move the overlay.
	var overlay bytes.Buffer
	overlay.WriteString("Q q\n")
	m := overlayMatrix(inh.MediaBox.LL.X, inh.MediaBox.LL.Y, inh.MediaBox.Width(), inh.MediaBox.Height(), inh.Rotate)
	fmt.Fprintf(&overlay, "%.5f %.5f %.5f %.5f %.5f %.5f cm\n", m[0], m[1], m[2], m[3], m[4], m[5])
	overlay.Write(s.buf.Bytes())
	overlay.WriteString("Q\n")

	head, err := w.newContentStream([]byte("q\n"))
	if err != nil {
		return err
	}
	tail, err := w.newContentStream(overlay.Bytes())
	if err != nil {
		return err
	}

	contents := types.Array{*head}
	if obj, ok := pageDict["Contents"]; ok && obj != nil {
		existing, err := w.ctx.Dereference(obj)
		if err != nil {
			return err
		}
		if a, ok := existing.(types.Array); ok {
			contents = append(contents, a...)
		} else if existing != nil {
			contents = append(contents, obj)
		}
	}
	pageDict["Contents"] = append(contents, *tail)
	return nil
}

// attachResources gives the page its own copy of its resource dictionary
// with the overlay's fonts and layer added. Shared or inherited resources
// are left untouched.
func (w *overlayWriter) attachResources(pageDict types.Dict, s *surface) error {
	inherited, err := w.pageResources(pageDict)
	if err != nil {
		return err
	}
	res := types.Dict{}
	for k, v := range inherited {
		res[k] = v
	}

	fonts, err := w.subDict(res, "Font")
	if err != nil {
		return err
	}
	for name, baseFont := range s.fonts {
		ref, err := w.fontRef(baseFont)
		if err != nil {
			return err
		}
		fonts[name] = *ref
	}
	res["Font"] = fonts

	if s.layered {
		ref, err := w.layerRef()
		if err != nil {
			return err
		}
		props, err := w.subDict(res, "Properties")
		if err != nil {
			return err
		}
		props[overlayLayerName] = *ref
		res["Properties"] = props
	}

	pageDict["Resources"] = res
	return nil
}

// pageResources returns the resource dictionary in effect for a page,
// following the page tree upwards when the page inherits it.
func (w *overlayWriter) pageResources(d types.Dict) (types.Dict, error) {
	for d != nil {
		if obj, ok := d["Resources"]; ok {
			return w.ctx.DereferenceDict(obj)
		}
		parent, ok := d["Parent"]
		if !ok {
			break
		}
		var err error
		if d, err = w.ctx.DereferenceDict(parent); err != nil {
			return nil, err
		}
	}
	return nil, nil
}

// subDict returns a copy of the resource category key of res.
func (w *overlayWriter) subDict(res types.Dict, key string) (types.Dict, error) {
	d, err := w.ctx.DereferenceDict(res[key])
	if err != nil {
		return nil, err
	}
	c := types.Dict{}
	for k, v := range d {
		c[k] = v
	}
	return c, nil
}

func (w *overlayWriter) newContentStream(content []byte) (*types.IndirectRef, error) {
	sd, err := w.ctx.NewStreamDictForBuf(content)
	if err != nil {
		return nil, err
	}
	if err := sd.Encode(); err != nil {
		return nil, err
	}
	return w.ctx.IndRefForNewObject(*sd)
}

// Close adds the drawn content to the document and writes it to out.
func (w *overlayWriter) Close() error {
	if w.closed {
		return nil
	}
	w.closed = true

	for _, s := range w.surfaces {
		if err := w.attach(s); err != nil {
			return &RenderError{Op: "attach overlay", Page: s.page, Err: err}
		}
	}
	if err := api.WriteContext(w.ctx, w.out); err != nil {
		return fmt.Errorf("failed to generate PDF: %w", err)
	}
	return nil
}

// overlayMatrix maps positions on the page as displayed, with the origin at
// the lower left corner, into the user space of a media box at (llx, lly)
// of size w by h that is shown rotated clockwise by rotate degrees.
func overlayMatrix(llx, lly, w, h float64, rotate int) [6]float64 {
	switch ((rotate % 360) + 360) % 360 {
	case 90:
		return [6]float64{0, 1, -1, 0, llx + w, lly}
	case 180:
		return [6]float64{-1, 0, 0, -1, llx + w, lly + h}
	case 270:
		return [6]float64{0, -1, 1, 0, llx, lly + h}
	default:
		return [6]float64{1, 0, 0, 1, llx, lly}
	}
}
