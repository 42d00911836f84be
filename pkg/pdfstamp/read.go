package pdfstamp

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"sync"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
)

// fpdfCodec reads documents with pdfcpu and writes them with fpdf, importing
// existing pages through gofpdi.
type fpdfCodec struct {
	layerName string
	debug     bool
}

// NewCodec returns the default codec. The layer name and debug flag of
// config are applied to overlay writers.
func NewCodec(config Config) Codec {
	return &fpdfCodec{
		layerName: config.LayerName,
		debug:     config.Debug,
	}
}

var disableConfigDir sync.Once

// pdfDocument is a parsed source document.
type pdfDocument struct {
	data  []byte        // Document rewritten with a classic cross-reference table
	rs    io.ReadSeeker // Reads data; shared by every gofpdi import of this document
	pages []PageGeometry
}

func (c *fpdfCodec) Open(src []byte) (Document, error) {
	return readDocument(src)
}

// readDocument parses src with pdfcpu and records the effective size of
// every page.
func readDocument(src []byte) (*pdfDocument, error) {
	if len(src) == 0 {
		return nil, &DocumentAccessError{Op: "open", Err: errors.New("input PDF data is empty")}
	}

	ctx, err := readContext(src)
	if err != nil {
		return nil, &DocumentAccessError{Op: "open", Err: err}
	}

	pages := make([]PageGeometry, 0, ctx.PageCount)
	for i := 1; i <= ctx.PageCount; i++ {
		_, _, inh, err := ctx.PageDict(i, false)
		if err != nil {
			return nil, &DocumentAccessError{Op: "read page", Page: i, Err: err}
		}
		if inh == nil || inh.MediaBox == nil {
			return nil, &DocumentAccessError{Op: "read page", Page: i, Err: errors.New("missing MediaBox")}
		}
		pages = append(pages, rotatedGeometry(inh.MediaBox.Width(), inh.MediaBox.Height(), inh.Rotate))
	}

	// gofpdi cannot follow cross-reference streams or object streams, so
	// every import reads the document as pdfcpu writes it back out.
	var normalized bytes.Buffer
	if err := api.WriteContext(ctx, &normalized); err != nil {
		return nil, &DocumentAccessError{Op: "normalize", Err: err}
	}

	return &pdfDocument{
		data:  normalized.Bytes(),
		rs:    bytes.NewReader(normalized.Bytes()),
		pages: pages,
	}, nil
}

// newConfiguration returns a pdfcpu configuration that writes plain objects
// and a classic cross-reference table.
func newConfiguration() *model.Configuration {
	// pdfcpu would otherwise create a configuration directory on first use.
	disableConfigDir.Do(func() { model.ConfigPath = "disable" })

	conf := model.NewDefaultConfiguration()
	conf.WriteObjectStream = false
	conf.WriteXRefStream = false
	return conf
}

// readContext parses and validates data.
func readContext(data []byte) (*model.Context, error) {
	ctx, err := api.ReadValidateAndOptimize(bytes.NewReader(data), newConfiguration())
	if err != nil {
		return nil, err
	}
	if err := ctx.EnsurePageCount(); err != nil {
		return nil, err
	}
	return ctx, nil
}

// rotatedGeometry folds a /Rotate value into the page size.
func rotatedGeometry(w, h float64, rotate int) PageGeometry {
	rotate = ((rotate % 360) + 360) % 360
	if rotate == 90 || rotate == 270 {
		w, h = h, w
	}
	return PageGeometry{Width: w, Height: h}
}

func (d *pdfDocument) PageCount() int {
	return len(d.pages)
}

func (d *pdfDocument) PageGeometry(page int) (PageGeometry, error) {
	if page < 1 || page > len(d.pages) {
		return PageGeometry{}, &DocumentAccessError{
			Op:   "page geometry",
			Page: page,
			Err:  fmt.Errorf("page out of range 1..%d", len(d.pages)),
		}
	}
	return d.pages[page-1], nil
}

func (d *pdfDocument) Close() error {
	d.data = nil
	d.rs = nil
	d.pages = nil
	return nil
}

// sourceDocument unwraps a Document opened by this codec.
func sourceDocument(doc Document) (*pdfDocument, error) {
	d, ok := doc.(*pdfDocument)
	if !ok {
		return nil, fmt.Errorf("unsupported document type %T", doc)
	}
	if d.rs == nil {
		return nil, errors.New("document is closed")
	}
	return d, nil
}

// recoverPanic turns a panic inside gofpdi into an error.
func recoverPanic(err *error) {
	if r := recover(); r != nil {
		if e, ok := r.(error); ok {
			*err = e
		} else {
			*err = fmt.Errorf("%v", r)
		}
	}
}
