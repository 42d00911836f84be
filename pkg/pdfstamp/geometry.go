package pdfstamp

import "fmt"

// ResolveGeometry returns the effective size of page (1-based) in doc.
// The codec folds page rotation into the result, so a portrait sheet
// rotated by 90 degrees comes back as landscape.
func ResolveGeometry(doc Document, page int) (PageGeometry, error) {
	if page < 1 || page > doc.PageCount() {
		return PageGeometry{}, &DocumentAccessError{
			Op:   "resolve geometry",
			Page: page,
			Err:  fmt.Errorf("page out of range 1..%d", doc.PageCount()),
		}
	}
	g, err := doc.PageGeometry(page)
	if err != nil {
		return PageGeometry{}, asAccessError("resolve geometry", page, err)
	}
	return g, nil
}

// ResolveGeometryBytes opens src with codec and resolves a single page.
func ResolveGeometryBytes(codec Codec, src []byte, page int) (PageGeometry, error) {
	doc, err := codec.Open(src)
	if err != nil {
		return PageGeometry{}, asAccessError("open", 0, err)
	}
	defer doc.Close()

	return ResolveGeometry(doc, page)
}

// asAccessError keeps typed errors from the codec and wraps anything else.
func asAccessError(op string, page int, err error) error {
	switch err.(type) {
	case *DocumentAccessError, *RenderError, *UnsupportedTargetSizeError:
		return err
	}
	return &DocumentAccessError{Op: op, Page: page, Err: err}
}

// asRenderError keeps typed errors from the codec and wraps anything else.
func asRenderError(op string, page int, err error) error {
	switch err.(type) {
	case *DocumentAccessError, *RenderError, *UnsupportedTargetSizeError:
		return err
	}
	return &RenderError{Op: op, Page: page, Err: err}
}
