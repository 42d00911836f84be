// Package pdfstamp stamps header, footer and date text onto existing PDF
// documents and optionally rebuilds them at a different paper size.
//
// Processing runs in four steps:
//
// - The geometry of the first page is resolved, with page rotation applied
// - Header, footer and date stamp are positioned for that geometry (Plan)
// - The text is drawn on top of the existing page content (Stamp)
// - When a target size or a page subset is requested, a new document is built
// from scaled, centered copies of the kept pages (Repaginate)
//
// Stamping is strictly additive: the original page content is imported as a
// whole and the annotations are drawn over it inside their own optional
// content layer. Repagination never distorts a page; every page is scaled by
// a single factor so that it fits the target sheet.
//
// The document format itself is handled by a Codec. NewCodec returns the
// default implementation built on fpdf, gofpdi and pdfcpu.
//
// Main Functions:
//
// - Apply: Runs the whole pipeline on an in-memory PDF
// - ApplyFile: Reads a PDF from disk and runs Apply
// - Plan, Stamp, Repaginate: The individual steps
package pdfstamp

import (
	"errors"
	"fmt"
	"os"
	"time"
)

// Job describes what to stamp and how to lay out the result.
type Job struct {
	Header    string
	Footer    string
	PrintDate bool
	Date      time.Time // Date for the date stamp; zero means now

	Size          TargetSize    // Output paper size; the zero value keeps the source size
	Pages         PageSelection // Pages to keep; empty keeps all
	OnlyFirstPage bool          // Shorthand for Pages = {1}

	Extra []TextAnnotation // Additional annotations drawn after the planned ones
}

// Selection returns the pages kept by the job.
func (j Job) Selection() PageSelection {
	if j.OnlyFirstPage {
		return NewPageSelection(1)
	}
	return NewPageSelection(j.Pages...)
}

func (j Job) overlay() OverlayRequest {
	return OverlayRequest{
		Header:    j.Header,
		Footer:    j.Footer,
		PrintDate: j.PrintDate,
		Date:      j.Date,
	}
}

// ApplyFile reads the PDF at path and runs Apply on it.
func ApplyFile(path string, job Job, config Config) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &DocumentAccessError{Op: "read file", Err: err}
	}
	return Apply(data, job, config)
}

// Apply stamps the job's annotations onto src and repaginates the result
// when the job asks for a target size or a page subset. The returned slice
// holds a complete PDF document.
func Apply(src []byte, job Job, config Config) ([]byte, error) {
	if len(src) == 0 {
		return nil, &DocumentAccessError{Op: "open", Err: errors.New("input PDF data is empty")}
	}
	if err := job.Size.Validate(); err != nil {
		return nil, err
	}

	logger := getLogger(config)
	codec := config.codec()
	sel := job.Selection()

	// Display PDF structure debug if requested
	if config.DumpPDF {
		dumpPDFStructure(src, 2000, logger)
	}

	geometry, pageCount, err := inspect(codec, src)
	if err != nil {
		return nil, err
	}
	if err := sel.Validate(pageCount); err != nil {
		return nil, err
	}

	annotations := Plan(geometry, job.overlay())
	annotations = append(annotations, job.Extra...)

	if config.Debug {
		fmt.Fprintf(logger, "Debug: first page %s, %d pages\n", geometry, pageCount)
		for i, a := range annotations {
			fmt.Fprintf(logger, "Debug: annotation %d %q at (%.0f, %.0f) size %.0f %s pages %v\n",
				i+1, a.Text, a.X, a.Y, a.FontSize, a.Align, a.Pages)
		}
	}

	if len(annotations) > 0 {
		if err := checkStampLayer(src, config); err != nil {
			return nil, err
		}
	}

	stamped, err := Stamp(codec, src, sel, annotations, config.font())
	if err != nil {
		return nil, fmt.Errorf("error stamping document: %w", err)
	}

	triggers := Triggers(job.Size, sel)
	if triggers == TriggerNone {
		return stamped.Data, nil
	}

	if config.Debug {
		fmt.Fprintf(logger, "Debug: repaginating (%s) to %s, pages %v\n", triggers, job.Size, sel)
	}
	out, err := Repaginate(codec, stamped.Data, sel, job.Size, stamped.Last)
	if err != nil {
		return nil, fmt.Errorf("error repaginating document: %w", err)
	}
	return out, nil
}

// inspect returns the geometry of the first page and the page count.
func inspect(codec Codec, src []byte) (PageGeometry, int, error) {
	doc, err := codec.Open(src)
	if err != nil {
		return PageGeometry{}, 0, asAccessError("open", 0, err)
	}
	defer doc.Close()

	g, err := ResolveGeometry(doc, 1)
	if err != nil {
		return PageGeometry{}, 0, err
	}
	return g, doc.PageCount(), nil
}

// checkStampLayer looks for the annotation layer of an earlier run.
func checkStampLayer(src []byte, config Config) error {
	if config.LayerName == "" {
		return nil
	}
	logger := getLogger(config)

	result, err := DetectStampLayer(src, config.LayerName)
	if err != nil {
		return fmt.Errorf("layer detection failed: %w", err)
	}

	if config.LogWarnings {
		for _, warning := range result.Warnings {
			fmt.Fprintln(logger, "Warning:", warning)
		}
	}
	if !result.HasStampLayer {
		return nil
	}

	if config.RejectRestamp && !config.Force {
		return fmt.Errorf("%w (layer '%s') - use -force to stamp again", ErrAlreadyStamped, result.StampLayerName)
	}
	if config.LogWarnings {
		fmt.Fprintf(logger, "Warning: document already has layer '%s'; stamping again adds a second set of annotations\n",
			result.StampLayerName)
	}
	return nil
}
