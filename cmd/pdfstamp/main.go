// pdfstamp is a command-line tool for stamping print annotations onto PDFs.
//
// It draws a header, a footer and a print date on the first page of an existing
// PDF and can rebuild the document at another paper size or with only some of
// its pages. Pages are scaled uniformly and centered, so nothing is cropped or
// distorted.
//
// Usage:
//
//	pdfstamp -pdf document.pdf -output stamped.pdf [options]
//
// Required flags:
//
//	-pdf string       Path to the input PDF
//	-output string    Output PDF path
//
// Annotation options:
//
//	-header string    Header text (use \n for several lines)
//	-footer string    Footer text
//	-date             Stamp the current date ("Print DD.MM.YYYY")
//	-layer string     Name of the layer holding the annotations (default "Print Annotations")
//
// Layout options:
//
//	-size string      Output paper size: Original, A4 or A3 (default Original)
//	-pages string     Comma separated list of pages to keep, e.g. 1,3
//	-first-page       Keep only the first page
//
// Processing options:
//
//	-debug            Draw annotations in red and print placement details
//	-force            Stamp even if the document already has an annotation layer
//	-overwrite        Overwrite output file if it exists
//	-debug-pdf        Dump PDF structure for debugging
//
// Examples:
//
// Stamp a header and the date:
//
//	pdfstamp -pdf order.pdf -output order_print.pdf -header "Order 4711" -date
//
// Print pages 1 and 3 on A4:
//
//	pdfstamp -pdf plan.pdf -output plan_a4.pdf -size A4 -pages 1,3
package main

import (
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/gardar/pdfstamp/pkg/pdfstamp"
)

func main() {
	pdfPath := flag.String("pdf", "", "Path to the input PDF")
	outputPath := flag.String("output", "", "Output PDF path")
	header := flag.String("header", "", "Header text drawn at the top left of the first page")
	footer := flag.String("footer", "", "Footer text drawn at the bottom left of the first page")
	printDate := flag.Bool("date", false, "Stamp the current date at the top right of the first page")
	size := flag.String("size", "Original", "Output paper size ("+strings.Join(pdfstamp.TargetSizeNames(), ", ")+")")
	pages := flag.String("pages", "", "Comma-separated list of pages to keep (1-based)")
	firstPage := flag.Bool("first-page", false, "Keep only the first page")
	layerName := flag.String("layer", pdfstamp.DefaultConfig().LayerName, "Name of the annotation layer")
	debug := flag.Bool("debug", false, "Enable debug mode")
	force := flag.Bool("force", false, "Stamp again even if an annotation layer is already detected")
	overwriteOutput := flag.Bool("overwrite", false, "Overwrite the output PDF if it already exists")
	dumpPDF := flag.Bool("debug-pdf", false, "Dump PDF structure for debugging")
	flag.Parse()

	if *pdfPath == "" || *outputPath == "" {
		fmt.Println("Error: Must provide -pdf and -output")
		flag.PrintDefaults()
		os.Exit(1)
	}

	if _, err := os.Stat(*outputPath); err == nil {
		if !*overwriteOutput {
			fmt.Printf("Output file %s already exists. Use -overwrite to overwrite.\n", *outputPath)
			os.Exit(1)
		}
	}

	targetSize, err := pdfstamp.LookupTargetSize(*size)
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}

	selection, err := parsePages(*pages)
	if err != nil {
		fmt.Printf("Error: invalid -pages: %v\n", err)
		os.Exit(1)
	}
	if *firstPage && len(selection) > 0 {
		fmt.Println("Warning: -first-page overrides -pages. Ignoring -pages.")
	}

	config := pdfstamp.DefaultConfig()
	config.Debug = *debug
	config.Force = *force
	config.RejectRestamp = true
	config.LayerName = *layerName
	config.DumpPDF = *dumpPDF

	job := pdfstamp.Job{
		Header:        unescapeNewlines(*header),
		Footer:        unescapeNewlines(*footer),
		PrintDate:     *printDate,
		Size:          targetSize,
		Pages:         selection,
		OnlyFirstPage: *firstPage,
	}

	finalPDF, err := pdfstamp.ApplyFile(*pdfPath, job, config)
	if err != nil {
		fmt.Printf("Error stamping PDF: %v\n", err)
		os.Exit(1)
	}

	if err := os.WriteFile(*outputPath, finalPDF, 0666); err != nil {
		fmt.Printf("Failed to write output PDF: %v\n", err)
		os.Exit(1)
	}
	fmt.Println("✅ Stamped PDF created:", *outputPath)
}

// parsePages turns "1, 3,5" into a page selection.
func parsePages(s string) (pdfstamp.PageSelection, error) {
	var pages []int
	for _, field := range strings.Split(s, ",") {
		field = strings.TrimSpace(field)
		if field == "" {
			continue
		}
		n, err := strconv.Atoi(field)
		if err != nil {
			return nil, fmt.Errorf("page %q is not a number", field)
		}
		if n < 1 {
			return nil, fmt.Errorf("page %d is out of range", n)
		}
		pages = append(pages, n)
	}
	return pdfstamp.NewPageSelection(pages...), nil
}

// unescapeNewlines lets shell users write multi-line text as "a\nb".
func unescapeNewlines(s string) string {
	return strings.ReplaceAll(s, `\n`, "\n")
}
