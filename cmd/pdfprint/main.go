// pdfprint is a command-line tool that stamps a PDF and sends it straight to a
// network printer.
//
// The print job is described in a YAML file:
//
//	printer: "10.0.0.20"        # host or host:port, port 9100 when omitted
//	header: "Order 4711"
//	footer: "Internal use only"
//	print_date: true
//	size: "A4"                  # Original, A4 or A3 (default A4)
//	pages: [1, 3]               # pages to print, all when omitted
//	only_first_page: false
//	layer_name: "Print Annotations"
//	timeout: "30s"
//
// Usage:
//
//	pdfprint -config job.yml -pdf input.pdf [options]
//
// Required flags:
//
//	-config string   Path to the YAML job file
//	-pdf string      Path to the input PDF
//
// Options:
//
//	-printer string  Printer address, overrides the job file
//	-output string   Also save the stamped PDF to this path
//	-debug           Draw annotations in red and print placement details
//
// Example:
//
//	pdfprint -config job.yml -pdf order.pdf -printer 10.0.0.21:9100
package main

import (
	"bytes"
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/gardar/pdfstamp/pkg/pdfstamp"
	"github.com/gardar/pdfstamp/pkg/rawprint"
)

type yamlConfig struct {
	Printer       string        `yaml:"printer"`
	Header        string        `yaml:"header"`
	Footer        string        `yaml:"footer"`
	PrintDate     bool          `yaml:"print_date"`
	Size          string        `yaml:"size"`
	Pages         []int         `yaml:"pages"`
	OnlyFirstPage bool          `yaml:"only_first_page"`
	LayerName     string        `yaml:"layer_name"`
	Timeout       time.Duration `yaml:"timeout"`
}

// printJob is a loaded job file.
type printJob struct {
	Printer string
	Job     pdfstamp.Job
	Layer   string
	Timeout time.Duration
}

// loadConfig reads a YAML job file and converts it to a stamping job
func loadConfig(path string) (*printJob, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return parseConfig(data)
}

func parseConfig(data []byte) (*printJob, error) {
	yc := yamlConfig{
		Size:      pdfstamp.A4.Name,
		LayerName: pdfstamp.DefaultConfig().LayerName,
	}
	if err := yaml.Unmarshal(data, &yc); err != nil {
		return nil, err
	}

	size, err := pdfstamp.LookupTargetSize(yc.Size)
	if err != nil {
		return nil, err
	}
	for _, p := range yc.Pages {
		if p < 1 {
			return nil, fmt.Errorf("page %d is out of range", p)
		}
	}

	return &printJob{
		Printer: yc.Printer,
		Job: pdfstamp.Job{
			Header:        yc.Header,
			Footer:        yc.Footer,
			PrintDate:     yc.PrintDate,
			Size:          size,
			Pages:         pdfstamp.NewPageSelection(yc.Pages...),
			OnlyFirstPage: yc.OnlyFirstPage,
		},
		Layer:   yc.LayerName,
		Timeout: yc.Timeout,
	}, nil
}

// sendOptions names the print job after the input file.
func (j *printJob) sendOptions(pdfPath string) rawprint.Options {
	return rawprint.Options{Timeout: j.Timeout, JobName: filepath.Base(pdfPath)}
}

func main() {
	configPath := flag.String("config", "", "Path to the job YAML file (required)")
	pdfPath := flag.String("pdf", "", "Path to the input PDF file (required)")
	printer := flag.String("printer", "", "Printer address (host or host:port), overrides the job file")
	outputPath := flag.String("output", "", "Path to also save the stamped PDF")
	debug := flag.Bool("debug", false, "Enable debug mode")
	flag.Parse()

	if *configPath == "" || *pdfPath == "" {
		fmt.Fprintln(os.Stderr, "Error: -config and -pdf flags are required")
		fmt.Fprintln(os.Stderr, "Usage:")
		flag.PrintDefaults()
		os.Exit(1)
	}

	job, err := loadConfig(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if *printer != "" {
		job.Printer = *printer
	}
	if job.Printer == "" && *outputPath == "" {
		log.Fatalf("No printer configured; set printer in %s or use -printer", *configPath)
	}

	config := pdfstamp.DefaultConfig()
	config.Debug = *debug
	config.LayerName = job.Layer

	fmt.Println("Stamping PDF file:", *pdfPath)
	stamped, err := pdfstamp.ApplyFile(*pdfPath, job.Job, config)
	if err != nil {
		log.Fatalf("Error stamping document: %v", err)
	}

	if *outputPath != "" {
		if err := os.WriteFile(*outputPath, stamped, 0644); err != nil {
			log.Fatalf("Failed to write stamped PDF: %v", err)
		}
		fmt.Println("Stamped PDF saved to:", *outputPath)
	}

	if job.Printer == "" {
		return
	}
	if err := rawprint.Send(context.Background(), job.Printer, bytes.NewReader(stamped), job.sendOptions(*pdfPath)); err != nil {
		log.Fatalf("Failed to print: %v", err)
	}
	fmt.Printf("Sent %d bytes to printer %s\n", len(stamped), job.Printer)
}
