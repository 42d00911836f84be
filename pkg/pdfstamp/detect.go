package pdfstamp

import (
	"fmt"
	"regexp"
	"strings"
)

// pdfName matches a PDF literal string and captures its escaped content.
const pdfName = `\(((?:[^()\\]|\\[\s\S])+)\)`

// ocgPatterns match the names of optional content groups in the
// uncompressed object syntax written by common producers.
var ocgPatterns = []*regexp.Regexp{
	regexp.MustCompile(`/Type\s*/OCG\s*/Name\s*` + pdfName),
	regexp.MustCompile(`/OCG\s*<<[^>]*?/Name\s*` + pdfName),
	regexp.MustCompile(`/Name\s*` + pdfName + `[\s\S]{0,50}/Type\s*/OCG`),
}

// detectPDFLayers lists the distinct optional content group names found in
// the raw document bytes, in order of appearance.
func detectPDFLayers(pdfData []byte) ([]string, error) {
	if len(pdfData) == 0 {
		return nil, fmt.Errorf("empty PDF data")
	}

	content := string(pdfData)
	layers := []string{}
	seen := make(map[string]bool)
	for _, re := range ocgPatterns {
		for _, match := range re.FindAllStringSubmatch(content, -1) {
			name := decodeTextString(unescapePDFString(match[1]))
			if !seen[name] {
				seen[name] = true
				layers = append(layers, name)
			}
		}
	}
	return layers, nil
}

// LayerCheckResult contains the results of checking for an annotation layer
type LayerCheckResult struct {
	Layers         []string // All detected layers
	HasStampLayer  bool     // True if the annotation layer exists
	StampLayerName string   // Name of the detected annotation layer (if any)
	Warnings       []string // Any warnings about similar layers
}

// DetectStampLayer checks whether pdfData already contains an optional
// content layer called layerName, as left behind by an earlier run.
func DetectStampLayer(pdfData []byte, layerName string) (LayerCheckResult, error) {
	result := LayerCheckResult{}

	layers, err := detectPDFLayers(pdfData)
	if err != nil {
		return result, fmt.Errorf("cannot analyze layers: %w", err)
	}
	result.Layers = layers
	if layerName == "" {
		return result, nil
	}

	for _, layer := range layers {
		if layer == layerName {
			result.HasStampLayer = true
			result.StampLayerName = layer
			break
		}
		if strings.EqualFold(strings.TrimSpace(layer), layerName) {
			result.Warnings = append(result.Warnings,
				fmt.Sprintf("Existing layer detected that might contain annotations: %s", layer))
		}
	}

	return result, nil
}
