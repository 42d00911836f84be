package pdfstamp

import (
	"io"
)

// Config holds user options for stamping and repaginating documents
type Config struct {
	Debug         bool      // Draw annotations in red so they stand out
	Force         bool      // Stamp even if the annotation layer already exists
	RejectRestamp bool      // Fail with ErrAlreadyStamped instead of warning when the layer exists
	LayerName     string    // Name of the optional content layer holding the annotations
	DumpPDF       bool      // Dump PDF structure for debugging
	LogWarnings   bool      // Whether to print warnings
	Logger        io.Writer // Custom logger for warnings (nil = stdout)
	Font          FontConfig
	Codec         Codec // Document codec (nil = NewCodec(config))
}

// DefaultConfig returns a config with sensible defaults
func DefaultConfig() Config {
	return Config{
		Debug:         false,
		Force:         false,
		RejectRestamp: false,
		LayerName:     "Print Annotations",
		DumpPDF:       false,
		LogWarnings:   true,
		Logger:        nil, // stdout
		Font:          DefaultFont,
	}
}

// FontConfig selects one of the standard PDF fonts
type FontConfig struct {
	Name  string // Font name (e.g., "Helvetica")
	Style string // Font style ("", "B", "I", "BI")
}

// DefaultFont is Helvetica Bold, the face used for header, footer and date stamps
var DefaultFont = FontConfig{
	Name:  "Helvetica",
	Style: "B",
}

// codec returns the configured codec or the default one.
func (c Config) codec() Codec {
	if c.Codec != nil {
		return c.Codec
	}
	return NewCodec(c)
}

// font returns the configured font, falling back to DefaultFont.
func (c Config) font() FontConfig {
	if c.Font.Name == "" {
		return DefaultFont
	}
	return c.Font
}
