package pdfstamp

import (
	"fmt"
	"strings"
)

// TargetSize is a named output page class. Original keeps the source page
// size; every other size carries fixed dimensions in points.
type TargetSize struct {
	ID     int
	Name   string
	Width  float64
	Height float64
}

// Named target sizes. A3 is stored portrait like A4; landscape sources
// get the rotated rectangle at repagination time.
var (
	Original = TargetSize{ID: 0, Name: "Original"}
	A4       = TargetSize{ID: 1, Name: "A4", Width: 595.276, Height: 841.89}
	A3       = TargetSize{ID: 2, Name: "A3", Width: 841.89, Height: 1190.55}
)

var targetSizes = []TargetSize{Original, A4, A3}

// IsOriginal reports whether s requests pass-through sizing.
func (s TargetSize) IsOriginal() bool {
	return s.ID == Original.ID && s.Width == 0 && s.Height == 0
}

// Rect returns the portrait rectangle for s.
func (s TargetSize) Rect() Rectangle {
	return NewRectangle(s.Width, s.Height)
}

// Validate checks that a non-Original size has usable dimensions.
func (s TargetSize) Validate() error {
	if s.IsOriginal() {
		return nil
	}
	if s.Width <= 0 || s.Height <= 0 {
		return &UnsupportedTargetSizeError{Name: s.Name, ID: s.ID}
	}
	return nil
}

func (s TargetSize) String() string {
	if s.IsOriginal() {
		return s.Name
	}
	return fmt.Sprintf("%s (%.2fx%.2f)", s.Name, s.Width, s.Height)
}

// LookupTargetSize finds a named size, ignoring case. The empty name
// selects Original.
func LookupTargetSize(name string) (TargetSize, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return Original, nil
	}
	for _, s := range targetSizes {
		if strings.EqualFold(s.Name, name) {
			return s, nil
		}
	}
	return TargetSize{}, &UnsupportedTargetSizeError{Name: name, ID: -1}
}

// TargetSizeByID finds a size by its numeric identifier (0 Original, 1 A4, 2 A3).
func TargetSizeByID(id int) (TargetSize, error) {
	for _, s := range targetSizes {
		if s.ID == id {
			return s, nil
		}
	}
	return TargetSize{}, &UnsupportedTargetSizeError{ID: id}
}

// TargetSizeNames lists the names accepted by LookupTargetSize.
func TargetSizeNames() []string {
	names := make([]string, len(targetSizes))
	for i, s := range targetSizes {
		names[i] = s.Name
	}
	return names
}
