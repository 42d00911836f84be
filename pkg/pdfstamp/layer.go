package pdfstamp

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/types"
	"golang.org/x/text/encoding/charmap"
)

// surface collects the text operators for one page. Positions are in the
// page as displayed; the writer maps them into the page's user space.
type surface struct {
	w       *overlayWriter
	page    int
	buf     bytes.Buffer
	fonts   map[string]string // Resource name to base font
	layered bool              // Content is marked as belonging to the layer
	inText  bool
}

func (s *surface) BeginText() error {
	if s.inText {
		return fmt.Errorf("text block already open")
	}
	s.inText = true
	if s.w.layer != "" {
		s.layered = true
		fmt.Fprintf(&s.buf, "/OC /%s BDC\n", overlayLayerName)
	}
	s.buf.WriteString("BT\n")
	if s.w.debug {
		s.buf.WriteString("1 0 0 rg\n") // highlight text in red
	} else {
		s.buf.WriteString("0 g\n")
	}
	return nil
}

func (s *surface) SetFont(font FontConfig, size float64) error {
	baseFont, err := standardFont(font)
	if err != nil {
		return err
	}
	s.w.measure.SetFont(font.Name, font.Style, size)
	if err := s.w.measure.Error(); err != nil {
		return err
	}

	name := ""
	for n, f := range s.fonts {
		if f == baseFont {
			name = n
		}
	}
	if name == "" {
		name = fmt.Sprintf("%s%d", overlayFontPrefix, len(s.fonts)+1)
		s.fonts[name] = baseFont
	}
	fmt.Fprintf(&s.buf, "/%s %.2f Tf\n", name, size)
	return nil
}

func (s *surface) ShowText(align Alignment, text string, x, y float64) error {
	// Standard fonts are WinAnsi encoded
	encoded, err := charmap.Windows1252.NewEncoder().String(text)
	if err != nil {
		return fmt.Errorf("cannot encode %q: %w", text, err)
	}

	width := s.w.measure.GetStringWidth(encoded)
	switch align {
	case AlignCenter:
		x -= width / 2
	case AlignRight:
		x -= width
	}

	escaped, err := types.Escape(encoded)
	if err != nil {
		return err
	}
	fmt.Fprintf(&s.buf, "1 0 0 1 %.2f %.2f Tm\n(%s) Tj\n", x, y, *escaped)
	return nil
}

func (s *surface) EndText() error {
	if !s.inText {
		return fmt.Errorf("no open text block")
	}
	s.inText = false
	s.buf.WriteString("ET\n")
	if s.layered {
		s.buf.WriteString("EMC\n")
	}
	return nil
}

// standardFont names the standard Type 1 font for a core font family and
// style ("", "B", "I" or "BI").
func standardFont(font FontConfig) (string, error) {
	style := strings.ToUpper(font.Style)
	bold := strings.Contains(style, "B")
	italic := strings.Contains(style, "I")

	switch strings.ToLower(font.Name) {
	case "helvetica", "arial":
		return styledName("Helvetica", "", bold, italic, "Oblique"), nil
	case "courier":
		return styledName("Courier", "", bold, italic, "Oblique"), nil
	case "times":
		return styledName("Times", "Roman", bold, italic, "Italic"), nil
	}
	return "", fmt.Errorf("font %q is not a standard font", font.Name)
}

func styledName(family, regular string, bold, italic bool, slant string) string {
	switch {
	case bold && italic:
		return family + "-Bold" + slant
	case bold:
		return family + "-Bold"
	case italic:
		return family + "-" + slant
	case regular != "":
		return family + "-" + regular
	}
	return family
}
