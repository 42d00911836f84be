package pdfstamp

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"golang.org/x/text/encoding/unicode"
)

// splitLines splits annotation text at line breaks and drops empty lines.
func splitLines(s string) []string {
	return strings.FieldsFunc(s, func(r rune) bool {
		return r == '\r' || r == '\n'
	})
}

// unescapePDFString resolves the backslash escapes of a PDF literal string.
func unescapePDFString(s string) string {
	if !strings.Contains(s, `\`) {
		return s
	}
	var b strings.Builder
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c != '\\' || i+1 == len(s) {
			b.WriteByte(c)
			continue
		}
		i++
		switch s[i] {
		case 'n':
			b.WriteByte('\n')
		case 'r':
			b.WriteByte('\r')
		case 't':
			b.WriteByte('\t')
		case 'b':
			b.WriteByte('\b')
		case 'f':
			b.WriteByte('\f')
		case '0', '1', '2', '3', '4', '5', '6', '7':
			// Up to three octal digits
			j := i
			for j < len(s) && j < i+3 && s[j] >= '0' && s[j] <= '7' {
				j++
			}
			n, _ := strconv.ParseUint(s[i:j], 8, 8)
			b.WriteByte(byte(n))
			i = j - 1
		default:
			b.WriteByte(s[i])
		}
	}
	return b.String()
}

// decodeTextString decodes a PDF text string that starts with the UTF-16BE
// byte order mark. Other strings are returned unchanged.
func decodeTextString(s string) string {
	if !strings.HasPrefix(s, "\xfe\xff") {
		return s
	}
	dec := unicode.UTF16(unicode.BigEndian, unicode.ExpectBOM).NewDecoder()
	decoded, err := dec.String(s)
	if err != nil {
		return s
	}
	return decoded
}

// getLogger returns the writer for log output, defaulting to os.Stdout.
func getLogger(config Config) io.Writer {
	if config.Logger == nil {
		return os.Stdout
	}
	return config.Logger
}

// dumpPDFStructure prints the head of the document and the area around the
// first optional content group, if any.
func dumpPDFStructure(pdfData []byte, byteCount int, logger io.Writer) {
	head := pdfData[:min(byteCount, len(pdfData))]
	fmt.Fprintf(logger, "===== PDF STRUCTURE DUMP (FIRST %d BYTES OF %d) =====\n", len(head), len(pdfData))
	fmt.Fprintln(logger, string(head))
	fmt.Fprintln(logger, "===== END PDF STRUCTURE DUMP =====")

	if i := bytes.Index(pdfData, []byte("/OCG")); i >= 0 {
		fmt.Fprintln(logger, "===== OCG CONTEXT =====")
		fmt.Fprintln(logger, string(pdfData[max(i-20, 0):min(i+100, len(pdfData))]))
		fmt.Fprintln(logger, "===== END OCG CONTEXT =====")
	}
}
