// internal/extraction/pdf.go
package extraction

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/ledongthuc/pdf"
)

// ReadText extracts the plain text of every page, in page order. Malformed
// input fails with ErrUnreadableDocument; a structurally valid PDF with no
// text on some pages is fine, but a document yielding no text at all is
// unreadable for our purposes.
func ReadText(pdfBytes []byte) (text string, err error) {
	if !bytes.HasPrefix(pdfBytes, []byte("%PDF-")) {
		return "", fmt.Errorf("%w: missing PDF header", ErrUnreadableDocument)
	}

	// The parser panics on some corrupt cross-reference tables.
	defer func() {
		if r := recover(); r != nil {
			text = ""
			err = fmt.Errorf("%w: %v", ErrUnreadableDocument, r)
		}
	}()

	reader, err := pdf.NewReader(bytes.NewReader(pdfBytes), int64(len(pdfBytes)))
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrUnreadableDocument, err)
	}

	var parts []string
	for i := 1; i <= reader.NumPage(); i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}

		content, err := page.GetPlainText(nil)
		if err != nil {
			// Skip pages we cannot decode rather than failing the document.
			continue
		}
		if strings.TrimSpace(content) != "" {
			parts = append(parts, content)
		}
	}

	if len(parts) == 0 {
		return "", fmt.Errorf("%w: no text content found", ErrUnreadableDocument)
	}

	return strings.Join(parts, "\n\n"), nil
}
