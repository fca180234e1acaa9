package pdf

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/ledongthuc/pdf"

	"github.com/Lllllllleong/ticketflow/internal/common"
)

// TextExtractor reads the plain text of a PDF page by page.
type TextExtractor struct{}

// NewTextExtractor creates a TextExtractor.
func NewTextExtractor() *TextExtractor { return &TextExtractor{} }

// ExtractText concatenates each page's text followed by a newline, in page
// order. Pages without extractable text contribute nothing.
func (e *TextExtractor) ExtractText(ctx context.Context, content []byte) (string, error) {
	if len(content) == 0 {
		return "", common.NewAppError(common.CodeParse, "empty PDF content", nil)
	}
	r, err := openReader(content)
	if err != nil {
		return "", common.NewAppError(common.CodeParse, "not a valid PDF", err)
	}

	var text strings.Builder
	for i := 1; i <= r.NumPage(); i++ {
		if err := ctx.Err(); err != nil {
			return "", err
		}
		page := r.Page(i)
		if page.V.IsNull() {
			continue
		}
		pageText, err := plainText(page)
		if err != nil {
			// Problematic page.
			continue
		}
		appendPageText(&text, pageText)
	}
	return text.String(), nil
}

// openReader guards against the panics the reader raises on malformed input.
func openReader(content []byte) (r *pdf.Reader, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			r, err = nil, fmt.Errorf("malformed pdf: %v", rec)
		}
	}()
	return pdf.NewReader(bytes.NewReader(content), int64(len(content)))
}

func plainText(page pdf.Page) (text string, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			text, err = "", fmt.Errorf("malformed page content: %v", rec)
		}
	}()
	return page.GetPlainText(nil)
}

// appendPageText adds one page's text and a newline. Pages with no text at all
// (image-only) contribute nothing; whitespace is kept as extracted.
func appendPageText(b *strings.Builder, pageText string) {
	if pageText == "" {
		return
	}
	b.WriteString(pageText)
	b.WriteString("\n")
}
