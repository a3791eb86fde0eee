// Package convert implements the PDF-to-markdown conversion job service: a
// Converter abstraction, an in-memory submit-and-poll job registry, the HTTP
// front end, and a client for callers on the other side of it.
package convert

import (
	"context"
	"fmt"
	"strings"

	"github.com/swairshah/zotero-mcp-server/internal/pdf"
)

// Converter renders raw PDF bytes into text. The production deployment backs
// this with a heavyweight layout-aware model behind the same interface; the
// built-in implementation uses plain text extraction.
type Converter interface {
	Convert(ctx context.Context, data []byte) (string, error)
}

// TextConverter converts a PDF by extracting its text layer page by page.
type TextConverter struct{}

// Convert renders each page's text under a page heading, markdown-style.
func (TextConverter) Convert(ctx context.Context, data []byte) (string, error) {
	extracted, err := pdf.Extract(data)
	if err != nil {
		return "", fmt.Errorf("failed to extract PDF text: %w", err)
	}

	var b strings.Builder
	for i, page := range extracted.Pages {
		if strings.TrimSpace(page) == "" {
			continue
		}
		if b.Len() > 0 {
			b.WriteString("\n\n")
		}
		fmt.Fprintf(&b, "## Page %d\n\n%s", i+1, page)
	}
	return b.String(), nil
}

// ConverterFunc adapts a function to the Converter interface.
type ConverterFunc func(ctx context.Context, data []byte) (string, error)

func (f ConverterFunc) Convert(ctx context.Context, data []byte) (string, error) {
	return f(ctx, data)
}
