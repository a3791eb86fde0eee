// Package pdf extracts plain text from PDF bytes using pdfcpu. Extraction
// quality depends on the PDF's internal structure; scanned documents without
// a text layer produce empty pages.
package pdf

import (
	"bytes"
	"errors"
	"io"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"

	"github.com/swairshah/zotero-mcp-server/models"
)

// Extract parses the PDF and returns per-page text plus the page count.
// A page whose content stream cannot be extracted is recorded as empty
// rather than failing the whole document.
func Extract(data []byte) (*models.ExtractedText, error) {
	if len(data) == 0 {
		return nil, errors.New("empty PDF data")
	}

	conf := model.NewDefaultConfiguration()
	pdfContext, err := api.ReadValidateAndOptimize(bytes.NewReader(data), conf)
	if err != nil {
		return nil, err
	}

	result := &models.ExtractedText{
		PageCount: pdfContext.PageCount,
		Pages:     make([]string, 0, pdfContext.PageCount),
	}

	for pageNum := 1; pageNum <= pdfContext.PageCount; pageNum++ {
		reader, err := pdfcpu.ExtractPageContent(pdfContext, pageNum)
		if err != nil || reader == nil {
			// Skip unextractable pages per the extractor contract.
			result.Pages = append(result.Pages, "")
			continue
		}
		content, err := io.ReadAll(reader)
		if err != nil {
			result.Pages = append(result.Pages, "")
			continue
		}
		result.Pages = append(result.Pages, decodePageText(string(content)))
	}

	return result, nil
}

// PageCount returns the number of pages without extracting any text.
func PageCount(data []byte) (int, error) {
	return api.PageCount(bytes.NewReader(data), nil)
}
