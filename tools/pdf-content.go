package tools

import (
	"context"

	"github.com/google/jsonschema-go/jsonschema"
	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/swairshah/zotero-mcp-server/internal/catalog"
	"github.com/swairshah/zotero-mcp-server/internal/logger"
)

type GetPDFContentQuery struct {
	ItemKey string `json:"item_key"` // The Zotero item key
}

type GetPDFContentResponse struct {
	Success       bool   `json:"success"`
	TextContent   string `json:"text_content,omitempty"`
	AttachmentKey string `json:"attachment_key,omitempty"`
	PageCount     int    `json:"page_count,omitempty"`
	Error         string `json:"error,omitempty"`
}

func GetPDFContentTool() *mcp.Tool {
	inputschema, err := jsonschema.For[GetPDFContentQuery](nil)
	if err != nil {
		panic(err)
	}
	return &mcp.Tool{
		Name:        "get_pdf_content",
		Description: "Extract the text of the first PDF attachment of a given item. The text is extracted on demand and never cached.",
		InputSchema: inputschema,
	}
}

// GetPDFContentToolHandler catches all backend failures and reshapes them
// into a {success:false, error} body.
func GetPDFContentToolHandler(ctx context.Context, req *mcp.CallToolRequest, query GetPDFContentQuery, cat catalog.Catalog, log logger.Logger) (*mcp.CallToolResult, *GetPDFContentResponse, error) {
	log.Info("get_pdf_content called (item_key=%s)", query.ItemKey)

	content, err := cat.GetPDFContent(ctx, query.ItemKey)
	if err != nil {
		log.Error("Error getting PDF content for %s: %v", query.ItemKey, err)
		return nil, &GetPDFContentResponse{Success: false, Error: err.Error()}, nil
	}

	return nil, &GetPDFContentResponse{
		Success:       true,
		TextContent:   content.Text,
		AttachmentKey: content.AttachmentKey,
		PageCount:     content.PageCount,
	}, nil
}
