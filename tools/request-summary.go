package tools

import (
	"context"

	"github.com/google/jsonschema-go/jsonschema"
	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/swairshah/zotero-mcp-server/internal/catalog"
	"github.com/swairshah/zotero-mcp-server/internal/logger"
)

type RequestSummaryQuery struct {
	ItemKey string `json:"item_key"` // The Zotero item key
}

type RequestSummaryResponse struct {
	Status string `json:"status"`
}

func RequestSummaryTool() *mcp.Tool {
	inputschema, err := jsonschema.For[RequestSummaryQuery](nil)
	if err != nil {
		panic(err)
	}
	return &mcp.Tool{
		Name:        "request_summary",
		Description: "Tag an item so the out-of-band summarization pipeline picks it up. Idempotent: requesting a summary twice is a no-op. Only available with the API backend.",
		InputSchema: inputschema,
	}
}

// RequestSummaryToolHandler propagates backend failures as MCP errors rather
// than returning a structured error body.
func RequestSummaryToolHandler(ctx context.Context, req *mcp.CallToolRequest, query RequestSummaryQuery, cat catalog.Catalog, log logger.Logger) (*mcp.CallToolResult, *RequestSummaryResponse, error) {
	log.Info("request_summary called (item_key=%s)", query.ItemKey)

	if err := cat.RequestSummary(ctx, query.ItemKey); err != nil {
		log.Error("Error requesting summary for %s: %v", query.ItemKey, err)
		return nil, nil, err
	}

	return nil, &RequestSummaryResponse{Status: "success"}, nil
}
