package tools

import (
	"context"
	"errors"

	"github.com/google/jsonschema-go/jsonschema"
	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/swairshah/zotero-mcp-server/internal/catalog"
	"github.com/swairshah/zotero-mcp-server/internal/logger"
)

type GetPaperQuery struct {
	ItemKey string `json:"item_key"` // The Zotero item key
}

type GetPaperResponse struct {
	Status  string       `json:"status"`
	Item    *PaperResult `json:"item,omitempty"`
	Message string       `json:"message,omitempty"`
}

func GetPaperTool() *mcp.Tool {
	inputschema, err := jsonschema.For[GetPaperQuery](nil)
	if err != nil {
		panic(err)
	}
	return &mcp.Tool{
		Name:        "get_paper",
		Description: "Get details for a specific paper by its Zotero item key.",
		InputSchema: inputschema,
	}
}

// GetPaperToolHandler catches all backend failures and reshapes them into a
// {status:"error", message} body.
func GetPaperToolHandler(ctx context.Context, req *mcp.CallToolRequest, query GetPaperQuery, cat catalog.Catalog, log logger.Logger) (*mcp.CallToolResult, *GetPaperResponse, error) {
	log.Info("get_paper called (item_key=%s)", query.ItemKey)

	item, err := cat.GetItemByKey(ctx, query.ItemKey)
	if err != nil {
		log.Error("Error getting paper %s: %v", query.ItemKey, err)
		message := err.Error()
		if errors.Is(err, catalog.ErrNotFound) {
			message = "Paper not found"
		}
		return nil, &GetPaperResponse{Status: "error", Message: message}, nil
	}

	return nil, &GetPaperResponse{Status: "success", Item: convertPaper(item)}, nil
}
