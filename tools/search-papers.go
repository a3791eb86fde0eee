package tools

import (
	"context"

	"github.com/google/jsonschema-go/jsonschema"
	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/swairshah/zotero-mcp-server/internal/catalog"
	"github.com/swairshah/zotero-mcp-server/internal/logger"
)

type SearchPapersQuery struct {
	Tags  []string `json:"tags,omitempty"`  // Require every listed tag (conjunction)
	Query string   `json:"query,omitempty"` // Case-insensitive title substring
}

type SearchPapersResponse struct {
	Status       string        `json:"status"`
	TotalResults int           `json:"total_results,omitempty"`
	Items        []PaperResult `json:"items,omitempty"`
	Message      string        `json:"message,omitempty"`
}

func SearchPapersTool() *mcp.Tool {
	inputschema, err := jsonschema.For[SearchPapersQuery](nil)
	if err != nil {
		panic(err)
	}
	return &mcp.Tool{
		Name:        "search_papers",
		Description: "Search through Zotero papers based on tags and/or text. Returns top-level bibliographic items only (notes and attachments are excluded), most recently modified first.",
		InputSchema: inputschema,
	}
}

// SearchPapersToolHandler catches all backend failures and reshapes them into
// a {status:"error", message} body.
func SearchPapersToolHandler(ctx context.Context, req *mcp.CallToolRequest, query SearchPapersQuery, cat catalog.Catalog, log logger.Logger) (*mcp.CallToolResult, *SearchPapersResponse, error) {
	log.Info("search_papers called (query=%q, tags=%v)", query.Query, query.Tags)

	items, err := cat.SearchItems(ctx, query.Query, query.Tags)
	if err != nil {
		log.Error("Error searching papers: %v", err)
		return nil, &SearchPapersResponse{Status: "error", Message: err.Error()}, nil
	}

	results := make([]PaperResult, 0, len(items))
	for i := range items {
		results = append(results, *convertPaper(&items[i]))
	}

	return nil, &SearchPapersResponse{
		Status:       "success",
		TotalResults: len(results),
		Items:        results,
	}, nil
}
