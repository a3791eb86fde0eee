package tools

import (
	"context"
	"errors"
	"os"

	"github.com/google/jsonschema-go/jsonschema"
	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/swairshah/zotero-mcp-server/internal/catalog"
	"github.com/swairshah/zotero-mcp-server/internal/llm"
	"github.com/swairshah/zotero-mcp-server/internal/logger"
)

type SummarizePaperQuery struct {
	ItemKey string `json:"item_key"` // The Zotero item key
}

type SummarizePaperResponse struct {
	Title         string `json:"title,omitempty"`
	AttachmentKey string `json:"attachment_key,omitempty"`
	Summary       string `json:"summary"`
}

func SummarizePaperTool() *mcp.Tool {
	inputschema, err := jsonschema.For[SummarizePaperQuery](nil)
	if err != nil {
		panic(err)
	}
	return &mcp.Tool{
		Name:        "summarize_paper",
		Description: "Extract the text of a paper's PDF attachment and summarize it into 1-3 paragraphs.",
		InputSchema: inputschema,
	}
}

// SummarizePaperToolHandler propagates backend failures as MCP errors rather
// than returning a structured error body.
func SummarizePaperToolHandler(ctx context.Context, req *mcp.CallToolRequest, query SummarizePaperQuery, cat catalog.Catalog, log logger.Logger) (*mcp.CallToolResult, *SummarizePaperResponse, error) {
	log.Info("summarize_paper called (item_key=%s)", query.ItemKey)

	apiKey := os.Getenv("OPENAI_API_KEY")
	if apiKey == "" {
		return nil, nil, errors.New("OPENAI_API_KEY environment variable not set")
	}

	content, err := cat.GetPDFContent(ctx, query.ItemKey)
	if err != nil {
		return nil, nil, err
	}

	summary, err := llm.SummarizeText(ctx, apiKey, content.Text, log)
	if err != nil {
		return nil, nil, err
	}

	response := &SummarizePaperResponse{
		AttachmentKey: content.AttachmentKey,
		Summary:       summary,
	}
	if item, err := cat.GetItemByKey(ctx, query.ItemKey); err == nil {
		response.Title = item.Title
	}

	return nil, response, nil
}
