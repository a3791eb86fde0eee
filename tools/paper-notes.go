package tools

import (
	"context"

	"github.com/google/jsonschema-go/jsonschema"
	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/swairshah/zotero-mcp-server/internal/catalog"
	"github.com/swairshah/zotero-mcp-server/internal/logger"
)

type GetPaperNotesQuery struct {
	ItemKey string `json:"item_key"` // The Zotero item key of the parent paper
}

type GetPaperNotesResponse struct {
	Notes []NoteResult `json:"notes"`
}

func GetPaperNotesTool() *mcp.Tool {
	inputschema, err := jsonschema.For[GetPaperNotesQuery](nil)
	if err != nil {
		panic(err)
	}
	return &mcp.Tool{
		Name:        "get_paper_notes",
		Description: "Get all notes attached to a specific paper, ordered by creation time.",
		InputSchema: inputschema,
	}
}

// GetPaperNotesToolHandler propagates backend failures as MCP errors rather
// than returning a structured error body. This asymmetry with the other read
// tools is part of the published contract.
func GetPaperNotesToolHandler(ctx context.Context, req *mcp.CallToolRequest, query GetPaperNotesQuery, cat catalog.Catalog, log logger.Logger) (*mcp.CallToolResult, *GetPaperNotesResponse, error) {
	log.Info("get_paper_notes called (item_key=%s)", query.ItemKey)

	notes, err := cat.GetItemNotes(ctx, query.ItemKey)
	if err != nil {
		log.Error("Error getting notes for %s: %v", query.ItemKey, err)
		return nil, nil, err
	}

	results := make([]NoteResult, 0, len(notes))
	for _, note := range notes {
		tags := note.Tags
		if tags == nil {
			tags = []string{}
		}
		results = append(results, NoteResult{
			Key:   note.Key,
			Text:  note.Text,
			Tags:  tags,
			Title: note.Title,
		})
	}

	return nil, &GetPaperNotesResponse{Notes: results}, nil
}
