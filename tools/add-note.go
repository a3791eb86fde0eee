package tools

import (
	"context"

	"github.com/google/jsonschema-go/jsonschema"
	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/swairshah/zotero-mcp-server/internal/catalog"
	"github.com/swairshah/zotero-mcp-server/internal/logger"
)

type AddNoteQuery struct {
	ItemKey  string   `json:"item_key"`       // The Zotero item key of the parent paper
	NoteText string   `json:"note_text"`      // Free-text note content
	Tags     []string `json:"tags,omitempty"` // Tags to attach to the note
}

type AddNoteResponse struct {
	Status     string `json:"status"`
	NoteKey    string `json:"note_key,omitempty"`
	PaperTitle string `json:"paper_title,omitempty"`
	Message    string `json:"message,omitempty"`
}

func AddNoteTool() *mcp.Tool {
	inputschema, err := jsonschema.For[AddNoteQuery](nil)
	if err != nil {
		panic(err)
	}
	return &mcp.Tool{
		Name:        "add_note",
		Description: "Add a note to a specific paper. The write is atomic: either the note and all its tags are persisted, or nothing is.",
		InputSchema: inputschema,
	}
}

// AddNoteToolHandler catches all backend failures and reshapes them into a
// {status:"error", message} body.
func AddNoteToolHandler(ctx context.Context, req *mcp.CallToolRequest, query AddNoteQuery, cat catalog.Catalog, log logger.Logger) (*mcp.CallToolResult, *AddNoteResponse, error) {
	log.Info("add_note called (item_key=%s, tags=%v)", query.ItemKey, query.Tags)

	note, err := cat.AddNote(ctx, query.ItemKey, query.NoteText, query.Tags)
	if err != nil {
		log.Error("Error adding note to %s: %v", query.ItemKey, err)
		return nil, &AddNoteResponse{Status: "error", Message: err.Error()}, nil
	}

	paperTitle := "Unknown Paper"
	if paper, err := cat.GetItemByKey(ctx, query.ItemKey); err == nil && paper.Title != "" {
		paperTitle = paper.Title
	}

	return nil, &AddNoteResponse{
		Status:     "success",
		NoteKey:    note.Key,
		PaperTitle: paperTitle,
	}, nil
}
