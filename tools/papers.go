// Package tools defines the MCP tools exposed by the server. Each tool is a
// thin façade over the active catalog backend: it marshals parameters,
// reshapes results into the stable JSON contract, and maps failures onto
// that contract.
//
// Error handling is a per-tool contract, not a uniform policy: search_papers,
// get_paper, add_note and get_pdf_content catch every backend failure and
// return a structured error body, while get_paper_notes, request_summary and
// summarize_paper propagate failures as MCP-level errors.
package tools

import (
	"strings"

	"github.com/swairshah/zotero-mcp-server/models"
)

// Author is the wire shape for a creator.
type Author struct {
	FirstName   string `json:"firstName"`
	LastName    string `json:"lastName"`
	CreatorType string `json:"creatorType"`
}

// PaperResult is the wire shape for a bibliographic item.
type PaperResult struct {
	Key      string   `json:"key"`
	Title    string   `json:"title"`
	Authors  []Author `json:"authors"`
	Year     string   `json:"year,omitempty"`
	Tags     []string `json:"tags"`
	Abstract string   `json:"abstract,omitempty"`
	URL      string   `json:"url,omitempty"`
	ItemType string   `json:"item_type"`
}

// NoteResult is the wire shape for a note.
type NoteResult struct {
	Key   string   `json:"key"`
	Text  string   `json:"text"`
	Tags  []string `json:"tags"`
	Title string   `json:"title,omitempty"`
}

// convertPaper maps a catalog item onto the wire shape.
func convertPaper(item *models.Item) *PaperResult {
	result := &PaperResult{
		Key:      item.Key,
		Title:    item.Title,
		Authors:  make([]Author, 0, len(item.Creators)),
		Year:     yearOf(item.Date),
		Tags:     item.Tags,
		Abstract: item.Abstract,
		URL:      item.URL,
		ItemType: item.ItemType,
	}
	if result.Title == "" {
		result.Title = "Unknown Title"
	}
	if result.Tags == nil {
		result.Tags = []string{}
	}
	for _, creator := range item.Creators {
		author := Author{
			FirstName:   creator.FirstName,
			LastName:    creator.LastName,
			CreatorType: creator.CreatorType,
		}
		// Single-field creators carry everything in Name.
		if creator.Name != "" && author.LastName == "" {
			author.LastName = creator.Name
		}
		result.Authors = append(result.Authors, author)
	}
	return result
}

// yearOf extracts the year as the first dash-separated segment of a date.
func yearOf(date string) string {
	if date == "" {
		return ""
	}
	return strings.SplitN(date, "-", 2)[0]
}
