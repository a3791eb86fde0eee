package catalog

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/Epistemic-Technology/zotero/zotero"

	"github.com/swairshah/zotero-mcp-server/internal/logger"
	"github.com/swairshah/zotero-mcp-server/internal/pdf"
	"github.com/swairshah/zotero-mcp-server/models"
)

// localAPIBaseURL is where the Zotero desktop application serves its local
// read-only API when enabled in preferences.
const localAPIBaseURL = "http://localhost:23119/api"

// RemoteCatalog implements Catalog against the Zotero HTTP API. Reads go
// through the local API when configured (fast, but read-only and only
// available while the desktop app runs) or the web API otherwise. Writes
// always go through the web API, which needs an API key; without one the
// catalog is read-only and write operations report ErrRemoteUnavailable.
//
// Unlike the direct-storage backend, reads here may lag recent writes: the
// web API is eventually consistent with the local client's sync state.
type RemoteCatalog struct {
	read   *zotero.Client
	writer *webWriter // nil when no write channel is configured
	log    logger.Logger
}

// RemoteConfig carries the settings for an API-mediated catalog.
type RemoteConfig struct {
	UserID   string
	APIKey   string
	LocalAPI bool
}

// NewRemoteCatalog builds the client pair and verifies connectivity with a
// one-item listing. A failed probe is fatal for the caller; the returned
// error distinguishes a disabled local API from generic connectivity loss.
func NewRemoteCatalog(cfg RemoteConfig, log logger.Logger) (*RemoteCatalog, error) {
	opts := []zotero.ClientOption{zotero.WithAPIKey(cfg.APIKey)}
	if cfg.LocalAPI {
		opts = append(opts, zotero.WithBaseURL(localAPIBaseURL))
	}
	read := zotero.NewClient(cfg.UserID, zotero.LibraryTypeUser, opts...)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if _, err := read.Items(ctx, &zotero.QueryParams{Limit: 1}); err != nil {
		if cfg.LocalAPI {
			return nil, fmt.Errorf("%w: Zotero local API is not reachable (enable it in Zotero Preferences -> Advanced -> "+
				"Allow other applications on this computer to communicate with Zotero): %v", ErrConnection, err)
		}
		return nil, fmt.Errorf("%w: failed to connect to Zotero API: %v", ErrConnection, err)
	}
	log.Info("Connected to Zotero API (local=%v)", cfg.LocalAPI)

	cat := &RemoteCatalog{read: read, log: log}
	if cfg.APIKey != "" {
		cat.writer = newWebWriter(cfg.UserID, cfg.APIKey)
	}

	return cat, nil
}

// SearchItems runs a quick search against the API and applies tag filtering.
// The API only natively filters on a single tag, so conjunctions over more
// than one tag are applied client-side.
func (c *RemoteCatalog) SearchItems(ctx context.Context, query string, tags []string) ([]models.Item, error) {
	params := &zotero.QueryParams{
		Sort:  "dateModified",
		Limit: 100,
	}
	if query != "" {
		params.Q = query
		params.QMode = "titleCreatorYear"
	}
	if len(tags) == 1 && query == "" {
		params.Tag = tags
	}

	items, err := c.read.Items(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to search items: %v", ErrRemoteUnavailable, err)
	}

	var results []models.Item
	for _, item := range items {
		if item.Data.ItemType == "attachment" || item.Data.ItemType == "note" {
			continue
		}
		converted := convertItem(&item)
		if !hasAllTags(converted.Tags, tags) {
			continue
		}
		results = append(results, converted)
	}

	return results, nil
}

// GetItemByKey fetches a single item by key.
func (c *RemoteCatalog) GetItemByKey(ctx context.Context, key string) (*models.Item, error) {
	item, err := c.read.Item(ctx, key, nil)
	if err != nil {
		return nil, classifyLookupError(key, err)
	}
	if item == nil {
		return nil, fmt.Errorf("%w: item %s", ErrNotFound, key)
	}
	converted := convertItem(item)
	return &converted, nil
}

// GetItemNotes returns all note children of the item.
func (c *RemoteCatalog) GetItemNotes(ctx context.Context, itemKey string) ([]models.Note, error) {
	children, err := c.read.Children(ctx, itemKey, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to get children of %s: %w", itemKey, err)
	}

	var notes []models.Note
	for _, child := range children {
		if child.Data.ItemType != "note" {
			continue
		}
		notes = append(notes, convertNote(&child))
	}

	return notes, nil
}

// AddNote creates a note under the parent item through the web API write
// channel. The parent is verified first so a bad key surfaces as ErrNotFound
// rather than a remote validation failure.
func (c *RemoteCatalog) AddNote(ctx context.Context, itemKey, text string, tags []string) (*models.Note, error) {
	if c.writer == nil {
		return nil, fmt.Errorf("%w: no API key configured, write access disabled", ErrRemoteUnavailable)
	}

	if _, err := c.GetItemByKey(ctx, itemKey); err != nil {
		return nil, err
	}

	noteKey, err := c.writer.createNote(ctx, itemKey, text, tags)
	if err != nil {
		return nil, err
	}

	return &models.Note{Key: noteKey, Text: text, Tags: tags}, nil
}

// GetPDFContent scans the item's children and extracts the first PDF
// attachment found.
func (c *RemoteCatalog) GetPDFContent(ctx context.Context, itemKey string) (*models.PDFContent, error) {
	item, err := c.read.Item(ctx, itemKey, nil)
	if err != nil {
		return nil, classifyLookupError(itemKey, err)
	}
	if item == nil {
		return nil, fmt.Errorf("%w: item %s", ErrNotFound, itemKey)
	}

	attachmentKey := ""
	children, err := c.read.Children(ctx, itemKey, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to get children of %s: %w", itemKey, err)
	}
	for _, child := range children {
		if child.Data.ItemType == "attachment" && child.Data.ContentType == "application/pdf" {
			attachmentKey = child.Key
			break
		}
	}

	if attachmentKey == "" {
		return nil, fmt.Errorf("%w: no PDF attachment found for item %s", ErrNotFound, itemKey)
	}

	data, err := c.read.File(ctx, attachmentKey)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to download attachment %s: %v", ErrRemoteUnavailable, attachmentKey, err)
	}

	extracted, err := pdf.Extract(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrExtraction, err)
	}

	return &models.PDFContent{
		Text:          strings.Join(extracted.Pages, "\n"),
		AttachmentKey: attachmentKey,
		PageCount:     extracted.PageCount,
	}, nil
}

// RequestSummary appends the summary-request marker tag to the item. Adding
// the tag twice is a no-op, so repeated requests are safe.
func (c *RemoteCatalog) RequestSummary(ctx context.Context, itemKey string) error {
	if c.writer == nil {
		return fmt.Errorf("%w: no API key configured, write access disabled", ErrRemoteUnavailable)
	}

	item, err := c.read.Item(ctx, itemKey, nil)
	if err != nil {
		return classifyLookupError(itemKey, err)
	}
	if item == nil {
		return fmt.Errorf("%w: item %s", ErrNotFound, itemKey)
	}

	names := tagNames(item.Data.Tags)
	for _, name := range names {
		if name == SummaryRequestTag {
			c.log.Debug("Item %s already has tag %q", itemKey, SummaryRequestTag)
			return nil
		}
	}

	return c.writer.setTags(ctx, itemKey, item.Version, append(names, SummaryRequestTag))
}

// Close is a no-op; the HTTP clients hold no persistent resources.
func (c *RemoteCatalog) Close() error {
	return nil
}

// classifyLookupError separates a missing item from a failing API: only a
// remote 404 maps to ErrNotFound, everything else is a connectivity problem.
func classifyLookupError(key string, err error) error {
	msg := strings.ToLower(err.Error())
	if strings.Contains(msg, "404") || strings.Contains(msg, "not found") {
		return fmt.Errorf("%w: item %s: %v", ErrNotFound, key, err)
	}
	return fmt.Errorf("%w: item %s: %v", ErrRemoteUnavailable, key, err)
}

// convertItem maps an API item onto the catalog model. The client surfaces
// only the common bibliographic fields as struct members; url, date, and note
// content arrive through the item's extra data map.
func convertItem(item *zotero.Item) models.Item {
	converted := models.Item{
		Key:          item.Key,
		Title:        item.Data.Title,
		ItemType:     item.Data.ItemType,
		Abstract:     item.Data.AbstractNote,
		URL:          extraString(item.Data.Extra, "url"),
		Date:         extraString(item.Data.Extra, "date"),
		DateAdded:    item.Data.DateAdded,
		DateModified: item.Data.DateModified,
		Tags:         tagNames(item.Data.Tags),
	}
	for _, creator := range item.Data.Creators {
		converted.Creators = append(converted.Creators, models.Creator{
			FirstName:   creator.FirstName,
			LastName:    creator.LastName,
			Name:        creator.Name,
			CreatorType: creator.CreatorType,
		})
	}
	return converted
}

// convertNote maps a note child item onto the catalog model.
func convertNote(item *zotero.Item) models.Note {
	return models.Note{
		Key:  item.Key,
		Text: extraString(item.Data.Extra, "note"),
		Tags: tagNames(item.Data.Tags),
	}
}

// extraString reads a string field from the extra data map; absent keys and
// non-string values read as empty.
func extraString(extra map[string]any, key string) string {
	if s, ok := extra[key].(string); ok {
		return s
	}
	return ""
}

func tagNames(tags []zotero.Tag) []string {
	names := make([]string, 0, len(tags))
	for _, t := range tags {
		names = append(names, t.Tag)
	}
	return names
}

// hasAllTags reports whether have is a superset of want.
func hasAllTags(have, want []string) bool {
	for _, w := range want {
		found := false
		for _, h := range have {
			if h == w {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}

var _ Catalog = (*RemoteCatalog)(nil)
