package catalog

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/swairshah/zotero-mcp-server/internal/logger"
	"github.com/swairshah/zotero-mcp-server/internal/pdf"
	"github.com/swairshah/zotero-mcp-server/models"
)

// SQLiteCatalog reads and writes zotero.sqlite directly, without going through
// the Zotero application. The database is owned by Zotero and may be open in
// that process at the same time, so every operation here is a short, fully
// isolated transaction or a single query: no cursors or locks are ever held
// across calls. Writes run under BEGIN IMMEDIATE (via the _txlock DSN option)
// so that identifier allocation and the dependent inserts are serialized
// against other writers.
type SQLiteCatalog struct {
	db          *sql.DB
	storagePath string
	log         logger.Logger
}

// NewSQLiteCatalog opens the Zotero database at dbPath and verifies it looks
// like a Zotero catalog. A leading ~ in dbPath is expanded. Attachment files
// are resolved against the storage/ directory next to the database file.
func NewSQLiteCatalog(dbPath string, log logger.Logger) (*SQLiteCatalog, error) {
	dbPath, err := expandHome(dbPath)
	if err != nil {
		return nil, err
	}

	if _, err := os.Stat(dbPath); err != nil {
		return nil, fmt.Errorf("%w: Zotero database not found at %s", ErrConnection, dbPath)
	}

	dsn := fmt.Sprintf("file:%s?_busy_timeout=10000&_txlock=immediate", dbPath)
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to open database: %v", ErrConnection, err)
	}

	cat := &SQLiteCatalog{
		db:          db,
		storagePath: filepath.Join(filepath.Dir(dbPath), "storage"),
		log:         log,
	}

	// Trivial probe: a valid Zotero catalog always has an items table.
	var count int
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := db.QueryRowContext(ctx, "SELECT COUNT(*) FROM items").Scan(&count); err != nil {
		db.Close()
		return nil, fmt.Errorf("%w: %s is not a valid Zotero database: %v", ErrConnection, dbPath, err)
	}
	log.Info("Connected to Zotero database with %d items", count)

	return cat, nil
}

// searchItemsSQL reconstructs a flat item view from Zotero's EAV layout:
// field values (title, abstract, url, date) live in itemData/itemDataValues
// keyed by field name, so each one is a correlated subquery.
const searchItemsSQL = `
SELECT
    i.itemID,
    i.key,
    i.dateAdded,
    i.dateModified,
    it.typeName AS itemType,
    (SELECT idv.value
     FROM itemData id
     JOIN itemDataValues idv ON id.valueID = idv.valueID
     JOIN fields f ON id.fieldID = f.fieldID
     WHERE id.itemID = i.itemID AND f.fieldName = 'title') AS title,
    (SELECT idv.value
     FROM itemData id
     JOIN itemDataValues idv ON id.valueID = idv.valueID
     JOIN fields f ON id.fieldID = f.fieldID
     WHERE id.itemID = i.itemID AND f.fieldName = 'abstractNote') AS abstract,
    (SELECT idv.value
     FROM itemData id
     JOIN itemDataValues idv ON id.valueID = idv.valueID
     JOIN fields f ON id.fieldID = f.fieldID
     WHERE id.itemID = i.itemID AND f.fieldName = 'url') AS url,
    (SELECT idv.value
     FROM itemData id
     JOIN itemDataValues idv ON id.valueID = idv.valueID
     JOIN fields f ON id.fieldID = f.fieldID
     WHERE id.itemID = i.itemID AND f.fieldName = 'date') AS date
FROM items i
JOIN itemTypes it ON i.itemTypeID = it.itemTypeID
WHERE it.typeName NOT IN ('attachment', 'note')
`

// SearchItems returns bibliographic items matching the query and tag filters.
// Only top-level items are returned; attachments and notes are excluded at
// the type level. Tag filtering is a conjunction: an item must carry every
// requested tag.
func (c *SQLiteCatalog) SearchItems(ctx context.Context, query string, tags []string) ([]models.Item, error) {
	sqlQuery := searchItemsSQL
	var args []any

	if query != "" {
		// SQLite LIKE is case-insensitive for ASCII.
		sqlQuery += `
AND EXISTS (SELECT 1 FROM itemData id
            JOIN itemDataValues idv ON id.valueID = idv.valueID
            JOIN fields f ON id.fieldID = f.fieldID
            WHERE id.itemID = i.itemID
              AND f.fieldName = 'title'
              AND idv.value LIKE ?)`
		args = append(args, "%"+query+"%")
	}

	for _, tag := range tags {
		sqlQuery += `
AND EXISTS (SELECT 1 FROM itemTags itn
            JOIN tags t ON itn.tagID = t.tagID
            WHERE itn.itemID = i.itemID AND t.name = ?)`
		args = append(args, tag)
	}

	sqlQuery += "\nORDER BY i.dateModified DESC"

	rows, err := c.db.QueryContext(ctx, sqlQuery, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to search items: %w", err)
	}
	defer rows.Close()

	type rawItem struct {
		itemID int64
		item   models.Item
	}
	var raw []rawItem
	for rows.Next() {
		var r rawItem
		var title, abstract, url, date sql.NullString
		if err := rows.Scan(&r.itemID, &r.item.Key, &r.item.DateAdded, &r.item.DateModified,
			&r.item.ItemType, &title, &abstract, &url, &date); err != nil {
			return nil, fmt.Errorf("failed to scan item: %w", err)
		}
		r.item.Title = title.String
		r.item.Abstract = abstract.String
		r.item.URL = url.String
		r.item.Date = date.String
		raw = append(raw, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating items: %w", err)
	}

	// Secondary queries resolve the ordered creator list and tag set per item.
	items := make([]models.Item, 0, len(raw))
	for _, r := range raw {
		creators, err := c.itemCreators(ctx, r.itemID)
		if err != nil {
			return nil, err
		}
		r.item.Creators = creators

		itemTags, err := c.itemTags(ctx, r.itemID)
		if err != nil {
			return nil, err
		}
		r.item.Tags = itemTags

		items = append(items, r.item)
	}

	return items, nil
}

// GetItemByKey resolves a key to a single item. Internally this performs a
// full search pass and filters by key equality, so it costs as much as
// SearchItems with no filters.
func (c *SQLiteCatalog) GetItemByKey(ctx context.Context, key string) (*models.Item, error) {
	if _, _, err := c.resolveItem(ctx, key); err != nil {
		return nil, err
	}

	items, err := c.SearchItems(ctx, "", nil)
	if err != nil {
		return nil, err
	}
	for i := range items {
		if items[i].Key == key {
			return &items[i], nil
		}
	}
	// Resolvable by key but excluded from search: an attachment or note key.
	return nil, fmt.Errorf("%w: item %s is not a bibliographic item", ErrNotFound, key)
}

// GetItemNotes returns all child notes of the item, ordered by creation time.
func (c *SQLiteCatalog) GetItemNotes(ctx context.Context, itemKey string) ([]models.Note, error) {
	parentID, _, err := c.resolveItem(ctx, itemKey)
	if err != nil {
		return nil, err
	}

	rows, err := c.db.QueryContext(ctx, `
		SELECT i.itemID, i.key, inotes.note, inotes.title
		FROM items i
		JOIN itemNotes inotes ON i.itemID = inotes.itemID
		WHERE inotes.parentItemID = ?
		ORDER BY i.dateAdded
	`, parentID)
	if err != nil {
		return nil, fmt.Errorf("failed to query notes: %w", err)
	}
	defer rows.Close()

	type rawNote struct {
		itemID int64
		note   models.Note
	}
	var raw []rawNote
	for rows.Next() {
		var r rawNote
		var text, title sql.NullString
		if err := rows.Scan(&r.itemID, &r.note.Key, &text, &title); err != nil {
			return nil, fmt.Errorf("failed to scan note: %w", err)
		}
		r.note.Text = text.String
		r.note.Title = title.String
		raw = append(raw, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating notes: %w", err)
	}

	notes := make([]models.Note, 0, len(raw))
	for _, r := range raw {
		noteTags, err := c.itemTags(ctx, r.itemID)
		if err != nil {
			return nil, err
		}
		r.note.Tags = noteTags
		notes = append(notes, r.note)
	}

	return notes, nil
}

// AddNote creates a note under the given parent item. The identifier
// allocation, the item row, the note content, and every tag link are written
// inside one immediate transaction; any failure aborts the whole write.
func (c *SQLiteCatalog) AddNote(ctx context.Context, itemKey, text string, tags []string) (*models.Note, error) {
	parentID, libraryID, err := c.resolveItem(ctx, itemKey)
	if err != nil {
		return nil, err
	}

	key, err := MintItemKey()
	if err != nil {
		return nil, err
	}

	tx, err := c.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to begin transaction: %v", ErrTransaction, err)
	}
	defer tx.Rollback()

	noteID, err := nextItemID(ctx, tx)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTransaction, err)
	}

	var noteTypeID int64
	err = tx.QueryRowContext(ctx, "SELECT itemTypeID FROM itemTypes WHERE typeName = 'note'").Scan(&noteTypeID)
	if err != nil {
		return nil, fmt.Errorf("%w: note item type not found: %v", ErrTransaction, err)
	}

	now := time.Now().UTC().Format("2006-01-02 15:04:05")

	_, err = tx.ExecContext(ctx, `
		INSERT INTO items (itemID, itemTypeID, dateAdded, dateModified, key, libraryID)
		VALUES (?, ?, ?, ?, ?, ?)
	`, noteID, noteTypeID, now, now, key, libraryID)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to insert note item: %v", ErrTransaction, err)
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO itemNotes (itemID, parentItemID, note)
		VALUES (?, ?, ?)
	`, noteID, parentID, text)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to insert note content: %v", ErrTransaction, err)
	}

	for _, tag := range tags {
		if err := c.linkTag(ctx, tx, noteID, tag); err != nil {
			return nil, fmt.Errorf("%w: failed to tag note with %q: %v", ErrTransaction, tag, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("%w: failed to commit note: %v", ErrTransaction, err)
	}

	return &models.Note{Key: key, Text: text, Tags: tags}, nil
}

// linkTag attaches a tag by name to an item inside tx, creating the tag row
// if it does not exist yet. Linking is idempotent at the name level.
func (c *SQLiteCatalog) linkTag(ctx context.Context, tx *sql.Tx, itemID int64, name string) error {
	var tagID int64
	err := tx.QueryRowContext(ctx, "SELECT tagID FROM tags WHERE name = ?", name).Scan(&tagID)
	if err == sql.ErrNoRows {
		tagID, err = nextTagID(ctx, tx)
		if err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, "INSERT INTO tags (tagID, name) VALUES (?, ?)", tagID, name); err != nil {
			return err
		}
	} else if err != nil {
		return err
	}

	_, err = tx.ExecContext(ctx, "INSERT OR IGNORE INTO itemTags (itemID, tagID, type) VALUES (?, ?, 0)", itemID, tagID)
	return err
}

// GetPDFContent finds the item's first PDF attachment, reads the file from
// Zotero's storage directory, and extracts its text.
func (c *SQLiteCatalog) GetPDFContent(ctx context.Context, itemKey string) (*models.PDFContent, error) {
	itemID, _, err := c.resolveItem(ctx, itemKey)
	if err != nil {
		return nil, err
	}

	var attachmentKey string
	err = c.db.QueryRowContext(ctx, `
		SELECT i.key
		FROM items i
		JOIN itemAttachments ia ON i.itemID = ia.itemID
		WHERE ia.parentItemID = ? AND ia.contentType = 'application/pdf'
		ORDER BY i.dateAdded
		LIMIT 1
	`, itemID).Scan(&attachmentKey)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("%w: no PDF attachment found for item %s", ErrNotFound, itemKey)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query attachments: %w", err)
	}

	// Attachment files live in storage/<attachmentKey>/.
	attachmentDir := filepath.Join(c.storagePath, attachmentKey)
	info, err := os.Stat(attachmentDir)
	if err != nil || !info.IsDir() {
		return nil, fmt.Errorf("%w: attachment directory not found for %s", ErrNotFound, attachmentKey)
	}

	pdfFiles, err := filepath.Glob(filepath.Join(attachmentDir, "*.pdf"))
	if err != nil {
		return nil, fmt.Errorf("failed to list attachment directory: %w", err)
	}
	if len(pdfFiles) == 0 {
		return nil, fmt.Errorf("%w: PDF file not found in storage for %s", ErrNotFound, attachmentKey)
	}

	data, err := os.ReadFile(pdfFiles[0])
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read %s: %v", ErrNotFound, pdfFiles[0], err)
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

// RequestSummary is only meaningful for the API-mediated backend, where the
// out-of-band pipeline watches the remote library for the marker tag.
func (c *SQLiteCatalog) RequestSummary(ctx context.Context, itemKey string) error {
	return fmt.Errorf("%w: summary requests require the API backend", ErrRemoteUnavailable)
}

// Close closes the database connection.
func (c *SQLiteCatalog) Close() error {
	if c.db != nil {
		return c.db.Close()
	}
	return nil
}

// resolveItem maps a public key to the internal row ID and owning library,
// or ErrNotFound. Internal IDs are never cached across calls because Zotero
// may modify the database at any time.
func (c *SQLiteCatalog) resolveItem(ctx context.Context, key string) (itemID, libraryID int64, err error) {
	err = c.db.QueryRowContext(ctx, "SELECT itemID, libraryID FROM items WHERE key = ?", key).Scan(&itemID, &libraryID)
	if err == sql.ErrNoRows {
		return 0, 0, fmt.Errorf("%w: item %s", ErrNotFound, key)
	}
	if err != nil {
		return 0, 0, fmt.Errorf("failed to resolve item %s: %w", key, err)
	}
	return itemID, libraryID, nil
}

// itemCreators returns the item's creators in their declared order.
func (c *SQLiteCatalog) itemCreators(ctx context.Context, itemID int64) ([]models.Creator, error) {
	rows, err := c.db.QueryContext(ctx, `
		SELECT c.firstName, c.lastName, ct.creatorType
		FROM itemCreators ic
		JOIN creators c ON ic.creatorID = c.creatorID
		JOIN creatorTypes ct ON ic.creatorTypeID = ct.creatorTypeID
		WHERE ic.itemID = ?
		ORDER BY ic.orderIndex
	`, itemID)
	if err != nil {
		return nil, fmt.Errorf("failed to query creators: %w", err)
	}
	defer rows.Close()

	var creators []models.Creator
	for rows.Next() {
		var cr models.Creator
		var first, last sql.NullString
		if err := rows.Scan(&first, &last, &cr.CreatorType); err != nil {
			return nil, fmt.Errorf("failed to scan creator: %w", err)
		}
		cr.FirstName = first.String
		cr.LastName = last.String
		creators = append(creators, cr)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating creators: %w", err)
	}

	return creators, nil
}

// itemTags returns the item's tag names.
func (c *SQLiteCatalog) itemTags(ctx context.Context, itemID int64) ([]string, error) {
	rows, err := c.db.QueryContext(ctx, `
		SELECT t.name
		FROM itemTags itn
		JOIN tags t ON itn.tagID = t.tagID
		WHERE itn.itemID = ?
	`, itemID)
	if err != nil {
		return nil, fmt.Errorf("failed to query tags: %w", err)
	}
	defer rows.Close()

	var tags []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("failed to scan tag: %w", err)
		}
		tags = append(tags, name)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating tags: %w", err)
	}

	return tags, nil
}

// expandHome expands a leading ~ in path to the user's home directory.
func expandHome(path string) (string, error) {
	if path == "~" || strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to expand ~ in %s: %w", path, err)
		}
		return filepath.Join(home, strings.TrimPrefix(path, "~")), nil
	}
	return path, nil
}

var _ Catalog = (*SQLiteCatalog)(nil)
