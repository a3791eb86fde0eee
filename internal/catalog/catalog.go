// Package catalog provides read and write access to a Zotero library through
// one of two interchangeable backends: direct access to the zotero.sqlite
// database, or the Zotero local/web HTTP API. Callers select a backend at
// startup and use the same Catalog interface for both.
package catalog

import (
	"context"
	"errors"

	"github.com/swairshah/zotero-mcp-server/models"
)

// Marker tags recognized by the out-of-band summarization pipeline.
const (
	SummaryRequestTag = "todo"
	SummarizedTag     = "summarized"
	SummaryErrorTag   = "error"
	SummaryDenyTag    = "deny"
)

// Sentinel errors for the failure taxonomy. Implementations wrap these with
// fmt.Errorf("...: %w", ...) so callers can match with errors.Is while still
// getting a descriptive message.
var (
	// ErrNotFound reports a missing item, parent, attachment, or file.
	ErrNotFound = errors.New("not found")
	// ErrConnection reports that the catalog is unreachable or malformed.
	ErrConnection = errors.New("catalog connection failed")
	// ErrTransaction reports an aborted write; no partial state persists.
	ErrTransaction = errors.New("transaction aborted")
	// ErrExtraction reports that PDF text extraction failed.
	ErrExtraction = errors.New("text extraction failed")
	// ErrRemoteUnavailable reports that the API-mediated backend is
	// unreachable, or that a capability is disabled for this backend.
	ErrRemoteUnavailable = errors.New("remote API unavailable")
)

// Catalog is the uniform contract both backends implement.
type Catalog interface {
	// SearchItems returns top-level bibliographic items (never attachments or
	// notes) whose title matches query as a case-insensitive substring (when
	// non-empty) and which carry every tag in tags (conjunction). Results are
	// ordered most recently modified first, with creators and tags resolved.
	SearchItems(ctx context.Context, query string, tags []string) ([]models.Item, error)

	// GetItemByKey resolves a public key to exactly one item, or ErrNotFound.
	// This is implemented as a full search pass filtered by key; callers must
	// not assume it is cheaper than SearchItems.
	GetItemByKey(ctx context.Context, key string) (*models.Item, error)

	// GetItemNotes returns all child notes of the item, ordered by creation
	// time, each with its own tag set.
	GetItemNotes(ctx context.Context, itemKey string) ([]models.Note, error)

	// AddNote creates a note under the given parent. The parent must exist
	// (ErrNotFound otherwise). The whole write is atomic: either the note row,
	// its content, and all tag links are persisted, or nothing is.
	AddNote(ctx context.Context, itemKey, text string, tags []string) (*models.Note, error)

	// GetPDFContent locates the item's first PDF attachment and returns its
	// extracted text and page count. The text is derived on demand and never
	// cached in the catalog.
	GetPDFContent(ctx context.Context, itemKey string) (*models.PDFContent, error)

	// RequestSummary idempotently appends the summary-request marker tag to an
	// item, signaling the out-of-band summarization pipeline. Only supported
	// by the API-mediated backend; others report ErrRemoteUnavailable.
	RequestSummary(ctx context.Context, itemKey string) error

	// Close releases backend resources.
	Close() error
}
