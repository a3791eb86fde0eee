package catalog

import (
	"context"
	"database/sql"
	"fmt"

	gonanoid "github.com/matoous/go-nanoid/v2"
)

// itemKeyAlphabet matches the character set Zotero uses for item keys.
const (
	itemKeyAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	itemKeyLength   = 8
)

// MintItemKey generates a fresh 8-character Zotero-style item key. Key
// generation policy is isolated here so it can change without touching
// call sites.
func MintItemKey() (string, error) {
	key, err := gonanoid.Generate(itemKeyAlphabet, itemKeyLength)
	if err != nil {
		return "", fmt.Errorf("failed to mint item key: %w", err)
	}
	return key, nil
}

// nextItemID allocates the next internal row identifier as MAX(itemID)+1.
// It must run inside the same transaction as the insert that uses it: the
// read and the dependent write have to be covered by one immediate
// transaction, or two concurrent writers could collide on the same ID.
// Allocated IDs may have gaps but are never duplicated.
func nextItemID(ctx context.Context, tx *sql.Tx) (int64, error) {
	var maxID sql.NullInt64
	if err := tx.QueryRowContext(ctx, "SELECT MAX(itemID) FROM items").Scan(&maxID); err != nil {
		return 0, fmt.Errorf("failed to allocate item ID: %w", err)
	}
	return maxID.Int64 + 1, nil
}

// nextTagID allocates the next tag row identifier, same contract as
// nextItemID.
func nextTagID(ctx context.Context, tx *sql.Tx) (int64, error) {
	var maxID sql.NullInt64
	if err := tx.QueryRowContext(ctx, "SELECT MAX(tagID) FROM tags").Scan(&maxID); err != nil {
		return 0, fmt.Errorf("failed to allocate tag ID: %w", err)
	}
	return maxID.Int64 + 1, nil
}
