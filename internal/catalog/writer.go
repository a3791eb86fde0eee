package catalog

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"
)

// webWriter is the write channel for the API-mediated catalog. The read
// client library only covers the read surface of the Zotero API, so the two
// write calls this system needs (create a note, replace an item's tags) talk
// to api.zotero.org directly.
type webWriter struct {
	baseURL string
	apiKey  string
	client  *http.Client
}

func newWebWriter(userID, apiKey string) *webWriter {
	return &webWriter{
		baseURL: fmt.Sprintf("https://api.zotero.org/users/%s", userID),
		apiKey:  apiKey,
		client:  &http.Client{Timeout: 30 * time.Second},
	}
}

// noteTemplate is the item-creation payload for a child note.
type noteTemplate struct {
	ItemType   string     `json:"itemType"`
	ParentItem string     `json:"parentItem"`
	Note       string     `json:"note"`
	Tags       []tagEntry `json:"tags"`
}

type tagEntry struct {
	Tag string `json:"tag"`
}

// writeResponse is the per-index outcome map the items endpoint returns.
type writeResponse struct {
	Successful map[string]struct {
		Key string `json:"key"`
	} `json:"successful"`
	Failed map[string]struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	} `json:"failed"`
}

// createNote posts a single note item and returns its server-assigned key.
func (w *webWriter) createNote(ctx context.Context, parentKey, text string, tags []string) (string, error) {
	entries := make([]tagEntry, 0, len(tags))
	for _, tag := range tags {
		entries = append(entries, tagEntry{Tag: tag})
	}
	payload := []noteTemplate{{
		ItemType:   "note",
		ParentItem: parentKey,
		Note:       text,
		Tags:       entries,
	}}

	body, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("failed to marshal note: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, w.baseURL+"/items", bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Zotero-API-Key", w.apiKey)
	req.Header.Set("Zotero-API-Version", "3")

	resp, err := w.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrRemoteUnavailable, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("%w: failed to read response: %v", ErrRemoteUnavailable, err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("%w: items endpoint returned %d: %s", ErrRemoteUnavailable, resp.StatusCode, respBody)
	}

	var result writeResponse
	if err := json.Unmarshal(respBody, &result); err != nil {
		return "", fmt.Errorf("%w: unexpected response from items endpoint: %v", ErrRemoteUnavailable, err)
	}

	if created, ok := result.Successful["0"]; ok {
		return created.Key, nil
	}
	if failure, ok := result.Failed["0"]; ok {
		return "", fmt.Errorf("%w: note creation failed (code %d): %s", ErrTransaction, failure.Code, failure.Message)
	}
	return "", fmt.Errorf("%w: unknown response from items endpoint", ErrRemoteUnavailable)
}

// setTags replaces the item's tag set. The version precondition makes the
// update fail cleanly if the item changed since it was read.
func (w *webWriter) setTags(ctx context.Context, itemKey string, version int, tags []string) error {
	entries := make([]tagEntry, 0, len(tags))
	for _, tag := range tags {
		entries = append(entries, tagEntry{Tag: tag})
	}

	body, err := json.Marshal(map[string]any{"tags": entries})
	if err != nil {
		return fmt.Errorf("failed to marshal tags: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPatch, w.baseURL+"/items/"+itemKey, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Zotero-API-Key", w.apiKey)
	req.Header.Set("Zotero-API-Version", "3")
	req.Header.Set("If-Unmodified-Since-Version", strconv.Itoa(version))

	resp, err := w.client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrRemoteUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusNoContent {
		respBody, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("%w: tag update returned %d: %s", ErrRemoteUnavailable, resp.StatusCode, respBody)
	}
	return nil
}
