package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func newTestWriter(ts *httptest.Server) *webWriter {
	return &webWriter{
		baseURL: ts.URL,
		apiKey:  "test-key",
		client:  &http.Client{Timeout: 5 * time.Second},
	}
}

func TestWebWriter_CreateNote(t *testing.T) {
	var received []noteTemplate
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/items" {
			t.Errorf("Unexpected request %s %s", r.Method, r.URL.Path)
		}
		if r.Header.Get("Zotero-API-Key") != "test-key" {
			t.Error("Missing API key header")
		}
		if r.Header.Get("Zotero-API-Version") != "3" {
			t.Error("Missing API version header")
		}
		if err := json.NewDecoder(r.Body).Decode(&received); err != nil {
			t.Errorf("Failed to decode payload: %v", err)
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{
			"successful": map[string]any{"0": map[string]string{"key": "NEWNOTE1"}},
			"failed":     map[string]any{},
		})
	}))
	defer ts.Close()

	key, err := newTestWriter(ts).createNote(context.Background(), "ABC123AB", "<p>hi</p>", []string{"a", "b"})
	if err != nil {
		t.Fatalf("createNote failed: %v", err)
	}
	if key != "NEWNOTE1" {
		t.Errorf("Expected key NEWNOTE1, got %s", key)
	}

	if len(received) != 1 {
		t.Fatalf("Expected 1 item in payload, got %d", len(received))
	}
	note := received[0]
	if note.ItemType != "note" || note.ParentItem != "ABC123AB" || note.Note != "<p>hi</p>" {
		t.Errorf("Unexpected payload %+v", note)
	}
	if len(note.Tags) != 2 || note.Tags[0].Tag != "a" || note.Tags[1].Tag != "b" {
		t.Errorf("Unexpected tags %+v", note.Tags)
	}
}

func TestWebWriter_CreateNoteRejected(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{
			"successful": map[string]any{},
			"failed":     map[string]any{"0": map[string]any{"code": 400, "message": "Parent item not found"}},
		})
	}))
	defer ts.Close()

	_, err := newTestWriter(ts).createNote(context.Background(), "MISSING1", "x", nil)
	if !errors.Is(err, ErrTransaction) {
		t.Fatalf("Expected ErrTransaction, got %v", err)
	}
}

func TestWebWriter_CreateNoteServerError(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "down", http.StatusServiceUnavailable)
	}))
	defer ts.Close()

	_, err := newTestWriter(ts).createNote(context.Background(), "ABC123AB", "x", nil)
	if !errors.Is(err, ErrRemoteUnavailable) {
		t.Fatalf("Expected ErrRemoteUnavailable, got %v", err)
	}
}

func TestWebWriter_SetTags(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPatch || r.URL.Path != "/items/ABC123AB" {
			t.Errorf("Unexpected request %s %s", r.Method, r.URL.Path)
		}
		if r.Header.Get("If-Unmodified-Since-Version") != "42" {
			t.Errorf("Unexpected version precondition %q", r.Header.Get("If-Unmodified-Since-Version"))
		}
		var payload struct {
			Tags []tagEntry `json:"tags"`
		}
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			t.Errorf("Failed to decode payload: %v", err)
		}
		if len(payload.Tags) != 2 {
			t.Errorf("Expected 2 tags, got %+v", payload.Tags)
		}
		w.WriteHeader(http.StatusNoContent)
	}))
	defer ts.Close()

	err := newTestWriter(ts).setTags(context.Background(), "ABC123AB", 42, []string{"test", SummaryRequestTag})
	if err != nil {
		t.Fatalf("setTags failed: %v", err)
	}
}

func TestWebWriter_SetTagsVersionConflict(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "item has changed", http.StatusPreconditionFailed)
	}))
	defer ts.Close()

	err := newTestWriter(ts).setTags(context.Background(), "ABC123AB", 1, []string{"x"})
	if !errors.Is(err, ErrRemoteUnavailable) {
		t.Fatalf("Expected ErrRemoteUnavailable, got %v", err)
	}
}
