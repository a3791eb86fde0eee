package convert

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/swairshah/zotero-mcp-server/internal/logger"
)

func newTestServer(t *testing.T, converter Converter) *httptest.Server {
	t.Helper()
	ts := httptest.NewServer(NewServer(converter, logger.NewNoOpLogger()))
	t.Cleanup(ts.Close)
	return ts
}

// postPaper uploads data as the multipart "paper" field.
func postPaper(t *testing.T, url string, data []byte) *http.Response {
	t.Helper()

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, err := mw.CreateFormFile("paper", "paper.pdf")
	if err != nil {
		t.Fatalf("Failed to create form file: %v", err)
	}
	if _, err := part.Write(data); err != nil {
		t.Fatalf("Failed to write form file: %v", err)
	}
	mw.Close()

	resp, err := http.Post(url, mw.FormDataContentType(), &body)
	if err != nil {
		t.Fatalf("POST failed: %v", err)
	}
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func TestServer_Health(t *testing.T) {
	ts := newTestServer(t, TextConverter{})

	resp, err := http.Get(ts.URL + "/health")
	if err != nil {
		t.Fatalf("GET /health failed: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Errorf("Expected 200, got %d", resp.StatusCode)
	}
}

func TestServer_SubmitAndPoll(t *testing.T) {
	ts := newTestServer(t, ConverterFunc(func(ctx context.Context, data []byte) (string, error) {
		return "# converted\n\n" + string(data), nil
	}))

	resp := postPaper(t, ts.URL+"/parse", []byte("paper body"))
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("Expected 200 from /parse, got %d", resp.StatusCode)
	}

	var submitted struct {
		CallID string `json:"call_id"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&submitted); err != nil {
		t.Fatalf("Failed to decode submit response: %v", err)
	}
	if submitted.CallID == "" {
		t.Fatal("Expected a call_id in the submit response")
	}

	// Poll until the job completes.
	deadline := time.Now().Add(5 * time.Second)
	for {
		result, err := http.Get(ts.URL + "/result/" + submitted.CallID)
		if err != nil {
			t.Fatalf("GET /result failed: %v", err)
		}

		if result.StatusCode == http.StatusAccepted {
			result.Body.Close()
			if time.Now().After(deadline) {
				t.Fatal("Job never completed")
			}
			time.Sleep(5 * time.Millisecond)
			continue
		}

		if result.StatusCode != http.StatusOK {
			t.Fatalf("Expected 200 from /result, got %d", result.StatusCode)
		}
		var text string
		if err := json.NewDecoder(result.Body).Decode(&text); err != nil {
			t.Fatalf("Failed to decode result: %v", err)
		}
		result.Body.Close()
		if text != "# converted\n\npaper body" {
			t.Errorf("Unexpected result %q", text)
		}
		return
	}
}

func TestServer_PendingReturns202(t *testing.T) {
	release := make(chan struct{})
	defer close(release)
	ts := newTestServer(t, ConverterFunc(func(ctx context.Context, data []byte) (string, error) {
		<-release
		return "", nil
	}))

	resp := postPaper(t, ts.URL+"/parse", []byte("slow"))
	var submitted struct {
		CallID string `json:"call_id"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&submitted); err != nil {
		t.Fatalf("Failed to decode submit response: %v", err)
	}

	result, err := http.Get(ts.URL + "/result/" + submitted.CallID)
	if err != nil {
		t.Fatalf("GET /result failed: %v", err)
	}
	defer result.Body.Close()

	if result.StatusCode != http.StatusAccepted {
		t.Errorf("Expected 202 while pending, got %d", result.StatusCode)
	}
}

func TestServer_SyncParse(t *testing.T) {
	ts := newTestServer(t, ConverterFunc(func(ctx context.Context, data []byte) (string, error) {
		return "sync: " + string(data), nil
	}))

	resp := postPaper(t, ts.URL+"/parse?sync=1", []byte("now"))
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("Expected 200, got %d", resp.StatusCode)
	}

	var text string
	if err := json.NewDecoder(resp.Body).Decode(&text); err != nil {
		t.Fatalf("Failed to decode sync response: %v", err)
	}
	if text != "sync: now" {
		t.Errorf("Unexpected sync result %q", text)
	}
}

func TestServer_SyncParseFailure(t *testing.T) {
	ts := newTestServer(t, ConverterFunc(func(ctx context.Context, data []byte) (string, error) {
		return "", errors.New("unreadable")
	}))

	resp := postPaper(t, ts.URL+"/parse?sync=1", []byte("bad"))
	if resp.StatusCode != http.StatusInternalServerError {
		t.Errorf("Expected 500 for failed sync conversion, got %d", resp.StatusCode)
	}
}

func TestServer_UnknownCallID(t *testing.T) {
	ts := newTestServer(t, TextConverter{})

	resp, err := http.Get(ts.URL + "/result/no-such-job")
	if err != nil {
		t.Fatalf("GET /result failed: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("Expected 404 for unknown call ID, got %d", resp.StatusCode)
	}
}

func TestServer_MissingPaperField(t *testing.T) {
	ts := newTestServer(t, TextConverter{})

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	if err := mw.WriteField("wrong", "field"); err != nil {
		t.Fatalf("Failed to write field: %v", err)
	}
	mw.Close()

	resp, err := http.Post(ts.URL+"/parse", mw.FormDataContentType(), &body)
	if err != nil {
		t.Fatalf("POST failed: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("Expected 400 for missing 'paper' field, got %d", resp.StatusCode)
	}
}
