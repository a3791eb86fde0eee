package convert

import (
	"context"
	"strings"
	"testing"
	"time"
)

// The client tests run against a real Server instance over httptest, so they
// also exercise the wire contract end to end.

func TestClient_SubmitAndWait(t *testing.T) {
	ts := newTestServer(t, ConverterFunc(func(ctx context.Context, data []byte) (string, error) {
		return "markdown for " + string(data), nil
	}))
	client := NewClient(ts.URL)
	ctx := context.Background()

	callID, err := client.Submit(ctx, []byte("thesis"))
	if err != nil {
		t.Fatalf("Submit failed: %v", err)
	}
	if callID == "" {
		t.Fatal("Submit returned empty call ID")
	}

	text, err := client.Wait(ctx, callID, 5*time.Millisecond)
	if err != nil {
		t.Fatalf("Wait failed: %v", err)
	}
	if text != "markdown for thesis" {
		t.Errorf("Unexpected result %q", text)
	}
}

func TestClient_PollPending(t *testing.T) {
	release := make(chan struct{})
	defer close(release)
	ts := newTestServer(t, ConverterFunc(func(ctx context.Context, data []byte) (string, error) {
		<-release
		return "", nil
	}))
	client := NewClient(ts.URL)
	ctx := context.Background()

	callID, err := client.Submit(ctx, []byte("slow"))
	if err != nil {
		t.Fatalf("Submit failed: %v", err)
	}

	_, pending, err := client.Poll(ctx, callID)
	if err != nil {
		t.Fatalf("Poll failed: %v", err)
	}
	if !pending {
		t.Error("Expected pending=true while converter is blocked")
	}
}

func TestClient_PollUnknownCall(t *testing.T) {
	ts := newTestServer(t, TextConverter{})
	client := NewClient(ts.URL)

	_, _, err := client.Poll(context.Background(), "never-issued")
	if err == nil {
		t.Fatal("Expected error for unknown call ID")
	}
	if !strings.Contains(err.Error(), "404") {
		t.Errorf("Expected a 404 in the error, got %v", err)
	}
}

func TestClient_WaitCanceled(t *testing.T) {
	release := make(chan struct{})
	defer close(release)
	ts := newTestServer(t, ConverterFunc(func(ctx context.Context, data []byte) (string, error) {
		<-release
		return "", nil
	}))
	client := NewClient(ts.URL)

	callID, err := client.Submit(context.Background(), []byte("slow"))
	if err != nil {
		t.Fatalf("Submit failed: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err = client.Wait(ctx, callID, 10*time.Millisecond)
	if err == nil {
		t.Fatal("Expected Wait to fail when the context expires")
	}
}
