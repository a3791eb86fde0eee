package convert

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/swairshah/zotero-mcp-server/internal/logger"
)

// waitDone polls until the job leaves the pending state or the deadline hits.
func waitDone(t *testing.T, jobs *Jobs, callID string) (string, error) {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		text, pending, err := jobs.Result(callID)
		if !pending {
			return text, err
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("Job %s did not complete in time", callID)
	return "", nil
}

func TestJobs_SubmitAndResult(t *testing.T) {
	jobs := NewJobs(ConverterFunc(func(ctx context.Context, data []byte) (string, error) {
		return "converted: " + string(data), nil
	}), logger.NewNoOpLogger())

	callID := jobs.Submit([]byte("abc"))
	if callID == "" {
		t.Fatal("Submit returned empty call ID")
	}

	text, err := waitDone(t, jobs, callID)
	if err != nil {
		t.Fatalf("Job failed: %v", err)
	}
	if text != "converted: abc" {
		t.Errorf("Unexpected result %q", text)
	}

	// Results stay available after the first read.
	text, pending, err := jobs.Result(callID)
	if err != nil || pending || text != "converted: abc" {
		t.Errorf("Second read: text=%q pending=%v err=%v", text, pending, err)
	}
}

func TestJobs_PendingWhileRunning(t *testing.T) {
	release := make(chan struct{})
	jobs := NewJobs(ConverterFunc(func(ctx context.Context, data []byte) (string, error) {
		<-release
		return "done", nil
	}), logger.NewNoOpLogger())

	callID := jobs.Submit(nil)

	_, pending, err := jobs.Result(callID)
	if err != nil {
		t.Fatalf("Result failed: %v", err)
	}
	if !pending {
		t.Fatal("Expected job to be pending before converter finishes")
	}

	close(release)
	if text, err := waitDone(t, jobs, callID); err != nil || text != "done" {
		t.Errorf("Expected done, got text=%q err=%v", text, err)
	}
}

func TestJobs_FailedConversion(t *testing.T) {
	jobs := NewJobs(ConverterFunc(func(ctx context.Context, data []byte) (string, error) {
		return "", errors.New("broken document")
	}), logger.NewNoOpLogger())

	callID := jobs.Submit(nil)
	_, err := waitDone(t, jobs, callID)
	if err == nil || err.Error() != "broken document" {
		t.Fatalf("Expected conversion error, got %v", err)
	}
}

func TestJobs_UnknownCall(t *testing.T) {
	jobs := NewJobs(ConverterFunc(func(ctx context.Context, data []byte) (string, error) {
		return "", nil
	}), logger.NewNoOpLogger())

	_, _, err := jobs.Result("never-issued")
	if !errors.Is(err, ErrUnknownCall) {
		t.Fatalf("Expected ErrUnknownCall, got %v", err)
	}
}
