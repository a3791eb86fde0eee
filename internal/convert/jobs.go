package convert

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"github.com/swairshah/zotero-mcp-server/internal/logger"
)

// ErrUnknownCall reports a poll for a call ID this process never issued.
// Jobs are ephemeral: a restarted server forgets all handles, and callers
// are expected to resubmit.
var ErrUnknownCall = fmt.Errorf("unknown call ID")

type jobState int

const (
	jobPending jobState = iota
	jobDone
	jobFailed
)

type job struct {
	state  jobState
	result string
	err    error
}

// Jobs is an in-memory registry of conversion jobs keyed by call ID. Each
// submission runs in its own goroutine; results stay available until the
// process exits.
type Jobs struct {
	converter Converter
	log       logger.Logger

	mu   sync.Mutex
	jobs map[string]*job
}

// NewJobs creates a registry that runs conversions through converter.
func NewJobs(converter Converter, log logger.Logger) *Jobs {
	return &Jobs{
		converter: converter,
		log:       log,
		jobs:      make(map[string]*job),
	}
}

// Submit schedules a conversion and returns its call ID immediately.
func (j *Jobs) Submit(data []byte) string {
	callID := uuid.NewString()

	j.mu.Lock()
	j.jobs[callID] = &job{state: jobPending}
	j.mu.Unlock()

	go func() {
		// The job outlives the submitting request, so it gets its own context.
		text, err := j.converter.Convert(context.Background(), data)

		j.mu.Lock()
		defer j.mu.Unlock()
		entry := j.jobs[callID]
		if err != nil {
			j.log.Error("Conversion job %s failed: %v", callID, err)
			entry.state = jobFailed
			entry.err = err
			return
		}
		j.log.Info("Conversion job %s completed (%d chars)", callID, len(text))
		entry.state = jobDone
		entry.result = text
	}()

	return callID
}

// Result reports the job's outcome without blocking. pending is true while
// the job is still running; err is ErrUnknownCall for IDs this registry
// never issued, or the conversion failure once the job ends.
func (j *Jobs) Result(callID string) (text string, pending bool, err error) {
	j.mu.Lock()
	defer j.mu.Unlock()

	entry, ok := j.jobs[callID]
	if !ok {
		return "", false, fmt.Errorf("%w: %s", ErrUnknownCall, callID)
	}
	switch entry.state {
	case jobPending:
		return "", true, nil
	case jobFailed:
		return "", false, entry.err
	default:
		return entry.result, false, nil
	}
}
