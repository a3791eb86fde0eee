package convert

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"time"
)

// Client talks to a running conversion job service. The service is treated
// as an opaque, fallible collaborator: every call carries its own timeout,
// and Poll never blocks on an unfinished job.
type Client struct {
	baseURL string
	http    *http.Client
}

// NewClient creates a client for the service at baseURL (no trailing slash).
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: baseURL,
		http:    &http.Client{Timeout: 5 * time.Minute},
	}
}

// Submit uploads PDF bytes and returns the job's call ID.
func (c *Client) Submit(ctx context.Context, data []byte) (string, error) {
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, err := mw.CreateFormFile("paper", "paper.pdf")
	if err != nil {
		return "", err
	}
	if _, err := part.Write(data); err != nil {
		return "", err
	}
	if err := mw.Close(); err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/parse", &body)
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to submit conversion job: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("conversion service returned %d: %s", resp.StatusCode, respBody)
	}

	var result struct {
		CallID string `json:"call_id"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", fmt.Errorf("unexpected response from conversion service: %w", err)
	}
	if result.CallID == "" {
		return "", fmt.Errorf("conversion service returned no call ID")
	}
	return result.CallID, nil
}

// Poll checks a job without blocking. pending is true while the job runs.
func (c *Client) Poll(ctx context.Context, callID string) (text string, pending bool, err error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/result/"+callID, nil)
	if err != nil {
		return "", false, err
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return "", false, fmt.Errorf("failed to poll conversion job: %w", err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusAccepted:
		return "", true, nil
	case http.StatusOK:
		if err := json.NewDecoder(resp.Body).Decode(&text); err != nil {
			return "", false, fmt.Errorf("unexpected result payload: %w", err)
		}
		return text, false, nil
	default:
		respBody, _ := io.ReadAll(resp.Body)
		return "", false, fmt.Errorf("conversion service returned %d: %s", resp.StatusCode, respBody)
	}
}

// Wait polls until the job completes, the context is canceled, or the
// service reports a failure.
func (c *Client) Wait(ctx context.Context, callID string, interval time.Duration) (string, error) {
	if interval <= 0 {
		interval = 2 * time.Second
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		text, pending, err := c.Poll(ctx, callID)
		if err != nil {
			return "", err
		}
		if !pending {
			return text, nil
		}
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-ticker.C:
		}
	}
}
