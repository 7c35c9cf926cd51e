// Package webhook posts a signed run summary to an HTTP endpoint.
package webhook

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/use-agent/jobscout/models"
)

// Event types.
const (
	EventCompleted = "crawl.completed"
	EventFailed    = "crawl.failed"
)

// SignatureHeader carries "sha256=<hex>" of the body when a secret is set.
const SignatureHeader = "X-Jobscout-Signature"

// Event is the payload sent to webhook endpoints.
type Event struct {
	Type      string              `json:"type"`
	RunID     string              `json:"run_id"`
	Timestamp int64               `json:"timestamp"`
	Data      RunData             `json:"data"`
	Error     *models.ErrorDetail `json:"error,omitempty"`
}

// RunData summarises what a run produced.
type RunData struct {
	Jobs          int     `json:"jobs"`
	Candidates    int     `json:"candidates"`
	ProcessedJobs int     `json:"processed_jobs"`
	DurationSecs  float64 `json:"duration_seconds"`
}

// NewEvent builds the event for a finished run. A non-nil err marks it failed.
func NewEvent(runID string, data RunData, err error, now time.Time) *Event {
	ev := &Event{
		Type:      EventCompleted,
		RunID:     runID,
		Timestamp: now.Unix(),
		Data:      data,
	}
	if err != nil {
		ev.Type = EventFailed
		ev.Error = models.DetailOf(err)
	}
	return ev
}

// Sign returns the hex HMAC-SHA256 of body under secret.
func Sign(secret string, body []byte) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	return hex.EncodeToString(mac.Sum(nil))
}

// Deliver sends a webhook event synchronously.
// The request body is signed with HMAC-SHA256 if secret is non-empty.
func Deliver(ctx context.Context, url, secret string, event *Event) error {
	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("webhook: marshal event: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("webhook: create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", "Jobscout-Webhook/1.0")

	if secret != "" {
		req.Header.Set(SignatureHeader, "sha256="+Sign(secret, body))
	}

	client := &http.Client{Timeout: 10 * time.Second}
	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("webhook: deliver: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return fmt.Errorf("webhook: endpoint returned status %d", resp.StatusCode)
	}
	return nil
}
