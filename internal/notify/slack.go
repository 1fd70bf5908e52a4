package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"replyflow/internal/models"
)

// maxReportedErrors caps how many per-candidate failures are included in
// the webhook payload.
const maxReportedErrors = 10

// Slack posts run summaries to a Slack incoming webhook. Delivery is
// best-effort: callers treat errors as warnings, never as run failures.
type Slack struct {
	webhookURL string
	httpClient *http.Client
}

// NewSlack creates a dispatcher for the given webhook URL. An empty URL
// yields a disabled dispatcher whose Notify is an immediate no-op.
func NewSlack(webhookURL string, timeout time.Duration) *Slack {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Slack{
		webhookURL: webhookURL,
		httpClient: &http.Client{Timeout: timeout},
	}
}

// Enabled reports whether a webhook endpoint is configured.
func (s *Slack) Enabled() bool {
	return s.webhookURL != ""
}

type webhookPayload struct {
	Channel string `json:"channel,omitempty"`
	Text    string `json:"text"`
}

// Notify posts the run summary. channel is an optional override hint for
// the webhook's default channel.
func (s *Slack) Notify(ctx context.Context, summary *models.RunSummary, channel *string) error {
	if !s.Enabled() {
		return nil
	}

	payload := webhookPayload{Text: formatSummary(summary)}
	if channel != nil && *channel != "" {
		payload.Channel = *channel
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal slack payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.webhookURL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build slack request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("post slack webhook: %w", err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("slack webhook returned status %d", resp.StatusCode)
	}
	return nil
}

// formatSummary renders the run counts plus the first few failure
// reasons as a single webhook message.
func formatSummary(summary *models.RunSummary) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Auto-reply run finished: %d replied, %d skipped, %d failed.",
		summary.Processed, summary.Skipped, len(summary.Errors))

	n := len(summary.Errors)
	if n > maxReportedErrors {
		n = maxReportedErrors
	}
	for _, e := range summary.Errors[:n] {
		fmt.Fprintf(&b, "\n• %s: %s", e.MessageID, e.Reason)
	}
	if len(summary.Errors) > maxReportedErrors {
		fmt.Fprintf(&b, "\n…and %d more", len(summary.Errors)-maxReportedErrors)
	}
	return b.String()
}
