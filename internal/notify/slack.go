package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/vivirisk/quotewatch/internal/domain"
)

// slackMaxAlerts caps the number of per-alert blocks in one message; the
// rest collapse into a trailing count.
const slackMaxAlerts = 15

// SlackSender delivers the digest to a Slack incoming webhook using Block
// Kit formatting.
type SlackSender struct {
	webhookURL string
	client     *http.Client
}

// NewSlackSender creates a SlackSender for the given webhook URL.
func NewSlackSender(webhookURL string) *SlackSender {
	return &SlackSender{
		webhookURL: webhookURL,
		client:     &http.Client{Timeout: 10 * time.Second},
	}
}

// Name returns the sender identifier.
func (s *SlackSender) Name() string { return "slack" }

type slackBlock struct {
	Type string     `json:"type"`
	Text *slackText `json:"text,omitempty"`
}

type slackText struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

// Send posts the digest as one Block Kit message.
func (s *SlackSender) Send(ctx context.Context, d Digest) error {
	blocks := []slackBlock{
		{Type: "header", Text: &slackText{Type: "plain_text", Text: headline(d)}},
		{Type: "section", Text: &slackText{Type: "mrkdwn", Text: d.Summary}},
		{Type: "divider"},
	}
	for i, a := range d.Alerts {
		if i == slackMaxAlerts {
			blocks = append(blocks, slackBlock{Type: "section", Text: &slackText{
				Type: "mrkdwn",
				Text: fmt.Sprintf("_...and %d more_", len(d.Alerts)-slackMaxAlerts),
			}})
			break
		}
		blocks = append(blocks, slackBlock{Type: "section", Text: &slackText{
			Type: "mrkdwn",
			Text: slackAlertText(a),
		}})
	}

	body, err := json.Marshal(map[string]any{"blocks": blocks})
	if err != nil {
		return fmt.Errorf("slack: marshal payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.webhookURL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("slack: create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("slack: send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return fmt.Errorf("slack: unexpected status %d: %s", resp.StatusCode, string(respBody))
	}
	return nil
}

func slackAlertText(a domain.Alert) string {
	text := fmt.Sprintf("%s %s *[%s] %s* — `%s`\n%s",
		sevDot(a.Severity), emoji(a.Category), a.Category, a.Asset, a.Title, a.Message)
	if a.Profitable {
		text += "\n✅ *ACTIONABLE*"
	}
	return text
}
