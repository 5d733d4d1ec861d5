package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"html"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/vivirisk/quotewatch/internal/domain"
)

// telegramMaxAlerts caps the number of alerts rendered into one message.
const telegramMaxAlerts = 20

// TelegramSender delivers the digest to a Telegram chat using HTML
// formatting through the Bot API.
type TelegramSender struct {
	token  string
	chatID string
	client *http.Client
}

// NewTelegramSender creates a TelegramSender for the given bot token and
// chat ID.
func NewTelegramSender(token, chatID string) *TelegramSender {
	return &TelegramSender{
		token:  token,
		chatID: chatID,
		client: &http.Client{Timeout: 10 * time.Second},
	}
}

// Name returns the sender identifier.
func (t *TelegramSender) Name() string { return "telegram" }

// Send posts the digest via the sendMessage API.
func (t *TelegramSender) Send(ctx context.Context, d Digest) error {
	var b strings.Builder
	fmt.Fprintf(&b, "<b>%s</b>\n%s\n\n", html.EscapeString(headline(d)), html.EscapeString(d.Summary))
	for i, a := range d.Alerts {
		if i == telegramMaxAlerts {
			fmt.Fprintf(&b, "<i>...and %d more</i>", len(d.Alerts)-telegramMaxAlerts)
			break
		}
		b.WriteString(telegramAlertText(a))
	}

	payload := map[string]any{
		"chat_id":                  t.chatID,
		"text":                     b.String(),
		"parse_mode":               "HTML",
		"disable_web_page_preview": true,
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("telegram: marshal payload: %w", err)
	}

	url := fmt.Sprintf("https://api.telegram.org/bot%s/sendMessage", t.token)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("telegram: create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := t.client.Do(req)
	if err != nil {
		return fmt.Errorf("telegram: send request: %w", err)
	}
	defer resp.Body.Close()

	var apiResp struct {
		OK          bool   `json:"ok"`
		Description string `json:"description"`
	}
	respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	if err := json.Unmarshal(respBody, &apiResp); err != nil || !apiResp.OK {
		return fmt.Errorf("telegram: send failed (HTTP %d): %s", resp.StatusCode, apiResp.Description)
	}
	return nil
}

func telegramAlertText(a domain.Alert) string {
	text := fmt.Sprintf("%s %s <b>[%s] %s</b> — <code>%s</code>\n%s",
		sevDot(a.Severity), emoji(a.Category), a.Category,
		html.EscapeString(a.Asset), html.EscapeString(a.Title), html.EscapeString(a.Message))
	if a.Profitable {
		text += "\n✅ ACTIONABLE"
	}
	return text + "\n\n"
}
