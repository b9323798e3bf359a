package notifier

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/rs/zerolog"

	"FundEye/internal/model"
)

// TelegramNotifier pushes valuation summaries and errors to a Telegram
// chat. Send failures are logged, not propagated.
type TelegramNotifier struct {
	BotToken string
	ChatID   string
	Client   *http.Client
	log      zerolog.Logger
}

// NewTelegramNotifier creates a notifier with optional proxy support.
func NewTelegramNotifier(botToken, chatID, proxyURL string, log zerolog.Logger) *TelegramNotifier {
	transport := &http.Transport{}
	if proxyURL != "" {
		if u, err := url.Parse(proxyURL); err == nil {
			transport.Proxy = http.ProxyURL(u)
		}
	}
	return &TelegramNotifier{
		BotToken: botToken,
		ChatID:   chatID,
		Client: &http.Client{
			Timeout:   30 * time.Second,
			Transport: transport,
		},
		log: log.With().Str("component", "telegram").Logger(),
	}
}

func (t *TelegramNotifier) ValuationUpdated(funds []model.Fund) {
	if err := t.send(FormatValuationSummary(funds)); err != nil {
		t.log.Warn().Err(err).Msg("send valuation summary failed")
	}
}

func (t *TelegramNotifier) Error(message string) {
	if err := t.send(fmt.Sprintf("❌ <b>刷新失败</b>\n\n%s", message)); err != nil {
		t.log.Warn().Err(err).Msg("send error notice failed")
	}
}

func (t *TelegramNotifier) send(text string) error {
	apiURL := fmt.Sprintf("https://api.telegram.org/bot%s/sendMessage", t.BotToken)
	payload := map[string]string{
		"chat_id":    t.ChatID,
		"text":       text,
		"parse_mode": "HTML",
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal payload: %w", err)
	}
	resp, err := t.Client.Post(apiURL, "application/json", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("send message: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("telegram API error: status %d, body: %s", resp.StatusCode, string(respBody))
	}
	return nil
}
