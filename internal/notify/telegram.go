package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"html"
	"net/http"
	"strings"
	"time"

	"stock-notifier/internal/config"
	apperrors "stock-notifier/internal/errors"
	"stock-notifier/internal/models"
	"stock-notifier/pkg/utils"
)

// TelegramNotifier sends alerts through a Telegram bot.
type TelegramNotifier struct {
	token   string
	chatID  string
	enabled bool
	baseURL string
	client  *http.Client
}

type telegramMessage struct {
	ChatID                string `json:"chat_id"`
	Text                  string `json:"text"`
	ParseMode             string `json:"parse_mode"`
	DisableWebPagePreview bool   `json:"disable_web_page_preview"`
}

type telegramReply struct {
	OK          bool   `json:"ok"`
	ErrorCode   int    `json:"error_code"`
	Description string `json:"description"`
}

// NewTelegramNotifier creates a new TelegramNotifier. It is enabled only with
// both a bot token and a chat ID.
func NewTelegramNotifier(cfg config.TelegramConfig, creds config.TelegramCredentials) *TelegramNotifier {
	return &TelegramNotifier{
		token:   creds.BotToken,
		chatID:  cfg.ChatID,
		enabled: cfg.Enabled && creds.BotToken != "" && cfg.ChatID != "",
		baseURL: "https://api.telegram.org",
		client:  &http.Client{Timeout: 10 * time.Second},
	}
}

// Name returns the name of the notifier.
func (t *TelegramNotifier) Name() string {
	return "telegram"
}

// Enabled returns whether the notifier is enabled.
func (t *TelegramNotifier) Enabled() bool {
	return t.enabled
}

// TelegramText renders the alert in Telegram's HTML parse mode.
func TelegramText(ticker string, snap models.Snapshot) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "<b>%s</b>\n", html.EscapeString(Title(ticker, alertTime(snap))))
	fmt.Fprintf(&sb, "Price: <code>%s</code>\n", utils.FormatPrice(snap.CurrentPrice))
	fmt.Fprintf(&sb, "Day range: <code>%s</code> to <code>%s</code>",
		utils.FormatPrice(snap.DayLow), utils.FormatPrice(snap.DayHigh))
	return sb.String()
}

// Notify calls the bot API's sendMessage.
func (t *TelegramNotifier) Notify(ctx context.Context, ticker string, snap models.Snapshot) error {
	if !t.enabled {
		return fmt.Errorf("telegram bot_token or chat_id missing")
	}

	url := t.baseURL + "/bot" + t.token + "/sendMessage"
	status, body, err := postJSON(ctx, t.client, url, telegramMessage{
		ChatID:                t.chatID,
		Text:                  TelegramText(ticker, snap),
		ParseMode:             "HTML",
		DisableWebPagePreview: true,
	})
	if err != nil {
		return fmt.Errorf("telegram: %w", err)
	}

	var reply telegramReply
	if jerr := json.Unmarshal(body, &reply); jerr != nil && status == http.StatusOK {
		return fmt.Errorf("telegram: %w: %v", apperrors.ErrMalformedResponse, jerr)
	}
	if status != http.StatusOK || !reply.OK {
		desc := reply.Description
		if desc == "" {
			desc = strings.TrimSpace(string(body))
		}
		return fmt.Errorf("telegram sendMessage failed with status %d: %s", status, desc)
	}
	return nil
}
