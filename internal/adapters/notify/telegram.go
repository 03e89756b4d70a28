package notify

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/okian/prhealth/internal/domain/model"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// TelegramSink posts a short score digest to a Telegram chat.
type TelegramSink struct {
	api    *tgbotapi.BotAPI
	chatID int64
}

// TelegramOption configures a TelegramSink.
type TelegramOption func(*telegramConfig)

type telegramConfig struct {
	endpoint string
	client   tgbotapi.HTTPClient
}

// WithTelegramEndpoint overrides the Bot API endpoint format, e.g. "http://host/bot%s/%s".
func WithTelegramEndpoint(endpoint string) TelegramOption {
	return func(c *telegramConfig) {
		if endpoint != "" {
			c.endpoint = endpoint
		}
	}
}

// WithTelegramClient sets the HTTP client used by the bot.
func WithTelegramClient(client tgbotapi.HTTPClient) TelegramOption {
	return func(c *telegramConfig) {
		if client != nil {
			c.client = client
		}
	}
}

// NewTelegramSink authenticates the bot and returns a sink for chatID.
func NewTelegramSink(token string, chatID int64, opts ...TelegramOption) (*TelegramSink, error) {
	if token == "" || chatID == 0 {
		return nil, ErrMissingEndpoint
	}
	cfg := telegramConfig{
		endpoint: tgbotapi.APIEndpoint,
		client:   &http.Client{Timeout: defaultWebhookTimeout},
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	api, err := tgbotapi.NewBotAPIWithClient(token, cfg.endpoint, cfg.client)
	if err != nil {
		return nil, fmt.Errorf("create telegram bot: %w", err)
	}
	return &TelegramSink{api: api, chatID: chatID}, nil
}

func (s *TelegramSink) Name() string { return "telegram" }

func (s *TelegramSink) Deliver(ctx context.Context, t model.SummaryTrigger) error { //nolint:gocritic // hugeParam: triggers travel by value
	if err := ctx.Err(); err != nil {
		return err
	}
	msg := tgbotapi.NewMessage(s.chatID, Digest(t))
	if _, err := s.api.Send(msg); err != nil {
		return fmt.Errorf("send telegram message: %w", err)
	}
	return nil
}

// Digest renders the plain-text message body for a trigger.
func Digest(t model.SummaryTrigger) string { //nolint:gocritic // hugeParam: triggers travel by value
	r := t.Report
	var b strings.Builder
	fmt.Fprintf(&b, "PR health for %s (%s)\n", t.AccountID, t.RequestedAt.UTC().Format("2006-01-02"))
	fmt.Fprintf(&b, "Publishing velocity: %.0f\n", r.Velocity.Score)
	fmt.Fprintf(&b, "Distribution reach: %.0f\n", r.Reach.Score)
	fmt.Fprintf(&b, "Coverage quality: %.0f\n", r.Coverage.Score)
	fmt.Fprintf(&b, "Organic findability: %.0f", r.Findability.Score)
	if r.Overall != nil {
		fmt.Fprintf(&b, "\nOverall: %.0f", *r.Overall)
	}
	return b.String()
}
