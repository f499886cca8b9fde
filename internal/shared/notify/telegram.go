package notify

import (
	"context"
	"fmt"
	"net/http"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// TelegramNotifier sends vendor messages through a Telegram bot. Vendors must
// have started a chat with the bot and have its chat id recorded.
type TelegramNotifier struct {
	api *tgbotapi.BotAPI
}

func NewTelegramNotifier(token string) (*TelegramNotifier, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("telegram bot init: %w", err)
	}
	return &TelegramNotifier{api: api}, nil
}

// NewTelegramNotifierWithEndpoint targets a custom Bot API endpoint,
// formatted like tgbotapi.APIEndpoint.
func NewTelegramNotifierWithEndpoint(token, endpoint string, client *http.Client) (*TelegramNotifier, error) {
	api, err := tgbotapi.NewBotAPIWithClient(token, endpoint, client)
	if err != nil {
		return nil, fmt.Errorf("telegram bot init: %w", err)
	}
	return &TelegramNotifier{api: api}, nil
}

func (n *TelegramNotifier) Name() string { return "telegram" }

func (n *TelegramNotifier) Send(ctx context.Context, msg Message) error {
	if msg.ChatID == 0 {
		return ErrNoRecipient
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	m := tgbotapi.NewMessage(msg.ChatID, msg.Body)
	m.ParseMode = tgbotapi.ModeMarkdown
	if _, err := n.api.Send(m); err != nil {
		return fmt.Errorf("telegram send: %w", err)
	}
	return nil
}
