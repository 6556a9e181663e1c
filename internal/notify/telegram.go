package notify

import (
	"context"
	"errors"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// TelegramSender is the part of the bot API used for delivery.
type TelegramSender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

// Telegram posts ops messages to one chat.
type Telegram struct {
	sender TelegramSender
	chatID int64
}

func NewTelegram(sender TelegramSender, chatID int64) *Telegram {
	return &Telegram{sender: sender, chatID: chatID}
}

func (t *Telegram) Name() string { return "telegram" }

func (t *Telegram) Accepts(a Audience) bool { return a == AudienceOps }

func (t *Telegram) Send(ctx context.Context, msg Message) error {
	text := msg.Text
	if msg.Subject != "" {
		text = msg.Subject + "\n\n" + text
	}
	m := tgbotapi.NewMessage(t.chatID, text)
	m.DisableWebPagePreview = true

	if _, err := t.sender.Send(m); err != nil {
		var apiErr *tgbotapi.Error
		if errors.As(err, &apiErr) {
			return &SendError{
				Channel:    t.Name(),
				Code:       apiErr.Code,
				Message:    apiErr.Message,
				RetryAfter: time.Duration(apiErr.RetryAfter) * time.Second,
			}
		}
		return err
	}
	return nil
}
