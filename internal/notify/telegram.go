// Package notify sends optional run-outcome messages to a Telegram chat.
package notify

import (
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"quote-video-poster/internal/logging"
	"quote-video-poster/internal/model"
)

// Notifier is nil-safe: a nil receiver silently drops every notification, so
// callers never have to guard the unconfigured case.
type Notifier struct {
	bot    *tgbotapi.BotAPI
	chatID int64
	log    *logging.Logger
}

func New(token string, chatID int64, log *logging.Logger) (*Notifier, error) {
	if token == "" || chatID == 0 {
		return nil, nil
	}
	bot, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("telegram init: %w", err)
	}
	return &Notifier{bot: bot, chatID: chatID, log: log}, nil
}

func (n *Notifier) PublishSucceeded(rec model.PostRecord) {
	if n == nil {
		return
	}
	n.send(fmt.Sprintf("✅ published %s\nsource: %s", rec.MergedURL, rec.SourceVideoURL))
}

func (n *Notifier) RunFailed(err error) {
	if n == nil {
		return
	}
	n.send(fmt.Sprintf("❌ run failed: %v", err))
}

func (n *Notifier) send(text string) {
	msg := tgbotapi.NewMessage(n.chatID, text)
	msg.DisableWebPagePreview = true
	if _, err := n.bot.Send(msg); err != nil {
		n.log.Warnf("notify: telegram send failed: %v", err)
	}
}
