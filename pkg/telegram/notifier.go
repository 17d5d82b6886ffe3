package telegram

import (
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// Notifier posts published result sheets to a Telegram chat.
type Notifier struct {
	api    *tgbotapi.BotAPI
	chatID int64
}

// NewNotifier connects to the Bot API with token.
func NewNotifier(token string, chatID int64) (*Notifier, error) {
	bot, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("failed to create bot: %w", err)
	}

	bot.Debug = false

	return &Notifier{
		api:    bot,
		chatID: chatID,
	}, nil
}

// SendDocument uploads the file at path with caption.
func (n *Notifier) SendDocument(caption, path string) error {
	doc := tgbotapi.NewDocument(n.chatID, tgbotapi.FilePath(path))
	doc.Caption = caption

	if _, err := n.api.Send(doc); err != nil {
		return fmt.Errorf("failed to send document: %w", err)
	}
	return nil
}
