package telegram

import (
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// Notifier posts analysis outcomes to a Telegram chat.
type Notifier interface {
	SendMessage(text string) error
}

// client wraps the bot API bound to a single destination chat.
type client struct {
	bot    *tgbotapi.BotAPI
	chatID int64
}

// NewClient authorizes the bot and binds it to the destination chat.
func NewClient(botToken string, chatID int64) (Notifier, error) {
	bot, err := tgbotapi.NewBotAPI(botToken)
	if err != nil {
		return nil, err
	}
	return &client{
		bot:    bot,
		chatID: chatID,
	}, nil
}

// SendMessage posts a Markdown-formatted message to the chat.
func (c *client) SendMessage(text string) error {
	msg := tgbotapi.NewMessage(c.chatID, text)
	msg.ParseMode = tgbotapi.ModeMarkdown
	msg.DisableWebPagePreview = true
	_, err := c.bot.Send(msg)
	return err
}
