package bot

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

type TelegramBot struct {
	bot     *tgbotapi.BotAPI
	handler *Handler
	chatID  int64
}

// NewTelegramBot connects to the bot API. chatID is the group run summaries
// are announced to; zero disables announcements.
func NewTelegramBot(token string, chatID int64, archive Archive) (*TelegramBot, error) {
	bot, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("connecting to telegram: %w", err)
	}

	handler := NewHandler(archive)

	return &TelegramBot{
		bot:     bot,
		handler: handler,
		chatID:  chatID,
	}, nil
}

func (t *TelegramBot) Start(ctx context.Context) error {
	slog.Info("Authorized on account", "username", t.bot.Self.UserName)
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60

	updates := t.bot.GetUpdatesChan(u)

	for {
		select {
		case update := <-updates:
			if update.Message == nil {
				continue
			}

			if update.Message.IsCommand() {
				slog.Info("Received command", "command", update.Message.Command(), "chat", update.Message.Chat.ID)
				msg := t.handler.HandleCommand(update)
				if _, err := t.bot.Send(msg); err != nil {
					slog.Error("Error sending message", "error", err)
				}
			}
		case <-ctx.Done():
			t.bot.StopReceivingUpdates()
			return nil
		}
	}
}

// ErrNoChat is returned by SendMessage when no announcement chat is set.
var ErrNoChat = errors.New("chat ID not set")

// SendMessage posts a Markdown message to the announcement chat.
func (t *TelegramBot) SendMessage(text string) error {
	if t.chatID == 0 {
		return ErrNoChat
	}

	msg := tgbotapi.NewMessage(t.chatID, text)
	msg.ParseMode = "Markdown"
	_, err := t.bot.Send(msg)
	if err != nil {
		slog.Error("Error sending message", "error", err)
	}
	return err
}
