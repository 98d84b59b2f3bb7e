// Package bot sends ops notifications to the program's Telegram channel
package bot

import (
	"fmt"
	"log"
	"strconv"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// Bot wraps the Telegram API for staff alerts and a minimal command loop
type Bot struct {
	api          *tgbotapi.BotAPI
	targetChatID int64
	statusFn     func() string
}

// Init initializes the Telegram bot. statusFn backs the /status command
// and may be nil.
func Init(token, authorizedChatIDStr string, statusFn func() string) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, err
	}
	api.Debug = false
	log.Printf("Authorized on account %s", api.Self.UserName)

	b := &Bot{api: api, statusFn: statusFn}
	if authorizedChatIDStr != "" {
		if id, err := strconv.ParseInt(authorizedChatIDStr, 10, 64); err == nil {
			b.targetChatID = id
		}
	}
	return b, nil
}

// StartPolling starts the update loop for staff commands
func (b *Bot) StartPolling() {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60
	updates := b.api.GetUpdatesChan(u)

	go func() {
		for update := range updates {
			if update.Message == nil || !update.Message.IsCommand() {
				continue
			}

			msg := tgbotapi.NewMessage(update.Message.Chat.ID, "")
			msg.ParseMode = "Markdown"

			switch update.Message.Command() {
			case "start":
				msg.Text = "🏫 *Hort-Kiosk*\n\n" +
					"*Befehle:*\n" +
					"/status - Scanner-Status\n" +
					"/getid - Chat ID"
			case "getid":
				msg.Text = fmt.Sprintf("Chat ID: `%d`", update.Message.Chat.ID)
			case "status":
				if b.statusFn != nil {
					msg.Text = b.statusFn()
				} else {
					msg.Text = "Status nicht verfügbar"
				}
			default:
				msg.Text = "Unbekannter Befehl, siehe /start"
			}

			if _, err := b.api.Send(msg); err != nil {
				log.Printf("Bot send error: %v", err)
			}
		}
	}()
}
