package bot

import (
	"log"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// Notifier implements the processor's notification interface
type Notifier struct {
	bot *Bot
}

// NewNotifier creates a notifier backed by an initialized bot
func NewNotifier(b *Bot) *Notifier {
	return &Notifier{bot: b}
}

// SendNotification sends a message to the authorized staff chat.
// Failures are logged only; notifications are never load-bearing.
func (n *Notifier) SendNotification(message string) {
	if n.bot == nil || n.bot.targetChatID == 0 {
		return
	}
	msg := tgbotapi.NewMessage(n.bot.targetChatID, message)
	msg.ParseMode = "Markdown"
	if _, err := n.bot.api.Send(msg); err != nil {
		log.Printf("Failed to send notification: %v", err)
	}
}
