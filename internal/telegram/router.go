package telegram

import (
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"github.com/mikekhromov/Bot-ReviewReminder/internal/scheduler"
)

// Bot adapts tgbotapi.BotAPI to the narrow send surface the router and the
// scheduler need, so both can be tested against a fake.
type Bot struct {
	api *tgbotapi.BotAPI
}

func NewBot(api *tgbotapi.BotAPI) *Bot {
	return &Bot{api: api}
}

// SendMessage sends a plain text message to the given chat.
// This makes Bot satisfy scheduler.Sender.
func (b *Bot) SendMessage(chatID int64, text string) error {
	_, err := b.api.Send(tgbotapi.NewMessage(chatID, text))
	return err
}

// Router wires Telegram updates to command handlers.
type Router struct {
	sender          scheduler.Sender
	log             *zap.Logger
	sched           *scheduler.Scheduler
	broadcastChatID int64 // 0 disables confirmation mirroring
}

// NewRouter creates a new command router. broadcastChatID is the optional
// chat that mirrors /set_windows confirmations.
func NewRouter(sender scheduler.Sender, log *zap.Logger, sched *scheduler.Scheduler, broadcastChatID int64) *Router {
	return &Router{
		sender:          sender,
		log:             log,
		sched:           sched,
		broadcastChatID: broadcastChatID,
	}
}

// HandleUpdate routes a single update to the appropriate handler.
// Non-command messages and unknown commands are ignored.
func (r *Router) HandleUpdate(upd tgbotapi.Update) {
	if upd.Message == nil {
		return
	}
	msg := upd.Message
	chatID := msg.Chat.ID
	text := strings.TrimSpace(msg.Text)

	switch {
	case strings.HasPrefix(text, "/set_windows"):
		r.handleSetWindows(chatID, text)
	case strings.HasPrefix(text, "/show_windows"):
		r.handleShowWindows(chatID)
	case strings.HasPrefix(text, "/clear_reminders"):
		r.handleClearReminders(chatID)
	case strings.HasPrefix(text, "/start"), strings.HasPrefix(text, "/help"):
		r.reply(chatID, startText)
	default:
		// Plain group chatter; not for us.
	}
}

// reply sends text to chatID, logging (and swallowing) delivery failures.
func (r *Router) reply(chatID int64, text string) {
	if err := r.sender.SendMessage(chatID, text); err != nil {
		r.log.Error("reply send failed", zap.Error(err), zap.Int64("chatID", chatID))
	}
}
