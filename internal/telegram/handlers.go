package telegram

import (
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/mikekhromov/Bot-ReviewReminder/internal/domain"
)

// handleSetWindows parses "/set_windows <morning> [evening]". Both arguments
// are validated before any scheduler state changes, so a malformed second
// window cannot half-apply the first.
func (r *Router) handleSetWindows(chatID int64, text string) {
	args := strings.Fields(text)[1:]
	if len(args) < 1 || len(args) > 2 {
		r.reply(chatID, usageText)
		return
	}

	morning, err := domain.ParseWindow(args[0])
	if err != nil {
		r.reply(chatID, fmt.Sprintf(badFormatFmt, args[0]))
		return
	}
	var evening *domain.TimeWindow
	if len(args) == 2 {
		w, err := domain.ParseWindow(args[1])
		if err != nil {
			r.reply(chatID, fmt.Sprintf(badFormatFmt, args[1]))
			return
		}
		evening = &w
	}

	r.sched.SetWindows(chatID, &morning, evening)
	r.log.Info("windows set",
		zap.Int64("chatID", chatID),
		zap.String("morning", morning.Raw),
		zap.String("evening", rawOrDash(evening)),
	)

	conf := confirmationText(&morning, evening)
	r.reply(chatID, conf)
	if r.broadcastChatID != 0 && r.broadcastChatID != chatID {
		r.reply(r.broadcastChatID, conf+" @all")
	}
}

// handleShowWindows reports the chat's stored windows, which survive
// /clear_reminders until the next /set_windows.
func (r *Router) handleShowWindows(chatID int64) {
	morning, evening := r.sched.Windows(chatID)
	if morning == nil && evening == nil {
		r.reply(chatID, noWindowsText)
		return
	}
	r.reply(chatID, fmt.Sprintf(showFmt, rawOrDash(morning), rawOrDash(evening)))
}

func (r *Router) handleClearReminders(chatID int64) {
	r.sched.ClearChat(chatID)
	r.reply(chatID, clearedText)
}

func confirmationText(morning, evening *domain.TimeWindow) string {
	return fmt.Sprintf(confirmationFmt, rawOrDash(morning), rawOrDash(evening))
}

func rawOrDash(w *domain.TimeWindow) string {
	if w == nil {
		return "—"
	}
	return w.Raw
}
