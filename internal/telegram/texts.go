package telegram

// UI texts in Russian, matching the reminder wording.
const (
	startText = "👋 Я напоминаю команде про окна PR-ревью.\n\n" +
		"/set_windows HH:MM-HH:MM [HH:MM-HH:MM] — задать утреннее и вечернее окна\n" +
		"/show_windows — показать текущие окна\n" +
		"/clear_reminders — отключить напоминания\n\n" +
		"За 10 минут до начала каждого окна я пришлю напоминание."

	usageText = "Использование: /set_windows HH:MM-HH:MM [HH:MM-HH:MM]\n" +
		"Пример: /set_windows 10:00-12:00 16:00-18:00"

	badFormatFmt = "Неверный формат окна: %q. Ожидаю HH:MM-HH:MM, например 10:00-12:00."

	confirmationFmt = "✅ Окна PR-ревью обновлены:\n• утреннее: %s\n• вечернее: %s"

	showFmt = "🧾 Текущие окна PR-ревью:\n• утреннее: %s\n• вечернее: %s"

	noWindowsText = "Окна ревью ещё не заданы. Используйте /set_windows, чтобы задать их."

	clearedText = "Напоминания отключены. Сохранённые окна по-прежнему видны через /show_windows."
)
