package telegram

// Client sends plain-text messages to a Telegram chat.
// Keeps the application layer independent of the bot library.
type Client interface {
	SendText(chatID int64, text string) error
}
