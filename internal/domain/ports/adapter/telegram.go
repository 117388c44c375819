// File: internal/domain/ports/adapter/telegram.go
package adapter

import "context"

type InlineButton struct {
	Text string
	Data string
	URL  string
}

// SendMessageParams describes one outgoing message. At most one of
// InlineKeyboard / ReplyKeyboard should be set.
type SendMessageParams struct {
	ChatID           int64
	Text             string
	ReplyToMessageID int
	InlineKeyboard   [][]InlineButton
	ReplyKeyboard    [][]string
}

// TelegramBotAdapter is the delivery capability. SendMessage returns the id the
// platform assigned to the delivered message; failures are *domain.DeliveryError.
type TelegramBotAdapter interface {
	SendMessage(ctx context.Context, params SendMessageParams) (int, error)
	EditMessageText(ctx context.Context, chatID int64, messageID int, text string, rows [][]InlineButton) error
	SetMenuCommands(ctx context.Context, chatID int64, isAdmin bool) error
}
