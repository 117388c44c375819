package telegram

import (
	"context"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"telegram-support-relay/internal/infra/metrics"
	"telegram-support-relay/internal/usecase"
)

// handleMessage classifies a message:
//   - commands go to commandRoutes
//   - an admin replying to a message is a staff reply
//   - other admin messages are ignored
//   - in private chats the Support button opens the menu, anything else is relayed
func (r *RealTelegramBotAdapter) handleMessage(ctx context.Context, facade Facade, message *tgbotapi.Message) error {
	if message.From == nil || message.Chat == nil {
		metrics.IncTelegramUpdate("other")
		return nil
	}
	if message.IsCommand() {
		return r.handleCommand(ctx, facade, message)
	}

	if facade.IsAdmin(message.From.ID) {
		if message.ReplyToMessage == nil {
			metrics.IncTelegramUpdate("other")
			return nil
		}
		metrics.IncTelegramUpdate("staff_reply")
		_, err := facade.HandleStaffReply(ctx, usecase.StaffReply{
			SenderID:         message.From.ID,
			ChatID:           message.Chat.ID,
			ReplyToMessageID: message.ReplyToMessage.MessageID,
			MessageID:        message.MessageID,
			Text:             textOf(message),
			HasMedia:         hasMedia(message),
		})
		return err
	}

	if !message.Chat.IsPrivate() {
		metrics.IncTelegramUpdate("other")
		return nil
	}
	metrics.IncTelegramUpdate("message")

	sender := senderOf(message.From)
	if facade.IsSupportButton(message.Text) {
		reply, err := facade.HandleSupportMenu(ctx, sender)
		if err != nil {
			return err
		}
		return r.sendReply(ctx, message.Chat.ID, reply)
	}

	_, err := facade.HandleUserMessage(ctx, usecase.InboundMessage{
		Sender:    sender,
		MessageID: message.MessageID,
		Text:      textOf(message),
		HasMedia:  hasMedia(message),
	})
	return err
}

// textOf returns the message text, or the caption of a media message.
func textOf(m *tgbotapi.Message) string {
	if m.Text != "" {
		return m.Text
	}
	return m.Caption
}

func hasMedia(m *tgbotapi.Message) bool {
	return m.Photo != nil || m.Document != nil || m.Video != nil || m.Voice != nil ||
		m.Audio != nil || m.Sticker != nil || m.Animation != nil || m.VideoNote != nil
}
