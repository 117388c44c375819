package telegram

import (
	"context"
	"errors"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"telegram-support-relay/internal/application"
)

type cbHandler func(ctx context.Context, facade Facade, query *tgbotapi.CallbackQuery) error

type prefixCB struct {
	Prefix string
	Fn     cbHandler
}

// Prefix-match callbacks
func (r *RealTelegramBotAdapter) cbPrefixRoutes() []prefixCB {
	return []prefixCB{
		{Prefix: application.CallbackPrefix, Fn: r.categoryCBRoute},
	}
}

func (r *RealTelegramBotAdapter) handleQuery(ctx context.Context, facade Facade, query *tgbotapi.CallbackQuery) error {
	if query.From == nil {
		return errors.New("invalid callback query")
	}
	// Stop the telegram spinner when we return.
	defer func() {
		if _, err := r.api.Request(tgbotapi.NewCallback(query.ID, "")); err != nil {
			r.log.Debug().Err(err).Str("callback_id", query.ID).Msg("answer callback failed")
		}
	}()

	data := strings.TrimSpace(query.Data)
	for _, pr := range r.cbPrefixRoutes() {
		if strings.HasPrefix(data, pr.Prefix) {
			return pr.Fn(ctx, facade, query)
		}
	}
	return nil
}

// categoryCBRoute stores the picked category and turns the menu into the category prompt.
func (r *RealTelegramBotAdapter) categoryCBRoute(ctx context.Context, facade Facade, query *tgbotapi.CallbackQuery) error {
	reply, err := facade.HandleCategory(ctx, senderOf(query.From), strings.TrimSpace(query.Data))
	if err != nil {
		return err
	}
	if query.Message != nil && query.Message.Chat != nil {
		return r.EditMessageText(ctx, query.Message.Chat.ID, query.Message.MessageID, reply.Text, nil)
	}
	return r.sendReply(ctx, query.From.ID, reply)
}
