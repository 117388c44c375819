package telegram

import (
	"context"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"telegram-support-relay/internal/infra/metrics"
)

type commandHandler func(ctx context.Context, facade Facade, message *tgbotapi.Message) error

// commandRoutes defines all available bot commands and their handlers.
func (r *RealTelegramBotAdapter) commandRoutes() map[string]commandHandler {
	return map[string]commandHandler{
		"start": r.handleStartCommand,

		// Staff commands. Non-admins get no reply at all.
		"help":      r.adminOnly(r.handleHelpCommand),
		"block":     r.adminOnly(r.handleBlockCommand),
		"unblock":   r.adminOnly(r.handleUnblockCommand),
		"blocked":   r.adminOnly(r.handleBlockedCommand),
		"broadcast": r.adminOnly(r.handleBroadcastCommand),
	}
}

func (r *RealTelegramBotAdapter) adminOnly(next commandHandler) commandHandler {
	return func(ctx context.Context, facade Facade, message *tgbotapi.Message) error {
		if !facade.IsAdmin(message.From.ID) {
			metrics.IncAdminCommand(message.Command(), "unauthorized")
			return nil
		}
		return next(ctx, facade, message)
	}
}

func (r *RealTelegramBotAdapter) handleCommand(ctx context.Context, facade Facade, message *tgbotapi.Message) error {
	metrics.IncTelegramUpdate("command")
	fn, ok := r.commandRoutes()[message.Command()]
	if !ok {
		return nil
	}
	return fn(ctx, facade, message)
}

func (r *RealTelegramBotAdapter) handleStartCommand(ctx context.Context, facade Facade, message *tgbotapi.Message) error {
	if !message.Chat.IsPrivate() {
		return nil
	}
	reply, err := facade.HandleStart(ctx, senderOf(message.From))
	if err != nil {
		return err
	}
	return r.sendReply(ctx, message.Chat.ID, reply)
}

func (r *RealTelegramBotAdapter) handleHelpCommand(ctx context.Context, facade Facade, message *tgbotapi.Message) error {
	return r.sendText(ctx, message.Chat.ID, facade.HandleHelp(ctx, message.From.ID))
}

func (r *RealTelegramBotAdapter) handleBlockCommand(ctx context.Context, facade Facade, message *tgbotapi.Message) error {
	text, err := facade.HandleBlock(ctx, message.From.ID, message.CommandArguments())
	if err != nil {
		return err
	}
	return r.sendText(ctx, message.Chat.ID, text)
}

func (r *RealTelegramBotAdapter) handleUnblockCommand(ctx context.Context, facade Facade, message *tgbotapi.Message) error {
	text, err := facade.HandleUnblock(ctx, message.From.ID, message.CommandArguments())
	if err != nil {
		return err
	}
	return r.sendText(ctx, message.Chat.ID, text)
}

func (r *RealTelegramBotAdapter) handleBlockedCommand(ctx context.Context, facade Facade, message *tgbotapi.Message) error {
	text, err := facade.HandleListBlocked(ctx, message.From.ID)
	if err != nil {
		return err
	}
	return r.sendText(ctx, message.Chat.ID, text)
}

func (r *RealTelegramBotAdapter) handleBroadcastCommand(ctx context.Context, facade Facade, message *tgbotapi.Message) error {
	text, err := facade.HandleBroadcast(ctx, message.From.ID, message.CommandArguments())
	if err != nil {
		return err
	}
	return r.sendText(ctx, message.Chat.ID, text)
}
