package telegram

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"

	"telegram-support-relay/internal/application"
	"telegram-support-relay/internal/config"
	"telegram-support-relay/internal/domain"
	"telegram-support-relay/internal/domain/ports/adapter"
	"telegram-support-relay/internal/infra/logging"
	"telegram-support-relay/internal/infra/metrics"
	"telegram-support-relay/internal/usecase"
)

var _ adapter.TelegramBotAdapter = (*RealTelegramBotAdapter)(nil)

// botAPI is the part of *tgbotapi.BotAPI the adapter uses.
type botAPI interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
	GetUpdatesChan(config tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel
	StopReceivingUpdates()
}

// Facade is what the adapter needs from the application layer.
type Facade interface {
	IsAdmin(id int64) bool
	IsSupportButton(text string) bool

	HandleStart(ctx context.Context, s usecase.Sender) (application.Reply, error)
	HandleSupportMenu(ctx context.Context, s usecase.Sender) (application.Reply, error)
	HandleCategory(ctx context.Context, s usecase.Sender, data string) (application.Reply, error)
	HandleUserMessage(ctx context.Context, msg usecase.InboundMessage) (usecase.RouteOutcome, error)
	HandleStaffReply(ctx context.Context, reply usecase.StaffReply) (usecase.RouteOutcome, error)

	HandleBlock(ctx context.Context, adminID int64, args string) (string, error)
	HandleUnblock(ctx context.Context, adminID int64, args string) (string, error)
	HandleListBlocked(ctx context.Context, adminID int64) (string, error)
	HandleBroadcast(ctx context.Context, adminID int64, args string) (string, error)
	HandleHelp(ctx context.Context, adminID int64) string
}

var _ Facade = (*application.BotFacade)(nil)

// Translator renders menu command descriptions.
type Translator interface {
	T(key string, args ...interface{}) string
}

// RealTelegramBotAdapter polls updates with tgbotapi and delegates to the facade.
// It also implements the delivery port used by the usecases.
type RealTelegramBotAdapter struct {
	api           botAPI
	cfg           *config.BotConfig
	tr            Translator
	log           *zerolog.Logger
	updateWorkers int

	mu            sync.Mutex
	cancelPolling context.CancelFunc
}

func NewRealTelegramBotAdapter(cfg *config.BotConfig, tr Translator, logger *zerolog.Logger) (*RealTelegramBotAdapter, error) {
	if cfg == nil {
		return nil, errors.New("bot config is nil")
	}
	_ = tgbotapi.SetLogger(botLogger{log: logger})
	bot, err := tgbotapi.NewBotAPI(cfg.Token)
	if err != nil {
		return nil, fmt.Errorf("telegram login: %w", err)
	}
	bot.Debug = cfg.Debug
	logger.Info().Str("username", bot.Self.UserName).Msg("telegram bot authorized")
	return newAdapter(bot, cfg, tr, logger), nil
}

func newAdapter(api botAPI, cfg *config.BotConfig, tr Translator, logger *zerolog.Logger) *RealTelegramBotAdapter {
	workers := cfg.Workers
	if workers <= 0 {
		workers = 8
	}
	return &RealTelegramBotAdapter{
		api:           api,
		cfg:           cfg,
		tr:            tr,
		log:           logger,
		updateWorkers: workers,
	}
}

// StartPolling blocks until ctx is cancelled or StopPolling is called.
// Updates are sharded by sender id so one user's events run in arrival order
// while different users are handled in parallel.
func (r *RealTelegramBotAdapter) StartPolling(ctx context.Context, facade Facade) error {
	if facade == nil {
		return errors.New("bot facade is nil")
	}
	ctx, cancel := context.WithCancel(ctx)
	r.mu.Lock()
	r.cancelPolling = cancel
	r.mu.Unlock()
	defer cancel()

	u := tgbotapi.NewUpdate(0)
	u.Timeout = r.cfg.PollTimeout
	updates := r.api.GetUpdatesChan(u)

	shards := make([]chan tgbotapi.Update, r.updateWorkers)
	var wg sync.WaitGroup
	for i := range shards {
		shards[i] = make(chan tgbotapi.Update, 64)
		wg.Add(1)
		go func(in <-chan tgbotapi.Update) {
			defer wg.Done()
			for up := range in {
				r.dispatch(ctx, facade, up)
			}
		}(shards[i])
	}

	r.log.Info().Int("workers", r.updateWorkers).Msg("telegram polling started")
	defer func() {
		r.api.StopReceivingUpdates()
		for _, ch := range shards {
			close(ch)
		}
		wg.Wait()
		r.log.Info().Msg("telegram polling stopped")
	}()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case up, ok := <-updates:
			if !ok {
				return nil
			}
			select {
			case shards[shardFor(senderID(up), len(shards))] <- up:
			case <-ctx.Done():
				return ctx.Err()
			}
		}
	}
}

func (r *RealTelegramBotAdapter) StopPolling() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.cancelPolling != nil {
		r.cancelPolling()
	}
}

func shardFor(id int64, n int) int {
	if n <= 1 {
		return 0
	}
	if id < 0 {
		id = -id
	}
	return int(id % int64(n))
}

func senderID(up tgbotapi.Update) int64 {
	switch {
	case up.Message != nil && up.Message.From != nil:
		return up.Message.From.ID
	case up.CallbackQuery != nil && up.CallbackQuery.From != nil:
		return up.CallbackQuery.From.ID
	}
	return 0
}

// dispatch handles one update; errors and panics are logged and never stop the worker.
func (r *RealTelegramBotAdapter) dispatch(ctx context.Context, facade Facade, up tgbotapi.Update) {
	ctx = logging.WithTraceID(ctx, logging.NewTraceID())
	ctx = logging.WithUpdateID(ctx, up.UpdateID)
	if id := senderID(up); id != 0 {
		ctx = logging.WithTgID(ctx, id)
	}
	log := logging.With(ctx, r.log)

	defer func() {
		if rec := recover(); rec != nil {
			metrics.IncHandlerError()
			log.Error().Interface("panic", rec).Msg("update handler panicked")
		}
	}()

	if err := r.handleUpdate(ctx, facade, up); err != nil {
		metrics.IncHandlerError()
		log.Error().Err(err).Msg("update handler failed")
	}
}

func (r *RealTelegramBotAdapter) handleUpdate(ctx context.Context, facade Facade, up tgbotapi.Update) error {
	switch {
	case up.CallbackQuery != nil:
		metrics.IncTelegramUpdate("callback")
		return r.handleQuery(ctx, facade, up.CallbackQuery)
	case up.Message != nil:
		return r.handleMessage(ctx, facade, up.Message)
	default:
		metrics.IncTelegramUpdate("other")
		return nil
	}
}

// SendMessage implements the delivery port. Transport failures come back as *domain.DeliveryError.
func (r *RealTelegramBotAdapter) SendMessage(ctx context.Context, p adapter.SendMessageParams) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, domain.NewDeliveryError(p.ChatID, err)
	}
	msg := tgbotapi.NewMessage(p.ChatID, p.Text)
	msg.ReplyToMessageID = p.ReplyToMessageID
	switch {
	case len(p.InlineKeyboard) > 0:
		msg.ReplyMarkup = inlineMarkup(p.InlineKeyboard)
	case len(p.ReplyKeyboard) > 0:
		msg.ReplyMarkup = replyMarkup(p.ReplyKeyboard)
	}
	sent, err := r.api.Send(msg)
	if err != nil {
		return 0, domain.NewDeliveryError(p.ChatID, err)
	}
	return sent.MessageID, nil
}

// EditMessageText replaces the text of a sent message; rows may be nil to drop the keyboard.
func (r *RealTelegramBotAdapter) EditMessageText(ctx context.Context, chatID int64, messageID int, text string, rows [][]adapter.InlineButton) error {
	if err := ctx.Err(); err != nil {
		return domain.NewDeliveryError(chatID, err)
	}
	edit := tgbotapi.NewEditMessageText(chatID, messageID, text)
	if len(rows) > 0 {
		markup := inlineMarkup(rows)
		edit.ReplyMarkup = &markup
	}
	if _, err := r.api.Request(edit); err != nil {
		return domain.NewDeliveryError(chatID, err)
	}
	return nil
}

// SetMenuCommands installs the command menu. chatID 0 sets the default menu for everyone.
func (r *RealTelegramBotAdapter) SetMenuCommands(ctx context.Context, chatID int64, isAdmin bool) error {
	commands := []tgbotapi.BotCommand{
		{Command: "start", Description: r.tr.T("cmd_start_desc")},
	}
	if isAdmin {
		commands = append(commands,
			tgbotapi.BotCommand{Command: "help", Description: r.tr.T("cmd_help_desc")},
			tgbotapi.BotCommand{Command: "block", Description: r.tr.T("cmd_block_desc")},
			tgbotapi.BotCommand{Command: "unblock", Description: r.tr.T("cmd_unblock_desc")},
			tgbotapi.BotCommand{Command: "blocked", Description: r.tr.T("cmd_blocked_desc")},
			tgbotapi.BotCommand{Command: "broadcast", Description: r.tr.T("cmd_broadcast_desc")},
		)
	}

	var cfg tgbotapi.SetMyCommandsConfig
	if chatID == 0 {
		cfg = tgbotapi.NewSetMyCommands(commands...)
	} else {
		cfg = tgbotapi.NewSetMyCommandsWithScope(tgbotapi.NewBotCommandScopeChat(chatID), commands...)
	}
	if _, err := r.api.Request(cfg); err != nil {
		return fmt.Errorf("set menu commands for chat %d: %w", chatID, err)
	}
	return nil
}

// sendReply shows a facade reply in chatID. Empty replies are not sent.
func (r *RealTelegramBotAdapter) sendReply(ctx context.Context, chatID int64, reply application.Reply) error {
	if strings.TrimSpace(reply.Text) == "" {
		return nil
	}
	_, err := r.SendMessage(ctx, adapter.SendMessageParams{
		ChatID:         chatID,
		Text:           reply.Text,
		InlineKeyboard: reply.InlineKeyboard,
		ReplyKeyboard:  reply.ReplyKeyboard,
	})
	return err
}

func (r *RealTelegramBotAdapter) sendText(ctx context.Context, chatID int64, text string) error {
	return r.sendReply(ctx, chatID, application.Reply{Text: text})
}

// inlineMarkup builds an inline keyboard.
// A button with URL opens a link, one with Data sends callback data, anything
// else falls back to its text as callback data.
func inlineMarkup(rows [][]adapter.InlineButton) tgbotapi.InlineKeyboardMarkup {
	kbRows := make([][]tgbotapi.InlineKeyboardButton, 0, len(rows))
	for _, row := range rows {
		if len(row) == 0 {
			continue
		}
		out := make([]tgbotapi.InlineKeyboardButton, 0, len(row))
		for _, btn := range row {
			label := strings.TrimSpace(btn.Text)
			if label == "" {
				label = "•"
			}
			switch {
			case btn.URL != "":
				out = append(out, tgbotapi.NewInlineKeyboardButtonURL(label, btn.URL))
			case btn.Data != "":
				out = append(out, tgbotapi.NewInlineKeyboardButtonData(label, btn.Data))
			default:
				out = append(out, tgbotapi.NewInlineKeyboardButtonData(label, label))
			}
		}
		kbRows = append(kbRows, out)
	}
	return tgbotapi.NewInlineKeyboardMarkup(kbRows...)
}

func replyMarkup(rows [][]string) tgbotapi.ReplyKeyboardMarkup {
	kbRows := make([][]tgbotapi.KeyboardButton, 0, len(rows))
	for _, row := range rows {
		if len(row) == 0 {
			continue
		}
		out := make([]tgbotapi.KeyboardButton, 0, len(row))
		for _, label := range row {
			out = append(out, tgbotapi.NewKeyboardButton(label))
		}
		kbRows = append(kbRows, out)
	}
	markup := tgbotapi.NewReplyKeyboard(kbRows...)
	markup.ResizeKeyboard = true
	return markup
}

func senderOf(u *tgbotapi.User) usecase.Sender {
	return usecase.Sender{
		ID:          u.ID,
		DisplayName: strings.TrimSpace(u.FirstName + " " + u.LastName),
		Handle:      u.UserName,
	}
}

// botLogger routes tgbotapi's internal logging into zerolog.
type botLogger struct{ log *zerolog.Logger }

func (b botLogger) Println(v ...interface{}) {
	b.log.Debug().Str("component", "tgbotapi").Msg(strings.TrimSpace(fmt.Sprintln(v...)))
}

func (b botLogger) Printf(format string, v ...interface{}) {
	b.log.Debug().Str("component", "tgbotapi").Msgf(format, v...)
}
