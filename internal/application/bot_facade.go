package application

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"telegram-support-relay/internal/domain/model"
	"telegram-support-relay/internal/domain/ports/adapter"
	"telegram-support-relay/internal/infra/logging"
	"telegram-support-relay/internal/infra/metrics"
	"telegram-support-relay/internal/usecase"
)

// CallbackPrefix marks the inline buttons of the support menu.
const CallbackPrefix = "support:"

const broadcastReportTimeout = 10 * time.Second

// Reply is what the adapter shows in the chat. An empty Text means stay silent.
type Reply struct {
	Text           string
	InlineKeyboard [][]adapter.InlineButton
	ReplyKeyboard  [][]string
}

// BotFacade composes usecases into chat-level handlers.
// Methods return rendered texts so the Telegram adapter just forwards them to the chat.
type BotFacade struct {
	users   usecase.UserUseCase
	routing usecase.RoutingUseCase
	admin   usecase.AdminUseCase
	jobs    JobSubmitter
	bot     adapter.TelegramBotAdapter
	tr      Translator
	log     *zerolog.Logger
}

func NewBotFacade(
	users usecase.UserUseCase,
	routing usecase.RoutingUseCase,
	admin usecase.AdminUseCase,
	jobs JobSubmitter,
	bot adapter.TelegramBotAdapter,
	tr Translator,
	logger *zerolog.Logger,
) *BotFacade {
	return &BotFacade{
		users:   users,
		routing: routing,
		admin:   admin,
		jobs:    jobs,
		bot:     bot,
		tr:      tr,
		log:     logger,
	}
}

func (b *BotFacade) IsAdmin(id int64) bool { return b.admin.IsAdmin(id) }

// IsSupportButton reports whether text is the reply-keyboard "Support" button.
func (b *BotFacade) IsSupportButton(text string) bool {
	return strings.TrimSpace(text) == b.tr.T("button_support")
}

// RegisterMenus installs the default command menu and the admin menu for each admin chat.
func (b *BotFacade) RegisterMenus(ctx context.Context) error {
	var errs []error
	if err := b.bot.SetMenuCommands(ctx, 0, false); err != nil {
		errs = append(errs, err)
	}
	for _, id := range b.admin.Admins() {
		if err := b.bot.SetMenuCommands(ctx, id, true); err != nil {
			errs = append(errs, fmt.Errorf("admin %d: %w", id, err))
		}
	}
	return errors.Join(errs...)
}

// ---- user surface ----

func (b *BotFacade) HandleStart(ctx context.Context, s usecase.Sender) (Reply, error) {
	if _, err := b.users.Register(ctx, s.ID, s.DisplayName, s.Handle); err != nil {
		return Reply{}, fmt.Errorf("register user: %w", err)
	}
	if blocked, err := b.users.IsBlocked(ctx, s.ID); err != nil {
		return Reply{}, err
	} else if blocked {
		metrics.IncBlockedRejection("start")
		return Reply{Text: b.tr.T("blocked_notice")}, nil
	}
	return Reply{
		Text:          b.tr.T("welcome_message"),
		ReplyKeyboard: [][]string{{b.tr.T("button_support")}},
	}, nil
}

func (b *BotFacade) HandleSupportMenu(ctx context.Context, s usecase.Sender) (Reply, error) {
	blocked, err := b.users.IsBlocked(ctx, s.ID)
	if err != nil {
		return Reply{}, err
	}
	if blocked {
		metrics.IncBlockedRejection("menu")
		return Reply{Text: b.tr.T("blocked_notice")}, nil
	}

	rows := make([][]adapter.InlineButton, 0, len(model.Categories()))
	for _, c := range model.Categories() {
		rows = append(rows, []adapter.InlineButton{{
			Text: b.tr.T("button_support_" + c.String()),
			Data: CallbackPrefix + c.String(),
		}})
	}
	return Reply{Text: b.tr.T("support_menu_prompt"), InlineKeyboard: rows}, nil
}

// HandleCategory handles a support menu button. The returned text replaces the menu message.
func (b *BotFacade) HandleCategory(ctx context.Context, s usecase.Sender, data string) (Reply, error) {
	c, err := model.ParseCategory(strings.TrimPrefix(data, CallbackPrefix))
	if err != nil {
		return Reply{}, err
	}
	out, err := b.routing.SelectCategory(ctx, s, c)
	if err != nil {
		return Reply{}, err
	}
	if out == usecase.OutcomeBlocked {
		return Reply{Text: b.tr.T("blocked_notice")}, nil
	}
	return Reply{Text: b.tr.T("prompt_" + c.String())}, nil
}

func (b *BotFacade) HandleUserMessage(ctx context.Context, msg usecase.InboundMessage) (usecase.RouteOutcome, error) {
	return b.routing.RouteUserMessage(ctx, msg)
}

// HandleStaffReply routes a reply from an admin back to the user. Replies from
// anyone else are ignored.
func (b *BotFacade) HandleStaffReply(ctx context.Context, reply usecase.StaffReply) (usecase.RouteOutcome, error) {
	if !b.IsAdmin(reply.SenderID) {
		return usecase.OutcomeUnresolved, nil
	}
	return b.routing.RouteStaffReply(ctx, reply)
}

// ---- admin surface ----
// Every admin handler returns "" for non-admins so the adapter stays silent.

func (b *BotFacade) gate(command string, adminID int64) bool {
	if !b.IsAdmin(adminID) {
		metrics.IncAdminCommand(command, "unauthorized")
		return false
	}
	metrics.IncAdminCommand(command, "authorized")
	return true
}

func parseUserID(args string) (int64, bool) {
	fields := strings.Fields(args)
	if len(fields) == 0 {
		return 0, false
	}
	id, err := strconv.ParseInt(fields[0], 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

func (b *BotFacade) HandleBlock(ctx context.Context, adminID int64, args string) (string, error) {
	if !b.gate("block", adminID) {
		return "", nil
	}
	id, ok := parseUserID(args)
	if !ok {
		metrics.IncAdminCommand("block", "usage")
		return b.tr.T("usage_block"), nil
	}
	if err := b.admin.Block(ctx, id); err != nil {
		logging.With(ctx, b.log).Error().Err(err).Int64("user_id", id).Msg("block failed")
		return b.tr.T("admin_error", err.Error()), nil
	}
	return b.tr.T("block_success", id), nil
}

func (b *BotFacade) HandleUnblock(ctx context.Context, adminID int64, args string) (string, error) {
	if !b.gate("unblock", adminID) {
		return "", nil
	}
	id, ok := parseUserID(args)
	if !ok {
		metrics.IncAdminCommand("unblock", "usage")
		return b.tr.T("usage_unblock"), nil
	}
	if err := b.admin.Unblock(ctx, id); err != nil {
		logging.With(ctx, b.log).Error().Err(err).Int64("user_id", id).Msg("unblock failed")
		return b.tr.T("admin_error", err.Error()), nil
	}
	return b.tr.T("unblock_success", id), nil
}

func (b *BotFacade) HandleListBlocked(ctx context.Context, adminID int64) (string, error) {
	if !b.gate("blocked", adminID) {
		return "", nil
	}
	users, err := b.admin.ListBlocked(ctx)
	if err != nil {
		return b.tr.T("admin_error", err.Error()), nil
	}
	if len(users) == 0 {
		return b.tr.T("blocked_list_empty"), nil
	}
	sb := strings.Builder{}
	sb.WriteString(b.tr.T("blocked_list_header"))
	for _, u := range users {
		sb.WriteString(b.tr.T("blocked_list_item", u.DisplayName, u.HandleOr(b.tr.T("handle_missing")), u.ID))
	}
	return sb.String(), nil
}

// HandleBroadcast queues the broadcast on the job pool and answers right away.
// The invoking admin gets the counts in a separate message when the job ends.
func (b *BotFacade) HandleBroadcast(ctx context.Context, adminID int64, args string) (string, error) {
	if !b.gate("broadcast", adminID) {
		return "", nil
	}
	text := strings.TrimSpace(args)
	if text == "" {
		metrics.IncAdminCommand("broadcast", "usage")
		return b.tr.T("usage_broadcast"), nil
	}

	jobID := uuid.NewString()
	traceID := logging.TraceIDFrom(ctx)
	log := logging.With(ctx, b.log).With().Str("job_id", jobID).Logger()

	err := b.jobs.Submit(func(jobCtx context.Context) error {
		jobCtx = logging.WithTraceID(jobCtx, traceID)
		res, err := b.admin.Broadcast(jobCtx, text)
		status := "completed"
		if err != nil {
			status = "failed"
			log.Error().Err(err).Int("success", res.Success).Int("failed", res.Failed).Msg("broadcast job ended early")
		}
		metrics.IncBackgroundJob("broadcast", status)

		// A shutdown cancels jobCtx mid-broadcast; the partial counts are still reported.
		reportCtx, cancel := context.WithTimeout(context.WithoutCancel(jobCtx), broadcastReportTimeout)
		defer cancel()
		if _, sendErr := b.bot.SendMessage(reportCtx, adapter.SendMessageParams{
			ChatID: adminID,
			Text:   b.tr.T("broadcast_result", res.Success, res.Failed),
		}); sendErr != nil {
			log.Warn().Err(sendErr).Int64("admin_id", adminID).Msg("failed to report broadcast result")
		}
		return err
	})
	if err != nil {
		metrics.IncBackgroundJob("broadcast", "rejected")
		log.Warn().Err(err).Msg("broadcast job rejected")
		return b.tr.T("broadcast_busy"), nil
	}
	log.Info().Int64("admin_id", adminID).Msg("broadcast job queued")
	return b.tr.T("broadcast_started"), nil
}

func (b *BotFacade) HandleHelp(ctx context.Context, adminID int64) string {
	if !b.gate("help", adminID) {
		return ""
	}
	return b.tr.T("admin_help")
}
