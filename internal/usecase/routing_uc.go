package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"telegram-support-relay/internal/domain"
	"telegram-support-relay/internal/domain/model"
	"telegram-support-relay/internal/domain/ports/adapter"
	"telegram-support-relay/internal/domain/ports/repository"
	"telegram-support-relay/internal/infra/logging"
	"telegram-support-relay/internal/infra/metrics"

	"github.com/rs/zerolog"
)

var _ RoutingUseCase = (*routingUC)(nil)

// Translator renders user-facing texts.
type Translator interface {
	T(key string, args ...interface{}) string
}

// Sender identifies the user behind an interaction.
type Sender struct {
	ID          int64
	DisplayName string
	Handle      string
}

// InboundMessage is a private, non-command message from a user.
type InboundMessage struct {
	Sender
	MessageID int
	Text      string
	HasMedia  bool
}

// StaffReply is a message from a staff member replying to a forwarded message.
type StaffReply struct {
	SenderID         int64
	// ChatID is where the reply was written. Zero means the sender's private chat.
	ChatID           int64
	ReplyToMessageID int
	MessageID        int
	Text             string
	HasMedia         bool
}

type RouteOutcome int

const (
	OutcomeError RouteOutcome = iota
	OutcomeForwarded
	OutcomeBlocked
	OutcomeNoCategory
	OutcomeDeliveryFailed
	OutcomeRecordFailed
	OutcomeUnresolved
	OutcomeReplied
	OutcomeSelected
)

func (o RouteOutcome) String() string {
	switch o {
	case OutcomeForwarded:
		return "forwarded"
	case OutcomeBlocked:
		return "blocked"
	case OutcomeNoCategory:
		return "no_category"
	case OutcomeDeliveryFailed:
		return "delivery_failed"
	case OutcomeRecordFailed:
		return "record_failed"
	case OutcomeUnresolved:
		return "unresolved"
	case OutcomeReplied:
		return "replied"
	case OutcomeSelected:
		return "selected"
	default:
		return "error"
	}
}

// RoutingUseCase moves messages between users and support targets.
type RoutingUseCase interface {
	// SelectCategory registers the sender and stores c as their current
	// category. Blocked senders get OutcomeBlocked and nothing is stored.
	SelectCategory(ctx context.Context, s Sender, c model.Category) (RouteOutcome, error)
	// RouteUserMessage forwards msg to the target of the sender's category.
	// Delivery and record failures are logged and reported in the outcome only.
	RouteUserMessage(ctx context.Context, msg InboundMessage) (RouteOutcome, error)
	// RouteStaffReply sends a staff reply back to the user who sent the
	// forwarded message. Unknown forwarded ids are dropped silently.
	RouteStaffReply(ctx context.Context, reply StaffReply) (RouteOutcome, error)
	Selection(ctx context.Context, userID int64) (model.Category, bool, error)
}

type routingUC struct {
	users      UserUseCase
	convs      ConversationUseCase
	selections repository.SelectionStore
	bot        adapter.TelegramBotAdapter
	targets    model.Targets
	tr         Translator
	log        *zerolog.Logger
	dev        bool
}

func NewRoutingUseCase(
	users UserUseCase,
	convs ConversationUseCase,
	selections repository.SelectionStore,
	bot adapter.TelegramBotAdapter,
	targets model.Targets,
	tr Translator,
	logger *zerolog.Logger,
	dev bool,
) *routingUC {
	return &routingUC{
		users:      users,
		convs:      convs,
		selections: selections,
		bot:        bot,
		targets:    targets,
		tr:         tr,
		log:        logger,
		dev:        dev,
	}
}

func (r *routingUC) SelectCategory(ctx context.Context, s Sender, c model.Category) (RouteOutcome, error) {
	defer logging.TraceDuration(r.log, "RoutingUC.SelectCategory")()

	if !c.Valid() {
		return OutcomeError, fmt.Errorf("select category: %w: %q", domain.ErrUnknownCategory, c)
	}
	if _, err := r.users.Register(ctx, s.ID, s.DisplayName, s.Handle); err != nil {
		return OutcomeError, err
	}
	blocked, err := r.users.IsBlocked(ctx, s.ID)
	if err != nil {
		return OutcomeError, err
	}
	if blocked {
		metrics.IncBlockedRejection("category")
		return OutcomeBlocked, nil
	}
	if err := r.selections.SetSelection(ctx, s.ID, c); err != nil {
		return OutcomeError, err
	}
	return OutcomeSelected, nil
}

func (r *routingUC) Selection(ctx context.Context, userID int64) (model.Category, bool, error) {
	return r.selections.GetSelection(ctx, userID)
}

func (r *routingUC) RouteUserMessage(ctx context.Context, msg InboundMessage) (outcome RouteOutcome, err error) {
	defer logging.TraceDuration(r.log, "RoutingUC.RouteUserMessage")()
	log := logging.With(ctx, r.log)

	var cat model.Category
	defer func() { metrics.IncForward(cat.String(), outcome.String()) }()

	if _, err := r.users.Register(ctx, msg.ID, msg.DisplayName, msg.Handle); err != nil {
		return OutcomeError, err
	}
	blocked, err := r.users.IsBlocked(ctx, msg.ID)
	if err != nil {
		return OutcomeError, err
	}
	if blocked {
		metrics.IncBlockedRejection("message")
		if _, err := r.bot.SendMessage(ctx, adapter.SendMessageParams{ChatID: msg.ID, Text: r.tr.T("blocked_notice")}); err != nil {
			log.Warn().Err(err).Int64("user_id", msg.ID).Msg("failed to send blocked notice")
		}
		return OutcomeBlocked, nil
	}

	c, ok, err := r.selections.GetSelection(ctx, msg.ID)
	if err != nil {
		return OutcomeError, err
	}
	if !ok {
		return OutcomeNoCategory, nil
	}
	cat = c

	target, err := r.targets.Resolve(c)
	if err != nil {
		return OutcomeError, err
	}

	handle := msg.Handle
	if strings.TrimSpace(handle) == "" {
		handle = r.tr.T("handle_none")
	}
	payload := r.tr.T("forward_template", msg.DisplayName, strings.TrimPrefix(handle, "@"), msg.ID, r.body(msg.Text, msg.HasMedia))

	fwdID, err := r.bot.SendMessage(ctx, adapter.SendMessageParams{ChatID: target, Text: payload})
	if err != nil {
		log.Error().Err(err).
			Int64("user_id", msg.ID).
			Int64("target_id", target).
			Str("category", c.String()).
			Msg("failed to forward user message")
		return OutcomeDeliveryFailed, nil
	}

	if err := r.convs.RecordForward(ctx, msg.ID, fwdID, msg.MessageID, c); err != nil {
		metrics.IncCorrelationRecordFailure()
		// everything needed to rebuild the entry by hand
		log.Error().Err(err).
			Int64("user_id", msg.ID).
			Int64("target_id", target).
			Int("forwarded_message_id", fwdID).
			Int("original_message_id", msg.MessageID).
			Str("category", c.String()).
			Msg("message forwarded but correlation not recorded")
		return OutcomeRecordFailed, nil
	}

	log.Debug().
		Int64("user_id", msg.ID).
		Int("forwarded_message_id", fwdID).
		Str("category", c.String()).
		Str("text", logging.Redact(msg.Text, r.dev)).
		Msg("user message forwarded")
	return OutcomeForwarded, nil
}

func (r *routingUC) RouteStaffReply(ctx context.Context, reply StaffReply) (outcome RouteOutcome, err error) {
	defer logging.TraceDuration(r.log, "RoutingUC.RouteStaffReply")()
	log := logging.With(ctx, r.log)
	defer func() { metrics.IncStaffReply(outcome.String()) }()

	userID, err := r.resolveReply(ctx, reply)
	if errors.Is(err, domain.ErrNotFound) {
		log.Debug().Int("reply_to", reply.ReplyToMessageID).Msg("staff reply to unknown message ignored")
		return OutcomeUnresolved, nil
	}
	if err != nil {
		return OutcomeError, err
	}

	text := r.body(reply.Text, reply.HasMedia) + r.tr.T("reply_footer")
	if _, err := r.bot.SendMessage(ctx, adapter.SendMessageParams{ChatID: userID, Text: text}); err != nil {
		log.Error().Err(err).
			Int64("staff_id", reply.SenderID).
			Int64("user_id", userID).
			Int("reply_to", reply.ReplyToMessageID).
			Msg("failed to deliver staff reply")
		return OutcomeDeliveryFailed, nil
	}
	return OutcomeReplied, nil
}

// resolveReply finds the user behind the replied-to message. Message ids are
// only unique within one chat, so a reply written in a target chat is matched
// against that target's category only.
func (r *routingUC) resolveReply(ctx context.Context, reply StaffReply) (int64, error) {
	chatID := reply.ChatID
	if chatID == 0 {
		chatID = reply.SenderID
	}
	for _, id := range []int64{chatID, reply.SenderID} {
		if c, ok := r.targets.CategoryFor(id); ok {
			return r.convs.ResolveInCategory(ctx, reply.ReplyToMessageID, c)
		}
	}
	userID, _, err := r.convs.ResolveByForwardedMessage(ctx, reply.ReplyToMessageID)
	return userID, err
}

// body returns the text, with the media placeholder in front for media
// messages. A message with neither gets the placeholder alone.
func (r *routingUC) body(text string, hasMedia bool) string {
	switch {
	case strings.TrimSpace(text) == "":
		return r.tr.T("media_placeholder")
	case hasMedia:
		return r.tr.T("media_placeholder") + "\n" + text
	}
	return text
}
