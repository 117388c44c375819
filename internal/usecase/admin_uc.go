package usecase

import (
	"context"
	"fmt"
	"strings"

	"telegram-support-relay/internal/domain"
	"telegram-support-relay/internal/domain/model"
	"telegram-support-relay/internal/domain/ports/adapter"
	"telegram-support-relay/internal/infra/logging"
	"telegram-support-relay/internal/infra/metrics"

	"github.com/rs/zerolog"
	"golang.org/x/time/rate"
)

var _ AdminUseCase = (*adminUC)(nil)

type BroadcastResult struct {
	Recipients int
	Success    int
	Failed     int
}

// AdminUseCase holds the staff-only operations. Callers enforce IsAdmin.
type AdminUseCase interface {
	IsAdmin(id int64) bool
	Admins() []int64
	Block(ctx context.Context, id int64) error
	Unblock(ctx context.Context, id int64) error
	ListBlocked(ctx context.Context) ([]*model.User, error)
	// Broadcast sends text to every non-blocked user, one at a time. A failed
	// recipient is counted and the loop moves on.
	Broadcast(ctx context.Context, text string) (BroadcastResult, error)
}

type adminUC struct {
	users   UserUseCase
	bot     adapter.TelegramBotAdapter
	admins  model.AdminSet
	limiter *rate.Limiter
	log     *zerolog.Logger
}

// NewAdminUseCase paces broadcasts with limiter; nil means no pacing.
func NewAdminUseCase(
	users UserUseCase,
	bot adapter.TelegramBotAdapter,
	admins model.AdminSet,
	limiter *rate.Limiter,
	logger *zerolog.Logger,
) *adminUC {
	if limiter == nil {
		limiter = rate.NewLimiter(rate.Inf, 1)
	}
	return &adminUC{
		users:   users,
		bot:     bot,
		admins:  admins,
		limiter: limiter,
		log:     logger,
	}
}

func (a *adminUC) IsAdmin(id int64) bool { return a.admins.Contains(id) }

func (a *adminUC) Admins() []int64 { return a.admins.IDs() }

func (a *adminUC) Block(ctx context.Context, id int64) error {
	defer logging.TraceDuration(a.log, "AdminUC.Block")()
	if id <= 0 {
		return fmt.Errorf("block %d: %w", id, domain.ErrInvalidArgument)
	}
	return a.users.SetBlocked(ctx, id, true)
}

func (a *adminUC) Unblock(ctx context.Context, id int64) error {
	defer logging.TraceDuration(a.log, "AdminUC.Unblock")()
	if id <= 0 {
		return fmt.Errorf("unblock %d: %w", id, domain.ErrInvalidArgument)
	}
	return a.users.SetBlocked(ctx, id, false)
}

func (a *adminUC) ListBlocked(ctx context.Context) ([]*model.User, error) {
	defer logging.TraceDuration(a.log, "AdminUC.ListBlocked")()
	return a.users.ListBlocked(ctx)
}

func (a *adminUC) Broadcast(ctx context.Context, text string) (BroadcastResult, error) {
	defer logging.TraceDuration(a.log, "AdminUC.Broadcast")()
	log := logging.With(ctx, a.log)

	var res BroadcastResult
	if strings.TrimSpace(text) == "" {
		return res, fmt.Errorf("broadcast: empty text: %w", domain.ErrInvalidArgument)
	}
	ids, err := a.users.ListActiveIDs(ctx)
	if err != nil {
		return res, fmt.Errorf("broadcast: list recipients: %w", err)
	}
	res.Recipients = len(ids)
	log.Info().Int("recipients", len(ids)).Msg("broadcast started")

	for i, id := range ids {
		if err := a.limiter.Wait(ctx); err != nil {
			// shutdown: the rest were never attempted
			res.Failed += len(ids) - i
			log.Warn().Err(err).Int("skipped", len(ids)-i).Msg("broadcast interrupted")
			return res, err
		}
		if _, err := a.bot.SendMessage(ctx, adapter.SendMessageParams{ChatID: id, Text: text}); err != nil {
			res.Failed++
			metrics.IncBroadcastMessage("failed")
			log.Warn().Err(err).Int64("user_id", id).Msg("broadcast delivery failed")
			continue
		}
		res.Success++
		metrics.IncBroadcastMessage("sent")
	}

	log.Info().Int("success", res.Success).Int("failed", res.Failed).Msg("broadcast finished")
	return res, nil
}
