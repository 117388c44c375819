package usecase

import (
	"context"

	"telegram-support-relay/internal/domain/model"
	"telegram-support-relay/internal/domain/ports/repository"
	"telegram-support-relay/internal/infra/logging"

	"github.com/rs/zerolog"
)

var _ ConversationUseCase = (*conversationUC)(nil)

// ConversationUseCase maps forwarded messages back to the users who sent them.
type ConversationUseCase interface {
	RecordForward(ctx context.Context, userID int64, forwardedMsgID, originalMsgID int, c model.Category) error
	// ResolveByForwardedMessage returns domain.ErrNotFound when nothing was recorded.
	ResolveByForwardedMessage(ctx context.Context, forwardedMsgID int) (int64, model.Category, error)
	// ResolveInCategory only considers forwards made under category c.
	ResolveInCategory(ctx context.Context, forwardedMsgID int, c model.Category) (int64, error)
}

type conversationUC struct {
	entries repository.CorrelationRepository
	log     *zerolog.Logger
}

func NewConversationUseCase(entries repository.CorrelationRepository, logger *zerolog.Logger) *conversationUC {
	return &conversationUC{entries: entries, log: logger}
}

func (c *conversationUC) RecordForward(ctx context.Context, userID int64, forwardedMsgID, originalMsgID int, cat model.Category) error {
	defer logging.TraceDuration(c.log, "ConversationUC.RecordForward")()

	e, err := model.NewCorrelationEntry(userID, forwardedMsgID, originalMsgID, cat)
	if err != nil {
		return err
	}
	return c.entries.Append(ctx, repository.NoTX, e)
}

func (c *conversationUC) ResolveByForwardedMessage(ctx context.Context, forwardedMsgID int) (int64, model.Category, error) {
	defer logging.TraceDuration(c.log, "ConversationUC.ResolveByForwardedMessage")()

	e, err := c.entries.FindLatestByForwarded(ctx, repository.NoTX, forwardedMsgID)
	if err != nil {
		return 0, "", err
	}
	return e.UserID, e.Category, nil
}

func (c *conversationUC) ResolveInCategory(ctx context.Context, forwardedMsgID int, cat model.Category) (int64, error) {
	defer logging.TraceDuration(c.log, "ConversationUC.ResolveInCategory")()

	e, err := c.entries.FindLatestByForwardedInCategory(ctx, repository.NoTX, forwardedMsgID, cat)
	if err != nil {
		return 0, err
	}
	return e.UserID, nil
}
