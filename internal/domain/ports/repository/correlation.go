package repository

import (
	"context"

	"telegram-support-relay/internal/domain/model"
)

// -----------------------------
// Correlation log
// -----------------------------

type CorrelationRepository interface {
	// Append stores e and fills in its ID and CreatedAt.
	Append(ctx context.Context, tx Tx, e *model.CorrelationEntry) error
	// FindLatestByForwarded returns the entry with the highest id for the given
	// forwarded message id, or domain.ErrNotFound.
	FindLatestByForwarded(ctx context.Context, tx Tx, forwardedMsgID int) (*model.CorrelationEntry, error)
	// FindLatestByForwardedInCategory narrows the lookup to one category. Message
	// ids are only unique per target chat, so replies are resolved this way.
	FindLatestByForwardedInCategory(ctx context.Context, tx Tx, forwardedMsgID int, c model.Category) (*model.CorrelationEntry, error)
}
