package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"telegram-support-relay/internal/domain"
	"telegram-support-relay/internal/domain/model"
	"telegram-support-relay/internal/domain/ports/repository"
)

var _ repository.CorrelationRepository = (*CorrelationRepo)(nil)

type CorrelationRepo struct {
	pool *pgxpool.Pool
}

func NewCorrelationRepo(pool *pgxpool.Pool) *CorrelationRepo {
	return &CorrelationRepo{pool: pool}
}

func (r *CorrelationRepo) Append(ctx context.Context, tx repository.Tx, e *model.CorrelationEntry) error {
	const q = `
INSERT INTO correlation_log (user_id, forwarded_message_id, original_message_id, category)
VALUES ($1, $2, $3, $4)
RETURNING id, created_at;`
	err := pickRow(ctx, r.pool, tx, q, e.UserID, e.ForwardedMessageID, e.OriginalMessageID, e.Category.String()).
		Scan(&e.ID, &e.CreatedAt)
	if err != nil {
		return fmt.Errorf("append correlation (user %d, fwd %d): %w", e.UserID, e.ForwardedMessageID, err)
	}
	return nil
}

func (r *CorrelationRepo) FindLatestByForwarded(ctx context.Context, tx repository.Tx, forwardedMsgID int) (*model.CorrelationEntry, error) {
	const q = `
SELECT id, user_id, forwarded_message_id, original_message_id, category, created_at
  FROM correlation_log
 WHERE forwarded_message_id=$1
 ORDER BY id DESC
 LIMIT 1;`
	return scanEntry(pickRow(ctx, r.pool, tx, q, forwardedMsgID))
}

func (r *CorrelationRepo) FindLatestByForwardedInCategory(ctx context.Context, tx repository.Tx, forwardedMsgID int, c model.Category) (*model.CorrelationEntry, error) {
	const q = `
SELECT id, user_id, forwarded_message_id, original_message_id, category, created_at
  FROM correlation_log
 WHERE forwarded_message_id=$1 AND category=$2
 ORDER BY id DESC
 LIMIT 1;`
	return scanEntry(pickRow(ctx, r.pool, tx, q, forwardedMsgID, c.String()))
}

func scanEntry(row pgx.Row) (*model.CorrelationEntry, error) {
	var (
		e   model.CorrelationEntry
		cat string
	)
	err := row.Scan(&e.ID, &e.UserID, &e.ForwardedMessageID, &e.OriginalMessageID, &cat, &e.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("%w: %v", domain.ErrReadDatabaseRow, err)
	}
	if e.Category, err = model.ParseCategory(cat); err != nil {
		return nil, err
	}
	return &e, nil
}
