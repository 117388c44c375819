package sqlite

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"telegram-support-relay/internal/domain"
	"telegram-support-relay/internal/domain/model"
	"telegram-support-relay/internal/domain/ports/repository"
)

var _ repository.CorrelationRepository = (*CorrelationRepo)(nil)

type CorrelationRepo struct {
	db *gorm.DB
}

func NewCorrelationRepo(db *gorm.DB) *CorrelationRepo {
	return &CorrelationRepo{db: db}
}

func (r *CorrelationRepo) Append(ctx context.Context, tx repository.Tx, e *model.CorrelationEntry) error {
	q, err := conn(ctx, r.db, tx)
	if err != nil {
		return err
	}
	created := e.CreatedAt
	if created.IsZero() {
		created = time.Now().UTC()
	}
	row := correlationRow{
		UserID:             e.UserID,
		ForwardedMessageID: e.ForwardedMessageID,
		OriginalMessageID:  e.OriginalMessageID,
		Category:           e.Category.String(),
		CreatedAt:          created,
	}
	if err := q.Omit("User").Create(&row).Error; err != nil {
		return fmt.Errorf("append correlation (user %d, fwd %d): %w", e.UserID, e.ForwardedMessageID, err)
	}
	e.ID = row.ID
	e.CreatedAt = row.CreatedAt
	return nil
}

func (r *CorrelationRepo) FindLatestByForwarded(ctx context.Context, tx repository.Tx, forwardedMsgID int) (*model.CorrelationEntry, error) {
	q, err := conn(ctx, r.db, tx)
	if err != nil {
		return nil, err
	}
	return latest(q.Where("forwarded_message_id = ?", forwardedMsgID))
}

func (r *CorrelationRepo) FindLatestByForwardedInCategory(ctx context.Context, tx repository.Tx, forwardedMsgID int, c model.Category) (*model.CorrelationEntry, error) {
	q, err := conn(ctx, r.db, tx)
	if err != nil {
		return nil, err
	}
	return latest(q.Where("forwarded_message_id = ? AND category = ?", forwardedMsgID, c.String()))
}

// latest takes the highest-id row matching q.
func latest(q *gorm.DB) (*model.CorrelationEntry, error) {
	var row correlationRow
	if err := q.Order("id DESC").Take(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("%w: %v", domain.ErrReadDatabaseRow, err)
	}
	cat, err := model.ParseCategory(row.Category)
	if err != nil {
		return nil, err
	}
	return &model.CorrelationEntry{
		ID:                 row.ID,
		UserID:             row.UserID,
		ForwardedMessageID: row.ForwardedMessageID,
		OriginalMessageID:  row.OriginalMessageID,
		Category:           cat,
		CreatedAt:          row.CreatedAt,
	}, nil
}
