package sqlite

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"telegram-support-relay/internal/domain"
	"telegram-support-relay/internal/domain/model"
	"telegram-support-relay/internal/domain/ports/repository"
)

var _ repository.UserRepository = (*UserRepo)(nil)

type UserRepo struct {
	db *gorm.DB
}

func NewUserRepo(db *gorm.DB) *UserRepo {
	return &UserRepo{db: db}
}

func (r *UserRepo) Upsert(ctx context.Context, tx repository.Tx, u *model.User) (bool, error) {
	q, err := conn(ctx, r.db, tx)
	if err != nil {
		return false, err
	}
	row := userRow{ID: u.ID, DisplayName: u.DisplayName, Handle: u.Handle, CreatedAt: u.CreatedAt}
	res := q.Clauses(clause.OnConflict{DoNothing: true}).Create(&row)
	if res.Error != nil {
		return false, fmt.Errorf("upsert user %d: %w", u.ID, res.Error)
	}
	return res.RowsAffected == 1, nil
}

func (r *UserRepo) FindByID(ctx context.Context, tx repository.Tx, id int64) (*model.User, error) {
	q, err := conn(ctx, r.db, tx)
	if err != nil {
		return nil, err
	}
	var row userRow
	if err := q.Where("id = ?", id).Take(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("%w: %v", domain.ErrReadDatabaseRow, err)
	}
	return row.toModel(), nil
}

func (r *UserRepo) SetBlocked(ctx context.Context, tx repository.Tx, id int64, blocked bool) error {
	q, err := conn(ctx, r.db, tx)
	if err != nil {
		return err
	}
	if err := q.Model(&userRow{}).Where("id = ?", id).Update("blocked", blocked).Error; err != nil {
		return fmt.Errorf("set blocked %d: %w", id, err)
	}
	return nil
}

func (r *UserRepo) IsBlocked(ctx context.Context, tx repository.Tx, id int64) (bool, error) {
	q, err := conn(ctx, r.db, tx)
	if err != nil {
		return false, err
	}
	var vals []bool
	if err := q.Model(&userRow{}).Where("id = ?", id).Limit(1).Pluck("blocked", &vals).Error; err != nil {
		return false, fmt.Errorf("is blocked %d: %w", id, err)
	}
	return len(vals) == 1 && vals[0], nil
}

func (r *UserRepo) ListBlocked(ctx context.Context, tx repository.Tx) ([]*model.User, error) {
	q, err := conn(ctx, r.db, tx)
	if err != nil {
		return nil, err
	}
	var rows []userRow
	if err := q.Where("blocked = ?", true).Order("id").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("list blocked: %w", err)
	}
	out := make([]*model.User, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.toModel())
	}
	return out, nil
}

func (r *UserRepo) ListActiveIDs(ctx context.Context, tx repository.Tx) ([]int64, error) {
	q, err := conn(ctx, r.db, tx)
	if err != nil {
		return nil, err
	}
	var ids []int64
	if err := q.Model(&userRow{}).Where("blocked = ?", false).Order("id").Pluck("id", &ids).Error; err != nil {
		return nil, fmt.Errorf("list active ids: %w", err)
	}
	return ids, nil
}
