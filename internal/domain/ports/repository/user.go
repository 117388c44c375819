package repository

import (
	"context"

	"telegram-support-relay/internal/domain/model"
)

// -----------------------------
// Users
// -----------------------------

type UserRepository interface {
	// Upsert inserts u when its id is unknown and reports whether a row was
	// created. Existing rows are left untouched.
	Upsert(ctx context.Context, tx Tx, u *model.User) (bool, error)
	FindByID(ctx context.Context, tx Tx, id int64) (*model.User, error)
	// SetBlocked is a no-op for unknown ids.
	SetBlocked(ctx context.Context, tx Tx, id int64, blocked bool) error
	// IsBlocked returns false for unknown ids.
	IsBlocked(ctx context.Context, tx Tx, id int64) (bool, error)
	ListBlocked(ctx context.Context, tx Tx) ([]*model.User, error)
	ListActiveIDs(ctx context.Context, tx Tx) ([]int64, error)
}
