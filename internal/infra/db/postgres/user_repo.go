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

var _ repository.UserRepository = (*UserRepo)(nil)

type UserRepo struct {
	pool *pgxpool.Pool
}

func NewUserRepo(pool *pgxpool.Pool) *UserRepo {
	return &UserRepo{pool: pool}
}

func (r *UserRepo) Upsert(ctx context.Context, tx repository.Tx, u *model.User) (bool, error) {
	const q = `
INSERT INTO users (id, display_name, handle, blocked, created_at)
VALUES ($1, $2, $3, FALSE, $4)
ON CONFLICT (id) DO NOTHING;`
	tag, err := execSQL(ctx, r.pool, tx, q, u.ID, u.DisplayName, u.Handle, u.CreatedAt)
	if err != nil {
		return false, fmt.Errorf("upsert user %d: %w", u.ID, err)
	}
	return tag.RowsAffected() == 1, nil
}

func (r *UserRepo) FindByID(ctx context.Context, tx repository.Tx, id int64) (*model.User, error) {
	const q = `SELECT id, display_name, handle, blocked, created_at FROM users WHERE id=$1;`
	var u model.User
	err := pickRow(ctx, r.pool, tx, q, id).Scan(&u.ID, &u.DisplayName, &u.Handle, &u.Blocked, &u.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("%w: %v", domain.ErrReadDatabaseRow, err)
	}
	return &u, nil
}

func (r *UserRepo) SetBlocked(ctx context.Context, tx repository.Tx, id int64, blocked bool) error {
	if _, err := execSQL(ctx, r.pool, tx, `UPDATE users SET blocked=$2 WHERE id=$1;`, id, blocked); err != nil {
		return fmt.Errorf("set blocked %d: %w", id, err)
	}
	return nil
}

func (r *UserRepo) IsBlocked(ctx context.Context, tx repository.Tx, id int64) (bool, error) {
	var blocked bool
	err := pickRow(ctx, r.pool, tx, `SELECT blocked FROM users WHERE id=$1;`, id).Scan(&blocked)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return false, nil
		}
		return false, fmt.Errorf("is blocked %d: %w", id, err)
	}
	return blocked, nil
}

func (r *UserRepo) ListBlocked(ctx context.Context, tx repository.Tx) ([]*model.User, error) {
	rows, err := queryRows(ctx, r.pool, tx,
		`SELECT id, display_name, handle, blocked, created_at FROM users WHERE blocked ORDER BY id;`)
	if err != nil {
		return nil, fmt.Errorf("list blocked: %w", err)
	}
	defer rows.Close()

	var out []*model.User
	for rows.Next() {
		var u model.User
		if err := rows.Scan(&u.ID, &u.DisplayName, &u.Handle, &u.Blocked, &u.CreatedAt); err != nil {
			return nil, fmt.Errorf("%w: %v", domain.ErrReadDatabaseRow, err)
		}
		out = append(out, &u)
	}
	return out, rows.Err()
}

func (r *UserRepo) ListActiveIDs(ctx context.Context, tx repository.Tx) ([]int64, error) {
	rows, err := queryRows(ctx, r.pool, tx, `SELECT id FROM users WHERE NOT blocked ORDER BY id;`)
	if err != nil {
		return nil, fmt.Errorf("list active ids: %w", err)
	}
	defer rows.Close()

	var out []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("%w: %v", domain.ErrReadDatabaseRow, err)
		}
		out = append(out, id)
	}
	return out, rows.Err()
}
