package usecase

import (
	"context"
	"fmt"

	"telegram-support-relay/internal/domain/model"
	"telegram-support-relay/internal/domain/ports/repository"
	"telegram-support-relay/internal/infra/logging"
	"telegram-support-relay/internal/infra/metrics"

	"github.com/rs/zerolog"
)

// Compile-time check
var _ UserUseCase = (*userUC)(nil)

// UserUseCase is the user registry: first-contact registration and the block list.
type UserUseCase interface {
	// Register records the user on first contact and reports whether it was new.
	// Later calls never change the stored name or handle.
	Register(ctx context.Context, id int64, displayName, handle string) (bool, error)
	Get(ctx context.Context, id int64) (*model.User, error)
	SetBlocked(ctx context.Context, id int64, blocked bool) error
	IsBlocked(ctx context.Context, id int64) (bool, error)
	ListBlocked(ctx context.Context) ([]*model.User, error)
	ListActiveIDs(ctx context.Context) ([]int64, error)
}

type userUC struct {
	users repository.UserRepository
	log   *zerolog.Logger
}

func NewUserUseCase(users repository.UserRepository, logger *zerolog.Logger) *userUC {
	return &userUC{
		users: users,
		log:   logger,
	}
}

func (u *userUC) Register(ctx context.Context, id int64, displayName, handle string) (bool, error) {
	defer logging.TraceDuration(u.log, "UserUC.Register")()

	nu, err := model.NewUser(id, displayName, handle)
	if err != nil {
		return false, err
	}
	created, err := u.users.Upsert(ctx, repository.NoTX, nu)
	if err != nil {
		return false, fmt.Errorf("register user %d: %w", id, err)
	}
	if created {
		metrics.IncUsersRegistered()
		logging.With(ctx, u.log).Info().Int64("user_id", id).Msg("new user registered")
	}
	return created, nil
}

func (u *userUC) Get(ctx context.Context, id int64) (*model.User, error) {
	defer logging.TraceDuration(u.log, "UserUC.Get")()
	return u.users.FindByID(ctx, repository.NoTX, id)
}

func (u *userUC) SetBlocked(ctx context.Context, id int64, blocked bool) error {
	defer logging.TraceDuration(u.log, "UserUC.SetBlocked")()
	if err := u.users.SetBlocked(ctx, repository.NoTX, id, blocked); err != nil {
		return err
	}
	logging.With(ctx, u.log).Info().Int64("user_id", id).Bool("blocked", blocked).Msg("block status changed")
	return nil
}

func (u *userUC) IsBlocked(ctx context.Context, id int64) (bool, error) {
	defer logging.TraceDuration(u.log, "UserUC.IsBlocked")()
	return u.users.IsBlocked(ctx, repository.NoTX, id)
}

func (u *userUC) ListBlocked(ctx context.Context) ([]*model.User, error) {
	defer logging.TraceDuration(u.log, "UserUC.ListBlocked")()
	return u.users.ListBlocked(ctx, repository.NoTX)
}

func (u *userUC) ListActiveIDs(ctx context.Context) ([]int64, error) {
	defer logging.TraceDuration(u.log, "UserUC.ListActiveIDs")()
	return u.users.ListActiveIDs(ctx, repository.NoTX)
}
