package model

import (
	"strings"
	"time"

	"telegram-support-relay/internal/domain"
)

// User is a Telegram user who has contacted the bot at least once.
// DisplayName and Handle are captured on first contact only.
type User struct {
	ID          int64
	DisplayName string
	Handle      string
	Blocked     bool
	CreatedAt   time.Time
}

func NewUser(id int64, displayName, handle string) (*User, error) {
	if id <= 0 {
		return nil, domain.ErrInvalidArgument
	}
	return &User{
		ID:          id,
		DisplayName: strings.TrimSpace(displayName),
		Handle:      strings.TrimPrefix(strings.TrimSpace(handle), "@"),
		Blocked:     false,
		CreatedAt:   time.Now().UTC(),
	}, nil
}

// HandleOr returns the handle, or fallback when the user has none.
func (u *User) HandleOr(fallback string) string {
	if u == nil || u.Handle == "" {
		return fallback
	}
	return u.Handle
}

func (u *User) IsZero() bool { return u == nil || u.ID == 0 }
