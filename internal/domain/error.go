package domain

import (
	"errors"
	"fmt"
)

var (
	// Common domain errors
	ErrNotFound           = errors.New("entity not found")
	ErrInvalidArgument    = errors.New("invalid argument")
	ErrUnknownCategory    = errors.New("unknown support category")
	ErrInvalidExecContext = errors.New("invalid execution context for repository call")
	ErrReadDatabaseRow    = errors.New("failed to read database row")
)

// DeliveryError is returned when the chat transport could not deliver a message
// (network failure, bot blocked by the recipient, unknown chat, ...).
type DeliveryError struct {
	ChatID int64
	Err    error
}

func NewDeliveryError(chatID int64, err error) *DeliveryError {
	return &DeliveryError{ChatID: chatID, Err: err}
}

func (e *DeliveryError) Error() string {
	return fmt.Sprintf("deliver to chat %d: %v", e.ChatID, e.Err)
}

func (e *DeliveryError) Unwrap() error { return e.Err }

// IsDeliveryError reports whether err (or anything it wraps) is a DeliveryError.
func IsDeliveryError(err error) bool {
	var de *DeliveryError
	return errors.As(err, &de)
}
