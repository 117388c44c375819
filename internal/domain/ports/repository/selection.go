package repository

import (
	"context"

	"telegram-support-relay/internal/domain/model"
)

// SelectionStore keeps the support category each user picked most recently.
// Selections never expire; a new pick overwrites the old one.
type SelectionStore interface {
	SetSelection(ctx context.Context, tgID int64, c model.Category) error
	// GetSelection reports ok=false when the user has not picked a category.
	GetSelection(ctx context.Context, tgID int64) (c model.Category, ok bool, err error)
}
