package redis

import (
	"context"
	"errors"
	"fmt"

	"telegram-support-relay/internal/domain/model"
	"telegram-support-relay/internal/domain/ports/repository"

	"github.com/go-redis/redis/v8"
)

var _ repository.SelectionStore = (*SelectionStore)(nil)

// SelectionStore keeps each user's picked support category in Redis so it
// survives restarts. Keys carry no expiry.
type SelectionStore struct {
	client RedisClient
}

func NewSelectionStore(client RedisClient) *SelectionStore {
	return &SelectionStore{client: client}
}

func (s *SelectionStore) selectionKey(tgID int64) string {
	return fmt.Sprintf("support_selection:%d", tgID)
}

func (s *SelectionStore) SetSelection(ctx context.Context, tgID int64, c model.Category) error {
	if _, err := model.ParseCategory(c.String()); err != nil {
		return fmt.Errorf("set selection: %w", err)
	}
	return s.client.Set(ctx, s.selectionKey(tgID), c.String(), 0)
}

func (s *SelectionStore) GetSelection(ctx context.Context, tgID int64) (model.Category, bool, error) {
	val, err := s.client.Get(ctx, s.selectionKey(tgID))
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("get selection: %w", err)
	}
	c, err := model.ParseCategory(val)
	if err != nil {
		// stale value from an older deployment; treat as no selection
		return "", false, nil
	}
	return c, true, nil
}
