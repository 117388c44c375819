package memory

import (
	"context"
	"fmt"
	"sync"

	"telegram-support-relay/internal/domain/model"
	"telegram-support-relay/internal/domain/ports/repository"
)

var _ repository.SelectionStore = (*SelectionStore)(nil)

// SelectionStore is the default in-process selection store. Contents are lost
// on restart.
type SelectionStore struct {
	mu   sync.RWMutex
	data map[int64]model.Category
}

func NewSelectionStore() *SelectionStore {
	return &SelectionStore{data: make(map[int64]model.Category)}
}

func (s *SelectionStore) SetSelection(_ context.Context, tgID int64, c model.Category) error {
	if _, err := model.ParseCategory(c.String()); err != nil {
		return fmt.Errorf("set selection: %w", err)
	}
	s.mu.Lock()
	s.data[tgID] = c
	s.mu.Unlock()
	return nil
}

func (s *SelectionStore) GetSelection(_ context.Context, tgID int64) (model.Category, bool, error) {
	s.mu.RLock()
	c, ok := s.data[tgID]
	s.mu.RUnlock()
	return c, ok, nil
}
