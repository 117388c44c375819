//go:build !integration

package usecase_test

import (
	"context"
	"io"
	"sort"
	"sync"
	"testing/fstest"
	"time"

	"github.com/rs/zerolog"

	"telegram-support-relay/internal/domain"
	"telegram-support-relay/internal/domain/model"
	"telegram-support-relay/internal/domain/ports/adapter"
	"telegram-support-relay/internal/domain/ports/repository"
	"telegram-support-relay/internal/infra/i18n"
)

// ---- Mock TelegramBotAdapter ----

type MockTelegramBot struct {
	mu     sync.Mutex
	Sent   []adapter.SendMessageParams
	nextID int
	// PerChat numbers messages per chat from 1, the way Telegram does.
	PerChat bool
	chatIDs map[int64]int

	SendMessageFunc     func(ctx context.Context, params adapter.SendMessageParams) (int, error)
	EditMessageTextFunc func(ctx context.Context, chatID int64, messageID int, text string, rows [][]adapter.InlineButton) error
	SetMenuCommandsFunc func(ctx context.Context, chatID int64, isAdmin bool) error
}

var _ adapter.TelegramBotAdapter = (*MockTelegramBot)(nil)

// SendMessage records params and returns increasing message ids starting at
// 1000, or per-chat ids starting at 1 when PerChat is set.
func (m *MockTelegramBot) SendMessage(ctx context.Context, params adapter.SendMessageParams) (int, error) {
	if m.SendMessageFunc != nil {
		return m.SendMessageFunc(ctx, params)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Sent = append(m.Sent, params)
	if m.PerChat {
		if m.chatIDs == nil {
			m.chatIDs = make(map[int64]int)
		}
		m.chatIDs[params.ChatID]++
		return m.chatIDs[params.ChatID], nil
	}
	m.nextID++
	return 999 + m.nextID, nil
}

func (m *MockTelegramBot) EditMessageText(ctx context.Context, chatID int64, messageID int, text string, rows [][]adapter.InlineButton) error {
	if m.EditMessageTextFunc != nil {
		return m.EditMessageTextFunc(ctx, chatID, messageID, text, rows)
	}
	return nil
}

func (m *MockTelegramBot) SetMenuCommands(ctx context.Context, chatID int64, isAdmin bool) error {
	if m.SetMenuCommandsFunc != nil {
		return m.SetMenuCommandsFunc(ctx, chatID, isAdmin)
	}
	return nil
}

func (m *MockTelegramBot) SentTo(chatID int64) []adapter.SendMessageParams {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []adapter.SendMessageParams
	for _, p := range m.Sent {
		if p.ChatID == chatID {
			out = append(out, p)
		}
	}
	return out
}

func (m *MockTelegramBot) Count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Sent)
}

// ---- Mock UserRepository (map-backed, overridable) ----

type MockUserRepo struct {
	mu    sync.Mutex
	users map[int64]*model.User

	UpsertFunc    func(ctx context.Context, tx repository.Tx, u *model.User) (bool, error)
	IsBlockedFunc func(ctx context.Context, tx repository.Tx, id int64) (bool, error)
}

var _ repository.UserRepository = (*MockUserRepo)(nil)

func NewMockUserRepo() *MockUserRepo {
	return &MockUserRepo{users: make(map[int64]*model.User)}
}

func (m *MockUserRepo) Upsert(ctx context.Context, tx repository.Tx, u *model.User) (bool, error) {
	if m.UpsertFunc != nil {
		return m.UpsertFunc(ctx, tx, u)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.users[u.ID]; ok {
		return false, nil
	}
	cp := *u
	m.users[u.ID] = &cp
	return true, nil
}

func (m *MockUserRepo) FindByID(ctx context.Context, tx repository.Tx, id int64) (*model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (m *MockUserRepo) SetBlocked(ctx context.Context, tx repository.Tx, id int64, blocked bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if u, ok := m.users[id]; ok {
		u.Blocked = blocked
	}
	return nil
}

func (m *MockUserRepo) IsBlocked(ctx context.Context, tx repository.Tx, id int64) (bool, error) {
	if m.IsBlockedFunc != nil {
		return m.IsBlockedFunc(ctx, tx, id)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	return ok && u.Blocked, nil
}

func (m *MockUserRepo) ListBlocked(ctx context.Context, tx repository.Tx) ([]*model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*model.User
	for _, u := range m.users {
		if u.Blocked {
			cp := *u
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *MockUserRepo) ListActiveIDs(ctx context.Context, tx repository.Tx) ([]int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []int64
	for id, u := range m.users {
		if !u.Blocked {
			out = append(out, id)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out, nil
}

// ---- Mock CorrelationRepository ----

type MockCorrelationRepo struct {
	mu      sync.Mutex
	entries []*model.CorrelationEntry

	AppendFunc func(ctx context.Context, tx repository.Tx, e *model.CorrelationEntry) error
}

var _ repository.CorrelationRepository = (*MockCorrelationRepo)(nil)

func (m *MockCorrelationRepo) Append(ctx context.Context, tx repository.Tx, e *model.CorrelationEntry) error {
	if m.AppendFunc != nil {
		return m.AppendFunc(ctx, tx, e)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	e.ID = int64(len(m.entries) + 1)
	e.CreatedAt = time.Now().UTC()
	cp := *e
	m.entries = append(m.entries, &cp)
	return nil
}

func (m *MockCorrelationRepo) FindLatestByForwarded(ctx context.Context, tx repository.Tx, fwd int) (*model.CorrelationEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := len(m.entries) - 1; i >= 0; i-- {
		if m.entries[i].ForwardedMessageID == fwd {
			cp := *m.entries[i]
			return &cp, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (m *MockCorrelationRepo) FindLatestByForwardedInCategory(ctx context.Context, tx repository.Tx, fwd int, c model.Category) (*model.CorrelationEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := len(m.entries) - 1; i >= 0; i-- {
		if m.entries[i].ForwardedMessageID == fwd && m.entries[i].Category == c {
			cp := *m.entries[i]
			return &cp, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (m *MockCorrelationRepo) Entries() []model.CorrelationEntry {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]model.CorrelationEntry, len(m.entries))
	for i, e := range m.entries {
		out[i] = *e
	}
	return out
}

// ---- Mock SelectionStore ----

type MockSelectionStore struct {
	mu   sync.Mutex
	data map[int64]model.Category
}

var _ repository.SelectionStore = (*MockSelectionStore)(nil)

func NewMockSelectionStore() *MockSelectionStore {
	return &MockSelectionStore{data: make(map[int64]model.Category)}
}

func (m *MockSelectionStore) SetSelection(ctx context.Context, id int64, c model.Category) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[id] = c
	return nil
}

func (m *MockSelectionStore) GetSelection(ctx context.Context, id int64) (model.Category, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.data[id]
	return c, ok, nil
}

// newTestLogger creates a silent zerolog.Logger for use in tests.
func newTestLogger() *zerolog.Logger {
	logger := zerolog.New(io.Discard)
	return &logger
}

func newTestTranslator() *i18n.Translator {
	testFS := fstest.MapFS{
		"locales/en.yaml": {
			Data: []byte(`
blocked_notice: "BLOCKED"
handle_none: "none"
media_placeholder: "[media]"
forward_template: "FWD name=%s handle=@%s id=%d body=%s"
reply_footer: " -- reply to answer"
`),
		},
	}
	tr, err := i18n.NewTranslator(testFS, "en")
	if err != nil {
		panic(err)
	}
	return tr
}
