//go:build !integration

package application_test

import (
	"context"
	"io"
	"sort"
	"sync"
	"testing/fstest"

	"github.com/rs/zerolog"

	"telegram-support-relay/internal/domain"
	"telegram-support-relay/internal/domain/model"
	"telegram-support-relay/internal/domain/ports/adapter"
	"telegram-support-relay/internal/domain/ports/repository"
	"telegram-support-relay/internal/infra/i18n"
	"telegram-support-relay/internal/infra/worker"
)

type mockBot struct {
	mu        sync.Mutex
	sent      []adapter.SendMessageParams
	menus     map[int64]bool
	sendErrTo map[int64]error
}

func newMockBot() *mockBot {
	return &mockBot{menus: map[int64]bool{}, sendErrTo: map[int64]error{}}
}

func (m *mockBot) SendMessage(ctx context.Context, p adapter.SendMessageParams) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.sendErrTo[p.ChatID]; err != nil {
		return 0, domain.NewDeliveryError(p.ChatID, err)
	}
	m.sent = append(m.sent, p)
	return 100 + len(m.sent), nil
}

func (m *mockBot) EditMessageText(ctx context.Context, chatID int64, messageID int, text string, rows [][]adapter.InlineButton) error {
	return nil
}

func (m *mockBot) SetMenuCommands(ctx context.Context, chatID int64, isAdmin bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.menus[chatID] = isAdmin
	return nil
}

func (m *mockBot) sentTo(chatID int64) []adapter.SendMessageParams {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []adapter.SendMessageParams
	for _, p := range m.sent {
		if p.ChatID == chatID {
			out = append(out, p)
		}
	}
	return out
}

type mockUserRepo struct {
	mu    sync.Mutex
	users map[int64]*model.User
}

func newMockUserRepo() *mockUserRepo { return &mockUserRepo{users: map[int64]*model.User{}} }

func (m *mockUserRepo) Upsert(ctx context.Context, tx repository.Tx, u *model.User) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.users[u.ID]; ok {
		return false, nil
	}
	cp := *u
	m.users[u.ID] = &cp
	return true, nil
}

func (m *mockUserRepo) FindByID(ctx context.Context, tx repository.Tx, id int64) (*model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (m *mockUserRepo) SetBlocked(ctx context.Context, tx repository.Tx, id int64, blocked bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if u, ok := m.users[id]; ok {
		u.Blocked = blocked
	}
	return nil
}

func (m *mockUserRepo) IsBlocked(ctx context.Context, tx repository.Tx, id int64) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	return ok && u.Blocked, nil
}

func (m *mockUserRepo) ListBlocked(ctx context.Context, tx repository.Tx) ([]*model.User, error) {
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

func (m *mockUserRepo) ListActiveIDs(ctx context.Context, tx repository.Tx) ([]int64, error) {
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

type mockCorrelationRepo struct {
	mu      sync.Mutex
	entries []model.CorrelationEntry
}

func (m *mockCorrelationRepo) Append(ctx context.Context, tx repository.Tx, e *model.CorrelationEntry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	e.ID = int64(len(m.entries) + 1)
	m.entries = append(m.entries, *e)
	return nil
}

func (m *mockCorrelationRepo) FindLatestByForwarded(ctx context.Context, tx repository.Tx, fwd int) (*model.CorrelationEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := len(m.entries) - 1; i >= 0; i-- {
		if m.entries[i].ForwardedMessageID == fwd {
			e := m.entries[i]
			return &e, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (m *mockCorrelationRepo) FindLatestByForwardedInCategory(ctx context.Context, tx repository.Tx, fwd int, c model.Category) (*model.CorrelationEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := len(m.entries) - 1; i >= 0; i-- {
		if m.entries[i].ForwardedMessageID == fwd && m.entries[i].Category == c {
			e := m.entries[i]
			return &e, nil
		}
	}
	return nil, domain.ErrNotFound
}

// syncJobs runs tasks inline so tests can assert on their effects. With
// shutdown set the task sees an already cancelled context.
type syncJobs struct {
	err      error
	shutdown bool
}

func (s syncJobs) Submit(task worker.Task) error {
	if s.err != nil {
		return s.err
	}
	ctx := context.Background()
	if s.shutdown {
		var cancel context.CancelFunc
		ctx, cancel = context.WithCancel(ctx)
		cancel()
	}
	return task(ctx)
}

func newTestLogger() *zerolog.Logger {
	logger := zerolog.New(io.Discard)
	return &logger
}

func newTestTranslator() *i18n.Translator {
	testFS := fstest.MapFS{
		"locales/en.yaml": {Data: []byte(`
welcome_message: "WELCOME"
button_support: "Support"
support_menu_prompt: "PICK"
button_support_panel: "Panel"
button_support_representative: "Rep"
prompt_panel: "PROMPT panel"
prompt_representative: "PROMPT rep"
blocked_notice: "BLOCKED"
forward_template: "%s @%s %d %s"
handle_none: "none"
media_placeholder: "[media]"
reply_footer: " (reply)"
usage_block: "USAGE block"
usage_unblock: "USAGE unblock"
usage_broadcast: "USAGE broadcast"
block_success: "blocked %d"
unblock_success: "unblocked %d"
admin_error: "ERR %s"
blocked_list_empty: "EMPTY"
blocked_list_header: "LIST\n"
blocked_list_item: "• %s (@%s) - %d\n"
handle_missing: "---"
broadcast_started: "STARTED"
broadcast_busy: "BUSY"
broadcast_result: "DONE %d/%d"
admin_help: "HELP"
`)},
	}
	tr, err := i18n.NewTranslator(testFS, "en")
	if err != nil {
		panic(err)
	}
	return tr
}
