//go:build !integration

package telegram

import (
	"context"
	"errors"
	"io"
	"sync"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"

	"telegram-support-relay/internal/application"
	"telegram-support-relay/internal/config"
	"telegram-support-relay/internal/usecase"
)

type fakeAPI struct {
	mu        sync.Mutex
	sent      []tgbotapi.Chattable
	requests  []tgbotapi.Chattable
	sendErr   error
	nextID    int
	updates   chan tgbotapi.Update
	stopCalls int
}

func newFakeAPI() *fakeAPI {
	return &fakeAPI{nextID: 500, updates: make(chan tgbotapi.Update, 16)}
}

func (f *fakeAPI) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.sendErr != nil {
		return tgbotapi.Message{}, f.sendErr
	}
	f.sent = append(f.sent, c)
	f.nextID++
	return tgbotapi.Message{MessageID: f.nextID}, nil
}

func (f *fakeAPI) Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.requests = append(f.requests, c)
	return &tgbotapi.APIResponse{Ok: true}, nil
}

func (f *fakeAPI) GetUpdatesChan(tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel {
	return f.updates
}

func (f *fakeAPI) StopReceivingUpdates() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.stopCalls++
}

func (f *fakeAPI) sentMessages() []tgbotapi.MessageConfig {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []tgbotapi.MessageConfig
	for _, c := range f.sent {
		if m, ok := c.(tgbotapi.MessageConfig); ok {
			out = append(out, m)
		}
	}
	return out
}

func (f *fakeAPI) allRequests() []tgbotapi.Chattable {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]tgbotapi.Chattable(nil), f.requests...)
}

// fakeFacade records calls; Func fields override the default behaviour.
type fakeFacade struct {
	mu     sync.Mutex
	admins map[int64]bool
	calls  []string

	userMessages []usecase.InboundMessage
	staffReplies []usecase.StaffReply

	HandleUserMessageFunc func(ctx context.Context, msg usecase.InboundMessage) (usecase.RouteOutcome, error)
}

func newFakeFacade(admins ...int64) *fakeFacade {
	f := &fakeFacade{admins: map[int64]bool{}}
	for _, id := range admins {
		f.admins[id] = true
	}
	return f
}

func (f *fakeFacade) record(call string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, call)
}

func (f *fakeFacade) Calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.calls...)
}

func (f *fakeFacade) IsAdmin(id int64) bool { return f.admins[id] }
func (f *fakeFacade) IsSupportButton(text string) bool { return text == "Support" }

func (f *fakeFacade) HandleStart(ctx context.Context, s usecase.Sender) (application.Reply, error) {
	f.record("start")
	return application.Reply{Text: "WELCOME", ReplyKeyboard: [][]string{{"Support"}}}, nil
}

func (f *fakeFacade) HandleSupportMenu(ctx context.Context, s usecase.Sender) (application.Reply, error) {
	f.record("menu")
	return application.Reply{Text: "PICK"}, nil
}

func (f *fakeFacade) HandleCategory(ctx context.Context, s usecase.Sender, data string) (application.Reply, error) {
	f.record("category:" + data)
	if data == "support:billing" {
		return application.Reply{}, errors.New("unknown category")
	}
	return application.Reply{Text: "PROMPT"}, nil
}

func (f *fakeFacade) HandleUserMessage(ctx context.Context, msg usecase.InboundMessage) (usecase.RouteOutcome, error) {
	f.mu.Lock()
	f.userMessages = append(f.userMessages, msg)
	fn := f.HandleUserMessageFunc
	f.mu.Unlock()
	f.record("message")
	if fn != nil {
		return fn(ctx, msg)
	}
	return usecase.OutcomeForwarded, nil
}

func (f *fakeFacade) HandleStaffReply(ctx context.Context, reply usecase.StaffReply) (usecase.RouteOutcome, error) {
	f.mu.Lock()
	f.staffReplies = append(f.staffReplies, reply)
	f.mu.Unlock()
	f.record("staff_reply")
	return usecase.OutcomeReplied, nil
}

func (f *fakeFacade) HandleBlock(ctx context.Context, adminID int64, args string) (string, error) {
	f.record("block:" + args)
	return "blocked " + args, nil
}

func (f *fakeFacade) HandleUnblock(ctx context.Context, adminID int64, args string) (string, error) {
	f.record("unblock:" + args)
	return "unblocked " + args, nil
}

func (f *fakeFacade) HandleListBlocked(ctx context.Context, adminID int64) (string, error) {
	f.record("blocked")
	return "LIST", nil
}

func (f *fakeFacade) HandleBroadcast(ctx context.Context, adminID int64, args string) (string, error) {
	f.record("broadcast:" + args)
	return "STARTED", nil
}

func (f *fakeFacade) HandleHelp(ctx context.Context, adminID int64) string {
	f.record("help")
	return "HELP"
}

type keyTranslator struct{}

func (keyTranslator) T(key string, _ ...interface{}) string { return key }

func newTestAdapter(api *fakeAPI, workers int) *RealTelegramBotAdapter {
	logger := zerolog.New(io.Discard)
	return newAdapter(api, &config.BotConfig{Workers: workers, PollTimeout: 1}, keyTranslator{}, &logger)
}

func privateChat(id int64) *tgbotapi.Chat { return &tgbotapi.Chat{ID: id, Type: "private"} }

func textMessage(from int64, text string) *tgbotapi.Message {
	return &tgbotapi.Message{
		MessageID: 10,
		From:      &tgbotapi.User{ID: from, FirstName: "Alice", UserName: "alice"},
		Chat:      privateChat(from),
		Text:      text,
	}
}

func commandMessage(from int64, command, args string) *tgbotapi.Message {
	m := textMessage(from, "/"+command)
	if args != "" {
		m.Text += " " + args
	}
	m.Entities = []tgbotapi.MessageEntity{{Type: "bot_command", Offset: 0, Length: len(command) + 1}}
	return m
}
