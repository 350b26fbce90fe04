package bot

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/openai/openai-go"
	"github.com/roybase/remindmebot/internal/genai"
	"github.com/roybase/remindmebot/internal/messaging"
	"github.com/roybase/remindmebot/internal/scheduler"
	"github.com/roybase/remindmebot/internal/store"
)

// sentMessage records one outbound message, with or without a keyboard.
type sentMessage struct {
	ChatID int64
	Body   string
	Rows   [][]messaging.Button
}

// editedMessage records one message edit.
type editedMessage struct {
	ChatID    int64
	MessageID int
	Body      string
	Rows      [][]messaging.Button
}

// fakeMessenger implements messaging.Service and records all outbound
// traffic. Safe for use from timer goroutines.
type fakeMessenger struct {
	mu       sync.Mutex
	sent     []sentMessage
	edited   []editedMessage
	answered []string
	sendErr  error
}

func (f *fakeMessenger) SendMessage(ctx context.Context, chatID int64, body string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, sentMessage{ChatID: chatID, Body: body})
	return f.sendErr
}

func (f *fakeMessenger) SendMessageWithButtons(ctx context.Context, chatID int64, body string, rows [][]messaging.Button) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, sentMessage{ChatID: chatID, Body: body, Rows: rows})
	return f.sendErr
}

func (f *fakeMessenger) EditMessage(ctx context.Context, chatID int64, messageID int, body string, rows [][]messaging.Button) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.edited = append(f.edited, editedMessage{ChatID: chatID, MessageID: messageID, Body: body, Rows: rows})
	return nil
}

func (f *fakeMessenger) AnswerCallback(ctx context.Context, callbackID, toast string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.answered = append(f.answered, callbackID)
	return nil
}

func (f *fakeMessenger) Start(ctx context.Context) error { return nil }
func (f *fakeMessenger) Stop()                           {}
func (f *fakeMessenger) Events() <-chan messaging.Event  { return nil }

func (f *fakeMessenger) sentMessages() []sentMessage {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]sentMessage, len(f.sent))
	copy(out, f.sent)
	return out
}

func (f *fakeMessenger) editedMessages() []editedMessage {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]editedMessage, len(f.edited))
	copy(out, f.edited)
	return out
}

// scriptedClient implements genai.ClientInterface with canned responses,
// recording the messages of each call for inspection.
type scriptedClient struct {
	mu        sync.Mutex
	responses []*genai.ToolCallResponse
	err       error
	calls     [][]openai.ChatCompletionMessageParamUnion
}

func (s *scriptedClient) GenerateWithTools(ctx context.Context, messages []openai.ChatCompletionMessageParamUnion, tools []openai.ChatCompletionToolParam) (*genai.ToolCallResponse, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	recorded := make([]openai.ChatCompletionMessageParamUnion, len(messages))
	copy(recorded, messages)
	s.calls = append(s.calls, recorded)

	if s.err != nil {
		return nil, s.err
	}
	if len(s.responses) == 0 {
		return &genai.ToolCallResponse{Content: "ok"}, nil
	}
	resp := s.responses[0]
	s.responses = s.responses[1:]
	return resp, nil
}

func (s *scriptedClient) lastCall(t *testing.T) []openai.ChatCompletionMessageParamUnion {
	t.Helper()
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.calls) == 0 {
		t.Fatal("no completion calls recorded")
	}
	return s.calls[len(s.calls)-1]
}

// testBot bundles the wired-up collaborators for orchestrator tests.
type testBot struct {
	store      store.Store
	sched      *scheduler.Scheduler
	msg        *fakeMessenger
	client     *scriptedClient
	dispatcher *Dispatcher
	pending    *pendingStore
	convs      *conversationStore
	orch       *Orchestrator
	router     *CallbackRouter
}

func newTestBot(t *testing.T) *testBot {
	t.Helper()
	st := store.NewInMemoryStore()
	sched := scheduler.New()
	t.Cleanup(sched.Stop)
	msg := &fakeMessenger{}
	client := &scriptedClient{}
	dispatcher := NewDispatcher(st, sched, msg)
	pending := newPendingStore()
	convs := newConversationStore()
	return &testBot{
		store:      st,
		sched:      sched,
		msg:        msg,
		client:     client,
		dispatcher: dispatcher,
		pending:    pending,
		convs:      convs,
		orch:       NewOrchestrator(client, msg, dispatcher, convs, pending),
		router:     NewCallbackRouter(dispatcher, msg, pending),
	}
}

// waitFor polls cond until it holds or the deadline passes.
func waitFor(t *testing.T, d time.Duration, cond func() bool) bool {
	t.Helper()
	deadline := time.Now().Add(d)
	for time.Now().Before(deadline) {
		if cond() {
			return true
		}
		time.Sleep(5 * time.Millisecond)
	}
	return cond()
}
