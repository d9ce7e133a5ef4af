package chatbot

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"AlgoChat/internal/backend"
	"AlgoChat/internal/chat"
	"AlgoChat/internal/config"
	"AlgoChat/internal/store"
)

type fakeTransport struct {
	replies []string
	err     error
	reqs    []backend.ChatRequest
}

func (f *fakeTransport) SendChat(ctx context.Context, req backend.ChatRequest) (backend.ChatResponse, error) {
	f.reqs = append(f.reqs, req)
	if f.err != nil {
		return backend.ChatResponse{}, f.err
	}
	if len(f.replies) == 0 {
		return backend.ChatResponse{}, nil
	}
	msg := f.replies[0]
	f.replies = f.replies[1:]
	return backend.ChatResponse{Message: msg}, nil
}

// cancellingTransport cancels the chat context once its request is in flight,
// the way an interrupt does.
type cancellingTransport struct {
	cancel context.CancelFunc
	reqs   []backend.ChatRequest
}

func (c *cancellingTransport) SendChat(ctx context.Context, req backend.ChatRequest) (backend.ChatResponse, error) {
	c.reqs = append(c.reqs, req)
	c.cancel()
	return backend.ChatResponse{}, ctx.Err()
}

func writeProblem(t *testing.T, id, title string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), id+".json")
	body := `{"_id":"` + id + `","title":"` + title + `","description":"d","visibleTestCases":[{"input":"1","output":"1"}]}`
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func runBot(t *testing.T, cfg config.Config, tr chat.Transport, input string, opts ...chat.Option) (*ChatBot, string) {
	t.Helper()
	var out bytes.Buffer
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	cb := newChatBot(cfg, tr, nil, logger, strings.NewReader(input), &out, opts...)
	require.NoError(t, cb.Run(context.Background()))
	return cb, out.String()
}

func TestRun_AnswersAndQuits(t *testing.T) {
	tr := &fakeTransport{replies: []string{"A LIFO structure."}}
	cfg := config.Config{Backend: config.BackendHTTP, MinInputLength: 2, ProblemPath: writeProblem(t, "p1", "Min Stack")}

	_, out := runBot(t, cfg, tr, "What is a stack?\n/quit\nignored after quit\n")

	assert.Contains(t, out, "Problem: Min Stack")
	assert.Contains(t, out, "Bot: A LIFO structure.")
	assert.Contains(t, out, "Goodbye!")
	require.Len(t, tr.reqs, 1)
	assert.Equal(t, "Min Stack", tr.reqs[0].Title)
}

func TestRun_FailureShowsFallbackAndError(t *testing.T) {
	tr := &fakeTransport{err: errors.New("Network Error")}
	cfg := config.Config{Backend: config.BackendHTTP, MinInputLength: 2}

	_, out := runBot(t, cfg, tr, "Explain recursion\n/status\n")

	assert.Contains(t, out, "Bot: "+chat.ErrorReplyText)
	assert.Contains(t, out, "Error: Network Error")
	assert.Contains(t, out, "State: idle")
	assert.Contains(t, out, "Turns: 2")
	assert.Contains(t, out, "Last error: Network Error")
}

func TestRun_ShortInputIsRejected(t *testing.T) {
	tr := &fakeTransport{}
	cfg := config.Config{Backend: config.BackendHTTP, MinInputLength: 2}

	_, out := runBot(t, cfg, tr, "a\n/history\n")

	assert.Contains(t, out, "Message must be at least 2 characters.")
	assert.Empty(t, tr.reqs)
}

func TestRun_EmptyReplyPlaceholder(t *testing.T) {
	tr := &fakeTransport{}
	cfg := config.Config{Backend: config.BackendHTTP, MinInputLength: 2}

	_, out := runBot(t, cfg, tr, "hello\n/history\n")

	assert.Contains(t, out, "Bot: "+chat.NoResponseText)
	assert.Contains(t, out, "  0 You: hello")
	assert.Contains(t, out, "  1 Bot: "+chat.NoResponseText)
}

func TestRun_OpenAndNewSession(t *testing.T) {
	tr := &fakeTransport{replies: []string{"one", "two", "three"}}
	cfg := config.Config{Backend: config.BackendHTTP, MinInputLength: 2, ProblemPath: writeProblem(t, "p1", "First")}
	second := writeProblem(t, "p2", "Second")

	_, out := runBot(t, cfg, tr, strings.Join([]string{
		"question one",
		"/open " + second,
		"question two",
		"/new-session",
		"question three",
	}, "\n")+"\n")

	assert.Contains(t, out, "Problem: Second")
	assert.Contains(t, out, "Started new session:")
	require.Len(t, tr.reqs, 3)
	assert.Equal(t, "First", tr.reqs[0].Title)
	assert.Equal(t, "Second", tr.reqs[1].Title)
	assert.Len(t, tr.reqs[1].Messages, 1)
	assert.Equal(t, "Second", tr.reqs[2].Title)
	assert.Len(t, tr.reqs[2].Messages, 1)
}

func TestHandleCommand_Errors(t *testing.T) {
	tr := &fakeTransport{}
	cfg := config.Config{Backend: config.BackendHTTP, MinInputLength: 2}

	_, out := runBot(t, cfg, tr, "/open\n/bogus\n/open /does/not/exist.json\n/journal\n/help\n")

	assert.Contains(t, out, "usage: /open")
	assert.Contains(t, out, "unknown command: /bogus")
	assert.Contains(t, out, "failed to read problem file")
	assert.Contains(t, out, "Journal is disabled.")
	assert.Contains(t, out, "/new-session")
}

func TestRun_JournalCommand(t *testing.T) {
	journal, err := store.Open(filepath.Join(t.TempDir(), "journal.db"))
	require.NoError(t, err)

	tr := &fakeTransport{replies: []string{"answer"}}
	cfg := config.Config{Backend: config.BackendHTTP, MinInputLength: 2, ProblemPath: writeProblem(t, "p1", "First")}

	var out bytes.Buffer
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	cb := newChatBot(cfg, tr, nil, logger, strings.NewReader("question\n/journal\n"), &out, chat.WithRecorder(journal))
	cb.journal = journal
	require.NoError(t, cb.Run(context.Background()))

	assert.Contains(t, out.String(), "1 journaled sessions for this problem")
	assert.Contains(t, out.String(), "(2 turns)")
}

func TestRun_CancelledContextEndsLoop(t *testing.T) {
	tr := &fakeTransport{replies: []string{"never"}}
	cfg := config.Config{Backend: config.BackendHTTP, MinInputLength: 2}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var out bytes.Buffer
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	cb := newChatBot(cfg, tr, nil, logger, strings.NewReader("hello there\nsecond message\n"), &out)
	require.NoError(t, cb.Run(ctx))

	assert.Empty(t, tr.reqs)
	assert.NotContains(t, out.String(), chat.ErrorReplyText)
	assert.Contains(t, out.String(), "Goodbye!")
	assert.Nil(t, cb.panel.Controller())
}

func TestRun_InterruptDuringSendStopsLoop(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	tr := &cancellingTransport{cancel: cancel}
	cfg := config.Config{Backend: config.BackendHTTP, MinInputLength: 2}

	var out bytes.Buffer
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	cb := newChatBot(cfg, tr, nil, logger, strings.NewReader("first question\nsecond question\nthird question\n"), &out)
	require.NoError(t, cb.Run(ctx))

	require.Len(t, tr.reqs, 1)
	assert.Equal(t, "first question", tr.reqs[0].Messages[0].Text())
	assert.Contains(t, out.String(), "Goodbye!")
}

func TestNewChatBot_InvalidConfig(t *testing.T) {
	_, err := NewChatBot(context.Background(), config.Config{Backend: "ollama", MinInputLength: 2})
	assert.ErrorContains(t, err, "unknown backend")
}
