package chat

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"

	"AlgoChat/internal/backend"
	"AlgoChat/internal/session"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type reply struct {
	resp backend.ChatResponse
	err  error
}

// scriptedTransport answers immediately with the next scripted reply,
// repeating the last one when the script runs out.
type scriptedTransport struct {
	mu      sync.Mutex
	replies []reply
	reqs    []backend.ChatRequest
}

func answering(msgs ...string) *scriptedTransport {
	t := &scriptedTransport{}
	for _, m := range msgs {
		t.replies = append(t.replies, reply{resp: backend.ChatResponse{Message: m}})
	}
	return t
}

func failing(err error) *scriptedTransport {
	return &scriptedTransport{replies: []reply{{err: err}}}
}

func (t *scriptedTransport) SendChat(ctx context.Context, req backend.ChatRequest) (backend.ChatResponse, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.reqs = append(t.reqs, req)
	r := reply{}
	if n := len(t.reqs); n <= len(t.replies) {
		r = t.replies[n-1]
	} else if len(t.replies) > 0 {
		r = t.replies[len(t.replies)-1]
	}
	return r.resp, r.err
}

func (t *scriptedTransport) requests() []backend.ChatRequest {
	t.mu.Lock()
	defer t.mu.Unlock()
	return append([]backend.ChatRequest(nil), t.reqs...)
}

// blockingTransport holds every call until a reply is pushed on release
type blockingTransport struct {
	started chan backend.ChatRequest
	release chan reply
}

func newBlockingTransport() *blockingTransport {
	return &blockingTransport{
		started: make(chan backend.ChatRequest, 16),
		release: make(chan reply),
	}
}

func (t *blockingTransport) SendChat(ctx context.Context, req backend.ChatRequest) (backend.ChatResponse, error) {
	t.started <- req
	select {
	case r := <-t.release:
		return r.resp, r.err
	case <-ctx.Done():
		return backend.ChatResponse{}, ctx.Err()
	}
}

type memRecorder struct {
	mu            sync.Mutex
	conversations []string
	turns         []session.Turn
	err           error
}

func (r *memRecorder) RecordConversation(ctx context.Context, conv *session.Conversation) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.conversations = append(r.conversations, conv.ID)
	return r.err
}

func (r *memRecorder) RecordTurn(ctx context.Context, conversationID string, turn session.Turn) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.turns = append(r.turns, turn)
	return r.err
}

func (r *memRecorder) recorded() []session.Turn {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]session.Turn(nil), r.turns...)
}

var errNetwork = errors.New("Network Error")
