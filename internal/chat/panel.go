package chat

import (
	"log/slog"
	"sync"

	"AlgoChat/internal/problem"
	"AlgoChat/internal/session"
)

// Panel owns the conversation of the chat panel attached to the open problem.
// Opening a different problem discards the conversation and starts a new one.
type Panel struct {
	transport Transport
	seed      []session.Seed
	opts      []Option
	logger    *slog.Logger

	mu        sync.Mutex
	ctrl      *Controller
	problemID string
}

// NewPanel creates an unmounted panel. opts are applied to every controller it creates.
func NewPanel(transport Transport, seed []session.Seed, logger *slog.Logger, opts ...Option) *Panel {
	if logger == nil {
		logger = slog.Default()
	}
	return &Panel{
		transport: transport,
		seed:      seed,
		opts:      append([]Option{WithLogger(logger)}, opts...),
		logger:    logger,
	}
}

// Mount attaches the panel to p. Mounting the problem that is already open
// only refreshes its descriptor; any other problem gets a fresh conversation.
// A problem without an ID never matches the open one.
// Switching problems while a send is pending returns ErrBusy.
func (p *Panel) Mount(pr *problem.Problem) (*Controller, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	id := problemID(pr)
	if p.ctrl != nil && id != "" && id == p.problemID {
		p.ctrl.SetProblem(pr)
		return p.ctrl, nil
	}
	if p.ctrl != nil && p.ctrl.State() == Pending {
		return nil, ErrBusy
	}
	p.start(pr)
	return p.ctrl, nil
}

// Reset starts a new conversation for the open problem
func (p *Panel) Reset() (*Controller, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.ctrl == nil {
		p.start(nil)
		return p.ctrl, nil
	}
	if p.ctrl.State() == Pending {
		return nil, ErrBusy
	}
	p.start(p.ctrl.currentProblem())
	return p.ctrl, nil
}

// Unmount discards the conversation. A send still in flight resolves into
// the discarded conversation.
func (p *Panel) Unmount() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.ctrl != nil {
		p.logger.Info("conversation discarded", "conversation_id", p.ctrl.Conversation().ID)
	}
	p.ctrl = nil
	p.problemID = ""
}

// Controller returns the active controller, or nil when unmounted
func (p *Panel) Controller() *Controller {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.ctrl
}

func (p *Panel) start(pr *problem.Problem) {
	id := problemID(pr)
	conv := session.New(id, p.seed...)
	opts := append(append([]Option{}, p.opts...), WithProblem(pr))
	p.ctrl = NewController(conv, p.transport, opts...)
	p.problemID = id
	p.logger.Info("created new conversation", "conversation_id", conv.ID, "problem_id", id, "seeded_turns", len(p.seed))
}

func problemID(pr *problem.Problem) string {
	if pr == nil {
		return ""
	}
	return pr.ID
}
