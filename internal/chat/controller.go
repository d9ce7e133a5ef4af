package chat

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"AlgoChat/internal/backend"
	"AlgoChat/internal/problem"
	"AlgoChat/internal/session"
)

// Transport delivers one request to the assistant backend
type Transport interface {
	SendChat(ctx context.Context, req backend.ChatRequest) (backend.ChatResponse, error)
}

// Recorder journals conversations and their turns as they are appended
type Recorder interface {
	RecordConversation(ctx context.Context, conv *session.Conversation) error
	RecordTurn(ctx context.Context, conversationID string, turn session.Turn) error
}

type Option func(*Controller)

func WithLogger(l *slog.Logger) Option {
	return func(c *Controller) { c.logger = l }
}

func WithTracer(t trace.Tracer) Option {
	return func(c *Controller) { c.tracer = t }
}

func WithMeter(m metric.Meter) Option {
	return func(c *Controller) { c.meter = m }
}

// WithRecorder journals every appended turn. Journal failures are logged, never fatal.
func WithRecorder(r Recorder) Option {
	return func(c *Controller) { c.recorder = r }
}

// WithProblem sets the initially active problem
func WithProblem(p *problem.Problem) Option {
	return func(c *Controller) { c.problem = p }
}

// WithMinLength sets the minimum trimmed input length. Empty input is always rejected.
func WithMinLength(n int) Option {
	return func(c *Controller) { c.minLength = n }
}

// WithRequestTimeout bounds each transport call. Zero waits indefinitely.
func WithRequestTimeout(d time.Duration) Option {
	return func(c *Controller) { c.timeout = d }
}

// Controller drives the send protocol for one conversation.
// It is the only writer of the conversation.
type Controller struct {
	conv      *session.Conversation
	transport Transport
	logger    *slog.Logger
	tracer    trace.Tracer
	meter     metric.Meter
	recorder  Recorder
	minLength int
	timeout   time.Duration

	sends    metric.Int64Counter
	duration metric.Float64Histogram

	mu      sync.Mutex
	state   SendState
	problem *problem.Problem
	lastErr string
}

// NewController creates an idle controller for conv
func NewController(conv *session.Conversation, transport Transport, opts ...Option) *Controller {
	c := &Controller{
		conv:      conv,
		transport: transport,
		logger:    slog.Default(),
		tracer:    otel.Tracer("algochat/chat"),
		meter:     otel.Meter("algochat/chat"),
		minLength: DefaultMinLength,
	}
	for _, opt := range opts {
		opt(c)
	}

	var err error
	c.sends, err = c.meter.Int64Counter("chat.sends",
		metric.WithDescription("Resolved chat sends by outcome"))
	if err != nil {
		c.logger.Warn("failed to create counter", "name", "chat.sends", "error", err)
	}
	c.duration, err = c.meter.Float64Histogram("chat.send.duration",
		metric.WithDescription("Chat send round-trip in milliseconds"))
	if err != nil {
		c.logger.Warn("failed to create histogram", "name", "chat.send.duration", "error", err)
	}

	if c.recorder != nil {
		ctx := context.Background()
		if err := c.recorder.RecordConversation(ctx, conv); err != nil {
			c.logger.Error("failed to record conversation", "conversation_id", conv.ID, "error", err)
		}
		for _, t := range conv.All() {
			c.record(ctx, t)
		}
	}
	return c
}

// Submit validates text, appends it as a user turn and dispatches the
// request. The user turn is visible in Turns before Submit returns and is
// kept even if the request fails. Submit returns ErrValidation or ErrBusy
// without touching the conversation.
func (c *Controller) Submit(ctx context.Context, text string) (*Send, error) {
	text = strings.TrimSpace(text)
	minLength := max(c.minLength, 1)
	if n := utf8.RuneCountInString(text); n < minLength {
		c.logger.Debug("rejected message", "reason", "validation", "length", n)
		return nil, fmt.Errorf("%w: need at least %d characters, got %d", ErrValidation, minLength, n)
	}

	c.mu.Lock()
	if c.state == Pending {
		c.mu.Unlock()
		c.logger.Debug("rejected message", "reason", "pending", "conversation_id", c.conv.ID)
		return nil, ErrBusy
	}
	c.state = Pending
	user := c.conv.Append(session.RoleUser, text)
	req := backend.NewChatRequest(c.conv.All(), problem.BuildSnapshot(c.problem))
	c.mu.Unlock()

	c.logger.Info("message accepted", "conversation_id", c.conv.ID, "sequence", user.Sequence)

	s := &Send{user: user, done: make(chan struct{})}
	go c.dispatch(ctx, req, s)
	return s, nil
}

// Send submits text and waits for the answering turn
func (c *Controller) Send(ctx context.Context, text string) (Result, error) {
	s, err := c.Submit(ctx, text)
	if err != nil {
		return Result{}, err
	}
	return s.Wait(ctx)
}

func (c *Controller) dispatch(ctx context.Context, req backend.ChatRequest, s *Send) {
	ctx, span := c.tracer.Start(ctx, "chat.send", trace.WithAttributes(
		attribute.String("conversation.id", c.conv.ID),
		attribute.Int("turn.sequence", s.user.Sequence),
		attribute.Int("request.messages", len(req.Messages)),
	))
	defer span.End()

	c.record(ctx, s.user)

	callCtx, cancel := ctx, context.CancelFunc(func() {})
	if c.timeout > 0 {
		callCtx, cancel = context.WithTimeout(ctx, c.timeout)
	}
	start := time.Now()
	resp, err := c.transport.SendChat(callCtx, req)
	elapsed := time.Since(start)
	cancel()

	result := Result{UserTurn: s.user, Err: err}
	var text string
	switch {
	case err != nil:
		result.Outcome = OutcomeFailed
		text = ErrorReplyText
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	case strings.TrimSpace(resp.Message) == "":
		result.Outcome = OutcomeEmpty
		text = NoResponseText
	default:
		result.Outcome = OutcomeAnswered
		text = resp.Message
	}

	// State stays Pending until the reply is journaled, so no other send can interleave.
	result.Reply = c.conv.Append(session.RoleAssistant, text)
	c.record(ctx, result.Reply)

	c.mu.Lock()
	if err != nil {
		c.lastErr = describe(err)
	} else {
		c.lastErr = ""
	}
	c.state = Idle
	c.mu.Unlock()

	span.SetAttributes(attribute.String("chat.outcome", string(result.Outcome)))
	if c.sends != nil {
		c.sends.Add(ctx, 1, metric.WithAttributes(attribute.String("outcome", string(result.Outcome))))
	}
	if c.duration != nil {
		c.duration.Record(ctx, float64(elapsed.Milliseconds()))
	}

	if err != nil {
		c.logger.Error("chat send failed", "conversation_id", c.conv.ID, "sequence", s.user.Sequence, "error", err)
	} else {
		c.logger.Info("chat send resolved", "conversation_id", c.conv.ID, "sequence", result.Reply.Sequence,
			"outcome", result.Outcome, "duration_ms", elapsed.Milliseconds())
	}

	s.result = result
	close(s.done)
}

func (c *Controller) record(ctx context.Context, t session.Turn) {
	if c.recorder == nil {
		return
	}
	if err := c.recorder.RecordTurn(context.WithoutCancel(ctx), c.conv.ID, t); err != nil {
		c.logger.Warn("failed to record turn", "conversation_id", c.conv.ID, "sequence", t.Sequence, "error", err)
	}
}

func describe(err error) string {
	if msg := err.Error(); msg != "" {
		return msg
	}
	return ErrorReplyText
}

// SetProblem replaces the active problem descriptor. Later sends snapshot it.
func (c *Controller) SetProblem(p *problem.Problem) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.problem = p
}

func (c *Controller) State() SendState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// LastError is the description of the most recent failure, cleared by the next successful send
func (c *Controller) LastError() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lastErr
}

func (c *Controller) Turns() []session.Turn { return c.conv.All() }

func (c *Controller) Conversation() *session.Conversation { return c.conv }

func (c *Controller) View() View {
	c.mu.Lock()
	defer c.mu.Unlock()
	return View{Turns: c.conv.All(), State: c.state, LastError: c.lastErr}
}

func (c *Controller) currentProblem() *problem.Problem {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.problem
}
