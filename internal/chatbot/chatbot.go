package chatbot

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"AlgoChat/internal/backend"
	"AlgoChat/internal/chat"
	"AlgoChat/internal/config"
	"AlgoChat/internal/problem"
	"AlgoChat/internal/session"
	"AlgoChat/internal/store"
	"AlgoChat/internal/telemetry"
)

// ChatBot is the terminal front-end of the problem assistant
type ChatBot struct {
	config  config.Config
	panel   *chat.Panel
	journal *store.Journal
	logger  *slog.Logger
	in      io.Reader
	out     io.Writer
	cleanup []func()
}

// NewChatBot wires logging, telemetry, the journal and the configured transport
func NewChatBot(ctx context.Context, cfg config.Config) (*ChatBot, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	logger, err := telemetry.InitLogger(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	var cleanup []func()
	opts := []chat.Option{
		chat.WithMinLength(cfg.MinInputLength),
		chat.WithRequestTimeout(cfg.RequestTimeout),
	}

	if cfg.TelemetryEnabled {
		tracer, meter, shutdown, err := telemetry.InitTelemetry(ctx, cfg)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize telemetry: %w", err)
		}
		cleanup = append(cleanup, shutdown)
		opts = append(opts, chat.WithTracer(tracer), chat.WithMeter(meter))
	}

	var journal *store.Journal
	if cfg.JournalPath != "" {
		journal, err = store.Open(cfg.JournalPath)
		if err != nil {
			logger.Warn("failed to open journal, continuing without it", "path", cfg.JournalPath, "error", err)
		} else {
			opts = append(opts, chat.WithRecorder(journal))
		}
	}

	release := func() {
		if journal != nil {
			journal.Close()
		}
		for _, fn := range cleanup {
			fn()
		}
	}

	transport, err := backend.New(ctx, cfg, logger)
	if err != nil {
		release()
		return nil, fmt.Errorf("failed to initialize backend: %w", err)
	}

	seed, err := session.LoadSeed(cfg.SeedPath)
	if err != nil {
		release()
		return nil, err
	}

	if cfg.Debug {
		logger.Info("Debug mode enabled")
	}

	cb := newChatBot(cfg, transport, seed, logger, os.Stdin, os.Stdout, opts...)
	cb.journal = journal
	cb.cleanup = cleanup
	return cb, nil
}

func newChatBot(cfg config.Config, transport chat.Transport, seed []session.Seed, logger *slog.Logger, in io.Reader, out io.Writer, opts ...chat.Option) *ChatBot {
	return &ChatBot{
		config: cfg,
		panel:  chat.NewPanel(transport, seed, logger, opts...),
		logger: logger,
		in:     in,
		out:    out,
	}
}

// open mounts the problem at path, or an empty context when path is empty
func (cb *ChatBot) open(path string) error {
	var p *problem.Problem
	if path != "" {
		loaded, err := problem.LoadFile(path)
		if err != nil {
			return err
		}
		p = loaded
	}
	c, err := cb.panel.Mount(p)
	if err != nil {
		return err
	}
	if p != nil && p.Title != "" {
		fmt.Fprintf(cb.out, "Problem: %s\n", p.Title)
	}
	cb.logger.Info("problem mounted", "path", path, "conversation_id", c.Conversation().ID)
	return nil
}

// sendMessage sends input and prints the answering turn
func (cb *ChatBot) sendMessage(ctx context.Context, input string) error {
	c := cb.panel.Controller()
	if c == nil {
		return fmt.Errorf("no problem open")
	}

	res, err := c.Send(ctx, input)
	if errors.Is(err, chat.ErrValidation) {
		fmt.Fprintf(cb.out, "Message must be at least %d characters.\n", cb.config.MinInputLength)
		return nil
	}
	if err != nil {
		return err
	}

	fmt.Fprintf(cb.out, "Bot: %s\n", res.Reply.Text)
	if msg := c.LastError(); msg != "" {
		fmt.Fprintf(cb.out, "Error: %s\n", msg)
	}
	fmt.Fprintln(cb.out)
	return nil
}

// handleCommand handles special commands
func (cb *ChatBot) handleCommand(ctx context.Context, cmd string) (bool, error) {
	parts := strings.Fields(cmd)
	if len(parts) == 0 {
		return false, nil
	}

	switch parts[0] {
	case "/quit", "/exit":
		return true, nil

	case "/new-session":
		c, err := cb.panel.Reset()
		if err != nil {
			return false, err
		}
		fmt.Fprintln(cb.out, "Started new session:", c.Conversation().ID)
		return false, nil

	case "/open":
		if len(parts) < 2 {
			return false, fmt.Errorf("usage: /open <problem.json>")
		}
		return false, cb.open(parts[1])

	case "/history":
		c := cb.panel.Controller()
		if c == nil {
			return false, fmt.Errorf("no problem open")
		}
		for _, t := range c.Turns() {
			who := "You"
			if t.Role == session.RoleAssistant {
				who = "Bot"
			}
			fmt.Fprintf(cb.out, "%3d %s: %s\n", t.Sequence, who, t.Text)
		}
		return false, nil

	case "/status":
		c := cb.panel.Controller()
		if c == nil {
			fmt.Fprintln(cb.out, "No problem open.")
			return false, nil
		}
		view := c.View()
		fmt.Fprintf(cb.out, "Session: %s\nBackend: %s\nState: %s\nTurns: %d\n",
			c.Conversation().ID, cb.config.Backend, view.State, len(view.Turns))
		if view.LastError != "" {
			fmt.Fprintf(cb.out, "Last error: %s\n", view.LastError)
		}
		return false, nil

	case "/journal":
		if cb.journal == nil {
			fmt.Fprintln(cb.out, "Journal is disabled.")
			return false, nil
		}
		c := cb.panel.Controller()
		if c == nil {
			return false, fmt.Errorf("no problem open")
		}
		ids, err := cb.journal.Conversations(ctx, c.Conversation().ProblemID)
		if err != nil {
			return false, err
		}
		fmt.Fprintf(cb.out, "%d journaled sessions for this problem\n", len(ids))
		for _, id := range ids {
			turns, err := cb.journal.Turns(ctx, id)
			if err != nil {
				return false, err
			}
			fmt.Fprintf(cb.out, "  %s (%d turns)\n", id, len(turns))
		}
		return false, nil

	case "/help":
		fmt.Fprintln(cb.out, "Available commands:")
		fmt.Fprintln(cb.out, "  /quit, /exit        - Exit the chatbot")
		fmt.Fprintln(cb.out, "  /new-session        - Start a new chat session for the open problem")
		fmt.Fprintln(cb.out, "  /open <file>        - Open a problem from a JSON file")
		fmt.Fprintln(cb.out, "  /history            - Show the conversation")
		fmt.Fprintln(cb.out, "  /status             - Show session state")
		fmt.Fprintln(cb.out, "  /journal            - List journaled sessions for the open problem")
		fmt.Fprintln(cb.out, "  /help               - Show this help message")
		return false, nil

	default:
		return false, fmt.Errorf("unknown command: %s", parts[0])
	}
}

// Run starts the chat loop
func (cb *ChatBot) Run(ctx context.Context) error {
	defer cb.close()

	if err := cb.open(cb.config.ProblemPath); err != nil {
		return fmt.Errorf("failed to open problem: %w", err)
	}

	fmt.Fprintln(cb.out, "=== AlgoChat ===")
	fmt.Fprintf(cb.out, "Session: %s\n", cb.panel.Controller().Conversation().ID)
	fmt.Fprintf(cb.out, "Backend: %s\n", cb.config.Backend)
	fmt.Fprintln(cb.out, "Type /help for commands, /quit to exit")
	fmt.Fprintln(cb.out)

	stop := make(chan struct{})
	defer close(stop)
	lines, scanErr := cb.readLines(stop)
	var readErr error
	for ctx.Err() == nil {
		fmt.Fprint(cb.out, "You: ")
		var line string
		var ok bool
		select {
		case line, ok = <-lines:
		case <-ctx.Done():
		}
		if !ok {
			if ctx.Err() == nil {
				readErr = <-scanErr
			}
			break
		}

		input := strings.TrimSpace(line)
		if input == "" {
			continue
		}

		if strings.HasPrefix(input, "/") {
			shouldQuit, err := cb.handleCommand(ctx, input)
			if err != nil {
				fmt.Fprintf(cb.out, "Error: %v\n", err)
				cb.logger.Error("command error", "error", err)
			}
			if shouldQuit {
				break
			}
			continue
		}

		if err := cb.sendMessage(ctx, input); err != nil {
			fmt.Fprintf(cb.out, "Error: %v\n", err)
			cb.logger.Error("failed to send message", "error", err)
		}
	}

	if ctx.Err() != nil {
		fmt.Fprintln(cb.out)
		cb.logger.Info("interrupted, leaving chat")
	}
	cb.panel.Unmount()
	fmt.Fprintln(cb.out, "Goodbye!")
	return readErr
}

// readLines scans cb.in on its own goroutine so an interrupt can end the loop
// while a read is blocked. The scan error is sent before lines is closed.
func (cb *ChatBot) readLines(stop <-chan struct{}) (<-chan string, <-chan error) {
	lines := make(chan string)
	scanErr := make(chan error, 1)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(cb.in)
		for scanner.Scan() {
			select {
			case lines <- scanner.Text():
			case <-stop:
				return
			}
		}
		scanErr <- scanner.Err()
	}()
	return lines, scanErr
}

func (cb *ChatBot) close() {
	if cb.journal != nil {
		if err := cb.journal.Close(); err != nil {
			cb.logger.Error("failed to close journal", "error", err)
		}
	}
	for _, fn := range cb.cleanup {
		fn()
	}
}
