package chat

import (
	"errors"

	"AlgoChat/internal/session"
)

// SendState gates new sends: at most one request is in flight per conversation
type SendState int

const (
	Idle SendState = iota
	Pending
)

func (s SendState) String() string {
	switch s {
	case Idle:
		return "idle"
	case Pending:
		return "pending"
	default:
		return "unknown"
	}
}

// Literal assistant texts used when the backend gives no usable answer
const (
	NoResponseText = "No response from server"
	ErrorReplyText = "Error from AI Chatbot"
)

const DefaultMinLength = 2

var (
	// ErrValidation rejects input that is empty or too short. Nothing is appended.
	ErrValidation = errors.New("message too short")
	// ErrBusy rejects a submit while another send is pending. Nothing is appended.
	ErrBusy = errors.New("a message is already being sent")
)

// Outcome describes how a send was resolved
type Outcome string

const (
	OutcomeAnswered Outcome = "answered"
	OutcomeEmpty    Outcome = "empty"
	OutcomeFailed   Outcome = "failed"
)

// Result is the resolution of one accepted send
type Result struct {
	UserTurn session.Turn
	Reply    session.Turn
	Outcome  Outcome
	// Err is the transport failure when Outcome is OutcomeFailed
	Err error
}

// View is everything the presentation layer needs to render the panel
type View struct {
	Turns     []session.Turn
	State     SendState
	LastError string
}
