package backend

import (
	"context"

	"AlgoChat/internal/problem"
	"AlgoChat/internal/session"
)

// Wire role names used by the chat endpoint
const (
	RoleUser  = "user"
	RoleModel = "model"
)

// Part is one text fragment of a message
type Part struct {
	Text string `json:"text"`
}

// Message represents a message in the conversation
type Message struct {
	Role  string `json:"role"`
	Parts []Part `json:"parts"`
}

// ChatRequest represents the request body for the chat endpoint
type ChatRequest struct {
	Messages    []Message           `json:"messages"`
	Title       string              `json:"title,omitempty"`
	Description string              `json:"description,omitempty"`
	TestCases   []problem.TestCase  `json:"testCases,omitempty"`
	StartCode   []problem.StartCode `json:"startCode,omitempty"`
}

// ChatResponse represents the response from the chat endpoint.
// An empty Message means the backend answered without content.
type ChatResponse struct {
	Message string `json:"message"`
}

// Transport sends one chat request and waits for the whole reply
type Transport interface {
	SendChat(ctx context.Context, req ChatRequest) (ChatResponse, error)
}

// NewChatRequest builds the outbound payload from the full history and a problem snapshot
func NewChatRequest(turns []session.Turn, snap problem.Snapshot) ChatRequest {
	msgs := make([]Message, len(turns))
	for i, t := range turns {
		msgs[i] = Message{
			Role:  WireRole(t.Role),
			Parts: []Part{{Text: t.Text}},
		}
	}
	return ChatRequest{
		Messages:    msgs,
		Title:       snap.Title,
		Description: snap.Description,
		TestCases:   snap.VisibleTestCases,
		StartCode:   snap.StartCode,
	}
}

// WireRole maps a session role to the name the chat endpoint expects
func WireRole(r session.Role) string {
	if r == session.RoleAssistant {
		return RoleModel
	}
	return RoleUser
}

// Snapshot returns the problem context carried by the request
func (r ChatRequest) Snapshot() problem.Snapshot {
	return problem.Snapshot{
		Title:            r.Title,
		Description:      r.Description,
		VisibleTestCases: r.TestCases,
		StartCode:        r.StartCode,
	}
}

// Text joins the parts of a message
func (m Message) Text() string {
	if len(m.Parts) == 1 {
		return m.Parts[0].Text
	}
	var out string
	for _, p := range m.Parts {
		out += p.Text
	}
	return out
}
