package backend

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"AlgoChat/internal/problem"
	"AlgoChat/internal/session"
)

func TestNewChatRequest_MapsRolesAndContext(t *testing.T) {
	conv := session.New("p1")
	conv.Append(session.RoleUser, "What is a stack?")
	conv.Append(session.RoleAssistant, "A LIFO structure.")
	conv.Append(session.RoleUser, "And a queue?")

	snap := problem.BuildSnapshot(&problem.Problem{
		Title:            "Min Stack",
		Description:      "Design a stack.",
		VisibleTestCases: []problem.TestCase{{Input: "push 1", Output: "null"}},
	})
	req := NewChatRequest(conv.All(), snap)

	require.Len(t, req.Messages, 3)
	assert.Equal(t, RoleUser, req.Messages[0].Role)
	assert.Equal(t, RoleModel, req.Messages[1].Role)
	assert.Equal(t, "And a queue?", req.Messages[2].Text())
	assert.Equal(t, "Min Stack", req.Title)
	assert.Len(t, req.TestCases, 1)
	assert.Equal(t, snap, req.Snapshot())
}

func TestChatRequest_WireShape(t *testing.T) {
	req := NewChatRequest([]session.Turn{{Role: session.RoleUser, Text: "hi"}}, problem.Snapshot{Title: "T"})
	data, err := json.Marshal(req)
	require.NoError(t, err)
	assert.JSONEq(t, `{"messages":[{"role":"user","parts":[{"text":"hi"}]}],"title":"T"}`, string(data))
}

func TestMessage_TextJoinsParts(t *testing.T) {
	m := Message{Role: RoleUser, Parts: []Part{{Text: "a"}, {Text: "b"}}}
	assert.Equal(t, "ab", m.Text())
	assert.Equal(t, "", Message{}.Text())
}
