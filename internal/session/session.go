package session

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// Role identifies the author of a turn
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Turn represents a single chat message
type Turn struct {
	Role      Role      `json:"role"`
	Text      string    `json:"text"`
	Sequence  int       `json:"sequence"`
	Timestamp time.Time `json:"timestamp"`
}

// Seed is an initial turn supplied when a conversation is created
type Seed struct {
	Role Role   `json:"role"`
	Text string `json:"text"`
}

// Conversation is the append-only history of one chat session.
// Turns are never edited, removed or reordered once appended.
type Conversation struct {
	ID        string
	ProblemID string
	StartTime time.Time

	mu    sync.RWMutex
	turns []Turn
	now   func() time.Time
}

// New creates a conversation for a problem, optionally seeded with turns
func New(problemID string, seed ...Seed) *Conversation {
	c := &Conversation{
		ID:        uuid.NewString(),
		ProblemID: problemID,
		StartTime: time.Now(),
		now:       time.Now,
	}
	for _, s := range seed {
		c.Append(s.Role, s.Text)
	}
	return c
}

// Append stores a new turn with the next sequence number and returns it
func (c *Conversation) Append(role Role, text string) Turn {
	c.mu.Lock()
	defer c.mu.Unlock()
	t := Turn{
		Role:      role,
		Text:      text,
		Sequence:  len(c.turns),
		Timestamp: c.now(),
	}
	c.turns = append(c.turns, t)
	return t
}

// All returns a copy of the history in sequence order
func (c *Conversation) All() []Turn {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]Turn, len(c.turns))
	copy(out, c.turns)
	return out
}

func (c *Conversation) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.turns)
}

func (c *Conversation) Last() (Turn, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if len(c.turns) == 0 {
		return Turn{}, false
	}
	return c.turns[len(c.turns)-1], true
}
