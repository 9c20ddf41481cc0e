// Package session holds per-session conversation state in process memory.
package session

import (
	"sync"
	"time"
)

// Role values for conversation messages.
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
	RoleTool      = "tool"
)

// Message is one entry of a session's ordered log. Messages are immutable
// once appended; only the leading system message is ever rewritten, and
// only through SetSystemPrompt.
type Message struct {
	Role       string    `json:"role"`
	Content    string    `json:"content"`
	ToolCallID string    `json:"tool_call_id,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}

const systemPlaceholder = "You are a helpful Store Assistant."

type conversation struct {
	mu       sync.Mutex
	messages []Message
	touched  time.Time
}

// Registry maps session ids to conversations. The registry lock only
// guards the map; each conversation carries its own lock so sessions never
// block each other.
type Registry struct {
	mu       sync.Mutex
	sessions map[string]*conversation
}

// NewRegistry creates an empty session registry.
func NewRegistry() *Registry {
	return &Registry{sessions: make(map[string]*conversation)}
}

func (r *Registry) get(id string) *conversation {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.sessions[id]
	if !ok {
		now := time.Now()
		c = &conversation{
			messages: []Message{{Role: RoleSystem, Content: systemPlaceholder, CreatedAt: now}},
			touched:  now,
		}
		r.sessions[id] = c
	}
	return c
}

// lookup returns the conversation for id without creating one.
func (r *Registry) lookup(id string) *conversation {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.sessions[id]
}

// GetOrCreate returns a copy of the session's message log, creating the
// session with its leading system message if the id is unseen.
func (r *Registry) GetOrCreate(id string) []Message {
	c := r.get(id)
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]Message(nil), c.messages...)
}

// Append adds a message to the session's log.
func (r *Registry) Append(id, role, content string) {
	r.AppendTool(id, role, content, "")
}

// AppendTool adds a message carrying a tool invocation id.
func (r *Registry) AppendTool(id, role, content, toolCallID string) {
	c := r.get(id)
	c.mu.Lock()
	defer c.mu.Unlock()
	c.messages = append(c.messages, Message{
		Role:       role,
		Content:    content,
		ToolCallID: toolCallID,
		CreatedAt:  time.Now(),
	})
	c.touched = time.Now()
}

// SetSystemPrompt rewrites the leading system message. The caller decides
// when; the chat service does it once, on a session's first user turn.
func (r *Registry) SetSystemPrompt(id, prompt string) {
	c := r.get(id)
	c.mu.Lock()
	defer c.mu.Unlock()
	c.messages[0].Content = prompt
}

// Len returns the current number of messages, including the system one.
// An unknown id has length zero and is not created.
func (r *Registry) Len(id string) int {
	c := r.lookup(id)
	if c == nil {
		return 0
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.messages)
}

// Reset clears a session back to a single fresh system placeholder.
// Resetting an unknown id is a no-op.
func (r *Registry) Reset(id string) {
	c := r.lookup(id)
	if c == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.messages = []Message{{Role: RoleSystem, Content: systemPlaceholder, CreatedAt: time.Now()}}
	c.touched = time.Now()
}

// History returns up to limit most-recent messages, excluding the system
// message. An unknown id has no history and is not created.
func (r *Registry) History(id string, limit int) []Message {
	c := r.lookup(id)
	if c == nil {
		return nil
	}
	c.mu.Lock()
	msgs := append([]Message(nil), c.messages...)
	c.mu.Unlock()

	out := make([]Message, 0, len(msgs))
	for _, m := range msgs {
		if m.Role == RoleSystem {
			continue
		}
		out = append(out, m)
	}
	if limit > 0 && len(out) > limit {
		out = out[len(out)-limit:]
	}
	return out
}
