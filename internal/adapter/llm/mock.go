package llm

import (
	"context"
	"strings"
	"sync"

	"github.com/storekeep/storekeep/internal/domain"
)

// MockGateway is a scriptable Gateway for tests and offline mode. Queued
// decisions are returned in order; an empty queue yields a canned text
// reply derived from the last user message.
type MockGateway struct {
	mu         sync.Mutex
	decisions  []Decision
	narrations []string
}

var _ Gateway = (*MockGateway)(nil)

// NewMockGateway creates an empty mock gateway.
func NewMockGateway() *MockGateway {
	return &MockGateway{}
}

// EnqueueDecision scripts the next Decide outcome.
func (m *MockGateway) EnqueueDecision(d Decision) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.decisions = append(m.decisions, d)
}

// EnqueueNarration scripts the next Narrate outcome.
func (m *MockGateway) EnqueueNarration(text string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.narrations = append(m.narrations, text)
}

// Decide pops the next scripted decision, or echoes the last user message.
func (m *MockGateway) Decide(ctx context.Context, msgs []Message, tools []domain.ToolDefinition) (Decision, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.decisions) > 0 {
		d := m.decisions[0]
		m.decisions = m.decisions[1:]
		return d, nil
	}

	last := ""
	for _, msg := range msgs {
		if msg.Role == "user" {
			last = msg.Content
		}
	}
	return Decision{Text: "(mock) You said: " + strings.TrimSpace(last)}, nil
}

// Narrate pops the next scripted narration, or falls back to the result's
// own reply text.
func (m *MockGateway) Narrate(ctx context.Context, msgs []Message, inv domain.ToolInvocationRequest, result domain.ToolResult) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.narrations) > 0 {
		n := m.narrations[0]
		m.narrations = m.narrations[1:]
		return n, nil
	}
	return result.Reply(), nil
}
