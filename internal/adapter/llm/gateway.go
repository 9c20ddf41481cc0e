// Package llm abstracts the model gateway: one call that decides between
// free text and a single tool invocation, and one that narrates a tool
// result back into natural language.
package llm

import (
	"context"

	"github.com/storekeep/storekeep/internal/domain"
)

// Message is one conversation entry sent to the model.
type Message struct {
	Role       string
	Content    string
	ToolCallID string
}

// Decision is the outcome of a Decide call: either free text or exactly
// one tool invocation request, never both.
type Decision struct {
	Text       string
	Invocation *domain.ToolInvocationRequest
}

// Gateway defines the two-step model protocol. Implementations degrade
// gracefully: an unreachable model never surfaces as an error to the chat
// flow, Decide falls back to an apology text and Narrate to the tool
// result's own message.
type Gateway interface {
	// Decide sends the conversation and tool catalog to the model.
	Decide(ctx context.Context, msgs []Message, tools []domain.ToolDefinition) (Decision, error)

	// Narrate turns an executed tool's result into the final reply text.
	Narrate(ctx context.Context, msgs []Message, inv domain.ToolInvocationRequest, result domain.ToolResult) (string, error)
}

// FallbackText is the Decide-step degradation reply.
const FallbackText = "I'm having trouble processing that request. Please try again."
