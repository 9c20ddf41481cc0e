package service

import (
	"context"
	"encoding/json"

	"github.com/rs/zerolog/log"

	"github.com/storekeep/storekeep/internal/adapter/llm"
	"github.com/storekeep/storekeep/internal/domain"
	"github.com/storekeep/storekeep/internal/session"
)

const undecidedReply = "I'm not sure how to help with that."

// ChatResult is the outcome of one conversational turn.
type ChatResult struct {
	Response        string `json:"response"`
	SessionID       string `json:"session_id"`
	ActionPerformed bool   `json:"action_performed"`
}

// Chat runs one turn of the two-step protocol: append the user message,
// ask the model to decide, execute at most one tool, and reply.
func (s *Service) Chat(ctx context.Context, sessionID, text string, actor *domain.User) (ChatResult, error) {
	// A fresh session is either untracked or holds only its placeholder
	// system message; install the real prompt before the first model call.
	if s.sessions.Len(sessionID) <= 1 {
		s.sessions.SetSystemPrompt(sessionID, s.buildSystemPrompt(ctx, actor))
	}
	s.sessions.Append(sessionID, session.RoleUser, text)

	msgs := toGatewayMessages(s.sessions.GetOrCreate(sessionID))
	decision, err := s.gateway.Decide(ctx, msgs, Catalog())
	if err != nil {
		log.Error().Err(err).Str("session_id", sessionID).Msg("model decide failed")
		decision = llm.Decision{Text: llm.FallbackText}
	}

	result := ChatResult{SessionID: sessionID}
	switch {
	case decision.Invocation != nil:
		inv := *decision.Invocation
		toolResult := s.ExecuteTool(ctx, inv.Name, inv.Arguments, actor)
		result.ActionPerformed = toolResult.Success
		result.Response = s.replyFor(ctx, sessionID, inv, toolResult)
		s.recordToolTurn(sessionID, inv, toolResult, result.Response)
	case decision.Text != "":
		result.Response = decision.Text
		s.sessions.Append(sessionID, session.RoleAssistant, decision.Text)
	default:
		result.Response = undecidedReply
		s.sessions.Append(sessionID, session.RoleAssistant, undecidedReply)
	}
	return result, nil
}

// replyFor picks the user-facing reply for an executed tool. The tool
// result's own message is the default; narration is an opt-in second
// model call.
func (s *Service) replyFor(ctx context.Context, sessionID string, inv domain.ToolInvocationRequest, result domain.ToolResult) string {
	if !s.narrate {
		return result.Reply()
	}
	msgs := toGatewayMessages(s.sessions.GetOrCreate(sessionID))
	text, err := s.gateway.Narrate(ctx, msgs, inv, result)
	if err != nil || text == "" {
		log.Error().Err(err).Str("session_id", sessionID).Msg("model narrate failed")
		return result.Reply()
	}
	return text
}

// recordToolTurn appends the tool exchange to the session log so later
// turns can refer back to what the tool returned.
func (s *Service) recordToolTurn(sessionID string, inv domain.ToolInvocationRequest, result domain.ToolResult, reply string) {
	payload, err := json.Marshal(result.Envelope())
	if err != nil {
		payload = []byte(`{"success":false}`)
	}
	s.sessions.AppendTool(sessionID, session.RoleTool, string(payload), inv.ID)
	s.sessions.Append(sessionID, session.RoleAssistant, reply)
}

// ResetSession clears a session's conversation state.
func (s *Service) ResetSession(sessionID string) {
	s.sessions.Reset(sessionID)
}

// History returns up to limit recent messages of a session, oldest first.
func (s *Service) History(sessionID string, limit int) []session.Message {
	return s.sessions.History(sessionID, limit)
}

func toGatewayMessages(msgs []session.Message) []llm.Message {
	out := make([]llm.Message, 0, len(msgs))
	for _, m := range msgs {
		out = append(out, llm.Message{Role: m.Role, Content: m.Content, ToolCallID: m.ToolCallID})
	}
	return out
}
