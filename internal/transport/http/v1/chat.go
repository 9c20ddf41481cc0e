package v1

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/storekeep/storekeep/internal/auth"
	"github.com/storekeep/storekeep/internal/session"
)

const defaultHistoryLimit = 50

// ChatRequest is one conversational turn.
type ChatRequest struct {
	Text      string `json:"text"`
	SessionID string `json:"session_id,omitempty"`
}

// Chat runs one turn of the conversation. A missing session_id starts a
// fresh session whose id comes back in the response.
// POST /v1/chat
func (h *Handler) Chat(c echo.Context) error {
	ctx := c.Request().Context()
	user := auth.CurrentUser(c)

	var req ChatRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request body"})
	}
	if req.Text == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "text is required"})
	}
	if req.SessionID == "" {
		req.SessionID = uuid.NewString()
	}

	result, err := h.service.Chat(ctx, req.SessionID, req.Text, user)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}

	return c.JSON(http.StatusOK, result)
}

// ResetSessionRequest names the session to clear.
type ResetSessionRequest struct {
	SessionID string `json:"session_id"`
}

// ResetSession clears a session's conversation state.
// POST /v1/chat/reset
func (h *Handler) ResetSession(c echo.Context) error {
	var req ResetSessionRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request body"})
	}
	if req.SessionID == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "session_id is required"})
	}

	h.service.ResetSession(req.SessionID)
	return c.JSON(http.StatusOK, map[string]interface{}{
		"ok":         true,
		"session_id": req.SessionID,
	})
}

// ChatHistory returns recent messages of a session, oldest first.
// GET /v1/chat/history?session_id=...&limit=...
func (h *Handler) ChatHistory(c echo.Context) error {
	sessionID := c.QueryParam("session_id")
	if sessionID == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "session_id is required"})
	}

	limit := defaultHistoryLimit
	if raw := c.QueryParam("limit"); raw != "" {
		if err := echo.QueryParamsBinder(c).Int("limit", &limit).BindError(); err != nil || limit <= 0 {
			return c.JSON(http.StatusBadRequest, map[string]string{"error": "limit must be a positive integer"})
		}
	}

	msgs := h.service.History(sessionID, limit)
	if msgs == nil {
		msgs = []session.Message{}
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"session_id": sessionID,
		"messages":   msgs,
	})
}
