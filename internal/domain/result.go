package domain

import "fmt"

// ErrorKind classifies a tool failure.
type ErrorKind string

const (
	ErrKindValidation        ErrorKind = "validation_error"
	ErrKindNotFound          ErrorKind = "not_found"
	ErrKindInsufficientStock ErrorKind = "insufficient_stock"
	ErrKindAuthorization     ErrorKind = "authorization_error"
	ErrKindDuplicate         ErrorKind = "duplicate_entity"
	ErrKindUnknownTool       ErrorKind = "unknown_tool"
	ErrKindExternalService   ErrorKind = "external_service_error"
	ErrKindInternal          ErrorKind = "internal_error"
)

// ToolResult is the uniform envelope every tool execution produces.
// Exactly one of Message (success) or Error (failure) is user-facing.
type ToolResult struct {
	Success bool           `json:"success"`
	Kind    ErrorKind      `json:"kind,omitempty"`
	Message string         `json:"message,omitempty"`
	Error   string         `json:"error,omitempty"`
	Data    map[string]any `json:"-"`
}

// OK builds a success result with a user-facing message and optional
// payload fields.
func OK(message string, data map[string]any) ToolResult {
	return ToolResult{Success: true, Message: message, Data: data}
}

// Fail builds a failure result of the given kind.
func Fail(kind ErrorKind, format string, args ...any) ToolResult {
	return ToolResult{Success: false, Kind: kind, Error: fmt.Sprintf(format, args...)}
}

// Envelope flattens the result into the wire shape
// {success, message|error, ...payload}.
func (r ToolResult) Envelope() map[string]any {
	env := make(map[string]any, len(r.Data)+2)
	for k, v := range r.Data {
		env[k] = v
	}
	env["success"] = r.Success
	if r.Success {
		env["message"] = r.Message
	} else {
		env["error"] = r.Error
	}
	return env
}

// Reply is the text shown to the user when the narration step is skipped:
// the success message, or the error text on failure.
func (r ToolResult) Reply() string {
	if r.Success {
		if r.Message == "" {
			return "Done!"
		}
		return r.Message
	}
	if r.Error == "" {
		return "Sorry, something went wrong."
	}
	return r.Error
}
