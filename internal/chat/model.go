package chat

// ChatRequest is the inbound body for the chat endpoints. SessionID is
// optional; the handler falls back to the configured default session.
type ChatRequest struct {
	Message   string `json:"message" validate:"required,min=1"`
	SessionID string `json:"sessionId,omitempty"`
}
