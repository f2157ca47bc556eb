package ws

import "time"

// Outbound event types.
const (
	EventConnected   = "connected"
	EventStreamStart = "stream_start"
	EventStreamToken = "stream_token"
	EventStreamEnd   = "stream_end"
	EventError       = "error"
	EventBroadcast   = "broadcast"
)

// Event is the outbound WebSocket frame.
type Event struct {
	Sender    string `json:"sender"`
	Content   string `json:"content"`
	Type      string `json:"type"`
	Timestamp int64  `json:"timestamp"`
}

func NewEvent(sender, content, eventType string) Event {
	return Event{
		Sender:    sender,
		Content:   content,
		Type:      eventType,
		Timestamp: time.Now().UnixMilli(),
	}
}

// inbound is the expected shape of client frames. SessionID is the logical
// conversation key; without it, history is scoped to the connection and
// does not survive a reconnect.
type inbound struct {
	Message   string `json:"message"`
	SessionID string `json:"sessionId"`
}
