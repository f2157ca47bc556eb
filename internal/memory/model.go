package memory

// TurnType identifies who produced a conversation turn.
type TurnType string

const (
	TurnUser   TurnType = "USER"
	TurnAI     TurnType = "AI"
	TurnSystem TurnType = "SYSTEM"
)

// Turn is a single message in a conversation. Immutable once created.
type Turn struct {
	Type TurnType `json:"type"`
	Text string   `json:"text"`
}
