// Package llm wraps the external language-model API behind a small
// capability interface so the conversation service never touches the
// provider SDK directly.
package llm

import "context"

// Message roles follow the chat-completions convention.
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Message is one entry of the prompt context sent to the provider.
type Message struct {
	Role    string
	Content string
}

// Provider is the capability interface for the external model.
type Provider interface {
	// Complete blocks until the provider produces the full answer.
	Complete(ctx context.Context, messages []Message) (string, error)

	// Stream pushes answer fragments into tokens in emission order and
	// returns once the upstream stream completes or fails. The channel is
	// not closed by Stream; the caller owns it. Cancelling ctx aborts the
	// upstream call.
	Stream(ctx context.Context, messages []Message, tokens chan<- string) error
}
