package chat

import (
	"context"
	"strings"

	"github.com/ses9892/rag/internal/llm"
	"github.com/ses9892/rag/internal/memory"
	"github.com/ses9892/rag/internal/metrics"
)

// Service is the conversation façade: it resolves a session's memory,
// submits the accumulated context to the model provider and records the
// finished exchange back into memory.
type Service struct {
	store        *memory.Store
	provider     llm.Provider
	systemPrompt string
}

func NewService(store *memory.Store, provider llm.Provider, systemPrompt string) *Service {
	return &Service{
		store:        store,
		provider:     provider,
		systemPrompt: systemPrompt,
	}
}

// Respond blocks until the provider produces the complete answer. On
// success both the user turn and the answer turn are appended to the
// session's memory; on provider failure memory is left untouched.
func (s *Service) Respond(ctx context.Context, sessionID, userMessage string) (string, error) {
	conv := s.store.GetOrCreate(sessionID)
	metrics.ActiveMemorySessions.Set(float64(s.store.Count()))

	answer, err := s.provider.Complete(ctx, s.assemble(conv, userMessage))
	if err != nil {
		metrics.ChatRequestsTotal.WithLabelValues("sync", "error").Inc()
		return "", err
	}

	conv.Append(memory.Turn{Type: memory.TurnUser, Text: userMessage})
	conv.Append(memory.Turn{Type: memory.TurnAI, Text: answer})
	metrics.ChatRequestsTotal.WithLabelValues("sync", "ok").Inc()
	return answer, nil
}

// RespondStream returns a stream of answer fragments. The user turn is
// appended to memory up front; the answer turn is appended only once the
// whole stream completes, so a cancelled or failed stream never leaves a
// partial answer in history. After a provider failure the session can hold
// a user turn with no matching answer turn; the memory endpoints surface
// that history as-is.
func (s *Service) RespondStream(ctx context.Context, sessionID, userMessage string) *Stream {
	conv := s.store.GetOrCreate(sessionID)
	metrics.ActiveMemorySessions.Set(float64(s.store.Count()))

	msgs := s.assemble(conv, userMessage)
	conv.Append(memory.Turn{Type: memory.TurnUser, Text: userMessage})

	stream := newStream()

	go func() {
		defer close(stream.tokens)

		upstream := make(chan string, 16)
		prodErr := make(chan error, 1)
		go func() {
			prodErr <- s.provider.Stream(ctx, msgs, upstream)
			close(upstream)
		}()

		var full strings.Builder
		for tok := range upstream {
			full.WriteString(tok)
			if ctx.Err() != nil {
				continue // consumer is gone, drain until the producer stops
			}
			select {
			case stream.tokens <- tok:
				metrics.ChatTokensStreamedTotal.Inc()
			case <-ctx.Done():
			}
		}

		if err := <-prodErr; err != nil {
			stream.fail(err)
			metrics.ChatRequestsTotal.WithLabelValues("stream", "error").Inc()
			return
		}

		conv.Append(memory.Turn{Type: memory.TurnAI, Text: full.String()})
		metrics.ChatRequestsTotal.WithLabelValues("stream", "ok").Inc()
	}()

	return stream
}

// assemble builds the provider context: fixed system instruction, the
// session's turn window, then the new user message.
func (s *Service) assemble(conv *memory.Conversation, userMessage string) []llm.Message {
	turns := conv.Turns()
	msgs := make([]llm.Message, 0, len(turns)+2)
	msgs = append(msgs, llm.Message{Role: llm.RoleSystem, Content: s.systemPrompt})

	for _, t := range turns {
		switch t.Type {
		case memory.TurnUser:
			msgs = append(msgs, llm.Message{Role: llm.RoleUser, Content: t.Text})
		case memory.TurnAI:
			msgs = append(msgs, llm.Message{Role: llm.RoleAssistant, Content: t.Text})
		case memory.TurnSystem:
			msgs = append(msgs, llm.Message{Role: llm.RoleSystem, Content: t.Text})
		}
	}

	return append(msgs, llm.Message{Role: llm.RoleUser, Content: userMessage})
}
