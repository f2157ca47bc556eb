package ws

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ses9892/rag/internal/chat"
	"github.com/ses9892/rag/internal/llm"
	"github.com/ses9892/rag/internal/memory"
)

// echoProvider streams the last user message back in two-rune chunks.
type echoProvider struct{}

func (echoProvider) Complete(ctx context.Context, messages []llm.Message) (string, error) {
	return messages[len(messages)-1].Content, nil
}

func (echoProvider) Stream(ctx context.Context, messages []llm.Message, tokens chan<- string) error {
	reply := []rune(messages[len(messages)-1].Content)
	for start := 0; start < len(reply); start += 2 {
		end := start + 2
		if end > len(reply) {
			end = len(reply)
		}
		select {
		case tokens <- string(reply[start:end]):
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return nil
}

func setupWS(t *testing.T) (*websocket.Conn, *memory.Store, *Registry) {
	t.Helper()

	store := memory.NewStore(10)
	svc := chat.NewService(store, echoProvider{}, "system prompt")
	registry := NewRegistry()
	srv := httptest.NewServer(NewHandler(svc, registry))
	t.Cleanup(srv.Close)

	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })

	return conn, store, registry
}

func readEvent(t *testing.T, conn *websocket.Conn) Event {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))
	_, raw, err := conn.ReadMessage()
	require.NoError(t, err)

	var ev Event
	require.NoError(t, json.Unmarshal(raw, &ev))
	return ev
}

func send(t *testing.T, conn *websocket.Conn, payload string) {
	t.Helper()
	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte(payload)))
}

func TestHandler_StreamEventSequence(t *testing.T) {
	conn, store, _ := setupWS(t)

	assert.Equal(t, EventConnected, readEvent(t, conn).Type)

	send(t, conn, `{"message":"hi"}`)

	ev := readEvent(t, conn)
	assert.Equal(t, EventStreamStart, ev.Type)
	assert.Equal(t, "system", ev.Sender)

	var tokens []string
	for {
		ev = readEvent(t, conn)
		if ev.Type != EventStreamToken {
			break
		}
		assert.Equal(t, "ai", ev.Sender)
		tokens = append(tokens, ev.Content)
		assert.NotZero(t, ev.Timestamp)
	}

	assert.Equal(t, EventStreamEnd, ev.Type)
	require.NotEmpty(t, tokens)
	assert.Equal(t, "hi", strings.Join(tokens, ""))

	// With no sessionId in the payload, history is keyed by the
	// connection's own identifier.
	assert.Equal(t, 1, store.Count())
}

func TestHandler_LogicalSessionID(t *testing.T) {
	conn, store, _ := setupWS(t)
	readEvent(t, conn) // connected

	send(t, conn, `{"message":"hello","sessionId":"stable-session"}`)

	for {
		if ev := readEvent(t, conn); ev.Type == EventStreamEnd {
			break
		}
	}

	conv := store.Get("stable-session")
	require.NotNil(t, conv)
	assert.Equal(t, 2, conv.Len())
}

func TestHandler_MalformedFrameKeepsConnectionOpen(t *testing.T) {
	conn, _, _ := setupWS(t)
	readEvent(t, conn) // connected

	// Missing message field: exactly one error event, nothing else.
	send(t, conn, `{"sessionId":"x"}`)
	assert.Equal(t, EventError, readEvent(t, conn).Type)

	// Invalid JSON behaves the same.
	send(t, conn, `{not json`)
	assert.Equal(t, EventError, readEvent(t, conn).Type)

	// The connection still accepts valid frames.
	send(t, conn, `{"message":"still here"}`)
	assert.Equal(t, EventStreamStart, readEvent(t, conn).Type)
}

func TestHandler_BroadcastReachesAllConnections(t *testing.T) {
	store := memory.NewStore(10)
	svc := chat.NewService(store, echoProvider{}, "system prompt")
	registry := NewRegistry()
	srv := httptest.NewServer(NewHandler(svc, registry))
	t.Cleanup(srv.Close)

	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	var conns []*websocket.Conn
	for i := 0; i < 2; i++ {
		conn, _, err := websocket.DefaultDialer.Dial(url, nil)
		require.NoError(t, err)
		t.Cleanup(func() { conn.Close() })
		readEvent(t, conn) // connected
		conns = append(conns, conn)
	}
	require.Equal(t, 2, registry.Count())

	registry.Broadcast(NewEvent("system", "공지입니다", EventBroadcast))

	for _, conn := range conns {
		ev := readEvent(t, conn)
		assert.Equal(t, EventBroadcast, ev.Type)
		assert.Equal(t, "공지입니다", ev.Content)
	}
}

func TestStatusHandler(t *testing.T) {
	registry := NewRegistry()
	registry.Add("a", nil)

	rec := httptest.NewRecorder()
	NewStatusHandler(registry).Status(rec, httptest.NewRequest("GET", "/api/ws/status", nil))

	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, float64(1), body["activeConnections"])
	assert.Equal(t, "running", body["status"])
	assert.Equal(t, "/ws/chat", body["endpoint"])
}
