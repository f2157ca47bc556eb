package chat

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ses9892/rag/internal/api"
	"github.com/ses9892/rag/internal/memory"
)

func setupChatAPI(t *testing.T, provider *stubProvider) (http.Handler, *memory.Store) {
	t.Helper()

	store := memory.NewStore(10)
	svc := NewService(store, provider, "system prompt")
	chatHandler := NewHandler(svc, "default")
	memoryHandler := memory.NewHandler(store)

	noop := func(w http.ResponseWriter, r *http.Request) {}
	router := api.NewRouter(api.RouterConfig{}, api.HandlerSet{
		Chat:           chatHandler.Chat,
		ChatStream:     chatHandler.ChatStream,
		ChatTest:       chatHandler.Test,
		ChatTestStream: chatHandler.TestStream,

		GetMemory:     memoryHandler.Get,
		ClearMemory:   memoryHandler.Clear,
		ClearAll:      memoryHandler.ClearAll,
		MemoryStatus:  memoryHandler.Status,
		RemoveSession: memoryHandler.Remove,

		WSStatus:    noop,
		WSBroadcast: noop,
	})
	return router, store
}

func postChat(t *testing.T, router http.Handler, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestChatEndpoint_EchoesProviderAnswer(t *testing.T) {
	router, _ := setupChatAPI(t, &stubProvider{})

	rec := postChat(t, router, "/api/chat", `{"message":"hello"}`)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "echo: hello", rec.Body.String())
}

func TestChatEndpoint_SharesDefaultSessionAcrossCalls(t *testing.T) {
	provider := &stubProvider{}
	router, store := setupChatAPI(t, provider)

	rec := postChat(t, router, "/api/chat", `{"message":"first"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	rec = postChat(t, router, "/api/chat", `{"message":"second"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	// Second call saw the first exchange as context.
	msgs := provider.lastCall()
	require.Len(t, msgs, 4)
	assert.Equal(t, "first", msgs[1].Content)
	assert.Equal(t, "echo: first", msgs[2].Content)

	assert.Equal(t, 4, store.Get("default").Len())
}

func TestChatEndpoint_ExplicitSessionID(t *testing.T) {
	router, store := setupChatAPI(t, &stubProvider{})

	rec := postChat(t, router, "/api/chat", `{"message":"hello","sessionId":"user-7"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	assert.NotNil(t, store.Get("user-7"))
	assert.Nil(t, store.Get("default"))
}

func TestChatEndpoint_MissingMessageIsBadRequest(t *testing.T) {
	router, _ := setupChatAPI(t, &stubProvider{})

	rec := postChat(t, router, "/api/chat", `{"sessionId":"x"}`)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "BAD_REQUEST", body["code"])
}

func TestChatEndpoint_ProviderFailureIsChatError(t *testing.T) {
	router, _ := setupChatAPI(t, &stubProvider{err: assert.AnError})

	rec := postChat(t, router, "/api/chat", `{"message":"hello"}`)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "CHAT_ERROR", body["code"])
}

func TestChatStreamEndpoint_SSEFraming(t *testing.T) {
	router, _ := setupChatAPI(t, &stubProvider{chunkSize: 2})

	rec := postChat(t, router, "/api/chat/stream", `{"message":"hello"}`)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "text/event-stream")

	// Reassemble the fragments from the data: lines.
	var b strings.Builder
	for _, line := range strings.Split(rec.Body.String(), "\n\n") {
		if after, ok := strings.CutPrefix(line, "data: "); ok {
			b.WriteString(after)
		}
	}
	assert.Equal(t, "echo: hello", b.String())
}

func TestChatTestEndpoint_DefaultMessage(t *testing.T) {
	router, _ := setupChatAPI(t, &stubProvider{})

	req := httptest.NewRequest(http.MethodGet, "/api/chat/test", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "echo: 안녕하세요!", rec.Body.String())
}

func TestMemoryEndpoints_ClearAllAfterThreeSessions(t *testing.T) {
	router, _ := setupChatAPI(t, &stubProvider{})

	for _, id := range []string{"a", "b", "c"} {
		rec := postChat(t, router, "/api/chat", `{"message":"hi","sessionId":"`+id+`"}`)
		require.Equal(t, http.StatusOK, rec.Code)
	}

	req := httptest.NewRequest(http.MethodDelete, "/api/memory/all", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, float64(3), body["clearedCount"])

	req = httptest.NewRequest(http.MethodGet, "/api/memory/status", nil)
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, float64(0), body["activeMemoryCount"])
}
