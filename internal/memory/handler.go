package memory

import (
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/ses9892/rag/internal/api"
	"github.com/ses9892/rag/internal/metrics"
)

// Handler exposes the session memory store over HTTP.
type Handler struct {
	store *Store
}

func NewHandler(store *Store) *Handler {
	return &Handler{store: store}
}

// Get returns the conversation history for a session. Unknown sessions are
// reported as exists=false with an empty message list, not an error.
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")

	conv := h.store.Get(sessionID)
	if conv == nil {
		api.JSON(w, http.StatusOK, map[string]any{
			"sessionId":    sessionID,
			"messageCount": 0,
			"messages":     []Turn{},
			"exists":       false,
		})
		return
	}

	turns := conv.Turns()
	api.JSON(w, http.StatusOK, map[string]any{
		"sessionId":    sessionID,
		"messageCount": len(turns),
		"messages":     turns,
		"exists":       true,
	})
}

// Clear empties a session's history. The session stays registered.
func (h *Handler) Clear(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")
	h.store.Clear(sessionID)

	api.JSON(w, http.StatusOK, map[string]any{
		"message":   fmt.Sprintf("세션 %s의 메모리가 초기화되었습니다.", sessionID),
		"sessionId": sessionID,
		"success":   true,
	})
}

// ClearAll empties and deregisters every session.
func (h *Handler) ClearAll(w http.ResponseWriter, r *http.Request) {
	count := h.store.ClearAll()
	metrics.ActiveMemorySessions.Set(0)

	api.JSON(w, http.StatusOK, map[string]any{
		"message":      fmt.Sprintf("%d개의 메모리 세션이 모두 초기화되었습니다.", count),
		"clearedCount": count,
		"success":      true,
	})
}

// Status reports how many sessions are registered.
func (h *Handler) Status(w http.ResponseWriter, r *http.Request) {
	api.JSON(w, http.StatusOK, map[string]any{
		"activeMemoryCount": h.store.Count(),
		"timestamp":         time.Now().UnixMilli(),
	})
}

// Remove deregisters a session entirely.
func (h *Handler) Remove(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")
	h.store.Remove(sessionID)
	metrics.ActiveMemorySessions.Set(float64(h.store.Count()))

	api.JSON(w, http.StatusOK, map[string]any{
		"message":   fmt.Sprintf("세션 %s이 완전히 삭제되었습니다.", sessionID),
		"sessionId": sessionID,
		"success":   true,
	})
}
