package ws

import (
	"net/http"
	"strconv"

	"github.com/ses9892/rag/internal/api"
)

// StatusHandler reports on and broadcasts to live connections.
type StatusHandler struct {
	registry *Registry
}

func NewStatusHandler(registry *Registry) *StatusHandler {
	return &StatusHandler{registry: registry}
}

func (h *StatusHandler) Status(w http.ResponseWriter, r *http.Request) {
	api.JSON(w, http.StatusOK, map[string]any{
		"activeConnections": h.registry.Count(),
		"status":            "running",
		"endpoint":          "/ws/chat",
	})
}

// BroadcastTest sends a system event to every open connection.
func (h *StatusHandler) BroadcastTest(w http.ResponseWriter, r *http.Request) {
	h.registry.Broadcast(NewEvent("system", "🔔 관리자 테스트 브로드캐스트 메시지입니다!", EventBroadcast))

	api.JSON(w, http.StatusOK, map[string]string{
		"message":    "브로드캐스트 전송 완료",
		"recipients": strconv.Itoa(h.registry.Count()),
	})
}
