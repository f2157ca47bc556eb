package ws

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/ses9892/rag/internal/chat"
	"github.com/ses9892/rag/internal/metrics"
)

// Handler serves the /ws/chat endpoint: it upgrades connections, registers
// them, and relays streamed answers back as event frames.
type Handler struct {
	svc      *chat.Service
	registry *Registry
	upgrader websocket.Upgrader
}

func NewHandler(svc *chat.Service, registry *Registry) *Handler {
	return &Handler{
		svc:      svc,
		registry: registry,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			// Browser chat clients connect from arbitrary origins.
			CheckOrigin: func(r *http.Request) bool { return true },
		},
	}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		slog.Error("websocket upgrade failed", "error", err)
		return
	}
	defer conn.Close()

	connID := uuid.NewString()
	client := h.registry.Add(connID, conn)
	metrics.ActiveWSConnections.Set(float64(h.registry.Count()))
	slog.Info("websocket connected", "conn", connID)

	defer func() {
		h.registry.Remove(connID)
		metrics.ActiveWSConnections.Set(float64(h.registry.Count()))
		slog.Info("websocket disconnected", "conn", connID)
	}()

	if err := client.Send(NewEvent("system", "연결되었습니다. 메시지를 보내보세요!", EventConnected)); err != nil {
		slog.Error("websocket greeting failed", "conn", connID, "error", err)
		return
	}

	// Cancelling this context on read-loop exit aborts any in-flight
	// streaming for the connection.
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	for {
		msgType, raw, err := conn.ReadMessage()
		if err != nil {
			return
		}
		if msgType != websocket.TextMessage {
			continue
		}
		// Handle off the read goroutine so a slow exchange never blocks
		// inbound frames; writes are serialized by the client write mutex.
		go h.handleFrame(ctx, client, connID, raw)
	}
}

func (h *Handler) handleFrame(ctx context.Context, client *Client, connID string, raw []byte) {
	var in inbound
	if err := json.Unmarshal(raw, &in); err != nil || strings.TrimSpace(in.Message) == "" {
		slog.Warn("websocket frame rejected", "conn", connID)
		h.send(client, NewEvent("error", "메시지 처리 중 오류가 발생했습니다: message 필드가 필요합니다", EventError))
		return
	}

	sessionID := in.SessionID
	if sessionID == "" {
		sessionID = connID
	}

	h.send(client, NewEvent("system", "스트리밍을 시작합니다...", EventStreamStart))

	stream := h.svc.RespondStream(ctx, sessionID, in.Message)
	for tok := range stream.Tokens() {
		h.send(client, NewEvent("ai", tok, EventStreamToken))
	}

	if err := stream.Err(); err != nil {
		slog.Error("websocket stream failed", "conn", connID, "session", sessionID, "error", err)
		h.send(client, NewEvent("error", "스트리밍 중 오류가 발생했습니다.", EventError))
		return
	}

	h.send(client, NewEvent("system", "스트리밍이 완료되었습니다.", EventStreamEnd))
}

func (h *Handler) send(client *Client, event Event) {
	if err := client.Send(event); err != nil {
		slog.Error("websocket send failed", "conn", client.id, "error", err)
	}
}
