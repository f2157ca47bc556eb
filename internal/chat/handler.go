package chat

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-playground/validator/v10"

	"github.com/ses9892/rag/internal/api"
)

// Handler exposes the conversation service over HTTP, synchronous and SSE.
type Handler struct {
	svc            *Service
	validate       *validator.Validate
	defaultSession string
}

func NewHandler(svc *Service, defaultSession string) *Handler {
	return &Handler{
		svc:            svc,
		validate:       validator.New(),
		defaultSession: defaultSession,
	}
}

// Chat answers a message synchronously with the full answer as plain text.
func (h *Handler) Chat(w http.ResponseWriter, r *http.Request) {
	req, err := h.decodeRequest(r)
	if err != nil {
		api.HandleError(w, err)
		return
	}

	answer, err := h.svc.Respond(r.Context(), h.session(req.SessionID), req.Message)
	if err != nil {
		slog.Error("chat failed", "error", err, "session", h.session(req.SessionID))
		api.HandleError(w, err)
		return
	}

	api.Text(w, http.StatusOK, answer)
}

// ChatStream answers a message as a Server-Sent-Events fragment stream.
func (h *Handler) ChatStream(w http.ResponseWriter, r *http.Request) {
	req, err := h.decodeRequest(r)
	if err != nil {
		api.HandleError(w, err)
		return
	}

	h.streamSSE(w, r, h.session(req.SessionID), req.Message)
}

// Test answers a GET request synchronously, with a default message.
func (h *Handler) Test(w http.ResponseWriter, r *http.Request) {
	message := r.URL.Query().Get("message")
	if message == "" {
		message = "안녕하세요!"
	}

	answer, err := h.svc.Respond(r.Context(), h.session(r.URL.Query().Get("sessionId")), message)
	if err != nil {
		slog.Error("chat test failed", "error", err)
		api.HandleError(w, err)
		return
	}

	api.Text(w, http.StatusOK, answer)
}

// TestStream streams an answer to a GET request, with a default message.
func (h *Handler) TestStream(w http.ResponseWriter, r *http.Request) {
	message := r.URL.Query().Get("message")
	if message == "" {
		message = "긴 이야기를 들려주세요"
	}

	h.streamSSE(w, r, h.session(r.URL.Query().Get("sessionId")), message)
}

func (h *Handler) streamSSE(w http.ResponseWriter, r *http.Request, sessionID, message string) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		api.HandleError(w, api.NewChatError("streaming unsupported by connection"))
		return
	}

	w.Header().Set("Content-Type", "text/event-stream; charset=utf-8")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	stream := h.svc.RespondStream(r.Context(), sessionID, message)
	for tok := range stream.Tokens() {
		fmt.Fprintf(w, "data: %s\n\n", tok)
		flusher.Flush()
	}

	// The SSE response is already in flight; an upstream failure can only
	// terminate the stream, not change the status code.
	if err := stream.Err(); err != nil {
		slog.Error("chat stream failed", "error", err, "session", sessionID)
	}
}

func (h *Handler) decodeRequest(r *http.Request) (*ChatRequest, error) {
	var req ChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		return nil, api.NewBadRequestError("요청 본문이 올바르지 않습니다")
	}
	if err := h.validate.Struct(req); err != nil {
		return nil, api.NewBadRequestError("message 필드는 필수입니다")
	}
	return &req, nil
}

func (h *Handler) session(id string) string {
	if id == "" {
		return h.defaultSession
	}
	return id
}
