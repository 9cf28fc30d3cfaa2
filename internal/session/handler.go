package session

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/coder/websocket"
	"github.com/gorilla/mux"
)

// Handler serves session lifecycle endpoints and the websocket
// attach point.
type Handler struct {
	manager *Manager
	origins []string
	maxMsg  int64
}

// NewHandler builds a Handler. maxMsg bounds inbound websocket
// message size in bytes; zero or negative picks the default.
func NewHandler(manager *Manager, origins []string, maxMsg int64) *Handler {
	return &Handler{manager: manager, origins: origins, maxMsg: maxMsg}
}

// Create handles POST /sessions.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	s := h.manager.Create()
	writeJSON(w, http.StatusCreated, map[string]string{"id": s.ID})
}

// Get handles GET /sessions/{sessionId} with a full state snapshot.
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	s, ok := h.manager.Get(mux.Vars(r)["sessionId"])
	if !ok {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "session not found"})
		return
	}

	st, ok := s.Snapshot()
	if !ok {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "session closed"})
		return
	}
	writeJSON(w, http.StatusOK, st)
}

// Close handles DELETE /sessions/{sessionId}.
func (h *Handler) Close(w http.ResponseWriter, r *http.Request) {
	if !h.manager.Close(mux.Vars(r)["sessionId"]) {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "session not found"})
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Detect handles POST /sessions/{sessionId}/detect. The run completes
// asynchronously; results arrive on the session websocket.
func (h *Handler) Detect(w http.ResponseWriter, r *http.Request) {
	s, ok := h.manager.Get(mux.Vars(r)["sessionId"])
	if !ok {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "session not found"})
		return
	}

	var req DetectRunPayload
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	if err := s.RunDetection(req.Pattern, req.Params); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusAccepted, map[string]string{"status": "started"})
}

// WebSocket handles GET /ws/session/{sessionId}.
func (h *Handler) WebSocket(w http.ResponseWriter, r *http.Request) {
	s, ok := h.manager.Get(mux.Vars(r)["sessionId"])
	if !ok {
		http.Error(w, "session not found", http.StatusNotFound)
		return
	}

	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		OriginPatterns: h.origins,
	})
	if err != nil {
		slog.Error("websocket accept", "error", err)
		return
	}

	client := NewWSClient(s, conn, h.maxMsg)
	s.Attach(client)

	ctx := r.Context()
	go client.WritePump(ctx)
	client.ReadPump(ctx)
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}
