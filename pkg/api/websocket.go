package api

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"

	"github.com/coder/websocket"

	"github.com/archadvisor/archadvisor/pkg/bus"
)

// serveSessionWebSocket handles GET /ws/sessions/{id}. It is mounted
// outside gin (see Server.Handler): the upgrade needs the raw
// http.ResponseWriter, and gin's wrapped writer refuses to hijack once
// the 101 response has been written.
//
// Protocol:
//
//	server → client: workflow events as JSON objects; on connect, one
//	                 event_history frame replays the retained history
//	                 so reconnecting clients get the full picture.
//	client → server: {"type": "cancel" | "force_proceed" | "ping"}
func (s *Server) serveSessionWebSocket(w http.ResponseWriter, r *http.Request) {
	sessionID := r.PathValue("id")

	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		// The API is unauthenticated; origin checks would only break
		// local frontends. TODO: switch to OriginPatterns when the
		// frontend domain is fixed.
		InsecureSkipVerify: true,
	})
	if err != nil {
		slog.Warn("WebSocket accept failed", "session_id", sessionID, "error", err)
		return
	}
	defer conn.CloseNow()

	slog.Info("WebSocket connected", "session_id", sessionID)

	ctx := r.Context()
	wr := &wsWriter{conn: conn}

	// Registering the listener and snapshotting history is one atomic
	// bus operation, so nothing published around connect time is lost.
	// Live events arrive on the workflow goroutine; wsWriter serializes
	// them with the frames written below.
	sub, history := s.bus.SubscribeWithHistory(sessionID, func(ev bus.Event) error {
		return wr.send(ctx, ev)
	})
	defer s.bus.Unsubscribe(sessionID, sub)

	if len(history) > 0 {
		err := wr.send(ctx, map[string]any{
			"type":   "event_history",
			"events": history,
			"count":  len(history),
		})
		if err != nil {
			return
		}
	}

	for {
		_, data, err := conn.Read(ctx)
		if err != nil {
			break
		}

		var cmd struct {
			Type string `json:"type"`
		}
		if err := json.Unmarshal(data, &cmd); err != nil {
			_ = wr.send(ctx, map[string]any{"type": "error", "message": "Invalid JSON"})
			continue
		}

		switch cmd.Type {
		case "cancel":
			slog.Info("WebSocket cancel requested", "session_id", sessionID)
			if _, err := s.cancelSession(ctx, sessionID); err != nil {
				slog.Warn("WebSocket cancel failed", "session_id", sessionID, "error", err)
			}
			_ = wr.send(ctx, map[string]any{"type": "info", "message": "Cancellation requested"})
		case "force_proceed":
			slog.Info("WebSocket force proceed requested", "session_id", sessionID)
			_ = wr.send(ctx, map[string]any{"type": "info", "message": "Force proceed requested"})
		case "ping":
			_ = wr.send(ctx, map[string]any{"type": "pong"})
		}
	}

	conn.Close(websocket.StatusNormalClosure, "")
	slog.Info("WebSocket disconnected", "session_id", sessionID)
}

// wsWriter serializes concurrent writes to one WebSocket connection.
type wsWriter struct {
	mu   sync.Mutex
	conn *websocket.Conn
}

func (w *wsWriter) send(ctx context.Context, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	return w.conn.Write(ctx, websocket.MessageText, data)
}
