package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/coder/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/archadvisor/archadvisor/pkg/bus"
	"github.com/archadvisor/archadvisor/pkg/models"
)

func dialSession(t *testing.T, ts *testServer, sessionID string) (*websocket.Conn, context.Context) {
	t.Helper()

	httpSrv := httptest.NewServer(ts.handler)
	t.Cleanup(httpSrv.Close)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	t.Cleanup(cancel)

	url := "ws" + strings.TrimPrefix(httpSrv.URL, "http") + "/ws/sessions/" + sessionID
	conn, _, err := websocket.Dial(ctx, url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.CloseNow() })

	return conn, ctx
}

func readFrame(t *testing.T, ctx context.Context, conn *websocket.Conn) map[string]any {
	t.Helper()

	_, data, err := conn.Read(ctx)
	require.NoError(t, err)

	var frame map[string]any
	require.NoError(t, json.Unmarshal(data, &frame))
	return frame
}

func writeFrame(t *testing.T, ctx context.Context, conn *websocket.Conn, text string) {
	t.Helper()
	require.NoError(t, conn.Write(ctx, websocket.MessageText, []byte(text)))
}

func TestWebSocketReplaysHistoryOnConnect(t *testing.T) {
	ts := newTestServer(t, nil)

	ts.bus.Publish("arch_ws000001", bus.AgentStarted("architect", "Architect", "Designing..."))
	ts.bus.Publish("arch_ws000001", bus.WorkflowProgress(2, 5, "designing", "Working..."))

	conn, ctx := dialSession(t, ts, "arch_ws000001")

	frame := readFrame(t, ctx, conn)
	assert.Equal(t, "event_history", frame["type"])
	assert.EqualValues(t, 2, frame["count"])

	events, ok := frame["events"].([]any)
	require.True(t, ok)
	require.Len(t, events, 2)
	first, _ := events[0].(map[string]any)
	assert.Equal(t, "agent_started", first["type"])
}

// Events published before connect arrive in the history frame and
// events published after arrive live; together they cover the full
// publication sequence.
func TestWebSocketHistoryThenLive(t *testing.T) {
	ts := newTestServer(t, nil)

	ts.bus.Publish("arch_ws000007", bus.AgentStarted("architect", "Architect", "Designing..."))

	conn, ctx := dialSession(t, ts, "arch_ws000007")

	frame := readFrame(t, ctx, conn)
	require.Equal(t, "event_history", frame["type"])
	require.EqualValues(t, 1, frame["count"])

	ts.bus.Publish("arch_ws000007", bus.AgentCompleted("architect", "Done", time.Second, 0.01))

	live := readFrame(t, ctx, conn)
	assert.Equal(t, "agent_completed", live["type"])
}

func TestWebSocketForwardsLiveEvents(t *testing.T) {
	ts := newTestServer(t, nil)

	conn, ctx := dialSession(t, ts, "arch_ws000002")

	// No history frame is sent for a fresh session, so the ping round
	// trip proves the subscription is registered before publishing.
	writeFrame(t, ctx, conn, `{"type":"ping"}`)
	pong := readFrame(t, ctx, conn)
	require.Equal(t, "pong", pong["type"])

	ts.bus.Publish("arch_ws000002", bus.FindingDiscovered("devils_advocate", "high", "scalability", "api", "No cache"))

	frame := readFrame(t, ctx, conn)
	assert.Equal(t, "finding_discovered", frame["type"])
	assert.Equal(t, "high", frame["severity"])
}

func TestWebSocketInvalidJSON(t *testing.T) {
	ts := newTestServer(t, nil)

	conn, ctx := dialSession(t, ts, "arch_ws000003")

	writeFrame(t, ctx, conn, "not json at all")
	frame := readFrame(t, ctx, conn)
	assert.Equal(t, "error", frame["type"])
	assert.Equal(t, "Invalid JSON", frame["message"])
}

func TestWebSocketCancelCommand(t *testing.T) {
	ts := newTestServer(t, nil)

	state := models.NewSessionState("arch_ws000004", validRequirements, models.Preferences{})
	state.Status = models.StatusDesigning
	seedSession(t, ts, state)

	conn, ctx := dialSession(t, ts, "arch_ws000004")

	writeFrame(t, ctx, conn, `{"type":"cancel"}`)

	// Two frames arrive in unspecified order relative to each other:
	// the session_cancelled broadcast and the info acknowledgement.
	types := map[string]bool{}
	for i := 0; i < 2; i++ {
		frame := readFrame(t, ctx, conn)
		types[frame["type"].(string)] = true
	}
	assert.True(t, types["session_cancelled"], "expected session_cancelled, got %v", types)
	assert.True(t, types["info"], "expected info ack, got %v", types)

	stored, err := ts.store.Get(context.Background(), "arch_ws000004")
	require.NoError(t, err)
	assert.Equal(t, models.StatusCancelled, stored.Status)
}

func TestWebSocketForceProceedAck(t *testing.T) {
	ts := newTestServer(t, nil)

	conn, ctx := dialSession(t, ts, "arch_ws000005")

	writeFrame(t, ctx, conn, `{"type":"force_proceed"}`)
	frame := readFrame(t, ctx, conn)
	assert.Equal(t, "info", frame["type"])
	assert.Equal(t, "Force proceed requested", frame["message"])
}

func TestWebSocketUpgradeRequired(t *testing.T) {
	ts := newTestServer(t, nil)

	rec := ts.do(http.MethodGet, "/ws/sessions/arch_ws000006", "")
	assert.NotEqual(t, http.StatusOK, rec.Code)
}
