package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/archadvisor/archadvisor/pkg/bus"
	"github.com/archadvisor/archadvisor/pkg/config"
	"github.com/archadvisor/archadvisor/pkg/llm"
	"github.com/archadvisor/archadvisor/pkg/models"
	"github.com/archadvisor/archadvisor/pkg/session"
	"github.com/archadvisor/archadvisor/pkg/workflow"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// blockingLLM parks every completion until the session is cancelled, so
// handler tests control workflow lifetimes explicitly.
type blockingLLM struct{}

func (blockingLLM) Complete(ctx context.Context, _ llm.Request) (*llm.Response, error) {
	<-ctx.Done()
	return nil, ctx.Err()
}

type testServer struct {
	srv     *Server
	handler http.Handler
	store   *session.Store
	bus     *bus.Bus
	redis   *miniredis.Miniredis
}

func newTestServer(t *testing.T, mutate func(*config.Settings)) *testServer {
	t.Helper()

	mr := miniredis.RunT(t)
	store := session.NewStore(redis.NewClient(&redis.Options{Addr: mr.Addr()}))
	eventBus := bus.New()

	cfg := config.Defaults()
	if mutate != nil {
		mutate(cfg)
	}

	engine := workflow.NewEngine(cfg, blockingLLM{}, store, eventBus)
	srv := NewServer(cfg, store, eventBus, engine)

	return &testServer{
		srv:     srv,
		handler: srv.Handler(),
		store:   store,
		bus:     eventBus,
		redis:   mr,
	}
}

func (ts *testServer) do(method, path, body string) *httptest.ResponseRecorder {
	var reader *strings.Reader
	if body == "" {
		reader = strings.NewReader("")
	} else {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")

	rec := httptest.NewRecorder()
	ts.handler.ServeHTTP(rec, req)
	return rec
}

func decodeJSON(t *testing.T, rec *httptest.ResponseRecorder, v any) {
	t.Helper()
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), v))
}

const validRequirements = "Design an internal inventory tracking system for a small retail team with a handful of stores."

func seedSession(t *testing.T, ts *testServer, state *models.SessionState) {
	t.Helper()
	require.NoError(t, ts.store.Create(context.Background(), state))
}

func TestCreateSessionAccepted(t *testing.T) {
	ts := newTestServer(t, nil)

	body := `{"requirements": "` + validRequirements + `"}`
	rec := ts.do(http.MethodPost, "/api/v1/sessions", body)
	require.Equal(t, http.StatusAccepted, rec.Code)

	var resp CreateSessionResponse
	decodeJSON(t, rec, &resp)
	assert.True(t, strings.HasPrefix(resp.SessionID, "arch_"), "session id %q", resp.SessionID)
	assert.Len(t, resp.SessionID, len("arch_")+8)
	assert.Equal(t, "designing", resp.Status)
	assert.Equal(t, "/ws/sessions/"+resp.SessionID, resp.WebSocketURL)
	assert.Equal(t, 120, resp.EstimatedDurationSeconds)
	assert.InDelta(t, 0.18, resp.EstimatedCostUSD, 1e-9)

	state, err := ts.store.Get(context.Background(), resp.SessionID)
	require.NoError(t, err)
	assert.Equal(t, validRequirements, state.Requirements)
	assert.Equal(t, "192.0.2.1", state.ClientFingerprint)
	assert.Equal(t, 3, state.MaxDebateRounds)

	// Stop the background workflow.
	cancelRec := ts.do(http.MethodPost, "/api/v1/sessions/"+resp.SessionID+"/cancel", "")
	require.Equal(t, http.StatusOK, cancelRec.Code)
}

func TestCreateSessionValidatesRequirements(t *testing.T) {
	ts := newTestServer(t, nil)

	rec := ts.do(http.MethodPost, "/api/v1/sessions", `{"requirements": "too short"}`)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	var body map[string]any
	decodeJSON(t, rec, &body)
	assert.Equal(t, "validation_error", body["error"])
}

func TestCreateSessionRejectsBadPreferences(t *testing.T) {
	ts := newTestServer(t, nil)

	body := `{"requirements": "` + validRequirements + `", "preferences": {"max_debate_rounds": 9}}`
	rec := ts.do(http.MethodPost, "/api/v1/sessions", body)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

func TestCreateSessionRateLimited(t *testing.T) {
	ts := newTestServer(t, func(cfg *config.Settings) {
		cfg.RateLimitMaxSessions = 1
	})

	body := `{"requirements": "` + validRequirements + `"}`
	first := ts.do(http.MethodPost, "/api/v1/sessions", body)
	require.Equal(t, http.StatusAccepted, first.Code)

	second := ts.do(http.MethodPost, "/api/v1/sessions", body)
	require.Equal(t, http.StatusTooManyRequests, second.Code)

	var resp struct {
		Error             string `json:"error"`
		Remaining         int    `json:"remaining"`
		RetryAfterSeconds int    `json:"retry_after_seconds"`
	}
	decodeJSON(t, second, &resp)
	assert.Equal(t, "Rate limit exceeded", resp.Error)
	assert.Equal(t, 0, resp.Remaining)
	assert.Greater(t, resp.RetryAfterSeconds, 0)

	var created CreateSessionResponse
	decodeJSON(t, first, &created)
	ts.do(http.MethodPost, "/api/v1/sessions/"+created.SessionID+"/cancel", "")
}

func TestGetSessionNotFound(t *testing.T) {
	ts := newTestServer(t, nil)

	rec := ts.do(http.MethodGet, "/api/v1/sessions/arch_missing0", "")
	require.Equal(t, http.StatusNotFound, rec.Code)

	var body map[string]any
	decodeJSON(t, rec, &body)
	assert.Equal(t, "not_found", body["error"])
}

func TestGetSessionStatus(t *testing.T) {
	ts := newTestServer(t, nil)

	state := models.NewSessionState("arch_status01", validRequirements, models.Preferences{})
	state.Status = models.StatusReviewing
	state.DebateRound = 2
	state.TotalCostUSD = 0.0421
	state.Messages = append(state.Messages,
		models.AgentMessage{Agent: "architect", Role: "Architect", Summary: "Proposed design", Model: "gpt-4o", CostUSD: 0.03},
		models.AgentMessage{Agent: "validator", Role: "Design Validator", Summary: "PASS", Model: "deterministic"},
	)
	seedSession(t, ts, state)

	rec := ts.do(http.MethodGet, "/api/v1/sessions/arch_status01", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var resp SessionStatusResponse
	decodeJSON(t, rec, &resp)
	assert.Equal(t, "arch_status01", resp.SessionID)
	assert.Equal(t, "reviewing", resp.Status)
	assert.Equal(t, "devils_advocate", resp.Progress.CurrentAgent)
	assert.Equal(t, 3, resp.Progress.StepsCompleted)
	assert.Equal(t, 5, resp.Progress.TotalSteps)
	assert.Equal(t, 2, resp.Progress.DebateRound)
	require.Len(t, resp.Messages, 2)
	assert.Equal(t, "architect", resp.Messages[0].Agent)
	assert.InDelta(t, 0.0421, resp.CostSoFarUSD, 1e-9)
}

func TestGetSessionOutputConflictWhileRunning(t *testing.T) {
	ts := newTestServer(t, nil)

	state := models.NewSessionState("arch_running1", validRequirements, models.Preferences{})
	state.Status = models.StatusDesigning
	seedSession(t, ts, state)

	rec := ts.do(http.MethodGet, "/api/v1/sessions/arch_running1/output", "")
	require.Equal(t, http.StatusConflict, rec.Code)

	var body map[string]any
	decodeJSON(t, rec, &body)
	assert.Contains(t, body["message"], "Current status: designing")
}

func TestGetSessionOutput(t *testing.T) {
	ts := newTestServer(t, nil)

	started := time.Now().UTC().Add(-90 * time.Second)
	state := models.NewSessionState("arch_done0001", validRequirements, models.Preferences{})
	state.Status = models.StatusComplete
	state.StartedAt = started.Format(time.RFC3339)
	state.CompletedAt = started.Add(85 * time.Second).Format(time.RFC3339)
	state.DebateRound = 2
	state.TotalCostUSD = 0.123456
	state.RenderedMarkdown = "# Inventory System\n\nFinal document."
	state.MermaidDiagrams = []models.MermaidDiagram{
		{Type: "component", Title: "Component Diagram", MermaidCode: "graph TD"},
	}
	state.Messages = append(state.Messages,
		models.AgentMessage{Agent: "architect", Model: "gpt-4o"},
		models.AgentMessage{Agent: "validator", Model: "deterministic"},
		models.AgentMessage{Agent: "documentation", Model: "gpt-4o"},
	)
	seedSession(t, ts, state)

	rec := ts.do(http.MethodGet, "/api/v1/sessions/arch_done0001/output", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var resp SessionOutputResponse
	decodeJSON(t, rec, &resp)
	assert.Equal(t, "markdown", resp.Format)
	assert.Equal(t, "# Inventory System\n\nFinal document.", resp.Document)
	require.Len(t, resp.Diagrams, 1)
	assert.Equal(t, "Component Diagram", resp.Diagrams[0].Title)
	assert.InDelta(t, 85, resp.Metadata.TotalDurationSeconds, 0.01)
	assert.InDelta(t, 0.1235, resp.Metadata.TotalCostUSD, 1e-9)
	assert.Equal(t, 2, resp.Metadata.DebateRounds)
	assert.Equal(t, []string{"gpt-4o", "deterministic"}, resp.Metadata.ModelsUsed)
}

func TestCancelSession(t *testing.T) {
	ts := newTestServer(t, nil)

	state := models.NewSessionState("arch_cancel01", validRequirements, models.Preferences{})
	state.Status = models.StatusDesigning
	seedSession(t, ts, state)

	rec := ts.do(http.MethodPost, "/api/v1/sessions/arch_cancel01/cancel", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var resp CancelResponse
	decodeJSON(t, rec, &resp)
	assert.Equal(t, "cancelled", resp.Status)

	stored, err := ts.store.Get(context.Background(), "arch_cancel01")
	require.NoError(t, err)
	assert.Equal(t, models.StatusCancelled, stored.Status)
	assert.NotEmpty(t, stored.CompletedAt)

	history := ts.bus.History("arch_cancel01")
	require.NotEmpty(t, history)
	assert.Equal(t, "session_cancelled", history[len(history)-1].Type())

	// A second cancel conflicts.
	again := ts.do(http.MethodPost, "/api/v1/sessions/arch_cancel01/cancel", "")
	require.Equal(t, http.StatusConflict, again.Code)

	var body map[string]any
	decodeJSON(t, again, &body)
	assert.Contains(t, body["message"], "already cancelled")
}

func TestListSessionsFiltersByClient(t *testing.T) {
	ts := newTestServer(t, nil)

	mine := models.NewSessionState("arch_mine0001", validRequirements, models.Preferences{})
	mine.ClientFingerprint = "192.0.2.1"
	seedSession(t, ts, mine)

	other := models.NewSessionState("arch_other001", validRequirements, models.Preferences{})
	other.ClientFingerprint = "10.0.0.9"
	seedSession(t, ts, other)

	rec := ts.do(http.MethodGet, "/api/v1/sessions", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var resp []SessionStatusResponse
	decodeJSON(t, rec, &resp)
	require.Len(t, resp, 1)
	assert.Equal(t, "arch_mine0001", resp[0].SessionID)
	assert.Empty(t, resp[0].Messages)
}

func TestListSessionsRejectsBadLimit(t *testing.T) {
	ts := newTestServer(t, nil)

	rec := ts.do(http.MethodGet, "/api/v1/sessions?limit=500", "")
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

func TestListTemplates(t *testing.T) {
	ts := newTestServer(t, nil)

	rec := ts.do(http.MethodGet, "/api/v1/templates", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var resp []TemplateResponse
	decodeJSON(t, rec, &resp)
	require.Len(t, resp, 4)

	ids := make([]string, 0, len(resp))
	for _, tmpl := range resp {
		ids = append(ids, tmpl.ID)
		assert.NotEmpty(t, tmpl.Requirements)
	}
	assert.Equal(t, []string{"notification_system", "payment_gateway", "chat_platform", "data_pipeline"}, ids)
}

func TestHealthHealthy(t *testing.T) {
	ts := newTestServer(t, nil)

	rec := ts.do(http.MethodGet, "/api/v1/health", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var resp HealthResponse
	decodeJSON(t, rec, &resp)
	assert.Equal(t, "healthy", resp.Status)
	require.Contains(t, resp.Dependencies, "redis")
	assert.Equal(t, "healthy", resp.Dependencies["redis"].Status)
}

func TestHealthDegradedWhenRedisDown(t *testing.T) {
	ts := newTestServer(t, nil)
	ts.redis.Close()

	rec := ts.do(http.MethodGet, "/api/v1/health", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var resp HealthResponse
	decodeJSON(t, rec, &resp)
	assert.Equal(t, "degraded", resp.Status)
	assert.Equal(t, "unhealthy", resp.Dependencies["redis"].Status)
	assert.NotEmpty(t, resp.Dependencies["redis"].Message)
}

func TestRootServiceInfo(t *testing.T) {
	ts := newTestServer(t, nil)

	rec := ts.do(http.MethodGet, "/", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var body map[string]any
	decodeJSON(t, rec, &body)
	assert.Equal(t, "ArchAdvisor", body["name"])
	assert.Equal(t, "/api/v1/health", body["health"])
}
