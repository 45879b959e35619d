package api

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/archadvisor/archadvisor/pkg/bus"
	"github.com/archadvisor/archadvisor/pkg/models"
	"github.com/archadvisor/archadvisor/pkg/session"
)

// newSessionID generates a short, readable session id.
func newSessionID() string {
	return "arch_" + uuid.New().String()[:8]
}

// stepsCompleted maps a session status onto pipeline progress out of 5.
var stepsCompleted = map[models.Status]int{
	models.StatusInitializing:      0,
	models.StatusRetrievingContext: 1,
	models.StatusDesigning:         2,
	models.StatusValidating:        3,
	models.StatusReviewing:         3,
	models.StatusRevising:          3,
	models.StatusCosting:           4,
	models.StatusDocumenting:       5,
	models.StatusComplete:          5,
	models.StatusError:             -1,
	models.StatusCancelled:         -1,
}

// currentAgent maps an in-flight status to the agent driving it.
var currentAgent = map[models.Status]string{
	models.StatusDesigning:   "architect",
	models.StatusValidating:  "validator",
	models.StatusReviewing:   "devils_advocate",
	models.StatusRevising:    "architect",
	models.StatusCosting:     "cost_analyzer",
	models.StatusDocumenting: "documentation",
}

// createSessionHandler handles POST /api/v1/sessions. The workflow runs
// in a background goroutine; clients follow progress over WebSocket.
func (s *Server) createSessionHandler(c *gin.Context) {
	var req CreateSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidationError(c, err)
		return
	}
	req.Preferences.applyDefaults()

	fingerprint := c.ClientIP()
	if !s.limiter.Allow(fingerprint) {
		c.JSON(http.StatusTooManyRequests, gin.H{
			"error": "Rate limit exceeded",
			"message": fmt.Sprintf("Maximum %d sessions per day. Try again later.",
				s.cfg.RateLimitMaxSessions),
			"remaining":           s.limiter.Remaining(fingerprint),
			"retry_after_seconds": int(s.limiter.ResetTime(fingerprint).Seconds()),
		})
		return
	}

	sessionID := newSessionID()
	state := models.NewSessionState(sessionID, req.Requirements, models.Preferences{
		CloudProvider:   req.Preferences.CloudProvider,
		MaxDebateRounds: req.Preferences.MaxDebateRounds,
		DetailLevel:     req.Preferences.DetailLevel,
	})
	state.ClientFingerprint = fingerprint

	if err := s.store.Create(c.Request.Context(), state); err != nil {
		respondStoreError(c, sessionID, err)
		return
	}

	ctx := s.registry.Register(context.Background(), sessionID)
	go func() {
		defer s.registry.Release(sessionID)
		s.engine.Run(ctx, state)
	}()

	slog.Info("Session accepted",
		"session_id", sessionID,
		"requirements_length", len(req.Requirements),
		"client_ip", fingerprint,
	)

	c.JSON(http.StatusAccepted, CreateSessionResponse{
		SessionID:                sessionID,
		Status:                   string(models.StatusDesigning),
		CreatedAt:                state.StartedAt,
		WebSocketURL:             "/ws/sessions/" + sessionID,
		EstimatedDurationSeconds: 120,
		EstimatedCostUSD:         0.18,
	})
}

// getSessionHandler handles GET /api/v1/sessions/:id.
func (s *Server) getSessionHandler(c *gin.Context) {
	sessionID := c.Param("id")

	state, err := s.store.Get(c.Request.Context(), sessionID)
	if err != nil {
		respondStoreError(c, sessionID, err)
		return
	}

	c.JSON(http.StatusOK, statusResponse(state, true))
}

// getSessionOutputHandler handles GET /api/v1/sessions/:id/output.
func (s *Server) getSessionOutputHandler(c *gin.Context) {
	sessionID := c.Param("id")

	state, err := s.store.Get(c.Request.Context(), sessionID)
	if err != nil {
		respondStoreError(c, sessionID, err)
		return
	}
	if state.Status != models.StatusComplete {
		respondConflict(c, fmt.Sprintf("Session is not complete. Current status: %s", state.Status))
		return
	}

	diagrams := make([]DiagramOutput, 0, len(state.MermaidDiagrams))
	for _, d := range state.MermaidDiagrams {
		diagrams = append(diagrams, DiagramOutput{
			Type:        d.Type,
			Title:       d.Title,
			MermaidCode: d.MermaidCode,
		})
	}

	document := state.RenderedMarkdown
	if document == "" {
		document = "# No document generated"
	}

	c.JSON(http.StatusOK, SessionOutputResponse{
		SessionID: sessionID,
		Format:    "markdown",
		Document:  document,
		Diagrams:  diagrams,
		Metadata: SessionOutputMetadata{
			TotalDurationSeconds: round2(sessionDurationSeconds(state)),
			TotalCostUSD:         round4(state.TotalCostUSD),
			DebateRounds:         state.DebateRound,
			ModelsUsed:           modelsUsed(state.Messages),
		},
	})
}

// cancelSessionHandler handles POST /api/v1/sessions/:id/cancel.
func (s *Server) cancelSessionHandler(c *gin.Context) {
	sessionID := c.Param("id")

	status, err := s.cancelSession(c.Request.Context(), sessionID)
	if errors.Is(err, errAlreadyTerminal) {
		respondConflict(c, fmt.Sprintf("Session is already %s", status))
		return
	}
	if err != nil {
		respondStoreError(c, sessionID, err)
		return
	}

	c.JSON(http.StatusOK, CancelResponse{SessionID: sessionID, Status: string(status)})
}

// listSessionsHandler handles GET /api/v1/sessions: recent sessions
// belonging to the requesting client's fingerprint, newest first.
func (s *Server) listSessionsHandler(c *gin.Context) {
	limit := 20
	if v := c.Query("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 || n > 100 {
			respondValidationError(c, fmt.Errorf("limit must be an integer in [1,100], got %q", v))
			return
		}
		limit = n
	}

	fingerprint := c.ClientIP()

	// Over-fetch so the ownership filter still fills the page.
	ids, err := s.store.ListRecent(c.Request.Context(), limit*5)
	if err != nil {
		respondStoreError(c, "", err)
		return
	}

	sessions := make([]SessionStatusResponse, 0, limit)
	for _, id := range ids {
		state, err := s.store.Get(c.Request.Context(), id)
		if errors.Is(err, session.ErrNotFound) {
			continue
		}
		if err != nil {
			respondStoreError(c, id, err)
			return
		}
		if state.ClientFingerprint != fingerprint {
			continue
		}
		sessions = append(sessions, statusResponse(state, false))
		if len(sessions) >= limit {
			break
		}
	}

	c.JSON(http.StatusOK, sessions)
}

// listTemplatesHandler handles GET /api/v1/templates.
func (s *Server) listTemplatesHandler(c *gin.Context) {
	c.JSON(http.StatusOK, sampleTemplates)
}

var errAlreadyTerminal = errors.New("session already terminal")

// cancelSession is the shared cancellation path behind the REST endpoint
// and the WebSocket cancel command: persist the cancelled status, notify
// stream listeners, and stop the running workflow.
func (s *Server) cancelSession(ctx context.Context, sessionID string) (models.Status, error) {
	state, err := s.store.Get(ctx, sessionID)
	if err != nil {
		return "", err
	}
	if state.Status.Terminal() {
		return state.Status, errAlreadyTerminal
	}

	err = s.store.Update(ctx, sessionID, func(st *models.SessionState) {
		st.Status = models.StatusCancelled
		st.CompletedAt = time.Now().UTC().Format(time.RFC3339)
	})
	if err != nil {
		return "", err
	}

	s.bus.Publish(sessionID, bus.SessionCancelled("Session was cancelled by user"))
	s.registry.Cancel(sessionID)

	slog.Info("Session cancelled", "session_id", sessionID)
	return models.StatusCancelled, nil
}

func statusResponse(state *models.SessionState, includeMessages bool) SessionStatusResponse {
	resp := SessionStatusResponse{
		SessionID: state.SessionID,
		Status:    string(state.Status),
		Progress: SessionProgress{
			CurrentAgent:   currentAgent[state.Status],
			DebateRound:    state.DebateRound,
			StepsCompleted: stepsCompleted[state.Status],
			TotalSteps:     5,
		},
		Messages:     []AgentMessageResponse{},
		CostSoFarUSD: state.TotalCostUSD,
		CreatedAt:    state.StartedAt,
		CompletedAt:  state.CompletedAt,
	}
	if includeMessages {
		for _, msg := range state.Messages {
			resp.Messages = append(resp.Messages, AgentMessageResponse{
				Agent:           msg.Agent,
				Role:            msg.Role,
				Summary:         msg.Summary,
				Timestamp:       msg.Timestamp,
				DurationSeconds: msg.DurationSeconds,
				Model:           msg.Model,
				CostUSD:         msg.CostUSD,
			})
		}
	}
	return resp
}

// modelsUsed collects the distinct models in message order.
func modelsUsed(messages []models.AgentMessage) []string {
	seen := make(map[string]bool)
	used := []string{}
	for _, msg := range messages {
		model := msg.Model
		if model == "" {
			model = "unknown"
		}
		if !seen[model] {
			seen[model] = true
			used = append(used, model)
		}
	}
	return used
}

func sessionDurationSeconds(state *models.SessionState) float64 {
	started, err1 := time.Parse(time.RFC3339, state.StartedAt)
	completed, err2 := time.Parse(time.RFC3339, state.CompletedAt)
	if err1 != nil || err2 != nil {
		return 0
	}
	return completed.Sub(started).Seconds()
}

func round2(v float64) float64 {
	return float64(int64(v*100+0.5)) / 100
}

func round4(v float64) float64 {
	return float64(int64(v*10000+0.5)) / 10000
}
