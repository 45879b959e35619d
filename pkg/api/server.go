// Package api is the HTTP and WebSocket surface of the orchestrator:
// session lifecycle endpoints under /api/v1 and per-session event
// streaming at /ws/sessions/:id.
package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/archadvisor/archadvisor/pkg/bus"
	"github.com/archadvisor/archadvisor/pkg/config"
	"github.com/archadvisor/archadvisor/pkg/ratelimit"
	"github.com/archadvisor/archadvisor/pkg/session"
	"github.com/archadvisor/archadvisor/pkg/workflow"
)

const apiVersion = "1.0.0"

// Server owns the HTTP handlers and the per-session workflow
// bookkeeping (cancel registry, rate limiter).
type Server struct {
	cfg      *config.Settings
	store    *session.Store
	bus      *bus.Bus
	engine   *workflow.Engine
	registry *workflow.CancelRegistry
	limiter  *ratelimit.SlidingWindow
	started  time.Time
}

func NewServer(cfg *config.Settings, store *session.Store, eventBus *bus.Bus, engine *workflow.Engine) *Server {
	return &Server{
		cfg:      cfg,
		store:    store,
		bus:      eventBus,
		engine:   engine,
		registry: workflow.NewCancelRegistry(),
		limiter: ratelimit.NewSlidingWindow(
			cfg.RateLimitMaxSessions,
			time.Duration(cfg.RateLimitWindowSeconds)*time.Second,
		),
		started: time.Now(),
	}
}

// Handler is the full HTTP surface. The REST API goes through gin; the
// WebSocket route is mounted on a plain ServeMux because the upgrade
// must hijack the raw http.ResponseWriter, which gin's wrapped writer
// rejects after the 101 response is written.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /ws/sessions/{id}", s.serveSessionWebSocket)
	mux.Handle("/", s.Router())
	return mux
}

// Router builds the gin engine with the REST routes attached.
func (s *Server) Router() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), requestLogger(), corsMiddleware())

	r.GET("/", s.rootHandler)

	v1 := r.Group("/api/v1")
	v1.GET("/health", s.healthHandler)
	v1.GET("/templates", s.listTemplatesHandler)
	v1.POST("/sessions", s.createSessionHandler)
	v1.GET("/sessions", s.listSessionsHandler)
	v1.GET("/sessions/:id", s.getSessionHandler)
	v1.GET("/sessions/:id/output", s.getSessionOutputHandler)
	v1.POST("/sessions/:id/cancel", s.cancelSessionHandler)

	return r
}

func (s *Server) rootHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"name":        "ArchAdvisor",
		"version":     apiVersion,
		"description": "Multi-agent AI architecture design system",
		"health":      "/api/v1/health",
	})
}
