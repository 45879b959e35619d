package api

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

const healthCheckTimeout = 5 * time.Second

// healthHandler handles GET /api/v1/health: overall status plus the
// health and latency of each backing dependency.
func (s *Server) healthHandler(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), healthCheckTimeout)
	defer cancel()

	deps := make(map[string]HealthDependency)

	if latency, err := s.store.Ping(ctx); err != nil {
		deps["redis"] = HealthDependency{Status: "unhealthy", Message: err.Error()}
	} else {
		deps["redis"] = HealthDependency{
			Status:    "healthy",
			LatencyMS: round2(float64(latency.Microseconds()) / 1000),
		}
	}

	status := "healthy"
	for _, d := range deps {
		if d.Status != "healthy" {
			status = "degraded"
			break
		}
	}

	c.JSON(http.StatusOK, HealthResponse{
		Status:        status,
		Version:       apiVersion,
		UptimeSeconds: round2(time.Since(s.started).Seconds()),
		Dependencies:  deps,
	})
}
