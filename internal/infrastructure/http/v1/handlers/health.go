// Package handlers provides HTTP request handlers.
package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
)

// Pinger is a dependency checked by the readiness probe.
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthHandler provides health check endpoints.
type HealthHandler struct {
	checks map[string]Pinger
	mode   string
}

// NewHealthHandler creates a health handler. mode is reported by Ready ("postgres" or "memory").
func NewHealthHandler(mode string, checks map[string]Pinger) *HealthHandler {
	return &HealthHandler{checks: checks, mode: mode}
}

// Live handles liveness probe (is the process alive?).
// GET /health/live
func (h *HealthHandler) Live(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// Ready handles readiness probe (is the service ready to accept traffic?).
// GET /health/ready
func (h *HealthHandler) Ready(c *gin.Context) {
	status, code := "ok", http.StatusOK
	results := make(map[string]string, len(h.checks))
	for name, p := range h.checks {
		if p == nil {
			continue
		}
		if err := p.Ping(c.Request.Context()); err != nil {
			results[name] = "unhealthy: " + err.Error()
			status, code = "error", http.StatusServiceUnavailable
			continue
		}
		results[name] = "healthy"
	}

	c.JSON(code, gin.H{
		"status": status,
		"mode":   h.mode,
		"checks": results,
	})
}
