package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
)

// ReadinessChecker reports whether the content store can serve queries.
type ReadinessChecker interface {
	Status(ctx context.Context) error
}

// HealthResponse represents the health check response
type HealthResponse struct {
	Status       string `json:"status"`
	ContentStore string `json:"content_store,omitempty"`
}

// HealthHandler serves liveness and readiness probes.
type HealthHandler struct {
	checker ReadinessChecker
}

// NewHealthHandler creates a new health handler
func NewHealthHandler(checker ReadinessChecker) *HealthHandler {
	return &HealthHandler{checker: checker}
}

// HealthCheck handles the liveness endpoint
func (h *HealthHandler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, HealthResponse{Status: "ok"})
}

// ReadyCheck handles the readiness endpoint, verifying the content store
func (h *HealthHandler) ReadyCheck(c *gin.Context) {
	response := HealthResponse{Status: "ok"}

	if h.checker == nil {
		response.ContentStore = "not configured"
		c.JSON(http.StatusOK, response)
		return
	}

	if err := h.checker.Status(c.Request.Context()); err != nil {
		response.Status = "degraded"
		response.ContentStore = "disconnected"
		c.JSON(http.StatusServiceUnavailable, response)
		return
	}

	response.ContentStore = "connected"
	c.JSON(http.StatusOK, response)
}
