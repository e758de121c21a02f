package api

import (
	"context"
	"net/http"
	"time"

	"github.com/fluxorio/todo-service/pkg/todo"
	"github.com/fluxorio/todo-service/pkg/web"
)

// HealthHandler serves liveness and readiness probes
type HealthHandler struct {
	repo todo.Repository
}

// NewHealthHandler creates a health handler; repo may be nil, in which
// case readiness only reports process liveness
func NewHealthHandler(repo todo.Repository) *HealthHandler {
	return &HealthHandler{repo: repo}
}

// Register mounts the probe routes on the router
func (h *HealthHandler) Register(router *web.Router) {
	router.GET("/health", h.Health)
	router.GET("/ready", h.Ready)
}

// Health handles GET /health
func (h *HealthHandler) Health(ctx *web.RequestContext) error {
	return ctx.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

// Ready handles GET /ready; it probes the repository with a bounded list
func (h *HealthHandler) Ready(ctx *web.RequestContext) error {
	if h.repo == nil {
		return ctx.JSON(http.StatusOK, map[string]string{"status": "ready"})
	}

	probeCtx, cancel := context.WithTimeout(ctx.Context(), 2*time.Second)
	defer cancel()

	if _, err := h.repo.List(probeCtx, todo.ListOptions{Page: 1, PageSize: 1}); err != nil {
		return ctx.JSON(http.StatusServiceUnavailable, map[string]string{
			"status": "unavailable",
		})
	}
	return ctx.JSON(http.StatusOK, map[string]string{"status": "ready"})
}
