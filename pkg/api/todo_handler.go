// Package api contains the HTTP handlers for the todo service.
package api

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/google/uuid"

	"github.com/fluxorio/todo-service/pkg/todo"
	"github.com/fluxorio/todo-service/pkg/web"
)

// TodoHandler handles todo-related requests
type TodoHandler struct {
	service *todo.Service
}

// NewTodoHandler creates a new todo handler
func NewTodoHandler(service *todo.Service) *TodoHandler {
	if service == nil {
		panic("api: service cannot be nil")
	}
	return &TodoHandler{service: service}
}

// Register mounts the todo routes on the router
func (h *TodoHandler) Register(router *web.Router) {
	router.GET("/todos", h.List)
	router.POST("/todos", h.Create)
	router.GET("/todos/:id", h.Get)
	router.PUT("/todos/:id", h.Update)
	router.DELETE("/todos/:id", h.Delete)
	router.POST("/todos/:id/toggle", h.Toggle)
}

// writeError maps domain error codes to HTTP responses
func writeError(ctx *web.RequestContext, err error) error {
	var te *todo.Error
	if errors.As(err, &te) {
		switch te.Code {
		case todo.CodeNotFound:
			return ctx.Error(http.StatusNotFound, "not_found", te.Message)
		case todo.CodeValidation:
			return ctx.Error(http.StatusBadRequest, "validation_error", te.Message)
		case todo.CodeConflict:
			return ctx.Error(http.StatusConflict, "conflict", te.Message)
		case todo.CodeUnavailable:
			return ctx.Error(http.StatusBadGateway, "upstream_unavailable", te.Message)
		}
	}
	return ctx.Error(http.StatusInternalServerError, "internal_server_error", "internal server error")
}

// parseID extracts and validates the :id path parameter
func parseID(ctx *web.RequestContext) (uuid.UUID, bool) {
	id, err := uuid.Parse(ctx.Param("id"))
	if err != nil {
		_ = ctx.Error(http.StatusBadRequest, "invalid_id", "invalid todo ID")
		return uuid.Nil, false
	}
	return id, true
}

// List handles GET /todos
func (h *TodoHandler) List(ctx *web.RequestContext) error {
	opts := todo.ListOptions{}

	if pageStr := ctx.Query("page"); pageStr != "" {
		if p, err := strconv.Atoi(pageStr); err == nil && p > 0 {
			opts.Page = p
		}
	}
	if sizeStr := ctx.Query("page_size"); sizeStr != "" {
		if s, err := strconv.Atoi(sizeStr); err == nil && s > 0 && s <= 100 {
			opts.PageSize = s
		}
	}
	if completedStr := ctx.Query("completed"); completedStr != "" {
		if c, err := strconv.ParseBool(completedStr); err == nil {
			opts.Completed = &c
		}
	}

	resp, err := h.service.List(ctx.Context(), opts)
	if err != nil {
		return writeError(ctx, err)
	}
	return ctx.JSON(http.StatusOK, resp)
}

// Get handles GET /todos/:id
func (h *TodoHandler) Get(ctx *web.RequestContext) error {
	id, ok := parseID(ctx)
	if !ok {
		return nil
	}
	t, err := h.service.Get(ctx.Context(), id)
	if err != nil {
		return writeError(ctx, err)
	}
	return ctx.JSON(http.StatusOK, t)
}

// Create handles POST /todos
func (h *TodoHandler) Create(ctx *web.RequestContext) error {
	var req todo.CreateTodoRequest
	if err := ctx.BindJSON(&req); err != nil {
		return ctx.Error(http.StatusBadRequest, "invalid_request", "invalid JSON")
	}
	t, err := h.service.Create(ctx.Context(), req)
	if err != nil {
		return writeError(ctx, err)
	}
	return ctx.JSON(http.StatusCreated, t)
}

// Update handles PUT /todos/:id
func (h *TodoHandler) Update(ctx *web.RequestContext) error {
	id, ok := parseID(ctx)
	if !ok {
		return nil
	}
	var req todo.UpdateTodoRequest
	if err := ctx.BindJSON(&req); err != nil {
		return ctx.Error(http.StatusBadRequest, "invalid_request", "invalid JSON")
	}
	t, err := h.service.Update(ctx.Context(), id, req)
	if err != nil {
		return writeError(ctx, err)
	}
	return ctx.JSON(http.StatusOK, t)
}

// Delete handles DELETE /todos/:id
func (h *TodoHandler) Delete(ctx *web.RequestContext) error {
	id, ok := parseID(ctx)
	if !ok {
		return nil
	}
	if err := h.service.Delete(ctx.Context(), id); err != nil {
		return writeError(ctx, err)
	}
	return ctx.NoContent(http.StatusNoContent)
}

// Toggle handles POST /todos/:id/toggle
func (h *TodoHandler) Toggle(ctx *web.RequestContext) error {
	id, ok := parseID(ctx)
	if !ok {
		return nil
	}
	t, err := h.service.Toggle(ctx.Context(), id)
	if err != nil {
		return writeError(ctx, err)
	}
	return ctx.JSON(http.StatusOK, t)
}
