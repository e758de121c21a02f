package api

import (
	"errors"
	"net/http"

	"github.com/fluxorio/todo-service/pkg/auth"
	"github.com/fluxorio/todo-service/pkg/web"
)

// AuthHandler handles authentication requests
type AuthHandler struct {
	service *auth.Service
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(service *auth.Service) *AuthHandler {
	if service == nil {
		panic("api: auth service cannot be nil")
	}
	return &AuthHandler{service: service}
}

// Register mounts the auth routes on the router
func (h *AuthHandler) Register(router *web.Router) {
	router.POST("/auth/register", h.RegisterUser)
	router.POST("/auth/login", h.Login)
}

// RegisterUser handles POST /auth/register
func (h *AuthHandler) RegisterUser(ctx *web.RequestContext) error {
	var req auth.RegisterRequest
	if err := ctx.BindJSON(&req); err != nil {
		return ctx.Error(http.StatusBadRequest, "invalid_request", "invalid JSON")
	}

	user, err := h.service.Register(ctx.Context(), req)
	if err != nil {
		if errors.Is(err, auth.ErrUserExists) {
			return ctx.Error(http.StatusConflict, "user_exists", err.Error())
		}
		return ctx.Error(http.StatusBadRequest, "registration_failed", err.Error())
	}

	return ctx.JSON(http.StatusCreated, map[string]interface{}{
		"message": "user created successfully",
		"user": map[string]interface{}{
			"id":       user.ID,
			"username": user.Username,
			"email":    user.Email,
		},
	})
}

// Login handles POST /auth/login
func (h *AuthHandler) Login(ctx *web.RequestContext) error {
	var req auth.LoginRequest
	if err := ctx.BindJSON(&req); err != nil {
		return ctx.Error(http.StatusBadRequest, "invalid_request", "invalid JSON")
	}

	token, err := h.service.Login(ctx.Context(), req)
	if err != nil {
		return ctx.Error(http.StatusUnauthorized, "authentication_failed", "invalid username or password")
	}
	return ctx.JSON(http.StatusOK, token)
}
