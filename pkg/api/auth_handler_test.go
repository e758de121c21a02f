package api

import (
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/fluxorio/todo-service/pkg/auth"
	"github.com/fluxorio/todo-service/pkg/web"
)

func setupAuthAPI(t *testing.T) *web.Router {
	t.Helper()
	router := web.NewRouter(nil)
	svc := auth.NewService(auth.NewMemoryStore(), "handler-test-secret", time.Hour)
	NewAuthHandler(svc).Register(router)
	return router
}

func TestRegisterUser(t *testing.T) {
	router := setupAuthAPI(t)

	rec := doJSON(t, router, http.MethodPost, "/auth/register", auth.RegisterRequest{
		Username: "alice",
		Email:    "alice@example.com",
		Password: "s3cret",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}

	var body struct {
		User struct {
			Username string `json:"username"`
			Email    string `json:"email"`
		} `json:"user"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("failed to decode body: %v", err)
	}
	if body.User.Username != "alice" || body.User.Email != "alice@example.com" {
		t.Errorf("unexpected user payload: %+v", body.User)
	}
	if json.Valid(rec.Body.Bytes()) && containsPassword(rec.Body.Bytes()) {
		t.Error("response must not leak the password")
	}

	// Duplicate registration conflicts
	rec = doJSON(t, router, http.MethodPost, "/auth/register", auth.RegisterRequest{
		Username: "alice",
		Email:    "alice@example.com",
		Password: "s3cret",
	})
	if rec.Code != http.StatusConflict {
		t.Errorf("expected 409 for duplicate username, got %d", rec.Code)
	}
}

func containsPassword(body []byte) bool {
	var m map[string]interface{}
	if err := json.Unmarshal(body, &m); err != nil {
		return false
	}
	_, ok := m["password"]
	return ok
}

func TestRegisterUserValidation(t *testing.T) {
	router := setupAuthAPI(t)

	rec := doJSON(t, router, http.MethodPost, "/auth/register", auth.RegisterRequest{Username: "no-password"})
	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400 for incomplete registration, got %d", rec.Code)
	}
}

func TestLogin(t *testing.T) {
	router := setupAuthAPI(t)

	rec := doJSON(t, router, http.MethodPost, "/auth/register", auth.RegisterRequest{
		Username: "bob",
		Email:    "bob@example.com",
		Password: "hunter2",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("registration failed: %d", rec.Code)
	}

	rec = doJSON(t, router, http.MethodPost, "/auth/login", auth.LoginRequest{
		Username: "bob",
		Password: "hunter2",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var token auth.TokenResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &token); err != nil {
		t.Fatalf("failed to decode token: %v", err)
	}
	if token.Token == "" || !token.ExpiresAt.After(time.Now()) {
		t.Errorf("unexpected token response: %+v", token)
	}

	rec = doJSON(t, router, http.MethodPost, "/auth/login", auth.LoginRequest{
		Username: "bob",
		Password: "wrong",
	})
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("expected 401 for bad credentials, got %d", rec.Code)
	}
}
