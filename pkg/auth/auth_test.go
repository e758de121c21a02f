package auth

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	_ "github.com/mattn/go-sqlite3"
)

const testSecret = "unit-test-secret"

func TestRegisterAndLogin(t *testing.T) {
	svc := NewService(NewMemoryStore(), testSecret, time.Hour)
	ctx := context.Background()

	user, err := svc.Register(ctx, RegisterRequest{
		Username: "alice",
		Email:    "alice@example.com",
		Password: "s3cret",
	})
	if err != nil {
		t.Fatalf("Register failed: %v", err)
	}
	if user.PasswordHash == "s3cret" {
		t.Error("password must not be stored in plaintext")
	}

	resp, err := svc.Login(ctx, LoginRequest{Username: "alice", Password: "s3cret"})
	if err != nil {
		t.Fatalf("Login failed: %v", err)
	}
	if resp.Token == "" {
		t.Fatal("expected a signed token")
	}
	if !resp.ExpiresAt.After(time.Now()) {
		t.Error("expected a future expiry")
	}

	// The token carries the user id as subject
	claims := jwt.MapClaims{}
	_, err = jwt.ParseWithClaims(resp.Token, claims, func(*jwt.Token) (interface{}, error) {
		return []byte(testSecret), nil
	}, jwt.WithValidMethods([]string{"HS256"}))
	if err != nil {
		t.Fatalf("token does not verify: %v", err)
	}
	sub, err := claims.GetSubject()
	if err != nil || sub != user.ID.String() {
		t.Errorf("expected subject %s, got %q (%v)", user.ID, sub, err)
	}
}

func TestLoginRejections(t *testing.T) {
	svc := NewService(NewMemoryStore(), testSecret, time.Hour)
	ctx := context.Background()

	if _, err := svc.Register(ctx, RegisterRequest{
		Username: "bob", Email: "bob@example.com", Password: "hunter2",
	}); err != nil {
		t.Fatalf("Register failed: %v", err)
	}

	tests := []struct {
		name     string
		username string
		password string
	}{
		{"wrong password", "bob", "wrong"},
		{"unknown user", "nobody", "hunter2"},
		{"empty password", "bob", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Login(ctx, LoginRequest{Username: tt.username, Password: tt.password})
			if !errors.Is(err, ErrInvalidCredentials) {
				t.Errorf("expected ErrInvalidCredentials, got %v", err)
			}
		})
	}
}

func TestRegisterValidation(t *testing.T) {
	svc := NewService(NewMemoryStore(), testSecret, time.Hour)
	ctx := context.Background()

	tests := []struct {
		name string
		req  RegisterRequest
	}{
		{"missing username", RegisterRequest{Email: "a@b.c", Password: "x"}},
		{"whitespace username", RegisterRequest{Username: "  ", Email: "a@b.c", Password: "x"}},
		{"missing email", RegisterRequest{Username: "a", Password: "x"}},
		{"missing password", RegisterRequest{Username: "a", Email: "a@b.c"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := svc.Register(ctx, tt.req); err == nil {
				t.Error("expected a validation error")
			}
		})
	}
}

func TestDuplicateUsername(t *testing.T) {
	svc := NewService(NewMemoryStore(), testSecret, time.Hour)
	ctx := context.Background()

	req := RegisterRequest{Username: "carol", Email: "carol@example.com", Password: "pw"}
	if _, err := svc.Register(ctx, req); err != nil {
		t.Fatalf("Register failed: %v", err)
	}
	if _, err := svc.Register(ctx, req); !errors.Is(err, ErrUserExists) {
		t.Errorf("expected ErrUserExists, got %v", err)
	}
}

func setupSQLStore(t *testing.T) *SQLStore {
	t.Helper()
	db, err := sql.Open("sqlite3", ":memory:")
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })

	store := NewSQLStore(db, "sqlite3")
	if err := store.Migrate(context.Background()); err != nil {
		t.Fatalf("failed to migrate: %v", err)
	}
	return store
}

func TestSQLStore(t *testing.T) {
	store := setupSQLStore(t)
	svc := NewService(store, testSecret, time.Hour)
	ctx := context.Background()

	user, err := svc.Register(ctx, RegisterRequest{
		Username: "Dave",
		Email:    "dave@example.com",
		Password: "pw",
	})
	if err != nil {
		t.Fatalf("Register failed: %v", err)
	}

	// Lookup is case-insensitive
	stored, err := store.GetUserByUsername(ctx, "dave")
	if err != nil {
		t.Fatalf("GetUserByUsername failed: %v", err)
	}
	if stored.ID != user.ID || stored.Email != "dave@example.com" {
		t.Errorf("stored user mismatch: %+v", stored)
	}

	if _, err := svc.Login(ctx, LoginRequest{Username: "Dave", Password: "pw"}); err != nil {
		t.Errorf("Login against SQL store failed: %v", err)
	}

	if err := store.CreateUser(ctx, *user); !errors.Is(err, ErrUserExists) {
		t.Errorf("expected ErrUserExists, got %v", err)
	}

	if _, err := store.GetUserByUsername(ctx, "nobody"); !errors.Is(err, ErrUserNotFound) {
		t.Errorf("expected ErrUserNotFound, got %v", err)
	}
}

func TestGenerateSecretKey(t *testing.T) {
	a, err := GenerateSecretKey()
	if err != nil {
		t.Fatalf("GenerateSecretKey failed: %v", err)
	}
	b, err := GenerateSecretKey()
	if err != nil {
		t.Fatalf("GenerateSecretKey failed: %v", err)
	}
	if a == "" || a == b {
		t.Error("expected distinct non-empty secrets")
	}
}
