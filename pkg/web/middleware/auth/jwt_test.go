package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/fluxorio/todo-service/pkg/web"
)

const testSecret = "test-secret-key"

func signToken(t *testing.T, secret string, claims jwt.MapClaims) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(secret))
	if err != nil {
		t.Fatalf("failed to sign token: %v", err)
	}
	return signed
}

func protectedRouter(cfg JWTConfig) *web.Router {
	router := web.NewRouter(nil)
	router.Use(JWT(cfg))
	router.GET("/secure", func(ctx *web.RequestContext) error {
		sub, err := GetSubject(ctx)
		if err != nil {
			return ctx.Error(http.StatusInternalServerError, "no_subject", err.Error())
		}
		return ctx.Text(http.StatusOK, sub)
	})
	router.GET("/public/info", func(ctx *web.RequestContext) error {
		return ctx.Text(http.StatusOK, "open")
	})
	return router
}

func request(router *web.Router, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/secure", nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestJWTValidToken(t *testing.T) {
	router := protectedRouter(DefaultJWTConfig(testSecret))
	token := signToken(t, testSecret, jwt.MapClaims{
		"sub": "alice",
		"exp": time.Now().Add(time.Hour).Unix(),
	})

	rec := request(router, token)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if rec.Body.String() != "alice" {
		t.Errorf("expected subject from claims, got %q", rec.Body.String())
	}
}

func TestJWTRejections(t *testing.T) {
	router := protectedRouter(DefaultJWTConfig(testSecret))

	tests := []struct {
		name  string
		token string
	}{
		{"missing token", ""},
		{"garbage token", "not.a.token"},
		{"wrong secret", signToken(t, "other-secret", jwt.MapClaims{
			"sub": "mallory",
			"exp": time.Now().Add(time.Hour).Unix(),
		})},
		{"expired token", signToken(t, testSecret, jwt.MapClaims{
			"sub": "alice",
			"exp": time.Now().Add(-time.Hour).Unix(),
		})},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := request(router, tt.token)
			if rec.Code != http.StatusUnauthorized {
				t.Errorf("expected 401, got %d", rec.Code)
			}
		})
	}
}

func TestJWTWrongScheme(t *testing.T) {
	router := protectedRouter(DefaultJWTConfig(testSecret))
	req := httptest.NewRequest(http.MethodGet, "/secure", nil)
	req.Header.Set("Authorization", "Basic dXNlcjpwYXNz")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("expected 401 for non-bearer scheme, got %d", rec.Code)
	}
}

func TestJWTSkipPaths(t *testing.T) {
	cfg := DefaultJWTConfig(testSecret)
	cfg.SkipPaths = []string{"/public/"}
	router := protectedRouter(cfg)

	req := httptest.NewRequest(http.MethodGet, "/public/info", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Errorf("expected skip path to bypass auth, got %d", rec.Code)
	}
}

func TestJWTIssuer(t *testing.T) {
	cfg := DefaultJWTConfig(testSecret)
	cfg.Issuer = "todo-service"
	router := protectedRouter(cfg)

	good := signToken(t, testSecret, jwt.MapClaims{
		"sub": "alice",
		"iss": "todo-service",
		"exp": time.Now().Add(time.Hour).Unix(),
	})
	if rec := request(router, good); rec.Code != http.StatusOK {
		t.Errorf("expected matching issuer accepted, got %d", rec.Code)
	}

	bad := signToken(t, testSecret, jwt.MapClaims{
		"sub": "alice",
		"iss": "someone-else",
		"exp": time.Now().Add(time.Hour).Unix(),
	})
	if rec := request(router, bad); rec.Code != http.StatusUnauthorized {
		t.Errorf("expected mismatched issuer rejected, got %d", rec.Code)
	}
}
