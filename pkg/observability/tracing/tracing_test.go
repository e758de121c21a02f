package tracing

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/fluxorio/todo-service/pkg/web"
)

func TestSetupNone(t *testing.T) {
	shutdown, err := Setup(Config{Exporter: "none"})
	if err != nil {
		t.Fatalf("Setup failed: %v", err)
	}
	if err := shutdown(context.Background()); err != nil {
		t.Errorf("shutdown failed: %v", err)
	}
}

func TestSetupUnknownExporter(t *testing.T) {
	if _, err := Setup(Config{Exporter: "xray"}); err == nil {
		t.Error("expected an error for an unknown exporter")
	}
}

func TestMiddlewarePassesThrough(t *testing.T) {
	shutdown, err := Setup(Config{Exporter: "none"})
	if err != nil {
		t.Fatalf("Setup failed: %v", err)
	}
	defer func() { _ = shutdown(context.Background()) }()

	router := web.NewRouter(nil)
	router.Use(Middleware())
	router.GET("/traced", func(ctx *web.RequestContext) error {
		return ctx.Text(http.StatusOK, "ok")
	})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/traced", nil))
	if rec.Code != http.StatusOK {
		t.Errorf("expected 200 through the tracing middleware, got %d", rec.Code)
	}
	if rec.Body.String() != "ok" {
		t.Errorf("unexpected body %q", rec.Body.String())
	}
}
