package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/fluxorio/todo-service/pkg/web"
)

func serve(t *testing.T, router *web.Router, req *http.Request) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestRecovery(t *testing.T) {
	router := web.NewRouter(nil)
	router.Use(Recovery(DefaultRecoveryConfig()))
	router.GET("/panic", func(ctx *web.RequestContext) error {
		panic("boom")
	})
	router.GET("/ok", func(ctx *web.RequestContext) error {
		return ctx.Text(http.StatusOK, "fine")
	})

	rec := serve(t, router, httptest.NewRequest(http.MethodGet, "/panic", nil))
	if rec.Code != http.StatusInternalServerError {
		t.Errorf("expected 500 after panic, got %d", rec.Code)
	}

	// The router keeps serving after a recovered panic
	rec = serve(t, router, httptest.NewRequest(http.MethodGet, "/ok", nil))
	if rec.Code != http.StatusOK {
		t.Errorf("expected 200 after recovery, got %d", rec.Code)
	}
}

func TestRecoveryPreservesResponse(t *testing.T) {
	router := web.NewRouter(nil)
	router.Use(Recovery(DefaultRecoveryConfig()))
	router.GET("/late", func(ctx *web.RequestContext) error {
		_ = ctx.Text(http.StatusAccepted, "partial")
		panic("after write")
	})

	rec := serve(t, router, httptest.NewRequest(http.MethodGet, "/late", nil))
	if rec.Code != http.StatusAccepted {
		t.Errorf("status must not be overwritten after a write, got %d", rec.Code)
	}
}

func TestTimeout(t *testing.T) {
	router := web.NewRouter(nil)
	router.Use(Timeout(DefaultTimeoutConfig(20 * time.Millisecond)))
	router.GET("/slow", func(ctx *web.RequestContext) error {
		select {
		case <-ctx.Context().Done():
			return ctx.Context().Err()
		case <-time.After(time.Second):
			return ctx.Text(http.StatusOK, "too late")
		}
	})
	router.GET("/fast", func(ctx *web.RequestContext) error {
		return ctx.Text(http.StatusOK, "quick")
	})

	rec := serve(t, router, httptest.NewRequest(http.MethodGet, "/slow", nil))
	if rec.Code != http.StatusGatewayTimeout {
		t.Errorf("expected 504 on timeout, got %d", rec.Code)
	}

	rec = serve(t, router, httptest.NewRequest(http.MethodGet, "/fast", nil))
	if rec.Code != http.StatusOK {
		t.Errorf("expected 200 for a fast handler, got %d", rec.Code)
	}
}

func TestTimeoutSkipPaths(t *testing.T) {
	cfg := DefaultTimeoutConfig(20 * time.Millisecond)
	cfg.SkipPaths = []string{"/stream"}

	router := web.NewRouter(nil)
	router.Use(Timeout(cfg))
	router.GET("/stream/events", func(ctx *web.RequestContext) error {
		if _, ok := ctx.Context().Deadline(); ok {
			return ctx.Error(http.StatusInternalServerError, "deadline", "unexpected deadline")
		}
		return ctx.Text(http.StatusOK, "streaming")
	})

	rec := serve(t, router, httptest.NewRequest(http.MethodGet, "/stream/events", nil))
	if rec.Code != http.StatusOK {
		t.Errorf("expected skip path to bypass the deadline, got %d", rec.Code)
	}
}

func TestRequestID(t *testing.T) {
	router := web.NewRouter(nil)
	router.Use(RequestID())

	var seen string
	router.GET("/ping", func(ctx *web.RequestContext) error {
		seen = ctx.RequestID()
		return ctx.NoContent(http.StatusNoContent)
	})

	rec := serve(t, router, httptest.NewRequest(http.MethodGet, "/ping", nil))
	header := rec.Header().Get(RequestIDHeader)
	if header == "" {
		t.Fatal("expected a generated request ID header")
	}
	if seen != header {
		t.Errorf("context ID %q does not match header %q", seen, header)
	}

	// A client-supplied ID is honored
	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set(RequestIDHeader, "client-supplied")
	rec = serve(t, router, req)
	if got := rec.Header().Get(RequestIDHeader); got != "client-supplied" {
		t.Errorf("expected client ID echoed, got %q", got)
	}
	if seen != "client-supplied" {
		t.Errorf("expected client ID in context, got %q", seen)
	}
}
