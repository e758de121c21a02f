package logging

import (
	"context"
	"testing"
)

func TestRequestIDRoundTrip(t *testing.T) {
	ctx := context.Background()
	if got := GetRequestID(ctx); got != "" {
		t.Errorf("expected empty id on a bare context, got %q", got)
	}

	ctx = WithRequestID(ctx, "req-123")
	if got := GetRequestID(ctx); got != "req-123" {
		t.Errorf("expected req-123, got %q", got)
	}
}

func TestGenerateRequestID(t *testing.T) {
	a := GenerateRequestID()
	b := GenerateRequestID()
	if a == "" || a == b {
		t.Error("expected distinct non-empty request IDs")
	}
}

func TestWithNewRequestID(t *testing.T) {
	ctx := WithNewRequestID(context.Background())
	if GetRequestID(ctx) == "" {
		t.Error("expected a request ID to be assigned")
	}
}

func TestWithContextAttachesRequestID(t *testing.T) {
	base := NewDefaultLogger()
	ctx := WithRequestID(context.Background(), "req-456")

	// Same logger back when no ID is present
	if got := base.WithContext(context.Background()); got != base {
		t.Error("expected the original logger for a context without an ID")
	}
	if got := base.WithContext(ctx); got == base {
		t.Error("expected a derived logger for a context carrying an ID")
	}
}

func TestWithFieldsDoesNotMutate(t *testing.T) {
	base := NewDefaultLogger()
	derived := base.WithFields(map[string]interface{}{"component": "test"})
	if derived == base {
		t.Error("expected WithFields to return a new logger")
	}
	// Deriving again must not affect the first derivation
	_ = derived.WithFields(map[string]interface{}{"extra": 1})
}

func TestJSONLoggerInterface(t *testing.T) {
	var l Logger = NewJSONLogger()
	l = l.WithFields(map[string]interface{}{"component": "test"})
	l = l.WithContext(WithRequestID(context.Background(), "req-789"))
	if l == nil {
		t.Fatal("expected a logger")
	}
}
