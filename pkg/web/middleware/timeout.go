package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/fluxorio/todo-service/pkg/web"
)

// TimeoutConfig configures request timeout middleware
type TimeoutConfig struct {
	// Timeout is the request timeout duration
	Timeout time.Duration

	// Message is the error message when a timeout occurs
	Message string

	// SkipPaths is a list of path prefixes exempt from the timeout
	SkipPaths []string
}

// DefaultTimeoutConfig returns a default timeout configuration
func DefaultTimeoutConfig(timeout time.Duration) TimeoutConfig {
	return TimeoutConfig{
		Timeout: timeout,
		Message: "request timeout",
	}
}

// Timeout enforces a deadline on each request's context
func Timeout(config TimeoutConfig) web.Middleware {
	if config.Timeout <= 0 {
		panic("Timeout: timeout duration must be positive")
	}
	message := config.Message
	if message == "" {
		message = "request timeout"
	}

	return func(next web.RequestHandler) web.RequestHandler {
		return func(ctx *web.RequestContext) error {
			path := ctx.Request.URL.Path
			for _, skip := range config.SkipPaths {
				if path == skip || strings.HasPrefix(path, skip) {
					return next(ctx)
				}
			}

			reqCtx, cancel := context.WithTimeout(ctx.Context(), config.Timeout)
			defer cancel()
			ctx.WithContext(reqCtx)

			err := next(ctx)
			if errors.Is(err, context.DeadlineExceeded) && ctx.Response.Status() == 0 {
				return ctx.Error(http.StatusGatewayTimeout, "request_timeout", message)
			}
			return err
		}
	}
}
