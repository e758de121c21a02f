// Package middleware provides HTTP middleware for the web router.
package middleware

import (
	"fmt"
	"net/http"

	"github.com/fluxorio/todo-service/pkg/logging"
	"github.com/fluxorio/todo-service/pkg/web"
)

// RecoveryConfig configures panic recovery middleware
type RecoveryConfig struct {
	// Logger is the logger used for panic logging (default: logging.NewDefaultLogger())
	Logger logging.Logger

	// StackTrace includes the panic value in the error response (use with caution)
	StackTrace bool
}

// DefaultRecoveryConfig returns a default recovery configuration
func DefaultRecoveryConfig() RecoveryConfig {
	return RecoveryConfig{
		Logger: logging.NewDefaultLogger(),
	}
}

// Recovery recovers from handler panics and returns a 500 error
func Recovery(config RecoveryConfig) web.Middleware {
	logger := config.Logger
	if logger == nil {
		logger = logging.NewDefaultLogger()
	}

	return func(next web.RequestHandler) web.RequestHandler {
		return func(ctx *web.RequestContext) (err error) {
			defer func() {
				if r := recover(); r != nil {
					logger.WithFields(map[string]interface{}{
						"request_id": ctx.RequestID(),
						"method":     ctx.Request.Method,
						"path":       ctx.Request.URL.Path,
						"panic":      r,
					}).Errorf("panic recovered: %v", r)

					message := "internal server error"
					if config.StackTrace {
						message = fmt.Sprintf("panic: %v", r)
					}
					if ctx.Response.Status() == 0 {
						err = ctx.Error(http.StatusInternalServerError, "internal_server_error", message)
					}
				}
			}()
			return next(ctx)
		}
	}
}
