package security

import (
	"strconv"

	"github.com/fluxorio/todo-service/pkg/web"
)

// HeadersConfig configures the security headers middleware
type HeadersConfig struct {
	// ContentTypeNosniff sets X-Content-Type-Options: nosniff
	ContentTypeNosniff bool

	// FrameDeny sets X-Frame-Options: DENY
	FrameDeny bool

	// HSTSMaxAgeSeconds sets Strict-Transport-Security when > 0
	HSTSMaxAgeSeconds int
}

// DefaultHeadersConfig returns sensible defaults for a JSON API
func DefaultHeadersConfig() HeadersConfig {
	return HeadersConfig{
		ContentTypeNosniff: true,
		FrameDeny:          true,
	}
}

// Headers attaches standard security headers to every response
func Headers(config HeadersConfig) web.Middleware {
	return func(next web.RequestHandler) web.RequestHandler {
		return func(ctx *web.RequestContext) error {
			h := ctx.Response.Header()
			if config.ContentTypeNosniff {
				h.Set("X-Content-Type-Options", "nosniff")
			}
			if config.FrameDeny {
				h.Set("X-Frame-Options", "DENY")
			}
			if config.HSTSMaxAgeSeconds > 0 {
				h.Set("Strict-Transport-Security", "max-age="+strconv.Itoa(config.HSTSMaxAgeSeconds))
			}
			return next(ctx)
		}
	}
}
