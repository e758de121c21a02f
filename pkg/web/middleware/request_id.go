package middleware

import (
	"github.com/fluxorio/todo-service/pkg/logging"
	"github.com/fluxorio/todo-service/pkg/web"
)

// RequestIDHeader is the header carrying the request ID
const RequestIDHeader = "X-Request-Id"

// RequestID assigns each request an ID, honoring one supplied by the
// client, and exposes it via context and response header
func RequestID() web.Middleware {
	return func(next web.RequestHandler) web.RequestHandler {
		return func(ctx *web.RequestContext) error {
			id := ctx.Request.Header.Get(RequestIDHeader)
			if id == "" {
				id = logging.GenerateRequestID()
			}
			ctx.WithContext(logging.WithRequestID(ctx.Context(), id))
			ctx.Response.Header().Set(RequestIDHeader, id)
			return next(ctx)
		}
	}
}
