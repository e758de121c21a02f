package prometheus

import (
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/fluxorio/todo-service/pkg/web"
)

// Handler returns the /metrics endpoint handler over the default registry
func Handler() web.RequestHandler {
	h := promhttp.HandlerFor(DefaultRegistry, promhttp.HandlerOpts{})
	return func(ctx *web.RequestContext) error {
		h.ServeHTTP(ctx.Response, ctx.Request)
		return nil
	}
}

// MetricsMiddleware records HTTP request metrics for every route
func MetricsMiddleware() web.Middleware {
	metrics := GetMetrics()

	return func(next web.RequestHandler) web.RequestHandler {
		return func(ctx *web.RequestContext) error {
			start := time.Now()
			method := ctx.Request.Method
			path := normalizePath(ctx.Request.URL.Path)

			err := next(ctx)

			status := ctx.Response.Status()
			if status == 0 {
				status = 200
			}
			metrics.RecordHTTPRequest(method, path, strconv.Itoa(status),
				time.Since(start), ctx.Response.Written())
			return err
		}
	}
}

// normalizePath replaces id segments with ":id" so metrics aggregate per
// route instead of per record
func normalizePath(path string) string {
	segments := strings.Split(path, "/")
	for i, seg := range segments {
		if _, err := uuid.Parse(seg); err == nil {
			segments[i] = ":id"
		}
	}
	return strings.Join(segments, "/")
}
