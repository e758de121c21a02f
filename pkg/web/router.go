package web

import (
	"net/http"
	"strings"

	"github.com/fluxorio/todo-service/pkg/logging"
)

// Router matches requests against method + path patterns.
// Patterns use ":name" segments for path parameters
// (e.g. "/todos/:id/toggle").
type Router struct {
	routes     []route
	middleware []Middleware
	logger     logging.Logger

	// NotFound is invoked when no route matches (default: JSON 404)
	NotFound RequestHandler
}

type route struct {
	method   string
	segments []string
	handler  RequestHandler
}

// NewRouter creates an empty router
func NewRouter(logger logging.Logger) *Router {
	if logger == nil {
		logger = logging.NewDefaultLogger()
	}
	return &Router{
		logger: logger,
		NotFound: func(ctx *RequestContext) error {
			return ctx.Error(http.StatusNotFound, "not_found", "route not found")
		},
	}
}

// Use adds middleware applied to every route, in registration order
func (r *Router) Use(mw Middleware) {
	r.middleware = append(r.middleware, mw)
}

// Route registers a handler for an arbitrary method
func (r *Router) Route(method, pattern string, handler RequestHandler) {
	if handler == nil {
		panic("web: handler cannot be nil")
	}
	r.routes = append(r.routes, route{
		method:   method,
		segments: splitPath(pattern),
		handler:  handler,
	})
}

// GET registers a GET handler
func (r *Router) GET(pattern string, handler RequestHandler) {
	r.Route(http.MethodGet, pattern, handler)
}

// POST registers a POST handler
func (r *Router) POST(pattern string, handler RequestHandler) {
	r.Route(http.MethodPost, pattern, handler)
}

// PUT registers a PUT handler
func (r *Router) PUT(pattern string, handler RequestHandler) {
	r.Route(http.MethodPut, pattern, handler)
}

// DELETE registers a DELETE handler
func (r *Router) DELETE(pattern string, handler RequestHandler) {
	r.Route(http.MethodDelete, pattern, handler)
}

// PATCH registers a PATCH handler
func (r *Router) PATCH(pattern string, handler RequestHandler) {
	r.Route(http.MethodPatch, pattern, handler)
}

func splitPath(p string) []string {
	p = strings.Trim(p, "/")
	if p == "" {
		return nil
	}
	return strings.Split(p, "/")
}

// match reports whether the route matches the path, filling params
func (rt *route) match(method string, segments []string) (map[string]string, bool) {
	if rt.method != method {
		return nil, false
	}
	if len(rt.segments) != len(segments) {
		return nil, false
	}
	var params map[string]string
	for i, seg := range rt.segments {
		if strings.HasPrefix(seg, ":") {
			if params == nil {
				params = make(map[string]string)
			}
			params[seg[1:]] = segments[i]
			continue
		}
		if seg != segments[i] {
			return nil, false
		}
	}
	return params, true
}

// ServeHTTP implements http.Handler
func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	ctx := &RequestContext{
		Request:  req,
		Response: &ResponseWriter{ResponseWriter: w},
	}

	segments := splitPath(req.URL.Path)
	handler := r.NotFound
	for i := range r.routes {
		if params, ok := r.routes[i].match(req.Method, segments); ok {
			ctx.Params = params
			handler = r.routes[i].handler
			break
		}
	}

	// Apply middleware in reverse so the first registered runs outermost
	for i := len(r.middleware) - 1; i >= 0; i-- {
		handler = r.middleware[i](handler)
	}

	if err := handler(ctx); err != nil {
		r.logger.WithContext(req.Context()).Errorf("handler error: %v", err)
		if ctx.Response.Status() == 0 {
			_ = ctx.Error(http.StatusInternalServerError, "internal_server_error", "internal server error")
		}
	}
}
