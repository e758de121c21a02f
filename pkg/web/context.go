package web

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/fluxorio/todo-service/pkg/logging"
)

// RequestHandler handles HTTP requests
type RequestHandler func(ctx *RequestContext) error

// Middleware wraps a RequestHandler
type Middleware func(handler RequestHandler) RequestHandler

// RequestContext carries a single request through handlers and middleware
type RequestContext struct {
	Request  *http.Request
	Response *ResponseWriter
	Params   map[string]string

	values map[string]interface{}
}

// ResponseWriter records the status code and bytes written so middleware
// can observe the outcome
type ResponseWriter struct {
	http.ResponseWriter
	status  int
	written int64
}

// WriteHeader records the status before delegating
func (w *ResponseWriter) WriteHeader(status int) {
	if w.status == 0 {
		w.status = status
	}
	w.ResponseWriter.WriteHeader(status)
}

// Write tracks the response size
func (w *ResponseWriter) Write(b []byte) (int, error) {
	if w.status == 0 {
		w.status = http.StatusOK
	}
	n, err := w.ResponseWriter.Write(b)
	w.written += int64(n)
	return n, err
}

// Status returns the recorded status code (0 until the first write)
func (w *ResponseWriter) Status() int {
	return w.status
}

// Written returns the number of body bytes written
func (w *ResponseWriter) Written() int64 {
	return w.written
}

// Context returns the request's context
func (c *RequestContext) Context() context.Context {
	return c.Request.Context()
}

// WithContext replaces the request's context
func (c *RequestContext) WithContext(ctx context.Context) {
	c.Request = c.Request.WithContext(ctx)
}

// Param returns a path parameter (e.g. ":id")
func (c *RequestContext) Param(name string) string {
	return c.Params[name]
}

// Query returns a query string parameter
func (c *RequestContext) Query(name string) string {
	return c.Request.URL.Query().Get(name)
}

// Set stores a request-scoped value (used by middleware, e.g. JWT claims)
func (c *RequestContext) Set(key string, value interface{}) {
	if c.values == nil {
		c.values = make(map[string]interface{})
	}
	c.values[key] = value
}

// Get retrieves a request-scoped value
func (c *RequestContext) Get(key string) (interface{}, bool) {
	v, ok := c.values[key]
	return v, ok
}

// RequestID returns the request ID assigned by the RequestID middleware
func (c *RequestContext) RequestID() string {
	return logging.GetRequestID(c.Request.Context())
}

// BindJSON decodes the request body into target
func (c *RequestContext) BindJSON(target interface{}) error {
	dec := json.NewDecoder(c.Request.Body)
	if err := dec.Decode(target); err != nil {
		return fmt.Errorf("decode body: %w", err)
	}
	return nil
}

// JSON writes a JSON response with the given status code
func (c *RequestContext) JSON(statusCode int, data interface{}) error {
	c.Response.Header().Set("Content-Type", "application/json")
	c.Response.WriteHeader(statusCode)
	return json.NewEncoder(c.Response).Encode(data)
}

// NoContent writes an empty response with the given status code
func (c *RequestContext) NoContent(statusCode int) error {
	c.Response.WriteHeader(statusCode)
	return nil
}

// Error writes the standard JSON error body
func (c *RequestContext) Error(statusCode int, code, message string) error {
	return c.JSON(statusCode, map[string]interface{}{
		"error":   code,
		"message": message,
	})
}

// Text writes a plain text response
func (c *RequestContext) Text(statusCode int, text string) error {
	c.Response.Header().Set("Content-Type", "text/plain")
	c.Response.WriteHeader(statusCode)
	_, err := c.Response.Write([]byte(text))
	return err
}
