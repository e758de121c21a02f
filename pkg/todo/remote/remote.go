// Package remote provides a todo repository backed by a remote todo
// service speaking the /todos JSON wire surface.
package remote

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/valyala/fasthttp"

	"github.com/fluxorio/todo-service/pkg/todo"
)

// Config configures the remote repository
type Config struct {
	// BaseURL is the remote service base URL (e.g. "http://todo:8080")
	BaseURL string

	// Timeout is the fixed per-request timeout (default 10s)
	Timeout time.Duration
}

// Repository talks to a remote todo service over HTTP
type Repository struct {
	client  *fasthttp.Client
	baseURL string
	timeout time.Duration
}

// New creates a remote repository
func New(cfg Config) *Repository {
	if cfg.BaseURL == "" {
		panic("remote: BaseURL cannot be empty")
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Repository{
		client:  &fasthttp.Client{},
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		timeout: timeout,
	}
}

// apiError is the wire shape of remote error bodies
type apiError struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// do issues a request and decodes the response body into out (when non-nil)
func (r *Repository) do(ctx context.Context, method, path string, body interface{}, out interface{}) error {
	req := fasthttp.AcquireRequest()
	defer fasthttp.ReleaseRequest(req)
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseResponse(resp)

	req.SetRequestURI(r.baseURL + path)
	req.Header.SetMethod(method)
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return todo.InternalError(fmt.Errorf("encode request: %w", err))
		}
		req.Header.SetContentType("application/json")
		req.SetBody(data)
	}

	timeout := r.timeout
	if deadline, ok := ctx.Deadline(); ok {
		if until := time.Until(deadline); until < timeout {
			timeout = until
		}
	}
	if timeout <= 0 {
		return ctx.Err()
	}

	if err := r.client.DoTimeout(req, resp, timeout); err != nil {
		return todo.UnavailableError(fmt.Errorf("%s %s: %w", method, path, err))
	}

	status := resp.StatusCode()
	if status >= 400 {
		var ae apiError
		_ = json.Unmarshal(resp.Body(), &ae)
		message := ae.Message
		if message == "" {
			message = fmt.Sprintf("%s %s: status %d", method, path, status)
		}
		if status == fasthttp.StatusNotFound {
			return &todo.Error{Code: todo.CodeNotFound, Message: message}
		}
		if status == fasthttp.StatusBadRequest || status == fasthttp.StatusUnprocessableEntity {
			return todo.ValidationError(message)
		}
		return &todo.Error{Code: todo.CodeUnavailable, Message: message}
	}

	if out != nil {
		if err := json.Unmarshal(resp.Body(), out); err != nil {
			return todo.InternalError(fmt.Errorf("decode response: %w", err))
		}
	}
	return nil
}

// List returns todos from the remote service
func (r *Repository) List(ctx context.Context, opts todo.ListOptions) (*todo.TodoListResponse, error) {
	opts = opts.Normalize()
	q := url.Values{}
	if opts.Page > 0 {
		q.Set("page", strconv.Itoa(opts.Page))
		q.Set("page_size", strconv.Itoa(opts.PageSize))
	}
	if opts.Completed != nil {
		q.Set("completed", strconv.FormatBool(*opts.Completed))
	}
	path := "/todos"
	if encoded := q.Encode(); encoded != "" {
		path += "?" + encoded
	}

	var out todo.TodoListResponse
	if err := r.do(ctx, fasthttp.MethodGet, path, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Get returns a single todo
func (r *Repository) Get(ctx context.Context, id uuid.UUID) (*todo.Todo, error) {
	var out todo.Todo
	if err := r.do(ctx, fasthttp.MethodGet, "/todos/"+id.String(), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Create stores a new todo; the server assigns the id
func (r *Repository) Create(ctx context.Context, req todo.CreateTodoRequest) (*todo.Todo, error) {
	var out todo.Todo
	if err := r.do(ctx, fasthttp.MethodPost, "/todos", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Update applies a partial update remotely
func (r *Repository) Update(ctx context.Context, id uuid.UUID, req todo.UpdateTodoRequest) (*todo.Todo, error) {
	var out todo.Todo
	if err := r.do(ctx, fasthttp.MethodPut, "/todos/"+id.String(), req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Delete removes a todo remotely
func (r *Repository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.do(ctx, fasthttp.MethodDelete, "/todos/"+id.String(), nil, nil)
}

// Toggle flips the completed flag remotely
func (r *Repository) Toggle(ctx context.Context, id uuid.UUID) (*todo.Todo, error) {
	var out todo.Todo
	if err := r.do(ctx, fasthttp.MethodPost, "/todos/"+id.String()+"/toggle", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

var _ todo.Repository = (*Repository)(nil)
