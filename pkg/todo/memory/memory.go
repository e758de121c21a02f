// Package memory provides an in-memory todo repository.
// Useful for demos and tests; an optional artificial latency simulates a
// remote backend.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/fluxorio/todo-service/pkg/todo"
)

// Repository is a mutex-guarded in-memory todo store
type Repository struct {
	mu      sync.RWMutex
	todos   map[uuid.UUID]todo.Todo
	latency time.Duration
}

// Option customizes the repository
type Option func(*Repository)

// WithLatency adds an artificial delay before every operation
func WithLatency(d time.Duration) Option {
	return func(r *Repository) {
		r.latency = d
	}
}

// New creates an empty in-memory repository
func New(opts ...Option) *Repository {
	r := &Repository{todos: make(map[uuid.UUID]todo.Todo)}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Seed inserts records directly, bypassing validation. Test helper.
func (r *Repository) Seed(items ...todo.Todo) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, t := range items {
		r.todos[t.ID] = t
	}
}

// delay sleeps for the configured latency, honoring context cancellation
func (r *Repository) delay(ctx context.Context) error {
	if r.latency <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(r.latency)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// List returns todos newest-first, paginated when opts.Page > 0
func (r *Repository) List(ctx context.Context, opts todo.ListOptions) (*todo.TodoListResponse, error) {
	if err := r.delay(ctx); err != nil {
		return nil, err
	}
	opts = opts.Normalize()

	r.mu.RLock()
	all := make([]todo.Todo, 0, len(r.todos))
	for _, t := range r.todos {
		if opts.Completed != nil && t.Completed != *opts.Completed {
			continue
		}
		all = append(all, t)
	}
	r.mu.RUnlock()

	sort.Slice(all, func(i, j int) bool {
		if !all[i].CreatedAt.Equal(all[j].CreatedAt) {
			return all[i].CreatedAt.After(all[j].CreatedAt)
		}
		// Stable tiebreak for records created in the same instant
		return all[i].ID.String() > all[j].ID.String()
	})

	total := len(all)
	if opts.Page <= 0 {
		return &todo.TodoListResponse{
			Todos:      all,
			Total:      total,
			Page:       1,
			PageSize:   total,
			TotalPages: 1,
		}, nil
	}

	start := (opts.Page - 1) * opts.PageSize
	if start > total {
		start = total
	}
	end := start + opts.PageSize
	if end > total {
		end = total
	}
	totalPages := (total + opts.PageSize - 1) / opts.PageSize
	if totalPages == 0 {
		totalPages = 1
	}

	return &todo.TodoListResponse{
		Todos:      all[start:end],
		Total:      total,
		Page:       opts.Page,
		PageSize:   opts.PageSize,
		TotalPages: totalPages,
	}, nil
}

// Get returns a single todo
func (r *Repository) Get(ctx context.Context, id uuid.UUID) (*todo.Todo, error) {
	if err := r.delay(ctx); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	t, ok := r.todos[id]
	if !ok {
		return nil, todo.NotFoundError(id)
	}
	return &t, nil
}

// Create assigns an id and timestamps and stores the todo
func (r *Repository) Create(ctx context.Context, req todo.CreateTodoRequest) (*todo.Todo, error) {
	if err := r.delay(ctx); err != nil {
		return nil, err
	}
	now := todo.Now().UTC()
	t := todo.Todo{
		ID:          uuid.New(),
		Title:       req.Title,
		Description: req.Description,
		Completed:   false,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	r.mu.Lock()
	r.todos[t.ID] = t
	r.mu.Unlock()
	return &t, nil
}

// Update applies non-nil fields of req
func (r *Repository) Update(ctx context.Context, id uuid.UUID, req todo.UpdateTodoRequest) (*todo.Todo, error) {
	if err := r.delay(ctx); err != nil {
		return nil, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.todos[id]
	if !ok {
		return nil, todo.NotFoundError(id)
	}
	if req.Title != nil {
		t.Title = *req.Title
	}
	if req.Description != nil {
		t.Description = *req.Description
	}
	if req.Completed != nil {
		t.Completed = *req.Completed
	}
	t.UpdatedAt = todo.Now().UTC()
	r.todos[id] = t
	return &t, nil
}

// Delete removes a todo
func (r *Repository) Delete(ctx context.Context, id uuid.UUID) error {
	if err := r.delay(ctx); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.todos[id]; !ok {
		return todo.NotFoundError(id)
	}
	delete(r.todos, id)
	return nil
}

// Toggle flips the completed flag
func (r *Repository) Toggle(ctx context.Context, id uuid.UUID) (*todo.Todo, error) {
	if err := r.delay(ctx); err != nil {
		return nil, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.todos[id]
	if !ok {
		return nil, todo.NotFoundError(id)
	}
	t.Completed = !t.Completed
	t.UpdatedAt = todo.Now().UTC()
	r.todos[id] = t
	return &t, nil
}

var _ todo.Repository = (*Repository)(nil)
