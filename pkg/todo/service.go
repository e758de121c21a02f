package todo

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
)

// EventPublisher receives a notification after each successful mutation.
// Mirrors events.Publisher without importing it (avoids an import cycle).
type EventPublisher interface {
	PublishChange(eventType string, id uuid.UUID, record *Todo)
}

// Service validates requests and delegates to a Repository.
// The repository remains the sole source of truth; the service adds the
// title invariant and change notifications, nothing else.
type Service struct {
	repo    Repository
	publish func(eventType string, id uuid.UUID, record *Todo)
}

// ServiceOption customizes a Service
type ServiceOption func(*Service)

// WithPublisher attaches a change publisher. Publish failures are the
// publisher's problem; mutations never fail because of them.
func WithPublisher(p EventPublisher) ServiceOption {
	return func(s *Service) {
		if p != nil {
			s.publish = p.PublishChange
		}
	}
}

// NewService creates a new todo service
func NewService(repo Repository, opts ...ServiceOption) *Service {
	if repo == nil {
		panic("todo: repository cannot be nil")
	}
	s := &Service{
		repo:    repo,
		publish: func(string, uuid.UUID, *Todo) {},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// List returns todos according to opts
func (s *Service) List(ctx context.Context, opts ListOptions) (*TodoListResponse, error) {
	return s.repo.List(ctx, opts.Normalize())
}

// Get returns a single todo
func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Todo, error) {
	return s.repo.Get(ctx, id)
}

// Create validates the title and stores a new todo
func (s *Service) Create(ctx context.Context, req CreateTodoRequest) (*Todo, error) {
	req.Title = strings.TrimSpace(req.Title)
	if req.Title == "" {
		return nil, ErrEmptyTitle
	}

	created, err := s.repo.Create(ctx, req)
	if err != nil {
		return nil, err
	}
	s.publish("todo.created", created.ID, created)
	return created, nil
}

// Update applies a partial update; a provided title must be non-empty
func (s *Service) Update(ctx context.Context, id uuid.UUID, req UpdateTodoRequest) (*Todo, error) {
	if req.Title != nil {
		trimmed := strings.TrimSpace(*req.Title)
		if trimmed == "" {
			return nil, ErrEmptyTitle
		}
		req.Title = &trimmed
	}

	updated, err := s.repo.Update(ctx, id, req)
	if err != nil {
		return nil, err
	}
	s.publish("todo.updated", updated.ID, updated)
	return updated, nil
}

// Delete removes a todo
func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.publish("todo.deleted", id, nil)
	return nil
}

// Toggle flips the completed flag
func (s *Service) Toggle(ctx context.Context, id uuid.UUID) (*Todo, error) {
	toggled, err := s.repo.Toggle(ctx, id)
	if err != nil {
		return nil, err
	}
	s.publish("todo.toggled", toggled.ID, toggled)
	return toggled, nil
}

// Now is the timestamp source used by repositories when stamping records.
// Overridable in tests.
var Now = time.Now
