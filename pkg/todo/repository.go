package todo

import (
	"context"

	"github.com/google/uuid"
)

// Repository is the data-access abstraction for todo persistence.
// Implementations: in-memory, database/sql, pgx, remote HTTP.
//
// Contract summary:
// - Mutations return the canonical post-operation record.
// - IDs are assigned by the repository and immutable after creation.
// - Missing todos fail with a NOT_FOUND error.
// - List orders newest-first by creation time.
type Repository interface {
	// List returns todos, paginated when opts.Page > 0
	List(ctx context.Context, opts ListOptions) (*TodoListResponse, error)

	// Get returns a single todo by id
	Get(ctx context.Context, id uuid.UUID) (*Todo, error)

	// Create stores a new todo and assigns its id and timestamps
	Create(ctx context.Context, req CreateTodoRequest) (*Todo, error)

	// Update applies non-nil fields of req to an existing todo
	Update(ctx context.Context, id uuid.UUID, req UpdateTodoRequest) (*Todo, error)

	// Delete removes a todo
	Delete(ctx context.Context, id uuid.UUID) error

	// Toggle flips the completed flag
	Toggle(ctx context.Context, id uuid.UUID) (*Todo, error)
}
