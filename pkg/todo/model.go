package todo

import (
	"time"

	"github.com/google/uuid"
)

// Todo represents a todo item
type Todo struct {
	ID          uuid.UUID `json:"id" db:"id"`
	Title       string    `json:"title" db:"title"`
	Description string    `json:"description" db:"description"`
	Completed   bool      `json:"completed" db:"completed"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time `json:"updated_at" db:"updated_at"`
}

// CreateTodoRequest represents a request to create a todo
type CreateTodoRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
}

// UpdateTodoRequest represents a request to update a todo
// Nil fields are left unchanged
type UpdateTodoRequest struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
	Completed   *bool   `json:"completed"`
}

// TodoListResponse represents a paginated list of todos
type TodoListResponse struct {
	Todos      []Todo `json:"todos"`
	Total      int    `json:"total"`
	Page       int    `json:"page"`
	PageSize   int    `json:"page_size"`
	TotalPages int    `json:"total_pages"`
}

// ListOptions controls pagination and filtering for List
// Page <= 0 disables pagination and returns every todo
type ListOptions struct {
	Page      int
	PageSize  int
	Completed *bool
}

// DefaultPageSize is used when ListOptions requests pagination without a size
const DefaultPageSize = 20

// Normalize clamps pagination values to sane bounds
func (o ListOptions) Normalize() ListOptions {
	if o.Page > 0 && o.PageSize <= 0 {
		o.PageSize = DefaultPageSize
	}
	return o
}
