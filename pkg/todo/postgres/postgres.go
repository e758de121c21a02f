// Package postgres provides a pgx-backed todo repository for production
// PostgreSQL deployments.
package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/fluxorio/todo-service/pkg/todo"
)

// Repository is a pgxpool backed todo repository
type Repository struct {
	pool *pgxpool.Pool
}

// Connect creates a pgx pool and verifies connectivity
func Connect(ctx context.Context, dsn string) (*Repository, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("pgx pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("pgx ping: %w", err)
	}
	return &Repository{pool: pool}, nil
}

// New wraps an existing pool
func New(pool *pgxpool.Pool) *Repository {
	if pool == nil {
		panic("postgres: pool cannot be nil")
	}
	return &Repository{pool: pool}
}

// Migrate creates the todos table if it does not exist
func (r *Repository) Migrate(ctx context.Context) error {
	schema := `
	CREATE TABLE IF NOT EXISTS todos (
		id TEXT PRIMARY KEY,
		title TEXT NOT NULL,
		description TEXT NOT NULL DEFAULT '',
		completed BOOLEAN NOT NULL DEFAULT FALSE,
		created_at TIMESTAMPTZ NOT NULL,
		updated_at TIMESTAMPTZ NOT NULL
	)`
	if _, err := r.pool.Exec(ctx, schema); err != nil {
		return fmt.Errorf("failed to migrate todos table: %w", err)
	}
	return nil
}

// Close releases the pool
func (r *Repository) Close() {
	r.pool.Close()
}

const columns = "id, title, description, completed, created_at, updated_at"

func scanTodo(row pgx.Row) (*todo.Todo, error) {
	var (
		t  todo.Todo
		id string
	)
	if err := row.Scan(&id, &t.Title, &t.Description, &t.Completed, &t.CreatedAt, &t.UpdatedAt); err != nil {
		return nil, err
	}
	parsed, err := uuid.Parse(id)
	if err != nil {
		return nil, fmt.Errorf("invalid todo id %q: %w", id, err)
	}
	t.ID = parsed
	return &t, nil
}

// List returns todos newest-first, paginated when opts.Page > 0
func (r *Repository) List(ctx context.Context, opts todo.ListOptions) (*todo.TodoListResponse, error) {
	opts = opts.Normalize()

	baseQuery := "SELECT " + columns + " FROM todos"
	countQuery := "SELECT COUNT(*) FROM todos"
	args := []interface{}{}
	argIndex := 1

	if opts.Completed != nil {
		cond := fmt.Sprintf(" WHERE completed = $%d", argIndex)
		baseQuery += cond
		countQuery += cond
		args = append(args, *opts.Completed)
		argIndex++
	}

	baseQuery += " ORDER BY created_at DESC, id DESC"

	var total int
	if err := r.pool.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, fmt.Errorf("failed to count todos: %w", err)
	}

	page := 1
	pageSize := total
	totalPages := 1
	if opts.Page > 0 {
		page = opts.Page
		pageSize = opts.PageSize
		baseQuery += fmt.Sprintf(" LIMIT $%d OFFSET $%d", argIndex, argIndex+1)
		args = append(args, pageSize, (page-1)*pageSize)
		totalPages = (total + pageSize - 1) / pageSize
		if totalPages == 0 {
			totalPages = 1
		}
	}

	rows, err := r.pool.Query(ctx, baseQuery, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list todos: %w", err)
	}
	defer rows.Close()

	todos := []todo.Todo{}
	for rows.Next() {
		t, err := scanTodo(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan todo: %w", err)
		}
		todos = append(todos, *t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list todos: %w", err)
	}

	return &todo.TodoListResponse{
		Todos:      todos,
		Total:      total,
		Page:       page,
		PageSize:   pageSize,
		TotalPages: totalPages,
	}, nil
}

// Get returns a single todo by id
func (r *Repository) Get(ctx context.Context, id uuid.UUID) (*todo.Todo, error) {
	t, err := scanTodo(r.pool.QueryRow(ctx,
		"SELECT "+columns+" FROM todos WHERE id = $1", id.String()))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, todo.NotFoundError(id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get todo: %w", err)
	}
	return t, nil
}

// Create inserts a new todo and returns the stored record
func (r *Repository) Create(ctx context.Context, req todo.CreateTodoRequest) (*todo.Todo, error) {
	now := todo.Now().UTC()
	id := uuid.New()

	t, err := scanTodo(r.pool.QueryRow(ctx,
		`INSERT INTO todos (id, title, description, completed, created_at, updated_at)
		 VALUES ($1, $2, $3, FALSE, $4, $4)
		 RETURNING `+columns,
		id.String(), req.Title, req.Description, now))
	if err != nil {
		return nil, fmt.Errorf("failed to create todo: %w", err)
	}
	return t, nil
}

// Update applies non-nil fields of req and returns the stored record
func (r *Repository) Update(ctx context.Context, id uuid.UUID, req todo.UpdateTodoRequest) (*todo.Todo, error) {
	t, err := scanTodo(r.pool.QueryRow(ctx,
		`UPDATE todos SET
			title = COALESCE($2, title),
			description = COALESCE($3, description),
			completed = COALESCE($4, completed),
			updated_at = $5
		 WHERE id = $1
		 RETURNING `+columns,
		id.String(), req.Title, req.Description, req.Completed, todo.Now().UTC()))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, todo.NotFoundError(id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to update todo: %w", err)
	}
	return t, nil
}

// Delete removes a todo
func (r *Repository) Delete(ctx context.Context, id uuid.UUID) error {
	cmd, err := r.pool.Exec(ctx, "DELETE FROM todos WHERE id = $1", id.String())
	if err != nil {
		return fmt.Errorf("failed to delete todo: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return todo.NotFoundError(id)
	}
	return nil
}

// Toggle flips the completed flag and returns the stored record
func (r *Repository) Toggle(ctx context.Context, id uuid.UUID) (*todo.Todo, error) {
	t, err := scanTodo(r.pool.QueryRow(ctx,
		`UPDATE todos SET completed = NOT completed, updated_at = $2
		 WHERE id = $1
		 RETURNING `+columns,
		id.String(), todo.Now().UTC()))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, todo.NotFoundError(id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to toggle todo: %w", err)
	}
	return t, nil
}

var _ todo.Repository = (*Repository)(nil)
