// Package sqlstore provides a database/sql todo repository.
// Works with the sqlite3 and postgres drivers; the placeholder style is
// selected per driver.
package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"github.com/fluxorio/todo-service/pkg/todo"
)

// Dialect selects the SQL placeholder style
type Dialect string

const (
	DialectSQLite   Dialect = "sqlite3"
	DialectPostgres Dialect = "postgres"
)

// Repository is a database/sql backed todo repository
type Repository struct {
	db      *sql.DB
	dialect Dialect
}

// New creates a repository over db using the given dialect
func New(db *sql.DB, dialect Dialect) *Repository {
	if db == nil {
		panic("sqlstore: db cannot be nil")
	}
	switch dialect {
	case DialectSQLite, DialectPostgres:
	default:
		panic(fmt.Sprintf("sqlstore: unsupported dialect %q", dialect))
	}
	return &Repository{db: db, dialect: dialect}
}

// Migrate creates the todos table if it does not exist
func (r *Repository) Migrate(ctx context.Context) error {
	schema := `
	CREATE TABLE IF NOT EXISTS todos (
		id TEXT PRIMARY KEY,
		title TEXT NOT NULL,
		description TEXT NOT NULL DEFAULT '',
		completed BOOLEAN NOT NULL DEFAULT FALSE,
		created_at TIMESTAMP NOT NULL,
		updated_at TIMESTAMP NOT NULL
	)`
	if _, err := r.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("failed to migrate todos table: %w", err)
	}
	return nil
}

// rebind rewrites ? placeholders to $n for postgres
func (r *Repository) rebind(query string) string {
	if r.dialect != DialectPostgres {
		return query
	}
	var b strings.Builder
	n := 0
	for _, ch := range query {
		if ch == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteRune(ch)
	}
	return b.String()
}

const columns = "id, title, description, completed, created_at, updated_at"

func scanTodo(row interface{ Scan(...interface{}) error }) (*todo.Todo, error) {
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

	if opts.Completed != nil {
		baseQuery += " WHERE completed = ?"
		countQuery += " WHERE completed = ?"
		args = append(args, *opts.Completed)
	}

	baseQuery += " ORDER BY created_at DESC, id DESC"

	var total int
	if err := r.db.QueryRowContext(ctx, r.rebind(countQuery), args...).Scan(&total); err != nil {
		return nil, fmt.Errorf("failed to count todos: %w", err)
	}

	page := 1
	pageSize := total
	totalPages := 1
	if opts.Page > 0 {
		page = opts.Page
		pageSize = opts.PageSize
		baseQuery += " LIMIT ? OFFSET ?"
		args = append(args, pageSize, (page-1)*pageSize)
		totalPages = (total + pageSize - 1) / pageSize
		if totalPages == 0 {
			totalPages = 1
		}
	}

	rows, err := r.db.QueryContext(ctx, r.rebind(baseQuery), args...)
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
	query := r.rebind("SELECT " + columns + " FROM todos WHERE id = ?")
	t, err := scanTodo(r.db.QueryRowContext(ctx, query, id.String()))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, todo.NotFoundError(id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get todo: %w", err)
	}
	return t, nil
}

// Create inserts a new todo with a fresh id and timestamps
func (r *Repository) Create(ctx context.Context, req todo.CreateTodoRequest) (*todo.Todo, error) {
	now := todo.Now().UTC()
	t := todo.Todo{
		ID:          uuid.New(),
		Title:       req.Title,
		Description: req.Description,
		Completed:   false,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	query := r.rebind("INSERT INTO todos (" + columns + ") VALUES (?, ?, ?, ?, ?, ?)")
	_, err := r.db.ExecContext(ctx, query,
		t.ID.String(), t.Title, t.Description, t.Completed, t.CreatedAt, t.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to create todo: %w", err)
	}
	return &t, nil
}

// Update applies non-nil fields of req inside a transaction
func (r *Repository) Update(ctx context.Context, id uuid.UUID, req todo.UpdateTodoRequest) (*todo.Todo, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin update: %w", err)
	}
	defer tx.Rollback()

	query := r.rebind("SELECT " + columns + " FROM todos WHERE id = ?")
	t, err := scanTodo(tx.QueryRowContext(ctx, query, id.String()))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, todo.NotFoundError(id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load todo: %w", err)
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

	update := r.rebind("UPDATE todos SET title = ?, description = ?, completed = ?, updated_at = ? WHERE id = ?")
	if _, err := tx.ExecContext(ctx, update,
		t.Title, t.Description, t.Completed, t.UpdatedAt, id.String()); err != nil {
		return nil, fmt.Errorf("failed to update todo: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit update: %w", err)
	}
	return t, nil
}

// Delete removes a todo
func (r *Repository) Delete(ctx context.Context, id uuid.UUID) error {
	query := r.rebind("DELETE FROM todos WHERE id = ?")
	res, err := r.db.ExecContext(ctx, query, id.String())
	if err != nil {
		return fmt.Errorf("failed to delete todo: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to delete todo: %w", err)
	}
	if affected == 0 {
		return todo.NotFoundError(id)
	}
	return nil
}

// Toggle flips the completed flag
func (r *Repository) Toggle(ctx context.Context, id uuid.UUID) (*todo.Todo, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin toggle: %w", err)
	}
	defer tx.Rollback()

	query := r.rebind("SELECT " + columns + " FROM todos WHERE id = ?")
	t, err := scanTodo(tx.QueryRowContext(ctx, query, id.String()))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, todo.NotFoundError(id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load todo: %w", err)
	}

	t.Completed = !t.Completed
	t.UpdatedAt = todo.Now().UTC()

	update := r.rebind("UPDATE todos SET completed = ?, updated_at = ? WHERE id = ?")
	if _, err := tx.ExecContext(ctx, update, t.Completed, t.UpdatedAt, id.String()); err != nil {
		return nil, fmt.Errorf("failed to toggle todo: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit toggle: %w", err)
	}
	return t, nil
}

var _ todo.Repository = (*Repository)(nil)
