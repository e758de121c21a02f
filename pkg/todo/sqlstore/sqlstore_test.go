package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"

	"github.com/fluxorio/todo-service/pkg/todo"
)

func setupTestDB(t *testing.T) *Repository {
	t.Helper()
	db, err := sql.Open("sqlite3", ":memory:")
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	// A shared in-memory database needs a single connection
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })

	repo := New(db, DialectSQLite)
	if err := repo.Migrate(context.Background()); err != nil {
		t.Fatalf("failed to migrate: %v", err)
	}
	return repo
}

func mustCreate(t *testing.T, repo *Repository, title string) *todo.Todo {
	t.Helper()
	created, err := repo.Create(context.Background(), todo.CreateTodoRequest{Title: title})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	return created
}

func TestCreateAndGet(t *testing.T) {
	repo := setupTestDB(t)

	created, err := repo.Create(context.Background(), todo.CreateTodoRequest{
		Title:       "write docs",
		Description: "for the release",
	})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if created.ID == uuid.Nil {
		t.Error("expected a non-nil id")
	}
	if created.Completed {
		t.Error("expected new todo to start incomplete")
	}

	stored, err := repo.Get(context.Background(), created.ID)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if stored.Title != "write docs" || stored.Description != "for the release" {
		t.Errorf("stored record mismatch: %+v", stored)
	}
	if stored.ID != created.ID {
		t.Error("id changed between create and get")
	}
}

func TestGetNotFound(t *testing.T) {
	repo := setupTestDB(t)
	if _, err := repo.Get(context.Background(), uuid.New()); !errors.Is(err, todo.ErrNotFound) {
		t.Errorf("expected NOT_FOUND, got %v", err)
	}
}

func TestListNewestFirst(t *testing.T) {
	repo := setupTestDB(t)
	mustCreate(t, repo, "first")
	mustCreate(t, repo, "second")
	mustCreate(t, repo, "third")

	resp, err := repo.List(context.Background(), todo.ListOptions{})
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if resp.Total != 3 {
		t.Fatalf("expected total 3, got %d", resp.Total)
	}
	if len(resp.Todos) != 3 {
		t.Fatalf("expected 3 todos, got %d", len(resp.Todos))
	}
	if resp.Todos[len(resp.Todos)-1].Title != "first" {
		t.Errorf("expected oldest todo last, got %q", resp.Todos[len(resp.Todos)-1].Title)
	}
}

func TestListFilterAndPagination(t *testing.T) {
	repo := setupTestDB(t)
	ctx := context.Background()
	for i := 0; i < 5; i++ {
		created := mustCreate(t, repo, "task")
		if i%2 == 0 {
			if _, err := repo.Toggle(ctx, created.ID); err != nil {
				t.Fatalf("Toggle failed: %v", err)
			}
		}
	}

	done := true
	resp, err := repo.List(ctx, todo.ListOptions{Completed: &done})
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if resp.Total != 3 {
		t.Errorf("expected 3 completed todos, got %d", resp.Total)
	}

	resp, err = repo.List(ctx, todo.ListOptions{Page: 2, PageSize: 2})
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(resp.Todos) != 2 || resp.Total != 5 || resp.TotalPages != 3 {
		t.Errorf("unexpected page: %d todos, total %d, pages %d",
			len(resp.Todos), resp.Total, resp.TotalPages)
	}
}

func TestUpdatePartial(t *testing.T) {
	repo := setupTestDB(t)
	created := mustCreate(t, repo, "original")

	title := "renamed"
	updated, err := repo.Update(context.Background(), created.ID, todo.UpdateTodoRequest{Title: &title})
	if err != nil {
		t.Fatalf("Update failed: %v", err)
	}
	if updated.Title != "renamed" {
		t.Errorf("expected title updated, got %q", updated.Title)
	}
	if updated.Completed {
		t.Error("untouched field changed")
	}
	if updated.ID != created.ID {
		t.Error("id changed on update")
	}

	done := true
	updated, err = repo.Update(context.Background(), created.ID, todo.UpdateTodoRequest{Completed: &done})
	if err != nil {
		t.Fatalf("Update failed: %v", err)
	}
	if !updated.Completed {
		t.Error("expected completed set")
	}
	if updated.Title != "renamed" {
		t.Error("title reset by completed-only update")
	}

	if _, err := repo.Update(context.Background(), uuid.New(), todo.UpdateTodoRequest{Title: &title}); !errors.Is(err, todo.ErrNotFound) {
		t.Errorf("expected NOT_FOUND for unknown id, got %v", err)
	}
}

func TestDelete(t *testing.T) {
	repo := setupTestDB(t)
	created := mustCreate(t, repo, "ephemeral")

	if err := repo.Delete(context.Background(), created.ID); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if _, err := repo.Get(context.Background(), created.ID); !errors.Is(err, todo.ErrNotFound) {
		t.Errorf("expected NOT_FOUND after delete, got %v", err)
	}
	if err := repo.Delete(context.Background(), created.ID); !errors.Is(err, todo.ErrNotFound) {
		t.Errorf("expected NOT_FOUND on second delete, got %v", err)
	}
}

func TestToggle(t *testing.T) {
	repo := setupTestDB(t)
	created := mustCreate(t, repo, "task")

	toggled, err := repo.Toggle(context.Background(), created.ID)
	if err != nil {
		t.Fatalf("Toggle failed: %v", err)
	}
	if !toggled.Completed {
		t.Error("expected completed true after first toggle")
	}

	toggled, err = repo.Toggle(context.Background(), created.ID)
	if err != nil {
		t.Fatalf("Toggle failed: %v", err)
	}
	if toggled.Completed {
		t.Error("expected completed false after second toggle")
	}

	if _, err := repo.Toggle(context.Background(), uuid.New()); !errors.Is(err, todo.ErrNotFound) {
		t.Errorf("expected NOT_FOUND for unknown id, got %v", err)
	}
}

func TestRebindPostgres(t *testing.T) {
	db, err := sql.Open("sqlite3", ":memory:")
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	repo := New(db, DialectPostgres)
	got := repo.rebind("SELECT * FROM todos WHERE id = ? AND completed = ?")
	want := "SELECT * FROM todos WHERE id = $1 AND completed = $2"
	if got != want {
		t.Errorf("rebind mismatch:\n got %q\nwant %q", got, want)
	}

	sqlite := New(db, DialectSQLite)
	query := "DELETE FROM todos WHERE id = ?"
	if got := sqlite.rebind(query); got != query {
		t.Errorf("sqlite rebind must be a no-op, got %q", got)
	}
}
