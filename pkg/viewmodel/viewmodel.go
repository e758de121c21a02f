// Package viewmodel provides a UI-facing state container over the todo
// service. Mutations are applied optimistically to a local copy and then
// persisted; on failure the copy is restored by a full reload and the
// error is surfaced as a display string.
package viewmodel

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/fluxorio/todo-service/pkg/todo"
)

// Snapshot is an immutable view of the list state
type Snapshot struct {
	Todos   []todo.Todo
	Loading bool
	Err     string
}

// Listener receives a snapshot after every state change
type Listener func(Snapshot)

// ListModel orchestrates todo use cases for a list view.
// The repository behind the service stays the source of truth; the model
// only holds a transient, optimistically updated copy for display.
type ListModel struct {
	svc *todo.Service

	mu        sync.Mutex
	todos     []todo.Todo
	loading   bool
	err       string
	listeners []Listener
}

// NewListModel creates a list model over svc
func NewListModel(svc *todo.Service) *ListModel {
	if svc == nil {
		panic("viewmodel: service cannot be nil")
	}
	return &ListModel{svc: svc}
}

// Subscribe registers a listener for state changes.
// The listener is invoked synchronously with a fresh snapshot, including
// once immediately with the current state.
func (m *ListModel) Subscribe(l Listener) {
	m.mu.Lock()
	m.listeners = append(m.listeners, l)
	snap := m.snapshotLocked()
	m.mu.Unlock()
	l(snap)
}

// Snapshot returns a copy of the current state
func (m *ListModel) Snapshot() Snapshot {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.snapshotLocked()
}

func (m *ListModel) snapshotLocked() Snapshot {
	todos := make([]todo.Todo, len(m.todos))
	copy(todos, m.todos)
	return Snapshot{Todos: todos, Loading: m.loading, Err: m.err}
}

// notifyLocked snapshots under the lock, then delivers outside it
func (m *ListModel) notifyLocked() {
	snap := m.snapshotLocked()
	listeners := make([]Listener, len(m.listeners))
	copy(listeners, m.listeners)
	m.mu.Unlock()
	for _, l := range listeners {
		l(snap)
	}
	m.mu.Lock()
}

// Load populates the list from the repository and clears loading
func (m *ListModel) Load(ctx context.Context) error {
	m.mu.Lock()
	m.loading = true
	m.err = ""
	m.notifyLocked()
	m.mu.Unlock()

	resp, err := m.svc.List(ctx, todo.ListOptions{})

	m.mu.Lock()
	defer m.mu.Unlock()
	m.loading = false
	if err != nil {
		m.err = err.Error()
		m.notifyLocked()
		return err
	}
	m.todos = resp.Todos
	m.notifyLocked()
	return nil
}

// reloadLocked restores the list from the repository after a failed
// mutation. Called with the lock held; leaves it held.
func (m *ListModel) reloadLocked(ctx context.Context) {
	m.mu.Unlock()
	resp, err := m.svc.List(ctx, todo.ListOptions{})
	m.mu.Lock()
	if err != nil {
		// Reload failed too; keep the optimistic state and the error
		return
	}
	m.todos = resp.Todos
}

// indexOf returns the position of id in the local copy, or -1
func (m *ListModel) indexOf(id uuid.UUID) int {
	for i := range m.todos {
		if m.todos[i].ID == id {
			return i
		}
	}
	return -1
}

// Create optimistically prepends a placeholder, persists, and replaces
// the placeholder with the server-assigned record
func (m *ListModel) Create(ctx context.Context, title, description string) error {
	placeholder := todo.Todo{
		ID:          uuid.New(),
		Title:       title,
		Description: description,
		CreatedAt:   todo.Now().UTC(),
	}

	m.mu.Lock()
	m.err = ""
	m.todos = append([]todo.Todo{placeholder}, m.todos...)
	m.notifyLocked()
	m.mu.Unlock()

	created, err := m.svc.Create(ctx, todo.CreateTodoRequest{
		Title:       title,
		Description: description,
	})

	m.mu.Lock()
	defer m.mu.Unlock()
	idx := m.indexOf(placeholder.ID)
	if err != nil {
		if idx >= 0 {
			m.todos = append(m.todos[:idx], m.todos[idx+1:]...)
		}
		m.err = err.Error()
		m.notifyLocked()
		return err
	}
	if idx >= 0 {
		m.todos[idx] = *created
	} else {
		m.todos = append([]todo.Todo{*created}, m.todos...)
	}
	m.notifyLocked()
	return nil
}

// UpdateTitle optimistically edits the title in place, then persists.
// Id and completed are untouched.
func (m *ListModel) UpdateTitle(ctx context.Context, id uuid.UUID, title string) error {
	m.mu.Lock()
	m.err = ""
	if idx := m.indexOf(id); idx >= 0 {
		m.todos[idx].Title = title
	}
	m.notifyLocked()
	m.mu.Unlock()

	updated, err := m.svc.Update(ctx, id, todo.UpdateTodoRequest{Title: &title})

	m.mu.Lock()
	defer m.mu.Unlock()
	if err != nil {
		m.err = err.Error()
		m.reloadLocked(ctx)
		m.notifyLocked()
		return err
	}
	if idx := m.indexOf(id); idx >= 0 {
		m.todos[idx] = *updated
	}
	m.notifyLocked()
	return nil
}

// Delete optimistically removes the item, then persists.
// On repository failure the list is restored via a full reload.
func (m *ListModel) Delete(ctx context.Context, id uuid.UUID) error {
	m.mu.Lock()
	m.err = ""
	if idx := m.indexOf(id); idx >= 0 {
		m.todos = append(m.todos[:idx], m.todos[idx+1:]...)
	}
	m.notifyLocked()
	m.mu.Unlock()

	err := m.svc.Delete(ctx, id)

	m.mu.Lock()
	defer m.mu.Unlock()
	if err != nil {
		m.err = err.Error()
		m.reloadLocked(ctx)
		m.notifyLocked()
		return err
	}
	m.notifyLocked()
	return nil
}

// Toggle optimistically flips completed, then persists
func (m *ListModel) Toggle(ctx context.Context, id uuid.UUID) error {
	m.mu.Lock()
	m.err = ""
	if idx := m.indexOf(id); idx >= 0 {
		m.todos[idx].Completed = !m.todos[idx].Completed
	}
	m.notifyLocked()
	m.mu.Unlock()

	toggled, err := m.svc.Toggle(ctx, id)

	m.mu.Lock()
	defer m.mu.Unlock()
	if err != nil {
		m.err = err.Error()
		m.reloadLocked(ctx)
		m.notifyLocked()
		return err
	}
	if idx := m.indexOf(id); idx >= 0 {
		m.todos[idx] = *toggled
	}
	m.notifyLocked()
	return nil
}
