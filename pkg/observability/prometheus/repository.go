package prometheus

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/fluxorio/todo-service/pkg/todo"
)

// instrumentedRepository decorates a todo.Repository with op metrics
type instrumentedRepository struct {
	next    todo.Repository
	metrics *Metrics
}

// InstrumentRepository wraps repo so every operation is counted and timed
func InstrumentRepository(repo todo.Repository) todo.Repository {
	if repo == nil {
		panic("prometheus: repo cannot be nil")
	}
	return &instrumentedRepository{next: repo, metrics: GetMetrics()}
}

func (r *instrumentedRepository) observe(op string, start time.Time, err error) {
	r.metrics.RecordRepositoryOp(op, time.Since(start), err)
}

func (r *instrumentedRepository) List(ctx context.Context, opts todo.ListOptions) (*todo.TodoListResponse, error) {
	start := time.Now()
	resp, err := r.next.List(ctx, opts)
	r.observe("list", start, err)
	return resp, err
}

func (r *instrumentedRepository) Get(ctx context.Context, id uuid.UUID) (*todo.Todo, error) {
	start := time.Now()
	t, err := r.next.Get(ctx, id)
	r.observe("get", start, err)
	return t, err
}

func (r *instrumentedRepository) Create(ctx context.Context, req todo.CreateTodoRequest) (*todo.Todo, error) {
	start := time.Now()
	t, err := r.next.Create(ctx, req)
	r.observe("create", start, err)
	return t, err
}

func (r *instrumentedRepository) Update(ctx context.Context, id uuid.UUID, req todo.UpdateTodoRequest) (*todo.Todo, error) {
	start := time.Now()
	t, err := r.next.Update(ctx, id, req)
	r.observe("update", start, err)
	return t, err
}

func (r *instrumentedRepository) Delete(ctx context.Context, id uuid.UUID) error {
	start := time.Now()
	err := r.next.Delete(ctx, id)
	r.observe("delete", start, err)
	return err
}

func (r *instrumentedRepository) Toggle(ctx context.Context, id uuid.UUID) (*todo.Todo, error) {
	start := time.Now()
	t, err := r.next.Toggle(ctx, id)
	r.observe("toggle", start, err)
	return t, err
}
