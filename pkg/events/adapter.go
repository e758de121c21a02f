package events

import (
	"time"

	"github.com/google/uuid"

	"github.com/fluxorio/todo-service/pkg/todo"
)

// ServicePublisher adapts a Publisher to the todo.EventPublisher hook.
// Publish errors are logged by the caller-supplied OnError, never
// propagated into the mutation path.
type ServicePublisher struct {
	Publisher Publisher
	OnError   func(err error)
}

// NewServicePublisher wires a Publisher into todo.Service
func NewServicePublisher(p Publisher, onError func(err error)) *ServicePublisher {
	return &ServicePublisher{Publisher: p, OnError: onError}
}

// PublishChange implements todo.EventPublisher
func (a *ServicePublisher) PublishChange(eventType string, id uuid.UUID, record *todo.Todo) {
	if a.Publisher == nil {
		return
	}
	err := a.Publisher.Publish(Event{
		Type: Type(eventType),
		ID:   id.String(),
		Todo: record,
		At:   time.Now().UTC(),
	})
	if err != nil && a.OnError != nil {
		a.OnError(err)
	}
}
