package events

import (
	"encoding/json"
	"fmt"

	"github.com/nats-io/nats.go"
)

// NATSConfig configures the NATS publisher
type NATSConfig struct {
	// URL is the NATS server URL (default: nats.DefaultURL)
	URL string

	// Prefix is prepended to the event type to form the subject
	// (e.g. "todos" -> "todos.todo.created")
	Prefix string

	// Name is the connection name reported to the server
	Name string
}

// NATSPublisher publishes change events to a NATS subject per event type
type NATSPublisher struct {
	nc     *nats.Conn
	prefix string
}

// NewNATSPublisher connects to NATS and returns a publisher
func NewNATSPublisher(cfg NATSConfig) (*NATSPublisher, error) {
	url := cfg.URL
	if url == "" {
		url = nats.DefaultURL
	}
	name := cfg.Name
	if name == "" {
		name = "todo-service"
	}

	nc, err := nats.Connect(url, nats.Name(name))
	if err != nil {
		return nil, fmt.Errorf("nats connect: %w", err)
	}

	return &NATSPublisher{nc: nc, prefix: cfg.Prefix}, nil
}

// Publish serializes the event as JSON and publishes it
func (p *NATSPublisher) Publish(event Event) error {
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("encode event: %w", err)
	}
	subject := string(event.Type)
	if p.prefix != "" {
		subject = p.prefix + "." + subject
	}
	if err := p.nc.Publish(subject, data); err != nil {
		return fmt.Errorf("publish %s: %w", subject, err)
	}
	return nil
}

// Close flushes and closes the underlying connection
func (p *NATSPublisher) Close() error {
	if err := p.nc.Flush(); err != nil {
		p.nc.Close()
		return err
	}
	p.nc.Close()
	return nil
}
