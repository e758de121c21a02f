package api

import (
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/fluxorio/todo-service/pkg/events"
	"github.com/fluxorio/todo-service/pkg/logging"
	"github.com/fluxorio/todo-service/pkg/web"
)

// WatchHandler streams change events to WebSocket subscribers
type WatchHandler struct {
	bus      *events.Bus
	upgrader websocket.Upgrader
	logger   logging.Logger
}

// NewWatchHandler creates a watch handler over the in-process event bus
func NewWatchHandler(bus *events.Bus, logger logging.Logger) *WatchHandler {
	if bus == nil {
		panic("api: bus cannot be nil")
	}
	if logger == nil {
		logger = logging.NewDefaultLogger()
	}
	return &WatchHandler{
		bus: bus,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool { return true },
		},
		logger: logger,
	}
}

// Register mounts the watch route on the router
func (h *WatchHandler) Register(router *web.Router) {
	router.GET("/todos/watch", h.Watch)
}

// Watch handles GET /todos/watch, upgrading to a WebSocket and pushing
// one JSON-encoded event per message until the client disconnects
func (h *WatchHandler) Watch(ctx *web.RequestContext) error {
	conn, err := h.upgrader.Upgrade(ctx.Response.ResponseWriter, ctx.Request, nil)
	if err != nil {
		h.logger.Errorf("websocket upgrade failed: %v", err)
		return nil
	}
	defer conn.Close()

	ch, cancel := h.bus.Subscribe(64)
	defer cancel()

	// Reader goroutine: consume control frames and detect disconnect
	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	for {
		select {
		case event, ok := <-ch:
			if !ok {
				return nil
			}
			conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if err := conn.WriteJSON(event); err != nil {
				return nil
			}
		case <-done:
			return nil
		case <-ctx.Context().Done():
			return nil
		}
	}
}
