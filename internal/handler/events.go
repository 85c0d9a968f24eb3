package handler

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/Dhreetiman/product-management/internal/model"
)

// WebSocket configuration constants.
const (
	writeWait       = 10 * time.Second
	pongWait        = 60 * time.Second
	pingPeriod      = (pongWait * 9) / 10
	maxMessageSize  = 512
	clientQueueSize = 16
)

// eventClient tracks one subscriber: its outbound queue and the cancel
// function tearing down its pumps.
type eventClient struct {
	send   chan model.ItemEvent
	cancel context.CancelFunc
}

// EventsHandler streams item lifecycle events (created, updated,
// deleted) to WebSocket subscribers.
type EventsHandler struct {
	upgrader websocket.Upgrader
	logger   *zap.Logger
	mu       sync.RWMutex
	clients  map[*websocket.Conn]*eventClient
}

// NewEventsHandler creates a new EventsHandler instance.
func NewEventsHandler(logger *zap.Logger) *EventsHandler {
	return &EventsHandler{
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(_ *http.Request) bool {
				return true // Allow all origins for development
			},
		},
		logger:  logger,
		clients: make(map[*websocket.Conn]*eventClient),
	}
}

// RegisterRoutes registers the WebSocket routes with the router.
func (h *EventsHandler) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/ws/items", h.HandleSubscribe).Methods(http.MethodGet)
}

// Broadcast queues an event for every connected subscriber. Slow clients
// whose queue is full miss the event instead of blocking the request
// that produced it.
func (h *EventsHandler) Broadcast(event model.ItemEvent) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for _, client := range h.clients {
		select {
		case client.send <- event:
		default:
			h.logger.Debug("dropping event for slow subscriber",
				zap.String("event_type", event.Type),
				zap.String("item_id", event.ItemID),
			)
		}
	}
}

// HandleSubscribe handles WebSocket subscription requests.
//
//nolint:contextcheck // intentional: WebSocket connections outlive the HTTP request context
func (h *EventsHandler) HandleSubscribe(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Error("failed to upgrade connection", zap.Error(err))
		return
	}

	// Use background context instead of request context because the HTTP
	// request context gets canceled when the handler returns, but the
	// subscription persists beyond the initial upgrade.
	ctx, cancel := context.WithCancel(context.Background())

	client := &eventClient{
		send:   make(chan model.ItemEvent, clientQueueSize),
		cancel: cancel,
	}

	h.mu.Lock()
	h.clients[conn] = client
	h.mu.Unlock()

	h.logger.Info("event subscriber connected", zap.String("remote_addr", conn.RemoteAddr().String()))

	go h.writePump(ctx, conn, client)
	go h.readPump(ctx, conn, cancel)
}

// readPump drains incoming messages; subscribers are not expected to
// send anything beyond pong control frames.
func (h *EventsHandler) readPump(ctx context.Context, conn *websocket.Conn, cancel context.CancelFunc) {
	defer func() {
		cancel()
		h.removeClient(conn)
		if err := conn.Close(); err != nil {
			h.logger.Debug("error closing connection", zap.Error(err))
		}
	}()

	conn.SetReadLimit(maxMessageSize)
	if err := conn.SetReadDeadline(time.Now().Add(pongWait)); err != nil {
		h.logger.Error("failed to set read deadline", zap.Error(err))
		return
	}

	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		select {
		case <-ctx.Done():
			return
		default:
			if _, _, err := conn.ReadMessage(); err != nil {
				if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
					h.logger.Warn("websocket read error", zap.Error(err))
				}
				return
			}
		}
	}
}

// writePump forwards queued events to the connection and keeps it alive
// with periodic pings.
func (h *EventsHandler) writePump(ctx context.Context, conn *websocket.Conn, client *eventClient) {
	pingTicker := time.NewTicker(pingPeriod)
	defer pingTicker.Stop()

	for {
		select {
		case <-ctx.Done():
			h.sendCloseMessage(conn)
			return
		case event := <-client.send:
			if err := h.sendEvent(conn, event); err != nil {
				h.logger.Debug("failed to send event", zap.Error(err))
				return
			}
		case <-pingTicker.C:
			if err := h.sendPing(conn); err != nil {
				h.logger.Debug("failed to send ping", zap.Error(err))
				return
			}
		}
	}
}

// sendEvent writes an event to the connection.
func (h *EventsHandler) sendEvent(conn *websocket.Conn, event model.ItemEvent) error {
	if err := conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
		return err
	}
	return conn.WriteJSON(event)
}

// sendPing sends a ping message to the connection.
func (h *EventsHandler) sendPing(conn *websocket.Conn) error {
	if err := conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
		return err
	}
	return conn.WriteMessage(websocket.PingMessage, nil)
}

// sendCloseMessage sends a close message to the connection.
func (h *EventsHandler) sendCloseMessage(conn *websocket.Conn) {
	if err := conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
		h.logger.Debug("failed to set write deadline for close", zap.Error(err))
		return
	}

	closeMsg := websocket.FormatCloseMessage(websocket.CloseNormalClosure, "server shutting down")
	if err := conn.WriteMessage(websocket.CloseMessage, closeMsg); err != nil {
		h.logger.Debug("failed to send close message", zap.Error(err))
	}
}

// removeClient removes a subscriber from the clients map.
func (h *EventsHandler) removeClient(conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if client, exists := h.clients[conn]; exists {
		client.cancel()
		delete(h.clients, conn)
		h.logger.Info("event subscriber disconnected", zap.String("remote_addr", conn.RemoteAddr().String()))
	}
}

// CloseAllConnections closes all active subscriber connections.
func (h *EventsHandler) CloseAllConnections() {
	h.mu.Lock()
	clients := make(map[*websocket.Conn]*eventClient, len(h.clients))
	for conn, client := range h.clients {
		clients[conn] = client
	}
	h.mu.Unlock()

	// Cancel all contexts first so writePump sends close messages.
	for _, client := range clients {
		client.cancel()
	}

	// Give writePump goroutines time to send close messages.
	time.Sleep(100 * time.Millisecond)

	h.mu.Lock()
	for conn := range h.clients {
		if err := conn.Close(); err != nil {
			h.logger.Debug("error closing connection", zap.Error(err))
		}
		delete(h.clients, conn)
	}
	h.mu.Unlock()

	h.logger.Info("all event subscriber connections closed")
}
