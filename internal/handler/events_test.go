package handler

import (
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/Dhreetiman/product-management/internal/model"
)

func newEventsTestServer(t *testing.T) (*EventsHandler, *httptest.Server) {
	t.Helper()

	h := NewEventsHandler(zap.NewNop())
	router := mux.NewRouter()
	h.RegisterRoutes(router)

	server := httptest.NewServer(router)
	t.Cleanup(server.Close)

	return h, server
}

func dialEvents(t *testing.T, server *httptest.Server) *websocket.Conn {
	t.Helper()

	wsURL := strings.Replace(server.URL, "http://", "ws://", 1) + "/ws/items"
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("failed to dial websocket: %v", err)
	}
	t.Cleanup(func() {
		_ = conn.Close()
	})

	return conn
}

func TestEventsHandler_BroadcastReachesSubscriber(t *testing.T) {
	// Arrange
	h, server := newEventsTestServer(t)
	conn := dialEvents(t, server)

	item := &model.Item{ItemID: "id-1", ItemName: "Test Item", ItemPrice: 10.99}

	// Act: give the server a moment to register the client
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		h.mu.RLock()
		registered := len(h.clients) > 0
		h.mu.RUnlock()
		if registered {
			break
		}
		time.Sleep(10 * time.Millisecond)
	}

	h.Broadcast(model.NewItemEvent(model.EventItemCreated, item.ItemID, item))

	// Assert
	if err := conn.SetReadDeadline(time.Now().Add(2 * time.Second)); err != nil {
		t.Fatalf("failed to set read deadline: %v", err)
	}

	var event model.ItemEvent
	if err := conn.ReadJSON(&event); err != nil {
		t.Fatalf("failed to read event: %v", err)
	}
	if event.Type != model.EventItemCreated {
		t.Errorf("event type = %s, want %s", event.Type, model.EventItemCreated)
	}
	if event.ItemID != "id-1" {
		t.Errorf("event itemId = %s, want id-1", event.ItemID)
	}
	if event.Item == nil || event.Item.ItemName != "Test Item" {
		t.Errorf("event item = %+v", event.Item)
	}
}

func TestEventsHandler_BroadcastWithoutSubscribers(t *testing.T) {
	// Arrange
	h := NewEventsHandler(zap.NewNop())

	// Act / Assert: must not panic or block
	h.Broadcast(model.NewItemEvent(model.EventItemDeleted, "id-1", nil))
}

func TestEventsHandler_CloseAllConnections(t *testing.T) {
	// Arrange
	h, server := newEventsTestServer(t)
	dialEvents(t, server)

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		h.mu.RLock()
		registered := len(h.clients) > 0
		h.mu.RUnlock()
		if registered {
			break
		}
		time.Sleep(10 * time.Millisecond)
	}

	// Act
	h.CloseAllConnections()

	// Assert
	h.mu.RLock()
	remaining := len(h.clients)
	h.mu.RUnlock()
	if remaining != 0 {
		t.Errorf("clients remaining after close: %d", remaining)
	}
}
