package hub

import (
	"encoding/json"
	"sync"

	"github.com/danuarts/takeout-app/utils"
)

// Event types understood by the operational dashboards.
const (
	TypeNewOrder = 1 // a paid order is waiting for the merchant
	TypeReminder = 2 // a customer is prompting for their order
)

// Message is the wire record broadcast to every observer.
type Message struct {
	Type    int    `json:"type"`
	OrderID uint   `json:"orderId"`
	Content string `json:"content"`
}

// Hub fans lifecycle events out to connected observer clients. It is
// created once at process start and injected into whichever component
// broadcasts; Register and Unregister are called by the transport layer
// on connect and disconnect.
type Hub struct {
	mu      sync.Mutex
	clients map[string]chan []byte
}

func New() *Hub {
	return &Hub{clients: make(map[string]chan []byte)}
}

// Register adds an observer channel under the given connection id. A
// previous channel with the same id is closed and replaced, so its pump
// goroutine terminates instead of ranging forever.
func (h *Hub) Register(connID string, ch chan []byte) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if old, ok := h.clients[connID]; ok {
		close(old)
	}
	h.clients[connID] = ch
}

// Unregister drops the observer. The channel is closed so the pump
// goroutine behind it can terminate.
func (h *Hub) Unregister(connID string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if ch, ok := h.clients[connID]; ok {
		delete(h.clients, connID)
		close(ch)
	}
}

// Count returns the number of currently registered observers.
func (h *Hub) Count() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

// Broadcast serializes the message and delivers it to every registered
// observer. Delivery is best effort: a full or dead channel is skipped
// rather than blocking the transition that triggered the event, and no
// failure ever reaches the caller. Broadcasts are serialized under the
// hub lock, so events for the same order go out in commit order.
func (h *Hub) Broadcast(msg Message) {
	data, err := json.Marshal(msg)
	if err != nil {
		utils.ErrorLogger.Printf("hub: marshal message: %v", err)
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	for connID, ch := range h.clients {
		select {
		case ch <- data:
		default:
			utils.InfoLogger.Printf("hub: observer %s is slow, dropping message", connID)
		}
	}
}
