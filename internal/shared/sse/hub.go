package sse

import (
	"encoding/json"
	"sync"

	"go.uber.org/zap"
)

// Event types
const (
	EventJobOrderCreated  = "job_order_created"
	EventJobOrderReceived = "job_order_received"
	EventJobOrderStatus   = "job_order_status"
)

// Event represents a Server-Sent Event
type Event struct {
	EventType string `json:"event"`
	Data      string `json:"data"`
	// VendorID limits delivery to internal users and that vendor. Empty means everyone.
	VendorID string `json:"-"`
}

// Client represents a connected SSE client
type Client struct {
	ID       string
	UserID   string
	VendorID string // set for vendor users only
	Events   chan Event
}

// Hub manages all SSE client connections
type Hub struct {
	mu      sync.RWMutex
	clients map[string]*Client
	logger  *zap.Logger
}

func NewHub(logger *zap.Logger) *Hub {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Hub{
		clients: make(map[string]*Client),
		logger:  logger,
	}
}

func (h *Hub) Register(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.clients[client.ID] = client
	h.logger.Debug("SSE client registered",
		zap.String("client", client.ID), zap.String("user", client.UserID), zap.Int("total", len(h.clients)))
}

func (h *Hub) Unregister(clientID string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if client, ok := h.clients[clientID]; ok {
		close(client.Events)
		delete(h.clients, clientID)
		h.logger.Debug("SSE client unregistered", zap.String("client", clientID), zap.Int("total", len(h.clients)))
	}
}

// Clients returns the number of connected clients.
func (h *Hub) Clients() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Broadcast sends an event to every client allowed to see it. Slow clients
// with a full buffer miss the event.
func (h *Hub) Broadcast(event Event) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, client := range h.clients {
		if client.VendorID != "" && client.VendorID != event.VendorID {
			continue
		}
		select {
		case client.Events <- event:
		default:
			h.logger.Warn("SSE client buffer full, skipping event", zap.String("client", client.ID))
		}
	}
}

// JobOrderEvent is the payload of every job order event.
type JobOrderEvent struct {
	ID          string `json:"id"`
	Number      string `json:"jobOrderNumber"`
	VendorID    string `json:"vendorId"`
	Status      string `json:"status"`
	JobWorkType string `json:"jobWorkType,omitempty"`
}

// PublishJobOrder broadcasts a job order change scoped to its vendor.
func (h *Hub) PublishJobOrder(eventType string, payload JobOrderEvent) {
	data, err := json.Marshal(payload)
	if err != nil {
		h.logger.Error("Marshal SSE payload", zap.Error(err))
		return
	}
	h.Broadcast(Event{EventType: eventType, Data: string(data), VendorID: payload.VendorID})
}
