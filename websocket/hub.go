package websocket

import (
	"fmt"
	"sync"

	"go.mongodb.org/mongo-driver/bson/primitive"

	ws "github.com/gorilla/websocket"
)

// Event types pushed to connected back-office users
const (
	EventTypeInvoiceGenerated = "invoice_generated"
	EventTypeInvoiceStatus    = "invoice_status"
	EventTypePayoutCreated    = "payout_created"
	EventTypePayoutPaid       = "payout_paid"
)

// Event represents a message sent over WebSocket
type Event struct {
	Type    string      `json:"type"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
	UserID  string      `json:"userID,omitempty"`
}

// Client represents a connected WebSocket client
type Client struct {
	UserID primitive.ObjectID
	Conn   *ws.Conn
}

// Hub maintains the set of active clients and pushes engine events to them
type Hub struct {
	clients    map[primitive.ObjectID]*Client
	register   chan *Client
	unregister chan *Client
	mu         sync.RWMutex
}

// NewHub creates a new Hub instance
func NewHub() *Hub {
	return &Hub{
		clients:    make(map[primitive.ObjectID]*Client),
		register:   make(chan *Client),
		unregister: make(chan *Client),
	}
}

// Run starts the hub's event loop
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			h.clients[client.UserID] = client
			h.mu.Unlock()
		case client := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[client.UserID]; ok {
				delete(h.clients, client.UserID)
			}
			client.Conn.Close()
			h.mu.Unlock()
		}
	}
}

// SendToUser sends an event to a specific user
func (h *Hub) SendToUser(userID primitive.ObjectID, event Event) error {
	h.mu.RLock()
	client, ok := h.clients[userID]
	h.mu.RUnlock()

	if !ok {
		return fmt.Errorf("user not connected")
	}

	return client.Conn.WriteJSON(event)
}

// Broadcast sends an event to every connected user
func (h *Hub) Broadcast(event Event) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for _, client := range h.clients {
		client.Conn.WriteJSON(event)
	}
}

// NotifyInvoiceEvent pushes an invoice event to the payee's user, ignoring
// the not-connected case.
func (h *Hub) NotifyInvoiceEvent(userID primitive.ObjectID, eventType, message string, data interface{}) {
	_ = h.SendToUser(userID, Event{
		Type:    eventType,
		Message: message,
		Data:    data,
		UserID:  userID.Hex(),
	})
}
