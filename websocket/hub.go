package websocket

import (
	"fmt"
	"sync"

	"github.com/gorilla/websocket"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Notification types pushed to coordinator dashboards
const (
	NotificationTypeDonationReceived   = "donation_received"
	NotificationTypeCommissionRecorded = "commission_recorded"
)

// Notification represents a message sent over WebSocket
type Notification struct {
	Type    string      `json:"type"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
	UserID  string      `json:"userID,omitempty"`
}

// Client represents a connected WebSocket client
type Client struct {
	UserID primitive.ObjectID
	Conn   *websocket.Conn
}

// Hub maintains the set of active clients and broadcasts messages
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

// SendToUser sends a message to a specific user
func (h *Hub) SendToUser(userID primitive.ObjectID, notification Notification) error {
	h.mu.RLock()
	client, ok := h.clients[userID]
	h.mu.RUnlock()

	if !ok {
		return fmt.Errorf("user not connected")
	}

	return client.Conn.WriteJSON(notification)
}

// NotifyDonationReceived tells a coordinator a donation landed in their tree.
// Best-effort: a disconnected dashboard is not an error worth surfacing.
func (h *Hub) NotifyDonationReceived(userID primitive.ObjectID, donationData interface{}) error {
	notification := Notification{
		Type:    NotificationTypeDonationReceived,
		Message: "New donation attributed to your team",
		Data:    donationData,
	}

	return h.SendToUser(userID, notification)
}

// NotifyCommissionRecorded tells a beneficiary a commission entry was created
func (h *Hub) NotifyCommissionRecorded(userID primitive.ObjectID, commissionData interface{}) error {
	notification := Notification{
		Type:    NotificationTypeCommissionRecorded,
		Message: "A commission was recorded for you",
		Data:    commissionData,
	}

	return h.SendToUser(userID, notification)
}
