package websocket

import (
	"encoding/json"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

// MessageType represents the type of WebSocket message
type MessageType string

const (
	MessageTypeSeatsUpdated MessageType = "seats_updated"
)

// Message represents a seat-availability update for one flight leg.
type Message struct {
	Type           MessageType `json:"type"`
	LegID          int64       `json:"legId"`
	SeatsAvailable int         `json:"seatsAvailable"`
	Timestamp      int64       `json:"timestamp"`
}

// Client represents a WebSocket client watching one leg's availability.
type Client struct {
	id    uuid.UUID
	hub   *Hub
	conn  *websocket.Conn
	send  chan []byte
	legID int64
}

// Hub manages WebSocket connections per flight leg.
type Hub struct {
	clients    map[int64]map[*Client]bool
	register   chan *Client
	unregister chan *Client
	broadcast  chan *Message
	mu         sync.RWMutex
}

var globalHub *Hub
var hubOnce sync.Once

// GetHub returns the global hub instance
func GetHub() *Hub {
	hubOnce.Do(func() {
		globalHub = NewHub()
		go globalHub.Run()
	})
	return globalHub
}

// NewHub creates a new Hub
func NewHub() *Hub {
	return &Hub{
		clients:    make(map[int64]map[*Client]bool),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		broadcast:  make(chan *Message, 256),
	}
}

// Run starts the hub's main loop
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			if h.clients[client.legID] == nil {
				h.clients[client.legID] = make(map[*Client]bool)
			}
			h.clients[client.legID][client] = true
			log.Printf("WebSocket: Client %s registered for flight %d (total: %d)", client.id, client.legID, len(h.clients[client.legID]))
			h.mu.Unlock()

		case client := <-h.unregister:
			h.mu.Lock()
			if clients, ok := h.clients[client.legID]; ok {
				if _, ok := clients[client]; ok {
					delete(clients, client)
					close(client.send)
					log.Printf("WebSocket: Client %s unregistered from flight %d (remaining: %d)", client.id, client.legID, len(clients))
					if len(clients) == 0 {
						delete(h.clients, client.legID)
					}
				}
			}
			h.mu.Unlock()

		case message := <-h.broadcast:
			data, err := json.Marshal(message)
			if err != nil {
				log.Printf("WebSocket: Failed to marshal message: %v", err)
				continue
			}

			h.mu.RLock()
			clients := h.clients[message.LegID]
			h.mu.RUnlock()

			for client := range clients {
				select {
				case client.send <- data:
				default:
					h.mu.Lock()
					delete(h.clients[message.LegID], client)
					close(client.send)
					h.mu.Unlock()
				}
			}
		}
	}
}

// BroadcastSeatsAvailable broadcasts a leg's new seat count to all clients
// watching it.
func (h *Hub) BroadcastSeatsAvailable(legID int64, seatsAvailable int) {
	msg := &Message{
		Type:           MessageTypeSeatsUpdated,
		LegID:          legID,
		SeatsAvailable: seatsAvailable,
		Timestamp:      time.Now().UnixMilli(),
	}
	h.broadcast <- msg
}

// GetClientCount returns the number of clients watching a leg.
func (h *Hub) GetClientCount(legID int64) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients[legID])
}
