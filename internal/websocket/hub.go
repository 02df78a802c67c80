package websocket

import (
	"encoding/json"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Notification event types pushed to connected clients.
const (
	EventReviewModerated = "review_moderated"
	EventNewReview       = "new_review"
	EventNewSubscriber   = "new_subscriber"
	EventNewsPublished   = "news_published"
)

// Notification is the JSON payload pushed over a websocket connection.
type Notification struct {
	Event string      `json:"event"`
	Data  interface{} `json:"data,omitempty"`
}

// directMessage targets one user's connections.
type directMessage struct {
	targetUserID uuid.UUID
	payload      []byte
}

// Hub maintains the set of active clients and routes notifications. A
// user may hold several connections (multiple tabs); all of them receive
// each notification.
type Hub struct {
	// Registered clients, user ID to set of active connections.
	clients map[uuid.UUID]map[*Client]bool

	// Site-wide announcements, delivered to every connection.
	broadcast chan []byte

	// Per-user notifications.
	direct chan *directMessage

	// Register requests from the clients.
	Register chan *Client

	// Unregister requests from clients.
	Unregister chan *Client

	mu sync.RWMutex
}

func NewHub() *Hub {
	return &Hub{
		broadcast:  make(chan []byte),
		direct:     make(chan *directMessage),
		Register:   make(chan *Client),
		Unregister: make(chan *Client),
		clients:    make(map[uuid.UUID]map[*Client]bool),
	}
}

// Run starts the hub's processing loop.
func (h *Hub) Run() {
	log.Println("WebSocket hub started")
	for {
		select {
		case client := <-h.Register:
			h.mu.Lock()
			if _, ok := h.clients[client.UserID]; !ok {
				h.clients[client.UserID] = make(map[*Client]bool)
			}
			h.clients[client.UserID][client] = true
			log.Printf("WebSocket client registered for user %s (%d connections)",
				client.UserID, len(h.clients[client.UserID]))
			h.mu.Unlock()

		case client := <-h.Unregister:
			h.mu.Lock()
			if userClients, ok := h.clients[client.UserID]; ok {
				if _, clientOk := userClients[client]; clientOk {
					delete(userClients, client)
					if len(userClients) == 0 {
						delete(h.clients, client.UserID)
					}
					log.Printf("WebSocket client unregistered for user %s", client.UserID)
				}
			}
			h.mu.Unlock()

		case message := <-h.broadcast:
			h.mu.RLock()
			for _, userClients := range h.clients {
				for client := range userClients {
					select {
					case client.Send <- message:
					default:
						log.Printf("Broadcast send buffer full for client of user %s", client.UserID)
					}
				}
			}
			h.mu.RUnlock()

		case message := <-h.direct:
			h.mu.RLock()
			for client := range h.clients[message.targetUserID] {
				select {
				case client.Send <- message.payload:
				default:
					log.Printf("Send channel full for client of user %s, notification dropped", client.UserID)
				}
			}
			h.mu.RUnlock()
		}
	}
}

// Notify pushes a notification to one user's connections. A disconnected
// user simply misses it; notifications are not persisted.
func (h *Hub) Notify(targetUserID uuid.UUID, event string, data interface{}) {
	payload, err := json.Marshal(&Notification{Event: event, Data: data})
	if err != nil {
		log.Printf("Failed to marshal notification %s: %v", event, err)
		return
	}

	select {
	case h.direct <- &directMessage{targetUserID: targetUserID, payload: payload}:
	case <-time.After(1 * time.Second):
		log.Printf("Timeout queuing %s notification for user %s", event, targetUserID)
	}
}

// Announce pushes a notification to every connected client.
func (h *Hub) Announce(event string, data interface{}) {
	payload, err := json.Marshal(&Notification{Event: event, Data: data})
	if err != nil {
		log.Printf("Failed to marshal announcement %s: %v", event, err)
		return
	}

	select {
	case h.broadcast <- payload:
	case <-time.After(1 * time.Second):
		log.Printf("Timeout queuing %s announcement", event)
	}
}
