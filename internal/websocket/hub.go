package websocket

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

// MessageType represents the type of WebSocket message
type MessageType string

const (
	MessageTypeSlotsUpdated     MessageType = "slots_updated"
	MessageTypeBookingConfirmed MessageType = "booking_confirmed"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10
	sendBuffer = 16
)

// Message represents a WebSocket message
type Message struct {
	Type           MessageType `json:"type"`
	TourID         int64       `json:"tour_id"`
	AvailableSlots int         `json:"available_slots"`
	BookingID      int64       `json:"booking_id,omitempty"`
	Message        string      `json:"message,omitempty"`
	Timestamp      int64       `json:"timestamp"`
}

// Client represents a WebSocket client connection
type Client struct {
	id     uuid.UUID
	hub    *Hub
	conn   *websocket.Conn
	send   chan []byte
	tourID int64
}

// Hub manages WebSocket connections per tour
type Hub struct {
	clients    map[int64]map[*Client]bool
	register   chan *Client
	unregister chan *Client
	broadcast  chan *Message
	done       chan struct{}
	mu         sync.RWMutex
	logger     *slog.Logger
	upgrader   websocket.Upgrader
}

// NewHub creates a new Hub
func NewHub(logger *slog.Logger) *Hub {
	if logger == nil {
		logger = slog.Default()
	}
	return &Hub{
		clients:    make(map[int64]map[*Client]bool),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		broadcast:  make(chan *Message, 256),
		done:       make(chan struct{}),
		logger:     logger.With("component", "websocket"),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			// Origins are enforced by the CORS layer in front of the API.
			CheckOrigin: func(r *http.Request) bool { return true },
		},
	}
}

// Run starts the hub's main loop. It returns when ctx is done.
func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			close(h.done)
			h.closeAll()
			return

		case client := <-h.register:
			h.mu.Lock()
			if h.clients[client.tourID] == nil {
				h.clients[client.tourID] = make(map[*Client]bool)
			}
			h.clients[client.tourID][client] = true
			total := len(h.clients[client.tourID])
			h.mu.Unlock()
			h.logger.Debug("client registered", "client", client.id, "tourId", client.tourID, "total", total)

		case client := <-h.unregister:
			h.remove(client)

		case message := <-h.broadcast:
			data, err := json.Marshal(message)
			if err != nil {
				h.logger.Error("failed to marshal message", "error", err)
				continue
			}

			h.mu.RLock()
			targets := make([]*Client, 0, len(h.clients[message.TourID]))
			for client := range h.clients[message.TourID] {
				targets = append(targets, client)
			}
			h.mu.RUnlock()

			h.logger.Debug("broadcasting", "type", message.Type, "tourId", message.TourID, "clients", len(targets))

			for _, client := range targets {
				select {
				case client.send <- data:
				default:
					h.remove(client)
				}
			}
		}
	}
}

// remove drops client and closes its send channel exactly once
func (h *Hub) remove(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	clients, ok := h.clients[client.tourID]
	if !ok || !clients[client] {
		return
	}
	delete(clients, client)
	close(client.send)
	if len(clients) == 0 {
		delete(h.clients, client.tourID)
	}
	h.logger.Debug("client unregistered", "client", client.id, "tourId", client.tourID, "remaining", len(clients))
}

func (h *Hub) closeAll() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for tourID, clients := range h.clients {
		for client := range clients {
			close(client.send)
		}
		delete(h.clients, tourID)
	}
}

// BroadcastSlotsUpdated tells everyone watching a tour how many slots are left
func (h *Hub) BroadcastSlotsUpdated(tourID int64, available int) {
	h.publish(&Message{
		Type:           MessageTypeSlotsUpdated,
		TourID:         tourID,
		AvailableSlots: available,
	})
}

// BroadcastBookingConfirmed announces a new booking and the remaining slots
func (h *Hub) BroadcastBookingConfirmed(tourID, bookingID int64, available int) {
	h.publish(&Message{
		Type:           MessageTypeBookingConfirmed,
		TourID:         tourID,
		BookingID:      bookingID,
		AvailableSlots: available,
		Message:        "A booking was just confirmed for this tour",
	})
}

func (h *Hub) publish(msg *Message) {
	msg.Timestamp = time.Now().UnixMilli()
	select {
	case h.broadcast <- msg:
	default:
		h.logger.Warn("broadcast queue full, dropping message", "type", msg.Type, "tourId", msg.TourID)
	}
}

// GetClientCount returns the number of clients watching a tour
func (h *Hub) GetClientCount(tourID int64) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients[tourID])
}

// ServeWs upgrades the request and subscribes the connection to tourID
func (h *Hub) ServeWs(w http.ResponseWriter, r *http.Request, tourID int64) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("upgrade failed", "error", err)
		return
	}

	client := &Client{
		id:     uuid.New(),
		hub:    h,
		conn:   conn,
		send:   make(chan []byte, sendBuffer),
		tourID: tourID,
	}
	select {
	case h.register <- client:
	case <-h.done:
		conn.Close()
		return
	}

	go client.writePump()
	go client.readPump()
}

// readPump discards inbound messages and unregisters on disconnect.
func (c *Client) readPump() {
	defer func() {
		select {
		case c.hub.unregister <- c:
		case <-c.hub.done:
		}
		c.conn.Close()
	}()

	c.conn.SetReadLimit(512)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.hub.logger.Debug("connection closed", "client", c.id, "error", err)
			}
			return
		}
	}
}

func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case data, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				return
			}

		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
