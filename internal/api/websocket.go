package api

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// MessageType defines WebSocket message types.
type MessageType string

const (
	MsgTypeSimulationStarted   MessageType = "simulation_started"
	MsgTypeSimulationProgress  MessageType = "simulation_progress"
	MsgTypeSimulationCompleted MessageType = "simulation_completed"
	MsgTypeSimulationFailed    MessageType = "simulation_failed"
	MsgTypeHeartbeat           MessageType = "heartbeat"
)

// WSMessage is a WebSocket message sent to dashboard clients.
type WSMessage struct {
	Type      MessageType `json:"type"`
	Data      interface{} `json:"data,omitempty"`
	Timestamp int64       `json:"timestamp"`
}

// Client is a WebSocket client connection.
type Client struct {
	id   string
	hub  *Hub
	conn *websocket.Conn
	send chan []byte
}

// Hub manages WebSocket connections and fans simulation lifecycle
// events out to every connected dashboard.
type Hub struct {
	logger  *zap.Logger
	mu      sync.RWMutex
	clients map[*Client]bool
	done    chan struct{}
}

// NewHub creates a new WebSocket hub.
func NewHub(logger *zap.Logger) *Hub {
	return &Hub{
		logger:  logger,
		clients: make(map[*Client]bool),
		done:    make(chan struct{}),
	}
}

// Run sends periodic heartbeats until Stop is called.
func (h *Hub) Run() {
	ticker := time.NewTicker(30 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-h.done:
			return
		case <-ticker.C:
			h.Broadcast(MsgTypeHeartbeat, nil)
		}
	}
}

// Stop disconnects all clients and stops the heartbeat loop.
func (h *Hub) Stop() {
	close(h.done)

	h.mu.Lock()
	defer h.mu.Unlock()
	for client := range h.clients {
		close(client.send)
		client.conn.Close()
		delete(h.clients, client)
	}
}

// Broadcast sends a message to every connected client. Slow clients
// are dropped rather than blocking the sender.
func (h *Hub) Broadcast(msgType MessageType, data interface{}) {
	msg := WSMessage{
		Type:      msgType,
		Data:      data,
		Timestamp: time.Now().UnixMilli(),
	}

	payload, err := json.Marshal(msg)
	if err != nil {
		h.logger.Error("marshaling websocket message", zap.Error(err))
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	for client := range h.clients {
		select {
		case client.send <- payload:
		default:
			h.logger.Warn("dropping slow websocket client", zap.String("id", client.id))
			close(client.send)
			client.conn.Close()
			delete(h.clients, client)
		}
	}
}

func (h *Hub) register(client *Client) {
	h.mu.Lock()
	h.clients[client] = true
	h.mu.Unlock()
	h.logger.Debug("websocket client connected", zap.String("id", client.id))
}

func (h *Hub) unregister(client *Client) {
	h.mu.Lock()
	if _, ok := h.clients[client]; ok {
		close(client.send)
		delete(h.clients, client)
	}
	h.mu.Unlock()
	h.logger.Debug("websocket client disconnected", zap.String("id", client.id))
}

// writePump delivers queued messages to the connection.
func (c *Client) writePump() {
	defer c.conn.Close()

	for payload := range c.send {
		if err := c.conn.WriteMessage(websocket.TextMessage, payload); err != nil {
			return
		}
	}
}

// readPump discards inbound messages; its job is detecting disconnects.
func (c *Client) readPump() {
	defer c.hub.unregister(c)

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
	}
}
