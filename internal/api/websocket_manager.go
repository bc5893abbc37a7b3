package api

import (
	"encoding/json"
	"net/http"
	"sync"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/tradelink/backend/internal/realtime"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// Client is one open websocket session for a user.
type Client struct {
	ID     uuid.UUID
	Conn   *websocket.Conn
	Send   chan []byte
	UserID uuid.UUID
}

// WebSocketManager tracks open sessions per user and delivers
// change-feed events to them. It is the hub's per-user sink.
type WebSocketManager struct {
	clients     map[*Client]bool
	register    chan *Client
	unregister  chan *Client
	userClients map[uuid.UUID]map[*Client]bool
	mu          sync.RWMutex
	logger      *zap.Logger
}

func NewWebSocketManager(logger *zap.Logger) *WebSocketManager {
	return &WebSocketManager{
		clients:     make(map[*Client]bool),
		register:    make(chan *Client),
		unregister:  make(chan *Client),
		userClients: make(map[uuid.UUID]map[*Client]bool),
		logger:      logger,
	}
}

func (m *WebSocketManager) Run() {
	for {
		select {
		case client := <-m.register:
			m.mu.Lock()
			m.clients[client] = true
			if _, ok := m.userClients[client.UserID]; !ok {
				m.userClients[client.UserID] = make(map[*Client]bool)
			}
			m.userClients[client.UserID][client] = true
			m.mu.Unlock()
			m.logger.Debug("client registered", zap.String("user_id", client.UserID.String()))

		case client := <-m.unregister:
			m.mu.Lock()
			if _, ok := m.clients[client]; ok {
				delete(m.clients, client)
				if userMap, ok := m.userClients[client.UserID]; ok {
					delete(userMap, client)
					if len(userMap) == 0 {
						delete(m.userClients, client.UserID)
					}
				}
				close(client.Send)
				m.logger.Debug("client unregistered", zap.String("user_id", client.UserID.String()))
			}
			m.mu.Unlock()
		}
	}
}

// SendToUser delivers an event to every open session of the user.
// Implements realtime.UserSink. A session with a full buffer misses
// the event; the client resynchronizes on its next fetch.
func (m *WebSocketManager) SendToUser(userID uuid.UUID, event realtime.Event) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	clients, ok := m.userClients[userID]
	if !ok {
		return
	}

	payload, err := json.Marshal(event)
	if err != nil {
		m.logger.Error("failed to marshal event", zap.Error(err))
		return
	}

	for client := range clients {
		select {
		case client.Send <- payload:
		default:
		}
	}
}

func (c *Client) ReadPump(manager *WebSocketManager) {
	defer func() {
		manager.unregister <- c
		c.Conn.Close()
	}()

	for {
		// The feed is push-only; reads exist to detect the close.
		if _, _, err := c.Conn.ReadMessage(); err != nil {
			break
		}
	}
}

func (c *Client) WritePump() {
	defer c.Conn.Close()

	for message := range c.Send {
		w, err := c.Conn.NextWriter(websocket.TextMessage)
		if err != nil {
			return
		}
		w.Write(message)

		// Drain any queued events into the same frame.
		n := len(c.Send)
		for i := 0; i < n; i++ {
			w.Write(<-c.Send)
		}

		if err := w.Close(); err != nil {
			return
		}
	}
	c.Conn.WriteMessage(websocket.CloseMessage, []byte{})
}
