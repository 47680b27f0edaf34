package websocket

import (
	"context"
	"encoding/json"
	"log"
	"sync"

	"rag-chat-be/internal/pkg/logger"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// relayChannel carries messages between instances so a push lands on
// whichever instance holds the target connection.
const relayChannel = "cluster_events"

// Hub owns the live websocket connections of this instance. At most one
// connection is attached per session: registering a newer connection for a
// session evicts the older one.
type Hub struct {
	// connectionId -> client
	clients map[string]*Client

	// sessionId -> the single live client of that session
	sessions map[uuid.UUID]*Client

	// Register requests from the clients.
	register chan *Client

	// Unregister requests from clients.
	unregister chan *Client

	// Lock for safe map access
	mu sync.RWMutex

	// Redis connection for cross-instance communication
	rdb *redis.Client

	// Dedicated Logger
	logger logger.ILogger

	// Called after a client is detached, with its session and connection
	// ids. Used to clear the session's connection handle.
	OnDetach func(sessionID uuid.UUID, connectionID string)
}

func NewHub(rdb *redis.Client, log logger.ILogger) *Hub {
	return &Hub{
		register:   make(chan *Client),
		unregister: make(chan *Client),
		clients:    make(map[string]*Client),
		sessions:   make(map[uuid.UUID]*Client),
		rdb:        rdb,
		logger:     log,
	}
}

func (h *Hub) Run() {
	// Start Redis Subscriber if Redis is available
	if h.rdb != nil {
		go h.subscribeToRedis()
	}

	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			if prev, ok := h.sessions[client.SessionID]; ok && prev != client {
				// Connection rotation: the newer handle wins
				delete(h.clients, prev.ConnectionID)
				close(prev.Send)
			}
			h.clients[client.ConnectionID] = client
			h.sessions[client.SessionID] = client
			h.mu.Unlock()
			h.logger.Info("Hub", "Client registered", map[string]interface{}{
				"session_id":    client.SessionID,
				"connection_id": client.ConnectionID,
			})

		case client := <-h.unregister:
			h.mu.Lock()
			detached := false
			if current, ok := h.clients[client.ConnectionID]; ok && current == client {
				delete(h.clients, client.ConnectionID)
				if h.sessions[client.SessionID] == client {
					delete(h.sessions, client.SessionID)
				}
				close(client.Send)
				detached = true
			}
			h.mu.Unlock()
			if detached {
				h.logger.Info("Hub", "Client unregistered", map[string]interface{}{
					"session_id":    client.SessionID,
					"connection_id": client.ConnectionID,
				})
				if h.OnDetach != nil {
					h.OnDetach(client.SessionID, client.ConnectionID)
				}
			}
		}
	}
}

// SendLocal delivers data to the connection if this instance holds it.
// Returns false when the connection is not registered here.
func (h *Hub) SendLocal(connectionID string, data []byte) bool {
	h.mu.RLock()
	client, ok := h.clients[connectionID]
	h.mu.RUnlock()

	if !ok {
		return false
	}

	select {
	case client.Send <- data:
		return true
	default:
		h.logger.Warn("Hub", "Client Send buffer full, dropping connection", map[string]interface{}{
			"connection_id": connectionID,
		})
		h.unregister <- client
		return false
	}
}

// CanRelay reports whether cross-instance delivery is available.
func (h *Hub) CanRelay() bool {
	return h.rdb != nil
}

// Relay publishes the message to the cluster channel so the instance that
// holds the connection can deliver it.
func (h *Hub) Relay(ctx context.Context, connectionID string, data []byte) error {
	if h.rdb == nil {
		return nil
	}
	payload := map[string]interface{}{
		"target_connection_id": connectionID,
		"message":              json.RawMessage(data),
	}
	jsonPayload, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	return h.rdb.Publish(ctx, relayChannel, jsonPayload).Err()
}

func (h *Hub) subscribeToRedis() {
	ctx := context.Background()
	pubsub := h.rdb.Subscribe(ctx, relayChannel)
	defer pubsub.Close()

	ch := pubsub.Channel()

	for msg := range ch {
		var payload struct {
			TargetConnectionID string          `json:"target_connection_id"`
			Message            json.RawMessage `json:"message"`
		}
		if err := json.Unmarshal([]byte(msg.Payload), &payload); err != nil {
			log.Printf("Redis msg parse error: %v", err)
			continue
		}

		h.SendLocal(payload.TargetConnectionID, payload.Message)
	}
}
