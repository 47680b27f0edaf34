package push

import (
	"context"
	"errors"
	"fmt"

	"rag-chat-be/internal/pkg/logger"
	"rag-chat-be/internal/repository/redisstore"
	"rag-chat-be/internal/websocket"
	"rag-chat-be/pkg/wire"
)

// HubSender resolves the session's current connection handle from the
// session store and delivers through the local hub, falling back to the
// cluster relay for connections held by other instances.
type HubSender struct {
	hub    *websocket.Hub
	store  *redisstore.SessionStore
	logger logger.ILogger
}

var _ Sender = &HubSender{}

func NewHubSender(hub *websocket.Hub, store *redisstore.SessionStore, log logger.ILogger) *HubSender {
	return &HubSender{
		hub:    hub,
		store:  store,
		logger: log,
	}
}

func (s *HubSender) Send(ctx context.Context, sessionID string, payload wire.Payload) error {
	connectionID, err := s.store.GetConnection(ctx, sessionID)
	if err != nil {
		if errors.Is(err, redisstore.ErrSessionNotFound) {
			return ErrNoActiveConnection
		}
		return fmt.Errorf("resolve connection: %w", err)
	}
	if connectionID == "" {
		return ErrNoActiveConnection
	}

	data, err := wire.Encode(payload)
	if err != nil {
		return fmt.Errorf("encode payload: %w", err)
	}

	if s.hub.SendLocal(connectionID, data) {
		return nil
	}

	if !s.hub.CanRelay() {
		// No instance holds this connection anymore. Clear the handle so
		// later sends short-circuit to no-active-connection.
		if err := s.store.ClearConnection(ctx, sessionID, connectionID); err != nil {
			s.logger.Warn("Push", "Stale handle clear failed", map[string]interface{}{
				"session_id":    sessionID,
				"connection_id": connectionID,
				"error":         err.Error(),
			})
		}
		return ErrStaleConnection
	}

	// Not held locally: hand off to whichever instance has the connection.
	if err := s.hub.Relay(ctx, connectionID, data); err != nil {
		s.logger.Warn("Push", "Cluster relay failed", map[string]interface{}{
			"session_id":    sessionID,
			"connection_id": connectionID,
			"error":         err.Error(),
		})
		return ErrTransientSend
	}
	return nil
}
