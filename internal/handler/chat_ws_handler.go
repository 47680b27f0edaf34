package handler

import (
	"context"

	"rag-chat-be/internal/pkg/logger"
	"rag-chat-be/internal/repository/redisstore"
	internalWS "rag-chat-be/internal/websocket"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
	"github.com/google/uuid"
)

// ChatWsHandler upgrades a client to the session's push channel. Each
// upgrade mints a fresh connection handle and attaches it to the session,
// rotating out whatever handle was attached before.
type ChatWsHandler struct {
	hub    *internalWS.Hub
	store  *redisstore.SessionStore
	logger logger.ILogger
}

func NewChatWsHandler(hub *internalWS.Hub, store *redisstore.SessionStore, log logger.ILogger) *ChatWsHandler {
	return &ChatWsHandler{
		hub:    hub,
		store:  store,
		logger: log,
	}
}

// ServeWs handles websocket requests from the peer.
func (h *ChatWsHandler) ServeWs(c *fiber.Ctx) error {
	sessionIDStr := c.Query("sessionId")
	if sessionIDStr == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Missing sessionId query parameter"})
	}

	sessionID, err := uuid.Parse(sessionIDStr)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid session id format"})
	}

	exists, err := h.store.Exists(c.Context(), sessionID.String())
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Session lookup failed"})
	}
	if !exists {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Session not found or expired"})
	}

	if websocket.IsWebSocketUpgrade(c) {
		return websocket.New(func(conn *websocket.Conn) {
			connectionID := uuid.NewString()

			if err := h.store.AttachConnection(context.Background(), sessionID.String(), connectionID); err != nil {
				h.logger.Error("ChatWsHandler", "Connection attach failed", map[string]interface{}{
					"session_id": sessionID,
					"error":      err.Error(),
				})
				conn.Close()
				return
			}

			h.logger.Info("ChatWsHandler", "Starting WebSocket session", map[string]interface{}{
				"session_id":    sessionID,
				"connection_id": connectionID,
			})
			internalWS.ServeWs(h.hub, conn, sessionID, connectionID)
			h.logger.Info("ChatWsHandler", "WebSocket session ended", map[string]interface{}{
				"session_id":    sessionID,
				"connection_id": connectionID,
			})
		})(c)
	}
	return fiber.ErrUpgradeRequired
}

// RegisterRoutes registers the push channel route.
func (h *ChatWsHandler) RegisterRoutes(router fiber.Router) {
	router.Get("/chat/v1/ws", h.ServeWs)
}
