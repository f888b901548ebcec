package handler

import (
	"noet-be/internal/pkg/logger"
	"noet-be/internal/pkg/serverutils"
	internalWS "noet-be/internal/websocket"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
)

// ChangeFeedHandler upgrades /:userId/ws to a websocket carrying that
// user's change events. Scope and token checks run before it in UserScope.
type ChangeFeedHandler struct {
	hub    *internalWS.Hub
	logger logger.ILogger
}

func NewChangeFeedHandler(hub *internalWS.Hub, log logger.ILogger) *ChangeFeedHandler {
	return &ChangeFeedHandler{
		hub:    hub,
		logger: log,
	}
}

func (h *ChangeFeedHandler) RegisterRoutes(router fiber.Router) {
	router.Get("/ws", h.ServeWs)
}

func (h *ChangeFeedHandler) ServeWs(c *fiber.Ctx) error {
	if !websocket.IsWebSocketUpgrade(c) {
		return fiber.ErrUpgradeRequired
	}

	userId := serverutils.UserId(c)
	return websocket.New(func(conn *websocket.Conn) {
		h.logger.Info("ChangeFeedHandler", "Starting WebSocket session", map[string]interface{}{"user_id": userId})
		internalWS.ServeWs(h.hub, conn, userId)
		h.logger.Info("ChangeFeedHandler", "WebSocket session ended", map[string]interface{}{"user_id": userId})
	})(c)
}
