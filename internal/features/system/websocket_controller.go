package system

import (
	"go-broker/pkg/utils"

	"github.com/gofiber/contrib/websocket"
	"go.uber.org/zap"
)

type WebSocketController struct {
	Hub    *Hub
	Logger *zap.Logger
}

func NewWebSocketController(hub *Hub, logger *zap.Logger) *WebSocketController {
	return &WebSocketController{Hub: hub, Logger: logger}
}

// HandleWebSocket streams run.started and run.finished events of the caller's tenant.
// Inbound frames are read only to notice the client going away.
func (h *WebSocketController) HandleWebSocket(c *websocket.Conn) {
	claims, ok := c.Locals(utils.UserClaimsKey).(*utils.UserClaims)
	if !ok || claims.TenantID == "" {
		_ = c.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.ClosePolicyViolation, "no tenant"))
		return
	}

	l := h.Hub.register(claims.TenantID)
	defer h.Hub.unregister(claims.TenantID, l)

	h.Logger.Debug("live listener connected", zap.String("tenant_id", claims.TenantID), zap.String("user_id", claims.UserID))

	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			if _, _, err := c.ReadMessage(); err != nil {
				return
			}
		}
	}()

	for {
		select {
		case msg, open := <-l.send:
			if !open {
				return
			}
			if err := c.WriteMessage(websocket.TextMessage, msg); err != nil {
				h.Logger.Debug("live listener write failed", zap.String("tenant_id", claims.TenantID), zap.Error(err))
				return
			}
		case <-done:
			return
		}
	}
}
