package system

import (
	"go-broker/internal/config"
	"go-broker/internal/middleware"

	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
)

type WebSocketApi struct {
	Controller *WebSocketController
	Config     *config.Config
}

func NewWebSocketApi(controller *WebSocketController, cfg *config.Config) *WebSocketApi {
	return &WebSocketApi{
		Controller: controller,
		Config:     cfg,
	}
}

func (h *WebSocketApi) Setup(app *fiber.App) {
	ws := app.Group("/api/ws", middleware.AuthMiddleware(h.Config.SkipAuth), func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})
	ws.Get("/", websocket.New(h.Controller.HandleWebSocket))
}
