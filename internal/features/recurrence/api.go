package recurrence

import (
	"go-broker/internal/config"
	"go-broker/internal/middleware"

	"github.com/gofiber/fiber/v2"
)

type RecurrenceApi struct {
	Controller *RecurrenceController
	Config     *config.Config
}

func NewRecurrenceApi(controller *RecurrenceController, cfg *config.Config) *RecurrenceApi {
	return &RecurrenceApi{Controller: controller, Config: cfg}
}

func (h *RecurrenceApi) Setup(app *fiber.App) {
	group := app.Group("/api/recurrence", middleware.AuthMiddleware(h.Config.SkipAuth))
	group.Get("/next-due", h.Controller.NextDue)
}
