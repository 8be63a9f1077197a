package schedule

import (
	"go-broker/internal/config"
	"go-broker/internal/middleware"

	"github.com/gofiber/fiber/v2"
)

type ScheduleApi struct {
	Controller *ScheduleController
	Config     *config.Config
}

func NewScheduleApi(controller *ScheduleController, cfg *config.Config) *ScheduleApi {
	return &ScheduleApi{Controller: controller, Config: cfg}
}

func (h *ScheduleApi) Setup(app *fiber.App) {
	group := app.Group("/api/report-schedules", middleware.AuthMiddleware(h.Config.SkipAuth))

	group.Post("/", h.Controller.Create)
	group.Get("/", h.Controller.List)
	group.Get("/:id", h.Controller.Get)
	group.Put("/:id", h.Controller.Update)
	group.Delete("/:id", h.Controller.Delete)
	group.Post("/:id/toggle", h.Controller.Toggle)
	group.Post("/:id/disable", h.Controller.Disable)
	group.Post("/:id/run-now", h.Controller.RunNow)
	group.Get("/:id/runs", h.Controller.Runs)
}
