package report

import (
	"go-broker/internal/config"
	"go-broker/internal/middleware"

	"github.com/gofiber/fiber/v2"
)

type ReportApi struct {
	ReportController *ReportController
	Config           *config.Config
}

func NewReportApi(reportController *ReportController, config *config.Config) *ReportApi {
	return &ReportApi{
		ReportController: reportController,
		Config:           config,
	}
}

func (api *ReportApi) Setup(app *fiber.App) {
	group := app.Group("/api/reports", middleware.AuthMiddleware(api.Config.SkipAuth))

	// Ad-hoc definitions
	group.Post("/validate", api.ReportController.Validate)
	group.Post("/compile", api.ReportController.Compile)
	group.Post("/execute", api.ReportController.Execute)

	group.Post("/", api.ReportController.Create)
	group.Get("/", api.ReportController.List)
	group.Get("/:id", api.ReportController.Get)
	group.Put("/:id", api.ReportController.Update)
	group.Delete("/:id", api.ReportController.Delete)
	group.Post("/:id/duplicate", api.ReportController.Duplicate)
	group.Post("/:id/run", api.ReportController.Run)
	group.Get("/:id/export", api.ReportController.Export)
}
