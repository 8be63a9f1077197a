package catalog

import (
	"go-broker/internal/config"
	"go-broker/internal/middleware"

	"github.com/gofiber/fiber/v2"
)

type CatalogApi struct {
	CatalogController *CatalogController
	Config            *config.Config
}

func NewCatalogApi(controller *CatalogController, cfg *config.Config) *CatalogApi {
	return &CatalogApi{CatalogController: controller, Config: cfg}
}

func (api *CatalogApi) Setup(app *fiber.App) {
	group := app.Group("/api/report-types", middleware.AuthMiddleware(api.Config.SkipAuth))

	group.Get("/", api.CatalogController.List)
	group.Get("/:id", api.CatalogController.Get)
}
