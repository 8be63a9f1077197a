package system

import (
	"context"
	"time"

	"go-broker/internal/database"

	"github.com/gofiber/fiber/v2"
)

type HealthApi struct {
	Mongo    *database.MongodbDB
	ReportDB *database.ReportDB
}

func NewHealthApi(mongodb *database.MongodbDB, reportDB *database.ReportDB) *HealthApi {
	return &HealthApi{Mongo: mongodb, ReportDB: reportDB}
}

// Setup registers health check routes
func (h *HealthApi) Setup(app *fiber.App) {
	app.Get("/health", h.HealthCheck)
	app.Get("/health/ready", h.Readiness)
}

// HealthCheck godoc
// @Summary      Health Check
// @Description  Check if the server is up
// @Tags         health
// @Produce      plain
// @Success      200  {string}  string  "OK"
// @Router       /health [get]
func (h *HealthApi) HealthCheck(c *fiber.Ctx) error {
	return c.SendString("OK")
}

// Readiness godoc
// @Summary      Readiness Check
// @Description  Ping the application database and the report store
// @Tags         health
// @Produce      json
// @Success      200  {object}  map[string]string
// @Failure      503  {object}  map[string]string
// @Router       /health/ready [get]
func (h *HealthApi) Readiness(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.UserContext(), 2*time.Second)
	defer cancel()

	status := fiber.Map{"mongo": "ok", "report_db": "ok"}
	code := fiber.StatusOK
	if err := h.Mongo.DB.Client().Ping(ctx, nil); err != nil {
		status["mongo"] = err.Error()
		code = fiber.StatusServiceUnavailable
	}
	if err := h.ReportDB.DB.PingContext(ctx); err != nil {
		status["report_db"] = err.Error()
		code = fiber.StatusServiceUnavailable
	}
	return c.Status(code).JSON(status)
}
