package api

import (
	"errors"

	"github.com/gofiber/fiber/v2"
)

// Route is an interface for any feature that wants to register endpoints
type Route interface {
	Setup(app *fiber.App)
}

// StatusCoder is implemented by domain errors that know their HTTP status
type StatusCoder interface {
	StatusCode() int
}

// ErrorResponse writes err with the status its type asks for, 500 otherwise
func ErrorResponse(c *fiber.Ctx, err error) error {
	status := fiber.StatusInternalServerError
	var sc StatusCoder
	if errors.As(err, &sc) {
		status = sc.StatusCode()
	}
	body := fiber.Map{"error": err.Error()}
	var details interface{ Details() any }
	if errors.As(err, &details) {
		body["details"] = details.Details()
	}
	return c.Status(status).JSON(body)
}
