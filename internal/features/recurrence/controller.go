package recurrence

import (
	"errors"
	"time"

	"go-broker/internal/common/api"

	"github.com/gofiber/fiber/v2"
)

type RecurrenceController struct{}

func NewRecurrenceController() *RecurrenceController {
	return &RecurrenceController{}
}

// NextDue godoc
// @Summary Preview the next due time of a cadence
// @Tags recurrence
// @Produce json
// @Param frequency query string true "daily, weekly, monthly, quarterly, yearly or custom"
// @Param expression query string false "Five-field cron expression for custom"
// @Param from query string false "RFC3339 start, defaults to now"
// @Router /api/recurrence/next-due [get]
func (h *RecurrenceController) NextDue(c *fiber.Ctx) error {
	freq := Frequency(c.Query("frequency"))
	expr := c.Query("expression")

	from := time.Now().UTC()
	if raw := c.Query("from"); raw != "" {
		t, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "from must be RFC3339"})
		}
		from = t
	}

	warnings, err := Validate(freq, expr)
	if errors.Is(err, ErrUnknownFrequency) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}
	if err != nil {
		return api.ErrorResponse(c, err)
	}

	next, err := NextDue(freq, expr, from)
	if errors.Is(err, ErrNeverFires) {
		return c.JSON(fiber.Map{"next_due_at": nil, "warnings": warnings})
	}
	if err != nil {
		return api.ErrorResponse(c, err)
	}
	return c.JSON(fiber.Map{"next_due_at": next, "warnings": warnings})
}
