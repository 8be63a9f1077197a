package schedule

import (
	"go-broker/internal/common/api"
	"go-broker/internal/middleware"

	"github.com/gofiber/fiber/v2"
)

type ScheduleController struct {
	Service ScheduleService
}

func NewScheduleController(service ScheduleService) *ScheduleController {
	return &ScheduleController{Service: service}
}

// Create godoc
// @Summary Schedule a saved report for recurring delivery
// @Tags schedules
// @Accept json
// @Produce json
// @Router /api/report-schedules [post]
func (h *ScheduleController) Create(c *fiber.Ctx) error {
	identity, err := middleware.Identity(c)
	if err != nil {
		return err
	}
	var req ScheduleRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}

	sched, err := h.Service.CreateSchedule(c.UserContext(), identity, req)
	if err != nil {
		return api.ErrorResponse(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(sched)
}

// List godoc
// @Summary List schedules
// @Tags schedules
// @Produce json
// @Param report_id query string false "Only schedules of this report"
// @Router /api/report-schedules [get]
func (h *ScheduleController) List(c *fiber.Ctx) error {
	identity, err := middleware.Identity(c)
	if err != nil {
		return err
	}
	schedules, err := h.Service.ListSchedules(c.UserContext(), identity, c.Query("report_id"))
	if err != nil {
		return api.ErrorResponse(c, err)
	}
	return c.JSON(schedules)
}

// Get godoc
// @Summary Get a schedule
// @Tags schedules
// @Produce json
// @Param id path string true "Schedule ID"
// @Router /api/report-schedules/{id} [get]
func (h *ScheduleController) Get(c *fiber.Ctx) error {
	identity, err := middleware.Identity(c)
	if err != nil {
		return err
	}
	sched, err := h.Service.GetSchedule(c.UserContext(), identity, c.Params("id"))
	if err != nil {
		return api.ErrorResponse(c, err)
	}
	return c.JSON(sched)
}

// Update godoc
// @Summary Update a schedule
// @Tags schedules
// @Accept json
// @Produce json
// @Param id path string true "Schedule ID"
// @Router /api/report-schedules/{id} [put]
func (h *ScheduleController) Update(c *fiber.Ctx) error {
	identity, err := middleware.Identity(c)
	if err != nil {
		return err
	}
	var req ScheduleRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}

	sched, err := h.Service.UpdateSchedule(c.UserContext(), identity, c.Params("id"), req)
	if err != nil {
		return api.ErrorResponse(c, err)
	}
	return c.JSON(sched)
}

// Toggle godoc
// @Summary Pause an active schedule or resume a paused one
// @Tags schedules
// @Produce json
// @Param id path string true "Schedule ID"
// @Router /api/report-schedules/{id}/toggle [post]
func (h *ScheduleController) Toggle(c *fiber.Ctx) error {
	identity, err := middleware.Identity(c)
	if err != nil {
		return err
	}
	sched, err := h.Service.ToggleSchedule(c.UserContext(), identity, c.Params("id"))
	if err != nil {
		return api.ErrorResponse(c, err)
	}
	return c.JSON(sched)
}

// Disable godoc
// @Summary Disable a schedule for good
// @Tags schedules
// @Produce json
// @Param id path string true "Schedule ID"
// @Router /api/report-schedules/{id}/disable [post]
func (h *ScheduleController) Disable(c *fiber.Ctx) error {
	identity, err := middleware.Identity(c)
	if err != nil {
		return err
	}
	sched, err := h.Service.DisableSchedule(c.UserContext(), identity, c.Params("id"))
	if err != nil {
		return api.ErrorResponse(c, err)
	}
	return c.JSON(sched)
}

// RunNow godoc
// @Summary Run a schedule immediately
// @Tags schedules
// @Produce json
// @Param id path string true "Schedule ID"
// @Success 202
// @Failure 409
// @Router /api/report-schedules/{id}/run-now [post]
func (h *ScheduleController) RunNow(c *fiber.Ctx) error {
	identity, err := middleware.Identity(c)
	if err != nil {
		return err
	}
	run, err := h.Service.RunNow(c.UserContext(), identity, c.Params("id"))
	if err != nil {
		return api.ErrorResponse(c, err)
	}
	return c.Status(fiber.StatusAccepted).JSON(run)
}

// Delete godoc
// @Summary Delete a schedule
// @Tags schedules
// @Param id path string true "Schedule ID"
// @Router /api/report-schedules/{id} [delete]
func (h *ScheduleController) Delete(c *fiber.Ctx) error {
	identity, err := middleware.Identity(c)
	if err != nil {
		return err
	}
	if err := h.Service.DeleteSchedule(c.UserContext(), identity, c.Params("id")); err != nil {
		return api.ErrorResponse(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// Runs godoc
// @Summary Run history of a schedule, newest first
// @Tags schedules
// @Produce json
// @Param id path string true "Schedule ID"
// @Param limit query int false "Max entries (default 50)"
// @Router /api/report-schedules/{id}/runs [get]
func (h *ScheduleController) Runs(c *fiber.Ctx) error {
	identity, err := middleware.Identity(c)
	if err != nil {
		return err
	}
	runs, err := h.Service.ListRuns(c.UserContext(), identity, c.Params("id"), c.QueryInt("limit", 50))
	if err != nil {
		return api.ErrorResponse(c, err)
	}
	return c.JSON(runs)
}
