package report

import (
	"fmt"

	"go-broker/internal/common/api"
	"go-broker/internal/features/execution"
	"go-broker/internal/middleware"

	"github.com/gofiber/fiber/v2"
)

type ReportController struct {
	ReportService ReportService
}

func NewReportController(reportService ReportService) *ReportController {
	return &ReportController{ReportService: reportService}
}

// Validate godoc
// @Summary Validate a report definition
// @Tags reports
// @Accept json
// @Produce json
// @Router /api/reports/validate [post]
func (c *ReportController) Validate(ctx *fiber.Ctx) error {
	var def ReportDefinition
	if err := ctx.BodyParser(&def); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}
	violations := c.ReportService.Validate(def)
	return ctx.JSON(fiber.Map{
		"valid":      len(violations) == 0,
		"violations": violations,
	})
}

// Compile godoc
// @Summary Compile a report definition into SQL without running it
// @Tags reports
// @Accept json
// @Produce json
// @Router /api/reports/compile [post]
func (c *ReportController) Compile(ctx *fiber.Ctx) error {
	var def ReportDefinition
	if err := ctx.BodyParser(&def); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}
	q, err := c.ReportService.Compile(def)
	if err != nil {
		return api.ErrorResponse(ctx, err)
	}
	return ctx.JSON(q)
}

// Execute godoc
// @Summary Run an ad-hoc report definition
// @Tags reports
// @Accept json
// @Produce json
// @Router /api/reports/execute [post]
func (c *ReportController) Execute(ctx *fiber.Ctx) error {
	var req ExecuteRequest
	if err := ctx.BodyParser(&req); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}
	result, err := c.ReportService.Execute(ctx.UserContext(), req)
	if err != nil {
		return api.ErrorResponse(ctx, err)
	}
	return ctx.JSON(result)
}

// Create godoc
// @Summary Save a report
// @Tags reports
// @Accept json
// @Produce json
// @Router /api/reports [post]
func (c *ReportController) Create(ctx *fiber.Ctx) error {
	identity, err := middleware.Identity(ctx)
	if err != nil {
		return err
	}
	var req SaveReportRequest
	if err := ctx.BodyParser(&req); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}

	report, err := c.ReportService.CreateReport(ctx.UserContext(), identity, req)
	if err != nil {
		return api.ErrorResponse(ctx, err)
	}
	return ctx.Status(fiber.StatusCreated).JSON(report)
}

// List godoc
// @Summary List own and public reports
// @Tags reports
// @Produce json
// @Router /api/reports [get]
func (c *ReportController) List(ctx *fiber.Ctx) error {
	identity, err := middleware.Identity(ctx)
	if err != nil {
		return err
	}
	reports, err := c.ReportService.ListReports(ctx.UserContext(), identity)
	if err != nil {
		return api.ErrorResponse(ctx, err)
	}
	return ctx.JSON(reports)
}

// Get godoc
// @Summary Get a saved report
// @Tags reports
// @Produce json
// @Param id path string true "Report ID"
// @Router /api/reports/{id} [get]
func (c *ReportController) Get(ctx *fiber.Ctx) error {
	identity, err := middleware.Identity(ctx)
	if err != nil {
		return err
	}
	report, err := c.ReportService.GetReport(ctx.UserContext(), identity, ctx.Params("id"))
	if err != nil {
		return api.ErrorResponse(ctx, err)
	}
	return ctx.JSON(report)
}

// Update godoc
// @Summary Replace a saved report's definition
// @Tags reports
// @Accept json
// @Produce json
// @Param id path string true "Report ID"
// @Router /api/reports/{id} [put]
func (c *ReportController) Update(ctx *fiber.Ctx) error {
	identity, err := middleware.Identity(ctx)
	if err != nil {
		return err
	}
	var req SaveReportRequest
	if err := ctx.BodyParser(&req); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}

	report, err := c.ReportService.UpdateReport(ctx.UserContext(), identity, ctx.Params("id"), req)
	if err != nil {
		return api.ErrorResponse(ctx, err)
	}
	return ctx.JSON(report)
}

// Delete godoc
// @Summary Delete a saved report and disable its schedules
// @Tags reports
// @Param id path string true "Report ID"
// @Router /api/reports/{id} [delete]
func (c *ReportController) Delete(ctx *fiber.Ctx) error {
	identity, err := middleware.Identity(ctx)
	if err != nil {
		return err
	}
	if err := c.ReportService.DeleteReport(ctx.UserContext(), identity, ctx.Params("id")); err != nil {
		return api.ErrorResponse(ctx, err)
	}
	return ctx.SendStatus(fiber.StatusNoContent)
}

// Duplicate godoc
// @Summary Copy a report into a private one owned by the caller
// @Tags reports
// @Produce json
// @Param id path string true "Report ID"
// @Router /api/reports/{id}/duplicate [post]
func (c *ReportController) Duplicate(ctx *fiber.Ctx) error {
	identity, err := middleware.Identity(ctx)
	if err != nil {
		return err
	}
	report, err := c.ReportService.DuplicateReport(ctx.UserContext(), identity, ctx.Params("id"))
	if err != nil {
		return api.ErrorResponse(ctx, err)
	}
	return ctx.Status(fiber.StatusCreated).JSON(report)
}

// Run godoc
// @Summary Run a saved report
// @Tags reports
// @Produce json
// @Param id path string true "Report ID"
// @Param limit query int false "Page size"
// @Param offset query int false "Offset"
// @Router /api/reports/{id}/run [post]
func (c *ReportController) Run(ctx *fiber.Ctx) error {
	identity, err := middleware.Identity(ctx)
	if err != nil {
		return err
	}
	result, err := c.ReportService.RunReport(ctx.UserContext(), identity, ctx.Params("id"), ctx.QueryInt("limit", 0), ctx.QueryInt("offset", 0))
	if err != nil {
		return api.ErrorResponse(ctx, err)
	}
	return ctx.JSON(result)
}

// Export godoc
// @Summary Download a saved report as csv, excel or pdf
// @Tags reports
// @Produce octet-stream
// @Param id path string true "Report ID"
// @Param format query string false "csv, excel or pdf"
// @Router /api/reports/{id}/export [get]
func (c *ReportController) Export(ctx *fiber.Ctx) error {
	identity, err := middleware.Identity(ctx)
	if err != nil {
		return err
	}
	format := execution.Format(ctx.Query("format", "csv"))

	doc, err := c.ReportService.ExportReport(ctx.UserContext(), identity, ctx.Params("id"), format)
	if err != nil {
		return api.ErrorResponse(ctx, err)
	}

	ctx.Set("Content-Type", doc.ContentType)
	ctx.Set("Content-Disposition", fmt.Sprintf("attachment; filename=%s", doc.Filename))
	return ctx.Send(doc.Data)
}
