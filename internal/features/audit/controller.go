package audit

import (
	"strconv"

	"go-broker/internal/common/api"
	"go-broker/internal/middleware"

	"github.com/gofiber/fiber/v2"
)

type AuditController struct {
	Service AuditService
}

func NewAuditController(service AuditService) *AuditController {
	return &AuditController{Service: service}
}

// ListLogs godoc
// @Summary List audit entries of the caller's tenant
// @Tags audit
// @Produce json
// @Param module query string false "reports or report_schedules"
// @Param record_id query string false "Record id"
// @Param page query int false "Page"
// @Param limit query int false "Page size"
// @Failure 403 {object} map[string]string
// @Router /api/audit-logs [get]
func (ctrl *AuditController) ListLogs(c *fiber.Ctx) error {
	identity, err := middleware.Identity(c)
	if err != nil {
		return err
	}
	page, _ := strconv.ParseInt(c.Query("page", "1"), 10, 64)
	limit, _ := strconv.ParseInt(c.Query("limit", "20"), 10, 64)

	filters := make(map[string]interface{})
	if module := c.Query("module"); module != "" {
		filters["module"] = module
	}
	if recordID := c.Query("record_id"); recordID != "" {
		filters["record_id"] = recordID
	}

	logs, err := ctrl.Service.ListLogs(c.UserContext(), identity.TenantID, filters, page, limit)
	if err != nil {
		return api.ErrorResponse(c, err)
	}

	return c.JSON(logs)
}
