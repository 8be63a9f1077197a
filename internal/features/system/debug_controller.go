package system

import (
	"go-broker/internal/middleware"

	"github.com/gofiber/fiber/v2"
)

type DebugController struct {
	Hub *Hub
}

func NewDebugController(hub *Hub) *DebugController {
	return &DebugController{Hub: hub}
}

// GetCurrentUser godoc
// @Summary      Get current user info
// @Description  Identity resolved from the JWT, plus the live run listeners of the tenant
// @Tags         debug
// @Produce      json
// @Success      200  {object}  map[string]interface{}
// @Failure      401  {object}  map[string]string
// @Router       /api/debug/me [get]
func (c *DebugController) GetCurrentUser(ctx *fiber.Ctx) error {
	identity, err := middleware.Identity(ctx)
	if err != nil {
		return err
	}

	return ctx.JSON(fiber.Map{
		"user_id":         identity.UserID,
		"tenant_id":       identity.TenantID,
		"roles":           identity.Roles,
		"is_tenant_admin": identity.IsTenantAdmin(),
		"live_listeners":  c.Hub.Listeners(identity.TenantID),
	})
}
