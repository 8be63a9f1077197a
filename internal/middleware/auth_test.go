package middleware

import (
	"io"
	"net/http/httptest"
	"testing"

	"go-broker/pkg/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newAuthApp(skip bool) *fiber.App {
	app := fiber.New()
	app.Get("/whoami", AuthMiddleware(skip), func(c *fiber.Ctx) error {
		id, err := Identity(c)
		if err != nil {
			return err
		}
		return c.SendString(id.TenantID + "/" + id.UserID)
	})
	return app
}

func TestAuthMiddlewareRejectsMissingHeader(t *testing.T) {
	resp, err := newAuthApp(false).Test(httptest.NewRequest("GET", "/whoami", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
}

func TestAuthMiddlewareAttachesIdentity(t *testing.T) {
	utils.SetSecret("mw-secret")
	token, err := utils.GenerateToken("u-7", "t-3", []string{"broker"})
	require.NoError(t, err)

	req := httptest.NewRequest("GET", "/whoami", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	resp, err := newAuthApp(false).Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	body, _ := io.ReadAll(resp.Body)
	assert.Equal(t, "t-3/u-7", string(body))
}

func TestAuthMiddlewareSkipAuthUsesDevAdmin(t *testing.T) {
	resp, err := newAuthApp(true).Test(httptest.NewRequest("GET", "/whoami", nil))
	require.NoError(t, err)
	body, _ := io.ReadAll(resp.Body)
	assert.Equal(t, "dev-tenant/dev-admin-id", string(body))
}

func TestAdminMiddleware(t *testing.T) {
	utils.SetSecret("mw-secret")
	app := fiber.New()
	app.Get("/admin", AuthMiddleware(false), AdminMiddleware(), func(c *fiber.Ctx) error {
		return c.SendString("ok")
	})

	broker, err := utils.GenerateToken("u-1", "t-1", []string{"broker"})
	require.NoError(t, err)
	req := httptest.NewRequest("GET", "/admin", nil)
	req.Header.Set("Authorization", "Bearer "+broker)
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusForbidden, resp.StatusCode)

	admin, err := utils.GenerateToken("u-2", "t-1", []string{"admin"})
	require.NoError(t, err)
	req = httptest.NewRequest("GET", "/admin", nil)
	req.Header.Set("Authorization", "Bearer "+admin)
	resp, err = app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
}
