package catalog

import (
	"io"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"

	"github.com/tienda-labs/ecommerce-backend/internal/upload"
)

func newAdminApp(t *testing.T, f fixture) *fiber.App {
	t.Helper()
	app := fiber.New()
	handler := NewHandler(f.engine, upload.NewStore(t.TempDir(), 1<<20))
	handler.RegisterAdminRoutes(app.Group("/api/admin"))
	return app
}

func TestCreateCategoryValidationEndpoint(t *testing.T) {
	f := newFixture()
	app := newAdminApp(t, f)

	req := httptest.NewRequest("POST", "/api/admin/categories", strings.NewReader(`{"name":"  "}`))
	req.Header.Set("Content-Type", "application/json")
	res, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusBadRequest, res.StatusCode)

	body, _ := io.ReadAll(res.Body)
	require.Contains(t, string(body), "errors")
}

func TestCreateCategoryDuplicateEndpoint(t *testing.T) {
	f := newFixture()
	app := newAdminApp(t, f)

	req := httptest.NewRequest("POST", "/api/admin/categories", strings.NewReader(`{"name":"Electronics"}`))
	req.Header.Set("Content-Type", "application/json")
	res, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusConflict, res.StatusCode)
}

func TestDeleteCategoryBlockedEndpoint(t *testing.T) {
	f := newFixture()
	app := newAdminApp(t, f)

	// category 1 still owns subcategories and products
	res, err := app.Test(httptest.NewRequest("DELETE", "/api/admin/categories/1", nil))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusConflict, res.StatusCode)

	// category 3 is empty and goes away
	res2, err := app.Test(httptest.NewRequest("DELETE", "/api/admin/categories/3", nil))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, res2.StatusCode)
}

func TestToggleCategoryCascadeEndpoint(t *testing.T) {
	f := newFixture()
	app := newAdminApp(t, f)

	res, err := app.Test(httptest.NewRequest("PATCH", "/api/admin/categories/1/toggle", nil))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, res.StatusCode)

	body, _ := io.ReadAll(res.Body)
	require.Contains(t, string(body), "cascade")

	sub, err := f.subcategories.GetByID(1)
	require.NoError(t, err)
	require.False(t, sub.Active)
}
