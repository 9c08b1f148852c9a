package http_test

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apphttp "github.com/jhoicas/Inventario-farmacia/internal/interfaces/http"
	pkgjwt "github.com/jhoicas/Inventario-farmacia/pkg/jwt"
)

const (
	testJWTSecret = "test-secret-key-for-unit-tests"
	testUserID    = "00000000-0000-0000-0000-000000000001"
	testCompanyID = "00000000-0000-0000-0000-000000000002"
	testIssuer    = "inventario-farmacia-test"
	testExpMin    = 60
)

// buildGuardedApp expone GET /protected detrás de AuthMiddleware y RequireRole.
func buildGuardedApp(allowedRoles ...string) *fiber.App {
	app := fiber.New()
	app.Get("/protected",
		apphttp.AuthMiddleware(testJWTSecret),
		apphttp.RequireRole(allowedRoles...),
		func(c *fiber.Ctx) error {
			return c.JSON(fiber.Map{"ok": true, "role": apphttp.GetRole(c)})
		},
	)
	return app
}

func bearer(t *testing.T, role string) string {
	t.Helper()
	tok, err := pkgjwt.Generate(testJWTSecret, testUserID, testCompanyID, role, testIssuer, testExpMin)
	require.NoError(t, err)
	return "Bearer " + tok
}

func getProtected(t *testing.T, app *fiber.App, authHeader string) (int, string) {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)
	return resp.StatusCode, string(body)
}

func TestRequireRole(t *testing.T) {
	staff := []string{pkgjwt.RoleAdmin, pkgjwt.RoleBodeguero}
	anyRole := []string{pkgjwt.RoleAdmin, pkgjwt.RoleBodeguero, pkgjwt.RoleVendedor}

	cases := []struct {
		name     string
		allowed  []string
		role     string
		wantCode int
		wantBody string
	}{
		{"admin en ruta de personal", staff, pkgjwt.RoleAdmin, http.StatusOK, `"role":"admin"`},
		{"bodeguero en ruta de personal", staff, pkgjwt.RoleBodeguero, http.StatusOK, `"ok":true`},
		{"vendedor en ruta de personal", staff, pkgjwt.RoleVendedor, http.StatusForbidden, "FORBIDDEN"},
		{"vendedor en ruta de ventas", anyRole, pkgjwt.RoleVendedor, http.StatusOK, `"role":"vendedor"`},
		{"bodeguero en ruta solo admin", []string{pkgjwt.RoleAdmin}, pkgjwt.RoleBodeguero, http.StatusForbidden, "FORBIDDEN"},
		{"token sin rol", staff, "", http.StatusUnauthorized, "MISSING_ROLE"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			code, body := getProtected(t, buildGuardedApp(tc.allowed...), bearer(t, tc.role))
			assert.Equal(t, tc.wantCode, code)
			assert.Contains(t, body, tc.wantBody)
		})
	}
}

func TestAuthMiddleware_RechazaCabecerasInvalidas(t *testing.T) {
	app := buildGuardedApp(pkgjwt.RoleAdmin)

	cases := map[string]struct {
		header   string
		wantBody string
	}{
		"sin cabecera":     {"", "MISSING_TOKEN"},
		"sin esquema":      {"abc.def.ghi", "INVALID_TOKEN"},
		"token malformado": {"Bearer token.invalido.aqui", "INVALID_TOKEN"},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			code, body := getProtected(t, app, tc.header)
			assert.Equal(t, http.StatusUnauthorized, code)
			assert.Contains(t, body, tc.wantBody)
		})
	}
}

func TestAuthMiddleware_CargaClaimsEnLocals(t *testing.T) {
	app := fiber.New()
	app.Get("/me", apphttp.AuthMiddleware(testJWTSecret), func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"user_id":    apphttp.GetUserID(c),
			"company_id": apphttp.GetCompanyID(c),
			"role":       apphttp.GetRole(c),
		})
	})

	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", bearer(t, pkgjwt.RoleBodeguero))
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var body map[string]string
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, testUserID, body["user_id"])
	assert.Equal(t, testCompanyID, body["company_id"])
	assert.Equal(t, pkgjwt.RoleBodeguero, body["role"])
}
