package http_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/inventario-lotes/internal/application/dto"
	apphttp "github.com/jhoicas/inventario-lotes/internal/interfaces/http"
	pkgjwt "github.com/jhoicas/inventario-lotes/pkg/jwt"
)

const (
	testJWTSecret = "secreto-de-pruebas"
	testUserID    = "usuario-bodega-01"
)

func tokenForRole(t *testing.T, role string) string {
	t.Helper()
	tok, err := pkgjwt.Generate(testJWTSecret, testUserID, role, "inventario-lotes-test", 60)
	require.NoError(t, err)
	return "Bearer " + tok
}

// gatedApp expone /lotes protegido con AuthMiddleware + RequireRole(roles...).
func gatedApp(roles ...string) *fiber.App {
	app := fiber.New()
	app.Post("/lotes",
		apphttp.AuthMiddleware(testJWTSecret),
		apphttp.RequireRole(roles...),
		func(c *fiber.Ctx) error {
			return c.JSON(fiber.Map{"user_id": apphttp.GetUserID(c), "role": apphttp.GetRole(c)})
		},
	)
	return app
}

func postLotes(t *testing.T, app *fiber.App, authorization string) (int, dto.ErrorResponse) {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/lotes", nil)
	if authorization != "" {
		req.Header.Set("Authorization", authorization)
	}
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	var body dto.ErrorResponse
	if resp.StatusCode != http.StatusOK {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	}
	return resp.StatusCode, body
}

func TestRequireRole_MatrizDeRoles(t *testing.T) {
	stock := []string{apphttp.RoleAdmin, apphttp.RoleBodeguero}
	ventas := []string{apphttp.RoleAdmin, apphttp.RoleVendedor}

	cases := []struct {
		name    string
		allowed []string
		role    string
		status  int
	}{
		{"bodeguero recibe lotes", stock, apphttp.RoleBodeguero, http.StatusOK},
		{"admin recibe lotes", stock, apphttp.RoleAdmin, http.StatusOK},
		{"vendedor no recibe lotes", stock, apphttp.RoleVendedor, http.StatusForbidden},
		{"vendedor crea pedidos", ventas, apphttp.RoleVendedor, http.StatusOK},
		{"bodeguero no crea pedidos", ventas, apphttp.RoleBodeguero, http.StatusForbidden},
		{"solo admin", []string{apphttp.RoleAdmin}, apphttp.RoleVendedor, http.StatusForbidden},
		{"rol desconocido", stock, "auditor", http.StatusForbidden},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			status, body := postLotes(t, gatedApp(tc.allowed...), tokenForRole(t, tc.role))
			assert.Equal(t, tc.status, status)
			if tc.status == http.StatusForbidden {
				assert.Equal(t, "FORBIDDEN", body.Code)
			}
		})
	}
}

func TestAuthMiddleware_CabecerasRechazadas(t *testing.T) {
	expirado, err := pkgjwt.Generate(testJWTSecret, testUserID, apphttp.RoleAdmin, "x", -1)
	require.NoError(t, err)
	otroSecreto, err := pkgjwt.Generate("otro", testUserID, apphttp.RoleAdmin, "x", 60)
	require.NoError(t, err)

	cases := []struct {
		name   string
		header string
		code   string
	}{
		{"sin cabecera", "", "MISSING_TOKEN"},
		{"esquema Basic", "Basic dXNlcjpwYXNz", "INVALID_TOKEN"},
		{"token basura", "Bearer no.es.jwt", "INVALID_TOKEN"},
		{"token expirado", "Bearer " + expirado, "INVALID_TOKEN"},
		{"firmado con otro secreto", "Bearer " + otroSecreto, "INVALID_TOKEN"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			status, body := postLotes(t, gatedApp(apphttp.RoleAdmin), tc.header)
			assert.Equal(t, http.StatusUnauthorized, status)
			assert.Equal(t, tc.code, body.Code)
		})
	}
}

func TestRequireRole_TokenSinRol(t *testing.T) {
	status, body := postLotes(t, gatedApp(apphttp.RoleAdmin), tokenForRole(t, ""))
	assert.Equal(t, http.StatusUnauthorized, status)
	assert.Equal(t, "MISSING_ROLE", body.Code)
}

func TestAuthMiddleware_ExponeUsuarioYRol(t *testing.T) {
	app := gatedApp(apphttp.RoleBodeguero)
	req := httptest.NewRequest(http.MethodPost, "/lotes", nil)
	req.Header.Set("Authorization", "bearer "+tokenForRole(t, apphttp.RoleBodeguero)[len("Bearer "):])
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var body map[string]string
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, testUserID, body["user_id"])
	assert.Equal(t, apphttp.RoleBodeguero, body["role"])
}
