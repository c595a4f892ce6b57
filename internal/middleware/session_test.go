package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/evcharge-agent/internal/auth"
	"github.com/iliyamo/evcharge-agent/internal/model"
)

const testSecret = "test-session-secret"

func echoWith(mw ...echo.MiddlewareFunc) *echo.Echo {
	e := echo.New()
	g := e.Group("", mw...)
	g.GET("/probe", func(c echo.Context) error {
		return c.JSON(http.StatusOK, echo.Map{
			"identifier": c.Get("identifier"),
			"role":       c.Get("role"),
		})
	})
	return e
}

func TestSessionAuthRejectsMissingToken(t *testing.T) {
	e := echoWith(SessionAuth(testSecret))
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/probe", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestSessionAuthRejectsWrongSecret(t *testing.T) {
	tok, err := auth.NewSessionToken("other-secret", "owner@ev.example", model.RoleEVOwner, 30)
	require.NoError(t, err)

	e := echoWith(SessionAuth(testSecret))
	req := httptest.NewRequest(http.MethodGet, "/probe", nil)
	req.Header.Set("Authorization", "Bearer "+tok.Token)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestSessionAuthInjectsClaims(t *testing.T) {
	tok, err := auth.NewSessionToken(testSecret, "owner@ev.example", model.RoleEVOwner, 30)
	require.NoError(t, err)

	e := echoWith(SessionAuth(testSecret))
	req := httptest.NewRequest(http.MethodGet, "/probe", nil)
	req.Header.Set("Authorization", "Bearer "+tok.Token)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"identifier":"owner@ev.example"`)
	assert.Contains(t, rec.Body.String(), `"role":"EV_OWNER"`)
}

func TestRequireRoleForbidsUnlistedRole(t *testing.T) {
	tok, err := auth.NewSessionToken(testSecret, "owner@ev.example", model.RoleEVOwner, 30)
	require.NoError(t, err)

	e := echoWith(SessionAuth(testSecret), RequireRole(model.RoleStationOperator, model.RoleAdmin))
	req := httptest.NewRequest(http.MethodGet, "/probe", nil)
	req.Header.Set("Authorization", "Bearer "+tok.Token)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestRequireRoleAllowsListedRole(t *testing.T) {
	tok, err := auth.NewSessionToken(testSecret, "op@site.example", model.RoleStationOperator, 30)
	require.NoError(t, err)

	e := echoWith(SessionAuth(testSecret), RequireRole(model.RoleStationOperator, model.RoleAdmin))
	req := httptest.NewRequest(http.MethodGet, "/probe", nil)
	req.Header.Set("Authorization", "Bearer "+tok.Token)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRequireRoleForbidsWithoutSessionAuth(t *testing.T) {
	e := echoWith(RequireRole(model.RoleAdmin))
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/probe", nil))
	assert.Equal(t, http.StatusForbidden, rec.Code)
}
