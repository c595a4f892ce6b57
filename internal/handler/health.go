package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// Health is a liveness probe for the site supervisor.
func Health(c echo.Context) error {
	return c.String(http.StatusOK, "ok")
}
