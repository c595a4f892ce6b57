package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/evcharge-agent/internal/gateway"
)

// identifierFrom pulls the session identifier stored by the
// SessionAuth middleware.
func identifierFrom(c echo.Context) (string, bool) {
	v, ok := c.Get("identifier").(string)
	return v, ok && v != ""
}

// gatewayError maps a gateway failure onto the local facade's
// response.  Domain failures keep the server-provided message; a 401
// means the held token went stale; everything else is an upstream
// outage.
func gatewayError(c echo.Context, err error) error {
	var apiErr *gateway.APIError
	switch {
	case errors.As(err, &apiErr):
		status := http.StatusBadRequest
		if apiErr.StatusCode == http.StatusNotFound {
			status = http.StatusNotFound
		}
		return c.JSON(status, echo.Map{"error": apiErr.Message})
	case errors.Is(err, gateway.ErrUnauthorized):
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "gateway session expired"})
	default:
		return c.JSON(http.StatusBadGateway, echo.Map{"error": "reservation gateway unavailable"})
	}
}
