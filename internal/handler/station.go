package handler

import (
	"context"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/evcharge-agent/internal/model"
)

// StationGateway is the slice of the reservation API the station
// handler proxies.
type StationGateway interface {
	GetStation(ctx context.Context, id string) (model.Station, error)
	ListStations(ctx context.Context) ([]model.Station, error)
	NearbyStations(ctx context.Context, lat, lng, radiusKm float64) ([]model.Station, error)
}

// StationHandler exposes the station browse endpoints.  These are
// plain proxies; freshness is handled by the optional Redis response
// cache in front of the route group.
type StationHandler struct{ GW StationGateway }

func NewStationHandler(gw StationGateway) *StationHandler { return &StationHandler{GW: gw} }

// List returns every known charging station.
func (h *StationHandler) List(c echo.Context) error {
	stations, err := h.GW.ListStations(c.Request().Context())
	if err != nil {
		return gatewayError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"items": stations, "count": len(stations)})
}

// Get returns one station by id.
func (h *StationHandler) Get(c echo.Context) error {
	id := c.Param("id")
	if id == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid station id"})
	}
	st, err := h.GW.GetStation(c.Request().Context(), id)
	if err != nil {
		return gatewayError(c, err)
	}
	return c.JSON(http.StatusOK, st)
}

// Nearby returns stations around a coordinate.  radius defaults to
// 10km when omitted.
func (h *StationHandler) Nearby(c echo.Context) error {
	lat, errLat := strconv.ParseFloat(c.QueryParam("lat"), 64)
	lng, errLng := strconv.ParseFloat(c.QueryParam("lng"), 64)
	if errLat != nil || errLng != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "lat and lng required"})
	}
	radius := 10.0
	if r := c.QueryParam("radius"); r != "" {
		v, err := strconv.ParseFloat(r, 64)
		if err != nil || v <= 0 {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid radius"})
		}
		radius = v
	}
	stations, err := h.GW.NearbyStations(c.Request().Context(), lat, lng, radius)
	if err != nil {
		return gatewayError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"items": stations, "count": len(stations)})
}
