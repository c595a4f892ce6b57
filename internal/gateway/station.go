package gateway

import (
	"context"
	"net/http"
	"net/url"
	"strconv"

	"github.com/iliyamo/evcharge-agent/internal/model"
)

// GetStation fetches one charging station by id.
func (c *Client) GetStation(ctx context.Context, id string) (model.Station, error) {
	var out model.Station
	err := c.do(ctx, http.MethodGet, "/api/stations/"+url.PathEscape(id), nil, &out)
	return out, err
}

// ListStations returns every charging station known to the gateway.
func (c *Client) ListStations(ctx context.Context) ([]model.Station, error) {
	var out []model.Station
	if err := c.do(ctx, http.MethodGet, "/api/stations", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// NearbyStations returns stations within radiusKm of a coordinate.
func (c *Client) NearbyStations(ctx context.Context, lat, lng, radiusKm float64) ([]model.Station, error) {
	q := url.Values{}
	q.Set("lat", strconv.FormatFloat(lat, 'f', -1, 64))
	q.Set("lng", strconv.FormatFloat(lng, 'f', -1, 64))
	q.Set("radius", strconv.FormatFloat(radiusKm, 'f', -1, 64))
	var out []model.Station
	if err := c.do(ctx, http.MethodGet, "/api/stations/nearby?"+q.Encode(), nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}
