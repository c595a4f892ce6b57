package gateway

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/iliyamo/evcharge-agent/internal/model"
)

// BookingRequest carries the fields a caller controls when creating or
// updating a reservation.
type BookingRequest struct {
	StationID       string    `json:"stationId"`
	SlotNumber      int       `json:"slotNumber"`
	ReservationTime time.Time `json:"reservationTime"`
	DurationMinutes int       `json:"durationMinutes"`
	Notes           string    `json:"notes,omitempty"`
}

// ListMyBookings returns every booking of the authenticated user.
func (c *Client) ListMyBookings(ctx context.Context) ([]model.Booking, error) {
	var out []model.Booking
	if err := c.do(ctx, http.MethodGet, "/api/bookings/my", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// ListAllBookings returns every booking visible to the caller; the
// gateway restricts this to operator and admin tokens.
func (c *Client) ListAllBookings(ctx context.Context) ([]model.Booking, error) {
	var out []model.Booking
	if err := c.do(ctx, http.MethodGet, "/api/bookings", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// GetBooking fetches a single booking by id.
func (c *Client) GetBooking(ctx context.Context, id string) (model.Booking, error) {
	var out model.Booking
	err := c.do(ctx, http.MethodGet, "/api/bookings/"+url.PathEscape(id), nil, &out)
	return out, err
}

// CreateBooking creates a reservation and returns the gateway's record
// of it (with id, status and QR payload filled in).
func (c *Client) CreateBooking(ctx context.Context, req BookingRequest) (model.Booking, error) {
	var out model.Booking
	err := c.do(ctx, http.MethodPost, "/api/bookings", req, &out)
	return out, err
}

// UpdateBooking modifies an existing reservation.
func (c *Client) UpdateBooking(ctx context.Context, id string, req BookingRequest) (model.Booking, error) {
	var out model.Booking
	err := c.do(ctx, http.MethodPut, "/api/bookings/"+url.PathEscape(id), req, &out)
	return out, err
}

// CancelBooking cancels a reservation.
func (c *Client) CancelBooking(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/api/bookings/"+url.PathEscape(id), nil, nil)
}

// SlotAvailability reports how many chargers remain free for a station
// at a given time.
type SlotAvailability struct {
	StationID      string `json:"stationId"`
	AvailableSlots int    `json:"availableSlots"`
	TotalSlots     int    `json:"totalSlots"`
}

// CheckSlot validates a candidate time slot before a booking is
// submitted.
func (c *Client) CheckSlot(ctx context.Context, stationID string, at time.Time, durationMinutes int) (SlotAvailability, error) {
	q := url.Values{}
	q.Set("stationId", stationID)
	q.Set("time", at.UTC().Format(time.RFC3339))
	q.Set("duration", strconv.Itoa(durationMinutes))
	var out SlotAvailability
	err := c.do(ctx, http.MethodGet, "/api/bookings/slots/check?"+q.Encode(), nil, &out)
	return out, err
}
