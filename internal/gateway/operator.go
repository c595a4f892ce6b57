package gateway

// Operator-side calls: QR lookup, check-in (confirm) and check-out
// (finalize), plus operator profile management.  These require a token
// with the STATION_OPERATOR role; the gateway enforces that.

import (
	"context"
	"net/http"
	"net/url"

	"github.com/iliyamo/evcharge-agent/internal/model"
)

// OperatorProfile is the gateway's record of the operator account.
type OperatorProfile struct {
	UserID     string `json:"userId"`
	Identifier string `json:"identifier"`
	FullName   string `json:"fullName"`
	Phone      string `json:"phone"`
	StationID  string `json:"stationId"`
}

// BookingByQR resolves a scanned QR payload to its booking.
func (c *Client) BookingByQR(ctx context.Context, code string) (model.Booking, error) {
	var out model.Booking
	err := c.do(ctx, http.MethodGet, "/api/operator/bookings/qr/"+url.PathEscape(code), nil, &out)
	return out, err
}

// ConfirmBooking checks a vehicle in; the gateway moves the booking to
// INPROGRESS and returns the updated record.
func (c *Client) ConfirmBooking(ctx context.Context, id string) (model.Booking, error) {
	var out model.Booking
	err := c.do(ctx, http.MethodPost, "/api/operator/bookings/"+url.PathEscape(id)+"/confirm", nil, &out)
	return out, err
}

// FinalizeBooking checks a vehicle out; the gateway moves the booking
// to COMPLETED and returns the updated record.
func (c *Client) FinalizeBooking(ctx context.Context, id string) (model.Booking, error) {
	var out model.Booking
	err := c.do(ctx, http.MethodPost, "/api/operator/bookings/"+url.PathEscape(id)+"/finalize", nil, &out)
	return out, err
}

// GetOperatorProfile returns the authenticated operator's profile.
func (c *Client) GetOperatorProfile(ctx context.Context) (OperatorProfile, error) {
	var out OperatorProfile
	err := c.do(ctx, http.MethodGet, "/api/operator/profile", nil, &out)
	return out, err
}

// UpdateOperatorProfile updates name/phone on the operator's profile.
func (c *Client) UpdateOperatorProfile(ctx context.Context, p OperatorProfile) (OperatorProfile, error) {
	var out OperatorProfile
	err := c.do(ctx, http.MethodPut, "/api/operator/profile", p, &out)
	return out, err
}
