package handler

// Operator endpoints: resolve a scanned QR code to its booking, check
// the vehicle in, and check it out.  Check-in/out also publish a
// best-effort event to the site broker; a publish failure is logged
// and never blocks the flow.

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/evcharge-agent/internal/gateway"
	"github.com/iliyamo/evcharge-agent/internal/model"
	"github.com/iliyamo/evcharge-agent/internal/queue"
)

// OperatorGateway is the slice of the reservation API the operator
// handler uses.
type OperatorGateway interface {
	BookingByQR(ctx context.Context, code string) (model.Booking, error)
	ConfirmBooking(ctx context.Context, id string) (model.Booking, error)
	FinalizeBooking(ctx context.Context, id string) (model.Booking, error)
	GetOperatorProfile(ctx context.Context) (gateway.OperatorProfile, error)
	UpdateOperatorProfile(ctx context.Context, p gateway.OperatorProfile) (gateway.OperatorProfile, error)
}

// OperatorHandler serves the STATION_OPERATOR surface.
type OperatorHandler struct {
	GW OperatorGateway
}

func NewOperatorHandler(gw OperatorGateway) *OperatorHandler { return &OperatorHandler{GW: gw} }

// LookupQR resolves a scanned QR payload to its booking.
func (h *OperatorHandler) LookupQR(c echo.Context) error {
	code := c.Param("code")
	if code == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid qr code"})
	}
	b, err := h.GW.BookingByQR(c.Request().Context(), code)
	if err != nil {
		return gatewayError(c, err)
	}
	return c.JSON(http.StatusOK, b)
}

// Confirm checks a vehicle in.
func (h *OperatorHandler) Confirm(c echo.Context) error {
	id := c.Param("id")
	b, err := h.GW.ConfirmBooking(c.Request().Context(), id)
	if err != nil {
		return gatewayError(c, err)
	}
	operator, _ := identifierFrom(c)
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = queue.PublishCheckedIn(ctx, queue.BookingCheckedInEvent{
			BookingID:          b.ID,
			StationID:          b.StationID,
			StationName:        b.StationName,
			SlotNumber:         b.SlotNumber,
			OperatorIdentifier: operator,
			ReservationTime:    b.ReservationTime.UTC().Format(time.RFC3339),
			CheckedInAt:        time.Now().UTC().Format(time.RFC3339),
		})
	}()
	return c.JSON(http.StatusOK, b)
}

// Finalize checks a vehicle out.
func (h *OperatorHandler) Finalize(c echo.Context) error {
	id := c.Param("id")
	b, err := h.GW.FinalizeBooking(c.Request().Context(), id)
	if err != nil {
		return gatewayError(c, err)
	}
	operator, _ := identifierFrom(c)
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = queue.PublishCheckedOut(ctx, queue.BookingCheckedOutEvent{
			BookingID:          b.ID,
			StationID:          b.StationID,
			StationName:        b.StationName,
			SlotNumber:         b.SlotNumber,
			OperatorIdentifier: operator,
			CheckedOutAt:       time.Now().UTC().Format(time.RFC3339),
		})
	}()
	return c.JSON(http.StatusOK, b)
}

// Profile returns the operator's gateway profile.
func (h *OperatorHandler) Profile(c echo.Context) error {
	p, err := h.GW.GetOperatorProfile(c.Request().Context())
	if err != nil {
		return gatewayError(c, err)
	}
	return c.JSON(http.StatusOK, p)
}

// UpdateProfile updates name/phone on the operator's gateway profile.
func (h *OperatorHandler) UpdateProfile(c echo.Context) error {
	var p gateway.OperatorProfile
	if err := c.Bind(&p); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	updated, err := h.GW.UpdateOperatorProfile(c.Request().Context(), p)
	if err != nil {
		return gatewayError(c, err)
	}
	return c.JSON(http.StatusOK, updated)
}
