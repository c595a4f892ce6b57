package handler

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/evcharge-agent/internal/cache"
	"github.com/iliyamo/evcharge-agent/internal/gateway"
	"github.com/iliyamo/evcharge-agent/internal/model"
)

// BookingGateway is the slice of the reservation API the booking
// handler calls directly; reads go through the cache.
type BookingGateway interface {
	CreateBooking(ctx context.Context, req gateway.BookingRequest) (model.Booking, error)
	UpdateBooking(ctx context.Context, id string, req gateway.BookingRequest) (model.Booking, error)
	CancelBooking(ctx context.Context, id string) error
	CheckSlot(ctx context.Context, stationID string, at time.Time, durationMinutes int) (gateway.SlotAvailability, error)
}

// BookingHandler serves booking CRUD for the kiosk UI.  Reads come
// from the cache (stale-but-available); writes go to the gateway and
// are reflected into the cache as point mutations.
type BookingHandler struct {
	Cache *cache.BookingCache
	GW    BookingGateway
}

func NewBookingHandler(bc *cache.BookingCache, gw BookingGateway) *BookingHandler {
	return &BookingHandler{Cache: bc, GW: gw}
}

type bookingReq struct {
	StationID       string `json:"stationId"`
	SlotNumber      int    `json:"slotNumber"`
	ReservationTime string `json:"reservationTime"` // RFC 3339
	DurationMinutes int    `json:"durationMinutes"`
	Notes           string `json:"notes"`
}

func (r bookingReq) toGateway() (gateway.BookingRequest, error) {
	at, err := time.Parse(time.RFC3339, r.ReservationTime)
	if err != nil {
		return gateway.BookingRequest{}, err
	}
	return gateway.BookingRequest{
		StationID:       r.StationID,
		SlotNumber:      r.SlotNumber,
		ReservationTime: at.UTC(),
		DurationMinutes: r.DurationMinutes,
		Notes:           r.Notes,
	}, nil
}

// List returns the cached booking list.  A stale cache triggers an
// asynchronous refresh; ?refresh=true forces a synchronous one.
func (h *BookingHandler) List(c echo.Context) error {
	if c.QueryParam("refresh") == "true" {
		res, err := h.Cache.Refresh(c.Request().Context())
		if err != nil {
			return gatewayError(c, err)
		}
		return c.JSON(http.StatusOK, echo.Map{
			"items":          res.Bookings,
			"count":          len(res.Bookings),
			"fully_enriched": res.FullyEnriched(),
		})
	}
	items := h.Cache.GetAll()
	return c.JSON(http.StatusOK, echo.Map{
		"items": items,
		"count": len(items),
		"fresh": h.Cache.IsValid(),
	})
}

// Get returns one booking, from the index or the gateway.
func (h *BookingHandler) Get(c echo.Context) error {
	id := c.Param("id")
	if id == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid booking id"})
	}
	b, err := h.Cache.GetByID(c.Request().Context(), id)
	if err != nil {
		return gatewayError(c, err)
	}
	return c.JSON(http.StatusOK, b)
}

// Create books a slot and upserts the result into the cache.
func (h *BookingHandler) Create(c echo.Context) error {
	var req bookingReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	gwReq, err := req.toGateway()
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid reservation time"})
	}
	b, err := h.GW.CreateBooking(c.Request().Context(), gwReq)
	if err != nil {
		return gatewayError(c, err)
	}
	h.Cache.Upsert(b)
	return c.JSON(http.StatusCreated, b)
}

// Update edits a booking and upserts the result into the cache.
func (h *BookingHandler) Update(c echo.Context) error {
	id := c.Param("id")
	var req bookingReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	gwReq, err := req.toGateway()
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid reservation time"})
	}
	b, err := h.GW.UpdateBooking(c.Request().Context(), id, gwReq)
	if err != nil {
		return gatewayError(c, err)
	}
	h.Cache.Upsert(b)
	return c.JSON(http.StatusOK, b)
}

// Cancel cancels a booking and removes it from the cache.
func (h *BookingHandler) Cancel(c echo.Context) error {
	id := c.Param("id")
	if err := h.GW.CancelBooking(c.Request().Context(), id); err != nil {
		return gatewayError(c, err)
	}
	h.Cache.Remove(id)
	return c.NoContent(http.StatusNoContent)
}

// CheckSlot validates a candidate slot before the UI submits a
// booking.
func (h *BookingHandler) CheckSlot(c echo.Context) error {
	stationID := c.QueryParam("stationId")
	at, err := time.Parse(time.RFC3339, c.QueryParam("time"))
	if err != nil || stationID == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "stationId and time required"})
	}
	duration, err := strconv.Atoi(c.QueryParam("duration"))
	if err != nil || duration <= 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid duration"})
	}
	avail, err := h.GW.CheckSlot(c.Request().Context(), stationID, at, duration)
	if err != nil {
		return gatewayError(c, err)
	}
	return c.JSON(http.StatusOK, avail)
}
