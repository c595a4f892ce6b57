package model

import "time"

// BookingStatus enumerates the lifecycle states a reservation moves
// through on the central gateway.  The agent never invents states of
// its own; it only mirrors what the gateway reports.
type BookingStatus string

// Booking status values as returned by the reservation gateway.
const (
	BookingPending    BookingStatus = "PENDING"    // created, awaiting confirmation
	BookingConfirmed  BookingStatus = "CONFIRMED"  // confirmed by an operator or auto-approval
	BookingInProgress BookingStatus = "INPROGRESS" // vehicle checked in, charging
	BookingCompleted  BookingStatus = "COMPLETED"  // checked out
	BookingCancelled  BookingStatus = "CANCELLED"  // cancelled by the owner
	BookingNoShow     BookingStatus = "NOSHOW"     // reservation window elapsed without check-in
)

// Booking is a snapshot of one reservation as cached by the agent.
// Station name and location arrive lazily: the list endpoint returns
// only the station id, and the cache enriches records with display
// fields through per-station lookups.  QRPayload stays empty until the
// gateway issues a check-in code on confirmation.
type Booking struct {
	ID              string        `json:"id"`
	StationID       string        `json:"stationId"`
	StationName     string        `json:"stationName,omitempty"`
	StationLocation string        `json:"stationLocation,omitempty"`
	SlotNumber      int           `json:"slotNumber"`
	ReservationTime time.Time     `json:"reservationTime"`
	DurationMinutes int           `json:"durationMinutes"`
	Status          BookingStatus `json:"status"`
	Notes           string        `json:"notes,omitempty"`
	QRPayload       string        `json:"qrPayload,omitempty"`
}

// NeedsStationDetail reports whether the booking still lacks the
// station display fields and should be enriched on the next refresh.
func (b Booking) NeedsStationDetail() bool {
	return b.StationName == "" || b.StationLocation == ""
}
