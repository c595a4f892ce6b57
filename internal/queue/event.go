// Package queue defines message payloads the agent publishes to the
// site message broker.
package queue

// BookingCheckedInEvent is published when an operator confirms a
// booking after scanning its QR code.  Downstream consumers (billing,
// analytics, the site display board) get enough context to act without
// querying the gateway.
type BookingCheckedInEvent struct {
	BookingID          string `json:"booking_id"`
	StationID          string `json:"station_id"`
	StationName        string `json:"station_name"`
	SlotNumber         int    `json:"slot_number"`
	OperatorIdentifier string `json:"operator_identifier"`
	ReservationTime    string `json:"reservation_time"`
	CheckedInAt        string `json:"checked_in_at"`
}

// BookingCheckedOutEvent is published when an operator finalizes a
// booking at the end of a charging session.
type BookingCheckedOutEvent struct {
	BookingID          string `json:"booking_id"`
	StationID          string `json:"station_id"`
	StationName        string `json:"station_name"`
	SlotNumber         int    `json:"slot_number"`
	OperatorIdentifier string `json:"operator_identifier"`
	CheckedOutAt       string `json:"checked_out_at"`
}
