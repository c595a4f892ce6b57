package model

// Station describes a charging station as returned by the gateway's
// station query endpoints.
type Station struct {
	ID         string  `json:"id"`
	Name       string  `json:"name"`
	Location   string  `json:"location"`
	Latitude   float64 `json:"latitude"`
	Longitude  float64 `json:"longitude"`
	Type       string  `json:"type"` // AC or DC
	TotalSlots int     `json:"totalSlots"`
	IsActive   bool    `json:"isActive"`
}
