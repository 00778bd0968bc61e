package model

import "time"

// BookingEnvelope is the payload published to Kafka by the booking widget.
type BookingEnvelope struct {
	ID         string    `json:"id"`          // widget booking id
	CustomerID int64     `json:"customer_id"` // customers.id
	StartAt    time.Time `json:"start_at"`
	NumGuests  int       `json:"num_guests"`
	Notes      *string   `json:"notes,omitempty"`
}

// Reservation converts the envelope into an unsaved reservation keyed by the
// widget booking id.
func (e BookingEnvelope) Reservation() *Reservation {
	r := &Reservation{
		CustomerID: e.CustomerID,
		StartAt:    e.StartAt,
		NumGuests:  e.NumGuests,
		Notes:      e.Notes,
	}
	if e.ID != "" {
		ref := e.ID
		r.BookingRef = &ref
	}
	return r
}
