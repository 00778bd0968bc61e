package model

import "time"

// Reservation is a booking made by exactly one customer.
type Reservation struct {
	ID         int64     `db:"id"          json:"id"`
	CustomerID int64     `db:"customer_id" json:"customer_id"`
	StartAt    time.Time `db:"start_at"    json:"start_at"`
	NumGuests  int       `db:"num_guests"  json:"num_guests"`
	Notes      *string   `db:"notes"       json:"notes"`                 // nullable
	BookingRef *string   `db:"booking_ref" json:"booking_ref,omitempty"` // widget booking id, unique when set
}

func (r *Reservation) Saved() bool { return r.ID != 0 }
