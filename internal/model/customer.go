package model

// Customer is a restaurant patron. ID is zero until the row is first saved.
type Customer struct {
	ID        int64   `db:"id"         json:"id"`
	FirstName string  `db:"first_name" json:"first_name"`
	LastName  string  `db:"last_name"  json:"last_name"`
	Phone     *string `db:"phone"      json:"phone"` // nullable
	Notes     *string `db:"notes"      json:"notes"` // nullable
}

// NewCustomer builds an unsaved customer.
func NewCustomer(firstName, lastName string, phone, notes *string) *Customer {
	return &Customer{
		FirstName: firstName,
		LastName:  lastName,
		Phone:     phone,
		Notes:     notes,
	}
}

// Saved reports whether the customer already has a storage identity.
func (c *Customer) Saved() bool { return c.ID != 0 }

// FullName joins first and last name with a single space.
func (c *Customer) FullName() string {
	return c.FirstName + " " + c.LastName
}

// BestCustomer is a customer row of the reservations ranking.
type BestCustomer struct {
	Customer
	ReservationCount int64 `db:"res_number" json:"reservation_count"`
}
