package domain

import "time"

// WalkInCustomerID is the sentinel customer reference for "no customer selected".
const WalkInCustomerID = "walk-in"

// Customer is a customer record that invoices may reference.
type Customer struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Phone     string    `json:"phone,omitempty"`
	Email     string    `json:"email,omitempty"`
	Address   string    `json:"address,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}
