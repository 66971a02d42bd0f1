package entity

import "time"

// Supplier representa un proveedor de materias primas.
type Supplier struct {
	ID        string
	Name      string
	Contact   string
	Phone     string
	Email     string
	Address   string
	Notes     string
	Active    bool
	CreatedAt time.Time
	UpdatedAt time.Time
}
