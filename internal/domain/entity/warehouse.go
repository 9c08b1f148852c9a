package entity

import "time"

// Warehouse representa una bodega o sucursal de la farmacia donde se reciben y almacenan lotes.
type Warehouse struct {
	ID        string
	CompanyID string
	Name      string
	Address   string
	CreatedAt time.Time
	UpdatedAt time.Time
}
