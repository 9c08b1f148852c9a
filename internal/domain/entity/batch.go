package entity

import (
	"time"

	"github.com/jhoicas/Inventario-farmacia/internal/domain"
	"github.com/shopspring/decimal"
)

// Batch representa un lote físico de un producto: cantidad en mano, cantidad reservada,
// costo de compra, vencimiento y bodega. Nunca se elimina; al llegar a 0 queda inactivo.
// Invariante: 0 <= ReservedQuantity <= Quantity.
type Batch struct {
	ID               string
	CompanyID        string
	ProductID        string
	WarehouseID      string // vacío si el lote no está asociado a una bodega
	PurchaseOrderID  string // orden de compra que lo originó (vacío para ajustes)
	LotNumber        string
	Quantity         decimal.Decimal
	ReservedQuantity decimal.Decimal
	UnitCost         decimal.Decimal
	ReceivedDate     time.Time
	ExpiryDate       *time.Time
	Active           bool
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// NewBatch construye un lote activo sin reservas.
func NewBatch(id, companyID, productID, warehouseID string, quantity, unitCost decimal.Decimal, received time.Time, expiry *time.Time) *Batch {
	return &Batch{
		ID:               id,
		CompanyID:        companyID,
		ProductID:        productID,
		WarehouseID:      warehouseID,
		Quantity:         quantity,
		ReservedQuantity: decimal.Zero,
		UnitCost:         unitCost,
		ReceivedDate:     received,
		ExpiryDate:       expiry,
		Active:           quantity.GreaterThan(decimal.Zero),
		CreatedAt:        received,
		UpdatedAt:        received,
	}
}

// Available cantidad que se puede consumir (en mano menos reservada).
func (b *Batch) Available() decimal.Decimal {
	return b.Quantity.Sub(b.ReservedQuantity)
}

// ApplyDelta suma delta a la cantidad del lote. Falla con ErrInvalidQuantity si el resultado
// es negativo o queda por debajo de lo reservado. El lote queda inactivo exactamente cuando llega a 0.
func (b *Batch) ApplyDelta(delta decimal.Decimal, now time.Time) (decimal.Decimal, error) {
	next := b.Quantity.Add(delta)
	if next.IsNegative() || next.LessThan(b.ReservedQuantity) {
		return b.Quantity, domain.ErrInvalidQuantity
	}
	b.Quantity = next
	b.Active = !next.IsZero()
	b.UpdatedAt = now
	return next, nil
}

// Reserve mueve qty de disponible a reservado.
func (b *Batch) Reserve(qty decimal.Decimal, now time.Time) error {
	if !qty.IsPositive() || qty.GreaterThan(b.Available()) {
		return domain.ErrInvalidQuantity
	}
	b.ReservedQuantity = b.ReservedQuantity.Add(qty)
	b.UpdatedAt = now
	return nil
}

// Release libera qty de lo reservado.
func (b *Batch) Release(qty decimal.Decimal, now time.Time) error {
	if !qty.IsPositive() || qty.GreaterThan(b.ReservedQuantity) {
		return domain.ErrInvalidQuantity
	}
	b.ReservedQuantity = b.ReservedQuantity.Sub(qty)
	b.UpdatedAt = now
	return nil
}
