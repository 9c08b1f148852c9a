package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Product representa un producto del catálogo de la farmacia.
// Cost es el costo unitario de referencia (promedio ponderado actualizado en cada recepción de compra).
// El stock no se guarda aquí: se calcula sumando los lotes activos (ver Batch).
type Product struct {
	ID              string
	CompanyID       string
	SKU             string // código único por empresa
	Name            string
	Description     string
	Price           decimal.Decimal // precio de venta
	Cost            decimal.Decimal // costo unitario de referencia
	ReorderPoint    decimal.Decimal // stock mínimo; por debajo se emite alerta de stock bajo
	ReorderQuantity decimal.Decimal // cantidad sugerida al reponer
	UnitMeasure     string
	Active          bool // los productos no se eliminan, se desactivan
	CreatedAt       time.Time
	UpdatedAt       time.Time
}
