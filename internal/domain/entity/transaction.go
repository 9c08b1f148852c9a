package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// TransactionType tipo de movimiento registrado en el libro de inventario.
type TransactionType string

const (
	TransactionAdjustmentAdd    TransactionType = "adjustment_add"
	TransactionAdjustmentRemove TransactionType = "adjustment_remove"
	TransactionPurchaseReceipt  TransactionType = "purchase_receipt"
	TransactionSale             TransactionType = "sale"
)

// Referencias externas de un movimiento.
const (
	ReferencePurchaseOrder = "purchase_order"
	ReferenceSale          = "sale"
)

// Transaction es un registro inmutable del libro de inventario (append-only).
// QuantityBefore/QuantityAfter son el saldo total del producto (no del lote) al momento de escribir:
// QuantityAfter = QuantityBefore + Quantity, y coincide con el QuantityBefore del siguiente registro.
type Transaction struct {
	ID             string
	Seq            int64 // orden de inserción dentro del libro
	CompanyID      string
	ProductID      string
	BatchID        string // vacío si el movimiento tocó varios lotes (FEFO)
	Type           TransactionType
	Quantity       decimal.Decimal // delta con signo
	QuantityBefore decimal.Decimal
	QuantityAfter  decimal.Decimal
	UnitPrice      decimal.Decimal
	TotalValue     decimal.Decimal
	Reason         AdjustmentReason // solo para ajustes
	ReferenceType  string
	ReferenceID    string
	Notes          string
	CreatedBy      string
	CreatedAt      time.Time
}

// IsAdjustment indica si el movimiento es un ajuste manual.
func (t *Transaction) IsAdjustment() bool {
	return t.Type == TransactionAdjustmentAdd || t.Type == TransactionAdjustmentRemove
}
