package entity

import (
	"time"

	"github.com/jhoicas/Inventario-farmacia/internal/domain"
	"github.com/shopspring/decimal"
)

// PurchaseOrderStatus estado del ciclo de vida de una orden de compra.
type PurchaseOrderStatus string

const (
	PurchaseOrderDraft     PurchaseOrderStatus = "draft"
	PurchaseOrderSent      PurchaseOrderStatus = "sent"
	PurchaseOrderConfirmed PurchaseOrderStatus = "confirmed"
	PurchaseOrderReceived  PurchaseOrderStatus = "received"
	PurchaseOrderCancelled PurchaseOrderStatus = "cancelled"
)

// transiciones legales: draft → sent → confirmed → received; draft/sent → cancelled.
// sent → received se permite para proveedores que despachan sin confirmar.
var purchaseOrderTransitions = map[PurchaseOrderStatus][]PurchaseOrderStatus{
	PurchaseOrderDraft:     {PurchaseOrderSent, PurchaseOrderCancelled},
	PurchaseOrderSent:      {PurchaseOrderConfirmed, PurchaseOrderReceived, PurchaseOrderCancelled},
	PurchaseOrderConfirmed: {PurchaseOrderReceived},
}

// CanTransitionTo indica si el cambio de estado es legal.
func (s PurchaseOrderStatus) CanTransitionTo(next PurchaseOrderStatus) bool {
	for _, allowed := range purchaseOrderTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// IsTerminal received y cancelled no admiten más cambios.
func (s PurchaseOrderStatus) IsTerminal() bool {
	return s == PurchaseOrderReceived || s == PurchaseOrderCancelled
}

// ParsePurchaseOrderStatus valida un estado recibido como texto (filtros de listado).
func ParsePurchaseOrderStatus(s string) (PurchaseOrderStatus, error) {
	switch st := PurchaseOrderStatus(s); st {
	case PurchaseOrderDraft, PurchaseOrderSent, PurchaseOrderConfirmed, PurchaseOrderReceived, PurchaseOrderCancelled:
		return st, nil
	}
	return "", domain.ErrInvalidInput
}

// PurchaseOrder orden de compra a un proveedor. Nunca se elimina: cancelled es un estado terminal.
type PurchaseOrder struct {
	ID           string
	CompanyID    string
	OrderNumber  string
	SupplierID   string
	WarehouseID  string
	Status       PurchaseOrderStatus
	OrderDate    time.Time
	ExpectedDate *time.Time
	Subtotal     decimal.Decimal
	Total        decimal.Decimal
	Notes        string
	SentAt       *time.Time
	ConfirmedAt  *time.Time
	CancelledAt  *time.Time
	ReceivedDate *time.Time
	CreatedBy    string
	CreatedAt    time.Time
	UpdatedAt    time.Time
	Items        []PurchaseOrderItem
}

// TransitionTo aplica el cambio de estado y marca la fecha correspondiente.
// Una orden con líneas ya recibidas no se cancela: solo puede completarse la recepción.
func (po *PurchaseOrder) TransitionTo(next PurchaseOrderStatus, now time.Time) error {
	if !po.Status.CanTransitionTo(next) {
		return domain.ErrInvalidStateTransition
	}
	if next == PurchaseOrderCancelled && po.HasReceivedItems() {
		return domain.ErrInvalidStateTransition
	}
	po.Status = next
	po.UpdatedAt = now
	switch next {
	case PurchaseOrderSent:
		po.SentAt = &now
	case PurchaseOrderConfirmed:
		po.ConfirmedAt = &now
	case PurchaseOrderCancelled:
		po.CancelledAt = &now
	case PurchaseOrderReceived:
		po.ReceivedDate = &now
	}
	return nil
}

// Item busca una línea por ID.
func (po *PurchaseOrder) Item(id string) *PurchaseOrderItem {
	for i := range po.Items {
		if po.Items[i].ID == id {
			return &po.Items[i]
		}
	}
	return nil
}

// HasReceivedItems indica si alguna línea ya fue recibida (recepción parcial en curso).
func (po *PurchaseOrder) HasReceivedItems() bool {
	for i := range po.Items {
		if po.Items[i].IsReceived() {
			return true
		}
	}
	return false
}

// PendingItems líneas que aún no tienen cantidad recibida.
func (po *PurchaseOrder) PendingItems() []PurchaseOrderItem {
	var pending []PurchaseOrderItem
	for _, it := range po.Items {
		if !it.IsReceived() {
			pending = append(pending, it)
		}
	}
	return pending
}

// PurchaseOrderItem línea de una orden de compra.
// QuantityReceived es nil hasta la recepción y se marca una sola vez.
type PurchaseOrderItem struct {
	ID               string
	OrderID          string
	ProductID        string
	QuantityOrdered  decimal.Decimal
	QuantityReceived *decimal.Decimal
	UnitPrice        decimal.Decimal
	DiscountPercent  decimal.Decimal
	LineTotal        decimal.Decimal
}

// IsReceived indica si la línea ya fue recibida.
func (it *PurchaseOrderItem) IsReceived() bool {
	return it.QuantityReceived != nil
}

// ComputeLineTotal precio × cantidad × (1 − descuento/100), redondeado a 2 decimales.
func ComputeLineTotal(unitPrice, quantity, discountPercent decimal.Decimal) decimal.Decimal {
	hundred := decimal.NewFromInt(100)
	factor := hundred.Sub(discountPercent).Div(hundred)
	return unitPrice.Mul(quantity).Mul(factor).Round(2)
}
