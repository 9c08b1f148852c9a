package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// CreatePurchaseOrderRequest body para POST /api/purchase-orders.
type CreatePurchaseOrderRequest struct {
	SupplierID   string                     `json:"supplier_id"`
	WarehouseID  string                     `json:"warehouse_id"`
	ExpectedDate *time.Time                 `json:"expected_date,omitempty"`
	Notes        string                     `json:"notes,omitempty"`
	Items        []PurchaseOrderLineRequest `json:"items"`
}

// PurchaseOrderLineRequest línea de una orden nueva.
type PurchaseOrderLineRequest struct {
	ProductID       string          `json:"product_id"`
	Quantity        decimal.Decimal `json:"quantity"`
	UnitPrice       decimal.Decimal `json:"unit_price"`
	DiscountPercent decimal.Decimal `json:"discount_percent"`
}

// ReceivePurchaseOrderRequest body para POST /api/purchase-orders/:id/receive.
// Las líneas omitidas se reciben por la cantidad ordenada.
type ReceivePurchaseOrderRequest struct {
	Items []ReceiveLineRequest `json:"items"`
}

// ReceiveLineRequest cantidad recibida, lote y vencimiento de una línea.
type ReceiveLineRequest struct {
	ItemID     string           `json:"item_id"`
	Quantity   *decimal.Decimal `json:"quantity,omitempty"`
	LotNumber  string           `json:"lot_number,omitempty"`
	ExpiryDate *time.Time       `json:"expiry_date,omitempty"`
}

// PurchaseOrderResponse salida de una orden de compra.
type PurchaseOrderResponse struct {
	ID           string                      `json:"id"`
	OrderNumber  string                      `json:"order_number"`
	SupplierID   string                      `json:"supplier_id"`
	WarehouseID  string                      `json:"warehouse_id"`
	Status       string                      `json:"status"`
	OrderDate    time.Time                   `json:"order_date"`
	ExpectedDate *time.Time                  `json:"expected_date,omitempty"`
	Subtotal     decimal.Decimal             `json:"subtotal"`
	Total        decimal.Decimal             `json:"total"`
	Notes        string                      `json:"notes,omitempty"`
	SentAt       *time.Time                  `json:"sent_at,omitempty"`
	ConfirmedAt  *time.Time                  `json:"confirmed_at,omitempty"`
	CancelledAt  *time.Time                  `json:"cancelled_at,omitempty"`
	ReceivedDate *time.Time                  `json:"received_date,omitempty"`
	Items        []PurchaseOrderItemResponse `json:"items"`
}

// PurchaseOrderItemResponse línea de una orden.
type PurchaseOrderItemResponse struct {
	ID               string           `json:"id"`
	ProductID        string           `json:"product_id"`
	QuantityOrdered  decimal.Decimal  `json:"quantity_ordered"`
	QuantityReceived *decimal.Decimal `json:"quantity_received"`
	UnitPrice        decimal.Decimal  `json:"unit_price"`
	DiscountPercent  decimal.Decimal  `json:"discount_percent"`
	LineTotal        decimal.Decimal  `json:"line_total"`
}

// PurchaseOrderListResponse lista paginada de órdenes.
type PurchaseOrderListResponse struct {
	Items []PurchaseOrderResponse `json:"items"`
	Page  PageResponse            `json:"page"`
}
