package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// AdjustStockRequest body para POST /api/inventory/adjustments.
type AdjustStockRequest struct {
	ProductID   string          `json:"product_id"`
	Type        string          `json:"type"` // add | remove
	Quantity    decimal.Decimal `json:"quantity"`
	Reason      string          `json:"reason"`
	BatchID     string          `json:"batch_id,omitempty"`
	WarehouseID string          `json:"warehouse_id,omitempty"`
	LotNumber   string          `json:"lot_number,omitempty"`
	ExpiryDate  *time.Time      `json:"expiry_date,omitempty"`
	Notes       string          `json:"notes,omitempty"`
}

// StockMutationResponse nuevo total y movimiento escrito en el libro.
type StockMutationResponse struct {
	NewTotal    decimal.Decimal     `json:"new_total"`
	Transaction TransactionResponse `json:"transaction"`
}

// SaleRequest body para POST /api/inventory/sales.
type SaleRequest struct {
	ProductID string          `json:"product_id"`
	Quantity  decimal.Decimal `json:"quantity"`
	Reference string          `json:"reference"`
}

// ReservationRequest body para reservar o liberar stock.
type ReservationRequest struct {
	ProductID string          `json:"product_id"`
	Quantity  decimal.Decimal `json:"quantity"`
}

// StockLevelResponse stock de un producto.
type StockLevelResponse struct {
	ProductID     string          `json:"product_id"`
	Total         decimal.Decimal `json:"total"`
	Reserved      decimal.Decimal `json:"reserved"`
	Available     decimal.Decimal `json:"available"`
	ReorderPoint  decimal.Decimal `json:"reorder_point"`
	ActiveBatches int             `json:"active_batches"`
}

// BatchResponse lote de un producto.
type BatchResponse struct {
	ID               string          `json:"id"`
	ProductID        string          `json:"product_id"`
	WarehouseID      string          `json:"warehouse_id,omitempty"`
	PurchaseOrderID  string          `json:"purchase_order_id,omitempty"`
	LotNumber        string          `json:"lot_number,omitempty"`
	Quantity         decimal.Decimal `json:"quantity"`
	ReservedQuantity decimal.Decimal `json:"reserved_quantity"`
	UnitCost         decimal.Decimal `json:"unit_cost"`
	ReceivedDate     time.Time       `json:"received_date"`
	ExpiryDate       *time.Time      `json:"expiry_date,omitempty"`
	Active           bool            `json:"active"`
}

// TransactionResponse movimiento del libro de inventario.
type TransactionResponse struct {
	ID             string          `json:"id"`
	ProductID      string          `json:"product_id"`
	BatchID        string          `json:"batch_id,omitempty"`
	Type           string          `json:"type"`
	Quantity       decimal.Decimal `json:"quantity"`
	QuantityBefore decimal.Decimal `json:"quantity_before"`
	QuantityAfter  decimal.Decimal `json:"quantity_after"`
	UnitPrice      decimal.Decimal `json:"unit_price"`
	TotalValue     decimal.Decimal `json:"total_value"`
	Reason         string          `json:"reason,omitempty"`
	ReferenceType  string          `json:"reference_type,omitempty"`
	ReferenceID    string          `json:"reference_id,omitempty"`
	Notes          string          `json:"notes,omitempty"`
	CreatedBy      string          `json:"created_by,omitempty"`
	CreatedAt      time.Time       `json:"created_at"`
}

// TransactionListResponse lista paginada de movimientos.
type TransactionListResponse struct {
	Items []TransactionResponse `json:"items"`
	Page  PageResponse          `json:"page"`
}
