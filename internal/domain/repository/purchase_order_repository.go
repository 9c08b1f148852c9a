package repository

import (
	"context"

	"github.com/jhoicas/Inventario-farmacia/internal/domain/entity"
	"github.com/shopspring/decimal"
)

// PurchaseOrderFilter filtros del listado de órdenes de compra.
type PurchaseOrderFilter struct {
	Status     entity.PurchaseOrderStatus
	SupplierID string
	Limit      int
	Offset     int
}

// PurchaseOrderRepository persistencia de órdenes de compra y sus líneas.
type PurchaseOrderRepository interface {
	// Create inserta la cabecera y todas sus líneas.
	Create(ctx context.Context, order *entity.PurchaseOrder) error
	GetByID(ctx context.Context, companyID, id string) (*entity.PurchaseOrder, error)
	// GetForUpdate bloquea la cabecera de la orden (SELECT FOR UPDATE) y carga sus líneas.
	GetForUpdate(ctx context.Context, companyID, id string) (*entity.PurchaseOrder, error)
	// UpdateStatus persiste estado y fechas de transición.
	UpdateStatus(ctx context.Context, order *entity.PurchaseOrder) error
	// MarkItemReceived marca la cantidad recibida de una línea; solo si aún no estaba marcada.
	MarkItemReceived(ctx context.Context, orderID, itemID string, quantity decimal.Decimal) error
	List(ctx context.Context, companyID string, filter PurchaseOrderFilter) ([]*entity.PurchaseOrder, error)
}
