package purchasing

import (
	"context"

	"github.com/jhoicas/Inventario-farmacia/internal/domain/entity"
)

// PDFGenerator genera el documento de la orden de compra que se envía al proveedor.
type PDFGenerator interface {
	GeneratePurchaseOrderPDF(ctx context.Context, doc PurchaseOrderDocument) ([]byte, error)
}

// PurchaseOrderDocument datos necesarios para renderizar la orden.
type PurchaseOrderDocument struct {
	Order     *entity.PurchaseOrder
	Supplier  *entity.Supplier
	Warehouse *entity.Warehouse
	Products  map[string]*entity.Product
}
