package repository

import (
	"context"

	"github.com/jhoicas/Inventario-farmacia/internal/domain/entity"
)

// BatchRepository define el puerto para los lotes físicos de un producto.
type BatchRepository interface {
	Create(ctx context.Context, batch *entity.Batch) error
	GetByID(ctx context.Context, companyID, id string) (*entity.Batch, error)
	// Update persiste cantidad, reservado y estado activo del lote.
	Update(ctx context.Context, batch *entity.Batch) error
	// ListActive devuelve los lotes activos del producto en orden FEFO
	// (vencimiento ascendente, sin vencimiento al final).
	ListActive(ctx context.Context, companyID, productID string) ([]*entity.Batch, error)
	// ListByProduct incluye lotes inactivos (auditoría), mismo orden.
	ListByProduct(ctx context.Context, companyID, productID string) ([]*entity.Batch, error)
}
