package repository

import (
	"context"

	"github.com/jhoicas/Inventario-farmacia/internal/domain/entity"
	"github.com/shopspring/decimal"
)

// ProductFilter filtros del listado de catálogo.
type ProductFilter struct {
	Search       string // coincide con nombre o SKU
	Active       *bool
	BelowReorder bool // solo productos con stock por debajo del punto de reorden
	Limit        int
	Offset       int
}

// ProductRepository define el puerto de persistencia para Product (DIP).
// Todas las consultas van acotadas por empresa (tenant).
type ProductRepository interface {
	Create(ctx context.Context, product *entity.Product) error
	GetByID(ctx context.Context, companyID, id string) (*entity.Product, error)
	GetByCompanyAndSKU(ctx context.Context, companyID, sku string) (*entity.Product, error)
	// GetForUpdate bloquea la fila del producto hasta el fin de la transacción (SELECT FOR UPDATE).
	// Es el candado por producto que serializa las mutaciones de stock.
	GetForUpdate(ctx context.Context, companyID, id string) (*entity.Product, error)
	Update(ctx context.Context, product *entity.Product) error
	UpdateCost(ctx context.Context, productID string, cost decimal.Decimal) error
	List(ctx context.Context, companyID string, filter ProductFilter) ([]*entity.Product, error)
}
