package repository

import (
	"context"

	"github.com/jhoicas/Inventario-farmacia/internal/domain/entity"
)

// SupplierRepository define el puerto de persistencia para proveedores.
type SupplierRepository interface {
	Create(ctx context.Context, supplier *entity.Supplier) error
	GetByID(ctx context.Context, companyID, id string) (*entity.Supplier, error)
	GetByCompanyAndTaxID(ctx context.Context, companyID, taxID string) (*entity.Supplier, error)
	ListByCompany(ctx context.Context, companyID string, limit, offset int) ([]*entity.Supplier, error)
}
