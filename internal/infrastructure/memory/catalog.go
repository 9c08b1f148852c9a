package memory

import (
	"context"
	"sort"
	"strings"

	"github.com/jhoicas/Inventario-farmacia/internal/domain"
	"github.com/jhoicas/Inventario-farmacia/internal/domain/entity"
	"github.com/jhoicas/Inventario-farmacia/internal/domain/repository"
	"github.com/shopspring/decimal"
)

var (
	_ repository.ProductRepository   = (*ProductRepo)(nil)
	_ repository.WarehouseRepository = (*WarehouseRepo)(nil)
	_ repository.SupplierRepository  = (*SupplierRepo)(nil)
)

// ProductRepo productos en memoria.
type ProductRepo struct {
	s    *Store
	inTx bool
}

func (r *ProductRepo) Create(_ context.Context, p *entity.Product) error {
	return r.s.view(r.inTx, func(d *state) error {
		if _, ok := d.products[p.ID]; ok {
			return domain.ErrDuplicate
		}
		for _, existing := range d.products {
			if existing.CompanyID == p.CompanyID && existing.SKU == p.SKU {
				return domain.ErrDuplicate
			}
		}
		d.products[p.ID] = copyProduct(p)
		return nil
	})
}

func (r *ProductRepo) GetByID(_ context.Context, companyID, id string) (*entity.Product, error) {
	var out *entity.Product
	err := r.s.view(r.inTx, func(d *state) error {
		if p, ok := d.products[id]; ok && p.CompanyID == companyID {
			out = copyProduct(p)
		}
		return nil
	})
	return out, err
}

func (r *ProductRepo) GetByCompanyAndSKU(_ context.Context, companyID, sku string) (*entity.Product, error) {
	var out *entity.Product
	err := r.s.view(r.inTx, func(d *state) error {
		for _, p := range d.products {
			if p.CompanyID == companyID && p.SKU == sku {
				out = copyProduct(p)
				return nil
			}
		}
		return nil
	})
	return out, err
}

// GetForUpdate igual que GetByID: dentro de Run el bloqueo global ya serializa.
func (r *ProductRepo) GetForUpdate(ctx context.Context, companyID, id string) (*entity.Product, error) {
	return r.GetByID(ctx, companyID, id)
}

func (r *ProductRepo) Update(_ context.Context, p *entity.Product) error {
	return r.s.view(r.inTx, func(d *state) error {
		current, ok := d.products[p.ID]
		if !ok || current.CompanyID != p.CompanyID {
			return domain.ErrNotFound
		}
		next := copyProduct(p)
		next.Cost = current.Cost
		d.products[p.ID] = next
		return nil
	})
}

func (r *ProductRepo) UpdateCost(_ context.Context, productID string, cost decimal.Decimal) error {
	return r.s.view(r.inTx, func(d *state) error {
		if p, ok := d.products[productID]; ok {
			p.Cost = cost
		}
		return nil
	})
}

func (r *ProductRepo) List(_ context.Context, companyID string, f repository.ProductFilter) ([]*entity.Product, error) {
	var out []*entity.Product
	err := r.s.view(r.inTx, func(d *state) error {
		search := strings.ToLower(f.Search)
		for _, p := range d.products {
			if p.CompanyID != companyID {
				continue
			}
			if search != "" && !strings.Contains(strings.ToLower(p.Name), search) &&
				!strings.Contains(strings.ToLower(p.SKU), search) {
				continue
			}
			if f.Active != nil && p.Active != *f.Active {
				continue
			}
			if f.BelowReorder && !d.stockOf(p.ID).LessThan(p.ReorderPoint) {
				continue
			}
			out = append(out, copyProduct(p))
		}
		return nil
	})
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return page(out, f.Limit, f.Offset), err
}

// WarehouseRepo bodegas en memoria.
type WarehouseRepo struct {
	s *Store
}

func (r *WarehouseRepo) Create(_ context.Context, w *entity.Warehouse) error {
	return r.s.view(false, func(d *state) error {
		c := *w
		d.warehouses[w.ID] = &c
		return nil
	})
}

func (r *WarehouseRepo) GetByID(_ context.Context, companyID, id string) (*entity.Warehouse, error) {
	var out *entity.Warehouse
	err := r.s.view(false, func(d *state) error {
		if w, ok := d.warehouses[id]; ok && w.CompanyID == companyID {
			c := *w
			out = &c
		}
		return nil
	})
	return out, err
}

func (r *WarehouseRepo) ListByCompany(_ context.Context, companyID string, limit, offset int) ([]*entity.Warehouse, error) {
	var out []*entity.Warehouse
	err := r.s.view(false, func(d *state) error {
		for _, w := range d.warehouses {
			if w.CompanyID == companyID {
				c := *w
				out = append(out, &c)
			}
		}
		return nil
	})
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return page(out, limit, offset), err
}

// SupplierRepo proveedores en memoria.
type SupplierRepo struct {
	s *Store
}

func (r *SupplierRepo) Create(_ context.Context, sp *entity.Supplier) error {
	return r.s.view(false, func(d *state) error {
		for _, existing := range d.suppliers {
			if existing.CompanyID == sp.CompanyID && existing.TaxID == sp.TaxID {
				return domain.ErrDuplicate
			}
		}
		c := *sp
		d.suppliers[sp.ID] = &c
		return nil
	})
}

func (r *SupplierRepo) GetByID(_ context.Context, companyID, id string) (*entity.Supplier, error) {
	var out *entity.Supplier
	err := r.s.view(false, func(d *state) error {
		if sp, ok := d.suppliers[id]; ok && sp.CompanyID == companyID {
			c := *sp
			out = &c
		}
		return nil
	})
	return out, err
}

func (r *SupplierRepo) GetByCompanyAndTaxID(_ context.Context, companyID, taxID string) (*entity.Supplier, error) {
	var out *entity.Supplier
	err := r.s.view(false, func(d *state) error {
		for _, sp := range d.suppliers {
			if sp.CompanyID == companyID && sp.TaxID == taxID {
				c := *sp
				out = &c
				return nil
			}
		}
		return nil
	})
	return out, err
}

func (r *SupplierRepo) ListByCompany(_ context.Context, companyID string, limit, offset int) ([]*entity.Supplier, error) {
	var out []*entity.Supplier
	err := r.s.view(false, func(d *state) error {
		for _, sp := range d.suppliers {
			if sp.CompanyID == companyID {
				c := *sp
				out = append(out, &c)
			}
		}
		return nil
	})
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return page(out, limit, offset), err
}
