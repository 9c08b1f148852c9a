package memory

import (
	"context"
	"sort"

	"github.com/jhoicas/Inventario-farmacia/internal/domain"
	"github.com/jhoicas/Inventario-farmacia/internal/domain/entity"
	"github.com/jhoicas/Inventario-farmacia/internal/domain/repository"
	"github.com/shopspring/decimal"
)

var _ repository.PurchaseOrderRepository = (*PurchaseOrderRepo)(nil)

// PurchaseOrderRepo órdenes de compra en memoria.
type PurchaseOrderRepo struct {
	s    *Store
	inTx bool
}

func (r *PurchaseOrderRepo) Create(_ context.Context, o *entity.PurchaseOrder) error {
	return r.s.view(r.inTx, func(d *state) error {
		for _, existing := range d.orders {
			if existing.ID == o.ID || (existing.CompanyID == o.CompanyID && existing.OrderNumber == o.OrderNumber) {
				return domain.ErrDuplicate
			}
		}
		c := copyOrder(o)
		for i := range c.Items {
			c.Items[i].OrderID = o.ID
		}
		d.orders[o.ID] = c
		return nil
	})
}

func (r *PurchaseOrderRepo) GetByID(_ context.Context, companyID, id string) (*entity.PurchaseOrder, error) {
	var out *entity.PurchaseOrder
	err := r.s.view(r.inTx, func(d *state) error {
		if o, ok := d.orders[id]; ok && o.CompanyID == companyID {
			out = copyOrder(o)
		}
		return nil
	})
	return out, err
}

func (r *PurchaseOrderRepo) GetForUpdate(ctx context.Context, companyID, id string) (*entity.PurchaseOrder, error) {
	return r.GetByID(ctx, companyID, id)
}

func (r *PurchaseOrderRepo) UpdateStatus(_ context.Context, o *entity.PurchaseOrder) error {
	return r.s.view(r.inTx, func(d *state) error {
		current, ok := d.orders[o.ID]
		if !ok || current.CompanyID != o.CompanyID {
			return domain.ErrNotFound
		}
		current.Status = o.Status
		current.SentAt = o.SentAt
		current.ConfirmedAt = o.ConfirmedAt
		current.CancelledAt = o.CancelledAt
		current.ReceivedDate = o.ReceivedDate
		current.UpdatedAt = o.UpdatedAt
		return nil
	})
}

func (r *PurchaseOrderRepo) MarkItemReceived(_ context.Context, orderID, itemID string, quantity decimal.Decimal) error {
	return r.s.view(r.inTx, func(d *state) error {
		o, ok := d.orders[orderID]
		if !ok {
			return domain.ErrNotFound
		}
		it := o.Item(itemID)
		if it == nil {
			return domain.ErrNotFound
		}
		if it.IsReceived() {
			return domain.ErrConcurrencyConflict
		}
		q := quantity
		it.QuantityReceived = &q
		return nil
	})
}

func (r *PurchaseOrderRepo) List(_ context.Context, companyID string, f repository.PurchaseOrderFilter) ([]*entity.PurchaseOrder, error) {
	var out []*entity.PurchaseOrder
	err := r.s.view(r.inTx, func(d *state) error {
		for _, o := range d.orders {
			if o.CompanyID != companyID {
				continue
			}
			if f.Status != "" && o.Status != f.Status {
				continue
			}
			if f.SupplierID != "" && o.SupplierID != f.SupplierID {
				continue
			}
			out = append(out, copyOrder(o))
		}
		return nil
	})
	sort.Slice(out, func(i, j int) bool {
		if !out[i].OrderDate.Equal(out[j].OrderDate) {
			return out[i].OrderDate.After(out[j].OrderDate)
		}
		return out[i].OrderNumber > out[j].OrderNumber
	})
	return page(out, f.Limit, f.Offset), err
}
