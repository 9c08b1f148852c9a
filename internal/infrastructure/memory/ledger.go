package memory

import (
	"context"
	"sort"

	"github.com/jhoicas/Inventario-farmacia/internal/domain"
	"github.com/jhoicas/Inventario-farmacia/internal/domain/entity"
	"github.com/jhoicas/Inventario-farmacia/internal/domain/inventory"
	"github.com/jhoicas/Inventario-farmacia/internal/domain/repository"
	"github.com/shopspring/decimal"
)

var (
	_ repository.BatchRepository       = (*BatchRepo)(nil)
	_ repository.TransactionRepository = (*TransactionRepo)(nil)
)

// BatchRepo lotes en memoria.
type BatchRepo struct {
	s    *Store
	inTx bool
}

func (r *BatchRepo) Create(_ context.Context, b *entity.Batch) error {
	return r.s.view(r.inTx, func(d *state) error {
		if _, ok := d.batches[b.ID]; ok {
			return domain.ErrDuplicate
		}
		d.batches[b.ID] = copyBatch(b)
		return nil
	})
}

func (r *BatchRepo) GetByID(_ context.Context, companyID, id string) (*entity.Batch, error) {
	var out *entity.Batch
	err := r.s.view(r.inTx, func(d *state) error {
		if b, ok := d.batches[id]; ok && b.CompanyID == companyID {
			out = copyBatch(b)
		}
		return nil
	})
	return out, err
}

func (r *BatchRepo) Update(_ context.Context, b *entity.Batch) error {
	return r.s.view(r.inTx, func(d *state) error {
		current, ok := d.batches[b.ID]
		if !ok || current.CompanyID != b.CompanyID {
			return domain.ErrNotFound
		}
		if b.Quantity.IsNegative() || b.ReservedQuantity.IsNegative() || b.ReservedQuantity.GreaterThan(b.Quantity) {
			return domain.ErrInvalidQuantity
		}
		d.batches[b.ID] = copyBatch(b)
		return nil
	})
}

func (r *BatchRepo) ListActive(_ context.Context, companyID, productID string) ([]*entity.Batch, error) {
	return r.list(companyID, productID, true)
}

func (r *BatchRepo) ListByProduct(_ context.Context, companyID, productID string) ([]*entity.Batch, error) {
	return r.list(companyID, productID, false)
}

func (r *BatchRepo) list(companyID, productID string, onlyActive bool) ([]*entity.Batch, error) {
	var out []*entity.Batch
	err := r.s.view(r.inTx, func(d *state) error {
		for _, b := range d.batches {
			if b.CompanyID != companyID || b.ProductID != productID {
				continue
			}
			if onlyActive && !b.Active {
				continue
			}
			out = append(out, copyBatch(b))
		}
		return nil
	})
	inventory.SortFEFO(out)
	return out, err
}

// TransactionRepo libro en memoria. Solo agrega al final.
type TransactionRepo struct {
	s    *Store
	inTx bool
}

func (r *TransactionRepo) Append(_ context.Context, tx *entity.Transaction) error {
	return r.s.view(r.inTx, func(d *state) error {
		last := decimal.Zero
		for i := len(d.transactions) - 1; i >= 0; i-- {
			if d.transactions[i].ProductID == tx.ProductID {
				last = d.transactions[i].QuantityAfter
				break
			}
		}
		if !last.Equal(tx.QuantityBefore) {
			return domain.ErrConcurrencyConflict
		}
		d.seq++
		tx.Seq = d.seq
		d.transactions = append(d.transactions, copyTransaction(tx))
		return nil
	})
}

func (r *TransactionRepo) Last(_ context.Context, companyID, productID string) (*entity.Transaction, error) {
	var out *entity.Transaction
	err := r.s.view(r.inTx, func(d *state) error {
		for i := len(d.transactions) - 1; i >= 0; i-- {
			t := d.transactions[i]
			if t.CompanyID == companyID && t.ProductID == productID {
				out = copyTransaction(t)
				return nil
			}
		}
		return nil
	})
	return out, err
}

func (r *TransactionRepo) List(_ context.Context, companyID string, f repository.TransactionFilter) ([]*entity.Transaction, error) {
	types := make(map[entity.TransactionType]bool, len(f.Types))
	for _, t := range f.Types {
		types[t] = true
	}
	var out []*entity.Transaction
	err := r.s.view(r.inTx, func(d *state) error {
		for _, t := range d.transactions {
			if t.CompanyID != companyID {
				continue
			}
			if f.ProductID != "" && t.ProductID != f.ProductID {
				continue
			}
			if len(types) > 0 && !types[t.Type] {
				continue
			}
			out = append(out, copyTransaction(t))
		}
		return nil
	})
	sort.Slice(out, func(i, j int) bool { return out[i].Seq > out[j].Seq })
	return page(out, f.Limit, f.Offset), err
}
