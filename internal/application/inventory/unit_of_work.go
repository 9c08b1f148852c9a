package inventory

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jhoicas/Inventario-farmacia/internal/application/alert"
	"github.com/jhoicas/Inventario-farmacia/internal/domain"
	"github.com/jhoicas/Inventario-farmacia/internal/domain/entity"
	dominv "github.com/jhoicas/Inventario-farmacia/internal/domain/inventory"
	"github.com/shopspring/decimal"
)

// DefaultMaxRetries intentos ante ErrConcurrencyConflict antes de devolver el error al caller.
const DefaultMaxRetries = 3

const retryBackoff = 15 * time.Millisecond

// RetryOnConflict reintenta fn mientras falle con ErrConcurrencyConflict, hasta attempts veces.
// Cualquier otro error se devuelve de inmediato.
func RetryOnConflict(ctx context.Context, attempts int, fn func() error) error {
	if attempts <= 0 {
		attempts = DefaultMaxRetries
	}
	var err error
	for i := 1; i <= attempts; i++ {
		err = fn()
		if err == nil || !errors.Is(err, domain.ErrConcurrencyConflict) {
			return err
		}
		if i == attempts {
			break
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(retryBackoff * time.Duration(i)):
		}
	}
	return err
}

// ProductStock estado de un producto bloqueado dentro de una unidad de trabajo.
type ProductStock struct {
	Product  *entity.Product
	Batches  []*entity.Batch // activos, en orden FEFO
	OnHand   decimal.Decimal // suma de lotes activos
	Reserved decimal.Decimal
}

// Available stock que se puede consumir.
func (s *ProductStock) Available() decimal.Decimal {
	return s.OnHand.Sub(s.Reserved)
}

// FindBatch busca un lote activo del producto ya cargado.
func (s *ProductStock) FindBatch(id string) *entity.Batch {
	for _, b := range s.Batches {
		if b.ID == id {
			return b
		}
	}
	return nil
}

// LoadForUpdate bloquea la fila del producto (SELECT FOR UPDATE) y carga sus lotes activos.
// Debe ser lo primero que hace cualquier unidad de trabajo que mueva stock del producto.
func LoadForUpdate(ctx context.Context, r Repos, companyID, productID string) (*ProductStock, error) {
	product, err := r.Products.GetForUpdate(ctx, companyID, productID)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, domain.ErrNotFound
	}
	batches, err := r.Batches.ListActive(ctx, companyID, productID)
	if err != nil {
		return nil, err
	}
	dominv.SortFEFO(batches)
	onHand, reserved := dominv.Totals(batches)
	return &ProductStock{Product: product, Batches: batches, OnHand: onHand, Reserved: reserved}, nil
}

// RecordMovement completa el saldo anterior/posterior desde los lotes y agrega el movimiento al libro.
// El repositorio rechaza el append si el saldo anterior no coincide con el último del libro.
func RecordMovement(ctx context.Context, r Repos, st *ProductStock, tx *entity.Transaction) error {
	tx.QuantityBefore = st.OnHand
	tx.QuantityAfter = st.OnHand.Add(tx.Quantity)
	if tx.QuantityAfter.IsNegative() {
		return domain.ErrInsufficientStock
	}
	if tx.ID == "" {
		tx.ID = uuid.New().String()
	}
	if err := r.Transactions.Append(ctx, tx); err != nil {
		return err
	}
	st.OnHand = tx.QuantityAfter
	return nil
}

// DepleteFEFO descuenta qty de los lotes en orden FEFO y devuelve el valor al costo de lo descontado.
// Valida contra el disponible (en mano menos reservado) antes de tocar cualquier lote.
func DepleteFEFO(ctx context.Context, r Repos, st *ProductStock, qty decimal.Decimal, now time.Time) (decimal.Decimal, error) {
	if qty.GreaterThan(st.Available()) {
		return decimal.Zero, domain.ErrInsufficientStock
	}
	plan, err := dominv.PlanDepletion(st.Batches, qty)
	if err != nil {
		return decimal.Zero, err
	}
	for _, d := range plan {
		if _, err := d.Batch.ApplyDelta(d.Quantity.Neg(), now); err != nil {
			return decimal.Zero, err
		}
		if err := r.Batches.Update(ctx, d.Batch); err != nil {
			return decimal.Zero, err
		}
	}
	return dominv.DrawValue(plan), nil
}

// StockChangedEvent evento para el emisor de alertas a partir del movimiento confirmado.
func StockChangedEvent(p *entity.Product, tx *entity.Transaction) alert.StockChanged {
	return alert.StockChanged{
		CompanyID:     p.CompanyID,
		ProductID:     p.ID,
		ProductName:   p.Name,
		NewTotal:      tx.QuantityAfter,
		ReorderPoint:  p.ReorderPoint,
		TransactionID: tx.ID,
		OccurredAt:    tx.CreatedAt,
	}
}
