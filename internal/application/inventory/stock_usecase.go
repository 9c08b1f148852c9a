package inventory

import (
	"context"
	"time"

	"github.com/jhoicas/Inventario-farmacia/internal/domain"
	"github.com/jhoicas/Inventario-farmacia/internal/domain/entity"
	dominv "github.com/jhoicas/Inventario-farmacia/internal/domain/inventory"
	"github.com/jhoicas/Inventario-farmacia/internal/domain/repository"
	"github.com/shopspring/decimal"
)

// StockUseCase consultas de stock por lotes, libro de movimientos, salidas por venta y reservas.
type StockUseCase struct {
	txRunner    TxRunner
	productRepo repository.ProductRepository
	batchRepo   repository.BatchRepository
	txRepo      repository.TransactionRepository
	events      StockEventPublisher
	maxRetries  int
}

// NewStockUseCase construye el caso de uso. events puede ser nil.
func NewStockUseCase(
	txRunner TxRunner,
	productRepo repository.ProductRepository,
	batchRepo repository.BatchRepository,
	txRepo repository.TransactionRepository,
	events StockEventPublisher,
	maxRetries int,
) *StockUseCase {
	return &StockUseCase{
		txRunner:    txRunner,
		productRepo: productRepo,
		batchRepo:   batchRepo,
		txRepo:      txRepo,
		events:      events,
		maxRetries:  maxRetries,
	}
}

// StockLevel total en mano, reservado y disponible (total − reservado) de un producto.
type StockLevel struct {
	ProductID     string
	Total         decimal.Decimal
	Reserved      decimal.Decimal
	Available     decimal.Decimal
	ReorderPoint  decimal.Decimal
	ActiveBatches int
}

// GetStockLevel calcula el stock sumando los lotes activos (no hay total cacheado).
func (uc *StockUseCase) GetStockLevel(ctx context.Context, companyID, productID string) (*StockLevel, error) {
	product, err := uc.productRepo.GetByID(ctx, companyID, productID)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, domain.ErrNotFound
	}
	batches, err := uc.batchRepo.ListActive(ctx, companyID, productID)
	if err != nil {
		return nil, err
	}
	return toStockLevel(product, batches), nil
}

// ListBatches lotes del producto en orden FEFO. includeInactive agrega los agotados (auditoría).
func (uc *StockUseCase) ListBatches(ctx context.Context, companyID, productID string, includeInactive bool) ([]*entity.Batch, error) {
	product, err := uc.productRepo.GetByID(ctx, companyID, productID)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, domain.ErrNotFound
	}
	var batches []*entity.Batch
	if includeInactive {
		batches, err = uc.batchRepo.ListByProduct(ctx, companyID, productID)
	} else {
		batches, err = uc.batchRepo.ListActive(ctx, companyID, productID)
	}
	if err != nil {
		return nil, err
	}
	dominv.SortFEFO(batches)
	return batches, nil
}

// ListTransactions libro de movimientos del producto, más recientes primero.
func (uc *StockUseCase) ListTransactions(ctx context.Context, companyID, productID string, limit, offset int) ([]*entity.Transaction, error) {
	product, err := uc.productRepo.GetByID(ctx, companyID, productID)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, domain.ErrNotFound
	}
	return uc.txRepo.List(ctx, companyID, repository.TransactionFilter{ProductID: productID, Limit: limit, Offset: offset})
}

// SaleInput salida por venta desde el punto de venta.
type SaleInput struct {
	CompanyID string
	UserID    string
	ProductID string
	Quantity  decimal.Decimal
	Reference string // ID de la venta/factura
}

// RecordSale descuenta la venta en orden FEFO y escribe un único movimiento "sale".
func (uc *StockUseCase) RecordSale(ctx context.Context, in SaleInput) (*AdjustResult, error) {
	if in.CompanyID == "" || in.ProductID == "" || !in.Quantity.IsPositive() {
		return nil, domain.ErrInvalidInput
	}
	var (
		result  *AdjustResult
		product *entity.Product
	)
	err := RetryOnConflict(ctx, uc.maxRetries, func() error {
		return uc.txRunner.Run(ctx, func(r Repos) error {
			st, err := LoadForUpdate(ctx, r, in.CompanyID, in.ProductID)
			if err != nil {
				return err
			}
			now := time.Now().UTC()
			value, err := DepleteFEFO(ctx, r, st, in.Quantity, now)
			if err != nil {
				return err
			}
			tx := &entity.Transaction{
				CompanyID:     in.CompanyID,
				ProductID:     in.ProductID,
				Type:          entity.TransactionSale,
				Quantity:      in.Quantity.Neg(),
				UnitPrice:     value.Div(in.Quantity).Round(4),
				TotalValue:    value.Neg(),
				ReferenceType: entity.ReferenceSale,
				ReferenceID:   in.Reference,
				CreatedBy:     in.UserID,
				CreatedAt:     now,
			}
			if err := RecordMovement(ctx, r, st, tx); err != nil {
				return err
			}
			product = st.Product
			result = &AdjustResult{NewTotal: tx.QuantityAfter, Transaction: tx}
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	if uc.events != nil {
		uc.events.Publish(StockChangedEvent(product, result.Transaction))
	}
	return result, nil
}

// ReservationInput reserva o liberación de cantidad de un producto.
type ReservationInput struct {
	CompanyID string
	ProductID string
	Quantity  decimal.Decimal
}

// Reserve mueve cantidad disponible a reservada en orden FEFO. No cambia el total en mano,
// por eso no escribe en el libro.
func (uc *StockUseCase) Reserve(ctx context.Context, in ReservationInput) (*StockLevel, error) {
	return uc.reservation(ctx, in, func(st *ProductStock) ([]dominv.Draw, error) {
		if in.Quantity.GreaterThan(st.Available()) {
			return nil, domain.ErrInsufficientStock
		}
		return dominv.PlanDepletion(st.Batches, in.Quantity)
	}, (*entity.Batch).Reserve)
}

// Release libera cantidad reservada, empezando por los lotes que vencen más tarde.
func (uc *StockUseCase) Release(ctx context.Context, in ReservationInput) (*StockLevel, error) {
	return uc.reservation(ctx, in, func(st *ProductStock) ([]dominv.Draw, error) {
		if in.Quantity.GreaterThan(st.Reserved) {
			return nil, domain.ErrInvalidQuantity
		}
		return dominv.PlanRelease(st.Batches, in.Quantity)
	}, (*entity.Batch).Release)
}

func (uc *StockUseCase) reservation(
	ctx context.Context,
	in ReservationInput,
	plan func(st *ProductStock) ([]dominv.Draw, error),
	apply func(b *entity.Batch, qty decimal.Decimal, now time.Time) error,
) (*StockLevel, error) {
	if in.CompanyID == "" || in.ProductID == "" || !in.Quantity.IsPositive() {
		return nil, domain.ErrInvalidInput
	}
	var level *StockLevel
	err := RetryOnConflict(ctx, uc.maxRetries, func() error {
		return uc.txRunner.Run(ctx, func(r Repos) error {
			st, err := LoadForUpdate(ctx, r, in.CompanyID, in.ProductID)
			if err != nil {
				return err
			}
			draws, err := plan(st)
			if err != nil {
				return err
			}
			now := time.Now().UTC()
			for _, d := range draws {
				if err := apply(d.Batch, d.Quantity, now); err != nil {
					return err
				}
				if err := r.Batches.Update(ctx, d.Batch); err != nil {
					return err
				}
			}
			level = toStockLevel(st.Product, st.Batches)
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	return level, nil
}

func toStockLevel(p *entity.Product, batches []*entity.Batch) *StockLevel {
	onHand, reserved := dominv.Totals(batches)
	active := 0
	for _, b := range batches {
		if b.Active {
			active++
		}
	}
	return &StockLevel{
		ProductID:     p.ID,
		Total:         onHand,
		Reserved:      reserved,
		Available:     onHand.Sub(reserved),
		ReorderPoint:  p.ReorderPoint,
		ActiveBatches: active,
	}
}
