package inventory

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jhoicas/Inventario-farmacia/internal/domain"
	"github.com/jhoicas/Inventario-farmacia/internal/domain/entity"
	"github.com/jhoicas/Inventario-farmacia/internal/domain/repository"
	"github.com/shopspring/decimal"
)

// AdjustmentUseCase ajustes manuales de stock (entrada o salida) con motivo obligatorio.
// Cada ajuste es una unidad de trabajo: bloqueo del producto, cambio de lotes y un único movimiento en el libro.
type AdjustmentUseCase struct {
	txRunner      TxRunner
	warehouseRepo repository.WarehouseRepository
	txRepo        repository.TransactionRepository
	events        StockEventPublisher
	maxRetries    int
}

// NewAdjustmentUseCase construye el caso de uso. events puede ser nil (sin alertas).
func NewAdjustmentUseCase(
	txRunner TxRunner,
	warehouseRepo repository.WarehouseRepository,
	txRepo repository.TransactionRepository,
	events StockEventPublisher,
	maxRetries int,
) *AdjustmentUseCase {
	return &AdjustmentUseCase{
		txRunner:      txRunner,
		warehouseRepo: warehouseRepo,
		txRepo:        txRepo,
		events:        events,
		maxRetries:    maxRetries,
	}
}

// AdjustInput entrada de un ajuste manual.
// BatchID es opcional: en "add" suma a ese lote si sigue activo; en "remove" descuenta solo de ese lote.
// WarehouseID, LotNumber y ExpiryDate solo aplican cuando un "add" crea un lote nuevo.
type AdjustInput struct {
	CompanyID   string
	UserID      string
	ProductID   string
	Type        string
	Quantity    decimal.Decimal
	Reason      string
	BatchID     string
	WarehouseID string
	LotNumber   string
	ExpiryDate  *time.Time
	Notes       string
}

// AdjustResult nuevo total del producto y movimiento escrito.
type AdjustResult struct {
	NewTotal    decimal.Decimal
	Transaction *entity.Transaction
}

// AdjustStock valida y aplica el ajuste. Los errores de validación se devuelven antes de cualquier escritura.
func (uc *AdjustmentUseCase) AdjustStock(ctx context.Context, in AdjustInput) (*AdjustResult, error) {
	adjType, err := entity.ParseAdjustmentType(in.Type)
	if err != nil {
		return nil, err
	}
	reason, err := entity.ParseAdjustmentReason(in.Reason)
	if err != nil {
		return nil, err
	}
	if in.CompanyID == "" || in.ProductID == "" || !in.Quantity.IsPositive() {
		return nil, domain.ErrInvalidInput
	}
	if in.WarehouseID != "" {
		wh, err := uc.warehouseRepo.GetByID(ctx, in.CompanyID, in.WarehouseID)
		if err != nil {
			return nil, err
		}
		if wh == nil {
			return nil, domain.ErrNotFound
		}
	}

	var (
		result  *AdjustResult
		product *entity.Product
	)
	err = RetryOnConflict(ctx, uc.maxRetries, func() error {
		return uc.txRunner.Run(ctx, func(r Repos) error {
			st, err := LoadForUpdate(ctx, r, in.CompanyID, in.ProductID)
			if err != nil {
				return err
			}
			now := time.Now().UTC()
			tx := &entity.Transaction{
				CompanyID: in.CompanyID,
				ProductID: in.ProductID,
				Reason:    reason,
				Notes:     in.Notes,
				CreatedBy: in.UserID,
				CreatedAt: now,
			}
			switch adjType {
			case entity.AdjustmentAdd:
				err = uc.add(ctx, r, st, in, tx, now)
			case entity.AdjustmentRemove:
				err = uc.remove(ctx, r, st, in, tx, now)
			}
			if err != nil {
				return err
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

// add: suma al lote indicado si sigue activo; si no, crea un lote nuevo con el costo de referencia del producto.
func (uc *AdjustmentUseCase) add(ctx context.Context, r Repos, st *ProductStock, in AdjustInput, tx *entity.Transaction, now time.Time) error {
	if !st.Product.Active {
		return domain.ErrInvalidInput
	}
	tx.Type = entity.TransactionAdjustmentAdd
	tx.Quantity = in.Quantity

	if in.BatchID != "" {
		batch, err := r.Batches.GetByID(ctx, in.CompanyID, in.BatchID)
		if err != nil {
			return err
		}
		if batch == nil || batch.ProductID != in.ProductID {
			return domain.ErrNotFound
		}
		if batch.Active {
			if _, err := batch.ApplyDelta(in.Quantity, now); err != nil {
				return err
			}
			if err := r.Batches.Update(ctx, batch); err != nil {
				return err
			}
			tx.BatchID = batch.ID
			tx.UnitPrice = batch.UnitCost
			tx.TotalValue = in.Quantity.Mul(batch.UnitCost)
			return nil
		}
	}

	batch := entity.NewBatch(uuid.New().String(), in.CompanyID, in.ProductID, in.WarehouseID,
		in.Quantity, st.Product.Cost, now, in.ExpiryDate)
	batch.LotNumber = in.LotNumber
	if err := r.Batches.Create(ctx, batch); err != nil {
		return err
	}
	tx.BatchID = batch.ID
	tx.UnitPrice = st.Product.Cost
	tx.TotalValue = in.Quantity.Mul(st.Product.Cost)
	return nil
}

// remove: con lote indicado descuenta solo de ese lote (sin repartir en otros);
// sin lote aplica FEFO sobre todos los lotes activos.
func (uc *AdjustmentUseCase) remove(ctx context.Context, r Repos, st *ProductStock, in AdjustInput, tx *entity.Transaction, now time.Time) error {
	tx.Type = entity.TransactionAdjustmentRemove
	tx.Quantity = in.Quantity.Neg()
	if in.Quantity.GreaterThan(st.Available()) {
		return domain.ErrInsufficientStock
	}

	if in.BatchID != "" {
		batch := st.FindBatch(in.BatchID)
		if batch == nil {
			other, err := r.Batches.GetByID(ctx, in.CompanyID, in.BatchID)
			if err != nil {
				return err
			}
			if other == nil || other.ProductID != in.ProductID {
				return domain.ErrNotFound
			}
			// lote inactivo: no tiene nada que descontar
			return domain.ErrInsufficientStock
		}
		if in.Quantity.GreaterThan(batch.Available()) {
			return domain.ErrInsufficientStock
		}
		if _, err := batch.ApplyDelta(in.Quantity.Neg(), now); err != nil {
			return err
		}
		if err := r.Batches.Update(ctx, batch); err != nil {
			return err
		}
		tx.BatchID = batch.ID
		tx.UnitPrice = batch.UnitCost
		tx.TotalValue = in.Quantity.Neg().Mul(batch.UnitCost)
		return nil
	}

	value, err := DepleteFEFO(ctx, r, st, in.Quantity, now)
	if err != nil {
		return err
	}
	tx.UnitPrice = value.Div(in.Quantity).Round(4)
	tx.TotalValue = value.Neg()
	return nil
}

// ListAdjustmentHistory historial de ajustes manuales (más recientes primero).
// productID vacío lista los ajustes de todos los productos de la empresa.
func (uc *AdjustmentUseCase) ListAdjustmentHistory(ctx context.Context, companyID, productID string, limit, offset int) ([]*entity.Transaction, error) {
	return uc.txRepo.List(ctx, companyID, repository.TransactionFilter{
		ProductID: productID,
		Types:     []entity.TransactionType{entity.TransactionAdjustmentAdd, entity.TransactionAdjustmentRemove},
		Limit:     limit,
		Offset:    offset,
	})
}
