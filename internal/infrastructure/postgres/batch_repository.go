package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jhoicas/Inventario-farmacia/internal/domain"
	"github.com/jhoicas/Inventario-farmacia/internal/domain/entity"
	"github.com/jhoicas/Inventario-farmacia/internal/domain/repository"
)

var _ repository.BatchRepository = (*BatchRepo)(nil)

const batchColumns = `id, company_id, product_id, warehouse_id, purchase_order_id, lot_number, quantity,
	reserved_quantity, unit_cost, received_date, expiry_date, active, created_at, updated_at`

// orden FEFO: vence primero sale primero; sin vencimiento al final
const fefoOrder = ` ORDER BY expiry_date ASC NULLS LAST, received_date ASC, id ASC`

// BatchRepo lotes sobre PostgreSQL (usable con pool o tx).
type BatchRepo struct {
	q Querier
}

// NewBatchRepository construye el adaptador. Pasar pool o tx (Querier).
func NewBatchRepository(q Querier) *BatchRepo {
	return &BatchRepo{q: q}
}

// Create persiste un lote nuevo.
func (r *BatchRepo) Create(ctx context.Context, b *entity.Batch) error {
	query := `
		INSERT INTO batches (` + batchColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)`
	_, err := r.q.Exec(ctx, query,
		b.ID, b.CompanyID, b.ProductID, nullString(b.WarehouseID), nullString(b.PurchaseOrderID), b.LotNumber,
		b.Quantity, b.ReservedQuantity, b.UnitCost, b.ReceivedDate, b.ExpiryDate, b.Active, b.CreatedAt, b.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert batch: %w", err)
	}
	return nil
}

// GetByID obtiene un lote por ID (activo o no).
func (r *BatchRepo) GetByID(ctx context.Context, companyID, id string) (*entity.Batch, error) {
	query := `SELECT ` + batchColumns + ` FROM batches WHERE company_id = $1 AND id = $2`
	b, err := scanBatch(r.q.QueryRow(ctx, query, companyID, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get batch: %w", err)
	}
	return b, nil
}

// Update persiste cantidad, reservado y estado activo.
func (r *BatchRepo) Update(ctx context.Context, b *entity.Batch) error {
	cmd, err := r.q.Exec(ctx, `
		UPDATE batches SET quantity = $3, reserved_quantity = $4, active = $5, updated_at = $6
		WHERE company_id = $1 AND id = $2`,
		b.CompanyID, b.ID, b.Quantity, b.ReservedQuantity, b.Active, b.UpdatedAt,
	)
	if err != nil {
		return mapError(fmt.Errorf("update batch: %w", err))
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// ListActive lotes activos del producto en orden FEFO.
func (r *BatchRepo) ListActive(ctx context.Context, companyID, productID string) ([]*entity.Batch, error) {
	return r.list(ctx, `SELECT `+batchColumns+` FROM batches
		WHERE company_id = $1 AND product_id = $2 AND active`+fefoOrder, companyID, productID)
}

// ListByProduct todos los lotes del producto, incluidos los agotados.
func (r *BatchRepo) ListByProduct(ctx context.Context, companyID, productID string) ([]*entity.Batch, error) {
	return r.list(ctx, `SELECT `+batchColumns+` FROM batches
		WHERE company_id = $1 AND product_id = $2`+fefoOrder, companyID, productID)
}

func (r *BatchRepo) list(ctx context.Context, query string, args ...any) ([]*entity.Batch, error) {
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list batches: %w", err)
	}
	defer rows.Close()
	var list []*entity.Batch
	for rows.Next() {
		b, err := scanBatch(rows)
		if err != nil {
			return nil, fmt.Errorf("scan batch: %w", err)
		}
		list = append(list, b)
	}
	return list, rows.Err()
}

func scanBatch(row pgx.Row) (*entity.Batch, error) {
	var b entity.Batch
	var warehouseID, orderID *string
	err := row.Scan(&b.ID, &b.CompanyID, &b.ProductID, &warehouseID, &orderID, &b.LotNumber, &b.Quantity,
		&b.ReservedQuantity, &b.UnitCost, &b.ReceivedDate, &b.ExpiryDate, &b.Active, &b.CreatedAt, &b.UpdatedAt)
	if err != nil {
		return nil, err
	}
	b.WarehouseID = derefString(warehouseID)
	b.PurchaseOrderID = derefString(orderID)
	return &b, nil
}
