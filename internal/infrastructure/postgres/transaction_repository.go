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

var _ repository.TransactionRepository = (*TransactionRepo)(nil)

const transactionColumns = `seq, id, company_id, product_id, batch_id, type, quantity, quantity_before, quantity_after,
	unit_price, total_value, reason, reference_type, reference_id, notes, created_by, created_at`

// TransactionRepo libro de inventario sobre PostgreSQL. Solo inserta.
type TransactionRepo struct {
	q Querier
}

// NewTransactionRepository construye el adaptador. Pasar pool o tx (Querier).
func NewTransactionRepository(q Querier) *TransactionRepo {
	return &TransactionRepo{q: q}
}

// Append inserta el movimiento si quantity_before coincide con el último quantity_after del producto.
// El INSERT ... SELECT ... WHERE hace la comparación y la escritura en una sola sentencia.
func (r *TransactionRepo) Append(ctx context.Context, tx *entity.Transaction) error {
	query := `
		INSERT INTO inventory_transactions (id, company_id, product_id, batch_id, type, quantity, quantity_before,
			quantity_after, unit_price, total_value, reason, reference_type, reference_id, notes, created_by, created_at)
		SELECT $1::uuid, $2::uuid, $3::uuid, $4::uuid, $5::text, $6::numeric, $7::numeric,
			$8::numeric, $9::numeric, $10::numeric, $11::text, $12::text, $13::text, $14::text, $15::text, $16::timestamptz
		WHERE COALESCE((
			SELECT t.quantity_after FROM inventory_transactions t
			WHERE t.product_id = $3::uuid ORDER BY t.seq DESC LIMIT 1
		), 0) = $7::numeric
		RETURNING seq`
	err := r.q.QueryRow(ctx, query,
		tx.ID, tx.CompanyID, tx.ProductID, nullString(tx.BatchID), string(tx.Type), tx.Quantity, tx.QuantityBefore,
		tx.QuantityAfter, tx.UnitPrice, tx.TotalValue, nullString(string(tx.Reason)), nullString(tx.ReferenceType),
		nullString(tx.ReferenceID), tx.Notes, nullString(tx.CreatedBy), tx.CreatedAt,
	).Scan(&tx.Seq)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.ErrConcurrencyConflict
		}
		return mapError(fmt.Errorf("append transaction: %w", err))
	}
	return nil
}

// Last último movimiento del producto.
func (r *TransactionRepo) Last(ctx context.Context, companyID, productID string) (*entity.Transaction, error) {
	query := `SELECT ` + transactionColumns + ` FROM inventory_transactions
		WHERE company_id = $1 AND product_id = $2 ORDER BY seq DESC LIMIT 1`
	t, err := scanTransaction(r.q.QueryRow(ctx, query, companyID, productID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("last transaction: %w", err)
	}
	return t, nil
}

// List historial de la empresa, más reciente primero.
func (r *TransactionRepo) List(ctx context.Context, companyID string, filter repository.TransactionFilter) ([]*entity.Transaction, error) {
	query := `SELECT ` + transactionColumns + ` FROM inventory_transactions WHERE company_id = $1`
	args := []any{companyID}
	pos := 2
	if filter.ProductID != "" {
		query += fmt.Sprintf(` AND product_id = $%d`, pos)
		args = append(args, filter.ProductID)
		pos++
	}
	if len(filter.Types) > 0 {
		types := make([]string, len(filter.Types))
		for i, t := range filter.Types {
			types[i] = string(t)
		}
		query += fmt.Sprintf(` AND type = ANY($%d)`, pos)
		args = append(args, types)
		pos++
	}
	query += fmt.Sprintf(` ORDER BY seq DESC LIMIT $%d OFFSET $%d`, pos, pos+1)
	args = append(args, filter.Limit, filter.Offset)

	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	defer rows.Close()
	var list []*entity.Transaction
	for rows.Next() {
		t, err := scanTransaction(rows)
		if err != nil {
			return nil, fmt.Errorf("scan transaction: %w", err)
		}
		list = append(list, t)
	}
	return list, rows.Err()
}

func scanTransaction(row pgx.Row) (*entity.Transaction, error) {
	var t entity.Transaction
	var batchID, reason, refType, refID, createdBy *string
	var txType string
	err := row.Scan(&t.Seq, &t.ID, &t.CompanyID, &t.ProductID, &batchID, &txType, &t.Quantity, &t.QuantityBefore,
		&t.QuantityAfter, &t.UnitPrice, &t.TotalValue, &reason, &refType, &refID, &t.Notes, &createdBy, &t.CreatedAt)
	if err != nil {
		return nil, err
	}
	t.Type = entity.TransactionType(txType)
	t.BatchID = derefString(batchID)
	t.Reason = entity.AdjustmentReason(derefString(reason))
	t.ReferenceType = derefString(refType)
	t.ReferenceID = derefString(refID)
	t.CreatedBy = derefString(createdBy)
	return &t, nil
}
