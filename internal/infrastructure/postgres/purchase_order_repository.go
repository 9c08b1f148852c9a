package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jhoicas/Inventario-farmacia/internal/domain"
	"github.com/jhoicas/Inventario-farmacia/internal/domain/entity"
	"github.com/jhoicas/Inventario-farmacia/internal/domain/repository"
	"github.com/shopspring/decimal"
)

var _ repository.PurchaseOrderRepository = (*PurchaseOrderRepo)(nil)

const purchaseOrderColumns = `id, company_id, order_number, supplier_id, warehouse_id, status, order_date, expected_date,
	subtotal, total, notes, sent_at, confirmed_at, cancelled_at, received_date, created_by, created_at, updated_at`

// PurchaseOrderRepo órdenes de compra y sus líneas sobre PostgreSQL (usable con pool o tx).
type PurchaseOrderRepo struct {
	q Querier
}

// NewPurchaseOrderRepository construye el adaptador. Pasar pool o tx (Querier).
func NewPurchaseOrderRepository(q Querier) *PurchaseOrderRepo {
	return &PurchaseOrderRepo{q: q}
}

// Create inserta la cabecera y sus líneas. Usar dentro de una tx para que sea atómico.
func (r *PurchaseOrderRepo) Create(ctx context.Context, o *entity.PurchaseOrder) error {
	_, err := r.q.Exec(ctx, `
		INSERT INTO purchase_orders (`+purchaseOrderColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18)`,
		o.ID, o.CompanyID, o.OrderNumber, o.SupplierID, o.WarehouseID, string(o.Status), o.OrderDate, o.ExpectedDate,
		o.Subtotal, o.Total, o.Notes, o.SentAt, o.ConfirmedAt, o.CancelledAt, o.ReceivedDate,
		nullString(o.CreatedBy), o.CreatedAt, o.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("insert purchase order: %w", err)
	}
	for i, it := range o.Items {
		_, err := r.q.Exec(ctx, `
			INSERT INTO purchase_order_items (id, order_id, position, product_id, quantity_ordered, quantity_received, unit_price, discount_percent, line_total)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
			it.ID, o.ID, i, it.ProductID, it.QuantityOrdered, it.QuantityReceived, it.UnitPrice, it.DiscountPercent, it.LineTotal,
		)
		if err != nil {
			return fmt.Errorf("insert purchase order item: %w", err)
		}
	}
	return nil
}

// GetByID obtiene la orden con sus líneas.
func (r *PurchaseOrderRepo) GetByID(ctx context.Context, companyID, id string) (*entity.PurchaseOrder, error) {
	return r.get(ctx, `SELECT `+purchaseOrderColumns+` FROM purchase_orders WHERE company_id = $1 AND id = $2`, companyID, id)
}

// GetForUpdate bloquea la cabecera y carga las líneas.
func (r *PurchaseOrderRepo) GetForUpdate(ctx context.Context, companyID, id string) (*entity.PurchaseOrder, error) {
	o, err := r.get(ctx, `SELECT `+purchaseOrderColumns+` FROM purchase_orders WHERE company_id = $1 AND id = $2 FOR UPDATE`, companyID, id)
	return o, mapError(err)
}

func (r *PurchaseOrderRepo) get(ctx context.Context, query string, companyID, id string) (*entity.PurchaseOrder, error) {
	o, err := scanPurchaseOrder(r.q.QueryRow(ctx, query, companyID, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get purchase order: %w", err)
	}
	if o.Items, err = r.items(ctx, o.ID); err != nil {
		return nil, err
	}
	return o, nil
}

// UpdateStatus persiste el estado y las fechas de transición.
func (r *PurchaseOrderRepo) UpdateStatus(ctx context.Context, o *entity.PurchaseOrder) error {
	cmd, err := r.q.Exec(ctx, `
		UPDATE purchase_orders SET status = $3, sent_at = $4, confirmed_at = $5, cancelled_at = $6,
			received_date = $7, updated_at = $8
		WHERE company_id = $1 AND id = $2`,
		o.CompanyID, o.ID, string(o.Status), o.SentAt, o.ConfirmedAt, o.CancelledAt, o.ReceivedDate, o.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update purchase order status: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// MarkItemReceived marca la línea solo si no estaba marcada; si ya lo estaba devuelve ErrConcurrencyConflict.
func (r *PurchaseOrderRepo) MarkItemReceived(ctx context.Context, orderID, itemID string, quantity decimal.Decimal) error {
	cmd, err := r.q.Exec(ctx, `
		UPDATE purchase_order_items SET quantity_received = $3
		WHERE order_id = $1 AND id = $2 AND quantity_received IS NULL`,
		orderID, itemID, quantity,
	)
	if err != nil {
		return mapError(fmt.Errorf("mark item received: %w", err))
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrConcurrencyConflict
	}
	return nil
}

// List órdenes de la empresa, más recientes primero.
func (r *PurchaseOrderRepo) List(ctx context.Context, companyID string, filter repository.PurchaseOrderFilter) ([]*entity.PurchaseOrder, error) {
	query := `SELECT ` + purchaseOrderColumns + ` FROM purchase_orders WHERE company_id = $1`
	args := []any{companyID}
	pos := 2
	if filter.Status != "" {
		query += fmt.Sprintf(` AND status = $%d`, pos)
		args = append(args, string(filter.Status))
		pos++
	}
	if filter.SupplierID != "" {
		query += fmt.Sprintf(` AND supplier_id = $%d`, pos)
		args = append(args, filter.SupplierID)
		pos++
	}
	query += fmt.Sprintf(` ORDER BY order_date DESC, order_number DESC LIMIT $%d OFFSET $%d`, pos, pos+1)
	args = append(args, filter.Limit, filter.Offset)

	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list purchase orders: %w", err)
	}
	var list []*entity.PurchaseOrder
	for rows.Next() {
		o, err := scanPurchaseOrder(rows)
		if err != nil {
			rows.Close()
			return nil, fmt.Errorf("scan purchase order: %w", err)
		}
		list = append(list, o)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}
	// las líneas se cargan después de cerrar rows: la conexión de una tx no admite consultas anidadas
	for _, o := range list {
		if o.Items, err = r.items(ctx, o.ID); err != nil {
			return nil, err
		}
	}
	return list, nil
}

func (r *PurchaseOrderRepo) items(ctx context.Context, orderID string) ([]entity.PurchaseOrderItem, error) {
	rows, err := r.q.Query(ctx, `
		SELECT id, order_id, product_id, quantity_ordered, quantity_received, unit_price, discount_percent, line_total
		FROM purchase_order_items WHERE order_id = $1 ORDER BY position`, orderID)
	if err != nil {
		return nil, fmt.Errorf("list purchase order items: %w", err)
	}
	defer rows.Close()
	var items []entity.PurchaseOrderItem
	for rows.Next() {
		var it entity.PurchaseOrderItem
		if err := rows.Scan(&it.ID, &it.OrderID, &it.ProductID, &it.QuantityOrdered, &it.QuantityReceived,
			&it.UnitPrice, &it.DiscountPercent, &it.LineTotal); err != nil {
			return nil, fmt.Errorf("scan purchase order item: %w", err)
		}
		items = append(items, it)
	}
	return items, rows.Err()
}

func scanPurchaseOrder(row pgx.Row) (*entity.PurchaseOrder, error) {
	var o entity.PurchaseOrder
	var status string
	var createdBy *string
	err := row.Scan(&o.ID, &o.CompanyID, &o.OrderNumber, &o.SupplierID, &o.WarehouseID, &status, &o.OrderDate,
		&o.ExpectedDate, &o.Subtotal, &o.Total, &o.Notes, &o.SentAt, &o.ConfirmedAt, &o.CancelledAt, &o.ReceivedDate,
		&createdBy, &o.CreatedAt, &o.UpdatedAt)
	if err != nil {
		return nil, err
	}
	o.Status = entity.PurchaseOrderStatus(status)
	o.CreatedBy = derefString(createdBy)
	return &o, nil
}
