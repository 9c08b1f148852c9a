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

var _ repository.ProductRepository = (*ProductRepo)(nil)

const productColumns = `p.id, p.company_id, p.sku, p.name, p.description, p.price, p.cost,
	p.reorder_point, p.reorder_quantity, p.unit_measure, p.active, p.created_at, p.updated_at`

// ProductRepo implementación del puerto ProductRepository sobre PostgreSQL (usable con pool o tx).
type ProductRepo struct {
	q Querier
}

// NewProductRepository construye el adaptador de persistencia para productos. Pasar pool o tx (Querier).
func NewProductRepository(q Querier) *ProductRepo {
	return &ProductRepo{q: q}
}

// Create persiste un nuevo producto.
func (r *ProductRepo) Create(ctx context.Context, product *entity.Product) error {
	query := `
		INSERT INTO products (id, company_id, sku, name, description, price, cost, reorder_point, reorder_quantity, unit_measure, active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`
	_, err := r.q.Exec(ctx, query,
		product.ID, product.CompanyID, product.SKU, product.Name, product.Description,
		product.Price, product.Cost, product.ReorderPoint, product.ReorderQuantity, product.UnitMeasure,
		product.Active, product.CreatedAt, product.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("insert product: %w", err)
	}
	return nil
}

// GetByID obtiene un producto por ID.
func (r *ProductRepo) GetByID(ctx context.Context, companyID, id string) (*entity.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products p WHERE p.company_id = $1 AND p.id = $2`
	p, err := scanProduct(r.q.QueryRow(ctx, query, companyID, id))
	if err != nil {
		return nil, fmt.Errorf("get product: %w", err)
	}
	return p, nil
}

// GetByCompanyAndSKU obtiene un producto por empresa y SKU.
func (r *ProductRepo) GetByCompanyAndSKU(ctx context.Context, companyID, sku string) (*entity.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products p WHERE p.company_id = $1 AND p.sku = $2`
	p, err := scanProduct(r.q.QueryRow(ctx, query, companyID, sku))
	if err != nil {
		return nil, fmt.Errorf("get product by sku: %w", err)
	}
	return p, nil
}

// GetForUpdate obtiene el producto y bloquea su fila hasta el fin de la transacción.
func (r *ProductRepo) GetForUpdate(ctx context.Context, companyID, id string) (*entity.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products p WHERE p.company_id = $1 AND p.id = $2 FOR UPDATE`
	p, err := scanProduct(r.q.QueryRow(ctx, query, companyID, id))
	if err != nil {
		return nil, mapError(fmt.Errorf("lock product: %w", err))
	}
	return p, nil
}

// Update actualiza datos de catálogo. No modifica Cost (ver UpdateCost).
func (r *ProductRepo) Update(ctx context.Context, product *entity.Product) error {
	query := `
		UPDATE products SET name = $3, description = $4, price = $5, reorder_point = $6, reorder_quantity = $7,
			unit_measure = $8, active = $9, updated_at = $10
		WHERE company_id = $1 AND id = $2`
	cmd, err := r.q.Exec(ctx, query,
		product.CompanyID, product.ID, product.Name, product.Description, product.Price,
		product.ReorderPoint, product.ReorderQuantity, product.UnitMeasure, product.Active, product.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update product: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// UpdateCost actualiza solo el costo del producto (usado al recibir compras).
func (r *ProductRepo) UpdateCost(ctx context.Context, productID string, cost decimal.Decimal) error {
	_, err := r.q.Exec(ctx,
		`UPDATE products SET cost = $2, updated_at = now() WHERE id = $1`,
		productID, cost,
	)
	if err != nil {
		return fmt.Errorf("update product cost: %w", err)
	}
	return nil
}

// List lista productos por empresa. BelowReorder compara la suma de lotes activos con reorder_point.
func (r *ProductRepo) List(ctx context.Context, companyID string, filter repository.ProductFilter) ([]*entity.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products p WHERE p.company_id = $1`
	args := []any{companyID}
	pos := 2
	if filter.Search != "" {
		query += fmt.Sprintf(` AND (p.name ILIKE $%d OR p.sku ILIKE $%d)`, pos, pos)
		args = append(args, "%"+filter.Search+"%")
		pos++
	}
	if filter.Active != nil {
		query += fmt.Sprintf(` AND p.active = $%d`, pos)
		args = append(args, *filter.Active)
		pos++
	}
	if filter.BelowReorder {
		query += ` AND COALESCE((SELECT SUM(b.quantity) FROM batches b WHERE b.product_id = p.id AND b.active), 0) < p.reorder_point`
	}
	query += fmt.Sprintf(` ORDER BY p.name LIMIT $%d OFFSET $%d`, pos, pos+1)
	args = append(args, filter.Limit, filter.Offset)

	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	defer rows.Close()
	var list []*entity.Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, fmt.Errorf("scan product: %w", err)
		}
		list = append(list, p)
	}
	return list, rows.Err()
}

func scanProduct(row pgx.Row) (*entity.Product, error) {
	var p entity.Product
	err := row.Scan(&p.ID, &p.CompanyID, &p.SKU, &p.Name, &p.Description, &p.Price, &p.Cost,
		&p.ReorderPoint, &p.ReorderQuantity, &p.UnitMeasure, &p.Active, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &p, nil
}
