package repository

import (
	"context"

	"github.com/jhoicas/Inventario-farmacia/internal/domain/entity"
)

// TransactionFilter filtros para el historial del libro.
type TransactionFilter struct {
	ProductID string
	Types     []entity.TransactionType
	Limit     int
	Offset    int
}

// TransactionRepository libro de inventario append-only. No existe Update ni Delete.
type TransactionRepository interface {
	// Append inserta el movimiento solo si QuantityBefore coincide con el QuantityAfter
	// del último movimiento del producto (0 si no hay). Si no coincide devuelve
	// domain.ErrConcurrencyConflict y no escribe nada.
	Append(ctx context.Context, tx *entity.Transaction) error
	// Last último movimiento del producto, nil si el libro está vacío.
	Last(ctx context.Context, companyID, productID string) (*entity.Transaction, error)
	// List ordenado por creación descendente.
	List(ctx context.Context, companyID string, filter TransactionFilter) ([]*entity.Transaction, error)
}
