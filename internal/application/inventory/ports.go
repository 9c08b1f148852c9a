package inventory

import (
	"context"

	"github.com/jhoicas/Inventario-farmacia/internal/application/alert"
	"github.com/jhoicas/Inventario-farmacia/internal/domain/repository"
)

// Repos repositorios atados a una misma transacción de BD.
type Repos struct {
	Products       repository.ProductRepository
	Batches        repository.BatchRepository
	Transactions   repository.TransactionRepository
	PurchaseOrders repository.PurchaseOrderRepository
}

// TxRunner ejecuta una función dentro de una transacción de BD, pasando repositorios atados a esa tx.
// Todo lo que fn escribe se confirma junto o no se confirma (unidad de trabajo del motor de inventario).
type TxRunner interface {
	Run(ctx context.Context, fn func(r Repos) error) error
}

// StockEventPublisher recibe los eventos de stock después del commit (lo implementa alert.Emitter).
type StockEventPublisher interface {
	Publish(evt alert.StockChanged)
}
