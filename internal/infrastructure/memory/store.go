// Package memory implementa los puertos de persistencia en memoria.
// Se usa en pruebas y con STORAGE_DRIVER=memory para levantar la API sin PostgreSQL.
package memory

import (
	"context"
	"sync"

	"github.com/jhoicas/Inventario-farmacia/internal/application/inventory"
	"github.com/jhoicas/Inventario-farmacia/internal/domain/entity"
	"github.com/shopspring/decimal"
)

var _ inventory.TxRunner = (*Store)(nil)

// Store guarda todo el estado detrás de un único mutex.
// Run toma el mutex durante toda la unidad de trabajo, así que las transacciones quedan serializadas
// (más fuerte que el bloqueo por producto de PostgreSQL) y un error restaura la copia previa.
type Store struct {
	mu   sync.Mutex
	data *state
}

type state struct {
	products     map[string]*entity.Product
	warehouses   map[string]*entity.Warehouse
	suppliers    map[string]*entity.Supplier
	batches      map[string]*entity.Batch
	orders       map[string]*entity.PurchaseOrder
	transactions []*entity.Transaction
	seq          int64
}

// NewStore crea un almacén vacío.
func NewStore() *Store {
	return &Store{data: &state{
		products:   make(map[string]*entity.Product),
		warehouses: make(map[string]*entity.Warehouse),
		suppliers:  make(map[string]*entity.Supplier),
		batches:    make(map[string]*entity.Batch),
		orders:     make(map[string]*entity.PurchaseOrder),
	}}
}

// Run ejecuta fn con repos que comparten el bloqueo ya tomado. Si fn falla no queda nada escrito.
func (s *Store) Run(ctx context.Context, fn func(r inventory.Repos) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	snapshot := s.data.clone()
	if err := fn(s.repos(true)); err != nil {
		s.data = snapshot
		return err
	}
	return nil
}

// Products repositorio fuera de transacción.
func (s *Store) Products() *ProductRepo { return &ProductRepo{s: s} }

// Batches repositorio fuera de transacción.
func (s *Store) Batches() *BatchRepo { return &BatchRepo{s: s} }

// Transactions repositorio fuera de transacción.
func (s *Store) Transactions() *TransactionRepo { return &TransactionRepo{s: s} }

// PurchaseOrders repositorio fuera de transacción.
func (s *Store) PurchaseOrders() *PurchaseOrderRepo { return &PurchaseOrderRepo{s: s} }

// Warehouses repositorio de bodegas.
func (s *Store) Warehouses() *WarehouseRepo { return &WarehouseRepo{s: s} }

// Suppliers repositorio de proveedores.
func (s *Store) Suppliers() *SupplierRepo { return &SupplierRepo{s: s} }

func (s *Store) repos(inTx bool) inventory.Repos {
	return inventory.Repos{
		Products:       &ProductRepo{s: s, inTx: inTx},
		Batches:        &BatchRepo{s: s, inTx: inTx},
		Transactions:   &TransactionRepo{s: s, inTx: inTx},
		PurchaseOrders: &PurchaseOrderRepo{s: s, inTx: inTx},
	}
}

// view ejecuta fn sobre el estado. Dentro de Run el mutex ya está tomado.
func (s *Store) view(inTx bool, fn func(d *state) error) error {
	if !inTx {
		s.mu.Lock()
		defer s.mu.Unlock()
	}
	return fn(s.data)
}

func (d *state) clone() *state {
	c := &state{
		products:     make(map[string]*entity.Product, len(d.products)),
		warehouses:   make(map[string]*entity.Warehouse, len(d.warehouses)),
		suppliers:    make(map[string]*entity.Supplier, len(d.suppliers)),
		batches:      make(map[string]*entity.Batch, len(d.batches)),
		orders:       make(map[string]*entity.PurchaseOrder, len(d.orders)),
		transactions: make([]*entity.Transaction, len(d.transactions)),
		seq:          d.seq,
	}
	for k, v := range d.products {
		c.products[k] = copyProduct(v)
	}
	for k, v := range d.warehouses {
		w := *v
		c.warehouses[k] = &w
	}
	for k, v := range d.suppliers {
		sp := *v
		c.suppliers[k] = &sp
	}
	for k, v := range d.batches {
		c.batches[k] = copyBatch(v)
	}
	for k, v := range d.orders {
		c.orders[k] = copyOrder(v)
	}
	// el libro es append-only: los punteros se comparten
	copy(c.transactions, d.transactions)
	return c
}

func copyProduct(p *entity.Product) *entity.Product {
	c := *p
	return &c
}

func copyBatch(b *entity.Batch) *entity.Batch {
	c := *b
	if b.ExpiryDate != nil {
		e := *b.ExpiryDate
		c.ExpiryDate = &e
	}
	return &c
}

func copyOrder(o *entity.PurchaseOrder) *entity.PurchaseOrder {
	c := *o
	c.Items = make([]entity.PurchaseOrderItem, len(o.Items))
	for i, it := range o.Items {
		c.Items[i] = it
		if it.QuantityReceived != nil {
			q := *it.QuantityReceived
			c.Items[i].QuantityReceived = &q
		}
	}
	return &c
}

func copyTransaction(t *entity.Transaction) *entity.Transaction {
	c := *t
	return &c
}

func page[T any](list []T, limit, offset int) []T {
	if offset >= len(list) {
		return nil
	}
	list = list[offset:]
	if limit > 0 && limit < len(list) {
		list = list[:limit]
	}
	return list
}

// stockOf suma las cantidades de los lotes activos del producto.
func (d *state) stockOf(productID string) decimal.Decimal {
	total := decimal.Zero
	for _, b := range d.batches {
		if b.ProductID == productID && b.Active {
			total = total.Add(b.Quantity)
		}
	}
	return total
}
