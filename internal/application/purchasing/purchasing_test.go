package purchasing_test

import (
	"bytes"
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Inventario-farmacia/internal/application/alert"
	"github.com/jhoicas/Inventario-farmacia/internal/application/inventory"
	"github.com/jhoicas/Inventario-farmacia/internal/application/purchasing"
	"github.com/jhoicas/Inventario-farmacia/internal/domain"
	"github.com/jhoicas/Inventario-farmacia/internal/domain/entity"
	"github.com/jhoicas/Inventario-farmacia/internal/domain/repository"
	"github.com/jhoicas/Inventario-farmacia/internal/infrastructure/memory"
	infrapdf "github.com/jhoicas/Inventario-farmacia/internal/infrastructure/pdf"
	"github.com/jhoicas/Inventario-farmacia/pkg/logger"
)

const (
	companyID   = "c1"
	userID      = "u1"
	supplierID  = "s1"
	warehouseID = "w1"
)

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

type eventLog struct {
	mu     sync.Mutex
	events []alert.StockChanged
}

func (l *eventLog) Publish(evt alert.StockChanged) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.events = append(l.events, evt)
}

func (l *eventLog) signals() []alert.Signal {
	l.mu.Lock()
	defer l.mu.Unlock()
	var out []alert.Signal
	for _, evt := range l.events {
		if s := alert.Evaluate(evt); s != nil {
			out = append(out, *s)
		}
	}
	return out
}

// failingRunner envuelve el almacén y hace fallar la creación de lotes de un producto
// las primeras `remaining` veces.
type failingRunner struct {
	*memory.Store
	productID string
	remaining int
}

func (f *failingRunner) Run(ctx context.Context, fn func(r inventory.Repos) error) error {
	return f.Store.Run(ctx, func(r inventory.Repos) error {
		r.Batches = &failingBatches{BatchRepository: r.Batches, runner: f}
		return fn(r)
	})
}

type failingBatches struct {
	repository.BatchRepository
	runner *failingRunner
}

var errDisk = errors.New("disco lleno")

func (b *failingBatches) Create(ctx context.Context, batch *entity.Batch) error {
	if batch.ProductID == b.runner.productID && b.runner.remaining > 0 {
		b.runner.remaining--
		return errDisk
	}
	return b.BatchRepository.Create(ctx, batch)
}

type fixture struct {
	store  *memory.Store
	events *eventLog
	uc     *purchasing.PurchaseOrderUseCase
	adjust *inventory.AdjustmentUseCase
	stock  *inventory.StockUseCase
}

func newFixture(t *testing.T, runner inventory.TxRunner, store *memory.Store) *fixture {
	t.Helper()
	ctx := context.Background()
	require.NoError(t, store.Suppliers().Create(ctx, &entity.Supplier{ID: supplierID, CompanyID: companyID, Name: "Laboratorios Andinos", TaxID: "900111222"}))
	require.NoError(t, store.Warehouses().Create(ctx, &entity.Warehouse{ID: warehouseID, CompanyID: companyID, Name: "Principal"}))
	for _, p := range []*entity.Product{
		{ID: "p1", CompanyID: companyID, SKU: "AMOX-500", Name: "Amoxicilina 500mg", ReorderPoint: d("5"), Active: true},
		{ID: "p2", CompanyID: companyID, SKU: "LORA-10", Name: "Loratadina 10mg", ReorderPoint: d("0"), Active: true},
		{ID: "p-off", CompanyID: companyID, SKU: "OLD-1", Name: "Descontinuado", Active: false},
	} {
		require.NoError(t, store.Products().Create(ctx, p))
	}
	events := &eventLog{}
	return &fixture{
		store:  store,
		events: events,
		uc: purchasing.NewPurchaseOrderUseCase(purchasing.Deps{
			TxRunner:      runner,
			OrderRepo:     store.PurchaseOrders(),
			ProductRepo:   store.Products(),
			SupplierRepo:  store.Suppliers(),
			WarehouseRepo: store.Warehouses(),
			Events:        events,
			PDF:           infrapdf.NewMarotoPDFGenerator(),
			Log:           logger.Nop(),
			MaxRetries:    3,
		}),
		adjust: inventory.NewAdjustmentUseCase(runner, store.Warehouses(), store.Transactions(), events, 3),
		stock:  inventory.NewStockUseCase(runner, store.Products(), store.Batches(), store.Transactions(), events, 3),
	}
}

func newMemoryFixture(t *testing.T) *fixture {
	store := memory.NewStore()
	return newFixture(t, store, store)
}

func (f *fixture) createOrder(t *testing.T, lines ...purchasing.LineInput) *entity.PurchaseOrder {
	t.Helper()
	order, err := f.uc.Create(context.Background(), purchasing.CreateInput{
		CompanyID: companyID, UserID: userID, SupplierID: supplierID, WarehouseID: warehouseID, Lines: lines,
	})
	require.NoError(t, err)
	return order
}

func (f *fixture) sentOrder(t *testing.T, lines ...purchasing.LineInput) *entity.PurchaseOrder {
	t.Helper()
	order := f.createOrder(t, lines...)
	order, err := f.uc.Send(context.Background(), companyID, order.ID)
	require.NoError(t, err)
	return order
}

func (f *fixture) total(t *testing.T, productID string) decimal.Decimal {
	t.Helper()
	level, err := f.stock.GetStockLevel(context.Background(), companyID, productID)
	require.NoError(t, err)
	return level.Total
}

func line(productID, qty, price string) purchasing.LineInput {
	return purchasing.LineInput{ProductID: productID, Quantity: d(qty), UnitPrice: d(price)}
}

func TestCreate_CalculaTotales(t *testing.T) {
	f := newMemoryFixture(t)
	order := f.createOrder(t,
		line("p1", "20", "100"),
		purchasing.LineInput{ProductID: "p2", Quantity: d("10"), UnitPrice: d("50"), DiscountPercent: d("10")},
	)

	assert.Equal(t, entity.PurchaseOrderDraft, order.Status)
	assert.Regexp(t, `^OC-\d{8}-[0-9A-F]{6}$`, order.OrderNumber)
	require.Len(t, order.Items, 2)
	assert.True(t, order.Items[1].LineTotal.Equal(d("450")))
	assert.True(t, order.Subtotal.Equal(d("2450")))
	assert.True(t, order.Total.Equal(order.Subtotal))

	stored, err := f.uc.Get(context.Background(), companyID, order.ID)
	require.NoError(t, err)
	assert.Len(t, stored.Items, 2)
	assert.True(t, f.total(t, "p1").IsZero(), "crear la orden no mueve stock")
}

func TestCreate_Validacion(t *testing.T) {
	f := newMemoryFixture(t)
	ctx := context.Background()
	base := purchasing.CreateInput{CompanyID: companyID, UserID: userID, SupplierID: supplierID, WarehouseID: warehouseID}

	cases := map[string]struct {
		in   func() purchasing.CreateInput
		want error
	}{
		"sin líneas": {func() purchasing.CreateInput { return base }, domain.ErrInvalidInput},
		"proveedor inexistente": {func() purchasing.CreateInput {
			in := base
			in.SupplierID = "s-x"
			in.Lines = []purchasing.LineInput{line("p1", "1", "1")}
			return in
		}, domain.ErrNotFound},
		"bodega inexistente": {func() purchasing.CreateInput {
			in := base
			in.WarehouseID = "w-x"
			in.Lines = []purchasing.LineInput{line("p1", "1", "1")}
			return in
		}, domain.ErrNotFound},
		"producto inactivo": {func() purchasing.CreateInput {
			in := base
			in.Lines = []purchasing.LineInput{line("p-off", "1", "1")}
			return in
		}, domain.ErrInvalidInput},
		"cantidad cero": {func() purchasing.CreateInput {
			in := base
			in.Lines = []purchasing.LineInput{line("p1", "0", "1")}
			return in
		}, domain.ErrInvalidInput},
		"descuento mayor a 100": {func() purchasing.CreateInput {
			in := base
			in.Lines = []purchasing.LineInput{{ProductID: "p1", Quantity: d("1"), UnitPrice: d("1"), DiscountPercent: d("101")}}
			return in
		}, domain.ErrInvalidInput},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := f.uc.Create(ctx, tc.in())
			assert.ErrorIs(t, err, tc.want)
		})
	}
	list, err := f.uc.List(ctx, companyID, repository.PurchaseOrderFilter{})
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestCicloDeVida(t *testing.T) {
	f := newMemoryFixture(t)
	ctx := context.Background()

	order := f.createOrder(t, line("p1", "1", "1"))
	_, err := f.uc.Confirm(ctx, companyID, order.ID)
	assert.ErrorIs(t, err, domain.ErrInvalidStateTransition, "draft no pasa directo a confirmed")

	order, err = f.uc.Send(ctx, companyID, order.ID)
	require.NoError(t, err)
	require.NotNil(t, order.SentAt)
	order, err = f.uc.Confirm(ctx, companyID, order.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.PurchaseOrderConfirmed, order.Status)
	_, err = f.uc.Cancel(ctx, companyID, order.ID)
	assert.ErrorIs(t, err, domain.ErrInvalidStateTransition)

	draft := f.createOrder(t, line("p2", "1", "1"))
	cancelled, err := f.uc.Cancel(ctx, companyID, draft.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.PurchaseOrderCancelled, cancelled.Status)
	_, err = f.uc.Send(ctx, companyID, draft.ID)
	assert.ErrorIs(t, err, domain.ErrInvalidStateTransition)
	_, err = f.uc.Receive(ctx, purchasing.ReceiveInput{CompanyID: companyID, UserID: userID, OrderID: draft.ID})
	assert.ErrorIs(t, err, domain.ErrInvalidStateTransition)

	_, err = f.uc.Send(ctx, companyID, "no-existe")
	assert.ErrorIs(t, err, domain.ErrNotFound)
	_, err = f.uc.Get(ctx, "otra-empresa", order.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	sent, err := f.uc.List(ctx, companyID, repository.PurchaseOrderFilter{Status: entity.PurchaseOrderCancelled})
	require.NoError(t, err)
	require.Len(t, sent, 1)
	assert.Equal(t, draft.ID, sent[0].ID)
}

func TestReceive_CreaLotesYMovimientos(t *testing.T) {
	f := newMemoryFixture(t)
	ctx := context.Background()
	expiry := time.Date(2027, 1, 31, 0, 0, 0, 0, time.UTC)

	order := f.sentOrder(t, line("p1", "20", "100"), line("p2", "10", "40"))
	partial := d("8")
	received, err := f.uc.Receive(ctx, purchasing.ReceiveInput{
		CompanyID: companyID, UserID: userID, OrderID: order.ID,
		Lines: []purchasing.ReceiveLine{
			{ItemID: order.Items[0].ID, LotNumber: "L-2026-01", ExpiryDate: &expiry},
			{ItemID: order.Items[1].ID, Quantity: &partial},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, entity.PurchaseOrderReceived, received.Status)
	require.NotNil(t, received.ReceivedDate)
	for _, it := range received.Items {
		assert.True(t, it.IsReceived())
	}

	assert.True(t, f.total(t, "p1").Equal(d("20")))
	assert.True(t, f.total(t, "p2").Equal(d("8")), "se recibe lo que llegó, no lo ordenado")

	batches, err := f.stock.ListBatches(ctx, companyID, "p1", false)
	require.NoError(t, err)
	require.Len(t, batches, 1)
	assert.Equal(t, "L-2026-01", batches[0].LotNumber)
	assert.Equal(t, order.ID, batches[0].PurchaseOrderID)
	assert.Equal(t, warehouseID, batches[0].WarehouseID)
	assert.True(t, batches[0].UnitCost.Equal(d("100")))
	require.NotNil(t, batches[0].ExpiryDate)
	assert.True(t, batches[0].ExpiryDate.Equal(expiry))

	ledger, err := f.stock.ListTransactions(ctx, companyID, "p1", 10, 0)
	require.NoError(t, err)
	require.Len(t, ledger, 1)
	assert.Equal(t, entity.TransactionPurchaseReceipt, ledger[0].Type)
	assert.Equal(t, entity.ReferencePurchaseOrder, ledger[0].ReferenceType)
	assert.Equal(t, order.ID, ledger[0].ReferenceID)
	assert.True(t, ledger[0].TotalValue.Equal(d("2000")))

	product, err := f.store.Products().GetByID(ctx, companyID, "p1")
	require.NoError(t, err)
	assert.True(t, product.Cost.Equal(d("100")), "costo de referencia actualizado con la recepción")

	_, err = f.uc.Receive(ctx, purchasing.ReceiveInput{CompanyID: companyID, UserID: userID, OrderID: order.ID})
	assert.ErrorIs(t, err, domain.ErrInvalidStateTransition, "recibir dos veces")
	assert.True(t, f.total(t, "p1").Equal(d("20")))
}

func TestReceive_LineaEnCeroNoCreaLote(t *testing.T) {
	f := newMemoryFixture(t)
	ctx := context.Background()
	order := f.sentOrder(t, line("p2", "5", "10"))
	zero := decimal.Zero

	received, err := f.uc.Receive(ctx, purchasing.ReceiveInput{
		CompanyID: companyID, UserID: userID, OrderID: order.ID,
		Lines: []purchasing.ReceiveLine{{ItemID: order.Items[0].ID, Quantity: &zero}},
	})
	require.NoError(t, err)
	assert.Equal(t, entity.PurchaseOrderReceived, received.Status)
	require.NotNil(t, received.Items[0].QuantityReceived)
	assert.True(t, received.Items[0].QuantityReceived.IsZero())

	batches, err := f.stock.ListBatches(ctx, companyID, "p2", true)
	require.NoError(t, err)
	assert.Empty(t, batches)
	ledger, err := f.stock.ListTransactions(ctx, companyID, "p2", 10, 0)
	require.NoError(t, err)
	assert.Empty(t, ledger)
}

func TestReceive_ValidaLineas(t *testing.T) {
	f := newMemoryFixture(t)
	ctx := context.Background()
	order := f.sentOrder(t, line("p1", "5", "10"))
	over := d("6")

	cases := map[string][]purchasing.ReceiveLine{
		"línea ajena":     {{ItemID: "otra"}},
		"sobre-recepción": {{ItemID: order.Items[0].ID, Quantity: &over}},
		"línea repetida":  {{ItemID: order.Items[0].ID}, {ItemID: order.Items[0].ID}},
	}
	for name, lines := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := f.uc.Receive(ctx, purchasing.ReceiveInput{CompanyID: companyID, UserID: userID, OrderID: order.ID, Lines: lines})
			assert.ErrorIs(t, err, domain.ErrInvalidInput)
		})
	}
	assert.True(t, f.total(t, "p1").IsZero())
}

func TestReceive_FalloParcialSeRetomaSinDuplicar(t *testing.T) {
	store := memory.NewStore()
	runner := &failingRunner{Store: store, productID: "p2", remaining: 1}
	f := newFixture(t, runner, store)
	ctx := context.Background()

	order := f.sentOrder(t, line("p1", "20", "100"), line("p2", "10", "40"))
	in := purchasing.ReceiveInput{CompanyID: companyID, UserID: userID, OrderID: order.ID}

	_, err := f.uc.Receive(ctx, in)
	require.ErrorIs(t, err, errDisk)

	pending, err := f.uc.Get(ctx, companyID, order.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.PurchaseOrderSent, pending.Status, "la orden no pasa a received con líneas pendientes")
	require.Len(t, pending.PendingItems(), 1)
	assert.Equal(t, "p2", pending.PendingItems()[0].ProductID)
	assert.True(t, f.total(t, "p1").Equal(d("20")), "la primera línea quedó confirmada")
	assert.True(t, f.total(t, "p2").IsZero(), "la línea fallida no dejó rastro")

	received, err := f.uc.Receive(ctx, in)
	require.NoError(t, err)
	assert.Equal(t, entity.PurchaseOrderReceived, received.Status)
	assert.True(t, f.total(t, "p1").Equal(d("20")), "la línea ya recibida no se repite")
	assert.True(t, f.total(t, "p2").Equal(d("10")))
}

func TestCancel_RecepcionParcialNoSeCancela(t *testing.T) {
	store := memory.NewStore()
	runner := &failingRunner{Store: store, productID: "p2", remaining: 1}
	f := newFixture(t, runner, store)
	ctx := context.Background()

	order := f.sentOrder(t, line("p1", "20", "100"), line("p2", "10", "40"))
	in := purchasing.ReceiveInput{CompanyID: companyID, UserID: userID, OrderID: order.ID}

	_, err := f.uc.Receive(ctx, in)
	require.ErrorIs(t, err, errDisk)

	_, err = f.uc.Cancel(ctx, companyID, order.ID)
	assert.ErrorIs(t, err, domain.ErrInvalidStateTransition)

	pending, err := f.uc.Get(ctx, companyID, order.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.PurchaseOrderSent, pending.Status)
	assert.Nil(t, pending.CancelledAt)
	assert.True(t, f.total(t, "p1").Equal(d("20")))

	received, err := f.uc.Receive(ctx, in)
	require.NoError(t, err)
	assert.Equal(t, entity.PurchaseOrderReceived, received.Status)
	assert.True(t, f.total(t, "p2").Equal(d("10")))
}

func TestEscenarioCompleto_RecepcionYAjuste(t *testing.T) {
	f := newMemoryFixture(t)
	ctx := context.Background()

	order := f.sentOrder(t, line("p1", "20", "100"))
	_, err := f.uc.Receive(ctx, purchasing.ReceiveInput{CompanyID: companyID, UserID: userID, OrderID: order.ID})
	require.NoError(t, err)
	assert.Empty(t, f.events.signals(), "20 está sobre el punto de reorden")

	res, err := f.adjust.AdjustStock(ctx, inventory.AdjustInput{
		CompanyID: companyID, UserID: userID, ProductID: "p1",
		Type: "remove", Quantity: d("18"), Reason: "data-entry-error",
	})
	require.NoError(t, err)
	assert.True(t, res.NewTotal.Equal(d("2")))
	assert.True(t, f.total(t, "p1").Equal(d("2")))

	sigs := f.events.signals()
	require.Len(t, sigs, 1)
	assert.Equal(t, alert.KindLow, sigs[0].Kind)
	assert.Equal(t, "p1", sigs[0].ProductID)
	assert.True(t, sigs[0].CurrentQuantity.Equal(d("2")))

	ledger, err := f.stock.ListTransactions(ctx, companyID, "p1", 10, 0)
	require.NoError(t, err)
	require.Len(t, ledger, 2)
	assert.True(t, ledger[0].QuantityBefore.Equal(ledger[1].QuantityAfter))
}

func TestRenderPDF(t *testing.T) {
	f := newMemoryFixture(t)
	order := f.createOrder(t, line("p1", "3", "1500.5"))

	out, err := f.uc.RenderPDF(context.Background(), companyID, order.ID)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(out, []byte("%PDF")))

	_, err = f.uc.RenderPDF(context.Background(), companyID, "no-existe")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
