package memory_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jhoicas/Inventario-farmacia/internal/application/inventory"
	"github.com/jhoicas/Inventario-farmacia/internal/domain"
	"github.com/jhoicas/Inventario-farmacia/internal/domain/entity"
	"github.com/jhoicas/Inventario-farmacia/internal/domain/repository"
	"github.com/jhoicas/Inventario-farmacia/internal/infrastructure/memory"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const company = "c1"

func dec(v int64) decimal.Decimal { return decimal.NewFromInt(v) }

func ledgerEntry(product string, before, qty int64) *entity.Transaction {
	return &entity.Transaction{
		ID:             product + "-" + decimal.NewFromInt(before).String(),
		CompanyID:      company,
		ProductID:      product,
		Type:           entity.TransactionAdjustmentAdd,
		Quantity:       dec(qty),
		QuantityBefore: dec(before),
		QuantityAfter:  dec(before + qty),
		CreatedAt:      time.Now(),
	}
}

func TestTransactionAppend_ExigeEncadenamiento(t *testing.T) {
	ctx := context.Background()
	repo := memory.NewStore().Transactions()

	require.NoError(t, repo.Append(ctx, ledgerEntry("p1", 0, 10)))
	require.NoError(t, repo.Append(ctx, ledgerEntry("p1", 10, -4)))

	err := repo.Append(ctx, ledgerEntry("p1", 10, 1))
	assert.ErrorIs(t, err, domain.ErrConcurrencyConflict)

	// otro producto arranca en cero
	require.NoError(t, repo.Append(ctx, ledgerEntry("p2", 0, 3)))

	last, err := repo.Last(ctx, company, "p1")
	require.NoError(t, err)
	require.NotNil(t, last)
	assert.True(t, last.QuantityAfter.Equal(dec(6)))

	list, err := repo.List(ctx, company, repository.TransactionFilter{ProductID: "p1", Limit: 10})
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Greater(t, list[0].Seq, list[1].Seq, "más reciente primero")
}

func TestRun_ErrorDescartaEscrituras(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	boom := errors.New("boom")

	err := store.Run(ctx, func(r inventory.Repos) error {
		b := entity.NewBatch("b1", company, "p1", "", dec(5), dec(1), time.Now(), nil)
		require.NoError(t, r.Batches.Create(ctx, b))
		require.NoError(t, r.Transactions.Append(ctx, ledgerEntry("p1", 0, 5)))
		return boom
	})
	assert.ErrorIs(t, err, boom)

	batches, err := store.Batches().ListByProduct(ctx, company, "p1")
	require.NoError(t, err)
	assert.Empty(t, batches)
	last, err := store.Transactions().Last(ctx, company, "p1")
	require.NoError(t, err)
	assert.Nil(t, last)
}

func TestBatches_ListActiveEnOrdenFEFO(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	repo := store.Batches()
	now := time.Now()
	soon := now.AddDate(0, 1, 0)
	later := now.AddDate(1, 0, 0)

	require.NoError(t, repo.Create(ctx, entity.NewBatch("sin-vencimiento", company, "p1", "", dec(1), dec(1), now, nil)))
	require.NoError(t, repo.Create(ctx, entity.NewBatch("tarde", company, "p1", "", dec(1), dec(1), now, &later)))
	require.NoError(t, repo.Create(ctx, entity.NewBatch("pronto", company, "p1", "", dec(1), dec(1), now, &soon)))
	agotado := entity.NewBatch("agotado", company, "p1", "", dec(0), dec(1), now, &soon)
	agotado.Active = false
	require.NoError(t, repo.Create(ctx, agotado))

	active, err := repo.ListActive(ctx, company, "p1")
	require.NoError(t, err)
	ids := make([]string, 0, len(active))
	for _, b := range active {
		ids = append(ids, b.ID)
	}
	assert.Equal(t, []string{"pronto", "tarde", "sin-vencimiento"}, ids)

	all, err := repo.ListByProduct(ctx, company, "p1")
	require.NoError(t, err)
	assert.Len(t, all, 4)
}

func TestBatches_AisladosPorEmpresa(t *testing.T) {
	ctx := context.Background()
	repo := memory.NewStore().Batches()
	require.NoError(t, repo.Create(ctx, entity.NewBatch("b1", "otra", "p1", "", dec(1), dec(1), time.Now(), nil)))

	got, err := repo.GetByID(ctx, company, "b1")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestProducts_FiltroBajoPuntoDeReorden(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	products := store.Products()
	now := time.Now()
	for _, p := range []*entity.Product{
		{ID: "p1", CompanyID: company, SKU: "A", Name: "Acetaminofén", ReorderPoint: dec(10), Active: true},
		{ID: "p2", CompanyID: company, SKU: "B", Name: "Ibuprofeno", ReorderPoint: dec(2), Active: true},
	} {
		require.NoError(t, products.Create(ctx, p))
	}
	require.NoError(t, store.Batches().Create(ctx, entity.NewBatch("b1", company, "p1", "", dec(4), dec(1), now, nil)))
	require.NoError(t, store.Batches().Create(ctx, entity.NewBatch("b2", company, "p2", "", dec(4), dec(1), now, nil)))

	list, err := products.List(ctx, company, repository.ProductFilter{BelowReorder: true, Limit: 10})
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "p1", list[0].ID)

	list, err = products.List(ctx, company, repository.ProductFilter{Search: "ibu", Limit: 10})
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "p2", list[0].ID)

	err = products.Create(ctx, &entity.Product{ID: "p3", CompanyID: company, SKU: "A"})
	assert.ErrorIs(t, err, domain.ErrDuplicate)
}

func TestPurchaseOrders_MarcarLineaUnaSolaVez(t *testing.T) {
	ctx := context.Background()
	repo := memory.NewStore().PurchaseOrders()
	order := &entity.PurchaseOrder{
		ID: "o1", CompanyID: company, OrderNumber: "OC-1", Status: entity.PurchaseOrderSent,
		Items: []entity.PurchaseOrderItem{{ID: "i1", ProductID: "p1", QuantityOrdered: dec(5)}},
	}
	require.NoError(t, repo.Create(ctx, order))

	require.NoError(t, repo.MarkItemReceived(ctx, "o1", "i1", dec(5)))
	assert.ErrorIs(t, repo.MarkItemReceived(ctx, "o1", "i1", dec(5)), domain.ErrConcurrencyConflict)

	got, err := repo.GetByID(ctx, company, "o1")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Empty(t, got.PendingItems())
}
