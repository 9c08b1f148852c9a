package usecase_test

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Inventario-farmacia/internal/application/dto"
	"github.com/jhoicas/Inventario-farmacia/internal/application/usecase"
	"github.com/jhoicas/Inventario-farmacia/internal/domain"
	"github.com/jhoicas/Inventario-farmacia/internal/domain/repository"
	"github.com/jhoicas/Inventario-farmacia/internal/infrastructure/memory"
)

const companyID = "c1"

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func TestProductUseCase_Create(t *testing.T) {
	ctx := context.Background()
	uc := usecase.NewProductUseCase(memory.NewStore().Products())

	out, err := uc.Create(ctx, companyID, dto.CreateProductRequest{
		SKU: "  NAPRO-250 ", Name: " Naproxeno 250mg ", Price: d("3500"), ReorderPoint: d("12"),
	})
	require.NoError(t, err)
	assert.Equal(t, "NAPRO-250", out.SKU)
	assert.Equal(t, "Naproxeno 250mg", out.Name)
	assert.Equal(t, "unidad", out.UnitMeasure)
	assert.True(t, out.Active)

	_, err = uc.Create(ctx, companyID, dto.CreateProductRequest{SKU: "NAPRO-250", Name: "Duplicado"})
	assert.ErrorIs(t, err, domain.ErrDuplicate)

	_, err = uc.Create(ctx, "otra-empresa", dto.CreateProductRequest{SKU: "NAPRO-250", Name: "Mismo SKU, otra empresa"})
	assert.NoError(t, err, "el SKU es único por empresa")

	for name, in := range map[string]dto.CreateProductRequest{
		"sin sku":           {Name: "X"},
		"sin nombre":        {SKU: "X-1", Name: "   "},
		"precio negativo":   {SKU: "X-2", Name: "X", Price: d("-1")},
		"reorden negativo":  {SKU: "X-3", Name: "X", ReorderPoint: d("-5")},
		"cantidad sugerida": {SKU: "X-4", Name: "X", ReorderQuantity: d("-1")},
	} {
		_, err := uc.Create(ctx, companyID, in)
		assert.ErrorIs(t, err, domain.ErrInvalidInput, name)
	}
}

func TestProductUseCase_UpdateYDeactivate(t *testing.T) {
	ctx := context.Background()
	uc := usecase.NewProductUseCase(memory.NewStore().Products())
	created, err := uc.Create(ctx, companyID, dto.CreateProductRequest{SKU: "SAL-1", Name: "Salbutamol", Cost: d("900")})
	require.NoError(t, err)

	name := "Salbutamol inhalador"
	point := d("4")
	updated, err := uc.Update(ctx, companyID, created.ID, dto.UpdateProductRequest{Name: &name, ReorderPoint: &point})
	require.NoError(t, err)
	assert.Equal(t, name, updated.Name)
	assert.True(t, updated.ReorderPoint.Equal(point))
	assert.True(t, updated.Cost.Equal(d("900")), "el costo no se edita")

	negative := d("-1")
	_, err = uc.Update(ctx, companyID, created.ID, dto.UpdateProductRequest{Price: &negative})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = uc.Update(ctx, companyID, "no-existe", dto.UpdateProductRequest{Name: &name})
	assert.ErrorIs(t, err, domain.ErrNotFound)

	require.NoError(t, uc.Deactivate(ctx, companyID, created.ID))
	require.NoError(t, uc.Deactivate(ctx, companyID, created.ID), "desactivar dos veces no falla")
	got, err := uc.GetByID(ctx, companyID, created.ID)
	require.NoError(t, err)
	assert.False(t, got.Active)

	assert.ErrorIs(t, uc.Deactivate(ctx, "otra-empresa", created.ID), domain.ErrNotFound)
}

func TestProductUseCase_List(t *testing.T) {
	ctx := context.Background()
	uc := usecase.NewProductUseCase(memory.NewStore().Products())
	for _, in := range []dto.CreateProductRequest{
		{SKU: "B-1", Name: "Betametasona"},
		{SKU: "A-1", Name: "Acetaminofén"},
		{SKU: "C-1", Name: "Cetirizina"},
	} {
		_, err := uc.Create(ctx, companyID, in)
		require.NoError(t, err)
	}

	all, err := uc.List(ctx, companyID, repository.ProductFilter{Limit: 2})
	require.NoError(t, err)
	require.Len(t, all.Items, 2)
	assert.Equal(t, "Acetaminofén", all.Items[0].Name, "ordenado por nombre")
	assert.Equal(t, 2, all.Page.Limit)

	found, err := uc.List(ctx, companyID, repository.ProductFilter{Search: "ceti"})
	require.NoError(t, err)
	require.Len(t, found.Items, 1)
	assert.Equal(t, "C-1", found.Items[0].SKU)
}

func TestSupplierUseCase(t *testing.T) {
	ctx := context.Background()
	uc := usecase.NewSupplierUseCase(memory.NewStore().Suppliers())

	created, err := uc.Create(ctx, companyID, dto.CreateSupplierRequest{Name: " Distribuidora Norte ", TaxID: "800100200"})
	require.NoError(t, err)
	assert.Equal(t, "Distribuidora Norte", created.Name)

	_, err = uc.Create(ctx, companyID, dto.CreateSupplierRequest{Name: "Otra", TaxID: "800100200"})
	assert.ErrorIs(t, err, domain.ErrDuplicate)
	_, err = uc.Create(ctx, companyID, dto.CreateSupplierRequest{Name: "Sin NIT"})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	got, err := uc.GetByID(ctx, companyID, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "800100200", got.TaxID)
	_, err = uc.GetByID(ctx, "otra-empresa", created.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	list, err := uc.List(ctx, companyID, 20, 0)
	require.NoError(t, err)
	assert.Len(t, list.Items, 1)
}

func TestWarehouseUseCase(t *testing.T) {
	ctx := context.Background()
	uc := usecase.NewWarehouseUseCase(memory.NewStore().Warehouses())

	created, err := uc.Create(ctx, companyID, dto.CreateWarehouseRequest{Name: "Sede centro", Address: "Cra 7 # 12-30"})
	require.NoError(t, err)
	_, err = uc.Create(ctx, companyID, dto.CreateWarehouseRequest{Name: ""})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	got, err := uc.GetByID(ctx, companyID, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "Sede centro", got.Name)
	_, err = uc.GetByID(ctx, companyID, "no-existe")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	list, err := uc.List(ctx, companyID, 20, 0)
	require.NoError(t, err)
	assert.Len(t, list.Items, 1)
}
