package http_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Inventario-farmacia/internal/application/dto"
	"github.com/jhoicas/Inventario-farmacia/internal/application/inventory"
	"github.com/jhoicas/Inventario-farmacia/internal/application/purchasing"
	"github.com/jhoicas/Inventario-farmacia/internal/application/usecase"
	"github.com/jhoicas/Inventario-farmacia/internal/infrastructure/memory"
	infrapdf "github.com/jhoicas/Inventario-farmacia/internal/infrastructure/pdf"
	apphttp "github.com/jhoicas/Inventario-farmacia/internal/interfaces/http"
	pkgjwt "github.com/jhoicas/Inventario-farmacia/pkg/jwt"
	"github.com/jhoicas/Inventario-farmacia/pkg/logger"
)

// newAPI arma la API completa sobre el almacén en memoria, sin emisor de alertas.
func newAPI() *fiber.App {
	store := memory.NewStore()
	app := fiber.New(fiber.Config{ErrorHandler: apphttp.ErrorHandler(logger.Nop())})
	apphttp.Router(app, apphttp.RouterDeps{
		ProductUC:    usecase.NewProductUseCase(store.Products()),
		WarehouseUC:  usecase.NewWarehouseUseCase(store.Warehouses()),
		SupplierUC:   usecase.NewSupplierUseCase(store.Suppliers()),
		AdjustmentUC: inventory.NewAdjustmentUseCase(store, store.Warehouses(), store.Transactions(), nil, 3),
		StockUC:      inventory.NewStockUseCase(store, store.Products(), store.Batches(), store.Transactions(), nil, 3),
		PurchaseOrderUC: purchasing.NewPurchaseOrderUseCase(purchasing.Deps{
			TxRunner:      store,
			OrderRepo:     store.PurchaseOrders(),
			ProductRepo:   store.Products(),
			SupplierRepo:  store.Suppliers(),
			WarehouseRepo: store.Warehouses(),
			PDF:           infrapdf.NewMarotoPDFGenerator(),
			Log:           logger.Nop(),
			MaxRetries:    3,
		}),
		JWTSecret: testJWTSecret,
	})
	return app
}

type apiClient struct {
	t   *testing.T
	app *fiber.App
}

// call envía body como JSON con el rol indicado y decodifica la respuesta en out (si no es nil).
func (c apiClient) call(role, method, path string, body, out any) int {
	c.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(c.t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", bearer(c.t, role))
	resp, err := c.app.Test(req, -1)
	require.NoError(c.t, err)
	defer resp.Body.Close()
	if out != nil && resp.StatusCode < 300 {
		require.NoError(c.t, json.NewDecoder(resp.Body).Decode(out))
	}
	if e, ok := out.(*dto.ErrorResponse); ok && resp.StatusCode >= 300 {
		require.NoError(c.t, json.NewDecoder(resp.Body).Decode(e))
	}
	return resp.StatusCode
}

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func TestRouter_CompraAjusteYVenta(t *testing.T) {
	api := apiClient{t: t, app: newAPI()}
	admin, bodeguero, vendedor := pkgjwt.RoleAdmin, pkgjwt.RoleBodeguero, pkgjwt.RoleVendedor

	var wh dto.WarehouseResponse
	require.Equal(t, http.StatusCreated, api.call(admin, http.MethodPost, "/api/warehouses",
		dto.CreateWarehouseRequest{Name: "Bodega principal"}, &wh))

	var sup dto.SupplierResponse
	require.Equal(t, http.StatusCreated, api.call(bodeguero, http.MethodPost, "/api/suppliers",
		dto.CreateSupplierRequest{Name: "Droguería Central", TaxID: "900123456"}, &sup))

	var prod dto.ProductResponse
	require.Equal(t, http.StatusCreated, api.call(bodeguero, http.MethodPost, "/api/products",
		dto.CreateProductRequest{SKU: "AMOX-500", Name: "Amoxicilina 500mg", Price: dec("1200"), ReorderPoint: dec("5")}, &prod))

	var order dto.PurchaseOrderResponse
	require.Equal(t, http.StatusCreated, api.call(bodeguero, http.MethodPost, "/api/purchase-orders",
		dto.CreatePurchaseOrderRequest{
			SupplierID:  sup.ID,
			WarehouseID: wh.ID,
			Items:       []dto.PurchaseOrderLineRequest{{ProductID: prod.ID, Quantity: dec("20"), UnitPrice: dec("100")}},
		}, &order))
	assert.Equal(t, "draft", order.Status)
	assert.True(t, order.Total.Equal(dec("2000")))

	var errResp dto.ErrorResponse
	assert.Equal(t, http.StatusConflict, api.call(bodeguero, http.MethodPost, "/api/purchase-orders/"+order.ID+"/receive", nil, &errResp))
	assert.Equal(t, "INVALID_STATE_TRANSITION", errResp.Code, "draft no se puede recibir")

	require.Equal(t, http.StatusOK, api.call(bodeguero, http.MethodPost, "/api/purchase-orders/"+order.ID+"/send", nil, &order))
	require.Equal(t, http.StatusOK, api.call(bodeguero, http.MethodPost, "/api/purchase-orders/"+order.ID+"/receive", nil, &order))
	assert.Equal(t, "received", order.Status)
	require.Len(t, order.Items, 1)
	require.NotNil(t, order.Items[0].QuantityReceived)
	assert.True(t, order.Items[0].QuantityReceived.Equal(dec("20")))

	errResp = dto.ErrorResponse{}
	assert.Equal(t, http.StatusConflict, api.call(bodeguero, http.MethodPost, "/api/purchase-orders/"+order.ID+"/receive", nil, &errResp))
	assert.Equal(t, "INVALID_STATE_TRANSITION", errResp.Code)

	var level dto.StockLevelResponse
	require.Equal(t, http.StatusOK, api.call(vendedor, http.MethodGet, "/api/inventory/products/"+prod.ID+"/stock", nil, &level))
	assert.True(t, level.Total.Equal(dec("20")))
	assert.Equal(t, 1, level.ActiveBatches)

	adjust := dto.AdjustStockRequest{ProductID: prod.ID, Type: "remove", Quantity: dec("18"), Reason: "data_entry_error"}
	assert.Equal(t, http.StatusForbidden, api.call(vendedor, http.MethodPost, "/api/inventory/adjustments", adjust, nil))

	var mutation dto.StockMutationResponse
	require.Equal(t, http.StatusCreated, api.call(bodeguero, http.MethodPost, "/api/inventory/adjustments", adjust, &mutation))
	assert.True(t, mutation.NewTotal.Equal(dec("2")))
	assert.Equal(t, "adjustment_remove", mutation.Transaction.Type)
	assert.True(t, mutation.Transaction.QuantityBefore.Equal(dec("20")))

	errResp = dto.ErrorResponse{}
	assert.Equal(t, http.StatusConflict, api.call(vendedor, http.MethodPost, "/api/inventory/sales",
		dto.SaleRequest{ProductID: prod.ID, Quantity: dec("5"), Reference: "FV-1"}, &errResp))
	assert.Equal(t, "INSUFFICIENT_STOCK", errResp.Code)

	require.Equal(t, http.StatusCreated, api.call(vendedor, http.MethodPost, "/api/inventory/sales",
		dto.SaleRequest{ProductID: prod.ID, Quantity: dec("2"), Reference: "FV-2"}, &mutation))
	assert.True(t, mutation.NewTotal.IsZero())

	var ledger dto.TransactionListResponse
	require.Equal(t, http.StatusOK, api.call(bodeguero, http.MethodGet, "/api/inventory/products/"+prod.ID+"/transactions", nil, &ledger))
	require.Len(t, ledger.Items, 3)
	assert.Equal(t, "sale", ledger.Items[0].Type)
	assert.Equal(t, "adjustment_remove", ledger.Items[1].Type)
	assert.Equal(t, "purchase_receipt", ledger.Items[2].Type)
	for i := 0; i < len(ledger.Items)-1; i++ {
		assert.True(t, ledger.Items[i].QuantityBefore.Equal(ledger.Items[i+1].QuantityAfter), "libro encadenado")
	}
}

func TestRouter_ErroresDeDominio(t *testing.T) {
	api := apiClient{t: t, app: newAPI()}
	bodeguero := pkgjwt.RoleBodeguero

	var errResp dto.ErrorResponse
	assert.Equal(t, http.StatusNotFound, api.call(bodeguero, http.MethodGet, "/api/products/no-existe", nil, &errResp))
	assert.Equal(t, "NOT_FOUND", errResp.Code)

	errResp = dto.ErrorResponse{}
	assert.Equal(t, http.StatusBadRequest, api.call(bodeguero, http.MethodPost, "/api/products",
		dto.CreateProductRequest{SKU: "  ", Name: "Sin SKU"}, &errResp))
	assert.Equal(t, "VALIDATION", errResp.Code)

	require.Equal(t, http.StatusCreated, api.call(bodeguero, http.MethodPost, "/api/products",
		dto.CreateProductRequest{SKU: "ACET-1", Name: "Acetaminofén"}, nil))
	errResp = dto.ErrorResponse{}
	assert.Equal(t, http.StatusConflict, api.call(bodeguero, http.MethodPost, "/api/products",
		dto.CreateProductRequest{SKU: "ACET-1", Name: "Otro"}, &errResp))
	assert.Equal(t, "DUPLICATE", errResp.Code)

	errResp = dto.ErrorResponse{}
	assert.Equal(t, http.StatusBadRequest, api.call(bodeguero, http.MethodPost, "/api/inventory/adjustments",
		dto.AdjustStockRequest{ProductID: "x", Type: "add", Quantity: dec("1"), Reason: "porque sí"}, &errResp))
	assert.Equal(t, "VALIDATION", errResp.Code, "motivo fuera de la enumeración")

	errResp = dto.ErrorResponse{}
	assert.Equal(t, http.StatusBadRequest, api.call(bodeguero, http.MethodGet, "/api/purchase-orders?status=shipped", nil, &errResp))
	assert.Equal(t, "VALIDATION", errResp.Code)

	assert.Equal(t, http.StatusForbidden, api.call(pkgjwt.RoleVendedor, http.MethodGet, "/api/purchase-orders", nil, nil))
}
