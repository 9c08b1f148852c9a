package purchasing

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jhoicas/Inventario-farmacia/internal/application/alert"
	"github.com/jhoicas/Inventario-farmacia/internal/application/inventory"
	"github.com/jhoicas/Inventario-farmacia/internal/domain"
	"github.com/jhoicas/Inventario-farmacia/internal/domain/entity"
	dominv "github.com/jhoicas/Inventario-farmacia/internal/domain/inventory"
	"github.com/jhoicas/Inventario-farmacia/internal/domain/repository"
	"github.com/jhoicas/Inventario-farmacia/pkg/logger"
	"github.com/shopspring/decimal"
)

// PurchaseOrderUseCase ciclo de vida de las órdenes de compra:
// draft → sent → confirmed → received, o draft/sent → cancelled.
type PurchaseOrderUseCase struct {
	txRunner      inventory.TxRunner
	orderRepo     repository.PurchaseOrderRepository
	productRepo   repository.ProductRepository
	supplierRepo  repository.SupplierRepository
	warehouseRepo repository.WarehouseRepository
	events        inventory.StockEventPublisher
	pdf           PDFGenerator
	log           *logger.Logger
	maxRetries    int
}

// Deps dependencias del caso de uso de compras.
type Deps struct {
	TxRunner      inventory.TxRunner
	OrderRepo     repository.PurchaseOrderRepository
	ProductRepo   repository.ProductRepository
	SupplierRepo  repository.SupplierRepository
	WarehouseRepo repository.WarehouseRepository
	Events        inventory.StockEventPublisher // opcional
	PDF           PDFGenerator                  // opcional
	Log           *logger.Logger
	MaxRetries    int
}

// NewPurchaseOrderUseCase construye el caso de uso.
func NewPurchaseOrderUseCase(d Deps) *PurchaseOrderUseCase {
	return &PurchaseOrderUseCase{
		txRunner:      d.TxRunner,
		orderRepo:     d.OrderRepo,
		productRepo:   d.ProductRepo,
		supplierRepo:  d.SupplierRepo,
		warehouseRepo: d.WarehouseRepo,
		events:        d.Events,
		pdf:           d.PDF,
		log:           d.Log,
		maxRetries:    d.MaxRetries,
	}
}

// LineInput línea de una nueva orden.
type LineInput struct {
	ProductID       string
	Quantity        decimal.Decimal
	UnitPrice       decimal.Decimal
	DiscountPercent decimal.Decimal
}

// CreateInput datos para crear una orden en borrador.
type CreateInput struct {
	CompanyID    string
	UserID       string
	SupplierID   string
	WarehouseID  string
	ExpectedDate *time.Time
	Notes        string
	Lines        []LineInput
}

// Create valida proveedor, bodega y productos, calcula los totales y guarda la orden en estado draft.
func (uc *PurchaseOrderUseCase) Create(ctx context.Context, in CreateInput) (*entity.PurchaseOrder, error) {
	if in.CompanyID == "" || in.SupplierID == "" || in.WarehouseID == "" || len(in.Lines) == 0 {
		return nil, domain.ErrInvalidInput
	}
	supplier, err := uc.supplierRepo.GetByID(ctx, in.CompanyID, in.SupplierID)
	if err != nil {
		return nil, err
	}
	if supplier == nil {
		return nil, domain.ErrNotFound
	}
	warehouse, err := uc.warehouseRepo.GetByID(ctx, in.CompanyID, in.WarehouseID)
	if err != nil {
		return nil, err
	}
	if warehouse == nil {
		return nil, domain.ErrNotFound
	}

	now := time.Now().UTC()
	orderID := uuid.New().String()
	order := &entity.PurchaseOrder{
		ID:           orderID,
		CompanyID:    in.CompanyID,
		OrderNumber:  orderNumber(orderID, now),
		SupplierID:   in.SupplierID,
		WarehouseID:  in.WarehouseID,
		Status:       entity.PurchaseOrderDraft,
		OrderDate:    now,
		ExpectedDate: in.ExpectedDate,
		Notes:        in.Notes,
		CreatedBy:    in.UserID,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	hundred := decimal.NewFromInt(100)
	subtotal := decimal.Zero
	for _, l := range in.Lines {
		if l.ProductID == "" || !l.Quantity.IsPositive() || l.UnitPrice.IsNegative() ||
			l.DiscountPercent.IsNegative() || l.DiscountPercent.GreaterThan(hundred) {
			return nil, domain.ErrInvalidInput
		}
		product, err := uc.productRepo.GetByID(ctx, in.CompanyID, l.ProductID)
		if err != nil {
			return nil, err
		}
		if product == nil {
			return nil, domain.ErrNotFound
		}
		if !product.Active {
			return nil, domain.ErrInvalidInput
		}
		lineTotal := entity.ComputeLineTotal(l.UnitPrice, l.Quantity, l.DiscountPercent)
		subtotal = subtotal.Add(lineTotal)
		order.Items = append(order.Items, entity.PurchaseOrderItem{
			ID:              uuid.New().String(),
			OrderID:         orderID,
			ProductID:       l.ProductID,
			QuantityOrdered: l.Quantity,
			UnitPrice:       l.UnitPrice,
			DiscountPercent: l.DiscountPercent,
			LineTotal:       lineTotal,
		})
	}
	order.Subtotal = subtotal
	order.Total = subtotal

	// cabecera y líneas en la misma transacción
	err = uc.txRunner.Run(ctx, func(r inventory.Repos) error {
		return r.PurchaseOrders.Create(ctx, order)
	})
	if err != nil {
		return nil, err
	}
	return order, nil
}

// Send draft → sent. Sin efecto en stock.
func (uc *PurchaseOrderUseCase) Send(ctx context.Context, companyID, orderID string) (*entity.PurchaseOrder, error) {
	return uc.transition(ctx, companyID, orderID, entity.PurchaseOrderSent)
}

// Confirm sent → confirmed: el proveedor aceptó la orden. Sin efecto en stock.
func (uc *PurchaseOrderUseCase) Confirm(ctx context.Context, companyID, orderID string) (*entity.PurchaseOrder, error) {
	return uc.transition(ctx, companyID, orderID, entity.PurchaseOrderConfirmed)
}

// Cancel solo desde draft o sent, y nunca con líneas ya recibidas.
func (uc *PurchaseOrderUseCase) Cancel(ctx context.Context, companyID, orderID string) (*entity.PurchaseOrder, error) {
	return uc.transition(ctx, companyID, orderID, entity.PurchaseOrderCancelled)
}

func (uc *PurchaseOrderUseCase) transition(ctx context.Context, companyID, orderID string, next entity.PurchaseOrderStatus) (*entity.PurchaseOrder, error) {
	var order *entity.PurchaseOrder
	err := inventory.RetryOnConflict(ctx, uc.maxRetries, func() error {
		return uc.txRunner.Run(ctx, func(r inventory.Repos) error {
			current, err := r.PurchaseOrders.GetForUpdate(ctx, companyID, orderID)
			if err != nil {
				return err
			}
			if current == nil {
				return domain.ErrNotFound
			}
			if err := current.TransitionTo(next, time.Now().UTC()); err != nil {
				return err
			}
			if err := r.PurchaseOrders.UpdateStatus(ctx, current); err != nil {
				return err
			}
			order = current
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	return order, nil
}

// Get obtiene una orden con sus líneas.
func (uc *PurchaseOrderUseCase) Get(ctx context.Context, companyID, orderID string) (*entity.PurchaseOrder, error) {
	order, err := uc.orderRepo.GetByID(ctx, companyID, orderID)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, domain.ErrNotFound
	}
	return order, nil
}

// List lista órdenes de la empresa, más recientes primero.
func (uc *PurchaseOrderUseCase) List(ctx context.Context, companyID string, filter repository.PurchaseOrderFilter) ([]*entity.PurchaseOrder, error) {
	return uc.orderRepo.List(ctx, companyID, filter)
}

// RenderPDF genera el PDF de la orden para enviarlo al proveedor.
func (uc *PurchaseOrderUseCase) RenderPDF(ctx context.Context, companyID, orderID string) ([]byte, error) {
	if uc.pdf == nil {
		return nil, fmt.Errorf("generador de PDF no configurado")
	}
	order, err := uc.Get(ctx, companyID, orderID)
	if err != nil {
		return nil, err
	}
	supplier, err := uc.supplierRepo.GetByID(ctx, companyID, order.SupplierID)
	if err != nil {
		return nil, err
	}
	warehouse, err := uc.warehouseRepo.GetByID(ctx, companyID, order.WarehouseID)
	if err != nil {
		return nil, err
	}
	products := make(map[string]*entity.Product, len(order.Items))
	for _, it := range order.Items {
		p, err := uc.productRepo.GetByID(ctx, companyID, it.ProductID)
		if err != nil {
			return nil, err
		}
		if p != nil {
			products[p.ID] = p
		}
	}
	return uc.pdf.GeneratePurchaseOrderPDF(ctx, PurchaseOrderDocument{
		Order:     order,
		Supplier:  supplier,
		Warehouse: warehouse,
		Products:  products,
	})
}

// orderNumber formato OC-AAAAMMDD-XXXXXX.
func orderNumber(id string, now time.Time) string {
	short := strings.ToUpper(strings.ReplaceAll(id, "-", ""))[:6]
	return "OC-" + now.Format("20060102") + "-" + short
}

// publish entrega el evento al emisor de alertas si está configurado.
func (uc *PurchaseOrderUseCase) publish(evt alert.StockChanged) {
	if uc.events != nil {
		uc.events.Publish(evt)
	}
}

// weightedCost nuevo costo de referencia del producto al recibir qty a unitPrice.
func weightedCost(st *inventory.ProductStock, qty, unitPrice decimal.Decimal) decimal.Decimal {
	return dominv.CostCalculator(st.OnHand, st.Product.Cost, qty, unitPrice)
}
