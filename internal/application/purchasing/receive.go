package purchasing

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jhoicas/Inventario-farmacia/internal/application/alert"
	"github.com/jhoicas/Inventario-farmacia/internal/application/inventory"
	"github.com/jhoicas/Inventario-farmacia/internal/domain"
	"github.com/jhoicas/Inventario-farmacia/internal/domain/entity"
	"github.com/shopspring/decimal"
)

// ReceiveLine cantidad recibida de una línea. Quantity nil = cantidad ordenada.
type ReceiveLine struct {
	ItemID     string
	Quantity   *decimal.Decimal
	LotNumber  string
	ExpiryDate *time.Time
}

// ReceiveInput recepción de una orden. Las líneas no mencionadas se reciben por la cantidad ordenada.
type ReceiveInput struct {
	CompanyID string
	UserID    string
	OrderID   string
	Lines     []ReceiveLine
}

// Receive recibe la mercancía de una orden enviada o confirmada.
//
// Cada línea es una unidad de trabajo independiente (orden y producto bloqueados): crea el lote,
// escribe el movimiento purchase_receipt y marca quantity_received. Si una línea falla, las anteriores
// quedan marcadas, la orden sigue en su estado y una nueva llamada continúa desde la primera línea
// sin marcar. Solo cuando todas las líneas están marcadas la orden pasa a received.
// Recibir una orden ya recibida devuelve ErrInvalidStateTransition.
func (uc *PurchaseOrderUseCase) Receive(ctx context.Context, in ReceiveInput) (*entity.PurchaseOrder, error) {
	order, err := uc.orderRepo.GetByID(ctx, in.CompanyID, in.OrderID)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, domain.ErrNotFound
	}
	if !receivable(order.Status) {
		return nil, domain.ErrInvalidStateTransition
	}
	lines, err := indexReceiveLines(order, in.Lines)
	if err != nil {
		return nil, err
	}

	for _, item := range order.PendingItems() {
		line := lines[item.ID]
		qty := item.QuantityOrdered
		if line.Quantity != nil {
			qty = *line.Quantity
		}
		evt, err := uc.receiveItem(ctx, in, item, line, qty)
		if err != nil {
			uc.log.Warn().Err(err).
				Str("order_id", order.ID).
				Str("item_id", item.ID).
				Msg("recepción parcial: la orden queda pendiente de completar")
			return nil, fmt.Errorf("recibir línea %s: %w", item.ID, err)
		}
		if evt != nil {
			uc.publish(*evt)
		}
	}

	var received *entity.PurchaseOrder
	err = inventory.RetryOnConflict(ctx, uc.maxRetries, func() error {
		return uc.txRunner.Run(ctx, func(r inventory.Repos) error {
			current, err := r.PurchaseOrders.GetForUpdate(ctx, in.CompanyID, in.OrderID)
			if err != nil {
				return err
			}
			if current == nil {
				return domain.ErrNotFound
			}
			if len(current.PendingItems()) > 0 {
				return domain.ErrConcurrencyConflict
			}
			if err := current.TransitionTo(entity.PurchaseOrderReceived, time.Now().UTC()); err != nil {
				return err
			}
			if err := r.PurchaseOrders.UpdateStatus(ctx, current); err != nil {
				return err
			}
			received = current
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	return received, nil
}

// receiveItem unidad de trabajo de una línea. Devuelve el evento de stock si hubo entrada.
func (uc *PurchaseOrderUseCase) receiveItem(
	ctx context.Context,
	in ReceiveInput,
	item entity.PurchaseOrderItem,
	line ReceiveLine,
	qty decimal.Decimal,
) (*alert.StockChanged, error) {
	var evt *alert.StockChanged
	err := inventory.RetryOnConflict(ctx, uc.maxRetries, func() error {
		evt = nil
		return uc.txRunner.Run(ctx, func(r inventory.Repos) error {
			current, err := r.PurchaseOrders.GetForUpdate(ctx, in.CompanyID, in.OrderID)
			if err != nil {
				return err
			}
			if current == nil {
				return domain.ErrNotFound
			}
			if !receivable(current.Status) {
				return domain.ErrInvalidStateTransition
			}
			if it := current.Item(item.ID); it == nil || it.IsReceived() {
				// otra recepción concurrente ya la procesó
				return nil
			}

			if qty.IsPositive() {
				st, err := inventory.LoadForUpdate(ctx, r, in.CompanyID, item.ProductID)
				if err != nil {
					return err
				}
				now := time.Now().UTC()
				batch := entity.NewBatch(uuid.New().String(), in.CompanyID, item.ProductID, current.WarehouseID,
					qty, item.UnitPrice, now, line.ExpiryDate)
				batch.LotNumber = line.LotNumber
				batch.PurchaseOrderID = current.ID
				if err := r.Batches.Create(ctx, batch); err != nil {
					return err
				}
				newCost := weightedCost(st, qty, item.UnitPrice)
				if err := r.Products.UpdateCost(ctx, item.ProductID, newCost); err != nil {
					return err
				}
				tx := &entity.Transaction{
					CompanyID:     in.CompanyID,
					ProductID:     item.ProductID,
					BatchID:       batch.ID,
					Type:          entity.TransactionPurchaseReceipt,
					Quantity:      qty,
					UnitPrice:     item.UnitPrice,
					TotalValue:    qty.Mul(item.UnitPrice),
					ReferenceType: entity.ReferencePurchaseOrder,
					ReferenceID:   current.ID,
					CreatedBy:     in.UserID,
					CreatedAt:     now,
				}
				if err := inventory.RecordMovement(ctx, r, st, tx); err != nil {
					return err
				}
				e := inventory.StockChangedEvent(st.Product, tx)
				evt = &e
			}
			return r.PurchaseOrders.MarkItemReceived(ctx, current.ID, item.ID, qty)
		})
	})
	return evt, err
}

func receivable(s entity.PurchaseOrderStatus) bool {
	return s == entity.PurchaseOrderSent || s == entity.PurchaseOrderConfirmed
}

// indexReceiveLines valida las líneas recibidas: deben pertenecer a la orden, sin duplicados,
// con cantidad entre 0 y la ordenada.
func indexReceiveLines(order *entity.PurchaseOrder, lines []ReceiveLine) (map[string]ReceiveLine, error) {
	out := make(map[string]ReceiveLine, len(lines))
	for _, l := range lines {
		item := order.Item(l.ItemID)
		if item == nil {
			return nil, domain.ErrInvalidInput
		}
		if _, dup := out[l.ItemID]; dup {
			return nil, domain.ErrInvalidInput
		}
		if l.Quantity != nil && (l.Quantity.IsNegative() || l.Quantity.GreaterThan(item.QuantityOrdered)) {
			return nil, domain.ErrInvalidInput
		}
		out[l.ItemID] = l
	}
	return out, nil
}
