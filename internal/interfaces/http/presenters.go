package http

import (
	"github.com/jhoicas/Inventario-farmacia/internal/application/dto"
	"github.com/jhoicas/Inventario-farmacia/internal/application/inventory"
	"github.com/jhoicas/Inventario-farmacia/internal/domain/entity"
)

func toTransactionResponse(t *entity.Transaction) dto.TransactionResponse {
	return dto.TransactionResponse{
		ID:             t.ID,
		ProductID:      t.ProductID,
		BatchID:        t.BatchID,
		Type:           string(t.Type),
		Quantity:       t.Quantity,
		QuantityBefore: t.QuantityBefore,
		QuantityAfter:  t.QuantityAfter,
		UnitPrice:      t.UnitPrice,
		TotalValue:     t.TotalValue,
		Reason:         string(t.Reason),
		ReferenceType:  t.ReferenceType,
		ReferenceID:    t.ReferenceID,
		Notes:          t.Notes,
		CreatedBy:      t.CreatedBy,
		CreatedAt:      t.CreatedAt,
	}
}

func toTransactionList(list []*entity.Transaction, limit, offset int) dto.TransactionListResponse {
	items := make([]dto.TransactionResponse, 0, len(list))
	for _, t := range list {
		items = append(items, toTransactionResponse(t))
	}
	return dto.TransactionListResponse{Items: items, Page: dto.PageResponse{Limit: limit, Offset: offset}}
}

func toMutationResponse(r *inventory.AdjustResult) dto.StockMutationResponse {
	return dto.StockMutationResponse{NewTotal: r.NewTotal, Transaction: toTransactionResponse(r.Transaction)}
}

func toStockLevelResponse(s *inventory.StockLevel) dto.StockLevelResponse {
	return dto.StockLevelResponse{
		ProductID:     s.ProductID,
		Total:         s.Total,
		Reserved:      s.Reserved,
		Available:     s.Available,
		ReorderPoint:  s.ReorderPoint,
		ActiveBatches: s.ActiveBatches,
	}
}

func toBatchResponses(list []*entity.Batch) []dto.BatchResponse {
	out := make([]dto.BatchResponse, 0, len(list))
	for _, b := range list {
		out = append(out, dto.BatchResponse{
			ID:               b.ID,
			ProductID:        b.ProductID,
			WarehouseID:      b.WarehouseID,
			PurchaseOrderID:  b.PurchaseOrderID,
			LotNumber:        b.LotNumber,
			Quantity:         b.Quantity,
			ReservedQuantity: b.ReservedQuantity,
			UnitCost:         b.UnitCost,
			ReceivedDate:     b.ReceivedDate,
			ExpiryDate:       b.ExpiryDate,
			Active:           b.Active,
		})
	}
	return out
}

func toPurchaseOrderResponse(o *entity.PurchaseOrder) dto.PurchaseOrderResponse {
	items := make([]dto.PurchaseOrderItemResponse, 0, len(o.Items))
	for _, it := range o.Items {
		items = append(items, dto.PurchaseOrderItemResponse{
			ID:               it.ID,
			ProductID:        it.ProductID,
			QuantityOrdered:  it.QuantityOrdered,
			QuantityReceived: it.QuantityReceived,
			UnitPrice:        it.UnitPrice,
			DiscountPercent:  it.DiscountPercent,
			LineTotal:        it.LineTotal,
		})
	}
	return dto.PurchaseOrderResponse{
		ID:           o.ID,
		OrderNumber:  o.OrderNumber,
		SupplierID:   o.SupplierID,
		WarehouseID:  o.WarehouseID,
		Status:       string(o.Status),
		OrderDate:    o.OrderDate,
		ExpectedDate: o.ExpectedDate,
		Subtotal:     o.Subtotal,
		Total:        o.Total,
		Notes:        o.Notes,
		SentAt:       o.SentAt,
		ConfirmedAt:  o.ConfirmedAt,
		CancelledAt:  o.CancelledAt,
		ReceivedDate: o.ReceivedDate,
		Items:        items,
	}
}
