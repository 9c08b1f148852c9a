package http

import (
	"context"
	"fmt"

	"github.com/gofiber/fiber/v2"
	"github.com/jhoicas/Inventario-farmacia/internal/application/dto"
	"github.com/jhoicas/Inventario-farmacia/internal/application/purchasing"
	"github.com/jhoicas/Inventario-farmacia/internal/domain/entity"
	"github.com/jhoicas/Inventario-farmacia/internal/domain/repository"
)

// PurchaseOrderHandler maneja el ciclo de vida de las órdenes de compra (protegido).
type PurchaseOrderHandler struct {
	uc *purchasing.PurchaseOrderUseCase
}

// NewPurchaseOrderHandler construye el handler.
func NewPurchaseOrderHandler(uc *purchasing.PurchaseOrderUseCase) *PurchaseOrderHandler {
	return &PurchaseOrderHandler{uc: uc}
}

// Create godoc
// @Summary      Crear orden de compra (draft)
// @Tags         purchase-orders
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreatePurchaseOrderRequest  true  "supplier_id, warehouse_id, items"
// @Success      201   {object}  dto.PurchaseOrderResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /api/purchase-orders [post]
func (h *PurchaseOrderHandler) Create(c *fiber.Ctx) error {
	companyID := GetCompanyID(c)
	userID := GetUserID(c)
	if companyID == "" || userID == "" {
		return unauthorized(c)
	}
	var in dto.CreatePurchaseOrderRequest
	if err := c.BodyParser(&in); err != nil {
		return invalidBody(c)
	}
	lines := make([]purchasing.LineInput, 0, len(in.Items))
	for _, it := range in.Items {
		lines = append(lines, purchasing.LineInput{
			ProductID:       it.ProductID,
			Quantity:        it.Quantity,
			UnitPrice:       it.UnitPrice,
			DiscountPercent: it.DiscountPercent,
		})
	}
	order, err := h.uc.Create(c.UserContext(), purchasing.CreateInput{
		CompanyID:    companyID,
		UserID:       userID,
		SupplierID:   in.SupplierID,
		WarehouseID:  in.WarehouseID,
		ExpectedDate: in.ExpectedDate,
		Notes:        in.Notes,
		Lines:        lines,
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(toPurchaseOrderResponse(order))
}

// GetByID godoc
// @Summary      Obtener orden de compra
// @Tags         purchase-orders
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID de la orden"
// @Success      200  {object}  dto.PurchaseOrderResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/purchase-orders/{id} [get]
func (h *PurchaseOrderHandler) GetByID(c *fiber.Ctx) error {
	order, err := h.uc.Get(c.UserContext(), GetCompanyID(c), c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(toPurchaseOrderResponse(order))
}

// List godoc
// @Summary      Listar órdenes de compra
// @Tags         purchase-orders
// @Security     Bearer
// @Produce      json
// @Param        status       query  string  false  "draft|sent|confirmed|received|cancelled"
// @Param        supplier_id  query  string  false  "Filtrar por proveedor"
// @Success      200  {object}  dto.PurchaseOrderListResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/purchase-orders [get]
func (h *PurchaseOrderHandler) List(c *fiber.Ctx) error {
	limit, offset := pagination(c)
	filter := repository.PurchaseOrderFilter{SupplierID: c.Query("supplier_id"), Limit: limit, Offset: offset}
	if raw := c.Query("status"); raw != "" {
		status, err := entity.ParsePurchaseOrderStatus(raw)
		if err != nil {
			return writeError(c, err)
		}
		filter.Status = status
	}
	list, err := h.uc.List(c.UserContext(), GetCompanyID(c), filter)
	if err != nil {
		return writeError(c, err)
	}
	items := make([]dto.PurchaseOrderResponse, 0, len(list))
	for _, o := range list {
		items = append(items, toPurchaseOrderResponse(o))
	}
	return c.JSON(dto.PurchaseOrderListResponse{Items: items, Page: dto.PageResponse{Limit: limit, Offset: offset}})
}

// Send godoc
// @Summary      Enviar orden al proveedor (draft → sent)
// @Tags         purchase-orders
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID de la orden"
// @Success      200  {object}  dto.PurchaseOrderResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/purchase-orders/{id}/send [post]
func (h *PurchaseOrderHandler) Send(c *fiber.Ctx) error {
	return h.transition(c, h.uc.Send)
}

// Confirm godoc
// @Summary      Confirmar orden (sent → confirmed)
// @Tags         purchase-orders
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID de la orden"
// @Success      200  {object}  dto.PurchaseOrderResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/purchase-orders/{id}/confirm [post]
func (h *PurchaseOrderHandler) Confirm(c *fiber.Ctx) error {
	return h.transition(c, h.uc.Confirm)
}

// Cancel godoc
// @Summary      Cancelar orden (draft|sent → cancelled)
// @Tags         purchase-orders
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID de la orden"
// @Success      200  {object}  dto.PurchaseOrderResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/purchase-orders/{id}/cancel [post]
func (h *PurchaseOrderHandler) Cancel(c *fiber.Ctx) error {
	return h.transition(c, h.uc.Cancel)
}

func (h *PurchaseOrderHandler) transition(
	c *fiber.Ctx,
	apply func(ctx context.Context, companyID, orderID string) (*entity.PurchaseOrder, error),
) error {
	order, err := apply(c.UserContext(), GetCompanyID(c), c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(toPurchaseOrderResponse(order))
}

// Receive godoc
// @Summary      Recibir mercancía
// @Description  Crea un lote por línea y escribe el movimiento purchase_receipt. Las líneas omitidas
//
//	se reciben por la cantidad ordenada. Si una línea falla, repetir la llamada continúa desde ahí.
//
// @Tags         purchase-orders
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string                           true   "ID de la orden"
// @Param        body  body  dto.ReceivePurchaseOrderRequest  false  "Cantidades, lote y vencimiento por línea"
// @Success      200   {object}  dto.PurchaseOrderResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/purchase-orders/{id}/receive [post]
func (h *PurchaseOrderHandler) Receive(c *fiber.Ctx) error {
	companyID := GetCompanyID(c)
	userID := GetUserID(c)
	if companyID == "" || userID == "" {
		return unauthorized(c)
	}
	var in dto.ReceivePurchaseOrderRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&in); err != nil {
			return invalidBody(c)
		}
	}
	lines := make([]purchasing.ReceiveLine, 0, len(in.Items))
	for _, it := range in.Items {
		lines = append(lines, purchasing.ReceiveLine{
			ItemID:     it.ItemID,
			Quantity:   it.Quantity,
			LotNumber:  it.LotNumber,
			ExpiryDate: it.ExpiryDate,
		})
	}
	order, err := h.uc.Receive(c.UserContext(), purchasing.ReceiveInput{
		CompanyID: companyID,
		UserID:    userID,
		OrderID:   c.Params("id"),
		Lines:     lines,
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(toPurchaseOrderResponse(order))
}

// PDF godoc
// @Summary      Documento PDF de la orden
// @Tags         purchase-orders
// @Security     Bearer
// @Produce      application/pdf
// @Param        id   path  string  true  "ID de la orden"
// @Success      200  {file}  binary
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/purchase-orders/{id}/pdf [get]
func (h *PurchaseOrderHandler) PDF(c *fiber.Ctx) error {
	id := c.Params("id")
	out, err := h.uc.RenderPDF(c.UserContext(), GetCompanyID(c), id)
	if err != nil {
		return writeError(c, err)
	}
	c.Set(fiber.HeaderContentType, "application/pdf")
	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf("inline; filename=orden-%s.pdf", id))
	return c.Send(out)
}
