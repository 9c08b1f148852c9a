package http

import (
	"context"

	"github.com/gofiber/fiber/v2"
	"github.com/jhoicas/Inventario-farmacia/internal/application/dto"
	"github.com/jhoicas/Inventario-farmacia/internal/application/inventory"
)

// InventoryHandler maneja las peticiones HTTP de stock, ajustes, ventas y reservas (protegido).
type InventoryHandler struct {
	adjustments *inventory.AdjustmentUseCase
	stock       *inventory.StockUseCase
}

// NewInventoryHandler construye el handler.
func NewInventoryHandler(adjustments *inventory.AdjustmentUseCase, stock *inventory.StockUseCase) *InventoryHandler {
	return &InventoryHandler{adjustments: adjustments, stock: stock}
}

// Adjust godoc
// @Summary      Registrar ajuste manual de stock
// @Description  type add|remove con motivo obligatorio. remove sin batch_id descuenta en orden FEFO.
// @Tags         inventory
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.AdjustStockRequest  true  "product_id, type, quantity, reason, batch_id opcional"
// @Success      201   {object}  dto.StockMutationResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/inventory/adjustments [post]
func (h *InventoryHandler) Adjust(c *fiber.Ctx) error {
	companyID := GetCompanyID(c)
	userID := GetUserID(c)
	if companyID == "" || userID == "" {
		return unauthorized(c)
	}
	var in dto.AdjustStockRequest
	if err := c.BodyParser(&in); err != nil {
		return invalidBody(c)
	}
	res, err := h.adjustments.AdjustStock(c.UserContext(), inventory.AdjustInput{
		CompanyID:   companyID,
		UserID:      userID,
		ProductID:   in.ProductID,
		Type:        in.Type,
		Quantity:    in.Quantity,
		Reason:      in.Reason,
		BatchID:     in.BatchID,
		WarehouseID: in.WarehouseID,
		LotNumber:   in.LotNumber,
		ExpiryDate:  in.ExpiryDate,
		Notes:       in.Notes,
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(toMutationResponse(res))
}

// ListAdjustments godoc
// @Summary      Historial de ajustes manuales
// @Tags         inventory
// @Security     Bearer
// @Produce      json
// @Param        product_id  query  string  false  "Filtrar por producto"
// @Param        limit       query  int     false  "Límite (máx 100)"
// @Param        offset      query  int     false  "Desplazamiento"
// @Success      200  {object}  dto.TransactionListResponse
// @Router       /api/inventory/adjustments [get]
func (h *InventoryHandler) ListAdjustments(c *fiber.Ctx) error {
	limit, offset := pagination(c)
	list, err := h.adjustments.ListAdjustmentHistory(c.UserContext(), GetCompanyID(c), c.Query("product_id"), limit, offset)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(toTransactionList(list, limit, offset))
}

// GetStock godoc
// @Summary      Stock de un producto
// @Description  Total en mano, reservado y disponible calculados desde los lotes activos.
// @Tags         inventory
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID del producto"
// @Success      200  {object}  dto.StockLevelResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/inventory/products/{id}/stock [get]
func (h *InventoryHandler) GetStock(c *fiber.Ctx) error {
	level, err := h.stock.GetStockLevel(c.UserContext(), GetCompanyID(c), c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(toStockLevelResponse(level))
}

// ListBatches godoc
// @Summary      Lotes de un producto en orden FEFO
// @Tags         inventory
// @Security     Bearer
// @Produce      json
// @Param        id                path   string  true   "ID del producto"
// @Param        include_inactive  query  bool    false  "Incluir lotes agotados"
// @Success      200  {array}   dto.BatchResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/inventory/products/{id}/batches [get]
func (h *InventoryHandler) ListBatches(c *fiber.Ctx) error {
	list, err := h.stock.ListBatches(c.UserContext(), GetCompanyID(c), c.Params("id"), c.QueryBool("include_inactive", false))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(toBatchResponses(list))
}

// ListTransactions godoc
// @Summary      Libro de movimientos de un producto
// @Tags         inventory
// @Security     Bearer
// @Produce      json
// @Param        id      path   string  true   "ID del producto"
// @Param        limit   query  int     false  "Límite (máx 100)"
// @Param        offset  query  int     false  "Desplazamiento"
// @Success      200  {object}  dto.TransactionListResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/inventory/products/{id}/transactions [get]
func (h *InventoryHandler) ListTransactions(c *fiber.Ctx) error {
	limit, offset := pagination(c)
	list, err := h.stock.ListTransactions(c.UserContext(), GetCompanyID(c), c.Params("id"), limit, offset)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(toTransactionList(list, limit, offset))
}

// RecordSale godoc
// @Summary      Registrar salida por venta
// @Tags         inventory
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.SaleRequest  true  "product_id, quantity, reference"
// @Success      201   {object}  dto.StockMutationResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/inventory/sales [post]
func (h *InventoryHandler) RecordSale(c *fiber.Ctx) error {
	companyID := GetCompanyID(c)
	userID := GetUserID(c)
	if companyID == "" || userID == "" {
		return unauthorized(c)
	}
	var in dto.SaleRequest
	if err := c.BodyParser(&in); err != nil {
		return invalidBody(c)
	}
	res, err := h.stock.RecordSale(c.UserContext(), inventory.SaleInput{
		CompanyID: companyID,
		UserID:    userID,
		ProductID: in.ProductID,
		Quantity:  in.Quantity,
		Reference: in.Reference,
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(toMutationResponse(res))
}

// Reserve godoc
// @Summary      Reservar stock
// @Tags         inventory
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.ReservationRequest  true  "product_id, quantity"
// @Success      200   {object}  dto.StockLevelResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/inventory/reservations [post]
func (h *InventoryHandler) Reserve(c *fiber.Ctx) error {
	return h.reservation(c, h.stock.Reserve)
}

// Release godoc
// @Summary      Liberar stock reservado
// @Tags         inventory
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.ReservationRequest  true  "product_id, quantity"
// @Success      200   {object}  dto.StockLevelResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Router       /api/inventory/reservations/release [post]
func (h *InventoryHandler) Release(c *fiber.Ctx) error {
	return h.reservation(c, h.stock.Release)
}

func (h *InventoryHandler) reservation(
	c *fiber.Ctx,
	apply func(ctx context.Context, in inventory.ReservationInput) (*inventory.StockLevel, error),
) error {
	companyID := GetCompanyID(c)
	if companyID == "" {
		return unauthorized(c)
	}
	var in dto.ReservationRequest
	if err := c.BodyParser(&in); err != nil {
		return invalidBody(c)
	}
	level, err := apply(c.UserContext(), inventory.ReservationInput{
		CompanyID: companyID,
		ProductID: in.ProductID,
		Quantity:  in.Quantity,
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(toStockLevelResponse(level))
}
