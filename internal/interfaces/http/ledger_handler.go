package http

import (
	"fmt"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/tienda-pos/internal/application/dto"
	"github.com/jhoicas/tienda-pos/internal/application/stock"
	"github.com/jhoicas/tienda-pos/internal/application/usecase"
)

// LedgerHandler recepción de mercancía, ajustes de stock y consulta de movimientos (protegido).
type LedgerHandler struct {
	engine *stock.Engine
	ledger *usecase.LedgerUseCase
}

// NewLedgerHandler construye el handler.
func NewLedgerHandler(engine *stock.Engine, ledger *usecase.LedgerUseCase) *LedgerHandler {
	return &LedgerHandler{engine: engine, ledger: ledger}
}

// BulkInflow godoc
// @Summary      Recepción en lote (escáner)
// @Description  Sin supplier_id se usa el primer proveedor registrado. Todo o nada.
// @Tags         inflows
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.BulkInflowRequest  true  "Productos escaneados"
// @Success      201   {object}  dto.BulkInflowResponse
// @Failure      400   {object}  dto.FailureResponse
// @Failure      404   {object}  dto.FailureResponse
// @Failure      409   {object}  dto.FailureResponse
// @Router       /api/inflows/bulk [post]
func (h *LedgerHandler) BulkInflow(c *fiber.Ctx) error {
	var in dto.BulkInflowRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.FailureResponse{Error: "datos JSON inválidos", Code: "INVALID_BODY"})
	}
	receipt := stock.BulkReceipt{SupplierID: in.SupplierID, Lines: make([]stock.ReceiptLine, 0, len(in.Products))}
	for _, p := range in.Products {
		receipt.Lines = append(receipt.Lines, stock.ReceiptLine{ProductID: p.ID, Quantity: p.Quantity, Notes: p.Notes})
	}
	res, err := h.engine.ReceiveBulk(c.UserContext(), receipt)
	if err != nil {
		return writeFailure(c, err)
	}
	out := dto.BulkInflowResponse{
		Success:  true,
		Message:  fmt.Sprintf("%d entradas registradas con éxito", len(res.Entries)),
		Entries:  make([]dto.BulkInflowEntry, 0, len(res.Entries)),
		Supplier: res.Supplier.Name,
	}
	for _, e := range res.Entries {
		out.Entries = append(out.Entries, dto.BulkInflowEntry{
			ID:          e.InflowID,
			ProductName: e.ProductTitle,
			Quantity:    e.Quantity,
			NewStock:    e.NewStock,
		})
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// Inflow godoc
// @Summary      Registrar entrada individual
// @Tags         inflows
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.InflowRequest  true  "Producto, cantidad y proveedor"
// @Success      201   {object}  dto.MovementResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /api/inflows [post]
func (h *LedgerHandler) Inflow(c *fiber.Ctx) error {
	var in dto.InflowRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	res, err := h.engine.Receive(c.UserContext(), in.ProductID, in.Quantity, in.SupplierID, in.Description)
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(movement(res))
}

// ListInflows godoc
// @Summary      Listar entradas
// @Tags         inflows
// @Security     Bearer
// @Produce      json
// @Param        product  query  string  false  "Título del producto (contiene)"
// @Param        limit    query  int     false  "Límite"  default(20)
// @Param        offset   query  int     false  "Offset"  default(0)
// @Success      200  {array}  dto.InflowResponse
// @Router       /api/inflows [get]
func (h *LedgerHandler) ListInflows(c *fiber.Ctx) error {
	out, err := h.ledger.ListInflows(c.UserContext(), c.Query("product"), page(c))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// Adjustment godoc
// @Summary      Ajuste de stock (salida sin venta)
// @Tags         outflows
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.AdjustmentRequest  true  "Producto, cantidad y motivo"
// @Success      201   {object}  dto.MovementResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/outflows/adjustments [post]
func (h *LedgerHandler) Adjustment(c *fiber.Ctx) error {
	var in dto.AdjustmentRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	res, err := h.engine.Adjust(c.UserContext(), in.ProductID, in.Quantity, in.Description)
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(movement(res))
}

// ListOutflows godoc
// @Summary      Listar salidas
// @Tags         outflows
// @Security     Bearer
// @Produce      json
// @Param        sale_id     query  string  false  "ID de venta"
// @Param        product_id  query  string  false  "ID de producto"
// @Param        limit       query  int     false  "Límite"  default(20)
// @Param        offset      query  int     false  "Offset"  default(0)
// @Success      200  {array}  dto.OutflowResponse
// @Router       /api/outflows [get]
func (h *LedgerHandler) ListOutflows(c *fiber.Ctx) error {
	out, err := h.ledger.ListOutflows(c.UserContext(), c.Query("sale_id"), c.Query("product_id"), page(c))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

func movement(res *stock.Result) dto.MovementResponse {
	return dto.MovementResponse{
		ID:        res.LedgerID,
		ProductID: res.Product.ID,
		Quantity:  abs(res.NewQty - res.PreviousQty),
		NewStock:  res.NewQty,
	}
}

func page(c *fiber.Ctx) dto.PageRequest {
	return dto.PageRequest{Limit: c.QueryInt("limit", 20), Offset: c.QueryInt("offset", 0)}
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
