package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/tienda-pos/internal/application/dto"
	"github.com/jhoicas/tienda-pos/internal/application/sales"
	"github.com/jhoicas/tienda-pos/pkg/jwt"
)

// SaleHandler venta rápida de caja y consulta de ventas (protegido).
type SaleHandler struct {
	uc *sales.QuickSaleUseCase
}

// NewSaleHandler construye el handler.
func NewSaleHandler(uc *sales.QuickSaleUseCase) *SaleHandler {
	return &SaleHandler{uc: uc}
}

// Quick godoc
// @Summary      Registrar venta rápida
// @Description  Todo o nada: ante cualquier fallo no queda venta, ítems ni movimiento de stock.
// @Tags         sales
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.QuickSaleRequest  true  "Ítems, cliente, descuento y forma de pago"
// @Success      201   {object}  dto.QuickSaleResponse
// @Failure      400   {object}  dto.FailureResponse
// @Failure      404   {object}  dto.FailureResponse
// @Failure      409   {object}  dto.FailureResponse
// @Router       /api/sales/quick [post]
func (h *SaleHandler) Quick(c *fiber.Ctx) error {
	var in dto.QuickSaleRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.FailureResponse{Error: "datos JSON inválidos", Code: "INVALID_BODY"})
	}
	out, err := h.uc.Process(c.UserContext(), GetUserID(c), in)
	if err != nil {
		return writeFailure(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// List godoc
// @Summary      Listar ventas
// @Description  Los vendedores solo ven sus propias ventas.
// @Tags         sales
// @Security     Bearer
// @Produce      json
// @Param        date_filter  query  string  false  "today | week"
// @Param        limit        query  int     false  "Límite"  default(20)
// @Param        offset       query  int     false  "Offset"  default(0)
// @Success      200  {object}  dto.SaleListResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/sales [get]
func (h *SaleHandler) List(c *fiber.Ctx) error {
	f := sales.ListFilter{
		DateFilter: c.Query("date_filter"),
		Page:       dto.PageRequest{Limit: c.QueryInt("limit", 20), Offset: c.QueryInt("offset", 0)},
	}
	if GetRole(c) == jwt.RoleVendedor {
		f.SellerID = GetUserID(c)
	}
	out, err := h.uc.List(c.UserContext(), f)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// GetByID godoc
// @Summary      Detalle de venta
// @Tags         sales
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID de la venta"
// @Success      200  {object}  dto.SaleResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/sales/{id} [get]
func (h *SaleHandler) GetByID(c *fiber.Ctx) error {
	out, err := h.uc.Get(c.UserContext(), c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// Receipt godoc
// @Summary      Recibo PDF de la venta
// @Tags         sales
// @Security     Bearer
// @Produce      application/pdf
// @Param        id   path  string  true  "ID de la venta"
// @Success      200  {file}  binary
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/sales/{id}/receipt [get]
func (h *SaleHandler) Receipt(c *fiber.Ctx) error {
	pdf, filename, err := h.uc.Receipt(c.UserContext(), c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	c.Set(fiber.HeaderContentType, "application/pdf")
	c.Set(fiber.HeaderContentDisposition, `inline; filename="`+filename+`"`)
	return c.Send(pdf)
}
