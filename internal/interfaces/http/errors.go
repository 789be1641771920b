package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"

	"github.com/jhoicas/tienda-pos/internal/application/dto"
	"github.com/jhoicas/tienda-pos/internal/domain"
)

// errorStatus traduce errores de dominio a código HTTP y código de error.
// Lo no reconocido es un fallo de infraestructura: 500 sin detalle.
func errorStatus(err error) (int, string, string) {
	var (
		insufficient *domain.InsufficientStockError
		invalid      *domain.ValidationError
		notFound     *domain.NotFoundError
	)
	switch {
	case errors.As(err, &insufficient):
		return fiber.StatusConflict, "INSUFFICIENT_STOCK", insufficient.Error()
	case errors.Is(err, domain.ErrInsufficientStock):
		return fiber.StatusConflict, "INSUFFICIENT_STOCK", err.Error()
	case errors.Is(err, domain.ErrEmptySale):
		return fiber.StatusBadRequest, "EMPTY_SALE", err.Error()
	case errors.As(err, &invalid):
		return fiber.StatusBadRequest, "VALIDATION", invalid.Error()
	case errors.Is(err, domain.ErrInvalidInput):
		return fiber.StatusBadRequest, "VALIDATION", err.Error()
	case errors.As(err, &notFound):
		return fiber.StatusNotFound, "NOT_FOUND", notFound.Error()
	case errors.Is(err, domain.ErrNotFound):
		return fiber.StatusNotFound, "NOT_FOUND", err.Error()
	case errors.Is(err, domain.ErrDuplicate):
		return fiber.StatusConflict, "DUPLICATE", "código de barras o SKU ya registrado"
	case errors.Is(err, domain.ErrProductReferenced):
		return fiber.StatusConflict, "PRODUCT_REFERENCED", err.Error()
	case errors.Is(err, domain.ErrNoSupplier):
		return fiber.StatusConflict, "NO_SUPPLIER", "no hay proveedores registrados; registre uno primero"
	case errors.Is(err, domain.ErrUnauthorized):
		return fiber.StatusUnauthorized, "UNAUTHORIZED", err.Error()
	case errors.Is(err, domain.ErrForbidden):
		return fiber.StatusForbidden, "FORBIDDEN", err.Error()
	}
	return fiber.StatusInternalServerError, "INTERNAL", "error interno"
}

// writeError responde con dto.ErrorResponse.
func writeError(c *fiber.Ctx, err error) error {
	status, code, msg := errorStatus(err)
	logFailure(c, status, err)
	return c.Status(status).JSON(dto.ErrorResponse{Code: code, Message: msg})
}

// writeFailure responde con dto.FailureResponse (flujos de caja: venta rápida, recepción).
func writeFailure(c *fiber.Ctx, err error) error {
	status, code, msg := errorStatus(err)
	logFailure(c, status, err)
	return c.Status(status).JSON(dto.FailureResponse{Success: false, Error: msg, Code: code})
}

func badBody(c *fiber.Ctx) error {
	return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
}

func logFailure(c *fiber.Ctx, status int, err error) {
	if status < fiber.StatusInternalServerError {
		return
	}
	log.Error().Err(err).Str("method", c.Method()).Str("path", c.Path()).Msg("petición fallida")
}
