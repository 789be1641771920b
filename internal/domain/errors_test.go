package domain

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestInsufficientStockError_IsSentinel(t *testing.T) {
	var err error = &InsufficientStockError{ProductID: "p1", Title: "Camiseta", Available: 1, Requested: 2}
	wrapped := fmt.Errorf("venta: %w", err)

	assert.True(t, errors.Is(wrapped, ErrInsufficientStock))
	assert.False(t, errors.Is(wrapped, ErrNotFound))
	assert.Contains(t, err.Error(), "Camiseta")

	var target *InsufficientStockError
	assert.True(t, errors.As(wrapped, &target))
	assert.Equal(t, 1, target.Available)
}

func TestValidationYNotFound(t *testing.T) {
	assert.True(t, errors.Is(Invalid("quantity", "debe ser mayor que cero"), ErrInvalidInput))
	assert.True(t, errors.Is(NotFound("producto", "x"), ErrNotFound))
	assert.Equal(t, "producto x no encontrado", NotFound("producto", "x").Error())
}
