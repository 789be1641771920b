package money

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestFormat(t *testing.T) {
	assert.Equal(t, "R$ 1.234,50", Format(decimal.NewFromFloat(1234.5)))
	assert.Equal(t, "R$ 0,00", Format(decimal.Zero))
	assert.Equal(t, "R$ 10,00", Format(decimal.NewFromInt(10)))
}

func TestQuantity(t *testing.T) {
	assert.Equal(t, "12.000", Quantity(12000))
	assert.Equal(t, "7", Quantity(7))
}
