package entity

import (
	"math"
	"time"

	"github.com/shopspring/decimal"
)

// DefaultMinStock umbral de stock mínimo si no se indica otro.
const DefaultMinStock = 5

// MaxQuantity mayor cantidad admitida en stock, ítems y asientos (columnas INTEGER).
const MaxQuantity = math.MaxInt32

// MoneyPlaces decimales con que se guardan precios y totales (NUMERIC(20,2)).
const MoneyPlaces = 2

// IsMoney indica si d se representa sin pérdida con MoneyPlaces decimales.
func IsMoney(d decimal.Decimal) bool {
	return d.Equal(d.Round(MoneyPlaces))
}

// Product representa un artículo del catálogo con un único contador de stock.
// Quantity solo lo modifica el motor de stock; las ediciones de catálogo nunca lo tocan.
type Product struct {
	ID           string
	Title        string
	Description  string
	Barcode      string // único, opcional
	SKU          string // único, opcional
	Brand        string
	Size         string
	Color        string
	CostPrice    decimal.Decimal
	SellingPrice decimal.Decimal
	Quantity     int
	MinStock     int
	IsActive     bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// IsLowStock indica si el stock está en o por debajo del mínimo.
func (p *Product) IsLowStock() bool {
	return p.Quantity <= p.MinStock
}

// ProfitMargin margen sobre el costo en porcentaje; 0 si el costo es 0.
func (p *Product) ProfitMargin() decimal.Decimal {
	if !p.CostPrice.GreaterThan(decimal.Zero) {
		return decimal.Zero
	}
	return p.SellingPrice.Sub(p.CostPrice).Div(p.CostPrice).Mul(decimal.NewFromInt(100)).Round(2)
}

// DisplayName nombre con talla y color, como se muestra en caja.
func (p *Product) DisplayName() string {
	name := p.Title
	if p.Size != "" {
		name += " - " + p.Size
	}
	if p.Color != "" {
		name += " - " + p.Color
	}
	return name
}

// ValidatePrices exige precio de venta mayor al costo (solo en alta/edición de catálogo).
func (p *Product) ValidatePrices() bool {
	return p.SellingPrice.GreaterThan(p.CostPrice)
}
