package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// PaymentMethod forma de pago de la venta.
type PaymentMethod string

const (
	PaymentCash        PaymentMethod = "cash"
	PaymentCard        PaymentMethod = "card"
	PaymentPix         PaymentMethod = "pix"
	PaymentInstallment PaymentMethod = "installment"
)

// Valid indica si la forma de pago es una de las admitidas.
func (m PaymentMethod) Valid() bool {
	switch m {
	case PaymentCash, PaymentCard, PaymentPix, PaymentInstallment:
		return true
	}
	return false
}

// Label nombre para el recibo.
func (m PaymentMethod) Label() string {
	switch m {
	case PaymentCash:
		return "Dinero"
	case PaymentCard:
		return "Tarjeta"
	case PaymentPix:
		return "PIX"
	case PaymentInstallment:
		return "A plazos"
	}
	return string(m)
}

// MaxProjectionAttempts intentos fallidos de proyección tras los cuales el barrido deja de
// reencolar la venta; queda para revisión manual.
const MaxProjectionAttempts = 5

// Sale cabecera de la venta. Se crea con totales en cero y se finaliza en la misma
// transacción que sus ítems; nunca se modifica después.
type Sale struct {
	ID            string
	CustomerID    *string
	SellerID      string
	TotalAmount   decimal.Decimal // suma de ítems antes del descuento
	Discount      decimal.Decimal
	FinalAmount   decimal.Decimal // TotalAmount - Discount (puede ser negativo)
	PaymentMethod PaymentMethod
	Installments  int
	Notes         string
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// Finalize recalcula los totales a partir de los ítems.
func (s *Sale) Finalize(items []*SaleItem) {
	total := decimal.Zero
	for _, it := range items {
		total = total.Add(it.TotalPrice)
	}
	s.TotalAmount = total
	s.FinalAmount = total.Sub(s.Discount)
}

// SaleItem línea de venta. UnitPrice se captura al vender; TotalPrice es siempre Quantity × UnitPrice.
type SaleItem struct {
	ID         string
	SaleID     string
	ProductID  string
	Quantity   int
	UnitPrice  decimal.Decimal
	TotalPrice decimal.Decimal
}

// NewSaleItem construye la línea calculando el total.
func NewSaleItem(id, saleID, productID string, quantity int, unitPrice decimal.Decimal) *SaleItem {
	return &SaleItem{
		ID:         id,
		SaleID:     saleID,
		ProductID:  productID,
		Quantity:   quantity,
		UnitPrice:  unitPrice,
		TotalPrice: unitPrice.Mul(decimal.NewFromInt(int64(quantity))),
	}
}
