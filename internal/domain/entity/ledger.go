package entity

import "time"

// LedgerKind tipo de asiento del libro de stock.
type LedgerKind string

const (
	LedgerInflow  LedgerKind = "inflow"  // entrada desde proveedor
	LedgerOutflow LedgerKind = "outflow" // salida por venta o ajuste
)

// Inflow entrada de mercancía. Inmutable una vez creada.
type Inflow struct {
	ID          string
	SupplierID  string
	ProductID   string
	Quantity    int // > 0
	Description string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Outflow salida de mercancía. Quantity es la magnitud (positiva) de la disminución.
// SaleID es nil para ajustes que no provienen de una venta.
type Outflow struct {
	ID          string
	ProductID   string
	Quantity    int
	Description string
	SaleID      *string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// SaleOutflowDescription descripción de la salida generada por un ítem de venta.
// customer nil = venta sin cliente.
func SaleOutflowDescription(saleID, productTitle string, customer *Customer) string {
	name := "N/A"
	if customer != nil && customer.Name != "" {
		name = customer.Name
	}
	return "Venta #" + saleID + " - " + productTitle + " - Cliente: " + name
}
