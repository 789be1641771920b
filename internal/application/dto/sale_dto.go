package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// QuickSaleItemRequest línea de la venta rápida. UnitPrice 0 u omitido = precio de venta del producto.
type QuickSaleItemRequest struct {
	ProductID string          `json:"product_id"`
	Quantity  int             `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price"`
}

// QuickSaleRequest body para POST /api/sales/quick.
type QuickSaleRequest struct {
	Items         []QuickSaleItemRequest `json:"items"`
	CustomerID    string                 `json:"customer_id,omitempty"`
	Discount      decimal.Decimal        `json:"discount"`
	PaymentMethod string                 `json:"payment_method"`
	Installments  int                    `json:"installments,omitempty"`
	Notes         string                 `json:"notes,omitempty"`
}

// QuickSaleResponse resultado de la venta rápida.
type QuickSaleResponse struct {
	Success     bool            `json:"success"`
	SaleID      string          `json:"sale_id"`
	FinalAmount decimal.Decimal `json:"final_amount"`
	Message     string          `json:"message"`
}

// SaleItemResponse línea de venta.
type SaleItemResponse struct {
	ID          string          `json:"id"`
	ProductID   string          `json:"product_id"`
	ProductName string          `json:"product_name,omitempty"`
	Quantity    int             `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	TotalPrice  decimal.Decimal `json:"total_price"`
}

// SaleResponse venta con detalle para GET /api/sales/:id.
type SaleResponse struct {
	ID            string             `json:"id"`
	CustomerID    string             `json:"customer_id,omitempty"`
	CustomerName  string             `json:"customer_name,omitempty"`
	SellerID      string             `json:"seller_id"`
	TotalAmount   decimal.Decimal    `json:"total_amount"`
	Discount      decimal.Decimal    `json:"discount"`
	FinalAmount   decimal.Decimal    `json:"final_amount"`
	PaymentMethod string             `json:"payment_method"`
	Installments  int                `json:"installments"`
	Notes         string             `json:"notes,omitempty"`
	StockSettled  bool               `json:"stock_settled"` // ya existen las salidas de la venta
	CreatedAt     time.Time          `json:"created_at"`
	Items         []SaleItemResponse `json:"items,omitempty"`
}

// SaleListResponse listado de ventas.
type SaleListResponse struct {
	Items []SaleResponse `json:"items"`
	Page  PageResponse   `json:"page"`
}
