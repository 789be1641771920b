package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// CreateProductRequest entrada para crear un producto. El stock inicial es siempre 0;
// las unidades entran por recepción.
type CreateProductRequest struct {
	Title        string          `json:"title"`
	Description  string          `json:"description"`
	Barcode      string          `json:"barcode"`
	SKU          string          `json:"sku"`
	Brand        string          `json:"brand"`
	Size         string          `json:"size"`
	Color        string          `json:"color"`
	CostPrice    decimal.Decimal `json:"cost_price"`
	SellingPrice decimal.Decimal `json:"selling_price"`
	MinStock     *int            `json:"min_stock,omitempty"`
}

// UpdateProductRequest entrada para actualizar un producto (sin stock).
type UpdateProductRequest struct {
	Title        *string          `json:"title"`
	Description  *string          `json:"description"`
	Barcode      *string          `json:"barcode"`
	SKU          *string          `json:"sku"`
	Brand        *string          `json:"brand"`
	Size         *string          `json:"size"`
	Color        *string          `json:"color"`
	CostPrice    *decimal.Decimal `json:"cost_price"`
	SellingPrice *decimal.Decimal `json:"selling_price"`
	MinStock     *int             `json:"min_stock"`
	IsActive     *bool            `json:"is_active"`
}

// ProductResponse salida de un producto.
type ProductResponse struct {
	ID           string          `json:"id"`
	Title        string          `json:"title"`
	DisplayName  string          `json:"display_name"`
	Description  string          `json:"description"`
	Barcode      string          `json:"barcode,omitempty"`
	SKU          string          `json:"sku,omitempty"`
	Brand        string          `json:"brand,omitempty"`
	Size         string          `json:"size,omitempty"`
	Color        string          `json:"color,omitempty"`
	CostPrice    decimal.Decimal `json:"cost_price"`
	SellingPrice decimal.Decimal `json:"selling_price"`
	Quantity     int             `json:"quantity"`
	MinStock     int             `json:"min_stock"`
	IsLowStock   bool            `json:"is_low_stock"`
	ProfitMargin decimal.Decimal `json:"profit_margin"`
	IsActive     bool            `json:"is_active"`
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`
}

// ProductListResponse lista paginada de productos.
type ProductListResponse struct {
	Items []ProductResponse `json:"items"`
	Page  PageResponse      `json:"page"`
}

// ProductLookupResponse respuesta de búsqueda por código (escáner).
type ProductLookupResponse struct {
	Success bool             `json:"success"`
	Found   bool             `json:"found"`
	Product *ProductResponse `json:"product,omitempty"`
	Error   string           `json:"error,omitempty"`
}

// ProductSearchResponse resultado de la búsqueda rápida de caja.
type ProductSearchResponse struct {
	Products []ProductResponse `json:"products"`
}
