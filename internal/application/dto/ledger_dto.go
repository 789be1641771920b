package dto

import "time"

// BulkInflowLine línea del lote de recepción.
type BulkInflowLine struct {
	ID       string `json:"id"`
	Quantity int    `json:"quantity"`
	Notes    string `json:"notes,omitempty"`
}

// BulkInflowRequest body para POST /api/inflows/bulk.
type BulkInflowRequest struct {
	Products   []BulkInflowLine `json:"products"`
	SupplierID string           `json:"supplier_id,omitempty"`
}

// BulkInflowEntry resultado por línea recibida.
type BulkInflowEntry struct {
	ID          string `json:"id"`
	ProductName string `json:"product_name"`
	Quantity    int    `json:"quantity"`
	NewStock    int    `json:"new_stock"`
}

// BulkInflowResponse resultado del lote.
type BulkInflowResponse struct {
	Success  bool              `json:"success"`
	Message  string            `json:"message"`
	Entries  []BulkInflowEntry `json:"entries"`
	Supplier string            `json:"supplier"`
}

// InflowRequest body para POST /api/inflows (recepción individual).
type InflowRequest struct {
	ProductID   string `json:"product_id"`
	SupplierID  string `json:"supplier_id,omitempty"`
	Quantity    int    `json:"quantity"`
	Description string `json:"description"`
}

// AdjustmentRequest body para POST /api/outflows/adjustments.
type AdjustmentRequest struct {
	ProductID   string `json:"product_id"`
	Quantity    int    `json:"quantity"`
	Description string `json:"description"`
}

// MovementResponse resultado de una mutación individual.
type MovementResponse struct {
	ID        string `json:"id"`
	ProductID string `json:"product_id"`
	Quantity  int    `json:"quantity"`
	NewStock  int    `json:"new_stock"`
}

// InflowResponse asiento de entrada.
type InflowResponse struct {
	ID          string    `json:"id"`
	SupplierID  string    `json:"supplier_id"`
	ProductID   string    `json:"product_id"`
	Quantity    int       `json:"quantity"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"created_at"`
}

// OutflowResponse asiento de salida.
type OutflowResponse struct {
	ID          string    `json:"id"`
	ProductID   string    `json:"product_id"`
	Quantity    int       `json:"quantity"`
	Description string    `json:"description"`
	SaleID      string    `json:"sale_id,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}
