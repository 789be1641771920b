package dto

// CustomerResponse cliente en la búsqueda de caja.
type CustomerResponse struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	DisplayName string `json:"display_name"`
	Email       string `json:"email,omitempty"`
	Phone       string `json:"phone,omitempty"`
}

// CustomerSearchResponse resultado de la búsqueda de clientes de caja.
type CustomerSearchResponse struct {
	Customers []CustomerResponse `json:"customers"`
}
