package entity

import "time"

// Customer cliente de la tienda. Las ventas pueden no tener cliente (venta de mostrador).
type Customer struct {
	ID        string
	Name      string
	Phone     string
	Email     string
	Document  string // CPF
	IsActive  bool
	CreatedAt time.Time
	UpdatedAt time.Time
}

// DisplayName nombre y teléfono, como se muestra en la búsqueda de caja.
func (c *Customer) DisplayName() string {
	if c.Phone == "" {
		return c.Name
	}
	return c.Name + " - " + c.Phone
}

// Supplier proveedor de mercancía (solo consulta; su CRUD está fuera de este servicio).
type Supplier struct {
	ID        string
	Name      string
	CreatedAt time.Time
}
