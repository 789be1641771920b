package repository

import (
	"context"

	"github.com/jhoicas/tienda-pos/internal/domain/entity"
)

// CustomerRepository consulta de clientes (el alta y edición pertenecen al módulo de clientes).
type CustomerRepository interface {
	GetByID(ctx context.Context, id string) (*entity.Customer, error)
	// Search busca por nombre, email o teléfono.
	Search(ctx context.Context, query string, limit int) ([]*entity.Customer, error)
}

// SupplierRepository consulta de proveedores.
type SupplierRepository interface {
	GetByID(ctx context.Context, id string) (*entity.Supplier, error)
	// First devuelve el primer proveedor registrado o nil si no hay ninguno.
	First(ctx context.Context) (*entity.Supplier, error)
}
