package stock

import (
	"context"
	"sort"

	"github.com/jhoicas/tienda-pos/internal/domain"
	"github.com/jhoicas/tienda-pos/internal/domain/entity"
	"github.com/jhoicas/tienda-pos/internal/domain/repository"
)

// Scope vista de una transacción del motor para otros flujos (venta, proyección).
// Expone lecturas y el agregado venta, pero la cantidad solo cambia vía Apply.
type Scope struct {
	tx      Tx
	engine  *Engine
	applied []Mutation
}

// Products repositorio de catálogo atado a la transacción.
func (s *Scope) Products() repository.ProductRepository { return s.tx.Products() }

// Sales repositorio de ventas atado a la transacción.
func (s *Scope) Sales() repository.SaleRepository { return s.tx.Sales() }

// Outflows consultas del libro de salidas atadas a la transacción.
func (s *Scope) Outflows() repository.OutflowReader { return s.tx.Outflows() }

// Customers consultas de clientes atadas a la transacción.
func (s *Scope) Customers() repository.CustomerRepository { return s.tx.Customers() }

// Suppliers consultas de proveedores atadas a la transacción.
func (s *Scope) Suppliers() repository.SupplierRepository { return s.tx.Suppliers() }

// Apply aplica una mutación dentro de la transacción del Scope.
func (s *Scope) Apply(ctx context.Context, m Mutation) (*Result, error) {
	if err := validateMutation(m); err != nil {
		return nil, err
	}
	res, err := s.engine.apply(ctx, s.tx, m)
	if err != nil {
		s.engine.reject(m.Kind, err)
		return nil, err
	}
	s.applied = append(s.applied, m)
	return res, nil
}

// LockProducts bloquea los productos en orden de ID (evita interbloqueos entre transacciones
// que tocan varios productos) y los devuelve indexados. Un ID inexistente aborta con ErrNotFound.
func (s *Scope) LockProducts(ctx context.Context, ids []string) (map[string]*entity.Product, error) {
	unique := make([]string, 0, len(ids))
	seen := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		unique = append(unique, id)
	}
	sort.Strings(unique)

	locked := make(map[string]*entity.Product, len(unique))
	for _, id := range unique {
		p, err := s.tx.Products().GetForUpdate(ctx, id)
		if err != nil {
			return nil, err
		}
		if p == nil {
			return nil, domain.NotFound("producto", id)
		}
		locked[id] = p
	}
	return locked, nil
}
