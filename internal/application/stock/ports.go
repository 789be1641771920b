package stock

import (
	"context"

	"github.com/jhoicas/tienda-pos/internal/domain/entity"
	"github.com/jhoicas/tienda-pos/internal/domain/repository"
)

// QuantityStore escribe el contador de stock de un producto.
// Es la única escritura de Quantity del sistema y solo se obtiene desde Tx,
// cuyo TxRunner se entrega exclusivamente al Engine.
type QuantityStore interface {
	SetQuantity(ctx context.Context, productID string, quantity int) error
}

// Tx repositorios atados a una misma transacción de base de datos.
type Tx interface {
	Products() repository.ProductRepository
	Quantities() QuantityStore
	Inflows() repository.InflowRepository
	Outflows() repository.OutflowRepository
	Sales() repository.SaleRepository
	Customers() repository.CustomerRepository
	Suppliers() repository.SupplierRepository
}

// TxRunner ejecuta fn dentro de una transacción; Commit si fn retorna nil, Rollback en otro caso.
type TxRunner interface {
	Run(ctx context.Context, fn func(tx Tx) error) error
}

// Metrics observa el resultado de las mutaciones ya confirmadas.
type Metrics interface {
	MutationApplied(kind entity.LedgerKind, quantity int)
	MutationRejected(kind entity.LedgerKind, reason string)
}

type nopMetrics struct{}

func (nopMetrics) MutationApplied(entity.LedgerKind, int)     {}
func (nopMetrics) MutationRejected(entity.LedgerKind, string) {}
