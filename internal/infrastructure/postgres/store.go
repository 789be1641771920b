package postgres

import (
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/jhoicas/tienda-pos/internal/domain/repository"
)

// Store agrupa los repositorios de lectura sobre el pool, fuera de transacción.
// Las escrituras de stock pasan por TxRunner.
type Store struct {
	pool *pgxpool.Pool
}

// NewStore construye la fachada sobre el pool.
func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

func (s *Store) Products() repository.ProductRepository   { return NewProductRepository(s.pool) }
func (s *Store) Customers() repository.CustomerRepository { return NewCustomerRepository(s.pool) }
func (s *Store) Suppliers() repository.SupplierRepository { return NewSupplierRepository(s.pool) }
func (s *Store) Inflows() repository.InflowRepository     { return NewInflowRepository(s.pool) }
func (s *Store) Outflows() repository.OutflowRepository   { return NewOutflowRepository(s.pool) }
func (s *Store) Sales() repository.SaleRepository         { return NewSaleRepository(s.pool) }
