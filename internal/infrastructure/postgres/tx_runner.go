package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/jhoicas/tienda-pos/internal/application/stock"
	"github.com/jhoicas/tienda-pos/internal/domain/repository"
)

var _ stock.TxRunner = (*TxRunner)(nil)

// TxRunner ejecuta callbacks dentro de una transacción PostgreSQL (READ COMMITTED).
// Es el único lugar donde se construye el QuantityRepo.
type TxRunner struct {
	pool *pgxpool.Pool
}

// NewTxRunner construye el runner con el pool.
func NewTxRunner(pool *pgxpool.Pool) *TxRunner {
	return &TxRunner{pool: pool}
}

// Run inicia una transacción, ejecuta fn con repos atados a la tx y hace Commit o Rollback.
func (r *TxRunner) Run(ctx context.Context, fn func(tx stock.Tx) error) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if err := fn(txView{tx: tx}); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

type txView struct {
	tx pgx.Tx
}

func (v txView) Products() repository.ProductRepository   { return NewProductRepository(v.tx) }
func (v txView) Quantities() stock.QuantityStore           { return newQuantityRepository(v.tx) }
func (v txView) Inflows() repository.InflowRepository     { return NewInflowRepository(v.tx) }
func (v txView) Outflows() repository.OutflowRepository   { return NewOutflowRepository(v.tx) }
func (v txView) Sales() repository.SaleRepository         { return NewSaleRepository(v.tx) }
func (v txView) Customers() repository.CustomerRepository { return NewCustomerRepository(v.tx) }
func (v txView) Suppliers() repository.SupplierRepository { return NewSupplierRepository(v.tx) }
