// Package memory almacén en memoria con la misma semántica transaccional que postgres.
// Se usa con STORE_DRIVER=memory (demo, desarrollo) y en los tests de los casos de uso.
package memory

import (
	"context"
	"sync"
	"time"

	"github.com/jhoicas/tienda-pos/internal/application/stock"
	"github.com/jhoicas/tienda-pos/internal/domain/entity"
	"github.com/jhoicas/tienda-pos/internal/domain/repository"
)

var _ stock.TxRunner = (*Store)(nil)

type state struct {
	products  map[string]entity.Product
	customers map[string]entity.Customer
	suppliers []entity.Supplier
	inflows   []entity.Inflow
	outflows  []entity.Outflow
	sales     map[string]entity.Sale
	saleOrder []string
	items     map[string][]entity.SaleItem
	failures  map[string]projectionFailure
}

// projectionFailure intentos fallidos de proyección de una venta.
type projectionFailure struct {
	attempts int
	reason   string
	at       time.Time
}

func newState() *state {
	return &state{
		products:  map[string]entity.Product{},
		customers: map[string]entity.Customer{},
		sales:     map[string]entity.Sale{},
		items:     map[string][]entity.SaleItem{},
		failures:  map[string]projectionFailure{},
	}
}

func (s *state) clone() *state {
	c := &state{
		products:  make(map[string]entity.Product, len(s.products)),
		customers: make(map[string]entity.Customer, len(s.customers)),
		suppliers: append([]entity.Supplier(nil), s.suppliers...),
		inflows:   append([]entity.Inflow(nil), s.inflows...),
		outflows:  append([]entity.Outflow(nil), s.outflows...),
		sales:     make(map[string]entity.Sale, len(s.sales)),
		saleOrder: append([]string(nil), s.saleOrder...),
		items:     make(map[string][]entity.SaleItem, len(s.items)),
		failures:  make(map[string]projectionFailure, len(s.failures)),
	}
	for k, v := range s.products {
		c.products[k] = v
	}
	for k, v := range s.customers {
		c.customers[k] = v
	}
	for k, v := range s.sales {
		c.sales[k] = v
	}
	for k, v := range s.items {
		c.items[k] = append([]entity.SaleItem(nil), v...)
	}
	for k, v := range s.failures {
		c.failures[k] = v
	}
	return c
}

// Store almacén en memoria. Las transacciones se serializan con txMu y trabajan sobre una
// copia del estado que reemplaza al original solo si fn termina sin error.
type Store struct {
	txMu    sync.Mutex
	stateMu sync.RWMutex
	st      *state
	now     func() time.Time
}

// New crea un almacén vacío.
func New() *Store {
	return &Store{st: newState(), now: time.Now}
}

// Run ejecuta fn sobre una copia aislada del estado.
func (s *Store) Run(ctx context.Context, fn func(tx stock.Tx) error) error {
	s.txMu.Lock()
	defer s.txMu.Unlock()
	if err := ctx.Err(); err != nil {
		return err
	}

	s.stateMu.RLock()
	work := s.st.clone()
	s.stateMu.RUnlock()

	direct := func(fn func(*state) error) error { return fn(work) }
	if err := fn(&txView{a: access{read: direct, write: direct}, now: s.now}); err != nil {
		return err
	}

	s.stateMu.Lock()
	s.st = work
	s.stateMu.Unlock()
	return nil
}

func (s *Store) read(fn func(*state) error) error {
	s.stateMu.RLock()
	defer s.stateMu.RUnlock()
	return fn(s.st)
}

// write fuera de transacción: se serializa con las transacciones para no perder el swap.
func (s *Store) write(fn func(*state) error) error {
	s.txMu.Lock()
	defer s.txMu.Unlock()
	s.stateMu.Lock()
	defer s.stateMu.Unlock()
	return fn(s.st)
}

func (s *Store) access() access { return access{read: s.read, write: s.write} }

// Products repositorio de catálogo fuera de transacción.
func (s *Store) Products() repository.ProductRepository {
	return &productRepo{a: s.access(), now: s.now}
}

// Customers repositorio de clientes fuera de transacción.
func (s *Store) Customers() repository.CustomerRepository { return &customerRepo{a: s.access()} }

// Suppliers repositorio de proveedores fuera de transacción.
func (s *Store) Suppliers() repository.SupplierRepository { return &supplierRepo{a: s.access()} }

// Inflows libro de entradas fuera de transacción.
func (s *Store) Inflows() repository.InflowRepository { return &inflowRepo{a: s.access()} }

// Outflows libro de salidas fuera de transacción.
func (s *Store) Outflows() repository.OutflowRepository { return &outflowRepo{a: s.access()} }

// Sales repositorio de ventas fuera de transacción.
func (s *Store) Sales() repository.SaleRepository { return &saleRepo{a: s.access()} }

// AddSupplier registra un proveedor (semilla de demo y tests).
func (s *Store) AddSupplier(sup entity.Supplier) {
	_ = s.write(func(st *state) error {
		if sup.CreatedAt.IsZero() {
			sup.CreatedAt = s.now()
		}
		st.suppliers = append(st.suppliers, sup)
		return nil
	})
}

// AddCustomer registra un cliente (semilla de demo y tests).
func (s *Store) AddCustomer(c entity.Customer) {
	_ = s.write(func(st *state) error {
		if c.CreatedAt.IsZero() {
			c.CreatedAt = s.now()
			c.UpdatedAt = c.CreatedAt
		}
		st.customers[c.ID] = c
		return nil
	})
}

// access lectura/escritura del estado; dentro de una transacción ambas operan sobre la copia.
type access struct {
	read  func(fn func(*state) error) error
	write func(fn func(*state) error) error
}

type txView struct {
	a   access
	now func() time.Time
}

func (t *txView) Products() repository.ProductRepository   { return &productRepo{a: t.a, now: t.now} }
func (t *txView) Quantities() stock.QuantityStore          { return &quantityStore{a: t.a, now: t.now} }
func (t *txView) Inflows() repository.InflowRepository     { return &inflowRepo{a: t.a} }
func (t *txView) Outflows() repository.OutflowRepository   { return &outflowRepo{a: t.a} }
func (t *txView) Sales() repository.SaleRepository         { return &saleRepo{a: t.a} }
func (t *txView) Customers() repository.CustomerRepository { return &customerRepo{a: t.a} }
func (t *txView) Suppliers() repository.SupplierRepository { return &supplierRepo{a: t.a} }

func page[T any](rows []T, limit, offset int) []T {
	if offset > 0 {
		if offset >= len(rows) {
			return rows[:0]
		}
		rows = rows[offset:]
	}
	if limit > 0 && len(rows) > limit {
		rows = rows[:limit]
	}
	return rows
}
