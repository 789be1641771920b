package stock

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/jhoicas/tienda-pos/internal/domain"
	"github.com/jhoicas/tienda-pos/internal/domain/entity"
)

// Mutation cambio de stock de un producto junto con su asiento en el libro.
// Delta positivo = entrada (Inflow), negativo = salida (Outflow).
type Mutation struct {
	ProductID   string
	Delta       int
	Kind        entity.LedgerKind
	Description string
	SupplierID  string  // obligatorio en entradas
	SaleID      *string // solo en salidas originadas por una venta
}

// Result resultado de una mutación aplicada.
type Result struct {
	LedgerID    string
	Product     *entity.Product // con la cantidad ya actualizada
	PreviousQty int
	NewQty      int
}

// Engine motor de stock: único escritor de Product.Quantity y de los libros Inflow/Outflow.
// Cada mutación relee la cantidad con la fila bloqueada, valida, escribe cantidad y asiento
// en la misma transacción.
type Engine struct {
	runner  TxRunner
	metrics Metrics
	log     zerolog.Logger
	now     func() time.Time
}

// Option configura el Engine.
type Option func(*Engine)

// WithMetrics registra las mutaciones confirmadas en m.
func WithMetrics(m Metrics) Option {
	return func(e *Engine) {
		if m != nil {
			e.metrics = m
		}
	}
}

// WithClock reemplaza el reloj (tests).
func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

// NewEngine construye el motor con el runner transaccional.
func NewEngine(runner TxRunner, log zerolog.Logger, opts ...Option) *Engine {
	e := &Engine{
		runner:  runner,
		metrics: nopMetrics{},
		log:     log,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Apply aplica una mutación en su propia transacción.
func (e *Engine) Apply(ctx context.Context, m Mutation) (*Result, error) {
	if err := validateMutation(m); err != nil {
		return nil, err
	}
	var res *Result
	err := e.runner.Run(ctx, func(tx Tx) error {
		var err error
		res, err = e.apply(ctx, tx, m)
		return err
	})
	if err != nil {
		e.reject(m.Kind, err)
		return nil, err
	}
	e.metrics.MutationApplied(m.Kind, abs(m.Delta))
	e.log.Debug().
		Str("product_id", m.ProductID).
		Str("kind", string(m.Kind)).
		Int("delta", m.Delta).
		Int("new_qty", res.NewQty).
		Msg("mutación de stock aplicada")
	return res, nil
}

// Within ejecuta fn en una transacción del motor. fn recibe un Scope que permite leer con bloqueo
// y aplicar mutaciones, pero no escribir la cantidad directamente. Si fn retorna error no queda
// ninguna escritura.
func (e *Engine) Within(ctx context.Context, fn func(s *Scope) error) error {
	var scope *Scope
	err := e.runner.Run(ctx, func(tx Tx) error {
		scope = &Scope{tx: tx, engine: e}
		return fn(scope)
	})
	if err != nil {
		return err
	}
	for _, m := range scope.applied {
		e.metrics.MutationApplied(m.Kind, abs(m.Delta))
	}
	return nil
}

// Adjust registra una salida sin venta asociada (pérdida, avería, conteo).
func (e *Engine) Adjust(ctx context.Context, productID string, quantity int, description string) (*Result, error) {
	if err := validateQuantity("quantity", quantity); err != nil {
		return nil, err
	}
	if description == "" {
		description = "Ajuste de stock"
	}
	return e.Apply(ctx, Mutation{
		ProductID:   productID,
		Delta:       -quantity,
		Kind:        entity.LedgerOutflow,
		Description: description,
	})
}

// apply: bloquea la fila del producto, verifica que el resultado no sea negativo,
// escribe la cantidad y el asiento. Debe ejecutarse dentro de tx.
func (e *Engine) apply(ctx context.Context, tx Tx, m Mutation) (*Result, error) {
	product, err := tx.Products().GetForUpdate(ctx, m.ProductID)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, domain.NotFound("producto", m.ProductID)
	}
	prev := product.Quantity
	next := prev + m.Delta
	if next > entity.MaxQuantity {
		return nil, domain.Invalid("quantity", fmt.Sprintf("el stock de %s superaría el máximo permitido", product.Title))
	}
	if next < 0 {
		return nil, &domain.InsufficientStockError{
			ProductID: product.ID,
			Title:     product.Title,
			Available: prev,
			Requested: -m.Delta,
		}
	}
	if err := tx.Quantities().SetQuantity(ctx, product.ID, next); err != nil {
		return nil, err
	}

	now := e.now()
	ledgerID := uuid.New().String()
	switch m.Kind {
	case entity.LedgerInflow:
		err = tx.Inflows().Create(ctx, &entity.Inflow{
			ID:          ledgerID,
			SupplierID:  m.SupplierID,
			ProductID:   product.ID,
			Quantity:    m.Delta,
			Description: m.Description,
			CreatedAt:   now,
			UpdatedAt:   now,
		})
	case entity.LedgerOutflow:
		err = tx.Outflows().Create(ctx, &entity.Outflow{
			ID:          ledgerID,
			ProductID:   product.ID,
			Quantity:    -m.Delta,
			Description: m.Description,
			SaleID:      m.SaleID,
			CreatedAt:   now,
			UpdatedAt:   now,
		})
	default:
		err = fmt.Errorf("%w: tipo de asiento %q", domain.ErrConsistencyViolation, m.Kind)
	}
	if err != nil {
		return nil, err
	}

	product.Quantity = next
	return &Result{LedgerID: ledgerID, Product: product, PreviousQty: prev, NewQty: next}, nil
}

func (e *Engine) reject(kind entity.LedgerKind, err error) {
	reason := "error"
	switch {
	case errors.Is(err, domain.ErrInsufficientStock):
		reason = "insufficient_stock"
	case errors.Is(err, domain.ErrNotFound):
		reason = "not_found"
	case errors.Is(err, domain.ErrInvalidInput):
		reason = "invalid"
	case errors.Is(err, domain.ErrConsistencyViolation):
		reason = "consistency"
		e.log.Error().Err(err).Str("kind", string(kind)).Msg("violación de consistencia en mutación de stock")
	}
	e.metrics.MutationRejected(kind, reason)
}

func validateMutation(m Mutation) error {
	if m.ProductID == "" {
		return domain.Invalid("product_id", "requerido")
	}
	if m.Delta == 0 {
		return domain.Invalid("quantity", "no puede ser cero")
	}
	if m.Delta > entity.MaxQuantity || m.Delta < -entity.MaxQuantity {
		return domain.Invalid("quantity", "supera el máximo permitido")
	}
	switch m.Kind {
	case entity.LedgerInflow:
		if m.Delta < 0 {
			return domain.Invalid("quantity", "una entrada debe ser positiva")
		}
		if m.SupplierID == "" {
			return domain.Invalid("supplier_id", "requerido en entradas")
		}
		if m.SaleID != nil {
			return domain.Invalid("sale_id", "una entrada no referencia ventas")
		}
	case entity.LedgerOutflow:
		if m.Delta > 0 {
			return domain.Invalid("quantity", "una salida debe ser negativa")
		}
	default:
		return domain.Invalid("kind", "tipo de asiento desconocido")
	}
	return nil
}

// validateQuantity cantidad de una línea: positiva y dentro de MaxQuantity.
func validateQuantity(field string, quantity int) error {
	if quantity <= 0 {
		return domain.Invalid(field, "debe ser mayor que cero")
	}
	if quantity > entity.MaxQuantity {
		return domain.Invalid(field, "supera el máximo permitido")
	}
	return nil
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
