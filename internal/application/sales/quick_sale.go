package sales

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/tienda-pos/internal/application/dto"
	"github.com/jhoicas/tienda-pos/internal/application/stock"
	"github.com/jhoicas/tienda-pos/internal/domain"
	"github.com/jhoicas/tienda-pos/internal/domain/entity"
	"github.com/jhoicas/tienda-pos/internal/domain/repository"
)

// QuickSaleUseCase registra ventas de caja: cabecera, ítems y (en modo sync) las salidas de stock,
// todo en una transacción del motor de stock. Tras el commit encola la proyección de salidas.
type QuickSaleUseCase struct {
	engine    *stock.Engine
	products  repository.ProductRepository
	customers repository.CustomerRepository
	sales     repository.SaleRepository
	outflows  repository.OutflowReader
	queue     Enqueuer
	receipts  ReceiptGenerator
	mode      StockMode
	storeName string
	metrics   Metrics
	log       zerolog.Logger
	now       func() time.Time
}

// Option configura el caso de uso.
type Option func(*QuickSaleUseCase)

// WithMetrics registra las ventas en m.
func WithMetrics(m Metrics) Option {
	return func(uc *QuickSaleUseCase) {
		if m != nil {
			uc.metrics = m
		}
	}
}

// WithClock reemplaza el reloj (tests).
func WithClock(now func() time.Time) Option {
	return func(uc *QuickSaleUseCase) { uc.now = now }
}

// WithStoreName nombre de la tienda impreso en los recibos.
func WithStoreName(name string) Option {
	return func(uc *QuickSaleUseCase) { uc.storeName = name }
}

// NewQuickSaleUseCase construye el caso de uso. mode vacío equivale a StockModeSync.
func NewQuickSaleUseCase(
	engine *stock.Engine,
	products repository.ProductRepository,
	customers repository.CustomerRepository,
	sales repository.SaleRepository,
	outflows repository.OutflowReader,
	queue Enqueuer,
	receipts ReceiptGenerator,
	mode StockMode,
	log zerolog.Logger,
	opts ...Option,
) *QuickSaleUseCase {
	if mode == "" {
		mode = StockModeSync
	}
	uc := &QuickSaleUseCase{
		engine:    engine,
		products:  products,
		customers: customers,
		sales:     sales,
		outflows:  outflows,
		queue:     queue,
		receipts:  receipts,
		mode:      mode,
		storeName: "Tienda",
		metrics:   nopMetrics{},
		log:       log,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(uc)
	}
	return uc
}

// Process registra la venta. Ningún dato queda escrito si algún ítem falla.
func (uc *QuickSaleUseCase) Process(ctx context.Context, sellerID string, in dto.QuickSaleRequest) (*dto.QuickSaleResponse, error) {
	sale, err := uc.process(ctx, sellerID, in)
	if err != nil {
		uc.metrics.SaleRejected(rejectReason(err))
		return nil, err
	}
	uc.metrics.SaleCommitted(sale.PaymentMethod, sale.FinalAmount)

	if sale.FinalAmount.IsNegative() {
		uc.log.Warn().
			Str("event", "discount_exceeds_total").
			Str("sale_id", sale.ID).
			Str("total", sale.TotalAmount.StringFixed(2)).
			Str("discount", sale.Discount.StringFixed(2)).
			Msg("descuento mayor que el total de la venta")
	}

	// La venta ya está confirmada: si el encolado falla la recupera el barrido periódico.
	if err := uc.queue.Enqueue(context.WithoutCancel(ctx), sale.ID); err != nil {
		uc.log.Warn().Err(err).Str("sale_id", sale.ID).Msg("no se pudo encolar la proyección de salidas")
	}

	uc.log.Info().
		Str("sale_id", sale.ID).
		Str("seller_id", sale.SellerID).
		Str("final_amount", sale.FinalAmount.StringFixed(2)).
		Str("stock_mode", string(uc.mode)).
		Msg("venta registrada")

	return &dto.QuickSaleResponse{
		Success:     true,
		SaleID:      sale.ID,
		FinalAmount: sale.FinalAmount,
		Message:     fmt.Sprintf("Venta #%s realizada con éxito", sale.ID),
	}, nil
}

func (uc *QuickSaleUseCase) process(ctx context.Context, sellerID string, in dto.QuickSaleRequest) (*entity.Sale, error) {
	method, installments, err := validateSale(sellerID, in)
	if err != nil {
		return nil, err
	}

	var customer *entity.Customer
	if in.CustomerID != "" {
		customer, err = uc.customers.GetByID(ctx, in.CustomerID)
		if err != nil {
			return nil, fmt.Errorf("obtener cliente: %w", err)
		}
		if customer == nil {
			return nil, domain.NotFound("cliente", in.CustomerID)
		}
	}

	ids := make([]string, 0, len(in.Items))
	requested := make(map[string]int, len(in.Items))
	for _, it := range in.Items {
		ids = append(ids, it.ProductID)
		requested[it.ProductID] += it.Quantity
	}

	now := uc.now()
	sale := &entity.Sale{
		ID:            uuid.New().String(),
		SellerID:      sellerID,
		Discount:      in.Discount,
		PaymentMethod: method,
		Installments:  installments,
		Notes:         in.Notes,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if customer != nil {
		sale.CustomerID = &customer.ID
	}

	err = uc.engine.Within(ctx, func(s *stock.Scope) error {
		locked, err := s.LockProducts(ctx, ids)
		if err != nil {
			return err
		}
		// Autoriza la cantidad total pedida por producto contra el valor bloqueado.
		for _, it := range in.Items {
			p := locked[it.ProductID]
			if requested[p.ID] > p.Quantity {
				return &domain.InsufficientStockError{
					ProductID: p.ID,
					Title:     p.Title,
					Available: p.Quantity,
					Requested: requested[p.ID],
				}
			}
		}

		if err := s.Sales().Create(ctx, sale); err != nil {
			return fmt.Errorf("crear venta: %w", err)
		}
		items := make([]*entity.SaleItem, 0, len(in.Items))
		for _, it := range in.Items {
			price := it.UnitPrice
			if price.IsZero() {
				price = locked[it.ProductID].SellingPrice
			}
			item := entity.NewSaleItem(uuid.New().String(), sale.ID, it.ProductID, it.Quantity, price)
			if err := s.Sales().CreateItem(ctx, item); err != nil {
				return fmt.Errorf("crear ítem de venta: %w", err)
			}
			items = append(items, item)
		}
		sale.Finalize(items)
		if err := s.Sales().UpdateTotals(ctx, sale); err != nil {
			return fmt.Errorf("actualizar totales: %w", err)
		}

		if uc.mode != StockModeSync {
			return nil
		}
		for _, item := range items {
			_, err := s.Apply(ctx, stock.Mutation{
				ProductID:   item.ProductID,
				Delta:       -item.Quantity,
				Kind:        entity.LedgerOutflow,
				Description: entity.SaleOutflowDescription(sale.ID, locked[item.ProductID].Title, customer),
				SaleID:      &sale.ID,
			})
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return sale, nil
}

func validateSale(sellerID string, in dto.QuickSaleRequest) (entity.PaymentMethod, int, error) {
	if len(in.Items) == 0 {
		return "", 0, domain.ErrEmptySale
	}
	if sellerID == "" {
		return "", 0, domain.Invalid("seller_id", "requerido")
	}
	method := entity.PaymentMethod(in.PaymentMethod)
	if method == "" {
		method = entity.PaymentCash
	}
	if !method.Valid() {
		return "", 0, domain.Invalid("payment_method", "forma de pago no admitida")
	}
	installments := in.Installments
	if installments == 0 {
		installments = 1
	}
	if installments < 1 {
		return "", 0, domain.Invalid("installments", "debe ser al menos 1")
	}
	if in.Discount.IsNegative() {
		return "", 0, domain.Invalid("discount", "no puede ser negativo")
	}
	if !entity.IsMoney(in.Discount) {
		return "", 0, domain.Invalid("discount", "máximo 2 decimales")
	}
	// La suma por producto se hace en int64: cada línea está acotada, la suma no desborda.
	perProduct := make(map[string]int64, len(in.Items))
	for i, it := range in.Items {
		if it.ProductID == "" {
			return "", 0, domain.Invalid(fmt.Sprintf("items[%d].product_id", i), "requerido")
		}
		if it.Quantity <= 0 {
			return "", 0, domain.Invalid(fmt.Sprintf("items[%d].quantity", i), "debe ser mayor que cero")
		}
		if it.Quantity > entity.MaxQuantity {
			return "", 0, domain.Invalid(fmt.Sprintf("items[%d].quantity", i), "supera el máximo permitido")
		}
		perProduct[it.ProductID] += int64(it.Quantity)
		if perProduct[it.ProductID] > entity.MaxQuantity {
			return "", 0, domain.Invalid(fmt.Sprintf("items[%d].quantity", i), "la cantidad total del producto supera el máximo permitido")
		}
		if it.UnitPrice.LessThan(decimal.Zero) {
			return "", 0, domain.Invalid(fmt.Sprintf("items[%d].unit_price", i), "no puede ser negativo")
		}
		if !entity.IsMoney(it.UnitPrice) {
			return "", 0, domain.Invalid(fmt.Sprintf("items[%d].unit_price", i), "máximo 2 decimales")
		}
	}
	return method, installments, nil
}

func rejectReason(err error) string {
	switch {
	case errors.Is(err, domain.ErrEmptySale):
		return "empty_sale"
	case errors.Is(err, domain.ErrInsufficientStock):
		return "insufficient_stock"
	case errors.Is(err, domain.ErrNotFound):
		return "not_found"
	case errors.Is(err, domain.ErrInvalidInput):
		return "invalid"
	}
	return "error"
}
