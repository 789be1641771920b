package sales

import (
	"context"
	"fmt"
	"time"

	"github.com/jhoicas/tienda-pos/internal/application/dto"
	"github.com/jhoicas/tienda-pos/internal/domain"
	"github.com/jhoicas/tienda-pos/internal/domain/entity"
	"github.com/jhoicas/tienda-pos/internal/domain/repository"
)

// Filtros de fecha del listado.
const (
	DateFilterAll   = "all"
	DateFilterToday = "today"
	DateFilterWeek  = "week"
)

// ListFilter criterios del listado de ventas.
type ListFilter struct {
	DateFilter string
	SellerID   string
	Page       dto.PageRequest
}

// Get devuelve la venta con sus ítems.
func (uc *QuickSaleUseCase) Get(ctx context.Context, id string) (*dto.SaleResponse, error) {
	sale, err := uc.sales.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("obtener venta: %w", err)
	}
	if sale == nil {
		return nil, domain.NotFound("venta", id)
	}
	out, err := uc.toResponse(ctx, sale)
	if err != nil {
		return nil, err
	}
	items, err := uc.sales.ListItems(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("obtener ítems: %w", err)
	}
	out.Items = make([]dto.SaleItemResponse, 0, len(items))
	for _, it := range items {
		name, err := uc.productName(ctx, it.ProductID)
		if err != nil {
			return nil, err
		}
		out.Items = append(out.Items, dto.SaleItemResponse{
			ID:          it.ID,
			ProductID:   it.ProductID,
			ProductName: name,
			Quantity:    it.Quantity,
			UnitPrice:   it.UnitPrice,
			TotalPrice:  it.TotalPrice,
		})
	}
	return out, nil
}

// List ventas más recientes primero, filtradas por día o semana.
func (uc *QuickSaleUseCase) List(ctx context.Context, f ListFilter) (*dto.SaleListResponse, error) {
	since, err := uc.since(f.DateFilter)
	if err != nil {
		return nil, err
	}
	f.Page.DefaultPage()
	list, err := uc.sales.List(ctx, repository.SaleFilter{
		SellerID: f.SellerID,
		Since:    since,
		Limit:    f.Page.Limit,
		Offset:   f.Page.Offset,
	})
	if err != nil {
		return nil, fmt.Errorf("listar ventas: %w", err)
	}
	out := &dto.SaleListResponse{
		Items: make([]dto.SaleResponse, 0, len(list)),
		Page:  dto.PageResponse{Limit: f.Page.Limit, Offset: f.Page.Offset},
	}
	for _, s := range list {
		r, err := uc.toResponse(ctx, s)
		if err != nil {
			return nil, err
		}
		out.Items = append(out.Items, *r)
	}
	return out, nil
}

// Receipt genera el recibo PDF de la venta y el nombre de archivo sugerido.
func (uc *QuickSaleUseCase) Receipt(ctx context.Context, id string) ([]byte, string, error) {
	sale, err := uc.sales.GetByID(ctx, id)
	if err != nil {
		return nil, "", fmt.Errorf("obtener venta: %w", err)
	}
	if sale == nil {
		return nil, "", domain.NotFound("venta", id)
	}
	customer, err := uc.customer(ctx, sale)
	if err != nil {
		return nil, "", err
	}
	items, err := uc.sales.ListItems(ctx, id)
	if err != nil {
		return nil, "", fmt.Errorf("obtener ítems: %w", err)
	}
	data := ReceiptData{StoreName: uc.storeName, Sale: sale, Customer: customer}
	for _, it := range items {
		name, err := uc.productName(ctx, it.ProductID)
		if err != nil {
			return nil, "", err
		}
		data.Lines = append(data.Lines, ReceiptLine{
			ProductName: name,
			Quantity:    it.Quantity,
			UnitPrice:   it.UnitPrice,
			TotalPrice:  it.TotalPrice,
		})
	}
	pdf, err := uc.receipts.GenerateSaleReceipt(ctx, data)
	if err != nil {
		return nil, "", fmt.Errorf("generar recibo: %w", err)
	}
	return pdf, fmt.Sprintf("recibo-%s.pdf", sale.ID), nil
}

func (uc *QuickSaleUseCase) since(filter string) (*time.Time, error) {
	now := uc.now()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	switch filter {
	case "", DateFilterAll:
		return nil, nil
	case DateFilterToday:
		return &today, nil
	case DateFilterWeek:
		weekAgo := today.AddDate(0, 0, -7)
		return &weekAgo, nil
	}
	return nil, domain.Invalid("date_filter", "use today, week o all")
}

func (uc *QuickSaleUseCase) toResponse(ctx context.Context, s *entity.Sale) (*dto.SaleResponse, error) {
	customer, err := uc.customer(ctx, s)
	if err != nil {
		return nil, err
	}
	settled, err := uc.outflows.ExistsBySale(ctx, s.ID)
	if err != nil {
		return nil, fmt.Errorf("consultar salidas: %w", err)
	}
	out := &dto.SaleResponse{
		ID:            s.ID,
		SellerID:      s.SellerID,
		TotalAmount:   s.TotalAmount,
		Discount:      s.Discount,
		FinalAmount:   s.FinalAmount,
		PaymentMethod: string(s.PaymentMethod),
		Installments:  s.Installments,
		Notes:         s.Notes,
		StockSettled:  settled,
		CreatedAt:     s.CreatedAt,
	}
	if customer != nil {
		out.CustomerID = customer.ID
		out.CustomerName = customer.Name
	}
	return out, nil
}

func (uc *QuickSaleUseCase) customer(ctx context.Context, s *entity.Sale) (*entity.Customer, error) {
	if s.CustomerID == nil {
		return nil, nil
	}
	c, err := uc.customers.GetByID(ctx, *s.CustomerID)
	if err != nil {
		return nil, fmt.Errorf("obtener cliente: %w", err)
	}
	return c, nil
}

func (uc *QuickSaleUseCase) productName(ctx context.Context, id string) (string, error) {
	p, err := uc.products.GetByID(ctx, id)
	if err != nil {
		return "", fmt.Errorf("obtener producto: %w", err)
	}
	if p == nil {
		return id, nil
	}
	return p.DisplayName(), nil
}
