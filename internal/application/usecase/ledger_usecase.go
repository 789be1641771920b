package usecase

import (
	"context"

	"github.com/jhoicas/tienda-pos/internal/application/dto"
	"github.com/jhoicas/tienda-pos/internal/domain/repository"
)

// LedgerUseCase consultas de los libros de entradas y salidas.
type LedgerUseCase struct {
	inflows  repository.InflowRepository
	outflows repository.OutflowReader
}

// NewLedgerUseCase construye el caso de uso.
func NewLedgerUseCase(inflows repository.InflowRepository, outflows repository.OutflowReader) *LedgerUseCase {
	return &LedgerUseCase{inflows: inflows, outflows: outflows}
}

// ListInflows entradas más recientes primero; productTitle filtra por nombre del producto.
func (uc *LedgerUseCase) ListInflows(ctx context.Context, productTitle string, page dto.PageRequest) ([]dto.InflowResponse, error) {
	page.DefaultPage()
	list, err := uc.inflows.List(ctx, repository.InflowFilter{ProductTitle: productTitle, Limit: page.Limit, Offset: page.Offset})
	if err != nil {
		return nil, err
	}
	out := make([]dto.InflowResponse, 0, len(list))
	for _, in := range list {
		out = append(out, dto.InflowResponse{
			ID:          in.ID,
			SupplierID:  in.SupplierID,
			ProductID:   in.ProductID,
			Quantity:    in.Quantity,
			Description: in.Description,
			CreatedAt:   in.CreatedAt,
		})
	}
	return out, nil
}

// ListOutflows salidas más recientes primero, por venta o producto.
func (uc *LedgerUseCase) ListOutflows(ctx context.Context, saleID, productID string, page dto.PageRequest) ([]dto.OutflowResponse, error) {
	page.DefaultPage()
	list, err := uc.outflows.List(ctx, repository.OutflowFilter{SaleID: saleID, ProductID: productID, Limit: page.Limit, Offset: page.Offset})
	if err != nil {
		return nil, err
	}
	out := make([]dto.OutflowResponse, 0, len(list))
	for _, o := range list {
		r := dto.OutflowResponse{
			ID:          o.ID,
			ProductID:   o.ProductID,
			Quantity:    o.Quantity,
			Description: o.Description,
			CreatedAt:   o.CreatedAt,
		}
		if o.SaleID != nil {
			r.SaleID = *o.SaleID
		}
		out = append(out, r)
	}
	return out, nil
}
