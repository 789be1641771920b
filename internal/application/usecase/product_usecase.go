package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/tienda-pos/internal/application/dto"
	"github.com/jhoicas/tienda-pos/internal/domain"
	"github.com/jhoicas/tienda-pos/internal/domain/entity"
	"github.com/jhoicas/tienda-pos/internal/domain/repository"
)

// Límites de la búsqueda rápida de caja.
const (
	QuickSearchMinChars = 2
	QuickSearchLimit    = 10
)

// ProductUseCase casos de uso de catálogo. El stock solo cambia vía el motor de stock.
type ProductUseCase struct {
	repo repository.ProductRepository
}

// NewProductUseCase construye el caso de uso.
func NewProductUseCase(repo repository.ProductRepository) *ProductUseCase {
	return &ProductUseCase{repo: repo}
}

// ProductListFilter filtros del listado de catálogo.
type ProductListFilter struct {
	Search       string
	LowStockOnly bool
	Page         dto.PageRequest
}

// Create crea un nuevo producto con stock 0.
func (uc *ProductUseCase) Create(ctx context.Context, in dto.CreateProductRequest) (*dto.ProductResponse, error) {
	now := time.Now()
	product := &entity.Product{
		ID:           uuid.New().String(),
		Title:        strings.TrimSpace(in.Title),
		Description:  in.Description,
		Barcode:      strings.TrimSpace(in.Barcode),
		SKU:          strings.TrimSpace(in.SKU),
		Brand:        in.Brand,
		Size:         in.Size,
		Color:        in.Color,
		CostPrice:    in.CostPrice,
		SellingPrice: in.SellingPrice,
		MinStock:     entity.DefaultMinStock,
		IsActive:     true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if in.MinStock != nil {
		product.MinStock = *in.MinStock
	}
	if err := validateProduct(product); err != nil {
		return nil, err
	}
	if err := uc.checkCodes(ctx, product); err != nil {
		return nil, err
	}
	if err := uc.repo.Create(ctx, product); err != nil {
		return nil, err
	}
	return toProductResponse(product), nil
}

// GetByID obtiene un producto por ID; nil si no existe.
func (uc *ProductUseCase) GetByID(ctx context.Context, id string) (*dto.ProductResponse, error) {
	product, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return toProductResponse(product), nil
}

// FindByCode busca un producto activo por código de barras, SKU o ID (escáner de caja y recepción).
func (uc *ProductUseCase) FindByCode(ctx context.Context, code string) (*dto.ProductResponse, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return nil, domain.Invalid("code", "requerido")
	}
	lookups := []func(context.Context, string) (*entity.Product, error){
		uc.repo.GetByBarcode, uc.repo.GetBySKU, uc.repo.GetByID,
	}
	for _, get := range lookups {
		p, err := get(ctx, code)
		if err != nil {
			return nil, err
		}
		if p != nil && p.IsActive {
			return toProductResponse(p), nil
		}
	}
	return nil, domain.NotFound("producto", code)
}

// Update actualiza datos de catálogo; Quantity no se toca.
func (uc *ProductUseCase) Update(ctx context.Context, id string, in dto.UpdateProductRequest) (*dto.ProductResponse, error) {
	product, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, nil
	}
	setString(&product.Title, in.Title)
	setString(&product.Description, in.Description)
	setString(&product.Barcode, in.Barcode)
	setString(&product.SKU, in.SKU)
	setString(&product.Brand, in.Brand)
	setString(&product.Size, in.Size)
	setString(&product.Color, in.Color)
	if in.CostPrice != nil {
		product.CostPrice = *in.CostPrice
	}
	if in.SellingPrice != nil {
		product.SellingPrice = *in.SellingPrice
	}
	if in.MinStock != nil {
		product.MinStock = *in.MinStock
	}
	if in.IsActive != nil {
		product.IsActive = *in.IsActive
	}
	if err := validateProduct(product); err != nil {
		return nil, err
	}
	if err := uc.checkCodes(ctx, product); err != nil {
		return nil, err
	}
	product.UpdatedAt = time.Now()
	if err := uc.repo.Update(ctx, product); err != nil {
		return nil, err
	}
	return toProductResponse(product), nil
}

// List lista productos activos con paginación.
func (uc *ProductUseCase) List(ctx context.Context, f ProductListFilter) (*dto.ProductListResponse, error) {
	f.Page.DefaultPage()
	list, err := uc.repo.List(ctx, repository.ProductFilter{
		Search:       strings.TrimSpace(f.Search),
		ActiveOnly:   true,
		LowStockOnly: f.LowStockOnly,
		Limit:        f.Page.Limit,
		Offset:       f.Page.Offset,
	})
	if err != nil {
		return nil, err
	}
	return &dto.ProductListResponse{
		Items: toProductResponses(list),
		Page:  dto.PageResponse{Limit: f.Page.Limit, Offset: f.Page.Offset},
	}, nil
}

// Search búsqueda rápida de caja: mínimo 2 caracteres, activos con stock, máximo 10.
func (uc *ProductUseCase) Search(ctx context.Context, q string) ([]dto.ProductResponse, error) {
	q = strings.TrimSpace(q)
	if len([]rune(q)) < QuickSearchMinChars {
		return []dto.ProductResponse{}, nil
	}
	list, err := uc.repo.List(ctx, repository.ProductFilter{
		Search:      q,
		ActiveOnly:  true,
		InStockOnly: true,
		Limit:       QuickSearchLimit,
	})
	if err != nil {
		return nil, err
	}
	return toProductResponses(list), nil
}

// Delete elimina un producto sin movimientos ni ventas (ErrProductReferenced en otro caso).
func (uc *ProductUseCase) Delete(ctx context.Context, id string) error {
	return uc.repo.Delete(ctx, id)
}

func (uc *ProductUseCase) checkCodes(ctx context.Context, p *entity.Product) error {
	if p.Barcode != "" {
		other, err := uc.repo.GetByBarcode(ctx, p.Barcode)
		if err != nil {
			return fmt.Errorf("verificar código de barras: %w", err)
		}
		if other != nil && other.ID != p.ID {
			return domain.ErrDuplicate
		}
	}
	if p.SKU != "" {
		other, err := uc.repo.GetBySKU(ctx, p.SKU)
		if err != nil {
			return fmt.Errorf("verificar SKU: %w", err)
		}
		if other != nil && other.ID != p.ID {
			return domain.ErrDuplicate
		}
	}
	return nil
}

func validateProduct(p *entity.Product) error {
	if p.Title == "" {
		return domain.Invalid("title", "requerido")
	}
	if len(p.Title) > 500 {
		return domain.Invalid("title", "máximo 500 caracteres")
	}
	if p.CostPrice.LessThan(decimal.Zero) {
		return domain.Invalid("cost_price", "no puede ser negativo")
	}
	if !entity.IsMoney(p.CostPrice) {
		return domain.Invalid("cost_price", "máximo 2 decimales")
	}
	if !entity.IsMoney(p.SellingPrice) {
		return domain.Invalid("selling_price", "máximo 2 decimales")
	}
	if !p.ValidatePrices() {
		return domain.Invalid("selling_price", "debe ser mayor que el precio de costo")
	}
	if p.MinStock < 0 {
		return domain.Invalid("min_stock", "no puede ser negativo")
	}
	return nil
}

func setString(dst *string, v *string) {
	if v != nil {
		*dst = strings.TrimSpace(*v)
	}
}

func toProductResponses(list []*entity.Product) []dto.ProductResponse {
	items := make([]dto.ProductResponse, 0, len(list))
	for _, p := range list {
		items = append(items, *toProductResponse(p))
	}
	return items
}

func toProductResponse(p *entity.Product) *dto.ProductResponse {
	if p == nil {
		return nil
	}
	return &dto.ProductResponse{
		ID:           p.ID,
		Title:        p.Title,
		DisplayName:  p.DisplayName(),
		Description:  p.Description,
		Barcode:      p.Barcode,
		SKU:          p.SKU,
		Brand:        p.Brand,
		Size:         p.Size,
		Color:        p.Color,
		CostPrice:    p.CostPrice,
		SellingPrice: p.SellingPrice,
		Quantity:     p.Quantity,
		MinStock:     p.MinStock,
		IsLowStock:   p.IsLowStock(),
		ProfitMargin: p.ProfitMargin(),
		IsActive:     p.IsActive,
		CreatedAt:    p.CreatedAt,
		UpdatedAt:    p.UpdatedAt,
	}
}
