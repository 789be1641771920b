package usecase

import (
	"context"
	"strings"

	"github.com/jhoicas/tienda-pos/internal/application/dto"
	"github.com/jhoicas/tienda-pos/internal/domain/repository"
)

// CustomerSearchLimit máximo de clientes devueltos por la búsqueda de caja.
const CustomerSearchLimit = 10

// CustomerUseCase búsqueda de clientes para asociarlos a una venta.
type CustomerUseCase struct {
	repo repository.CustomerRepository
}

// NewCustomerUseCase construye el caso de uso.
func NewCustomerUseCase(repo repository.CustomerRepository) *CustomerUseCase {
	return &CustomerUseCase{repo: repo}
}

// Search busca por nombre, email o teléfono; menos de 2 caracteres devuelve lista vacía.
func (uc *CustomerUseCase) Search(ctx context.Context, q string) ([]dto.CustomerResponse, error) {
	q = strings.TrimSpace(q)
	if len([]rune(q)) < QuickSearchMinChars {
		return []dto.CustomerResponse{}, nil
	}
	list, err := uc.repo.Search(ctx, q, CustomerSearchLimit)
	if err != nil {
		return nil, err
	}
	out := make([]dto.CustomerResponse, 0, len(list))
	for _, c := range list {
		out = append(out, dto.CustomerResponse{
			ID:          c.ID,
			Name:        c.Name,
			DisplayName: c.DisplayName(),
			Email:       c.Email,
			Phone:       c.Phone,
		})
	}
	return out, nil
}
