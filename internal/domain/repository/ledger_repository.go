package repository

import (
	"context"

	"github.com/jhoicas/tienda-pos/internal/domain/entity"
)

// InflowFilter criterios de listado de entradas.
type InflowFilter struct {
	ProductID    string
	ProductTitle string // contiene, sin distinguir mayúsculas
	Limit        int
	Offset       int
}

// InflowRepository libro de entradas (solo inserción y consulta).
type InflowRepository interface {
	Create(ctx context.Context, inflow *entity.Inflow) error
	List(ctx context.Context, filter InflowFilter) ([]*entity.Inflow, error)
}

// OutflowFilter criterios de listado de salidas.
type OutflowFilter struct {
	SaleID    string
	ProductID string
	Limit     int
	Offset    int
}

// OutflowReader consultas sobre el libro de salidas.
type OutflowReader interface {
	ExistsBySale(ctx context.Context, saleID string) (bool, error)
	CountBySale(ctx context.Context, saleID string) (int, error)
	List(ctx context.Context, filter OutflowFilter) ([]*entity.Outflow, error)
}

// OutflowRepository libro de salidas (solo inserción y consulta).
type OutflowRepository interface {
	OutflowReader
	Create(ctx context.Context, outflow *entity.Outflow) error
}
