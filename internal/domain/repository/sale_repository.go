package repository

import (
	"context"
	"time"

	"github.com/jhoicas/tienda-pos/internal/domain/entity"
)

// SaleFilter criterios de listado de ventas.
type SaleFilter struct {
	SellerID string
	Since    *time.Time
	Limit    int
	Offset   int
}

// SaleRepository persistencia del agregado venta (cabecera + ítems).
type SaleRepository interface {
	Create(ctx context.Context, sale *entity.Sale) error
	CreateItem(ctx context.Context, item *entity.SaleItem) error
	// UpdateTotals fija total, final y updated_at; solo se usa al finalizar la venta en su transacción.
	UpdateTotals(ctx context.Context, sale *entity.Sale) error
	GetByID(ctx context.Context, id string) (*entity.Sale, error)
	ListItems(ctx context.Context, saleID string) ([]*entity.SaleItem, error)
	List(ctx context.Context, filter SaleFilter) ([]*entity.Sale, error)
	// ListUnprojected devuelve IDs de ventas creadas antes de olderThan que aún no tienen salidas
	// y no agotaron entity.MaxProjectionAttempts. Primero las de menos intentos.
	ListUnprojected(ctx context.Context, olderThan time.Time, limit int) ([]string, error)
	// RecordProjectionFailure suma un intento fallido de proyección. Venta inexistente: sin efecto.
	RecordProjectionFailure(ctx context.Context, saleID, reason string, at time.Time) error
}
