// Package projection genera las salidas de stock de una venta después de su commit.
// La proyección es idempotente: una venta con al menos una salida ya está proyectada.
package projection

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/jhoicas/tienda-pos/internal/application/stock"
	"github.com/jhoicas/tienda-pos/internal/domain"
	"github.com/jhoicas/tienda-pos/internal/domain/entity"
)

// Outcome resultado de proyectar una venta.
type Outcome string

const (
	OutcomeProjected        Outcome = "projected"
	OutcomeAlreadyProjected Outcome = "already_projected"
)

// Projector crea una salida por ítem de venta a través del motor de stock.
type Projector struct {
	engine *stock.Engine
	log    zerolog.Logger
}

// NewProjector construye el proyector.
func NewProjector(engine *stock.Engine, log zerolog.Logger) *Projector {
	return &Projector{engine: engine, log: log}
}

// Project proyecta la venta en una sola transacción. Venta inexistente → ErrNotFound.
func (p *Projector) Project(ctx context.Context, saleID string) (Outcome, error) {
	var outcome Outcome
	err := p.engine.Within(ctx, func(s *stock.Scope) error {
		sale, err := s.Sales().GetByID(ctx, saleID)
		if err != nil {
			return fmt.Errorf("obtener venta: %w", err)
		}
		if sale == nil {
			return domain.NotFound("venta", saleID)
		}
		items, err := s.Sales().ListItems(ctx, saleID)
		if err != nil {
			return fmt.Errorf("obtener ítems: %w", err)
		}
		ids := make([]string, 0, len(items))
		for _, it := range items {
			ids = append(ids, it.ProductID)
		}
		// Bloquear antes de consultar: una proyección concurrente de la misma venta espera aquí
		// y, al continuar, ve las salidas ya confirmadas.
		locked, err := s.LockProducts(ctx, ids)
		if err != nil {
			return err
		}
		exists, err := s.Outflows().ExistsBySale(ctx, saleID)
		if err != nil {
			return fmt.Errorf("consultar salidas: %w", err)
		}
		if exists {
			outcome = OutcomeAlreadyProjected
			return nil
		}

		var customer *entity.Customer
		if sale.CustomerID != nil {
			if customer, err = s.Customers().GetByID(ctx, *sale.CustomerID); err != nil {
				return fmt.Errorf("obtener cliente: %w", err)
			}
		}
		for _, it := range items {
			_, err := s.Apply(ctx, stock.Mutation{
				ProductID:   it.ProductID,
				Delta:       -it.Quantity,
				Kind:        entity.LedgerOutflow,
				Description: entity.SaleOutflowDescription(sale.ID, locked[it.ProductID].Title, customer),
				SaleID:      &sale.ID,
			})
			if err != nil {
				return err
			}
		}
		outcome = OutcomeProjected
		return nil
	})
	if err != nil {
		return "", err
	}
	return outcome, nil
}
