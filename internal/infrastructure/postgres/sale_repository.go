package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/tienda-pos/internal/domain"
	"github.com/jhoicas/tienda-pos/internal/domain/entity"
	"github.com/jhoicas/tienda-pos/internal/domain/repository"
)

var _ repository.SaleRepository = (*SaleRepo)(nil)

const saleColumns = `id, customer_id, seller_id, total_amount, discount, final_amount, payment_method,
	installments, notes, created_at, updated_at`

// SaleRepo persistencia de ventas e ítems (usable con pool o tx).
type SaleRepo struct {
	q Querier
}

// NewSaleRepository construye el adaptador. Pasar pool o tx (Querier).
func NewSaleRepository(q Querier) *SaleRepo {
	return &SaleRepo{q: q}
}

// Create inserta la cabecera de la venta.
func (r *SaleRepo) Create(ctx context.Context, s *entity.Sale) error {
	_, err := r.q.Exec(ctx, `
		INSERT INTO sales (`+saleColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
		s.ID, s.CustomerID, s.SellerID, s.TotalAmount, s.Discount, s.FinalAmount, string(s.PaymentMethod),
		s.Installments, s.Notes, s.CreatedAt, s.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		if isForeignKeyViolation(err) {
			return fmt.Errorf("%w: cliente de la venta", domain.ErrNotFound)
		}
		return fmt.Errorf("insert sale: %w", err)
	}
	return nil
}

// CreateItem inserta una línea de la venta.
func (r *SaleRepo) CreateItem(ctx context.Context, it *entity.SaleItem) error {
	_, err := r.q.Exec(ctx, `
		INSERT INTO sale_items (id, sale_id, product_id, quantity, unit_price, total_price)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		it.ID, it.SaleID, it.ProductID, it.Quantity, it.UnitPrice, it.TotalPrice,
	)
	if err != nil {
		if isForeignKeyViolation(err) {
			return fmt.Errorf("%w: venta o producto del ítem", domain.ErrNotFound)
		}
		return fmt.Errorf("insert sale item: %w", err)
	}
	return nil
}

// UpdateTotals fija los totales calculados.
func (r *SaleRepo) UpdateTotals(ctx context.Context, s *entity.Sale) error {
	cmd, err := r.q.Exec(ctx,
		`UPDATE sales SET total_amount = $2, final_amount = $3, updated_at = $4 WHERE id = $1`,
		s.ID, s.TotalAmount, s.FinalAmount, s.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update sale totals: %w", err)
	}
	if cmd.RowsAffected() != 1 {
		return fmt.Errorf("%w: venta %s sin fila para totales", domain.ErrConsistencyViolation, s.ID)
	}
	return nil
}

// GetByID obtiene la cabecera de una venta.
func (r *SaleRepo) GetByID(ctx context.Context, id string) (*entity.Sale, error) {
	s, err := scanSale(r.q.QueryRow(ctx, `SELECT `+saleColumns+` FROM sales WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) || hasCode(err, "22P02") {
			return nil, nil
		}
		return nil, fmt.Errorf("get sale: %w", err)
	}
	return s, nil
}

// ListItems ítems de la venta en orden de inserción.
func (r *SaleRepo) ListItems(ctx context.Context, saleID string) ([]*entity.SaleItem, error) {
	rows, err := r.q.Query(ctx, `
		SELECT id, sale_id, product_id, quantity, unit_price, total_price
		FROM sale_items WHERE sale_id = $1 ORDER BY seq`, saleID)
	if err != nil {
		return nil, fmt.Errorf("list sale items: %w", err)
	}
	defer rows.Close()
	var list []*entity.SaleItem
	for rows.Next() {
		var it entity.SaleItem
		if err := rows.Scan(&it.ID, &it.SaleID, &it.ProductID, &it.Quantity, &it.UnitPrice, &it.TotalPrice); err != nil {
			return nil, fmt.Errorf("scan sale item: %w", err)
		}
		list = append(list, &it)
	}
	return list, rows.Err()
}

// List ventas más recientes primero.
func (r *SaleRepo) List(ctx context.Context, f repository.SaleFilter) ([]*entity.Sale, error) {
	var (
		where []string
		args  []any
	)
	if f.SellerID != "" {
		args = append(args, f.SellerID)
		where = append(where, fmt.Sprintf("seller_id = $%d", len(args)))
	}
	if f.Since != nil {
		args = append(args, *f.Since)
		where = append(where, fmt.Sprintf("created_at >= $%d", len(args)))
	}
	query := `SELECT ` + saleColumns + ` FROM sales`
	if len(where) > 0 {
		query += ` WHERE ` + strings.Join(where, " AND ")
	}
	query += ` ORDER BY created_at DESC, id` + pageClause(&args, f.Limit, f.Offset)

	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list sales: %w", err)
	}
	defer rows.Close()
	var list []*entity.Sale
	for rows.Next() {
		s, err := scanSale(rows)
		if err != nil {
			return nil, fmt.Errorf("scan sale: %w", err)
		}
		list = append(list, s)
	}
	return list, rows.Err()
}

// ListUnprojected ventas con ítems, anteriores a olderThan, sin salidas y con intentos disponibles.
func (r *SaleRepo) ListUnprojected(ctx context.Context, olderThan time.Time, limit int) ([]string, error) {
	rows, err := r.q.Query(ctx, `
		SELECT s.id FROM sales s
		WHERE s.created_at < $1
		  AND s.projection_attempts < $3
		  AND EXISTS (SELECT 1 FROM sale_items i WHERE i.sale_id = s.id)
		  AND NOT EXISTS (SELECT 1 FROM outflows o WHERE o.sale_id = s.id)
		ORDER BY s.projection_attempts, s.created_at, s.id
		LIMIT $2`, olderThan, limit, entity.MaxProjectionAttempts)
	if err != nil {
		return nil, fmt.Errorf("list unprojected sales: %w", err)
	}
	defer rows.Close()
	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan sale id: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// RecordProjectionFailure incrementa projection_attempts y guarda el último motivo.
func (r *SaleRepo) RecordProjectionFailure(ctx context.Context, saleID, reason string, at time.Time) error {
	_, err := r.q.Exec(ctx, `
		UPDATE sales SET projection_attempts = projection_attempts + 1,
			projection_error = $2, projection_failed_at = $3
		WHERE id = $1`, saleID, reason, at)
	if err != nil {
		if hasCode(err, "22P02") {
			return nil
		}
		return fmt.Errorf("record projection failure: %w", err)
	}
	return nil
}

func scanSale(row pgx.Row) (*entity.Sale, error) {
	var (
		s      entity.Sale
		method string
	)
	err := row.Scan(&s.ID, &s.CustomerID, &s.SellerID, &s.TotalAmount, &s.Discount, &s.FinalAmount, &method,
		&s.Installments, &s.Notes, &s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		return nil, err
	}
	s.PaymentMethod = entity.PaymentMethod(method)
	return &s, nil
}
