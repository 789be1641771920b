package postgres

import (
	"context"
	"fmt"
	"strings"

	"github.com/jhoicas/tienda-pos/internal/domain"
	"github.com/jhoicas/tienda-pos/internal/domain/entity"
	"github.com/jhoicas/tienda-pos/internal/domain/repository"
)

var (
	_ repository.InflowRepository  = (*InflowRepo)(nil)
	_ repository.OutflowRepository = (*OutflowRepo)(nil)
)

// InflowRepo libro de entradas sobre PostgreSQL (usable con pool o tx).
type InflowRepo struct {
	q Querier
}

// NewInflowRepository construye el adaptador. Pasar pool o tx (Querier).
func NewInflowRepository(q Querier) *InflowRepo {
	return &InflowRepo{q: q}
}

// Create inserta el asiento de entrada.
func (r *InflowRepo) Create(ctx context.Context, in *entity.Inflow) error {
	cmd, err := r.q.Exec(ctx, `
		INSERT INTO inflows (id, supplier_id, product_id, quantity, description, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		in.ID, in.SupplierID, in.ProductID, in.Quantity, in.Description, in.CreatedAt, in.UpdatedAt,
	)
	if err != nil {
		if isForeignKeyViolation(err) {
			return fmt.Errorf("%w: proveedor o producto de la entrada", domain.ErrNotFound)
		}
		return fmt.Errorf("insert inflow: %w", err)
	}
	if cmd.RowsAffected() != 1 {
		return fmt.Errorf("%w: entrada %s no insertada", domain.ErrConsistencyViolation, in.ID)
	}
	return nil
}

// List entradas más recientes primero.
func (r *InflowRepo) List(ctx context.Context, f repository.InflowFilter) ([]*entity.Inflow, error) {
	var (
		where []string
		args  []any
	)
	if f.ProductID != "" {
		args = append(args, f.ProductID)
		where = append(where, fmt.Sprintf("i.product_id = $%d", len(args)))
	}
	if t := strings.TrimSpace(f.ProductTitle); t != "" {
		args = append(args, "%"+t+"%")
		where = append(where, fmt.Sprintf("p.title ILIKE $%d", len(args)))
	}
	query := `
		SELECT i.id, i.supplier_id, i.product_id, i.quantity, i.description, i.created_at, i.updated_at
		FROM inflows i JOIN products p ON p.id = i.product_id`
	if len(where) > 0 {
		query += ` WHERE ` + strings.Join(where, " AND ")
	}
	query += ` ORDER BY i.created_at DESC, i.id` + pageClause(&args, f.Limit, f.Offset)

	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list inflows: %w", err)
	}
	defer rows.Close()
	var list []*entity.Inflow
	for rows.Next() {
		var in entity.Inflow
		if err := rows.Scan(&in.ID, &in.SupplierID, &in.ProductID, &in.Quantity, &in.Description, &in.CreatedAt, &in.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan inflow: %w", err)
		}
		list = append(list, &in)
	}
	return list, rows.Err()
}

// OutflowRepo libro de salidas sobre PostgreSQL (usable con pool o tx).
type OutflowRepo struct {
	q Querier
}

// NewOutflowRepository construye el adaptador. Pasar pool o tx (Querier).
func NewOutflowRepository(q Querier) *OutflowRepo {
	return &OutflowRepo{q: q}
}

// Create inserta el asiento de salida.
func (r *OutflowRepo) Create(ctx context.Context, o *entity.Outflow) error {
	cmd, err := r.q.Exec(ctx, `
		INSERT INTO outflows (id, product_id, quantity, description, sale_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		o.ID, o.ProductID, o.Quantity, o.Description, o.SaleID, o.CreatedAt, o.UpdatedAt,
	)
	if err != nil {
		if isForeignKeyViolation(err) {
			return fmt.Errorf("%w: producto o venta de la salida", domain.ErrNotFound)
		}
		return fmt.Errorf("insert outflow: %w", err)
	}
	if cmd.RowsAffected() != 1 {
		return fmt.Errorf("%w: salida %s no insertada", domain.ErrConsistencyViolation, o.ID)
	}
	return nil
}

// ExistsBySale indica si la venta ya tiene salidas.
func (r *OutflowRepo) ExistsBySale(ctx context.Context, saleID string) (bool, error) {
	var exists bool
	err := r.q.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM outflows WHERE sale_id = $1)`, saleID).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("exists outflows: %w", err)
	}
	return exists, nil
}

// CountBySale cantidad de salidas de la venta.
func (r *OutflowRepo) CountBySale(ctx context.Context, saleID string) (int, error) {
	var n int
	if err := r.q.QueryRow(ctx, `SELECT COUNT(*) FROM outflows WHERE sale_id = $1`, saleID).Scan(&n); err != nil {
		return 0, fmt.Errorf("count outflows: %w", err)
	}
	return n, nil
}

// List salidas más recientes primero.
func (r *OutflowRepo) List(ctx context.Context, f repository.OutflowFilter) ([]*entity.Outflow, error) {
	var (
		where []string
		args  []any
	)
	if f.SaleID != "" {
		args = append(args, f.SaleID)
		where = append(where, fmt.Sprintf("sale_id = $%d", len(args)))
	}
	if f.ProductID != "" {
		args = append(args, f.ProductID)
		where = append(where, fmt.Sprintf("product_id = $%d", len(args)))
	}
	query := `SELECT id, product_id, quantity, description, sale_id, created_at, updated_at FROM outflows`
	if len(where) > 0 {
		query += ` WHERE ` + strings.Join(where, " AND ")
	}
	query += ` ORDER BY created_at DESC, id` + pageClause(&args, f.Limit, f.Offset)

	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list outflows: %w", err)
	}
	defer rows.Close()
	var list []*entity.Outflow
	for rows.Next() {
		var o entity.Outflow
		if err := rows.Scan(&o.ID, &o.ProductID, &o.Quantity, &o.Description, &o.SaleID, &o.CreatedAt, &o.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan outflow: %w", err)
		}
		list = append(list, &o)
	}
	return list, rows.Err()
}

// pageClause agrega LIMIT/OFFSET como parámetros.
func pageClause(args *[]any, limit, offset int) string {
	var b strings.Builder
	if limit > 0 {
		*args = append(*args, limit)
		fmt.Fprintf(&b, " LIMIT $%d", len(*args))
	}
	if offset > 0 {
		*args = append(*args, offset)
		fmt.Fprintf(&b, " OFFSET $%d", len(*args))
	}
	return b.String()
}
