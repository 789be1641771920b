package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/tienda-pos/internal/application/stock"
	"github.com/jhoicas/tienda-pos/internal/domain"
	"github.com/jhoicas/tienda-pos/internal/domain/entity"
	"github.com/jhoicas/tienda-pos/internal/domain/repository"
)

var (
	_ repository.ProductRepository = (*ProductRepo)(nil)
	_ stock.QuantityStore          = (*QuantityRepo)(nil)
)

const productColumns = `id, title, description, COALESCE(barcode, ''), COALESCE(sku, ''), brand, size, color,
	cost_price, selling_price, quantity, min_stock, is_active, created_at, updated_at`

// ProductRepo implementación del puerto ProductRepository sobre PostgreSQL (usable con pool o tx).
type ProductRepo struct {
	q Querier
}

// NewProductRepository construye el adaptador de persistencia para productos. Pasar pool o tx (Querier).
func NewProductRepository(q Querier) *ProductRepo {
	return &ProductRepo{q: q}
}

// Create persiste un nuevo producto. Quantity inicia en 0 sin importar el valor recibido.
func (r *ProductRepo) Create(ctx context.Context, p *entity.Product) error {
	query := `
		INSERT INTO products (id, title, description, barcode, sku, brand, size, color,
			cost_price, selling_price, quantity, min_stock, is_active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, 0, $11, $12, $13, $14)`
	_, err := r.q.Exec(ctx, query,
		p.ID, p.Title, p.Description, nullIfEmpty(p.Barcode), nullIfEmpty(p.SKU), p.Brand, p.Size, p.Color,
		p.CostPrice, p.SellingPrice, p.MinStock, p.IsActive, p.CreatedAt, p.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("insert product: %w", err)
	}
	p.Quantity = 0
	return nil
}

// GetByID obtiene un producto por ID.
func (r *ProductRepo) GetByID(ctx context.Context, id string) (*entity.Product, error) {
	return r.getOne(ctx, `SELECT `+productColumns+` FROM products WHERE id = $1`, id)
}

// GetForUpdate obtiene el producto y bloquea la fila hasta el fin de la transacción.
func (r *ProductRepo) GetForUpdate(ctx context.Context, id string) (*entity.Product, error) {
	return r.getOne(ctx, `SELECT `+productColumns+` FROM products WHERE id = $1 FOR UPDATE`, id)
}

// GetByBarcode obtiene un producto por código de barras.
func (r *ProductRepo) GetByBarcode(ctx context.Context, barcode string) (*entity.Product, error) {
	if barcode == "" {
		return nil, nil
	}
	return r.getOne(ctx, `SELECT `+productColumns+` FROM products WHERE barcode = $1`, barcode)
}

// GetBySKU obtiene un producto por SKU.
func (r *ProductRepo) GetBySKU(ctx context.Context, sku string) (*entity.Product, error) {
	if sku == "" {
		return nil, nil
	}
	return r.getOne(ctx, `SELECT `+productColumns+` FROM products WHERE sku = $1`, sku)
}

func (r *ProductRepo) getOne(ctx context.Context, query string, arg any) (*entity.Product, error) {
	p, err := scanProduct(r.q.QueryRow(ctx, query, arg))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		// ids con formato inválido (uuid) equivalen a no encontrado
		if hasCode(err, "22P02") {
			return nil, nil
		}
		return nil, fmt.Errorf("get product: %w", err)
	}
	return p, nil
}

// Update actualiza los datos de catálogo. No modifica quantity (lo hace el motor de stock).
func (r *ProductRepo) Update(ctx context.Context, p *entity.Product) error {
	query := `
		UPDATE products SET title = $2, description = $3, barcode = $4, sku = $5, brand = $6, size = $7,
			color = $8, cost_price = $9, selling_price = $10, min_stock = $11, is_active = $12, updated_at = $13
		WHERE id = $1
		RETURNING quantity`
	err := r.q.QueryRow(ctx, query,
		p.ID, p.Title, p.Description, nullIfEmpty(p.Barcode), nullIfEmpty(p.SKU), p.Brand, p.Size,
		p.Color, p.CostPrice, p.SellingPrice, p.MinStock, p.IsActive, p.UpdatedAt,
	).Scan(&p.Quantity)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.NotFound("producto", p.ID)
		}
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("update product: %w", err)
	}
	return nil
}

// List lista productos según el filtro, ordenados por título.
func (r *ProductRepo) List(ctx context.Context, f repository.ProductFilter) ([]*entity.Product, error) {
	var (
		where []string
		args  []any
	)
	if f.ActiveOnly {
		where = append(where, "is_active")
	}
	if f.InStockOnly {
		where = append(where, "quantity > 0")
	}
	if f.LowStockOnly {
		where = append(where, "quantity <= min_stock")
	}
	if s := strings.TrimSpace(f.Search); s != "" {
		args = append(args, "%"+s+"%")
		n := len(args)
		where = append(where, fmt.Sprintf("(title ILIKE $%d OR barcode ILIKE $%d OR sku ILIKE $%d)", n, n, n))
	}
	query := `SELECT ` + productColumns + ` FROM products`
	if len(where) > 0 {
		query += ` WHERE ` + strings.Join(where, " AND ")
	}
	query += ` ORDER BY title, id`
	if f.Limit > 0 {
		args = append(args, f.Limit)
		query += fmt.Sprintf(` LIMIT $%d`, len(args))
	}
	if f.Offset > 0 {
		args = append(args, f.Offset)
		query += fmt.Sprintf(` OFFSET $%d`, len(args))
	}

	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	defer rows.Close()
	var list []*entity.Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, fmt.Errorf("scan product: %w", err)
		}
		list = append(list, p)
	}
	return list, rows.Err()
}

// Delete elimina un producto; si tiene movimientos o ventas la FK lo impide.
func (r *ProductRepo) Delete(ctx context.Context, id string) error {
	cmd, err := r.q.Exec(ctx, `DELETE FROM products WHERE id = $1`, id)
	if err != nil {
		if isForeignKeyViolation(err) {
			return domain.ErrProductReferenced
		}
		return fmt.Errorf("delete product: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.NotFound("producto", id)
	}
	return nil
}

func scanProduct(row pgx.Row) (*entity.Product, error) {
	var p entity.Product
	err := row.Scan(&p.ID, &p.Title, &p.Description, &p.Barcode, &p.SKU, &p.Brand, &p.Size, &p.Color,
		&p.CostPrice, &p.SellingPrice, &p.Quantity, &p.MinStock, &p.IsActive, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// QuantityRepo escritura del contador de stock. Solo se construye dentro de TxRunner.
type QuantityRepo struct {
	q Querier
}

func newQuantityRepository(q Querier) *QuantityRepo {
	return &QuantityRepo{q: q}
}

// SetQuantity fija la cantidad; el CHECK (quantity >= 0) de la tabla respalda la validación del motor.
func (r *QuantityRepo) SetQuantity(ctx context.Context, productID string, quantity int) error {
	cmd, err := r.q.Exec(ctx,
		`UPDATE products SET quantity = $2, updated_at = now() WHERE id = $1`,
		productID, quantity,
	)
	if err != nil {
		if isCheckViolation(err) {
			return fmt.Errorf("%w: cantidad negativa para %s", domain.ErrConsistencyViolation, productID)
		}
		return fmt.Errorf("set quantity: %w", err)
	}
	if cmd.RowsAffected() != 1 {
		return fmt.Errorf("%w: producto %s sin fila para actualizar", domain.ErrConsistencyViolation, productID)
	}
	return nil
}
