package memory

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/jhoicas/tienda-pos/internal/application/stock"
	"github.com/jhoicas/tienda-pos/internal/domain"
	"github.com/jhoicas/tienda-pos/internal/domain/entity"
	"github.com/jhoicas/tienda-pos/internal/domain/repository"
)

var (
	_ repository.ProductRepository = (*productRepo)(nil)
	_ stock.QuantityStore          = (*quantityStore)(nil)
)

type productRepo struct {
	a   access
	now func() time.Time
}

func (r *productRepo) Create(ctx context.Context, p *entity.Product) error {
	return r.a.write(func(st *state) error {
		if _, ok := st.products[p.ID]; ok {
			return domain.ErrDuplicate
		}
		if err := checkUniqueCodes(st, p); err != nil {
			return err
		}
		row := *p
		row.Quantity = 0
		st.products[p.ID] = row
		p.Quantity = 0
		return nil
	})
}

func (r *productRepo) GetByID(ctx context.Context, id string) (*entity.Product, error) {
	return r.find(func(p entity.Product) bool { return p.ID == id })
}

// GetForUpdate: las transacciones en memoria ya están serializadas, basta con leer.
func (r *productRepo) GetForUpdate(ctx context.Context, id string) (*entity.Product, error) {
	return r.GetByID(ctx, id)
}

func (r *productRepo) GetByBarcode(ctx context.Context, barcode string) (*entity.Product, error) {
	if barcode == "" {
		return nil, nil
	}
	return r.find(func(p entity.Product) bool { return p.Barcode == barcode })
}

func (r *productRepo) GetBySKU(ctx context.Context, sku string) (*entity.Product, error) {
	if sku == "" {
		return nil, nil
	}
	return r.find(func(p entity.Product) bool { return p.SKU == sku })
}

func (r *productRepo) find(match func(entity.Product) bool) (*entity.Product, error) {
	var out *entity.Product
	err := r.a.read(func(st *state) error {
		for _, p := range st.products {
			if match(p) {
				cp := p
				out = &cp
				return nil
			}
		}
		return nil
	})
	return out, err
}

// Update reescribe los datos de catálogo conservando la cantidad almacenada.
func (r *productRepo) Update(ctx context.Context, p *entity.Product) error {
	return r.a.write(func(st *state) error {
		cur, ok := st.products[p.ID]
		if !ok {
			return domain.NotFound("producto", p.ID)
		}
		if err := checkUniqueCodes(st, p); err != nil {
			return err
		}
		row := *p
		row.Quantity = cur.Quantity
		row.CreatedAt = cur.CreatedAt
		st.products[p.ID] = row
		p.Quantity = cur.Quantity
		return nil
	})
}

func (r *productRepo) List(ctx context.Context, f repository.ProductFilter) ([]*entity.Product, error) {
	var out []*entity.Product
	err := r.a.read(func(st *state) error {
		q := strings.ToLower(strings.TrimSpace(f.Search))
		for _, p := range st.products {
			if f.ActiveOnly && !p.IsActive {
				continue
			}
			if f.InStockOnly && p.Quantity <= 0 {
				continue
			}
			if f.LowStockOnly && !p.IsLowStock() {
				continue
			}
			if q != "" && !strings.Contains(strings.ToLower(p.Title), q) &&
				!strings.Contains(strings.ToLower(p.Barcode), q) &&
				!strings.Contains(strings.ToLower(p.SKU), q) {
				continue
			}
			cp := p
			out = append(out, &cp)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Title == out[j].Title {
			return out[i].ID < out[j].ID
		}
		return out[i].Title < out[j].Title
	})
	return page(out, f.Limit, f.Offset), nil
}

func (r *productRepo) Delete(ctx context.Context, id string) error {
	return r.a.write(func(st *state) error {
		if _, ok := st.products[id]; !ok {
			return domain.NotFound("producto", id)
		}
		for _, in := range st.inflows {
			if in.ProductID == id {
				return domain.ErrProductReferenced
			}
		}
		for _, out := range st.outflows {
			if out.ProductID == id {
				return domain.ErrProductReferenced
			}
		}
		for _, items := range st.items {
			for _, it := range items {
				if it.ProductID == id {
					return domain.ErrProductReferenced
				}
			}
		}
		delete(st.products, id)
		return nil
	})
}

func checkUniqueCodes(st *state, p *entity.Product) error {
	for _, other := range st.products {
		if other.ID == p.ID {
			continue
		}
		if p.Barcode != "" && other.Barcode == p.Barcode {
			return domain.ErrDuplicate
		}
		if p.SKU != "" && other.SKU == p.SKU {
			return domain.ErrDuplicate
		}
	}
	return nil
}

type quantityStore struct {
	a   access
	now func() time.Time
}

func (q *quantityStore) SetQuantity(ctx context.Context, productID string, quantity int) error {
	return q.a.write(func(st *state) error {
		p, ok := st.products[productID]
		if !ok {
			return domain.NotFound("producto", productID)
		}
		p.Quantity = quantity
		p.UpdatedAt = q.now()
		st.products[productID] = p
		return nil
	})
}
