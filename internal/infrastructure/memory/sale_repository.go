package memory

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/jhoicas/tienda-pos/internal/domain"
	"github.com/jhoicas/tienda-pos/internal/domain/entity"
	"github.com/jhoicas/tienda-pos/internal/domain/repository"
)

var (
	_ repository.SaleRepository     = (*saleRepo)(nil)
	_ repository.CustomerRepository = (*customerRepo)(nil)
	_ repository.SupplierRepository = (*supplierRepo)(nil)
)

type saleRepo struct{ a access }

func (r *saleRepo) Create(ctx context.Context, s *entity.Sale) error {
	return r.a.write(func(st *state) error {
		if _, ok := st.sales[s.ID]; ok {
			return domain.ErrDuplicate
		}
		if s.CustomerID != nil {
			if _, ok := st.customers[*s.CustomerID]; !ok {
				return domain.NotFound("cliente", *s.CustomerID)
			}
		}
		st.sales[s.ID] = *s
		st.saleOrder = append(st.saleOrder, s.ID)
		return nil
	})
}

func (r *saleRepo) CreateItem(ctx context.Context, it *entity.SaleItem) error {
	return r.a.write(func(st *state) error {
		if _, ok := st.sales[it.SaleID]; !ok {
			return domain.NotFound("venta", it.SaleID)
		}
		if _, ok := st.products[it.ProductID]; !ok {
			return domain.NotFound("producto", it.ProductID)
		}
		st.items[it.SaleID] = append(st.items[it.SaleID], *it)
		return nil
	})
}

func (r *saleRepo) UpdateTotals(ctx context.Context, s *entity.Sale) error {
	return r.a.write(func(st *state) error {
		cur, ok := st.sales[s.ID]
		if !ok {
			return domain.NotFound("venta", s.ID)
		}
		cur.TotalAmount = s.TotalAmount
		cur.FinalAmount = s.FinalAmount
		cur.UpdatedAt = s.UpdatedAt
		st.sales[s.ID] = cur
		return nil
	})
}

func (r *saleRepo) GetByID(ctx context.Context, id string) (*entity.Sale, error) {
	var out *entity.Sale
	err := r.a.read(func(st *state) error {
		if s, ok := st.sales[id]; ok {
			out = &s
		}
		return nil
	})
	return out, err
}

func (r *saleRepo) ListItems(ctx context.Context, saleID string) ([]*entity.SaleItem, error) {
	var out []*entity.SaleItem
	err := r.a.read(func(st *state) error {
		for _, it := range st.items[saleID] {
			cp := it
			out = append(out, &cp)
		}
		return nil
	})
	return out, err
}

// List más recientes primero.
func (r *saleRepo) List(ctx context.Context, f repository.SaleFilter) ([]*entity.Sale, error) {
	var out []*entity.Sale
	err := r.a.read(func(st *state) error {
		for i := len(st.saleOrder) - 1; i >= 0; i-- {
			s := st.sales[st.saleOrder[i]]
			if f.SellerID != "" && s.SellerID != f.SellerID {
				continue
			}
			if f.Since != nil && s.CreatedAt.Before(*f.Since) {
				continue
			}
			cp := s
			out = append(out, &cp)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return page(out, f.Limit, f.Offset), nil
}

// ListUnprojected ventas con ítems, anteriores a olderThan, sin ninguna salida asociada y con
// intentos disponibles; primero las de menos intentos, luego las más antiguas.
func (r *saleRepo) ListUnprojected(ctx context.Context, olderThan time.Time, limit int) ([]string, error) {
	var pending []entity.Sale
	attempts := make(map[string]int)
	err := r.a.read(func(st *state) error {
		projected := make(map[string]bool)
		for _, o := range st.outflows {
			if o.SaleID != nil {
				projected[*o.SaleID] = true
			}
		}
		for _, id := range st.saleOrder {
			s := st.sales[id]
			n := st.failures[id].attempts
			if projected[id] || len(st.items[id]) == 0 || !s.CreatedAt.Before(olderThan) || n >= entity.MaxProjectionAttempts {
				continue
			}
			attempts[id] = n
			pending = append(pending, s)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.SliceStable(pending, func(i, j int) bool {
		a, b := pending[i], pending[j]
		if attempts[a.ID] != attempts[b.ID] {
			return attempts[a.ID] < attempts[b.ID]
		}
		if !a.CreatedAt.Equal(b.CreatedAt) {
			return a.CreatedAt.Before(b.CreatedAt)
		}
		return a.ID < b.ID
	})
	ids := make([]string, 0, len(pending))
	for _, s := range pending {
		ids = append(ids, s.ID)
	}
	return page(ids, limit, 0), nil
}

// RecordProjectionFailure suma un intento fallido a la venta.
func (r *saleRepo) RecordProjectionFailure(ctx context.Context, saleID, reason string, at time.Time) error {
	return r.a.write(func(st *state) error {
		if _, ok := st.sales[saleID]; !ok {
			return nil
		}
		f := st.failures[saleID]
		st.failures[saleID] = projectionFailure{attempts: f.attempts + 1, reason: reason, at: at}
		return nil
	})
}

type customerRepo struct{ a access }

func (r *customerRepo) GetByID(ctx context.Context, id string) (*entity.Customer, error) {
	var out *entity.Customer
	err := r.a.read(func(st *state) error {
		if c, ok := st.customers[id]; ok {
			out = &c
		}
		return nil
	})
	return out, err
}

// Search clientes activos por nombre, email o teléfono, ordenados por nombre.
func (r *customerRepo) Search(ctx context.Context, query string, limit int) ([]*entity.Customer, error) {
	q := strings.ToLower(strings.TrimSpace(query))
	var out []*entity.Customer
	err := r.a.read(func(st *state) error {
		for _, c := range st.customers {
			if !c.IsActive {
				continue
			}
			if strings.Contains(strings.ToLower(c.Name), q) ||
				strings.Contains(strings.ToLower(c.Email), q) ||
				strings.Contains(c.Phone, q) {
				cp := c
				out = append(out, &cp)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return page(out, limit, 0), nil
}

type supplierRepo struct{ a access }

func (r *supplierRepo) GetByID(ctx context.Context, id string) (*entity.Supplier, error) {
	var out *entity.Supplier
	err := r.a.read(func(st *state) error {
		for _, s := range st.suppliers {
			if s.ID == id {
				cp := s
				out = &cp
				return nil
			}
		}
		return nil
	})
	return out, err
}

func (r *supplierRepo) First(ctx context.Context) (*entity.Supplier, error) {
	var out *entity.Supplier
	err := r.a.read(func(st *state) error {
		if len(st.suppliers) > 0 {
			cp := st.suppliers[0]
			out = &cp
		}
		return nil
	})
	return out, err
}
