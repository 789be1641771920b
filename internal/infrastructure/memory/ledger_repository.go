package memory

import (
	"context"
	"strings"

	"github.com/jhoicas/tienda-pos/internal/domain"
	"github.com/jhoicas/tienda-pos/internal/domain/entity"
	"github.com/jhoicas/tienda-pos/internal/domain/repository"
)

var (
	_ repository.InflowRepository  = (*inflowRepo)(nil)
	_ repository.OutflowRepository = (*outflowRepo)(nil)
)

type inflowRepo struct{ a access }

func (r *inflowRepo) Create(ctx context.Context, in *entity.Inflow) error {
	return r.a.write(func(st *state) error {
		if _, ok := st.products[in.ProductID]; !ok {
			return domain.NotFound("producto", in.ProductID)
		}
		st.inflows = append(st.inflows, *in)
		return nil
	})
}

// List más recientes primero.
func (r *inflowRepo) List(ctx context.Context, f repository.InflowFilter) ([]*entity.Inflow, error) {
	var out []*entity.Inflow
	err := r.a.read(func(st *state) error {
		title := strings.ToLower(strings.TrimSpace(f.ProductTitle))
		for i := len(st.inflows) - 1; i >= 0; i-- {
			in := st.inflows[i]
			if f.ProductID != "" && in.ProductID != f.ProductID {
				continue
			}
			if title != "" && !strings.Contains(strings.ToLower(st.products[in.ProductID].Title), title) {
				continue
			}
			cp := in
			out = append(out, &cp)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return page(out, f.Limit, f.Offset), nil
}

type outflowRepo struct{ a access }

func (r *outflowRepo) Create(ctx context.Context, o *entity.Outflow) error {
	return r.a.write(func(st *state) error {
		if _, ok := st.products[o.ProductID]; !ok {
			return domain.NotFound("producto", o.ProductID)
		}
		if o.SaleID != nil {
			if _, ok := st.sales[*o.SaleID]; !ok {
				return domain.NotFound("venta", *o.SaleID)
			}
		}
		st.outflows = append(st.outflows, *o)
		return nil
	})
}

func (r *outflowRepo) ExistsBySale(ctx context.Context, saleID string) (bool, error) {
	n, err := r.CountBySale(ctx, saleID)
	return n > 0, err
}

func (r *outflowRepo) CountBySale(ctx context.Context, saleID string) (int, error) {
	n := 0
	err := r.a.read(func(st *state) error {
		for _, o := range st.outflows {
			if o.SaleID != nil && *o.SaleID == saleID {
				n++
			}
		}
		return nil
	})
	return n, err
}

// List más recientes primero.
func (r *outflowRepo) List(ctx context.Context, f repository.OutflowFilter) ([]*entity.Outflow, error) {
	var out []*entity.Outflow
	err := r.a.read(func(st *state) error {
		for i := len(st.outflows) - 1; i >= 0; i-- {
			o := st.outflows[i]
			if f.ProductID != "" && o.ProductID != f.ProductID {
				continue
			}
			if f.SaleID != "" && (o.SaleID == nil || *o.SaleID != f.SaleID) {
				continue
			}
			cp := o
			out = append(out, &cp)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return page(out, f.Limit, f.Offset), nil
}
