package stock

import (
	"context"
	"fmt"
	"strings"

	"github.com/jhoicas/tienda-pos/internal/domain"
	"github.com/jhoicas/tienda-pos/internal/domain/entity"
)

// ScannerDescription descripción base de las entradas registradas desde el escáner.
const ScannerDescription = "Entrada vía escáner"

// ReceiptLine una línea de recepción: producto, unidades recibidas y observación opcional.
type ReceiptLine struct {
	ProductID string
	Quantity  int
	Notes     string
}

// BulkReceipt lote de recepción. Sin SupplierID se usa el primer proveedor registrado.
type BulkReceipt struct {
	SupplierID string
	Lines      []ReceiptLine
}

// ReceiptEntry resultado por línea recibida.
type ReceiptEntry struct {
	InflowID     string
	ProductID    string
	ProductTitle string
	Quantity     int
	NewStock     int
}

// BulkResult resultado del lote.
type BulkResult struct {
	Supplier *entity.Supplier
	Entries  []ReceiptEntry
}

// ReceiveBulk registra todas las líneas en una sola transacción: o entran todas o ninguna.
func (e *Engine) ReceiveBulk(ctx context.Context, in BulkReceipt) (*BulkResult, error) {
	if len(in.Lines) == 0 {
		return nil, domain.Invalid("products", "no se enviaron productos")
	}
	ids := make([]string, 0, len(in.Lines))
	for i, l := range in.Lines {
		if l.ProductID == "" {
			return nil, domain.Invalid(fmt.Sprintf("products[%d].id", i), "requerido")
		}
		if err := validateQuantity(fmt.Sprintf("products[%d].quantity", i), l.Quantity); err != nil {
			return nil, err
		}
		ids = append(ids, l.ProductID)
	}
	out := &BulkResult{Entries: make([]ReceiptEntry, 0, len(in.Lines))}
	err := e.Within(ctx, func(s *Scope) error {
		supplier, err := resolveSupplier(ctx, s, in.SupplierID)
		if err != nil {
			return err
		}
		out.Supplier = supplier

		if _, err := s.LockProducts(ctx, ids); err != nil {
			return err
		}
		for _, l := range in.Lines {
			res, err := s.Apply(ctx, Mutation{
				ProductID:   l.ProductID,
				Delta:       l.Quantity,
				Kind:        entity.LedgerInflow,
				Description: ScannerNote(l.Notes),
				SupplierID:  supplier.ID,
			})
			if err != nil {
				return err
			}
			out.Entries = append(out.Entries, ReceiptEntry{
				InflowID:     res.LedgerID,
				ProductID:    res.Product.ID,
				ProductTitle: res.Product.Title,
				Quantity:     l.Quantity,
				NewStock:     res.NewQty,
			})
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	e.log.Info().
		Str("supplier_id", out.Supplier.ID).
		Int("lines", len(out.Entries)).
		Msg("recepción en lote registrada")
	return out, nil
}

// Receive registra una entrada individual (formulario manual).
func (e *Engine) Receive(ctx context.Context, productID string, quantity int, supplierID, description string) (*Result, error) {
	if err := validateQuantity("quantity", quantity); err != nil {
		return nil, err
	}
	var res *Result
	err := e.Within(ctx, func(s *Scope) error {
		supplier, err := resolveSupplier(ctx, s, supplierID)
		if err != nil {
			return err
		}
		res, err = s.Apply(ctx, Mutation{
			ProductID:   productID,
			Delta:       quantity,
			Kind:        entity.LedgerInflow,
			Description: description,
			SupplierID:  supplier.ID,
		})
		return err
	})
	if err != nil {
		return nil, err
	}
	return res, nil
}

// ScannerNote descripción de una entrada del escáner con su observación.
func ScannerNote(notes string) string {
	if notes = strings.TrimSpace(notes); notes != "" {
		return ScannerDescription + " - " + notes
	}
	return ScannerDescription
}

func resolveSupplier(ctx context.Context, s *Scope, id string) (*entity.Supplier, error) {
	if id != "" {
		sup, err := s.Suppliers().GetByID(ctx, id)
		if err != nil {
			return nil, err
		}
		if sup == nil {
			return nil, domain.NotFound("proveedor", id)
		}
		return sup, nil
	}
	sup, err := s.Suppliers().First(ctx)
	if err != nil {
		return nil, err
	}
	if sup == nil {
		return nil, domain.ErrNoSupplier
	}
	return sup, nil
}
