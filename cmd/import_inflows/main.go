// import_inflows registra una recepción de mercancía a partir de una planilla Excel.
//
// Uso: go run ./cmd/import_inflows planilla.xlsx [supplier_id]
// La planilla necesita columnas de código (barras, SKU o ID) y cantidad; las notas son opcionales.
// El lote completo se registra en una sola transacción: si una fila falla no entra ninguna.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/jhoicas/tienda-pos/internal/application/stock"
	"github.com/jhoicas/tienda-pos/internal/application/usecase"
	"github.com/jhoicas/tienda-pos/internal/infrastructure/excel"
	"github.com/jhoicas/tienda-pos/internal/infrastructure/postgres"
	"github.com/jhoicas/tienda-pos/pkg/config"
	"github.com/jhoicas/tienda-pos/pkg/logger"
	"github.com/jhoicas/tienda-pos/pkg/money"
)

func main() {
	if len(os.Args) < 2 {
		fmt.Fprintln(os.Stderr, "Uso: import_inflows planilla.xlsx [supplier_id]")
		os.Exit(2)
	}
	supplierID := ""
	if len(os.Args) > 2 {
		supplierID = os.Args[2]
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Cargar configuración: %v\n", err)
		os.Exit(1)
	}
	log := logger.New(logger.Config{Env: cfg.App.Env, Level: cfg.App.LogLevel})

	f, err := os.Open(os.Args[1])
	if err != nil {
		fmt.Fprintf(os.Stderr, "Abrir planilla: %v\n", err)
		os.Exit(1)
	}
	defer f.Close()

	rows, err := excel.ParseInflowRows(f)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Leer planilla: %v\n", err)
		os.Exit(1)
	}

	ctx := context.Background()
	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		log.Fatal().Err(err).Msg("conexión a PostgreSQL")
	}
	defer pool.Close()

	products := usecase.NewProductUseCase(postgres.NewProductRepository(pool))
	engine := stock.NewEngine(postgres.NewTxRunner(pool), log.Component("stock"))

	receipt := stock.BulkReceipt{SupplierID: supplierID, Lines: make([]stock.ReceiptLine, 0, len(rows))}
	for _, row := range rows {
		p, err := products.FindByCode(ctx, row.Code)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Fila %d (%s): %v\n", row.Line, row.Code, err)
			os.Exit(1)
		}
		receipt.Lines = append(receipt.Lines, stock.ReceiptLine{ProductID: p.ID, Quantity: row.Quantity, Notes: row.Notes})
	}

	res, err := engine.ReceiveBulk(ctx, receipt)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Registrar entradas: %v\n", err)
		os.Exit(1)
	}

	total := 0
	for _, e := range res.Entries {
		total += e.Quantity
		fmt.Printf("%-40s +%-8s stock: %s\n", e.ProductTitle, money.Quantity(e.Quantity), money.Quantity(e.NewStock))
	}
	fmt.Printf("%d entradas registradas (%s unidades) del proveedor %s\n",
		len(res.Entries), money.Quantity(total), res.Supplier.Name)
}
