// Package excel lee planillas de recepción de mercancía.
package excel

import (
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"
)

// InflowRow fila de la planilla: código del producto (barras, SKU o ID) y cantidad recibida.
type InflowRow struct {
	Line     int // número de fila en la hoja (1 = encabezado)
	Code     string
	Quantity int
	Notes    string
}

var (
	// ErrEmptySheet la planilla no tiene filas de datos.
	ErrEmptySheet = errors.New("planilla sin filas de datos")
)

var headerAliases = map[string]string{
	"code":             "code",
	"codigo":           "code",
	"código":           "code",
	"barcode":          "code",
	"codigo barras":    "code",
	"código barras":    "code",
	"codigo de barras": "code",
	"código de barras": "code",
	"sku":              "code",
	"producto":         "code",
	"quantity":         "quantity",
	"qty":              "quantity",
	"cantidad":         "quantity",
	"quantidade":       "quantity",
	"notes":            "notes",
	"notas":            "notes",
	"observaciones":    "notes",
	"observações":      "notes",
}

// ParseInflowRows lee la primera hoja. Las filas sin código se ignoran.
func ParseInflowRows(reader io.Reader) ([]InflowRow, error) {
	file, err := excelize.OpenReader(reader)
	if err != nil {
		return nil, fmt.Errorf("abrir planilla: %w", err)
	}
	defer file.Close()

	sheets := file.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("planilla sin hojas")
	}
	rows, err := file.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("leer filas: %w", err)
	}
	if len(rows) == 0 {
		return nil, ErrEmptySheet
	}

	cols := mapColumns(rows[0])
	for _, required := range []string{"code", "quantity"} {
		if _, ok := cols[required]; !ok {
			return nil, fmt.Errorf("falta la columna obligatoria: %s", required)
		}
	}

	result := make([]InflowRow, 0, len(rows)-1)
	for i := 1; i < len(rows); i++ {
		cells := rows[i]
		code := strings.TrimSpace(readCell(cells, cols["code"]))
		if code == "" {
			continue
		}
		qty, err := parseQuantity(readCell(cells, cols["quantity"]))
		if err != nil {
			return nil, fmt.Errorf("fila %d: cantidad inválida: %w", i+1, err)
		}
		row := InflowRow{Line: i + 1, Code: code, Quantity: qty}
		if idx, ok := cols["notes"]; ok {
			row.Notes = strings.TrimSpace(readCell(cells, idx))
		}
		result = append(result, row)
	}
	if len(result) == 0 {
		return nil, ErrEmptySheet
	}
	return result, nil
}

func mapColumns(header []string) map[string]int {
	mapped := make(map[string]int)
	for idx, col := range header {
		canonical, ok := headerAliases[normalizeHeader(col)]
		if !ok {
			continue
		}
		if _, exists := mapped[canonical]; !exists {
			mapped[canonical] = idx
		}
	}
	return mapped
}

func normalizeHeader(raw string) string {
	value := strings.TrimSpace(raw)
	value = strings.TrimPrefix(value, "\ufeff")
	value = strings.ToLower(value)
	value = strings.ReplaceAll(value, "_", " ")
	return strings.Join(strings.Fields(value), " ")
}

func readCell(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return row[idx]
}

// parseQuantity entero positivo; acepta "12" y "12.0".
func parseQuantity(raw string) (int, error) {
	value := strings.TrimSpace(raw)
	if value == "" {
		return 0, fmt.Errorf("vacía")
	}
	f, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return 0, fmt.Errorf("no es un número")
	}
	if math.Mod(f, 1) != 0 {
		return 0, fmt.Errorf("debe ser entera")
	}
	if f <= 0 {
		return 0, fmt.Errorf("debe ser mayor a cero")
	}
	return int(f), nil
}
