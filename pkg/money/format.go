// Package money formatea importes para recibos y reportes (locale pt-BR, moneda de la tienda).
package money

import (
	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

// Symbol prefijo monetario de la tienda.
const Symbol = "R$"

var printer = message.NewPrinter(language.BrazilianPortuguese)

// Format devuelve el importe con dos decimales y separadores locales. Ej: 1234.5 → "R$ 1.234,50".
// Los importes negativos (descuento mayor al total) conservan el signo: "R$ -5,00".
func Format(d decimal.Decimal) string {
	f, _ := d.Round(2).Float64()
	return Symbol + " " + printer.Sprint(number.Decimal(f, number.Scale(2)))
}

// Quantity formatea cantidades enteras con separador de miles. Ej: 12000 → "12.000".
func Quantity(n int) string {
	return printer.Sprint(number.Decimal(n))
}
