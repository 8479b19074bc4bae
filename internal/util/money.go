package util

import (
	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var idPrinter = message.NewPrinter(language.Indonesian)

// FormatCurrency renders an amount as whole rupiah with Indonesian digit
// grouping, e.g. "Rp 1.234.567". The fractional part is dropped.
func FormatCurrency(amount decimal.Decimal) string {
	n := amount.Truncate(0).IntPart()
	if n < 0 {
		return idPrinter.Sprintf("-Rp %d", -n)
	}
	return idPrinter.Sprintf("Rp %d", n)
}
