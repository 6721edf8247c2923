package utils

import (
	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"gadgetplan-api/models"
)

var idPrinter = message.NewPrinter(language.Indonesian)

// FormatRupiah renders whole rupiah with Indonesian grouping, e.g. Rp1.500.000.
func FormatRupiah(amount decimal.Decimal) string {
	return "Rp" + idPrinter.Sprintf("%d", amount.Round(0).IntPart())
}

func FormatMoney(m models.Money) string {
	if m.Currency != models.StoreCurrency {
		return m.Amount.StringFixed(2) + " " + m.CurrencyCode()
	}
	return FormatRupiah(m.Amount)
}

func FormatPriceRange(r models.PriceRange) string {
	return FormatRupiah(r.Min) + " - " + FormatRupiah(r.Max)
}
