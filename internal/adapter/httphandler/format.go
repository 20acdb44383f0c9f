package httphandler

import (
	"github.com/dustin/go-humanize"
	"github.com/niksmo/refsearch/internal/core/domain"
	"github.com/shopspring/decimal"
)

const unknownPrice = "n/a"

// formatEUR renders an amount as "€ 1,234.50".
func formatEUR(d decimal.Decimal) string {
	return "€ " + humanize.FormatFloat("#,###.##", d.Round(2).InexactFloat64())
}

// formatPrice renders a null price as unknown.
func formatPrice(d decimal.NullDecimal) string {
	if !d.Valid {
		return unknownPrice
	}
	return formatEUR(d.Decimal)
}

// formatPercent renders a percentage rounded half to even to a whole
// number, and a null percentage as blank. The raw value stays in the
// JSON quote.
func formatPercent(d decimal.NullDecimal) string {
	if !d.Valid {
		return ""
	}
	return d.Decimal.RoundBank(0).String() + "%"
}

func formatQuote(q domain.Quote) QuoteDisplay {
	return QuoteDisplay{
		ListPrice:       formatPrice(q.ListPrice),
		DiscountPercent: formatPercent(q.DiscountPercent),
		DiscountedPrice: formatPrice(q.DiscountedPrice),
	}
}
