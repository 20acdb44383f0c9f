package httphandler

import (
	"testing"

	"github.com/niksmo/refsearch/internal/core/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestFormat(t *testing.T) {
	dec := func(s string) decimal.NullDecimal {
		return decimal.NewNullDecimal(decimal.RequireFromString(s))
	}

	t.Run("EUR", func(t *testing.T) {
		assert.Equal(t, "€ 1,234.50", formatEUR(decimal.RequireFromString("1234.5")))
		assert.Equal(t, "€ 85.00", formatEUR(decimal.NewFromInt(85)))
		assert.Equal(t, "€ 1,000,000.01", formatEUR(decimal.RequireFromString("1000000.005")))
	})

	t.Run("NullPriceIsUnknown", func(t *testing.T) {
		assert.Equal(t, "n/a", formatPrice(decimal.NullDecimal{}))
		assert.Equal(t, "€ 0.00", formatPrice(dec("0")))
	})

	t.Run("NullPercentIsBlank", func(t *testing.T) {
		assert.Empty(t, formatPercent(decimal.NullDecimal{}))
		assert.Equal(t, "15%", formatPercent(dec("15")))
		assert.Equal(t, "0%", formatPercent(dec("0")))
		assert.Equal(t, "12%", formatPercent(dec("12.5")))
		assert.Equal(t, "14%", formatPercent(dec("13.5")))
		assert.Equal(t, "13%", formatPercent(dec("12.6")))
		assert.Equal(t, "100%", formatPercent(dec("99.95")))
	})

	t.Run("Quote", func(t *testing.T) {
		d := formatQuote(domain.Quote{
			ListPrice:       dec("100"),
			DiscountedPrice: dec("100"),
		})
		assert.Equal(t, QuoteDisplay{
			ListPrice:       "€ 100.00",
			DiscountPercent: "",
			DiscountedPrice: "€ 100.00",
		}, d)

		d = formatQuote(domain.Quote{DiscountPercent: dec("15")})
		assert.Equal(t, "n/a", d.ListPrice)
		assert.Equal(t, "n/a", d.DiscountedPrice)
		assert.Equal(t, "15%", d.DiscountPercent)
	})
}
