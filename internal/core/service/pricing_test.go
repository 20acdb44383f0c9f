package service_test

import (
	"testing"

	"github.com/niksmo/refsearch/internal/core/domain"
	"github.com/niksmo/refsearch/internal/core/service"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPrice(t *testing.T) {
	row := func(list, limit decimal.NullDecimal) domain.CombinedRow {
		return domain.CombinedRow{
			CatalogRow:       domain.CatalogRow{ListPrice: list},
			SalesPersonLimit: limit,
		}
	}

	t.Run("DiscountApplied", func(t *testing.T) {
		q := service.Price(row(nullDec("100.00"), nullDec("15")))
		require.True(t, q.DiscountedPrice.Valid)
		assert.True(t, q.DiscountedPrice.Decimal.Equal(decimal.RequireFromString("85.00")))
		assert.True(t, q.DiscountApplied())
	})

	t.Run("NoDiscountKeepsListPrice", func(t *testing.T) {
		q := service.Price(row(nullDec("100.00"), decimal.NullDecimal{}))
		require.True(t, q.DiscountedPrice.Valid)
		assert.True(t, q.DiscountedPrice.Decimal.Equal(decimal.NewFromInt(100)))
		assert.False(t, q.DiscountPercent.Valid)
		assert.False(t, q.DiscountApplied())
	})

	t.Run("UnknownListPrice", func(t *testing.T) {
		q := service.Price(row(decimal.NullDecimal{}, nullDec("15")))
		assert.False(t, q.DiscountedPrice.Valid)

		q = service.Price(row(decimal.NullDecimal{}, decimal.NullDecimal{}))
		assert.False(t, q.DiscountedPrice.Valid)
	})

	t.Run("Clamped", func(t *testing.T) {
		q := service.Price(row(nullDec("80"), nullDec("150")))
		assert.True(t, q.DiscountPercent.Decimal.Equal(decimal.NewFromInt(100)))
		assert.True(t, q.DiscountedPrice.Decimal.IsZero())

		q = service.Price(row(nullDec("80"), nullDec("-5")))
		assert.True(t, q.DiscountPercent.Decimal.IsZero())
		assert.True(t, q.DiscountedPrice.Decimal.Equal(decimal.NewFromInt(80)))
	})

	t.Run("PriceAllKeepsOrder", func(t *testing.T) {
		rows := combined()
		priced := service.PriceAll(rows)
		require.Len(t, priced, len(rows))
		for i := range rows {
			assert.Equal(t, rows[i].ItemCode, priced[i].ItemCode)
		}
	})
}
