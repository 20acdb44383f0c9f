package service

import (
	"github.com/niksmo/refsearch/internal/core/domain"
	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// Price quotes row against its sales-person discount limit.
//
// A missing limit leaves the list price unchanged and the discount
// null. A missing list price makes the discounted price null.
func Price(row domain.CombinedRow) domain.Quote {
	q := domain.Quote{ListPrice: row.ListPrice}
	if row.SalesPersonLimit.Valid {
		q.DiscountPercent = decimal.NewNullDecimal(
			clampPercent(row.SalesPersonLimit.Decimal),
		)
	}

	switch {
	case !q.ListPrice.Valid:
	case !q.DiscountPercent.Valid:
		q.DiscountedPrice = q.ListPrice
	default:
		q.DiscountedPrice = NetPrice(q.ListPrice, q.DiscountPercent.Decimal)
	}
	return q
}

func PriceAll(rows []domain.CombinedRow) []domain.PricedRow {
	priced := make([]domain.PricedRow, len(rows))
	for i, r := range rows {
		priced[i] = domain.PricedRow{CombinedRow: r, Quote: Price(r)}
	}
	return priced
}

// NetPrice returns list*(1-percent/100), null when list is null.
func NetPrice(list decimal.NullDecimal, percent decimal.Decimal) decimal.NullDecimal {
	if !list.Valid {
		return decimal.NullDecimal{}
	}
	factor := decimal.NewFromInt(1).Sub(percent.Div(hundred))
	return decimal.NewNullDecimal(list.Decimal.Mul(factor))
}

func clampPercent(d decimal.Decimal) decimal.Decimal {
	if d.IsNegative() {
		return decimal.Zero
	}
	if d.GreaterThan(hundred) {
		return hundred
	}
	return d
}
