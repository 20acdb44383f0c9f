package domain

import "github.com/shopspring/decimal"

// A Quote is the price of one catalog row.
//
// DiscountPercent is null when the row has no discount limit,
// then DiscountedPrice equals ListPrice. A null ListPrice means
// the price is unknown and DiscountedPrice is null too.
type Quote struct {
	ListPrice       decimal.NullDecimal
	DiscountPercent decimal.NullDecimal
	DiscountedPrice decimal.NullDecimal
}

func (q Quote) DiscountApplied() bool {
	return q.ListPrice.Valid && q.DiscountPercent.Valid
}

type PricedRow struct {
	CombinedRow
	Quote Quote
}
