package service

import "github.com/niksmo/refsearch/internal/core/domain"

// Join left-joins catalog to stock on item code and the result to
// discount on discount group.
//
// Every catalog row yields exactly one combined row in source order.
// When a right-hand key repeats, the first row in source order wins
// and the key is listed in the report. Empty keys never match.
func Join(
	catalog []domain.CatalogRow,
	stock []domain.StockRow,
	discount []domain.DiscountRow,
) ([]domain.CombinedRow, domain.JoinReport) {
	var report domain.JoinReport

	stockIdx, dups := indexFirst(stock, func(r domain.StockRow) string {
		return r.ProductCode
	})
	report.DuplicateStockKeys = dups

	discountIdx, dups := indexFirst(discount, func(r domain.DiscountRow) string {
		return r.DiscountGroup
	})
	report.DuplicateDiscountKeys = dups

	_, report.DuplicateItemCodes = indexFirst(
		catalog, func(r domain.CatalogRow) string { return r.ItemCode },
	)

	rows := make([]domain.CombinedRow, len(catalog))
	for i, c := range catalog {
		row := domain.CombinedRow{CatalogRow: c}

		if j, ok := lookup(stockIdx, c.ItemCode); ok {
			row.QtyImmediate = stock[j].QtyImmediate
			row.QtyFuture = stock[j].QtyFuture
		} else {
			report.UnmatchedStockRows++
		}

		if j, ok := lookup(discountIdx, c.DiscountGroupKey); ok {
			d := discount[j]
			row.DiscountGroup = d.DiscountGroup
			row.DiscountGroupDescription = d.DiscountGroupDescription
			row.SalesPersonLimit = d.SalesPersonLimit
		} else {
			report.UnmatchedDiscountRows++
		}

		rows[i] = row
	}
	return rows, report
}

// indexFirst maps every non-empty key to its first position and
// returns the keys seen more than once in order of first repetition.
func indexFirst[T any](rows []T, key func(T) string) (map[string]int, []string) {
	idx := make(map[string]int, len(rows))
	reported := make(map[string]struct{})
	var dups []string
	for i, r := range rows {
		k := key(r)
		if k == "" {
			continue
		}
		if _, ok := idx[k]; !ok {
			idx[k] = i
			continue
		}
		if _, ok := reported[k]; !ok {
			reported[k] = struct{}{}
			dups = append(dups, k)
		}
	}
	return idx, dups
}

func lookup(idx map[string]int, key string) (int, bool) {
	if key == "" {
		return 0, false
	}
	i, ok := idx[key]
	return i, ok
}
