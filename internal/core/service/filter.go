package service

import (
	"strings"

	"github.com/niksmo/refsearch/internal/core/domain"
)

type predicate func(*domain.CombinedRow) bool

// Filter returns the rows matching every active predicate of p
// in their original order. The input is never modified.
func Filter(rows []domain.CombinedRow, p domain.Predicates) []domain.CombinedRow {
	preds := compile(p)
	out := make([]domain.CombinedRow, 0, len(rows))
	for i := range rows {
		if matchAll(&rows[i], preds) {
			out = append(out, rows[i])
		}
	}
	return out
}

func compile(p domain.Predicates) []predicate {
	var preds []predicate

	if p.OEE != "" {
		preds = append(preds, substring(p.OEE, oeeField))
	}
	if p.Catalog != "" {
		preds = append(preds, substring(p.Catalog, catalogField))
	}
	if words := strings.Fields(strings.ToLower(p.LongDescription)); len(words) != 0 {
		preds = append(preds, allWords(words, longDescField))
	}
	if len(p.StockingTypes) != 0 {
		preds = append(preds, memberOf(p.StockingTypes))
	}
	if p.InStock {
		preds = append(preds, (*domain.CombinedRow).InStock)
	}
	if p.Query != "" {
		preds = append(preds, anyOf(
			substring(p.Query, oeeField),
			substring(p.Query, catalogField),
			substring(p.Query, longDescField),
		))
	}
	return preds
}

func matchAll(r *domain.CombinedRow, preds []predicate) bool {
	for _, p := range preds {
		if !p(r) {
			return false
		}
	}
	return true
}

func oeeField(r *domain.CombinedRow) string      { return r.OEESecondItemNumber }
func catalogField(r *domain.CombinedRow) string  { return r.CatalogDescription }
func longDescField(r *domain.CombinedRow) string { return r.ItemLongDescription }

// substring matches a case-insensitive occurrence of value.
// A null field never matches.
func substring(value string, field func(*domain.CombinedRow) string) predicate {
	value = strings.ToLower(value)
	return func(r *domain.CombinedRow) bool {
		v := field(r)
		return v != "" && strings.Contains(strings.ToLower(v), value)
	}
}

// allWords matches when every word occurs in the field in any order.
func allWords(words []string, field func(*domain.CombinedRow) string) predicate {
	return func(r *domain.CombinedRow) bool {
		v := strings.ToLower(field(r))
		if v == "" {
			return false
		}
		for _, w := range words {
			if !strings.Contains(v, w) {
				return false
			}
		}
		return true
	}
}

func memberOf(values []string) predicate {
	set := make(map[string]struct{}, len(values))
	for _, v := range values {
		if v != "" {
			set[v] = struct{}{}
		}
	}
	return func(r *domain.CombinedRow) bool {
		_, ok := set[r.StockingType]
		return ok
	}
}

func anyOf(preds ...predicate) predicate {
	return func(r *domain.CombinedRow) bool {
		for _, p := range preds {
			if p(r) {
				return true
			}
		}
		return false
	}
}
