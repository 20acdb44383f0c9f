package service_test

import (
	"testing"

	"github.com/niksmo/refsearch/internal/core/domain"
	"github.com/niksmo/refsearch/internal/core/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func combined() []domain.CombinedRow {
	return []domain.CombinedRow{
		{
			CatalogRow: domain.CatalogRow{
				ItemCode:            "A",
				OEESecondItemNumber: "OEE-100",
				CatalogDescription:  "Inductive Sensor M12",
				ItemLongDescription: "Proximity Sensor NPN PNP",
				StockingType:        "P",
			},
			QtyImmediate: domain.IntOf(4),
		},
		{
			CatalogRow: domain.CatalogRow{
				ItemCode:            "B",
				OEESecondItemNumber: "OEE-200",
				CatalogDescription:  "Relay 24V",
				ItemLongDescription: "Safety relay with two contacts",
				StockingType:        "N",
			},
			QtyImmediate: domain.IntOf(0),
		},
		{
			CatalogRow: domain.CatalogRow{
				ItemCode:            "C",
				CatalogDescription:  "Photoelectric sensor",
				ItemLongDescription: "",
				StockingType:        "P",
			},
		},
	}
}

func codes(rows []domain.CombinedRow) []string {
	out := make([]string, len(rows))
	for i, r := range rows {
		out[i] = r.ItemCode
	}
	return out
}

func TestFilter(t *testing.T) {
	t.Run("EmptyPredicatesReturnInput", func(t *testing.T) {
		rows := combined()
		assert.Equal(t, rows, service.Filter(rows, domain.Predicates{}))
	})

	t.Run("EmptySubstringIsNoop", func(t *testing.T) {
		rows := combined()
		got := service.Filter(rows, domain.Predicates{OEE: "", Catalog: ""})
		assert.Equal(t, rows, got)
	})

	t.Run("SubstringCaseInsensitive", func(t *testing.T) {
		got := service.Filter(combined(), domain.Predicates{Catalog: "SENSOR"})
		assert.Equal(t, []string{"A", "C"}, codes(got))
	})

	t.Run("NullFieldNeverMatches", func(t *testing.T) {
		got := service.Filter(combined(), domain.Predicates{OEE: "e"})
		assert.Equal(t, []string{"A", "B"}, codes(got))
	})

	t.Run("WordAll", func(t *testing.T) {
		got := service.Filter(
			combined(), domain.Predicates{LongDescription: "sensor npn"},
		)
		assert.Equal(t, []string{"A"}, codes(got))

		got = service.Filter(
			combined(), domain.Predicates{LongDescription: "sensor xyz"},
		)
		assert.Empty(t, got)

		got = service.Filter(
			combined(), domain.Predicates{LongDescription: "  pnp   PROXIMITY "},
		)
		assert.Equal(t, []string{"A"}, codes(got))
	})

	t.Run("StockingTypeSet", func(t *testing.T) {
		got := service.Filter(
			combined(), domain.Predicates{StockingTypes: []string{"N", "X"}},
		)
		assert.Equal(t, []string{"B"}, codes(got))
	})

	t.Run("InStock", func(t *testing.T) {
		got := service.Filter(combined(), domain.Predicates{InStock: true})
		assert.Equal(t, []string{"A"}, codes(got))
	})

	t.Run("QueryMatchesAnyField", func(t *testing.T) {
		got := service.Filter(combined(), domain.Predicates{Query: "oee-2"})
		assert.Equal(t, []string{"B"}, codes(got))

		got = service.Filter(combined(), domain.Predicates{Query: "photo"})
		assert.Equal(t, []string{"C"}, codes(got))

		got = service.Filter(combined(), domain.Predicates{Query: "proximity"})
		assert.Equal(t, []string{"A"}, codes(got))
	})

	t.Run("PredicatesCombineWithAnd", func(t *testing.T) {
		got := service.Filter(combined(), domain.Predicates{
			StockingTypes: []string{"P"},
			Query:         "sensor",
			InStock:       true,
		})
		assert.Equal(t, []string{"A"}, codes(got))
	})

	t.Run("Idempotent", func(t *testing.T) {
		preds := []domain.Predicates{
			{},
			{Catalog: "sensor"},
			{LongDescription: "relay contacts"},
			{StockingTypes: []string{"P"}, InStock: true},
			{Query: "oee"},
		}
		for _, p := range preds {
			once := service.Filter(combined(), p)
			twice := service.Filter(once, p)
			assert.Equal(t, once, twice)
		}
	})

	t.Run("InputUnchanged", func(t *testing.T) {
		rows := combined()
		_ = service.Filter(rows, domain.Predicates{Query: "relay", InStock: true})
		require.Len(t, rows, 3)
		assert.Equal(t, combined(), rows)
	})
}
