package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/niksmo/refsearch/internal/core/domain"
	"github.com/niksmo/refsearch/internal/core/port"
	"github.com/shopspring/decimal"
)

type Sources struct {
	Catalog  domain.Source
	Stock    domain.Source
	Discount domain.Source
}

type Tables struct {
	Catalog  []domain.CatalogRow
	Stock    []domain.StockRow
	Discount []domain.DiscountRow
}

// LoadTables reads the three sources restricted to their column
// allow-lists and maps them into typed rows.
//
// The stock quantity columns are renamed to their short names
// before mapping.
func LoadTables(
	ctx context.Context, r port.TableReader, src Sources, cols domain.Columns,
) (Tables, error) {
	const op = "LoadTables"

	catalog, err := r.ReadTable(ctx, src.Catalog, cols.Catalog.List())
	if err != nil {
		return Tables{}, fmt.Errorf("%s: catalog: %w", op, err)
	}

	stock, err := r.ReadTable(ctx, src.Stock, cols.Stock.List())
	if err != nil {
		return Tables{}, fmt.Errorf("%s: stock: %w", op, err)
	}
	stock = stock.Renamed(cols.Stock.Renames())

	discount, err := r.ReadTable(ctx, src.Discount, cols.Discount.List())
	if err != nil {
		return Tables{}, fmt.Errorf("%s: discount: %w", op, err)
	}

	return Tables{
		Catalog:  catalogRows(catalog, cols.Catalog),
		Stock:    stockRows(stock, cols.Stock),
		Discount: discountRows(discount, cols.Discount),
	}, nil
}

func catalogRows(t domain.Table, c domain.CatalogColumns) []domain.CatalogRow {
	var (
		code     = t.Index(c.ItemCode)
		oee      = t.Index(c.OEESecondItemNumber)
		desc     = t.Index(c.CatalogDescription)
		longDesc = t.Index(c.ItemLongDescription)
		price    = t.Index(c.ListPrice)
		stocking = t.Index(c.StockingType)
		image    = t.Index(c.PrimaryImageURL)
		group    = t.Index(c.DiscountGroupKey)
	)

	rows := make([]domain.CatalogRow, len(t.Rows))
	for i, r := range t.Rows {
		rows[i] = domain.CatalogRow{
			ItemCode:            t.Cell(r, code),
			OEESecondItemNumber: t.Cell(r, oee),
			CatalogDescription:  t.Cell(r, desc),
			ItemLongDescription: t.Cell(r, longDesc),
			ListPrice:           parseDecimal(t.Cell(r, price)),
			StockingType:        t.Cell(r, stocking),
			PrimaryImageURL:     t.Cell(r, image),
			DiscountGroupKey:    t.Cell(r, group),
		}
	}
	return rows
}

func stockRows(t domain.Table, c domain.StockColumns) []domain.StockRow {
	var (
		code      = t.Index(c.ProductCode)
		immediate = t.Index(domain.ColQtyImmediate)
		future    = t.Index(domain.ColQtyFuture)
	)

	rows := make([]domain.StockRow, len(t.Rows))
	for i, r := range t.Rows {
		rows[i] = domain.StockRow{
			ProductCode:  t.Cell(r, code),
			QtyImmediate: parseQuantity(t.Cell(r, immediate)),
			QtyFuture:    parseQuantity(t.Cell(r, future)),
		}
	}
	return rows
}

func discountRows(t domain.Table, c domain.DiscountColumns) []domain.DiscountRow {
	var (
		group = t.Index(c.DiscountGroup)
		desc  = t.Index(c.DiscountGroupDescription)
		limit = t.Index(c.SalesPersonLimit)
	)

	rows := make([]domain.DiscountRow, len(t.Rows))
	for i, r := range t.Rows {
		rows[i] = domain.DiscountRow{
			DiscountGroup:            t.Cell(r, group),
			DiscountGroupDescription: t.Cell(r, desc),
			SalesPersonLimit:         parseDecimal(t.Cell(r, limit)),
		}
	}
	return rows
}

// parseDecimal returns null for empty and non-numeric values.
func parseDecimal(s string) decimal.NullDecimal {
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.NullDecimal{}
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.NullDecimal{}
	}
	return decimal.NewNullDecimal(d)
}

// parseQuantity returns null for values that are not
// non-negative whole numbers.
func parseQuantity(s string) domain.NullInt {
	d := parseDecimal(s)
	if !d.Valid || d.Decimal.IsNegative() || !d.Decimal.IsInteger() {
		return domain.NullInt{}
	}
	return domain.IntOf(d.Decimal.IntPart())
}
