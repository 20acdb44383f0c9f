package domain

import "github.com/shopspring/decimal"

// Stock quantity column names after the stock table rename.
const (
	ColQtyImmediate = "Qty Immediately"
	ColQtyFuture    = "Qty Future"
)

type (
	// CatalogColumns are the source headers of the reference catalog.
	CatalogColumns struct {
		ItemCode            string `mapstructure:"item_code"`
		OEESecondItemNumber string `mapstructure:"oee_second_item_number"`
		CatalogDescription  string `mapstructure:"catalog_description"`
		ItemLongDescription string `mapstructure:"item_long_description"`
		ListPrice           string `mapstructure:"list_price"`
		StockingType        string `mapstructure:"stocking_type"`
		PrimaryImageURL     string `mapstructure:"primary_image_url"`
		DiscountGroupKey    string `mapstructure:"discount_group_key"`
	}

	// StockColumns are the source headers of the stock levels table.
	StockColumns struct {
		ProductCode  string `mapstructure:"product_code"`
		QtyImmediate string `mapstructure:"qty_immediate"`
		QtyFuture    string `mapstructure:"qty_future"`
	}

	// DiscountColumns are the source headers of the discount limits table.
	DiscountColumns struct {
		DiscountGroup            string `mapstructure:"discount_group"`
		DiscountGroupDescription string `mapstructure:"discount_group_description"`
		SalesPersonLimit         string `mapstructure:"sales_person_limit"`
	}

	Columns struct {
		Catalog  CatalogColumns  `mapstructure:"catalog"`
		Stock    StockColumns    `mapstructure:"stock"`
		Discount DiscountColumns `mapstructure:"discount"`
	}
)

func (c CatalogColumns) List() []string {
	return []string{
		c.ItemCode,
		c.OEESecondItemNumber,
		c.CatalogDescription,
		c.ItemLongDescription,
		c.ListPrice,
		c.StockingType,
		c.PrimaryImageURL,
		c.DiscountGroupKey,
	}
}

func (c StockColumns) List() []string {
	return []string{c.ProductCode, c.QtyImmediate, c.QtyFuture}
}

// Renames maps the stock quantity headers to their short names.
func (c StockColumns) Renames() map[string]string {
	return map[string]string{
		c.QtyImmediate: ColQtyImmediate,
		c.QtyFuture:    ColQtyFuture,
	}
}

func (c DiscountColumns) List() []string {
	return []string{
		c.DiscountGroup, c.DiscountGroupDescription, c.SalesPersonLimit,
	}
}

// A NullInt is an integer that may be absent.
type NullInt struct {
	Value int64
	Valid bool
}

func IntOf(v int64) NullInt {
	return NullInt{Value: v, Valid: true}
}

type (
	CatalogRow struct {
		ItemCode            string
		OEESecondItemNumber string
		CatalogDescription  string
		ItemLongDescription string
		ListPrice           decimal.NullDecimal
		StockingType        string
		PrimaryImageURL     string
		DiscountGroupKey    string
	}

	StockRow struct {
		ProductCode  string
		QtyImmediate NullInt
		QtyFuture    NullInt
	}

	DiscountRow struct {
		DiscountGroup            string
		DiscountGroupDescription string
		SalesPersonLimit         decimal.NullDecimal
	}

	// A CombinedRow is one catalog row left-joined with
	// at most one stock row and at most one discount row.
	CombinedRow struct {
		CatalogRow
		QtyImmediate             NullInt
		QtyFuture                NullInt
		DiscountGroup            string
		DiscountGroupDescription string
		SalesPersonLimit         decimal.NullDecimal
	}
)

// InStock reports whether some quantity is immediately available.
func (r CombinedRow) InStock() bool {
	return r.QtyImmediate.Valid && r.QtyImmediate.Value > 0
}

// A JoinReport lists what the joins could not resolve unambiguously.
type JoinReport struct {
	DuplicateItemCodes    []string
	DuplicateStockKeys    []string
	DuplicateDiscountKeys []string
	UnmatchedStockRows    int
	UnmatchedDiscountRows int
}

func (r JoinReport) Ambiguous() bool {
	return len(r.DuplicateStockKeys) != 0 || len(r.DuplicateDiscountKeys) != 0
}
