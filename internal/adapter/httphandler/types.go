package httphandler

import (
	"github.com/niksmo/refsearch/internal/core/domain"
	"github.com/shopspring/decimal"
)

type (
	Product struct {
		ItemCode                 string              `json:"item_code"`
		OEESecondItemNumber      string              `json:"oee_second_item_number"`
		CatalogDescription       string              `json:"catalog_description"`
		ItemLongDescription      string              `json:"item_long_description"`
		StockingType             string              `json:"stocking_type"`
		PrimaryImageURL          string              `json:"primary_image_url"`
		DiscountGroup            string              `json:"discount_group"`
		DiscountGroupDescription string              `json:"discount_group_description"`
		QtyImmediate             *int64              `json:"qty_immediate"`
		QtyFuture                *int64              `json:"qty_future"`
		ListPrice                decimal.NullDecimal `json:"list_price"`
		DiscountPercent          decimal.NullDecimal `json:"discount_percent"`
		DiscountedPrice          decimal.NullDecimal `json:"discounted_price"`
		Display                  QuoteDisplay        `json:"display"`
	}

	// QuoteDisplay holds the formatted prices. Unknown prices read
	// "n/a", a missing discount is blank.
	QuoteDisplay struct {
		ListPrice       string `json:"list_price"`
		DiscountPercent string `json:"discount_percent"`
		DiscountedPrice string `json:"discounted_price"`
	}

	ProductsResponse struct {
		Count int       `json:"count"`
		Items []Product `json:"items"`
	}

	StockingTypesResponse struct {
		Items []string `json:"items"`
	}
)

type (
	SelectionRequest struct {
		ItemCode string          `json:"item_code"`
		Quantity int             `json:"quantity"`
		Discount decimal.Decimal `json:"discount"`
	}

	SelectionAddResponse struct {
		Added bool `json:"added"`
	}

	SelectionLine struct {
		ItemCode           string              `json:"item_code"`
		CatalogDescription string              `json:"catalog_description"`
		Quantity           int                 `json:"quantity"`
		Discount           decimal.Decimal     `json:"discount"`
		SalesPersonLimit   decimal.NullDecimal `json:"sales_person_limit"`
		ExceedsLimit       bool                `json:"exceeds_limit"`
		ListPrice          decimal.NullDecimal `json:"list_price"`
		NetUnitPrice       decimal.NullDecimal `json:"net_unit_price"`
		LineTotal          decimal.NullDecimal `json:"line_total"`
		Display            LineDisplay         `json:"display"`
	}

	LineDisplay struct {
		ListPrice    string `json:"list_price"`
		NetUnitPrice string `json:"net_unit_price"`
		LineTotal    string `json:"line_total"`
	}

	// SelectionResponse totals the priced lines only.
	SelectionResponse struct {
		Count        int             `json:"count"`
		Items        []SelectionLine `json:"items"`
		Total        decimal.Decimal `json:"total"`
		TotalDisplay string          `json:"total_display"`
	}
)

type (
	LoginRequest struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}

	SessionResponse struct {
		Authenticated bool `json:"authenticated"`
		AuthRequired  bool `json:"auth_required"`
	}
)

func productFromDomain(r domain.PricedRow) Product {
	return Product{
		ItemCode:                 r.ItemCode,
		OEESecondItemNumber:      r.OEESecondItemNumber,
		CatalogDescription:       r.CatalogDescription,
		ItemLongDescription:      r.ItemLongDescription,
		StockingType:             r.StockingType,
		PrimaryImageURL:          r.PrimaryImageURL,
		DiscountGroup:            r.DiscountGroup,
		DiscountGroupDescription: r.DiscountGroupDescription,
		QtyImmediate:             nullIntPtr(r.QtyImmediate),
		QtyFuture:                nullIntPtr(r.QtyFuture),
		ListPrice:                r.Quote.ListPrice,
		DiscountPercent:          r.Quote.DiscountPercent,
		DiscountedPrice:          r.Quote.DiscountedPrice,
		Display:                  formatQuote(r.Quote),
	}
}

func selectionLineFromDomain(l domain.SelectionLine) SelectionLine {
	return SelectionLine{
		ItemCode:           l.ItemCode,
		CatalogDescription: l.CatalogDescription,
		Quantity:           l.Quantity,
		Discount:           l.DiscountOverride,
		SalesPersonLimit:   l.SalesPersonLimit,
		ExceedsLimit:       l.ExceedsLimit,
		ListPrice:          l.ListPrice,
		NetUnitPrice:       l.NetUnitPrice,
		LineTotal:          l.LineTotal,
		Display: LineDisplay{
			ListPrice:    formatPrice(l.ListPrice),
			NetUnitPrice: formatPrice(l.NetUnitPrice),
			LineTotal:    formatPrice(l.LineTotal),
		},
	}
}

func nullIntPtr(v domain.NullInt) *int64 {
	if !v.Valid {
		return nil
	}
	return &v.Value
}
