package xlsx

import (
	"io"

	"github.com/niksmo/refsearch/internal/core/domain"
	"github.com/niksmo/refsearch/internal/core/port"
	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
)

const (
	ProductsSheet  = "Results"
	SelectionSheet = "Selection"

	ColDiscountedPrice = "Discounted Price (€)"
	ColQuantity        = "Quantity"
	ColDiscount        = "Discount (%)"
	ColNetUnitPrice    = "Net Unit Price (€)"
	ColLineTotal       = "Line Total (€)"
	ColExceedsLimit    = "Exceeds Limit"
)

const (
	priceFormat   = `#,##0.00 "€"`
	percentFormat = `0.##"%"`
)

var _ port.SpreadsheetWriter = (*Writer)(nil)

// Writer writes exports as single-sheet workbooks.
//
// Header names follow the configured source columns.
type Writer struct {
	columns domain.Columns
}

func NewWriter(columns domain.Columns) *Writer {
	return &Writer{columns: columns}
}

// ProductsHeader returns the export columns in the combined
// table order followed by the discounted price.
func (w *Writer) ProductsHeader() []string {
	h := w.columns.Catalog.List()
	return append(h,
		domain.ColQtyImmediate,
		domain.ColQtyFuture,
		w.columns.Discount.DiscountGroup,
		w.columns.Discount.DiscountGroupDescription,
		w.columns.Discount.SalesPersonLimit,
		ColDiscountedPrice,
	)
}

func (w *Writer) SelectionHeader() []string {
	return []string{
		w.columns.Catalog.ItemCode,
		w.columns.Catalog.CatalogDescription,
		ColQuantity,
		ColDiscount,
		w.columns.Discount.SalesPersonLimit,
		ColExceedsLimit,
		w.columns.Catalog.ListPrice,
		ColNetUnitPrice,
		ColLineTotal,
	}
}

func (w *Writer) WriteProducts(out io.Writer, rows []domain.PricedRow) error {
	const op = "Writer.WriteProducts"

	err := write(out, ProductsSheet, w.ProductsHeader(), len(rows),
		func(i int, s styles) []any {
			r := rows[i]
			return []any{
				r.ItemCode,
				r.OEESecondItemNumber,
				r.CatalogDescription,
				r.ItemLongDescription,
				s.price(r.ListPrice),
				r.StockingType,
				r.PrimaryImageURL,
				r.DiscountGroupKey,
				intCell(r.QtyImmediate),
				intCell(r.QtyFuture),
				r.DiscountGroup,
				r.DiscountGroupDescription,
				s.percent(r.Quote.DiscountPercent),
				s.price(r.Quote.DiscountedPrice),
			}
		},
	)
	if err != nil {
		return opErr(err, op)
	}
	return nil
}

func (w *Writer) WriteSelection(out io.Writer, lines []domain.SelectionLine) error {
	const op = "Writer.WriteSelection"

	err := write(out, SelectionSheet, w.SelectionHeader(), len(lines),
		func(i int, s styles) []any {
			l := lines[i]
			return []any{
				l.ItemCode,
				l.CatalogDescription,
				l.Quantity,
				s.percent(decimal.NewNullDecimal(l.DiscountOverride)),
				s.percent(l.SalesPersonLimit),
				l.ExceedsLimit,
				s.price(l.ListPrice),
				s.price(l.NetUnitPrice),
				s.price(l.LineTotal),
			}
		},
	)
	if err != nil {
		return opErr(err, op)
	}
	return nil
}

type styles struct {
	header, priceID, percentID int
}

func (s styles) price(d decimal.NullDecimal) any {
	return numberCell(d, s.priceID)
}

func (s styles) percent(d decimal.NullDecimal) any {
	return numberCell(d, s.percentID)
}

func numberCell(d decimal.NullDecimal, styleID int) any {
	if !d.Valid {
		return nil
	}
	return excelize.Cell{StyleID: styleID, Value: d.Decimal.InexactFloat64()}
}

func intCell(v domain.NullInt) any {
	if !v.Valid {
		return nil
	}
	return v.Value
}

// write streams a header row and n data rows into a new workbook
// with a single sheet.
func write(
	out io.Writer, sheet string, header []string, n int,
	row func(int, styles) []any,
) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), sheet); err != nil {
		return err
	}

	s, err := newStyles(f)
	if err != nil {
		return err
	}

	sw, err := f.NewStreamWriter(sheet)
	if err != nil {
		return err
	}

	if err := sw.SetPanes(&excelize.Panes{
		Freeze: true, YSplit: 1, TopLeftCell: "A2", ActivePane: "bottomLeft",
	}); err != nil {
		return err
	}

	headerRow := make([]any, len(header))
	for i, h := range header {
		headerRow[i] = excelize.Cell{StyleID: s.header, Value: h}
	}
	if err := sw.SetRow("A1", headerRow); err != nil {
		return err
	}

	for i := range n {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := sw.SetRow(cell, row(i, s)); err != nil {
			return err
		}
	}

	if err := sw.Flush(); err != nil {
		return err
	}
	return f.Write(out)
}

func newStyles(f *excelize.File) (styles, error) {
	var (
		s   styles
		err error
	)

	s.header, err = f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return styles{}, err
	}

	priceFmt := priceFormat
	s.priceID, err = f.NewStyle(&excelize.Style{CustomNumFmt: &priceFmt})
	if err != nil {
		return styles{}, err
	}

	percentFmt := percentFormat
	s.percentID, err = f.NewStyle(&excelize.Style{CustomNumFmt: &percentFmt})
	if err != nil {
		return styles{}, err
	}
	return s, nil
}
