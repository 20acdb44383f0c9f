package service

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"slices"
	"sync/atomic"
	"time"

	"github.com/niksmo/refsearch/internal/core/domain"
	"github.com/niksmo/refsearch/internal/core/port"
)

var _ port.ProductsSearcher = (*Service)(nil)
var _ port.ProductsExporter = (*Service)(nil)
var _ port.SelectionManager = (*Service)(nil)

// catalog is the combined table built by one load. It is never
// mutated after construction.
type catalog struct {
	rows          []domain.CombinedRow
	byItemCode    map[string]int
	stockingTypes []string
}

func newCatalog(rows []domain.CombinedRow) *catalog {
	c := &catalog{
		rows:       rows,
		byItemCode: make(map[string]int, len(rows)),
	}
	for i, r := range rows {
		if _, ok := c.byItemCode[r.ItemCode]; !ok && r.ItemCode != "" {
			c.byItemCode[r.ItemCode] = i
		}
		if r.StockingType != "" && !slices.Contains(c.stockingTypes, r.StockingType) {
			c.stockingTypes = append(c.stockingTypes, r.StockingType)
		}
	}
	slices.Sort(c.stockingTypes)
	return c
}

func (c *catalog) row(itemCode string) (domain.CombinedRow, bool) {
	i, ok := c.byItemCode[itemCode]
	if !ok {
		return domain.CombinedRow{}, false
	}
	return c.rows[i], true
}

type Service struct {
	reader  port.TableReader
	sources Sources
	columns domain.Columns
	store   port.SelectionStore
	writer  port.SpreadsheetWriter
	events  port.SearchEventsProducer
	catalog atomic.Pointer[catalog]
}

// New returns the service. events may be nil when search events
// are disabled.
func New(
	reader port.TableReader,
	sources Sources,
	columns domain.Columns,
	store port.SelectionStore,
	writer port.SpreadsheetWriter,
	events port.SearchEventsProducer,
) *Service {
	return &Service{
		reader:  reader,
		sources: sources,
		columns: columns,
		store:   store,
		writer:  writer,
		events:  events,
	}
}

// Load reads and joins the sources and replaces the served catalog.
//
// On error the previous catalog, if any, stays in place.
func (s *Service) Load(ctx context.Context) (domain.JoinReport, error) {
	const op = "Service.Load"
	log := slog.With("op", op)

	tables, err := LoadTables(ctx, s.reader, s.sources, s.columns)
	if err != nil {
		return domain.JoinReport{}, fmt.Errorf("%s: %w", op, err)
	}

	rows, report := Join(tables.Catalog, tables.Stock, tables.Discount)
	if report.Ambiguous() {
		log.Warn(
			"duplicate join keys, first match kept",
			"stockKeys", report.DuplicateStockKeys,
			"discountKeys", report.DuplicateDiscountKeys,
		)
	}
	if len(report.DuplicateItemCodes) != 0 {
		log.Warn(
			"duplicate item codes, detail shows the first",
			"itemCodes", report.DuplicateItemCodes,
		)
	}

	s.catalog.Store(newCatalog(rows))

	log.Info(
		"catalog loaded",
		"rows", len(rows),
		"withoutStock", report.UnmatchedStockRows,
		"withoutDiscount", report.UnmatchedDiscountRows,
	)
	return report, nil
}

func (s *Service) loaded() (*catalog, error) {
	c := s.catalog.Load()
	if c == nil {
		return nil, domain.ErrNotLoaded
	}
	return c, nil
}

func (s *Service) Search(
	ctx context.Context, sessionID string, p domain.Predicates,
) ([]domain.PricedRow, error) {
	const op = "Service.Search"

	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	c, err := s.loaded()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	rows := PriceAll(Filter(c.rows, p))
	s.emitSearch(ctx, sessionID, p, len(rows))
	return rows, nil
}

func (s *Service) emitSearch(
	ctx context.Context, sessionID string, p domain.Predicates, n int,
) {
	if s.events == nil || p.Empty() {
		return
	}
	s.events.ProduceSearchEvent(ctx, domain.SearchEvent{
		SessionID:  sessionID,
		Predicates: p,
		Results:    n,
		At:         time.Now(),
	})
}

func (s *Service) Product(
	ctx context.Context, itemCode string,
) (domain.PricedRow, error) {
	const op = "Service.Product"

	if err := ctx.Err(); err != nil {
		return domain.PricedRow{}, fmt.Errorf("%s: %w", op, err)
	}

	c, err := s.loaded()
	if err != nil {
		return domain.PricedRow{}, fmt.Errorf("%s: %w", op, err)
	}

	row, ok := c.row(itemCode)
	if !ok {
		return domain.PricedRow{}, fmt.Errorf("%s: %w", op, domain.ErrNotFound)
	}
	return domain.PricedRow{CombinedRow: row, Quote: Price(row)}, nil
}

// StockingTypes returns the distinct stocking types in sorted order.
func (s *Service) StockingTypes(ctx context.Context) ([]string, error) {
	const op = "Service.StockingTypes"

	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	c, err := s.loaded()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return slices.Clone(c.stockingTypes), nil
}

func (s *Service) ExportProducts(
	ctx context.Context, p domain.Predicates, w io.Writer,
) error {
	const op = "Service.ExportProducts"

	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	c, err := s.loaded()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	rows := PriceAll(Filter(c.rows, p))
	if len(rows) == 0 {
		return fmt.Errorf("%s: %w", op, domain.ErrEmptyResult)
	}

	if err := s.writer.WriteProducts(w, rows); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}
