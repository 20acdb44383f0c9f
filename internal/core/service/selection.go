package service

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/niksmo/refsearch/internal/core/domain"
	"github.com/shopspring/decimal"
)

// AddToSelection upserts e into the session selection and reports
// whether it was stored. A non-positive quantity is a no-op.
func (s *Service) AddToSelection(
	ctx context.Context, sessionID string, e domain.SelectionEntry,
) (bool, error) {
	const op = "Service.AddToSelection"

	if e.Quantity <= 0 {
		return false, nil
	}

	c, err := s.loaded()
	if err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}
	if _, ok := c.row(e.ItemCode); !ok {
		return false, fmt.Errorf("%s: %w", op, domain.ErrNotFound)
	}

	sel, err := s.store.LoadSelection(ctx, sessionID)
	if err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}

	added, err := sel.Add(e)
	if err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}

	if err := s.store.SaveSelection(ctx, sessionID, sel); err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}

	slog.Debug(
		"selection updated",
		"op", op, "itemCode", e.ItemCode, "entries", sel.Len(),
	)
	return added, nil
}

// Selection returns the session selection priced against the
// current catalog. Entries whose item left the catalog keep null
// prices.
func (s *Service) Selection(
	ctx context.Context, sessionID string,
) ([]domain.SelectionLine, error) {
	const op = "Service.Selection"

	c, err := s.loaded()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	sel, err := s.store.LoadSelection(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	entries := sel.Entries()
	lines := make([]domain.SelectionLine, len(entries))
	for i, e := range entries {
		lines[i] = selectionLine(c, e)
	}
	return lines, nil
}

func selectionLine(c *catalog, e domain.SelectionEntry) domain.SelectionLine {
	line := domain.SelectionLine{SelectionEntry: e}

	row, ok := c.row(e.ItemCode)
	if !ok {
		return line
	}

	line.CatalogDescription = row.CatalogDescription
	line.ListPrice = row.ListPrice
	line.SalesPersonLimit = row.SalesPersonLimit
	line.NetUnitPrice = NetPrice(row.ListPrice, e.DiscountOverride)
	if line.NetUnitPrice.Valid {
		line.LineTotal = decimal.NewNullDecimal(
			line.NetUnitPrice.Decimal.Mul(decimal.NewFromInt(int64(e.Quantity))),
		)
	}
	line.ExceedsLimit = row.SalesPersonLimit.Valid &&
		e.DiscountOverride.GreaterThan(row.SalesPersonLimit.Decimal)
	return line
}

func (s *Service) RemoveFromSelection(
	ctx context.Context, sessionID, itemCode string,
) error {
	const op = "Service.RemoveFromSelection"

	sel, err := s.store.LoadSelection(ctx, sessionID)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if !sel.Remove(itemCode) {
		return fmt.Errorf("%s: %w", op, domain.ErrNotFound)
	}

	if err := s.store.SaveSelection(ctx, sessionID, sel); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

func (s *Service) ExportSelection(
	ctx context.Context, sessionID string, w io.Writer,
) error {
	const op = "Service.ExportSelection"

	lines, err := s.Selection(ctx, sessionID)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if len(lines) == 0 {
		return fmt.Errorf("%s: %w", op, domain.ErrEmptyResult)
	}

	if err := s.writer.WriteSelection(w, lines); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// EndSession discards the session selection.
func (s *Service) EndSession(ctx context.Context, sessionID string) error {
	const op = "Service.EndSession"

	if err := s.store.DeleteSelection(ctx, sessionID); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}
