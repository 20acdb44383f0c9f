package port

import (
	"context"
	"io"

	"github.com/niksmo/refsearch/internal/core/domain"
)

type ProductsSearcher interface {
	Search(context.Context, string, domain.Predicates) ([]domain.PricedRow, error)
	Product(context.Context, string) (domain.PricedRow, error)
	StockingTypes(context.Context) ([]string, error)
}

type ProductsExporter interface {
	ExportProducts(context.Context, domain.Predicates, io.Writer) error
}

type SelectionManager interface {
	AddToSelection(
		ctx context.Context, sessionID string, e domain.SelectionEntry,
	) (bool, error)
	Selection(context.Context, string) ([]domain.SelectionLine, error)
	RemoveFromSelection(ctx context.Context, sessionID, itemCode string) error
	ExportSelection(context.Context, string, io.Writer) error
	EndSession(context.Context, string) error
}

type TableReader interface {
	ReadTable(
		ctx context.Context, src domain.Source, columns []string,
	) (domain.Table, error)
}

type SelectionStore interface {
	LoadSelection(context.Context, string) (domain.Selection, error)
	SaveSelection(context.Context, string, domain.Selection) error
	DeleteSelection(context.Context, string) error
}

type SpreadsheetWriter interface {
	WriteProducts(io.Writer, []domain.PricedRow) error
	WriteSelection(io.Writer, []domain.SelectionLine) error
}

type SearchEventsProducer interface {
	ProduceSearchEvent(context.Context, domain.SearchEvent)
}
