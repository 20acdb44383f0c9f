package xlsx

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/niksmo/refsearch/internal/core/domain"
	"github.com/niksmo/refsearch/internal/core/port"
	"github.com/xuri/excelize/v2"
)

const defaultCacheSize = 16

var _ port.TableReader = (*Reader)(nil)

type ReaderOpt func(*readerOpts) error

type readerOpts struct {
	cacheSize int
}

func CacheSizeOpt(size int) ReaderOpt {
	return func(opts *readerOpts) error {
		if size <= 0 {
			return errors.New("cache size must be positive")
		}
		opts.cacheSize = size
		return nil
	}
}

// Reader reads worksheets restricted to a column allow-list.
//
// Read tables are cached by source and columns, sources are
// treated as static for the process lifetime.
type Reader struct {
	cache *lru.Cache[string, domain.Table]
}

func NewReader(opts ...ReaderOpt) (*Reader, error) {
	const op = "NewReader"

	options := readerOpts{cacheSize: defaultCacheSize}
	for _, opt := range opts {
		if err := opt(&options); err != nil {
			return nil, opErr(err, op)
		}
	}

	cache, err := lru.New[string, domain.Table](options.cacheSize)
	if err != nil {
		return nil, opErr(err, op)
	}
	return &Reader{cache: cache}, nil
}

// ReadTable returns the columns of src in the requested order.
//
// Row 1 holds the headers. Rows with every requested cell empty
// are skipped. Absent headers fail with [*domain.SchemaError].
func (r *Reader) ReadTable(
	ctx context.Context, src domain.Source, columns []string,
) (domain.Table, error) {
	const op = "Reader.ReadTable"
	log := slog.With("op", op, "source", src.String())

	if err := ctx.Err(); err != nil {
		return domain.Table{}, opErr(err, op)
	}

	key := cacheKey(src, columns)
	if t, ok := r.cache.Get(key); ok {
		log.Debug("cache hit")
		return t, nil
	}

	t, err := readTable(ctx, src, columns)
	if err != nil {
		return domain.Table{}, opErr(err, op)
	}

	r.cache.Add(key, t)
	log.Info("table read", "rows", len(t.Rows))
	return t, nil
}

// Purge drops every cached table.
func (r *Reader) Purge() {
	r.cache.Purge()
}

func cacheKey(src domain.Source, columns []string) string {
	return src.Path + "|" + src.Sheet + "|" + strings.Join(columns, "\x1f")
}

func readTable(
	ctx context.Context, src domain.Source, columns []string,
) (domain.Table, error) {
	f, err := excelize.OpenFile(src.Path, excelize.Options{RawCellValue: true})
	if err != nil {
		return domain.Table{}, err
	}
	defer f.Close()

	sheet := src.Sheet
	if sheet == "" {
		sheet = f.GetSheetName(0)
	}
	if idx, err := f.GetSheetIndex(sheet); err != nil || idx == -1 {
		return domain.Table{}, fmt.Errorf("sheet %q not found in %q", sheet, src.Path)
	}

	rows, err := f.Rows(sheet)
	if err != nil {
		return domain.Table{}, err
	}
	defer rows.Close()

	t := domain.Table{Source: src.String(), Columns: columns}

	if !rows.Next() {
		if err := rows.Error(); err != nil {
			return domain.Table{}, err
		}
		return domain.Table{}, &domain.SchemaError{
			Source: src.String(), Missing: columns,
		}
	}
	header, err := rows.Columns()
	if err != nil {
		return domain.Table{}, err
	}

	positions, err := locate(src, header, columns)
	if err != nil {
		return domain.Table{}, err
	}

	for n := 0; rows.Next(); n++ {
		if n%1024 == 0 {
			if err := ctx.Err(); err != nil {
				return domain.Table{}, err
			}
		}

		cells, err := rows.Columns()
		if err != nil {
			return domain.Table{}, err
		}
		if row, ok := project(cells, positions); ok {
			t.Rows = append(t.Rows, row)
		}
	}
	if err := rows.Error(); err != nil {
		return domain.Table{}, err
	}
	return t, nil
}

// locate maps every requested column to its header position.
// The first occurrence of a repeated header wins.
func locate(src domain.Source, header, columns []string) ([]int, error) {
	byName := make(map[string]int, len(header))
	for i, h := range header {
		h = strings.TrimSpace(h)
		if _, ok := byName[h]; !ok && h != "" {
			byName[h] = i
		}
	}

	positions := make([]int, len(columns))
	var missing []string
	for i, c := range columns {
		p, ok := byName[c]
		if !ok {
			missing = append(missing, c)
			continue
		}
		positions[i] = p
	}
	if len(missing) != 0 {
		return nil, &domain.SchemaError{Source: src.String(), Missing: missing}
	}
	return positions, nil
}

// project returns the trimmed requested cells and false when all
// of them are empty.
func project(cells []string, positions []int) ([]string, bool) {
	row := make([]string, len(positions))
	var filled bool
	for i, p := range positions {
		if p < len(cells) {
			row[i] = strings.TrimSpace(cells[p])
		}
		filled = filled || row[i] != ""
	}
	return row, filled
}
