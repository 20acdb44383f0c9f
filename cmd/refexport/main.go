// Command refexport loads the configured spreadsheets, applies the
// filters given on the command line and writes the priced result to
// an xlsx file.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/niksmo/refsearch/config"
	"github.com/niksmo/refsearch/internal/app"
	"github.com/niksmo/refsearch/internal/core/domain"
	"github.com/niksmo/refsearch/pkg/sigctx"
	"github.com/spf13/pflag"
)

const (
	configFlag       = "config"
	outFlag          = "out"
	oeeFlag          = "oee"
	catalogFlag      = "catalog"
	longDescFlag     = "long-desc"
	stockingTypeFlag = "stocking-type"
	inStockFlag      = "in-stock"
	queryFlag        = "query"
	logLevelFlag     = "log-level"
)

type flags struct {
	config   string
	out      string
	logLevel string
	filters  domain.Predicates
}

func main() {
	ctx, cancel := sigctx.NotifyContext(context.Background())
	defer cancel()

	f := getFlagsValues()
	validateFlags(f)

	var level slog.Level
	if err := level.UnmarshalText([]byte(f.logLevel)); err != nil {
		fail(fmt.Errorf("--%s flag: %w", logLevelFlag, err))
	}
	app.InitLogger(level)

	cfg, err := config.LoadFile(f.config)
	if err != nil {
		fail(fmt.Errorf("failed to load config file: %w", err))
	}
	if err := cfg.ValidateData(); err != nil {
		fail(err)
	}

	start := time.Now()
	n, err := export(ctx, cfg, f)
	switch {
	case errors.Is(err, domain.ErrEmptyResult):
		fmt.Println("no products match the filters, nothing was written")
		return
	case err != nil:
		fail(err)
	}

	fmt.Printf(
		"%s products written to %q in %s\n",
		humanize.Comma(int64(n)), f.out, time.Since(start).Round(time.Millisecond),
	)
}

func getFlagsValues() flags {
	var f flags
	pflag.StringVarP(&f.config, configFlag, "c", "config.yaml", "config file")
	pflag.StringVarP(&f.out, outFlag, "o", "Resultados_Busqueda.xlsx", "output xlsx file")
	pflag.StringVar(&f.logLevel, logLevelFlag, "warn", "log level")
	pflag.StringVar(&f.filters.OEE, oeeFlag, "", "OEE number contains")
	pflag.StringVar(&f.filters.Catalog, catalogFlag, "", "catalog contains")
	pflag.StringVar(&f.filters.LongDescription, longDescFlag, "", "long description contains all words")
	pflag.StringSliceVar(&f.filters.StockingTypes, stockingTypeFlag, nil, "stocking types, repeatable")
	pflag.BoolVar(&f.filters.InStock, inStockFlag, false, "only products with immediate quantity")
	pflag.StringVarP(&f.filters.Query, queryFlag, "q", "", "matches OEE number, catalog or long description")
	pflag.Parse()
	return f
}

func validateFlags(f flags) {
	var errs []error

	if f.config == "" {
		errs = append(errs, fmt.Errorf("--%s flag: required", configFlag))
	}

	if f.out == "" {
		errs = append(errs, fmt.Errorf("--%s flag: required", outFlag))
	}

	if err := errors.Join(errs...); err != nil {
		fail(err)
	}
}

// export writes the filtered products to f.out and returns their count.
// Nothing is created when no product matches, and a partly written
// file is removed when writing fails.
func export(ctx context.Context, cfg config.Config, f flags) (int, error) {
	const op = "export"

	svc, err := app.NewService(cfg, nil, nil)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}

	report, err := svc.Load(ctx)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	if report.Ambiguous() {
		fmt.Printf(
			"warning: %d duplicated stock codes, %d duplicated discount groups\n",
			len(report.DuplicateStockKeys), len(report.DuplicateDiscountKeys),
		)
	}

	rows, err := svc.Search(ctx, "", f.filters)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	if len(rows) == 0 {
		return 0, fmt.Errorf("%s: %w", op, domain.ErrEmptyResult)
	}

	file, err := os.Create(f.out)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}

	err = svc.ExportProducts(ctx, f.filters, file)
	if closeErr := file.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		_ = os.Remove(f.out)
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return len(rows), nil
}

func fail(err error) {
	fmt.Fprintf(os.Stderr, "refexport: %v\n", err)
	os.Exit(2)
}
