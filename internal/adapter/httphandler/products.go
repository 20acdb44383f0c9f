package httphandler

import (
	"bytes"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/niksmo/refsearch/internal/adapter/xlsx"
	"github.com/niksmo/refsearch/internal/core/domain"
	"github.com/niksmo/refsearch/internal/core/port"
)

const productsExportFilename = "Resultados_Busqueda.xlsx"

// GET v1/products?oee=&catalog=&long_desc=&stocking_type=&in_stock=&q= (200 OK, 400 Bad request)
// GET v1/products/{code} (200 OK, 404 Not found)
// GET v1/products/export?<same filters> (200 OK xlsx, 204 No content)
// GET v1/stocking-types (200 OK)

type ProductsHandler struct {
	searcher port.ProductsSearcher
	exporter port.ProductsExporter
}

func RegisterProducts(
	mux *http.ServeMux,
	searcher port.ProductsSearcher,
	exporter port.ProductsExporter,
) {
	h := ProductsHandler{searcher, exporter}
	mux.HandleFunc("GET /v1/products", h.GetProducts)
	mux.HandleFunc("GET /v1/products/export", h.ExportProducts)
	mux.HandleFunc("GET /v1/products/{code}", h.GetProduct)
	mux.HandleFunc("GET /v1/stocking-types", h.GetStockingTypes)
}

func (h ProductsHandler) GetProducts(w http.ResponseWriter, r *http.Request) {
	const op = "ProductsHandler.GetProducts"
	log := slog.With("op", op)

	p, err := predicatesFromQuery(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	rows, err := h.searcher.Search(r.Context(), SessionID(r.Context()), p)
	if err != nil {
		writeError(w, log, err)
		return
	}

	res := ProductsResponse{Count: len(rows), Items: make([]Product, len(rows))}
	for i, row := range rows {
		res.Items[i] = productFromDomain(row)
	}
	writeJSON(w, log, http.StatusOK, res)
}

func (h ProductsHandler) GetProduct(w http.ResponseWriter, r *http.Request) {
	const op = "ProductsHandler.GetProduct"
	log := slog.With("op", op)

	row, err := h.searcher.Product(r.Context(), r.PathValue("code"))
	if err != nil {
		writeError(w, log, err)
		return
	}
	writeJSON(w, log, http.StatusOK, productFromDomain(row))
}

func (h ProductsHandler) GetStockingTypes(w http.ResponseWriter, r *http.Request) {
	const op = "ProductsHandler.GetStockingTypes"
	log := slog.With("op", op)

	types, err := h.searcher.StockingTypes(r.Context())
	if err != nil {
		writeError(w, log, err)
		return
	}
	if types == nil {
		types = []string{}
	}
	writeJSON(w, log, http.StatusOK, StockingTypesResponse{Items: types})
}

func (h ProductsHandler) ExportProducts(w http.ResponseWriter, r *http.Request) {
	const op = "ProductsHandler.ExportProducts"
	log := slog.With("op", op)

	p, err := predicatesFromQuery(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	var buf bytes.Buffer
	err = h.exporter.ExportProducts(r.Context(), p, &buf)
	if errors.Is(err, domain.ErrEmptyResult) {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	if err != nil {
		writeError(w, log, err)
		return
	}

	writeSpreadsheet(w, log, productsExportFilename, &buf)
}

func predicatesFromQuery(r *http.Request) (domain.Predicates, error) {
	q := r.URL.Query()
	p := domain.Predicates{
		OEE:             q.Get("oee"),
		Catalog:         q.Get("catalog"),
		LongDescription: q.Get("long_desc"),
		Query:           q.Get("q"),
	}
	for _, st := range q["stocking_type"] {
		if st != "" {
			p.StockingTypes = append(p.StockingTypes, st)
		}
	}
	if v := q.Get("in_stock"); v != "" {
		inStock, err := strconv.ParseBool(v)
		if err != nil {
			return domain.Predicates{}, fmt.Errorf("invalid in_stock value %q", v)
		}
		p.InStock = inStock
	}
	return p, nil
}

func writeSpreadsheet(
	w http.ResponseWriter, log *slog.Logger, filename string, buf *bytes.Buffer,
) {
	w.Header().Set("Content-Type", xlsx.ContentType)
	w.Header().Set(
		"Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename),
	)
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	w.WriteHeader(http.StatusOK)
	if _, err := buf.WriteTo(w); err != nil {
		log.Error("failed to write response body", "err", err)
	}
}
