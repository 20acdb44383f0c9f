package httphandler

import (
	"bytes"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/niksmo/refsearch/internal/core/domain"
	"github.com/niksmo/refsearch/internal/core/port"
	"github.com/shopspring/decimal"
)

const selectionExportFilename = "Seleccion.xlsx"

// GET v1/selection (200 OK)
// POST v1/selection JSON {"item_code", "quantity", "discount"} (200 OK, 400 Bad request, 404 Not found)
// DELETE v1/selection/{code} (204 No content, 404 Not found)
// GET v1/selection/export (200 OK xlsx, 204 No content)

type SelectionHandler struct {
	manager port.SelectionManager
}

func RegisterSelection(mux *http.ServeMux, manager port.SelectionManager) {
	h := SelectionHandler{manager}
	mux.HandleFunc("GET /v1/selection", h.GetSelection)
	mux.HandleFunc("POST /v1/selection", h.PostSelection)
	mux.HandleFunc("DELETE /v1/selection/{code}", h.DeleteSelection)
	mux.HandleFunc("GET /v1/selection/export", h.ExportSelection)
}

func (h SelectionHandler) GetSelection(w http.ResponseWriter, r *http.Request) {
	const op = "SelectionHandler.GetSelection"
	log := slog.With("op", op)

	lines, err := h.manager.Selection(r.Context(), SessionID(r.Context()))
	if err != nil {
		writeError(w, log, err)
		return
	}

	res := SelectionResponse{
		Count: len(lines),
		Items: make([]SelectionLine, len(lines)),
		Total: decimal.Zero,
	}
	for i, l := range lines {
		res.Items[i] = selectionLineFromDomain(l)
		if l.LineTotal.Valid {
			res.Total = res.Total.Add(l.LineTotal.Decimal)
		}
	}
	res.TotalDisplay = formatEUR(res.Total)
	writeJSON(w, log, http.StatusOK, res)
}

func (h SelectionHandler) PostSelection(w http.ResponseWriter, r *http.Request) {
	const op = "SelectionHandler.PostSelection"
	log := slog.With("op", op)

	var req SelectionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid JSON data", http.StatusBadRequest)
		log.Warn("failed to parse JSON", "err", err)
		return
	}
	if req.ItemCode == "" {
		http.Error(w, "item_code is required", http.StatusBadRequest)
		return
	}

	added, err := h.manager.AddToSelection(
		r.Context(), SessionID(r.Context()), domain.SelectionEntry{
			ItemCode:         req.ItemCode,
			Quantity:         req.Quantity,
			DiscountOverride: req.Discount,
		},
	)
	if err != nil {
		writeError(w, log, err)
		return
	}
	writeJSON(w, log, http.StatusOK, SelectionAddResponse{Added: added})
}

func (h SelectionHandler) DeleteSelection(w http.ResponseWriter, r *http.Request) {
	const op = "SelectionHandler.DeleteSelection"
	log := slog.With("op", op)

	err := h.manager.RemoveFromSelection(
		r.Context(), SessionID(r.Context()), r.PathValue("code"),
	)
	if err != nil {
		writeError(w, log, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h SelectionHandler) ExportSelection(w http.ResponseWriter, r *http.Request) {
	const op = "SelectionHandler.ExportSelection"
	log := slog.With("op", op)

	var buf bytes.Buffer
	err := h.manager.ExportSelection(r.Context(), SessionID(r.Context()), &buf)
	if errors.Is(err, domain.ErrEmptyResult) {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	if err != nil {
		writeError(w, log, err)
		return
	}

	writeSpreadsheet(w, log, selectionExportFilename, &buf)
}
