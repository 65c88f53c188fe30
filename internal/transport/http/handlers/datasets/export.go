package datasethandler

import (
	"bytes"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"perfdash/internal/domain/export"
	"perfdash/internal/transport/http/api"
	"perfdash/internal/transport/http/middleware"
	"perfdash/internal/transport/http/shared"
)

// handleExport renders the filtered selection as csv, xlsx or pdf. The body is
// buffered so a render failure can still be reported as JSON.
func (h *Handler) handleExport(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	q := r.URL.Query()
	v := shared.NewValidator()

	format, err := export.ParseFormat(q.Get("format"))
	v.Check("format", err)
	var view export.View
	if err == nil {
		view, err = export.ParseView(q.Get("view"), format)
		v.Check("view", err)
	}
	dim := parseDimension(r, v)
	base := h.parseBase(r, v)
	order, n := h.parseRanking(r, v)
	sel, ok := h.selectRecords(w, r, v)
	if !ok {
		return
	}
	req := export.Request{
		Title:     "Ranking de evaluaciones: " + sel.ds.Name,
		Table:     sel.ds.Table,
		Records:   sel.records,
		Dimension: dim,
		Base:      base,
		Order:     order,
		N:         n,
	}
	if view == export.ViewComparison {
		req.Competencies = h.competencyAxis(r, sel, v)
		req.Group, req.Individual = comparisonBaselines(r, dim)
	}
	if v.Reject(w, requestID) {
		return
	}
	var buf bytes.Buffer
	if err := export.Render(&buf, format, view, req, time.Now()); err != nil {
		slog.Error("export failed", "dataset", sel.ds.ID, "format", format, "view", view, "err", err)
		api.Fail(w, http.StatusInternalServerError, "export_failed", "failed to render export", requestID)
		return
	}
	h.Metrics.ExportRendered()

	w.Header().Set("Content-Type", format.ContentType())
	w.Header().Set("Content-Disposition", `attachment; filename="`+export.FileName(sel.ds.Name, view, format)+`"`)
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buf.Bytes())
}
