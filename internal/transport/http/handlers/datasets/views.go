package datasethandler

import (
	"errors"
	"net/http"
	"strings"

	"perfdash/internal/domain/analytics"
	"perfdash/internal/domain/dashboard"
	"perfdash/internal/domain/evaluation"
	"perfdash/internal/transport/http/api"
	"perfdash/internal/transport/http/middleware"
	"perfdash/internal/transport/http/shared"
)

// selection is a dataset with the request's cross-filter applied.
type selection struct {
	ds      *dashboard.Dataset
	filter  analytics.Filter
	records []evaluation.Record
}

// selectRecords loads the dataset and applies the filter. Extra query parsing
// can be done against v before the caller rejects.
func (h *Handler) selectRecords(w http.ResponseWriter, r *http.Request, v *shared.Validator) (selection, bool) {
	ds, ok := h.dataset(w, r)
	if !ok {
		return selection{}, false
	}
	filter := parseFilter(r, h.Service.Rules(), v)
	return selection{ds: ds, filter: filter, records: filter.Apply(ds.Table.Records)}, true
}

type recordsPage struct {
	Total   int                 `json:"total"`
	Limit   int                 `json:"limit"`
	Offset  int                 `json:"offset"`
	Records []evaluation.Record `json:"records"`
}

func (h *Handler) handleRecords(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	v := shared.NewValidator()
	sel, ok := h.selectRecords(w, r, v)
	if !ok || v.Reject(w, requestID) {
		return
	}
	page := shared.ParsePagination(r, 100, 1000)
	start, end := page.Window(len(sel.records))
	api.Success(w, recordsPage{
		Total:   len(sel.records),
		Limit:   page.Limit,
		Offset:  page.Offset,
		Records: sel.records[start:end],
	}, requestID)
}

func (h *Handler) handleSummary(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	v := shared.NewValidator()
	dim := parseDimension(r, v)
	base := h.parseBase(r, v)
	sel, ok := h.selectRecords(w, r, v)
	if !ok || v.Reject(w, requestID) {
		return
	}
	api.Success(w, dashboard.BuildSummary(sel.ds, sel.records, dim, base, sel.filter.Keywords), requestID)
}

func (h *Handler) handleGroups(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	v := shared.NewValidator()
	dim := parseDimension(r, v)
	sel, ok := h.selectRecords(w, r, v)
	if !ok || v.Reject(w, requestID) {
		return
	}
	api.Success(w, map[string]any{
		"dimension": dim,
		"groups":    analytics.GroupBy(sel.records, dim),
	}, requestID)
}

func (h *Handler) handleDistribution(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	v := shared.NewValidator()
	dim := parseDimension(r, v)
	base := h.parseBase(r, v)
	sel, ok := h.selectRecords(w, r, v)
	if !ok || v.Reject(w, requestID) {
		return
	}
	api.Success(w, map[string]any{
		"dimension": dim,
		"base":      base,
		"groups":    analytics.Distribution(sel.records, dim, base),
		"overall":   analytics.OverallDistribution(sel.records, base),
	}, requestID)
}

func (h *Handler) handleRanking(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	v := shared.NewValidator()
	order, n := h.parseRanking(r, v)
	sel, ok := h.selectRecords(w, r, v)
	if !ok || v.Reject(w, requestID) {
		return
	}
	api.Success(w, map[string]any{
		"order": order,
		"n":     n,
		"rows":  dashboard.Ranking(sel.records, order, n),
	}, requestID)
}

// competencyAxis resolves the set query parameter against the dataset.
func (h *Handler) competencyAxis(r *http.Request, sel selection, v *shared.Validator) []evaluation.Competency {
	competencies, err := dashboard.Competencies(h.Service.Rules(), sel.ds.Table, r.URL.Query().Get("set"))
	if errors.Is(err, dashboard.ErrUnknownCompetencySet) {
		v.Add("set", err.Error())
	}
	return competencies
}

func (h *Handler) handleCompetencies(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	v := shared.NewValidator()
	sel, ok := h.selectRecords(w, r, v)
	if !ok {
		return
	}
	competencies := h.competencyAxis(r, sel, v)
	if v.Reject(w, requestID) {
		return
	}
	api.Success(w, map[string]any{
		"competencies": competencies,
		"mean":         analytics.MeanVector(sel.records, competencies),
	}, requestID)
}

// handleComparison lines up the filtered selection, one group of a dimension
// and one person on the same competency axis.
func (h *Handler) handleComparison(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	v := shared.NewValidator()
	sel, ok := h.selectRecords(w, r, v)
	if !ok {
		return
	}
	competencies := h.competencyAxis(r, sel, v)
	group, individual := comparisonBaselines(r, parseDimension(r, v))
	if v.Reject(w, requestID) {
		return
	}
	api.Success(w, analytics.Compare(sel.records, competencies, group, individual), requestID)
}

// comparisonBaselines reads the group key of dim and the individual name.
// Absent parameters leave their predicate nil.
func comparisonBaselines(r *http.Request, dim analytics.Dimension) (group, individual analytics.Predicate) {
	q := r.URL.Query()
	if key := strings.TrimSpace(q.Get("group")); key != "" {
		group = analytics.ByGroup(dim, key)
	}
	if person := strings.TrimSpace(q.Get("individual")); person != "" {
		individual = analytics.ByPerson(person)
	}
	return group, individual
}

func (h *Handler) handleHistory(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	v := shared.NewValidator()
	sel, ok := h.selectRecords(w, r, v)
	if !ok || v.Reject(w, requestID) {
		return
	}
	body := map[string]any{
		"years":     sel.ds.Table.Years,
		"yearMeans": analytics.YearMeans(sel.records),
		"people":    analytics.People(sel.records),
	}
	if person := strings.TrimSpace(r.URL.Query().Get("person")); person != "" {
		body["person"] = person
		body["trend"] = analytics.Trend(sel.records, person, h.currentYear(sel.ds.Table))
	}
	api.Success(w, body, requestID)
}
