package datasethandler

import (
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"perfdash/internal/domain/analytics"
	"perfdash/internal/domain/auth"
	"perfdash/internal/domain/dashboard"
	"perfdash/internal/domain/dataset"
	"perfdash/internal/domain/evaluation"
	"perfdash/internal/platform/metrics"
	"perfdash/internal/transport/http/api"
	"perfdash/internal/transport/http/middleware"
)

const maxMultipartMemory = 8 << 20

type Handler struct {
	Service  *dashboard.Service
	Metrics  *metrics.Collector
	RankingN int
	Base     analytics.PercentBase
	Year     int
}

func NewHandler(service *dashboard.Service, collector *metrics.Collector, rankingN int, base analytics.PercentBase, year int) *Handler {
	if rankingN <= 0 {
		rankingN = analytics.RankingSizes[1]
	}
	if base == "" {
		base = analytics.PercentOfGroup
	}
	return &Handler{Service: service, Metrics: collector, RankingN: rankingN, Base: base, Year: year}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	read := middleware.RequirePermission(auth.PermDatasetsRead)
	r.Route("/datasets", func(r chi.Router) {
		r.With(read).Get("/", h.handleList)
		r.With(middleware.RequirePermission(auth.PermDatasetsWrite)).Post("/", h.handleUpload)
		r.Route("/{datasetID}", func(r chi.Router) {
			r.With(read).Get("/", h.handleGet)
			r.With(middleware.RequirePermission(auth.PermDatasetsWrite)).Delete("/", h.handleDelete)
			r.With(read).Get("/records", h.handleRecords)
			r.With(read).Get("/summary", h.handleSummary)
			r.With(read).Get("/groups", h.handleGroups)
			r.With(read).Get("/distribution", h.handleDistribution)
			r.With(read).Get("/ranking", h.handleRanking)
			r.With(read).Get("/competencies", h.handleCompetencies)
			r.With(read).Get("/comparison", h.handleComparison)
			r.With(read).Get("/history", h.handleHistory)
			r.With(read).Get("/actions", h.handleListActions)
			r.With(middleware.RequirePermission(auth.PermActionsWrite)).Put("/actions/{row}", h.handleAnnotate)
			r.With(middleware.RequirePermission(auth.PermExport)).Get("/export", h.handleExport)
		})
	})
}

type uploadResponse struct {
	dashboard.Info
	Cached bool `json:"cached"`
}

// handleUpload accepts a multipart "file" field or a raw request body named by
// the name query parameter.
func (h *Handler) handleUpload(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	name, data, err := readUpload(r)
	if err != nil {
		slog.Warn("upload read failed", "err", err)
		api.Fail(w, http.StatusBadRequest, "invalid_upload", "could not read the uploaded file", requestID)
		return
	}

	ds, cached, err := h.Service.Load(r.Context(), name, data)
	if err != nil {
		failPipeline(w, err, requestID)
		return
	}
	body := uploadResponse{Info: ds.Info(), Cached: cached}
	if cached {
		api.Success(w, body, requestID)
		return
	}
	api.Created(w, body, requestID)
}

func readUpload(r *http.Request) (string, []byte, error) {
	if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
		if err := r.ParseMultipartForm(maxMultipartMemory); err != nil {
			return "", nil, err
		}
		file, header, err := r.FormFile("file")
		if err != nil {
			return "", nil, err
		}
		defer file.Close()
		data, err := io.ReadAll(file)
		return header.Filename, data, err
	}
	name := strings.TrimSpace(r.URL.Query().Get("name"))
	if name == "" {
		name = "upload.csv"
	}
	data, err := io.ReadAll(r.Body)
	return name, data, err
}

// failPipeline maps loader and normalizer failures onto a single message.
func failPipeline(w http.ResponseWriter, err error, requestID string) {
	var (
		columnErr   *evaluation.ColumnError
		categoryErr *evaluation.CategoryError
		loadErr     *dataset.LoadError
	)
	switch {
	case errors.Is(err, dashboard.ErrEmptyFile):
		api.Fail(w, http.StatusBadRequest, "empty_file", "uploaded file is empty", requestID)
	case errors.As(err, &columnErr):
		message := evaluation.ErrMissingScoreColumn.Error()
		if columnErr.Family == evaluation.FamilyCategory {
			message = evaluation.ErrMissingCategoryColumn.Error()
		}
		api.FailWithDetails(w, http.StatusUnprocessableEntity, "missing_column", message,
			map[string]any{"family": columnErr.Family, "header": columnErr.Header}, requestID)
	case errors.As(err, &categoryErr):
		api.FailWithDetails(w, http.StatusUnprocessableEntity, "unrecognized_category", categoryErr.Error(),
			map[string]any{"row": categoryErr.Row + 1, "value": categoryErr.Value}, requestID)
	case errors.As(err, &loadErr):
		api.FailWithDetails(w, http.StatusUnprocessableEntity, "unreadable_file", loadErr.Error(),
			map[string]any{"attempts": loadErr.Attempts}, requestID)
	case errors.Is(err, evaluation.ErrEmptyTable), errors.Is(err, dataset.ErrEmptyInput),
		errors.Is(err, dataset.ErrNoWorksheet), errors.Is(err, dataset.ErrUnreadable):
		api.Fail(w, http.StatusUnprocessableEntity, "unreadable_file", err.Error(), requestID)
	default:
		slog.Error("dataset pipeline failed", "err", err)
		api.Fail(w, http.StatusInternalServerError, "dataset_failed", "failed to process dataset", requestID)
	}
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	api.Success(w, h.Service.List(), middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	ds, ok := h.dataset(w, r)
	if !ok {
		return
	}
	api.Success(w, ds.Info(), middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleDelete(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	id := chi.URLParam(r, "datasetID")
	if !h.Service.Forget(id) {
		api.Fail(w, http.StatusNotFound, "dataset_not_found", "dataset not found", requestID)
		return
	}
	slog.Info("dataset forgotten", "id", id)
	api.Success(w, map[string]string{"id": id}, requestID)
}

// dataset loads the path's dataset with actions applied, or writes the error.
func (h *Handler) dataset(w http.ResponseWriter, r *http.Request) (*dashboard.Dataset, bool) {
	requestID := middleware.GetRequestID(r.Context())
	ds, err := h.Service.Get(r.Context(), chi.URLParam(r, "datasetID"))
	if errors.Is(err, dashboard.ErrNotFound) {
		api.Fail(w, http.StatusNotFound, "dataset_not_found", "dataset not found", requestID)
		return nil, false
	}
	if err != nil {
		slog.Error("dataset fetch failed", "err", err)
		api.Fail(w, http.StatusInternalServerError, "dataset_failed", "failed to load dataset", requestID)
		return nil, false
	}
	return ds, true
}
