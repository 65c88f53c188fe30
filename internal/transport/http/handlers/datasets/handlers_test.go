package datasethandler

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	_ "modernc.org/sqlite"

	"perfdash/internal/domain/actions"
	"perfdash/internal/domain/auth"
	"perfdash/internal/domain/dashboard"
	"perfdash/internal/domain/evaluation"
	"perfdash/internal/platform/metrics"
	"perfdash/internal/transport/http/middleware"
)

const testSecret = "0123456789abcdef"

const sampleCSV = "Evaluado;Cargo;Dirección;Área;Nota 2024;Categoría 2024;Humildad\n" +
	"Ana;Jefe de Enfermería;Clínica;UCI;4;Destacado;Excepcional\n" +
	"Luis;Analista;Clínica;;5;Excepcional;3\n" +
	"Eva;Subgerente Comercial;Comercial;Ventas;2;No cumple;\n" +
	"Raúl;Técnico;Comercial;Ventas;;Pendiente;\n"

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   *struct {
		Code    string         `json:"code"`
		Message string         `json:"message"`
		Details map[string]any `json:"details"`
	} `json:"error"`
}

func newRouter(t *testing.T, secret string) http.Handler {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	db.SetMaxOpenConns(1)
	store, err := actions.NewSQLStore(context.Background(), db)
	if err != nil {
		t.Fatalf("schema: %v", err)
	}
	t.Cleanup(store.Close)

	collector := metrics.New()
	svc := dashboard.New(dashboard.Options{
		CacheSize: 4,
		Normalize: evaluation.DefaultOptions(),
		Actions:   actions.NewService(store),
		Metrics:   collector,
	})
	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middleware.Auth(secret))
	NewHandler(svc, collector, 10, "", 0).RegisterRoutes(router)
	return router
}

func do(t *testing.T, h http.Handler, method, target string, body []byte, header map[string]string) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	req := httptest.NewRequest(method, target, bytes.NewReader(body))
	for k, v := range header {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	var env envelope
	if strings.HasPrefix(rec.Header().Get("Content-Type"), "application/json") {
		if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
			t.Fatalf("decode %s %s: %v", method, target, err)
		}
	}
	return rec, env
}

func upload(t *testing.T, h http.Handler, csv string) string {
	t.Helper()
	rec, env := do(t, h, http.MethodPost, "/datasets?name=evaluaciones.csv", []byte(csv), nil)
	if rec.Code != http.StatusCreated {
		t.Fatalf("upload: expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	var info struct {
		ID     string `json:"id"`
		Rows   int    `json:"rows"`
		Cached bool   `json:"cached"`
	}
	if err := json.Unmarshal(env.Data, &info); err != nil {
		t.Fatalf("decode info: %v", err)
	}
	if info.Rows != 4 || info.Cached {
		t.Fatalf("unexpected info %+v", info)
	}
	return info.ID
}

func TestUploadIsMemoized(t *testing.T) {
	h := newRouter(t, "")
	id := upload(t, h, sampleCSV)

	rec, env := do(t, h, http.MethodPost, "/datasets?name=again.csv", []byte(sampleCSV), nil)
	if rec.Code != http.StatusOK || !strings.Contains(string(env.Data), `"cached":true`) {
		t.Fatalf("expected cached 200, got %d: %s", rec.Code, rec.Body.String())
	}

	rec, env = do(t, h, http.MethodGet, "/datasets", nil, nil)
	if rec.Code != http.StatusOK || !strings.Contains(string(env.Data), id) {
		t.Fatalf("expected dataset in list, got %s", rec.Body.String())
	}
}

func TestUploadMultipart(t *testing.T) {
	h := newRouter(t, "")
	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	part, err := writer.CreateFormFile("file", "evaluaciones.csv")
	if err != nil {
		t.Fatalf("form file: %v", err)
	}
	_, _ = part.Write([]byte(sampleCSV))
	_ = writer.Close()

	rec, env := do(t, h, http.MethodPost, "/datasets", body.Bytes(), map[string]string{"Content-Type": writer.FormDataContentType()})
	if rec.Code != http.StatusCreated || !strings.Contains(string(env.Data), `"name":"evaluaciones.csv"`) {
		t.Fatalf("unexpected response %d: %s", rec.Code, rec.Body.String())
	}
}

func TestUploadPipelineErrors(t *testing.T) {
	tests := []struct {
		name   string
		body   string
		status int
		code   string
	}{
		{name: "empty", body: "", status: http.StatusBadRequest, code: "empty_file"},
		{name: "no category column", body: "Evaluado;Nota\nAna;4\n", status: http.StatusUnprocessableEntity, code: "missing_column"},
		{name: "no score column", body: "Evaluado;Categoría\nAna;Cumple\n", status: http.StatusUnprocessableEntity, code: "missing_column"},
		{name: "single column", body: "just one column\nvalue\n", status: http.StatusUnprocessableEntity, code: "unreadable_file"},
	}
	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			h := newRouter(t, "")
			rec, env := do(t, h, http.MethodPost, "/datasets?name=x.csv", []byte(tc.body), nil)
			if rec.Code != tc.status || env.Error == nil || env.Error.Code != tc.code {
				t.Fatalf("expected %d %s, got %d: %s", tc.status, tc.code, rec.Code, rec.Body.String())
			}
		})
	}
}

func TestViews(t *testing.T) {
	h := newRouter(t, "")
	id := upload(t, h, sampleCSV)
	base := "/datasets/" + id

	t.Run("records filtered and paged", func(t *testing.T) {
		rec, env := do(t, h, http.MethodGet, base+"/records?category=DESTACADO,Excepcional&limit=1", nil, nil)
		if rec.Code != http.StatusOK {
			t.Fatalf("unexpected status %d: %s", rec.Code, rec.Body.String())
		}
		var page struct {
			Total   int               `json:"total"`
			Records []json.RawMessage `json:"records"`
		}
		if err := json.Unmarshal(env.Data, &page); err != nil {
			t.Fatalf("decode: %v", err)
		}
		if page.Total != 2 || len(page.Records) != 1 {
			t.Fatalf("unexpected page total=%d len=%d", page.Total, len(page.Records))
		}
	})

	t.Run("summary by area", func(t *testing.T) {
		rec, env := do(t, h, http.MethodGet, base+"/summary?dimension=area", nil, nil)
		if rec.Code != http.StatusOK {
			t.Fatalf("unexpected status %d: %s", rec.Code, rec.Body.String())
		}
		var summary struct {
			KPI struct {
				Records int      `json:"records"`
				Scored  int      `json:"scored"`
				Mean    *float64 `json:"mean"`
			} `json:"kpi"`
			Groups []struct {
				Key   string `json:"key"`
				Count int    `json:"count"`
			} `json:"groups"`
		}
		if err := json.Unmarshal(env.Data, &summary); err != nil {
			t.Fatalf("decode: %v", err)
		}
		if summary.KPI.Records != 4 || summary.KPI.Scored != 3 || summary.KPI.Mean == nil || *summary.KPI.Mean != 11.0/3 {
			t.Fatalf("unexpected kpi %+v", summary.KPI)
		}
		last := summary.Groups[len(summary.Groups)-1]
		if len(summary.Groups) != 3 || last.Key != "Sin asignar" || last.Count != 1 {
			t.Fatalf("unexpected groups %+v", summary.Groups)
		}
	})

	t.Run("invalid parameters", func(t *testing.T) {
		rec, env := do(t, h, http.MethodGet, base+"/summary?dimension=planet&base=weird", nil, nil)
		if rec.Code != http.StatusBadRequest || env.Error == nil || env.Error.Code != "validation_error" {
			t.Fatalf("expected validation error, got %d: %s", rec.Code, rec.Body.String())
		}
	})

	t.Run("bottom ranking", func(t *testing.T) {
		rec, env := do(t, h, http.MethodGet, base+"/ranking?order=bottom&n=2", nil, nil)
		if rec.Code != http.StatusOK {
			t.Fatalf("unexpected status %d: %s", rec.Code, rec.Body.String())
		}
		var ranking struct {
			Rows []struct {
				Position int `json:"position"`
				Record   struct {
					Person string `json:"person"`
				} `json:"record"`
			} `json:"rows"`
		}
		if err := json.Unmarshal(env.Data, &ranking); err != nil {
			t.Fatalf("decode: %v", err)
		}
		if len(ranking.Rows) != 2 || ranking.Rows[0].Record.Person != "Eva" || ranking.Rows[1].Record.Person != "Ana" {
			t.Fatalf("unexpected ranking %+v", ranking.Rows)
		}
	})

	t.Run("distribution sums to one hundred", func(t *testing.T) {
		rec, env := do(t, h, http.MethodGet, base+"/distribution?dimension=direction", nil, nil)
		if rec.Code != http.StatusOK {
			t.Fatalf("unexpected status %d: %s", rec.Code, rec.Body.String())
		}
		var dist struct {
			Overall []struct {
				Percentage float64 `json:"percentage"`
			} `json:"overall"`
		}
		if err := json.Unmarshal(env.Data, &dist); err != nil {
			t.Fatalf("decode: %v", err)
		}
		sum := 0.0
		for _, share := range dist.Overall {
			sum += share.Percentage
		}
		if sum != 100 {
			t.Fatalf("expected 100, got %v", sum)
		}
	})

	t.Run("comparison", func(t *testing.T) {
		rec, env := do(t, h, http.MethodGet, base+"/comparison?dimension=direction&group=cl%C3%ADnica&individual=ana", nil, nil)
		if rec.Code != http.StatusOK {
			t.Fatalf("unexpected status %d: %s", rec.Code, rec.Body.String())
		}
		if !strings.Contains(string(env.Data), `"individual":[{"competency":"Humildad","value":5,"count":1}]`) {
			t.Fatalf("unexpected comparison %s", env.Data)
		}
		rec, _ = do(t, h, http.MethodGet, base+"/comparison?set=unknown", nil, nil)
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400 for unknown set, got %d", rec.Code)
		}
	})

	t.Run("competencies of an empty selection", func(t *testing.T) {
		rec, env := do(t, h, http.MethodGet, base+"/competencies?person=nadie", nil, nil)
		if rec.Code != http.StatusOK {
			t.Fatalf("unexpected status %d: %s", rec.Code, rec.Body.String())
		}
		if !strings.Contains(string(env.Data), `"mean":[{"competency":"Humildad","value":null,"count":0}]`) {
			t.Fatalf("expected all-absent vector, got %s", env.Data)
		}
	})

	t.Run("history", func(t *testing.T) {
		rec, env := do(t, h, http.MethodGet, base+"/history?person=Ana", nil, nil)
		if rec.Code != http.StatusOK {
			t.Fatalf("unexpected status %d: %s", rec.Code, rec.Body.String())
		}
		var history struct {
			Trend []evaluation.YearResult `json:"trend"`
		}
		if err := json.Unmarshal(env.Data, &history); err != nil {
			t.Fatalf("decode: %v", err)
		}
		want := evaluation.YearResult{Year: 2024, Score: 4, Category: evaluation.CategoryDestacado}
		if len(history.Trend) != 1 || history.Trend[0] != want {
			t.Fatalf("unexpected trend %+v", history.Trend)
		}
	})

	t.Run("missing dataset", func(t *testing.T) {
		rec, env := do(t, h, http.MethodGet, "/datasets/nope/summary", nil, nil)
		if rec.Code != http.StatusNotFound || env.Error.Code != "dataset_not_found" {
			t.Fatalf("expected 404, got %d: %s", rec.Code, rec.Body.String())
		}
	})
}

func TestAnnotateAndExport(t *testing.T) {
	h := newRouter(t, "")
	id := upload(t, h, sampleCSV)
	base := "/datasets/" + id

	rec, env := do(t, h, http.MethodPut, base+"/actions/2", []byte(`{"text":"  Plan de mejora  "}`), nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("annotate: %d %s", rec.Code, rec.Body.String())
	}
	var action actions.Action
	if err := json.Unmarshal(env.Data, &action); err != nil {
		t.Fatalf("decode action: %v", err)
	}
	if action.Person != "Eva" || action.Text != "Plan de mejora" || action.Author != "anonymous" {
		t.Fatalf("unexpected action %+v", action)
	}

	rec, _ = do(t, h, http.MethodPut, base+"/actions/99", []byte(`{"text":"x"}`), nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for unknown row, got %d", rec.Code)
	}
	rec, _ = do(t, h, http.MethodPut, base+"/actions/abc", []byte(`{"text":"x"}`), nil)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for bad row, got %d", rec.Code)
	}

	rec, env = do(t, h, http.MethodGet, base+"/actions", nil, nil)
	if rec.Code != http.StatusOK || !strings.Contains(string(env.Data), "Plan de mejora") {
		t.Fatalf("unexpected action list %s", rec.Body.String())
	}

	rec, _ = do(t, h, http.MethodGet, base+"/export?format=csv&view=ranking&order=bottom&n=1", nil, nil)
	if rec.Code != http.StatusOK || !strings.HasPrefix(rec.Header().Get("Content-Type"), "text/csv") {
		t.Fatalf("unexpected export %d %q", rec.Code, rec.Header().Get("Content-Type"))
	}
	lines := strings.Split(strings.TrimSpace(rec.Body.String()), "\n")
	if len(lines) != 2 || !strings.HasPrefix(lines[0], "#;Evaluado") || !strings.HasSuffix(lines[1], ";Plan de mejora") {
		t.Fatalf("unexpected csv %q", lines)
	}
	if got := rec.Header().Get("Content-Disposition"); !strings.Contains(got, "evaluaciones-ranking.csv") {
		t.Fatalf("unexpected disposition %q", got)
	}

	rec, _ = do(t, h, http.MethodGet, base+"/export?format=pdf", nil, nil)
	if rec.Code != http.StatusOK || !bytes.HasPrefix(rec.Body.Bytes(), []byte("%PDF")) {
		t.Fatalf("unexpected pdf export %d", rec.Code)
	}
	rec, _ = do(t, h, http.MethodGet, base+"/export?format=csv&view=comparison&dimension=direction&group=cl%C3%ADnica&individual=ana", nil, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("unexpected comparison export %d: %s", rec.Code, rec.Body.String())
	}
	if lines := strings.Split(strings.TrimSpace(rec.Body.String()), "\n"); len(lines) != 2 || lines[1] != "Humildad;4.00;4.00;5.00" {
		t.Fatalf("unexpected comparison csv %q", lines)
	}
	rec, env = do(t, h, http.MethodGet, base+"/export?format=csv&view=all", nil, nil)
	if rec.Code != http.StatusBadRequest || env.Error.Code != "validation_error" {
		t.Fatalf("expected validation error, got %d", rec.Code)
	}

	rec, _ = do(t, h, http.MethodDelete, base, nil, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("delete: %d", rec.Code)
	}
	rec, _ = do(t, h, http.MethodGet, base, nil, nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 after delete, got %d", rec.Code)
	}
}

func TestPermissions(t *testing.T) {
	h := newRouter(t, testSecret)
	viewer, err := auth.GenerateToken(testSecret, auth.Claims{Username: "vera", Role: auth.RoleViewer}, time.Hour)
	if err != nil {
		t.Fatalf("token: %v", err)
	}
	editor, err := auth.GenerateToken(testSecret, auth.Claims{Username: "eli", Role: auth.RoleEditor}, time.Hour)
	if err != nil {
		t.Fatalf("token: %v", err)
	}

	rec, _ := do(t, h, http.MethodGet, "/datasets", nil, nil)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without token, got %d", rec.Code)
	}
	rec, _ = do(t, h, http.MethodPost, "/datasets?name=a.csv", []byte(sampleCSV), map[string]string{"Authorization": "Bearer " + viewer})
	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected viewer upload to be forbidden, got %d", rec.Code)
	}
	rec, env := do(t, h, http.MethodPost, "/datasets?name=a.csv", []byte(sampleCSV), map[string]string{"Authorization": "Bearer " + editor})
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected editor upload, got %d: %s", rec.Code, rec.Body.String())
	}
	var info dashboard.Info
	_ = json.Unmarshal(env.Data, &info)

	rec, _ = do(t, h, http.MethodGet, "/datasets/"+info.ID+"/summary", nil, map[string]string{"Authorization": "Bearer " + viewer})
	if rec.Code != http.StatusOK {
		t.Fatalf("expected viewer read, got %d", rec.Code)
	}
	rec, _ = do(t, h, http.MethodPut, "/datasets/"+info.ID+"/actions/0", []byte(`{"text":"x"}`), map[string]string{"Authorization": "Bearer " + viewer})
	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected viewer annotate to be forbidden, got %d", rec.Code)
	}
}
