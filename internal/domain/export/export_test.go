package export

import (
	"bytes"
	"errors"
	"math"
	"strings"
	"testing"
	"time"

	"perfdash/internal/domain/analytics"
	"perfdash/internal/domain/dataset"
	"perfdash/internal/domain/evaluation"
)

func normalizedTable(t *testing.T) *evaluation.Table {
	t.Helper()
	raw, err := dataset.LoadBytes([]byte("Evaluado;Cargo;Área;Nota 2023;Categoría 2023;Nota 2024;Categoría 2024;Humildad;Acciones\n" +
		"Ana;Jefa; UCI ;3;Cumple;4,5;DESTACADO;Excepcional;\n" +
		"\"Pérez; Luis\";Analista;;;;3.25;No cumple;2;Revisar metas\n" +
		"Eva;Técnico;Pabellón;2;;;Pendiente;;\n"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	table, err := evaluation.Normalize(raw, evaluation.DefaultOptions())
	if err != nil {
		t.Fatalf("normalize: %v", err)
	}
	return table
}

func TestCSVRoundTrip(t *testing.T) {
	table := normalizedTable(t)
	var buf bytes.Buffer
	if err := WriteCSV(&buf, RecordsSheet("Registros", table, table.Records)); err != nil {
		t.Fatalf("write: %v", err)
	}
	raw, err := dataset.LoadBytes(buf.Bytes())
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	if raw.Delimiter != ';' || raw.Encoding != dataset.EncodingUTF8 {
		t.Fatalf("expected first attempt to win, got %q %s", raw.Delimiter, raw.Encoding)
	}
	again, err := evaluation.Normalize(raw, evaluation.DefaultOptions())
	if err != nil {
		t.Fatalf("renormalize: %v", err)
	}
	for i, want := range table.Records {
		got := again.Records[i]
		if want.HasScore() != got.HasScore() || (want.HasScore() && math.Abs(want.Score-got.Score) > 1e-9) {
			t.Fatalf("row %d score: want %v got %v", i, want.Score, got.Score)
		}
		if want.Category != got.Category || want.Person != got.Person || want.Action != got.Action {
			t.Fatalf("row %d changed: want %+v got %+v", i, want, got)
		}
	}
}

func TestCSVRoundTripMixedYearFamilies(t *testing.T) {
	raw, err := dataset.LoadBytes([]byte("Evaluado;Nota 2024;Categoría\nAna;4,5;Destacado\nLuis;2;NO CUMPLE\n"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	table, err := evaluation.Normalize(raw, evaluation.DefaultOptions())
	if err != nil {
		t.Fatalf("normalize: %v", err)
	}
	var buf bytes.Buffer
	if err := WriteCSV(&buf, RecordsSheet("Registros", table, table.Records)); err != nil {
		t.Fatalf("write: %v", err)
	}
	reloaded, err := dataset.LoadBytes(buf.Bytes())
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	again, err := evaluation.Normalize(reloaded, evaluation.DefaultOptions())
	if err != nil {
		t.Fatalf("renormalize: %v", err)
	}
	for i, want := range table.Records {
		got := again.Records[i]
		if got.Category != want.Category || got.Score != want.Score {
			t.Fatalf("row %d: want %q/%v got %q/%v", i, want.Category, want.Score, got.Category, got.Score)
		}
	}
}

func TestWorkbookRoundTrip(t *testing.T) {
	table := normalizedTable(t)
	groups := analytics.GroupBy(table.Records, analytics.DimensionArea)
	var buf bytes.Buffer
	err := WriteWorkbook(&buf,
		RecordsSheet("Registros", table, table.Records),
		GroupsSheet("Grupos", analytics.DimensionArea, groups),
		DistributionSheet("Distribución", analytics.DimensionArea, analytics.Distribution(table.Records, analytics.DimensionArea, analytics.PercentOfGroup)),
	)
	if err != nil {
		t.Fatalf("write: %v", err)
	}
	raw, err := dataset.LoadWorkbook(buf.Bytes())
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	again, err := evaluation.Normalize(raw, evaluation.DefaultOptions())
	if err != nil {
		t.Fatalf("renormalize: %v", err)
	}
	if len(again.Records) != len(table.Records) {
		t.Fatalf("expected %d records, got %d", len(table.Records), len(again.Records))
	}
	if again.Records[0].Score != 4.5 || again.Records[1].Score != 3.25 || again.Records[1].Category != evaluation.CategoryNoCumple {
		t.Fatalf("unexpected records %+v", again.Records[:2])
	}
}

func TestWriteWorkbookNeedsSheets(t *testing.T) {
	if err := WriteWorkbook(&bytes.Buffer{}); err == nil {
		t.Fatal("expected error for empty workbook")
	}
}

func TestUniqueSheetName(t *testing.T) {
	used := map[string]bool{}
	tests := []struct {
		in   string
		want string
	}{
		{in: "Ranking", want: "Ranking"},
		{in: "ranking", want: "ranking (2)"},
		{in: "a/b:c", want: "a-b-c"},
		{in: "  ", want: "Sheet4"},
		{in: strings.Repeat("x", 40), want: strings.Repeat("x", 31)},
	}
	for i, tc := range tests {
		if got := uniqueSheetName(tc.in, i, used); got != tc.want {
			t.Fatalf("uniqueSheetName(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestRankingSheetAndPDF(t *testing.T) {
	table := normalizedTable(t)
	top := analytics.Top(table.Records, 5)
	sheet := RankingSheet("Top", top)
	if len(sheet.Rows) != 2 || sheet.Rows[0][1] != "Ana" || sheet.Rows[1][7] != "Revisar metas" {
		t.Fatalf("unexpected ranking sheet %+v", sheet.Rows)
	}

	var buf bytes.Buffer
	if err := WriteRankingPDF(&buf, "Ranking de desempeño", time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC), top); err != nil {
		t.Fatalf("pdf: %v", err)
	}
	if !bytes.HasPrefix(buf.Bytes(), []byte("%PDF")) {
		t.Fatal("expected PDF output")
	}
}

func TestRenderComparisonView(t *testing.T) {
	table := normalizedTable(t)
	view, err := ParseView("comparison", FormatCSV)
	if err != nil {
		t.Fatalf("parse view: %v", err)
	}
	req := Request{
		Table:        table,
		Records:      table.Records,
		Competencies: table.Competencies,
		Individual:   analytics.ByPerson("Ana"),
	}
	var buf bytes.Buffer
	if err := Render(&buf, FormatCSV, view, req, time.Now()); err != nil {
		t.Fatalf("render: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 2 || !strings.HasSuffix(lines[1], ";3.50;;5.00") {
		t.Fatalf("unexpected comparison csv %q", lines)
	}
	if _, err := ParseView("comparison", FormatPDF); !errors.Is(err, ErrViewFormat) {
		t.Fatalf("expected ErrViewFormat for pdf, got %v", err)
	}
}

func TestComparisonSheet(t *testing.T) {
	table := normalizedTable(t)
	comparison := analytics.Compare(table.Records, table.Competencies, nil, analytics.ByPerson("Ana"))
	sheet := ComparisonSheet("Radar", comparison)
	if len(sheet.Rows) != 1 {
		t.Fatalf("expected one competency row, got %d", len(sheet.Rows))
	}
	if got := sheet.Rows[0]; got[1] != "3.50" || got[2] != "" || got[3] != "5.00" {
		t.Fatalf("unexpected comparison row %q", got)
	}
}

func TestParseFormatAndView(t *testing.T) {
	tests := []struct {
		format string
		view   string
		want   View
		err    error
	}{
		{format: "", view: "", want: ViewRecords},
		{format: "xlsx", view: "", want: ViewAll},
		{format: "PDF", view: "", want: ViewRanking},
		{format: "csv", view: "groups", want: ViewGroups},
		{format: "csv", view: "all", err: ErrViewFormat},
		{format: "pdf", view: "records", err: ErrViewFormat},
		{format: "xlsx", view: "chart", err: ErrUnknownView},
		{format: "docx", err: ErrUnknownFormat},
	}
	for _, tc := range tests {
		tc := tc
		t.Run(tc.format+"/"+tc.view, func(t *testing.T) {
			format, err := ParseFormat(tc.format)
			if err == nil {
				var view View
				view, err = ParseView(tc.view, format)
				if err == nil && view != tc.want {
					t.Fatalf("expected %q, got %q", tc.want, view)
				}
			}
			if tc.err == nil && err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if tc.err != nil && !errors.Is(err, tc.err) {
				t.Fatalf("expected %v, got %v", tc.err, err)
			}
		})
	}
}

func TestRender(t *testing.T) {
	table := normalizedTable(t)
	req := Request{
		Title:     "Ranking",
		Table:     table,
		Records:   table.Records,
		Dimension: analytics.DimensionArea,
		Base:      analytics.PercentOfGroup,
		Order:     analytics.RankBottom,
		N:         1,
	}

	var csvOut bytes.Buffer
	if err := Render(&csvOut, FormatCSV, ViewRanking, req, time.Now()); err != nil {
		t.Fatalf("csv: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(csvOut.String()), "\n")
	if len(lines) != 2 || !strings.Contains(lines[1], "Pérez; Luis") {
		t.Fatalf("expected the lowest score only, got %q", lines)
	}

	var book bytes.Buffer
	if err := Render(&book, FormatXLSX, ViewAll, req, time.Now()); err != nil {
		t.Fatalf("xlsx: %v", err)
	}
	if sheets := Sheets(ViewAll, req); len(sheets) != 4 || sheets[3].Name != "Peores" {
		t.Fatalf("unexpected sheets %+v", sheets)
	}

	var pdf bytes.Buffer
	if err := Render(&pdf, FormatPDF, ViewRanking, req, time.Now()); err != nil {
		t.Fatalf("pdf: %v", err)
	}
	if !bytes.HasPrefix(pdf.Bytes(), []byte("%PDF")) {
		t.Fatal("expected a PDF document")
	}
	if err := Render(&pdf, FormatCSV, ViewAll, req, time.Now()); !errors.Is(err, ErrViewFormat) {
		t.Fatalf("expected ErrViewFormat, got %v", err)
	}
}

func TestFileName(t *testing.T) {
	if got := FileName("uploads/Evaluaciones 2024.csv", ViewRanking, FormatPDF); got != "Evaluaciones 2024-ranking.pdf" {
		t.Fatalf("unexpected name %q", got)
	}
	if got := FileName("", ViewAll, FormatXLSX); got != "evaluaciones-all.xlsx" {
		t.Fatalf("unexpected fallback %q", got)
	}
}
