package cli

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const sampleCSV = "Evaluado;Cargo;Dirección;Área;Nota 2024;Categoría 2024\n" +
	"Ana;Jefa de Turno;Clínica;UCI;4,5;Destacado\n" +
	"Luis;Analista;Clínica;UCI;3;Cumple\n" +
	"Eva;Gerente;Comercial;;2;NO CUMPLE\n"

func writeSample(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "evaluaciones.csv")
	if err := os.WriteFile(path, []byte(sampleCSV), 0o600); err != nil {
		t.Fatalf("write sample: %v", err)
	}
	return path
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	root := NewRootCommand(&out)
	root.SetErr(&bytes.Buffer{})
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func TestSummarize(t *testing.T) {
	path := writeSample(t)
	out, err := run(t, "summarize", path, "--dimension", "area", "--top", "1")
	if err != nil {
		t.Fatalf("summarize: %v", err)
	}
	var summary struct {
		Dimension string `json:"dimension"`
		KPI       struct {
			Records int `json:"records"`
		} `json:"kpi"`
		Groups []struct {
			Key string `json:"key"`
		} `json:"groups"`
		Top []struct {
			Record struct {
				Person string `json:"person"`
			} `json:"record"`
		} `json:"top"`
	}
	if err := json.Unmarshal([]byte(out), &summary); err != nil {
		t.Fatalf("decode: %v\n%s", err, out)
	}
	if summary.Dimension != "area" || summary.KPI.Records != 3 {
		t.Fatalf("unexpected summary %+v", summary)
	}
	if len(summary.Groups) != 2 || summary.Groups[1].Key != "Sin asignar" {
		t.Fatalf("unexpected groups %+v", summary.Groups)
	}
	if len(summary.Top) != 1 || summary.Top[0].Record.Person != "Ana" {
		t.Fatalf("unexpected top %+v", summary.Top)
	}

	leaders, err := run(t, "summarize", path, "--leaders")
	if err != nil {
		t.Fatalf("summarize leaders: %v", err)
	}
	if !strings.Contains(leaders, `"records": 2`) {
		t.Fatalf("expected two leaders, got %s", leaders)
	}
}

func TestSummarizeErrors(t *testing.T) {
	path := writeSample(t)
	tests := []struct {
		name string
		args []string
		want string
	}{
		{name: "missing file", args: []string{"summarize", filepath.Join(t.TempDir(), "none.csv")}, want: "failed to read"},
		{name: "bad dimension", args: []string{"summarize", path, "--dimension", "planet"}, want: "invalid --dimension"},
		{name: "bad policy", args: []string{"summarize", path, "--policy", "loose"}, want: "normalizer options"},
		{name: "no args", args: []string{"summarize"}, want: "accepts 1 arg"},
	}
	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			_, err := run(t, tc.args...)
			if err == nil || !strings.Contains(err.Error(), tc.want) {
				t.Fatalf("expected error containing %q, got %v", tc.want, err)
			}
		})
	}
}

func TestExport(t *testing.T) {
	path := writeSample(t)
	dir := filepath.Dir(path)

	out, err := run(t, "export", path, "--view", "ranking", "--order", "bottom", "-n", "1")
	if err != nil {
		t.Fatalf("export csv: %v", err)
	}
	target := filepath.Join(dir, "evaluaciones-ranking.csv")
	if !strings.Contains(out, target) {
		t.Fatalf("unexpected output %q", out)
	}
	data, err := os.ReadFile(target)
	if err != nil {
		t.Fatalf("read export: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	if len(lines) != 2 || !strings.HasPrefix(lines[1], "1;Eva;") {
		t.Fatalf("unexpected csv %q", lines)
	}

	workbook := filepath.Join(dir, "out.xlsx")
	if _, err := run(t, "export", path, "--format", "xlsx", "-o", workbook); err != nil {
		t.Fatalf("export xlsx: %v", err)
	}
	if info, err := os.Stat(workbook); err != nil || info.Size() == 0 {
		t.Fatalf("expected workbook, got %v", err)
	}

	comparison := filepath.Join(dir, "comparacion.csv")
	if _, err := run(t, "export", path, "--view", "comparison", "--individual", "Ana", "-o", comparison); err != nil {
		t.Fatalf("export comparison: %v", err)
	}
	data, err = os.ReadFile(comparison)
	if err != nil {
		t.Fatalf("read comparison: %v", err)
	}
	if strings.TrimSpace(string(data)) != "competency;organization;group;individual" {
		t.Fatalf("expected header only without competency columns, got %q", data)
	}

	if _, err := run(t, "export", path, "--format", "pdf", "--view", "groups"); err == nil || !strings.Contains(err.Error(), "invalid --view") {
		t.Fatalf("expected view error, got %v", err)
	}
	if _, err := run(t, "export", path, "--order", "middle"); err == nil {
		t.Fatal("expected order error")
	}
}
