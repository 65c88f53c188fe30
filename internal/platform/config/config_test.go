package config

import (
	"testing"
	"time"

	"perfdash/internal/domain/evaluation"
)

func TestLoadReadsEnvironment(t *testing.T) {
	t.Setenv("APP_ADDR", ":9090")
	t.Setenv("TOKEN_TTL", "30m")
	t.Setenv("CORS_ORIGINS", "https://a.example, ,https://b.example")
	t.Setenv("SCORE_YEAR", "2023")
	t.Setenv("METRICS_ENABLED", "nope")

	cfg := Load()
	if cfg.Addr != ":9090" || cfg.TokenTTL != 30*time.Minute || cfg.ScoreYear != 2023 {
		t.Fatalf("unexpected config %+v", cfg)
	}
	if len(cfg.CORSOrigins) != 2 || cfg.CORSOrigins[1] != "https://b.example" {
		t.Fatalf("unexpected origins %q", cfg.CORSOrigins)
	}
	if !cfg.MetricsEnabled {
		t.Fatal("expected invalid bool to fall back to default")
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("expected defaults to validate, got %v", err)
	}
}

func TestValidateRejectsBadValues(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{name: "production without secret", mutate: func(c *Config) { c.Environment = "production" }},
		{name: "short secret", mutate: func(c *Config) { c.JWTSecret = "short" }},
		{name: "unknown policy", mutate: func(c *Config) { c.CategoryPolicy = "loose" }},
		{name: "unknown base", mutate: func(c *Config) { c.PercentBase = "total" }},
		{name: "zero cache", mutate: func(c *Config) { c.DatasetCacheSize = 0 }},
		{name: "no store", mutate: func(c *Config) { c.ActionsDBPath = "" }},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cfg := Load()
			tc.mutate(&cfg)
			if err := cfg.Validate(); err == nil {
				t.Fatal("expected validation error")
			}
		})
	}
}

func TestParseRulesMergesOverrides(t *testing.T) {
	rules, err := ParseRules([]byte(`
categoryAliases:
  Sobresaliente: Destacado
leadershipKeywords: [" Líder ", jefe]
competencySets:
  Clinical: [Empatía, "Seguridad del Paciente"]
`))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if category, ok := rules.Canonicalize("Sobresaliente"); !ok || category != evaluation.CategoryDestacado {
		t.Fatalf("expected alias to map, got %q %v", category, ok)
	}
	if category, ok := rules.Canonicalize("NO CUMPLE"); !ok || category != evaluation.CategoryNoCumple {
		t.Fatalf("expected defaults to survive, got %q %v", category, ok)
	}
	if len(rules.LeadershipKeywords) != 2 || rules.LeadershipKeywords[0] != "líder" {
		t.Fatalf("unexpected keywords %q", rules.LeadershipKeywords)
	}
	if set, ok := rules.CompetencySet("clinical"); !ok || len(set) != 2 {
		t.Fatalf("unexpected competency set %v %v", set, ok)
	}

	if _, err := ParseRules([]byte("categoryAliases:\n  Top: Genial\n")); err == nil {
		t.Fatal("expected alias to a non-canonical category to fail")
	}
}
