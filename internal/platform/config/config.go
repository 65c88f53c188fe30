package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"perfdash/internal/domain/analytics"
	"perfdash/internal/domain/evaluation"
)

type Config struct {
	Addr               string
	Environment        string
	LogLevel           string
	DatabaseURL        string
	ActionsDBPath      string
	MigrationsDir      string
	RunMigrations      bool
	JWTSecret          string
	AdminUser          string
	AdminPasswordHash  string
	ViewerUser         string
	ViewerPasswordHash string
	TokenTTL           time.Duration
	MaxBodyBytes       int64
	RateLimitPerMinute int
	CORSOrigins        []string
	MetricsEnabled     bool
	DatasetCacheSize   int
	RankingDefaultN    int
	ScoreYear          int
	CategoryPolicy     string
	PercentBase        string
	RulesFile          string
}

// Load reads the environment, after merging a .env file from the working
// directory when one exists. Variables already set win over the file.
func Load() Config {
	_ = godotenv.Load()
	return Config{
		Addr:               getEnv("APP_ADDR", ":8080"),
		Environment:        getEnv("APP_ENV", "development"),
		LogLevel:           getEnv("LOG_LEVEL", "info"),
		DatabaseURL:        getEnv("DATABASE_URL", ""),
		ActionsDBPath:      getEnv("ACTIONS_DB_PATH", "file:perfdash.db?_pragma=busy_timeout(5000)"),
		MigrationsDir:      getEnv("MIGRATIONS_DIR", "migrations"),
		RunMigrations:      getEnvBool("RUN_MIGRATIONS", true),
		JWTSecret:          getEnv("JWT_SECRET", ""),
		AdminUser:          getEnv("ADMIN_USER", "admin"),
		AdminPasswordHash:  getEnv("ADMIN_PASSWORD_HASH", ""),
		ViewerUser:         getEnv("VIEWER_USER", ""),
		ViewerPasswordHash: getEnv("VIEWER_PASSWORD_HASH", ""),
		TokenTTL:           getEnvDuration("TOKEN_TTL", 12*time.Hour),
		MaxBodyBytes:       int64(getEnvInt("MAX_BODY_BYTES", 20<<20)),
		RateLimitPerMinute: getEnvInt("RATE_LIMIT_PER_MINUTE", 120),
		CORSOrigins:        getEnvList("CORS_ORIGINS"),
		MetricsEnabled:     getEnvBool("METRICS_ENABLED", true),
		DatasetCacheSize:   getEnvInt("DATASET_CACHE_SIZE", 16),
		RankingDefaultN:    getEnvInt("RANKING_DEFAULT_N", 10),
		ScoreYear:          getEnvInt("SCORE_YEAR", 0),
		CategoryPolicy:     getEnv("CATEGORY_POLICY", string(evaluation.CategoryPolicyLenient)),
		PercentBase:        getEnv("PERCENT_BASE", string(analytics.PercentOfGroup)),
		RulesFile:          getEnv("RULES_FILE", ""),
	}
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvInt(key string, fallback int) int {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := time.ParseDuration(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvList(key string) []string {
	var out []string
	for _, part := range strings.Split(os.Getenv(key), ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// AuthEnabled is false when no signing secret is configured.
func (c Config) AuthEnabled() bool {
	return strings.TrimSpace(c.JWTSecret) != ""
}

func (c Config) SlogLevel() slog.Level {
	switch strings.ToLower(strings.TrimSpace(c.LogLevel)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	}
	return slog.LevelInfo
}

// NormalizeOptions builds normalizer options from the config and the optional
// rules file.
func (c Config) NormalizeOptions() (evaluation.Options, error) {
	opts := evaluation.DefaultOptions()
	policy, err := evaluation.ParseCategoryPolicy(c.CategoryPolicy)
	if err != nil {
		return opts, err
	}
	opts.CategoryPolicy = policy
	opts.Year = c.ScoreYear
	if c.RulesFile != "" {
		rules, err := LoadRules(c.RulesFile)
		if err != nil {
			return opts, err
		}
		opts.Rules = rules
	}
	return opts, nil
}

func (c Config) Validate() error {
	if c.Environment == "production" {
		if strings.TrimSpace(c.JWTSecret) == "" {
			return fmt.Errorf("JWT_SECRET must be set to a strong value in production")
		}
		if strings.TrimSpace(c.AdminPasswordHash) == "" {
			return fmt.Errorf("ADMIN_PASSWORD_HASH must be set in production")
		}
	}
	if c.AuthEnabled() && len(c.JWTSecret) < 16 {
		return fmt.Errorf("JWT_SECRET must be at least 16 characters")
	}
	if c.DatabaseURL == "" && strings.TrimSpace(c.ActionsDBPath) == "" {
		return fmt.Errorf("either DATABASE_URL or ACTIONS_DB_PATH is required")
	}
	if c.MaxBodyBytes < 1024 {
		return fmt.Errorf("MAX_BODY_BYTES must be at least 1024")
	}
	if c.RateLimitPerMinute <= 0 {
		return fmt.Errorf("RATE_LIMIT_PER_MINUTE must be positive")
	}
	if c.TokenTTL <= 0 {
		return fmt.Errorf("TOKEN_TTL must be positive")
	}
	if c.DatasetCacheSize <= 0 {
		return fmt.Errorf("DATASET_CACHE_SIZE must be positive")
	}
	if c.RankingDefaultN <= 0 {
		return fmt.Errorf("RANKING_DEFAULT_N must be positive")
	}
	if c.ScoreYear < 0 {
		return fmt.Errorf("SCORE_YEAR must not be negative")
	}
	if _, err := evaluation.ParseCategoryPolicy(c.CategoryPolicy); err != nil {
		return fmt.Errorf("CATEGORY_POLICY: %w", err)
	}
	if _, err := analytics.ParsePercentBase(c.PercentBase); err != nil {
		return fmt.Errorf("PERCENT_BASE: %w", err)
	}
	return nil
}
