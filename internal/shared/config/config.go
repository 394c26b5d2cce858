package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

// Config holds application configuration.
type Config struct {
	Port        string `validate:"required"`
	Env         string `validate:"oneof=dev local staging production"`
	DatabaseURL string `validate:"required_if=Env production"`

	RunMigrations   bool
	CORSAllowOrigin []string
	LogJSON         bool

	ScoringBaseURL      string        `validate:"required,url"`
	ScoringTimeout      time.Duration `validate:"gt=0"`
	ScoringRetryBackoff time.Duration `validate:"gte=0"`
	MaxUploadBytes      int64         `validate:"gt=0"`
	LogLevel            string        `validate:"oneof=debug info warn error"`
	ShutdownTimeout     time.Duration `validate:"gt=0"`

	// Archive for original uploads: none, local or s3.
	ObjectStoreType string `validate:"oneof=none local s3"`
	LocalStoreDir   string `validate:"required_if=ObjectStoreType local"`
	AWSRegion       string
	S3Bucket        string `validate:"required_if=ObjectStoreType s3"`
	S3Prefix        string
	SSEKMSKeyID     string

	// Token buckets per client IP; a zero rate disables the group.
	RateLimitDefaultRPS   float64 `validate:"gte=0"`
	RateLimitDefaultBurst int     `validate:"gte=0"`
	RateLimitScoringRPS   float64 `validate:"gte=0"`
	RateLimitScoringBurst int     `validate:"gte=0"`
}

var validate = validator.New()

// Load reads configuration from the environment, after best-effort loading of
// local .env files, and validates it.
func Load() (Config, error) {
	loadEnvFiles(".env", "cmd/.env")

	var errs []error
	cfg := Config{
		Port:            getEnv("PORT", "8080"),
		Env:             normalizeEnv(getEnv("ENV", "dev")),
		DatabaseURL:     strings.TrimSpace(os.Getenv("DATABASE_URL")),
		CORSAllowOrigin: splitAndTrim(getEnv("CORS_ALLOW_ORIGINS", "http://localhost:5173")),
		ScoringBaseURL:  strings.TrimRight(getEnv("SCORING_BASE_URL", "http://localhost:5000"), "/"),
		LogLevel:        strings.ToLower(getEnv("LOG_LEVEL", "info")),
		ObjectStoreType: normalizeStoreType(getEnv("OBJECT_STORE", "local")),
		LocalStoreDir:   getEnv("LOCAL_STORE_DIR", "./data/originals"),
		AWSRegion:       getEnv("AWS_REGION", ""),
		S3Bucket:        getEnv("S3_BUCKET", ""),
		S3Prefix:        getEnv("S3_PREFIX", ""),
		SSEKMSKeyID:     getEnv("SSE_KMS_KEY_ID", ""),
	}
	cfg.RunMigrations = getBool("DB_RUN_MIGRATIONS", true, &errs)
	cfg.ScoringTimeout = getDuration("SCORING_TIMEOUT", 30*time.Second, &errs)
	cfg.ScoringRetryBackoff = getDuration("SCORING_RETRY_BACKOFF", 500*time.Millisecond, &errs)
	cfg.MaxUploadBytes = getInt64("MAX_UPLOAD_BYTES", 10<<20, &errs)
	cfg.LogJSON = getBool("LOG_JSON", cfg.Env != "dev" && cfg.Env != "local", &errs)
	cfg.ShutdownTimeout = getDuration("SHUTDOWN_TIMEOUT", 15*time.Second, &errs)
	cfg.RateLimitDefaultRPS = getFloat("RATE_LIMIT_DEFAULT_RPS", 20, &errs)
	cfg.RateLimitDefaultBurst = int(getInt64("RATE_LIMIT_DEFAULT_BURST", 40, &errs))
	cfg.RateLimitScoringRPS = getFloat("RATE_LIMIT_SCORING_RPS", 1, &errs)
	cfg.RateLimitScoringBurst = int(getInt64("RATE_LIMIT_SCORING_BURST", 5, &errs))

	if err := errors.Join(errs...); err != nil {
		return Config{}, err
	}
	if err := validate.Struct(cfg); err != nil {
		return Config{}, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

func getEnv(key, def string) string {
	if val := strings.TrimSpace(os.Getenv(key)); val != "" {
		return val
	}
	return def
}

func getDuration(key string, def time.Duration, errs *[]error) time.Duration {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return def
	}
	val, err := time.ParseDuration(raw)
	if err != nil {
		*errs = append(*errs, fmt.Errorf("%s: %w", key, err))
		return def
	}
	return val
}

func getInt64(key string, def int64, errs *[]error) int64 {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return def
	}
	val, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		*errs = append(*errs, fmt.Errorf("%s: %w", key, err))
		return def
	}
	return val
}

func getFloat(key string, def float64, errs *[]error) float64 {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return def
	}
	val, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		*errs = append(*errs, fmt.Errorf("%s: %w", key, err))
		return def
	}
	return val
}

func getBool(key string, def bool, errs *[]error) bool {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return def
	}
	val, err := strconv.ParseBool(raw)
	if err != nil {
		*errs = append(*errs, fmt.Errorf("%s: %w", key, err))
		return def
	}
	return val
}

func splitAndTrim(raw string) []string {
	parts := strings.Split(raw, ",")
	var out []string
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

func normalizeStoreType(raw string) string {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "s3":
		return "s3"
	case "none", "off", "disabled":
		return "none"
	default:
		return "local"
	}
}

func normalizeEnv(raw string) string {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "production", "prod":
		return "production"
	case "staging":
		return "staging"
	case "local":
		return "local"
	default:
		return "dev"
	}
}
