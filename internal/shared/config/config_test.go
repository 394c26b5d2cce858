package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"PORT", "ENV", "DATABASE_URL", "CORS_ALLOW_ORIGINS", "SCORING_BASE_URL", "SCORING_TIMEOUT",
		"SCORING_RETRY_BACKOFF", "MAX_UPLOAD_BYTES", "LOG_JSON", "LOG_LEVEL", "DB_RUN_MIGRATIONS", "SHUTDOWN_TIMEOUT",
		"RATE_LIMIT_DEFAULT_RPS", "RATE_LIMIT_DEFAULT_BURST", "RATE_LIMIT_SCORING_RPS", "RATE_LIMIT_SCORING_BURST",
		"OBJECT_STORE", "LOCAL_STORE_DIR", "AWS_REGION", "S3_BUCKET", "S3_PREFIX", "SSE_KMS_KEY_ID",
	} {
		t.Setenv(key, "")
		require.NoError(t, os.Unsetenv(key))
	}
	t.Chdir(t.TempDir())
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "dev", cfg.Env)
	assert.Equal(t, "http://localhost:5000", cfg.ScoringBaseURL)
	assert.Equal(t, 30*time.Second, cfg.ScoringTimeout)
	assert.Equal(t, 500*time.Millisecond, cfg.ScoringRetryBackoff)
	assert.Equal(t, int64(10<<20), cfg.MaxUploadBytes)
	assert.False(t, cfg.LogJSON)
	assert.True(t, cfg.RunMigrations)
	assert.Equal(t, []string{"http://localhost:5173"}, cfg.CORSAllowOrigin)
	assert.Equal(t, 1.0, cfg.RateLimitScoringRPS)
	assert.Equal(t, 5, cfg.RateLimitScoringBurst)
	assert.Equal(t, "local", cfg.ObjectStoreType)
	assert.Equal(t, "./data/originals", cfg.LocalStoreDir)
}

func TestLoadObjectStoreS3(t *testing.T) {
	clearEnv(t)
	t.Setenv("OBJECT_STORE", "S3")
	t.Setenv("S3_BUCKET", "resumes")
	t.Setenv("S3_PREFIX", "originals/")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "s3", cfg.ObjectStoreType)
	assert.Equal(t, "resumes", cfg.S3Bucket)
	assert.Equal(t, "originals/", cfg.S3Prefix)
}

func TestLoadOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("ENV", "prod")
	t.Setenv("DATABASE_URL", "postgres://db/app")
	t.Setenv("SCORING_BASE_URL", "http://engine:5000/")
	t.Setenv("SCORING_TIMEOUT", "5s")
	t.Setenv("CORS_ALLOW_ORIGINS", "https://a.example, https://b.example")
	t.Setenv("LOG_LEVEL", "DEBUG")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "production", cfg.Env)
	assert.Equal(t, "http://engine:5000", cfg.ScoringBaseURL)
	assert.Equal(t, 5*time.Second, cfg.ScoringTimeout)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.CORSAllowOrigin)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.True(t, cfg.LogJSON)
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	tests := []struct {
		name string
		key  string
		val  string
	}{
		{name: "bad duration", key: "SCORING_TIMEOUT", val: "soon"},
		{name: "zero timeout", key: "SCORING_TIMEOUT", val: "0s"},
		{name: "bad url", key: "SCORING_BASE_URL", val: "not a url"},
		{name: "bad upload size", key: "MAX_UPLOAD_BYTES", val: "-1"},
		{name: "bad level", key: "LOG_LEVEL", val: "loud"},
		{name: "negative rate", key: "RATE_LIMIT_SCORING_RPS", val: "-2"},
		{name: "production without database", key: "ENV", val: "production"},
		{name: "s3 without bucket", key: "OBJECT_STORE", val: "s3"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			t.Setenv(tt.key, tt.val)
			_, err := Load()
			assert.Error(t, err)
		})
	}
}

func TestLoadReadsDotEnvWithoutOverriding(t *testing.T) {
	clearEnv(t)
	require.NoError(t, os.WriteFile(filepath.Join(".", ".env"), []byte("PORT=9090\nSCORING_BASE_URL=http://from-file:1\n"), 0o600))
	t.Setenv("SCORING_BASE_URL", "http://from-env:2")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "9090", cfg.Port)
	assert.Equal(t, "http://from-env:2", cfg.ScoringBaseURL)
}
