package bootstrap

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"resume-matcher/internal/shared/config"
)

func devConfig(scoringURL string) config.Config {
	return config.Config{
		Port:                "8080",
		Env:                 "dev",
		ScoringBaseURL:      scoringURL,
		ScoringTimeout:      time.Second,
		ScoringRetryBackoff: time.Millisecond,
		MaxUploadBytes:      1 << 20,
		LogLevel:            "error",
		ShutdownTimeout:     time.Second,
	}
}

func TestBuildFallsBackToMemoryInDev(t *testing.T) {
	engine := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	t.Cleanup(engine.Close)

	app, err := Build(context.Background(), devConfig(engine.URL))
	require.NoError(t, err)
	t.Cleanup(app.Close)

	assert.Nil(t, app.DB)
	assert.Nil(t, app.Archive)
	assert.Equal(t, []string{"scoring"}, app.Health.Names())

	w := httptest.NewRecorder()
	app.Router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/ready", nil))
	assert.Equal(t, http.StatusOK, w.Code, w.Body.String())
}

func TestBuildUsesLocalArchive(t *testing.T) {
	cfg := devConfig("http://localhost:5000")
	cfg.ObjectStoreType = "local"
	cfg.LocalStoreDir = t.TempDir()

	app, err := Build(context.Background(), cfg)
	require.NoError(t, err)
	t.Cleanup(app.Close)

	require.NotNil(t, app.Archive)
	assert.Same(t, app.Archive, app.Orchestrator.Archive)
}

func TestBuildRequiresDatabaseOutsideDev(t *testing.T) {
	cfg := devConfig("http://localhost:5000")
	cfg.Env = "production"

	_, err := Build(context.Background(), cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "DATABASE_URL")
}
