package bootstrap

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"resume-matcher/internal/analyses"
	"resume-matcher/internal/gateway"
	"resume-matcher/internal/orchestrator"
	"resume-matcher/internal/resumes"
	"resume-matcher/internal/scoring"
	"resume-matcher/internal/server"
	"resume-matcher/internal/services/health"
	"resume-matcher/internal/shared/config"
	"resume-matcher/internal/shared/server/middleware"
	"resume-matcher/internal/shared/storage/db"
	"resume-matcher/internal/shared/storage/object"
	localstore "resume-matcher/internal/shared/storage/object/local"
	s3store "resume-matcher/internal/shared/storage/object/s3"
	"resume-matcher/internal/shared/telemetry"
	"resume-matcher/internal/users"
)

// App holds shared dependencies.
type App struct {
	Config       config.Config
	Logger       *zap.Logger
	Router       *gin.Engine
	DB           *sql.DB
	Gateway      *gateway.Gateway
	Scoring      *scoring.Client
	Archive      object.Store
	Orchestrator *orchestrator.Orchestrator
	UsersService *users.Service
	Health       *health.Service
}

// Build prepares every dependency and wires the router.
func Build(ctx context.Context, cfg config.Config) (*App, error) {
	logger, err := telemetry.New(cfg.LogJSON, cfg.LogLevel)
	if err != nil {
		return nil, fmt.Errorf("build logger: %w", err)
	}
	telemetry.SetLogger(logger)
	if !isDevLike(cfg.Env) {
		gin.SetMode(gin.ReleaseMode)
	}

	sqlDB, err := buildDB(ctx, cfg)
	if err != nil {
		return nil, err
	}

	scoringClient, err := scoring.NewClient(scoring.Config{
		BaseURL:      cfg.ScoringBaseURL,
		Timeout:      cfg.ScoringTimeout,
		RetryBackoff: cfg.ScoringRetryBackoff,
	})
	if err != nil {
		closeDB(sqlDB)
		return nil, fmt.Errorf("build scoring client: %w", err)
	}

	archive, err := buildArchive(ctx, cfg)
	if err != nil {
		closeDB(sqlDB)
		return nil, fmt.Errorf("build object store: %w", err)
	}

	app := &App{
		Config:  cfg,
		Logger:  logger,
		DB:      sqlDB,
		Gateway: buildGateway(sqlDB),
		Scoring: scoringClient,
		Archive: archive,
		Health:  health.NewService(0),
	}
	app.Orchestrator = orchestrator.New(app.Gateway, app.Scoring)
	app.Orchestrator.Archive = archive
	app.UsersService = users.NewService(app.Gateway.Users)

	if sqlDB != nil {
		app.Health.Register("database", sqlDB.PingContext)
	}
	app.Health.Register("scoring", app.Scoring.Health)

	app.Router = server.NewEngine(server.Deps{
		Config:       cfg,
		Orchestrator: app.Orchestrator,
		Users:        app.UsersService,
		Health:       app.Health,
		Limiter:      middleware.NewRateLimiter(nil),
	})

	telemetry.Info("bootstrap.ready", map[string]any{
		"env":         cfg.Env,
		"persistence": persistenceKind(sqlDB),
		"archive":     archiveKind(cfg),
		"scoring_url": cfg.ScoringBaseURL,
		"checks":      app.Health.Names(),
	})
	return app, nil
}

// Close releases the database pool and flushes the logger.
func (a *App) Close() {
	closeDB(a.DB)
	if a.Logger != nil {
		_ = a.Logger.Sync()
	}
}

func buildDB(ctx context.Context, cfg config.Config) (*sql.DB, error) {
	if strings.TrimSpace(cfg.DatabaseURL) == "" {
		if isDevLike(cfg.Env) {
			telemetry.Warn("bootstrap.db", map[string]any{"message": "DATABASE_URL empty; using in-memory repositories"})
			return nil, nil
		}
		return nil, fmt.Errorf("DATABASE_URL is required")
	}

	sqlDB, err := db.Connect(ctx, cfg.DatabaseURL, db.OptionsFromEnv(db.DefaultServerOptions()))
	if err != nil {
		if isDevLike(cfg.Env) {
			telemetry.Warn("bootstrap.db", map[string]any{
				"message": "database connect failed; using in-memory repositories",
				"error":   err.Error(),
			})
			return nil, nil
		}
		return nil, err
	}

	if cfg.RunMigrations {
		if err := db.RunMigrations(ctx, sqlDB); err != nil {
			sqlDB.Close()
			return nil, fmt.Errorf("run migrations: %w", err)
		}
	}
	return sqlDB, nil
}

// buildArchive returns nil when originals are not kept.
func buildArchive(ctx context.Context, cfg config.Config) (object.Store, error) {
	switch archiveKind(cfg) {
	case "s3":
		return s3store.New(ctx, cfg.AWSRegion, cfg.S3Bucket, cfg.S3Prefix, cfg.SSEKMSKeyID)
	case "local":
		return localstore.New(cfg.LocalStoreDir), nil
	default:
		return nil, nil
	}
}

func archiveKind(cfg config.Config) string {
	switch cfg.ObjectStoreType {
	case "s3":
		return "s3"
	case "local":
		if strings.TrimSpace(cfg.LocalStoreDir) != "" {
			return "local"
		}
	}
	return "none"
}

func buildGateway(sqlDB *sql.DB) *gateway.Gateway {
	if sqlDB == nil {
		return gateway.NewMemory()
	}
	return gateway.New(
		&users.PGRepo{DB: sqlDB},
		&resumes.PGRepo{DB: sqlDB},
		&analyses.PGRepo{DB: sqlDB},
	)
}

func closeDB(sqlDB *sql.DB) {
	if sqlDB != nil {
		_ = sqlDB.Close()
	}
}

func persistenceKind(sqlDB *sql.DB) string {
	if sqlDB == nil {
		return "memory"
	}
	return "postgres"
}

func isDevLike(env string) bool {
	switch strings.ToLower(strings.TrimSpace(env)) {
	case "dev", "local":
		return true
	default:
		return false
	}
}
