package bootstrap

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/gin-gonic/gin"

	"resume-builder/internal/resumes"
	"resume-builder/internal/services/health"
	"resume-builder/internal/shared/auth"
	"resume-builder/internal/shared/config"
	"resume-builder/internal/shared/server"
	"resume-builder/internal/shared/storage/db"
	"resume-builder/internal/shared/telemetry"
	"resume-builder/internal/usage"
)

// App holds shared dependencies and the wired router.
type App struct {
	Config         config.Config
	Router         *gin.Engine
	DB             *sql.DB
	ResumesRepo    resumes.Repo
	ResumesService *resumes.Service
	UsageService   *usage.Service
	ResumeHandler  *resumes.Handler
	UsageHandler   *usage.Handler
	Health         *health.Service
	Signer         *auth.Signer
}

// Build connects storage, constructs services and wires the router.
func Build(cfg config.Config) (*App, error) {
	cfg = config.Normalize(cfg)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	ctx := context.Background()

	signer, err := auth.NewSigner(cfg.JWTSecret, cfg.Env)
	if err != nil {
		return nil, err
	}

	sqlDB, err := buildDB(ctx, cfg)
	if err != nil {
		return nil, err
	}

	app := &App{
		Config: cfg,
		DB:     sqlDB,
		Signer: signer,
	}
	if err := buildServices(app); err != nil {
		return nil, err
	}

	app.Router = server.NewRouter(server.RouterDeps{
		Config:        app.Config,
		Health:        app.Health,
		Signer:        app.Signer,
		ResumeHandler: app.ResumeHandler,
		UsageHandler:  app.UsageHandler,
	})
	return app, nil
}

// Close releases the database handle, if any.
func (a *App) Close() error {
	if a == nil || a.DB == nil {
		return nil
	}
	return a.DB.Close()
}

func buildDB(ctx context.Context, cfg config.Config) (*sql.DB, error) {
	if strings.TrimSpace(cfg.DatabaseURL) == "" {
		if cfg.DevLike() {
			telemetry.Warn("bootstrap.memory_repositories", map[string]any{"reason": "DATABASE_URL empty"})
			return nil, nil
		}
		return nil, fmt.Errorf("DATABASE_URL is required")
	}

	sqlDB, err := db.Open(ctx, cfg.DatabaseURL, db.ServerPool().WithEnv())
	if err != nil {
		if cfg.DevLike() {
			telemetry.Warn("bootstrap.memory_repositories", map[string]any{"reason": "connect failed", "err": err})
			return nil, nil
		}
		return nil, err
	}
	if err := db.Migrate(ctx, sqlDB); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	return sqlDB, nil
}

func buildServices(app *App) error {
	plan := usage.Plan{Name: app.Config.DefaultPlan, Limit: app.Config.ResumeLimit}

	var resumeRepo resumes.Repo
	var usageSvc *usage.Service
	if app.DB != nil {
		resumeRepo = &resumes.PGRepo{DB: app.DB}
		usageSvc = usage.NewServiceWithStore(usage.NewPGStore(app.DB, plan))
		app.Health = health.NewService(app.DB)
	} else {
		resumeRepo = resumes.NewMemoryRepo()
		usageSvc = usage.NewService(plan)
		app.Health = health.NewService(nil)
	}

	resumeSvc := resumes.NewService(resumeRepo, usageSvc)

	app.ResumesRepo = resumeRepo
	app.ResumesService = resumeSvc
	app.UsageService = usageSvc
	app.ResumeHandler = resumes.NewHandler(resumeSvc)
	app.UsageHandler = usage.NewHandler(usageSvc)

	if app.ResumeHandler == nil || app.UsageHandler == nil {
		return errors.New("failed to initialize handlers")
	}
	return nil
}
