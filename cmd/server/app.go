package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/phrazzld/scry-study/internal/api"
	"github.com/phrazzld/scry-study/internal/api/middleware"
	"github.com/phrazzld/scry-study/internal/config"
	"github.com/phrazzld/scry-study/internal/domain/due"
	"github.com/phrazzld/scry-study/internal/domain/srs"
	"github.com/phrazzld/scry-study/internal/platform/postgres"
	"github.com/phrazzld/scry-study/internal/platform/redis"
	"github.com/phrazzld/scry-study/internal/service/auth"
	"github.com/phrazzld/scry-study/internal/service/study"
	"github.com/phrazzld/scry-study/internal/store"
	goredis "github.com/redis/go-redis/v9"
)

// application holds the shared dependencies of the server so they can be
// released together on shutdown.
type application struct {
	config *config.Config
	logger *slog.Logger
	db     *sql.DB
	redis  *goredis.Client // nil when the session cache is disabled

	progressStore store.ProgressStore
	catalogStore  store.CatalogStore
	sessionStore  store.SessionStore

	jwtService   auth.JWTService
	studyService study.Service
}

// newApplication wires stores and services on top of an open database.
func newApplication(ctx context.Context, cfg *config.Config, logger *slog.Logger, db *sql.DB) (*application, error) {
	app := &application{
		config: cfg,
		logger: logger,
		db:     db,
	}

	var err error
	app.jwtService, err = auth.NewJWTService(cfg.Auth)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize JWT service: %w", err)
	}

	loc, err := cfg.Study.Location()
	if err != nil {
		return nil, fmt.Errorf("invalid study timezone: %w", err)
	}

	scheduler, err := srs.NewServiceWithParams(srs.NewParams(srs.ParamsConfig{
		MasteryIntervalDays: cfg.Study.MasteryIntervalDays,
		MaxInterval:         cfg.Study.MaxIntervalDays,
	}))
	if err != nil {
		return nil, fmt.Errorf("failed to create scheduler: %w", err)
	}

	app.progressStore = postgres.NewPostgresProgressStore(db, logger)
	app.catalogStore = postgres.NewPostgresCatalogStore(db, logger)

	opts := []study.Option{}
	if cfg.Redis.Enabled() {
		app.redis, err = redis.NewClient(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to redis: %w", err)
		}
		ttl := time.Duration(cfg.Study.SessionTTLMinutes) * time.Minute
		app.sessionStore = redis.NewSessionStore(app.redis, ttl, logger)
		opts = append(opts, study.WithSessionStore(app.sessionStore))
		logger.Info("session cache enabled", slog.Duration("session_ttl", ttl))
	} else {
		logger.Info("session cache disabled")
	}

	app.studyService = study.NewService(
		db,
		app.progressStore,
		app.catalogStore,
		scheduler,
		due.NewClassifier(loc),
		logger,
		opts...,
	)

	logger.Info("application initialized",
		slog.String("timezone", loc.String()),
		slog.Int("mastery_interval_days", cfg.Study.MasteryIntervalDays))

	return app, nil
}

func (app *application) router() http.Handler {
	return api.NewRouter(
		api.NewStudyHandler(app.studyService, app.logger),
		middleware.NewAuthMiddleware(app.jwtService),
		app.logger,
	)
}

// cleanup releases the redis client and the database pool.
func (app *application) cleanup() error {
	var errs []error
	if app.redis != nil {
		if err := app.redis.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close redis: %w", err))
		}
	}
	if app.db != nil {
		if err := app.db.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close database: %w", err))
		}
	}
	return errors.Join(errs...)
}
