package app

import (
	"context"
	"fmt"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/yungbote/philoatlas-backend/internal/data/aggregates"
	"github.com/yungbote/philoatlas-backend/internal/data/db"
	"github.com/yungbote/philoatlas-backend/internal/http"
	"github.com/yungbote/philoatlas-backend/internal/observability"
	"github.com/yungbote/philoatlas-backend/internal/platform/logger"
)

// Version is overridden at build time with -ldflags "-X .../internal/app.Version=...".
var Version = "dev"

type App struct {
	Log      *logger.Logger
	DB       *gorm.DB
	Router   *gin.Engine
	Cfg      Config
	Repos    Repos
	Services Services
	Clients  Clients
	Metrics  *observability.Metrics

	dbService    *db.DBService
	otelShutdown func(context.Context) error
}

func newLogger() (*logger.Logger, error) {
	LoadDotEnv()
	log, err := logger.New(envLogMode())
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}
	return log, nil
}

func openDatabase(log *logger.Logger, cfg Config) (*db.DBService, error) {
	pg, err := db.NewDBService(log, cfg.DB)
	if err != nil {
		return nil, fmt.Errorf("init database: %w", err)
	}
	if err := db.AutoMigrateAll(pg.DB()); err != nil {
		_ = pg.Close()
		return nil, fmt.Errorf("database automigrate: %w", err)
	}
	return pg, nil
}

func New(ctx context.Context) (*App, error) {
	log, err := newLogger()
	if err != nil {
		return nil, err
	}

	log.Info("Loading environment variables...")
	cfg, err := LoadConfig(log)
	if err != nil {
		log.Sync()
		return nil, err
	}

	otelShutdown := observability.InitOTel(ctx, log, cfg.Otel)

	pg, err := openDatabase(log, cfg)
	if err != nil {
		log.Sync()
		return nil, err
	}
	theDB := pg.DB()

	metrics := observability.NewMetrics()
	if sqlDB, err := theDB.DB(); err == nil {
		if err := metrics.RegisterDBStats(sqlDB, cfg.DB.Driver); err != nil {
			log.Warn("db stats collector not registered", "error", err)
		}
	}

	clients, err := wireClients(log, cfg)
	if err != nil {
		_ = pg.Close()
		log.Sync()
		return nil, err
	}

	reposet := wireRepos(theDB, log)
	serviceset := wireServices(log, cfg, aggregates.NewGormTxRunner(theDB, log), reposet, clients, metrics)

	if seeded, err := serviceset.MetadataSchema.SeedDefaults(ctx); err != nil {
		log.Warn("default metadata schema seed failed", "error", err)
	} else if seeded > 0 {
		log.Info("Seeded default metadata schema", "definitions", seeded)
	}
	if err := serviceset.MetadataSchema.Warm(ctx); err != nil {
		log.Warn("schema cache warm-up failed (continuing)", "error", err)
	}

	handlerset := wireHandlers(log, serviceset)
	middleware := wireMiddleware(log, cfg, serviceset, metrics)
	router := wireRouter(log, cfg, handlerset, middleware, metrics)

	return &App{
		Log:          log,
		DB:           theDB,
		Router:       router,
		Cfg:          cfg,
		Repos:        reposet,
		Services:     serviceset,
		Clients:      clients,
		Metrics:      metrics,
		dbService:    pg,
		otelShutdown: otelShutdown,
	}, nil
}

// Run serves HTTP until ctx is cancelled.
func (a *App) Run(ctx context.Context) error {
	if a == nil || a.Router == nil {
		return fmt.Errorf("app not initialized")
	}
	return http.NewServer(a.Log, a.Router).Run(ctx, ":"+a.Cfg.Port)
}

func (a *App) Close(ctx context.Context) {
	if a == nil {
		return
	}
	a.Clients.Close(ctx)
	if a.otelShutdown != nil {
		if err := a.otelShutdown(ctx); err != nil && a.Log != nil {
			a.Log.Warn("otel shutdown failed", "error", err)
		}
	}
	if a.dbService != nil {
		_ = a.dbService.Close()
	}
	if a.Log != nil {
		a.Log.Sync()
	}
}

// Migrate runs schema migration and the default metadata seed without starting the server.
func Migrate(ctx context.Context) error {
	log, err := newLogger()
	if err != nil {
		return err
	}
	defer log.Sync()

	cfg, err := LoadConfig(log)
	if err != nil {
		return err
	}
	pg, err := openDatabase(log, cfg)
	if err != nil {
		return err
	}
	defer pg.Close()

	theDB := pg.DB()
	reposet := wireRepos(theDB, log)
	serviceset := wireServices(log, cfg, aggregates.NewGormTxRunner(theDB, log), reposet, Clients{}, nil)
	seeded, err := serviceset.MetadataSchema.SeedDefaults(ctx)
	if err != nil {
		return fmt.Errorf("seed default metadata schema: %w", err)
	}
	log.Info("Migration complete", "seeded_definitions", seeded)
	return nil
}
