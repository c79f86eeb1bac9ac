package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/phrazzld/curricula-api/internal/config"
	"github.com/phrazzld/curricula-api/internal/curriculum"
	"github.com/phrazzld/curricula-api/internal/generation"
	"github.com/phrazzld/curricula-api/internal/platform/anthropic"
	"github.com/phrazzld/curricula-api/internal/platform/gemini"
	"github.com/phrazzld/curricula-api/internal/platform/memory"
	"github.com/phrazzld/curricula-api/internal/platform/postgres"
	"github.com/phrazzld/curricula-api/internal/platform/rediscache"
	"github.com/phrazzld/curricula-api/internal/store"
	"github.com/phrazzld/curricula-api/internal/validation"
	"github.com/redis/go-redis/v9"
)

// application holds the shared dependencies of the server and releases
// them on shutdown.
type application struct {
	config *config.Config
	logger *slog.Logger

	// db and redis are nil when the memory driver or no cache is configured
	db    *sql.DB
	redis *redis.Client

	stores       store.Stores
	completer    *generation.Completer
	orchestrator *curriculum.Orchestrator
	validator    *validation.Engine
}

// newApplication connects to the configured backends and builds the
// generation and validation services.
func newApplication(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*application, error) {
	app := &application{config: cfg, logger: logger}

	ok := false
	defer func() {
		if !ok {
			app.cleanup()
		}
	}()

	if err := app.setupStores(ctx); err != nil {
		return nil, err
	}

	gen, err := app.setupGenerator(ctx)
	if err != nil {
		return nil, err
	}

	if err := app.setupServices(gen); err != nil {
		return nil, err
	}

	ok = true
	logger.Info("application initialized successfully")
	return app, nil
}

// setupServices builds the generation and validation services on top of
// the stores and gen.
func (app *application) setupServices(gen generation.Generator) error {
	cfg := app.config
	app.completer = newCompleter(gen, cfg, app.logger)

	var err error
	app.orchestrator, err = curriculum.NewOrchestrator(app.stores, app.completer, curriculum.Config{
		ContentItemsPerLesson: cfg.Generation.ContentItemsPerLesson,
		ContentConcurrency:    cfg.Generation.ContentConcurrency,
		CurriculumMaxTokens:   cfg.Generation.CurriculumMaxTokens,
		MaxTokens:             cfg.LLM.DefaultMaxTokens,
		Temperature:           cfg.LLM.DefaultTemperature,
		MaxRunCost:            cfg.Generation.MaxRunCost,
	}, app.logger)
	if err != nil {
		return fmt.Errorf("failed to create curriculum orchestrator: %w", err)
	}

	app.validator, err = validation.NewEngine(app.stores, app.completer, validation.Config{
		Strict:      cfg.Validation.Strict,
		SampleSize:  cfg.Validation.SampleSize,
		MaxTokens:   cfg.Validation.MaxTokens,
		Temperature: cfg.Validation.Temperature,
		MaxRunCost:  cfg.Generation.MaxRunCost,
	}, app.logger)
	if err != nil {
		return fmt.Errorf("failed to create validation engine: %w", err)
	}
	return nil
}

func (app *application) setupStores(ctx context.Context) error {
	switch app.config.Database.Driver {
	case config.DriverMemory:
		app.logger.Warn("using in-memory stores, data is lost on shutdown")
		app.stores = memory.NewStores()
		return nil
	case config.DriverPostgres:
		db, err := openDatabase(ctx, app.config.Database, app.logger)
		if err != nil {
			return err
		}
		app.db = db
		if err := postgres.Migrate(ctx, db, app.logger, postgres.MigrateUp); err != nil {
			return fmt.Errorf("failed to apply migrations: %w", err)
		}
		app.stores = postgres.NewStores(db, app.logger)
		return nil
	default:
		return fmt.Errorf("unsupported database driver %q", app.config.Database.Driver)
	}
}

// setupGenerator creates the provider client, wrapped in the response
// cache when one is configured.
func (app *application) setupGenerator(ctx context.Context) (generation.Generator, error) {
	gen, err := newProvider(ctx, app.config.LLM, app.logger)
	if err != nil {
		return nil, err
	}

	if !app.config.Cache.Enabled() {
		return gen, nil
	}

	app.redis, err = rediscache.Connect(ctx, app.config.Cache.RedisURL)
	if err != nil {
		return nil, err
	}
	cached, err := rediscache.New(gen, app.redis, app.config.Cache.TTL(), app.logger)
	if err != nil {
		return nil, err
	}
	app.logger.Info("generation response cache enabled", "ttl", app.config.Cache.TTL().String())
	return cached, nil
}

func newProvider(ctx context.Context, cfg config.LLMConfig, logger *slog.Logger) (generation.Generator, error) {
	switch cfg.Provider {
	case config.ProviderAnthropic:
		gen, err := anthropic.NewGenerator(logger, cfg)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize Anthropic generator: %w", err)
		}
		logger.Info("LLM generator initialized", "provider", cfg.Provider, "model", cfg.ModelName)
		return gen, nil
	case config.ProviderGemini:
		gen, err := gemini.NewGeminiGenerator(ctx, logger, cfg)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize Gemini generator: %w", err)
		}
		logger.Info("LLM generator initialized", "provider", cfg.Provider, "model", cfg.ModelName)
		return gen, nil
	default:
		return nil, fmt.Errorf("%w: unsupported provider %q", generation.ErrInvalidConfig, cfg.Provider)
	}
}

func newCompleter(gen generation.Generator, cfg *config.Config, logger *slog.Logger) *generation.Completer {
	pricing := generation.DefaultPricing()
	pricing.InputPer1K = cfg.LLM.InputCostPer1K
	pricing.OutputPer1K = cfg.LLM.OutputCostPer1K

	return generation.NewCompleter(gen,
		generation.WithBudget(cfg.Generation.ContinuationBudget),
		generation.WithRequestTimeout(cfg.LLM.RequestTimeout()),
		generation.WithPricing(pricing),
		generation.WithLogger(logger),
	)
}

// Run serves the API until ctx is done.
func (app *application) Run(ctx context.Context) error {
	return app.serve(ctx, app.setupRouter())
}

// cleanup releases backend connections.
func (app *application) cleanup() {
	if app.redis != nil {
		if err := app.redis.Close(); err != nil {
			app.logger.Error("error closing redis connection", "error", err)
		}
		app.redis = nil
	}
	if app.db != nil {
		if err := app.db.Close(); err != nil {
			app.logger.Error("error closing database connection", "error", err)
		}
		app.db = nil
	}
	app.logger.Info("application shutdown completed")
}
