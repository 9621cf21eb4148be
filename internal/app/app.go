package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/SAP-F-2025/exam-studio/internal/ai"
	"github.com/SAP-F-2025/exam-studio/internal/cache"
	"github.com/SAP-F-2025/exam-studio/internal/config"
	"github.com/SAP-F-2025/exam-studio/internal/events"
	"github.com/SAP-F-2025/exam-studio/internal/handlers"
	"github.com/SAP-F-2025/exam-studio/internal/repositories"
	"github.com/SAP-F-2025/exam-studio/internal/repositories/memory"
	"github.com/SAP-F-2025/exam-studio/internal/repositories/postgres"
	"github.com/SAP-F-2025/exam-studio/internal/services"
	"github.com/SAP-F-2025/exam-studio/internal/sessions"
	"github.com/SAP-F-2025/exam-studio/internal/utils"
	"github.com/SAP-F-2025/exam-studio/internal/validator"
	"github.com/SAP-F-2025/exam-studio/pkg"
	"github.com/gin-gonic/gin"
)

// App owns the HTTP router and every connection opened to build it.
type App struct {
	Router *gin.Engine

	logger  *slog.Logger
	closers []func() error
}

// New wires storage, cache, events, the AI client, services and handlers
// from configuration.
func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	a := &App{logger: logger}

	banks, history, err := a.repositories(cfg)
	if err != nil {
		a.Close()
		return nil, err
	}

	sessionCache, err := a.cache(ctx, cfg)
	if err != nil {
		a.Close()
		return nil, err
	}
	store := sessions.NewStore(sessionCache, cfg.SessionTTL)

	publisher, err := cfg.Events.CreateEventPublisher(logger)
	if err != nil {
		logger.Error("Failed to create event publisher, falling back to mock", "error", err)
		publisher = events.NewMockEventPublisher(logger)
	}
	a.closers = append(a.closers, publisher.Close)

	if cfg.AI.APIKey == "" {
		logger.Warn("GEMINI_API_KEY is not set, AI extraction requests will fail")
	}
	extractor, err := ai.NewGeminiClient(ctx, ai.GeminiConfig{
		APIKey:      cfg.AI.APIKey,
		Model:       cfg.AI.Model,
		BaseURL:     cfg.AI.BaseURL,
		MaxAttempts: cfg.AI.MaxAttempts,
		HTTPClient:  &http.Client{Timeout: cfg.AI.Timeout},
		Logger:      logger,
	})
	if err != nil {
		a.Close()
		return nil, err
	}

	v := validator.New()
	hm := handlers.NewHandlerManager(handlers.ServiceSet{
		Banks:        services.NewBankService(banks, logger, v),
		Exams:        services.NewExamService(banks, history, store, publisher, logger, v),
		History:      services.NewHistoryService(history, publisher, logger),
		ImportExport: services.NewImportExportService(banks, history, publisher, logger, v),
		Extraction:   services.NewExtractionService(extractor, logger, v),
	}, utils.NewSlogLogger(logger))

	var auth gin.HandlerFunc
	if cfg.Auth.Enabled {
		logger.Info("Casdoor authentication enabled", "endpoint", cfg.Auth.Endpoint)
		auth = handlers.AuthMiddleware(handlers.NewCasdoorParser(cfg.Auth), utils.NewSlogLogger(logger))
	}

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	a.Router = handlers.NewRouter(hm, auth)
	return a, nil
}

func (a *App) repositories(cfg *config.Config) (repositories.BankRepository, repositories.HistoryRepository, error) {
	switch cfg.StorageDriver {
	case config.StorageMemory:
		a.logger.Info("Using in-memory storage")
		return memory.NewBankMemory(), memory.NewHistoryMemory(), nil
	case config.StoragePostgres:
		db, err := pkg.InitDatabase(cfg)
		if err != nil {
			return nil, nil, err
		}
		a.closers = append(a.closers, func() error {
			sqlDB, err := db.DB()
			if err != nil {
				return err
			}
			return sqlDB.Close()
		})
		a.logger.Info("Using postgres storage")
		return postgres.NewBankPostgreSQL(db), postgres.NewHistoryPostgreSQL(db), nil
	default:
		return nil, nil, fmt.Errorf("unknown storage driver %q", cfg.StorageDriver)
	}
}

func (a *App) cache(ctx context.Context, cfg *config.Config) (cache.CacheService, error) {
	switch cfg.CacheDriver {
	case config.CacheMemory:
		return cache.NewMemoryCache(), nil
	case config.CacheRedis:
		client, err := pkg.NewRedisClient(ctx, cfg)
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, client.Close)
		a.logger.Info("Using redis session cache")
		return cache.NewRedisCache(client, a.logger), nil
	default:
		return nil, fmt.Errorf("unknown cache driver %q", cfg.CacheDriver)
	}
}

// Close releases connections in reverse order of creation.
func (a *App) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	return errors.Join(errs...)
}
