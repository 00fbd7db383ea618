package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/redis/go-redis/v9"

	"github.com/campusorient/discovery-sync/config"
	"github.com/campusorient/discovery-sync/internal/api"
	"github.com/campusorient/discovery-sync/internal/reconcile"
	"github.com/campusorient/discovery-sync/internal/searchstate"
	"github.com/campusorient/discovery-sync/internal/services"
	"github.com/campusorient/discovery-sync/internal/session"
)

// appContext is the fully assembled client stack every command runs
// against: one session manager, one public and one authenticated API
// client, and the services on top.
type appContext struct {
	Ctx    context.Context
	Logger *slog.Logger
	Config config.AppConfig

	Sessions     *session.Manager
	Auth         *services.AuthService
	Universities *services.UniversityService
	Programs     *services.ProgramService
	Searcher     *services.SearchService
	Orientation  *services.OrientationService
	Profiles     *reconcile.Engine
}

// newSearchMachine builds a search state machine over the search
// service, with the results callback the caller needs.
func (a *appContext) newSearchMachine(opts ...searchstate.Option) *searchstate.Machine {
	opts = append([]searchstate.Option{searchstate.WithLogger(a.Logger)}, opts...)
	return searchstate.New(a.Searcher, opts...)
}

func newAppContext(ctx context.Context, logger *slog.Logger) (*appContext, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	storage, err := storageFromConfig(cfg)
	if err != nil {
		return nil, err
	}
	sessions, err := session.NewManager(ctx, storage, logger)
	if err != nil {
		return nil, err
	}

	publicClient, err := api.New(cfg.API, api.WithLogger(logger))
	if err != nil {
		return nil, err
	}
	authedClient, err := api.New(cfg.API,
		api.WithLogger(logger),
		api.WithTokenProvider(sessions),
		api.WithOnUnauthorized(func(ctx context.Context) {
			logger.WarnContext(ctx, "session expired, logging out")
			if clearErr := sessions.Clear(ctx); clearErr != nil {
				logger.ErrorContext(ctx, "clear expired session failed", "error", clearErr)
			}
		}),
	)
	if err != nil {
		return nil, err
	}

	programs := services.NewProgramService(authedClient, logger)
	searcher := services.NewSearchService(authedClient, logger)
	profileAPI := services.NewProfileService(authedClient, logger)

	return &appContext{
		Ctx:          ctx,
		Logger:       logger,
		Config:       cfg,
		Sessions:     sessions,
		Auth:         services.NewAuthService(publicClient, sessions, logger),
		Universities: services.NewUniversityService(authedClient, logger),
		Programs:     programs,
		Searcher:     searcher,
		Orientation:  services.NewOrientationService(programs, logger),
		Profiles:     reconcile.New(profileAPI, sessions, logger),
	}, nil
}

// storageFromConfig selects the session persistence backend.
func storageFromConfig(cfg config.AppConfig) (session.Storage, error) {
	switch cfg.Session.Backend {
	case config.SessionBackendFile:
		return session.NewFileStorage(cfg.Session.Dir)
	case config.SessionBackendRedis:
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		return session.NewRedisStorage(client), nil
	case config.SessionBackendMemory:
		return session.NewMemoryStorage(), nil
	default:
		return nil, fmt.Errorf("unknown session backend %q", cfg.Session.Backend)
	}
}
