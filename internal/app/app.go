package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"example.com/userstore/internal/config"
	httphandlers "example.com/userstore/internal/handler/http"
	"example.com/userstore/internal/repository"
	"example.com/userstore/internal/seed"
	"example.com/userstore/internal/storage"
	"example.com/userstore/internal/storage/memory"
	sqlstore "example.com/userstore/internal/storage/sql"
	"example.com/userstore/internal/usecase"
)

type Store interface {
	repository.UserRepository
	repository.Seeder
	Close() error
}

type App struct {
	Config config.Config
	Router http.Handler
	Store  Store
}

func New(ctx context.Context, cfg config.Config, logger *slog.Logger) (*App, error) {
	users, err := seed.Load(cfg.SeedPath)
	if err != nil {
		return nil, err
	}
	store, err := openStore(ctx, cfg)
	if err != nil {
		return nil, err
	}
	if err := store.Seed(ctx, users); err != nil {
		if !errors.Is(err, storage.ErrConflict) {
			store.Close()
			return nil, err
		}
		logger.Warn("seed skipped records", "err", err)
	}
	logger.Info("user collection ready", "storage", cfg.Storage, "seeded", len(users))

	svc := usecase.NewUserService(store,
		usecase.WithLogger(logger),
		usecase.WithRequireName(cfg.RequireName),
	)
	return &App{
		Config: cfg,
		Router: httphandlers.New(svc, logger),
		Store:  store,
	}, nil
}

func (a *App) Close() error {
	return a.Store.Close()
}

func openStore(ctx context.Context, cfg config.Config) (Store, error) {
	switch cfg.Storage {
	case "", "memory":
		return memory.New(), nil
	case "sql":
		s, err := sqlstore.New(cfg.DBDriver, cfg.DBDSN)
		if err != nil {
			return nil, err
		}
		if err := s.Migrate(ctx); err != nil {
			s.Close()
			return nil, err
		}
		return s, nil
	}
	return nil, fmt.Errorf("unknown storage %q", cfg.Storage)
}
