package storage

import (
	"context"
	"log/slog"

	"quizbot/app/config"

	"github.com/samber/do"
	"github.com/samber/oops"
)

var _ do.Shutdownable = (*Service)(nil)

// Service is the injected handle on the configured backend.
type Service struct {
	Backend
}

func New(di *do.Injector) (*Service, error) {
	ctx := do.MustInvoke[context.Context](di)
	cfg := do.MustInvoke[*config.Config](di)

	var (
		backend Backend
		err     error
	)

	switch cfg.Storage.Driver {
	case "redis":
		backend = NewRedis(cfg.Storage.Redis)
	case "sql":
		backend, err = OpenSQL(ctx, cfg.Storage.SQL)
	case "memory":
		backend = NewMemory()
	default:
		err = oops.In("storage").Errorf("unsupported storage driver: %s", cfg.Storage.Driver)
	}
	if err != nil {
		return nil, err
	}

	if err = backend.Ping(ctx); err != nil {
		_ = backend.Close()
		return nil, err
	}

	slog.Info("Storage connected", "driver", cfg.Storage.Driver)

	return &Service{Backend: backend}, nil
}

func (s *Service) Shutdown() error {
	return s.Close()
}
