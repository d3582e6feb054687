// internal/storage/factory.go
package storage

import (
	"fmt"
	"log/slog"

	"github.com/nari/actlog/internal/config"
	gormstorage "github.com/nari/actlog/internal/storage/gorm"
	influxstorage "github.com/nari/actlog/internal/storage/influx"
	"github.com/nari/actlog/internal/storage/memory"
	"github.com/nari/actlog/internal/storage/postgres"
	sqlitestorage "github.com/nari/actlog/internal/storage/sqlite"
	"github.com/rs/zerolog"
)

// Dependencies are shared by every backend.
type Dependencies struct {
	SessionID string
	Source    string
	Logger    *slog.Logger
	// ZeroLogger serves the backends built on zerolog (influx).
	ZeroLogger zerolog.Logger
}

// NewBackend creates a storage backend based on configuration
func NewBackend(cfg config.StorageConfig, deps Dependencies) (Backend, error) {
	gormDeps := gormstorage.Dependencies{
		SessionID: deps.SessionID,
		Source:    deps.Source,
		Logger:    deps.Logger,
	}

	switch cfg.Type {
	case "postgres":
		return postgres.New(cfg.Postgres, gormDeps), nil
	case "sqlite":
		return sqlitestorage.New(cfg.SQLite, gormDeps), nil
	case "influx":
		return influxstorage.New(cfg.Influx, deps.SessionID, deps.ZeroLogger), nil
	case "memory":
		return memory.New(cfg.Memory, deps.SessionID, deps.Logger), nil
	default:
		return nil, fmt.Errorf("unknown storage type: %s", cfg.Type)
	}
}
