// Package postgres implements the storage.Backend interface on PostgreSQL
// through the GORM backend's queues and background DB writer.
package postgres

import (
	"fmt"

	"github.com/nari/actlog/internal/config"
	"github.com/nari/actlog/internal/database"
	gormstorage "github.com/nari/actlog/internal/storage/gorm"
)

// Backend is the GORM backend bound to a postgres connection.
type Backend struct {
	*gormstorage.Backend
	cfg config.PostgresConfig
}

// New creates a new postgres storage backend.
func New(cfg config.PostgresConfig, deps gormstorage.Dependencies) *Backend {
	return &Backend{
		Backend: gormstorage.New(deps),
		cfg:     cfg,
	}
}

// Init connects unless a DB was injected via Dependencies, then runs the
// GORM backend's migration and starts its writer.
func (b *Backend) Init() error {
	if b.DB() == nil {
		db, err := database.OpenPostgres(b.cfg.DSN())
		if err != nil {
			return fmt.Errorf("failed to connect to postgres: %w", err)
		}
		b.SetDB(db)
	}
	return b.Backend.Init()
}
