// Package sqlitestorage implements the storage.Backend interface on SQLite.
// It wraps the GORM backend via composition. With no file path configured the
// database lives in memory and is dumped to disk periodically via VACUUM INTO.
package sqlitestorage

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/nari/actlog/internal/config"
	"github.com/nari/actlog/internal/database"
	gormstorage "github.com/nari/actlog/internal/storage/gorm"
)

// Backend wraps the GORM backend for SQLite-specific behavior.
type Backend struct {
	*gormstorage.Backend
	cfg      config.SQLiteConfig
	inMemory bool
	log      *slog.Logger
	stopChan chan struct{}
	wg       sync.WaitGroup
	once     sync.Once
}

// New creates a new SQLite storage backend. deps.DB is ignored; the
// connection is opened from cfg by Init.
func New(cfg config.SQLiteConfig, deps gormstorage.Dependencies) *Backend {
	deps.DB = nil

	log := deps.Logger
	if log == nil {
		log = slog.Default()
	}

	return &Backend{
		Backend:  gormstorage.New(deps),
		cfg:      cfg,
		inMemory: cfg.Path == "",
		log:      log.With("component", "sqlitestorage"),
		stopChan: make(chan struct{}),
	}
}

// Init opens the database, initializes the embedded GORM backend and starts
// the dump goroutine. The connection is closed again if any step fails.
func (b *Backend) Init() error {
	db, err := database.OpenSqlite(b.cfg.Path)
	if err != nil {
		return fmt.Errorf("failed to create SQLite DB: %w", err)
	}
	b.SetDB(db)

	if err := b.Backend.Init(); err != nil {
		return errors.Join(err, b.closeDB())
	}

	if b.inMemory && b.cfg.DumpPath != "" && b.cfg.DumpInterval > 0 {
		b.wg.Add(1)
		go b.dumpLoop()
	}

	return nil
}

// closeDB closes the connection opened by Init, if any.
func (b *Backend) closeDB() error {
	if b.DB() == nil {
		return nil
	}
	sqlDB, err := b.DB().DB()
	if err != nil {
		return err
	}
	err = sqlDB.Close()
	b.SetDB(nil)
	return err
}

// Close stops the dump goroutine, flushes the embedded GORM backend and
// writes a final dump of an in-memory database. The connection is closed
// even when the flush or dump fails.
func (b *Backend) Close() error {
	var err error
	b.once.Do(func() {
		close(b.stopChan)
		b.wg.Wait()

		err = b.Backend.Close()
		if err == nil && b.DB() != nil && b.inMemory && b.cfg.DumpPath != "" {
			err = b.Dump()
		}
		err = errors.Join(err, b.closeDB())
	})
	return err
}

// Dump writes a point-in-time snapshot of the in-memory database to DumpPath.
func (b *Backend) Dump() error {
	start := time.Now()
	if err := database.DumpMemoryDBToDisk(b.DB(), b.cfg.DumpPath); err != nil {
		return err
	}
	b.log.Debug("Dumped to disk", "path", b.cfg.DumpPath, "duration", time.Since(start))
	return nil
}

// dumpLoop periodically dumps the in-memory SQLite database to disk via VACUUM INTO.
// VACUUM INTO creates a point-in-time snapshot, so no pause mechanism is needed.
func (b *Backend) dumpLoop() {
	defer b.wg.Done()

	ticker := time.NewTicker(b.cfg.DumpInterval)
	defer ticker.Stop()

	for {
		select {
		case <-b.stopChan:
			return
		case <-ticker.C:
			if err := b.Dump(); err != nil {
				b.log.Error("Error dumping to disk", "error", err)
			}
		}
	}
}
