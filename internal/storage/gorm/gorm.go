// Package gormstorage implements the storage.Backend interface on any GORM
// dialect, with internal queues and a background DB writer goroutine.
package gormstorage

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/nari/actlog/internal/model"
	"github.com/nari/actlog/internal/model/convert"
	"github.com/nari/actlog/internal/queue"
	"github.com/nari/actlog/pkg/core"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// DefaultFlushInterval is how often queued rows are written when
// Dependencies.FlushInterval is zero.
const DefaultFlushInterval = 2 * time.Second

// Dependencies holds all dependencies for the GORM storage backend.
type Dependencies struct {
	DB            *gorm.DB
	SessionID     string
	Source        string
	Logger        *slog.Logger
	FlushInterval time.Duration
}

// queues holds all the write queues for batch DB insertion.
type queues struct {
	Actors        *queue.Queue[model.Actor]
	AbilityEvents *queue.Queue[model.AbilityEvent]
	StatusLists   *queue.Queue[model.StatusList]
	Directors     *queue.Queue[model.DirectorEvent]
	Markers       *queue.Queue[model.MarkerEvent]
}

func newQueues() *queues {
	return &queues{
		Actors:        queue.New[model.Actor](),
		AbilityEvents: queue.New[model.AbilityEvent](),
		StatusLists:   queue.New[model.StatusList](),
		Directors:     queue.New[model.DirectorEvent](),
		Markers:       queue.New[model.MarkerEvent](),
	}
}

// Backend implements storage.Backend using GORM with queue-based batch writes.
type Backend struct {
	deps    Dependencies
	queues  *queues
	logger  *slog.Logger
	flushMu sync.Mutex
	dbReady bool

	stopChan  chan struct{}
	wg        sync.WaitGroup
	closeOnce sync.Once
}

// New creates a new GORM storage backend. Records are queued from the start;
// nothing reaches the database before Init.
func New(deps Dependencies) *Backend {
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}
	if deps.FlushInterval <= 0 {
		deps.FlushInterval = DefaultFlushInterval
	}
	return &Backend{
		deps:     deps,
		queues:   newQueues(),
		logger:   logger.With("component", "gormstorage"),
		stopChan: make(chan struct{}),
	}
}

// DB returns the underlying connection.
func (b *Backend) DB() *gorm.DB {
	return b.deps.DB
}

// SetDB injects a connection opened after New. It must be called before Init.
func (b *Backend) SetDB(db *gorm.DB) {
	b.deps.DB = db
}

// SessionID returns the ingest session stamped on every row.
func (b *Backend) SessionID() string {
	return b.deps.SessionID
}

// Init runs schema migration, records the session and starts the DB writer goroutine.
func (b *Backend) Init() error {
	if b.deps.DB == nil {
		return errors.New("no database connection")
	}

	if err := b.setupDB(); err != nil {
		return fmt.Errorf("failed to setup DB: %w", err)
	}
	b.dbReady = true

	b.wg.Add(1)
	go b.writerLoop()
	return nil
}

// setupDB migrates tables and creates the session row if it doesn't exist.
func (b *Backend) setupDB() error {
	db := b.deps.DB

	b.logger.Info("Migrating schema", "dialect", db.Name())
	if err := db.AutoMigrate(model.DatabaseModels...); err != nil {
		return fmt.Errorf("failed to migrate schema: %w", err)
	}

	session := model.IngestSession{
		ID:        b.deps.SessionID,
		Source:    b.deps.Source,
		StartedAt: time.Now().UTC(),
	}
	if err := db.Where(model.IngestSession{ID: session.ID}).FirstOrCreate(&session).Error; err != nil {
		return fmt.Errorf("failed to record ingest session: %w", err)
	}

	b.logger.Info("Database setup complete", "session", b.deps.SessionID)
	return nil
}

// Close stops the DB writer goroutine and writes whatever is still queued.
func (b *Backend) Close() error {
	var err error
	b.closeOnce.Do(func() {
		close(b.stopChan)
		b.wg.Wait()
		if b.dbReady {
			err = b.Flush()
		}
	})
	return err
}

// BuildActor converts an actor update to GORM and pushes to the write queue.
func (b *Backend) BuildActor(identity core.ActorIdentity, resources core.Resources, position core.Position) error {
	row, err := convert.CoreToActor(b.deps.SessionID, identity, resources, position)
	if err != nil {
		return err
	}
	b.queues.Actors.Push(row)
	return nil
}

// BuildAbilityEvent converts and queues an ability cast.
func (b *Backend) BuildAbilityEvent(rec core.AbilityRecord) error {
	row, err := convert.CoreToAbilityEvent(b.deps.SessionID, rec)
	if err != nil {
		return err
	}
	b.queues.AbilityEvents.Push(row)
	return nil
}

// BuildStatusList converts and queues a status list snapshot.
func (b *Backend) BuildStatusList(rec core.StatusListRecord) error {
	row, err := convert.CoreToStatusList(b.deps.SessionID, rec)
	if err != nil {
		return err
	}
	b.queues.StatusLists.Push(row)
	return nil
}

// BuildDirectorUpdate converts and queues an instance state change.
func (b *Backend) BuildDirectorUpdate(rec core.DirectorRecord) error {
	b.queues.Directors.Push(convert.CoreToDirectorEvent(b.deps.SessionID, rec))
	return nil
}

// BuildTargetMarker converts and queues a head marker change.
func (b *Backend) BuildTargetMarker(rec core.MarkerRecord) error {
	b.queues.Markers.Push(convert.CoreToMarkerEvent(b.deps.SessionID, rec))
	return nil
}

// Pending returns the number of queued rows not yet written.
func (b *Backend) Pending() int {
	return b.queues.Actors.Len() + b.queues.AbilityEvents.Len() + b.queues.StatusLists.Len() +
		b.queues.Directors.Len() + b.queues.Markers.Len()
}

// Flush writes every queue to the database. Rows that fail to write are
// put back for the next attempt.
func (b *Backend) Flush() error {
	b.flushMu.Lock()
	defer b.flushMu.Unlock()

	db := b.deps.DB
	return errors.Join(
		writeQueue(db, b.queues.Actors, "actors", dedupeActors, upsertActors),
		writeQueue(db, b.queues.AbilityEvents, "ability events", nil, nil),
		writeQueue(db, b.queues.StatusLists, "status lists", nil, nil),
		writeQueue(db, b.queues.Directors, "director events", nil, nil),
		writeQueue(db, b.queues.Markers, "marker events", nil, nil),
	)
}

// dedupeActors keeps one row per actor, the latest, so a single upsert
// statement never touches the same key twice. A known name survives an
// update without one.
func dedupeActors(items []model.Actor) []model.Actor {
	index := make(map[uint32]int, len(items))
	out := items[:0]
	for _, a := range items {
		if i, ok := index[a.ActorID]; ok {
			if a.Name == "" {
				a.Name = out[i].Name
			}
			out[i] = a
			continue
		}
		index[a.ActorID] = len(out)
		out = append(out, a)
	}
	return out
}

func upsertActors(tx *gorm.DB) *gorm.DB {
	return tx.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "session_id"}, {Name: "actor_id"}},
		DoUpdates: append(
			clause.AssignmentColumns([]string{"resources", "position", "updated_at"}),
			clause.Assignment{
				Column: clause.Column{Name: "name"},
				Value:  gorm.Expr("CASE WHEN excluded.name = '' THEN actors.name ELSE excluded.name END"),
			},
		),
	})
}

// writeQueue writes all items from a queue to the database in a transaction.
func writeQueue[T any](db *gorm.DB, q *queue.Queue[T], name string, prepare func([]T) []T, scope func(*gorm.DB) *gorm.DB) error {
	if q.Empty() {
		return nil
	}

	items := q.GetAndEmpty()
	if prepare != nil {
		items = prepare(items)
	}

	err := db.Transaction(func(tx *gorm.DB) error {
		if scope != nil {
			tx = scope(tx)
		}
		return tx.Create(&items).Error
	})
	if err != nil {
		q.Requeue(items)
		return fmt.Errorf("error creating %s: %w", name, err)
	}
	return nil
}

// writerLoop periodically drains queues into the DB until Close.
func (b *Backend) writerLoop() {
	defer b.wg.Done()

	ticker := time.NewTicker(b.deps.FlushInterval)
	defer ticker.Stop()

	for {
		select {
		case <-b.stopChan:
			return
		case <-ticker.C:
			if err := b.Flush(); err != nil {
				b.logger.Error("Error writing queued rows", "error", err)
			}
		}
	}
}

// Actors reads back every actor of this session ordered by id.
func (b *Backend) Actors() ([]convert.ActorState, error) {
	var rows []model.Actor
	err := b.deps.DB.
		Where("session_id = ?", b.deps.SessionID).
		Order("actor_id").
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to query actors: %w", err)
	}

	out := make([]convert.ActorState, 0, len(rows))
	for _, row := range rows {
		state, err := convert.ActorToCore(row)
		if err != nil {
			return nil, err
		}
		out = append(out, state)
	}
	return out, nil
}

// AbilityEvents reads back every ability cast of this session in insertion order.
func (b *Backend) AbilityEvents() ([]core.AbilityRecord, error) {
	var rows []model.AbilityEvent
	err := b.deps.DB.
		Where("session_id = ?", b.deps.SessionID).
		Order("id").
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to query ability events: %w", err)
	}

	out := make([]core.AbilityRecord, 0, len(rows))
	for _, row := range rows {
		rec, err := convert.AbilityEventToCore(row)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, nil
}

// StatusLists reads back every status list of this session in insertion order.
func (b *Backend) StatusLists() ([]core.StatusListRecord, error) {
	var rows []model.StatusList
	err := b.deps.DB.
		Where("session_id = ?", b.deps.SessionID).
		Order("id").
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to query status lists: %w", err)
	}

	out := make([]core.StatusListRecord, 0, len(rows))
	for _, row := range rows {
		rec, err := convert.StatusListToCore(row)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, nil
}

// DirectorUpdates reads back every instance state change of this session in insertion order.
func (b *Backend) DirectorUpdates() ([]core.DirectorRecord, error) {
	var rows []model.DirectorEvent
	err := b.deps.DB.
		Where("session_id = ?", b.deps.SessionID).
		Order("id").
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to query director events: %w", err)
	}

	out := make([]core.DirectorRecord, 0, len(rows))
	for _, row := range rows {
		out = append(out, convert.DirectorEventToCore(row))
	}
	return out, nil
}

// TargetMarkers reads back every head marker change of this session in insertion order.
func (b *Backend) TargetMarkers() ([]core.MarkerRecord, error) {
	var rows []model.MarkerEvent
	err := b.deps.DB.
		Where("session_id = ?", b.deps.SessionID).
		Order("id").
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to query marker events: %w", err)
	}

	out := make([]core.MarkerRecord, 0, len(rows))
	for _, row := range rows {
		rec, err := convert.MarkerEventToCore(row)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, nil
}
