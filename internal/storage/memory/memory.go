// internal/storage/memory/memory.go
package memory

import (
	"log/slog"
	"sort"
	"sync"

	"github.com/nari/actlog/internal/config"
	"github.com/nari/actlog/pkg/core"
)

// ActorRecord is the latest known state of one actor
type ActorRecord struct {
	Identity  core.ActorIdentity
	Resources core.Resources
	Position  core.Position
	Updates   int
}

// Backend stores decoded records in memory and exports them to JSON on Close
type Backend struct {
	cfg       config.MemoryConfig
	sessionID string
	logger    *slog.Logger

	actors      map[uint32]*ActorRecord
	abilities   []core.AbilityRecord
	statusLists []core.StatusListRecord
	directors   []core.DirectorRecord
	markers     []core.MarkerRecord

	lastExportPath string
	mu             sync.RWMutex
}

// New creates a new memory backend. An empty OutputDir disables the export.
func New(cfg config.MemoryConfig, sessionID string, logger *slog.Logger) *Backend {
	if logger == nil {
		logger = slog.Default()
	}
	return &Backend{
		cfg:       cfg,
		sessionID: sessionID,
		logger:    logger,
		actors:    make(map[uint32]*ActorRecord),
	}
}

// Init initializes the backend
func (b *Backend) Init() error {
	return nil
}

// Close exports everything recorded so far
func (b *Backend) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.cfg.OutputDir == "" {
		return nil
	}
	return b.exportJSON()
}

// BuildActor merges the latest resources and position into the actor.
// A known name is kept when the update carries none.
func (b *Backend) BuildActor(identity core.ActorIdentity, resources core.Resources, position core.Position) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	record, ok := b.actors[identity.ID]
	if !ok {
		record = &ActorRecord{Identity: identity}
		b.actors[identity.ID] = record
	}
	if identity.Name != "" {
		record.Identity.Name = identity.Name
	}
	record.Resources = resources
	record.Position = position
	record.Updates++
	return nil
}

// BuildAbilityEvent records an ability cast
func (b *Backend) BuildAbilityEvent(rec core.AbilityRecord) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.abilities = append(b.abilities, rec)
	return nil
}

// BuildStatusList records a status list snapshot
func (b *Backend) BuildStatusList(rec core.StatusListRecord) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.statusLists = append(b.statusLists, rec)
	return nil
}

// BuildDirectorUpdate records an instance state change
func (b *Backend) BuildDirectorUpdate(rec core.DirectorRecord) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.directors = append(b.directors, rec)
	return nil
}

// BuildTargetMarker records a head marker change
func (b *Backend) BuildTargetMarker(rec core.MarkerRecord) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.markers = append(b.markers, rec)
	return nil
}

// Actor looks up an actor by id
func (b *Backend) Actor(id uint32) (ActorRecord, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if record, ok := b.actors[id]; ok {
		return *record, true
	}
	return ActorRecord{}, false
}

// Actors returns every known actor ordered by id
func (b *Backend) Actors() []ActorRecord {
	b.mu.RLock()
	defer b.mu.RUnlock()

	out := make([]ActorRecord, 0, len(b.actors))
	for _, record := range b.actors {
		out = append(out, *record)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Identity.ID < out[j].Identity.ID })
	return out
}

// Abilities returns a copy of the recorded ability casts in arrival order
func (b *Backend) Abilities() []core.AbilityRecord {
	b.mu.RLock()
	defer b.mu.RUnlock()

	return append([]core.AbilityRecord(nil), b.abilities...)
}

// StatusLists returns a copy of the recorded status lists in arrival order
func (b *Backend) StatusLists() []core.StatusListRecord {
	b.mu.RLock()
	defer b.mu.RUnlock()

	return append([]core.StatusListRecord(nil), b.statusLists...)
}

// DirectorUpdates returns a copy of the recorded instance state changes
func (b *Backend) DirectorUpdates() []core.DirectorRecord {
	b.mu.RLock()
	defer b.mu.RUnlock()

	return append([]core.DirectorRecord(nil), b.directors...)
}

// TargetMarkers returns a copy of the recorded head marker changes
func (b *Backend) TargetMarkers() []core.MarkerRecord {
	b.mu.RLock()
	defer b.mu.RUnlock()

	return append([]core.MarkerRecord(nil), b.markers...)
}

// ExportedFilePath returns the path written by the last Close, if any
func (b *Backend) ExportedFilePath() string {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.lastExportPath
}
