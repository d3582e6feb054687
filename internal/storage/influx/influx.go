// Package influxstorage implements the storage.Backend interface as an
// InfluxDB time-series sink.
package influxstorage

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/influxdata/influxdb-client-go/v2/api/write"
	"github.com/nari/actlog/internal/config"
	"github.com/nari/actlog/internal/influx"
	"github.com/nari/actlog/pkg/core"
	"github.com/rs/zerolog"
)

// ConnectTimeout bounds the health check made by Init.
const ConnectTimeout = 5 * time.Second

// Backend writes every record as one or more points.
type Backend struct {
	manager   *influx.Manager
	sessionID string

	// now stamps points for records that carry no time of their own
	now func() time.Time

	// lastSeen is the time of the most recent timed record
	lastSeen time.Time
	mu       sync.Mutex
}

// New creates a new influx storage backend.
func New(cfg config.InfluxConfig, sessionID string, log zerolog.Logger) *Backend {
	return &Backend{
		manager:   influx.NewManager(cfg, log),
		sessionID: sessionID,
		now:       time.Now,
	}
}

// Init connects to the server or opens the backup file.
func (b *Backend) Init() error {
	ctx, cancel := context.WithTimeout(context.Background(), ConnectTimeout)
	defer cancel()
	if err := b.manager.Connect(ctx); err != nil {
		return fmt.Errorf("failed to initialize influx: %w", err)
	}
	return nil
}

// Close flushes and releases the client.
func (b *Backend) Close() error {
	return b.manager.Close()
}

// stamp returns the time for an untimed record: the last cast seen, or the
// wall clock before any cast arrived.
func (b *Backend) stamp() time.Time {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.lastSeen.IsZero() {
		return b.now()
	}
	return b.lastSeen
}

func (b *Backend) write(points ...*write.Point) error {
	var errs []error
	for _, p := range points {
		errs = append(errs, b.manager.WritePoint(p))
	}
	return errors.Join(errs...)
}

// BuildActor writes an actor point.
func (b *Backend) BuildActor(identity core.ActorIdentity, resources core.Resources, position core.Position) error {
	return b.write(ActorPoint(b.sessionID, identity, resources, position, b.stamp()))
}

// observe moves the time used for untimed records to a timed record's.
func (b *Backend) observe(timestamp int64) {
	b.mu.Lock()
	b.lastSeen = time.UnixMilli(timestamp)
	b.mu.Unlock()
}

// BuildAbilityEvent writes the ability and its action effects.
func (b *Backend) BuildAbilityEvent(rec core.AbilityRecord) error {
	b.observe(rec.Timestamp)
	return b.write(AbilityPoints(b.sessionID, rec)...)
}

// BuildDirectorUpdate writes an instance state change.
func (b *Backend) BuildDirectorUpdate(rec core.DirectorRecord) error {
	b.observe(rec.Timestamp)
	return b.write(DirectorPoint(b.sessionID, rec))
}

// BuildTargetMarker writes a head marker change.
func (b *Backend) BuildTargetMarker(rec core.MarkerRecord) error {
	b.observe(rec.Timestamp)
	return b.write(MarkerPoint(b.sessionID, rec))
}

// BuildStatusList writes the status list and its effects.
func (b *Backend) BuildStatusList(rec core.StatusListRecord) error {
	return b.write(StatusListPoints(b.sessionID, rec, b.stamp())...)
}
