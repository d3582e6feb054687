// Package worker runs log lines through integrity checks, the dispatcher,
// the record decoder and into a storage backend.
package worker

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/nari/actlog/internal/actlog"
	"github.com/nari/actlog/internal/checksum"
	"github.com/nari/actlog/internal/dispatcher"
	"github.com/nari/actlog/internal/parser"
	"github.com/nari/actlog/internal/storage"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// ErrDecode marks handler failures that were already counted against the
// line; anything else Dispatch returns means the line never reached a handler.
var ErrDecode = errors.New("record not decoded")

// AutoAlgorithm selects the checksum algorithm per line from its suffix length.
const AutoAlgorithm = "auto"

const instrumentationName = "github.com/nari/actlog/internal/worker"

// Dependencies holds all dependencies for the worker manager
type Dependencies struct {
	Parser *parser.Parser
	Logger *slog.Logger
	// DispatchLogger receives the dispatcher's per-line debug logs.
	DispatchLogger dispatcher.Logger

	// ChecksumAlgorithm is AutoAlgorithm or anything checksum.ParseAlgorithm accepts.
	ChecksumAlgorithm string
	// EnforceChecksum skips lines that fail validation.
	EnforceChecksum bool
	// BufferSize queues decoding behind the reader when positive.
	BufferSize int
}

// Summary counts what happened to the lines of one Ingest call.
type Summary struct {
	Lines            int64 // non-blank lines read
	Decoded          int64 // records handed to the backend
	Skipped          int64 // unsplittable lines, line types without a handler, other director commands
	ChecksumFailures int64 // mismatched or unreadable integrity suffixes
	DecodeErrors     int64 // lines whose record could not be assembled
	SinkErrors       int64 // records the backend rejected
	Dropped          int64 // lines refused by a full or closed queue
}

type counters struct {
	lines, decoded, skipped, checksumFailures, decodeErrors, sinkErrors, dropped atomic.Int64
}

func (c *counters) summary() Summary {
	return Summary{
		Lines:            c.lines.Load(),
		Decoded:          c.decoded.Load(),
		Skipped:          c.skipped.Load(),
		ChecksumFailures: c.checksumFailures.Load(),
		DecodeErrors:     c.decodeErrors.Load(),
		SinkErrors:       c.sinkErrors.Load(),
		Dropped:          c.dropped.Load(),
	}
}

// Manager binds the decoder, checksum policy and a storage backend.
type Manager struct {
	deps    Dependencies
	backend storage.Backend
	logger  *slog.Logger

	auto      bool
	algorithm checksum.Algorithm

	counts   *counters
	outcomes metric.Int64Counter
}

// NewManager creates a new worker manager
func NewManager(deps Dependencies, backend storage.Backend) (*Manager, error) {
	if deps.Parser == nil {
		return nil, errors.New("worker needs a parser")
	}
	if backend == nil {
		return nil, errors.New("worker needs a storage backend")
	}
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}
	if deps.DispatchLogger == nil {
		deps.DispatchLogger = nopLogger{}
	}

	m := &Manager{
		deps:    deps,
		backend: backend,
		logger:  logger,
		counts:  &counters{},
	}

	if deps.ChecksumAlgorithm == "" || deps.ChecksumAlgorithm == AutoAlgorithm {
		m.auto = true
	} else {
		alg, err := checksum.ParseAlgorithm(deps.ChecksumAlgorithm)
		if err != nil {
			return nil, err
		}
		m.algorithm = alg
	}

	outcomes, err := otel.Meter(instrumentationName).Int64Counter(
		"actlog.worker.lines",
		metric.WithDescription("Lines read by the worker, by outcome"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating line counter: %w", err)
	}
	m.outcomes = outcomes

	return m, nil
}

func (m *Manager) record(c *atomic.Int64, outcome string) {
	c.Add(1)
	m.outcomes.Add(context.Background(), 1, metric.WithAttributes(attribute.String("outcome", outcome)))
}

// Ingest reads r line by line until EOF or cancellation and returns what
// happened to every line. Buffered handlers are drained before it returns.
func (m *Manager) Ingest(ctx context.Context, r io.Reader) (Summary, error) {
	m.counts = &counters{}

	d, err := dispatcher.New(m.deps.DispatchLogger)
	if err != nil {
		return Summary{}, err
	}
	m.RegisterHandlers(d)

	start := time.Now()
	scanErr := actlog.Scan(ctx, r, func(raw string, index int) error {
		m.processLine(d, raw, index)
		return nil
	})
	d.Close()

	summary := m.counts.summary()
	m.logger.Info("Ingest finished",
		"lines", summary.Lines,
		"decoded", summary.Decoded,
		"skipped", summary.Skipped,
		"checksumFailures", summary.ChecksumFailures,
		"decodeErrors", summary.DecodeErrors,
		"sinkErrors", summary.SinkErrors,
		"dropped", summary.Dropped,
		"duration", time.Since(start),
	)
	if scanErr != nil {
		return summary, fmt.Errorf("error ingesting log: %w", scanErr)
	}
	return summary, nil
}

// checksumAlgorithm returns the algorithm for raw under the configured policy.
func (m *Manager) checksumAlgorithm(raw string) (checksum.Algorithm, bool) {
	if m.auto {
		return checksum.Detect(raw)
	}
	return m.algorithm, true
}

// verify reports whether the line passes the integrity check.
func (m *Manager) verify(line actlog.Line) bool {
	alg, ok := m.checksumAlgorithm(line.Raw)
	if !ok {
		m.logger.Warn("Unrecognized checksum suffix", "index", line.Index, "type", line.Type)
		return false
	}

	valid, err := checksum.Validate(line.Raw, line.Index, alg)
	if err != nil {
		m.logger.Warn("Unreadable checksum", "index", line.Index, "type", line.Type, "error", err)
		return false
	}
	if !valid {
		m.logger.Warn("Checksum mismatch", "index", line.Index, "type", line.Type, "algorithm", alg)
	}
	return valid
}

func (m *Manager) processLine(d *dispatcher.Dispatcher, raw string, index int) {
	m.record(&m.counts.lines, "read")

	line, err := actlog.Split(raw, index)
	if err != nil {
		m.logger.Debug("Skipping line", "index", index, "error", err)
		m.record(&m.counts.skipped, "skipped")
		return
	}

	if !m.verify(line) {
		m.record(&m.counts.checksumFailures, "checksum_failed")
		if m.deps.EnforceChecksum {
			return
		}
	}

	if line.Type == actlog.TypeVersionInfo {
		alg, _ := m.checksumAlgorithm(line.Raw)
		m.logger.Info("Plugin version line", "index", line.Index, "checksum", alg.String())
	}

	if !d.HasHandler(line.Type) {
		m.record(&m.counts.skipped, "skipped")
		return
	}

	_, err = d.Dispatch(dispatcher.Event{Line: line, Received: time.Now()})
	if err != nil && !errors.Is(err, ErrDecode) {
		m.logger.Warn("Line not dispatched", "index", line.Index, "type", line.Type, "error", err)
		m.record(&m.counts.dropped, "dropped")
	}
}

type nopLogger struct{}

func (nopLogger) Debug(string, ...any) {}
func (nopLogger) Info(string, ...any)  {}
func (nopLogger) Error(string, ...any) {}
