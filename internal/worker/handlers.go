package worker

import (
	"errors"
	"fmt"

	"github.com/nari/actlog/internal/actlog"
	"github.com/nari/actlog/internal/dispatcher"
	"github.com/nari/actlog/internal/parser"
)

// NoTarget is the actor id ACT logs for an ability without a target.
const NoTarget uint32 = 0xE0000000

// RegisterHandlers registers the line handlers with the dispatcher.
func (m *Manager) RegisterHandlers(d *dispatcher.Dispatcher) {
	var opts []dispatcher.Option
	if m.deps.BufferSize > 0 {
		// the reader waits for the decoder rather than losing lines
		opts = append(opts, dispatcher.Buffered(m.deps.BufferSize), dispatcher.Blocking())
	}
	opts = append(opts, dispatcher.Logged())

	d.Register(actlog.TypeAbility, m.handleAbility, opts...)
	d.Register(actlog.TypeAOEAbility, m.handleAbility, opts...)
	d.Register(actlog.TypeStatusList, m.handleStatusList, opts...)
	d.Register(actlog.TypeDirector, m.handleDirector, opts...)
	d.Register(actlog.TypeTargetMarker, m.handleTargetMarker, opts...)
}

func (m *Manager) decodeFailed(e dispatcher.Event, what string, err error) error {
	m.record(&m.counts.decodeErrors, "decode_failed")
	return fmt.Errorf("%w: %s on line %d: %w", ErrDecode, what, e.Line.Index, err)
}

func (m *Manager) sinkFailed(e dispatcher.Event, err error) error {
	m.record(&m.counts.sinkErrors, "sink_failed")
	return fmt.Errorf("%w: storing line %d: %w", ErrDecode, e.Line.Index, err)
}

func (m *Manager) handleAbility(e dispatcher.Event) (any, error) {
	ts, err := actlog.ParseTimestamp(e.Line.Timestamp)
	if err != nil {
		return nil, m.decodeFailed(e, "ability", err)
	}

	rec, err := m.deps.Parser.DecodeAbility(ts, e.Line.Fields)
	if err != nil {
		return nil, m.decodeFailed(e, "ability", err)
	}

	// the cast goes first so backends without a per-actor time can stamp
	// the actor updates that follow with it
	errs := []error{
		m.backend.BuildAbilityEvent(rec),
		m.backend.BuildActor(rec.Source, rec.SourceResources, rec.SourcePosition),
	}
	if rec.Target.ID != NoTarget {
		errs = append(errs, m.backend.BuildActor(rec.Target, rec.TargetResources, rec.TargetPosition))
	}
	if err := errors.Join(errs...); err != nil {
		return nil, m.sinkFailed(e, err)
	}

	m.record(&m.counts.decoded, "decoded")
	return rec, nil
}

func (m *Manager) handleStatusList(e dispatcher.Event) (any, error) {
	rec, err := m.deps.Parser.DecodeStatusList(e.Line.Fields)
	if err != nil {
		return nil, m.decodeFailed(e, "status list", err)
	}

	err = errors.Join(
		m.backend.BuildActor(rec.Actor, rec.Resources, rec.Position),
		m.backend.BuildStatusList(rec),
	)
	if err != nil {
		return nil, m.sinkFailed(e, err)
	}

	m.record(&m.counts.decoded, "decoded")
	return rec, nil
}

func (m *Manager) handleDirector(e dispatcher.Event) (any, error) {
	ts, err := actlog.ParseTimestamp(e.Line.Timestamp)
	if err != nil {
		return nil, m.decodeFailed(e, "director update", err)
	}

	rec, err := m.deps.Parser.DecodeDirectorUpdate(ts, e.Line.Fields)
	if errors.Is(err, parser.ErrUnknownDirectorCommand) {
		// content-specific director traffic, not an instance state change
		m.record(&m.counts.skipped, "skipped")
		return nil, nil
	}
	if err != nil {
		return nil, m.decodeFailed(e, "director update", err)
	}

	if err := m.backend.BuildDirectorUpdate(rec); err != nil {
		return nil, m.sinkFailed(e, err)
	}

	m.record(&m.counts.decoded, "decoded")
	return rec, nil
}

func (m *Manager) handleTargetMarker(e dispatcher.Event) (any, error) {
	ts, err := actlog.ParseTimestamp(e.Line.Timestamp)
	if err != nil {
		return nil, m.decodeFailed(e, "target marker", err)
	}

	rec, err := m.deps.Parser.DecodeTargetMarker(ts, e.Line.Fields)
	if err != nil {
		return nil, m.decodeFailed(e, "target marker", err)
	}

	if err := m.backend.BuildTargetMarker(rec); err != nil {
		return nil, m.sinkFailed(e, err)
	}

	m.record(&m.counts.decoded, "decoded")
	return rec, nil
}
