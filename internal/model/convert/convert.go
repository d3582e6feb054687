package convert

import (
	"encoding/json"
	"fmt"

	"github.com/nari/actlog/internal/model"
	"github.com/nari/actlog/pkg/core"
)

// ActorState is an actor row read back from storage
type ActorState struct {
	Identity  core.ActorIdentity
	Resources core.Resources
	Position  core.Position
}

// ActorToCore converts a GORM Actor back to its core parts.
func ActorToCore(a model.Actor) (ActorState, error) {
	out := ActorState{Identity: core.ActorIdentity{ID: a.ActorID, Name: a.Name}}
	if err := json.Unmarshal(a.Resources, &out.Resources); err != nil {
		return ActorState{}, fmt.Errorf("actor %08X resources: %w", a.ActorID, err)
	}
	if err := json.Unmarshal(a.Position, &out.Position); err != nil {
		return ActorState{}, fmt.Errorf("actor %08X position: %w", a.ActorID, err)
	}
	return out, nil
}

// AbilityEventToCore converts a GORM AbilityEvent back to a core.AbilityRecord.
func AbilityEventToCore(e model.AbilityEvent) (core.AbilityRecord, error) {
	rec := core.AbilityRecord{
		Timestamp: e.Time.UnixMilli(),
		Source:    core.ActorIdentity{ID: e.SourceID, Name: e.SourceName},
		Target:    core.ActorIdentity{ID: e.TargetID, Name: e.TargetName},
		Ability:   core.ActorIdentity{ID: e.AbilityID, Name: e.AbilityName},
		Sequence:  e.Sequence,
	}

	columns := []struct {
		name string
		data []byte
		dst  any
	}{
		{"sourceResources", e.SourceResources, &rec.SourceResources},
		{"sourcePosition", e.SourcePosition, &rec.SourcePosition},
		{"targetResources", e.TargetResources, &rec.TargetResources},
		{"targetPosition", e.TargetPosition, &rec.TargetPosition},
		{"effects", e.Effects, &rec.Effects},
	}
	for _, c := range columns {
		if err := json.Unmarshal(c.data, c.dst); err != nil {
			return core.AbilityRecord{}, fmt.Errorf("ability event %d %s: %w", e.ID, c.name, err)
		}
	}

	return rec, nil
}

// StatusListToCore converts a GORM StatusList back to a core.StatusListRecord.
func StatusListToCore(s model.StatusList) (core.StatusListRecord, error) {
	rec := core.StatusListRecord{
		Actor: core.ActorIdentity{ID: s.ActorID, Name: s.ActorName},
		Class: s.Class,
	}
	if err := json.Unmarshal(s.Resources, &rec.Resources); err != nil {
		return core.StatusListRecord{}, fmt.Errorf("status list %d resources: %w", s.ID, err)
	}
	if err := json.Unmarshal(s.Position, &rec.Position); err != nil {
		return core.StatusListRecord{}, fmt.Errorf("status list %d position: %w", s.ID, err)
	}
	if err := json.Unmarshal(s.Effects, &rec.Effects); err != nil {
		return core.StatusListRecord{}, fmt.Errorf("status list %d effects: %w", s.ID, err)
	}
	return rec, nil
}

// DirectorEventToCore converts a GORM DirectorEvent back to a core.DirectorRecord.
func DirectorEventToCore(e model.DirectorEvent) core.DirectorRecord {
	return core.DirectorRecord{
		Timestamp:  e.Time.UnixMilli(),
		InstanceID: e.InstanceID,
		Command:    core.DirectorCommand(e.Command),
	}
}

// MarkerEventToCore converts a GORM MarkerEvent back to a core.MarkerRecord.
func MarkerEventToCore(e model.MarkerEvent) (core.MarkerRecord, error) {
	op, ok := core.ParseMarkerOperation(e.Operation)
	if !ok {
		return core.MarkerRecord{}, fmt.Errorf("marker event %d: unknown operation %q", e.ID, e.Operation)
	}
	return core.MarkerRecord{
		Timestamp: e.Time.UnixMilli(),
		Operation: op,
		Marker:    core.PlayerMarker(e.Marker),
		Source:    core.ActorIdentity{ID: e.SourceID, Name: e.SourceName},
		Target:    core.ActorIdentity{ID: e.TargetID, Name: e.TargetName},
	}, nil
}
