// Package convert provides functions to convert between GORM models and core models
package convert

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/nari/actlog/internal/model"
	"github.com/nari/actlog/pkg/core"
	"gorm.io/datatypes"
)

// jsonColumns marshals each value into its JSON column, stopping at the first failure.
type jsonColumns struct {
	err error
}

func (c *jsonColumns) encode(name string, v any) datatypes.JSON {
	if c.err != nil {
		return nil
	}
	data, err := json.Marshal(v)
	if err != nil {
		c.err = fmt.Errorf("%s: %w", name, err)
		return nil
	}
	return datatypes.JSON(data)
}

// CoreToActor converts an actor update to a GORM model.Actor.
func CoreToActor(sessionID string, identity core.ActorIdentity, resources core.Resources, position core.Position) (model.Actor, error) {
	var c jsonColumns
	a := model.Actor{
		SessionID: sessionID,
		ActorID:   identity.ID,
		Name:      identity.Name,
		Resources: c.encode("resources", resources),
		Position:  c.encode("position", position),
	}
	if c.err != nil {
		return model.Actor{}, fmt.Errorf("actor %08X %w", identity.ID, c.err)
	}
	return a, nil
}

// CoreToAbilityEvent converts a core.AbilityRecord to a GORM model.AbilityEvent.
func CoreToAbilityEvent(sessionID string, rec core.AbilityRecord) (model.AbilityEvent, error) {
	var c jsonColumns
	e := model.AbilityEvent{
		SessionID:       sessionID,
		Time:            time.UnixMilli(rec.Timestamp).UTC(),
		SourceID:        rec.Source.ID,
		SourceName:      rec.Source.Name,
		TargetID:        rec.Target.ID,
		TargetName:      rec.Target.Name,
		AbilityID:       rec.Ability.ID,
		AbilityName:     rec.Ability.Name,
		Sequence:        rec.Sequence,
		SourceResources: c.encode("sourceResources", rec.SourceResources),
		SourcePosition:  c.encode("sourcePosition", rec.SourcePosition),
		TargetResources: c.encode("targetResources", rec.TargetResources),
		TargetPosition:  c.encode("targetPosition", rec.TargetPosition),
		Effects:         c.encode("effects", rec.Effects),
	}
	if c.err != nil {
		return model.AbilityEvent{}, fmt.Errorf("ability %08X %w", rec.Ability.ID, c.err)
	}
	return e, nil
}

// CoreToStatusList converts a core.StatusListRecord to a GORM model.StatusList.
func CoreToStatusList(sessionID string, rec core.StatusListRecord) (model.StatusList, error) {
	effects := rec.Effects
	if effects == nil {
		effects = []core.StatusEffect{}
	}
	var c jsonColumns
	s := model.StatusList{
		SessionID: sessionID,
		ActorID:   rec.Actor.ID,
		ActorName: rec.Actor.Name,
		Class:     rec.Class,
		Resources: c.encode("resources", rec.Resources),
		Position:  c.encode("position", rec.Position),
		Effects:   c.encode("effects", effects),
	}
	if c.err != nil {
		return model.StatusList{}, fmt.Errorf("status list %08X %w", rec.Actor.ID, c.err)
	}
	return s, nil
}

// CoreToDirectorEvent converts a core.DirectorRecord to a GORM model.DirectorEvent.
func CoreToDirectorEvent(sessionID string, rec core.DirectorRecord) model.DirectorEvent {
	return model.DirectorEvent{
		SessionID:   sessionID,
		Time:        time.UnixMilli(rec.Timestamp).UTC(),
		InstanceID:  rec.InstanceID,
		Command:     uint32(rec.Command),
		CommandName: rec.Command.String(),
	}
}

// CoreToMarkerEvent converts a core.MarkerRecord to a GORM model.MarkerEvent.
func CoreToMarkerEvent(sessionID string, rec core.MarkerRecord) model.MarkerEvent {
	return model.MarkerEvent{
		SessionID:  sessionID,
		Time:       time.UnixMilli(rec.Timestamp).UTC(),
		Operation:  rec.Operation.String(),
		Marker:     uint8(rec.Marker),
		MarkerName: rec.Marker.String(),
		SourceID:   rec.Source.ID,
		SourceName: rec.Source.Name,
		TargetID:   rec.Target.ID,
		TargetName: rec.Target.Name,
	}
}
