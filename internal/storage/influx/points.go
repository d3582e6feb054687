package influxstorage

import (
	"fmt"
	"math"
	"strconv"
	"time"

	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	"github.com/influxdata/influxdb-client-go/v2/api/write"
	"github.com/nari/actlog/pkg/core"
)

// Measurement names written by this backend.
const (
	MeasurementAbility      = "ability"
	MeasurementActionEffect = "action_effect"
	MeasurementActor        = "actor"
	MeasurementStatusList   = "status_list"
	MeasurementStatusEffect = "status_effect"
	MeasurementDirector     = "director"
	MeasurementMarker       = "target_marker"
)

func hexID(id uint32) string {
	return fmt.Sprintf("%08X", id)
}

func resourceFields(prefix string, r core.Resources, fields map[string]interface{}) {
	fields[prefix+"hp"] = r[0]
	fields[prefix+"max_hp"] = r[1]
	fields[prefix+"mp"] = r[2]
	fields[prefix+"max_mp"] = r[3]
}

// floatField sets key unless v is NaN or ±Inf, which line protocol cannot carry.
func floatField(fields map[string]interface{}, key string, v float32) {
	f := float64(v)
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return
	}
	fields[key] = v
}

func positionFields(prefix string, p core.Position, fields map[string]interface{}) {
	floatField(fields, prefix+"x", p[0])
	floatField(fields, prefix+"y", p[1])
	floatField(fields, prefix+"z", p[2])
	floatField(fields, prefix+"heading", p[3])
}

// AbilityPoints returns the ability point followed by one point per
// non-empty action effect, all stamped with the cast's time.
func AbilityPoints(sessionID string, rec core.AbilityRecord) []*write.Point {
	ts := time.UnixMilli(rec.Timestamp)
	tags := map[string]string{
		"session":    sessionID,
		"source_id":  hexID(rec.Source.ID),
		"target_id":  hexID(rec.Target.ID),
		"ability_id": hexID(rec.Ability.ID),
	}

	fields := map[string]interface{}{
		"source_name":  rec.Source.Name,
		"target_name":  rec.Target.Name,
		"ability_name": rec.Ability.Name,
		"sequence":     rec.Sequence,
	}
	resourceFields("source_", rec.SourceResources, fields)
	positionFields("source_", rec.SourcePosition, fields)
	resourceFields("target_", rec.TargetResources, fields)
	positionFields("target_", rec.TargetPosition, fields)

	points := []*write.Point{influxdb2.NewPoint(MeasurementAbility, tags, fields, ts)}

	for i, e := range rec.Effects {
		if e == (core.ActionEffect{}) {
			continue
		}
		points = append(points, influxdb2.NewPoint(MeasurementActionEffect,
			map[string]string{
				"session":    sessionID,
				"source_id":  tags["source_id"],
				"target_id":  tags["target_id"],
				"ability_id": tags["ability_id"],
				"slot":       strconv.Itoa(i),
				"category":   strconv.Itoa(int(e.Category)),
			},
			map[string]interface{}{
				"value":      e.Value,
				"severity":   e.Severity,
				"flags":      e.Flags,
				"multiplier": e.Multiplier,
				"param0":     e.Param0,
				"param1":     e.Param1,
				"sequence":   rec.Sequence,
			},
			ts,
		))
	}

	return points
}

// ActorPoint returns the point for an actor update at ts.
func ActorPoint(sessionID string, identity core.ActorIdentity, resources core.Resources, position core.Position, ts time.Time) *write.Point {
	fields := map[string]interface{}{"name": identity.Name}
	resourceFields("", resources, fields)
	positionFields("", position, fields)

	return influxdb2.NewPoint(MeasurementActor,
		map[string]string{"session": sessionID, "actor_id": hexID(identity.ID)},
		fields,
		ts,
	)
}

// StatusListPoints returns the status list point followed by one point per
// status effect, all stamped with ts.
func StatusListPoints(sessionID string, rec core.StatusListRecord, ts time.Time) []*write.Point {
	actorID := hexID(rec.Actor.ID)

	fields := map[string]interface{}{
		"actor_name":   rec.Actor.Name,
		"effect_count": len(rec.Effects),
	}
	resourceFields("", rec.Resources, fields)
	positionFields("", rec.Position, fields)

	points := []*write.Point{influxdb2.NewPoint(MeasurementStatusList,
		map[string]string{"session": sessionID, "actor_id": actorID, "class": rec.Class},
		fields,
		ts,
	)}

	for i, e := range rec.Effects {
		points = append(points, influxdb2.NewPoint(MeasurementStatusEffect,
			map[string]string{
				"session":  sessionID,
				"actor_id": actorID,
				"slot":     strconv.Itoa(i),
			},
			effectFields(e),
			ts,
		))
	}

	return points
}

func effectFields(e core.StatusEffect) map[string]interface{} {
	fields := map[string]interface{}{
		"param0":   e.Param0,
		"param1":   e.Param1,
		"duration": e.Duration,
	}
	floatField(fields, "magnitude", e.Magnitude)
	return fields
}

// DirectorPoint returns the point for an instance state change.
func DirectorPoint(sessionID string, rec core.DirectorRecord) *write.Point {
	return influxdb2.NewPoint(MeasurementDirector,
		map[string]string{
			"session":     sessionID,
			"instance_id": fmt.Sprintf("%04X", rec.InstanceID),
			"command":     rec.Command.String(),
		},
		map[string]interface{}{"command_id": uint32(rec.Command)},
		time.UnixMilli(rec.Timestamp),
	)
}

// MarkerPoint returns the point for a head marker change.
func MarkerPoint(sessionID string, rec core.MarkerRecord) *write.Point {
	return influxdb2.NewPoint(MeasurementMarker,
		map[string]string{
			"session":   sessionID,
			"operation": rec.Operation.String(),
			"marker":    rec.Marker.String(),
			"source_id": hexID(rec.Source.ID),
			"target_id": hexID(rec.Target.ID),
		},
		map[string]interface{}{
			"source_name": rec.Source.Name,
			"target_name": rec.Target.Name,
		},
		time.UnixMilli(rec.Timestamp),
	)
}
