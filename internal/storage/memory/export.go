// internal/storage/memory/export.go
package memory

import (
	"compress/gzip"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/nari/actlog/pkg/core"
)

// Export is the root JSON structure
type Export struct {
	SessionID   string           `json:"sessionId"`
	ExportedAt  time.Time        `json:"exportedAt"`
	Actors      []ActorJSON      `json:"actors"`
	Abilities   []AbilityJSON    `json:"abilities"`
	StatusLists []StatusListJSON `json:"statusLists"`
	Directors   []DirectorJSON   `json:"directors"`
	Markers     []MarkerJSON     `json:"markers"`
}

// ActorJSON is the exported state of one actor
type ActorJSON struct {
	ID        uint32         `json:"id"`
	Name      string         `json:"name"`
	Resources core.Resources `json:"resources"`
	Position  core.Position  `json:"position"`
	Updates   int            `json:"updates"`
}

// AbilityJSON is one exported ability cast. Actors are referenced by id.
type AbilityJSON struct {
	Time            int64                                      `json:"time"`
	SourceID        uint32                                     `json:"sourceId"`
	SourceResources core.Resources                             `json:"sourceResources"`
	SourcePosition  core.Position                              `json:"sourcePosition"`
	TargetID        uint32                                     `json:"targetId"`
	TargetResources core.Resources                             `json:"targetResources"`
	TargetPosition  core.Position                              `json:"targetPosition"`
	Ability         core.ActorIdentity                         `json:"ability"`
	Effects         [core.AbilityEffectCount]core.ActionEffect `json:"effects"`
	Sequence        uint32                                     `json:"sequence"`
}

// StatusListJSON is one exported status list snapshot
type StatusListJSON struct {
	ActorID   uint32              `json:"actorId"`
	Class     string              `json:"class"`
	Resources core.Resources      `json:"resources"`
	Position  core.Position       `json:"position"`
	Effects   []core.StatusEffect `json:"effects"`
}

// DirectorJSON is one exported instance state change
type DirectorJSON struct {
	Time       int64  `json:"time"`
	InstanceID uint16 `json:"instanceId"`
	Command    string `json:"command"`
}

// MarkerJSON is one exported head marker change
type MarkerJSON struct {
	Time      int64  `json:"time"`
	Operation string `json:"operation"`
	Marker    string `json:"marker"`
	SourceID  uint32 `json:"sourceId"`
	TargetID  uint32 `json:"targetId"`
}

// exportJSON writes the recorded data to a (optionally gzipped) JSON file.
// Callers hold b.mu.
func (b *Backend) exportJSON() error {
	export := b.buildExport()

	filename := fmt.Sprintf("actlog_%s.json", b.sessionID)
	if b.cfg.CompressOutput {
		filename += ".gz"
	}
	outputPath := filepath.Join(b.cfg.OutputDir, filename)

	if err := os.MkdirAll(b.cfg.OutputDir, 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	var err error
	if b.cfg.CompressOutput {
		err = writeGzipJSON(outputPath, export)
	} else {
		err = writeJSON(outputPath, export)
	}
	if err != nil {
		return err
	}

	b.lastExportPath = outputPath
	b.logger.Info("Exported records",
		"path", outputPath,
		"actors", len(export.Actors),
		"abilities", len(export.Abilities),
		"statusLists", len(export.StatusLists),
		"directors", len(export.Directors),
		"markers", len(export.Markers),
	)
	return nil
}

func (b *Backend) buildExport() Export {
	export := Export{
		SessionID:   b.sessionID,
		ExportedAt:  time.Now().UTC(),
		Actors:      make([]ActorJSON, 0, len(b.actors)),
		Abilities:   make([]AbilityJSON, 0, len(b.abilities)),
		StatusLists: make([]StatusListJSON, 0, len(b.statusLists)),
		Directors:   make([]DirectorJSON, 0, len(b.directors)),
		Markers:     make([]MarkerJSON, 0, len(b.markers)),
	}

	for _, record := range b.actors {
		export.Actors = append(export.Actors, ActorJSON{
			ID:        record.Identity.ID,
			Name:      record.Identity.Name,
			Resources: record.Resources,
			Position:  record.Position,
			Updates:   record.Updates,
		})
	}
	sort.Slice(export.Actors, func(i, j int) bool { return export.Actors[i].ID < export.Actors[j].ID })

	for _, rec := range b.abilities {
		export.Abilities = append(export.Abilities, AbilityJSON{
			Time:            rec.Timestamp,
			SourceID:        rec.Source.ID,
			SourceResources: rec.SourceResources,
			SourcePosition:  rec.SourcePosition,
			TargetID:        rec.Target.ID,
			TargetResources: rec.TargetResources,
			TargetPosition:  rec.TargetPosition,
			Ability:         rec.Ability,
			Effects:         rec.Effects,
			Sequence:        rec.Sequence,
		})
	}

	for _, rec := range b.statusLists {
		effects := rec.Effects
		if effects == nil {
			effects = []core.StatusEffect{}
		}
		export.StatusLists = append(export.StatusLists, StatusListJSON{
			ActorID:   rec.Actor.ID,
			Class:     rec.Class,
			Resources: rec.Resources,
			Position:  rec.Position,
			Effects:   effects,
		})
	}

	for _, rec := range b.directors {
		export.Directors = append(export.Directors, DirectorJSON{
			Time:       rec.Timestamp,
			InstanceID: rec.InstanceID,
			Command:    rec.Command.String(),
		})
	}

	for _, rec := range b.markers {
		export.Markers = append(export.Markers, MarkerJSON{
			Time:      rec.Timestamp,
			Operation: rec.Operation.String(),
			Marker:    rec.Marker.String(),
			SourceID:  rec.Source.ID,
			TargetID:  rec.Target.ID,
		})
	}

	return export
}

func writeJSON(path string, data Export) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	defer f.Close()

	encoder := json.NewEncoder(f)
	return encoder.Encode(data)
}

func writeGzipJSON(path string, data Export) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	defer f.Close()

	gzWriter := gzip.NewWriter(f)
	encoder := json.NewEncoder(gzWriter)
	if err := encoder.Encode(data); err != nil {
		gzWriter.Close()
		return err
	}
	return gzWriter.Close()
}
