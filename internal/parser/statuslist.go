package parser

import (
	"fmt"

	"github.com/nari/actlog/pkg/core"
)

// statusListPrefix is actor (2) + class (1) + resources (6) + position (4).
const statusListPrefix = 13

// MinStatusListFields is the shortest valid status list line: the fixed
// prefix plus the trailing integrity field.
const MinStatusListFields = statusListPrefix + 1

// DecodeStatusList assembles the status effects active on an actor.
// Everything between the fixed prefix and the last field is read as
// status effect triples; the last field is the line's integrity suffix and
// is skipped.
func (p *Parser) DecodeStatusList(fields []string) (core.StatusListRecord, error) {
	if len(fields) < MinStatusListFields {
		return core.StatusListRecord{}, fmt.Errorf("%w: status list needs at least %d fields, got %d",
			ErrTruncatedRecord, MinStatusListFields, len(fields))
	}
	tail := len(fields) - statusListPrefix - 1
	if tail%3 != 0 {
		return core.StatusListRecord{}, fmt.Errorf("%w: %d effect fields is not a multiple of 3",
			ErrMisalignedEffectList, tail)
	}

	r := p.newReader(fields)
	rec := core.StatusListRecord{}

	rec.Actor = r.actor("actor")
	rec.Class = r.text("class")
	rec.Resources = r.resources("resources")
	rec.Position = r.position("position")

	rec.Effects = make([]core.StatusEffect, 0, tail/3)
	for i := 0; i < tail/3; i++ {
		rec.Effects = append(rec.Effects, r.statusEffect(fmt.Sprintf("effects[%d]", i)))
	}
	r.skip("checksum")

	if r.err != nil {
		return core.StatusListRecord{}, fmt.Errorf("error decoding status list: %w", r.err)
	}
	return rec, nil
}
