package parser

import (
	"fmt"

	"github.com/nari/actlog/pkg/core"
)

// AbilityFieldCount is the number of fields an ability line must carry.
//
//	 0- 1  source id, name
//	 2- 3  ability id, name
//	 4- 5  target id, name
//	 6-21  8 action effects, 2 words each
//	22-27  source resources
//	28-31  source position
//	32-37  target resources
//	38-41  target position
//	42     sequence id
const AbilityFieldCount = 2 + 2 + 2 + core.AbilityEffectCount*2 + 6 + 4 + 6 + 4 + 1

// DecodeAbility assembles an ability cast. Fields past the layout are ignored.
func (p *Parser) DecodeAbility(timestamp int64, fields []string) (core.AbilityRecord, error) {
	if len(fields) < AbilityFieldCount {
		return core.AbilityRecord{}, fmt.Errorf("%w: ability needs %d fields, got %d",
			ErrTruncatedRecord, AbilityFieldCount, len(fields))
	}

	r := p.newReader(fields)
	rec := core.AbilityRecord{Timestamp: timestamp}

	rec.Source = r.actor("source")
	rec.Ability = r.actor("ability")
	rec.Target = r.actor("target")
	for i := range rec.Effects {
		rec.Effects[i] = r.actionEffect(fmt.Sprintf("effects[%d]", i))
	}
	rec.SourceResources = r.resources("source.resources")
	rec.SourcePosition = r.position("source.position")
	rec.TargetResources = r.resources("target.resources")
	rec.TargetPosition = r.position("target.position")
	rec.Sequence = r.u32("sequence")

	if r.err != nil {
		return core.AbilityRecord{}, fmt.Errorf("error decoding ability: %w", r.err)
	}
	return rec, nil
}
