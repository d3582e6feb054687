package parser

import (
	"fmt"
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/nari/actlog/pkg/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func hexFloat(f float32) string {
	return fmt.Sprintf("%08X", math.Float32bits(f))
}

// abilityFixture returns an ability line where every field holds a value
// derived from its slot, so a misplaced field shows up in the assertions.
func abilityFixture() []string {
	fields := []string{
		"1000A001", "Source Name", // 0-1
		"00000B01", "Fire IV", // 2-3
		"4000C001", "Striking Dummy", // 4-5
	}
	for k := 0; k < core.AbilityEffectCount; k++ {
		fields = append(fields,
			fmt.Sprintf("%02X%02X%02X%02X", k*4+1, k*4+2, k*4+3, k*4+4),
			fmt.Sprintf("%04X%02X%02X", 0x1000+k, 0xF0+k, k),
		)
	}
	for i := 0; i < 6; i++ {
		fields = append(fields, fmt.Sprintf("%08X", 1000+i))
	}
	for _, f := range []float32{1.0, 2.0, 3.0, 0.5} {
		fields = append(fields, hexFloat(f))
	}
	for i := 0; i < 6; i++ {
		fields = append(fields, fmt.Sprintf("%08X", 2000+i))
	}
	for _, f := range []float32{-1.0, -2.0, -3.0, -0.5} {
		fields = append(fields, hexFloat(f))
	}
	fields = append(fields, "0000ABCD")
	return fields
}

func TestAbilityFixtureShape(t *testing.T) {
	require.Len(t, abilityFixture(), AbilityFieldCount)
	assert.Equal(t, 43, AbilityFieldCount)
}

func TestDecodeAbility_EveryField(t *testing.T) {
	p := newTestParser()

	rec, err := p.DecodeAbility(1644458992630, abilityFixture())
	require.NoError(t, err)

	assert.Equal(t, int64(1644458992630), rec.Timestamp)
	assert.Equal(t, core.ActorIdentity{ID: 0x1000A001, Name: "Source Name"}, rec.Source)
	assert.Equal(t, core.ActorIdentity{ID: 0xB01, Name: "Fire IV"}, rec.Ability)
	assert.Equal(t, core.ActorIdentity{ID: 0x4000C001, Name: "Striking Dummy"}, rec.Target)

	for k, eff := range rec.Effects {
		assert.Equal(t, core.ActionEffect{
			Param0:     uint8(k*4 + 1),
			Param1:     uint8(k*4 + 2),
			Severity:   uint8(k*4 + 3),
			Category:   uint8(k*4 + 4),
			Value:      uint16(0x1000 + k),
			Flags:      uint8(0xF0 + k),
			Multiplier: uint8(k),
		}, eff, "effect %d", k)
	}

	assert.Equal(t, core.Resources{1000, 1001, 1002, 1003, 1004, 1005}, rec.SourceResources)
	assert.Equal(t, core.Position{1.0, 2.0, 3.0, 0.5}, rec.SourcePosition)
	assert.Equal(t, core.Resources{2000, 2001, 2002, 2003, 2004, 2005}, rec.TargetResources)
	assert.Equal(t, core.Position{-1.0, -2.0, -3.0, -0.5}, rec.TargetPosition)
	assert.Equal(t, uint32(0xABCD), rec.Sequence)
}

func TestDecodeAbility_TrailingFieldsIgnored(t *testing.T) {
	p := newTestParser()

	fields := append(abilityFixture(), "00000000", "", "5401dc333f466389")
	rec, err := p.DecodeAbility(0, fields)
	require.NoError(t, err)
	assert.Equal(t, uint32(0xABCD), rec.Sequence)
}

func TestDecodeAbility_Truncated(t *testing.T) {
	p := newTestParser()
	fields := abilityFixture()

	for _, n := range []int{0, 1, 6, 22, AbilityFieldCount - 1} {
		t.Run(fmt.Sprintf("%d fields", n), func(t *testing.T) {
			rec, err := p.DecodeAbility(0, fields[:n])
			assert.ErrorIs(t, err, ErrTruncatedRecord)
			assert.Equal(t, core.AbilityRecord{}, rec)
		})
	}
}

func TestDecodeAbility_MalformedField(t *testing.T) {
	tests := []struct {
		index int
		role  string
	}{
		{0, "source.id"},
		{2, "ability.id"},
		{4, "target.id"},
		{6, "effects[0].a"},
		{21, "effects[7].b"},
		{22, "source.resources[0]"},
		{31, "source.position[3]"},
		{37, "target.resources[5]"},
		{38, "target.position[0]"},
		{42, "sequence"},
	}

	p := newTestParser()
	for _, tt := range tests {
		t.Run(tt.role, func(t *testing.T) {
			fields := abilityFixture()
			fields[tt.index] = "NOPE"

			rec, err := p.DecodeAbility(0, fields)
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrMalformedNumber)
			assert.Equal(t, core.AbilityRecord{}, rec)

			var fe *FieldError
			require.ErrorAs(t, err, &fe)
			assert.Equal(t, tt.index, fe.Index)
			assert.Equal(t, tt.role, fe.Role)
			assert.Equal(t, "NOPE", fe.Value)
		})
	}
}

func TestDecodeAbility_NamesAreNotParsed(t *testing.T) {
	p := newTestParser()
	fields := abilityFixture()
	fields[1] = "ZZZZ not hex"
	fields[3] = ""

	rec, err := p.DecodeAbility(0, fields)
	require.NoError(t, err)
	assert.Equal(t, "ZZZZ not hex", rec.Source.Name)
	assert.Equal(t, "", rec.Ability.Name)
}

func TestDecodeAbility_Lenient(t *testing.T) {
	p := NewParser(nil, WithLenient(true))
	fields := abilityFixture()
	fields[22] = "nope"
	fields[42] = "also bad"

	rec, err := p.DecodeAbility(0, fields)
	require.NoError(t, err)
	assert.Equal(t, uint32(0), rec.SourceResources[0])
	assert.Equal(t, uint32(1001), rec.SourceResources[1])
	assert.Equal(t, uint32(0), rec.Sequence)

	// truncation is never lenient
	_, err = p.DecodeAbility(0, fields[:10])
	assert.ErrorIs(t, err, ErrTruncatedRecord)
}

func TestDecodeAbility_Idempotent(t *testing.T) {
	p := newTestParser()
	fields := abilityFixture()

	first, err := p.DecodeAbility(42, fields)
	require.NoError(t, err)
	second, err := p.DecodeAbility(42, fields)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	if diff := cmp.Diff(first, second); diff != "" {
		t.Errorf("second decode differs (-first +second):\n%s", diff)
	}
	assert.Equal(t, abilityFixture(), fields, "input must not be mutated")
}
