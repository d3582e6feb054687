// pkg/core/records.go
package core

// Resources are the six resource counters ACT logs for an actor, in log order
// (current HP, max HP, current MP, max MP, and two job-specific gauges).
type Resources [6]uint32

// Position is an actor's zone-local position: x, y, z and heading.
// Each value is an IEEE-754 bit pattern in the log, not a decimal number.
type Position [4]float32

// ActorIdentity is an id/name pair. The same shape is used for abilities.
type ActorIdentity struct {
	ID   uint32 `json:"id"`
	Name string `json:"name"`
}

// ActionEffect is one sub-effect of an ability use, unpacked from two
// 32-bit words.
type ActionEffect struct {
	Param0     uint8  `json:"param0"`
	Param1     uint8  `json:"param1"`
	Severity   uint8  `json:"severity"`
	Category   uint8  `json:"category"`
	Value      uint16 `json:"value"`
	Flags      uint8  `json:"flags"`
	Multiplier uint8  `json:"multiplier"`
}

// StatusEffect is one buff/debuff instance on an actor.
type StatusEffect struct {
	Param0    uint16  `json:"param0"`
	Param1    uint16  `json:"param1"`
	Magnitude float32 `json:"magnitude"`
	Duration  uint32  `json:"duration"`
}

// AbilityEffectCount is the fixed number of action effects in an ability line.
const AbilityEffectCount = 8

// AbilityRecord is a decoded ability cast.
type AbilityRecord struct {
	Timestamp int64 // unix milliseconds

	Source          ActorIdentity
	SourceResources Resources
	SourcePosition  Position

	Target          ActorIdentity
	TargetResources Resources
	TargetPosition  Position

	Ability  ActorIdentity
	Effects  [AbilityEffectCount]ActionEffect
	Sequence uint32
}

// StatusListRecord is a decoded snapshot of the effects active on one actor.
type StatusListRecord struct {
	Actor     ActorIdentity
	Class     string
	Resources Resources
	Position  Position
	Effects   []StatusEffect
}
