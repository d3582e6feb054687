package core

import "fmt"

// DirectorCommand is the command id of a director update line.
type DirectorCommand uint32

// Director commands that mark instance state changes. Other ids carry
// content-specific data and are not decoded.
const (
	DirectorInit        DirectorCommand = 0x40000001
	DirectorComplete    DirectorCommand = 0x40000003
	DirectorFadeOut     DirectorCommand = 0x40000005
	DirectorBarrierDown DirectorCommand = 0x40000006
	DirectorFadeIn      DirectorCommand = 0x40000010
	DirectorBarrierUp   DirectorCommand = 0x40000012
)

var directorCommandNames = map[DirectorCommand]string{
	DirectorInit:        "init",
	DirectorComplete:    "complete",
	DirectorFadeOut:     "fade_out",
	DirectorBarrierDown: "barrier_down",
	DirectorFadeIn:      "fade_in",
	DirectorBarrierUp:   "barrier_up",
}

// Known reports whether c is one of the decoded instance commands.
func (c DirectorCommand) Known() bool {
	_, ok := directorCommandNames[c]
	return ok
}

func (c DirectorCommand) String() string {
	if name, ok := directorCommandNames[c]; ok {
		return name
	}
	return fmt.Sprintf("DirectorCommand(%08X)", uint32(c))
}

// DirectorRecord is an instance state change: init, barrier toggle, fade or completion.
type DirectorRecord struct {
	Timestamp  int64 // unix milliseconds
	InstanceID uint16
	Command    DirectorCommand
}

// MarkerOperation is what happened to a head marker.
type MarkerOperation uint8

const (
	MarkerAdd MarkerOperation = iota
	MarkerUpdate
	MarkerDelete
)

var markerOperationNames = [...]string{"Add", "Update", "Delete"}

func (o MarkerOperation) String() string {
	if int(o) < len(markerOperationNames) {
		return markerOperationNames[o]
	}
	return fmt.Sprintf("MarkerOperation(%d)", uint8(o))
}

// ParseMarkerOperation reads the operation word of a target marker line.
func ParseMarkerOperation(s string) (MarkerOperation, bool) {
	for i, name := range markerOperationNames {
		if name == s {
			return MarkerOperation(i), true
		}
	}
	return 0, false
}

// PlayerMarker is a head marker a player places on a target.
type PlayerMarker uint8

const (
	MarkerAttack1 PlayerMarker = iota
	MarkerAttack2
	MarkerAttack3
	MarkerAttack4
	MarkerAttack5
	MarkerBind1
	MarkerBind2
	MarkerBind3
	MarkerIgnore1
	MarkerIgnore2
	MarkerSquare
	MarkerCircle
	MarkerCross
	MarkerTriangle
	MarkerAttack6
	MarkerAttack7
	MarkerAttack8
)

var playerMarkerNames = [...]string{
	"Attack1", "Attack2", "Attack3", "Attack4", "Attack5",
	"Bind1", "Bind2", "Bind3",
	"Ignore1", "Ignore2",
	"Square", "Circle", "Cross", "Triangle",
	"Attack6", "Attack7", "Attack8",
}

// Valid reports whether m is a marker the game can place.
func (m PlayerMarker) Valid() bool {
	return int(m) < len(playerMarkerNames)
}

func (m PlayerMarker) String() string {
	if m.Valid() {
		return playerMarkerNames[m]
	}
	return fmt.Sprintf("PlayerMarker(%d)", uint8(m))
}

// MarkerRecord is a head marker placed on, moved to or removed from a target.
type MarkerRecord struct {
	Timestamp int64 // unix milliseconds
	Operation MarkerOperation
	Marker    PlayerMarker
	Source    ActorIdentity // player who placed the marker
	Target    ActorIdentity
}
