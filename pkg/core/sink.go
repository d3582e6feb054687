// pkg/core/sink.go
package core

// RecordSink receives decoded records and turns them into whatever richer
// representation it owns. The decoder never reads anything back from it.
type RecordSink interface {
	// BuildActor merges the latest resources and position into the actor.
	BuildActor(identity ActorIdentity, resources Resources, position Position) error
	BuildAbilityEvent(rec AbilityRecord) error
	BuildStatusList(rec StatusListRecord) error
	BuildDirectorUpdate(rec DirectorRecord) error
	BuildTargetMarker(rec MarkerRecord) error
}
