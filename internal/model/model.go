package model

import (
	"time"

	"gorm.io/datatypes"
)

////////////////////////
// DATABASE STRUCTURES //
////////////////////////

// DatabaseModels is a list of all the structs exported here which represent tables in the database schema
var DatabaseModels = []interface{}{
	&IngestSession{},
	&Actor{},
	&AbilityEvent{},
	&StatusList{},
	&DirectorEvent{},
	&MarkerEvent{},
}

// IngestSession is one run of a log file through the pipeline
type IngestSession struct {
	ID        string    `json:"id" gorm:"primaryKey;size:27"`
	Source    string    `json:"source"`
	StartedAt time.Time `json:"startedAt"`
}

func (*IngestSession) TableName() string {
	return "ingest_sessions"
}

// Actor is the latest known state of one actor within a session
type Actor struct {
	SessionID string         `json:"sessionId" gorm:"primaryKey;size:27"`
	ActorID   uint32         `json:"actorId" gorm:"primaryKey;autoIncrement:false"`
	Name      string         `json:"name" gorm:"size:64"`
	Resources datatypes.JSON `json:"resources"`
	Position  datatypes.JSON `json:"position"`
	UpdatedAt time.Time      `json:"updatedAt"`
}

func (*Actor) TableName() string {
	return "actors"
}

// AbilityEvent is one decoded ability cast
type AbilityEvent struct {
	ID              uint           `json:"id" gorm:"primarykey;autoIncrement;"`
	SessionID       string         `json:"sessionId" gorm:"index:idx_ability_session_time;size:27"`
	Time            time.Time      `json:"time" gorm:"index:idx_ability_session_time"`
	SourceID        uint32         `json:"sourceId" gorm:"index:idx_ability_source_id"`
	SourceName      string         `json:"sourceName" gorm:"size:64"`
	TargetID        uint32         `json:"targetId" gorm:"index:idx_ability_target_id"`
	TargetName      string         `json:"targetName" gorm:"size:64"`
	AbilityID       uint32         `json:"abilityId" gorm:"index:idx_ability_ability_id"`
	AbilityName     string         `json:"abilityName" gorm:"size:128"`
	Sequence        uint32         `json:"sequence"`
	SourceResources datatypes.JSON `json:"sourceResources"`
	SourcePosition  datatypes.JSON `json:"sourcePosition"`
	TargetResources datatypes.JSON `json:"targetResources"`
	TargetPosition  datatypes.JSON `json:"targetPosition"`
	Effects         datatypes.JSON `json:"effects"`
}

func (*AbilityEvent) TableName() string {
	return "ability_events"
}

// StatusList is one snapshot of the effects active on an actor
type StatusList struct {
	ID        uint           `json:"id" gorm:"primarykey;autoIncrement;"`
	SessionID string         `json:"sessionId" gorm:"index:idx_status_session_actor;size:27"`
	ActorID   uint32         `json:"actorId" gorm:"index:idx_status_session_actor"`
	ActorName string         `json:"actorName" gorm:"size:64"`
	Class     string         `json:"class" gorm:"size:16"`
	Resources datatypes.JSON `json:"resources"`
	Position  datatypes.JSON `json:"position"`
	Effects   datatypes.JSON `json:"effects"`
	CreatedAt time.Time      `json:"createdAt"`
}

func (*StatusList) TableName() string {
	return "status_lists"
}

// DirectorEvent is one instance state change
type DirectorEvent struct {
	ID          uint      `json:"id" gorm:"primarykey;autoIncrement;"`
	SessionID   string    `json:"sessionId" gorm:"index:idx_director_session_time;size:27"`
	Time        time.Time `json:"time" gorm:"index:idx_director_session_time"`
	InstanceID  uint16    `json:"instanceId"`
	Command     uint32    `json:"command"`
	CommandName string    `json:"commandName" gorm:"size:16"`
}

func (*DirectorEvent) TableName() string {
	return "director_events"
}

// MarkerEvent is one head marker change
type MarkerEvent struct {
	ID         uint      `json:"id" gorm:"primarykey;autoIncrement;"`
	SessionID  string    `json:"sessionId" gorm:"index:idx_marker_session_time;size:27"`
	Time       time.Time `json:"time" gorm:"index:idx_marker_session_time"`
	Operation  string    `json:"operation" gorm:"size:8"`
	Marker     uint8     `json:"marker"`
	MarkerName string    `json:"markerName" gorm:"size:16"`
	SourceID   uint32    `json:"sourceId"`
	SourceName string    `json:"sourceName" gorm:"size:64"`
	TargetID   uint32    `json:"targetId" gorm:"index:idx_marker_target_id"`
	TargetName string    `json:"targetName" gorm:"size:64"`
}

func (*MarkerEvent) TableName() string {
	return "marker_events"
}
