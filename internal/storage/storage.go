// internal/storage/storage.go
package storage

import "github.com/nari/actlog/pkg/core"

// Backend is the interface all storage implementations must satisfy
type Backend interface {
	core.RecordSink

	// Lifecycle
	Init() error
	Close() error
}

// Exporter is an optional interface for storage backends that produce a
// file on Close.
type Exporter interface {
	ExportedFilePath() string
}
