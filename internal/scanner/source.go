// Package scanner controls the tag-read source and its lifecycle
package scanner

import (
	"rfid-kiosk/internal/models"
)

// Source is a stream of raw tag reads. Real deployments wrap the reader
// hardware; development builds use the mock generator. Implementations
// must make Start and Stop safe to call repeatedly.
type Source interface {
	// Start begins emitting scan events. A second Start while running
	// is a no-op.
	Start() error
	// Stop halts emission. Stop on a stopped source is a no-op.
	Stop() error
	// IsRunning reports whether the source is currently emitting
	IsRunning() bool
	// Events is the channel raw reads arrive on. It stays open across
	// start/stop cycles.
	Events() <-chan models.ScanEvent
}
