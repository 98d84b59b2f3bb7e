// Package gatekeeper decides whether an incoming tag read may start a scan
package gatekeeper

import (
	"context"
	"sync"
	"time"

	"rfid-kiosk/internal/models"
)

const (
	// ScanRecordTTL is how long a scan record answers "have I just seen this"
	ScanRecordTTL = 2 * time.Second
	// CleanupInterval is how often stale records and expired blocks are purged
	CleanupInterval = 2 * time.Second
	// DefaultBlockDuration is the cool-down applied after a completed scan
	DefaultBlockDuration = 2 * time.Second
)

type scanRecord struct {
	scannedAt time.Time
	studentID int
	result    *models.ScanResult
}

// Gatekeeper is pure bookkeeping: it never calls the network and never
// returns errors. It guarantees at most one in-flight scan per tag.
type Gatekeeper struct {
	mu         sync.Mutex
	scans      map[string]scanRecord
	blocked    map[string]time.Time
	processing map[string]struct{}

	now func() time.Time // swapped out in tests
}

// New creates a Gatekeeper with empty caches
func New() *Gatekeeper {
	return &Gatekeeper{
		scans:      make(map[string]scanRecord),
		blocked:    make(map[string]time.Time),
		processing: make(map[string]struct{}),
		now:        time.Now,
	}
}

// CanProcessTag reports whether a scan for tagID may start. A tag is
// processable iff it is not in flight, not blocked, and any recent scan
// record is stale enough to re-trigger.
func (g *Gatekeeper) CanProcessTag(tagID string) bool {
	g.mu.Lock()
	defer g.mu.Unlock()

	if _, inFlight := g.processing[tagID]; inFlight {
		return false
	}
	if until, ok := g.blocked[tagID]; ok && g.now().Before(until) {
		return false
	}
	if rec, ok := g.scans[tagID]; ok && g.now().Sub(rec.scannedAt) < ScanRecordTTL {
		return false
	}
	return true
}

// BeginProcessing atomically checks CanProcessTag and enters the tag
// into the processing queue. Returns false if the tag may not proceed.
func (g *Gatekeeper) BeginProcessing(tagID string) bool {
	g.mu.Lock()
	defer g.mu.Unlock()

	if _, inFlight := g.processing[tagID]; inFlight {
		return false
	}
	if until, ok := g.blocked[tagID]; ok && g.now().Before(until) {
		return false
	}
	if rec, ok := g.scans[tagID]; ok && g.now().Sub(rec.scannedAt) < ScanRecordTTL {
		return false
	}
	g.processing[tagID] = struct{}{}
	return true
}

// EndProcessing removes the tag from the processing queue. Callers must
// invoke this exactly once per BeginProcessing, regardless of outcome.
func (g *Gatekeeper) EndProcessing(tagID string) {
	g.mu.Lock()
	delete(g.processing, tagID)
	g.mu.Unlock()
}

// RecordTagScan stores the scan timestamp and, if available, the
// authoritative result so a held tag can be answered from cache.
func (g *Gatekeeper) RecordTagScan(tagID string, studentID int, result *models.ScanResult) {
	g.mu.Lock()
	g.scans[tagID] = scanRecord{scannedAt: g.now(), studentID: studentID, result: result}
	g.mu.Unlock()
}

// BlockTag prevents reprocessing of tagID until the cool-down elapses
func (g *Gatekeeper) BlockTag(tagID string, d time.Duration) {
	g.mu.Lock()
	g.blocked[tagID] = g.now().Add(d)
	g.mu.Unlock()
}

// IsTagBlocked reports whether tagID is still inside its cool-down
func (g *Gatekeeper) IsTagBlocked(tagID string) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	until, ok := g.blocked[tagID]
	return ok && g.now().Before(until)
}

// RecentResult returns the cached authoritative result for tagID if one
// was recorded within the record TTL. Used to replay feedback for a tag
// held against the reader without another network call.
func (g *Gatekeeper) RecentResult(tagID string) (*models.ScanResult, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	rec, ok := g.scans[tagID]
	if !ok || rec.result == nil || g.now().Sub(rec.scannedAt) >= ScanRecordTTL {
		return nil, false
	}
	return rec.result, true
}

// ClearOldTagScans purges scan records older than the TTL and blocked
// entries whose unblock time has passed. Entries for tags currently in
// the processing queue are kept.
func (g *Gatekeeper) ClearOldTagScans() {
	g.mu.Lock()
	defer g.mu.Unlock()

	now := g.now()
	for tag, rec := range g.scans {
		if _, inFlight := g.processing[tag]; inFlight {
			continue
		}
		if now.Sub(rec.scannedAt) >= ScanRecordTTL {
			delete(g.scans, tag)
		}
	}
	for tag, until := range g.blocked {
		if !now.Before(until) {
			delete(g.blocked, tag)
		}
	}
}

// StartCleanup runs ClearOldTagScans periodically until ctx is done
func (g *Gatekeeper) StartCleanup(ctx context.Context) {
	go func() {
		ticker := time.NewTicker(CleanupInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				g.ClearOldTagScans()
			}
		}
	}()
}
