package gatekeeper

import (
	"testing"
	"time"

	"rfid-kiosk/internal/models"
)

// fakeClock lets tests move time forward without sleeping
type fakeClock struct {
	now time.Time
}

func (c *fakeClock) Now() time.Time          { return c.now }
func (c *fakeClock) Advance(d time.Duration) { c.now = c.now.Add(d) }

func newTestGatekeeper() (*Gatekeeper, *fakeClock) {
	g := New()
	clock := &fakeClock{now: time.Date(2026, 3, 2, 14, 0, 0, 0, time.UTC)}
	g.now = clock.Now
	return g, clock
}

func TestCannotProcessWhileInFlight(t *testing.T) {
	g, _ := newTestGatekeeper()

	if !g.BeginProcessing("04:D6:94:82:97:6A:80") {
		t.Fatal("BeginProcessing() = false for a fresh tag")
	}
	if g.CanProcessTag("04:D6:94:82:97:6A:80") {
		t.Error("CanProcessTag() = true while tag is in the processing queue")
	}
	if g.BeginProcessing("04:D6:94:82:97:6A:80") {
		t.Error("BeginProcessing() = true while tag is already in flight")
	}

	g.EndProcessing("04:D6:94:82:97:6A:80")
	if !g.CanProcessTag("04:D6:94:82:97:6A:80") {
		t.Error("CanProcessTag() = false after EndProcessing with no record or block")
	}
}

func TestBlockExpiresAtUnblockTime(t *testing.T) {
	g, clock := newTestGatekeeper()

	g.BlockTag("T1", 2*time.Second)
	if !g.IsTagBlocked("T1") {
		t.Fatal("IsTagBlocked() = false right after BlockTag")
	}
	if g.CanProcessTag("T1") {
		t.Error("CanProcessTag() = true for a blocked tag")
	}

	clock.Advance(2 * time.Second)
	if g.IsTagBlocked("T1") {
		t.Error("IsTagBlocked() = true at the unblock time")
	}
	if !g.CanProcessTag("T1") {
		t.Error("CanProcessTag() = false after the block elapsed")
	}
}

func TestRecentScanRecordSuppressesRetrigger(t *testing.T) {
	g, clock := newTestGatekeeper()

	g.RecordTagScan("T1", 7, &models.ScanResult{StudentID: 7, Action: models.ActionCheckedIn})
	if g.CanProcessTag("T1") {
		t.Error("CanProcessTag() = true immediately after a recorded scan")
	}

	clock.Advance(ScanRecordTTL)
	if !g.CanProcessTag("T1") {
		t.Error("CanProcessTag() = false after the scan record went stale")
	}
}

func TestRecentResultReplay(t *testing.T) {
	g, clock := newTestGatekeeper()

	res := &models.ScanResult{StudentID: 7, StudentName: "Max Mustermann", Action: models.ActionCheckedIn}
	g.RecordTagScan("T1", 7, res)

	got, ok := g.RecentResult("T1")
	if !ok || got != res {
		t.Fatalf("RecentResult() = %v, %v; want cached result", got, ok)
	}

	clock.Advance(ScanRecordTTL)
	if _, ok := g.RecentResult("T1"); ok {
		t.Error("RecentResult() = ok for a stale record")
	}

	if _, ok := g.RecentResult("unknown"); ok {
		t.Error("RecentResult() = ok for a tag never seen")
	}
}

func TestClearOldTagScans(t *testing.T) {
	g, clock := newTestGatekeeper()

	g.RecordTagScan("stale", 1, nil)
	g.BlockTag("expired", time.Second)
	clock.Advance(3 * time.Second)
	g.RecordTagScan("fresh", 2, nil)
	g.BlockTag("held", 10*time.Second)

	g.ClearOldTagScans()

	if _, ok := g.scans["stale"]; ok {
		t.Error("stale scan record survived cleanup")
	}
	if _, ok := g.scans["fresh"]; !ok {
		t.Error("fresh scan record was evicted")
	}
	if _, ok := g.blocked["expired"]; ok {
		t.Error("expired block survived cleanup")
	}
	if !g.IsTagBlocked("held") {
		t.Error("live block was evicted")
	}
}

func TestCleanupKeepsInFlightRecords(t *testing.T) {
	g, clock := newTestGatekeeper()

	g.BeginProcessing("T1")
	g.RecordTagScan("T1", 0, nil)
	clock.Advance(5 * time.Second)

	g.ClearOldTagScans()
	if _, ok := g.scans["T1"]; !ok {
		t.Error("scan record for an in-flight tag was evicted")
	}

	g.EndProcessing("T1")
	g.ClearOldTagScans()
	if _, ok := g.scans["T1"]; ok {
		t.Error("stale record survived cleanup once the tag left the queue")
	}
}
