package scanner

import (
	"log"
	"math/rand"
	"sync"
	"time"

	"rfid-kiosk/internal/models"
)

// DefaultMockTags are hardware-format UIDs used when no pool is configured
var DefaultMockTags = []string{
	"04:D6:94:82:97:6A:80",
	"04:A7:B3:C2:D1:E0:F5",
	"04:12:34:56:78:9A:BC",
	"04:FE:DC:BA:98:76:54",
	"04:11:22:33:44:55:66",
}

// MockSource emits a random tag from a configurable pool every 3-5s.
// All handles live on the instance so independent sources never
// interfere with each other.
type MockSource struct {
	mu       sync.Mutex
	pool     []string
	running  bool
	stopCh   chan struct{}
	events   chan models.ScanEvent
	minDelay time.Duration
	maxDelay time.Duration
}

// NewMockSource creates a generator over the given tag pool. An empty
// pool falls back to DefaultMockTags.
func NewMockSource(pool []string) *MockSource {
	if len(pool) == 0 {
		pool = DefaultMockTags
	}
	return &MockSource{
		pool:     pool,
		events:   make(chan models.ScanEvent, 8),
		minDelay: 3 * time.Second,
		maxDelay: 5 * time.Second,
	}
}

func (m *MockSource) Start() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.running {
		return nil
	}
	m.running = true
	m.stopCh = make(chan struct{})

	go m.emitLoop(m.stopCh)
	log.Println("🔍 Mock scan source started")
	return nil
}

func (m *MockSource) emitLoop(stopCh chan struct{}) {
	for {
		delay := m.minDelay + time.Duration(rand.Int63n(int64(m.maxDelay-m.minDelay)+1))
		timer := time.NewTimer(delay)

		select {
		case <-stopCh:
			timer.Stop()
			return
		case <-timer.C:
		}

		ev := models.ScanEvent{
			TagID:     m.pool[rand.Intn(len(m.pool))],
			Timestamp: time.Now().Unix(),
			Platform:  "mock",
		}
		select {
		case m.events <- ev:
			log.Printf("📱 Mock tag emitted: %s", ev.TagID)
		case <-stopCh:
			return
		default:
			// Nobody is draining events, drop rather than block
		}
	}
}

func (m *MockSource) Stop() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.running {
		return nil
	}
	m.running = false
	close(m.stopCh)
	m.stopCh = nil
	log.Println("🔍 Mock scan source stopped")
	return nil
}

func (m *MockSource) IsRunning() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.running
}

func (m *MockSource) Events() <-chan models.ScanEvent {
	return m.events
}

var _ Source = (*MockSource)(nil)
