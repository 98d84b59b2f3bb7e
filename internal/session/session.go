// Package session holds the shared kiosk state between scans
package session

import (
	"sync"
	"time"

	"rfid-kiosk/internal/models"
)

// FlowMode names the mutually exclusive modal flows. The session keeps
// exactly one mode active; the data for the non-active flows is nil by
// construction.
type FlowMode int

const (
	FlowIdle FlowMode = iota
	FlowStandard
	FlowDailyCheckout
	FlowDestination
	FlowFeedback
)

const historyLimit = 50

// Session is the shared state consumed by the resolver and mutated only
// through the scan processor and user-intent callbacks.
type Session struct {
	mu sync.Mutex

	// Kiosk context, set at login/room selection
	authToken string
	staffID   int
	sessionID int
	roomID    int
	roomName  string
	rooms     []models.Room

	mode          FlowMode
	currentScan   *models.ScanResult
	dailyCheckout *models.DailyCheckoutState
	destination   *models.DestinationState

	activeSupervisors map[string]int // tagID -> staffID
	tagStudents       map[string]int // tagID -> studentID
	history           []models.HistoryEntry
}

// New creates an empty session
func New() *Session {
	return &Session{
		activeSupervisors: make(map[string]int),
		tagStudents:       make(map[string]int),
	}
}

// SetContext stores the authenticated staff member and selected room
func (s *Session) SetContext(authToken string, staffID, sessionID, roomID int, roomName string, rooms []models.Room) {
	s.mu.Lock()
	s.authToken = authToken
	s.staffID = staffID
	s.sessionID = sessionID
	s.roomID = roomID
	s.roomName = roomName
	s.rooms = rooms
	s.mu.Unlock()
}

// Context returns the auth token and selected room. ok is false when
// either is missing, meaning a scan must not reach the network.
func (s *Session) Context() (authToken string, roomID int, ok bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.authToken, s.roomID, s.authToken != "" && s.roomID != 0
}

// AuthToken returns the current bearer token, possibly empty
func (s *Session) AuthToken() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.authToken
}

// SessionID returns the backend session identifier
func (s *Session) SessionID() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sessionID
}

// Rooms returns the room list for the current activity
func (s *Session) Rooms() []models.Room {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rooms
}

// SchulhofRoom returns the outdoor-area room if one is configured
func (s *Session) SchulhofRoom() (models.Room, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, r := range s.rooms {
		if r.Schulhof {
			return r, true
		}
	}
	return models.Room{}, false
}

// SetCurrentScan publishes the authoritative result and enters the
// standard flow, clearing any other flow data.
func (s *Session) SetCurrentScan(res *models.ScanResult) {
	s.mu.Lock()
	s.currentScan = res
	s.mode = FlowStandard
	s.dailyCheckout = nil
	s.destination = nil
	s.mu.Unlock()
}

// CurrentScan returns the published result, nil when idle
func (s *Session) CurrentScan() *models.ScanResult {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.currentScan
}

// ClearScan drops the current scan and returns the session to idle
func (s *Session) ClearScan() {
	s.mu.Lock()
	s.currentScan = nil
	s.mode = FlowIdle
	s.dailyCheckout = nil
	s.destination = nil
	s.mu.Unlock()
}

// BeginDailyCheckout enters the end-of-day confirmation flow
func (s *Session) BeginDailyCheckout(tagID, studentName string) {
	s.mu.Lock()
	s.mode = FlowDailyCheckout
	s.dailyCheckout = &models.DailyCheckoutState{TagID: tagID, StudentName: studentName}
	s.destination = nil
	s.mu.Unlock()
}

// BeginFeedback switches the active daily checkout to the feedback
// prompt. No-op when no daily checkout is in progress.
func (s *Session) BeginFeedback() {
	s.mu.Lock()
	if s.dailyCheckout != nil {
		s.mode = FlowFeedback
	}
	s.mu.Unlock()
}

// ShowFarewell switches the daily checkout to its farewell scene
func (s *Session) ShowFarewell() {
	s.mu.Lock()
	if s.dailyCheckout != nil {
		s.mode = FlowDailyCheckout
		s.dailyCheckout.ShowingFarewell = true
	}
	s.mu.Unlock()
}

// BeginDestination enters the where-to-next selection after a checkout
func (s *Session) BeginDestination(tagID, studentName string, studentID int) {
	s.mu.Lock()
	s.mode = FlowDestination
	s.destination = &models.DestinationState{TagID: tagID, StudentName: studentName, StudentID: studentID}
	s.dailyCheckout = nil
	s.mu.Unlock()
}

// DailyCheckout returns the active daily-checkout data, nil outside the flow
func (s *Session) DailyCheckout() *models.DailyCheckoutState {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.mode != FlowDailyCheckout && s.mode != FlowFeedback {
		return nil
	}
	return s.dailyCheckout
}

// Mode returns the active flow mode
func (s *Session) Mode() FlowMode {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.mode
}

// AddSupervisor registers a staff badge as active for this session
func (s *Session) AddSupervisor(tagID string, staffID int) {
	s.mu.Lock()
	s.activeSupervisors[tagID] = staffID
	s.mu.Unlock()
}

// IsSupervisorTag reports whether tagID belongs to an active supervisor
func (s *Session) IsSupervisorTag(tagID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.activeSupervisors[tagID]
	return ok
}

// SupervisorIDs returns the staff ids of all active supervisors
func (s *Session) SupervisorIDs() []int {
	s.mu.Lock()
	defer s.mu.Unlock()
	ids := make([]int, 0, len(s.activeSupervisors))
	for _, id := range s.activeSupervisors {
		ids = append(ids, id)
	}
	return ids
}

// RememberStudent updates the tag-to-student mapping and appends to the
// bounded recent-scan history.
func (s *Session) RememberStudent(tagID string, res *models.ScanResult) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.tagStudents[tagID] = res.StudentID
	s.history = append(s.history, models.HistoryEntry{
		TagID:       tagID,
		StudentID:   res.StudentID,
		StudentName: res.StudentName,
		Action:      res.Action,
		At:          time.Now(),
	})
	if len(s.history) > historyLimit {
		s.history = s.history[len(s.history)-historyLimit:]
	}
}

// StudentForTag returns the last known student id for a tag
func (s *Session) StudentForTag(tagID string) (int, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	id, ok := s.tagStudents[tagID]
	return id, ok
}

// History returns a copy of the recent-scan history, newest last
func (s *Session) History() []models.HistoryEntry {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.HistoryEntry, len(s.history))
	copy(out, s.history)
	return out
}

// ResolveState flattens the flow union into the view the modal resolver
// consumes. Only the active flow's data is populated.
func (s *Session) ResolveState() models.ResolveState {
	s.mu.Lock()
	defer s.mu.Unlock()

	st := models.ResolveState{
		CurrentScan: s.currentScan,
		Rooms:       s.rooms,
	}
	switch s.mode {
	case FlowFeedback:
		st.DailyCheckout = s.dailyCheckout
		st.ShowFeedbackPrompt = true
	case FlowDailyCheckout:
		st.DailyCheckout = s.dailyCheckout
	case FlowDestination:
		st.Destination = s.destination
	}
	return st
}
