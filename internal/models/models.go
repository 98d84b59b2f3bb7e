// Package models contains data structures for the application
package models

import (
	"time"
)

// Scan actions as reported by the backend. The server decides the
// actual action; the client always sends intended_action "checkin".
const (
	ActionCheckedIn               = "checked_in"
	ActionCheckedOut              = "checked_out"
	ActionTransferred             = "transferred"
	ActionCheckedOutDaily         = "checked_out_daily"
	ActionSupervisorAuthenticated = "supervisor_authenticated"
	ActionAlreadyIn               = "already_in"
	ActionError                   = "error"
)

// ScanEvent represents a raw tag read emitted by the scan source
type ScanEvent struct {
	TagID     string `json:"tag_id"`
	Timestamp int64  `json:"timestamp"`
	Platform  string `json:"platform"`
}

// ScanResult is the authoritative outcome of one scan as returned by
// the server. Immutable once received.
type ScanResult struct {
	StudentID    int    `json:"student_id,omitempty"`
	StaffID      int    `json:"staff_id,omitempty"`
	StudentName  string `json:"student_name"`
	Action       string `json:"action"`
	Message      string `json:"message,omitempty"`
	RoomName     string `json:"room_name,omitempty"`
	PreviousRoom string `json:"previous_room,omitempty"`
	Schulhof     bool   `json:"-"` // set locally when the outdoor destination was chosen
}

// Optimistic scan statuses
const (
	ScanPending    = "pending"
	ScanProcessing = "processing"
	ScanSuccess    = "success"
	ScanFailed     = "failed"
)

// OptimisticScan is a local, speculative UI entry created before the
// network call resolves. Never shared outside the scan processor.
type OptimisticScan struct {
	ID        string
	TagID     string
	Status    string
	Timestamp time.Time
}

// Room represents a room or activity area selectable as a destination
type Room struct {
	ID       int    `json:"id"`
	Name     string `json:"name"`
	Schulhof bool   `json:"is_schulhof"`
}

// ServiceStatus mirrors the scan source status endpoint
type ServiceStatus struct {
	IsRunning bool   `json:"is_running"`
	Platform  string `json:"platform,omitempty"`
	LastError string `json:"last_error,omitempty"`
}

// DailyCheckoutState tracks the end-of-day confirmation flow for one student
type DailyCheckoutState struct {
	TagID           string
	StudentName     string
	ShowingFarewell bool
}

// DestinationState tracks the where-to-next selection after a checkout
type DestinationState struct {
	TagID       string
	StudentName string
	StudentID   int
}

// ResolveState is the flattened view of session/flow state consumed by
// the modal resolver. The session builds it from its flow union, so at
// most one of the flow fields is set; the resolver's priority order is
// the tie-break if that ever fails to hold.
type ResolveState struct {
	CurrentScan        *ScanResult
	DailyCheckout      *DailyCheckoutState
	Destination        *DestinationState
	ShowFeedbackPrompt bool
	Rooms              []Room
}

// HistoryEntry is one line of the kiosk's bounded recent-scan history
type HistoryEntry struct {
	TagID       string
	StudentID   int
	StudentName string
	Action      string
	At          time.Time
}
