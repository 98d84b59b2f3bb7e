// Package repository defines interfaces for the attendance backend
package repository

import (
	"context"

	"rfid-kiosk/internal/models"
)

// ScanAPI is the remote attendance API the kiosk talks to. The server
// is the single source of truth for what a scan means; the client never
// pre-decides check-in versus check-out.
type ScanAPI interface {
	// ProcessScan submits one logical scan and returns the authoritative result
	ProcessScan(ctx context.Context, tagID, intendedAction string, roomID int) (*models.ScanResult, error)
	// UpdateSessionActivity touches the session to reset its idle timeout
	UpdateSessionActivity(ctx context.Context) error
	// UpdateSessionSupervisors syncs the active supervisor list
	UpdateSessionSupervisors(ctx context.Context, sessionID int, supervisorIDs []int) error
	// GetServiceStatus queries the scan source's running flag
	GetServiceStatus(ctx context.Context) (*models.ServiceStatus, error)
}
