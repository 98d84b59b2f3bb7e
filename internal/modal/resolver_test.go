package modal

import (
	"testing"

	"rfid-kiosk/internal/models"
)

func TestFeedbackPromptDominates(t *testing.T) {
	// Priority 1 wins regardless of what the current scan contains
	scans := []*models.ScanResult{
		nil,
		{Action: models.ActionCheckedIn, StudentName: "Max Mustermann"},
		{Action: models.ActionError, Message: "kaputt"},
	}
	for _, scan := range scans {
		st := models.ResolveState{
			CurrentScan:        scan,
			DailyCheckout:      &models.DailyCheckoutState{TagID: "T1", StudentName: "Max Mustermann"},
			ShowFeedbackPrompt: true,
		}
		m := Resolve(st, Callbacks{})
		if m == nil || m.Variant != VariantFeedback {
			t.Fatalf("Resolve() variant = %v, want %q", m, VariantFeedback)
		}
		if len(m.Actions) != 3 {
			t.Errorf("feedback prompt has %d actions, want 3 ratings", len(m.Actions))
		}
		if m.AutoCloseMs != ConfirmCloseMs {
			t.Errorf("feedback AutoCloseMs = %d, want %d", m.AutoCloseMs, ConfirmCloseMs)
		}
	}
}

func TestFarewellHasNoActions(t *testing.T) {
	st := models.ResolveState{
		DailyCheckout: &models.DailyCheckoutState{
			TagID:           "T1",
			StudentName:     "Max Mustermann",
			ShowingFarewell: true,
		},
	}
	m := Resolve(st, Callbacks{})
	if m == nil || m.Variant != VariantFarewell {
		t.Fatalf("Resolve() = %v, want farewell variant", m)
	}
	if len(m.Actions) != 0 {
		t.Errorf("farewell modal has %d actions, want none", len(m.Actions))
	}
	if m.AutoCloseMs != FarewellCloseMs {
		t.Errorf("farewell AutoCloseMs = %d, want %d", m.AutoCloseMs, FarewellCloseMs)
	}
}

func TestDailyCheckoutConfirmation(t *testing.T) {
	confirmed, declined := false, false
	st := models.ResolveState{
		DailyCheckout: &models.DailyCheckoutState{TagID: "T1", StudentName: "Max Mustermann"},
	}
	m := Resolve(st, Callbacks{
		OnDailyCheckoutConfirm: func() { confirmed = true },
		OnDailyCheckoutDecline: func() { declined = true },
	})
	if m == nil || m.Variant != VariantDailyCheckout {
		t.Fatalf("Resolve() = %v, want dailyCheckout variant", m)
	}
	if len(m.Actions) != 2 {
		t.Fatalf("confirmation has %d actions, want Ja/Nein", len(m.Actions))
	}
	m.Actions[0].Invoke()
	m.Actions[1].Invoke()
	if !confirmed || !declined {
		t.Errorf("callbacks not wired: confirmed=%v declined=%v", confirmed, declined)
	}
}

func TestDestinationWithoutSchulhof(t *testing.T) {
	st := models.ResolveState{
		CurrentScan: &models.ScanResult{Action: models.ActionCheckedOut, StudentName: "Max Mustermann"},
		Destination: &models.DestinationState{TagID: "T2", StudentName: "Max Mustermann", StudentID: 7},
		Rooms:       []models.Room{{ID: 1, Name: "Bauraum"}, {ID: 2, Name: "Leseecke"}},
	}
	m := Resolve(st, Callbacks{})
	if m == nil || m.Variant != VariantDestination {
		t.Fatalf("Resolve() = %v, want destination variant", m)
	}
	if m.Title != "Wohin gehst du, Max?" {
		t.Errorf("title = %q, want %q", m.Title, "Wohin gehst du, Max?")
	}
	if len(m.Actions) != 1 || m.Actions[0].ID != DestinationRaumwechsel {
		t.Errorf("actions = %v, want exactly [raumwechsel]", actionIDs(m.Actions))
	}
}

func TestDestinationWithSchulhof(t *testing.T) {
	var selected string
	st := models.ResolveState{
		CurrentScan: &models.ScanResult{Action: models.ActionCheckedOut, StudentName: "Max Mustermann"},
		Destination: &models.DestinationState{TagID: "T2", StudentName: "Max Mustermann"},
		Rooms:       []models.Room{{ID: 1, Name: "Bauraum"}, {ID: 9, Name: "Schulhof", Schulhof: true}},
	}
	m := Resolve(st, Callbacks{OnDestinationSelect: func(target string) { selected = target }})
	if m == nil || len(m.Actions) != 2 {
		t.Fatalf("Resolve() actions = %v, want raumwechsel and schulhof", m)
	}
	m.Actions[1].Invoke()
	if selected != DestinationSchulhof {
		t.Errorf("selected = %q, want %q", selected, DestinationSchulhof)
	}
}

func TestStandardResultVariants(t *testing.T) {
	tests := []struct {
		name        string
		scan        *models.ScanResult
		wantVariant string
		wantTitle   string
		wantCloseMs int
	}{
		{
			name:        "check-in greets by full name",
			scan:        &models.ScanResult{Action: models.ActionCheckedIn, StudentName: "Max Mustermann"},
			wantVariant: VariantCheckIn,
			wantTitle:   "Hallo, Max Mustermann!",
			wantCloseMs: 3000,
		},
		{
			name:        "check-out",
			scan:        &models.ScanResult{Action: models.ActionCheckedOut, StudentName: "Erika Musterfrau"},
			wantVariant: VariantCheckOut,
			wantTitle:   "Tschüss, Erika Musterfrau!",
			wantCloseMs: 3000,
		},
		{
			name:        "transfer",
			scan:        &models.ScanResult{Action: models.ActionTransferred, StudentName: "Max Mustermann", RoomName: "Bauraum", PreviousRoom: "Leseecke"},
			wantVariant: VariantTransfer,
			wantTitle:   "Raumwechsel, Max!",
			wantCloseMs: 3000,
		},
		{
			name:        "supervisor",
			scan:        &models.ScanResult{Action: models.ActionSupervisorAuthenticated, StudentName: "Frau Schmidt"},
			wantVariant: VariantSupervisor,
			wantTitle:   "Angemeldet: Frau Schmidt",
			wantCloseMs: 3000,
		},
		{
			name:        "already checked in elsewhere is info, not error",
			scan:        &models.ScanResult{Action: models.ActionAlreadyIn, Message: "Student already has an active visit"},
			wantVariant: VariantInfo,
			wantTitle:   "Hinweis",
			wantCloseMs: 3000,
		},
		{
			name:        "error",
			scan:        &models.ScanResult{Action: models.ActionError, Message: "Netzwerkfehler"},
			wantVariant: VariantError,
			wantTitle:   "Fehler",
			wantCloseMs: 3000,
		},
		{
			name:        "schulhof flag wins over transfer mapping",
			scan:        &models.ScanResult{Action: models.ActionTransferred, StudentName: "Max Mustermann", Schulhof: true},
			wantVariant: VariantSchulhof,
			wantTitle:   "Viel Spaß auf dem Schulhof, Max!",
			wantCloseMs: 3000,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := Resolve(models.ResolveState{CurrentScan: tt.scan}, Callbacks{})
			if m == nil {
				t.Fatal("Resolve() = nil")
			}
			if m.Variant != tt.wantVariant {
				t.Errorf("variant = %q, want %q", m.Variant, tt.wantVariant)
			}
			if m.Title != tt.wantTitle {
				t.Errorf("title = %q, want %q", m.Title, tt.wantTitle)
			}
			if m.AutoCloseMs != tt.wantCloseMs {
				t.Errorf("AutoCloseMs = %d, want %d", m.AutoCloseMs, tt.wantCloseMs)
			}
		})
	}
}

func TestNoModalWithoutScanOrFlow(t *testing.T) {
	if m := Resolve(models.ResolveState{}, Callbacks{}); m != nil {
		t.Errorf("Resolve() = %v for idle state, want nil", m)
	}
}

func actionIDs(actions []Action) []string {
	ids := make([]string, len(actions))
	for i, a := range actions {
		ids[i] = a.ID
	}
	return ids
}
