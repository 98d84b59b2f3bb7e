// Package modal derives the single visible modal scene from session state
package modal

import (
	"fmt"
	"strings"

	"rfid-kiosk/internal/models"
)

// Modal variants. Exactly one is visible at a time.
const (
	VariantCheckIn       = "checkIn"
	VariantCheckOut      = "checkOut"
	VariantTransfer      = "transfer"
	VariantError         = "error"
	VariantInfo          = "info"
	VariantSupervisor    = "supervisor"
	VariantSchulhof      = "schulhof"
	VariantDailyCheckout = "dailyCheckout"
	VariantFarewell      = "farewell"
	VariantFeedback      = "feedbackPrompt"
	VariantDestination   = "destinationSelection"
)

// Semantic tones carried by each variant
const (
	ToneSuccess = "success"
	ToneInfo    = "info"
	ToneWarning = "warning"
	ToneError   = "error"
)

// Auto-close durations in milliseconds, per variant family
const (
	StandardCloseMs = 3000
	ErrorCloseMs    = 3000
	ConfirmCloseMs  = 7000
	FarewellCloseMs = 2000
)

// Destination action ids
const (
	DestinationRaumwechsel = "raumwechsel"
	DestinationSchulhof    = "schulhof"
)

// Feedback rating ids offered by the feedback prompt
var FeedbackRatings = []string{"gut", "geht_so", "nicht_gut"}

// Action is one button on a modal
type Action struct {
	ID     string
	Label  string
	Invoke func()
}

// Model is the derived modal configuration. It is replaced wholesale on
// every resolve and never mutated.
type Model struct {
	Variant      string
	Tone         string
	Title        string
	Body         string
	Actions      []Action
	AutoCloseMs  int
	ShowProgress bool
}

// Callbacks carries the user intents the presentation layer can send back
type Callbacks struct {
	OnFeedbackSubmit       func(rating string)
	OnDailyCheckoutConfirm func()
	OnDailyCheckoutDecline func()
	OnDestinationSelect    func(target string)
}

// Resolve maps the current scan/session state to exactly one modal
// configuration, or nil when nothing should be shown. It has no side
// effects and owns no timers; callers schedule display and dismissal.
func Resolve(st models.ResolveState, cb Callbacks) *Model {
	// Priority 1: feedback prompt inside a daily checkout
	if st.ShowFeedbackPrompt && st.DailyCheckout != nil {
		return feedbackModel(st.DailyCheckout, cb)
	}

	// Priority 2: daily checkout, either farewell or confirmation
	if st.DailyCheckout != nil {
		if st.DailyCheckout.ShowingFarewell {
			return farewellModel(st.DailyCheckout)
		}
		return dailyCheckoutModel(st.DailyCheckout, cb)
	}

	// Priority 3: destination selection after a checkout
	if st.Destination != nil && st.CurrentScan != nil && st.CurrentScan.Action == models.ActionCheckedOut {
		return destinationModel(st.Destination, st.Rooms, cb)
	}

	// Priority 4: standard result
	if st.CurrentScan == nil {
		return nil
	}
	return resultModel(st.CurrentScan)
}

func feedbackModel(dc *models.DailyCheckoutState, cb Callbacks) *Model {
	labels := map[string]string{
		"gut":       "😊 Gut",
		"geht_so":   "😐 Geht so",
		"nicht_gut": "😞 Nicht so gut",
	}
	actions := make([]Action, 0, len(FeedbackRatings))
	for _, rating := range FeedbackRatings {
		r := rating
		actions = append(actions, Action{
			ID:    r,
			Label: labels[r],
			Invoke: func() {
				if cb.OnFeedbackSubmit != nil {
					cb.OnFeedbackSubmit(r)
				}
			},
		})
	}
	return &Model{
		Variant:      VariantFeedback,
		Tone:         ToneInfo,
		Title:        fmt.Sprintf("Wie war dein Tag, %s?", firstName(dc.StudentName)),
		Actions:      actions,
		AutoCloseMs:  ConfirmCloseMs,
		ShowProgress: true,
	}
}

func farewellModel(dc *models.DailyCheckoutState) *Model {
	return &Model{
		Variant:      VariantFarewell,
		Tone:         ToneSuccess,
		Title:        fmt.Sprintf("Tschüss, %s!", firstName(dc.StudentName)),
		Body:         "Bis zum nächsten Mal!",
		AutoCloseMs:  FarewellCloseMs,
		ShowProgress: false,
	}
}

func dailyCheckoutModel(dc *models.DailyCheckoutState, cb Callbacks) *Model {
	return &Model{
		Variant: VariantDailyCheckout,
		Tone:    ToneWarning,
		Title:   fmt.Sprintf("Gehst du für heute nach Hause, %s?", firstName(dc.StudentName)),
		Actions: []Action{
			{ID: "confirm", Label: "Ja", Invoke: func() {
				if cb.OnDailyCheckoutConfirm != nil {
					cb.OnDailyCheckoutConfirm()
				}
			}},
			{ID: "decline", Label: "Nein", Invoke: func() {
				if cb.OnDailyCheckoutDecline != nil {
					cb.OnDailyCheckoutDecline()
				}
			}},
		},
		AutoCloseMs:  ConfirmCloseMs,
		ShowProgress: true,
	}
}

func destinationModel(dst *models.DestinationState, rooms []models.Room, cb Callbacks) *Model {
	actions := []Action{
		{ID: DestinationRaumwechsel, Label: "Raumwechsel", Invoke: func() {
			if cb.OnDestinationSelect != nil {
				cb.OnDestinationSelect(DestinationRaumwechsel)
			}
		}},
	}
	if hasSchulhof(rooms) {
		actions = append(actions, Action{ID: DestinationSchulhof, Label: "Schulhof", Invoke: func() {
			if cb.OnDestinationSelect != nil {
				cb.OnDestinationSelect(DestinationSchulhof)
			}
		}})
	}
	return &Model{
		Variant:      VariantDestination,
		Tone:         ToneInfo,
		Title:        fmt.Sprintf("Wohin gehst du, %s?", firstName(dst.StudentName)),
		Actions:      actions,
		AutoCloseMs:  ConfirmCloseMs,
		ShowProgress: true,
	}
}

func resultModel(res *models.ScanResult) *Model {
	switch {
	case res.Action == models.ActionError:
		return &Model{
			Variant:      VariantError,
			Tone:         ToneError,
			Title:        "Fehler",
			Body:         messageOr(res, "Der Scan konnte nicht verarbeitet werden."),
			AutoCloseMs:  ErrorCloseMs,
			ShowProgress: true,
		}
	case res.Action == models.ActionAlreadyIn:
		return &Model{
			Variant:      VariantInfo,
			Tone:         ToneInfo,
			Title:        "Hinweis",
			Body:         messageOr(res, "Du bist bereits angemeldet."),
			AutoCloseMs:  StandardCloseMs,
			ShowProgress: true,
		}
	case res.Action == models.ActionSupervisorAuthenticated:
		return &Model{
			Variant:      VariantSupervisor,
			Tone:         ToneSuccess,
			Title:        fmt.Sprintf("Angemeldet: %s", res.StudentName),
			Body:         res.Message,
			AutoCloseMs:  StandardCloseMs,
			ShowProgress: true,
		}
	case res.Schulhof:
		return &Model{
			Variant:      VariantSchulhof,
			Tone:         ToneSuccess,
			Title:        fmt.Sprintf("Viel Spaß auf dem Schulhof, %s!", firstName(res.StudentName)),
			AutoCloseMs:  StandardCloseMs,
			ShowProgress: true,
		}
	case res.Action == models.ActionCheckedIn:
		return &Model{
			Variant:      VariantCheckIn,
			Tone:         ToneSuccess,
			Title:        fmt.Sprintf("Hallo, %s!", res.StudentName),
			Body:         roomLine(res),
			AutoCloseMs:  StandardCloseMs,
			ShowProgress: true,
		}
	case res.Action == models.ActionCheckedOut || res.Action == models.ActionCheckedOutDaily:
		return &Model{
			Variant:      VariantCheckOut,
			Tone:         ToneSuccess,
			Title:        fmt.Sprintf("Tschüss, %s!", res.StudentName),
			AutoCloseMs:  StandardCloseMs,
			ShowProgress: true,
		}
	case res.Action == models.ActionTransferred:
		body := ""
		if res.PreviousRoom != "" && res.RoomName != "" {
			body = fmt.Sprintf("%s → %s", res.PreviousRoom, res.RoomName)
		} else if res.RoomName != "" {
			body = fmt.Sprintf("Neuer Raum: %s", res.RoomName)
		}
		return &Model{
			Variant:      VariantTransfer,
			Tone:         ToneSuccess,
			Title:        fmt.Sprintf("Raumwechsel, %s!", firstName(res.StudentName)),
			Body:         body,
			AutoCloseMs:  StandardCloseMs,
			ShowProgress: true,
		}
	default:
		// Unknown server action, surface as info rather than hiding it
		return &Model{
			Variant:      VariantInfo,
			Tone:         ToneInfo,
			Title:        "Hinweis",
			Body:         messageOr(res, res.Action),
			AutoCloseMs:  StandardCloseMs,
			ShowProgress: true,
		}
	}
}

func hasSchulhof(rooms []models.Room) bool {
	for _, r := range rooms {
		if r.Schulhof {
			return true
		}
	}
	return false
}

func roomLine(res *models.ScanResult) string {
	if res.RoomName == "" {
		return ""
	}
	return fmt.Sprintf("Du bist jetzt in: %s", res.RoomName)
}

func messageOr(res *models.ScanResult, fallback string) string {
	if res.Message != "" {
		return res.Message
	}
	return fallback
}

func firstName(full string) string {
	fields := strings.Fields(full)
	if len(fields) == 0 {
		return full
	}
	return fields[0]
}
