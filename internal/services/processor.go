// Package services implements business logic for the application
package services

import (
	"context"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"rfid-kiosk/internal/countdown"
	"rfid-kiosk/internal/gatekeeper"
	"rfid-kiosk/internal/modal"
	"rfid-kiosk/internal/models"
	"rfid-kiosk/internal/repository"
	"rfid-kiosk/internal/session"
)

// Display windows. The server owns the scan semantics, these only
// control how long the result stays on screen.
const (
	StandardDisplayWindow = 3 * time.Second
	ErrorDisplayWindow    = 3 * time.Second
	ConfirmDisplayWindow  = 7 * time.Second
	FarewellDisplayWindow = 2 * time.Second
)

// Notifier defines the interface for ops notifications
type Notifier interface {
	SendNotification(message string)
}

// Navigator abstracts the page transitions owned by the presentation layer
type Navigator interface {
	GoToLogin()
	GoToDashboard()
}

type noopNotifier struct{}

func (noopNotifier) SendNotification(string) {}

type noopNavigator struct{}

func (noopNavigator) GoToLogin()     {}
func (noopNavigator) GoToDashboard() {}

// ScanProcessor orchestrates the full lifecycle of one scan: gatekeeper
// admission, the single network call, result branching, session
// bookkeeping and modal hide scheduling.
type ScanProcessor struct {
	api       repository.ScanAPI
	session   *session.Session
	gate      *gatekeeper.Gatekeeper
	notifier  Notifier
	navigator Navigator
	hide      *countdown.Coordinator

	mu            sync.Mutex
	optimistic    map[string]*models.OptimisticScan
	currentOptID  string
	pendingNav    string // "", "login" or "dashboard", consumed on dismiss
	onModalClosed func()
}

// NewScanProcessor creates a processor. notifier, navigator and
// onModalClosed may be nil.
func NewScanProcessor(
	api repository.ScanAPI,
	sess *session.Session,
	gate *gatekeeper.Gatekeeper,
	notifier Notifier,
	navigator Navigator,
	onModalClosed func(),
) *ScanProcessor {
	if notifier == nil {
		notifier = noopNotifier{}
	}
	if navigator == nil {
		navigator = noopNavigator{}
	}
	p := &ScanProcessor{
		api:           api,
		session:       sess,
		gate:          gate,
		notifier:      notifier,
		navigator:     navigator,
		optimistic:    make(map[string]*models.OptimisticScan),
		onModalClosed: onModalClosed,
	}
	p.hide = countdown.New(p.onHideTimeout)
	return p
}

// HandleScanEvent is the entry point for raw reads from the scan source
func (p *ScanProcessor) HandleScanEvent(ev models.ScanEvent) {
	p.ProcessScan(context.Background(), ev.TagID)
}

// ProcessScan runs one logical scan. Overlapping calls for the same tag
// are dropped by the gatekeeper; a tag held against the reader replays
// its cached result instead of hitting the network again.
func (p *ScanProcessor) ProcessScan(ctx context.Context, tagID string) {
	_, roomID, ok := p.session.Context()
	if !ok {
		log.Printf("⚠️ Scan %s rejected: no authenticated staff or room selected", tagID)
		p.showSystemError("Keine Anmeldung oder kein Raum ausgewählt. Bitte neu anmelden.", "login")
		return
	}

	// Fast path: an already-active supervisor badge needs no network
	if p.session.IsSupervisorTag(tagID) {
		log.Printf("👤 Supervisor tag %s recognized, redirecting", tagID)
		p.session.SetCurrentScan(&models.ScanResult{
			Action:  models.ActionSupervisorAuthenticated,
			Message: "Scan erkannt, Weiterleitung...",
		})
		p.setPendingNav("dashboard")
		p.hide.Activate(StandardDisplayWindow, "supervisor-"+uuid.NewString())
		return
	}

	if !p.gate.BeginProcessing(tagID) {
		// Tag is in flight, blocked or freshly seen. Replay the cached
		// result on every physical tap so the student still gets
		// feedback, but never re-send the network call. While a
		// question modal is up (destination, daily checkout, feedback)
		// the duplicate read is dropped instead, so the burst of raw
		// events from a held tag cannot dismiss the question.
		switch p.session.Mode() {
		case session.FlowIdle, session.FlowStandard:
			if res, ok := p.gate.RecentResult(tagID); ok {
				p.session.SetCurrentScan(res)
				p.hide.Activate(StandardDisplayWindow, "replay-"+uuid.NewString())
			}
		}
		return
	}
	defer p.gate.EndProcessing(tagID)

	// Record the raw timestamp before the call so bursty duplicates are
	// suppressed even if the request runs long. The record carries the
	// last student known for this tag; the server's answer overwrites it.
	lastKnown, _ := p.session.StudentForTag(tagID)
	p.gate.RecordTagScan(tagID, lastKnown, nil)

	opt := p.createOptimistic(tagID)
	p.setOptimisticStatus(opt.ID, models.ScanProcessing)

	res, err := p.api.ProcessScan(ctx, tagID, "checkin", roomID)
	if err != nil {
		p.setOptimisticStatus(opt.ID, models.ScanFailed)
		p.handleScanError(tagID, err)
		return
	}

	p.setOptimisticStatus(opt.ID, models.ScanSuccess)
	p.gate.RecordTagScan(tagID, res.StudentID, res)
	p.gate.BlockTag(tagID, gatekeeper.DefaultBlockDuration)

	if res.Action == models.ActionSupervisorAuthenticated {
		p.handleSupervisorResult(tagID, res)
		return
	}
	p.handleStudentResult(tagID, res)
}

func (p *ScanProcessor) handleSupervisorResult(tagID string, res *models.ScanResult) {
	p.session.AddSupervisor(tagID, res.StaffID)
	p.session.SetCurrentScan(res)
	p.hide.Activate(StandardDisplayWindow, "scan-"+p.currentOptimisticID())

	p.notifier.SendNotification("👤 Betreuer angemeldet: " + res.StudentName)

	// Best effort, failure is logged but never surfaced
	go func() {
		syncCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := p.api.UpdateSessionSupervisors(syncCtx, p.session.SessionID(), p.session.SupervisorIDs()); err != nil {
			log.Printf("Warning: failed to sync supervisors: %v", err)
		}
	}()
}

func (p *ScanProcessor) handleStudentResult(tagID string, res *models.ScanResult) {
	p.session.SetCurrentScan(res)
	if res.StudentID != 0 {
		p.session.RememberStudent(tagID, res)
	}

	switch res.Action {
	case models.ActionCheckedOut:
		p.session.BeginDestination(tagID, res.StudentName, res.StudentID)
		p.hide.Activate(ConfirmDisplayWindow, "destination-"+tagID)
	case models.ActionCheckedOutDaily:
		p.session.BeginDailyCheckout(tagID, res.StudentName)
		p.hide.Activate(ConfirmDisplayWindow, "daily-"+tagID)
	default:
		p.hide.Activate(StandardDisplayWindow, "scan-"+p.currentOptimisticID())
	}

	// Touch the session so the kiosk's idle timeout resets. Best effort.
	go func() {
		touchCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := p.api.UpdateSessionActivity(touchCtx); err != nil {
			log.Printf("Warning: failed to update session activity: %v", err)
		}
	}()
}

func (p *ScanProcessor) handleScanError(tagID string, err error) {
	log.Printf("❌ Scan %s failed: %v", tagID, err)
	p.gate.BlockTag(tagID, gatekeeper.DefaultBlockDuration)

	var res *models.ScanResult
	if isAlreadyActive(err) {
		// Known server conflict, informational rather than alarming
		res = &models.ScanResult{
			Action:  models.ActionAlreadyIn,
			Message: "Du bist heute schon angemeldet.",
		}
	} else {
		res = &models.ScanResult{
			Action:  models.ActionError,
			Message: mapErrorMessage(err),
		}
	}
	p.gate.RecordTagScan(tagID, 0, res)
	p.session.SetCurrentScan(res)
	p.hide.Activate(ErrorDisplayWindow, "error-"+tagID)
}

// OnDailyCheckoutConfirm is the Ja answer to the end-of-day question
func (p *ScanProcessor) OnDailyCheckoutConfirm() {
	p.session.BeginFeedback()
	p.hide.Activate(ConfirmDisplayWindow, "feedback-"+uuid.NewString())
}

// OnDailyCheckoutDecline keeps the student checked in for the day
func (p *ScanProcessor) OnDailyCheckoutDecline() {
	p.dismiss()
}

// OnFeedbackSubmit records the day rating and moves on to the farewell
func (p *ScanProcessor) OnFeedbackSubmit(rating string) {
	dc := p.session.DailyCheckout()
	if dc == nil {
		return
	}
	log.Printf("📝 Feedback from %s: %s", dc.StudentName, rating)
	p.session.ShowFarewell()
	p.hide.Activate(FarewellDisplayWindow, "farewell-"+dc.TagID)
}

// OnDestinationSelect handles the where-to-next choice after a checkout
func (p *ScanProcessor) OnDestinationSelect(target string) {
	st := p.session.ResolveState()
	dst := st.Destination
	if dst == nil {
		return
	}

	switch target {
	case modal.DestinationSchulhof:
		room, ok := p.session.SchulhofRoom()
		if !ok {
			p.dismiss()
			return
		}
		go p.checkInToSchulhof(dst.TagID, room)
	default:
		// Room change: the student taps again at the destination kiosk
		p.dismiss()
	}
}

func (p *ScanProcessor) checkInToSchulhof(tagID string, room models.Room) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	res, err := p.api.ProcessScan(ctx, tagID, "checkin", room.ID)
	if err != nil {
		p.handleScanError(tagID, err)
		return
	}

	outdoor := *res
	outdoor.Schulhof = true
	p.session.SetCurrentScan(&outdoor)
	p.hide.Activate(StandardDisplayWindow, "schulhof-"+tagID)
}

// ResolveModal derives the currently visible modal, wiring the user
// intent callbacks back into this processor.
func (p *ScanProcessor) ResolveModal() *modal.Model {
	return modal.Resolve(p.session.ResolveState(), modal.Callbacks{
		OnFeedbackSubmit:       p.OnFeedbackSubmit,
		OnDailyCheckoutConfirm: p.OnDailyCheckoutConfirm,
		OnDailyCheckoutDecline: p.OnDailyCheckoutDecline,
		OnDestinationSelect:    p.OnDestinationSelect,
	})
}

// Hide exposes the dismiss coordinator for the presentation layer's
// progress rendering.
func (p *ScanProcessor) Hide() *countdown.Coordinator {
	return p.hide
}

// ShowServiceError surfaces a scan-source lifecycle failure as an error
// modal. Scanning is not blocked on it; the modal auto-dismisses.
func (p *ScanProcessor) ShowServiceError(message string) {
	p.session.SetCurrentScan(&models.ScanResult{
		Action:  models.ActionError,
		Message: message,
	})
	p.hide.Activate(ErrorDisplayWindow, "service-error-"+uuid.NewString())
}

func (p *ScanProcessor) showSystemError(message, navTarget string) {
	p.session.SetCurrentScan(&models.ScanResult{
		Action:  models.ActionError,
		Message: message,
	})
	p.setPendingNav(navTarget)
	p.hide.Activate(ErrorDisplayWindow, "system-error-"+uuid.NewString())
}

// onHideTimeout fires when the visible modal's dwell time elapses
func (p *ScanProcessor) onHideTimeout() {
	switch p.session.Mode() {
	case session.FlowFeedback:
		// Prompt ignored: skip the rating, still say goodbye
		p.session.ShowFarewell()
		p.hide.Activate(FarewellDisplayWindow, "farewell-timeout-"+uuid.NewString())
		return
	default:
		p.dismiss()
	}
}

func (p *ScanProcessor) dismiss() {
	p.hide.Deactivate()
	p.session.ClearScan()
	p.clearOptimistic()

	nav := p.takePendingNav()
	switch nav {
	case "login":
		p.navigator.GoToLogin()
	case "dashboard":
		p.navigator.GoToDashboard()
	}

	p.mu.Lock()
	closed := p.onModalClosed
	p.mu.Unlock()
	if closed != nil {
		closed()
	}
}

func (p *ScanProcessor) createOptimistic(tagID string) *models.OptimisticScan {
	opt := &models.OptimisticScan{
		ID:        uuid.NewString(),
		TagID:     tagID,
		Status:    models.ScanPending,
		Timestamp: time.Now(),
	}
	p.mu.Lock()
	p.optimistic[opt.ID] = opt
	p.currentOptID = opt.ID
	p.mu.Unlock()
	return opt
}

func (p *ScanProcessor) setOptimisticStatus(id, status string) {
	p.mu.Lock()
	if opt, ok := p.optimistic[id]; ok {
		opt.Status = status
	}
	p.mu.Unlock()
}

func (p *ScanProcessor) clearOptimistic() {
	p.mu.Lock()
	for id, opt := range p.optimistic {
		if opt.Status == models.ScanSuccess || opt.Status == models.ScanFailed {
			delete(p.optimistic, id)
		}
	}
	p.currentOptID = ""
	p.mu.Unlock()
}

func (p *ScanProcessor) currentOptimisticID() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.currentOptID
}

// OptimisticCount reports how many speculative entries are alive,
// exposed for the diagnostics endpoint.
func (p *ScanProcessor) OptimisticCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.optimistic)
}

func (p *ScanProcessor) setPendingNav(target string) {
	p.mu.Lock()
	p.pendingNav = target
	p.mu.Unlock()
}

func (p *ScanProcessor) takePendingNav() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	nav := p.pendingNav
	p.pendingNav = ""
	return nav
}

func isAlreadyActive(err error) bool {
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "already has an active visit") ||
		strings.Contains(msg, "already active")
}

func mapErrorMessage(err error) string {
	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "authentication expired"):
		return "Anmeldung abgelaufen. Bitte neu anmelden."
	case strings.Contains(msg, "not authorized"):
		return "Keine Berechtigung für diesen Scan."
	case strings.Contains(msg, "unknown tag"):
		return "Unbekannter Chip. Bitte beim Personal melden."
	default:
		return "Der Scan konnte nicht verarbeitet werden. Bitte versuche es erneut."
	}
}
