// Package handlers provides HTTP handlers for the kiosk diagnostics API
package handlers

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"time"

	"rfid-kiosk/internal/models"
	"rfid-kiosk/internal/scanner"
	"rfid-kiosk/internal/services"
)

// ScanInjector accepts raw scan events, normally the scan processor
type ScanInjector interface {
	HandleScanEvent(ev models.ScanEvent)
}

var _ ScanInjector = (*services.ScanProcessor)(nil)

// StatusAPI reports the backend's view of the scan service
type StatusAPI interface {
	GetServiceStatus(ctx context.Context) (*models.ServiceStatus, error)
}

// ScanHandler exposes simulate-scan and status endpoints for
// development and kiosk diagnostics.
type ScanHandler struct {
	injector   ScanInjector
	processor  *services.ScanProcessor
	controller *scanner.Controller
	statusAPI  StatusAPI
}

// NewScanHandler creates a new scan handler. statusAPI may be nil when
// no backend is reachable.
func NewScanHandler(injector ScanInjector, processor *services.ScanProcessor, controller *scanner.Controller, statusAPI StatusAPI) *ScanHandler {
	return &ScanHandler{injector: injector, processor: processor, controller: controller, statusAPI: statusAPI}
}

// HandleSimulateScan injects a scan event as if the hardware emitted it
func (h *ScanHandler) HandleSimulateScan(w http.ResponseWriter, r *http.Request) {
	var ev models.ScanEvent
	if err := json.NewDecoder(r.Body).Decode(&ev); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if ev.TagID == "" {
		http.Error(w, "tag_id is required", http.StatusBadRequest)
		return
	}
	if ev.Timestamp == 0 {
		ev.Timestamp = time.Now().Unix()
	}
	if ev.Platform == "" {
		ev.Platform = "simulated"
	}

	log.Printf("[Simulate] Injecting scan event: %s", ev.TagID)
	go h.injector.HandleScanEvent(ev)

	w.WriteHeader(http.StatusAccepted)
	w.Write([]byte("OK"))
}

// HandleStatus reports controller state and the currently resolved modal
func (h *ScanHandler) HandleStatus(w http.ResponseWriter, r *http.Request) {
	lastError, errorCount := h.controller.LastError()

	status := map[string]interface{}{
		"state":       string(h.controller.State()),
		"is_scanning": h.controller.IsScanning(),
		"last_error":  lastError,
		"error_count": errorCount,
		"optimistic":  h.processor.OptimisticCount(),
	}
	if m := h.processor.ResolveModal(); m != nil {
		status["modal"] = map[string]interface{}{
			"variant":       m.Variant,
			"tone":          m.Tone,
			"title":         m.Title,
			"body":          m.Body,
			"actions":       len(m.Actions),
			"auto_close_ms": m.AutoCloseMs,
		}
	}

	// Cross-check with the backend's view, best effort
	if h.statusAPI != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if st, err := h.statusAPI.GetServiceStatus(ctx); err == nil {
			status["backend"] = map[string]interface{}{
				"is_running": st.IsRunning,
				"platform":   st.Platform,
			}
		} else {
			log.Printf("Warning: backend status query failed: %v", err)
		}
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(status)
}

// HandleHealth is the liveness probe
func (h *ScanHandler) HandleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("OK"))
}
