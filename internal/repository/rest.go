// Package repository provides the REST implementation of the attendance API
package repository

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
	"time"

	"rfid-kiosk/internal/models"
)

// RESTScanAPI implements ScanAPI against the attendance backend
type RESTScanAPI struct {
	baseURL    string
	deviceID   string
	authToken  func() string
	httpClient *http.Client
}

// NewRESTScanAPI creates the client. authToken is read per request so a
// token refresh at the login screen takes effect without rebuilding the
// client.
func NewRESTScanAPI(baseURL, deviceID string, authToken func() string) *RESTScanAPI {
	return &RESTScanAPI{
		baseURL:    strings.TrimRight(baseURL, "/"),
		deviceID:   deviceID,
		authToken:  authToken,
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
}

func (r *RESTScanAPI) addAuthHeader(req *http.Request) {
	if token := r.authToken(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
}

func (r *RESTScanAPI) ProcessScan(ctx context.Context, tagID, intendedAction string, roomID int) (*models.ScanResult, error) {
	payload := map[string]interface{}{
		"tag_id":          tagID,
		"intended_action": intendedAction,
		"room_id":         roomID,
		"terminal_id":     r.deviceID,
		"timestamp":       time.Now().Unix(),
	}

	body, _ := json.Marshal(payload)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.baseURL+"/api/rfid/scan", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	r.addAuthHeader(req)

	resp, err := r.httpClient.Do(req)
	if err != nil {
		log.Printf("❌ HTTP error processing scan %s: %v", tagID, err)
		return nil, err
	}
	defer resp.Body.Close()

	respBody, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusOK {
		return nil, apiError(resp.StatusCode, respBody)
	}

	var result models.ScanResult
	if err := json.Unmarshal(respBody, &result); err != nil {
		return nil, fmt.Errorf("failed to parse scan response: %w", err)
	}
	return &result, nil
}

func (r *RESTScanAPI) UpdateSessionActivity(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.baseURL+"/api/sessions/activity", nil)
	if err != nil {
		return err
	}
	r.addAuthHeader(req)

	resp, err := r.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusNoContent {
		return fmt.Errorf("failed to update session activity: %s", resp.Status)
	}
	return nil
}

func (r *RESTScanAPI) UpdateSessionSupervisors(ctx context.Context, sessionID int, supervisorIDs []int) error {
	payload := map[string]interface{}{
		"supervisor_ids": supervisorIDs,
	}
	body, _ := json.Marshal(payload)

	url := fmt.Sprintf("%s/api/sessions/%d/supervisors", r.baseURL, sessionID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPatch, url, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	r.addAuthHeader(req)

	resp, err := r.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusNoContent {
		respBody, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("failed to update supervisors: %s - %s", resp.Status, string(respBody))
	}
	return nil
}

func (r *RESTScanAPI) GetServiceStatus(ctx context.Context) (*models.ServiceStatus, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, r.baseURL+"/api/rfid/status", nil)
	if err != nil {
		return nil, err
	}
	r.addAuthHeader(req)

	resp, err := r.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("failed to get service status: %s", resp.Status)
	}

	var status models.ServiceStatus
	if err := json.NewDecoder(resp.Body).Decode(&status); err != nil {
		return nil, err
	}
	return &status, nil
}

// apiError maps backend failures to messages the processor can show.
// The body is preferred when it carries a message field.
func apiError(statusCode int, body []byte) error {
	var payload struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	_ = json.Unmarshal(body, &payload)
	msg := payload.Message
	if msg == "" {
		msg = payload.Error
	}
	if msg != "" {
		return fmt.Errorf("%s", msg)
	}

	switch statusCode {
	case http.StatusUnauthorized:
		return fmt.Errorf("authentication expired")
	case http.StatusForbidden:
		return fmt.Errorf("not authorized to scan tags")
	case http.StatusNotFound:
		return fmt.Errorf("unknown tag")
	default:
		return fmt.Errorf("server error: %d", statusCode)
	}
}

var _ ScanAPI = (*RESTScanAPI)(nil)
