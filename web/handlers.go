package web

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/google/uuid"

	"conftrail/archive"
	"conftrail/database"
	"conftrail/gitsync"
)

// Response types for JSON serialization

type DeviceResponse struct {
	ID              string  `json:"id"`
	Name            string  `json:"name"`
	IPAddress       string  `json:"ip_address,omitempty"`
	Subtype         string  `json:"subtype,omitempty"`
	Longitude       float64 `json:"longitude"`
	Latitude        float64 `json:"latitude"`
	CurrentConfigAt *string `json:"current_config_at,omitempty"`
}

type ConfigurationListResponse struct {
	Timestamps []string `json:"timestamps"`
	Current    *string  `json:"current,omitempty"`
}

type ConfigurationResponse struct {
	Timestamp string `json:"timestamp"`
	Config    string `json:"config"`
}

// Helper functions

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

func deviceResponse(device database.DeviceRecord) DeviceResponse {
	resp := DeviceResponse{
		ID:        device.DeviceID.String(),
		Name:      device.Name,
		IPAddress: device.IPAddress,
		Subtype:   device.Subtype,
		Longitude: device.Longitude,
		Latitude:  device.Latitude,
	}
	if device.CurrentConfigAt != nil {
		ts := device.CurrentConfigAt.String()
		resp.CurrentConfigAt = &ts
	}
	return resp
}

func (s *Server) deviceID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	deviceID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid device ID")
		return uuid.Nil, false
	}
	return deviceID, true
}

// Handlers

func (s *Server) handleListDevices(w http.ResponseWriter, r *http.Request) {
	devices, err := s.store.ListDevices(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list devices")
		return
	}
	resp := make([]DeviceResponse, 0, len(devices))
	for _, device := range devices {
		resp = append(resp, deviceResponse(device))
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleGetDevice(w http.ResponseWriter, r *http.Request) {
	deviceID, ok := s.deviceID(w, r)
	if !ok {
		return
	}
	device, err := s.store.GetDevice(r.Context(), deviceID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to get device")
		return
	}
	if device == nil {
		writeError(w, http.StatusNotFound, "Device not found")
		return
	}
	writeJSON(w, http.StatusOK, deviceResponse(*device))
}

func (s *Server) handleListConfigurations(w http.ResponseWriter, r *http.Request) {
	deviceID, ok := s.deviceID(w, r)
	if !ok {
		return
	}
	timestamps, err := s.store.SnapshotTimestamps(r.Context(), deviceID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list configurations")
		return
	}
	resp := ConfigurationListResponse{Timestamps: make([]string, 0, len(timestamps))}
	for _, ts := range timestamps {
		resp.Timestamps = append(resp.Timestamps, ts.String())
	}
	current, err := s.store.CurrentSnapshot(r.Context(), deviceID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to get current configuration")
		return
	}
	if current != nil {
		ts := current.RecordedAt.String()
		resp.Current = &ts
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleGetConfiguration(w http.ResponseWriter, r *http.Request) {
	deviceID, ok := s.deviceID(w, r)
	if !ok {
		return
	}
	ts, err := archive.ParseTimestamp(r.PathValue("timestamp"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid timestamp: "+err.Error())
		return
	}
	config, err := s.store.Snapshot(r.Context(), deviceID, ts)
	if errors.Is(err, archive.ErrSnapshotNotFound) {
		writeError(w, http.StatusNotFound, "No such version")
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to get configuration")
		return
	}
	writeJSON(w, http.StatusOK, ConfigurationResponse{Timestamp: ts.String(), Config: config})
}

func (s *Server) handleClearConfigurations(w http.ResponseWriter, r *http.Request) {
	deviceID, ok := s.deviceID(w, r)
	if !ok {
		return
	}
	if err := s.store.ClearConfigurations(r.Context(), deviceID); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to clear configurations")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "cleared"})
}

func (s *Server) handleDiff(w http.ResponseWriter, r *http.Request) {
	deviceID, ok := s.deviceID(w, r)
	if !ok {
		return
	}
	q := r.URL.Query()
	v1, err := archive.ParseTimestamp(q.Get("v1"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid v1 timestamp: "+err.Error())
		return
	}
	v2, err := archive.ParseTimestamp(q.Get("v2"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid v2 timestamp: "+err.Error())
		return
	}
	result, err := s.engine.Diff(r.Context(), deviceID, v1, v2)
	if errors.Is(err, archive.ErrSnapshotNotFound) {
		writeError(w, http.StatusNotFound, "No such version")
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to compute diff")
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleSync(w http.ResponseWriter, r *http.Request) {
	if s.syncer == nil {
		writeError(w, http.StatusServiceUnavailable, "Synchronization not configured")
		return
	}
	err := s.syncer.Sync(r.Context())
	if errors.Is(err, gitsync.ErrSyncInProgress) {
		writeError(w, http.StatusConflict, "Synchronization already in progress")
		return
	}
	if err != nil {
		writeError(w, http.StatusBadGateway, "Synchronization failed: "+err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "synchronized"})
}
