package httpapi

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/IbrahimKhdeir/farm-moitoring/internal/models"
)

// SettingsStore is the alert-settings surface the handler needs.
type SettingsStore interface {
	GetByDevice(ctx context.Context, deviceID int64) (*models.AlertSettings, error)
	Create(ctx context.Context, settings *models.AlertSettings) error
	Upsert(ctx context.Context, settings *models.AlertSettings) error
}

// AlertSettingsHandler serves per-device threshold configuration.
type AlertSettingsHandler struct {
	settings SettingsStore
	devices  DeviceAccess
	logger   *zap.Logger
}

// NewAlertSettingsHandler creates the handler.
func NewAlertSettingsHandler(settings SettingsStore, devices DeviceAccess, logger *zap.Logger) *AlertSettingsHandler {
	return &AlertSettingsHandler{
		settings: settings,
		devices:  devices,
		logger:   logger,
	}
}

func (h *AlertSettingsHandler) checkAccess(w http.ResponseWriter, r *http.Request, deviceID int64) bool {
	device, err := h.devices.GetAccessible(r.Context(), deviceID, userIDFrom(r))
	if err != nil {
		h.logger.Error("Failed to check device access", zap.Int64("device_id", deviceID), zap.Error(err))
		failure(w, http.StatusInternalServerError, "Failed to load device")
		return false
	}
	if device == nil {
		failure(w, http.StatusNotFound, "Device not found or access denied")
		return false
	}
	return true
}

// Get handles GET /api/alert-settings/{deviceId}. A device without a
// settings row gets defaults created on first read, so the dashboard
// always has something to edit.
func (h *AlertSettingsHandler) Get(w http.ResponseWriter, r *http.Request, deviceID int64) {
	if !h.checkAccess(w, r, deviceID) {
		return
	}

	settings, err := h.settings.GetByDevice(r.Context(), deviceID)
	if err != nil {
		h.logger.Error("Failed to load alert settings", zap.Int64("device_id", deviceID), zap.Error(err))
		failure(w, http.StatusInternalServerError, "Failed to load alert settings")
		return
	}
	if settings == nil {
		settings = models.DefaultAlertSettings(deviceID)
		if err := h.settings.Create(r.Context(), settings); err != nil {
			h.logger.Error("Failed to create default alert settings", zap.Int64("device_id", deviceID), zap.Error(err))
			failure(w, http.StatusInternalServerError, "Failed to create alert settings")
			return
		}
	}

	success(w, settings, "Alert settings retrieved")
}

// Update handles PUT /api/alert-settings/{deviceId}. Fields absent from
// the body keep their current value; fields set to null clear the bound.
func (h *AlertSettingsHandler) Update(w http.ResponseWriter, r *http.Request, deviceID int64) {
	if !h.checkAccess(w, r, deviceID) {
		return
	}

	var raw map[string]json.RawMessage
	if err := readBodyJSON(r, 1<<20, &raw); err != nil {
		failure(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	settings, err := h.settings.GetByDevice(r.Context(), deviceID)
	if err != nil {
		h.logger.Error("Failed to load alert settings", zap.Int64("device_id", deviceID), zap.Error(err))
		failure(w, http.StatusInternalServerError, "Failed to load alert settings")
		return
	}
	if settings == nil {
		settings = models.DefaultAlertSettings(deviceID)
	}

	if err := applySettingsPatch(settings, raw); err != nil {
		failure(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := validateSettings(settings); err != nil {
		failure(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.settings.Upsert(r.Context(), settings); err != nil {
		h.logger.Error("Failed to update alert settings", zap.Int64("device_id", deviceID), zap.Error(err))
		failure(w, http.StatusInternalServerError, "Failed to update alert settings")
		return
	}

	success(w, settings, "Alert settings updated")
}

// applySettingsPatch merges the provided fields into the settings.
func applySettingsPatch(settings *models.AlertSettings, raw map[string]json.RawMessage) error {
	bounds := map[string]**float64{
		"minTemperature": &settings.MinTemperature,
		"maxTemperature": &settings.MaxTemperature,
		"minHumidity":    &settings.MinHumidity,
		"maxHumidity":    &settings.MaxHumidity,
		"minOxygen":      &settings.MinOxygen,
		"maxOxygen":      &settings.MaxOxygen,
	}
	for field, dst := range bounds {
		value, ok := raw[field]
		if !ok {
			continue
		}
		var v *float64
		if err := json.Unmarshal(value, &v); err != nil {
			return fmt.Errorf("%s must be a number or null", field)
		}
		*dst = v
	}

	if value, ok := raw["emailNotifications"]; ok {
		if err := json.Unmarshal(value, &settings.EmailNotifications); err != nil {
			return fmt.Errorf("emailNotifications must be a boolean")
		}
	}
	if value, ok := raw["notificationEmail"]; ok {
		var v *string
		if err := json.Unmarshal(value, &v); err != nil {
			return fmt.Errorf("notificationEmail must be a string or null")
		}
		settings.NotificationEmail = v
	}

	return nil
}

// validateSettings rejects configurations the evaluator relies on never
// seeing: inverted bounds, percentages outside 0..100, and enabled
// notifications without a destination address.
func validateSettings(s *models.AlertSettings) error {
	type pair struct {
		name     string
		min, max *float64
	}
	for _, p := range []pair{
		{"temperature", s.MinTemperature, s.MaxTemperature},
		{"humidity", s.MinHumidity, s.MaxHumidity},
		{"oxygen", s.MinOxygen, s.MaxOxygen},
	} {
		if p.min != nil && p.max != nil && *p.min >= *p.max {
			return fmt.Errorf("min %s must be below max %s", p.name, p.name)
		}
	}

	for _, metric := range []struct {
		name  string
		value *float64
	}{
		{"minHumidity", s.MinHumidity},
		{"maxHumidity", s.MaxHumidity},
		{"minOxygen", s.MinOxygen},
		{"maxOxygen", s.MaxOxygen},
	} {
		if metric.value != nil && (*metric.value < 0 || *metric.value > 100) {
			return fmt.Errorf("%s must be between 0 and 100", metric.name)
		}
	}

	if s.EmailNotifications {
		if s.NotificationEmail == nil || !strings.Contains(*s.NotificationEmail, "@") {
			return fmt.Errorf("notificationEmail is required when email notifications are enabled")
		}
	}

	return nil
}
