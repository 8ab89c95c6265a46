package httpapi

import (
	"context"
	"net/http"

	"go.uber.org/zap"

	"github.com/IbrahimKhdeir/farm-moitoring/internal/models"
)

// SensorReader is the sensor surface the handler needs.
type SensorReader interface {
	ListByDevice(ctx context.Context, deviceID int64) ([]models.Sensor, error)
	ListReadings(ctx context.Context, sensorID int64, limit int) ([]models.Reading, error)
}

// DeviceAccess checks that a device is visible to a user.
type DeviceAccess interface {
	GetAccessible(ctx context.Context, deviceID, userID int64) (*models.Device, error)
}

// DeviceAlertLister lists a device's alerts.
type DeviceAlertLister interface {
	ListByDevice(ctx context.Context, deviceID int64, limit int) ([]models.Alert, error)
}

// SensorHandler serves sensor listings, reading history and per-device
// alerts.
type SensorHandler struct {
	sensors SensorReader
	devices DeviceAccess
	alerts  DeviceAlertLister
	logger  *zap.Logger
}

// NewSensorHandler creates the handler.
func NewSensorHandler(sensors SensorReader, devices DeviceAccess, alerts DeviceAlertLister, logger *zap.Logger) *SensorHandler {
	return &SensorHandler{
		sensors: sensors,
		devices: devices,
		alerts:  alerts,
		logger:  logger,
	}
}

// checkAccess loads the device when the caller may see it. It writes the
// error response itself and returns false when access is denied.
func (h *SensorHandler) checkAccess(w http.ResponseWriter, r *http.Request, deviceID int64) bool {
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

// ListByDevice handles GET /api/sensors/device/{deviceId}.
func (h *SensorHandler) ListByDevice(w http.ResponseWriter, r *http.Request, deviceID int64) {
	if !h.checkAccess(w, r, deviceID) {
		return
	}

	sensors, err := h.sensors.ListByDevice(r.Context(), deviceID)
	if err != nil {
		h.logger.Error("Failed to list sensors", zap.Int64("device_id", deviceID), zap.Error(err))
		failure(w, http.StatusInternalServerError, "Failed to list sensors")
		return
	}
	if sensors == nil {
		sensors = []models.Sensor{}
	}

	success(w, sensors, "")
}

// Readings handles GET /api/sensors/{sensorId}/readings?limit=N.
func (h *SensorHandler) Readings(w http.ResponseWriter, r *http.Request, sensorID int64) {
	limit := parseInt(r.URL.Query().Get("limit"), 100)

	readings, err := h.sensors.ListReadings(r.Context(), sensorID, limit)
	if err != nil {
		h.logger.Error("Failed to list readings", zap.Int64("sensor_id", sensorID), zap.Error(err))
		failure(w, http.StatusInternalServerError, "Failed to list readings")
		return
	}
	if readings == nil {
		readings = []models.Reading{}
	}

	success(w, readings, "")
}

// DeviceAlerts handles GET /api/sensors/device/{deviceId}/alerts?limit=N.
func (h *SensorHandler) DeviceAlerts(w http.ResponseWriter, r *http.Request, deviceID int64) {
	if !h.checkAccess(w, r, deviceID) {
		return
	}

	limit := parseInt(r.URL.Query().Get("limit"), 100)
	alerts, err := h.alerts.ListByDevice(r.Context(), deviceID, limit)
	if err != nil {
		h.logger.Error("Failed to list device alerts", zap.Int64("device_id", deviceID), zap.Error(err))
		failure(w, http.StatusInternalServerError, "Failed to list alerts")
		return
	}
	if alerts == nil {
		alerts = []models.Alert{}
	}

	success(w, alerts, "")
}
