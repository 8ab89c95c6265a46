package ingest

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/IbrahimKhdeir/farm-moitoring/internal/cache"
	"github.com/IbrahimKhdeir/farm-moitoring/internal/evaluator"
	"github.com/IbrahimKhdeir/farm-moitoring/internal/models"
	"github.com/IbrahimKhdeir/farm-moitoring/internal/notifier"
)

// DeviceFinder loads a device (with attached alert settings) by its
// external identifier. Returns (nil, nil) for unknown devices.
type DeviceFinder interface {
	GetByUUIDWithSettings(ctx context.Context, deviceUUID string) (*models.Device, error)
}

// SensorStore finds or lazily creates sensors and appends readings.
type SensorStore interface {
	FindOrCreate(ctx context.Context, deviceID int64, sensorType string) (*models.Sensor, error)
	CreateReading(ctx context.Context, reading *models.Reading) error
}

// AlertStore records threshold-violation alerts.
type AlertStore interface {
	Create(ctx context.Context, alert *models.Alert) error
	MarkEmailSent(ctx context.Context, alertID int64) error
}

// EventSink pushes realtime frames to dashboard clients.
type EventSink interface {
	Emit(event string, data interface{})
}

// EmailLimiter throttles alert e-mails per (device, sensor type).
type EmailLimiter interface {
	CanSend(deviceID int64, sensorType string) bool
	MinutesUntilNext(deviceID int64, sensorType string) int
	RecordSent(deviceID int64, sensorType string)
}

// LatestWriter caches each sensor's newest reading.
type LatestWriter interface {
	Update(ctx context.Context, reading *cache.LatestReading) error
}

// AlertWebhook forwards new alerts to an external endpoint.
type AlertWebhook interface {
	Enabled() bool
	Notify(alert models.Alert, device models.DeviceSummary, sensor models.SensorSummary) error
}

// Handler turns one parsed sensor message into persisted state,
// realtime events and notifications.
type Handler struct {
	devices DeviceFinder
	sensors SensorStore
	alerts  AlertStore
	events  EventSink
	latest  LatestWriter
	mailer  notifier.Mailer
	webhook AlertWebhook
	limiter EmailLimiter
	logger  *zap.Logger
}

// NewHandler wires the ingestion pipeline.
func NewHandler(
	devices DeviceFinder,
	sensors SensorStore,
	alerts AlertStore,
	events EventSink,
	latest LatestWriter,
	mailer notifier.Mailer,
	webhook AlertWebhook,
	limiter EmailLimiter,
	logger *zap.Logger,
) *Handler {
	return &Handler{
		devices: devices,
		sensors: sensors,
		alerts:  alerts,
		events:  events,
		latest:  latest,
		mailer:  mailer,
		webhook: webhook,
		limiter: limiter,
		logger:  logger,
	}
}

// HandleReading processes one reading end to end:
//  1. resolve the device; unknown devices are dropped without error
//  2. find or create the sensor row
//  3. persist the reading (NaN included, it marks a malformed payload)
//  4. broadcast the sensor-reading event and refresh the latest cache
//  5. evaluate thresholds and fan out alert/notifications on a violation
//
// Storage failures abort the pipeline; notification failures never do.
func (h *Handler) HandleReading(ctx context.Context, deviceUUID, sensorType string, value float64, ts time.Time) error {
	// 1. Resolve the device
	device, err := h.devices.GetByUUIDWithSettings(ctx, deviceUUID)
	if err != nil {
		return fmt.Errorf("failed to look up device: %w", err)
	}
	if device == nil {
		h.logger.Warn("Dropping reading from unregistered device",
			zap.String("device_uuid", deviceUUID),
		)
		return nil
	}

	// 2. Find or create the sensor
	sensor, err := h.sensors.FindOrCreate(ctx, device.ID, sensorType)
	if err != nil {
		return fmt.Errorf("failed to resolve sensor: %w", err)
	}

	// 3. Persist the reading
	reading := &models.Reading{
		SensorID:  sensor.ID,
		Value:     models.Value(value),
		CreatedAt: ts,
	}
	if err := h.sensors.CreateReading(ctx, reading); err != nil {
		return fmt.Errorf("failed to persist reading: %w", err)
	}

	// 4. Realtime event + latest cache
	h.events.Emit(models.EventSensorReading, models.SensorReadingEvent{
		DeviceUUID: deviceUUID,
		SensorType: sensorType,
		Value:      models.Value(value),
		Timestamp:  reading.CreatedAt,
	})

	if h.latest != nil {
		if err := h.latest.Update(ctx, &cache.LatestReading{
			DeviceUUID: deviceUUID,
			SensorType: sensorType,
			Value:      models.Value(value),
			Timestamp:  reading.CreatedAt,
		}); err != nil {
			h.logger.Error("Failed to update latest-reading cache",
				zap.String("device_uuid", deviceUUID),
				zap.Error(err),
			)
		}
	}

	// 5. Threshold evaluation
	v := evaluator.Evaluate(sensorType, value, device.AlertSettings)
	if v == nil {
		return nil
	}
	return h.handleViolation(ctx, device, sensor, value, v)
}

func (h *Handler) handleViolation(ctx context.Context, device *models.Device, sensor *models.Sensor, value float64, v *evaluator.Violation) error {
	alert := &models.Alert{
		DeviceID: device.ID,
		SensorID: sensor.ID,
		Level:    v.Level,
		Message:  v.Message,
	}
	if err := h.alerts.Create(ctx, alert); err != nil {
		return fmt.Errorf("failed to create alert: %w", err)
	}

	h.logger.Info("Threshold violation",
		zap.String("device_uuid", device.DeviceUUID),
		zap.String("sensor_type", sensor.Type),
		zap.Float64("value", value),
		zap.String("level", v.Level),
	)

	deviceSummary := models.DeviceSummary{
		ID:         device.ID,
		Name:       device.Name,
		DeviceUUID: device.DeviceUUID,
	}
	sensorSummary := models.SensorSummary{
		ID:   sensor.ID,
		Type: sensor.Type,
	}

	h.events.Emit(models.EventNewAlert, models.NewAlertEvent{
		Alert:  *alert,
		Device: deviceSummary,
		Sensor: sensorSummary,
	})

	if h.webhook != nil && h.webhook.Enabled() {
		if err := h.webhook.Notify(*alert, deviceSummary, sensorSummary); err != nil {
			h.logger.Error("Alert webhook failed",
				zap.Int64("alert_id", alert.ID),
				zap.Error(err),
			)
		}
	}

	h.sendAlertEmail(ctx, device, sensor, value, v, alert)
	return nil
}

// sendAlertEmail delivers at most one e-mail per (device, sensor type)
// within the rate-limit window. The window is consumed only by a confirmed
// delivery, so a failed send leaves the next violation free to retry.
func (h *Handler) sendAlertEmail(ctx context.Context, device *models.Device, sensor *models.Sensor, value float64, v *evaluator.Violation, alert *models.Alert) {
	settings := device.AlertSettings
	if settings == nil || !settings.EmailNotifications || settings.NotificationEmail == nil {
		return
	}

	if !h.limiter.CanSend(device.ID, sensor.Type) {
		h.logger.Info("Alert e-mail suppressed by rate limit",
			zap.String("device_uuid", device.DeviceUUID),
			zap.String("sensor_type", sensor.Type),
			zap.Int("minutes_until_next", h.limiter.MinutesUntilNext(device.ID, sensor.Type)),
		)
		return
	}

	sent := h.mailer.SendAlertEmail(notifier.AlertEmail{
		To:         *settings.NotificationEmail,
		DeviceName: device.Name,
		SensorType: sensor.Type,
		Value:      value,
		Threshold:  v.Threshold,
		Level:      v.Level,
		Timestamp:  alert.CreatedAt,
	})
	if !sent {
		return
	}

	h.limiter.RecordSent(device.ID, sensor.Type)
	if err := h.alerts.MarkEmailSent(ctx, alert.ID); err != nil {
		h.logger.Error("Failed to mark alert e-mail sent",
			zap.Int64("alert_id", alert.ID),
			zap.Error(err),
		)
	}
}
