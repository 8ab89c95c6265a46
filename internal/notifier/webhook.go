package notifier

import (
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"

	"github.com/IbrahimKhdeir/farm-moitoring/internal/models"
)

// WebhookNotifier POSTs created alerts to an external endpoint (e.g. a farm
// siren controller or an automation hub). Best-effort like the mailer:
// delivery failures are logged, never propagated.
type WebhookNotifier struct {
	url    string
	client *resty.Client
	logger *zap.Logger
}

// webhookPayload mirrors the realtime new-alert event so webhook consumers
// and dashboard clients see the same shape.
type webhookPayload struct {
	Alert  models.Alert         `json:"alert"`
	Device models.DeviceSummary `json:"device"`
	Sensor models.SensorSummary `json:"sensor"`
}

// NewWebhookNotifier builds a notifier for url. An empty url disables it.
func NewWebhookNotifier(url string, logger *zap.Logger) *WebhookNotifier {
	return &WebhookNotifier{
		url:    url,
		client: resty.New().SetTimeout(10 * time.Second),
		logger: logger,
	}
}

// Enabled reports whether a webhook URL is configured.
func (w *WebhookNotifier) Enabled() bool {
	return w.url != ""
}

// Notify delivers one alert. Returns an error for logging at the call site;
// callers must treat it as non-fatal.
func (w *WebhookNotifier) Notify(alert models.Alert, device models.DeviceSummary, sensor models.SensorSummary) error {
	if !w.Enabled() {
		return nil
	}

	resp, err := w.client.R().
		SetHeader("Content-Type", "application/json").
		SetBody(webhookPayload{Alert: alert, Device: device, Sensor: sensor}).
		Post(w.url)
	if err != nil {
		return fmt.Errorf("failed to post alert webhook: %w", err)
	}
	if resp.IsError() {
		return fmt.Errorf("alert webhook returned status %d", resp.StatusCode())
	}

	w.logger.Debug("Alert webhook delivered",
		zap.Int64("alert_id", alert.ID),
		zap.String("device_uuid", device.DeviceUUID),
	)
	return nil
}
