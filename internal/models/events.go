package models

import "time"

// Realtime event names pushed to dashboard clients.
const (
	EventSensorReading = "sensor-reading"
	EventNewAlert      = "new-alert"
)

// SensorReadingEvent is broadcast for every persisted reading.
type SensorReadingEvent struct {
	DeviceUUID string    `json:"deviceUuid"`
	SensorType string    `json:"sensorType"`
	Value      Value     `json:"value"`
	Timestamp  time.Time `json:"timestamp"`
}

// NewAlertEvent is broadcast when a threshold violation creates an alert.
// The alert is flattened and merged with device/sensor summaries so the
// dashboard needs no extra lookups.
type NewAlertEvent struct {
	Alert
	Device DeviceSummary `json:"device"`
	Sensor SensorSummary `json:"sensor"`
}
