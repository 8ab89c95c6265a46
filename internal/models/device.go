package models

import "time"

// Device is a registered sensor node, identified externally by DeviceUUID.
// UserID is nil for global devices that no user owns yet.
type Device struct {
	ID         int64     `json:"id"`
	DeviceUUID string    `json:"deviceUuid"`
	Name       string    `json:"name"`
	UserID     *int64    `json:"userId"`
	APIKey     string    `json:"apiKey,omitempty"`
	CreatedAt  time.Time `json:"createdAt"`

	// Sensors is populated by list endpoints, not by every lookup.
	Sensors []Sensor `json:"sensors,omitempty"`

	// AlertSettings is attached when the ingestion path loads the device.
	AlertSettings *AlertSettings `json:"alertSettings,omitempty"`
}

// DeviceSummary is the denormalized device block carried on realtime alerts.
type DeviceSummary struct {
	ID         int64  `json:"id"`
	Name       string `json:"name"`
	DeviceUUID string `json:"deviceUuid"`
}
