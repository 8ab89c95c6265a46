package models

import "time"

// Alert severity levels. Low oxygen is a danger while high oxygen is only a
// warning; temperature and humidity are the other way around.
const (
	AlertLevelWarning = "warning"
	AlertLevelDanger  = "danger"
)

// Alert records one threshold violation for a device sensor.
type Alert struct {
	ID        int64     `json:"id"`
	DeviceID  int64     `json:"deviceId"`
	SensorID  int64     `json:"sensorId"`
	Level     string    `json:"level"`
	Message   string    `json:"message"`
	IsRead    bool      `json:"isRead"`
	EmailSent bool      `json:"emailSent"`
	CreatedAt time.Time `json:"createdAt"`
}
