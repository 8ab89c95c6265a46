package models

import "time"

// AlertSettings holds the per-device threshold bounds. A nil bound disables
// that side of the check. At most one row exists per device.
type AlertSettings struct {
	ID                 int64     `json:"id"`
	DeviceID           int64     `json:"deviceId"`
	MinTemperature     *float64  `json:"minTemperature"`
	MaxTemperature     *float64  `json:"maxTemperature"`
	MinHumidity        *float64  `json:"minHumidity"`
	MaxHumidity        *float64  `json:"maxHumidity"`
	MinOxygen          *float64  `json:"minOxygen"`
	MaxOxygen          *float64  `json:"maxOxygen"`
	EmailNotifications bool      `json:"emailNotifications"`
	NotificationEmail  *string   `json:"notificationEmail"`
	UpdatedAt          time.Time `json:"updatedAt"`
}

// DefaultAlertSettings are the permissive bounds auto-created the first time
// settings are requested for a device that has none. Notifications stay off
// until a user opts in.
func DefaultAlertSettings(deviceID int64) *AlertSettings {
	return &AlertSettings{
		DeviceID:           deviceID,
		MinTemperature:     floatPtr(0),
		MaxTemperature:     floatPtr(50),
		MinHumidity:        floatPtr(20),
		MaxHumidity:        floatPtr(80),
		MinOxygen:          floatPtr(18),
		MaxOxygen:          floatPtr(25),
		EmailNotifications: false,
		NotificationEmail:  nil,
	}
}

func floatPtr(f float64) *float64 {
	return &f
}
