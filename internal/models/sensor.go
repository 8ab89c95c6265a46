package models

import "time"

// SensorType classifies the measurement streams that carry threshold rules.
// The data layer stores the raw topic string; only the evaluator narrows it.
type SensorType string

const (
	SensorTemperature SensorType = "temperature"
	SensorHumidity    SensorType = "humidity"
	SensorOxygen      SensorType = "oxygen"
	// SensorOther covers every stream without threshold rules (gas, light, ...).
	SensorOther SensorType = "other"
)

// ParseSensorType maps a raw topic segment onto the closed enum.
func ParseSensorType(raw string) SensorType {
	switch raw {
	case "temperature":
		return SensorTemperature
	case "humidity":
		return SensorHumidity
	case "oxygen":
		return SensorOxygen
	default:
		return SensorOther
	}
}

// Sensor is one measurement stream of a device. Type is the raw topic
// segment; rows are created lazily on first sighting of a (device, type) pair.
type Sensor struct {
	ID        int64     `json:"id"`
	DeviceID  int64     `json:"deviceId"`
	Type      string    `json:"type"`
	CreatedAt time.Time `json:"createdAt"`
}

// SensorSummary is the denormalized sensor block carried on realtime alerts.
type SensorSummary struct {
	ID   int64  `json:"id"`
	Type string `json:"type"`
}

// Reading is one timestamped measurement. Append-only; Value may be NaN when
// a device publishes a non-numeric payload.
type Reading struct {
	ID        int64     `json:"id"`
	SensorID  int64     `json:"sensorId"`
	Value     Value     `json:"value"`
	CreatedAt time.Time `json:"createdAt"`
}
