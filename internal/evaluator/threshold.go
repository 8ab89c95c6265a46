package evaluator

import (
	"fmt"
	"strconv"

	"github.com/IbrahimKhdeir/farm-moitoring/internal/models"
)

// Violation is a threshold breach detected for one reading.
type Violation struct {
	Level string
	// Threshold is the human-readable bound description, e.g.
	// "above maximum (50°C)". Reused verbatim in the notification e-mail.
	Threshold string
	// Message is the alert text, e.g. "temperature value 55 above maximum (50°C)".
	Message string
}

// Evaluate applies the per-device threshold rules to one reading.
// It returns nil when the reading violates nothing, which covers:
// sensor types without rules, nil bounds, and NaN values (every numeric
// comparison against NaN is false, so NaN never alerts).
//
// First matching condition wins, min before max per type. Severity is
// asymmetric for oxygen: too little oxygen endangers livestock immediately,
// an elevated level is only worth a warning. min >= max in settings is kept
// out by the settings update path; the evaluator does not re-check it.
func Evaluate(sensorType string, value float64, settings *models.AlertSettings) *Violation {
	if settings == nil {
		return nil
	}

	switch models.ParseSensorType(sensorType) {
	case models.SensorTemperature:
		if settings.MinTemperature != nil && value < *settings.MinTemperature {
			return violation(sensorType, value, models.AlertLevelWarning,
				fmt.Sprintf("below minimum (%s°C)", formatBound(*settings.MinTemperature)))
		}
		if settings.MaxTemperature != nil && value > *settings.MaxTemperature {
			return violation(sensorType, value, models.AlertLevelDanger,
				fmt.Sprintf("above maximum (%s°C)", formatBound(*settings.MaxTemperature)))
		}
	case models.SensorHumidity:
		if settings.MinHumidity != nil && value < *settings.MinHumidity {
			return violation(sensorType, value, models.AlertLevelWarning,
				fmt.Sprintf("below minimum (%s%%)", formatBound(*settings.MinHumidity)))
		}
		if settings.MaxHumidity != nil && value > *settings.MaxHumidity {
			return violation(sensorType, value, models.AlertLevelDanger,
				fmt.Sprintf("above maximum (%s%%)", formatBound(*settings.MaxHumidity)))
		}
	case models.SensorOxygen:
		if settings.MinOxygen != nil && value < *settings.MinOxygen {
			return violation(sensorType, value, models.AlertLevelDanger,
				fmt.Sprintf("below minimum (%s%%)", formatBound(*settings.MinOxygen)))
		}
		if settings.MaxOxygen != nil && value > *settings.MaxOxygen {
			return violation(sensorType, value, models.AlertLevelWarning,
				fmt.Sprintf("above maximum (%s%%)", formatBound(*settings.MaxOxygen)))
		}
	}

	return nil
}

func violation(sensorType string, value float64, level, threshold string) *Violation {
	return &Violation{
		Level:     level,
		Threshold: threshold,
		Message:   fmt.Sprintf("%s value %s %s", sensorType, formatBound(value), threshold),
	}
}

// formatBound renders numbers the way the dashboard shows them: no trailing
// zeros, no exponent for typical sensor ranges.
func formatBound(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
