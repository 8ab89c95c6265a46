package evaluator

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/IbrahimKhdeir/farm-moitoring/internal/models"
)

func fullSettings() *models.AlertSettings {
	return &models.AlertSettings{
		MinTemperature: floatPtr(0),
		MaxTemperature: floatPtr(50),
		MinHumidity:    floatPtr(20),
		MaxHumidity:    floatPtr(80),
		MinOxygen:      floatPtr(18),
		MaxOxygen:      floatPtr(25),
	}
}

func floatPtr(f float64) *float64 {
	return &f
}

func TestEvaluate_RulesTable(t *testing.T) {
	tests := []struct {
		name       string
		sensorType string
		value      float64
		wantLevel  string // "" means no violation
	}{
		{"temperature in range", "temperature", 23.5, ""},
		{"temperature below min is warning", "temperature", -0.1, models.AlertLevelWarning},
		{"temperature above max is danger", "temperature", 50.1, models.AlertLevelDanger},
		{"temperature at min boundary passes", "temperature", 0, ""},
		{"temperature at max boundary passes", "temperature", 50, ""},
		{"humidity below min is warning", "humidity", 19.9, models.AlertLevelWarning},
		{"humidity above max is danger", "humidity", 80.5, models.AlertLevelDanger},
		{"oxygen below min is danger", "oxygen", 17.2, models.AlertLevelDanger},
		{"oxygen above max is warning", "oxygen", 25.5, models.AlertLevelWarning},
		{"oxygen in range", "oxygen", 21, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := Evaluate(tt.sensorType, tt.value, fullSettings())
			if tt.wantLevel == "" {
				assert.Nil(t, v)
				return
			}
			require.NotNil(t, v)
			assert.Equal(t, tt.wantLevel, v.Level)
		})
	}
}

func TestEvaluate_UnrecognizedTypesNeverViolate(t *testing.T) {
	for _, sensorType := range []string{"gas", "light", "vibration", "ph", ""} {
		assert.Nil(t, Evaluate(sensorType, 1e9, fullSettings()), sensorType)
		assert.Nil(t, Evaluate(sensorType, math.NaN(), fullSettings()), sensorType)
	}
}

func TestEvaluate_NilBoundDisablesCheck(t *testing.T) {
	settings := fullSettings()
	settings.MinTemperature = nil

	// min disabled: an arbitrarily low value passes, max still enforced
	assert.Nil(t, Evaluate("temperature", -100, settings))

	v := Evaluate("temperature", 55, settings)
	require.NotNil(t, v)
	assert.Equal(t, models.AlertLevelDanger, v.Level)
}

func TestEvaluate_NilSettings(t *testing.T) {
	assert.Nil(t, Evaluate("temperature", 100, nil))
}

func TestEvaluate_NaNNeverAlerts(t *testing.T) {
	for _, sensorType := range []string{"temperature", "humidity", "oxygen"} {
		assert.Nil(t, Evaluate(sensorType, math.NaN(), fullSettings()), sensorType)
	}
}

func TestEvaluate_MessageFormat(t *testing.T) {
	v := Evaluate("temperature", 55, fullSettings())
	require.NotNil(t, v)
	assert.Equal(t, "above maximum (50°C)", v.Threshold)
	assert.Equal(t, "temperature value 55 above maximum (50°C)", v.Message)

	v = Evaluate("humidity", 12.5, fullSettings())
	require.NotNil(t, v)
	assert.Equal(t, "humidity value 12.5 below minimum (20%)", v.Message)

	v = Evaluate("oxygen", 16, fullSettings())
	require.NotNil(t, v)
	assert.Equal(t, "oxygen value 16 below minimum (18%)", v.Message)
	assert.Equal(t, models.AlertLevelDanger, v.Level)
}
