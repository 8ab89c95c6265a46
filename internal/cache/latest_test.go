package cache

import (
	"context"
	"math"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/IbrahimKhdeir/farm-moitoring/internal/config"
	"github.com/IbrahimKhdeir/farm-moitoring/internal/models"
)

func setupTestCache(t *testing.T) (*miniredis.Miniredis, *LatestCache) {
	mr := miniredis.RunT(t)
	redisClient := redis.NewClient(&redis.Options{
		Addr: mr.Addr(),
	})

	cfg := &config.Config{}
	cfg.Cache.LatestKeyPrefix = "farm:latest:"
	cfg.Cache.LatestTTL = 0

	return mr, NewLatestCache(cfg, redisClient, zap.NewNop())
}

func TestLatestCache_UpdateThenGet(t *testing.T) {
	_, c := setupTestCache(t)
	ctx := context.Background()

	ts := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	err := c.Update(ctx, &LatestReading{
		DeviceUUID: "ESP32_FIELD_01",
		SensorType: "temperature",
		Value:      23.5,
		Timestamp:  ts,
	})
	require.NoError(t, err)

	reading, err := c.Get(ctx, "ESP32_FIELD_01", "temperature")

	require.NoError(t, err)
	require.NotNil(t, reading)
	assert.Equal(t, 23.5, float64(reading.Value))
	assert.True(t, ts.Equal(reading.Timestamp))
}

func TestLatestCache_GetMissReturnsNil(t *testing.T) {
	_, c := setupTestCache(t)

	reading, err := c.Get(context.Background(), "ESP32_FIELD_01", "oxygen")

	require.NoError(t, err)
	assert.Nil(t, reading)
}

func TestLatestCache_UpdateOverwritesPrevious(t *testing.T) {
	_, c := setupTestCache(t)
	ctx := context.Background()

	for _, v := range []models.Value{20.0, 21.5} {
		err := c.Update(ctx, &LatestReading{
			DeviceUUID: "ESP32_FIELD_01",
			SensorType: "humidity",
			Value:      v,
			Timestamp:  time.Now(),
		})
		require.NoError(t, err)
	}

	reading, err := c.Get(ctx, "ESP32_FIELD_01", "humidity")

	require.NoError(t, err)
	require.NotNil(t, reading)
	assert.Equal(t, 21.5, float64(reading.Value))
}

func TestLatestCache_GetForDevice(t *testing.T) {
	_, c := setupTestCache(t)
	ctx := context.Background()

	now := time.Now()
	for sensorType, v := range map[string]models.Value{
		"temperature": 23.5,
		"humidity":    61.0,
		"oxygen":      20.8,
	} {
		err := c.Update(ctx, &LatestReading{
			DeviceUUID: "ESP32_FIELD_01",
			SensorType: sensorType,
			Value:      v,
			Timestamp:  now,
		})
		require.NoError(t, err)
	}

	// A second device must not leak into the result.
	err := c.Update(ctx, &LatestReading{
		DeviceUUID: "ESP32_FIELD_02",
		SensorType: "temperature",
		Value:      99.0,
		Timestamp:  now,
	})
	require.NoError(t, err)

	readings, err := c.GetForDevice(ctx, "ESP32_FIELD_01")

	require.NoError(t, err)
	require.Len(t, readings, 3)
	assert.Equal(t, 61.0, float64(readings["humidity"].Value))
	assert.Equal(t, 20.8, float64(readings["oxygen"].Value))
}

func TestLatestCache_TTLExpiry(t *testing.T) {
	mr, c := setupTestCache(t)
	c.config.Cache.LatestTTL = 30
	ctx := context.Background()

	err := c.Update(ctx, &LatestReading{
		DeviceUUID: "ESP32_FIELD_01",
		SensorType: "temperature",
		Value:      23.5,
		Timestamp:  time.Now(),
	})
	require.NoError(t, err)

	mr.FastForward(31 * time.Second)

	reading, err := c.Get(ctx, "ESP32_FIELD_01", "temperature")

	require.NoError(t, err)
	assert.Nil(t, reading)
}

func TestLatestCache_NaNRoundTripsAsNull(t *testing.T) {
	_, c := setupTestCache(t)
	ctx := context.Background()

	err := c.Update(ctx, &LatestReading{
		DeviceUUID: "ESP32_FIELD_01",
		SensorType: "temperature",
		Value:      models.Value(math.NaN()),
		Timestamp:  time.Now(),
	})
	require.NoError(t, err)

	reading, err := c.Get(ctx, "ESP32_FIELD_01", "temperature")

	require.NoError(t, err)
	require.NotNil(t, reading)
	assert.True(t, math.IsNaN(float64(reading.Value)))
}
