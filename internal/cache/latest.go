package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"

	"github.com/IbrahimKhdeir/farm-moitoring/internal/config"
	"github.com/IbrahimKhdeir/farm-moitoring/internal/models"
)

// LatestReading is the cached snapshot of a sensor's most recent value.
// A non-numeric payload is cached too; its Value round-trips as null.
type LatestReading struct {
	DeviceUUID string       `json:"deviceUuid"`
	SensorType string       `json:"sensorType"`
	Value      models.Value `json:"value"`
	Timestamp  time.Time    `json:"timestamp"`
}

// LatestCache keeps each sensor's most recent reading in Redis so the
// dashboard can show current values without hitting PostgreSQL.
type LatestCache struct {
	config      *config.Config
	redisClient *redis.Client
	logger      *zap.Logger
}

// NewLatestCache creates the cache.
func NewLatestCache(
	cfg *config.Config,
	redisClient *redis.Client,
	logger *zap.Logger,
) *LatestCache {
	return &LatestCache{
		config:      cfg,
		redisClient: redisClient,
		logger:      logger,
	}
}

func (c *LatestCache) key(deviceUUID, sensorType string) string {
	return fmt.Sprintf("%s%s:%s", c.config.Cache.LatestKeyPrefix, deviceUUID, sensorType)
}

// Update overwrites the cached latest reading for one sensor.
func (c *LatestCache) Update(ctx context.Context, reading *LatestReading) error {
	jsonData, err := json.Marshal(reading)
	if err != nil {
		return fmt.Errorf("failed to marshal latest reading: %w", err)
	}

	err = c.redisClient.Set(
		ctx,
		c.key(reading.DeviceUUID, reading.SensorType),
		jsonData,
		time.Duration(c.config.Cache.LatestTTL)*time.Second,
	).Err()
	if err != nil {
		return fmt.Errorf("failed to set latest reading cache: %w", err)
	}

	c.logger.Debug("Updated latest reading cache",
		zap.String("device_uuid", reading.DeviceUUID),
		zap.String("sensor_type", reading.SensorType),
	)
	return nil
}

// Get returns the cached latest reading or (nil, nil) on a cache miss.
func (c *LatestCache) Get(ctx context.Context, deviceUUID, sensorType string) (*LatestReading, error) {
	val, err := c.redisClient.Get(ctx, c.key(deviceUUID, sensorType)).Result()
	if err != nil {
		if err == redis.Nil {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get latest reading cache: %w", err)
	}

	var reading LatestReading
	if err := json.Unmarshal([]byte(val), &reading); err != nil {
		return nil, fmt.Errorf("failed to unmarshal latest reading: %w", err)
	}
	return &reading, nil
}

// GetForDevice returns every cached reading for one device, keyed by sensor
// type. Scanning the key space is fine here: a device carries a handful of
// sensors.
func (c *LatestCache) GetForDevice(ctx context.Context, deviceUUID string) (map[string]*LatestReading, error) {
	pattern := fmt.Sprintf("%s%s:*", c.config.Cache.LatestKeyPrefix, deviceUUID)

	readings := make(map[string]*LatestReading)
	iter := c.redisClient.Scan(ctx, 0, pattern, 0).Iterator()
	for iter.Next(ctx) {
		val, err := c.redisClient.Get(ctx, iter.Val()).Result()
		if err != nil {
			if err == redis.Nil {
				continue
			}
			return nil, fmt.Errorf("failed to get latest reading cache: %w", err)
		}

		var reading LatestReading
		if err := json.Unmarshal([]byte(val), &reading); err != nil {
			return nil, fmt.Errorf("failed to unmarshal latest reading: %w", err)
		}
		readings[reading.SensorType] = &reading
	}
	if err := iter.Err(); err != nil {
		return nil, fmt.Errorf("failed to scan latest reading keys: %w", err)
	}

	return readings, nil
}
