package consumer

import (
	"context"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/IbrahimKhdeir/farm-moitoring/internal/config"
	mqttclient "github.com/IbrahimKhdeir/farm-moitoring/pkg/mqtt"
)

// ReadingHandler receives every reading parsed off the broker.
type ReadingHandler interface {
	HandleReading(ctx context.Context, deviceUUID, sensorType string, value float64, ts time.Time) error
}

// SensorConsumer subscribes to the device telemetry topics and feeds the
// ingestion pipeline.
type SensorConsumer struct {
	config     *config.Config
	mqttClient *mqttclient.Client
	handler    ReadingHandler
	logger     *zap.Logger
}

// NewSensorConsumer creates the consumer.
func NewSensorConsumer(
	cfg *config.Config,
	mqttClient *mqttclient.Client,
	handler ReadingHandler,
	logger *zap.Logger,
) *SensorConsumer {
	return &SensorConsumer{
		config:     cfg,
		mqttClient: mqttClient,
		handler:    handler,
		logger:     logger,
	}
}

// Start subscribes and blocks until the context is cancelled.
func (c *SensorConsumer) Start(ctx context.Context) error {
	if err := c.mqttClient.Subscribe(c.config.MQTT.Topic, c.config.MQTT.QoS, c.handleMessage); err != nil {
		return fmt.Errorf("failed to subscribe to sensor topic: %w", err)
	}

	c.logger.Info("Sensor consumer started",
		zap.String("topic", c.config.MQTT.Topic),
	)

	<-ctx.Done()
	return nil
}

// Stop unsubscribes from the telemetry topic.
func (c *SensorConsumer) Stop(ctx context.Context) error {
	if err := c.mqttClient.Unsubscribe(c.config.MQTT.Topic); err != nil {
		c.logger.Error("Failed to unsubscribe", zap.Error(err))
	}

	c.logger.Info("Sensor consumer stopped")
	return nil
}

// handleMessage processes one broker message.
func (c *SensorConsumer) handleMessage(topic string, payload []byte) error {
	c.logger.Debug("Received MQTT message",
		zap.String("topic", topic),
		zap.Int("payload_size", len(payload)),
	)

	// 1. Extract device and sensor type from the topic
	// Topic format: devices/{device_uuid}/sensors/{sensor_type}
	deviceUUID, sensorType, err := parseTopic(topic)
	if err != nil {
		c.logger.Warn("Ignoring message on malformed topic",
			zap.String("topic", topic),
		)
		return err
	}

	// 2. Parse the payload. A non-numeric payload becomes NaN and is kept.
	value := parseValue(payload)

	// 3. Hand off to the ingestion pipeline
	if err := c.handler.HandleReading(context.Background(), deviceUUID, sensorType, value, time.Now()); err != nil {
		c.logger.Error("Failed to process reading",
			zap.String("device_uuid", deviceUUID),
			zap.String("sensor_type", sensorType),
			zap.Error(err),
		)
		return err
	}

	return nil
}

func parseTopic(topic string) (deviceUUID, sensorType string, err error) {
	parts := strings.Split(topic, "/")
	if len(parts) != 4 || parts[0] != "devices" || parts[2] != "sensors" {
		return "", "", fmt.Errorf("invalid topic format: %s", topic)
	}
	if parts[1] == "" || parts[3] == "" {
		return "", "", fmt.Errorf("invalid topic format: %s", topic)
	}
	return parts[1], parts[3], nil
}

func parseValue(payload []byte) float64 {
	value, err := strconv.ParseFloat(strings.TrimSpace(string(payload)), 64)
	if err != nil {
		return math.NaN()
	}
	return value
}
