package main

import (
	"flag"
	"fmt"
	"log"
	"math/rand"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/IbrahimKhdeir/farm-moitoring/internal/config"
	"github.com/IbrahimKhdeir/farm-moitoring/pkg/logger"
	mqttclient "github.com/IbrahimKhdeir/farm-moitoring/pkg/mqtt"
)

var (
	broker     = flag.String("broker", "tcp://localhost:1883", "MQTT broker URL")
	deviceUUID = flag.String("device", "ESP32_FIELD_01", "device identifier to publish as")
	interval   = flag.Duration("interval", 5*time.Second, "delay between readings")
	anomaly    = flag.Float64("anomaly", 0.1, "probability of a threshold-breaking value (0.0-1.0)")
	garbage    = flag.Float64("garbage", 0.02, "probability of a non-numeric payload (0.0-1.0)")
)

// simSensor produces values around a baseline, occasionally outside the
// given bounds when an anomaly is rolled.
type simSensor struct {
	name     string
	base     float64
	jitter   float64
	low      float64
	high     float64
}

func (s *simSensor) next(anomalyProb float64) float64 {
	if rand.Float64() < anomalyProb {
		if rand.Float64() < 0.5 {
			return s.high + rand.Float64()*s.jitter*3
		}
		return s.low - rand.Float64()*s.jitter*3
	}
	return s.base + (rand.Float64()*2-1)*s.jitter
}

func main() {
	flag.Parse()

	zlog, err := logger.NewLogger("info", "console", "simfarm")
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer zlog.Sync()

	cfg := &config.MQTTConfig{
		Broker:   *broker,
		ClientID: fmt.Sprintf("simfarm-%d", os.Getpid()),
		QoS:      1,
	}
	client, err := mqttclient.NewClient(cfg, zlog)
	if err != nil {
		zlog.Fatal("Failed to connect to MQTT broker", zap.Error(err))
	}
	defer client.Disconnect()

	sensors := []simSensor{
		{name: "temperature", base: 24, jitter: 3, low: 0, high: 50},
		{name: "humidity", base: 55, jitter: 8, low: 20, high: 80},
		{name: "oxygen", base: 20.9, jitter: 0.8, low: 18, high: 25},
	}

	zlog.Info("Publishing simulated readings",
		zap.String("device", *deviceUUID),
		zap.Duration("interval", *interval),
	)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	ticker := time.NewTicker(*interval)
	defer ticker.Stop()

	for {
		select {
		case <-sigChan:
			zlog.Info("Simulator stopped")
			return
		case <-ticker.C:
			for i := range sensors {
				s := &sensors[i]
				topic := fmt.Sprintf("devices/%s/sensors/%s", *deviceUUID, s.name)

				payload := strconv.FormatFloat(s.next(*anomaly), 'f', 1, 64)
				if rand.Float64() < *garbage {
					payload = "ERR"
				}

				if err := client.Publish(topic, cfg.QoS, false, []byte(payload)); err != nil {
					zlog.Error("Publish failed", zap.String("topic", topic), zap.Error(err))
					continue
				}
				zlog.Info("Published", zap.String("topic", topic), zap.String("payload", payload))
			}
		}
	}
}
