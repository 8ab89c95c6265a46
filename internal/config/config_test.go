package config

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_DefaultValues(t *testing.T) {
	os.Clearenv()

	cfg, err := Load()
	require.NoError(t, err)
	assert.NotNil(t, cfg)

	assert.Equal(t, "localhost", cfg.Database.Host)
	assert.Equal(t, 5432, cfg.Database.Port)
	assert.Equal(t, "postgres", cfg.Database.User)
	assert.Equal(t, "farmwatch", cfg.Database.Database)
	assert.Equal(t, "disable", cfg.Database.SSLMode)

	assert.Equal(t, "localhost:6379", cfg.Redis.Addr)
	assert.Equal(t, 0, cfg.Redis.DB)

	assert.Equal(t, "tcp://localhost:1883", cfg.MQTT.Broker)
	assert.Equal(t, "farmwatch-backend", cfg.MQTT.ClientID)
	assert.Equal(t, "devices/+/sensors/+", cfg.MQTT.Topic)
	assert.Equal(t, byte(1), cfg.MQTT.QoS)

	assert.Equal(t, ":5000", cfg.HTTP.Addr)
	assert.Equal(t, 24, cfg.Auth.TokenTTLHours)
	assert.Equal(t, 15, cfg.Alert.EmailRateLimitMinutes)
	assert.Equal(t, "farm:latest:", cfg.Cache.LatestKeyPrefix)

	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
}

func TestLoad_EnvironmentVariables(t *testing.T) {
	os.Setenv("DB_HOST", "test-host")
	os.Setenv("DB_PORT", "5433")
	os.Setenv("DB_NAME", "test-db")
	os.Setenv("MQTT_BROKER", "tcp://broker:1883")
	os.Setenv("MQTT_TOPIC", "farms/+/sensors/+")
	os.Setenv("ALERT_EMAIL_RATE_LIMIT_MINUTES", "30")
	os.Setenv("LOG_LEVEL", "debug")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "test-host", cfg.Database.Host)
	assert.Equal(t, 5433, cfg.Database.Port)
	assert.Equal(t, "test-db", cfg.Database.Database)
	assert.Equal(t, "tcp://broker:1883", cfg.MQTT.Broker)
	assert.Equal(t, "farms/+/sensors/+", cfg.MQTT.Topic)
	assert.Equal(t, 30, cfg.Alert.EmailRateLimitMinutes)
	assert.Equal(t, "debug", cfg.Log.Level)

	os.Clearenv()
}

func TestDatabaseConfig_DSN(t *testing.T) {
	cfg := &DatabaseConfig{
		Host:     "db",
		Port:     5432,
		User:     "farm",
		Password: "secret",
		Database: "farmwatch",
		SSLMode:  "disable",
	}

	assert.Equal(t,
		"host=db port=5432 user=farm password=secret dbname=farmwatch sslmode=disable",
		cfg.DSN(),
	)
}

func TestGetEnvInt(t *testing.T) {
	os.Clearenv()
	assert.Equal(t, 42, getEnvInt("TEST_INT", 42))

	os.Setenv("TEST_INT", "7")
	assert.Equal(t, 7, getEnvInt("TEST_INT", 42))

	os.Setenv("TEST_INT", "not-a-number")
	assert.Equal(t, 42, getEnvInt("TEST_INT", 42))

	os.Unsetenv("TEST_INT")
}
