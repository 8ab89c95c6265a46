package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// DatabaseConfig holds PostgreSQL connection settings.
type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	Database string
	SSLMode  string
	MaxConns int
	MaxIdle  int
}

// DSN builds the lib/pq connection string.
func (c *DatabaseConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Database, c.SSLMode)
}

// RedisConfig holds Redis connection settings.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// MQTTConfig holds MQTT broker settings.
type MQTTConfig struct {
	Broker   string
	ClientID string
	Username string
	Password string
	QoS      byte
	// Topic is the wildcard subscription covering every device sensor stream.
	Topic string
}

// SMTPConfig holds alert e-mail delivery settings.
type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

// Config is the full farmwatch service configuration.
type Config struct {
	Database DatabaseConfig
	Redis    RedisConfig
	MQTT     MQTTConfig
	SMTP     SMTPConfig

	HTTP struct {
		Addr string
	}

	Auth struct {
		JWTSecret string
		// TokenTTLHours is the JWT lifetime.
		TokenTTLHours int
	}

	Alert struct {
		// EmailRateLimitMinutes is the per device+sensor suppression window.
		EmailRateLimitMinutes int
		// WebhookURL, when set, receives a POST per created alert.
		WebhookURL string
	}

	Cache struct {
		// LatestKeyPrefix prefixes the latest-reading keys, e.g. "farm:latest:".
		LatestKeyPrefix string
		// LatestTTL is the latest-reading TTL in seconds (0 = no expiry).
		LatestTTL int
	}

	Log struct {
		Level  string
		Format string
	}
}

// Load reads configuration from the environment, with defaults suitable for
// local development. A .env file is honored when present.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{}

	cfg.Database.Host = getEnv("DB_HOST", "localhost")
	cfg.Database.Port = getEnvInt("DB_PORT", 5432)
	cfg.Database.User = getEnv("DB_USER", "postgres")
	cfg.Database.Password = getEnv("DB_PASSWORD", "postgres")
	cfg.Database.Database = getEnv("DB_NAME", "farmwatch")
	cfg.Database.SSLMode = getEnv("DB_SSLMODE", "disable")
	cfg.Database.MaxConns = getEnvInt("DB_MAX_CONNS", 10)
	cfg.Database.MaxIdle = getEnvInt("DB_MAX_IDLE", 5)

	cfg.Redis.Addr = getEnv("REDIS_ADDR", "localhost:6379")
	cfg.Redis.Password = getEnv("REDIS_PASSWORD", "")
	cfg.Redis.DB = getEnvInt("REDIS_DB", 0)

	cfg.MQTT.Broker = getEnv("MQTT_BROKER", "tcp://localhost:1883")
	cfg.MQTT.ClientID = getEnv("MQTT_CLIENT_ID", "farmwatch-backend")
	cfg.MQTT.Username = getEnv("MQTT_USERNAME", "")
	cfg.MQTT.Password = getEnv("MQTT_PASSWORD", "")
	cfg.MQTT.QoS = byte(getEnvInt("MQTT_QOS", 1))
	cfg.MQTT.Topic = getEnv("MQTT_TOPIC", "devices/+/sensors/+")

	cfg.SMTP.Host = getEnv("SMTP_HOST", "")
	cfg.SMTP.Port = getEnvInt("SMTP_PORT", 587)
	cfg.SMTP.Username = getEnv("SMTP_USERNAME", "")
	cfg.SMTP.Password = getEnv("SMTP_PASSWORD", "")
	cfg.SMTP.From = getEnv("SMTP_FROM", "alerts@farmwatch.local")

	cfg.HTTP.Addr = getEnv("HTTP_ADDR", ":5000")

	// No default for the signing key; the auth service rejects an empty one.
	cfg.Auth.JWTSecret = getEnv("JWT_SECRET", "")
	cfg.Auth.TokenTTLHours = getEnvInt("JWT_TTL_HOURS", 24)

	cfg.Alert.EmailRateLimitMinutes = getEnvInt("ALERT_EMAIL_RATE_LIMIT_MINUTES", 15)
	cfg.Alert.WebhookURL = getEnv("ALERT_WEBHOOK_URL", "")

	cfg.Cache.LatestKeyPrefix = getEnv("CACHE_LATEST_PREFIX", "farm:latest:")
	cfg.Cache.LatestTTL = getEnvInt("CACHE_LATEST_TTL", 0)

	cfg.Log.Level = getEnv("LOG_LEVEL", "info")
	cfg.Log.Format = getEnv("LOG_FORMAT", "json")

	return cfg, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return defaultValue
}
