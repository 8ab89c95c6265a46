package repository

import (
	"context"
	"database/sql"
	"fmt"

	"go.uber.org/zap"

	"github.com/IbrahimKhdeir/farm-moitoring/internal/models"
)

// AlertSettingsRepository persists per-device alert settings.
// At most one row exists per device (UNIQUE device_id).
type AlertSettingsRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewAlertSettingsRepository creates the repository.
func NewAlertSettingsRepository(db *sql.DB, logger *zap.Logger) *AlertSettingsRepository {
	return &AlertSettingsRepository{
		db:     db,
		logger: logger,
	}
}

// GetByDevice returns the device's settings or (nil, nil) when none exist.
func (r *AlertSettingsRepository) GetByDevice(ctx context.Context, deviceID int64) (*models.AlertSettings, error) {
	query := `
		SELECT id, device_id,
			min_temperature, max_temperature,
			min_humidity, max_humidity,
			min_oxygen, max_oxygen,
			email_notifications, notification_email, updated_at
		FROM alert_settings
		WHERE device_id = $1
		LIMIT 1
	`

	settings := &models.AlertSettings{}
	var (
		minTemp, maxTemp  sql.NullFloat64
		minHum, maxHum    sql.NullFloat64
		minOxy, maxOxy    sql.NullFloat64
		notificationEmail sql.NullString
	)

	err := r.db.QueryRowContext(ctx, query, deviceID).Scan(
		&settings.ID,
		&settings.DeviceID,
		&minTemp, &maxTemp,
		&minHum, &maxHum,
		&minOxy, &maxOxy,
		&settings.EmailNotifications,
		&notificationEmail,
		&settings.UpdatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to query alert settings: %w", err)
	}

	settings.MinTemperature = nullFloat(minTemp)
	settings.MaxTemperature = nullFloat(maxTemp)
	settings.MinHumidity = nullFloat(minHum)
	settings.MaxHumidity = nullFloat(maxHum)
	settings.MinOxygen = nullFloat(minOxy)
	settings.MaxOxygen = nullFloat(maxOxy)
	settings.NotificationEmail = nullString(notificationEmail)

	return settings, nil
}

// Create inserts a settings row and fills the generated id/updated_at.
func (r *AlertSettingsRepository) Create(ctx context.Context, settings *models.AlertSettings) error {
	query := `
		INSERT INTO alert_settings (
			device_id,
			min_temperature, max_temperature,
			min_humidity, max_humidity,
			min_oxygen, max_oxygen,
			email_notifications, notification_email
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id, updated_at
	`

	err := r.db.QueryRowContext(ctx, query,
		settings.DeviceID,
		settings.MinTemperature, settings.MaxTemperature,
		settings.MinHumidity, settings.MaxHumidity,
		settings.MinOxygen, settings.MaxOxygen,
		settings.EmailNotifications, settings.NotificationEmail,
	).Scan(&settings.ID, &settings.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create alert settings: %w", err)
	}

	r.logger.Info("Alert settings created",
		zap.Int64("device_id", settings.DeviceID),
	)
	return nil
}

// Upsert writes the full settings row for a device, inserting or replacing
// the existing one. The handler merges partial updates before calling this,
// so the row written here is always complete.
func (r *AlertSettingsRepository) Upsert(ctx context.Context, settings *models.AlertSettings) error {
	query := `
		INSERT INTO alert_settings (
			device_id,
			min_temperature, max_temperature,
			min_humidity, max_humidity,
			min_oxygen, max_oxygen,
			email_notifications, notification_email
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (device_id) DO UPDATE SET
			min_temperature = EXCLUDED.min_temperature,
			max_temperature = EXCLUDED.max_temperature,
			min_humidity = EXCLUDED.min_humidity,
			max_humidity = EXCLUDED.max_humidity,
			min_oxygen = EXCLUDED.min_oxygen,
			max_oxygen = EXCLUDED.max_oxygen,
			email_notifications = EXCLUDED.email_notifications,
			notification_email = EXCLUDED.notification_email,
			updated_at = NOW()
		RETURNING id, updated_at
	`

	err := r.db.QueryRowContext(ctx, query,
		settings.DeviceID,
		settings.MinTemperature, settings.MaxTemperature,
		settings.MinHumidity, settings.MaxHumidity,
		settings.MinOxygen, settings.MaxOxygen,
		settings.EmailNotifications, settings.NotificationEmail,
	).Scan(&settings.ID, &settings.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to upsert alert settings: %w", err)
	}
	return nil
}
