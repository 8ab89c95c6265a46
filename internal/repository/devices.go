package repository

import (
	"context"
	"database/sql"
	"fmt"

	"go.uber.org/zap"

	"github.com/IbrahimKhdeir/farm-moitoring/internal/models"
)

// DeviceRepository persists devices.
type DeviceRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewDeviceRepository creates the repository.
func NewDeviceRepository(db *sql.DB, logger *zap.Logger) *DeviceRepository {
	return &DeviceRepository{
		db:     db,
		logger: logger,
	}
}

// GetByUUIDWithSettings loads a device by its external identifier together
// with its alert settings, if any. Returns (nil, nil) when the device is not
// registered; the ingestion path drops readings from unknown devices
// silently, so absence is not an error here.
func (r *DeviceRepository) GetByUUIDWithSettings(ctx context.Context, deviceUUID string) (*models.Device, error) {
	query := `
		SELECT
			d.id, d.device_uuid, d.name, d.user_id, d.created_at,
			s.id, s.device_id,
			s.min_temperature, s.max_temperature,
			s.min_humidity, s.max_humidity,
			s.min_oxygen, s.max_oxygen,
			s.email_notifications, s.notification_email, s.updated_at
		FROM devices d
		LEFT JOIN alert_settings s ON s.device_id = d.id
		WHERE d.device_uuid = $1
		LIMIT 1
	`

	device := &models.Device{}
	var (
		settingsID         sql.NullInt64
		settingsDeviceID   sql.NullInt64
		minTemp, maxTemp   sql.NullFloat64
		minHum, maxHum     sql.NullFloat64
		minOxy, maxOxy     sql.NullFloat64
		emailNotifications sql.NullBool
		notificationEmail  sql.NullString
		updatedAt          sql.NullTime
	)

	err := r.db.QueryRowContext(ctx, query, deviceUUID).Scan(
		&device.ID,
		&device.DeviceUUID,
		&device.Name,
		&device.UserID,
		&device.CreatedAt,
		&settingsID,
		&settingsDeviceID,
		&minTemp, &maxTemp,
		&minHum, &maxHum,
		&minOxy, &maxOxy,
		&emailNotifications,
		&notificationEmail,
		&updatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to query device by uuid: %w", err)
	}

	if settingsID.Valid {
		settings := &models.AlertSettings{
			ID:                 settingsID.Int64,
			DeviceID:           settingsDeviceID.Int64,
			MinTemperature:     nullFloat(minTemp),
			MaxTemperature:     nullFloat(maxTemp),
			MinHumidity:        nullFloat(minHum),
			MaxHumidity:        nullFloat(maxHum),
			MinOxygen:          nullFloat(minOxy),
			MaxOxygen:          nullFloat(maxOxy),
			EmailNotifications: emailNotifications.Bool,
			NotificationEmail:  nullString(notificationEmail),
		}
		if updatedAt.Valid {
			settings.UpdatedAt = updatedAt.Time
		}
		device.AlertSettings = settings
	}

	return device, nil
}

// GetAccessible loads a device by internal id when it belongs to userID or is
// a global device (no owner). Returns (nil, nil) when neither holds.
func (r *DeviceRepository) GetAccessible(ctx context.Context, deviceID, userID int64) (*models.Device, error) {
	query := `
		SELECT id, device_uuid, name, user_id, created_at
		FROM devices
		WHERE id = $1 AND (user_id = $2 OR user_id IS NULL)
		LIMIT 1
	`

	device := &models.Device{}
	err := r.db.QueryRowContext(ctx, query, deviceID, userID).Scan(
		&device.ID,
		&device.DeviceUUID,
		&device.Name,
		&device.UserID,
		&device.CreatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to query device: %w", err)
	}

	return device, nil
}

// ListByUser returns the user's devices with their sensors attached.
// Global (ownerless) devices are not listed.
func (r *DeviceRepository) ListByUser(ctx context.Context, userID int64) ([]models.Device, error) {
	query := `
		SELECT id, device_uuid, name, user_id, created_at
		FROM devices
		WHERE user_id = $1
		ORDER BY id ASC
	`

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list devices: %w", err)
	}
	defer rows.Close()

	var devices []models.Device
	for rows.Next() {
		var d models.Device
		if err := rows.Scan(&d.ID, &d.DeviceUUID, &d.Name, &d.UserID, &d.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan device: %w", err)
		}
		devices = append(devices, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate devices: %w", err)
	}

	for i := range devices {
		sensors, err := r.listSensors(ctx, devices[i].ID)
		if err != nil {
			return nil, err
		}
		devices[i].Sensors = sensors
	}

	return devices, nil
}

func (r *DeviceRepository) listSensors(ctx context.Context, deviceID int64) ([]models.Sensor, error) {
	query := `
		SELECT id, device_id, type, created_at
		FROM sensors
		WHERE device_id = $1
		ORDER BY id ASC
	`

	rows, err := r.db.QueryContext(ctx, query, deviceID)
	if err != nil {
		return nil, fmt.Errorf("failed to list sensors: %w", err)
	}
	defer rows.Close()

	var sensors []models.Sensor
	for rows.Next() {
		var s models.Sensor
		if err := rows.Scan(&s.ID, &s.DeviceID, &s.Type, &s.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan sensor: %w", err)
		}
		sensors = append(sensors, s)
	}
	return sensors, rows.Err()
}

// Create registers a device and fills in the generated id and created_at.
func (r *DeviceRepository) Create(ctx context.Context, device *models.Device) error {
	query := `
		INSERT INTO devices (device_uuid, name, user_id, api_key)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at
	`

	err := r.db.QueryRowContext(ctx, query,
		device.DeviceUUID,
		device.Name,
		device.UserID,
		device.APIKey,
	).Scan(&device.ID, &device.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create device: %w", err)
	}

	r.logger.Info("Device registered",
		zap.Int64("device_id", device.ID),
		zap.String("device_uuid", device.DeviceUUID),
	)
	return nil
}

// Counts returns the total device and sensor counts for dashboard stats.
func (r *DeviceRepository) Counts(ctx context.Context) (devices int64, sensors int64, err error) {
	if err = r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM devices`).Scan(&devices); err != nil {
		return 0, 0, fmt.Errorf("failed to count devices: %w", err)
	}
	if err = r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM sensors`).Scan(&sensors); err != nil {
		return 0, 0, fmt.Errorf("failed to count sensors: %w", err)
	}
	return devices, sensors, nil
}

func nullFloat(v sql.NullFloat64) *float64 {
	if !v.Valid {
		return nil
	}
	f := v.Float64
	return &f
}

func nullString(v sql.NullString) *string {
	if !v.Valid {
		return nil
	}
	s := v.String
	return &s
}
