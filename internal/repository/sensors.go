package repository

import (
	"context"
	"database/sql"
	"fmt"

	"go.uber.org/zap"

	"github.com/IbrahimKhdeir/farm-moitoring/internal/models"
)

// SensorRepository persists sensors and their readings.
type SensorRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewSensorRepository creates the repository.
func NewSensorRepository(db *sql.DB, logger *zap.Logger) *SensorRepository {
	return &SensorRepository{
		db:     db,
		logger: logger,
	}
}

// FindOrCreate returns the sensor for (deviceID, sensorType), creating it on
// first sighting. There is no registration step; sensor identity follows
// observed traffic.
func (r *SensorRepository) FindOrCreate(ctx context.Context, deviceID int64, sensorType string) (*models.Sensor, error) {
	sensor, err := r.find(ctx, deviceID, sensorType)
	if err != nil {
		return nil, err
	}
	if sensor != nil {
		return sensor, nil
	}
	return r.create(ctx, deviceID, sensorType)
}

func (r *SensorRepository) find(ctx context.Context, deviceID int64, sensorType string) (*models.Sensor, error) {
	query := `
		SELECT id, device_id, type, created_at
		FROM sensors
		WHERE device_id = $1 AND type = $2
		LIMIT 1
	`

	sensor := &models.Sensor{}
	err := r.db.QueryRowContext(ctx, query, deviceID, sensorType).Scan(
		&sensor.ID,
		&sensor.DeviceID,
		&sensor.Type,
		&sensor.CreatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to query sensor: %w", err)
	}
	return sensor, nil
}

func (r *SensorRepository) create(ctx context.Context, deviceID int64, sensorType string) (*models.Sensor, error) {
	query := `
		INSERT INTO sensors (device_id, type)
		VALUES ($1, $2)
		RETURNING id, device_id, type, created_at
	`

	sensor := &models.Sensor{}
	err := r.db.QueryRowContext(ctx, query, deviceID, sensorType).Scan(
		&sensor.ID,
		&sensor.DeviceID,
		&sensor.Type,
		&sensor.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create sensor: %w", err)
	}

	r.logger.Info("Sensor created on first sighting",
		zap.Int64("device_id", deviceID),
		zap.String("sensor_type", sensorType),
		zap.Int64("sensor_id", sensor.ID),
	)
	return sensor, nil
}

// ListByDevice returns the device's sensors ordered by id.
func (r *SensorRepository) ListByDevice(ctx context.Context, deviceID int64) ([]models.Sensor, error) {
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

// CreateReading appends one reading and fills the generated id/created_at.
// The value is stored as-is, NaN included.
func (r *SensorRepository) CreateReading(ctx context.Context, reading *models.Reading) error {
	query := `
		INSERT INTO readings (sensor_id, value)
		VALUES ($1, $2)
		RETURNING id, created_at
	`

	err := r.db.QueryRowContext(ctx, query, reading.SensorID, float64(reading.Value)).
		Scan(&reading.ID, &reading.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create reading: %w", err)
	}
	return nil
}

// ListReadings returns the newest readings for a sensor, newest first.
func (r *SensorRepository) ListReadings(ctx context.Context, sensorID int64, limit int) ([]models.Reading, error) {
	if limit <= 0 {
		limit = 100
	}

	query := `
		SELECT id, sensor_id, value, created_at
		FROM readings
		WHERE sensor_id = $1
		ORDER BY created_at DESC
		LIMIT $2
	`

	rows, err := r.db.QueryContext(ctx, query, sensorID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list readings: %w", err)
	}
	defer rows.Close()

	var readings []models.Reading
	for rows.Next() {
		var rd models.Reading
		if err := rows.Scan(&rd.ID, &rd.SensorID, &rd.Value, &rd.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan reading: %w", err)
		}
		readings = append(readings, rd)
	}
	return readings, rows.Err()
}
