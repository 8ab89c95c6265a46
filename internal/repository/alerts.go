package repository

import (
	"context"
	"database/sql"
	"fmt"

	"go.uber.org/zap"

	"github.com/IbrahimKhdeir/farm-moitoring/internal/models"
)

// AlertRepository persists threshold-violation alerts.
type AlertRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewAlertRepository creates the repository.
func NewAlertRepository(db *sql.DB, logger *zap.Logger) *AlertRepository {
	return &AlertRepository{
		db:     db,
		logger: logger,
	}
}

// Create inserts an alert and fills the generated id/created_at.
func (r *AlertRepository) Create(ctx context.Context, alert *models.Alert) error {
	query := `
		INSERT INTO alerts (device_id, sensor_id, level, message, is_read, email_sent)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at
	`

	err := r.db.QueryRowContext(ctx, query,
		alert.DeviceID,
		alert.SensorID,
		alert.Level,
		alert.Message,
		alert.IsRead,
		alert.EmailSent,
	).Scan(&alert.ID, &alert.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create alert: %w", err)
	}

	r.logger.Info("Alert created",
		zap.Int64("alert_id", alert.ID),
		zap.Int64("device_id", alert.DeviceID),
		zap.String("level", alert.Level),
	)
	return nil
}

// MarkEmailSent flips the alert's email_sent flag after a confirmed delivery.
func (r *AlertRepository) MarkEmailSent(ctx context.Context, alertID int64) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE alerts SET email_sent = TRUE WHERE id = $1`, alertID)
	if err != nil {
		return fmt.Errorf("failed to mark alert email sent: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read rows affected: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("alert %d: %w", alertID, ErrNotFound)
	}
	return nil
}

// MarkRead flips the alert's is_read flag when it belongs to one of the
// user's devices (or a global device).
func (r *AlertRepository) MarkRead(ctx context.Context, alertID, userID int64) error {
	query := `
		UPDATE alerts SET is_read = TRUE
		WHERE id = $1
		  AND device_id IN (SELECT id FROM devices WHERE user_id = $2 OR user_id IS NULL)
	`

	result, err := r.db.ExecContext(ctx, query, alertID, userID)
	if err != nil {
		return fmt.Errorf("failed to mark alert read: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read rows affected: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("alert %d: %w", alertID, ErrNotFound)
	}
	return nil
}

// ListByDevice returns the device's newest alerts first.
func (r *AlertRepository) ListByDevice(ctx context.Context, deviceID int64, limit int) ([]models.Alert, error) {
	if limit <= 0 {
		limit = 100
	}

	query := `
		SELECT id, device_id, sensor_id, level, message, is_read, email_sent, created_at
		FROM alerts
		WHERE device_id = $1
		ORDER BY created_at DESC
		LIMIT $2
	`

	rows, err := r.db.QueryContext(ctx, query, deviceID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list alerts: %w", err)
	}
	defer rows.Close()

	return scanAlerts(rows)
}

// ListByUser returns the newest alerts across the user's devices.
func (r *AlertRepository) ListByUser(ctx context.Context, userID int64, limit int) ([]models.Alert, error) {
	if limit <= 0 {
		limit = 100
	}

	query := `
		SELECT a.id, a.device_id, a.sensor_id, a.level, a.message, a.is_read, a.email_sent, a.created_at
		FROM alerts a
		JOIN devices d ON d.id = a.device_id
		WHERE d.user_id = $1 OR d.user_id IS NULL
		ORDER BY a.created_at DESC
		LIMIT $2
	`

	rows, err := r.db.QueryContext(ctx, query, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list alerts: %w", err)
	}
	defer rows.Close()

	return scanAlerts(rows)
}

// UnreadCount counts unread alerts across the user's devices.
func (r *AlertRepository) UnreadCount(ctx context.Context, userID int64) (int64, error) {
	query := `
		SELECT COUNT(*)
		FROM alerts a
		JOIN devices d ON d.id = a.device_id
		WHERE a.is_read = FALSE AND (d.user_id = $1 OR d.user_id IS NULL)
	`

	var count int64
	if err := r.db.QueryRowContext(ctx, query, userID).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count unread alerts: %w", err)
	}
	return count, nil
}

func scanAlerts(rows *sql.Rows) ([]models.Alert, error) {
	var alerts []models.Alert
	for rows.Next() {
		var a models.Alert
		if err := rows.Scan(
			&a.ID, &a.DeviceID, &a.SensorID,
			&a.Level, &a.Message, &a.IsRead, &a.EmailSent, &a.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan alert: %w", err)
		}
		alerts = append(alerts, a)
	}
	return alerts, rows.Err()
}
