package httpapi

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/IbrahimKhdeir/farm-moitoring/internal/models"
	"github.com/IbrahimKhdeir/farm-moitoring/internal/repository"
)

// AlertReader is the alert surface the handler needs.
type AlertReader interface {
	ListByUser(ctx context.Context, userID int64, limit int) ([]models.Alert, error)
	MarkRead(ctx context.Context, alertID, userID int64) error
	UnreadCount(ctx context.Context, userID int64) (int64, error)
}

// AlertsHandler serves the alert inbox.
type AlertsHandler struct {
	alerts AlertReader
	logger *zap.Logger
}

// NewAlertsHandler creates the handler.
func NewAlertsHandler(alerts AlertReader, logger *zap.Logger) *AlertsHandler {
	return &AlertsHandler{
		alerts: alerts,
		logger: logger,
	}
}

// List handles GET /api/alerts?limit=N.
func (h *AlertsHandler) List(w http.ResponseWriter, r *http.Request) {
	limit := parseInt(r.URL.Query().Get("limit"), 100)

	alerts, err := h.alerts.ListByUser(r.Context(), userIDFrom(r), limit)
	if err != nil {
		h.logger.Error("Failed to list alerts", zap.Error(err))
		failure(w, http.StatusInternalServerError, "Failed to list alerts")
		return
	}
	if alerts == nil {
		alerts = []models.Alert{}
	}

	success(w, alerts, "")
}

// MarkRead handles PUT /api/alerts/{id}/read.
func (h *AlertsHandler) MarkRead(w http.ResponseWriter, r *http.Request, alertID int64) {
	err := h.alerts.MarkRead(r.Context(), alertID, userIDFrom(r))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			failure(w, http.StatusNotFound, "Alert not found")
			return
		}
		h.logger.Error("Failed to mark alert read", zap.Int64("alert_id", alertID), zap.Error(err))
		failure(w, http.StatusInternalServerError, "Failed to mark alert read")
		return
	}

	success(w, map[string]int64{"id": alertID}, "Alert marked as read")
}

// UnreadCount handles GET /api/alerts/unread-count.
func (h *AlertsHandler) UnreadCount(w http.ResponseWriter, r *http.Request) {
	count, err := h.alerts.UnreadCount(r.Context(), userIDFrom(r))
	if err != nil {
		h.logger.Error("Failed to count unread alerts", zap.Error(err))
		failure(w, http.StatusInternalServerError, "Failed to count unread alerts")
		return
	}

	success(w, map[string]int64{"count": count}, "")
}

// Export handles GET /api/alerts/export and streams the caller's alert
// history as an Excel workbook.
func (h *AlertsHandler) Export(w http.ResponseWriter, r *http.Request) {
	alerts, err := h.alerts.ListByUser(r.Context(), userIDFrom(r), parseInt(r.URL.Query().Get("limit"), 1000))
	if err != nil {
		h.logger.Error("Failed to load alerts for export", zap.Error(err))
		failure(w, http.StatusInternalServerError, "Failed to export alerts")
		return
	}

	content, err := GenerateAlertExport(alerts)
	if err != nil {
		h.logger.Error("Failed to build alert export", zap.Error(err))
		failure(w, http.StatusInternalServerError, "Failed to export alerts")
		return
	}

	filename := fmt.Sprintf("alerts-%s.xlsx", time.Now().Format("2006-01-02"))
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(content)
}
