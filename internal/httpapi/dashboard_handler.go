package httpapi

import (
	"context"
	"net/http"

	"go.uber.org/zap"

	"github.com/IbrahimKhdeir/farm-moitoring/internal/cache"
)

// StatsSource exposes the fleet-wide counters shown on the dashboard.
type StatsSource interface {
	Counts(ctx context.Context) (devices int64, sensors int64, err error)
}

// LatestSource reads cached latest readings.
type LatestSource interface {
	GetForDevice(ctx context.Context, deviceUUID string) (map[string]*cache.LatestReading, error)
}

// ClientCounter reports how many realtime clients are connected.
type ClientCounter interface {
	ClientCount() int
}

// DashboardHandler serves the dashboard summary endpoints.
type DashboardHandler struct {
	stats   StatsSource
	latest  LatestSource
	clients ClientCounter
	logger  *zap.Logger
}

// NewDashboardHandler creates the handler.
func NewDashboardHandler(stats StatsSource, latest LatestSource, clients ClientCounter, logger *zap.Logger) *DashboardHandler {
	return &DashboardHandler{
		stats:   stats,
		latest:  latest,
		clients: clients,
		logger:  logger,
	}
}

// Stats handles GET /api/dashboard/stats.
func (h *DashboardHandler) Stats(w http.ResponseWriter, r *http.Request) {
	devices, sensors, err := h.stats.Counts(r.Context())
	if err != nil {
		h.logger.Error("Failed to load dashboard stats", zap.Error(err))
		failure(w, http.StatusInternalServerError, "Failed to load stats")
		return
	}

	data := map[string]interface{}{
		"devicesCount": devices,
		"sensorsCount": sensors,
	}
	if h.clients != nil {
		data["connectedClients"] = h.clients.ClientCount()
	}

	success(w, data, "Dashboard stats retrieved")
}

// Latest handles GET /api/dashboard/latest/{deviceUuid} and returns the
// cached newest reading per sensor type. An unknown device simply yields
// an empty object.
func (h *DashboardHandler) Latest(w http.ResponseWriter, r *http.Request, deviceUUID string) {
	if h.latest == nil {
		success(w, map[string]*cache.LatestReading{}, "")
		return
	}

	readings, err := h.latest.GetForDevice(r.Context(), deviceUUID)
	if err != nil {
		h.logger.Error("Failed to load latest readings",
			zap.String("device_uuid", deviceUUID),
			zap.Error(err),
		)
		failure(w, http.StatusInternalServerError, "Failed to load latest readings")
		return
	}

	success(w, readings, "")
}
