package httpapi

import (
	"context"
	"net/http"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/IbrahimKhdeir/farm-moitoring/internal/models"
)

// DeviceStore is the device surface the handler needs.
type DeviceStore interface {
	ListByUser(ctx context.Context, userID int64) ([]models.Device, error)
	Create(ctx context.Context, device *models.Device) error
}

// DeviceHandler serves device registration and listing.
type DeviceHandler struct {
	devices DeviceStore
	logger  *zap.Logger
}

// NewDeviceHandler creates the handler.
func NewDeviceHandler(devices DeviceStore, logger *zap.Logger) *DeviceHandler {
	return &DeviceHandler{
		devices: devices,
		logger:  logger,
	}
}

// List handles GET /api/devices. Only devices owned by the caller are
// returned; ownerless devices stay invisible here.
func (h *DeviceHandler) List(w http.ResponseWriter, r *http.Request) {
	devices, err := h.devices.ListByUser(r.Context(), userIDFrom(r))
	if err != nil {
		h.logger.Error("Failed to list devices", zap.Error(err))
		failure(w, http.StatusInternalServerError, "Failed to list devices")
		return
	}
	if devices == nil {
		devices = []models.Device{}
	}

	success(w, devices, "")
}

type createDeviceRequest struct {
	DeviceUUID string `json:"deviceUuid"`
	Name       string `json:"name"`
}

// Create handles POST /api/devices. The firmware usually knows its own
// identifier; when the client omits it one is generated. The API key is
// always generated server-side and returned exactly once.
func (h *DeviceHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createDeviceRequest
	if err := readBodyJSON(r, 1<<20, &req); err != nil {
		failure(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.Name == "" {
		failure(w, http.StatusBadRequest, "name is required")
		return
	}
	if req.DeviceUUID == "" {
		req.DeviceUUID = uuid.NewString()
	}

	userID := userIDFrom(r)
	device := &models.Device{
		DeviceUUID: req.DeviceUUID,
		Name:       req.Name,
		UserID:     &userID,
		APIKey:     uuid.NewString(),
	}
	if err := h.devices.Create(r.Context(), device); err != nil {
		h.logger.Error("Failed to create device",
			zap.String("device_uuid", req.DeviceUUID),
			zap.Error(err),
		)
		failure(w, http.StatusInternalServerError, "Failed to create device")
		return
	}

	success(w, device, "Device added")
}
