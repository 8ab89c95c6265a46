package httpapi

import (
	"net/http"
	"strings"

	"go.uber.org/zap"
)

// Router uses the standard library http.ServeMux to avoid pulling in a
// third-party routing dependency.
type Router struct {
	mux    *http.ServeMux
	logger *zap.Logger
}

// NewRouter creates an empty router.
func NewRouter(logger *zap.Logger) *Router {
	return &Router{
		mux:    http.NewServeMux(),
		logger: logger,
	}
}

func (r *Router) Handle(pattern string, h http.HandlerFunc) {
	r.mux.HandleFunc(pattern, h)
}

// HandleHandler supports the http.Handler interface (websocket hub, pprof).
func (r *Router) HandleHandler(pattern string, h http.Handler) {
	r.mux.Handle(pattern, h)
}

func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	r.mux.ServeHTTP(w, req)
}

func methodsOnly(method string, h http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) {
		if req.Method != method {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		h(w, req)
	}
}

// RegisterAuthRoutes wires registration, login and profile lookup.
func (r *Router) RegisterAuthRoutes(h *AuthHandler, validator TokenValidator) {
	r.Handle("/api/auth/register", methodsOnly(http.MethodPost, h.Register))
	r.Handle("/api/auth/login", methodsOnly(http.MethodPost, h.Login))
	r.Handle("/api/auth/me", methodsOnly(http.MethodGet, requireAuth(validator, h.Me)))
}

// RegisterDeviceRoutes wires the device collection.
func (r *Router) RegisterDeviceRoutes(h *DeviceHandler, validator TokenValidator) {
	r.Handle("/api/devices", requireAuth(validator, func(w http.ResponseWriter, req *http.Request) {
		switch req.Method {
		case http.MethodGet:
			h.List(w, req)
		case http.MethodPost:
			h.Create(w, req)
		default:
			w.WriteHeader(http.StatusMethodNotAllowed)
		}
	}))
}

// RegisterSensorRoutes wires sensor listings and reading history.
func (r *Router) RegisterSensorRoutes(h *SensorHandler, validator TokenValidator) {
	// /api/sensors/device/{deviceId} and /api/sensors/device/{deviceId}/alerts
	r.Handle("/api/sensors/device/", requireAuth(validator, func(w http.ResponseWriter, req *http.Request) {
		if req.Method != http.MethodGet {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}

		rest := strings.TrimPrefix(req.URL.Path, "/api/sensors/device/")
		if id, ok := parseID(rest); ok {
			h.ListByDevice(w, req, id)
			return
		}
		if idPart, found := strings.CutSuffix(rest, "/alerts"); found {
			if id, ok := parseID(idPart); ok {
				h.DeviceAlerts(w, req, id)
				return
			}
		}
		w.WriteHeader(http.StatusNotFound)
	}))

	// /api/sensors/{sensorId}/readings
	r.Handle("/api/sensors/", requireAuth(validator, func(w http.ResponseWriter, req *http.Request) {
		if req.Method != http.MethodGet {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}

		rest := strings.TrimPrefix(req.URL.Path, "/api/sensors/")
		idPart, found := strings.CutSuffix(rest, "/readings")
		if !found {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		id, ok := parseID(idPart)
		if !ok {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		h.Readings(w, req, id)
	}))
}

// RegisterAlertRoutes wires the alert inbox.
func (r *Router) RegisterAlertRoutes(h *AlertsHandler, validator TokenValidator) {
	r.Handle("/api/alerts", methodsOnly(http.MethodGet, requireAuth(validator, h.List)))
	r.Handle("/api/alerts/unread-count", methodsOnly(http.MethodGet, requireAuth(validator, h.UnreadCount)))
	r.Handle("/api/alerts/export", methodsOnly(http.MethodGet, requireAuth(validator, h.Export)))

	// /api/alerts/{id}/read
	r.Handle("/api/alerts/", requireAuth(validator, func(w http.ResponseWriter, req *http.Request) {
		if req.Method != http.MethodPut {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}

		rest := strings.TrimPrefix(req.URL.Path, "/api/alerts/")
		idPart, found := strings.CutSuffix(rest, "/read")
		if !found {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		id, ok := parseID(idPart)
		if !ok {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		h.MarkRead(w, req, id)
	}))
}

// RegisterAlertSettingsRoutes wires per-device threshold configuration.
func (r *Router) RegisterAlertSettingsRoutes(h *AlertSettingsHandler, validator TokenValidator) {
	r.Handle("/api/alert-settings/", requireAuth(validator, func(w http.ResponseWriter, req *http.Request) {
		rest := strings.TrimPrefix(req.URL.Path, "/api/alert-settings/")
		id, ok := parseID(rest)
		if !ok {
			w.WriteHeader(http.StatusNotFound)
			return
		}

		switch req.Method {
		case http.MethodGet:
			h.Get(w, req, id)
		case http.MethodPut:
			h.Update(w, req, id)
		default:
			w.WriteHeader(http.StatusMethodNotAllowed)
		}
	}))
}

// RegisterDashboardRoutes wires the public dashboard endpoints.
func (r *Router) RegisterDashboardRoutes(h *DashboardHandler) {
	r.Handle("/api/dashboard/stats", methodsOnly(http.MethodGet, h.Stats))

	r.Handle("/api/dashboard/latest/", methodsOnly(http.MethodGet, func(w http.ResponseWriter, req *http.Request) {
		deviceUUID := strings.TrimPrefix(req.URL.Path, "/api/dashboard/latest/")
		if deviceUUID == "" || strings.Contains(deviceUUID, "/") {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		h.Latest(w, req, deviceUUID)
	}))

	r.Handle("/api/notifications", methodsOnly(http.MethodGet, func(w http.ResponseWriter, req *http.Request) {
		success(w, []interface{}{}, "Notifications retrieved")
	}))

	r.Handle("/health", func(w http.ResponseWriter, req *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
}
