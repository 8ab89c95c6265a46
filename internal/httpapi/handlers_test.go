package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"math"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/IbrahimKhdeir/farm-moitoring/internal/auth"
	"github.com/IbrahimKhdeir/farm-moitoring/internal/models"
	"github.com/IbrahimKhdeir/farm-moitoring/internal/repository"
)

type fakeAuth struct {
	users map[string]string // email -> password
}

func (f *fakeAuth) Register(_ context.Context, username, email, _ string) (*models.User, error) {
	return &models.User{ID: 1, Username: username, Email: email, Role: "user"}, nil
}

func (f *fakeAuth) Login(_ context.Context, email, password string) (string, error) {
	stored, ok := f.users[email]
	if !ok {
		return "", auth.ErrUserNotFound
	}
	if stored != password {
		return "", auth.ErrInvalidPassword
	}
	return "token-for-" + email, nil
}

func (f *fakeAuth) Profile(_ context.Context, userID int64) (*models.User, error) {
	return &models.User{ID: userID, Username: "farmer", Email: "farmer@example.com"}, nil
}

func (f *fakeAuth) ValidateToken(token string) (int64, error) {
	if token == "valid" {
		return 42, nil
	}
	return 0, auth.ErrInvalidToken
}

type fakeDeviceStore struct {
	devices []models.Device
	created []models.Device
}

func (f *fakeDeviceStore) ListByUser(_ context.Context, _ int64) ([]models.Device, error) {
	return f.devices, nil
}

func (f *fakeDeviceStore) Create(_ context.Context, device *models.Device) error {
	device.ID = int64(len(f.created) + 1)
	device.CreatedAt = time.Now()
	f.created = append(f.created, *device)
	return nil
}

func (f *fakeDeviceStore) GetAccessible(_ context.Context, deviceID, _ int64) (*models.Device, error) {
	for i := range f.devices {
		if f.devices[i].ID == deviceID {
			return &f.devices[i], nil
		}
	}
	return nil, nil
}

type fakeSettingsStore struct {
	settings map[int64]*models.AlertSettings
	upserted *models.AlertSettings
}

func (f *fakeSettingsStore) GetByDevice(_ context.Context, deviceID int64) (*models.AlertSettings, error) {
	return f.settings[deviceID], nil
}

func (f *fakeSettingsStore) Create(_ context.Context, s *models.AlertSettings) error {
	s.ID = 1
	if f.settings == nil {
		f.settings = map[int64]*models.AlertSettings{}
	}
	f.settings[s.DeviceID] = s
	return nil
}

func (f *fakeSettingsStore) Upsert(_ context.Context, s *models.AlertSettings) error {
	f.upserted = s
	return nil
}

type fakeAlertReader struct {
	alerts    []models.Alert
	readErr   error
	markedIDs []int64
}

func (f *fakeAlertReader) ListByUser(_ context.Context, _ int64, _ int) ([]models.Alert, error) {
	return f.alerts, nil
}

func (f *fakeAlertReader) MarkRead(_ context.Context, alertID, _ int64) error {
	if f.readErr != nil {
		return f.readErr
	}
	f.markedIDs = append(f.markedIDs, alertID)
	return nil
}

func (f *fakeAlertReader) UnreadCount(_ context.Context, _ int64) (int64, error) {
	return int64(len(f.alerts)), nil
}

func newTestRouter(auth *fakeAuth, devices *fakeDeviceStore, settings *fakeSettingsStore, alerts *fakeAlertReader) *Router {
	logger := zap.NewNop()
	r := NewRouter(logger)
	r.RegisterAuthRoutes(NewAuthHandler(auth, logger), auth)
	r.RegisterDeviceRoutes(NewDeviceHandler(devices, logger), auth)
	r.RegisterAlertRoutes(NewAlertsHandler(alerts, logger), auth)
	r.RegisterAlertSettingsRoutes(NewAlertSettingsHandler(settings, devices, logger), auth)
	return r
}

func doJSON(t *testing.T, r http.Handler, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decodeResponse(t *testing.T, w *httptest.ResponseRecorder) Response {
	t.Helper()
	var resp Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}

func TestLogin_Success(t *testing.T) {
	auth := &fakeAuth{users: map[string]string{"farmer@example.com": "secret1"}}
	r := newTestRouter(auth, &fakeDeviceStore{}, &fakeSettingsStore{}, &fakeAlertReader{})

	w := doJSON(t, r, http.MethodPost, "/api/auth/login", "", loginRequest{
		Email:    "farmer@example.com",
		Password: "secret1",
	})

	assert.Equal(t, http.StatusOK, w.Code)
	resp := decodeResponse(t, w)
	assert.Equal(t, "success", resp.Status)
	assert.Equal(t, "Login successful", resp.Message)
}

func TestLogin_WrongPassword(t *testing.T) {
	auth := &fakeAuth{users: map[string]string{"farmer@example.com": "secret1"}}
	r := newTestRouter(auth, &fakeDeviceStore{}, &fakeSettingsStore{}, &fakeAlertReader{})

	w := doJSON(t, r, http.MethodPost, "/api/auth/login", "", loginRequest{
		Email:    "farmer@example.com",
		Password: "wrong",
	})

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	resp := decodeResponse(t, w)
	assert.Equal(t, "error", resp.Status)
}

func TestRegister_RejectsShortPassword(t *testing.T) {
	r := newTestRouter(&fakeAuth{}, &fakeDeviceStore{}, &fakeSettingsStore{}, &fakeAlertReader{})

	w := doJSON(t, r, http.MethodPost, "/api/auth/register", "", registerRequest{
		Username: "farmer",
		Email:    "farmer@example.com",
		Password: "short",
	})

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestProtectedRoutesRequireToken(t *testing.T) {
	r := newTestRouter(&fakeAuth{}, &fakeDeviceStore{}, &fakeSettingsStore{}, &fakeAlertReader{})

	for _, path := range []string{"/api/auth/me", "/api/devices", "/api/alerts"} {
		w := doJSON(t, r, http.MethodGet, path, "", nil)
		assert.Equal(t, http.StatusUnauthorized, w.Code, path)
	}

	w := doJSON(t, r, http.MethodGet, "/api/devices", "garbage", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestCreateDevice_GeneratesAPIKey(t *testing.T) {
	devices := &fakeDeviceStore{}
	r := newTestRouter(&fakeAuth{}, devices, &fakeSettingsStore{}, &fakeAlertReader{})

	w := doJSON(t, r, http.MethodPost, "/api/devices", "valid", createDeviceRequest{
		DeviceUUID: "ESP32_FIELD_01",
		Name:       "Greenhouse north",
	})

	assert.Equal(t, http.StatusOK, w.Code)
	require.Len(t, devices.created, 1)
	created := devices.created[0]
	assert.Equal(t, "ESP32_FIELD_01", created.DeviceUUID)
	assert.NotEmpty(t, created.APIKey)
	require.NotNil(t, created.UserID)
	assert.Equal(t, int64(42), *created.UserID)
}

func TestCreateDevice_NameRequired(t *testing.T) {
	r := newTestRouter(&fakeAuth{}, &fakeDeviceStore{}, &fakeSettingsStore{}, &fakeAlertReader{})

	w := doJSON(t, r, http.MethodPost, "/api/devices", "valid", createDeviceRequest{})

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestListDevices_EmptyIsArray(t *testing.T) {
	r := newTestRouter(&fakeAuth{}, &fakeDeviceStore{}, &fakeSettingsStore{}, &fakeAlertReader{})

	w := doJSON(t, r, http.MethodGet, "/api/devices", "valid", nil)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"data":[]`)
}

func TestMarkAlertRead(t *testing.T) {
	alerts := &fakeAlertReader{}
	r := newTestRouter(&fakeAuth{}, &fakeDeviceStore{}, &fakeSettingsStore{}, alerts)

	w := doJSON(t, r, http.MethodPut, "/api/alerts/5/read", "valid", nil)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, []int64{5}, alerts.markedIDs)
}

func TestMarkAlertRead_NotFound(t *testing.T) {
	alerts := &fakeAlertReader{readErr: fmt.Errorf("alert 999: %w", repository.ErrNotFound)}
	r := newTestRouter(&fakeAuth{}, &fakeDeviceStore{}, &fakeSettingsStore{}, alerts)

	w := doJSON(t, r, http.MethodPut, "/api/alerts/999/read", "valid", nil)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestUnreadCount(t *testing.T) {
	alerts := &fakeAlertReader{alerts: []models.Alert{{ID: 1}, {ID: 2}}}
	r := newTestRouter(&fakeAuth{}, &fakeDeviceStore{}, &fakeSettingsStore{}, alerts)

	w := doJSON(t, r, http.MethodGet, "/api/alerts/unread-count", "valid", nil)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"count":2`)
}

func accessibleDevice(id int64) models.Device {
	return models.Device{ID: id, DeviceUUID: "ESP32_FIELD_01", Name: "Greenhouse north"}
}

func TestGetSettings_CreatesDefaultsOnFirstRead(t *testing.T) {
	devices := &fakeDeviceStore{devices: []models.Device{accessibleDevice(7)}}
	settings := &fakeSettingsStore{}
	r := newTestRouter(&fakeAuth{}, devices, settings, &fakeAlertReader{})

	w := doJSON(t, r, http.MethodGet, "/api/alert-settings/7", "valid", nil)

	assert.Equal(t, http.StatusOK, w.Code)
	created := settings.settings[7]
	require.NotNil(t, created)
	require.NotNil(t, created.MaxTemperature)
	assert.Equal(t, 50.0, *created.MaxTemperature)
	assert.False(t, created.EmailNotifications)
}

func TestGetSettings_UnknownDevice(t *testing.T) {
	r := newTestRouter(&fakeAuth{}, &fakeDeviceStore{}, &fakeSettingsStore{}, &fakeAlertReader{})

	w := doJSON(t, r, http.MethodGet, "/api/alert-settings/99", "valid", nil)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestUpdateSettings_PartialMerge(t *testing.T) {
	devices := &fakeDeviceStore{devices: []models.Device{accessibleDevice(7)}}
	settings := &fakeSettingsStore{}
	r := newTestRouter(&fakeAuth{}, devices, settings, &fakeAlertReader{})

	w := doJSON(t, r, http.MethodPut, "/api/alert-settings/7", "valid", map[string]interface{}{
		"maxTemperature": 45,
	})

	assert.Equal(t, http.StatusOK, w.Code)
	require.NotNil(t, settings.upserted)
	// Patched field takes the new value, untouched fields keep defaults.
	assert.Equal(t, 45.0, *settings.upserted.MaxTemperature)
	assert.Equal(t, 0.0, *settings.upserted.MinTemperature)
	assert.Equal(t, 20.0, *settings.upserted.MinHumidity)
}

func TestUpdateSettings_NullClearsBound(t *testing.T) {
	devices := &fakeDeviceStore{devices: []models.Device{accessibleDevice(7)}}
	settings := &fakeSettingsStore{}
	r := newTestRouter(&fakeAuth{}, devices, settings, &fakeAlertReader{})

	w := doJSON(t, r, http.MethodPut, "/api/alert-settings/7", "valid", map[string]interface{}{
		"minOxygen": nil,
	})

	assert.Equal(t, http.StatusOK, w.Code)
	require.NotNil(t, settings.upserted)
	assert.Nil(t, settings.upserted.MinOxygen)
}

func TestUpdateSettings_RejectsInvertedBounds(t *testing.T) {
	devices := &fakeDeviceStore{devices: []models.Device{accessibleDevice(7)}}
	r := newTestRouter(&fakeAuth{}, devices, &fakeSettingsStore{}, &fakeAlertReader{})

	w := doJSON(t, r, http.MethodPut, "/api/alert-settings/7", "valid", map[string]interface{}{
		"minTemperature": 60,
		"maxTemperature": 40,
	})

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "min temperature must be below max temperature")
}

func TestUpdateSettings_RejectsHumidityOutOfRange(t *testing.T) {
	devices := &fakeDeviceStore{devices: []models.Device{accessibleDevice(7)}}
	r := newTestRouter(&fakeAuth{}, devices, &fakeSettingsStore{}, &fakeAlertReader{})

	w := doJSON(t, r, http.MethodPut, "/api/alert-settings/7", "valid", map[string]interface{}{
		"maxHumidity": 120,
	})

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestUpdateSettings_NotificationsNeedAddress(t *testing.T) {
	devices := &fakeDeviceStore{devices: []models.Device{accessibleDevice(7)}}
	r := newTestRouter(&fakeAuth{}, devices, &fakeSettingsStore{}, &fakeAlertReader{})

	w := doJSON(t, r, http.MethodPut, "/api/alert-settings/7", "valid", map[string]interface{}{
		"emailNotifications": true,
	})

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "notificationEmail is required")
}

type fakeSensorStore struct {
	sensors  []models.Sensor
	readings []models.Reading
}

func (f *fakeSensorStore) ListByDevice(_ context.Context, _ int64) ([]models.Sensor, error) {
	return f.sensors, nil
}

func (f *fakeSensorStore) ListReadings(_ context.Context, _ int64, _ int) ([]models.Reading, error) {
	return f.readings, nil
}

func (f *fakeSensorStore) ListAlertsByDevice(_ context.Context, _ int64, _ int) ([]models.Alert, error) {
	return nil, nil
}

func newSensorTestRouter(store *fakeSensorStore, devices *fakeDeviceStore) *Router {
	logger := zap.NewNop()
	r := NewRouter(logger)
	r.RegisterSensorRoutes(NewSensorHandler(store, devices, deviceAlertsFunc(store.ListAlertsByDevice), logger), &fakeAuth{})
	return r
}

type deviceAlertsFunc func(ctx context.Context, deviceID int64, limit int) ([]models.Alert, error)

func (f deviceAlertsFunc) ListByDevice(ctx context.Context, deviceID int64, limit int) ([]models.Alert, error) {
	return f(ctx, deviceID, limit)
}

func TestListReadings_NaNRendersAsNull(t *testing.T) {
	store := &fakeSensorStore{readings: []models.Reading{
		{ID: 1, SensorID: 3, Value: models.Value(math.NaN()), CreatedAt: time.Now()},
		{ID: 2, SensorID: 3, Value: 23.5, CreatedAt: time.Now()},
	}}
	r := newSensorTestRouter(store, &fakeDeviceStore{})

	w := doJSON(t, r, http.MethodGet, "/api/sensors/3/readings", "valid", nil)

	require.Equal(t, http.StatusOK, w.Code)
	require.NotEmpty(t, w.Body.Bytes())
	assert.Contains(t, w.Body.String(), `"value":null`)
	assert.Contains(t, w.Body.String(), `"value":23.5`)

	resp := decodeResponse(t, w)
	assert.Equal(t, "success", resp.Status)
}

func TestWriteJSON_EncodeFailureIsServerError(t *testing.T) {
	w := httptest.NewRecorder()
	writeJSON(w, http.StatusOK, map[string]interface{}{"bad": func() {}})

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, w.Body.String(), "Failed to encode response")
}
