package service

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"

	"github.com/IbrahimKhdeir/farm-moitoring/internal/auth"
	"github.com/IbrahimKhdeir/farm-moitoring/internal/cache"
	"github.com/IbrahimKhdeir/farm-moitoring/internal/config"
	"github.com/IbrahimKhdeir/farm-moitoring/internal/consumer"
	"github.com/IbrahimKhdeir/farm-moitoring/internal/httpapi"
	"github.com/IbrahimKhdeir/farm-moitoring/internal/ingest"
	"github.com/IbrahimKhdeir/farm-moitoring/internal/notifier"
	"github.com/IbrahimKhdeir/farm-moitoring/internal/realtime"
	"github.com/IbrahimKhdeir/farm-moitoring/internal/repository"
	"github.com/IbrahimKhdeir/farm-moitoring/pkg/database"
	mqttclient "github.com/IbrahimKhdeir/farm-moitoring/pkg/mqtt"
	redisclient "github.com/IbrahimKhdeir/farm-moitoring/pkg/redis"
)

// MonitorService owns every component of the monitoring backend: the MQTT
// consumer feeding the ingestion pipeline, the HTTP API, the websocket hub
// and the Redis latest-reading cache.
type MonitorService struct {
	config     *config.Config
	logger     *zap.Logger
	db         *sql.DB
	redis      *redis.Client
	mqttClient *mqttclient.Client
	hub        *realtime.Hub
	consumer   *consumer.SensorConsumer
	server     *Server
}

// NewMonitorService connects the backing stores and wires all components.
func NewMonitorService(cfg *config.Config, logger *zap.Logger) (*MonitorService, error) {
	db, err := database.NewPostgresDB(&cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	rdb := redisclient.NewRedisClient(&cfg.Redis)
	if err := redisclient.Ping(context.Background(), rdb); err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	mqttConn, err := mqttclient.NewClient(&cfg.MQTT, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to MQTT: %w", err)
	}

	// Repositories
	deviceRepo := repository.NewDeviceRepository(db, logger)
	sensorRepo := repository.NewSensorRepository(db, logger)
	alertRepo := repository.NewAlertRepository(db, logger)
	settingsRepo := repository.NewAlertSettingsRepository(db, logger)
	userRepo := repository.NewUserRepository(db, logger)

	// Realtime and notification plumbing
	hub := realtime.NewHub(logger)
	latestCache := cache.NewLatestCache(cfg, rdb, logger)
	mailer := notifier.NewSMTPMailer(&cfg.SMTP, logger)
	webhook := notifier.NewWebhookNotifier(cfg.Alert.WebhookURL, logger)
	limiter := notifier.NewRateLimiter(time.Duration(cfg.Alert.EmailRateLimitMinutes) * time.Minute)

	// Ingestion pipeline behind the MQTT consumer
	ingestHandler := ingest.NewHandler(
		deviceRepo, sensorRepo, alertRepo,
		hub, latestCache, mailer, webhook, limiter,
		logger,
	)
	sensorConsumer := consumer.NewSensorConsumer(cfg, mqttConn, ingestHandler, logger)

	// HTTP API
	authService, err := auth.NewService(cfg, userRepo, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to build auth service: %w", err)
	}
	router := httpapi.NewRouter(logger)
	router.RegisterAuthRoutes(httpapi.NewAuthHandler(authService, logger), authService)
	router.RegisterDeviceRoutes(httpapi.NewDeviceHandler(deviceRepo, logger), authService)
	router.RegisterSensorRoutes(httpapi.NewSensorHandler(sensorRepo, deviceRepo, alertRepo, logger), authService)
	router.RegisterAlertRoutes(httpapi.NewAlertsHandler(alertRepo, logger), authService)
	router.RegisterAlertSettingsRoutes(httpapi.NewAlertSettingsHandler(settingsRepo, deviceRepo, logger), authService)
	router.RegisterDashboardRoutes(httpapi.NewDashboardHandler(deviceRepo, latestCache, hub, logger))
	router.HandleHandler("/ws", hub)

	return &MonitorService{
		config:     cfg,
		logger:     logger,
		db:         db,
		redis:      rdb,
		mqttClient: mqttConn,
		hub:        hub,
		consumer:   sensorConsumer,
		server:     NewServer(cfg.HTTP.Addr, router, logger),
	}, nil
}

// Start runs the HTTP server and the MQTT consumer until the context is
// cancelled or one of them fails.
func (s *MonitorService) Start(ctx context.Context) error {
	s.logger.Info("Starting farm monitoring service")

	errCh := make(chan error, 2)
	go func() {
		errCh <- s.server.Start()
	}()
	go func() {
		errCh <- s.consumer.Start(ctx)
	}()

	select {
	case <-ctx.Done():
		return nil
	case err := <-errCh:
		return err
	}
}

// Stop shuts every component down in reverse dependency order.
func (s *MonitorService) Stop(ctx context.Context) error {
	s.logger.Info("Stopping farm monitoring service")

	if s.consumer != nil {
		if err := s.consumer.Stop(ctx); err != nil {
			s.logger.Error("Error stopping consumer", zap.Error(err))
		}
	}

	if s.server != nil {
		if err := s.server.Stop(ctx); err != nil {
			s.logger.Error("Error stopping HTTP server", zap.Error(err))
		}
	}

	if s.hub != nil {
		s.hub.Close()
	}

	if s.mqttClient != nil {
		s.mqttClient.Disconnect()
	}

	if s.redis != nil {
		if err := redisclient.Close(s.redis); err != nil {
			s.logger.Error("Error closing redis", zap.Error(err))
		}
	}

	if s.db != nil {
		if err := database.Close(s.db); err != nil {
			s.logger.Error("Error closing database", zap.Error(err))
		}
	}

	s.logger.Info("Farm monitoring service stopped")
	return nil
}
