package notifier

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"
	gomail "gopkg.in/gomail.v2"

	"github.com/IbrahimKhdeir/farm-moitoring/internal/config"
)

// AlertEmail carries everything needed to format one alert notification.
type AlertEmail struct {
	To         string
	DeviceName string
	SensorType string
	Value      float64
	Threshold  string
	Level      string
	Timestamp  time.Time
}

// Mailer delivers alert notifications. Implementations must degrade, not
// fail: a mail-provider outage means "no e-mail, alert still recorded".
type Mailer interface {
	SendAlertEmail(email AlertEmail) bool
}

// SMTPMailer sends alert e-mails through an SMTP relay.
type SMTPMailer struct {
	cfg    *config.SMTPConfig
	dialer *gomail.Dialer
	logger *zap.Logger
}

// NewSMTPMailer builds a mailer. With no SMTP host configured the mailer is
// a no-op that reports every send as not delivered.
func NewSMTPMailer(cfg *config.SMTPConfig, logger *zap.Logger) *SMTPMailer {
	m := &SMTPMailer{
		cfg:    cfg,
		logger: logger,
	}
	if cfg.Host != "" {
		m.dialer = gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password)
	}
	return m
}

// SendAlertEmail formats and sends one alert notification. Transport errors
// are logged and converted to false so ingestion never crashes on mail.
func (m *SMTPMailer) SendAlertEmail(email AlertEmail) bool {
	if m.dialer == nil {
		m.logger.Debug("SMTP not configured, skipping alert e-mail",
			zap.String("to", email.To),
		)
		return false
	}

	msg := gomail.NewMessage()
	msg.SetHeader("From", m.cfg.From)
	msg.SetHeader("To", email.To)
	msg.SetHeader("Subject", fmt.Sprintf("[%s] Farm alert: %s on %s",
		strings.ToUpper(email.Level), email.SensorType, email.DeviceName))
	msg.SetBody("text/html", alertBody(email))

	if err := m.dialer.DialAndSend(msg); err != nil {
		m.logger.Error("Failed to send alert e-mail",
			zap.String("to", email.To),
			zap.String("device_name", email.DeviceName),
			zap.String("sensor_type", email.SensorType),
			zap.Error(err),
		)
		return false
	}

	m.logger.Info("Alert e-mail sent",
		zap.String("to", email.To),
		zap.String("device_name", email.DeviceName),
		zap.String("sensor_type", email.SensorType),
		zap.String("level", email.Level),
	)
	return true
}

func alertBody(email AlertEmail) string {
	value := strconv.FormatFloat(email.Value, 'f', -1, 64)
	return fmt.Sprintf(
		`<h2>Farm monitoring alert</h2>
<p><b>Device:</b> %s</p>
<p><b>Sensor:</b> %s</p>
<p><b>Reading:</b> %s (%s)</p>
<p><b>Severity:</b> %s</p>
<p><b>Time:</b> %s</p>`,
		email.DeviceName,
		email.SensorType,
		value,
		email.Threshold,
		email.Level,
		email.Timestamp.Format(time.RFC1123),
	)
}
