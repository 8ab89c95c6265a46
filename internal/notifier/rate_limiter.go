package notifier

import (
	"fmt"
	"math"
	"sync"
	"time"
)

// RateLimiter suppresses repeat notification e-mails for the same
// (device, sensor type) pair within a fixed window. State is in-memory and
// process-local: a restart resets every key to "may send immediately".
//
// Check and record are separate calls: an e-mail is only recorded after the
// mailer confirms delivery, so a failed send does not burn the window.
type RateLimiter struct {
	mu     sync.Mutex
	window time.Duration
	sent   map[string]time.Time
	now    func() time.Time
}

// NewRateLimiter creates a limiter with the given suppression window.
func NewRateLimiter(window time.Duration) *RateLimiter {
	return &RateLimiter{
		window: window,
		sent:   make(map[string]time.Time),
		now:    time.Now,
	}
}

func limiterKey(deviceID int64, sensorType string) string {
	return fmt.Sprintf("%d-%s", deviceID, sensorType)
}

// CanSend reports whether an e-mail may be sent for the pair: true when the
// pair was never recorded or the window has elapsed.
func (r *RateLimiter) CanSend(deviceID int64, sensorType string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	lastSent, ok := r.sent[limiterKey(deviceID, sensorType)]
	if !ok {
		return true
	}
	return r.now().Sub(lastSent) >= r.window
}

// RecordSent marks the pair as notified now, overwriting any prior timestamp.
func (r *RateLimiter) RecordSent(deviceID int64, sensorType string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sent[limiterKey(deviceID, sensorType)] = r.now()
}

// MinutesUntilNext returns the whole minutes remaining in the suppression
// window, rounded up, or 0 when sending is allowed. Diagnostics only.
func (r *RateLimiter) MinutesUntilNext(deviceID int64, sensorType string) int {
	r.mu.Lock()
	defer r.mu.Unlock()

	lastSent, ok := r.sent[limiterKey(deviceID, sensorType)]
	if !ok {
		return 0
	}

	remaining := r.window - r.now().Sub(lastSent)
	if remaining <= 0 {
		return 0
	}
	return int(math.Ceil(remaining.Minutes()))
}

// SetNowFunc replaces the clock. Tests only.
func (r *RateLimiter) SetNowFunc(fn func() time.Time) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.now = fn
}
