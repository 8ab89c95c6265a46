package notifier

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestRateLimiter_FirstSendAllowed(t *testing.T) {
	limiter := NewRateLimiter(15 * time.Minute)

	assert.True(t, limiter.CanSend(1, "temperature"))
	assert.Equal(t, 0, limiter.MinutesUntilNext(1, "temperature"))
}

func TestRateLimiter_WindowSuppression(t *testing.T) {
	limiter := NewRateLimiter(15 * time.Minute)

	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	now := base
	limiter.SetNowFunc(func() time.Time { return now })

	limiter.RecordSent(1, "temperature")
	assert.False(t, limiter.CanSend(1, "temperature"))
	assert.Equal(t, 15, limiter.MinutesUntilNext(1, "temperature"))

	// 5 minutes in: still suppressed, 10 minutes remaining
	now = base.Add(5 * time.Minute)
	assert.False(t, limiter.CanSend(1, "temperature"))
	assert.Equal(t, 10, limiter.MinutesUntilNext(1, "temperature"))

	// partial minute rounds up
	now = base.Add(5*time.Minute + 30*time.Second)
	assert.Equal(t, 10, limiter.MinutesUntilNext(1, "temperature"))

	// window elapsed exactly: sending allowed again
	now = base.Add(15 * time.Minute)
	assert.True(t, limiter.CanSend(1, "temperature"))
	assert.Equal(t, 0, limiter.MinutesUntilNext(1, "temperature"))
}

func TestRateLimiter_KeysAreIndependent(t *testing.T) {
	limiter := NewRateLimiter(15 * time.Minute)

	limiter.RecordSent(1, "temperature")

	assert.False(t, limiter.CanSend(1, "temperature"))
	assert.True(t, limiter.CanSend(1, "humidity"))
	assert.True(t, limiter.CanSend(2, "temperature"))
}

func TestRateLimiter_MinutesZeroExactlyWhenCanSend(t *testing.T) {
	limiter := NewRateLimiter(15 * time.Minute)

	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	now := base
	limiter.SetNowFunc(func() time.Time { return now })

	limiter.RecordSent(3, "oxygen")

	for _, offset := range []time.Duration{0, time.Minute, 14 * time.Minute, 15 * time.Minute, time.Hour} {
		now = base.Add(offset)
		canSend := limiter.CanSend(3, "oxygen")
		minutes := limiter.MinutesUntilNext(3, "oxygen")
		assert.Equal(t, canSend, minutes == 0, "offset %v", offset)
	}
}

func TestRateLimiter_ConcurrentAccess(t *testing.T) {
	limiter := NewRateLimiter(15 * time.Minute)

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(deviceID int64) {
			defer wg.Done()
			limiter.CanSend(deviceID, "temperature")
			limiter.RecordSent(deviceID, "temperature")
			limiter.MinutesUntilNext(deviceID, "temperature")
		}(int64(i % 5))
	}
	wg.Wait()

	for deviceID := int64(0); deviceID < 5; deviceID++ {
		assert.False(t, limiter.CanSend(deviceID, "temperature"))
	}
}
