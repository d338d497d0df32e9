package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestScheduledPostIsDue(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name     string
		active   bool
		schedule time.Time
		want     bool
	}{
		{"active past", true, now.Add(-time.Minute), true},
		{"active exactly now", true, now, true},
		{"active future", true, now.Add(time.Second), false},
		{"inactive past", false, now.Add(-time.Hour), false},
		{"inactive future", false, now.Add(time.Hour), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := &ScheduledPost{IsActive: tt.active, ScheduleTime: tt.schedule}
			assert.Equal(t, tt.want, p.IsDue(now))
		})
	}
}

func TestScheduledPostIsRunnable(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	later := now.Add(time.Minute)
	earlier := now.Add(-time.Minute)

	p := &ScheduledPost{IsActive: true, ScheduleTime: earlier}
	assert.True(t, p.IsRunnable(now))

	p.NextAttemptAt = &later
	assert.False(t, p.IsRunnable(now), "backoff not elapsed")

	p.NextAttemptAt = &earlier
	p.LeaseUntil = &later
	assert.False(t, p.IsRunnable(now), "leased by another runner")

	p.LeaseUntil = &earlier
	assert.True(t, p.IsRunnable(now))
}

func TestNormalizePlatform(t *testing.T) {
	p, ok := NormalizePlatform(" Instagram ")
	assert.True(t, ok)
	assert.Equal(t, PlatformInstagram, p)

	p, ok = NormalizePlatform("X")
	assert.True(t, ok)
	assert.Equal(t, PlatformTwitter, p)

	_, ok = NormalizePlatform("myspace")
	assert.False(t, ok)
}

func TestIsValidStyle(t *testing.T) {
	assert.True(t, IsValidStyle("Cyberpunk"))
	assert.True(t, IsValidStyle(StyleTextOnly))
	assert.False(t, IsValidStyle("cyberpunk"))
	assert.False(t, IsValidStyle(""))
}
