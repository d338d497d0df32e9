package models

import (
	"strings"
	"time"
)

type ScheduledPost struct {
	ID                string            `db:"id" json:"id"`
	UserID            *string           `db:"user_id" json:"user_id,omitempty"`
	Prompt            string            `db:"prompt" json:"prompt"`
	Style             string            `db:"style" json:"style"`
	ScheduleTime      time.Time         `db:"schedule_time" json:"schedule_time"`
	GeneratedMediaRef *string           `db:"generated_media_ref" json:"generated_media_ref"`
	Captions          map[string]string `db:"captions" json:"captions"`
	SelectedPlatforms []string          `db:"selected_platforms" json:"selected_platforms"`
	IsActive          bool              `db:"is_active" json:"is_active"`
	LastRun           *time.Time        `db:"last_run" json:"last_run"`
	Attempts          int               `db:"attempts" json:"attempts"`
	NextAttemptAt     *time.Time        `db:"next_attempt_at" json:"next_attempt_at,omitempty"`
	LastError         *string           `db:"last_error" json:"last_error,omitempty"`
	LeaseUntil        *time.Time        `db:"lease_until" json:"-"`
	Version           int64             `db:"version" json:"-"`
	CreatedAt         time.Time         `db:"created_at" json:"created_at"`
	UpdatedAt         time.Time         `db:"updated_at" json:"updated_at"`
}

// IsDue reports whether the post is active and its schedule time has passed.
func (p *ScheduledPost) IsDue(now time.Time) bool {
	return p.IsActive && !p.ScheduleTime.After(now)
}

// IsRunnable is IsDue plus the retry backoff gate and the claim lease.
func (p *ScheduledPost) IsRunnable(now time.Time) bool {
	if !p.IsDue(now) {
		return false
	}
	if p.NextAttemptAt != nil && p.NextAttemptAt.After(now) {
		return false
	}
	if p.LeaseUntil != nil && p.LeaseUntil.After(now) {
		return false
	}
	return true
}

// MediaRef returns the generated media reference or "" for text-only posts.
func (p *ScheduledPost) MediaRef() string {
	if p.GeneratedMediaRef == nil {
		return ""
	}
	return *p.GeneratedMediaRef
}

const StyleTextOnly = "TextOnly"

const StyleRealistic = "Realistic"

var Styles = []string{
	StyleRealistic,
	"3D Render",
	"Anime",
	"Digital Art",
	"Oil Painting",
	"Watercolor",
	"Cyberpunk",
	"Fantasy",
	"Minimalist",
	"Abstract",
}

func IsValidStyle(style string) bool {
	if style == StyleTextOnly {
		return true
	}
	for _, s := range Styles {
		if s == style {
			return true
		}
	}
	return false
}

const (
	PlatformInstagram = "instagram"
	PlatformFacebook  = "facebook"
	PlatformTwitter   = "twitter"
	PlatformLinkedIn  = "linkedin"
)

var Platforms = []string{PlatformInstagram, PlatformFacebook, PlatformTwitter, PlatformLinkedIn}

// NormalizePlatform lowercases and trims a platform id and reports whether it
// is supported. "x" is accepted as an alias for twitter.
func NormalizePlatform(platform string) (string, bool) {
	p := strings.ToLower(strings.TrimSpace(platform))
	if p == "x" {
		p = PlatformTwitter
	}
	for _, supported := range Platforms {
		if supported == p {
			return p, true
		}
	}
	return "", false
}
