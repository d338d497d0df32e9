package models

import "time"

type PostingHistory struct {
	ID           int64     `db:"id" json:"id"`
	PostID       string    `db:"post_id" json:"post_id"`
	Platform     string    `db:"platform" json:"platform"`
	Status       string    `db:"status" json:"status"`
	ExternalID   string    `db:"external_id" json:"external_id"`
	PostURL      string    `db:"post_url" json:"post_url"`
	ErrorMessage string    `db:"error_message" json:"error_message"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
}

const (
	PostingStatusPublished = "published"
	PostingStatusFailed    = "failed"
)
