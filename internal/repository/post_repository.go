package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/lib/pq"
	"github.com/maheshrc27/postgen/internal/models"
)

type ScheduledPostRepository interface {
	Create(ctx context.Context, post *models.ScheduledPost) error
	GetByID(ctx context.Context, id string) (*models.ScheduledPost, error)
	ListByUserID(ctx context.Context, userID string) ([]*models.ScheduledPost, error)
	ListDue(ctx context.Context, now time.Time, limit int) ([]*models.ScheduledPost, error)
	Claim(ctx context.Context, id string, version int64, now, leaseUntil time.Time) (int64, bool, error)
	UpdateMedia(ctx context.Context, id string, claimed int64, mediaRef string) error
	MarkSucceeded(ctx context.Context, id string, claimed int64, ranAt time.Time, retire bool) error
	MarkFailed(ctx context.Context, id string, claimed int64, attempts int, nextAttemptAt time.Time, lastError string, retire bool) error
	Deactivate(ctx context.Context, id string) error
}

// ErrClaimLost is returned by writes made under a claim that another runner
// has since taken over.
var ErrClaimLost = errors.New("claim lost: post was reclaimed by another runner")

type scheduledPostRepository struct {
	db *sql.DB
}

func NewScheduledPostRepository(db *sql.DB) ScheduledPostRepository {
	return &scheduledPostRepository{db: db}
}

const postColumns = `id, user_id, prompt, style, schedule_time, generated_media_ref, captions, selected_platforms,
	is_active, last_run, attempts, next_attempt_at, last_error, lease_until, version, created_at, updated_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanPost(row rowScanner) (*models.ScheduledPost, error) {
	var (
		post          models.ScheduledPost
		userID        sql.NullString
		mediaRef      sql.NullString
		captions      []byte
		platforms     []string
		lastRun       sql.NullTime
		nextAttemptAt sql.NullTime
		lastError     sql.NullString
		leaseUntil    sql.NullTime
	)

	err := row.Scan(&post.ID, &userID, &post.Prompt, &post.Style, &post.ScheduleTime, &mediaRef, &captions,
		pq.Array(&platforms), &post.IsActive, &lastRun, &post.Attempts, &nextAttemptAt, &lastError,
		&leaseUntil, &post.Version, &post.CreatedAt, &post.UpdatedAt)
	if err != nil {
		return nil, err
	}

	post.Captions = map[string]string{}
	if len(captions) > 0 {
		if err := json.Unmarshal(captions, &post.Captions); err != nil {
			return nil, fmt.Errorf("decode captions for post %s: %w", post.ID, err)
		}
	}
	post.SelectedPlatforms = platforms
	post.UserID = stringPtr(userID)
	post.GeneratedMediaRef = stringPtr(mediaRef)
	post.LastError = stringPtr(lastError)
	post.LastRun = timePtr(lastRun)
	post.NextAttemptAt = timePtr(nextAttemptAt)
	post.LeaseUntil = timePtr(leaseUntil)

	return &post, nil
}

func (r *scheduledPostRepository) Create(ctx context.Context, post *models.ScheduledPost) error {
	captions := post.Captions
	if captions == nil {
		captions = map[string]string{}
	}
	captionsJSON, err := json.Marshal(captions)
	if err != nil {
		return fmt.Errorf("encode captions: %w", err)
	}

	query := `
		INSERT INTO scheduled_posts (id, user_id, prompt, style, schedule_time, generated_media_ref, captions, selected_platforms, is_active)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING created_at, updated_at
	`

	err = r.db.QueryRowContext(ctx, query, post.ID, post.UserID, post.Prompt, post.Style, post.ScheduleTime,
		post.GeneratedMediaRef, captionsJSON, pq.Array(post.SelectedPlatforms), post.IsActive).
		Scan(&post.CreatedAt, &post.UpdatedAt)
	if err != nil {
		slog.Info(err.Error())
		return err
	}

	return nil
}

func (r *scheduledPostRepository) GetByID(ctx context.Context, id string) (*models.ScheduledPost, error) {
	query := `SELECT ` + postColumns + ` FROM scheduled_posts WHERE id = $1`

	post, err := scanPost(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		slog.Info(err.Error())
		return nil, err
	}

	return post, nil
}

// ListByUserID returns the caller's posts plus unowned ones.
func (r *scheduledPostRepository) ListByUserID(ctx context.Context, userID string) ([]*models.ScheduledPost, error) {
	query := `SELECT ` + postColumns + ` FROM scheduled_posts WHERE user_id IS NULL OR user_id = $1 ORDER BY schedule_time DESC`
	return r.list(ctx, query, userID)
}

// ListDue returns active rows whose schedule time has passed, skipping rows
// still backing off after a failure and rows leased by another runner.
func (r *scheduledPostRepository) ListDue(ctx context.Context, now time.Time, limit int) ([]*models.ScheduledPost, error) {
	query := `SELECT ` + postColumns + ` FROM scheduled_posts
		WHERE is_active = TRUE
			AND schedule_time <= $1
			AND (next_attempt_at IS NULL OR next_attempt_at <= $1)
			AND (lease_until IS NULL OR lease_until <= $1)
		ORDER BY schedule_time ASC
		LIMIT $2`
	return r.list(ctx, query, now, limit)
}

func (r *scheduledPostRepository) list(ctx context.Context, query string, args ...any) ([]*models.ScheduledPost, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		slog.Info(err.Error())
		return nil, err
	}
	defer rows.Close()

	var posts []*models.ScheduledPost
	for rows.Next() {
		post, err := scanPost(rows)
		if err != nil {
			slog.Info(err.Error())
			return nil, err
		}
		posts = append(posts, post)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return posts, nil
}

// Claim takes a lease on the row if nobody bumped its version since it was
// read and no unexpired lease is held. It returns the claimed version, which
// every later write for this run must present.
func (r *scheduledPostRepository) Claim(ctx context.Context, id string, version int64, now, leaseUntil time.Time) (int64, bool, error) {
	query := `
		UPDATE scheduled_posts
		SET lease_until = $1,
			version = version + 1,
			updated_at = $2
		WHERE id = $3
			AND version = $4
			AND is_active = TRUE
			AND (lease_until IS NULL OR lease_until <= $2)
		RETURNING version
	`
	var claimed int64
	err := r.db.QueryRowContext(ctx, query, leaseUntil, now, id, version).Scan(&claimed)
	if err != nil {
		if err == sql.ErrNoRows {
			return 0, false, nil
		}
		slog.Info(err.Error())
		return 0, false, err
	}
	return claimed, true, nil
}

// execClaimed runs a write guarded by the claimed version and reports
// ErrClaimLost when the row has moved on.
func (r *scheduledPostRepository) execClaimed(ctx context.Context, query string, args ...any) error {
	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		slog.Info(err.Error())
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrClaimLost
	}
	return nil
}

func (r *scheduledPostRepository) UpdateMedia(ctx context.Context, id string, claimed int64, mediaRef string) error {
	query := `UPDATE scheduled_posts SET generated_media_ref = $1, updated_at = $2 WHERE id = $3 AND version = $4`
	return r.execClaimed(ctx, query, mediaRef, time.Now(), id, claimed)
}

func (r *scheduledPostRepository) MarkSucceeded(ctx context.Context, id string, claimed int64, ranAt time.Time, retire bool) error {
	query := `
		UPDATE scheduled_posts
		SET last_run = $1,
			attempts = 0,
			next_attempt_at = NULL,
			last_error = NULL,
			lease_until = NULL,
			is_active = is_active AND NOT $2,
			updated_at = $1
		WHERE id = $3 AND version = $4
	`
	return r.execClaimed(ctx, query, ranAt, retire, id, claimed)
}

func (r *scheduledPostRepository) MarkFailed(ctx context.Context, id string, claimed int64, attempts int, nextAttemptAt time.Time, lastError string, retire bool) error {
	query := `
		UPDATE scheduled_posts
		SET attempts = $1,
			next_attempt_at = $2,
			last_error = $3,
			lease_until = NULL,
			is_active = is_active AND NOT $4,
			updated_at = $5
		WHERE id = $6 AND version = $7
	`
	return r.execClaimed(ctx, query, attempts, nextAttemptAt, lastError, retire, time.Now(), id, claimed)
}

func (r *scheduledPostRepository) Deactivate(ctx context.Context, id string) error {
	query := `UPDATE scheduled_posts SET is_active = FALSE, updated_at = $1 WHERE id = $2`
	_, err := r.db.ExecContext(ctx, query, time.Now(), id)
	if err != nil {
		slog.Info(err.Error())
		return err
	}
	return nil
}

func stringPtr(s sql.NullString) *string {
	if s.Valid {
		return &s.String
	}
	return nil
}

func timePtr(t sql.NullTime) *time.Time {
	if t.Valid {
		return &t.Time
	}
	return nil
}
