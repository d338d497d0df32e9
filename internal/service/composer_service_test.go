package service

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/maheshrc27/postgen/internal/models"
	"github.com/maheshrc27/postgen/internal/transfer"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubPostRepo struct {
	created []*models.ScheduledPost
	rows    map[string]*models.ScheduledPost
	removed []string
	err     error
}

func (r *stubPostRepo) Create(ctx context.Context, post *models.ScheduledPost) error {
	if r.err != nil {
		return r.err
	}
	r.created = append(r.created, post)
	return nil
}

func (r *stubPostRepo) GetByID(ctx context.Context, id string) (*models.ScheduledPost, error) {
	return r.rows[id], nil
}

func (r *stubPostRepo) ListByUserID(ctx context.Context, userID string) ([]*models.ScheduledPost, error) {
	return nil, nil
}

func (r *stubPostRepo) ListDue(ctx context.Context, now time.Time, limit int) ([]*models.ScheduledPost, error) {
	return nil, nil
}

func (r *stubPostRepo) Claim(ctx context.Context, id string, version int64, now, leaseUntil time.Time) (int64, bool, error) {
	return 0, false, nil
}

func (r *stubPostRepo) UpdateMedia(ctx context.Context, id string, claimed int64, mediaRef string) error {
	return nil
}

func (r *stubPostRepo) MarkSucceeded(ctx context.Context, id string, claimed int64, ranAt time.Time, retire bool) error {
	return nil
}

func (r *stubPostRepo) MarkFailed(ctx context.Context, id string, claimed int64, attempts int, nextAttemptAt time.Time, lastError string, retire bool) error {
	return nil
}

func (r *stubPostRepo) Deactivate(ctx context.Context, id string) error {
	r.removed = append(r.removed, id)
	return nil
}

type stubHistoryRepo struct {
	rows []*models.PostingHistory
}

func (r *stubHistoryRepo) Create(ctx context.Context, ph *models.PostingHistory) (int64, error) {
	r.rows = append(r.rows, ph)
	return int64(len(r.rows)), nil
}

func (r *stubHistoryRepo) ListByPostID(ctx context.Context, postID string) ([]*models.PostingHistory, error) {
	var out []*models.PostingHistory
	for _, row := range r.rows {
		if row.PostID == postID {
			out = append(out, row)
		}
	}
	return out, nil
}

type stubEnqueuer struct {
	ids   []string
	times []time.Time
	err   error
}

func (e *stubEnqueuer) EnqueuePost(ctx context.Context, postID string, runAt time.Time) error {
	e.ids = append(e.ids, postID)
	e.times = append(e.times, runAt)
	return e.err
}

func TestSchedule_Validation(t *testing.T) {
	repo := &stubPostRepo{}
	s := NewComposerService(repo, &stubHistoryRepo{}, nil)

	cases := map[string]*transfer.ScheduleRequest{
		"empty prompt":     {Prompt: " ", ScheduleTime: "2025-05-01T10:00"},
		"empty time":       {Prompt: "launch"},
		"bad time":         {Prompt: "launch", ScheduleTime: "next tuesday"},
		"bad style":        {Prompt: "launch", ScheduleTime: "2025-05-01T10:00", Style: "Crayon"},
		"bad platform":     {Prompt: "launch", ScheduleTime: "2025-05-01T10:00", SelectedPlatforms: []string{"myspace"}},
		"text no platform": {Prompt: "launch", ScheduleTime: "2025-05-01T10:00", Style: models.StyleTextOnly},
		"bad caption key":  {Prompt: "launch", ScheduleTime: "2025-05-01T10:00", Captions: map[string]string{"fax": "hi"}},
	}
	for name, req := range cases {
		_, err := s.Schedule(context.Background(), "", req)
		var validation *ValidationError
		assert.ErrorAs(t, err, &validation, name)
	}
	assert.Empty(t, repo.created)
}

func TestSchedule_StoresAndEnqueues(t *testing.T) {
	repo := &stubPostRepo{}
	queue := &stubEnqueuer{}
	s := NewComposerService(repo, &stubHistoryRepo{}, queue)

	post, err := s.Schedule(context.Background(), "user-1", &transfer.ScheduleRequest{
		Prompt:            " summer sale ",
		Style:             models.StyleTextOnly,
		ScheduleTime:      "2025-05-01T10:30",
		GeneratedMediaRef: "https://cdn.example.com/ignored.png",
		SelectedPlatforms: []string{"X", "linkedin", "twitter"},
		Captions:          map[string]string{"X": "50% off", "LinkedIn": "Our summer offer"},
	})
	require.NoError(t, err)

	require.Len(t, repo.created, 1)
	assert.Equal(t, "summer sale", post.Prompt)
	assert.Equal(t, time.Date(2025, 5, 1, 10, 30, 0, 0, time.UTC), post.ScheduleTime)
	assert.Equal(t, []string{"twitter", "linkedin"}, post.SelectedPlatforms)
	assert.Equal(t, map[string]string{"twitter": "50% off", "linkedin": "Our summer offer"}, post.Captions)
	assert.Nil(t, post.GeneratedMediaRef)
	assert.True(t, post.IsActive)
	require.NotNil(t, post.UserID)
	assert.Equal(t, "user-1", *post.UserID)
	assert.Len(t, post.ID, 36)

	assert.Equal(t, []string{post.ID}, queue.ids)
	assert.Equal(t, post.ScheduleTime, queue.times[0])
}

func TestSchedule_DefaultsAndFailures(t *testing.T) {
	repo := &stubPostRepo{}
	s := NewComposerService(repo, &stubHistoryRepo{}, &stubEnqueuer{err: errors.New("redis down")})

	post, err := s.Schedule(context.Background(), "", &transfer.ScheduleRequest{
		Prompt:            "launch",
		ScheduleTime:      "2025-05-01T10:30:00+02:00",
		GeneratedMediaRef: "data:image/png;base64,AAAA",
	})
	require.NoError(t, err, "enqueue failures fall back to the sweep")
	assert.Equal(t, models.StyleRealistic, post.Style)
	assert.Equal(t, time.Date(2025, 5, 1, 8, 30, 0, 0, time.UTC), post.ScheduleTime)
	assert.Equal(t, "data:image/png;base64,AAAA", post.MediaRef())
	assert.Nil(t, post.UserID)

	repo.err = errors.New("duplicate key")
	_, err = s.Schedule(context.Background(), "", &transfer.ScheduleRequest{Prompt: "launch", ScheduleTime: "2025-05-01T10:30"})
	assert.EqualError(t, err, "duplicate key")
}

func TestGetAndDeactivate_Ownership(t *testing.T) {
	owner := "user-1"
	repo := &stubPostRepo{rows: map[string]*models.ScheduledPost{
		"mine":    {ID: "mine", UserID: &owner},
		"unowned": {ID: "unowned"},
	}}
	s := NewComposerService(repo, &stubHistoryRepo{}, nil)

	_, err := s.Get(context.Background(), "user-2", "mine")
	assert.ErrorIs(t, err, ErrPostNotFound)
	_, err = s.Get(context.Background(), "user-1", "missing")
	assert.ErrorIs(t, err, ErrPostNotFound)

	post, err := s.Get(context.Background(), "user-2", "unowned")
	require.NoError(t, err)
	assert.Equal(t, "unowned", post.ID)

	assert.ErrorIs(t, s.Deactivate(context.Background(), "user-2", "mine"), ErrPostNotFound)
	require.NoError(t, s.Deactivate(context.Background(), "user-1", "mine"))
	assert.Equal(t, []string{"mine"}, repo.removed)
}

func TestList_NeverNil(t *testing.T) {
	posts, err := NewComposerService(&stubPostRepo{}, &stubHistoryRepo{}, nil).List(context.Background(), "")
	require.NoError(t, err)
	assert.NotNil(t, posts)
}

func TestEnhancePrompt(t *testing.T) {
	s := NewComposerService(&stubPostRepo{}, &stubHistoryRepo{}, nil)

	out, err := s.EnhancePrompt("  latte art ")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "latte art, "))

	_, err = s.EnhancePrompt("")
	assert.ErrorIs(t, err, ErrPromptRequired)
}

func TestHistory(t *testing.T) {
	owner := "user-1"
	repo := &stubPostRepo{rows: map[string]*models.ScheduledPost{"mine": {ID: "mine", UserID: &owner}}}
	history := &stubHistoryRepo{rows: []*models.PostingHistory{
		{PostID: "mine", Platform: "twitter", Status: models.PostingStatusPublished},
		{PostID: "other", Platform: "twitter", Status: models.PostingStatusFailed},
	}}
	s := NewComposerService(repo, history, nil)

	rows, err := s.History(context.Background(), "user-1", "mine")
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, models.PostingStatusPublished, rows[0].Status)

	_, err = s.History(context.Background(), "user-2", "mine")
	assert.ErrorIs(t, err, ErrPostNotFound)
}
