package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/maheshrc27/postgen/internal/models"
	"github.com/maheshrc27/postgen/internal/repository"
	"github.com/maheshrc27/postgen/internal/transfer"
)

// Enqueuer hands a stored post to the delayed execution queue.
type Enqueuer interface {
	EnqueuePost(ctx context.Context, postID string, runAt time.Time) error
}

type ComposerService interface {
	Schedule(ctx context.Context, userID string, req *transfer.ScheduleRequest) (*models.ScheduledPost, error)
	List(ctx context.Context, userID string) ([]*models.ScheduledPost, error)
	Get(ctx context.Context, userID, postID string) (*models.ScheduledPost, error)
	Deactivate(ctx context.Context, userID, postID string) error
	History(ctx context.Context, userID, postID string) ([]*models.PostingHistory, error)
	EnhancePrompt(prompt string) (string, error)
}

type composerService struct {
	pr    repository.ScheduledPostRepository
	ph    repository.PostingHistoryRepository
	queue Enqueuer
}

func NewComposerService(pr repository.ScheduledPostRepository, ph repository.PostingHistoryRepository, queue Enqueuer) ComposerService {
	return &composerService{
		pr:    pr,
		ph:    ph,
		queue: queue,
	}
}

var ErrPostNotFound = errors.New("Post doesn't exist")

// Schedule time layouts accepted from callers. The last one is what an
// HTML datetime-local input produces.
var scheduleLayouts = []string{time.RFC3339, "2006-01-02T15:04:05", "2006-01-02T15:04"}

func parseScheduleTime(value string) (time.Time, error) {
	for _, layout := range scheduleLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, invalid("invalid schedule time format: %q", value)
}

func (s *composerService) Schedule(ctx context.Context, userID string, req *transfer.ScheduleRequest) (*models.ScheduledPost, error) {
	post, err := buildPost(userID, req)
	if err != nil {
		slog.Info(err.Error())
		return nil, err
	}

	if err := s.pr.Create(ctx, post); err != nil {
		return nil, err
	}

	if s.queue != nil {
		if err := s.queue.EnqueuePost(ctx, post.ID, post.ScheduleTime); err != nil {
			// The periodic sweep still picks the row up.
			slog.Error("failed to enqueue scheduled post", "post_id", post.ID, "error", err)
		}
	}

	slog.Info("post scheduled", "post_id", post.ID, "schedule_time", post.ScheduleTime)
	return post, nil
}

func buildPost(userID string, req *transfer.ScheduleRequest) (*models.ScheduledPost, error) {
	if req == nil {
		return nil, invalid("post creation data is nil")
	}
	prompt := strings.TrimSpace(req.Prompt)
	if prompt == "" {
		return nil, invalid("prompt cannot be empty")
	}
	if strings.TrimSpace(req.ScheduleTime) == "" {
		return nil, invalid("schedule time cannot be empty")
	}
	scheduleTime, err := parseScheduleTime(strings.TrimSpace(req.ScheduleTime))
	if err != nil {
		return nil, err
	}

	style := req.Style
	if style == "" {
		style = models.StyleRealistic
	}
	if !models.IsValidStyle(style) {
		return nil, invalid("unsupported style %q", style)
	}

	platforms := make([]string, 0, len(req.SelectedPlatforms))
	seen := map[string]struct{}{}
	for _, p := range req.SelectedPlatforms {
		normalized, ok := models.NormalizePlatform(p)
		if !ok {
			return nil, invalid("unsupported platform %q", p)
		}
		if _, dup := seen[normalized]; dup {
			continue
		}
		seen[normalized] = struct{}{}
		platforms = append(platforms, normalized)
	}
	if style == models.StyleTextOnly && len(platforms) == 0 {
		return nil, invalid("select at least one platform for a text post")
	}

	captions := make(map[string]string, len(req.Captions))
	for platform, caption := range req.Captions {
		normalized, ok := models.NormalizePlatform(platform)
		if !ok {
			return nil, invalid("unsupported caption platform %q", platform)
		}
		captions[normalized] = caption
	}

	post := &models.ScheduledPost{
		ID:                uuid.NewString(),
		Prompt:            prompt,
		Style:             style,
		ScheduleTime:      scheduleTime,
		Captions:          captions,
		SelectedPlatforms: platforms,
		IsActive:          true,
	}
	if userID != "" {
		post.UserID = &userID
	}
	if ref := strings.TrimSpace(req.GeneratedMediaRef); ref != "" && style != models.StyleTextOnly {
		post.GeneratedMediaRef = &ref
	}
	return post, nil
}

func (s *composerService) List(ctx context.Context, userID string) ([]*models.ScheduledPost, error) {
	posts, err := s.pr.ListByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("Error getting scheduled posts")
	}
	if posts == nil {
		posts = []*models.ScheduledPost{}
	}
	return posts, nil
}

func (s *composerService) Get(ctx context.Context, userID, postID string) (*models.ScheduledPost, error) {
	if postID == "" {
		return nil, invalid("post id is not valid")
	}

	post, err := s.pr.GetByID(ctx, postID)
	if err != nil {
		return nil, fmt.Errorf("Error getting post info")
	}
	if post == nil || !ownedBy(post, userID) {
		return nil, ErrPostNotFound
	}
	return post, nil
}

func (s *composerService) Deactivate(ctx context.Context, userID, postID string) error {
	if _, err := s.Get(ctx, userID, postID); err != nil {
		return err
	}
	if err := s.pr.Deactivate(ctx, postID); err != nil {
		return fmt.Errorf("Error removing post")
	}
	return nil
}

// History lists the per-platform publish attempts recorded for a post.
func (s *composerService) History(ctx context.Context, userID, postID string) ([]*models.PostingHistory, error) {
	if _, err := s.Get(ctx, userID, postID); err != nil {
		return nil, err
	}
	history, err := s.ph.ListByPostID(ctx, postID)
	if err != nil {
		return nil, fmt.Errorf("Error getting posting history")
	}
	if history == nil {
		history = []*models.PostingHistory{}
	}
	return history, nil
}

// ownedBy is true for unowned posts and for posts owned by userID.
func ownedBy(post *models.ScheduledPost, userID string) bool {
	return post.UserID == nil || *post.UserID == userID
}

var promptEnhancements = []string{
	"professional, high-quality, studio lighting, vibrant colors, eye-catching",
	"modern design, clean aesthetic, bold typography, engaging composition",
	"premium look, sleek design, dynamic angle, attention-grabbing",
	"creative layout, trendy style, sharp details, instagram-worthy",
	"polished finish, contemporary vibe, striking visual, social media optimized",
	"artistic flair, sophisticated design, vivid colors, scroll-stopping",
}

// EnhancePrompt appends a random styling suffix to the prompt.
func (s *composerService) EnhancePrompt(prompt string) (string, error) {
	prompt = strings.TrimSpace(prompt)
	if prompt == "" {
		return "", ErrPromptRequired
	}
	enhancement := promptEnhancements[rand.Intn(len(promptEnhancements))]
	return fmt.Sprintf("%s, %s", prompt, enhancement), nil
}
