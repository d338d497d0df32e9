package job

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	config "github.com/maheshrc27/postgen/configs"
	"github.com/maheshrc27/postgen/internal/models"
	"github.com/maheshrc27/postgen/internal/repository"
	"github.com/maheshrc27/postgen/internal/service"
	"github.com/maheshrc27/postgen/internal/telemetry"
	"github.com/maheshrc27/postgen/internal/transfer"
)

type Mode string

const (
	// ModeStamp marks due posts as executed without contacting any provider.
	ModeStamp Mode = "stamp"
	// ModeRegenerate regenerates the post image and stores the new reference.
	ModeRegenerate Mode = "regenerate"
	// ModePublish fans the post out through the publishing provider.
	ModePublish Mode = "publish"
)

func ParseMode(s string) (Mode, error) {
	switch m := Mode(strings.ToLower(strings.TrimSpace(s))); m {
	case ModeStamp, ModeRegenerate, ModePublish:
		return m, nil
	default:
		return "", fmt.Errorf("unknown runner mode %q", s)
	}
}

// Runner executes due scheduled posts. Rows are claimed before any work so
// concurrent invocations never run the same row at once.
type Runner struct {
	pr        repository.ScheduledPostRepository
	ph        repository.PostingHistoryRepository
	images    service.ImageService
	publisher service.PublisherService

	mode            Mode
	batchSize       int
	lease           time.Duration
	retireOnSuccess bool
	retry           RetryPolicy

	now func() time.Time
}

func NewRunner(
	cfg config.Runner,
	pr repository.ScheduledPostRepository,
	ph repository.PostingHistoryRepository,
	images service.ImageService,
	publisher service.PublisherService) (*Runner, error) {
	mode, err := ParseMode(cfg.Mode)
	if err != nil {
		return nil, err
	}

	batchSize := cfg.BatchSize
	if batchSize <= 0 {
		batchSize = 100
	}
	lease := cfg.Lease
	if lease <= 0 {
		lease = 5 * time.Minute
	}

	return &Runner{
		pr:              pr,
		ph:              ph,
		images:          images,
		publisher:       publisher,
		mode:            mode,
		batchSize:       batchSize,
		lease:           lease,
		retireOnSuccess: cfg.RetireOnSuccess,
		retry: RetryPolicy{
			MaxAttempts: cfg.MaxAttempts,
			Initial:     cfg.BackoffInitial,
			Max:         cfg.BackoffMax,
		},
		now: time.Now,
	}, nil
}

func (r *Runner) Mode() Mode {
	return r.mode
}

// Run processes every due post in one batch. Per-post failures are recorded
// in the summary and never abort the batch.
func (r *Runner) Run(ctx context.Context) (*transfer.RunSummary, error) {
	telemetry.RunnerInvocations.Inc()

	posts, err := r.pr.ListDue(ctx, r.now(), r.batchSize)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch scheduled posts: %w", err)
	}

	slog.Info("found scheduled posts to process", "count", len(posts), "mode", r.mode)

	summary := &transfer.RunSummary{Results: []transfer.RunResult{}}
	for _, post := range posts {
		if err := ctx.Err(); err != nil {
			return summary, err
		}
		r.process(ctx, post, summary)
	}
	return summary, nil
}

// RunOne processes a single post if it is still runnable.
func (r *Runner) RunOne(ctx context.Context, postID string) (*transfer.RunSummary, error) {
	summary := &transfer.RunSummary{Results: []transfer.RunResult{}}

	post, err := r.pr.GetByID(ctx, postID)
	if err != nil {
		return nil, err
	}
	if post == nil || !post.IsRunnable(r.now()) {
		summary.Skipped++
		telemetry.RunnerPosts.WithLabelValues(telemetry.OutcomeSkipped).Inc()
		return summary, nil
	}

	r.process(ctx, post, summary)
	return summary, nil
}

// Sweep is the cron entry point.
func (r *Runner) Sweep() {
	ctx := context.Background()

	summary, err := r.Run(ctx)
	if err != nil {
		slog.Error("scheduled post sweep failed", "error", err)
		return
	}
	if summary.Processed > 0 || summary.Skipped > 0 {
		slog.Info("scheduled post sweep finished", "processed", summary.Processed, "skipped", summary.Skipped)
	}
}

func (r *Runner) process(ctx context.Context, post *models.ScheduledPost, summary *transfer.RunSummary) {
	now := r.now()
	deadline := time.Now().Add(r.lease)

	claimed, won, err := r.pr.Claim(ctx, post.ID, post.Version, now, now.Add(r.lease))
	if err != nil {
		slog.Error("error claiming post", "post_id", post.ID, "error", err)
		r.record(summary, post.ID, transfer.RunStatusError, fmt.Sprintf("claim failed: %v", err))
		return
	}
	if !won {
		r.skip(summary, post.ID)
		return
	}
	post.Version = claimed

	// The work must finish inside the lease; past it another runner may
	// claim the row.
	execCtx, cancel := context.WithDeadline(ctx, deadline)
	details, err := r.execute(execCtx, post)
	cancel()
	if errors.Is(err, repository.ErrClaimLost) {
		r.skip(summary, post.ID)
		return
	}
	if err != nil {
		r.fail(ctx, post, err, summary)
		return
	}

	if err := r.pr.MarkSucceeded(ctx, post.ID, claimed, r.now(), r.retireOnSuccess); err != nil {
		slog.Error("error marking post executed", "post_id", post.ID, "error", err)
		r.record(summary, post.ID, transfer.RunStatusError, fmt.Sprintf("executed but not recorded: %v", err))
		return
	}

	slog.Info("successfully processed scheduled post", "post_id", post.ID)
	r.record(summary, post.ID, transfer.RunStatusSuccess, details)
}

func (r *Runner) skip(summary *transfer.RunSummary, id string) {
	slog.Info("post claimed by another runner", "post_id", id)
	summary.Skipped++
	telemetry.RunnerPosts.WithLabelValues(telemetry.OutcomeSkipped).Inc()
}

func (r *Runner) fail(ctx context.Context, post *models.ScheduledPost, cause error, summary *transfer.RunSummary) {
	attempts := post.Attempts + 1
	exhausted := r.retry.Exhausted(attempts)
	nextAttempt := r.now().Add(r.retry.Backoff(attempts))

	slog.Error("error processing post", "post_id", post.ID, "attempt", attempts, "error", cause)

	if err := r.pr.MarkFailed(ctx, post.ID, post.Version, attempts, nextAttempt, cause.Error(), exhausted); err != nil {
		slog.Error("error recording post failure", "post_id", post.ID, "error", err)
	}

	details := cause.Error()
	if exhausted {
		details = fmt.Sprintf("%s (giving up after %d attempts)", details, attempts)
	}
	r.record(summary, post.ID, transfer.RunStatusError, details)
}

func (r *Runner) record(summary *transfer.RunSummary, id, status, details string) {
	summary.Processed++
	summary.Results = append(summary.Results, transfer.RunResult{ID: id, Status: status, Details: details})

	outcome := telemetry.OutcomeSuccess
	if status != transfer.RunStatusSuccess {
		outcome = telemetry.OutcomeError
	}
	telemetry.RunnerPosts.WithLabelValues(outcome).Inc()
}

func (r *Runner) execute(ctx context.Context, post *models.ScheduledPost) (string, error) {
	switch r.mode {
	case ModeRegenerate:
		if post.Style == models.StyleTextOnly {
			return "Text-only post, nothing to regenerate", nil
		}
		ref, err := r.regenerate(ctx, post)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("Image regenerated: %s", abbreviate(ref)), nil
	case ModePublish:
		return r.publish(ctx, post)
	default:
		return "Post marked as executed (no platform posting)", nil
	}
}

func (r *Runner) regenerate(ctx context.Context, post *models.ScheduledPost) (string, error) {
	image, err := r.images.Generate(ctx, post.Prompt, post.Style)
	if err != nil {
		return "", err
	}
	if err := r.pr.UpdateMedia(ctx, post.ID, post.Version, image.Image); err != nil {
		return "", fmt.Errorf("error saving generated media: %w", err)
	}
	post.GeneratedMediaRef = &image.Image
	return image.Image, nil
}

var errInlineMedia = errors.New("media is an inline data URI; configure R2 storage to publish images")

func (r *Runner) publish(ctx context.Context, post *models.ScheduledPost) (string, error) {
	platforms := service.MapPlatforms(post.SelectedPlatforms)
	if len(platforms) == 0 {
		return "", service.ErrNoPlatforms
	}

	req := transfer.PublishRequest{
		Platforms: platforms,
		Captions:  map[string]string{},
	}

	if post.Style != models.StyleTextOnly {
		ref := post.MediaRef()
		if ref == "" {
			var err error
			if ref, err = r.regenerate(ctx, post); err != nil {
				return "", err
			}
		}
		if strings.HasPrefix(ref, "data:") {
			return "", errInlineMedia
		}
		req.MediaURLs = []string{ref}
	}

	for _, p := range platforms {
		if caption := strings.TrimSpace(post.Captions[p]); caption != "" {
			req.Captions[p] = caption
			if req.Post == "" {
				req.Post = caption
			}
		}
	}
	if req.Post == "" {
		req.Post = post.Prompt
	}

	resp, err := r.publisher.Publish(ctx, req)
	if err != nil {
		for _, p := range platforms {
			r.history(ctx, &models.PostingHistory{PostID: post.ID, Platform: p, Status: models.PostingStatusFailed, ErrorMessage: err.Error()})
		}
		return "", err
	}

	for _, id := range resp.PostIDs {
		r.history(ctx, &models.PostingHistory{PostID: post.ID, Platform: id.Platform, Status: models.PostingStatusPublished, ExternalID: id.ID, PostURL: id.PostURL})
	}
	for _, e := range resp.Errors {
		r.history(ctx, &models.PostingHistory{PostID: post.ID, Platform: e.Platform, Status: models.PostingStatusFailed, ErrorMessage: e.Message})
	}

	return fmt.Sprintf("Published to %s", strings.Join(platforms, ", ")), nil
}

func (r *Runner) history(ctx context.Context, ph *models.PostingHistory) {
	if r.ph == nil {
		return
	}
	// Outcomes are still recorded when the execution deadline has passed.
	if _, err := r.ph.Create(context.WithoutCancel(ctx), ph); err != nil {
		slog.Error("error saving posting history", "post_id", ph.PostID, "platform", ph.Platform, "error", err)
	}
}

func abbreviate(ref string) string {
	if len(ref) > 64 {
		return ref[:64] + "..."
	}
	return ref
}
