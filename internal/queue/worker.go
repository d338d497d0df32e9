package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/hibiken/asynq"
)

// HandleRunPostTask runs the post named in the payload. Failures of the post
// itself are tracked by the runner's own retry state, so only payload and
// store errors are reported back to asynq.
func (j *Queue) HandleRunPostTask(ctx context.Context, task *asynq.Task) error {
	var payload RunPostPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		return fmt.Errorf("%v: %w", err, asynq.SkipRetry)
	}
	if payload.PostID == "" {
		return fmt.Errorf("empty post id: %w", asynq.SkipRetry)
	}

	summary, err := j.runner.RunOne(ctx, payload.PostID)
	if err != nil {
		slog.Error("error running scheduled post", "post_id", payload.PostID, "error", err)
		return err
	}

	for _, res := range summary.Results {
		slog.Info("scheduled post task finished", "post_id", res.ID, "status", res.Status, "details", res.Details)
	}
	if summary.Skipped > 0 {
		slog.Info("scheduled post task skipped", "post_id", payload.PostID)
	}
	return nil
}

// Mux registers the queue handlers.
func (j *Queue) Mux() *asynq.ServeMux {
	mux := asynq.NewServeMux()
	mux.HandleFunc(TaskTypeRunPost, j.HandleRunPostTask)
	return mux
}
