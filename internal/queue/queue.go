package queue

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"
)

// Client enqueues delayed post executions on asynq.
type Client struct {
	client *asynq.Client
}

func NewClient(client *asynq.Client) *Client {
	return &Client{client: client}
}

// NewRunPostTask builds the task for postID. The task id is derived from the
// post so scheduling the same post twice leaves one pending task.
func NewRunPostTask(postID string, runAt time.Time) (*asynq.Task, []asynq.Option, error) {
	payload, err := json.Marshal(RunPostPayload{PostID: postID})
	if err != nil {
		return nil, nil, err
	}

	task := asynq.NewTask(TaskTypeRunPost, payload)
	opts := []asynq.Option{
		asynq.ProcessAt(runAt),
		asynq.TaskID("post:" + postID),
		asynq.MaxRetry(0),
	}
	return task, opts, nil
}

func (c *Client) EnqueuePost(ctx context.Context, postID string, runAt time.Time) error {
	task, opts, err := NewRunPostTask(postID, runAt)
	if err != nil {
		return err
	}

	info, err := c.client.EnqueueContext(ctx, task, opts...)
	if err != nil {
		if errors.Is(err, asynq.ErrTaskIDConflict) {
			slog.Info("task already scheduled", "post_id", postID)
			return nil
		}
		return err
	}

	slog.Info("task scheduled", "post_id", postID, "task_id", info.ID, "process_at", info.NextProcessAt)
	return nil
}
