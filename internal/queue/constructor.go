package queue

import (
	"context"

	"github.com/maheshrc27/postgen/internal/transfer"
)

// PostRunner executes a single scheduled post when its task fires.
type PostRunner interface {
	RunOne(ctx context.Context, postID string) (*transfer.RunSummary, error)
}

type Queue struct {
	runner PostRunner
}

func NewQueue(runner PostRunner) *Queue {
	return &Queue{
		runner: runner,
	}
}

const TaskTypeRunPost = "scheduled_post:run"

type RunPostPayload struct {
	PostID string `json:"post_id"`
}
