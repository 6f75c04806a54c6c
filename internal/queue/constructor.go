package queue

import (
	"fmt"

	"github.com/hibiken/asynq"
	"github.com/postpilot/postpilot/internal/service"
)

// Queue is the asynchronous dispatch path. It carries only post ids; the
// executor re-reads everything else from the post store when the task runs.
type Queue struct {
	client    *asynq.Client
	inspector *asynq.Inspector
	executor  service.ExecutorService
}

func NewQueue(client *asynq.Client, inspector *asynq.Inspector, executor service.ExecutorService) *Queue {
	return &Queue{
		client:    client,
		inspector: inspector,
		executor:  executor,
	}
}

const (
	TaskTypeExecutePost = "post:execute"

	queueName  = "default"
	maxRetries = 5
)

type ExecutePostPayload struct {
	PostID int64 `json:"post_id"`
}

// TaskKey is the deterministic task id for a post. Re-enqueueing the same
// post collides on this key instead of producing a duplicate.
func TaskKey(postID int64) string {
	return fmt.Sprintf("post-%d", postID)
}
