package queue

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/hibiken/asynq"
)

// HandleExecutePostTask runs a queued post through the executor. A failed
// result is surfaced as an error so asynq's retry policy takes over; after
// the attempt ceiling the task lands in the archive for inspection.
func (q *Queue) HandleExecutePostTask(ctx context.Context, task *asynq.Task) error {
	var payload ExecutePostPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		return err
	}

	result := q.executor.Execute(ctx, payload.PostID)
	if !result.Success {
		return errors.New(result.Message)
	}

	return nil
}

// RetryDelay backs off exponentially from a 5 second base.
func RetryDelay(n int, err error, task *asynq.Task) time.Duration {
	delay := 5 * time.Second
	for i := 1; i < n; i++ {
		delay *= 2
	}
	return delay
}
