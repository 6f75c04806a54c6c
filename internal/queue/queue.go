package queue

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/hibiken/asynq"
	"github.com/postpilot/postpilot/internal/transfer"
)

func (q *Queue) Enqueue(postID int64, delay time.Duration) error {
	taskPayload, err := json.Marshal(ExecutePostPayload{PostID: postID})
	if err != nil {
		return err
	}

	task := asynq.NewTask(TaskTypeExecutePost, taskPayload)

	_, err = q.client.Enqueue(task,
		asynq.Queue(queueName),
		asynq.TaskID(TaskKey(postID)),
		asynq.MaxRetry(maxRetries),
		asynq.ProcessIn(delay),
	)
	if errors.Is(err, asynq.ErrTaskIDConflict) {
		// Same post already queued; deduplication, not an error.
		log.Printf("Task for post %d already enqueued", postID)
		return nil
	}
	if err != nil {
		return err
	}

	log.Printf("Task scheduled: post %d in %s", postID, delay)
	return nil
}

// Cancel removes a queued task for the post. Returns false when no task was
// waiting, which deletion treats as already-dispatched.
func (q *Queue) Cancel(postID int64) (bool, error) {
	err := q.inspector.DeleteTask(queueName, TaskKey(postID))
	if err != nil {
		if errors.Is(err, asynq.ErrTaskNotFound) || errors.Is(err, asynq.ErrQueueNotFound) {
			return false, nil
		}
		return false, fmt.Errorf("error cancelling task for post %d: %w", postID, err)
	}
	return true, nil
}

func (q *Queue) Stats() (*transfer.QueueStats, error) {
	info, err := q.inspector.GetQueueInfo(queueName)
	if err != nil {
		return nil, fmt.Errorf("error reading queue info: %w", err)
	}

	return &transfer.QueueStats{
		Waiting:   info.Pending + info.Scheduled + info.Retry,
		Active:    info.Active,
		Completed: info.Completed,
		Failed:    info.Archived,
	}, nil
}
