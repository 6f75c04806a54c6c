package queue

import (
	"context"
	"encoding/json"
	"sync"
	"testing"
	"time"

	"github.com/hibiken/asynq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/postpilot/postpilot/internal/models"
	"github.com/postpilot/postpilot/internal/transfer"
)

type fakeExecutor struct {
	mu       sync.Mutex
	executed []int64
	result   transfer.ExecutionResult
}

func (e *fakeExecutor) Execute(ctx context.Context, postID int64) transfer.ExecutionResult {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.executed = append(e.executed, postID)
	return e.result
}

func (e *fakeExecutor) Run(ctx context.Context, post *models.Post) transfer.ExecutionResult {
	return e.result
}

func executeTask(t *testing.T, postID int64) *asynq.Task {
	t.Helper()
	payload, err := json.Marshal(ExecutePostPayload{PostID: postID})
	require.NoError(t, err)
	return asynq.NewTask(TaskTypeExecutePost, payload)
}

func TestHandleExecutePostTask(t *testing.T) {
	ex := &fakeExecutor{result: transfer.ExecutionResult{Success: true}}
	q := NewQueue(nil, nil, ex)

	err := q.HandleExecutePostTask(context.Background(), executeTask(t, 42))

	require.NoError(t, err)
	assert.Equal(t, []int64{42}, ex.executed)
}

func TestHandleExecutePostTaskFailureTriggersRetry(t *testing.T) {
	ex := &fakeExecutor{result: transfer.ExecutionResult{Success: false, Message: "token expired"}}
	q := NewQueue(nil, nil, ex)

	err := q.HandleExecutePostTask(context.Background(), executeTask(t, 42))

	require.Error(t, err)
	assert.Equal(t, "token expired", err.Error())
}

func TestHandleExecutePostTaskBadPayload(t *testing.T) {
	ex := &fakeExecutor{result: transfer.ExecutionResult{Success: true}}
	q := NewQueue(nil, nil, ex)

	err := q.HandleExecutePostTask(context.Background(), asynq.NewTask(TaskTypeExecutePost, []byte("not json")))

	require.Error(t, err)
	assert.Empty(t, ex.executed)
}

func TestTaskKeyIsDeterministic(t *testing.T) {
	assert.Equal(t, "post-42", TaskKey(42))
	assert.Equal(t, TaskKey(7), TaskKey(7))
	assert.NotEqual(t, TaskKey(7), TaskKey(8))
}

func TestRetryDelayDoubles(t *testing.T) {
	assert.Equal(t, 5*time.Second, RetryDelay(1, nil, nil))
	assert.Equal(t, 10*time.Second, RetryDelay(2, nil, nil))
	assert.Equal(t, 20*time.Second, RetryDelay(3, nil, nil))
	assert.Equal(t, 80*time.Second, RetryDelay(5, nil, nil))
}
