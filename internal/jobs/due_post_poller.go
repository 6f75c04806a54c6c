package job

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/postpilot/postpilot/internal/models"
	"github.com/postpilot/postpilot/internal/repository"
	"github.com/postpilot/postpilot/internal/service"
)

// DuePostPoller is the timer-driven dispatch path. Each tick selects pending
// posts whose scheduled time has passed and hands them to the executor
// without waiting on the publish itself; the executor's claim keeps a post
// from being picked up again once it is in flight.
type DuePostPoller struct {
	pr repository.PostRepository
	ex service.ExecutorService
}

func NewDuePostPoller(pr repository.PostRepository, ex service.ExecutorService) *DuePostPoller {
	return &DuePostPoller{
		pr: pr,
		ex: ex,
	}
}

func (p *DuePostPoller) DispatchDue() {
	ctx := context.Background()

	posts, err := p.pr.ListDue(ctx, models.PostStatusPending, time.Now())
	if err != nil {
		slog.Info(err.Error())
		return
	}

	concurrencyLimit := 10
	semaphore := make(chan struct{}, concurrencyLimit)

	for _, post := range posts {
		semaphore <- struct{}{}

		go func(post *models.Post) {
			defer func() { <-semaphore }()

			result := p.ex.Execute(ctx, post.ID)
			if !result.Success {
				slog.Info(fmt.Sprintf("dispatch of post %d failed: %s", post.ID, result.Message))
			}
		}(post)
	}
}
