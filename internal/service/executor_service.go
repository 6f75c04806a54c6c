package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/postpilot/postpilot/internal/models"
	"github.com/postpilot/postpilot/internal/repository"
	"github.com/postpilot/postpilot/internal/transfer"
	"github.com/postpilot/postpilot/pkg/utils"
)

// ExecutorService runs the publish pipeline for a single post. Every
// dispatch path (poller, queue, creation) funnels through it; it is the only
// component that moves a post through processing into a terminal state.
//
// Strategy errors never escape as errors. Both dispatchers treat a returned
// failure and a thrown one identically, so the executor normalizes
// everything into ExecutionResult and a stored error status.
type ExecutorService interface {
	// Execute claims a pending post and runs it. The claim is a conditional
	// update; the loser of a concurrent race observes no rows affected and
	// returns a no-op result without touching any strategy.
	Execute(ctx context.Context, postID int64) transfer.ExecutionResult
	// Run executes a post the caller already owns. The creation path inserts
	// immediate posts directly in processing state and calls Run; dispatchers
	// must go through Execute instead.
	Run(ctx context.Context, post *models.Post) transfer.ExecutionResult
}

type executorService struct {
	pr      repository.PostRepository
	pm      repository.PostMediaRepository
	ac      repository.AccountRepository
	ma      repository.MediaAssetRepository
	storage ObjectStorage
	local   LocalPublisher
}

func NewExecutorService(
	pr repository.PostRepository,
	pm repository.PostMediaRepository,
	ac repository.AccountRepository,
	ma repository.MediaAssetRepository,
	storage ObjectStorage,
	local LocalPublisher) ExecutorService {
	return &executorService{
		pr:      pr,
		pm:      pm,
		ac:      ac,
		ma:      ma,
		storage: storage,
		local:   local,
	}
}

func failure(format string, args ...interface{}) transfer.ExecutionResult {
	return transfer.ExecutionResult{Success: false, Message: fmt.Sprintf(format, args...)}
}

func success(format string, args ...interface{}) transfer.ExecutionResult {
	return transfer.ExecutionResult{Success: true, Message: fmt.Sprintf(format, args...)}
}

func (s *executorService) Execute(ctx context.Context, postID int64) transfer.ExecutionResult {
	post, err := s.pr.GetByID(ctx, postID)
	if err != nil {
		return failure("error loading post %d: %v", postID, err)
	}
	if post == nil {
		return failure("post %d not found", postID)
	}

	// A delegated post's fate belongs to the external scheduler. Short-
	// circuit before the claim so repeated dispatches stay harmless.
	if post.IsDelegated() {
		return success("post %d is delegated to %s", postID, post.ExternalService)
	}

	claimed, err := s.pr.ClaimPending(ctx, postID)
	if err != nil {
		return failure("error claiming post %d: %v", postID, err)
	}
	if !claimed {
		// Another dispatcher got here first, or the post is already
		// terminal. Either way this invocation must be a no-op.
		return success("post %d is not pending, skipping", postID)
	}
	post.Status = models.PostStatusProcessing

	return s.Run(ctx, post)
}

func (s *executorService) Run(ctx context.Context, post *models.Post) transfer.ExecutionResult {
	if post.IsDelegated() {
		return success("post %d is delegated to %s", post.ID, post.ExternalService)
	}

	media, err := s.pm.ListByPostID(ctx, post.ID)
	if err != nil {
		return s.fail(ctx, post.ID, fmt.Sprintf("error loading media: %v", err))
	}
	if len(media) == 0 {
		return s.fail(ctx, post.ID, "post has no media")
	}

	account, err := s.ac.GetByID(ctx, post.AccountID)
	if err != nil {
		return s.fail(ctx, post.ID, fmt.Sprintf("error loading account %d: %v", post.AccountID, err))
	}
	if account == nil {
		return s.fail(ctx, post.ID, fmt.Sprintf("account %d not found", post.AccountID))
	}

	mediaURLs := make([]string, 0, len(media))
	for _, m := range media {
		mediaURLs = append(mediaURLs, m.MediaURL)
	}

	var result *transfer.PublishResult
	switch post.PostType {
	case models.PostTypeVideo, models.PostTypeShortVideo:
		result, err = s.local.PublishSingle(ctx, account, mediaURLs[0], post.Caption)
	default:
		result, err = s.local.PublishMulti(ctx, account, mediaURLs, post.Caption)
	}
	if err != nil {
		return s.fail(ctx, post.ID, err.Error())
	}

	// The agent's top-level flag only means the request was accepted. The
	// platform-scoped result for this account must also report success.
	platformResult, ok := result.Results[account.Platform]
	if !result.Success || !ok || !platformResult.Success {
		message := platformResult.Error
		if message == "" {
			message = fmt.Sprintf("publish rejected for platform %s", account.Platform)
		}
		return s.fail(ctx, post.ID, message)
	}

	if err := s.pr.MarkSuccess(ctx, post.ID, time.Now()); err != nil {
		slog.Info(err.Error())
	}

	s.cleanup(ctx, post, media)

	return success("post %d published to %s", post.ID, account.Platform)
}

// fail records the terminal error state. Media is deliberately preserved so
// the user can recreate the post without re-uploading.
func (s *executorService) fail(ctx context.Context, postID int64, message string) transfer.ExecutionResult {
	if err := s.pr.MarkError(ctx, postID, message); err != nil {
		slog.Info(err.Error())
	}
	return failure("%s", message)
}

// cleanup releases resources consumed by a successful publish. Everything
// here is best-effort: the post already reached success and stays there.
func (s *executorService) cleanup(ctx context.Context, post *models.Post, media []*models.PostMedia) {
	for _, m := range media {
		key := m.ObjectKey
		utils.BestEffort(fmt.Sprintf("delete media object %s", key), func() error {
			return s.storage.Delete(ctx, key)
		})
	}

	if post.AssetID != 0 {
		utils.BestEffort(fmt.Sprintf("release library asset %d", post.AssetID), func() error {
			return s.ma.SetAvailable(ctx, post.AssetID)
		})
	}
}
