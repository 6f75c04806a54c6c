package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/postpilot/postpilot/internal/models"
	"github.com/postpilot/postpilot/internal/repository"
	"github.com/postpilot/postpilot/internal/transfer"
	"github.com/postpilot/postpilot/pkg/utils"
)

const scheduledTimeLayout = "2006-01-02T15:04"

type PostService interface {
	CreatePost(ctx context.Context, userID int64, pc *transfer.PostCreation) (int64, time.Duration, error)
	List(ctx context.Context, userID int64, filters *transfer.PostFilters) ([]*models.Post, error)
	PostInfo(ctx context.Context, postID, userID int64) (*models.Post, error)
	Remove(ctx context.Context, userID, postID int64) error
}

type postService struct {
	db          *sql.DB
	pr          repository.PostRepository
	pm          repository.PostMediaRepository
	ma          repository.MediaAssetRepository
	bp          repository.ProfileRepository
	resolver    ResolverService
	delegate    DelegateService
	executor    ExecutorService
	storage     ObjectStorage
	serviceName string
}

func NewPostService(
	db *sql.DB,
	pr repository.PostRepository,
	pm repository.PostMediaRepository,
	ma repository.MediaAssetRepository,
	bp repository.ProfileRepository,
	resolver ResolverService,
	delegate DelegateService,
	executor ExecutorService,
	storage ObjectStorage,
	serviceName string) PostService {
	return &postService{
		db:          db,
		pr:          pr,
		pm:          pm,
		ma:          ma,
		bp:          bp,
		resolver:    resolver,
		delegate:    delegate,
		executor:    executor,
		storage:     storage,
		serviceName: serviceName,
	}
}

func (s *postService) CreatePost(ctx context.Context, userID int64, pc *transfer.PostCreation) (int64, time.Duration, error) {
	if pc == nil {
		err := fmt.Errorf("post creation data is nil: %w", ErrValidation)
		slog.Error(err.Error())
		return 0, 0, err
	}
	if len(pc.Media) == 0 {
		err := fmt.Errorf("no media provided for the post: %w", ErrValidation)
		slog.Info(err.Error())
		return 0, 0, err
	}
	if !models.ValidPostType(pc.PostType) {
		err := fmt.Errorf("unknown post type %q: %w", pc.PostType, ErrValidation)
		slog.Info(err.Error())
		return 0, 0, err
	}
	if pc.PostType == models.PostTypeStory && pc.Caption != "" {
		err := fmt.Errorf("story posts cannot carry a caption: %w", ErrValidation)
		slog.Info(err.Error())
		return 0, 0, err
	}

	var scheduledTime *time.Time
	if pc.ScheduledTime != "" {
		parsed, err := time.Parse(scheduledTimeLayout, pc.ScheduledTime)
		if err != nil {
			err = fmt.Errorf("invalid scheduled time format: %w", ErrValidation)
			slog.Info(err.Error())
			return 0, 0, err
		}
		scheduledTime = &parsed
	}

	account, err := s.resolver.Resolve(ctx, pc.TargetID)
	if err != nil {
		return 0, 0, err
	}

	post := models.Post{
		UserID:        userID,
		AccountID:     account.ID,
		PostType:      pc.PostType,
		Caption:       pc.Caption,
		ScheduledTime: scheduledTime,
		Status:        models.PostStatusPending,
		AssetID:       pc.AssetID,
	}

	if scheduledTime == nil {
		// Immediate posts start life already in processing; the pipeline runs
		// after this call returns.
		post.Status = models.PostStatusProcessing
	} else {
		s.tryDelegate(ctx, &post, account, pc, *scheduledTime)
	}

	var tx *sql.Tx
	if s.db != nil {
		tx, err = s.db.BeginTx(ctx, &sql.TxOptions{})
		if err != nil {
			return 0, 0, fmt.Errorf("failed to start transaction: %w", err)
		}
		defer func() {
			if p := recover(); p != nil {
				tx.Rollback()
				panic(p)
			} else if err != nil {
				tx.Rollback()
			}
		}()
	}

	postID, err := s.pr.Create(ctx, tx, &post)
	if err != nil {
		return 0, 0, fmt.Errorf("error creating post: %w", err)
	}

	for i, m := range pc.Media {
		postMedia := models.PostMedia{
			PostID:       postID,
			MediaURL:     m.URL,
			ObjectKey:    m.ObjectKey,
			DisplayOrder: i,
		}
		if err = s.pm.Create(ctx, tx, &postMedia); err != nil {
			return 0, 0, fmt.Errorf("error saving media locator: %w", err)
		}
	}

	if tx != nil {
		if err = tx.Commit(); err != nil {
			return 0, 0, fmt.Errorf("failed to commit transaction: %w", err)
		}
	}

	if pc.AssetID != 0 {
		assetID := pc.AssetID
		utils.BestEffort(fmt.Sprintf("mark library asset %d scheduled", assetID), func() error {
			return s.ma.SetScheduled(ctx, assetID, postID)
		})
	}

	if scheduledTime == nil {
		post.ID = postID
		// Fire and forget: creation returns before the publish finishes.
		go func(p models.Post) {
			res := s.executor.Run(context.Background(), &p)
			if !res.Success {
				slog.Info(fmt.Sprintf("immediate execution of post %d failed: %s", p.ID, res.Message))
			}
		}(post)
		return postID, 0, nil
	}

	delay := time.Until(*scheduledTime)
	if delay < 0 {
		delay = 0
	}

	return postID, delay, nil
}

// tryDelegate hands scheduling to the external service when the account's
// business profile asks for it. Best-effort: on any failure the post simply
// stays pending and the local poller picks it up at due time.
func (s *postService) tryDelegate(ctx context.Context, post *models.Post, account *models.Account, pc *transfer.PostCreation, at time.Time) {
	if account.ProfileID == 0 {
		return
	}

	profile, err := s.bp.GetByID(ctx, account.ProfileID)
	if err != nil || profile == nil {
		return
	}
	if !s.delegate.RequiresDelegation(profile) {
		return
	}

	mediaURLs := make([]string, 0, len(pc.Media))
	for _, m := range pc.Media {
		mediaURLs = append(mediaURLs, m.URL)
	}

	ticket, err := s.delegate.Schedule(ctx, account, mediaURLs, pc.Caption, at)
	if err != nil {
		slog.Warn(fmt.Sprintf("delegation failed, keeping post local: %v", err))
		return
	}

	post.ExternalService = s.serviceName
	post.ExternalJobID = ticket.JobHandle
	post.ExternalPayload = ticket.RawResponse
	post.Status = models.PostStatusScheduled
}

func (s *postService) PostInfo(ctx context.Context, postID, userID int64) (*models.Post, error) {
	var err error

	if userID == 0 {
		err = errors.New("user is not valid")
		slog.Info(err.Error())
		return nil, err
	}

	if postID == 0 {
		err = errors.New("post id is not valid")
		slog.Info(err.Error())
		return nil, err
	}

	isValid, err := s.pr.CheckByUserID(ctx, postID, userID)
	if err != nil {
		return nil, err
	}

	if !isValid {
		err = fmt.Errorf("post %d: %w", postID, ErrNotFound)
		slog.Info(err.Error())
		return nil, err
	}

	post, err := s.pr.GetByID(ctx, postID)
	if err != nil {
		return nil, fmt.Errorf("error getting post info")
	}

	return post, nil
}

func (s *postService) List(ctx context.Context, userID int64, filters *transfer.PostFilters) ([]*models.Post, error) {
	posts, err := s.pr.GetByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("error listing posts")
	}
	if filters == nil {
		return posts, nil
	}

	// Filters apply in memory so the query stays on the user_id index.
	filtered := make([]*models.Post, 0, len(posts))
	for _, post := range posts {
		if filters.Status != "" && post.Status != filters.Status {
			continue
		}
		if filters.PostType != "" && post.PostType != filters.PostType {
			continue
		}
		if filters.AccountID != 0 && post.AccountID != filters.AccountID {
			continue
		}
		filtered = append(filtered, post)
	}
	return filtered, nil
}

func (s *postService) Remove(ctx context.Context, userID, postID int64) error {
	var err error

	if userID == 0 {
		err = errors.New("user is not valid")
		slog.Info(err.Error())
		return err
	}

	if postID == 0 {
		err = errors.New("post_id is not valid")
		slog.Info(err.Error())
		return err
	}

	isValid, err := s.pr.CheckByUserID(ctx, postID, userID)
	if err != nil {
		return err
	}

	if !isValid {
		err = fmt.Errorf("post %d: %w", postID, ErrNotFound)
		slog.Info(err.Error())
		return err
	}

	post, err := s.pr.GetByID(ctx, postID)
	if err != nil {
		return err
	}
	if post == nil {
		return fmt.Errorf("post %d: %w", postID, ErrNotFound)
	}

	if post.IsDelegated() {
		handle := post.ExternalJobID
		utils.BestEffort(fmt.Sprintf("cancel delegated job %s", handle), func() error {
			return s.delegate.Cancel(ctx, handle)
		})
	}

	media, err := s.pm.ListByPostID(ctx, postID)
	if err == nil {
		for _, m := range media {
			key := m.ObjectKey
			utils.BestEffort(fmt.Sprintf("delete media object %s", key), func() error {
				return s.storage.Delete(ctx, key)
			})
		}
	}

	if err := s.pm.RemoveByPostID(ctx, postID); err != nil {
		return fmt.Errorf("error removing post media")
	}
	if err := s.pr.Remove(ctx, postID); err != nil {
		return fmt.Errorf("error removing post")
	}

	if post.AssetID != 0 {
		assetID := post.AssetID
		utils.BestEffort(fmt.Sprintf("release library asset %d", assetID), func() error {
			return s.ma.SetAvailable(ctx, assetID)
		})
	}

	return nil
}
