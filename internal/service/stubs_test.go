package service

import (
	"context"
	"database/sql"
	"sync"
	"time"

	"github.com/postpilot/postpilot/internal/models"
	"github.com/postpilot/postpilot/internal/transfer"
)

// In-memory fakes for the collaborator interfaces. They emulate just enough
// of the real stores to exercise the orchestration paths, including the
// conditional pending claim.

type memPostRepo struct {
	mu    sync.Mutex
	seq   int64
	posts map[int64]*models.Post
}

func newMemPostRepo() *memPostRepo {
	return &memPostRepo{posts: make(map[int64]*models.Post)}
}

func (r *memPostRepo) Create(ctx context.Context, tx *sql.Tx, post *models.Post) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.seq++
	stored := *post
	stored.ID = r.seq
	r.posts[stored.ID] = &stored
	return stored.ID, nil
}

func (r *memPostRepo) GetByID(ctx context.Context, id int64) (*models.Post, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	post, ok := r.posts[id]
	if !ok {
		return nil, nil
	}
	copied := *post
	return &copied, nil
}

func (r *memPostRepo) GetByUserID(ctx context.Context, userID int64) ([]*models.Post, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*models.Post
	for i := int64(1); i <= r.seq; i++ {
		if post, ok := r.posts[i]; ok && post.UserID == userID {
			copied := *post
			out = append(out, &copied)
		}
	}
	return out, nil
}

func (r *memPostRepo) ListDue(ctx context.Context, status string, before time.Time) ([]*models.Post, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*models.Post
	for i := int64(1); i <= r.seq; i++ {
		post, ok := r.posts[i]
		if !ok || post.Status != status || post.ScheduledTime == nil {
			continue
		}
		if !post.ScheduledTime.After(before) {
			copied := *post
			out = append(out, &copied)
		}
	}
	return out, nil
}

func (r *memPostRepo) ClaimPending(ctx context.Context, id int64) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	post, ok := r.posts[id]
	if !ok || post.Status != models.PostStatusPending {
		return false, nil
	}
	post.Status = models.PostStatusProcessing
	return true, nil
}

func (r *memPostRepo) UpdatePostStatus(ctx context.Context, status string, postID int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if post, ok := r.posts[postID]; ok {
		post.Status = status
	}
	return nil
}

func (r *memPostRepo) MarkError(ctx context.Context, postID int64, message string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if post, ok := r.posts[postID]; ok {
		post.Status = models.PostStatusError
		post.ErrorMessage = message
	}
	return nil
}

func (r *memPostRepo) MarkSuccess(ctx context.Context, postID int64, postedAt time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if post, ok := r.posts[postID]; ok {
		post.Status = models.PostStatusSuccess
		post.PostedAt = &postedAt
		post.ErrorMessage = ""
	}
	return nil
}

func (r *memPostRepo) CheckByUserID(ctx context.Context, postID, userID int64) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	post, ok := r.posts[postID]
	return ok && post.UserID == userID, nil
}

func (r *memPostRepo) Remove(ctx context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.posts, id)
	return nil
}

type memPostMediaRepo struct {
	mu    sync.Mutex
	media map[int64][]*models.PostMedia
}

func newMemPostMediaRepo() *memPostMediaRepo {
	return &memPostMediaRepo{media: make(map[int64][]*models.PostMedia)}
}

func (r *memPostMediaRepo) Create(ctx context.Context, tx *sql.Tx, pm *models.PostMedia) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored := *pm
	r.media[pm.PostID] = append(r.media[pm.PostID], &stored)
	return nil
}

func (r *memPostMediaRepo) ListByPostID(ctx context.Context, postID int64) ([]*models.PostMedia, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]*models.PostMedia{}, r.media[postID]...), nil
}

func (r *memPostMediaRepo) RemoveByPostID(ctx context.Context, postID int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.media, postID)
	return nil
}

type memAccountRepo struct {
	mu       sync.Mutex
	accounts []*models.Account
}

func (r *memAccountRepo) add(a *models.Account) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.accounts = append(r.accounts, a)
}

func (r *memAccountRepo) Create(ctx context.Context, tx *sql.Tx, a *models.Account) (int64, error) {
	r.add(a)
	return a.ID, nil
}

func (r *memAccountRepo) GetByID(ctx context.Context, id int64) (*models.Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, a := range r.accounts {
		if a.ID == id {
			return a, nil
		}
	}
	return nil, nil
}

func (r *memAccountRepo) ListByUserID(ctx context.Context, userID int64) ([]*models.Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*models.Account
	for _, a := range r.accounts {
		if a.UserID == userID {
			out = append(out, a)
		}
	}
	return out, nil
}

func (r *memAccountRepo) ListByProfileID(ctx context.Context, profileID int64) ([]*models.Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*models.Account
	for _, a := range r.accounts {
		if a.ProfileID == profileID {
			out = append(out, a)
		}
	}
	return out, nil
}

func (r *memAccountRepo) CheckByUserID(ctx context.Context, accountID, userID int64) (bool, error) {
	a, _ := r.GetByID(ctx, accountID)
	return a != nil && a.UserID == userID, nil
}

func (r *memAccountRepo) UpdateStatus(ctx context.Context, status string, accountID int64) error {
	a, _ := r.GetByID(ctx, accountID)
	if a != nil {
		a.AccountStatus = status
	}
	return nil
}

func (r *memAccountRepo) SetToken(ctx context.Context, accountID int64, accessToken string) error {
	a, _ := r.GetByID(ctx, accountID)
	if a != nil {
		a.AccessToken = accessToken
	}
	return nil
}

func (r *memAccountRepo) Remove(ctx context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, a := range r.accounts {
		if a.ID == id {
			r.accounts = append(r.accounts[:i], r.accounts[i+1:]...)
			break
		}
	}
	return nil
}

type memProfileRepo struct {
	profiles map[int64]*models.BusinessProfile
}

func newMemProfileRepo() *memProfileRepo {
	return &memProfileRepo{profiles: make(map[int64]*models.BusinessProfile)}
}

func (r *memProfileRepo) Create(ctx context.Context, p *models.BusinessProfile) (int64, error) {
	r.profiles[p.ID] = p
	return p.ID, nil
}

func (r *memProfileRepo) GetByID(ctx context.Context, id int64) (*models.BusinessProfile, error) {
	return r.profiles[id], nil
}

func (r *memProfileRepo) GetByUserID(ctx context.Context, userID int64) ([]*models.BusinessProfile, error) {
	var out []*models.BusinessProfile
	for _, p := range r.profiles {
		if p.UserID == userID {
			out = append(out, p)
		}
	}
	return out, nil
}

type memAssetRepo struct {
	mu     sync.Mutex
	assets map[int64]*models.MediaAsset
}

func newMemAssetRepo() *memAssetRepo {
	return &memAssetRepo{assets: make(map[int64]*models.MediaAsset)}
}

func (r *memAssetRepo) Create(ctx context.Context, tx *sql.Tx, ma *models.MediaAsset) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.assets[ma.ID] = ma
	return ma.ID, nil
}

func (r *memAssetRepo) GetByID(ctx context.Context, id int64) (*models.MediaAsset, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.assets[id], nil
}

func (r *memAssetRepo) ListByUserID(ctx context.Context, userID int64) ([]*models.MediaAsset, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*models.MediaAsset
	for _, a := range r.assets {
		if a.UserID == userID {
			out = append(out, a)
		}
	}
	return out, nil
}

func (r *memAssetRepo) SetScheduled(ctx context.Context, id, postID int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if a, ok := r.assets[id]; ok {
		a.Status = models.AssetStatusScheduled
		a.ScheduledPostID = postID
	}
	return nil
}

func (r *memAssetRepo) SetAvailable(ctx context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if a, ok := r.assets[id]; ok {
		a.Status = models.AssetStatusAvailable
		a.ScheduledPostID = 0
	}
	return nil
}

func (r *memAssetRepo) CheckByUserID(ctx context.Context, assetID, userID int64) (bool, error) {
	a, _ := r.GetByID(ctx, assetID)
	return a != nil && a.UserID == userID, nil
}

func (r *memAssetRepo) Remove(ctx context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.assets, id)
	return nil
}

type stubStorage struct {
	mu      sync.Mutex
	deleted []string
	err     error
}

func (s *stubStorage) Upload(ctx context.Context, key string, file []byte, filetype string) error {
	return s.err
}

func (s *stubStorage) Delete(ctx context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	s.deleted = append(s.deleted, key)
	return nil
}

func (s *stubStorage) deletedKeys() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string{}, s.deleted...)
}

type stubPublisher struct {
	mu          sync.Mutex
	result      *transfer.PublishResult
	err         error
	singleCalls int
	multiCalls  int
	lastURLs    []string
}

func (p *stubPublisher) PublishSingle(ctx context.Context, account *models.Account, mediaURL, caption string) (*transfer.PublishResult, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.singleCalls++
	p.lastURLs = []string{mediaURL}
	return p.result, p.err
}

func (p *stubPublisher) PublishMulti(ctx context.Context, account *models.Account, mediaURLs []string, caption string) (*transfer.PublishResult, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.multiCalls++
	p.lastURLs = mediaURLs
	return p.result, p.err
}

func (p *stubPublisher) calls() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.singleCalls + p.multiCalls
}

func okResultFor(platform string) *transfer.PublishResult {
	return &transfer.PublishResult{
		Success: true,
		Results: map[string]transfer.PlatformResult{
			platform: {Success: true, PostURL: "https://example.com/p/1"},
		},
	}
}

type stubDelegate struct {
	mu          sync.Mutex
	ticket      *transfer.DelegationTicket
	scheduleErr error
	cancelErr   error
	cancelCalls int
	delegateAll bool
	marker      string
}

func (d *stubDelegate) Schedule(ctx context.Context, account *models.Account, mediaURLs []string, caption string, at time.Time) (*transfer.DelegationTicket, error) {
	if d.scheduleErr != nil {
		return nil, d.scheduleErr
	}
	return d.ticket, nil
}

func (d *stubDelegate) Cancel(ctx context.Context, jobHandle string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.cancelCalls++
	return d.cancelErr
}

func (d *stubDelegate) RequiresDelegation(profile *models.BusinessProfile) bool {
	if d.delegateAll {
		return true
	}
	if profile == nil || d.marker == "" {
		return false
	}
	return profile.Name == d.marker || profile.Description == d.marker || profile.BrandingStyle == d.marker
}

func (d *stubDelegate) cancels() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.cancelCalls
}
