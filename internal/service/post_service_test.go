package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/postpilot/postpilot/internal/models"
	"github.com/postpilot/postpilot/internal/transfer"
)

type postFixture struct {
	*executorFixture
	profiles *memProfileRepo
	delegate *stubDelegate
	svc      PostService
}

func newPostFixture(result *transfer.PublishResult, publishErr error) *postFixture {
	f := &postFixture{
		executorFixture: newExecutorFixture(result, publishErr),
		profiles:        newMemProfileRepo(),
		delegate:        &stubDelegate{},
	}
	resolver := NewResolverService(f.accounts, f.profiles)
	f.svc = NewPostService(nil, f.posts, f.media, f.assets, f.profiles,
		resolver, f.delegate, f.ex, f.storage, "postiz")
	return f
}

func creation(targetID int64, postType, caption, scheduledTime string) *transfer.PostCreation {
	return &transfer.PostCreation{
		TargetID:      targetID,
		PostType:      postType,
		Caption:       caption,
		ScheduledTime: scheduledTime,
		Media: []transfer.MediaLocator{
			{URL: "https://media.example.com/m1", ObjectKey: "m1"},
		},
	}
}

func futureTime() string {
	return time.Now().Add(2 * time.Hour).Format(scheduledTimeLayout)
}

func TestCreatePostImmediateRunsRightAway(t *testing.T) {
	f := newPostFixture(okResultFor("instagram"), nil)
	f.accounts.add(&models.Account{ID: 5, Platform: "instagram"})

	id, delay, err := f.svc.CreatePost(context.Background(), 1, creation(5, models.PostTypeSingle, "hello", ""))

	require.NoError(t, err)
	assert.Zero(t, delay)

	// Execution happens off the request path; creation only guarantees the
	// post is already in processing. Cleanup follows the status flip, so wait
	// for both.
	require.Eventually(t, func() bool {
		post, err := f.posts.GetByID(context.Background(), id)
		return err == nil && post != nil && post.IsTerminal() && len(f.storage.deletedKeys()) == 1
	}, 2*time.Second, 10*time.Millisecond)

	post, err := f.posts.GetByID(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, models.PostStatusSuccess, post.Status)
	assert.Equal(t, 1, f.publisher.calls())
	assert.Equal(t, []string{"m1"}, f.storage.deletedKeys())
}

func TestCreatePostScheduledStaysPending(t *testing.T) {
	f := newPostFixture(okResultFor("instagram"), nil)
	f.accounts.add(&models.Account{ID: 5, Platform: "instagram"})

	id, delay, err := f.svc.CreatePost(context.Background(), 1, creation(5, models.PostTypeSingle, "later", futureTime()))

	require.NoError(t, err)
	assert.Greater(t, delay, time.Hour)
	assert.Zero(t, f.publisher.calls())

	post, err := f.posts.GetByID(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, models.PostStatusPending, post.Status)
	require.NotNil(t, post.ScheduledTime)
}

func TestScheduledPostRoundTrip(t *testing.T) {
	f := newPostFixture(okResultFor("instagram"), nil)
	f.accounts.add(&models.Account{ID: 5, Platform: "instagram"})

	past := time.Now().Add(-time.Hour).Format(scheduledTimeLayout)
	id, delay, err := f.svc.CreatePost(context.Background(), 1, creation(5, models.PostTypeSingle, "overdue", past))
	require.NoError(t, err)
	assert.Zero(t, delay)

	// Creation never auto-executes scheduled posts, even overdue ones; a
	// dispatcher claims them.
	post, _ := f.posts.GetByID(context.Background(), id)
	require.Equal(t, models.PostStatusPending, post.Status)

	result := f.ex.Execute(context.Background(), id)
	assert.True(t, result.Success)

	post, _ = f.posts.GetByID(context.Background(), id)
	assert.Equal(t, models.PostStatusSuccess, post.Status)
	assert.Equal(t, 1, f.publisher.calls())
}

func TestCreatePostDelegatesManagedProfile(t *testing.T) {
	f := newPostFixture(okResultFor("instagram"), nil)
	f.profiles.Create(context.Background(), &models.BusinessProfile{ID: 30, Name: "acme", Description: "managed"})
	f.accounts.add(&models.Account{ID: 5, ProfileID: 30, Platform: "instagram"})
	f.delegate.delegateAll = true
	f.delegate.ticket = &transfer.DelegationTicket{JobHandle: "ext-123", RawResponse: `{"id":"ext-123"}`}

	id, _, err := f.svc.CreatePost(context.Background(), 1, creation(5, models.PostTypeSingle, "handled", futureTime()))
	require.NoError(t, err)

	post, err := f.posts.GetByID(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, models.PostStatusScheduled, post.Status)
	assert.Equal(t, "ext-123", post.ExternalJobID)
	assert.Equal(t, "postiz", post.ExternalService)

	// The external scheduler owns the post now; local dispatch is a no-op.
	result := f.ex.Execute(context.Background(), id)
	assert.True(t, result.Success)
	assert.Zero(t, f.publisher.calls())
}

func TestCreatePostDelegationFailureKeepsPostLocal(t *testing.T) {
	f := newPostFixture(okResultFor("instagram"), nil)
	f.profiles.Create(context.Background(), &models.BusinessProfile{ID: 30, Name: "acme"})
	f.accounts.add(&models.Account{ID: 5, ProfileID: 30, Platform: "instagram"})
	f.delegate.delegateAll = true
	f.delegate.scheduleErr = errors.New("delegate down")

	id, _, err := f.svc.CreatePost(context.Background(), 1, creation(5, models.PostTypeSingle, "fallback", futureTime()))
	require.NoError(t, err)

	post, err := f.posts.GetByID(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, models.PostStatusPending, post.Status)
	assert.Empty(t, post.ExternalJobID)
}

func TestCreatePostValidation(t *testing.T) {
	f := newPostFixture(okResultFor("instagram"), nil)
	f.accounts.add(&models.Account{ID: 5, Platform: "instagram"})

	cases := []struct {
		name string
		pc   *transfer.PostCreation
	}{
		{"nil creation", nil},
		{"no media", &transfer.PostCreation{TargetID: 5, PostType: models.PostTypeSingle}},
		{"unknown post type", creation(5, "reel", "", "")},
		{"story with caption", creation(5, models.PostTypeStory, "not allowed", "")},
		{"bad time format", creation(5, models.PostTypeSingle, "", "tomorrow at noon")},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, _, err := f.svc.CreatePost(context.Background(), 1, tc.pc)
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrValidation))
		})
	}
}

func TestCreatePostUnknownTarget(t *testing.T) {
	f := newPostFixture(okResultFor("instagram"), nil)

	_, _, err := f.svc.CreatePost(context.Background(), 1, creation(404, models.PostTypeSingle, "", ""))

	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestCreatePostMarksLibraryAssetScheduled(t *testing.T) {
	f := newPostFixture(okResultFor("instagram"), nil)
	f.accounts.add(&models.Account{ID: 5, Platform: "instagram"})
	_, err := f.assets.Create(context.Background(), nil, &models.MediaAsset{ID: 41, Status: models.AssetStatusAvailable})
	require.NoError(t, err)

	pc := creation(5, models.PostTypeSingle, "", futureTime())
	pc.AssetID = 41
	id, _, err := f.svc.CreatePost(context.Background(), 1, pc)
	require.NoError(t, err)

	asset, err := f.assets.GetByID(context.Background(), 41)
	require.NoError(t, err)
	assert.Equal(t, models.AssetStatusScheduled, asset.Status)
	assert.Equal(t, id, asset.ScheduledPostID)
}

func TestListAppliesFilters(t *testing.T) {
	f := newPostFixture(okResultFor("instagram"), nil)
	seed := []models.Post{
		{UserID: 1, AccountID: 5, PostType: models.PostTypeSingle, Status: models.PostStatusPending},
		{UserID: 1, AccountID: 5, PostType: models.PostTypeVideo, Status: models.PostStatusSuccess},
		{UserID: 1, AccountID: 6, PostType: models.PostTypeSingle, Status: models.PostStatusPending},
		{UserID: 2, AccountID: 5, PostType: models.PostTypeSingle, Status: models.PostStatusPending},
	}
	for i := range seed {
		_, err := f.posts.Create(context.Background(), nil, &seed[i])
		require.NoError(t, err)
	}

	all, err := f.svc.List(context.Background(), 1, nil)
	require.NoError(t, err)
	assert.Len(t, all, 3)

	pending, err := f.svc.List(context.Background(), 1, &transfer.PostFilters{Status: models.PostStatusPending})
	require.NoError(t, err)
	assert.Len(t, pending, 2)

	narrowed, err := f.svc.List(context.Background(), 1, &transfer.PostFilters{
		Status:    models.PostStatusPending,
		AccountID: 6,
	})
	require.NoError(t, err)
	require.Len(t, narrowed, 1)
	assert.Equal(t, int64(6), narrowed[0].AccountID)
}

func TestPostInfoEnforcesOwnership(t *testing.T) {
	f := newPostFixture(okResultFor("instagram"), nil)
	id, err := f.posts.Create(context.Background(), nil, &models.Post{UserID: 1, Status: models.PostStatusPending})
	require.NoError(t, err)

	post, err := f.svc.PostInfo(context.Background(), id, 1)
	require.NoError(t, err)
	assert.Equal(t, id, post.ID)

	_, err = f.svc.PostInfo(context.Background(), id, 2)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestRemoveDeletesMediaAndReleasesAsset(t *testing.T) {
	f := newPostFixture(okResultFor("instagram"), nil)
	_, err := f.assets.Create(context.Background(), nil, &models.MediaAsset{ID: 41, Status: models.AssetStatusScheduled})
	require.NoError(t, err)
	id := f.seedPost(t, models.Post{UserID: 1, Status: models.PostStatusPending, AssetID: 41}, "m1", "m2")

	err = f.svc.Remove(context.Background(), 1, id)
	require.NoError(t, err)

	post, err := f.posts.GetByID(context.Background(), id)
	require.NoError(t, err)
	assert.Nil(t, post)
	assert.ElementsMatch(t, []string{"m1", "m2"}, f.storage.deletedKeys())

	asset, err := f.assets.GetByID(context.Background(), 41)
	require.NoError(t, err)
	assert.Equal(t, models.AssetStatusAvailable, asset.Status)
}

func TestRemoveCancelsDelegatedJob(t *testing.T) {
	f := newPostFixture(okResultFor("instagram"), nil)
	id := f.seedPost(t, models.Post{
		UserID:          1,
		Status:          models.PostStatusScheduled,
		ExternalService: "postiz",
		ExternalJobID:   "ext-123",
	}, "m1")

	err := f.svc.Remove(context.Background(), 1, id)
	require.NoError(t, err)
	assert.Equal(t, 1, f.delegate.cancels())
}

func TestRemoveSurvivesCancelFailure(t *testing.T) {
	f := newPostFixture(okResultFor("instagram"), nil)
	f.delegate.cancelErr = errors.New("delegate down")
	id := f.seedPost(t, models.Post{
		UserID:        1,
		Status:        models.PostStatusScheduled,
		ExternalJobID: "ext-123",
	}, "m1")

	err := f.svc.Remove(context.Background(), 1, id)
	require.NoError(t, err)
	assert.Equal(t, 1, f.delegate.cancels())

	post, err := f.posts.GetByID(context.Background(), id)
	require.NoError(t, err)
	assert.Nil(t, post)
}
