package service

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	cfg "github.com/maheshrc27/postsync/configs"
	"github.com/maheshrc27/postsync/internal/models"
	"github.com/maheshrc27/postsync/internal/transfer"
)

var fixedNow = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func draftPost() *models.Post {
	return &models.Post{
		ID:       models.NewInternalID(),
		UserID:   7,
		Content:  "Launch day",
		Platform: "facebook",
	}
}

func newPublisher(t *testing.T, handler http.HandlerFunc, repo *fakePostRepo, timeout time.Duration) PublishService {
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	svc := NewPublishService(cfg.Publisher{BaseURL: srv.URL, APIKey: "test-key", Timeout: timeout}, repo, srv.Client())
	svc.(*publishService).now = func() time.Time { return fixedNow }
	return svc
}

func TestPublish_SuccessMarksPublished(t *testing.T) {
	post := draftPost()
	repo := newFakePostRepo(post)

	svc := newPublisher(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/post", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))

		var req transfer.PublishRequest
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "Launch day", req.Post)
		assert.Equal(t, []string{"facebook"}, req.Platforms)

		w.Write([]byte(`{"facebook":{"url":"https://x/1"}}`))
	}, repo, time.Second)

	got, err := svc.Publish(context.Background(), post.ID, 7)

	require.NoError(t, err)
	assert.True(t, got.Published)
	assert.Equal(t, "https://x/1", *got.PublishURL)

	stored := repo.posts[post.ID]
	assert.True(t, stored.Published)
	require.NotNil(t, stored.PublishedAt)
	assert.Equal(t, fixedNow, *stored.PublishedAt)
	assert.Equal(t, "https://x/1", *stored.PublishURL)
	assert.Equal(t, extPtr("1"), stored.ExternalPostID)
	assert.Equal(t, 1, repo.markCalls)
}

func TestPublish_UpstreamErrorLeavesDraft(t *testing.T) {
	post := draftPost()
	repo := newFakePostRepo(post)

	svc := newPublisher(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}, repo, time.Second)

	_, err := svc.Publish(context.Background(), post.ID, 7)

	require.ErrorIs(t, err, models.ErrUpstream)
	var uerr *models.UpstreamError
	require.ErrorAs(t, err, &uerr)
	assert.Equal(t, http.StatusServiceUnavailable, uerr.StatusCode)
	assert.True(t, models.Retriable(err))
	assert.False(t, repo.posts[post.ID].Published)
	assert.Zero(t, repo.markCalls)
}

func TestPublish_UnusableResponseLeavesDraft(t *testing.T) {
	bodies := []string{
		`{"status":"success"}`,
		`{"status":"error","facebook":{"url":"https://x/1"}}`,
		`not json`,
		`{"facebook":{"url":"https://www.facebook.com/"}}`,
		`{"facebook":{"url":"https://www.facebook.com/permalink.php"}}`,
	}
	for _, body := range bodies {
		post := draftPost()
		repo := newFakePostRepo(post)
		svc := newPublisher(t, func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(body))
		}, repo, time.Second)

		_, err := svc.Publish(context.Background(), post.ID, 7)

		assert.ErrorIs(t, err, models.ErrUpstream, body)
		assert.False(t, repo.posts[post.ID].Published, body)
		assert.Zero(t, repo.markCalls, body)
	}
}

func TestPublish_TimeoutLeavesDraft(t *testing.T) {
	post := draftPost()
	repo := newFakePostRepo(post)
	release := make(chan struct{})
	t.Cleanup(func() { close(release) })

	svc := newPublisher(t, func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}, repo, 50*time.Millisecond)

	_, err := svc.Publish(context.Background(), post.ID, 7)

	require.ErrorIs(t, err, models.ErrTimeout)
	assert.NotErrorIs(t, err, models.ErrUpstream)
	assert.False(t, repo.posts[post.ID].Published)
	assert.Zero(t, repo.markCalls)
}

func TestPublish_AlreadyPublishedSkipsUpstream(t *testing.T) {
	post := draftPost()
	at := fixedNow
	url := "https://x/1"
	post.PublishStatus = models.PublishStatus{Published: true, PublishedAt: &at, PublishURL: &url}
	repo := newFakePostRepo(post)
	var hits int32

	svc := newPublisher(t, func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
	}, repo, time.Second)

	_, err := svc.Publish(context.Background(), post.ID, 7)

	assert.ErrorIs(t, err, models.ErrAlreadyPublished)
	assert.Zero(t, atomic.LoadInt32(&hits))
}

func TestPublish_NotOwnedIsNotFound(t *testing.T) {
	post := draftPost()
	repo := newFakePostRepo(post)
	svc := newPublisher(t, func(w http.ResponseWriter, r *http.Request) {
		t.Error("upstream must not be called")
	}, repo, time.Second)

	_, err := svc.Publish(context.Background(), post.ID, 99)

	assert.ErrorIs(t, err, models.ErrNotFound)
}

func TestPublish_RetryAfterFailureIsSafe(t *testing.T) {
	post := draftPost()
	repo := newFakePostRepo(post)
	var calls int32

	svc := newPublisher(t, func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) == 1 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		w.Write([]byte(`{"facebook":{"postUrl":"https://x/2","id":"fb-2"}}`))
	}, repo, time.Second)

	_, err := svc.Publish(context.Background(), post.ID, 7)
	require.Error(t, err)

	got, err := svc.Publish(context.Background(), post.ID, 7)
	require.NoError(t, err)
	assert.Equal(t, extPtr("fb-2"), got.ExternalPostID)
	assert.Equal(t, 1, repo.markCalls)
}

func TestPublish_StorageFailureAfterUpstream(t *testing.T) {
	post := draftPost()
	repo := newFakePostRepo(post)
	repo.markErr = &models.StorageError{Op: "mark post published", Err: errors.New("down")}

	svc := newPublisher(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"facebook":{"url":"https://x/1"}}`))
	}, repo, time.Second)

	_, err := svc.Publish(context.Background(), post.ID, 7)

	assert.ErrorIs(t, err, models.ErrStorage)
}

func TestPublishScheduled_SupersededSchedule(t *testing.T) {
	post := draftPost()
	at := fixedNow.Add(time.Hour)
	post.ScheduledAt = &at
	repo := newFakePostRepo(post)
	svc := newPublisher(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"facebook":{"url":"https://x/1"}}`))
	}, repo, time.Second)

	_, err := svc.PublishScheduled(context.Background(), post.ID, 7, fixedNow)
	assert.ErrorIs(t, err, ErrScheduleSuperseded)
	assert.Zero(t, repo.markCalls)

	got, err := svc.PublishScheduled(context.Background(), post.ID, 7, at)
	require.NoError(t, err)
	assert.True(t, got.Published)
}
