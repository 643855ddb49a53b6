package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Skotchmaster/videotube/internal/apperr"
	"github.com/Skotchmaster/videotube/internal/models"
	"github.com/Skotchmaster/videotube/internal/service"
	"github.com/Skotchmaster/videotube/internal/transport"
)

type fakeSearch struct {
	q          string
	from, size int
	docs       []models.ChannelDoc
}

func (f *fakeSearch) SearchChannels(_ context.Context, q string, from, size int) (int64, []models.ChannelDoc, error) {
	f.q, f.from, f.size = q, from, size
	return int64(len(f.docs)), f.docs, nil
}

func newChannels(e *env) *service.ChannelService {
	return &service.ChannelService{Store: e.repo, Now: e.clock.Now}
}

func TestChannelProfileAndSubscriptions(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	ch := newChannels(e)
	alice := register(t, e, "alice")
	bob := register(t, e, "bob")

	require.ErrorIs(t, ch.Subscribe(ctx, alice.ID, alice.ID), apperr.ErrValidation)
	require.ErrorIs(t, ch.Subscribe(ctx, alice.ID, uuid.New()), apperr.ErrNotFound)

	require.NoError(t, ch.Subscribe(ctx, alice.ID, bob.ID))
	require.NoError(t, ch.Subscribe(ctx, alice.ID, bob.ID))

	profile, err := ch.Profile(ctx, " BOB ", alice.ID)
	require.NoError(t, err)
	assert.Equal(t, "bob", profile.Username)
	assert.Equal(t, int64(1), profile.SubscribersCount)
	assert.True(t, profile.IsSubscribed)

	require.NoError(t, ch.Unsubscribe(ctx, alice.ID, bob.ID))
	profile, err = ch.Profile(ctx, "bob", alice.ID)
	require.NoError(t, err)
	assert.False(t, profile.IsSubscribed)

	_, err = ch.Profile(ctx, "nobody", alice.ID)
	require.ErrorIs(t, err, apperr.ErrNotFound)

	_, err = ch.Profile(ctx, "  ", alice.ID)
	require.ErrorIs(t, err, apperr.ErrValidation)
}

func TestWatchHistory(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	ch := newChannels(e)
	alice := register(t, e, "alice")
	bob := register(t, e, "bob")

	v1 := &models.Video{OwnerID: bob.ID, Title: "one", Description: "d", VideoURL: "v1", ThumbnailURL: "t1", Duration: 1}
	v2 := &models.Video{OwnerID: bob.ID, Title: "two", Description: "d", VideoURL: "v2", ThumbnailURL: "t2", Duration: 2}
	require.NoError(t, e.repo.CreateVideo(ctx, v1))
	require.NoError(t, e.repo.CreateVideo(ctx, v2))

	require.NoError(t, ch.RecordWatch(ctx, alice.ID, v1.ID))
	e.clock.Advance(time.Minute)
	require.NoError(t, ch.RecordWatch(ctx, alice.ID, v2.ID))
	e.clock.Advance(time.Minute)
	require.NoError(t, ch.RecordWatch(ctx, alice.ID, v1.ID))

	require.ErrorIs(t, ch.RecordWatch(ctx, alice.ID, uuid.New()), apperr.ErrNotFound)

	history, err := ch.History(ctx, alice.ID)
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, "one", history[0].Title)
	assert.Equal(t, "two", history[1].Title)
	assert.Equal(t, "bob", history[0].Owner.Username)
}

func TestCommentsAndLikes(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	ch := newChannels(e)
	alice := register(t, e, "alice")

	v := &models.Video{OwnerID: alice.ID, Title: "one", Description: "d", VideoURL: "v", ThumbnailURL: "t", Duration: 1}
	require.NoError(t, e.repo.CreateVideo(ctx, v))

	_, err := ch.AddComment(ctx, alice.ID, uuid.New(), transport.CommentInput{Content: "hi", ParentModel: models.ParentVideo})
	require.ErrorIs(t, err, apperr.ErrNotFound)

	c, err := ch.AddComment(ctx, alice.ID, v.ID, transport.CommentInput{Content: "hi", ParentModel: models.ParentVideo})
	require.NoError(t, err)
	assert.Equal(t, alice.ID, c.OwnerID)

	page, err := ch.Comments(ctx, models.ParentVideo, v.ID, 1, 10)
	require.NoError(t, err)
	assert.Equal(t, int64(1), page.Total)
	assert.Equal(t, 1, page.Page)
	require.Len(t, page.Items, 1)

	liked, err := ch.ToggleLike(ctx, alice.ID, models.ParentComment, c.ID)
	require.NoError(t, err)
	assert.True(t, liked)

	liked, err = ch.ToggleLike(ctx, alice.ID, models.ParentComment, c.ID)
	require.NoError(t, err)
	assert.False(t, liked)
}

func TestSearchChannels(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	ch := newChannels(e)

	_, err := ch.SearchChannels(ctx, "  ", 1, 10)
	require.ErrorIs(t, err, apperr.ErrValidation)

	page, err := ch.SearchChannels(ctx, "alice", 1, 10)
	require.NoError(t, err)
	assert.Zero(t, page.Total)
	assert.Empty(t, page.Items)

	fs := &fakeSearch{docs: []models.ChannelDoc{{ID: "1", Username: "alice"}}}
	ch.Search = fs
	page, err = ch.SearchChannels(ctx, "alice", 3, 20)
	require.NoError(t, err)
	assert.Equal(t, int64(1), page.Total)
	assert.Equal(t, 3, page.Page)
	assert.Equal(t, 40, fs.from)
	assert.Equal(t, 20, fs.size)
}
