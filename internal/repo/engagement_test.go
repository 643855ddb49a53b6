package repo_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/Skotchmaster/videotube/internal/models"
)

func TestComments(t *testing.T) {
	r := newRepo(t)
	ctx := context.Background()
	alice := createUser(t, r, "alice")
	v := createVideo(t, r, alice.ID, "intro")

	for _, text := range []string{"one", "two", "three"} {
		c := &models.Comment{Content: text, OwnerID: alice.ID, ParentID: v.ID, ParentModel: models.ParentVideo}
		require.NoError(t, r.CreateComment(ctx, c))
	}

	total, items, err := r.ListComments(ctx, models.ParentVideo, v.ID, 0, 2)
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)
	assert.Len(t, items, 2)

	_, rest, err := r.ListComments(ctx, models.ParentVideo, v.ID, 2, 2)
	require.NoError(t, err)
	assert.Len(t, rest, 1)

	total, _, err = r.ListComments(ctx, models.ParentComment, v.ID, 0, 10)
	require.NoError(t, err)
	assert.Zero(t, total)
}

func TestToggleLike(t *testing.T) {
	r := newRepo(t)
	ctx := context.Background()
	alice := createUser(t, r, "alice")
	bob := createUser(t, r, "bob")
	v := createVideo(t, r, alice.ID, "intro")

	liked, err := r.ToggleLike(ctx, bob.ID, models.ParentVideo, v.ID)
	require.NoError(t, err)
	assert.True(t, liked)

	liked, err = r.ToggleLike(ctx, alice.ID, models.ParentVideo, v.ID)
	require.NoError(t, err)
	assert.True(t, liked)

	n, err := r.CountLikes(ctx, models.ParentVideo, v.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	liked, err = r.ToggleLike(ctx, bob.ID, models.ParentVideo, v.ID)
	require.NoError(t, err)
	assert.False(t, liked)

	n, err = r.CountLikes(ctx, models.ParentVideo, v.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
}

func TestToggleLike_LosingConcurrentInsertCountsAsLiked(t *testing.T) {
	r := newRepo(t)
	ctx := context.Background()
	alice := createUser(t, r, "alice")
	v := createVideo(t, r, alice.ID, "intro")

	// another request inserts the same like between the lookup and the insert
	raced := false
	err := r.DB.Callback().Create().Before("gorm:create").Register("test:concurrent_like", func(db *gorm.DB) {
		like, ok := db.Statement.Dest.(*models.Like)
		if !ok || raced {
			return
		}
		raced = true
		other := &models.Like{LikedByID: like.LikedByID, LikedModel: like.LikedModel, LikedID: like.LikedID}
		require.NoError(t, db.Session(&gorm.Session{NewDB: true}).Create(other).Error)
	})
	require.NoError(t, err)

	liked, err := r.ToggleLike(ctx, alice.ID, models.ParentVideo, v.ID)
	require.NoError(t, err)
	assert.True(t, liked)
	assert.True(t, raced)
}
