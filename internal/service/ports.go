package service

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/Skotchmaster/videotube/internal/media"
	"github.com/Skotchmaster/videotube/internal/models"
)

type UserStore interface {
	CreateUser(ctx context.Context, u *models.User) error
	FindUserByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	FindUserByUsernameOrEmail(ctx context.Context, username, email string) (*models.User, error)
	UpdateUser(ctx context.Context, id uuid.UUID, patch models.UserPatch) (*models.User, error)
	SetRefreshToken(ctx context.Context, id uuid.UUID, token string) error
	SwapRefreshToken(ctx context.Context, id uuid.UUID, current, next string) (bool, error)
}

type ChannelStore interface {
	FindUserByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	ChannelProfile(ctx context.Context, username string, viewerID uuid.UUID) (*models.ChannelProfile, error)
	Subscribe(ctx context.Context, subscriberID, channelID uuid.UUID) error
	Unsubscribe(ctx context.Context, subscriberID, channelID uuid.UUID) error
	FindVideoByID(ctx context.Context, id uuid.UUID) (*models.Video, error)
	RecordWatch(ctx context.Context, userID, videoID uuid.UUID, at time.Time) error
	WatchHistory(ctx context.Context, userID uuid.UUID) ([]models.WatchedVideo, error)
	CreateComment(ctx context.Context, c *models.Comment) error
	ListComments(ctx context.Context, model models.ParentModel, parentID uuid.UUID, offset, limit int) (int64, []models.Comment, error)
	ToggleLike(ctx context.Context, userID uuid.UUID, model models.ParentModel, likedID uuid.UUID) (bool, error)
}

type EventPublisher interface {
	PublishEvent(ctx context.Context, key string, event any) error
}

type ChannelIndexer interface {
	IndexChannel(ctx context.Context, doc models.ChannelDoc) error
}

type ChannelSearcher interface {
	SearchChannels(ctx context.Context, q string, from, size int) (int64, []models.ChannelDoc, error)
}

type MediaStore interface {
	Upload(ctx context.Context, f media.File) (media.Object, error)
	Remove(ctx context.Context, publicID string) error
}
