package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/Skotchmaster/videotube/internal/apperr"
	"github.com/Skotchmaster/videotube/internal/logging"
	"github.com/Skotchmaster/videotube/internal/models"
	"github.com/Skotchmaster/videotube/internal/repo"
	"github.com/Skotchmaster/videotube/internal/transport"
	"github.com/Skotchmaster/videotube/internal/util"
)

// ChannelService serves the social side: channel pages, subscriptions,
// watch history, comments, likes and channel search. Search is optional.
type ChannelService struct {
	Store  ChannelStore
	Search ChannelSearcher
	Now    func() time.Time
}

type Page[T any] struct {
	Total int64 `json:"total"`
	Page  int   `json:"page"`
	Size  int   `json:"size"`
	Items []T   `json:"items"`
}

func (s *ChannelService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

func (s *ChannelService) Profile(ctx context.Context, username string, viewerID uuid.UUID) (*models.ChannelProfile, error) {
	username = strings.ToLower(strings.TrimSpace(username))
	if username == "" {
		return nil, apperr.Validation("username is missing")
	}

	profile, err := s.Store.ChannelProfile(ctx, username, viewerID)
	if err != nil {
		return nil, notFoundOr(ctx, err, "channel does not exist")
	}
	return profile, nil
}

func (s *ChannelService) Subscribe(ctx context.Context, subscriberID, channelID uuid.UUID) error {
	if subscriberID == channelID {
		return apperr.Validation("cannot subscribe to your own channel")
	}
	if _, err := s.Store.FindUserByID(ctx, channelID); err != nil {
		return notFoundOr(ctx, err, "channel does not exist")
	}
	if err := s.Store.Subscribe(ctx, subscriberID, channelID); err != nil {
		return internal(ctx, "subscribe_failed", err)
	}
	return nil
}

func (s *ChannelService) Unsubscribe(ctx context.Context, subscriberID, channelID uuid.UUID) error {
	if _, err := s.Store.FindUserByID(ctx, channelID); err != nil {
		return notFoundOr(ctx, err, "channel does not exist")
	}
	if err := s.Store.Unsubscribe(ctx, subscriberID, channelID); err != nil {
		return internal(ctx, "unsubscribe_failed", err)
	}
	return nil
}

func (s *ChannelService) History(ctx context.Context, userID uuid.UUID) ([]models.WatchedVideo, error) {
	history, err := s.Store.WatchHistory(ctx, userID)
	if err != nil {
		return nil, internal(ctx, "history_failed", err)
	}
	return history, nil
}

// RecordWatch moves the video to the front of the user's history.
func (s *ChannelService) RecordWatch(ctx context.Context, userID, videoID uuid.UUID) error {
	if _, err := s.Store.FindVideoByID(ctx, videoID); err != nil {
		return notFoundOr(ctx, err, "video does not exist")
	}
	if err := s.Store.RecordWatch(ctx, userID, videoID, s.now().UTC()); err != nil {
		return internal(ctx, "record_watch_failed", err)
	}
	return nil
}

func (s *ChannelService) AddComment(ctx context.Context, userID, parentID uuid.UUID, in transport.CommentInput) (*models.Comment, error) {
	if in.ParentModel == models.ParentVideo {
		if _, err := s.Store.FindVideoByID(ctx, parentID); err != nil {
			return nil, notFoundOr(ctx, err, "video does not exist")
		}
	}

	c := &models.Comment{
		Content:     in.Content,
		OwnerID:     userID,
		ParentID:    parentID,
		ParentModel: in.ParentModel,
	}
	if err := s.Store.CreateComment(ctx, c); err != nil {
		return nil, internal(ctx, "add_comment_failed", err)
	}
	return c, nil
}

func (s *ChannelService) Comments(ctx context.Context, model models.ParentModel, parentID uuid.UUID, page, size int) (*Page[models.Comment], error) {
	from, limit := util.Calculate(page, size)
	total, items, err := s.Store.ListComments(ctx, model, parentID, from, limit)
	if err != nil {
		return nil, internal(ctx, "list_comments_failed", err)
	}
	return &Page[models.Comment]{Total: total, Page: from/limit + 1, Size: limit, Items: items}, nil
}

func (s *ChannelService) ToggleLike(ctx context.Context, userID uuid.UUID, model models.ParentModel, likedID uuid.UUID) (bool, error) {
	liked, err := s.Store.ToggleLike(ctx, userID, model, likedID)
	if err != nil {
		return false, internal(ctx, "toggle_like_failed", err)
	}
	return liked, nil
}

// SearchChannels returns an empty page when search is not configured.
func (s *ChannelService) SearchChannels(ctx context.Context, q string, page, size int) (*Page[models.ChannelDoc], error) {
	q = strings.TrimSpace(q)
	if q == "" {
		return nil, apperr.Validation("query is required")
	}

	from, limit := util.Calculate(page, size)
	result := &Page[models.ChannelDoc]{Page: from/limit + 1, Size: limit, Items: []models.ChannelDoc{}}
	if s.Search == nil {
		return result, nil
	}

	total, docs, err := s.Search.SearchChannels(ctx, q, from, limit)
	if err != nil {
		return nil, internal(ctx, "search_failed", err)
	}
	result.Total, result.Items = total, docs
	return result, nil
}

func notFoundOr(ctx context.Context, err error, msg string) error {
	if errors.Is(err, repo.ErrNotFound) {
		return apperr.NotFound(msg)
	}
	return internal(ctx, "store_failed", err)
}

func internal(ctx context.Context, event string, err error) error {
	logging.FromContext(ctx).With("svc", "channel").Error(event, "status", 500, "error", err)
	return apperr.Internal(err)
}
