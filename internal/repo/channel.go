package repo

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/Skotchmaster/videotube/internal/models"
)

// Subscribe is idempotent: subscribing twice keeps one row.
func (r *GormRepo) Subscribe(ctx context.Context, subscriberID, channelID uuid.UUID) error {
	sub := models.Subscription{SubscriberID: subscriberID, ChannelID: channelID}
	return translate(r.DB.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&sub).Error)
}

func (r *GormRepo) Unsubscribe(ctx context.Context, subscriberID, channelID uuid.UUID) error {
	return r.DB.WithContext(ctx).
		Where("subscriber_id = ? AND channel_id = ?", subscriberID, channelID).
		Delete(&models.Subscription{}).Error
}

// ChannelProfile loads the channel by username with its subscription
// counters as seen by viewerID.
func (r *GormRepo) ChannelProfile(ctx context.Context, username string, viewerID uuid.UUID) (*models.ChannelProfile, error) {
	user, err := r.FindUserByUsername(ctx, username)
	if err != nil {
		return nil, err
	}

	db := r.DB.WithContext(ctx)
	profile := models.ChannelProfile{
		ID:            user.ID,
		FullName:      user.FullName,
		Username:      user.Username,
		Email:         user.Email,
		AvatarURL:     user.AvatarURL,
		CoverImageURL: user.CoverImageURL,
	}

	if err := db.Model(&models.Subscription{}).
		Where("channel_id = ?", user.ID).
		Count(&profile.SubscribersCount).Error; err != nil {
		return nil, err
	}
	if err := db.Model(&models.Subscription{}).
		Where("subscriber_id = ?", user.ID).
		Count(&profile.ChannelsSubscribedCount).Error; err != nil {
		return nil, err
	}

	var mine int64
	if err := db.Model(&models.Subscription{}).
		Where("channel_id = ? AND subscriber_id = ?", user.ID, viewerID).
		Count(&mine).Error; err != nil {
		return nil, err
	}
	profile.IsSubscribed = mine > 0

	return &profile, nil
}

func (r *GormRepo) CreateVideo(ctx context.Context, v *models.Video) error {
	return translate(r.DB.WithContext(ctx).Create(v).Error)
}

func (r *GormRepo) FindVideoByID(ctx context.Context, id uuid.UUID) (*models.Video, error) {
	var v models.Video
	if err := r.DB.WithContext(ctx).Where("id = ?", id).First(&v).Error; err != nil {
		return nil, translate(err)
	}
	return &v, nil
}

// RecordWatch moves videoID to the front of the user's history and counts
// the view.
func (r *GormRepo) RecordWatch(ctx context.Context, userID, videoID uuid.UUID, at time.Time) error {
	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("user_id = ? AND video_id = ?", userID, videoID).
			Delete(&models.WatchEntry{}).Error; err != nil {
			return err
		}
		entry := models.WatchEntry{UserID: userID, VideoID: videoID, WatchedAt: at}
		if err := tx.Create(&entry).Error; err != nil {
			return translate(err)
		}
		return tx.Model(&models.Video{}).
			Where("id = ?", videoID).
			UpdateColumn("views", gorm.Expr("views + ?", 1)).Error
	})
}

type watchRow struct {
	ID             uuid.UUID
	Title          string
	Description    string
	VideoURL       string
	ThumbnailURL   string
	Duration       float64
	Views          int64
	WatchedAt      time.Time
	OwnerFullName  string
	OwnerUsername  string
	OwnerAvatarURL string
}

// WatchHistory lists watched videos, most recent first, with their owners.
func (r *GormRepo) WatchHistory(ctx context.Context, userID uuid.UUID) ([]models.WatchedVideo, error) {
	var rows []watchRow
	err := r.DB.WithContext(ctx).
		Table("watch_entries AS w").
		Select(`v.id AS id, v.title AS title, v.description AS description,
			v.video_url AS video_url, v.thumbnail_url AS thumbnail_url,
			v.duration AS duration, v.views AS views, w.watched_at AS watched_at,
			u.full_name AS owner_full_name, u.username AS owner_username,
			u.avatar_url AS owner_avatar_url`).
		Joins("JOIN videos AS v ON v.id = w.video_id").
		Joins("JOIN users AS u ON u.id = v.owner_id").
		Where("w.user_id = ?", userID).
		Order("w.watched_at DESC").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	out := make([]models.WatchedVideo, 0, len(rows))
	for _, row := range rows {
		out = append(out, models.WatchedVideo{
			ID:           row.ID,
			Title:        row.Title,
			Description:  row.Description,
			VideoURL:     row.VideoURL,
			ThumbnailURL: row.ThumbnailURL,
			Duration:     row.Duration,
			Views:        row.Views,
			WatchedAt:    row.WatchedAt,
			Owner: models.VideoOwner{
				FullName:  row.OwnerFullName,
				Username:  row.OwnerUsername,
				AvatarURL: row.OwnerAvatarURL,
			},
		})
	}
	return out, nil
}
