package models

import (
	"time"

	"github.com/google/uuid"
)

// ChannelProfile is a user seen as a channel by a viewer.
type ChannelProfile struct {
	ID                      uuid.UUID `json:"id"`
	FullName                string    `json:"fullName"`
	Username                string    `json:"username"`
	Email                   string    `json:"email"`
	AvatarURL               string    `json:"avatar"`
	CoverImageURL           string    `json:"coverImage"`
	SubscribersCount        int64     `json:"subscribersCount"`
	ChannelsSubscribedCount int64     `json:"channelsSubscribedCount"`
	IsSubscribed            bool      `json:"isSubscribed"`
}

type VideoOwner struct {
	FullName  string `json:"fullName"`
	Username  string `json:"username"`
	AvatarURL string `json:"avatar"`
}

type WatchedVideo struct {
	ID           uuid.UUID  `json:"id"`
	Title        string     `json:"title"`
	Description  string     `json:"description"`
	VideoURL     string     `json:"videoFile"`
	ThumbnailURL string     `json:"thumbnail"`
	Duration     float64    `json:"duration"`
	Views        int64      `json:"views"`
	WatchedAt    time.Time  `json:"watchedAt"`
	Owner        VideoOwner `json:"owner"`
}

// ChannelDoc is the search document for a channel.
type ChannelDoc struct {
	ID        string `json:"id"`
	Username  string `json:"username"`
	FullName  string `json:"fullName"`
	AvatarURL string `json:"avatar"`
}

func (u *User) ChannelDoc() ChannelDoc {
	return ChannelDoc{
		ID:        u.ID.String(),
		Username:  u.Username,
		FullName:  u.FullName,
		AvatarURL: u.AvatarURL,
	}
}
