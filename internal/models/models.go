package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// User is the credential and identity record. PasswordHash and RefreshToken
// never leave the service: they are excluded from JSON and cleared by
// Public.
type User struct {
	ID                 uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Username           string    `gorm:"uniqueIndex;not null" json:"username"`
	Email              string    `gorm:"uniqueIndex;not null" json:"email"`
	FullName           string    `gorm:"index;not null" json:"fullName"`
	AvatarURL          string    `json:"avatar"`
	AvatarPublicID     string    `json:"-"`
	CoverImageURL      string    `json:"coverImage"`
	CoverImagePublicID string    `json:"-"`
	PasswordHash       string    `gorm:"not null" json:"-"`
	RefreshToken       string    `json:"-"`
	CreatedAt          time.Time `json:"createdAt"`
	UpdatedAt          time.Time `json:"updatedAt"`
}

func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	return nil
}

// Public returns a copy safe to attach to a request or send to a client.
func (u User) Public() *User {
	u.PasswordHash = ""
	u.RefreshToken = ""
	return &u
}

// UserPatch is a partial update of a user. Nil fields are left untouched,
// so a patch without PasswordHash never rewrites the stored hash.
type UserPatch struct {
	FullName           *string
	Email              *string
	AvatarURL          *string
	AvatarPublicID     *string
	CoverImageURL      *string
	CoverImagePublicID *string
	PasswordHash       *string
	RefreshToken       *string
}

func (p UserPatch) Columns() map[string]any {
	cols := map[string]any{}
	set := func(name string, v *string) {
		if v != nil {
			cols[name] = *v
		}
	}
	set("full_name", p.FullName)
	set("email", p.Email)
	set("avatar_url", p.AvatarURL)
	set("avatar_public_id", p.AvatarPublicID)
	set("cover_image_url", p.CoverImageURL)
	set("cover_image_public_id", p.CoverImagePublicID)
	set("password_hash", p.PasswordHash)
	set("refresh_token", p.RefreshToken)
	return cols
}

type Video struct {
	ID            uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	OwnerID       uuid.UUID `gorm:"type:uuid;index;not null" json:"owner"`
	Title         string    `gorm:"not null" json:"title"`
	Description   string    `gorm:"not null" json:"description"`
	VideoURL      string    `gorm:"not null" json:"videoFile"`
	VideoPublicID string    `json:"-"`
	ThumbnailURL  string    `gorm:"not null" json:"thumbnail"`
	Duration      float64   `gorm:"not null" json:"duration"`
	Views         int64     `gorm:"default:0" json:"views"`
	IsPublished   bool      `gorm:"default:true" json:"isPublished"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

func (v *Video) BeforeCreate(tx *gorm.DB) error {
	if v.ID == uuid.Nil {
		v.ID = uuid.New()
	}
	return nil
}

type Subscription struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	SubscriberID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_subscriber_channel" json:"subscriber"`
	ChannelID    uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_subscriber_channel;index" json:"channel"`
	CreatedAt    time.Time `json:"createdAt"`
}

func (s *Subscription) BeforeCreate(tx *gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return nil
}

// WatchEntry records that a user watched a video; one row per pair.
type WatchEntry struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey"`
	UserID    uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_watch_user_video"`
	VideoID   uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_watch_user_video"`
	WatchedAt time.Time `gorm:"not null;index"`
}

func (w *WatchEntry) BeforeCreate(tx *gorm.DB) error {
	if w.ID == uuid.Nil {
		w.ID = uuid.New()
	}
	return nil
}

// ParentModel is the kind of record a comment or like points at.
type ParentModel string

const (
	ParentVideo   ParentModel = "Video"
	ParentComment ParentModel = "Comment"
	ParentTweet   ParentModel = "Tweet"
)

func (m ParentModel) Valid() bool {
	switch m {
	case ParentVideo, ParentComment, ParentTweet:
		return true
	}
	return false
}

type Comment struct {
	ID          uuid.UUID   `gorm:"type:uuid;primaryKey" json:"id"`
	Content     string      `gorm:"not null" json:"content"`
	OwnerID     uuid.UUID   `gorm:"type:uuid;not null;index" json:"owner"`
	ParentID    uuid.UUID   `gorm:"type:uuid;not null;index:idx_comment_parent" json:"parent"`
	ParentModel ParentModel `gorm:"not null;index:idx_comment_parent" json:"parentModel"`
	CreatedAt   time.Time   `json:"createdAt"`
	UpdatedAt   time.Time   `json:"updatedAt"`
}

func (c *Comment) BeforeCreate(tx *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}

type Like struct {
	ID         uuid.UUID   `gorm:"type:uuid;primaryKey" json:"id"`
	LikedByID  uuid.UUID   `gorm:"type:uuid;not null;uniqueIndex:idx_like_target" json:"likedBy"`
	LikedID    uuid.UUID   `gorm:"type:uuid;not null;uniqueIndex:idx_like_target" json:"liked"`
	LikedModel ParentModel `gorm:"not null;uniqueIndex:idx_like_target" json:"likedModel"`
	CreatedAt  time.Time   `json:"createdAt"`
}

func (l *Like) BeforeCreate(tx *gorm.DB) error {
	if l.ID == uuid.Nil {
		l.ID = uuid.New()
	}
	return nil
}

// All lists every persisted model, in migration order.
func All() []any {
	return []any{&User{}, &Video{}, &Subscription{}, &WatchEntry{}, &Comment{}, &Like{}}
}
