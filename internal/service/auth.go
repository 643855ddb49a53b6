package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/Skotchmaster/videotube/internal/apperr"
	"github.com/Skotchmaster/videotube/internal/events"
	"github.com/Skotchmaster/videotube/internal/hash"
	"github.com/Skotchmaster/videotube/internal/logging"
	"github.com/Skotchmaster/videotube/internal/media"
	"github.com/Skotchmaster/videotube/internal/models"
	"github.com/Skotchmaster/videotube/internal/repo"
	"github.com/Skotchmaster/videotube/internal/tokens"
	"github.com/Skotchmaster/videotube/internal/transport"
)

const sideEffectTimeout = 5 * time.Second

// AuthService owns credentials and the session token lifecycle. Events,
// Index and Media are optional.
type AuthService struct {
	Users  UserStore
	Tokens *tokens.Issuer
	Events EventPublisher
	Index  ChannelIndexer
	Media  MediaStore
	Now    func() time.Time

	// CheckPassword defaults to hash.CheckPassword.
	CheckPassword func(hash, password string) bool
}

// Session is the outcome of a login or a refresh. The refresh token it
// carries is already persisted.
type Session struct {
	User    *models.User
	Access  tokens.Issued
	Refresh tokens.Issued
}

func (s *AuthService) checkPassword(h, password string) bool {
	if s.CheckPassword != nil {
		return s.CheckPassword(h, password)
	}
	return hash.CheckPassword(h, password)
}

func (s *AuthService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

// Register creates an account. Images are uploaded before the user row is
// written and removed again if the write fails.
func (s *AuthService) Register(ctx context.Context, in transport.RegisterInput, avatar, cover *media.File) (*models.User, error) {
	l := logging.FromContext(ctx).With("svc", "auth.register", "username", in.Username)

	if _, err := s.Users.FindUserByUsernameOrEmail(ctx, in.Username, in.Email); err == nil {
		l.Warn("register_failed", "status", 409, "reason", "user already exists")
		return nil, apperr.Conflict("user with email or username already exists")
	} else if !errors.Is(err, repo.ErrNotFound) {
		l.Error("register_failed", "status", 500, "error", err)
		return nil, apperr.Internal(err)
	}

	if s.Media != nil && avatar == nil {
		return nil, apperr.Validation("avatar file is required")
	}

	pwHash, err := hash.HashPassword(in.Password)
	if err != nil {
		l.Error("register_failed", "status", 500, "reason", "cannot hash the password", "error", err)
		return nil, apperr.Internal(err)
	}

	user := &models.User{
		Username:     in.Username,
		Email:        in.Email,
		FullName:     in.FullName,
		PasswordHash: pwHash,
	}

	var uploaded []string
	cleanup := func() {
		for _, id := range uploaded {
			if err := s.Media.Remove(context.WithoutCancel(ctx), id); err != nil {
				l.Warn("media_cleanup_failed", "public_id", id, "error", err)
			}
		}
	}

	if s.Media != nil {
		obj, err := s.Media.Upload(ctx, *avatar)
		if err != nil {
			l.Error("register_failed", "status", 500, "reason", "avatar upload failed", "error", err)
			return nil, apperr.Internal(err)
		}
		uploaded = append(uploaded, obj.PublicID)
		user.AvatarURL, user.AvatarPublicID = obj.URL, obj.PublicID

		if cover != nil {
			obj, err := s.Media.Upload(ctx, *cover)
			if err != nil {
				cleanup()
				l.Error("register_failed", "status", 500, "reason", "cover upload failed", "error", err)
				return nil, apperr.Internal(err)
			}
			uploaded = append(uploaded, obj.PublicID)
			user.CoverImageURL, user.CoverImagePublicID = obj.URL, obj.PublicID
		}
	} else if avatar != nil || cover != nil {
		l.Warn("register_media_ignored", "reason", "media storage not configured")
	}

	if err := s.Users.CreateUser(ctx, user); err != nil {
		cleanup()
		if errors.Is(err, repo.ErrDuplicate) {
			l.Warn("register_failed", "status", 409, "reason", "user already exists")
			return nil, apperr.Conflict("user with email or username already exists")
		}
		l.Error("register_failed", "status", 500, "error", err)
		return nil, apperr.Internal(err)
	}

	l.Info("register_success", "user_id", user.ID)
	s.publish(ctx, events.UserRegistered, user)
	s.index(ctx, user)
	return user.Public(), nil
}

// Login fails with InvalidCredentials without saying which half was wrong.
func (s *AuthService) Login(ctx context.Context, in transport.LoginInput) (*Session, error) {
	l := logging.FromContext(ctx).With("svc", "auth.login")

	user, err := s.Users.FindUserByUsernameOrEmail(ctx, in.Username, in.Email)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			// same bcrypt work as a wrong password, so timing does not reveal the user
			s.checkPassword(hash.DummyHash(), in.Password)
			l.Warn("login_failed", "status", 401, "reason", "unknown user")
			return nil, apperr.ErrInvalidCredentials
		}
		l.Error("login_failed", "status", 500, "error", err)
		return nil, apperr.Internal(err)
	}

	if !s.checkPassword(user.PasswordHash, in.Password) {
		l.Warn("login_failed", "status", 401, "reason", "wrong password", "user_id", user.ID)
		return nil, apperr.ErrInvalidCredentials
	}

	sess, err := s.issue(user)
	if err != nil {
		l.Error("login_failed", "status", 500, "reason", "cannot sign tokens", "error", err)
		return nil, apperr.Internal(err)
	}

	if err := s.Users.SetRefreshToken(ctx, user.ID, sess.Refresh.Token); err != nil {
		l.Error("login_failed", "status", 500, "reason", "cannot persist refresh token", "error", err)
		return nil, apperr.Internal(err)
	}

	l.Info("login_success", "user_id", user.ID)
	s.publish(ctx, events.UserLoggedIn, user)
	return sess, nil
}

// Authenticate resolves an access token to its user. It never writes.
// A bad token and a token for a deleted user fail the same way.
func (s *AuthService) Authenticate(ctx context.Context, raw string) (*models.User, error) {
	if raw == "" {
		return nil, apperr.ErrUnauthorized
	}

	id, _, err := s.Tokens.ParseAccess(raw)
	if err != nil {
		return nil, apperr.ErrInvalidToken
	}

	user, err := s.Users.FindUserByID(ctx, id)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, apperr.ErrInvalidToken
		}
		return nil, apperr.Internal(err)
	}
	return user.Public(), nil
}

// Refresh redeems a refresh token for a new pair. The stored token is
// swapped only if it still equals raw, so a token is redeemed at most once
// even under concurrent requests.
func (s *AuthService) Refresh(ctx context.Context, raw string) (*Session, error) {
	l := logging.FromContext(ctx).With("svc", "auth.refresh")

	if raw == "" {
		l.Warn("refresh_failed", "status", 401, "reason", "no refresh token")
		return nil, apperr.ErrUnauthorized
	}

	id, err := s.Tokens.ParseRefresh(raw)
	if err != nil {
		l.Warn("refresh_failed", "status", 401, "reason", "invalid refresh token", "error", err)
		return nil, apperr.ErrInvalidToken
	}

	user, err := s.Users.FindUserByID(ctx, id)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			l.Warn("refresh_failed", "status", 401, "reason", "unknown user")
			return nil, apperr.ErrInvalidToken
		}
		l.Error("refresh_failed", "status", 500, "error", err)
		return nil, apperr.Internal(err)
	}

	if user.RefreshToken == "" || user.RefreshToken != raw {
		l.Warn("refresh_failed", "status", 401, "reason", "refresh token superseded", "user_id", user.ID)
		return nil, apperr.ErrTokenExpired
	}

	sess, err := s.issue(user)
	if err != nil {
		l.Error("refresh_failed", "status", 500, "reason", "cannot sign tokens", "error", err)
		return nil, apperr.Internal(err)
	}

	swapped, err := s.Users.SwapRefreshToken(ctx, user.ID, raw, sess.Refresh.Token)
	if err != nil {
		l.Error("refresh_failed", "status", 500, "reason", "cannot persist refresh token", "error", err)
		return nil, apperr.Internal(err)
	}
	if !swapped {
		l.Warn("refresh_failed", "status", 401, "reason", "lost concurrent refresh", "user_id", user.ID)
		return nil, apperr.ErrTokenExpired
	}

	l.Info("refresh_success", "user_id", user.ID)
	s.publish(ctx, events.TokenRefreshed, user)
	return sess, nil
}

// Logout drops the stored refresh token, invalidating every outstanding one.
func (s *AuthService) Logout(ctx context.Context, user *models.User) error {
	l := logging.FromContext(ctx).With("svc", "auth.logout", "user_id", user.ID)

	if err := s.Users.SetRefreshToken(ctx, user.ID, ""); err != nil && !errors.Is(err, repo.ErrNotFound) {
		l.Error("logout_failed", "status", 500, "error", err)
		return apperr.Internal(err)
	}

	l.Info("logout_success")
	s.publish(ctx, events.UserLoggedOut, user)
	return nil
}

// ChangePassword re-verifies the old password, stores the new hash and
// clears the refresh token so other sessions must log in again.
func (s *AuthService) ChangePassword(ctx context.Context, userID uuid.UUID, in transport.ChangePasswordInput) error {
	l := logging.FromContext(ctx).With("svc", "auth.change_password", "user_id", userID)

	user, err := s.Users.FindUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return apperr.ErrInvalidToken
		}
		l.Error("change_password_failed", "status", 500, "error", err)
		return apperr.Internal(err)
	}

	if !s.checkPassword(user.PasswordHash, in.OldPassword) {
		l.Warn("change_password_failed", "status", 401, "reason", "wrong old password")
		return apperr.New(apperr.KindInvalidCredentials, "invalid old password")
	}

	pwHash, err := hash.HashPassword(in.NewPassword)
	if err != nil {
		l.Error("change_password_failed", "status", 500, "reason", "cannot hash the password", "error", err)
		return apperr.Internal(err)
	}

	cleared := ""
	if _, err := s.Users.UpdateUser(ctx, userID, models.UserPatch{PasswordHash: &pwHash, RefreshToken: &cleared}); err != nil {
		l.Error("change_password_failed", "status", 500, "error", err)
		return apperr.Internal(err)
	}

	l.Info("change_password_success")
	s.publish(ctx, events.PasswordChanged, user)
	return nil
}

func (s *AuthService) UpdateAccount(ctx context.Context, userID uuid.UUID, in transport.UpdateAccountInput) (*models.User, error) {
	l := logging.FromContext(ctx).With("svc", "auth.update_account", "user_id", userID)

	user, err := s.Users.UpdateUser(ctx, userID, models.UserPatch{FullName: &in.FullName, Email: &in.Email})
	if err != nil {
		switch {
		case errors.Is(err, repo.ErrDuplicate):
			l.Warn("update_account_failed", "status", 409, "reason", "email taken")
			return nil, apperr.Conflict("email already in use")
		case errors.Is(err, repo.ErrNotFound):
			return nil, apperr.NotFound("user not found")
		}
		l.Error("update_account_failed", "status", 500, "error", err)
		return nil, apperr.Internal(err)
	}

	l.Info("update_account_success")
	s.publish(ctx, events.AccountUpdated, user)
	s.index(ctx, user)
	return user.Public(), nil
}

type imageSlot int

const (
	slotAvatar imageSlot = iota
	slotCover
)

func (s *AuthService) UpdateAvatar(ctx context.Context, userID uuid.UUID, f media.File) (*models.User, error) {
	return s.replaceImage(ctx, userID, slotAvatar, f)
}

func (s *AuthService) UpdateCoverImage(ctx context.Context, userID uuid.UUID, f media.File) (*models.User, error) {
	return s.replaceImage(ctx, userID, slotCover, f)
}

// replaceImage uploads f, points the user at it and then drops the previous
// object by its stored public id. Failing to drop the old object is only
// logged.
func (s *AuthService) replaceImage(ctx context.Context, userID uuid.UUID, slot imageSlot, f media.File) (*models.User, error) {
	l := logging.FromContext(ctx).With("svc", "auth.update_image", "user_id", userID, "slot", int(slot))

	if s.Media == nil {
		l.Error("update_image_failed", "status", 500, "reason", "media storage not configured")
		return nil, apperr.Internal(errors.New("media storage not configured"))
	}

	current, err := s.Users.FindUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, apperr.NotFound("user not found")
		}
		return nil, apperr.Internal(err)
	}

	obj, err := s.Media.Upload(ctx, f)
	if err != nil {
		l.Error("update_image_failed", "status", 500, "reason", "upload failed", "error", err)
		return nil, apperr.Internal(err)
	}

	var patch models.UserPatch
	var previous string
	switch slot {
	case slotAvatar:
		patch.AvatarURL, patch.AvatarPublicID = &obj.URL, &obj.PublicID
		previous = current.AvatarPublicID
	case slotCover:
		patch.CoverImageURL, patch.CoverImagePublicID = &obj.URL, &obj.PublicID
		previous = current.CoverImagePublicID
	}

	user, err := s.Users.UpdateUser(ctx, userID, patch)
	if err != nil {
		if rmErr := s.Media.Remove(context.WithoutCancel(ctx), obj.PublicID); rmErr != nil {
			l.Warn("media_cleanup_failed", "public_id", obj.PublicID, "error", rmErr)
		}
		l.Error("update_image_failed", "status", 500, "error", err)
		return nil, apperr.Internal(err)
	}

	if previous != "" {
		if err := s.Media.Remove(ctx, previous); err != nil {
			l.Warn("old_image_remove_failed", "public_id", previous, "error", err)
		}
	}

	l.Info("update_image_success")
	s.index(ctx, user)
	return user.Public(), nil
}

func (s *AuthService) issue(user *models.User) (*Session, error) {
	access, err := s.Tokens.IssueAccess(user)
	if err != nil {
		return nil, err
	}
	refresh, err := s.Tokens.IssueRefresh(user)
	if err != nil {
		return nil, err
	}
	return &Session{User: user.Public(), Access: access, Refresh: refresh}, nil
}

func (s *AuthService) publish(ctx context.Context, typ string, user *models.User) {
	if s.Events == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), sideEffectTimeout)
	defer cancel()

	event := events.UserEvent{Type: typ, UserID: user.ID, Username: user.Username, OccurredAt: s.now().UTC()}
	if err := s.Events.PublishEvent(ctx, user.ID.String(), event); err != nil {
		logging.FromContext(ctx).Error("kafka_publish_failed", "event", typ, "error", err)
	}
}

func (s *AuthService) index(ctx context.Context, user *models.User) {
	if s.Index == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), sideEffectTimeout)
	defer cancel()

	if err := s.Index.IndexChannel(ctx, user.ChannelDoc()); err != nil {
		logging.FromContext(ctx).Error("channel_index_failed", "user_id", user.ID, "error", err)
	}
}
