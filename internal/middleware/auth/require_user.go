package auth

import (
	"context"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/videotube/internal/apperr"
	"github.com/Skotchmaster/videotube/internal/logging"
	"github.com/Skotchmaster/videotube/internal/models"
)

const (
	AccessCookie  = "accessToken"
	RefreshCookie = "refreshToken"

	userKey = "user"
)

type Authenticator interface {
	Authenticate(ctx context.Context, raw string) (*models.User, error)
}

// AccessToken takes the token from the accessToken cookie, falling back to
// an Authorization: Bearer header.
func AccessToken(c echo.Context) string {
	if ck, err := c.Cookie(AccessCookie); err == nil && ck.Value != "" {
		return ck.Value
	}
	h := c.Request().Header.Get(echo.HeaderAuthorization)
	if len(h) > 7 && strings.EqualFold(h[:7], "bearer ") {
		return strings.TrimSpace(h[7:])
	}
	return ""
}

// RequireUser attaches the authenticated user to the request. A request
// that fails authentication never reaches next.
func RequireUser(a Authenticator) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			ctx := c.Request().Context()

			user, err := a.Authenticate(ctx, AccessToken(c))
			if err != nil {
				logging.FromContext(ctx).Warn("auth_failed", "status", apperr.KindOf(err).Status(), "reason", apperr.KindOf(err).String())
				return err
			}

			c.Set(userKey, user)
			req := c.Request().WithContext(logging.IntoContext(ctx, logging.FromContext(ctx).With("user_id", user.ID)))
			c.SetRequest(req)
			return next(c)
		}
	}
}

// UserFrom returns the user set by RequireUser.
func UserFrom(c echo.Context) (*models.User, error) {
	u, ok := c.Get(userKey).(*models.User)
	if !ok || u == nil {
		return nil, apperr.ErrUnauthorized
	}
	return u, nil
}
