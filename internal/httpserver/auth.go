package httpserver

import (
	"context"
	"mime/multipart"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/videotube/internal/apperr"
	"github.com/Skotchmaster/videotube/internal/logging"
	"github.com/Skotchmaster/videotube/internal/media"
	"github.com/Skotchmaster/videotube/internal/middleware/auth"
	"github.com/Skotchmaster/videotube/internal/models"
	"github.com/Skotchmaster/videotube/internal/service"
	"github.com/Skotchmaster/videotube/internal/transport"
)

type imageUpdater func(ctx context.Context, userID uuid.UUID, f media.File) (*models.User, error)

type AuthHTTP struct {
	Svc          *service.AuthService
	CookieSecure bool
}

func (h *AuthHTTP) Register(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "auth_register")

	var req transport.RegisterRequest
	if err := c.Bind(&req); err != nil {
		l.Warn("register_error", "status", 400, "error", err)
		return apperr.Validation("invalid body")
	}
	in, err := req.Validate()
	if err != nil {
		return err
	}

	avatar, closeAvatar, err := formImage(c, "avatar")
	if err != nil {
		return err
	}
	defer closeAvatar()
	cover, closeCover, err := formImage(c, "coverImage")
	if err != nil {
		return err
	}
	defer closeCover()

	user, err := h.Svc.Register(ctx, in, avatar, cover)
	if err != nil {
		return err
	}
	return respond(c, http.StatusCreated, user, "User registered successfully")
}

func (h *AuthHTTP) Login(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "auth_login")

	var req transport.LoginRequest
	if err := c.Bind(&req); err != nil {
		l.Warn("login_error", "status", 400, "error", err)
		return apperr.Validation("invalid body")
	}
	in, err := req.Validate()
	if err != nil {
		return err
	}

	sess, err := h.Svc.Login(ctx, in)
	if err != nil {
		return err
	}

	h.setSessionCookies(c, sess)
	return respond(c, http.StatusOK, echo.Map{
		"user":         sess.User,
		"accessToken":  sess.Access.Token,
		"refreshToken": sess.Refresh.Token,
	}, "User logged in successfully")
}

// Refresh reads the refresh token from its cookie or, for clients without
// cookies, from the refreshToken body field.
func (h *AuthHTTP) Refresh(c echo.Context) error {
	ctx := c.Request().Context()

	raw := ""
	if ck, err := c.Cookie(auth.RefreshCookie); err == nil {
		raw = ck.Value
	}
	if raw == "" {
		// an unreadable body carries no token; the service reports it as unauthorized
		var req transport.RefreshRequest
		if err := c.Bind(&req); err == nil {
			raw = strings.TrimSpace(req.RefreshToken)
		}
	}

	sess, err := h.Svc.Refresh(ctx, raw)
	if err != nil {
		return err
	}

	h.setSessionCookies(c, sess)
	return respond(c, http.StatusOK, echo.Map{
		"accessToken":  sess.Access.Token,
		"refreshToken": sess.Refresh.Token,
	}, "Access token refreshed")
}

func (h *AuthHTTP) Logout(c echo.Context) error {
	user, err := auth.UserFrom(c)
	if err != nil {
		return err
	}
	if err := h.Svc.Logout(c.Request().Context(), user); err != nil {
		return err
	}

	h.clearSessionCookies(c)
	return respond(c, http.StatusOK, nil, "User logged out")
}

func (h *AuthHTTP) ChangePassword(c echo.Context) error {
	user, err := auth.UserFrom(c)
	if err != nil {
		return err
	}

	var req transport.ChangePasswordRequest
	if err := c.Bind(&req); err != nil {
		return apperr.Validation("invalid body")
	}
	in, err := req.Validate()
	if err != nil {
		return err
	}

	if err := h.Svc.ChangePassword(c.Request().Context(), user.ID, in); err != nil {
		return err
	}

	h.clearSessionCookies(c)
	return respond(c, http.StatusOK, nil, "Password changed successfully")
}

func (h *AuthHTTP) CurrentUser(c echo.Context) error {
	user, err := auth.UserFrom(c)
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, user, "Current user fetched successfully")
}

func (h *AuthHTTP) UpdateAccount(c echo.Context) error {
	user, err := auth.UserFrom(c)
	if err != nil {
		return err
	}

	var req transport.UpdateAccountRequest
	if err := c.Bind(&req); err != nil {
		return apperr.Validation("invalid body")
	}
	in, err := req.Validate()
	if err != nil {
		return err
	}

	updated, err := h.Svc.UpdateAccount(c.Request().Context(), user.ID, in)
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, updated, "Account details updated successfully")
}

func (h *AuthHTTP) UpdateAvatar(c echo.Context) error {
	return h.updateImage(c, "avatar", h.Svc.UpdateAvatar, "Avatar updated successfully")
}

func (h *AuthHTTP) UpdateCoverImage(c echo.Context) error {
	return h.updateImage(c, "coverImage", h.Svc.UpdateCoverImage, "Cover image updated successfully")
}

func (h *AuthHTTP) updateImage(c echo.Context, field string, update imageUpdater, message string) error {
	user, err := auth.UserFrom(c)
	if err != nil {
		return err
	}

	f, closeFile, err := formImage(c, field)
	if err != nil {
		return err
	}
	defer closeFile()
	if f == nil {
		return apperr.Validation(field + " file is missing")
	}

	updated, err := update(c.Request().Context(), user.ID, *f)
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, updated, message)
}

func (h *AuthHTTP) setSessionCookies(c echo.Context, sess *service.Session) {
	c.SetCookie(CreateCookie(auth.AccessCookie, sess.Access.Token, "/", sess.Access.ExpiresAt, h.CookieSecure))
	c.SetCookie(CreateCookie(auth.RefreshCookie, sess.Refresh.Token, "/", sess.Refresh.ExpiresAt, h.CookieSecure))
}

func (h *AuthHTTP) clearSessionCookies(c echo.Context) {
	c.SetCookie(DeleteCookie(auth.AccessCookie, "/", h.CookieSecure))
	c.SetCookie(DeleteCookie(auth.RefreshCookie, "/", h.CookieSecure))
}

// formImage opens the image uploaded under field. It returns a nil file
// when the request is not multipart or the field is absent.
func formImage(c echo.Context, field string) (*media.File, func(), error) {
	noop := func() {}
	if !strings.HasPrefix(c.Request().Header.Get(echo.HeaderContentType), echo.MIMEMultipartForm) {
		return nil, noop, nil
	}

	fh, err := c.FormFile(field)
	if err != nil {
		if err == http.ErrMissingFile {
			return nil, noop, nil
		}
		return nil, noop, apperr.Validation("invalid " + field + " upload")
	}
	if err := transport.CheckImage(fh.Filename, fh.Header.Get(echo.HeaderContentType)); err != nil {
		return nil, noop, err
	}

	src, err := fh.Open()
	if err != nil {
		return nil, noop, apperr.Internal(err)
	}
	return fileFrom(fh, src), func() { _ = src.Close() }, nil
}

func fileFrom(fh *multipart.FileHeader, src multipart.File) *media.File {
	return &media.File{
		Name:        fh.Filename,
		ContentType: fh.Header.Get(echo.HeaderContentType),
		Size:        fh.Size,
		Body:        src,
	}
}
