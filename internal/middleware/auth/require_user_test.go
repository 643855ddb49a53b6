package auth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Skotchmaster/videotube/internal/apperr"
	"github.com/Skotchmaster/videotube/internal/models"
)

type stubAuth map[string]*models.User

func (s stubAuth) Authenticate(_ context.Context, raw string) (*models.User, error) {
	if raw == "" {
		return nil, apperr.ErrUnauthorized
	}
	if u, ok := s[raw]; ok {
		return u, nil
	}
	return nil, apperr.ErrInvalidToken
}

func run(t *testing.T, a Authenticator, req *http.Request) (called bool, user *models.User, err error) {
	t.Helper()
	e := echo.New()
	c := e.NewContext(req, httptest.NewRecorder())

	h := RequireUser(a)(func(c echo.Context) error {
		called = true
		user, err = UserFrom(c)
		return err
	})
	if herr := h(c); herr != nil {
		err = herr
	}
	return called, user, err
}

func TestRequireUser(t *testing.T) {
	alice := &models.User{ID: uuid.New(), Username: "alice"}
	bob := &models.User{ID: uuid.New(), Username: "bob"}
	a := stubAuth{"alice-token": alice, "bob-token": bob}

	t.Run("missing token", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		called, _, err := run(t, a, req)
		assert.False(t, called)
		require.ErrorIs(t, err, apperr.ErrUnauthorized)
	})

	t.Run("bad token is not forwarded", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set(echo.HeaderAuthorization, "Bearer forged")
		called, _, err := run(t, a, req)
		assert.False(t, called)
		require.ErrorIs(t, err, apperr.ErrInvalidToken)
	})

	t.Run("bearer header", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set(echo.HeaderAuthorization, "Bearer bob-token")
		called, u, err := run(t, a, req)
		require.NoError(t, err)
		assert.True(t, called)
		assert.Equal(t, "bob", u.Username)
	})

	t.Run("cookie wins over header", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.AddCookie(&http.Cookie{Name: AccessCookie, Value: "alice-token"})
		req.Header.Set(echo.HeaderAuthorization, "Bearer bob-token")
		_, u, err := run(t, a, req)
		require.NoError(t, err)
		assert.Equal(t, "alice", u.Username)
	})
}

func TestAccessToken(t *testing.T) {
	e := echo.New()

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(echo.HeaderAuthorization, "bearer  abc ")
	assert.Equal(t, "abc", AccessToken(e.NewContext(req, httptest.NewRecorder())))

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(echo.HeaderAuthorization, "Basic abc")
	assert.Empty(t, AccessToken(e.NewContext(req, httptest.NewRecorder())))

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: AccessCookie, Value: ""})
	assert.Empty(t, AccessToken(e.NewContext(req, httptest.NewRecorder())))
}

func TestUserFrom_Missing(t *testing.T) {
	e := echo.New()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), httptest.NewRecorder())
	_, err := UserFrom(c)
	require.ErrorIs(t, err, apperr.ErrUnauthorized)
}
