package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestErrorIs_MatchesByKind(t *testing.T) {
	t.Parallel()

	err := fmt.Errorf("refresh: %w", New(KindTokenExpired, "token superseded"))

	assert.ErrorIs(t, err, ErrTokenExpired)
	assert.NotErrorIs(t, err, ErrInvalidToken)
	assert.Equal(t, KindTokenExpired, KindOf(err))
}

func TestInternal_HidesCause(t *testing.T) {
	t.Parallel()

	cause := errors.New("dial tcp 10.0.0.3:5432: connection refused")
	err := Internal(cause)

	require.ErrorIs(t, err, cause)
	assert.Equal(t, "internal server error", PublicMessage(err))
	assert.Equal(t, http.StatusInternalServerError, KindOf(err).Status())
}

func TestKindOf_UnclassifiedIsInternal(t *testing.T) {
	t.Parallel()

	err := errors.New("boom")
	assert.Equal(t, KindInternal, KindOf(err))
	assert.Equal(t, "internal server error", PublicMessage(err))
}

func TestKindStatus(t *testing.T) {
	t.Parallel()

	tests := []struct {
		kind   Kind
		status int
		name   string
	}{
		{KindValidation, http.StatusBadRequest, "ValidationError"},
		{KindInvalidCredentials, http.StatusUnauthorized, "InvalidCredentials"},
		{KindUnauthorized, http.StatusUnauthorized, "Unauthorized"},
		{KindInvalidToken, http.StatusUnauthorized, "InvalidToken"},
		{KindTokenExpired, http.StatusUnauthorized, "TokenExpired"},
		{KindConflict, http.StatusConflict, "Conflict"},
		{KindNotFound, http.StatusNotFound, "NotFound"},
		{KindInternal, http.StatusInternalServerError, "Internal"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.status, tt.kind.Status(), tt.name)
		assert.Equal(t, tt.name, tt.kind.String())
	}
}
