package hash

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestHashPassword_RoundTrip(t *testing.T) {
	passwords := []string{"pw12345678", "correct horse battery staple", "пароль-на-кириллице"}

	for _, p := range passwords {
		h, err := HashPassword(p)
		require.NoError(t, err)
		assert.NotEqual(t, p, h)
		assert.True(t, CheckPassword(h, p))
		assert.False(t, CheckPassword(h, p+"x"))
	}
}

func TestHashPassword_SaltsEveryCall(t *testing.T) {
	h1, err := HashPassword("pw12345678")
	require.NoError(t, err)
	h2, err := HashPassword("pw12345678")
	require.NoError(t, err)

	assert.NotEqual(t, h1, h2)
	assert.True(t, CheckPassword(h1, "pw12345678"))
	assert.True(t, CheckPassword(h2, "pw12345678"))
}

func TestHashPassword_UsesConfiguredCost(t *testing.T) {
	h, err := HashPassword("pw12345678")
	require.NoError(t, err)

	cost, err := bcrypt.Cost([]byte(h))
	require.NoError(t, err)
	assert.Equal(t, Cost, cost)
}

func TestCheckPassword_MalformedHashIsMismatch(t *testing.T) {
	assert.False(t, CheckPassword("", "pw12345678"))
	assert.False(t, CheckPassword("not-a-bcrypt-hash", "pw12345678"))
	assert.False(t, CheckPassword("$2a$10$short", "pw12345678"))
}

func TestDummyHash(t *testing.T) {
	h := DummyHash()
	assert.Equal(t, h, DummyHash())

	cost, err := bcrypt.Cost([]byte(h))
	require.NoError(t, err)
	assert.Equal(t, Cost, cost)
	assert.False(t, CheckPassword(h, "pw12345678"))
}
