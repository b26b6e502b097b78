package cryptox

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestHashAndCheck(t *testing.T) {
	hash, err := HashPassword("pw", bcrypt.MinCost)
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(hash, "$2a$"))
	assert.True(t, CheckPassword(hash, "pw"))
	assert.False(t, CheckPassword(hash, "PW"))
	assert.False(t, CheckPassword("not-a-hash", "pw"))
}

func TestHashPassword_SaltedPerCall(t *testing.T) {
	a, err := HashPassword("same", bcrypt.MinCost)
	require.NoError(t, err)
	b, err := HashPassword("same", bcrypt.MinCost)
	require.NoError(t, err)

	assert.NotEqual(t, a, b)
}

func TestHashPassword_InvalidCostFallsBack(t *testing.T) {
	hash, err := HashPassword("pw", 1000)
	require.NoError(t, err)

	cost, err := bcrypt.Cost([]byte(hash))
	require.NoError(t, err)
	assert.Equal(t, DefaultCost, cost)
}

func TestBurnCompare(t *testing.T) {
	assert.False(t, BurnCompare("linkkeeper-dummy-password"))
	assert.False(t, BurnCompare("anything"))
}

func TestHashPassword_ByteLimit(t *testing.T) {
	_, err := HashPassword(strings.Repeat("a", MaxPasswordBytes), bcrypt.MinCost)
	assert.NoError(t, err)

	// 40 two-byte runes: short in characters, too long in bytes.
	_, err = HashPassword(strings.Repeat("п", 40), bcrypt.MinCost)
	assert.ErrorIs(t, err, ErrPasswordTooLong)
}
