package auth

import (
	"errors"
	"testing"
	"time"

	"github.com/dmitrijs2005/linkkeeper/internal/common"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIssueAndVerify_Success(t *testing.T) {
	t.Parallel()

	s := NewTokenService([]byte("super-secret"))

	tok, err := s.Issue("user-123", PurposeSession, time.Hour)
	require.NoError(t, err)

	got, err := s.Verify(tok, PurposeSession)
	require.NoError(t, err)
	assert.Equal(t, "user-123", got)
}

func TestIssue_TokensAreUnique(t *testing.T) {
	t.Parallel()

	s := NewTokenService([]byte("k"))
	a, err := s.Issue("u1", PurposeReset, time.Minute)
	require.NoError(t, err)
	b, err := s.Issue("u1", PurposeReset, time.Minute)
	require.NoError(t, err)

	assert.NotEqual(t, a, b)
}

func TestVerify_Expired(t *testing.T) {
	t.Parallel()

	s := NewTokenService([]byte("secret"))
	tok, err := s.Issue("u1", PurposeActivation, -1*time.Second)
	require.NoError(t, err)

	_, err = s.Verify(tok, PurposeActivation)
	assert.ErrorIs(t, err, common.ErrInvalidToken)
	assert.ErrorIs(t, err, jwt.ErrTokenExpired)
}

func TestVerify_ExpiresWithClock(t *testing.T) {
	t.Parallel()

	s := NewTokenService([]byte("secret"))
	now := time.Now()
	s.now = func() time.Time { return now }

	tok, err := s.Issue("u1", PurposeSession, time.Minute)
	require.NoError(t, err)

	s.now = func() time.Time { return now.Add(2 * time.Minute) }
	_, err = s.Verify(tok, PurposeSession)
	assert.ErrorIs(t, err, common.ErrInvalidToken)
}

func TestVerify_WrongSecret(t *testing.T) {
	t.Parallel()

	tok, err := NewTokenService([]byte("right-secret")).Issue("u2", PurposeSession, time.Hour)
	require.NoError(t, err)

	_, err = NewTokenService([]byte("wrong-secret")).Verify(tok, PurposeSession)
	assert.ErrorIs(t, err, common.ErrInvalidToken)
}

func TestVerify_WrongPurpose(t *testing.T) {
	t.Parallel()

	s := NewTokenService([]byte("k"))
	tok, err := s.Issue("u3", PurposeActivation, time.Hour)
	require.NoError(t, err)

	_, err = s.Verify(tok, PurposeSession)
	assert.ErrorIs(t, err, common.ErrInvalidToken)

	_, err = s.Verify(tok, PurposeReset)
	assert.ErrorIs(t, err, common.ErrInvalidToken)
}

func TestVerify_RejectsOtherAlgorithms(t *testing.T) {
	t.Parallel()

	unsigned := jwt.NewWithClaims(jwt.SigningMethodNone, Claims{
		RegisteredClaims: jwt.RegisteredClaims{ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour))},
		UserID:           "u4",
		Purpose:          PurposeSession,
	})
	tok, err := unsigned.SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	_, err = NewTokenService([]byte("k")).Verify(tok, PurposeSession)
	assert.True(t, errors.Is(err, common.ErrInvalidToken))
}

func TestVerify_Malformed(t *testing.T) {
	t.Parallel()

	_, err := NewTokenService([]byte("k")).Verify("not.a.jwt", PurposeSession)
	assert.ErrorIs(t, err, common.ErrInvalidToken)
}
