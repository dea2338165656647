package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestValidateRegistration(t *testing.T) {
	assert.NoError(t, ValidateRegistration("alice", "longenough", "longenough"))
	assert.ErrorIs(t, ValidateRegistration("ab", "longenough", "longenough"), ErrUsernameTooShort)
	assert.ErrorIs(t, ValidateRegistration("alice", "short", "short"), ErrPasswordTooShort)
	assert.ErrorIs(t, ValidateRegistration("alice", "longenough", "different"), ErrPasswordMismatch)
}

func TestPasswordHashRoundTrip(t *testing.T) {
	hash, err := HashPassword("correct horse", bcrypt.MinCost)
	require.NoError(t, err)
	require.NotEqual(t, "correct horse", hash)

	assert.NoError(t, CheckPassword(hash, "correct horse"))
	assert.ErrorIs(t, CheckPassword(hash, "battery staple"), ErrInvalidCredentials)
	assert.ErrorIs(t, CheckPassword("not-a-hash", "anything"), ErrInvalidCredentials)
}

func TestTokenRoundTrip(t *testing.T) {
	issuer := NewTokenIssuer("test-secret-test-secret", time.Hour)

	token, err := issuer.Issue(42)
	require.NoError(t, err)

	userID, err := issuer.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, int64(42), userID)
}

func TestTokenRejectsTampering(t *testing.T) {
	issuer := NewTokenIssuer("test-secret-test-secret", time.Hour)
	other := NewTokenIssuer("another-secret-entirely", time.Hour)

	token, err := issuer.Issue(42)
	require.NoError(t, err)

	_, err = other.Verify(token)
	assert.ErrorIs(t, err, ErrInvalidToken)

	_, err = issuer.Verify(token + "x")
	assert.ErrorIs(t, err, ErrInvalidToken)

	_, err = issuer.Verify("")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestTokenExpiry(t *testing.T) {
	issuer := NewTokenIssuer("test-secret-test-secret", time.Millisecond)

	token, err := issuer.Issue(7)
	require.NoError(t, err)

	time.Sleep(5 * time.Millisecond)
	_, err = issuer.Verify(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}
