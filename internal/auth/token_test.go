package auth_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/snapwitch/snapwitch/internal/auth"
)

func newTestTokenService() *auth.TokenService {
	return auth.NewTokenService(auth.TokenConfig{
		SigningKey: "test-signing-key",
	})
}

func TestTokenService_IssueAndValidate(t *testing.T) {
	svc := newTestTokenService()

	token, expiresAt, err := svc.Issue("widget-app")
	require.NoError(t, err)
	assert.NotEmpty(t, token)
	assert.WithinDuration(t, time.Now().Add(auth.TokenExpiry), expiresAt, time.Minute)

	client, err := svc.Validate(token)
	require.NoError(t, err)
	assert.Equal(t, "widget-app", client)
}

func TestTokenService_VerifySecret(t *testing.T) {
	svc := newTestTokenService()

	assert.True(t, svc.VerifySecret("test-signing-key"))
	assert.False(t, svc.VerifySecret("wrong-key"))
	assert.False(t, svc.VerifySecret(""))
}

func TestTokenService_Validate_WrongKey(t *testing.T) {
	svc := newTestTokenService()
	other := auth.NewTokenService(auth.TokenConfig{SigningKey: "different-key"})

	token, _, err := svc.Issue("widget-app")
	require.NoError(t, err)

	_, err = other.Validate(token)
	assert.ErrorIs(t, err, auth.ErrInvalidToken)
}

func TestTokenService_Validate_WrongIssuer(t *testing.T) {
	issued := auth.NewTokenService(auth.TokenConfig{
		SigningKey: "shared-key",
		Issuer:     "someone-else",
	})
	validating := auth.NewTokenService(auth.TokenConfig{
		SigningKey: "shared-key",
	})

	token, _, err := issued.Issue("widget-app")
	require.NoError(t, err)

	_, err = validating.Validate(token)
	assert.ErrorIs(t, err, auth.ErrInvalidToken)
}

func TestTokenService_Validate_Garbage(t *testing.T) {
	svc := newTestTokenService()

	_, err := svc.Validate("not-a-jwt")
	assert.ErrorIs(t, err, auth.ErrInvalidToken)
}
