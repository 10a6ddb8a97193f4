package service

import (
	"net/http"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIssueAndParseToken(t *testing.T) {
	authService := NewAuthService("s3cret", time.Minute)

	signed, apiErr := authService.IssueToken(ClientSubject)
	require.Nil(t, apiErr)

	subject, apiErr := authService.ParseToken(signed)
	require.Nil(t, apiErr)
	assert.Equal(t, ClientSubject, subject)
}

func TestParseTokenRejectsWrongSecret(t *testing.T) {
	signed, apiErr := NewAuthService("one", time.Minute).IssueToken(ClientSubject)
	require.Nil(t, apiErr)

	_, apiErr = NewAuthService("two", time.Minute).ParseToken(signed)
	require.NotNil(t, apiErr)
	assert.Equal(t, http.StatusUnauthorized, apiErr.Status)
}

func TestParseTokenRejectsExpired(t *testing.T) {
	authService := NewAuthService("s3cret", time.Minute)
	issuedAt := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	authService.now = func() time.Time { return issuedAt }
	signed, apiErr := authService.IssueToken(ClientSubject)
	require.Nil(t, apiErr)

	authService.now = func() time.Time { return issuedAt.Add(2 * time.Minute) }
	_, apiErr = authService.ParseToken(signed)
	assert.NotNil(t, apiErr)
}

func TestParseTokenRejectsUnsignedTokens(t *testing.T) {
	token := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.RegisteredClaims{Subject: ClientSubject})
	signed, err := token.SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	_, apiErr := NewAuthService("s3cret", time.Minute).ParseToken(signed)
	assert.NotNil(t, apiErr)
}

func TestParseTokenRejectsEmptySubject(t *testing.T) {
	authService := NewAuthService("s3cret", time.Minute)
	signed, apiErr := authService.IssueToken("")
	require.Nil(t, apiErr)

	_, apiErr = authService.ParseToken(signed)
	require.NotNil(t, apiErr)
	assert.Equal(t, "invalid token subject", apiErr.Message)
}

func TestAuthEnabled(t *testing.T) {
	assert.True(t, NewAuthService("x", 0).Enabled())
	assert.False(t, NewAuthService("", 0).Enabled())

	var none *AuthService
	assert.False(t, none.Enabled())
}
