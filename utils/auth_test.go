package utils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenIssuer_AccessRoundTrip(t *testing.T) {
	ti := NewTokenIssuer("access", "refresh", time.Hour, 24*time.Hour)

	token, err := ti.AccessToken("user-1")
	require.NoError(t, err)

	claims, err := ti.ParseAccess(token)
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.UserID)
	assert.Empty(t, claims.AdminID)
	assert.NotEmpty(t, claims.Id)
}

func TestTokenIssuer_SecretsAreSeparate(t *testing.T) {
	ti := NewTokenIssuer("access", "refresh", time.Hour, 24*time.Hour)

	refresh, err := ti.RefreshToken("user-1")
	require.NoError(t, err)

	_, err = ti.ParseAccess(refresh)
	assert.ErrorIs(t, err, ErrInvalidToken)

	claims, err := ti.ParseRefresh(refresh)
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.UserID)
}

func TestTokenIssuer_Expired(t *testing.T) {
	ti := NewTokenIssuer("access", "refresh", time.Minute, time.Minute)
	ti.now = func() time.Time { return time.Now().Add(-time.Hour) }

	token, err := ti.AccessToken("user-1")
	require.NoError(t, err)

	_, err = ti.ParseAccess(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestTokenIssuer_AdminToken(t *testing.T) {
	ti := NewTokenIssuer("access", "refresh", time.Hour, time.Hour)

	token, err := ti.AdminToken("admin-1", "superadmin")
	require.NoError(t, err)

	claims, err := ti.ParseAccess(token)
	require.NoError(t, err)
	assert.Equal(t, "admin-1", claims.AdminID)
	assert.Equal(t, "superadmin", claims.Role)
	assert.Empty(t, claims.UserID)
}

func TestTokenIssuer_RefreshTokensAreUnique(t *testing.T) {
	ti := NewTokenIssuer("access", "refresh", time.Hour, time.Hour)

	a, err := ti.RefreshToken("user-1")
	require.NoError(t, err)
	b, err := ti.RefreshToken("user-1")
	require.NoError(t, err)

	assert.NotEqual(t, a, b)
}

func TestTokenIssuer_Garbage(t *testing.T) {
	ti := NewTokenIssuer("access", "refresh", time.Hour, time.Hour)

	_, err := ti.ParseAccess("not.a.token")
	assert.ErrorIs(t, err, ErrInvalidToken)
}
