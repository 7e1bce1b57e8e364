package service

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAuthService_RoundTrip(t *testing.T) {
	auth := NewAuthService("secret", time.Hour)

	token, err := auth.GenerateJWT("user-1")
	require.NoError(t, err)

	userID, err := auth.UserID(token)
	require.NoError(t, err)
	assert.Equal(t, "user-1", userID)
}

func TestAuthService_Rejects(t *testing.T) {
	auth := NewAuthService("secret", time.Hour)

	expired, err := NewAuthService("secret", -time.Hour).GenerateJWT("user-1")
	require.NoError(t, err)

	otherKey, err := NewAuthService("other", time.Hour).GenerateJWT("user-1")
	require.NoError(t, err)

	noUser, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"exp": time.Now().Add(time.Hour).Unix(),
	}).SignedString([]byte("secret"))
	require.NoError(t, err)

	tests := []struct {
		name  string
		token string
	}{
		{"garbage", "not-a-token"},
		{"expired", expired},
		{"wrong key", otherKey},
		{"missing user_id", noUser},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := auth.UserID(tt.token)
			assert.ErrorIs(t, err, ErrInvalidToken)
		})
	}
}
