package services

import (
	"testing"
	"time"

	"canedu/internal/models"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testUserID = "6f1c2a8e-52f1-4c3e-9a55-0d6a8c1f2b7d"

func TestAuthenticationRoundTrip(t *testing.T) {
	auth, err := NewAuthentication("secret")
	require.NoError(t, err)

	token, err := auth.CreateToken(&models.UserFromAuth{ID: testUserID, Email: "kid@example.ca", DisplayName: "Kid"}, time.Hour)
	require.NoError(t, err)

	user, err := auth.Validate(token)
	require.NoError(t, err)
	assert.Equal(t, testUserID, user.ID)
	assert.Equal(t, "kid@example.ca", user.Email)
	assert.Equal(t, "Kid", user.DisplayName)
}

func TestAuthenticationRejects(t *testing.T) {
	auth, err := NewAuthentication("secret")
	require.NoError(t, err)
	other, err := NewAuthentication("other")
	require.NoError(t, err)

	expired, err := auth.CreateToken(&models.UserFromAuth{ID: testUserID}, -time.Minute)
	require.NoError(t, err)
	foreign, err := other.CreateToken(&models.UserFromAuth{ID: testUserID}, time.Hour)
	require.NoError(t, err)
	badSubject, err := auth.CreateToken(&models.UserFromAuth{ID: "not-a-uuid"}, time.Hour)
	require.NoError(t, err)
	none, err := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.MapClaims{"sub": testUserID}).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	tests := []struct {
		name  string
		token string
	}{
		{"garbage", "not.a.token"},
		{"expired", expired},
		{"wrong secret", foreign},
		{"subject not uuid", badSubject},
		{"unsigned", none},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := auth.Validate(tt.token)
			assert.Error(t, err)
		})
	}
}

func TestNewAuthenticationRequiresSecret(t *testing.T) {
	_, err := NewAuthentication("")
	assert.Error(t, err)
}
