package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/transitpulse/bustracker/internal/models"
)

func signToken(t *testing.T, secret string, claims jwt.MapClaims) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(secret))
	require.NoError(t, err)
	return signed
}

func TestValidateToken(t *testing.T) {
	svc := NewService("shared-secret")
	exp := time.Now().Add(time.Hour).Unix()
	signed := signToken(t, "shared-secret", jwt.MapClaims{
		"user_id":  "user-42",
		"username": "driver42",
		"role":     "driver",
		"exp":      exp,
	})

	claims, err := svc.ValidateToken(signed)
	require.NoError(t, err)
	assert.Equal(t, "user-42", claims.UserID)
	assert.Equal(t, "driver42", claims.Username)
	assert.Equal(t, models.RoleDriver, claims.Role)
	assert.Equal(t, exp, claims.Exp)

	// The Bearer prefix is accepted too.
	claims, err = svc.ValidateToken("Bearer " + signed)
	require.NoError(t, err)
	assert.Equal(t, "user-42", claims.UserID)
}

func TestValidateToken_WrongSecret(t *testing.T) {
	svc := NewService("shared-secret")
	signed := signToken(t, "some-other-secret", jwt.MapClaims{
		"user_id": "user-42",
		"exp":     time.Now().Add(time.Hour).Unix(),
	})

	_, err := svc.ValidateToken(signed)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestValidateToken_Expired(t *testing.T) {
	svc := NewService("shared-secret")
	signed := signToken(t, "shared-secret", jwt.MapClaims{
		"user_id": "user-42",
		"exp":     time.Now().Add(-time.Minute).Unix(),
	})

	_, err := svc.ValidateToken(signed)
	assert.ErrorIs(t, err, ErrExpiredToken)
}

func TestValidateToken_Malformed(t *testing.T) {
	svc := NewService("shared-secret")

	_, err := svc.ValidateToken("not-a-token")
	assert.ErrorIs(t, err, ErrInvalidToken)

	// Valid signature but no user identity.
	signed := signToken(t, "shared-secret", jwt.MapClaims{
		"exp": time.Now().Add(time.Hour).Unix(),
	})
	_, err = svc.ValidateToken(signed)
	assert.ErrorIs(t, err, ErrInvalidToken)
}
