package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hackathon/internal/model"
)

func newTestService() *JWTService {
	return NewJWTService("user-secret", "admin-secret", time.Hour)
}

func TestJWTService_RoundTrip(t *testing.T) {
	svc := newTestService()

	for _, role := range []model.Role{model.RoleParticipant, model.RoleAdmin} {
		token, err := svc.GenerateToken("subject-1", role)
		require.NoError(t, err)

		claims, err := svc.ValidateToken(token, role)
		require.NoError(t, err)
		assert.Equal(t, "subject-1", claims.UserID)
		assert.Equal(t, role, claims.Role)
		assert.NotEmpty(t, claims.ID)
	}
}

func TestJWTService_RolesAreSegregated(t *testing.T) {
	svc := newTestService()

	participant, err := svc.GenerateToken("u1", model.RoleParticipant)
	require.NoError(t, err)
	admin, err := svc.GenerateToken("admin", model.RoleAdmin)
	require.NoError(t, err)

	_, err = svc.ValidateToken(participant, model.RoleAdmin)
	assert.ErrorIs(t, err, ErrWrongRole)

	_, err = svc.ValidateToken(admin, model.RoleParticipant)
	assert.ErrorIs(t, err, ErrWrongRole)
}

func TestJWTService_InvalidTokens(t *testing.T) {
	svc := newTestService()

	_, err := svc.ValidateToken("not-a-jwt", model.RoleParticipant)
	assert.ErrorIs(t, err, ErrTokenInvalid)

	foreign := NewJWTService("other-user", "other-admin", time.Hour)
	token, err := foreign.GenerateToken("u1", model.RoleParticipant)
	require.NoError(t, err)
	_, err = svc.ValidateToken(token, model.RoleParticipant)
	assert.ErrorIs(t, err, ErrTokenInvalid)
}

func TestJWTService_Expired(t *testing.T) {
	svc := newTestService()
	svc.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
	token, err := svc.GenerateToken("u1", model.RoleParticipant)
	require.NoError(t, err)

	svc.now = time.Now
	_, err = svc.ValidateToken(token, model.RoleParticipant)
	assert.ErrorIs(t, err, ErrTokenExpired)
}

func TestPasswordHashing(t *testing.T) {
	hash, err := HashPassword("Str0ng!Pass")
	require.NoError(t, err)

	assert.NotEqual(t, "Str0ng!Pass", hash)
	assert.True(t, ComparePassword(hash, "Str0ng!Pass"))
	assert.False(t, ComparePassword(hash, "wrong"))
}
