package service

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"hackathon/internal/auth"
	"hackathon/internal/errors"
	"hackathon/internal/model"
)

func newTestJWT() *auth.JWTService {
	return auth.NewJWTService("user-secret", "admin-secret", time.Hour)
}

func TestAuthService_Signup(t *testing.T) {
	tests := []struct {
		name          string
		email         string
		setupMock     func(*MockUserRepository)
		expectedError error
	}{
		{
			name:  "successful signup",
			email: " Asha@Example.com ",
			setupMock: func(m *MockUserRepository) {
				m.On("FindByEmail", mock.Anything, "asha@example.com").Return(nil, gorm.ErrRecordNotFound)
				m.On("Create", mock.Anything, mock.AnythingOfType("*model.User")).Return(nil)
				m.On("TouchLastLogin", mock.Anything, mock.AnythingOfType("uuid.UUID"), mock.AnythingOfType("time.Time")).Return(nil)
			},
		},
		{
			name:  "user already exists",
			email: "existing@example.com",
			setupMock: func(m *MockUserRepository) {
				m.On("FindByEmail", mock.Anything, "existing@example.com").Return(&model.User{Email: "existing@example.com"}, nil)
			},
			expectedError: errors.ErrUserAlreadyExists,
		},
		{
			name:  "unique index race",
			email: "race@example.com",
			setupMock: func(m *MockUserRepository) {
				m.On("FindByEmail", mock.Anything, "race@example.com").Return(nil, gorm.ErrRecordNotFound)
				m.On("Create", mock.Anything, mock.AnythingOfType("*model.User")).Return(gorm.ErrDuplicatedKey)
			},
			expectedError: errors.ErrUserAlreadyExists,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockRepo := new(MockUserRepository)
			tt.setupMock(mockRepo)

			jwtService := newTestJWT()
			svc := NewAuthService(mockRepo, nil, jwtService, AdminIdentity{})
			user, token, err := svc.Signup(context.Background(), "Asha Rao", tt.email, "Str0ng!Pass")

			if tt.expectedError != nil {
				assert.ErrorIs(t, err, tt.expectedError)
				assert.Nil(t, user)
				assert.Empty(t, token)
			} else {
				require.NoError(t, err)
				assert.Equal(t, "asha@example.com", user.Email)
				assert.Equal(t, model.RoleParticipant, user.Role)
				assert.NotEqual(t, "Str0ng!Pass", user.PasswordHash)
				assert.True(t, auth.ComparePassword(user.PasswordHash, "Str0ng!Pass"))
				assert.NotNil(t, user.LastLogin)

				claims, err := jwtService.ValidateToken(token, model.RoleParticipant)
				require.NoError(t, err)
				assert.Equal(t, user.ID.String(), claims.UserID)
			}

			mockRepo.AssertExpectations(t)
		})
	}
}

func TestAuthService_Login(t *testing.T) {
	hash, err := auth.HashPassword("Str0ng!Pass")
	require.NoError(t, err)
	stored := &model.User{ID: uuid.New(), Email: "asha@example.com", PasswordHash: hash, Role: model.RoleParticipant}

	tests := []struct {
		name          string
		email         string
		password      string
		setupMock     func(*MockUserRepository)
		expectedError error
	}{
		{
			name:     "successful login",
			email:    "asha@example.com",
			password: "Str0ng!Pass",
			setupMock: func(m *MockUserRepository) {
				m.On("FindByEmail", mock.Anything, "asha@example.com").Return(stored, nil)
				m.On("TouchLastLogin", mock.Anything, stored.ID, mock.AnythingOfType("time.Time")).Return(nil)
			},
		},
		{
			name:     "unknown email",
			email:    "nobody@example.com",
			password: "Str0ng!Pass",
			setupMock: func(m *MockUserRepository) {
				m.On("FindByEmail", mock.Anything, "nobody@example.com").Return(nil, gorm.ErrRecordNotFound)
			},
			expectedError: errors.ErrInvalidCredentials,
		},
		{
			name:     "wrong password",
			email:    "asha@example.com",
			password: "Wr0ng!Pass",
			setupMock: func(m *MockUserRepository) {
				m.On("FindByEmail", mock.Anything, "asha@example.com").Return(stored, nil)
			},
			expectedError: errors.ErrInvalidCredentials,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockRepo := new(MockUserRepository)
			tt.setupMock(mockRepo)

			svc := NewAuthService(mockRepo, nil, newTestJWT(), AdminIdentity{})
			user, token, err := svc.Login(context.Background(), tt.email, tt.password)

			if tt.expectedError != nil {
				assert.ErrorIs(t, err, tt.expectedError)
				assert.Nil(t, user)
				assert.Empty(t, token)
			} else {
				require.NoError(t, err)
				assert.Equal(t, stored.ID, user.ID)
				assert.NotEmpty(t, token)
			}

			mockRepo.AssertExpectations(t)
		})
	}
}

func TestAuthService_AdminLogin(t *testing.T) {
	hash, err := auth.HashPassword("admin-pass")
	require.NoError(t, err)
	jwtService := newTestJWT()
	svc := NewAuthService(new(MockUserRepository), nil, jwtService, AdminIdentity{
		Email:        "Admin@Example.com",
		Name:         "Admin User",
		PasswordHash: hash,
	})

	admin, token, err := svc.AdminLogin(context.Background(), "admin@example.com", "admin-pass")
	require.NoError(t, err)
	assert.Equal(t, model.AdminSubject, admin.ID)
	assert.Equal(t, "Admin User", admin.Name)
	assert.Equal(t, model.RoleAdmin, admin.Role)

	claims, err := jwtService.ValidateToken(token, model.RoleAdmin)
	require.NoError(t, err)
	assert.Equal(t, model.AdminSubject, claims.UserID)
	_, err = jwtService.ValidateToken(token, model.RoleParticipant)
	assert.ErrorIs(t, err, auth.ErrWrongRole)

	_, _, err = svc.AdminLogin(context.Background(), "admin@example.com", "wrong")
	assert.ErrorIs(t, err, errors.ErrInvalidAdminCredentials)
	_, _, err = svc.AdminLogin(context.Background(), "other@example.com", "admin-pass")
	assert.ErrorIs(t, err, errors.ErrInvalidAdminCredentials)
}

func TestUserService_UpdateProfile(t *testing.T) {
	id := uuid.New()
	newUser := func() *model.User {
		return &model.User{ID: id, Name: "Asha Rao", Email: "asha@example.com", PasswordHash: "hash"}
	}

	t.Run("email taken", func(t *testing.T) {
		mockRepo := new(MockUserRepository)
		mockRepo.On("FindByID", mock.Anything, id).Return(newUser(), nil)
		mockRepo.On("EmailTakenByOther", mock.Anything, "taken@example.com", id).Return(true, nil)

		svc := NewUserService(mockRepo, nil)
		email := " Taken@Example.com"
		_, err := svc.UpdateProfile(context.Background(), id, ProfilePatch{Email: &email})
		assert.ErrorIs(t, err, errors.ErrEmailTaken)
		mockRepo.AssertExpectations(t)
	})

	t.Run("updates name and email", func(t *testing.T) {
		mockRepo := new(MockUserRepository)
		mockRepo.On("FindByID", mock.Anything, id).Return(newUser(), nil)
		mockRepo.On("EmailTakenByOther", mock.Anything, "new@example.com", id).Return(false, nil)
		mockRepo.On("Update", mock.Anything, mock.AnythingOfType("*model.User")).Return(nil)

		svc := NewUserService(mockRepo, nil)
		name, email := " Asha R ", "NEW@example.com"
		user, err := svc.UpdateProfile(context.Background(), id, ProfilePatch{Name: &name, Email: &email})
		require.NoError(t, err)
		assert.Equal(t, "Asha R", user.Name)
		assert.Equal(t, "new@example.com", user.Email)
		assert.Equal(t, "hash", user.PasswordHash)
		mockRepo.AssertExpectations(t)
	})

	t.Run("missing user", func(t *testing.T) {
		mockRepo := new(MockUserRepository)
		mockRepo.On("FindByID", mock.Anything, id).Return(nil, gorm.ErrRecordNotFound)

		svc := NewUserService(mockRepo, nil)
		_, err := svc.GetProfile(context.Background(), id)
		assert.ErrorIs(t, err, errors.ErrUserNotFound)
	})
}

func TestAuthService_LoginUnknownEmailStillComparesPassword(t *testing.T) {
	mockRepo := new(MockUserRepository)
	mockRepo.On("FindByEmail", mock.Anything, "ghost@example.com").Return(nil, gorm.ErrRecordNotFound)

	svc := NewAuthService(mockRepo, nil, newTestJWT(), AdminIdentity{}).(*authService)
	var hashes []string
	svc.compare = func(hash, plain string) bool {
		hashes = append(hashes, hash)
		return auth.ComparePassword(hash, plain)
	}

	_, _, err := svc.Login(context.Background(), "ghost@example.com", "Str0ng!Pass")
	assert.ErrorIs(t, err, errors.ErrInvalidCredentials)
	require.Len(t, hashes, 1)
	assert.Equal(t, auth.DummyHash(), hashes[0])
}

func TestAuthService_LoginRefreshesCachedProfile(t *testing.T) {
	hash, err := auth.HashPassword("Str0ng!Pass")
	require.NoError(t, err)
	user := &model.User{ID: uuid.New(), Name: "Asha Rao", Email: "asha@example.com", PasswordHash: hash}

	mockRepo := new(MockUserRepository)
	mockRepo.On("FindByEmail", mock.Anything, "asha@example.com").Return(user, nil)
	mockRepo.On("TouchLastLogin", mock.Anything, user.ID, mock.AnythingOfType("time.Time")).Return(nil)
	mockCache := new(MockCache)
	mockCache.On("Delete", mock.Anything, []string{userCacheKey(user.ID)}).Return(nil)

	svc := NewAuthService(mockRepo, mockCache, newTestJWT(), AdminIdentity{})
	got, _, err := svc.Login(context.Background(), "asha@example.com", "Str0ng!Pass")
	require.NoError(t, err)
	assert.NotNil(t, got.LastLogin)

	mockRepo.AssertExpectations(t)
	mockCache.AssertExpectations(t)
}
