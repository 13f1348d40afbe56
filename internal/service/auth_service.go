package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"hackathon/internal/auth"
	"hackathon/internal/errors"
	"hackathon/internal/model"
	"hackathon/internal/repository"
)

// AdminIdentity is the single configured administrator.
type AdminIdentity struct {
	Email        string
	Name         string
	PasswordHash string
}

// AuthService handles participant accounts and admin login.
type AuthService interface {
	Signup(ctx context.Context, name, email, password string) (*model.User, string, error)
	Login(ctx context.Context, email, password string) (*model.User, string, error)
	AdminLogin(ctx context.Context, email, password string) (*model.Admin, string, error)
}

type authService struct {
	users      repository.UserRepository
	profiles   Cache
	jwtService *auth.JWTService
	admin      AdminIdentity
	now        func() time.Time
	compare    func(hash, plain string) bool
}

// NewAuthService creates a new authentication service. profiles is the cache
// holding user profiles, refreshed when a login changes lastLogin.
func NewAuthService(users repository.UserRepository, profiles Cache, jwtService *auth.JWTService, admin AdminIdentity) AuthService {
	admin.Email = model.NormalizeEmail(admin.Email)
	return &authService{
		users:      users,
		profiles:   orNoCache(profiles),
		jwtService: jwtService,
		admin:      admin,
		now:        time.Now,
		compare:    auth.ComparePassword,
	}
}

// Signup creates a participant account and returns it with a participant token.
func (s *authService) Signup(ctx context.Context, name, email, password string) (*model.User, string, error) {
	email = model.NormalizeEmail(email)

	existing, err := s.users.FindByEmail(ctx, email)
	if err == nil && existing != nil {
		return nil, "", errors.ErrUserAlreadyExists
	}
	if err != nil && !repository.IsNotFound(err) {
		return nil, "", errors.Internal(fmt.Errorf("check user existence: %w", err))
	}

	hashed, err := auth.HashPassword(password)
	if err != nil {
		return nil, "", errors.Internal(fmt.Errorf("hash password: %w", err))
	}

	user := &model.User{
		Name:         strings.TrimSpace(name),
		Email:        email,
		PasswordHash: hashed,
		Role:         model.RoleParticipant,
	}
	if err := s.users.Create(ctx, user); err != nil {
		if repository.IsDuplicateKey(err) {
			return nil, "", errors.ErrUserAlreadyExists
		}
		return nil, "", errors.Internal(fmt.Errorf("create user: %w", err))
	}

	return s.issue(ctx, user)
}

// Login authenticates a participant. Unknown email and wrong password fail identically.
func (s *authService) Login(ctx context.Context, email, password string) (*model.User, string, error) {
	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		if repository.IsNotFound(err) {
			// keep the response time of unknown emails in line with wrong passwords
			s.compare(auth.DummyHash(), password)
			return nil, "", errors.ErrInvalidCredentials
		}
		return nil, "", errors.Internal(fmt.Errorf("find user: %w", err))
	}
	if !s.compare(user.PasswordHash, password) {
		return nil, "", errors.ErrInvalidCredentials
	}
	return s.issue(ctx, user)
}

func (s *authService) issue(ctx context.Context, user *model.User) (*model.User, string, error) {
	token, err := s.jwtService.GenerateToken(user.ID.String(), model.RoleParticipant)
	if err != nil {
		return nil, "", errors.Internal(fmt.Errorf("generate token: %w", err))
	}

	now := s.now()
	if err := s.users.TouchLastLogin(ctx, user.ID, now); err != nil {
		return nil, "", errors.Internal(fmt.Errorf("update last login: %w", err))
	}
	user.LastLogin = &now
	_ = s.profiles.Delete(ctx, userCacheKey(user.ID))
	return user, token, nil
}

// AdminLogin checks the configured admin identity and returns an admin token.
func (s *authService) AdminLogin(ctx context.Context, email, password string) (*model.Admin, string, error) {
	if s.admin.Email == "" || s.admin.PasswordHash == "" {
		return nil, "", errors.Internal(fmt.Errorf("admin credentials not configured"))
	}
	passwordOK := s.compare(s.admin.PasswordHash, password)
	if model.NormalizeEmail(email) != s.admin.Email || !passwordOK {
		return nil, "", errors.ErrInvalidAdminCredentials
	}

	admin := &model.Admin{
		ID:    model.AdminSubject,
		Name:  s.admin.Name,
		Email: s.admin.Email,
		Role:  model.RoleAdmin,
	}
	token, err := s.jwtService.GenerateToken(admin.ID, model.RoleAdmin)
	if err != nil {
		return nil, "", errors.Internal(fmt.Errorf("generate admin token: %w", err))
	}
	return admin, token, nil
}
