package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"hackathon/internal/errors"
	"hackathon/internal/model"
	"hackathon/internal/repository"
)

const userCacheTTL = 5 * time.Minute

// ProfilePatch is a partial profile update.
type ProfilePatch struct {
	Name  *string `json:"name,omitempty" validate:"omitempty,min=2,max=100,personname"`
	Email *string `json:"email,omitempty" validate:"omitempty,email,max=255"`
}

// UserService exposes participant profile operations.
type UserService interface {
	GetProfile(ctx context.Context, id uuid.UUID) (*model.User, error)
	UpdateProfile(ctx context.Context, id uuid.UUID, patch ProfilePatch) (*model.User, error)
}

type userService struct {
	repo  repository.UserRepository
	cache Cache
}

// NewUserService builds a UserService with repository and cache.
func NewUserService(repo repository.UserRepository, c Cache) UserService {
	return &userService{repo: repo, cache: orNoCache(c)}
}

func (s *userService) GetProfile(ctx context.Context, id uuid.UUID) (*model.User, error) {
	var cached model.User
	if s.cache.GetJSON(ctx, userCacheKey(id), &cached) {
		return &cached, nil
	}

	user, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, errors.ErrUserNotFound
		}
		return nil, errors.Internal(fmt.Errorf("find user: %w", err))
	}

	_ = s.cache.SetJSON(ctx, userCacheKey(id), user, userCacheTTL)
	return user, nil
}

func (s *userService) UpdateProfile(ctx context.Context, id uuid.UUID, patch ProfilePatch) (*model.User, error) {
	user, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, errors.ErrUserNotFound
		}
		return nil, errors.Internal(fmt.Errorf("find user: %w", err))
	}

	if patch.Email != nil {
		email := model.NormalizeEmail(*patch.Email)
		taken, err := s.repo.EmailTakenByOther(ctx, email, id)
		if err != nil {
			return nil, errors.Internal(fmt.Errorf("check email: %w", err))
		}
		if taken {
			return nil, errors.ErrEmailTaken
		}
		user.Email = email
	}
	if patch.Name != nil {
		user.Name = strings.TrimSpace(*patch.Name)
	}

	if err := s.repo.Update(ctx, user); err != nil {
		if repository.IsDuplicateKey(err) {
			return nil, errors.ErrEmailTaken
		}
		return nil, errors.Internal(fmt.Errorf("update user: %w", err))
	}
	_ = s.cache.Delete(ctx, userCacheKey(id))
	return user, nil
}
