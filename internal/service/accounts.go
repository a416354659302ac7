package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	apperrors "personapilot/internal/errors"
	"personapilot/internal/model"
	"personapilot/internal/repository"
)

const userCacheKeyPrefix = "user:"

// UserCache stores the sanitized user view. *cache.Client satisfies it.
type UserCache interface {
	GetJSON(ctx context.Context, key string, dst any) bool
	SetJSON(ctx context.Context, key string, value any, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}

// TokenIssuer issues and verifies session tokens. *auth.JWTService satisfies it.
type TokenIssuer interface {
	GeneratePair(userID uuid.UUID) (access, refresh string, err error)
}

// PasswordHasher hashes and compares passwords. *auth.PasswordHasher satisfies it.
type PasswordHasher interface {
	Hash(plain string) (string, error)
	Compare(hash, plain string) bool
	CompareMissing(plain string) bool
}

// TokenPair is a freshly issued access and refresh token.
type TokenPair struct {
	AccessToken  string
	RefreshToken string
}

// accounts loads and saves users, keeping the cached view in step with the store.
type accounts struct {
	users    repository.UserRepository
	cache    UserCache
	cacheTTL time.Duration
}

func (a *accounts) load(ctx context.Context, id uuid.UUID) (*model.User, error) {
	user, err := a.users.FindByID(ctx, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperrors.ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find user: %w", err)
	}
	return user, nil
}

// cached returns the sanitized view, reading through the cache.
func (a *accounts) cached(ctx context.Context, id uuid.UUID) (*model.User, error) {
	key := userCacheKeyPrefix + id.String()
	var user model.User
	if a.cache != nil && a.cache.GetJSON(ctx, key, &user) {
		return &user, nil
	}
	loaded, err := a.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if a.cache != nil {
		_ = a.cache.SetJSON(ctx, key, loaded, a.cacheTTL)
	}
	return loaded, nil
}

func (a *accounts) save(ctx context.Context, user *model.User) error {
	if err := a.users.Update(ctx, user); err != nil {
		return err
	}
	a.forget(ctx, user.ID)
	return nil
}

func (a *accounts) forget(ctx context.Context, id uuid.UUID) {
	if a.cache != nil {
		_ = a.cache.Delete(ctx, userCacheKeyPrefix+id.String())
	}
}

func issuePair(tokens TokenIssuer, id uuid.UUID) (*TokenPair, error) {
	access, refresh, err := tokens.GeneratePair(id)
	if err != nil {
		return nil, fmt.Errorf("generate tokens: %w", err)
	}
	return &TokenPair{AccessToken: access, RefreshToken: refresh}, nil
}
