package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	apperrors "personapilot/internal/errors"
	"personapilot/internal/model"
	"personapilot/internal/repository"
)

// UsageStatus reports the user's post quota for today.
type UsageStatus struct {
	Plan                model.Plan       `json:"plan"`
	Limits              model.PlanLimits `json:"limits"`
	PostsGenerated      int              `json:"postsGenerated"`
	PostsGeneratedToday int              `json:"postsGeneratedToday"`
	PostsRemainingToday int              `json:"postsRemainingToday"`
	CanGenerate         bool             `json:"canGenerate"`
}

// UsageService tracks daily post generation against plan limits.
type UsageService interface {
	Status(ctx context.Context, userID uuid.UUID) (*UsageStatus, error)
	RecordPost(ctx context.Context, userID uuid.UUID) (*UsageStatus, error)
}

type usageService struct {
	accounts
	now func() time.Time
}

// NewUsageService creates a new usage service.
func NewUsageService(users repository.UserRepository, cache UserCache) UsageService {
	return &usageService{accounts: accounts{users: users, cache: cache}, now: time.Now}
}

// Status applies the daily reset, persisting it when the day has rolled over.
func (s *usageService) Status(ctx context.Context, userID uuid.UUID) (*UsageStatus, error) {
	user, err := s.load(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user.ResetDailyUsage(s.now()) {
		if err := s.save(ctx, user); err != nil {
			return nil, fmt.Errorf("save usage reset: %w", err)
		}
	}
	return usageOf(user, s.now()), nil
}

// RecordPost counts one generated post, refusing once today's quota is used.
func (s *usageService) RecordPost(ctx context.Context, userID uuid.UUID) (*UsageStatus, error) {
	user, err := s.load(ctx, userID)
	if err != nil {
		return nil, err
	}

	now := s.now()
	if !user.CanGeneratePost(now) {
		return nil, apperrors.ErrDailyLimitReached
	}
	user.RecordPostGenerated(now)
	if err := s.save(ctx, user); err != nil {
		return nil, fmt.Errorf("save usage: %w", err)
	}
	return usageOf(user, now), nil
}

func usageOf(user *model.User, now time.Time) *UsageStatus {
	return &UsageStatus{
		Plan:                user.Subscription.Plan,
		Limits:              user.Limits(),
		PostsGenerated:      user.Usage.PostsGenerated,
		PostsGeneratedToday: user.Usage.PostsGeneratedToday,
		PostsRemainingToday: user.PostsRemainingToday(),
		CanGenerate:         user.CanGeneratePost(now),
	}
}
