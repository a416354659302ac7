package service

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"gorm.io/gorm"

	"personapilot/internal/auth"
	apperrors "personapilot/internal/errors"
	"personapilot/internal/logging"
	"personapilot/internal/model"
	"personapilot/internal/notify"
	"personapilot/internal/oauth"
	"personapilot/internal/repository"
)

// OAuthService runs the provider login redirect flow.
type OAuthService interface {
	// Begin returns the provider consent URL.
	Begin(ctx context.Context, provider model.Provider) (string, error)
	// Complete finishes the callback and returns the frontend URL carrying tokens.
	Complete(ctx context.Context, provider model.Provider, code, state string) (string, error)
	// LoginErrorURL returns the frontend login URL for a failed flow.
	LoginErrorURL(err error) string
}

// OAuthDeps are the collaborators of the OAuth service.
type OAuthDeps struct {
	Users       repository.UserRepository
	Providers   oauth.Registry
	States      auth.StateStoreInterface
	Tokens      TokenIssuer
	Background  notify.Notifier
	Cache       UserCache
	FrontendURL string
	Logger      logging.Logger
	Now         func() time.Time
}

type oauthService struct {
	accounts
	providers   oauth.Registry
	states      auth.StateStoreInterface
	tokens      TokenIssuer
	background  notify.Notifier
	frontendURL string
	logger      logging.Logger
	now         func() time.Time
}

// NewOAuthService creates a new OAuth login service.
func NewOAuthService(deps OAuthDeps) OAuthService {
	if deps.Logger == nil {
		deps.Logger = logging.Nop()
	}
	if deps.Now == nil {
		deps.Now = time.Now
	}
	return &oauthService{
		accounts:    accounts{users: deps.Users, cache: deps.Cache},
		providers:   deps.Providers,
		states:      deps.States,
		tokens:      deps.Tokens,
		background:  deps.Background,
		frontendURL: strings.TrimRight(deps.FrontendURL, "/"),
		logger:      deps.Logger,
		now:         deps.Now,
	}
}

func (s *oauthService) Begin(ctx context.Context, name model.Provider) (string, error) {
	provider, ok := s.providers.Get(name)
	if !ok {
		return "", apperrors.ErrOAuthProviderDisabled
	}
	state, err := s.states.Issue(ctx, name)
	if err != nil {
		s.logger.Error(ctx, "issue oauth state failed", "provider", name, "error", err)
		return "", apperrors.ErrOAuthFailed
	}
	return provider.AuthCodeURL(state), nil
}

func (s *oauthService) Complete(ctx context.Context, name model.Provider, code, state string) (string, error) {
	provider, ok := s.providers.Get(name)
	if !ok {
		return "", apperrors.ErrOAuthProviderDisabled
	}
	if code == "" {
		return "", apperrors.ErrOAuthNoCode
	}
	if !s.states.Consume(ctx, name, state) {
		s.logger.Warn(ctx, "oauth state rejected", "provider", name)
		return "", apperrors.ErrOAuthState
	}

	profile, err := s.fetchProfile(ctx, provider, code)
	if err != nil {
		return "", err
	}

	user, err := s.findOrCreate(ctx, name, profile)
	if err != nil {
		s.logger.Error(ctx, "oauth account lookup failed", "provider", name, "error", err)
		return "", apperrors.ErrOAuthFailed
	}

	now := s.now()
	user.LastLoginAt = &now
	if err := s.save(ctx, user); err != nil {
		s.logger.Error(ctx, "oauth update last login failed", "user_id", user.ID, "error", err)
		return "", apperrors.ErrOAuthFailed
	}

	pair, err := issuePair(s.tokens, user.ID)
	if err != nil {
		s.logger.Error(ctx, "oauth issue tokens failed", "user_id", user.ID, "error", err)
		return "", apperrors.ErrOAuthFailed
	}

	path := "/onboarding"
	if user.OnboardingCompleted {
		path = "/dashboard"
	}
	q := url.Values{}
	q.Set("token", pair.AccessToken)
	q.Set("refreshToken", pair.RefreshToken)
	return s.frontendURL + path + "?" + q.Encode(), nil
}

func (s *oauthService) LoginErrorURL(err error) string {
	code := apperrors.ErrOAuthFailed.Code
	var derr *apperrors.DomainError
	if errors.As(err, &derr) && derr == apperrors.ErrOAuthNoCode {
		code = derr.Code
	}
	return s.frontendURL + "/login?error=" + code
}

// fetchProfile logs provider detail server-side and returns only the generic error.
func (s *oauthService) fetchProfile(ctx context.Context, provider oauth.Provider, code string) (*oauth.Profile, error) {
	token, err := provider.Exchange(ctx, code)
	if err != nil {
		s.logger.Warn(ctx, "oauth code exchange failed", "provider", provider.Name(), "error", err)
		return nil, apperrors.ErrOAuthFailed
	}
	profile, err := provider.FetchProfile(ctx, token)
	if err != nil {
		args := []any{"provider", provider.Name(), "error", err}
		var upstream *oauth.UpstreamError
		if errors.As(err, &upstream) {
			args = append(args, "status", upstream.StatusCode, "body", upstream.Body)
		}
		s.logger.Warn(ctx, "oauth profile fetch failed", args...)
		return nil, apperrors.ErrOAuthFailed
	}
	return profile, nil
}

// findOrCreate matches on provider identity or email, links the identity to an
// existing account that lacks it, and otherwise creates a verified account.
func (s *oauthService) findOrCreate(ctx context.Context, name model.Provider, profile *oauth.Profile) (*model.User, error) {
	user, err := s.users.FindByOAuthIDOrEmail(ctx, name, profile.ExternalID, profile.Email)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return s.create(ctx, name, profile)
	}
	if err != nil {
		return nil, err
	}

	if user.OAuthID(name) == "" {
		creds, err := user.Credentials.WithOAuth(name, profile.ExternalID)
		if err != nil {
			return nil, err
		}
		user.Credentials = creds
		user.EmailVerified = true
		if user.Avatar == nil && profile.AvatarURL != "" {
			avatar := profile.AvatarURL
			user.Avatar = &avatar
		}
		s.logger.Info(ctx, "oauth identity linked", "user_id", user.ID, "provider", name)
	}
	return user, nil
}

func (s *oauthService) create(ctx context.Context, name model.Provider, profile *oauth.Profile) (*model.User, error) {
	creds, err := model.NewOAuthCredentials(name, profile.ExternalID)
	if err != nil {
		return nil, err
	}
	displayName := profile.Name
	if strings.TrimSpace(displayName) == "" {
		displayName, _, _ = strings.Cut(profile.Email, "@")
	}
	user, err := model.NewUser(displayName, profile.Email, creds, s.now())
	if err != nil {
		return nil, err
	}
	user.EmailVerified = true
	if profile.AvatarURL != "" {
		avatar := profile.AvatarURL
		user.Avatar = &avatar
	}

	if err := s.users.Create(ctx, user); err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}

	if err := s.background.SendWelcome(ctx, user.Email, user.Name); err != nil {
		s.logger.Warn(ctx, "queue welcome email failed", "user_id", user.ID, "error", err)
	}
	s.logger.Info(ctx, "user signed up", "user_id", user.ID, "provider", name)
	return user, nil
}
