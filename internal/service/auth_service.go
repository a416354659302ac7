package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"personapilot/internal/auth"
	apperrors "personapilot/internal/errors"
	"personapilot/internal/logging"
	"personapilot/internal/model"
	"personapilot/internal/notify"
	"personapilot/internal/repository"
)

// SessionTokens issues token pairs and verifies refresh tokens.
type SessionTokens interface {
	TokenIssuer
	ValidateRefreshToken(token string) (*auth.Claims, error)
}

// AuthService handles authentication operations.
type AuthService interface {
	Signup(ctx context.Context, in SignupInput) (*AuthResult, error)
	Login(ctx context.Context, email, password string) (*AuthResult, error)
	Me(ctx context.Context, userID uuid.UUID) (*model.User, error)
	Refresh(ctx context.Context, refreshToken string) (*TokenPair, error)
	Logout(ctx context.Context, userID uuid.UUID) error
	VerifyEmail(ctx context.Context, token string) (*model.User, error)
	ResendVerification(ctx context.Context, userID uuid.UUID) error
	ForgotPassword(ctx context.Context, email string) error
	ResetPassword(ctx context.Context, token, password string) (*AuthResult, error)
	ChangePassword(ctx context.Context, userID uuid.UUID, currentPassword, newPassword string) (*TokenPair, error)
	UpdateProfile(ctx context.Context, userID uuid.UUID, in ProfileUpdate) (*model.User, error)
	DeleteAccount(ctx context.Context, userID uuid.UUID, password string) error
}

// SignupInput is a validated signup request.
type SignupInput struct {
	Name     string
	Email    string
	Password string
}

// ProfileUpdate holds optional profile changes. Empty fields are left alone.
type ProfileUpdate struct {
	Name   string
	Email  string
	Avatar string
}

// AuthResult is a token pair together with the authenticated user.
type AuthResult struct {
	TokenPair
	User *model.User
}

// AuthDeps are the collaborators of the auth service.
type AuthDeps struct {
	Users    repository.UserRepository
	Tokens   SessionTokens
	Hasher   PasswordHasher
	Notifier notify.Notifier
	// Background delivers best-effort mail without blocking the request.
	Background notify.Notifier
	Cache      UserCache
	CacheTTL   time.Duration
	Logger     logging.Logger
	Now        func() time.Time
}

type authService struct {
	accounts
	tokens     SessionTokens
	hasher     PasswordHasher
	notifier   notify.Notifier
	background notify.Notifier
	logger     logging.Logger
	now        func() time.Time
}

// NewAuthService creates a new authentication service.
func NewAuthService(deps AuthDeps) AuthService {
	if deps.Background == nil {
		deps.Background = deps.Notifier
	}
	if deps.Logger == nil {
		deps.Logger = logging.Nop()
	}
	if deps.Now == nil {
		deps.Now = time.Now
	}
	return &authService{
		accounts:   accounts{users: deps.Users, cache: deps.Cache, cacheTTL: deps.CacheTTL},
		tokens:     deps.Tokens,
		hasher:     deps.Hasher,
		notifier:   deps.Notifier,
		background: deps.Background,
		logger:     deps.Logger,
		now:        deps.Now,
	}
}

// Signup creates an unverified password account and mails a verification link.
func (s *authService) Signup(ctx context.Context, in SignupInput) (*AuthResult, error) {
	email := model.NormalizeEmail(in.Email)

	existing, err := s.users.FindByEmail(ctx, email)
	if err == nil && existing != nil {
		return nil, apperrors.ErrEmailTaken
	}
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("check user existence: %w", err)
	}

	hash, err := s.hasher.Hash(in.Password)
	if err != nil {
		return nil, err
	}
	creds, err := model.NewPasswordCredentials(hash)
	if err != nil {
		return nil, err
	}

	now := s.now()
	user, err := model.NewUser(in.Name, email, creds, now)
	if err != nil {
		return nil, err
	}
	verification, err := auth.NewOneTimeToken(now, auth.VerificationTokenTTL)
	if err != nil {
		return nil, err
	}
	user.EmailVerificationToken = &verification.Hash
	user.EmailVerificationExpires = &verification.ExpiresAt

	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, apperrors.ErrEmailTaken
		}
		return nil, fmt.Errorf("create user: %w", err)
	}

	pair, err := issuePair(s.tokens, user.ID)
	if err != nil {
		return nil, err
	}

	if err := s.background.SendVerification(ctx, user.Email, user.Name, verification.Plain); err != nil {
		s.logger.Warn(ctx, "queue verification email failed", "user_id", user.ID, "error", err)
	}
	s.logger.Info(ctx, "user signed up", "user_id", user.ID)

	return &AuthResult{TokenPair: *pair, User: user}, nil
}

// Login checks credentials. Unknown email and wrong password fail identically.
func (s *authService) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	user, err := s.users.FindByEmail(ctx, email)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		s.hasher.CompareMissing(password)
		return nil, apperrors.ErrInvalidCredentials
	}
	if err != nil {
		return nil, fmt.Errorf("find user: %w", err)
	}

	if !user.HasPassword() {
		s.hasher.CompareMissing(password)
		return nil, apperrors.ErrInvalidCredentials
	}
	if !s.hasher.Compare(*user.PasswordHash, password) {
		return nil, apperrors.ErrInvalidCredentials
	}

	now := s.now()
	user.LastLoginAt = &now
	if err := s.save(ctx, user); err != nil {
		return nil, fmt.Errorf("update last login: %w", err)
	}

	pair, err := issuePair(s.tokens, user.ID)
	if err != nil {
		return nil, err
	}
	return &AuthResult{TokenPair: *pair, User: user}, nil
}

// Me returns the sanitized view of the authenticated user.
func (s *authService) Me(ctx context.Context, userID uuid.UUID) (*model.User, error) {
	return s.cached(ctx, userID)
}

// Refresh rotates the token pair. Every rejection reads the same to the client.
func (s *authService) Refresh(ctx context.Context, refreshToken string) (*TokenPair, error) {
	if refreshToken == "" {
		return nil, apperrors.ErrInvalidRefreshToken
	}
	claims, err := s.tokens.ValidateRefreshToken(refreshToken)
	if err != nil {
		return nil, apperrors.ErrInvalidRefreshToken
	}

	user, err := s.users.FindByID(ctx, claims.UserUUID())
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperrors.ErrInvalidRefreshToken
	}
	if err != nil {
		return nil, fmt.Errorf("find user: %w", err)
	}
	if !user.IsActive {
		return nil, apperrors.ErrInvalidRefreshToken
	}

	return issuePair(s.tokens, user.ID)
}

// Logout has no server-side session to end; the client discards its tokens.
func (s *authService) Logout(ctx context.Context, userID uuid.UUID) error {
	s.forget(ctx, userID)
	return nil
}

// VerifyEmail marks the owner of an unexpired verification token as verified.
func (s *authService) VerifyEmail(ctx context.Context, token string) (*model.User, error) {
	user, err := s.users.FindByVerificationToken(ctx, auth.HashToken(token), s.now())
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperrors.ErrInvalidVerificationToken
	}
	if err != nil {
		return nil, fmt.Errorf("find verification token: %w", err)
	}

	user.EmailVerified = true
	user.EmailVerificationToken = nil
	user.EmailVerificationExpires = nil
	if err := s.save(ctx, user); err != nil {
		return nil, fmt.Errorf("save verification: %w", err)
	}
	return user, nil
}

// ResendVerification issues a new verification token and mails it synchronously.
func (s *authService) ResendVerification(ctx context.Context, userID uuid.UUID) error {
	user, err := s.load(ctx, userID)
	if err != nil {
		return err
	}
	if user.EmailVerified {
		return apperrors.ErrAlreadyVerified
	}

	token, err := s.setVerificationToken(user)
	if err != nil {
		return err
	}
	if err := s.save(ctx, user); err != nil {
		return fmt.Errorf("save verification token: %w", err)
	}

	if err := s.notifier.SendVerification(ctx, user.Email, user.Name, token); err != nil {
		s.logger.Error(ctx, "send verification email failed", "user_id", user.ID, "error", err)
		return fmt.Errorf("%w: %v", apperrors.ErrNotificationFailed, err)
	}
	return nil
}

// ForgotPassword mails a reset link when the account exists. Callers get the
// same result for unknown addresses. A failed send rolls the token back.
func (s *authService) ForgotPassword(ctx context.Context, email string) error {
	user, err := s.users.FindByEmail(ctx, email)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("find user: %w", err)
	}

	reset, err := auth.NewOneTimeToken(s.now(), auth.ResetTokenTTL)
	if err != nil {
		return err
	}
	user.PasswordResetToken = &reset.Hash
	user.PasswordResetExpires = &reset.ExpiresAt
	if err := s.save(ctx, user); err != nil {
		return fmt.Errorf("save reset token: %w", err)
	}

	if err := s.notifier.SendPasswordReset(ctx, user.Email, user.Name, reset.Plain); err != nil {
		s.logger.Error(ctx, "send password reset email failed", "user_id", user.ID, "error", err)
		user.PasswordResetToken = nil
		user.PasswordResetExpires = nil
		if rollbackErr := s.save(ctx, user); rollbackErr != nil {
			s.logger.Error(ctx, "roll back reset token failed", "user_id", user.ID, "error", rollbackErr)
		}
		return fmt.Errorf("%w: %v", apperrors.ErrNotificationFailed, err)
	}
	return nil
}

// ResetPassword sets a new password for the owner of an unexpired reset token.
func (s *authService) ResetPassword(ctx context.Context, token, password string) (*AuthResult, error) {
	user, err := s.users.FindByResetToken(ctx, auth.HashToken(token), s.now())
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperrors.ErrInvalidResetToken
	}
	if err != nil {
		return nil, fmt.Errorf("find reset token: %w", err)
	}

	if err := s.setPassword(user, password); err != nil {
		return nil, err
	}
	user.PasswordResetToken = nil
	user.PasswordResetExpires = nil
	if err := s.save(ctx, user); err != nil {
		return nil, fmt.Errorf("save password: %w", err)
	}

	pair, err := issuePair(s.tokens, user.ID)
	if err != nil {
		return nil, err
	}
	return &AuthResult{TokenPair: *pair, User: user}, nil
}

// ChangePassword replaces the password after checking the current one.
func (s *authService) ChangePassword(ctx context.Context, userID uuid.UUID, currentPassword, newPassword string) (*TokenPair, error) {
	user, err := s.load(ctx, userID)
	if err != nil {
		return nil, err
	}
	if !user.HasPassword() || !s.hasher.Compare(*user.PasswordHash, currentPassword) {
		return nil, apperrors.ErrWrongCurrentPassword
	}

	if err := s.setPassword(user, newPassword); err != nil {
		return nil, err
	}
	if err := s.save(ctx, user); err != nil {
		return nil, fmt.Errorf("save password: %w", err)
	}
	return issuePair(s.tokens, user.ID)
}

// UpdateProfile applies name, avatar and email changes. A new email must be
// verified again.
func (s *authService) UpdateProfile(ctx context.Context, userID uuid.UUID, in ProfileUpdate) (*model.User, error) {
	user, err := s.load(ctx, userID)
	if err != nil {
		return nil, err
	}

	var verificationToken string
	if email := model.NormalizeEmail(in.Email); email != "" && email != user.Email {
		existing, err := s.users.FindByEmail(ctx, email)
		if err == nil && existing != nil {
			return nil, apperrors.ErrEmailInUse
		}
		if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("check email: %w", err)
		}
		user.Email = email
		user.EmailVerified = false
		if verificationToken, err = s.setVerificationToken(user); err != nil {
			return nil, err
		}
	}
	if name := strings.TrimSpace(in.Name); name != "" {
		user.Name = name
	}
	if in.Avatar != "" {
		avatar := in.Avatar
		user.Avatar = &avatar
	}

	if err := s.save(ctx, user); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, apperrors.ErrEmailInUse
		}
		return nil, fmt.Errorf("save profile: %w", err)
	}

	if verificationToken != "" {
		if err := s.background.SendVerification(ctx, user.Email, user.Name, verificationToken); err != nil {
			s.logger.Warn(ctx, "queue verification email failed", "user_id", user.ID, "error", err)
		}
	}
	return user, nil
}

// DeleteAccount soft-deletes the account. The password is checked only when one is set.
func (s *authService) DeleteAccount(ctx context.Context, userID uuid.UUID, password string) error {
	user, err := s.load(ctx, userID)
	if err != nil {
		return err
	}
	if user.HasPassword() && !s.hasher.Compare(*user.PasswordHash, password) {
		return apperrors.ErrWrongPassword
	}

	now := s.now()
	user.IsActive = false
	user.DeletedAt = &now
	if err := s.save(ctx, user); err != nil {
		return fmt.Errorf("deactivate user: %w", err)
	}
	s.logger.Info(ctx, "account deactivated", "user_id", user.ID)
	return nil
}

func (s *authService) setVerificationToken(user *model.User) (string, error) {
	token, err := auth.NewOneTimeToken(s.now(), auth.VerificationTokenTTL)
	if err != nil {
		return "", err
	}
	user.EmailVerificationToken = &token.Hash
	user.EmailVerificationExpires = &token.ExpiresAt
	return token.Plain, nil
}

func (s *authService) setPassword(user *model.User, password string) error {
	hash, err := s.hasher.Hash(password)
	if err != nil {
		return err
	}
	creds, err := user.Credentials.WithPassword(hash)
	if err != nil {
		return err
	}
	now := s.now()
	user.Credentials = creds
	user.PasswordChangedAt = &now
	return nil
}
