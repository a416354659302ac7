package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"personapilot/internal/model"
)

// UserRepository defines persistence operations.
type UserRepository interface {
	Create(ctx context.Context, user *model.User) error
	Update(ctx context.Context, user *model.User) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.User, error)
	FindByEmail(ctx context.Context, email string) (*model.User, error)
	FindByOAuthID(ctx context.Context, provider model.Provider, externalID string) (*model.User, error)
	FindByOAuthIDOrEmail(ctx context.Context, provider model.Provider, externalID, email string) (*model.User, error)
	FindByVerificationToken(ctx context.Context, tokenHash string, now time.Time) (*model.User, error)
	FindByResetToken(ctx context.Context, tokenHash string, now time.Time) (*model.User, error)
}

type userRepository struct {
	db *gorm.DB
}

// NewUserRepository builds a GORM-backed repository.
func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{db: db}
}

func (r *userRepository) Create(ctx context.Context, user *model.User) error {
	return r.db.WithContext(ctx).Create(user).Error
}

// Update saves every column of the record in a single statement.
func (r *userRepository) Update(ctx context.Context, user *model.User) error {
	return r.db.WithContext(ctx).Save(user).Error
}

func (r *userRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.User, error) {
	var user model.User
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	var user model.User
	if err := r.db.WithContext(ctx).Where("email = ?", model.NormalizeEmail(email)).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) FindByOAuthID(ctx context.Context, provider model.Provider, externalID string) (*model.User, error) {
	column, err := oauthColumn(provider)
	if err != nil {
		return nil, err
	}
	var user model.User
	if err := r.db.WithContext(ctx).Where(column+" = ?", externalID).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// FindByOAuthIDOrEmail prefers a match on the provider identity over a match on email.
func (r *userRepository) FindByOAuthIDOrEmail(ctx context.Context, provider model.Provider, externalID, email string) (*model.User, error) {
	column, err := oauthColumn(provider)
	if err != nil {
		return nil, err
	}
	var user model.User
	err = r.db.WithContext(ctx).
		Where(column+" = ? OR email = ?", externalID, model.NormalizeEmail(email)).
		Order(clause.OrderBy{Expression: clause.Expr{
			SQL:                "CASE WHEN " + column + " = ? THEN 0 ELSE 1 END",
			Vars:               []any{externalID},
			WithoutParentheses: true,
		}}).
		First(&user).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) FindByVerificationToken(ctx context.Context, tokenHash string, now time.Time) (*model.User, error) {
	var user model.User
	err := r.db.WithContext(ctx).
		Where("email_verification_token = ? AND email_verification_expires > ?", tokenHash, now).
		First(&user).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) FindByResetToken(ctx context.Context, tokenHash string, now time.Time) (*model.User, error) {
	var user model.User
	err := r.db.WithContext(ctx).
		Where("password_reset_token = ? AND password_reset_expires > ?", tokenHash, now).
		First(&user).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func oauthColumn(provider model.Provider) (string, error) {
	switch provider {
	case model.ProviderGoogle:
		return "google_id", nil
	case model.ProviderLinkedIn:
		return "linkedin_id", nil
	default:
		return "", fmt.Errorf("unsupported provider %q", provider)
	}
}
