package model

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Plan is a subscription tier.
type Plan string

const (
	PlanFree   Plan = "free"
	PlanPro    Plan = "pro"
	PlanAgency Plan = "agency"
)

// SubscriptionStatus is the billing state of a subscription.
type SubscriptionStatus string

const (
	SubscriptionActive    SubscriptionStatus = "active"
	SubscriptionInactive  SubscriptionStatus = "inactive"
	SubscriptionCancelled SubscriptionStatus = "cancelled"
	SubscriptionPastDue   SubscriptionStatus = "past_due"
)

// Theme is the UI theme preference.
type Theme string

const (
	ThemeLight  Theme = "light"
	ThemeDark   Theme = "dark"
	ThemeSystem Theme = "system"
)

// Priority ranks persona feedback.
type Priority string

const (
	PriorityHigh   Priority = "high"
	PriorityMedium Priority = "medium"
	PriorityLow    Priority = "low"
)

// User represents an account and everything the auth flows mutate on it.
type User struct {
	ID    uuid.UUID `json:"id" gorm:"type:char(36);primaryKey"`
	Name  string    `json:"name" gorm:"size:255;not null"`
	Email string    `json:"email" gorm:"uniqueIndex;size:255;not null"`

	Credentials `gorm:"embedded"`

	Avatar *string `json:"avatar" gorm:"size:1024"`

	EmailVerified            bool       `json:"emailVerified" gorm:"not null"`
	EmailVerificationToken   *string    `json:"-" gorm:"size:64;index"`
	EmailVerificationExpires *time.Time `json:"-"`
	PasswordResetToken       *string    `json:"-" gorm:"size:64;index"`
	PasswordResetExpires     *time.Time `json:"-"`
	PasswordChangedAt        *time.Time `json:"passwordChangedAt,omitempty"`

	DeletedAt *time.Time `json:"deletedAt,omitempty" gorm:"index"`
	IsActive  bool       `json:"isActive" gorm:"not null;index"`

	ConnectedAccounts ConnectedAccounts `json:"connectedAccounts" gorm:"embedded;embeddedPrefix:connected_"`
	Subscription      Subscription      `json:"subscription" gorm:"embedded;embeddedPrefix:subscription_"`
	Usage             Usage             `json:"usage" gorm:"embedded;embeddedPrefix:usage_"`
	Settings          Settings          `json:"settings" gorm:"embedded;embeddedPrefix:settings_"`

	OnboardingCompleted bool `json:"onboardingCompleted" gorm:"not null"`
	OnboardingStep      int  `json:"onboardingStep" gorm:"not null"`

	PersonaScore PersonaScore `json:"personaScore" gorm:"embedded;embeddedPrefix:persona_"`

	LastLoginAt *time.Time `json:"lastLoginAt,omitempty"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
}

// ConnectedAccount is a social account linked for publishing, not for login.
type ConnectedAccount struct {
	Connected    bool       `json:"connected"`
	Username     string     `json:"username,omitempty" gorm:"size:255"`
	AccessToken  string     `json:"-" gorm:"type:text"`
	RefreshToken string     `json:"-" gorm:"type:text"`
	ConnectedAt  *time.Time `json:"connectedAt,omitempty"`
}

// ConnectedAccounts groups the publishing channels.
type ConnectedAccounts struct {
	Twitter  ConnectedAccount `json:"twitter" gorm:"embedded;embeddedPrefix:twitter_"`
	LinkedIn ConnectedAccount `json:"linkedin" gorm:"embedded;embeddedPrefix:linkedin_"`
}

// Subscription is the billing state of the account.
type Subscription struct {
	Plan                  Plan               `json:"plan" gorm:"size:20;not null;index"`
	Status                SubscriptionStatus `json:"status" gorm:"size:20;not null"`
	BillingCustomerID     string             `json:"-" gorm:"size:255"`
	BillingSubscriptionID string             `json:"-" gorm:"size:255"`
	CurrentPeriodStart    *time.Time         `json:"currentPeriodStart,omitempty"`
	CurrentPeriodEnd      *time.Time         `json:"currentPeriodEnd,omitempty"`
	TrialEnd              *time.Time         `json:"trialEnd,omitempty"`
}

// Usage tracks post generation counters.
type Usage struct {
	PostsGenerated      int       `json:"postsGenerated" gorm:"not null"`
	PostsGeneratedToday int       `json:"postsGeneratedToday" gorm:"not null"`
	LastResetDate       time.Time `json:"lastResetDate"`
}

// NotificationSettings holds per-channel opt-ins.
type NotificationSettings struct {
	Email      bool `json:"email"`
	Trends     bool `json:"trends"`
	Engagement bool `json:"engagement"`
}

// Settings holds user preferences.
type Settings struct {
	Timezone      string               `json:"timezone" gorm:"size:64"`
	Notifications NotificationSettings `json:"notifications" gorm:"embedded;embeddedPrefix:notify_"`
	Theme         Theme                `json:"theme" gorm:"size:10"`
}

// ScoreBreakdown holds the four persona score dimensions, each 0-100.
type ScoreBreakdown struct {
	ProfileCompleteness int `json:"profileCompleteness"`
	ContentQuality      int `json:"contentQuality"`
	Consistency         int `json:"consistency"`
	EngagementRate      int `json:"engagementRate"`
}

// Feedback is one persona improvement hint.
type Feedback struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Priority    Priority `json:"priority"`
	Category    string   `json:"category"`
}

// ScoreSample is a historical persona score.
type ScoreSample struct {
	Score int       `json:"score"`
	Date  time.Time `json:"date"`
}

// PersonaScore summarises how well the user's personal brand is set up.
type PersonaScore struct {
	OverallScore *int           `json:"overallScore,omitempty"`
	Breakdown    ScoreBreakdown `json:"breakdown" gorm:"embedded;embeddedPrefix:breakdown_"`
	Feedback     []Feedback     `json:"feedback" gorm:"type:text;serializer:json"`
	Strengths    []string       `json:"strengths" gorm:"type:text;serializer:json"`
	Improvements []string       `json:"improvements" gorm:"type:text;serializer:json"`
	History      []ScoreSample  `json:"history" gorm:"type:text;serializer:json"`
	LastUpdated  *time.Time     `json:"lastUpdated,omitempty"`
}

// Record sets the overall score and appends it to the history.
func (p *PersonaScore) Record(score int, at time.Time) {
	score = clampScore(score)
	p.OverallScore = &score
	p.History = append(p.History, ScoreSample{Score: score, Date: at})
	p.LastUpdated = &at
}

func clampScore(score int) int {
	if score < 0 {
		return 0
	}
	if score > 100 {
		return 100
	}
	return score
}

// NewUser returns a user with the defaults every new account starts with.
func NewUser(name, email string, creds Credentials, now time.Time) (*User, error) {
	if err := creds.Validate(); err != nil {
		return nil, err
	}
	return &User{
		ID:          uuid.New(),
		Name:        strings.TrimSpace(name),
		Email:       NormalizeEmail(email),
		Credentials: creds,
		IsActive:    true,
		Subscription: Subscription{
			Plan:   PlanFree,
			Status: SubscriptionActive,
		},
		Usage: Usage{LastResetDate: now},
		Settings: Settings{
			Timezone:      "UTC",
			Notifications: NotificationSettings{Email: true, Trends: true, Engagement: true},
			Theme:         ThemeSystem,
		},
	}, nil
}

// NormalizeEmail lowercases and trims an address so comparisons are case-insensitive.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// FirstName returns the first word of the display name.
func (u *User) FirstName() string {
	if fields := strings.Fields(u.Name); len(fields) > 0 {
		return fields[0]
	}
	return u.Name
}

// BeforeCreate sets UUID before creating the record.
func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	return nil
}

// BeforeSave keeps the email normalised and refuses users without credentials.
func (u *User) BeforeSave(tx *gorm.DB) error {
	u.Email = NormalizeEmail(u.Email)
	return u.Credentials.Validate()
}
