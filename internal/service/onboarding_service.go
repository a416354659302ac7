package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode"

	"github.com/google/uuid"
	"gorm.io/gorm"

	apperrors "personapilot/internal/errors"
	"personapilot/internal/logging"
	"personapilot/internal/model"
	"personapilot/internal/repository"
)

const (
	initialPersonaScore = 65
	onboardingDoneStep  = 5
	maxHashtags         = 5
	bioKeywords         = 3
)

// RoleKind is the self-described role picked during onboarding.
type RoleKind string

const (
	RoleStudent      RoleKind = "Student"
	RoleDeveloper    RoleKind = "Developer"
	RoleCreator      RoleKind = "Creator"
	RoleProfessional RoleKind = "Professional"
)

// BrandingGoal is the outcome the user wants from their content.
type BrandingGoal string

const (
	GoalJobOffers         BrandingGoal = "Job Offers"
	GoalThoughtLeadership BrandingGoal = "Thought Leadership"
	GoalAudienceGrowth    BrandingGoal = "Audience Growth"
)

// OnboardingInput is a validated onboarding request.
type OnboardingInput struct {
	Role            string
	Industry        string
	ExperienceLevel string
	BrandingGoal    string
	Tone            string
	TopicsKeywords  []string
}

// StarterPost is a template post offered after onboarding.
type StarterPost struct {
	Type    string `json:"type"`
	Content string `json:"content"`
}

// PersonaAudit is the initial, fixed assessment of a new persona.
type PersonaAudit struct {
	PersonaScore int           `json:"personaScore"`
	SuggestedBio string        `json:"suggestedBio"`
	StarterPosts []StarterPost `json:"starterPosts"`
}

// OnboardingResult is returned by a completed onboarding.
type OnboardingResult struct {
	User         *model.User
	PrimaryRole  *model.Role
	PersonaAudit PersonaAudit
}

// OnboardingService completes onboarding by creating the default persona.
type OnboardingService interface {
	Complete(ctx context.Context, userID uuid.UUID, in OnboardingInput) (*OnboardingResult, error)
}

type onboardingService struct {
	accounts
	roles  repository.RoleRepository
	logger logging.Logger
	now    func() time.Time
}

// NewOnboardingService creates a new onboarding service.
func NewOnboardingService(users repository.UserRepository, roles repository.RoleRepository, cache UserCache, logger logging.Logger) OnboardingService {
	if logger == nil {
		logger = logging.Nop()
	}
	return &onboardingService{
		accounts: accounts{users: users, cache: cache},
		roles:    roles,
		logger:   logger,
		now:      time.Now,
	}
}

func (s *onboardingService) Complete(ctx context.Context, userID uuid.UUID, in OnboardingInput) (*OnboardingResult, error) {
	if len(in.TopicsKeywords) == 0 {
		return nil, apperrors.NewValidationError("topicsKeywords", "At least one topic or keyword is required")
	}

	user, err := s.load(ctx, userID)
	if err != nil {
		return nil, err
	}

	role := buildRole(user.ID, in)
	if err := s.saveDefaultRole(ctx, role); err != nil {
		return nil, err
	}

	audit := buildAudit(user, role, in.Role)

	user.OnboardingCompleted = true
	user.OnboardingStep = onboardingDoneStep
	user.PersonaScore.Record(audit.PersonaScore, s.now())
	if err := s.save(ctx, user); err != nil {
		return nil, fmt.Errorf("save onboarding: %w", err)
	}

	s.logger.Info(ctx, "onboarding completed", "user_id", user.ID, "role_id", role.ID)
	return &OnboardingResult{User: user, PrimaryRole: role, PersonaAudit: audit}, nil
}

// saveDefaultRole replaces the user's default role if one exists, so a
// retried onboarding never leaves two defaults behind.
func (s *onboardingService) saveDefaultRole(ctx context.Context, role *model.Role) error {
	existing, err := s.roles.FindDefaultByUser(ctx, role.UserID)
	switch {
	case err == nil:
		role.ID = existing.ID
		role.CreatedAt = existing.CreatedAt
		if err := s.roles.Save(ctx, role); err != nil {
			return fmt.Errorf("update role: %w", err)
		}
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		if err := s.roles.Create(ctx, role); err != nil {
			return fmt.Errorf("create role: %w", err)
		}
		return nil
	default:
		return fmt.Errorf("find default role: %w", err)
	}
}

func buildRole(userID uuid.UUID, in OnboardingInput) *model.Role {
	return &model.Role{
		UserID:      userID,
		Name:        in.Role + " - " + in.Industry,
		Description: fmt.Sprintf("%s focused on %s in %s", in.Role, strings.ToLower(in.BrandingGoal), in.Industry),
		Persona: model.Persona{
			Industry:        strings.ToLower(in.Industry),
			TargetAudience:  TargetAudience(RoleKind(in.Role), in.Industry),
			ToneOfVoice:     strings.ToLower(in.Tone),
			ContentTypes:    ContentTypes(BrandingGoal(in.BrandingGoal)),
			Keywords:        in.TopicsKeywords,
			Hashtags:        Hashtags(in.TopicsKeywords),
			BrandingGoal:    in.BrandingGoal,
			ExperienceLevel: in.ExperienceLevel,
		},
		IsDefault: true,
		IsActive:  true,
	}
}

// TargetAudience returns the default audience for a role.
func TargetAudience(role RoleKind, industry string) string {
	switch role {
	case RoleStudent:
		return "fellow students and entry-level professionals"
	case RoleDeveloper:
		return "tech professionals and hiring managers"
	case RoleCreator:
		return "content consumers and brand collaborators"
	case RoleProfessional:
		return "industry peers and potential clients"
	default:
		return "professionals in " + industry
	}
}

// ContentTypes returns the default content mix for a branding goal.
func ContentTypes(goal BrandingGoal) []string {
	switch goal {
	case GoalJobOffers:
		return []string{"professional", "educational", "personal"}
	case GoalThoughtLeadership:
		return []string{"educational", "opinion", "insights"}
	case GoalAudienceGrowth:
		return []string{"entertaining", "educational", "engaging"}
	default:
		return []string{"professional", "educational"}
	}
}

// Hashtags derives up to five hashtags from the first five keywords by
// dropping every character that is not an ASCII letter or digit.
func Hashtags(keywords []string) []string {
	if len(keywords) > maxHashtags {
		keywords = keywords[:maxHashtags]
	}
	tags := make([]string, 0, len(keywords))
	for _, kw := range keywords {
		tag := strings.Map(func(r rune) rune {
			if r < unicode.MaxASCII && (unicode.IsLetter(r) || unicode.IsDigit(r)) {
				return r
			}
			return -1
		}, kw)
		if tag != "" {
			tags = append(tags, tag)
		}
	}
	return tags
}

func buildAudit(user *model.User, role *model.Role, roleName string) PersonaAudit {
	p := role.Persona
	first := user.FirstName()
	topic := p.Keywords[0]
	bio := p.Keywords
	if len(bio) > bioKeywords {
		bio = bio[:bioKeywords]
	}

	return PersonaAudit{
		PersonaScore: initialPersonaScore,
		SuggestedBio: fmt.Sprintf("%s %s | %s enthusiast | Sharing insights on %s",
			p.ExperienceLevel, first, p.Industry, strings.Join(bio, ", ")),
		StarterPosts: []StarterPost{
			{
				Type: "introduction",
				Content: fmt.Sprintf("👋 Hi! I'm %s, a %s %s passionate about %s. Excited to share my journey and connect with like-minded professionals!",
					first, strings.ToLower(p.ExperienceLevel), strings.ToLower(roleName), topic),
			},
			{
				Type:    "insight",
				Content: fmt.Sprintf("💡 Key insight from my %s experience: %s is transforming how we work. Here's what I've learned...", p.Industry, topic),
			},
			{
				Type:    "engagement",
				Content: fmt.Sprintf("🤔 Question for the %s community: What's the biggest challenge you're facing with %s? Let's discuss solutions!", p.Industry, topic),
			},
		},
	}
}
