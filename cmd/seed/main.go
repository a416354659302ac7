package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"gorm.io/gorm"

	"personapilot/internal/auth"
	"personapilot/internal/config"
	"personapilot/internal/db"
	"personapilot/internal/logging"
	"personapilot/internal/model"
	"personapilot/internal/repository"
	"personapilot/internal/service"
)

const defaultSeedPassword = "personapilot-demo"

// seedUser is one demo account together with its onboarding answers.
type seedUser struct {
	Name       string
	Email      string
	Plan       model.Plan
	Onboarding service.OnboardingInput
}

var seedUsers = []seedUser{
	{
		Name:  "Demo Developer",
		Email: "demo@personapilot.io",
		Plan:  model.PlanFree,
		Onboarding: service.OnboardingInput{
			Role:            string(service.RoleDeveloper),
			Industry:        "Technology",
			ExperienceLevel: "Mid-level",
			BrandingGoal:    string(service.GoalThoughtLeadership),
			Tone:            "Professional",
			TopicsKeywords:  []string{"Go", "Cloud Computing", "Developer Experience"},
		},
	},
	{
		Name:  "Demo Creator",
		Email: "creator@personapilot.io",
		Plan:  model.PlanPro,
		Onboarding: service.OnboardingInput{
			Role:            string(service.RoleCreator),
			Industry:        "Marketing",
			ExperienceLevel: "Senior",
			BrandingGoal:    string(service.GoalAudienceGrowth),
			Tone:            "Casual",
			TopicsKeywords:  []string{"Personal Branding", "LinkedIn", "Storytelling"},
		},
	},
}

func main() {
	ctx := context.Background()
	logger := logging.New(os.Stdout, "text", "info")
	logger.Info(ctx, "starting seed script")

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fatal(logger, "load config", err)
	}
	if err := cfg.Validate(); err != nil {
		fatal(logger, "invalid configuration", err)
	}

	// Connect to database
	gormDB, err := db.Open(cfg.DBDriver, cfg.DBDSN)
	if err != nil {
		fatal(logger, "connect to database", err)
	}
	defer db.Close(gormDB)

	// Run migrations to ensure schema is up to date
	if err := db.Migrate(gormDB); err != nil {
		fatal(logger, "run migrations", err)
	}

	password := os.Getenv("SEED_PASSWORD")
	if password == "" {
		password = defaultSeedPassword
	}

	users := repository.NewUserRepository(gormDB)
	onboarding := service.NewOnboardingService(users, repository.NewRoleRepository(gormDB), nil, logger)
	hasher := auth.NewPasswordHasher(cfg.BcryptCost)

	seeded, updated, err := seed(ctx, users, onboarding, hasher, password)
	if err != nil {
		fatal(logger, "seed users", err)
	}

	logger.Info(ctx, "seed completed", "created", seeded, "updated", updated, "total", seeded+updated)
}

// seed creates the demo users, or resets the password and plan of existing ones.
func seed(ctx context.Context, users repository.UserRepository, onboarding service.OnboardingService, hasher *auth.PasswordHasher, password string) (seeded int, updated int, err error) {
	hash, err := hasher.Hash(password)
	if err != nil {
		return 0, 0, err
	}

	for _, su := range seedUsers {
		existing, err := users.FindByEmail(ctx, su.Email)
		if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return seeded, updated, fmt.Errorf("error checking user %s: %w", su.Email, err)
		}

		if existing != nil {
			creds, err := existing.Credentials.WithPassword(hash)
			if err != nil {
				return seeded, updated, err
			}
			existing.Credentials = creds
			existing.Subscription.Plan = su.Plan
			existing.IsActive = true
			existing.EmailVerified = true
			if err := users.Update(ctx, existing); err != nil {
				return seeded, updated, fmt.Errorf("error updating user %s: %w", su.Email, err)
			}
			updated++
			continue
		}

		creds, err := model.NewPasswordCredentials(hash)
		if err != nil {
			return seeded, updated, err
		}
		user, err := model.NewUser(su.Name, su.Email, creds, time.Now().UTC())
		if err != nil {
			return seeded, updated, err
		}
		user.EmailVerified = true
		user.Subscription.Plan = su.Plan
		if err := users.Create(ctx, user); err != nil {
			return seeded, updated, fmt.Errorf("error creating user %s: %w", su.Email, err)
		}
		if _, err := onboarding.Complete(ctx, user.ID, su.Onboarding); err != nil {
			return seeded, updated, fmt.Errorf("error onboarding user %s: %w", su.Email, err)
		}
		seeded++
	}

	return seeded, updated, nil
}

func fatal(logger logging.Logger, msg string, err error) {
	logger.Error(context.Background(), msg, "error", err)
	os.Exit(1)
}
