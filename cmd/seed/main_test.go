package main

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"personapilot/internal/auth"
	"personapilot/internal/db"
	"personapilot/internal/model"
	"personapilot/internal/repository"
	"personapilot/internal/service"
)

func TestSeed_CreatesThenUpdates(t *testing.T) {
	gormDB, err := gorm.Open(sqlite.Open("file:"+t.Name()+"?mode=memory&cache=shared"), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.Migrate(gormDB))
	t.Cleanup(func() { _ = db.Close(gormDB) })

	ctx := context.Background()
	users := repository.NewUserRepository(gormDB)
	roles := repository.NewRoleRepository(gormDB)
	onboarding := service.NewOnboardingService(users, roles, nil, nil)
	hasher := auth.NewPasswordHasher(bcrypt.MinCost)

	seeded, updated, err := seed(ctx, users, onboarding, hasher, "first-password")
	require.NoError(t, err)
	assert.Equal(t, len(seedUsers), seeded)
	assert.Zero(t, updated)

	demo, err := users.FindByEmail(ctx, "demo@personapilot.io")
	require.NoError(t, err)
	assert.True(t, demo.EmailVerified)
	assert.True(t, demo.OnboardingCompleted)
	assert.True(t, hasher.Compare(*demo.PasswordHash, "first-password"))

	role, err := roles.FindDefaultByUser(ctx, demo.ID)
	require.NoError(t, err)
	assert.Equal(t, "Developer - Technology", role.Name)

	seeded, updated, err = seed(ctx, users, onboarding, hasher, "second-password")
	require.NoError(t, err)
	assert.Zero(t, seeded)
	assert.Equal(t, len(seedUsers), updated)

	creator, err := users.FindByEmail(ctx, "creator@personapilot.io")
	require.NoError(t, err)
	assert.Equal(t, model.PlanPro, creator.Subscription.Plan)
	assert.True(t, hasher.Compare(*creator.PasswordHash, "second-password"))
}
