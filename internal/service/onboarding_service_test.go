package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	apperrors "personapilot/internal/errors"
	"personapilot/internal/model"
)

func newOnboardingFixture() (*MockUserRepository, *MockRoleRepository, OnboardingService) {
	users, roles := new(MockUserRepository), new(MockRoleRepository)
	svc := NewOnboardingService(users, roles, nil, nil)
	svc.(*onboardingService).now = func() time.Time { return testNow }
	return users, roles, svc
}

func TestOnboardingService_Complete(t *testing.T) {
	users, roles, svc := newOnboardingFixture()
	user := newPasswordUser(t, "dev@example.com", "password123")
	user.Name = "Ada Lovelace"

	users.On("FindByID", mock.Anything, user.ID).Return(user, nil)
	roles.On("FindDefaultByUser", mock.Anything, user.ID).Return(nil, gorm.ErrRecordNotFound)
	roles.On("Create", mock.Anything, mock.AnythingOfType("*model.Role")).Return(nil)
	users.On("Update", mock.Anything, user).Return(nil)

	result, err := svc.Complete(context.Background(), user.ID, OnboardingInput{
		Role:            "Developer",
		Industry:        "Technology",
		ExperienceLevel: "Senior",
		BrandingGoal:    "Thought Leadership",
		Tone:            "Professional",
		TopicsKeywords:  []string{"AI", "Cloud Computing", "Data", "Go"},
	})
	require.NoError(t, err)

	role := result.PrimaryRole
	assert.Equal(t, user.ID, role.UserID)
	assert.Equal(t, "Developer - Technology", role.Name)
	assert.Equal(t, "Developer focused on thought leadership in Technology", role.Description)
	assert.True(t, role.IsDefault)
	assert.True(t, role.IsActive)
	assert.Equal(t, "technology", role.Persona.Industry)
	assert.Equal(t, "professional", role.Persona.ToneOfVoice)
	assert.Equal(t, "tech professionals and hiring managers", role.Persona.TargetAudience)
	assert.Equal(t, []string{"educational", "opinion", "insights"}, role.Persona.ContentTypes)
	assert.Equal(t, []string{"AI", "CloudComputing", "Data", "Go"}, role.Persona.Hashtags)

	assert.True(t, result.User.OnboardingCompleted)
	assert.Equal(t, 5, result.User.OnboardingStep)
	require.NotNil(t, result.User.PersonaScore.OverallScore)
	assert.Equal(t, 65, *result.User.PersonaScore.OverallScore)
	assert.Len(t, result.User.PersonaScore.History, 1)

	audit := result.PersonaAudit
	assert.Equal(t, 65, audit.PersonaScore)
	assert.Equal(t, "Senior Ada | technology enthusiast | Sharing insights on AI, Cloud Computing, Data", audit.SuggestedBio)
	require.Len(t, audit.StarterPosts, 3)
	assert.Equal(t, "introduction", audit.StarterPosts[0].Type)
	assert.Contains(t, audit.StarterPosts[0].Content, "I'm Ada, a senior developer passionate about AI")
	assert.Equal(t, "insight", audit.StarterPosts[1].Type)
	assert.Equal(t, "engagement", audit.StarterPosts[2].Type)
	assert.Contains(t, audit.StarterPosts[2].Content, "the technology community")

	users.AssertExpectations(t)
	roles.AssertExpectations(t)
}

func TestOnboardingService_Complete_Errors(t *testing.T) {
	valid := OnboardingInput{Role: "Student", Industry: "Education", ExperienceLevel: "Beginner", BrandingGoal: "Job Offers", Tone: "Friendly", TopicsKeywords: []string{"Math"}}

	t.Run("no keywords", func(t *testing.T) {
		_, _, svc := newOnboardingFixture()
		in := valid
		in.TopicsKeywords = nil

		_, err := svc.Complete(context.Background(), uuid.New(), in)

		var verr *apperrors.ValidationError
		require.ErrorAs(t, err, &verr)
		assert.Equal(t, "topicsKeywords", verr.Fields[0].Field)
	})

	t.Run("unknown user", func(t *testing.T) {
		users, roles, svc := newOnboardingFixture()
		id := uuid.New()
		users.On("FindByID", mock.Anything, id).Return(nil, gorm.ErrRecordNotFound)

		_, err := svc.Complete(context.Background(), id, valid)

		assert.Equal(t, apperrors.ErrUserNotFound, err)
		roles.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("role insert fails", func(t *testing.T) {
		users, roles, svc := newOnboardingFixture()
		user := newPasswordUser(t, "s@example.com", "password123")
		users.On("FindByID", mock.Anything, user.ID).Return(user, nil)
		roles.On("FindDefaultByUser", mock.Anything, user.ID).Return(nil, gorm.ErrRecordNotFound)
		roles.On("Create", mock.Anything, mock.Anything).Return(errors.New("db down"))

		_, err := svc.Complete(context.Background(), user.ID, valid)

		assert.Error(t, err)
		assert.False(t, user.OnboardingCompleted)
		users.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
	})

	t.Run("role lookup fails", func(t *testing.T) {
		users, roles, svc := newOnboardingFixture()
		user := newPasswordUser(t, "l@example.com", "password123")
		users.On("FindByID", mock.Anything, user.ID).Return(user, nil)
		roles.On("FindDefaultByUser", mock.Anything, user.ID).Return(nil, errors.New("db down"))

		_, err := svc.Complete(context.Background(), user.ID, valid)

		assert.Error(t, err)
		roles.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
		users.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
	})
}

func TestOnboardingService_Complete_RetryReusesDefaultRole(t *testing.T) {
	users, roles, svc := newOnboardingFixture()
	user := newPasswordUser(t, "retry@example.com", "password123")
	valid := OnboardingInput{Role: "Student", Industry: "Education", ExperienceLevel: "Beginner", BrandingGoal: "Job Offers", Tone: "Friendly", TopicsKeywords: []string{"Math"}}

	var stored *model.Role
	users.On("FindByID", mock.Anything, user.ID).Return(user, nil)
	roles.On("FindDefaultByUser", mock.Anything, user.ID).Return(nil, gorm.ErrRecordNotFound).Once()
	roles.On("Create", mock.Anything, mock.AnythingOfType("*model.Role")).
		Run(func(args mock.Arguments) {
			stored = args.Get(1).(*model.Role)
			stored.ID = uuid.New()
			stored.CreatedAt = testNow
		}).
		Return(nil).Once()
	users.On("Update", mock.Anything, user).Return(errors.New("db down")).Once()

	_, err := svc.Complete(context.Background(), user.ID, valid)
	require.Error(t, err)
	require.NotNil(t, stored)

	roles.On("FindDefaultByUser", mock.Anything, user.ID).Return(stored, nil).Once()
	roles.On("Save", mock.Anything, mock.AnythingOfType("*model.Role")).Return(nil).Once()
	users.On("Update", mock.Anything, user).Return(nil).Once()

	result, err := svc.Complete(context.Background(), user.ID, valid)
	require.NoError(t, err)

	assert.Equal(t, stored.ID, result.PrimaryRole.ID)
	assert.Equal(t, testNow, result.PrimaryRole.CreatedAt)
	roles.AssertNumberOfCalls(t, "Create", 1)
	roles.AssertNumberOfCalls(t, "Save", 1)
	users.AssertExpectations(t)
	roles.AssertExpectations(t)
}

func TestTargetAudience(t *testing.T) {
	tests := []struct {
		role     RoleKind
		expected string
	}{
		{RoleStudent, "fellow students and entry-level professionals"},
		{RoleDeveloper, "tech professionals and hiring managers"},
		{RoleCreator, "content consumers and brand collaborators"},
		{RoleProfessional, "industry peers and potential clients"},
		{RoleKind("Astronaut"), "professionals in Aerospace"},
	}
	for _, tt := range tests {
		t.Run(string(tt.role), func(t *testing.T) {
			assert.Equal(t, tt.expected, TargetAudience(tt.role, "Aerospace"))
		})
	}
}

func TestContentTypes(t *testing.T) {
	assert.Equal(t, []string{"professional", "educational", "personal"}, ContentTypes(GoalJobOffers))
	assert.Equal(t, []string{"entertaining", "educational", "engaging"}, ContentTypes(GoalAudienceGrowth))
	assert.Equal(t, []string{"professional", "educational"}, ContentTypes(BrandingGoal("Fame")))
}

func TestHashtags(t *testing.T) {
	tests := []struct {
		name     string
		keywords []string
		expected []string
	}{
		{"strips spaces", []string{"AI", "Cloud Computing", "Data"}, []string{"AI", "CloudComputing", "Data"}},
		{"strips punctuation", []string{"C++", "Node.js", "web-3"}, []string{"C", "Nodejs", "web3"}},
		{"caps at five", []string{"a", "b", "c", "d", "e", "f"}, []string{"a", "b", "c", "d", "e"}},
		{"drops empty results", []string{"!!!", "Go"}, []string{"Go"}},
		{"non ascii removed", []string{"café"}, []string{"caf"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Hashtags(tt.keywords))
		})
	}
}
