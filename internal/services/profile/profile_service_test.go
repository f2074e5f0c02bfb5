package profile

import (
	"context"
	"testing"

	"github.com/freshersjob/freshersjob/internal/persistence"
	"github.com/freshersjob/freshersjob/internal/services/validation"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newService(t *testing.T) *ProfileService {
	t.Helper()
	return NewProfileService(NewProfileRepo(persistence.NewMemoryGatewayWithSchema()))
}

func candidateRequest() *OnboardRequest {
	return &OnboardRequest{CreateProfileRequest: CreateProfileRequest{
		Role:     RoleCandidate,
		Headline: "Final year CSE student",
		Skills:   []string{" Go ", "", "React"},
	}}
}

func TestOnboardCandidate(t *testing.T) {
	ctx := context.Background()
	svc := newService(t)

	p, err := svc.Onboard(ctx, "asha@x.com", candidateRequest())
	require.NoError(t, err)
	assert.Equal(t, RoleCandidate, p.Role)
	assert.Equal(t, "asha@x.com", p.CreatedBy)
	assert.Equal(t, []string{"Go", "React"}, []string(p.Skills))

	_, err = svc.Onboard(ctx, "asha@x.com", candidateRequest())
	assert.ErrorIs(t, err, ErrAlreadyOnboarded)

	role, err := svc.RoleOf(ctx, "asha@x.com")
	require.NoError(t, err)
	assert.Equal(t, RoleCandidate, role)
}

func TestOnboardRespectsPendingRole(t *testing.T) {
	req := candidateRequest()
	req.PendingRole = RoleEmployer

	_, err := newService(t).Onboard(context.Background(), "asha@x.com", req)
	assert.ErrorIs(t, err, ErrRoleLocked)
}

func TestOnboardEmployerRequiresDetails(t *testing.T) {
	_, err := newService(t).Onboard(context.Background(), "hr@acme.in", &OnboardRequest{
		CreateProfileRequest: CreateProfileRequest{Role: RoleEmployer, CompanyName: "Acme"},
	})
	assert.ErrorIs(t, err, ErrEmployerDetailsRequired)
}

func TestOnboardCompletesIncompleteEmployer(t *testing.T) {
	ctx := context.Background()
	svc := newService(t)

	stub, err := svc.Create(ctx, "hr@acme.in", &CreateProfileRequest{Role: RoleEmployer, CompanyName: "Acme"})
	require.NoError(t, err)
	require.True(t, stub.EmployerIncomplete())

	state, err := svc.State(ctx, "hr@acme.in", "")
	require.NoError(t, err)
	assert.True(t, state.NeedsOnboarding)
	assert.True(t, state.RoleLocked)
	assert.Equal(t, 2, state.Step)
	assert.Equal(t, RoleEmployer, state.Role)

	_, err = svc.Onboard(ctx, "hr@acme.in", candidateRequest())
	assert.ErrorIs(t, err, ErrRoleLocked)

	done, err := svc.Onboard(ctx, "hr@acme.in", &OnboardRequest{CreateProfileRequest: CreateProfileRequest{
		Role: RoleEmployer, CompanyName: "Acme", Headline: "HR Manager", Phone: "9876543210",
	}})
	require.NoError(t, err)
	assert.Equal(t, stub.ID, done.ID)
	assert.False(t, done.EmployerIncomplete())

	state, err = svc.State(ctx, "hr@acme.in", "")
	require.NoError(t, err)
	assert.False(t, state.NeedsOnboarding)
	assert.Equal(t, RedirectPostJob, state.Redirect)
}

func TestStateWithoutProfile(t *testing.T) {
	state, err := newService(t).State(context.Background(), "new@x.com", RoleEmployer)
	require.NoError(t, err)

	assert.True(t, state.NeedsOnboarding)
	assert.Equal(t, RoleEmployer, state.Role)
	assert.True(t, state.RoleLocked)
	assert.Nil(t, state.Profile)
}

func TestUpdateIsPartial(t *testing.T) {
	ctx := context.Background()
	svc := newService(t)
	_, err := svc.Onboard(ctx, "asha@x.com", candidateRequest())
	require.NoError(t, err)

	loc := "Pune"
	updated, err := svc.Update(ctx, "asha@x.com", &UpdateProfileRequest{Location: &loc})
	require.NoError(t, err)
	assert.Equal(t, "Pune", updated.Location)
	assert.Equal(t, "Final year CSE student", updated.Headline)

	bad := "not a url"
	_, err = svc.Update(ctx, "asha@x.com", &UpdateProfileRequest{ResumeURL: &bad})
	assert.ErrorIs(t, err, validation.ErrInvalid)

	_, err = svc.Update(ctx, "ghost@x.com", &UpdateProfileRequest{Location: &loc})
	assert.ErrorIs(t, err, ErrProfileNotFound)
}

func TestByEmailsDeduplicates(t *testing.T) {
	ctx := context.Background()
	svc := newService(t)
	_, err := svc.Onboard(ctx, "a@x.com", candidateRequest())
	require.NoError(t, err)

	profiles, err := svc.ByEmails(ctx, []string{"a@x.com", "missing@x.com", "a@x.com"})
	require.NoError(t, err)
	assert.Len(t, profiles, 1)
	assert.Contains(t, profiles, "a@x.com")
}

func TestLegacyProfileTableName(t *testing.T) {
	ctx := context.Background()
	g := persistence.NewMemoryGateway()
	g.CreateTable("UserProfile", []string{"created_by"})
	svc := NewProfileService(NewProfileRepo(g))

	_, err := svc.Onboard(ctx, "a@x.com", candidateRequest())
	require.NoError(t, err)

	p, err := svc.GetByEmail(ctx, "a@x.com")
	require.NoError(t, err)
	assert.Equal(t, RoleCandidate, p.Role)

	require.NoError(t, svc.Delete(ctx, "a@x.com"))
	assert.ErrorIs(t, svc.Delete(ctx, "a@x.com"), ErrProfileNotFound)
}

func TestHasProfile(t *testing.T) {
	ctx := context.Background()
	svc := newService(t)

	has, err := svc.HasProfile(ctx, "asha@x.com")
	require.NoError(t, err)
	assert.False(t, has)

	_, err = svc.Onboard(ctx, "asha@x.com", candidateRequest())
	require.NoError(t, err)

	has, err = svc.HasProfile(ctx, "asha@x.com")
	require.NoError(t, err)
	assert.True(t, has)
}
