package views

import (
	"context"
	"testing"

	"github.com/freshersjob/freshersjob/internal/api/authenticator"
	"github.com/freshersjob/freshersjob/internal/persistence"
	"github.com/freshersjob/freshersjob/internal/services/application"
	"github.com/freshersjob/freshersjob/internal/services/job"
	"github.com/freshersjob/freshersjob/internal/services/profile"
	"github.com/freshersjob/freshersjob/internal/services/savedjob"
	"github.com/freshersjob/freshersjob/internal/services/user"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	employer  = &authenticator.Session{Email: "hr@acme.in", Name: "Acme HR"}
	candidate = &authenticator.Session{Email: "asha@x.com", Name: "Asha Rao"}
)

type fixture struct {
	db    *persistence.MemoryGateway
	views *ViewService
	jobs  *job.JobService
	users *user.UserService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	g := persistence.NewMemoryGatewayWithSchema()

	profiles := profile.NewProfileService(profile.NewProfileRepo(g))
	jobRepo := job.NewJobRepo(g)
	jobs := job.NewJobService(jobRepo, profiles)
	apps := application.NewApplicationService(application.NewApplicationRepo(g), jobRepo, profiles)
	saved := savedjob.NewSavedJobService(savedjob.NewSavedJobRepo(g), jobs)

	return &fixture{
		db:    g,
		views: NewViewService(g, profiles, jobs, apps, saved),
		jobs:  jobs,
		users: user.NewUserService(user.NewUserRepo(g), nil),
	}
}

func (f *fixture) onboard(t *testing.T) {
	t.Helper()
	ctx := context.Background()
	_, err := f.views.Onboard(ctx, employer, &profile.OnboardRequest{CreateProfileRequest: profile.CreateProfileRequest{
		Role: profile.RoleEmployer, CompanyName: "Acme", Headline: "Talent lead", Phone: "9845012345",
	}})
	require.NoError(t, err)
	_, err = f.views.Onboard(ctx, candidate, &profile.OnboardRequest{CreateProfileRequest: profile.CreateProfileRequest{
		Role: profile.RoleCandidate, Skills: []string{"Go"},
	}})
	require.NoError(t, err)
}

func (f *fixture) postJob(t *testing.T, title string, status job.Status) *job.Job {
	t.Helper()
	j, err := f.jobs.Create(context.Background(), employer.Email, &job.CreateJobRequest{
		Title:       title,
		CompanyName: "Acme",
		Location:    "Bengaluru",
		JobType:     job.JobTypeFullTime,
		Description: "Entry level role",
		Status:      status,
	})
	require.NoError(t, err)
	return j
}

func TestViewsRequireSession(t *testing.T) {
	f := newFixture(t)
	_, err := f.views.Feed(context.Background(), nil)
	assert.ErrorIs(t, err, authenticator.ErrUnauthenticated)

	_, err = f.views.DeleteAccount(context.Background(), &authenticator.Session{})
	assert.ErrorIs(t, err, authenticator.ErrUnauthenticated)
}

func TestFeedNeedsOnboarding(t *testing.T) {
	f := newFixture(t)
	view, err := f.views.Feed(context.Background(), candidate)
	require.NoError(t, err)
	assert.True(t, view.NeedsOnboarding)
	assert.Empty(t, view.Jobs)

	pv, err := f.views.Profile(context.Background(), candidate)
	require.NoError(t, err)
	assert.True(t, pv.NeedsOnboarding)
}

func TestFeedShowsActiveJobsAndActivity(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.onboard(t)

	draft := f.postJob(t, "Draft role", job.StatusDraft)
	applied := f.postJob(t, "Backend Trainee", job.StatusActive)
	saved := f.postJob(t, "Frontend Trainee", job.StatusActive)

	_, err := f.views.Apply(ctx, candidate, &application.ApplyRequest{JobID: applied.ID})
	require.NoError(t, err)
	res, err := f.views.ToggleSave(ctx, candidate, saved.ID)
	require.NoError(t, err)
	assert.True(t, res.Saved)

	view, err := f.views.Feed(ctx, candidate)
	require.NoError(t, err)
	assert.False(t, view.NeedsOnboarding)
	require.Len(t, view.Jobs, 2)
	assert.Equal(t, saved.ID, view.Jobs[0].ID)
	for _, j := range view.Jobs {
		assert.NotEqual(t, draft.ID, j.ID)
	}
	assert.Equal(t, saved.ID, view.SavedJobIDs[0])
	assert.Equal(t, applied.ID, view.AppliedJobIDs[0])

	detail, err := f.views.JobDetail(ctx, candidate, applied.ID)
	require.NoError(t, err)
	assert.True(t, detail.HasApplied)
	assert.False(t, detail.IsSaved)
	assert.Equal(t, 1, detail.Job.ApplicationsCount)

	anon, err := f.views.JobDetail(ctx, nil, saved.ID)
	require.NoError(t, err)
	assert.Nil(t, anon.Profile)
	assert.False(t, anon.IsSaved)
}

func TestJobsListingFilters(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.onboard(t)
	f.postJob(t, "Go Developer", job.StatusActive)
	f.postJob(t, "Java Developer", job.StatusActive)
	f.postJob(t, "Go Closed", job.StatusClosed)

	view, err := f.views.Jobs(ctx, nil, job.JobSearch{Query: "go"})
	require.NoError(t, err)
	require.Equal(t, 1, view.Total)
	assert.Equal(t, "Go Developer", view.Jobs[0].Title)
	assert.Empty(t, view.SavedJobIDs)
}

func TestManageJobsIsEmployerOnly(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.onboard(t)
	f.postJob(t, "A", job.StatusActive)
	f.postJob(t, "B", job.StatusDraft)

	view, err := f.views.ManageJobs(ctx, employer)
	require.NoError(t, err)
	assert.Equal(t, 2, view.Total)
	assert.Equal(t, 1, view.Counts[job.StatusActive])
	assert.Equal(t, 1, view.Counts[job.StatusDraft])
	assert.Equal(t, 0, view.Counts[job.StatusClosed])

	_, err = f.views.ManageJobs(ctx, candidate)
	assert.ErrorIs(t, err, job.ErrNotEmployer)
}

func TestApplicationsReview(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.onboard(t)
	j := f.postJob(t, "Support Engineer", job.StatusActive)
	_, err := f.views.Apply(ctx, candidate, &application.ApplyRequest{JobID: j.ID})
	require.NoError(t, err)

	view, err := f.views.Applications(ctx, employer, j.ID, "")
	require.NoError(t, err)
	require.Equal(t, 1, view.Total)
	assert.Equal(t, j.ID, view.Job.ID)
	assert.Equal(t, []string{"Go"}, []string(view.Applications[0].CandidateProfile.Skills))

	all, err := f.views.Applications(ctx, employer, uuid.Nil, application.StatusPending)
	require.NoError(t, err)
	assert.Equal(t, 1, all.Total)

	_, err = f.views.Applications(ctx, candidate, j.ID, "")
	assert.ErrorIs(t, err, job.ErrNotJobOwner)

	mine, err := f.views.MyApplications(ctx, candidate)
	require.NoError(t, err)
	require.Equal(t, 1, mine.Total)
	assert.Equal(t, "Support Engineer", mine.Applications[0].Job.Title)
}

func TestSavedJobsAndProfileStats(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.onboard(t)
	j := f.postJob(t, "Analyst", job.StatusActive)

	_, err := f.views.ToggleSave(ctx, candidate, j.ID)
	require.NoError(t, err)
	_, err = f.views.Apply(ctx, candidate, &application.ApplyRequest{JobID: j.ID})
	require.NoError(t, err)

	saved, err := f.views.SavedJobs(ctx, candidate)
	require.NoError(t, err)
	require.Len(t, saved.Saved, 1)
	assert.Equal(t, "Analyst", saved.Saved[0].Job.Title)
	assert.Len(t, saved.AppliedJobIDs, 1)

	cp, err := f.views.Profile(ctx, candidate)
	require.NoError(t, err)
	assert.Equal(t, ProfileStats{SavedJobs: 1, Applications: 1}, cp.Stats)

	ep, err := f.views.Profile(ctx, employer)
	require.NoError(t, err)
	assert.Equal(t, ProfileStats{JobsPosted: 1, ApplicationsReceived: 1}, ep.Stats)
}

func TestOnboardingFlow(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	state, err := f.views.OnboardingState(ctx, employer, profile.RoleEmployer)
	require.NoError(t, err)
	assert.True(t, state.NeedsOnboarding)
	assert.True(t, state.RoleLocked)

	f.onboard(t)
	state, err = f.views.OnboardingState(ctx, employer, "")
	require.NoError(t, err)
	assert.False(t, state.NeedsOnboarding)
	assert.Equal(t, profile.RedirectPostJob, state.Redirect)
}

func TestDeleteAccountAsEmployer(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.onboard(t)
	_, err := f.users.Signup(ctx, &user.SignupRequest{FirstName: "Acme", Email: employer.Email, Password: "secret1", Role: "employer"})
	require.NoError(t, err)

	j := f.postJob(t, "Ops Trainee", job.StatusActive)
	_, err = f.views.Apply(ctx, candidate, &application.ApplyRequest{JobID: j.ID})
	require.NoError(t, err)
	_, err = f.views.ToggleSave(ctx, candidate, j.ID)
	require.NoError(t, err)

	res, err := f.views.DeleteAccount(ctx, employer)
	require.NoError(t, err)
	assert.Equal(t, int64(1), res.Jobs)
	assert.True(t, res.Profile)

	_, err = f.jobs.Get(ctx, j.ID)
	assert.ErrorIs(t, err, job.ErrJobNotFound)
	_, err = f.users.GetByEmail(ctx, employer.Email)
	assert.ErrorIs(t, err, user.ErrUserNotFound)

	mine, err := f.views.MyApplications(ctx, candidate)
	require.NoError(t, err)
	assert.Zero(t, mine.Total)
	saved, err := f.views.SavedJobs(ctx, candidate)
	require.NoError(t, err)
	assert.Empty(t, saved.Saved)
}

func TestDeleteAccountAsCandidateDecrementsCounts(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.onboard(t)
	j := f.postJob(t, "Ops Trainee", job.StatusActive)
	_, err := f.views.Apply(ctx, candidate, &application.ApplyRequest{JobID: j.ID})
	require.NoError(t, err)

	res, err := f.views.DeleteAccount(ctx, candidate)
	require.NoError(t, err)
	assert.Equal(t, int64(1), res.Applications)

	got, err := f.jobs.Get(ctx, j.ID)
	require.NoError(t, err)
	assert.Zero(t, got.ApplicationsCount)

	view, err := f.views.Feed(ctx, candidate)
	require.NoError(t, err)
	assert.True(t, view.NeedsOnboarding)
}
