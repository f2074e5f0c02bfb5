package job

import (
	"context"
	"testing"

	"github.com/freshersjob/freshersjob/internal/persistence"
	"github.com/freshersjob/freshersjob/internal/services/profile"
	"github.com/freshersjob/freshersjob/internal/services/validation"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const employer = "hr@acme.in"

type fakeRoles map[string]profile.Role

func (f fakeRoles) RoleOf(_ context.Context, email string) (profile.Role, error) {
	role, ok := f[email]
	if !ok {
		return "", profile.ErrProfileNotFound
	}
	return role, nil
}

func newTestService(t *testing.T) (*JobService, *persistence.MemoryGateway) {
	t.Helper()
	g := persistence.NewMemoryGatewayWithSchema()
	roles := fakeRoles{employer: profile.RoleEmployer, "other@corp.in": profile.RoleEmployer, "asha@x.com": profile.RoleCandidate}
	return NewJobService(NewJobRepo(g), roles), g
}

func lpa(v float64) *float64 { return &v }

func postJob(t *testing.T, svc *JobService, title string, status Status) *Job {
	t.Helper()
	job, err := svc.Create(context.Background(), employer, &CreateJobRequest{
		Title:       title,
		CompanyName: "Acme",
		Location:    "Bengaluru",
		JobType:     JobTypeFullTime,
		Description: "Build things",
		Skills:      []string{"Go"},
		Status:      status,
	})
	require.NoError(t, err)
	return job
}

func TestCreateRequiresEmployer(t *testing.T) {
	svc, _ := newTestService(t)
	req := &CreateJobRequest{Title: "x", CompanyName: "y", Location: "z", JobType: JobTypeRemote, Description: "d"}

	_, err := svc.Create(context.Background(), "asha@x.com", req)
	assert.ErrorIs(t, err, ErrNotEmployer)

	_, err = svc.Create(context.Background(), "nobody@x.com", req)
	assert.ErrorIs(t, err, ErrNotEmployer)
}

func TestCreateAppliesDefaultsAndKeepsSalaryUnit(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t)

	created, err := svc.Create(ctx, employer, &CreateJobRequest{
		Title:       "Backend Intern",
		Company:     "Acme Labs",
		Location:    "Pune",
		JobType:     JobTypeInternship,
		Description: "Go services",
		SalaryMin:   lpa(3),
		SalaryMax:   lpa(6),
	})
	require.NoError(t, err)
	assert.Equal(t, StatusActive, created.Status)
	assert.Equal(t, LevelFresher, created.ExperienceLevel)
	assert.Equal(t, "Acme Labs", created.CompanyName)
	assert.Equal(t, employer, created.EmployerID)
	assert.Equal(t, 0, created.ApplicationsCount)

	fetched, err := svc.Get(ctx, created.ID)
	require.NoError(t, err)
	require.NotNil(t, fetched.SalaryMin)
	require.NotNil(t, fetched.SalaryMax)
	assert.Equal(t, 3.0, *fetched.SalaryMin)
	assert.Equal(t, 6.0, *fetched.SalaryMax)
}

func TestCreateValidation(t *testing.T) {
	svc, _ := newTestService(t)

	_, err := svc.Create(context.Background(), employer, &CreateJobRequest{
		Title: "x", CompanyName: "y", Location: "z", JobType: JobTypeRemote, Description: "d",
		SalaryMin: lpa(8), SalaryMax: lpa(4),
	})
	assert.ErrorIs(t, err, ErrInvalidSalary)
	assert.ErrorIs(t, err, validation.ErrInvalid)

	_, err = svc.Create(context.Background(), employer, &CreateJobRequest{
		Title: "x", CompanyName: "y", Location: "z", JobType: "freelance", Description: "d",
	})
	assert.ErrorIs(t, err, validation.ErrInvalid)

	_, err = svc.Create(context.Background(), employer, &CreateJobRequest{
		Title: "x", CompanyName: "y", Location: "z", JobType: JobTypeRemote, Description: "d", ExperienceLevel: "5+ years",
	})
	assert.ErrorIs(t, err, validation.ErrInvalid)
}

func TestListFiltersByStatusNewestFirst(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t)
	postJob(t, svc, "one", StatusActive)
	postJob(t, svc, "two", StatusDraft)
	postJob(t, svc, "three", StatusActive)
	postJob(t, svc, "four", StatusClosed)

	active, err := svc.List(ctx, ListQuery{Status: StatusActive})
	require.NoError(t, err)
	require.Len(t, active, 2)
	assert.Equal(t, "three", active[0].Title)
	for _, j := range active {
		assert.Equal(t, StatusActive, j.Status)
	}

	all, err := svc.List(ctx, ListQuery{Limit: 3})
	require.NoError(t, err)
	assert.Len(t, all, 3)

	_, err = svc.List(ctx, ListQuery{Status: "archived"})
	assert.ErrorIs(t, err, validation.ErrInvalid)

	_, err = svc.List(ctx, ListQuery{Order: "-created_date; drop table jobs"})
	assert.ErrorIs(t, err, validation.ErrInvalid)
}

func TestUpdateOwnerOnly(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t)
	job := postJob(t, svc, "Analyst", StatusActive)

	_, err := svc.SetStatus(ctx, "other@corp.in", job.ID, StatusClosed)
	assert.ErrorIs(t, err, ErrNotJobOwner)

	closed, err := svc.SetStatus(ctx, employer, job.ID, StatusClosed)
	require.NoError(t, err)
	assert.Equal(t, StatusClosed, closed.Status)
	assert.Equal(t, "Analyst", closed.Title)

	_, err = svc.Update(ctx, employer, job.ID, &UpdateJobRequest{SalaryMin: lpa(10), SalaryMax: lpa(2)})
	assert.ErrorIs(t, err, ErrInvalidSalary)

	_, err = svc.Update(ctx, employer, uuid.New(), &UpdateJobRequest{})
	assert.ErrorIs(t, err, ErrJobNotFound)
}

func TestDeleteCascades(t *testing.T) {
	ctx := context.Background()
	svc, g := newTestService(t)
	job := postJob(t, svc, "Analyst", StatusActive)
	keep := postJob(t, svc, "Designer", StatusActive)

	for _, rec := range []persistence.Record{
		{"job_id": job.ID, "candidate_email": "a@x.com"},
		{"job_id": keep.ID, "candidate_email": "a@x.com"},
	} {
		require.NoError(t, g.Create(ctx, persistence.TableApplications, rec, nil))
	}
	require.NoError(t, g.Create(ctx, persistence.TableSavedJobs, persistence.Record{"job_id": job.ID, "user_email": "a@x.com"}, nil))

	assert.ErrorIs(t, svc.Delete(ctx, "other@corp.in", job.ID), ErrNotJobOwner)
	require.NoError(t, svc.Delete(ctx, employer, job.ID))

	_, err := svc.Get(ctx, job.ID)
	assert.ErrorIs(t, err, ErrJobNotFound)

	var apps []struct {
		JobID uuid.UUID `db:"job_id"`
	}
	require.NoError(t, g.Filter(ctx, persistence.TableApplications, persistence.Query{}, &apps))
	require.Len(t, apps, 1)
	assert.Equal(t, keep.ID, apps[0].JobID)

	var saved []struct {
		JobID uuid.UUID `db:"job_id"`
	}
	require.NoError(t, g.Filter(ctx, persistence.TableSavedJobs, persistence.Query{}, &saved))
	assert.Empty(t, saved)

	listed, err := svc.List(ctx, ListQuery{})
	require.NoError(t, err)
	assert.Len(t, listed, 1)
}

func TestCountByStatus(t *testing.T) {
	counts := CountByStatus([]*Job{{Status: StatusActive}, {Status: StatusActive}, {Status: StatusDraft}})
	assert.Equal(t, map[Status]int{StatusActive: 2, StatusClosed: 0, StatusDraft: 1}, counts)
}
