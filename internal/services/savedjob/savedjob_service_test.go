package savedjob

import (
	"context"
	"testing"

	"github.com/freshersjob/freshersjob/internal/persistence"
	"github.com/freshersjob/freshersjob/internal/services/job"
	"github.com/freshersjob/freshersjob/internal/services/profile"
	"github.com/freshersjob/freshersjob/internal/services/validation"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	employer = "hr@acme.in"
	user     = "asha@x.com"
)

type roles map[string]profile.Role

func (r roles) RoleOf(_ context.Context, email string) (profile.Role, error) {
	if role, ok := r[email]; ok {
		return role, nil
	}
	return "", profile.ErrProfileNotFound
}

func newService(t *testing.T) (*SavedJobService, *job.JobService) {
	t.Helper()
	g := persistence.NewMemoryGatewayWithSchema()
	jobs := job.NewJobService(job.NewJobRepo(g), roles{employer: profile.RoleEmployer})
	return NewSavedJobService(NewSavedJobRepo(g), jobs), jobs
}

func postJob(t *testing.T, jobs *job.JobService, title string) *job.Job {
	t.Helper()
	j, err := jobs.Create(context.Background(), employer, &job.CreateJobRequest{
		Title:       title,
		CompanyName: "Acme",
		Location:    "Hyderabad",
		JobType:     job.JobTypeInternship,
		Description: "Six month internship",
	})
	require.NoError(t, err)
	return j
}

func TestSaveUnsaveSaveLeavesOneRow(t *testing.T) {
	ctx := context.Background()
	svc, jobs := newService(t)
	j := postJob(t, jobs, "Data Intern")

	_, err := svc.Save(ctx, user, &SaveRequest{JobID: j.ID})
	require.NoError(t, err)
	require.NoError(t, svc.Unsave(ctx, user, j.ID))
	_, err = svc.Save(ctx, user, &SaveRequest{JobID: j.ID})
	require.NoError(t, err)

	saved, err := svc.ListForUser(ctx, user)
	require.NoError(t, err)
	require.Len(t, saved, 1)
	assert.Equal(t, j.ID, saved[0].JobID)
}

func TestSaveTwiceIsRejected(t *testing.T) {
	ctx := context.Background()
	svc, jobs := newService(t)
	j := postJob(t, jobs, "Data Intern")

	_, err := svc.Save(ctx, user, &SaveRequest{JobID: j.ID})
	require.NoError(t, err)

	_, err = svc.Save(ctx, user, &SaveRequest{JobID: j.ID})
	assert.ErrorIs(t, err, ErrAlreadySaved)
	assert.EqualError(t, err, "Job already saved!")

	_, err = svc.Save(ctx, user, &SaveRequest{JobID: uuid.New()})
	assert.ErrorIs(t, err, job.ErrJobNotFound)

	_, err = svc.Save(ctx, user, &SaveRequest{})
	assert.ErrorIs(t, err, validation.ErrInvalid)

	assert.ErrorIs(t, svc.Unsave(ctx, user, uuid.New()), ErrNotSaved)
}

func TestToggle(t *testing.T) {
	ctx := context.Background()
	svc, jobs := newService(t)
	j := postJob(t, jobs, "Data Intern")

	saved, err := svc.Toggle(ctx, user, j.ID)
	require.NoError(t, err)
	assert.True(t, saved)

	is, err := svc.IsSaved(ctx, user, j.ID)
	require.NoError(t, err)
	assert.True(t, is)

	saved, err = svc.Toggle(ctx, user, j.ID)
	require.NoError(t, err)
	assert.False(t, saved)

	is, err = svc.IsSaved(ctx, user, j.ID)
	require.NoError(t, err)
	assert.False(t, is)
}

func TestSavedWithJobs(t *testing.T) {
	ctx := context.Background()
	svc, jobs := newService(t)
	first := postJob(t, jobs, "Data Intern")
	second := postJob(t, jobs, "QA Trainee")

	for _, j := range []*job.Job{first, second} {
		_, err := svc.Save(ctx, user, &SaveRequest{JobID: j.ID})
		require.NoError(t, err)
	}
	require.NoError(t, jobs.Delete(ctx, employer, first.ID))

	rows, err := svc.SavedWithJobs(ctx, user)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "QA Trainee", rows[0].Job.Title)

	ids, err := svc.JobIDs(ctx, user)
	require.NoError(t, err)
	assert.Equal(t, []uuid.UUID{second.ID}, ids)
}
