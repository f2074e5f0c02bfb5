package persistence

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testJob struct {
	ID          uuid.UUID      `db:"id"`
	Title       string         `db:"title"`
	Status      string         `db:"status"`
	SalaryMin   *float64       `db:"salary_min"`
	Skills      pq.StringArray `db:"skills"`
	Count       int            `db:"applications_count"`
	CreatedDate time.Time      `db:"created_date"`
	UpdatedDate time.Time      `db:"updated_date"`
}

func newJobsGateway(t *testing.T) *MemoryGateway {
	t.Helper()
	g := NewMemoryGateway()
	g.CreateTable("jobs")
	g.CreateTable("saved_jobs", []string{"user_email", "job_id"})
	return g
}

func seedJob(t *testing.T, g Gateway, title, status string) *testJob {
	t.Helper()
	var job testJob
	require.NoError(t, g.Create(context.Background(), "jobs", Record{
		"title":              title,
		"status":             status,
		"skills":             pq.StringArray{"Go", "SQL"},
		"applications_count": 0,
	}, &job))
	return &job
}

func TestMemoryCreateAssignsIdentityAndTimestamps(t *testing.T) {
	g := newJobsGateway(t)
	job := seedJob(t, g, "Backend Intern", "active")

	assert.NotEqual(t, uuid.Nil, job.ID)
	assert.False(t, job.CreatedDate.IsZero())
	assert.Equal(t, pq.StringArray{"Go", "SQL"}, job.Skills)
	assert.Nil(t, job.SalaryMin)
}

func TestMemoryFilterMatchOrderLimit(t *testing.T) {
	ctx := context.Background()
	g := newJobsGateway(t)
	seedJob(t, g, "first", "active")
	seedJob(t, g, "second", "draft")
	seedJob(t, g, "third", "active")
	seedJob(t, g, "fourth", "closed")
	seedJob(t, g, "fifth", "active")

	var active []testJob
	require.NoError(t, g.Filter(ctx, "jobs", Query{Match: Match{"status": "active"}, Order: "-created_date"}, &active))
	require.Len(t, active, 3)
	assert.Equal(t, "fifth", active[0].Title)
	assert.Equal(t, "first", active[2].Title)
	for _, j := range active {
		assert.Equal(t, "active", j.Status)
	}

	var limited []*testJob
	require.NoError(t, g.Filter(ctx, "jobs", Query{Order: "created_date", Limit: 2}, &limited))
	require.Len(t, limited, 2)
	assert.Equal(t, "first", limited[0].Title)
	assert.Equal(t, "second", limited[1].Title)

	var all []testJob
	require.NoError(t, g.Filter(ctx, "jobs", Query{}, &all))
	assert.Len(t, all, 5)
}

func TestMemoryOrderingPutsNullsLast(t *testing.T) {
	ctx := context.Background()
	g := newJobsGateway(t)
	three, five := 3.0, 5.0

	for _, v := range []*float64{&five, nil, &three} {
		require.NoError(t, g.Create(ctx, "jobs", Record{"title": "x", "salary_min": v}, &testJob{}))
	}

	var jobs []testJob
	require.NoError(t, g.Filter(ctx, "jobs", Query{Order: "salary_min"}, &jobs))
	require.Len(t, jobs, 3)
	assert.Equal(t, 3.0, *jobs[0].SalaryMin)
	assert.Equal(t, 5.0, *jobs[1].SalaryMin)
	assert.Nil(t, jobs[2].SalaryMin)
}

func TestMemoryUpdateIncrementDelete(t *testing.T) {
	ctx := context.Background()
	g := newJobsGateway(t)
	job := seedJob(t, g, "Analyst", "active")

	var updated testJob
	require.NoError(t, g.Update(ctx, "jobs", job.ID, Record{"status": "closed"}, &updated))
	assert.Equal(t, "closed", updated.Status)
	assert.Equal(t, "Analyst", updated.Title)
	assert.True(t, updated.UpdatedDate.After(job.UpdatedDate))

	var incremented testJob
	require.NoError(t, g.Increment(ctx, "jobs", job.ID, "applications_count", 1, &incremented))
	require.NoError(t, g.Increment(ctx, "jobs", job.ID, "applications_count", 1, &incremented))
	assert.Equal(t, 2, incremented.Count)

	require.NoError(t, g.Delete(ctx, "jobs", job.ID))
	assert.ErrorIs(t, g.Delete(ctx, "jobs", job.ID), ErrNotFound)
	assert.ErrorIs(t, g.Update(ctx, "jobs", job.ID, Record{"status": "active"}, &updated), ErrNotFound)
}

func TestMemoryUniqueKeys(t *testing.T) {
	ctx := context.Background()
	g := newJobsGateway(t)

	var row struct {
		ID        uuid.UUID `db:"id"`
		UserEmail string    `db:"user_email"`
		JobID     string    `db:"job_id"`
	}
	require.NoError(t, g.Create(ctx, "saved_jobs", Record{"user_email": "a@x.com", "job_id": "j1"}, &row))
	err := g.Create(ctx, "saved_jobs", Record{"user_email": "a@x.com", "job_id": "j1"}, &row)
	assert.ErrorIs(t, err, ErrDuplicate)

	require.NoError(t, g.Create(ctx, "saved_jobs", Record{"user_email": "b@x.com", "job_id": "j1"}, &row))
}

func TestMemoryDeleteWhere(t *testing.T) {
	ctx := context.Background()
	g := newJobsGateway(t)
	seedJob(t, g, "a", "draft")
	seedJob(t, g, "b", "draft")
	seedJob(t, g, "c", "active")

	deleted, err := g.DeleteWhere(ctx, "jobs", Match{"status": "draft"})
	require.NoError(t, err)
	assert.Equal(t, int64(2), deleted)

	_, err = g.DeleteWhere(ctx, "jobs", Match{})
	assert.Error(t, err)
}

func TestMemoryMissingTable(t *testing.T) {
	g := NewMemoryGateway()
	var rows []testJob
	err := g.Filter(context.Background(), "UserProfile", Query{}, &rows)

	assert.ErrorIs(t, err, ErrTableNotFound)
	assert.True(t, IsMissingTable(err))
}

func TestMemoryInTxRollsBack(t *testing.T) {
	ctx := context.Background()
	g := newJobsGateway(t)
	job := seedJob(t, g, "kept", "active")

	boom := errors.New("boom")
	err := g.InTx(ctx, func(tx Gateway) error {
		require.NoError(t, tx.Delete(ctx, "jobs", job.ID))
		seedJob(t, tx, "discarded", "active")
		return boom
	})
	assert.ErrorIs(t, err, boom)

	var jobs []testJob
	require.NoError(t, g.Filter(ctx, "jobs", Query{}, &jobs))
	require.Len(t, jobs, 1)
	assert.Equal(t, "kept", jobs[0].Title)
}

func TestMemoryInTxCommits(t *testing.T) {
	ctx := context.Background()
	g := newJobsGateway(t)

	require.NoError(t, g.InTx(ctx, func(tx Gateway) error {
		seedJob(t, tx, "one", "active")
		return tx.InTx(ctx, func(inner Gateway) error {
			seedJob(t, inner, "two", "active")
			return nil
		})
	}))

	var jobs []testJob
	require.NoError(t, g.Filter(ctx, "jobs", Query{}, &jobs))
	assert.Len(t, jobs, 2)
}
