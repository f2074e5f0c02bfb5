package job

import (
	"context"
	"errors"
	"fmt"

	"github.com/freshersjob/freshersjob/internal/persistence"
	"github.com/google/uuid"
)

type JobRepo struct {
	db persistence.Gateway
}

// NewJobRepo creates a new job repository
func NewJobRepo(db persistence.Gateway) *JobRepo {
	return &JobRepo{db: db}
}

// InTx runs fn with a repo whose writes commit together.
func (r *JobRepo) InTx(ctx context.Context, fn func(tx *JobRepo) error) error {
	return r.db.InTx(ctx, func(tx persistence.Gateway) error {
		return fn(NewJobRepo(tx))
	})
}

// List retrieves jobs matching q
func (r *JobRepo) List(ctx context.Context, q ListQuery) ([]*Job, error) {
	match := persistence.Match{}
	if q.Status != "" {
		match["status"] = string(q.Status)
	}
	if q.EmployerID != "" {
		match["employer_id"] = q.EmployerID
	}

	order := q.Order
	if order == "" {
		order = defaultOrder
	}

	jobs := []*Job{}
	if err := r.db.Filter(ctx, persistence.TableJobs, persistence.Query{Match: match, Order: order, Limit: q.Limit}, &jobs); err != nil {
		return nil, fmt.Errorf("failed to list jobs: %w", err)
	}
	return jobs, nil
}

// GetByID retrieves a job by ID
func (r *JobRepo) GetByID(ctx context.Context, id uuid.UUID) (*Job, error) {
	var jobs []*Job
	if err := r.db.Filter(ctx, persistence.TableJobs, persistence.Query{Match: persistence.Match{persistence.ColumnID: id}, Limit: 1}, &jobs); err != nil {
		return nil, fmt.Errorf("failed to get job: %w", err)
	}
	if len(jobs) == 0 {
		return nil, ErrJobNotFound
	}
	return jobs[0], nil
}

// Create inserts a new job
func (r *JobRepo) Create(ctx context.Context, rec persistence.Record) (*Job, error) {
	var job Job
	if err := r.db.Create(ctx, persistence.TableJobs, rec, &job); err != nil {
		return nil, fmt.Errorf("failed to create job: %w", err)
	}
	return &job, nil
}

// Update changes a job and returns the stored row
func (r *JobRepo) Update(ctx context.Context, id uuid.UUID, rec persistence.Record) (*Job, error) {
	var job Job
	if err := r.db.Update(ctx, persistence.TableJobs, id, rec, &job); err != nil {
		if errors.Is(err, persistence.ErrNotFound) {
			return nil, ErrJobNotFound
		}
		return nil, fmt.Errorf("failed to update job: %w", err)
	}
	return &job, nil
}

// IncrementApplications bumps applications_count in a single statement.
func (r *JobRepo) IncrementApplications(ctx context.Context, id uuid.UUID) (*Job, error) {
	var job Job
	if err := r.db.Increment(ctx, persistence.TableJobs, id, "applications_count", 1, &job); err != nil {
		if errors.Is(err, persistence.ErrNotFound) {
			return nil, ErrJobNotFound
		}
		return nil, fmt.Errorf("failed to increment applications count: %w", err)
	}
	return &job, nil
}

// Delete removes the job together with its applications and saved entries.
func (r *JobRepo) Delete(ctx context.Context, id uuid.UUID) error {
	for _, table := range []string{persistence.TableApplications, persistence.TableSavedJobs} {
		if _, err := r.db.DeleteWhere(ctx, table, persistence.Match{"job_id": id}); err != nil {
			return fmt.Errorf("failed to delete %s of job: %w", table, err)
		}
	}

	if err := r.db.Delete(ctx, persistence.TableJobs, id); err != nil {
		if errors.Is(err, persistence.ErrNotFound) {
			return ErrJobNotFound
		}
		return fmt.Errorf("failed to delete job: %w", err)
	}
	return nil
}
