package application

import (
	"context"
	"errors"
	"fmt"

	"github.com/freshersjob/freshersjob/internal/persistence"
	"github.com/freshersjob/freshersjob/internal/services/job"
	"github.com/google/uuid"
)

const defaultOrder = "-created_date"

type ApplicationRepo struct {
	db persistence.Gateway
}

// NewApplicationRepo creates a new application repository
func NewApplicationRepo(db persistence.Gateway) *ApplicationRepo {
	return &ApplicationRepo{db: db}
}

// InTx runs fn with application and job repos sharing one transaction.
func (r *ApplicationRepo) InTx(ctx context.Context, fn func(apps *ApplicationRepo, jobs *job.JobRepo) error) error {
	return r.db.InTx(ctx, func(tx persistence.Gateway) error {
		return fn(NewApplicationRepo(tx), job.NewJobRepo(tx))
	})
}

// List retrieves applications matching q
func (r *ApplicationRepo) List(ctx context.Context, q ListQuery) ([]*Application, error) {
	match := persistence.Match{}
	if q.JobID != uuid.Nil {
		match["job_id"] = q.JobID
	}
	if q.CandidateEmail != "" {
		match["candidate_email"] = q.CandidateEmail
	}
	if q.EmployerID != "" {
		match["employer_id"] = q.EmployerID
	}
	if q.Status != "" {
		match["status"] = string(q.Status)
	}

	order := q.Order
	if order == "" {
		order = defaultOrder
	}

	apps := []*Application{}
	if err := r.db.Filter(ctx, persistence.TableApplications, persistence.Query{Match: match, Order: order, Limit: q.Limit}, &apps); err != nil {
		return nil, fmt.Errorf("failed to list applications: %w", err)
	}
	return apps, nil
}

// GetByID retrieves an application by ID
func (r *ApplicationRepo) GetByID(ctx context.Context, id uuid.UUID) (*Application, error) {
	var apps []*Application
	if err := r.db.Filter(ctx, persistence.TableApplications, persistence.Query{Match: persistence.Match{persistence.ColumnID: id}, Limit: 1}, &apps); err != nil {
		return nil, fmt.Errorf("failed to get application: %w", err)
	}
	if len(apps) == 0 {
		return nil, ErrApplicationNotFound
	}
	return apps[0], nil
}

// Exists reports whether candidate already applied to jobID.
func (r *ApplicationRepo) Exists(ctx context.Context, jobID uuid.UUID, candidate string) (bool, error) {
	apps, err := r.List(ctx, ListQuery{JobID: jobID, CandidateEmail: candidate, Limit: 1})
	if err != nil {
		return false, err
	}
	return len(apps) > 0, nil
}

// Create inserts a new application
func (r *ApplicationRepo) Create(ctx context.Context, rec persistence.Record) (*Application, error) {
	var app Application
	if err := r.db.Create(ctx, persistence.TableApplications, rec, &app); err != nil {
		if errors.Is(err, persistence.ErrDuplicate) {
			return nil, ErrAlreadyApplied
		}
		return nil, fmt.Errorf("failed to create application: %w", err)
	}
	return &app, nil
}

// Update changes an application and returns the stored row
func (r *ApplicationRepo) Update(ctx context.Context, id uuid.UUID, rec persistence.Record) (*Application, error) {
	var app Application
	if err := r.db.Update(ctx, persistence.TableApplications, id, rec, &app); err != nil {
		if errors.Is(err, persistence.ErrNotFound) {
			return nil, ErrApplicationNotFound
		}
		return nil, fmt.Errorf("failed to update application: %w", err)
	}
	return &app, nil
}

// Delete removes an application by ID
func (r *ApplicationRepo) Delete(ctx context.Context, id uuid.UUID) error {
	if err := r.db.Delete(ctx, persistence.TableApplications, id); err != nil {
		if errors.Is(err, persistence.ErrNotFound) {
			return ErrApplicationNotFound
		}
		return fmt.Errorf("failed to delete application: %w", err)
	}
	return nil
}

// DeleteWhere removes every application matching match
func (r *ApplicationRepo) DeleteWhere(ctx context.Context, match persistence.Match) (int64, error) {
	n, err := r.db.DeleteWhere(ctx, persistence.TableApplications, match)
	if err != nil {
		return 0, fmt.Errorf("failed to delete applications: %w", err)
	}
	return n, nil
}

func (r *ApplicationRepo) decrementJob(ctx context.Context, jobID uuid.UUID) error {
	err := r.db.Increment(ctx, persistence.TableJobs, jobID, "applications_count", -1, nil)
	if err != nil && !errors.Is(err, persistence.ErrNotFound) {
		return fmt.Errorf("failed to decrement applications count: %w", err)
	}
	return nil
}

// DeleteForCandidate removes every application of email and decrements the affected job counters.
func (r *ApplicationRepo) DeleteForCandidate(ctx context.Context, email string) (int64, error) {
	apps, err := r.List(ctx, ListQuery{CandidateEmail: email})
	if err != nil {
		return 0, err
	}
	for _, app := range apps {
		if err := r.Delete(ctx, app.ID); err != nil {
			return 0, err
		}
		if err := r.decrementJob(ctx, app.JobID); err != nil {
			return 0, err
		}
	}
	return int64(len(apps)), nil
}
