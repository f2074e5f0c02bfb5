package savedjob

import (
	"context"
	"errors"
	"fmt"

	"github.com/freshersjob/freshersjob/internal/persistence"
	"github.com/google/uuid"
)

type SavedJobRepo struct {
	db persistence.Gateway
}

// NewSavedJobRepo creates a new saved job repository
func NewSavedJobRepo(db persistence.Gateway) *SavedJobRepo {
	return &SavedJobRepo{db: db}
}

// ListForUser returns the user's saved rows, most recently saved first.
func (r *SavedJobRepo) ListForUser(ctx context.Context, email string) ([]*SavedJob, error) {
	saved := []*SavedJob{}
	q := persistence.Query{Match: persistence.Match{"user_email": email}, Order: "-created_date"}
	if err := r.db.Filter(ctx, persistence.TableSavedJobs, q, &saved); err != nil {
		return nil, fmt.Errorf("failed to list saved jobs: %w", err)
	}
	return saved, nil
}

// Find retrieves the saved row for email and jobID
func (r *SavedJobRepo) Find(ctx context.Context, email string, jobID uuid.UUID) (*SavedJob, error) {
	var saved []*SavedJob
	q := persistence.Query{Match: persistence.Match{"user_email": email, "job_id": jobID}, Limit: 1}
	if err := r.db.Filter(ctx, persistence.TableSavedJobs, q, &saved); err != nil {
		return nil, fmt.Errorf("failed to get saved job: %w", err)
	}
	if len(saved) == 0 {
		return nil, ErrNotSaved
	}
	return saved[0], nil
}

// Create saves jobID for email
func (r *SavedJobRepo) Create(ctx context.Context, email string, jobID uuid.UUID) (*SavedJob, error) {
	var saved SavedJob
	rec := persistence.Record{"user_email": email, "job_id": jobID}
	if err := r.db.Create(ctx, persistence.TableSavedJobs, rec, &saved); err != nil {
		if errors.Is(err, persistence.ErrDuplicate) {
			return nil, ErrAlreadySaved
		}
		return nil, fmt.Errorf("failed to save job: %w", err)
	}
	return &saved, nil
}

// Delete removes the (email, jobID) row and reports how many rows went.
func (r *SavedJobRepo) Delete(ctx context.Context, email string, jobID uuid.UUID) (int64, error) {
	n, err := r.db.DeleteWhere(ctx, persistence.TableSavedJobs, persistence.Match{"user_email": email, "job_id": jobID})
	if err != nil {
		return 0, fmt.Errorf("failed to unsave job: %w", err)
	}
	return n, nil
}

// DeleteForUser removes every saved row of email
func (r *SavedJobRepo) DeleteForUser(ctx context.Context, email string) (int64, error) {
	n, err := r.db.DeleteWhere(ctx, persistence.TableSavedJobs, persistence.Match{"user_email": email})
	if err != nil {
		return 0, fmt.Errorf("failed to delete saved jobs: %w", err)
	}
	return n, nil
}
