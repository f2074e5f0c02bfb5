package savedjob

import (
	"time"

	"github.com/freshersjob/freshersjob/internal/services/job"
	"github.com/google/uuid"
)

// SavedJob is a bookmark of a job by a user, keyed by the user's email.
type SavedJob struct {
	ID          uuid.UUID `db:"id" json:"id"`
	UserEmail   string    `db:"user_email" json:"user_email"`
	JobID       uuid.UUID `db:"job_id" json:"job_id"`
	CreatedDate time.Time `db:"created_date" json:"created_date"`
	UpdatedDate time.Time `db:"updated_date" json:"updated_date"`
}

type SaveRequest struct {
	JobID uuid.UUID `json:"job_id" validate:"required"`
}

// WithJob is a saved row joined with the job it points at. Job is nil when the job is gone.
type WithJob struct {
	*SavedJob
	Job *job.Job `json:"job,omitempty"`
}
