package application

import (
	"time"

	"github.com/freshersjob/freshersjob/internal/services/job"
	"github.com/freshersjob/freshersjob/internal/services/profile"
	"github.com/google/uuid"
)

type Status string

const (
	StatusPending     Status = "pending"
	StatusReviewed    Status = "reviewed"
	StatusShortlisted Status = "shortlisted"
	StatusRejected    Status = "rejected"
	StatusHired       Status = "hired"
)

// Application links a candidate to a job. Job title, company and employer are copied at apply time.
type Application struct {
	ID             uuid.UUID `db:"id" json:"id"`
	JobID          uuid.UUID `db:"job_id" json:"job_id"`
	CandidateEmail string    `db:"candidate_email" json:"candidate_email"`
	CandidateName  string    `db:"candidate_name" json:"candidate_name"`
	ResumeURL      string    `db:"resume_url" json:"resume_url"`
	CoverLetter    string    `db:"cover_letter" json:"cover_letter"`
	Status         Status    `db:"status" json:"status"`
	JobTitle       string    `db:"job_title" json:"job_title"`
	CompanyName    string    `db:"company_name" json:"company_name"`
	EmployerID     string    `db:"employer_id" json:"employer_id"`
	CreatedDate    time.Time `db:"created_date" json:"created_date"`
	UpdatedDate    time.Time `db:"updated_date" json:"updated_date"`
}

type ApplyRequest struct {
	JobID         uuid.UUID `json:"job_id" validate:"required"`
	CoverLetter   string    `json:"cover_letter" validate:"max=5000"`
	ResumeURL     string    `json:"resume_url" validate:"omitempty,url"`
	CandidateName string    `json:"candidate_name,omitempty" validate:"max=200"`
}

type UpdateStatusRequest struct {
	Status Status `json:"status" validate:"required,oneof=pending reviewed shortlisted rejected hired"`
}

// ListQuery filters applications. Zero fields do not filter.
type ListQuery struct {
	JobID          uuid.UUID
	CandidateEmail string
	EmployerID     string
	Status         Status
	Order          string
	Limit          int
}

type WithJob struct {
	*Application
	Job *job.Job `json:"job,omitempty"`
}

type WithProfile struct {
	*Application
	CandidateProfile *profile.Profile `json:"candidate_profile,omitempty"`
}
