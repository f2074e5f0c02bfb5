package views

import (
	"github.com/freshersjob/freshersjob/internal/services/application"
	"github.com/freshersjob/freshersjob/internal/services/job"
	"github.com/freshersjob/freshersjob/internal/services/profile"
	"github.com/freshersjob/freshersjob/internal/services/savedjob"
	"github.com/google/uuid"
)

const (
	feedJobsLimit    = 10
	listingJobsLimit = 100
)

type FeedView struct {
	NeedsOnboarding bool             `json:"needs_onboarding"`
	Profile         *profile.Profile `json:"profile,omitempty"`
	Jobs            []*job.Job       `json:"jobs"`
	SavedJobIDs     []uuid.UUID      `json:"saved_job_ids"`
	AppliedJobIDs   []uuid.UUID      `json:"applied_job_ids"`
}

type JobsView struct {
	Jobs          []*job.Job  `json:"jobs"`
	Total         int         `json:"total"`
	SavedJobIDs   []uuid.UUID `json:"saved_job_ids"`
	AppliedJobIDs []uuid.UUID `json:"applied_job_ids"`
}

type JobDetailView struct {
	Job        *job.Job         `json:"job"`
	Profile    *profile.Profile `json:"profile,omitempty"`
	IsSaved    bool             `json:"is_saved"`
	HasApplied bool             `json:"has_applied"`
}

type ManageJobsView struct {
	NeedsOnboarding bool               `json:"needs_onboarding"`
	Jobs            []*job.Job         `json:"jobs"`
	Counts          map[job.Status]int `json:"counts"`
	Total           int                `json:"total"`
}

type ApplicationsView struct {
	Job          *job.Job                   `json:"job,omitempty"`
	Applications []*application.WithProfile `json:"applications"`
	Total        int                        `json:"total"`
}

type MyApplicationsView struct {
	Applications []*application.WithJob `json:"applications"`
	Total        int                    `json:"total"`
}

type SavedJobsView struct {
	Saved         []*savedjob.WithJob `json:"saved"`
	AppliedJobIDs []uuid.UUID         `json:"applied_job_ids"`
}

type ProfileStats struct {
	SavedJobs            int `json:"saved_jobs"`
	Applications         int `json:"applications"`
	JobsPosted           int `json:"jobs_posted"`
	ApplicationsReceived int `json:"applications_received"`
}

type ProfileView struct {
	NeedsOnboarding bool             `json:"needs_onboarding"`
	Profile         *profile.Profile `json:"profile,omitempty"`
	Stats           ProfileStats     `json:"stats"`
}

type ToggleSaveResult struct {
	Saved bool `json:"saved"`
}

// DeleteAccountResult counts what an account deletion removed.
type DeleteAccountResult struct {
	SavedJobs    int64 `json:"saved_jobs"`
	Applications int64 `json:"applications"`
	Jobs         int64 `json:"jobs"`
	Profile      bool  `json:"profile"`
}
