package application

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/freshersjob/freshersjob/internal/persistence"
	"github.com/freshersjob/freshersjob/internal/services/job"
	"github.com/freshersjob/freshersjob/internal/services/profile"
	"github.com/freshersjob/freshersjob/internal/services/validation"
	"github.com/google/uuid"
)

var (
	ErrApplicationNotFound = errors.New("application not found")
	ErrAlreadyApplied      = errors.New("Already applied for this job!")
	ErrJobNotActive        = errors.New("job is not accepting applications")
	ErrNotCandidate        = errors.New("only candidates can apply to jobs")
	ErrNotParticipant      = errors.New("application belongs to another account")
)

// Profiles is the subset of the profile service applications depend on.
type Profiles interface {
	GetByEmail(ctx context.Context, email string) (*profile.Profile, error)
	ByEmails(ctx context.Context, emails []string) (map[string]*profile.Profile, error)
}

// Candidate identifies the applicant.
type Candidate struct {
	Email string
	Name  string
}

type ApplicationService struct {
	repo     *ApplicationRepo
	jobs     *job.JobRepo
	profiles Profiles
}

func NewApplicationService(repo *ApplicationRepo, jobs *job.JobRepo, profiles Profiles) *ApplicationService {
	return &ApplicationService{repo: repo, jobs: jobs, profiles: profiles}
}

// List returns applications newest first unless q names another order.
func (s *ApplicationService) List(ctx context.Context, q ListQuery) ([]*Application, error) {
	if q.Status != "" {
		if err := validation.Var("status", string(q.Status), "oneof=pending reviewed shortlisted rejected hired"); err != nil {
			return nil, err
		}
	}
	return s.repo.List(ctx, q)
}

// Apply records an application and bumps the job's applications_count in one transaction.
func (s *ApplicationService) Apply(ctx context.Context, c Candidate, req *ApplyRequest) (*Application, error) {
	if err := validation.Struct(req); err != nil {
		return nil, err
	}

	p, err := s.profiles.GetByEmail(ctx, c.Email)
	if err != nil {
		if errors.Is(err, profile.ErrProfileNotFound) {
			return nil, ErrNotCandidate
		}
		return nil, err
	}
	if p.Role != profile.RoleCandidate {
		return nil, ErrNotCandidate
	}

	resume := req.ResumeURL
	if resume == "" {
		resume = p.ResumeURL
	}
	name := strings.TrimSpace(req.CandidateName)
	if name == "" {
		name = c.Name
	}
	if name == "" {
		name = c.Email
	}

	var created *Application
	err = s.repo.InTx(ctx, func(apps *ApplicationRepo, jobs *job.JobRepo) error {
		j, err := jobs.GetByID(ctx, req.JobID)
		if err != nil {
			return err
		}
		if j.Status != job.StatusActive {
			return ErrJobNotActive
		}

		exists, err := apps.Exists(ctx, j.ID, c.Email)
		if err != nil {
			return err
		}
		if exists {
			return ErrAlreadyApplied
		}

		created, err = apps.Create(ctx, persistence.Record{
			"job_id":          j.ID,
			"candidate_email": c.Email,
			"candidate_name":  name,
			"resume_url":      resume,
			"cover_letter":    req.CoverLetter,
			"status":          string(StatusPending),
			"job_title":       j.Title,
			"company_name":    j.CompanyName,
			"employer_id":     j.EmployerID,
		})
		if err != nil {
			return err
		}

		_, err = jobs.IncrementApplications(ctx, j.ID)
		return err
	})
	if err != nil {
		return nil, err
	}

	return created, nil
}

// Get returns an application visible to actor as its candidate or as the job's employer.
func (s *ApplicationService) Get(ctx context.Context, actor string, id uuid.UUID) (*Application, error) {
	app, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if app.CandidateEmail != actor && app.EmployerID != actor {
		return nil, ErrNotParticipant
	}
	return app, nil
}

// UpdateStatus sets any status; only the job's employer may do so.
func (s *ApplicationService) UpdateStatus(ctx context.Context, actor string, id uuid.UUID, req *UpdateStatusRequest) (*Application, error) {
	if err := validation.Struct(req); err != nil {
		return nil, err
	}

	app, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.requireEmployerOf(ctx, actor, app); err != nil {
		return nil, err
	}

	return s.repo.Update(ctx, id, persistence.Record{"status": string(req.Status)})
}

// Delete withdraws the caller's own application and decrements the job counter.
func (s *ApplicationService) Delete(ctx context.Context, actor string, id uuid.UUID) error {
	app, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if app.CandidateEmail != actor {
		return ErrNotParticipant
	}

	return s.repo.InTx(ctx, func(apps *ApplicationRepo, _ *job.JobRepo) error {
		if err := apps.Delete(ctx, id); err != nil {
			return err
		}
		return apps.decrementJob(ctx, app.JobID)
	})
}

// ForCandidate lists the candidate's applications joined with their jobs, newest first.
func (s *ApplicationService) ForCandidate(ctx context.Context, email string) ([]*WithJob, error) {
	apps, err := s.repo.List(ctx, ListQuery{CandidateEmail: email})
	if err != nil {
		return nil, err
	}
	return s.WithJobs(ctx, apps)
}

// ForJob lists a job's applications with candidate profiles. Only the job's employer may see them.
func (s *ApplicationService) ForJob(ctx context.Context, actor string, jobID uuid.UUID, status Status) ([]*WithProfile, error) {
	j, err := s.jobs.GetByID(ctx, jobID)
	if err != nil {
		return nil, err
	}
	if j.EmployerID != actor {
		return nil, job.ErrNotJobOwner
	}

	apps, err := s.List(ctx, ListQuery{JobID: jobID, Status: status})
	if err != nil {
		return nil, err
	}
	return s.WithCandidateProfiles(ctx, apps)
}

// ForEmployer lists every application to the employer's jobs.
func (s *ApplicationService) ForEmployer(ctx context.Context, employer string, status Status) ([]*WithProfile, error) {
	apps, err := s.List(ctx, ListQuery{EmployerID: employer, Status: status})
	if err != nil {
		return nil, err
	}
	return s.WithCandidateProfiles(ctx, apps)
}

// WithCandidateProfiles attaches candidate profiles with one lookup per distinct email.
func (s *ApplicationService) WithCandidateProfiles(ctx context.Context, apps []*Application) ([]*WithProfile, error) {
	emails := make([]string, 0, len(apps))
	for _, a := range apps {
		emails = append(emails, a.CandidateEmail)
	}

	profiles, err := s.profiles.ByEmails(ctx, emails)
	if err != nil {
		return nil, fmt.Errorf("failed to load candidate profiles: %w", err)
	}

	out := make([]*WithProfile, 0, len(apps))
	for _, a := range apps {
		out = append(out, &WithProfile{Application: a, CandidateProfile: profiles[a.CandidateEmail]})
	}
	return out, nil
}

// WithJobs attaches each application's job with one lookup per distinct job. Deleted jobs are left nil.
func (s *ApplicationService) WithJobs(ctx context.Context, apps []*Application) ([]*WithJob, error) {
	jobs := map[uuid.UUID]*job.Job{}
	out := make([]*WithJob, 0, len(apps))
	for _, a := range apps {
		j, ok := jobs[a.JobID]
		if !ok {
			var err error
			j, err = s.jobs.GetByID(ctx, a.JobID)
			if err != nil && !errors.Is(err, job.ErrJobNotFound) {
				return nil, err
			}
			jobs[a.JobID] = j
		}
		out = append(out, &WithJob{Application: a, Job: j})
	}
	return out, nil
}

// AppliedJobIDs returns the ids of every job email has applied to.
func (s *ApplicationService) AppliedJobIDs(ctx context.Context, email string) ([]uuid.UUID, error) {
	apps, err := s.repo.List(ctx, ListQuery{CandidateEmail: email})
	if err != nil {
		return nil, err
	}
	ids := make([]uuid.UUID, 0, len(apps))
	for _, a := range apps {
		ids = append(ids, a.JobID)
	}
	return ids, nil
}

func (s *ApplicationService) requireEmployerOf(ctx context.Context, actor string, app *Application) error {
	owner := app.EmployerID
	if owner == "" {
		j, err := s.jobs.GetByID(ctx, app.JobID)
		if err != nil {
			return err
		}
		owner = j.EmployerID
	}
	if owner != actor {
		return job.ErrNotJobOwner
	}
	return nil
}
