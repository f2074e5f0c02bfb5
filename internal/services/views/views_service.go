// Package views assembles the data each page of the site needs in one call.
package views

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"

	"github.com/freshersjob/freshersjob/internal/api/authenticator"
	"github.com/freshersjob/freshersjob/internal/persistence"
	"github.com/freshersjob/freshersjob/internal/services/application"
	"github.com/freshersjob/freshersjob/internal/services/job"
	"github.com/freshersjob/freshersjob/internal/services/profile"
	"github.com/freshersjob/freshersjob/internal/services/savedjob"
	"github.com/freshersjob/freshersjob/internal/services/user"
	"github.com/google/uuid"
)

type ViewService struct {
	db           persistence.Gateway
	profiles     *profile.ProfileService
	jobs         *job.JobService
	applications *application.ApplicationService
	saved        *savedjob.SavedJobService
}

func NewViewService(
	db persistence.Gateway,
	profiles *profile.ProfileService,
	jobs *job.JobService,
	applications *application.ApplicationService,
	saved *savedjob.SavedJobService,
) *ViewService {
	return &ViewService{db: db, profiles: profiles, jobs: jobs, applications: applications, saved: saved}
}

func (s *ViewService) Feed(ctx context.Context, session *authenticator.Session) (*FeedView, error) {
	me, err := authenticator.CurrentUser(session)
	if err != nil {
		return nil, err
	}

	p, err := s.profileOf(ctx, me.Email)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return &FeedView{NeedsOnboarding: true, Jobs: []*job.Job{}}, nil
	}

	jobs, err := s.jobs.List(ctx, job.ListQuery{Status: job.StatusActive, Limit: feedJobsLimit})
	if err != nil {
		return nil, err
	}
	saved, applied, err := s.activity(ctx, me.Email)
	if err != nil {
		return nil, err
	}

	return &FeedView{Profile: p, Jobs: jobs, SavedJobIDs: saved, AppliedJobIDs: applied}, nil
}

// Jobs lists active jobs filtered by search. A nil session gets the listing without saved or applied ids.
func (s *ViewService) Jobs(ctx context.Context, session *authenticator.Session, search job.JobSearch) (*JobsView, error) {
	all, err := s.jobs.List(ctx, job.ListQuery{Status: job.StatusActive, Limit: listingJobsLimit})
	if err != nil {
		return nil, err
	}

	matched := job.Search(all, search)
	view := &JobsView{Jobs: matched, Total: len(matched), SavedJobIDs: []uuid.UUID{}, AppliedJobIDs: []uuid.UUID{}}
	if !authenticator.IsAuthenticated(session) {
		return view, nil
	}

	view.SavedJobIDs, view.AppliedJobIDs, err = s.activity(ctx, session.Email)
	if err != nil {
		return nil, err
	}
	return view, nil
}

func (s *ViewService) JobDetail(ctx context.Context, session *authenticator.Session, id uuid.UUID) (*JobDetailView, error) {
	j, err := s.jobs.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	view := &JobDetailView{Job: j}
	if !authenticator.IsAuthenticated(session) {
		return view, nil
	}

	if view.Profile, err = s.profileOf(ctx, session.Email); err != nil {
		return nil, err
	}
	saved, applied, err := s.activity(ctx, session.Email)
	if err != nil {
		return nil, err
	}
	view.IsSaved = slices.Contains(saved, id)
	view.HasApplied = slices.Contains(applied, id)
	return view, nil
}

func (s *ViewService) Apply(ctx context.Context, session *authenticator.Session, req *application.ApplyRequest) (*application.Application, error) {
	me, err := authenticator.CurrentUser(session)
	if err != nil {
		return nil, err
	}
	return s.applications.Apply(ctx, application.Candidate{Email: me.Email, Name: me.Name}, req)
}

func (s *ViewService) ToggleSave(ctx context.Context, session *authenticator.Session, jobID uuid.UUID) (*ToggleSaveResult, error) {
	me, err := authenticator.CurrentUser(session)
	if err != nil {
		return nil, err
	}
	saved, err := s.saved.Toggle(ctx, me.Email, jobID)
	if err != nil {
		return nil, err
	}
	return &ToggleSaveResult{Saved: saved}, nil
}

// ManageJobs lists the employer's own jobs with a count per status.
func (s *ViewService) ManageJobs(ctx context.Context, session *authenticator.Session) (*ManageJobsView, error) {
	me, err := authenticator.CurrentUser(session)
	if err != nil {
		return nil, err
	}

	p, err := s.profileOf(ctx, me.Email)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return &ManageJobsView{NeedsOnboarding: true, Jobs: []*job.Job{}, Counts: job.CountByStatus(nil)}, nil
	}
	if p.Role != profile.RoleEmployer {
		return nil, job.ErrNotEmployer
	}

	jobs, err := s.jobs.List(ctx, job.ListQuery{EmployerID: me.Email})
	if err != nil {
		return nil, err
	}
	return &ManageJobsView{Jobs: jobs, Counts: job.CountByStatus(jobs), Total: len(jobs)}, nil
}

// Applications lists applications the employer received, for one job when jobID is set.
func (s *ViewService) Applications(ctx context.Context, session *authenticator.Session, jobID uuid.UUID, status application.Status) (*ApplicationsView, error) {
	me, err := authenticator.CurrentUser(session)
	if err != nil {
		return nil, err
	}

	if jobID == uuid.Nil {
		rows, err := s.applications.ForEmployer(ctx, me.Email, status)
		if err != nil {
			return nil, err
		}
		return &ApplicationsView{Applications: rows, Total: len(rows)}, nil
	}

	j, err := s.jobs.Get(ctx, jobID)
	if err != nil {
		return nil, err
	}
	rows, err := s.applications.ForJob(ctx, me.Email, jobID, status)
	if err != nil {
		return nil, err
	}
	return &ApplicationsView{Job: j, Applications: rows, Total: len(rows)}, nil
}

func (s *ViewService) MyApplications(ctx context.Context, session *authenticator.Session) (*MyApplicationsView, error) {
	me, err := authenticator.CurrentUser(session)
	if err != nil {
		return nil, err
	}
	rows, err := s.applications.ForCandidate(ctx, me.Email)
	if err != nil {
		return nil, err
	}
	return &MyApplicationsView{Applications: rows, Total: len(rows)}, nil
}

func (s *ViewService) SavedJobs(ctx context.Context, session *authenticator.Session) (*SavedJobsView, error) {
	me, err := authenticator.CurrentUser(session)
	if err != nil {
		return nil, err
	}

	rows, err := s.saved.SavedWithJobs(ctx, me.Email)
	if err != nil {
		return nil, err
	}
	applied, err := s.applications.AppliedJobIDs(ctx, me.Email)
	if err != nil {
		return nil, err
	}
	return &SavedJobsView{Saved: rows, AppliedJobIDs: applied}, nil
}

func (s *ViewService) Profile(ctx context.Context, session *authenticator.Session) (*ProfileView, error) {
	me, err := authenticator.CurrentUser(session)
	if err != nil {
		return nil, err
	}

	p, err := s.profileOf(ctx, me.Email)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return &ProfileView{NeedsOnboarding: true}, nil
	}

	view := &ProfileView{Profile: p}
	if p.Role == profile.RoleEmployer {
		posted, err := s.jobs.List(ctx, job.ListQuery{EmployerID: me.Email})
		if err != nil {
			return nil, err
		}
		received, err := s.applications.List(ctx, application.ListQuery{EmployerID: me.Email})
		if err != nil {
			return nil, err
		}
		view.Stats.JobsPosted = len(posted)
		view.Stats.ApplicationsReceived = len(received)
		return view, nil
	}

	saved, applied, err := s.activity(ctx, me.Email)
	if err != nil {
		return nil, err
	}
	view.Stats.SavedJobs = len(saved)
	view.Stats.Applications = len(applied)
	return view, nil
}

func (s *ViewService) OnboardingState(ctx context.Context, session *authenticator.Session, pendingRole profile.Role) (*profile.OnboardingState, error) {
	me, err := authenticator.CurrentUser(session)
	if err != nil {
		return nil, err
	}
	return s.profiles.State(ctx, me.Email, pendingRole)
}

// Onboard stores the onboarding form and returns the state the client should move to.
func (s *ViewService) Onboard(ctx context.Context, session *authenticator.Session, req *profile.OnboardRequest) (*profile.OnboardingState, error) {
	me, err := authenticator.CurrentUser(session)
	if err != nil {
		return nil, err
	}
	if _, err := s.profiles.Onboard(ctx, me.Email, req); err != nil {
		return nil, err
	}
	return s.profiles.State(ctx, me.Email, "")
}

// DeleteAccount removes everything the caller owns in one transaction: saved jobs, applications
// made and received, posted jobs, the profile and any local account.
func (s *ViewService) DeleteAccount(ctx context.Context, session *authenticator.Session) (*DeleteAccountResult, error) {
	me, err := authenticator.CurrentUser(session)
	if err != nil {
		return nil, err
	}

	res := &DeleteAccountResult{}
	err = s.db.InTx(ctx, func(tx persistence.Gateway) error {
		var err error
		if res.SavedJobs, err = savedjob.NewSavedJobRepo(tx).DeleteForUser(ctx, me.Email); err != nil {
			return err
		}

		apps := application.NewApplicationRepo(tx)
		if res.Applications, err = apps.DeleteForCandidate(ctx, me.Email); err != nil {
			return err
		}

		jobs := job.NewJobRepo(tx)
		owned, err := jobs.List(ctx, job.ListQuery{EmployerID: me.Email})
		if err != nil {
			return err
		}
		for _, j := range owned {
			if err := jobs.Delete(ctx, j.ID); err != nil {
				return err
			}
		}
		res.Jobs = int64(len(owned))

		received, err := apps.DeleteWhere(ctx, persistence.Match{"employer_id": me.Email})
		if err != nil {
			return err
		}
		res.Applications += received

		n, err := profile.NewProfileRepo(tx).DeleteByEmail(ctx, me.Email)
		if err != nil {
			return err
		}
		res.Profile = n > 0

		return user.DeleteByEmail(ctx, tx, me.Email)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to delete account: %w", err)
	}

	slog.InfoContext(ctx, "account deleted", slog.String("email", me.Email), slog.Int64("jobs", res.Jobs), slog.Int64("applications", res.Applications))
	return res, nil
}

// profileOf returns the caller's profile, or nil when onboarding has not happened yet.
func (s *ViewService) profileOf(ctx context.Context, email string) (*profile.Profile, error) {
	p, err := s.profiles.GetByEmail(ctx, email)
	if errors.Is(err, profile.ErrProfileNotFound) {
		return nil, nil
	}
	return p, err
}

func (s *ViewService) activity(ctx context.Context, email string) (saved, applied []uuid.UUID, err error) {
	if saved, err = s.saved.JobIDs(ctx, email); err != nil {
		return nil, nil, err
	}
	if applied, err = s.applications.AppliedJobIDs(ctx, email); err != nil {
		return nil, nil, err
	}
	return saved, applied, nil
}
