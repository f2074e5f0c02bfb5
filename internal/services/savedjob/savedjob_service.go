package savedjob

import (
	"context"
	"errors"

	"github.com/freshersjob/freshersjob/internal/services/job"
	"github.com/freshersjob/freshersjob/internal/services/validation"
	"github.com/google/uuid"
)

var (
	ErrAlreadySaved = errors.New("Job already saved!")
	ErrNotSaved     = errors.New("job is not saved")
)

// JobLookup resolves the jobs saved rows point at.
type JobLookup interface {
	Get(ctx context.Context, id uuid.UUID) (*job.Job, error)
}

type SavedJobService struct {
	repo *SavedJobRepo
	jobs JobLookup
}

func NewSavedJobService(repo *SavedJobRepo, jobs JobLookup) *SavedJobService {
	return &SavedJobService{repo: repo, jobs: jobs}
}

// Save bookmarks an existing job for email.
func (s *SavedJobService) Save(ctx context.Context, email string, req *SaveRequest) (*SavedJob, error) {
	if err := validation.Struct(req); err != nil {
		return nil, err
	}
	if _, err := s.jobs.Get(ctx, req.JobID); err != nil {
		return nil, err
	}
	return s.repo.Create(ctx, email, req.JobID)
}

func (s *SavedJobService) Unsave(ctx context.Context, email string, jobID uuid.UUID) error {
	n, err := s.repo.Delete(ctx, email, jobID)
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotSaved
	}
	return nil
}

// Toggle saves the job when it is not saved and unsaves it otherwise. It returns the new state.
func (s *SavedJobService) Toggle(ctx context.Context, email string, jobID uuid.UUID) (bool, error) {
	n, err := s.repo.Delete(ctx, email, jobID)
	if err != nil {
		return false, err
	}
	if n > 0 {
		return false, nil
	}

	_, err = s.Save(ctx, email, &SaveRequest{JobID: jobID})
	if errors.Is(err, ErrAlreadySaved) {
		// a concurrent toggle won the insert
		return true, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func (s *SavedJobService) ListForUser(ctx context.Context, email string) ([]*SavedJob, error) {
	return s.repo.ListForUser(ctx, email)
}

// JobIDs returns the ids of the jobs email has saved.
func (s *SavedJobService) JobIDs(ctx context.Context, email string) ([]uuid.UUID, error) {
	saved, err := s.repo.ListForUser(ctx, email)
	if err != nil {
		return nil, err
	}
	ids := make([]uuid.UUID, 0, len(saved))
	for _, sj := range saved {
		ids = append(ids, sj.JobID)
	}
	return ids, nil
}

func (s *SavedJobService) IsSaved(ctx context.Context, email string, jobID uuid.UUID) (bool, error) {
	_, err := s.repo.Find(ctx, email, jobID)
	if errors.Is(err, ErrNotSaved) {
		return false, nil
	}
	return err == nil, err
}

// SavedWithJobs joins each saved row with its job.
func (s *SavedJobService) SavedWithJobs(ctx context.Context, email string) ([]*WithJob, error) {
	saved, err := s.repo.ListForUser(ctx, email)
	if err != nil {
		return nil, err
	}

	out := make([]*WithJob, 0, len(saved))
	for _, sj := range saved {
		j, err := s.jobs.Get(ctx, sj.JobID)
		if err != nil && !errors.Is(err, job.ErrJobNotFound) {
			return nil, err
		}
		out = append(out, &WithJob{SavedJob: sj, Job: j})
	}
	return out, nil
}
