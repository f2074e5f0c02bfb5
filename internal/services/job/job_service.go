package job

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/freshersjob/freshersjob/internal/persistence"
	"github.com/freshersjob/freshersjob/internal/services/profile"
	"github.com/freshersjob/freshersjob/internal/services/validation"
	"github.com/google/uuid"
	"github.com/lib/pq"
)

var (
	ErrJobNotFound   = errors.New("job not found")
	ErrNotEmployer   = errors.New("only employers can post jobs")
	ErrNotJobOwner   = errors.New("job belongs to another employer")
	ErrInvalidSalary = fmt.Errorf("%w: salary_min must not exceed salary_max", validation.ErrInvalid)
)

// RoleLookup resolves the onboarding role of an account.
type RoleLookup interface {
	RoleOf(ctx context.Context, email string) (profile.Role, error)
}

type JobService struct {
	repo  *JobRepo
	roles RoleLookup
}

func NewJobService(repo *JobRepo, roles RoleLookup) *JobService {
	return &JobService{repo: repo, roles: roles}
}

// List returns jobs newest first unless q names another order.
func (s *JobService) List(ctx context.Context, q ListQuery) ([]*Job, error) {
	if q.Status != "" {
		if err := validation.Var("status", string(q.Status), "oneof=active closed draft"); err != nil {
			return nil, err
		}
	}
	jobs, err := s.repo.List(ctx, q)
	if errors.Is(err, persistence.ErrInvalidIdentifier) {
		return nil, fmt.Errorf("%w: %v", validation.ErrInvalid, err)
	}
	return jobs, err
}

func (s *JobService) Get(ctx context.Context, id uuid.UUID) (*Job, error) {
	return s.repo.GetByID(ctx, id)
}

// Create posts a job on behalf of employer.
func (s *JobService) Create(ctx context.Context, employer string, req *CreateJobRequest) (*Job, error) {
	if err := s.requireEmployer(ctx, employer); err != nil {
		return nil, err
	}

	if req.CompanyName == "" {
		req.CompanyName = req.Company
	}
	if err := validation.Struct(req); err != nil {
		return nil, err
	}
	if err := checkSalary(req.SalaryMin, req.SalaryMax); err != nil {
		return nil, err
	}

	status := req.Status
	if status == "" {
		status = StatusActive
	}
	level := req.ExperienceLevel
	if level == "" {
		level = LevelFresher
	}

	return s.repo.Create(ctx, persistence.Record{
		"employer_id":        employer,
		"title":              strings.TrimSpace(req.Title),
		"company_name":       strings.TrimSpace(req.CompanyName),
		"location":           strings.TrimSpace(req.Location),
		"job_type":           string(req.JobType),
		"experience_level":   level,
		"salary_min":         req.SalaryMin,
		"salary_max":         req.SalaryMax,
		"description":        req.Description,
		"requirements":       req.Requirements,
		"skills":             cleanSkills(req.Skills),
		"status":             string(status),
		"applications_count": 0,
	})
}

// Update applies a partial update to a job owned by actor.
func (s *JobService) Update(ctx context.Context, actor string, id uuid.UUID, req *UpdateJobRequest) (*Job, error) {
	if err := validation.Struct(req); err != nil {
		return nil, err
	}

	existing, err := s.owned(ctx, actor, id)
	if err != nil {
		return nil, err
	}

	lo, hi := existing.SalaryMin, existing.SalaryMax
	if req.SalaryMin != nil {
		lo = req.SalaryMin
	}
	if req.SalaryMax != nil {
		hi = req.SalaryMax
	}
	if err := checkSalary(lo, hi); err != nil {
		return nil, err
	}

	rec := persistence.Record{}
	setString := func(col string, v *string) {
		if v != nil {
			rec[col] = strings.TrimSpace(*v)
		}
	}
	setString("title", req.Title)
	setString("company_name", req.CompanyName)
	setString("location", req.Location)
	setString("experience_level", req.ExperienceLevel)
	if req.Description != nil {
		rec["description"] = *req.Description
	}
	if req.Requirements != nil {
		rec["requirements"] = *req.Requirements
	}
	if req.JobType != nil {
		rec["job_type"] = string(*req.JobType)
	}
	if req.Status != nil {
		rec["status"] = string(*req.Status)
	}
	if req.SalaryMin != nil {
		rec["salary_min"] = *req.SalaryMin
	}
	if req.SalaryMax != nil {
		rec["salary_max"] = *req.SalaryMax
	}
	if req.Skills != nil {
		rec["skills"] = cleanSkills(*req.Skills)
	}

	if len(rec) == 0 {
		return existing, nil
	}
	return s.repo.Update(ctx, id, rec)
}

// SetStatus is the status toggle used by the manage jobs page.
func (s *JobService) SetStatus(ctx context.Context, actor string, id uuid.UUID, status Status) (*Job, error) {
	return s.Update(ctx, actor, id, &UpdateJobRequest{Status: &status})
}

// Delete removes a job owned by actor along with its applications and saved entries, atomically.
func (s *JobService) Delete(ctx context.Context, actor string, id uuid.UUID) error {
	if _, err := s.owned(ctx, actor, id); err != nil {
		return err
	}
	return s.repo.InTx(ctx, func(tx *JobRepo) error {
		return tx.Delete(ctx, id)
	})
}

// CountByStatus tallies jobs per status; every status is present in the result.
func CountByStatus(jobs []*Job) map[Status]int {
	counts := make(map[Status]int, len(Statuses))
	for _, st := range Statuses {
		counts[st] = 0
	}
	for _, j := range jobs {
		counts[j.Status]++
	}
	return counts
}

func (s *JobService) owned(ctx context.Context, actor string, id uuid.UUID) (*Job, error) {
	job, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if job.EmployerID != actor {
		return nil, ErrNotJobOwner
	}
	return job, nil
}

func (s *JobService) requireEmployer(ctx context.Context, email string) error {
	role, err := s.roles.RoleOf(ctx, email)
	if errors.Is(err, profile.ErrProfileNotFound) {
		return ErrNotEmployer
	}
	if err != nil {
		return err
	}
	if role != profile.RoleEmployer {
		return ErrNotEmployer
	}
	return nil
}

func checkSalary(lo, hi *float64) error {
	if lo != nil && hi != nil && *lo > *hi {
		return ErrInvalidSalary
	}
	return nil
}

func cleanSkills(skills []string) pq.StringArray {
	out := pq.StringArray{}
	for _, s := range skills {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}
