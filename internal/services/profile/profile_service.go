package profile

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/freshersjob/freshersjob/internal/persistence"
	"github.com/freshersjob/freshersjob/internal/services/validation"
	"github.com/google/uuid"
	"github.com/lib/pq"
)

var (
	ErrProfileNotFound         = errors.New("profile not found")
	ErrProfileExists           = errors.New("profile already exists")
	ErrAlreadyOnboarded        = errors.New("profile is already complete")
	ErrRoleLocked              = errors.New("account type is locked")
	ErrEmployerDetailsRequired = errors.New("Please fill company name, role/designation, and phone number.")
)

const (
	RedirectPostJob = "PostJob"
	RedirectFeed    = "Feed"
)

type ProfileService struct {
	repo *ProfileRepo
}

func NewProfileService(repo *ProfileRepo) *ProfileService {
	return &ProfileService{repo: repo}
}

// WithGateway returns a service bound to db, typically a transaction.
func (s *ProfileService) WithGateway(db persistence.Gateway) *ProfileService {
	return NewProfileService(NewProfileRepo(db))
}

func (s *ProfileService) Get(ctx context.Context, id uuid.UUID) (*Profile, error) {
	return s.repo.GetByID(ctx, id)
}

// HasProfile reports whether email has onboarded.
func (s *ProfileService) HasProfile(ctx context.Context, email string) (bool, error) {
	_, err := s.repo.GetByEmail(ctx, email)
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, ErrProfileNotFound):
		return false, nil
	default:
		return false, err
	}
}

func (s *ProfileService) GetByEmail(ctx context.Context, email string) (*Profile, error) {
	return s.repo.GetByEmail(ctx, email)
}

// RoleOf returns the role chosen by email during onboarding.
func (s *ProfileService) RoleOf(ctx context.Context, email string) (Role, error) {
	p, err := s.repo.GetByEmail(ctx, email)
	if err != nil {
		return "", err
	}
	return p.Role, nil
}

// ByEmails resolves profiles one lookup per distinct email. Emails without a profile are absent from the map.
func (s *ProfileService) ByEmails(ctx context.Context, emails []string) (map[string]*Profile, error) {
	out := make(map[string]*Profile, len(emails))
	seen := make(map[string]struct{}, len(emails))
	for _, email := range emails {
		if _, ok := seen[email]; ok {
			continue
		}
		seen[email] = struct{}{}

		p, err := s.repo.GetByEmail(ctx, email)
		if errors.Is(err, ErrProfileNotFound) {
			continue
		}
		if err != nil {
			return nil, err
		}
		out[email] = p
	}
	return out, nil
}

func (s *ProfileService) Create(ctx context.Context, email string, req *CreateProfileRequest) (*Profile, error) {
	if err := validation.Struct(req); err != nil {
		return nil, err
	}
	return s.repo.Create(ctx, createRecord(email, req))
}

func (s *ProfileService) Update(ctx context.Context, email string, req *UpdateProfileRequest) (*Profile, error) {
	if err := validation.Struct(req); err != nil {
		return nil, err
	}

	existing, err := s.repo.GetByEmail(ctx, email)
	if err != nil {
		return nil, err
	}

	rec := updateRecord(req)
	if len(rec) == 0 {
		return existing, nil
	}
	return s.repo.Update(ctx, existing.ID, rec)
}

func (s *ProfileService) Delete(ctx context.Context, email string) error {
	n, err := s.repo.DeleteByEmail(ctx, email)
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrProfileNotFound
	}
	return nil
}

// State describes where email stands in onboarding, given the role picked on the signup screen.
func (s *ProfileService) State(ctx context.Context, email string, pendingRole Role) (*OnboardingState, error) {
	state := &OnboardingState{Role: RoleCandidate, Step: 1, NeedsOnboarding: true}
	if pendingRole.Valid() {
		state.Role = pendingRole
		state.RoleLocked = true
	}

	existing, err := s.repo.GetByEmail(ctx, email)
	if errors.Is(err, ErrProfileNotFound) {
		return state, nil
	}
	if err != nil {
		return nil, err
	}

	if existing.EmployerIncomplete() {
		state.Role = RoleEmployer
		state.RoleLocked = true
		state.Step = 2
		state.Profile = existing
		return state, nil
	}

	return &OnboardingState{
		Role:       existing.Role,
		RoleLocked: true,
		Profile:    existing,
		Redirect:   redirectFor(existing.Role),
	}, nil
}

// Onboard creates the caller's profile, or completes an employer profile that is missing details.
func (s *ProfileService) Onboard(ctx context.Context, email string, req *OnboardRequest) (*Profile, error) {
	if err := validation.Struct(req); err != nil {
		return nil, err
	}

	if req.Role == RoleEmployer {
		if strings.TrimSpace(req.CompanyName) == "" || strings.TrimSpace(req.Headline) == "" || strings.TrimSpace(req.Phone) == "" {
			return nil, ErrEmployerDetailsRequired
		}
	} else {
		req.CompanyName, req.CompanyWebsite, req.CompanySize = "", "", ""
	}

	existing, err := s.repo.GetByEmail(ctx, email)
	switch {
	case err == nil:
		if !existing.EmployerIncomplete() {
			return nil, ErrAlreadyOnboarded
		}
		if req.Role != RoleEmployer {
			return nil, fmt.Errorf("%w: profile is registered as %s", ErrRoleLocked, existing.Role)
		}
		rec := createRecord(email, &req.CreateProfileRequest)
		delete(rec, "created_by")
		return s.repo.Update(ctx, existing.ID, rec)

	case errors.Is(err, ErrProfileNotFound):
		if req.PendingRole != "" && req.PendingRole != req.Role {
			return nil, fmt.Errorf("%w: account was created as %s", ErrRoleLocked, req.PendingRole)
		}
		p, err := s.repo.Create(ctx, createRecord(email, &req.CreateProfileRequest))
		if errors.Is(err, ErrProfileExists) {
			return nil, ErrAlreadyOnboarded
		}
		return p, err

	default:
		return nil, err
	}
}

func redirectFor(role Role) string {
	if role == RoleEmployer {
		return RedirectPostJob
	}
	return RedirectFeed
}

func createRecord(email string, req *CreateProfileRequest) persistence.Record {
	return persistence.Record{
		"created_by":       email,
		"role":             string(req.Role),
		"headline":         strings.TrimSpace(req.Headline),
		"bio":              req.Bio,
		"location":         strings.TrimSpace(req.Location),
		"phone":            strings.TrimSpace(req.Phone),
		"skills":           cleanSkills(req.Skills),
		"education":        req.Education,
		"experience_years": req.ExperienceYears,
		"profile_photo":    req.ProfilePhoto,
		"resume_url":       req.ResumeURL,
		"company_name":     strings.TrimSpace(req.CompanyName),
		"company_website":  req.CompanyWebsite,
		"company_size":     req.CompanySize,
	}
}

func updateRecord(req *UpdateProfileRequest) persistence.Record {
	rec := persistence.Record{}
	set := func(col string, v *string) {
		if v != nil {
			rec[col] = strings.TrimSpace(*v)
		}
	}
	set("headline", req.Headline)
	set("bio", req.Bio)
	set("location", req.Location)
	set("phone", req.Phone)
	set("education", req.Education)
	set("profile_photo", req.ProfilePhoto)
	set("resume_url", req.ResumeURL)
	set("company_name", req.CompanyName)
	set("company_website", req.CompanyWebsite)
	set("company_size", req.CompanySize)
	if req.Skills != nil {
		rec["skills"] = cleanSkills(*req.Skills)
	}
	if req.ExperienceYears != nil {
		rec["experience_years"] = *req.ExperienceYears
	}
	return rec
}

// cleanSkills trims entries and drops blanks, keeping order.
func cleanSkills(skills []string) pq.StringArray {
	out := pq.StringArray{}
	for _, s := range skills {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}
