package profile

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

type Role string

const (
	RoleCandidate Role = "candidate"
	RoleEmployer  Role = "employer"
)

func (r Role) Valid() bool {
	return r == RoleCandidate || r == RoleEmployer
}

// Profile is the onboarding record of a user, keyed by the owner's email in created_by.
type Profile struct {
	ID              uuid.UUID      `db:"id" json:"id"`
	CreatedBy       string         `db:"created_by" json:"created_by"`
	Role            Role           `db:"role" json:"role"`
	Headline        string         `db:"headline" json:"headline"`
	Bio             string         `db:"bio" json:"bio"`
	Location        string         `db:"location" json:"location"`
	Phone           string         `db:"phone" json:"phone"`
	Skills          pq.StringArray `db:"skills" json:"skills"`
	Education       string         `db:"education" json:"education"`
	ExperienceYears int            `db:"experience_years" json:"experience_years"`
	ProfilePhoto    string         `db:"profile_photo" json:"profile_photo"`
	ResumeURL       string         `db:"resume_url" json:"resume_url"`
	CompanyName     string         `db:"company_name" json:"company_name"`
	CompanyWebsite  string         `db:"company_website" json:"company_website"`
	CompanySize     string         `db:"company_size" json:"company_size"`
	CreatedDate     time.Time      `db:"created_date" json:"created_date"`
	UpdatedDate     time.Time      `db:"updated_date" json:"updated_date"`
}

// PublicProfile is what other signed-in users see of a profile. Contact details and the resume stay private.
type PublicProfile struct {
	CreatedBy      string   `json:"created_by"`
	Role           Role     `json:"role"`
	Headline       string   `json:"headline"`
	Bio            string   `json:"bio"`
	Location       string   `json:"location"`
	Skills         []string `json:"skills"`
	Education      string   `json:"education"`
	ProfilePhoto   string   `json:"profile_photo"`
	CompanyName    string   `json:"company_name"`
	CompanyWebsite string   `json:"company_website"`
	CompanySize    string   `json:"company_size"`
}

func (p *Profile) Public() *PublicProfile {
	return &PublicProfile{
		CreatedBy:      p.CreatedBy,
		Role:           p.Role,
		Headline:       p.Headline,
		Bio:            p.Bio,
		Location:       p.Location,
		Skills:         p.Skills,
		Education:      p.Education,
		ProfilePhoto:   p.ProfilePhoto,
		CompanyName:    p.CompanyName,
		CompanyWebsite: p.CompanyWebsite,
		CompanySize:    p.CompanySize,
	}
}

// EmployerIncomplete reports an employer profile still missing the details onboarding asks for.
func (p *Profile) EmployerIncomplete() bool {
	return p.Role == RoleEmployer && (p.CompanyName == "" || p.Headline == "" || p.Phone == "")
}

type CreateProfileRequest struct {
	Role            Role     `json:"role" validate:"required,oneof=candidate employer"`
	Headline        string   `json:"headline" validate:"max=200"`
	Bio             string   `json:"bio" validate:"max=5000"`
	Location        string   `json:"location" validate:"max=200"`
	Phone           string   `json:"phone" validate:"max=20"`
	Skills          []string `json:"skills" validate:"max=50,dive,max=60"`
	Education       string   `json:"education" validate:"max=500"`
	ExperienceYears int      `json:"experience_years" validate:"gte=0,lte=60"`
	ProfilePhoto    string   `json:"profile_photo" validate:"omitempty,url"`
	ResumeURL       string   `json:"resume_url" validate:"omitempty,url"`
	CompanyName     string   `json:"company_name" validate:"max=200"`
	CompanyWebsite  string   `json:"company_website" validate:"omitempty,url"`
	CompanySize     string   `json:"company_size" validate:"max=50"`
}

// UpdateProfileRequest is a partial update. Role is not updatable.
type UpdateProfileRequest struct {
	Headline        *string   `json:"headline,omitempty" validate:"omitempty,max=200"`
	Bio             *string   `json:"bio,omitempty" validate:"omitempty,max=5000"`
	Location        *string   `json:"location,omitempty" validate:"omitempty,max=200"`
	Phone           *string   `json:"phone,omitempty" validate:"omitempty,max=20"`
	Skills          *[]string `json:"skills,omitempty" validate:"omitempty,max=50,dive,max=60"`
	Education       *string   `json:"education,omitempty" validate:"omitempty,max=500"`
	ExperienceYears *int      `json:"experience_years,omitempty" validate:"omitempty,gte=0,lte=60"`
	ProfilePhoto    *string   `json:"profile_photo,omitempty" validate:"omitempty,url"`
	ResumeURL       *string   `json:"resume_url,omitempty" validate:"omitempty,url"`
	CompanyName     *string   `json:"company_name,omitempty" validate:"omitempty,max=200"`
	CompanyWebsite  *string   `json:"company_website,omitempty" validate:"omitempty,url"`
	CompanySize     *string   `json:"company_size,omitempty" validate:"omitempty,max=50"`
}

type OnboardRequest struct {
	CreateProfileRequest
	// PendingRole is the role picked on the signup screen, if any.
	PendingRole Role `json:"pending_role,omitempty" validate:"omitempty,oneof=candidate employer"`
}

type OnboardingState struct {
	Role            Role     `json:"role"`
	RoleLocked      bool     `json:"role_locked"`
	Step            int      `json:"step"`
	NeedsOnboarding bool     `json:"needs_onboarding"`
	Profile         *Profile `json:"profile,omitempty"`
	// Redirect names the page a fully onboarded user belongs on.
	Redirect string `json:"redirect,omitempty"`
}
