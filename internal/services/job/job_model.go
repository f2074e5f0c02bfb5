package job

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

type JobType string

const (
	JobTypeFullTime   JobType = "full-time"
	JobTypePartTime   JobType = "part-time"
	JobTypeInternship JobType = "internship"
	JobTypeContract   JobType = "contract"
	JobTypeRemote     JobType = "remote"
)

type Status string

const (
	StatusActive Status = "active"
	StatusClosed Status = "closed"
	StatusDraft  Status = "draft"
)

var Statuses = []Status{StatusActive, StatusClosed, StatusDraft}

const (
	LevelFresher    = "fresher"
	LevelZeroToOne  = "0-1 years"
	LevelOneToTwo   = "1-2 years"
	LevelTwoToThree = "2-3 years"
)

const defaultOrder = "-created_date"

// Job is a posting. Salaries are in lakhs per annum.
type Job struct {
	ID                uuid.UUID      `db:"id" json:"id"`
	EmployerID        string         `db:"employer_id" json:"employer_id"`
	Title             string         `db:"title" json:"title"`
	CompanyName       string         `db:"company_name" json:"company_name"`
	Location          string         `db:"location" json:"location"`
	JobType           JobType        `db:"job_type" json:"job_type"`
	ExperienceLevel   string         `db:"experience_level" json:"experience_level"`
	SalaryMin         *float64       `db:"salary_min" json:"salary_min"`
	SalaryMax         *float64       `db:"salary_max" json:"salary_max"`
	Description       string         `db:"description" json:"description"`
	Requirements      string         `db:"requirements" json:"requirements"`
	Skills            pq.StringArray `db:"skills" json:"skills"`
	Status            Status         `db:"status" json:"status"`
	ApplicationsCount int            `db:"applications_count" json:"applications_count"`
	CreatedDate       time.Time      `db:"created_date" json:"created_date"`
	UpdatedDate       time.Time      `db:"updated_date" json:"updated_date"`
}

type CreateJobRequest struct {
	Title       string `json:"title" validate:"required,max=200"`
	CompanyName string `json:"company_name" validate:"required,max=200"`
	// Company is accepted as an alias of company_name.
	Company         string   `json:"company,omitempty" validate:"-"`
	Location        string   `json:"location" validate:"required,max=200"`
	JobType         JobType  `json:"job_type" validate:"required,oneof=full-time part-time internship contract remote"`
	ExperienceLevel string   `json:"experience_level" validate:"omitempty,oneof=fresher '0-1 years' '1-2 years' '2-3 years'"`
	SalaryMin       *float64 `json:"salary_min,omitempty" validate:"omitempty,gte=0"`
	SalaryMax       *float64 `json:"salary_max,omitempty" validate:"omitempty,gte=0"`
	Description     string   `json:"description" validate:"required"`
	Requirements    string   `json:"requirements"`
	Skills          []string `json:"skills" validate:"max=50,dive,max=60"`
	Status          Status   `json:"status,omitempty" validate:"omitempty,oneof=active closed draft"`
}

type UpdateJobRequest struct {
	Title           *string   `json:"title,omitempty" validate:"omitempty,min=1,max=200"`
	CompanyName     *string   `json:"company_name,omitempty" validate:"omitempty,min=1,max=200"`
	Location        *string   `json:"location,omitempty" validate:"omitempty,min=1,max=200"`
	JobType         *JobType  `json:"job_type,omitempty" validate:"omitempty,oneof=full-time part-time internship contract remote"`
	ExperienceLevel *string   `json:"experience_level,omitempty" validate:"omitempty,oneof=fresher '0-1 years' '1-2 years' '2-3 years'"`
	SalaryMin       *float64  `json:"salary_min,omitempty" validate:"omitempty,gte=0"`
	SalaryMax       *float64  `json:"salary_max,omitempty" validate:"omitempty,gte=0"`
	Description     *string   `json:"description,omitempty" validate:"omitempty,min=1"`
	Requirements    *string   `json:"requirements,omitempty"`
	Skills          *[]string `json:"skills,omitempty" validate:"omitempty,max=50,dive,max=60"`
	Status          *Status   `json:"status,omitempty" validate:"omitempty,oneof=active closed draft"`
}

// ListQuery filters job listings. Empty fields do not filter.
type ListQuery struct {
	Status     Status
	EmployerID string
	Order      string
	Limit      int
}
