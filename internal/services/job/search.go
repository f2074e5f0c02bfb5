package job

import (
	"slices"
	"sort"
	"strings"
)

const (
	SortNewest     = "newest"
	SortSalaryHigh = "salary-high"
	SortSalaryLow  = "salary-low"
)

// JobSearch holds the filters of the jobs listing page.
type JobSearch struct {
	Query            string    `json:"q"`
	Location         string    `json:"location"`
	JobTypes         []JobType `json:"job_types"`
	ExperienceLevels []string  `json:"experience_levels"`
	SalaryMin        *float64  `json:"salary_min"`
	SalaryMax        *float64  `json:"salary_max"`
	Sort             string    `json:"sort"`
}

// Search filters and sorts jobs in process. The input slice is not modified.
func Search(jobs []*Job, s JobSearch) []*Job {
	query := strings.ToLower(strings.TrimSpace(s.Query))
	location := strings.ToLower(strings.TrimSpace(s.Location))

	out := make([]*Job, 0, len(jobs))
	for _, j := range jobs {
		if query != "" && !matchesQuery(j, query) {
			continue
		}
		if location != "" && !strings.Contains(strings.ToLower(j.Location), location) {
			continue
		}
		if len(s.JobTypes) > 0 && !slices.Contains(s.JobTypes, j.JobType) {
			continue
		}
		if len(s.ExperienceLevels) > 0 && !slices.Contains(s.ExperienceLevels, j.ExperienceLevel) {
			continue
		}
		// Salary filters select overlapping ranges; a job without the bound never matches.
		if s.SalaryMin != nil && (j.SalaryMax == nil || *j.SalaryMax < *s.SalaryMin) {
			continue
		}
		if s.SalaryMax != nil && (j.SalaryMin == nil || *j.SalaryMin > *s.SalaryMax) {
			continue
		}
		out = append(out, j)
	}

	switch s.Sort {
	case SortSalaryHigh:
		sort.SliceStable(out, func(a, b int) bool {
			return salaryBefore(out[a].SalaryMax, out[b].SalaryMax, true)
		})
	case SortSalaryLow:
		sort.SliceStable(out, func(a, b int) bool {
			return salaryBefore(out[a].SalaryMin, out[b].SalaryMin, false)
		})
	default:
		sort.SliceStable(out, func(a, b int) bool {
			return out[a].CreatedDate.After(out[b].CreatedDate)
		})
	}

	return out
}

func matchesQuery(j *Job, query string) bool {
	if strings.Contains(strings.ToLower(j.Title), query) || strings.Contains(strings.ToLower(j.CompanyName), query) {
		return true
	}
	for _, skill := range j.Skills {
		if strings.Contains(strings.ToLower(skill), query) {
			return true
		}
	}
	return false
}

// salaryBefore orders salaries with missing values last in either direction.
func salaryBefore(a, b *float64, desc bool) bool {
	if a == nil || b == nil {
		return a != nil && b == nil
	}
	if desc {
		return *a > *b
	}
	return *a < *b
}
