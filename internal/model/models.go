// Package model defines shared data structures for the alert service.
package model

import (
	"encoding/json"
	"strings"
)

// Source names tag raw listings with the board that produced them.
// Never part of a job's identity.
const (
	SourceJSearch = "jsearch"
	SourceAdzuna  = "adzuna"
)

// SalaryPeriod is the unit a listing's salary figures are quoted in.
type SalaryPeriod string

const (
	SalaryHourly  SalaryPeriod = "hourly"
	SalaryYearly  SalaryPeriod = "yearly"
	SalaryUnknown SalaryPeriod = "unknown"
)

// EmploymentType is the canonical contract-type enumeration. Source-specific
// values ("full_time", "Contractor", …) are mapped here by the normalizer.
type EmploymentType string

const (
	EmploymentFullTime EmploymentType = "FULLTIME"
	EmploymentPartTime EmploymentType = "PARTTIME"
	EmploymentContract EmploymentType = "CONTRACT"
	EmploymentIntern   EmploymentType = "INTERN"
	EmploymentOther    EmploymentType = "OTHER"
)

// RawListing is one undecoded record from a job board, tagged with the
// source that produced it. The normalizer owns decoding.
type RawListing struct {
	Source string          `json:"source"`
	Data   json.RawMessage `json:"data"`
}

// JobRecord is the canonical representation of one job listing.
// JobID is stable across polling cycles and process restarts — it anchors
// deduplication, so it must be a pure function of source-stable fields.
type JobRecord struct {
	JobID          string         `json:"jobId"`
	Title          string         `json:"title"`
	EmployerName   string         `json:"employerName"`
	City           string         `json:"city"`
	Country        string         `json:"country"`
	Description    string         `json:"description"`
	MinSalary      float64        `json:"minSalary,omitempty"`
	MaxSalary      float64        `json:"maxSalary,omitempty"`
	SalaryPeriod   SalaryPeriod   `json:"salaryPeriod"`
	EmploymentType EmploymentType `json:"employmentType"`
	Remote         bool           `json:"remote"`
	ApplyLink      string         `json:"applyLink"`
	RequiredSkills []string       `json:"requiredSkills,omitempty"`
	Source         string         `json:"source"`
	FitSummary     string         `json:"fitSummary,omitempty"`
}

// HasSalary reports whether the listing carries any salary data at all.
func (j JobRecord) HasSalary() bool {
	return j.MinSalary > 0 || j.MaxSalary > 0
}

// Location returns "City, Country" with empty parts dropped.
func (j JobRecord) Location() string {
	parts := make([]string, 0, 2)
	if j.City != "" {
		parts = append(parts, j.City)
	}
	if j.Country != "" {
		parts = append(parts, j.Country)
	}
	return strings.Join(parts, ", ")
}

// SearchCriteria is the operator's immutable per-run search configuration.
// Empty Titles / EmploymentTypes sets mean "no restriction".
type SearchCriteria struct {
	Titles           []string
	Locations        []string
	RemoteOK         bool
	MinSalary        float64
	MinSalaryPeriod  SalaryPeriod // unit MinSalary is quoted in (hourly or yearly)
	EmploymentTypes  []EmploymentType
	SkillKeywords    []string // operator skills, scored against required_skills
	PriorityKeywords []string // title keywords worth extra ranking weight
}

// Profile holds the operator data handed to the packager when an
// application package is prepared.
type Profile struct {
	FirstName  string
	LastName   string
	Email      string
	Skills     []string
	ResumePath string
}

// FullName joins first and last name, tolerating either being empty.
func (p Profile) FullName() string {
	return strings.TrimSpace(p.FirstName + " " + p.LastName)
}
