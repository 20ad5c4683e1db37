// Package normalize maps heterogeneous raw listings from the configured job
// boards onto the canonical model.JobRecord shape.
//
// Every mapper is a pure function: the same raw record always yields the same
// JobRecord, including its JobID. This is what makes deduplication correct
// across cycles and restarts.
package normalize

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strings"

	"jobmate/alert-service/internal/model"
)

// Normalize converts one raw listing into a canonical JobRecord.
// A malformed or unrecognised record yields an error; callers skip the
// record and keep going — one bad listing never aborts a cycle.
func Normalize(raw model.RawListing) (model.JobRecord, error) {
	switch raw.Source {
	case model.SourceJSearch:
		return normalizeJSearch(raw.Data)
	case model.SourceAdzuna:
		return normalizeAdzuna(raw.Data)
	}
	return model.JobRecord{}, fmt.Errorf("unknown listing source %q", raw.Source)
}

// Fingerprint derives a stable job identity from source-stable fields, used
// when the board supplies no id of its own.
func Fingerprint(title, employer, location, applyLink string) string {
	key := strings.ToLower(strings.Join([]string{
		strings.TrimSpace(title),
		strings.TrimSpace(employer),
		strings.TrimSpace(location),
		strings.TrimSpace(applyLink),
	}, "|"))
	sum := sha256.Sum256([]byte(key))
	return "fp-" + hex.EncodeToString(sum[:])[:20]
}

// ─── JSearch ────────────────────────────────────────────────────────────────

// jsearchListing mirrors one item of the JSearch /search response.
type jsearchListing struct {
	JobID          string   `json:"job_id"`
	Title          string   `json:"job_title"`
	EmployerName   string   `json:"employer_name"`
	City           string   `json:"job_city"`
	Country        string   `json:"job_country"`
	Description    string   `json:"job_description"`
	MinSalary      *float64 `json:"job_min_salary"`
	MaxSalary      *float64 `json:"job_max_salary"`
	SalaryPeriod   string   `json:"job_salary_period"`
	EmploymentType string   `json:"job_employment_type"`
	IsRemote       bool     `json:"job_is_remote"`
	ApplyLink      string   `json:"job_apply_link"`
	RequiredSkills []string `json:"job_required_skills"`
}

func normalizeJSearch(data json.RawMessage) (model.JobRecord, error) {
	var l jsearchListing
	if err := json.Unmarshal(data, &l); err != nil {
		return model.JobRecord{}, fmt.Errorf("decode jsearch listing: %w", err)
	}
	if l.Title == "" {
		return model.JobRecord{}, fmt.Errorf("jsearch listing has no title")
	}

	job := model.JobRecord{
		JobID:          l.JobID,
		Title:          l.Title,
		EmployerName:   l.EmployerName,
		City:           l.City,
		Country:        l.Country,
		Description:    l.Description,
		SalaryPeriod:   parseSalaryPeriod(l.SalaryPeriod),
		EmploymentType: parseEmploymentType(l.EmploymentType),
		Remote:         l.IsRemote || looksRemote(l.Title, l.City),
		ApplyLink:      l.ApplyLink,
		RequiredSkills: l.RequiredSkills,
		Source:         model.SourceJSearch,
	}
	if l.MinSalary != nil {
		job.MinSalary = *l.MinSalary
	}
	if l.MaxSalary != nil {
		job.MaxSalary = *l.MaxSalary
	}
	if job.JobID == "" {
		job.JobID = Fingerprint(job.Title, job.EmployerName, job.Location(), job.ApplyLink)
	}
	return job, nil
}

// ─── Adzuna ─────────────────────────────────────────────────────────────────

// adzunaListing mirrors one item of the Adzuna search response.
type adzunaListing struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Company     struct {
		DisplayName string `json:"display_name"`
	} `json:"company"`
	Location struct {
		DisplayName string   `json:"display_name"`
		Area        []string `json:"area"`
	} `json:"location"`
	SalaryMin    float64 `json:"salary_min"`
	SalaryMax    float64 `json:"salary_max"`
	RedirectURL  string  `json:"redirect_url"`
	ContractTime string  `json:"contract_time"` // full_time / part_time
	ContractType string  `json:"contract_type"` // permanent / contract
}

func normalizeAdzuna(data json.RawMessage) (model.JobRecord, error) {
	var l adzunaListing
	if err := json.Unmarshal(data, &l); err != nil {
		return model.JobRecord{}, fmt.Errorf("decode adzuna listing: %w", err)
	}
	if l.Title == "" {
		return model.JobRecord{}, fmt.Errorf("adzuna listing has no title")
	}

	job := model.JobRecord{
		JobID:        l.ID,
		Title:        l.Title,
		EmployerName: l.Company.DisplayName,
		City:         l.Location.DisplayName,
		Description:  l.Description,
		ApplyLink:    l.RedirectURL,
		Source:       model.SourceAdzuna,
		MinSalary:    l.SalaryMin,
		MaxSalary:    l.SalaryMax,
		SalaryPeriod: model.SalaryUnknown,
	}
	// Adzuna's country is the first (widest) element of the location area.
	if len(l.Location.Area) > 0 {
		job.Country = l.Location.Area[0]
	}
	// Adzuna quotes salaries per annum when it has them.
	if job.HasSalary() {
		job.SalaryPeriod = model.SalaryYearly
	}
	job.EmploymentType = adzunaEmploymentType(l.ContractTime, l.ContractType)
	job.Remote = looksRemote(l.Title, l.Location.DisplayName)
	if job.JobID == "" {
		job.JobID = Fingerprint(job.Title, job.EmployerName, job.Location(), job.ApplyLink)
	}
	return job, nil
}

func adzunaEmploymentType(contractTime, contractType string) model.EmploymentType {
	if strings.EqualFold(contractType, "contract") {
		return model.EmploymentContract
	}
	switch strings.ToLower(contractTime) {
	case "full_time":
		return model.EmploymentFullTime
	case "part_time":
		return model.EmploymentPartTime
	}
	return model.EmploymentOther
}

// ─── Shared mapping helpers ─────────────────────────────────────────────────

func parseSalaryPeriod(s string) model.SalaryPeriod {
	switch {
	case strings.Contains(strings.ToLower(s), "hour"):
		return model.SalaryHourly
	case strings.Contains(strings.ToLower(s), "year"),
		strings.Contains(strings.ToLower(s), "annum"):
		return model.SalaryYearly
	}
	return model.SalaryUnknown
}

func parseEmploymentType(s string) model.EmploymentType {
	switch strings.ToUpper(strings.ReplaceAll(strings.ReplaceAll(s, "_", ""), "-", "")) {
	case "FULLTIME":
		return model.EmploymentFullTime
	case "PARTTIME":
		return model.EmploymentPartTime
	case "CONTRACT", "CONTRACTOR":
		return model.EmploymentContract
	case "INTERN", "INTERNSHIP":
		return model.EmploymentIntern
	}
	return model.EmploymentOther
}

// looksRemote is the best-effort remote inference for boards that carry no
// explicit flag.
func looksRemote(title, location string) bool {
	combined := strings.ToLower(title + " " + location)
	return strings.Contains(combined, "remote") || strings.Contains(combined, "work from home")
}
