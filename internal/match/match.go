// Package match evaluates canonical job records against the operator's
// search criteria. Matching is pure and binary; the score exists only to
// rank matched jobs for presentation and application ordering.
package match

import (
	"strings"

	"jobmate/alert-service/internal/model"
)

// hoursPerYear is the assumed full-time hour count used to compare an hourly
// salary floor against a per-annum listing (and vice versa).
const hoursPerYear = 2000

// Score weights. Priority keywords in the title outrank plain skill overlap.
const (
	priorityKeywordWeight = 2
	skillOverlapWeight    = 1
)

// Matches reports whether the job satisfies every criteria rule, plus a
// ranking score. The score never affects eligibility.
func Matches(job model.JobRecord, c model.SearchCriteria) (bool, int) {
	if !titleMatches(job, c.Titles) {
		return false, 0
	}
	if !locationMatches(job, c) {
		return false, 0
	}
	if !employmentTypeMatches(job, c.EmploymentTypes) {
		return false, 0
	}
	if !meetsSalaryFloor(job, c) {
		return false, 0
	}
	return true, score(job, c)
}

// titleMatches: the job title contains at least one wanted title,
// case-insensitively. An empty set means no title restriction.
func titleMatches(job model.JobRecord, titles []string) bool {
	if len(titles) == 0 {
		return true
	}
	title := strings.ToLower(job.Title)
	for _, want := range titles {
		if want == "" {
			continue
		}
		if strings.Contains(title, strings.ToLower(want)) {
			return true
		}
	}
	return false
}

// locationMatches: the job's city/country contains a wanted location, or the
// job is remote and the operator accepts remote work.
func locationMatches(job model.JobRecord, c model.SearchCriteria) bool {
	if job.Remote && c.RemoteOK {
		return true
	}
	loc := strings.ToLower(job.City + " " + job.Country)
	for _, want := range c.Locations {
		if want == "" {
			continue
		}
		if strings.Contains(loc, strings.ToLower(want)) {
			return true
		}
	}
	return false
}

// employmentTypeMatches: empty set means any type is acceptable.
func employmentTypeMatches(job model.JobRecord, types []model.EmploymentType) bool {
	if len(types) == 0 {
		return true
	}
	for _, t := range types {
		if job.EmploymentType == t {
			return true
		}
	}
	return false
}

// meetsSalaryFloor applies the minimum-salary rule. A job with no salary
// data, or a salary quoted in an unknown period, always passes — missing
// data never excludes a listing. Comparison is done in hourly terms,
// annualized figures divided by hoursPerYear.
func meetsSalaryFloor(job model.JobRecord, c model.SearchCriteria) bool {
	if c.MinSalary <= 0 {
		return true
	}
	if !job.HasSalary() || job.SalaryPeriod == model.SalaryUnknown {
		return true
	}

	floorHourly := c.MinSalary
	if c.MinSalaryPeriod == model.SalaryYearly {
		floorHourly = c.MinSalary / hoursPerYear
	}

	best := job.MaxSalary
	if job.MinSalary > best {
		best = job.MinSalary
	}
	if job.SalaryPeriod == model.SalaryYearly {
		best = best / hoursPerYear
	}

	return best >= floorHourly
}

// score counts the optional signals that align: priority keywords appearing
// in the title and overlap between the listing's required skills and the
// operator's skill list.
func score(job model.JobRecord, c model.SearchCriteria) int {
	total := 0

	title := strings.ToLower(job.Title)
	for _, kw := range c.PriorityKeywords {
		if kw == "" {
			continue
		}
		if strings.Contains(title, strings.ToLower(kw)) {
			total += priorityKeywordWeight
		}
	}

	if len(c.SkillKeywords) > 0 && len(job.RequiredSkills) > 0 {
		mine := make(map[string]struct{}, len(c.SkillKeywords))
		for _, s := range c.SkillKeywords {
			mine[strings.ToLower(strings.TrimSpace(s))] = struct{}{}
		}
		for _, s := range job.RequiredSkills {
			if _, ok := mine[strings.ToLower(strings.TrimSpace(s))]; ok {
				total += skillOverlapWeight
			}
		}
	}

	return total
}
