package notify_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"jobmate/alert-service/internal/model"
	"jobmate/alert-service/internal/notify"
)

func TestDigest_ListsEveryJob(t *testing.T) {
	jobs := []model.JobRecord{
		{
			Title:        "Go Developer",
			EmployerName: "Acme Corp",
			City:         "Austin",
			Country:      "US",
			MinSalary:    30,
			MaxSalary:    40,
			SalaryPeriod: model.SalaryHourly,
			Remote:       true,
			ApplyLink:    "https://example.com/apply/1",
			FitSummary:   "Strong backend overlap.",
		},
		{
			Title:        "Python Developer",
			EmployerName: "Globex",
		},
	}

	body := notify.Digest(jobs)

	assert.Contains(t, body, "Found 2 new job(s)")
	assert.Contains(t, body, "1. Go Developer — Acme Corp")
	assert.Contains(t, body, "Location: Austin, US")
	assert.Contains(t, body, "Remote: yes")
	assert.Contains(t, body, "$30–$40/hour")
	assert.Contains(t, body, "Fit: Strong backend overlap.")
	assert.Contains(t, body, "https://example.com/apply/1")
	assert.Contains(t, body, "2. Python Developer — Globex")
}

func TestDigest_OmitsMissingFields(t *testing.T) {
	body := notify.Digest([]model.JobRecord{{Title: "X", EmployerName: "Y"}})
	assert.NotContains(t, body, "Salary:")
	assert.NotContains(t, body, "Location:")
	assert.NotContains(t, body, "Fit:")
}

func TestSend_RequiresConfiguration(t *testing.T) {
	n := notify.NewEmailNotifier("", "587", "", "", "alerts@example.com", nil)
	err := n.Send(context.Background(), []model.JobRecord{{Title: "X"}})
	assert.Error(t, err)
}
