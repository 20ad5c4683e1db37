// Package notify delivers the per-cycle digest of new matches.
package notify

import (
	"context"
	"fmt"
	"net/smtp"
	"strings"

	"jobmate/alert-service/internal/model"
)

// EmailNotifier sends one plain-text digest email per cycle with every new
// match. All jobs in a cycle go out as a single message, never one email
// per job.
type EmailNotifier struct {
	Host     string
	Port     string
	Username string
	Password string
	From     string
	To       []string
}

// NewEmailNotifier constructs a notifier for the given SMTP account.
func NewEmailNotifier(host, port, username, password, from string, to []string) *EmailNotifier {
	return &EmailNotifier{
		Host:     host,
		Port:     port,
		Username: username,
		Password: password,
		From:     from,
		To:       to,
	}
}

// Send delivers the digest. The caller treats a failure as non-fatal: the
// jobs stay marked seen so a transient SMTP error never causes repeat spam.
func (n *EmailNotifier) Send(ctx context.Context, jobs []model.JobRecord) error {
	if n.Host == "" || len(n.To) == 0 {
		return fmt.Errorf("smtp not configured")
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	subject := fmt.Sprintf("Job alert: %d new matching position(s)", len(jobs))
	msg := buildMessage(n.From, n.To, subject, Digest(jobs))

	addr := n.Host + ":" + n.Port
	var auth smtp.Auth
	if n.Username != "" {
		auth = smtp.PlainAuth("", n.Username, n.Password, n.Host)
	}
	if err := smtp.SendMail(addr, auth, n.From, n.To, msg); err != nil {
		return fmt.Errorf("send digest: %w", err)
	}
	return nil
}

// Digest renders the plain-text body for a batch of new matches.
func Digest(jobs []model.JobRecord) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Found %d new job(s) matching your criteria:\n\n", len(jobs))

	for i, job := range jobs {
		fmt.Fprintf(&b, "%d. %s — %s\n", i+1, job.Title, job.EmployerName)
		if loc := job.Location(); loc != "" {
			fmt.Fprintf(&b, "   Location: %s\n", loc)
		}
		if job.Remote {
			b.WriteString("   Remote: yes\n")
		}
		if job.HasSalary() {
			fmt.Fprintf(&b, "   Salary: %s\n", formatSalary(job))
		}
		if job.FitSummary != "" {
			fmt.Fprintf(&b, "   Fit: %s\n", job.FitSummary)
		}
		if job.ApplyLink != "" {
			fmt.Fprintf(&b, "   Apply: %s\n", job.ApplyLink)
		}
		b.WriteString("\n")
	}

	return b.String()
}

func formatSalary(job model.JobRecord) string {
	unit := ""
	switch job.SalaryPeriod {
	case model.SalaryHourly:
		unit = "/hour"
	case model.SalaryYearly:
		unit = "/year"
	}
	if job.MinSalary > 0 && job.MaxSalary > 0 && job.MinSalary != job.MaxSalary {
		return fmt.Sprintf("$%.0f–$%.0f%s", job.MinSalary, job.MaxSalary, unit)
	}
	best := job.MaxSalary
	if best == 0 {
		best = job.MinSalary
	}
	return fmt.Sprintf("$%.0f%s", best, unit)
}

func buildMessage(from string, to []string, subject, body string) []byte {
	var b strings.Builder
	fmt.Fprintf(&b, "From: %s\r\n", from)
	fmt.Fprintf(&b, "To: %s\r\n", strings.Join(to, ", "))
	fmt.Fprintf(&b, "Subject: %s\r\n", subject)
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString("Content-Type: text/plain; charset=utf-8\r\n")
	b.WriteString("\r\n")
	b.WriteString(body)
	return []byte(b.String())
}
