// Package packager prepares application packages on disk: a rendered cover
// letter, a metadata file, and a copy of the operator's resume.
package packager

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"text/template"
	"time"

	"jobmate/alert-service/internal/model"
)

// defaultTemplate is used when no cover-letter template file is configured.
const defaultTemplate = `Dear Hiring Manager,

I am writing to apply for the {{.Job.Title}} position at {{.Job.EmployerName}}.
My background in {{join .Profile.Skills ", "}} aligns well with what you are
looking for, and I would welcome the chance to contribute.

Best regards,
{{.Profile.FullName}}
{{.Profile.Email}}
`

// FilePackager writes one directory per prepared application under BaseDir.
type FilePackager struct {
	BaseDir      string
	TemplatePath string // optional; defaultTemplate when empty or unreadable
}

// NewFilePackager constructs a packager rooted at baseDir.
func NewFilePackager(baseDir, templatePath string) *FilePackager {
	return &FilePackager{BaseDir: baseDir, TemplatePath: templatePath}
}

// metadata is the metadata.json payload written next to the cover letter.
type metadata struct {
	Job        model.JobRecord `json:"job"`
	PreparedAt time.Time       `json:"preparedAt"`
	Applicant  string          `json:"applicant"`
}

// Prepare renders and writes the application package for one job, returning
// the package directory path.
func (p *FilePackager) Prepare(ctx context.Context, job model.JobRecord, profile model.Profile) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	dir := filepath.Join(p.BaseDir, slug(job.EmployerName)+"_"+slug(job.JobID))
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create package dir: %w", err)
	}

	letter, err := p.renderCoverLetter(job, profile)
	if err != nil {
		return "", err
	}
	if err := os.WriteFile(filepath.Join(dir, "cover_letter.txt"), []byte(letter), 0o644); err != nil {
		return "", fmt.Errorf("write cover letter: %w", err)
	}

	meta, err := json.MarshalIndent(metadata{Job: job, PreparedAt: time.Now(), Applicant: profile.FullName()}, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal metadata: %w", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "metadata.json"), meta, 0o644); err != nil {
		return "", fmt.Errorf("write metadata: %w", err)
	}

	if profile.ResumePath != "" {
		if err := copyFile(profile.ResumePath, filepath.Join(dir, filepath.Base(profile.ResumePath))); err != nil {
			return "", fmt.Errorf("copy resume: %w", err)
		}
	}

	return dir, nil
}

func (p *FilePackager) renderCoverLetter(job model.JobRecord, profile model.Profile) (string, error) {
	text := defaultTemplate
	if p.TemplatePath != "" {
		raw, err := os.ReadFile(p.TemplatePath)
		if err == nil {
			text = string(raw)
		}
	}

	tmpl, err := template.New("cover_letter").
		Funcs(template.FuncMap{"join": strings.Join}).
		Parse(text)
	if err != nil {
		return "", fmt.Errorf("parse cover letter template: %w", err)
	}

	var b strings.Builder
	data := struct {
		Job     model.JobRecord
		Profile model.Profile
	}{Job: job, Profile: profile}
	if err := tmpl.Execute(&b, data); err != nil {
		return "", fmt.Errorf("render cover letter: %w", err)
	}
	return b.String(), nil
}

// slug keeps directory names filesystem-safe.
func slug(s string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(strings.TrimSpace(s)) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == ' ', r == '-', r == '_', r == '.':
			b.WriteRune('_')
		}
	}
	if b.Len() == 0 {
		return "unknown"
	}
	return b.String()
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	defer out.Close()

	if _, err := io.Copy(out, in); err != nil {
		return err
	}
	return out.Close()
}
