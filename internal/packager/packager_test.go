package packager_test

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"jobmate/alert-service/internal/model"
	"jobmate/alert-service/internal/packager"
)

func testJob() model.JobRecord {
	return model.JobRecord{
		JobID:        "abc123",
		Title:        "Go Developer",
		EmployerName: "Acme Corp",
		ApplyLink:    "https://example.com/apply/abc123",
	}
}

func testProfile() model.Profile {
	return model.Profile{
		FirstName: "Jane",
		LastName:  "Doe",
		Email:     "jane@example.com",
		Skills:    []string{"Go", "PostgreSQL"},
	}
}

func TestPrepare_WritesPackage(t *testing.T) {
	dir := t.TempDir()
	p := packager.NewFilePackager(dir, "")

	path, err := p.Prepare(context.Background(), testJob(), testProfile())
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "acme_corp_abc123"), path)

	letter, err := os.ReadFile(filepath.Join(path, "cover_letter.txt"))
	require.NoError(t, err)
	assert.Contains(t, string(letter), "Go Developer")
	assert.Contains(t, string(letter), "Acme Corp")
	assert.Contains(t, string(letter), "Jane Doe")
	assert.Contains(t, string(letter), "Go, PostgreSQL")

	raw, err := os.ReadFile(filepath.Join(path, "metadata.json"))
	require.NoError(t, err)
	var meta struct {
		Job       model.JobRecord `json:"job"`
		Applicant string          `json:"applicant"`
	}
	require.NoError(t, json.Unmarshal(raw, &meta))
	assert.Equal(t, "abc123", meta.Job.JobID)
	assert.Equal(t, "Jane Doe", meta.Applicant)
}

func TestPrepare_CustomTemplate(t *testing.T) {
	dir := t.TempDir()
	tmplPath := filepath.Join(dir, "template.txt")
	require.NoError(t, os.WriteFile(tmplPath, []byte("To {{.Job.EmployerName}}, from {{.Profile.Email}}."), 0o644))

	p := packager.NewFilePackager(dir, tmplPath)
	path, err := p.Prepare(context.Background(), testJob(), testProfile())
	require.NoError(t, err)

	letter, err := os.ReadFile(filepath.Join(path, "cover_letter.txt"))
	require.NoError(t, err)
	assert.Equal(t, "To Acme Corp, from jane@example.com.", string(letter))
}

func TestPrepare_CopiesResume(t *testing.T) {
	dir := t.TempDir()
	resume := filepath.Join(dir, "resume.pdf")
	require.NoError(t, os.WriteFile(resume, []byte("%PDF-1.4 fake"), 0o644))

	profile := testProfile()
	profile.ResumePath = resume

	p := packager.NewFilePackager(dir, "")
	path, err := p.Prepare(context.Background(), testJob(), profile)
	require.NoError(t, err)

	copied, err := os.ReadFile(filepath.Join(path, "resume.pdf"))
	require.NoError(t, err)
	assert.Equal(t, "%PDF-1.4 fake", string(copied))
}

func TestPrepare_MissingResumeFails(t *testing.T) {
	profile := testProfile()
	profile.ResumePath = filepath.Join(t.TempDir(), "nope.pdf")

	p := packager.NewFilePackager(t.TempDir(), "")
	_, err := p.Prepare(context.Background(), testJob(), profile)
	assert.Error(t, err)
}

func TestPrepare_SlugsHostileNames(t *testing.T) {
	job := testJob()
	job.EmployerName = "Weird / Name: Ltd."

	p := packager.NewFilePackager(t.TempDir(), "")
	path, err := p.Prepare(context.Background(), job, testProfile())
	require.NoError(t, err)
	assert.NotContains(t, filepath.Base(path), "/")
	assert.NotContains(t, filepath.Base(path), ":")
}
