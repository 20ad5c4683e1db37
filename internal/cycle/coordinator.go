// Package cycle drives one complete poll-filter-dedupe-notify-apply pass
// over all configured title × location combinations.
package cycle

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"sort"
	"time"

	"github.com/google/uuid"

	"jobmate/alert-service/internal/gate"
	"jobmate/alert-service/internal/match"
	"jobmate/alert-service/internal/model"
	"jobmate/alert-service/internal/normalize"
	"jobmate/alert-service/internal/store"
)

// ─── Collaborator contracts ─────────────────────────────────────────────────

// ListingSource fetches raw listings for one title/location query. A failing
// source is skipped for the cycle, never fatal.
type ListingSource interface {
	Name() string
	Fetch(ctx context.Context, title, location string) ([]model.RawListing, error)
}

// Notifier delivers one batched notification for all new matches in a cycle.
// A delivery failure does not roll back dedup marking — a notified-but-
// undelivered job stays seen, so transient email trouble never causes spam.
type Notifier interface {
	Send(ctx context.Context, jobs []model.JobRecord) error
}

// Packager produces the application package for an approved job and returns
// the path of the prepared files.
type Packager interface {
	Prepare(ctx context.Context, job model.JobRecord, profile model.Profile) (string, error)
}

// Enricher optionally annotates a new match with a short fit summary.
// Best effort: an enrichment failure degrades to an unannotated listing.
type Enricher interface {
	Annotate(ctx context.Context, job model.JobRecord) (string, error)
}

// ─── Report ─────────────────────────────────────────────────────────────────

// ApplicationOutcome records how one gate-approved job ended up.
type ApplicationOutcome struct {
	JobID        string      `json:"jobId"`
	EmployerName string      `json:"employerName"`
	Status       gate.Status `json:"status"`
	Detail       string      `json:"detail,omitempty"`
	FilesPath    string      `json:"filesPath,omitempty"`
}

// CycleReport summarises one cycle. A cycle always completes and reports,
// even under partial failures; only unreadable durable state aborts it.
type CycleReport struct {
	RunID          string               `json:"runId"`
	StartedAt      time.Time            `json:"startedAt"`
	Fetched        int                  `json:"fetched"`
	Malformed      int                  `json:"malformed"`
	Rejected       int                  `json:"rejected"`
	Duplicates     int                  `json:"duplicates"`
	NewMatches     []model.JobRecord    `json:"newMatches"`
	Notified       bool                 `json:"notified"`
	Applications   []ApplicationOutcome `json:"applications"`
	SourceFailures []string             `json:"sourceFailures"`
}

// ─── Coordinator ────────────────────────────────────────────────────────────

// Coordinator owns all in-memory state for one cycle. The only state that
// outlives a cycle lives in the SeenStore and the Gate's history log.
type Coordinator struct {
	sources   []ListingSource
	seen      store.SeenStore
	gate      *gate.Gate
	notifier  Notifier
	packager  Packager
	enricher  Enricher // nil when enrichment is disabled
	autoApply bool
}

// New wires a Coordinator. enricher may be nil.
func New(sources []ListingSource, seen store.SeenStore, g *gate.Gate, notifier Notifier, packager Packager, enricher Enricher, autoApply bool) *Coordinator {
	return &Coordinator{
		sources:   sources,
		seen:      seen,
		gate:      g,
		notifier:  notifier,
		packager:  packager,
		enricher:  enricher,
		autoApply: autoApply,
	}
}

type scoredJob struct {
	job   model.JobRecord
	score int
}

// RunCycle executes one full cycle for the given criteria. Per-source and
// per-job failures are recovered locally and aggregated into the report;
// only a durable-state error is returned as fatal.
func (c *Coordinator) RunCycle(ctx context.Context, criteria model.SearchCriteria, profile model.Profile) (*CycleReport, error) {
	report := &CycleReport{
		RunID:     uuid.NewString(),
		StartedAt: time.Now(),
	}
	log.Printf("[cycle] %s started: titles=%v locations=%v", report.RunID, criteria.Titles, criteria.Locations)

	matches, err := c.collect(ctx, criteria, report)
	if err != nil {
		return nil, err
	}

	// Rank by score, best first. Ordering only — eligibility was decided
	// per job by the filter.
	sort.SliceStable(matches, func(i, j int) bool { return matches[i].score > matches[j].score })
	for _, m := range matches {
		report.NewMatches = append(report.NewMatches, m.job)
	}

	if len(report.NewMatches) > 0 {
		if err := c.notifier.Send(ctx, report.NewMatches); err != nil {
			slog.Warn("notification delivery failed", "run", report.RunID, "jobs", len(report.NewMatches), "err", err)
		} else {
			report.Notified = true
		}
	}

	if c.autoApply {
		if err := c.applyAll(ctx, report, profile); err != nil {
			return nil, err
		}
	}

	log.Printf("[cycle] %s done: fetched=%d malformed=%d rejected=%d duplicates=%d new=%d applications=%d sourceFailures=%d",
		report.RunID, report.Fetched, report.Malformed, report.Rejected, report.Duplicates,
		len(report.NewMatches), len(report.Applications), len(report.SourceFailures))
	return report, nil
}

// collect fetches, normalizes, filters and deduplicates, returning the new
// matches of this cycle. Every new match is durably marked seen before it is
// returned for the notifier hand-off, so a crash mid-cycle can only
// under-notify, never duplicate.
func (c *Coordinator) collect(ctx context.Context, criteria model.SearchCriteria, report *CycleReport) ([]scoredJob, error) {
	inCycle := make(map[string]bool)
	var matches []scoredJob

	for _, title := range criteria.Titles {
		for _, location := range criteria.Locations {
			for _, src := range c.sources {
				raws, err := src.Fetch(ctx, title, location)
				if err != nil {
					slog.Warn("listing source failed", "source", src.Name(), "title", title, "location", location, "err", err)
					report.SourceFailures = append(report.SourceFailures,
						fmt.Sprintf("%s (%q, %q): %v", src.Name(), title, location, err))
					continue
				}
				report.Fetched += len(raws)

				for _, raw := range raws {
					job, err := normalize.Normalize(raw)
					if err != nil {
						slog.Warn("skipping malformed listing", "source", raw.Source, "err", err)
						report.Malformed++
						continue
					}

					ok, score := match.Matches(job, criteria)
					if !ok {
						report.Rejected++
						continue
					}

					// Same job via two sources in one cycle: first to
					// normalize wins, the rest merge silently.
					if inCycle[job.JobID] {
						report.Duplicates++
						continue
					}
					inCycle[job.JobID] = true

					isNew, err := c.seen.IsNew(ctx, job.JobID)
					if err != nil {
						return nil, fmt.Errorf("cycle %s: %w", report.RunID, err)
					}
					if !isNew {
						report.Duplicates++
						continue
					}
					if err := c.seen.MarkSeen(ctx, job.JobID, time.Now()); err != nil {
						return nil, fmt.Errorf("cycle %s: %w", report.RunID, err)
					}

					c.annotate(ctx, &job)
					matches = append(matches, scoredJob{job: job, score: score})
				}
			}
		}
	}

	return matches, nil
}

func (c *Coordinator) annotate(ctx context.Context, job *model.JobRecord) {
	if c.enricher == nil {
		return
	}
	summary, err := c.enricher.Annotate(ctx, *job)
	if err != nil {
		slog.Warn("enrichment failed", "jobId", job.JobID, "err", err)
		return
	}
	job.FitSummary = summary
}

// applyAll routes every new match through the Gate, best score first, and
// packages the approved ones. Gate and history errors are fatal (durable
// state); packager errors finalize the reservation as FAILED and move on.
func (c *Coordinator) applyAll(ctx context.Context, report *CycleReport, profile model.Profile) error {
	for _, job := range report.NewMatches {
		dec, err := c.gate.Request(ctx, job.JobID, job.EmployerName)
		if err != nil {
			return fmt.Errorf("cycle %s: %w", report.RunID, err)
		}
		if !dec.Approved {
			log.Printf("[cycle] application denied for %s at %s: %s", job.JobID, job.EmployerName, dec.Reason)
			continue
		}

		outcome := ApplicationOutcome{JobID: job.JobID, EmployerName: job.EmployerName}
		path, perr := c.packager.Prepare(ctx, job, profile)
		if perr != nil {
			slog.Warn("packaging failed", "jobId", job.JobID, "err", perr)
			outcome.Status = gate.StatusFailed
			outcome.Detail = perr.Error()
		} else {
			outcome.Status = gate.StatusSubmitted
			outcome.FilesPath = path
		}

		if err := c.gate.Finalize(ctx, job.JobID, outcome.Status, outcome.Detail); err != nil {
			return fmt.Errorf("cycle %s: %w", report.RunID, err)
		}
		report.Applications = append(report.Applications, outcome)
	}
	return nil
}
