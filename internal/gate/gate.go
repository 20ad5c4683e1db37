package gate

import (
	"context"
	"fmt"
	"time"
)

// DayLayout is the calendar-day key used throughout the history log.
// Days are computed in the operator's local timezone at the moment a
// decision is made, so a cycle spanning midnight rolls over correctly.
const DayLayout = "2006-01-02"

// ApplicationRecord is one row of the append-only application history log.
// The daily counter is always derived by counting these records, never
// stored separately — replaying the log reconstructs the cap after a crash.
type ApplicationRecord struct {
	JobID         string
	EmployerName  string
	Day           string // DayLayout-formatted local calendar day
	Status        Status
	OutcomeDetail string
	CreatedAt     time.Time
}

// HistoryStore is the durable append-only history log consulted and written
// by the Gate. Implementations must persist synchronously: once Append
// returns, the reservation survives a process crash.
type HistoryStore interface {
	// Append writes a new history record.
	Append(ctx context.Context, rec ApplicationRecord) error
	// Finalize overwrites the open PREPARED record for jobID with a
	// terminal status. It returns an error when no open reservation exists.
	Finalize(ctx context.Context, jobID string, status Status, detail string) error
	// HasNonFailed reports whether any record for jobID, on any day, has a
	// status other than FAILED.
	HasNonFailed(ctx context.Context, jobID string) (bool, error)
	// CountNonFailed counts the records for one calendar day whose status
	// is not FAILED.
	CountNonFailed(ctx context.Context, day string) (int, error)
}

// Denial reasons surfaced in a Decision.
const (
	ReasonAlreadyApplied  = "already_applied"
	ReasonDailyCapReached = "daily_cap_reached"
)

// Decision is the outcome of one Request call.
type Decision struct {
	Approved bool
	Reason   string // set when not approved
}

// Gate decides whether an eligible match may proceed to application.
type Gate struct {
	history  HistoryStore
	maxDaily int
	now      func() time.Time
}

// New returns a Gate enforcing maxDaily non-failed applications per local
// calendar day.
func New(history HistoryStore, maxDaily int) *Gate {
	return &Gate{history: history, maxDaily: maxDaily, now: time.Now}
}

// Request decides whether jobID may be applied to right now.
//
// On approval a PREPARED reservation is written before Request returns, so a
// crash between approval and packaging still counts against the cap and
// still blocks re-application — under-applying on a crashed retry is the
// accepted failure mode, never over-applying.
func (g *Gate) Request(ctx context.Context, jobID, employerName string) (Decision, error) {
	applied, err := g.history.HasNonFailed(ctx, jobID)
	if err != nil {
		return Decision{}, fmt.Errorf("gate: read history for %s: %w", jobID, err)
	}
	if applied {
		return Decision{Reason: ReasonAlreadyApplied}, nil
	}

	// The day is computed here, not at cycle start, so a cycle that spans
	// midnight gets fresh cap headroom.
	now := g.now()
	day := now.Format(DayLayout)

	count, err := g.history.CountNonFailed(ctx, day)
	if err != nil {
		return Decision{}, fmt.Errorf("gate: count for %s: %w", day, err)
	}
	if count >= g.maxDaily {
		return Decision{Reason: ReasonDailyCapReached}, nil
	}

	rec := ApplicationRecord{
		JobID:        jobID,
		EmployerName: employerName,
		Day:          day,
		Status:       StatusPrepared,
		CreatedAt:    now,
	}
	if err := g.history.Append(ctx, rec); err != nil {
		return Decision{}, fmt.Errorf("gate: write reservation for %s: %w", jobID, err)
	}

	return Decision{Approved: true}, nil
}

// Finalize records the packaging outcome for an approved job, replacing the
// PREPARED reservation with SUBMITTED or FAILED. A FAILED outcome releases
// the jobID for a future retry.
func (g *Gate) Finalize(ctx context.Context, jobID string, status Status, detail string) error {
	if !IsTransitionAllowed(StatusPrepared, status) {
		return fmt.Errorf("gate: cannot finalize %s as %s", jobID, status)
	}
	if err := g.history.Finalize(ctx, jobID, status, detail); err != nil {
		return fmt.Errorf("gate: finalize %s: %w", jobID, err)
	}
	return nil
}
