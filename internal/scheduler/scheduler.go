// Package scheduler wires up the cron job that periodically runs one
// polling cycle.
package scheduler

import (
	"context"
	"fmt"
	"log"

	"github.com/robfig/cron/v3"

	"jobmate/alert-service/internal/cycle"
	"jobmate/alert-service/internal/model"
)

// Scheduler wraps robfig/cron and manages the cycle loop. Cycles run
// sequentially: cron skips a tick while the previous run is still going, so
// two cycles never overlap.
type Scheduler struct {
	cron     *cron.Cron
	coord    *cycle.Coordinator
	criteria model.SearchCriteria
	profile  model.Profile
	spec     string // cron spec, e.g. "@every 60m"
}

// New creates a Scheduler that fires every intervalMinutes minutes.
func New(coord *cycle.Coordinator, criteria model.SearchCriteria, profile model.Profile, intervalMinutes int) *Scheduler {
	return &Scheduler{
		cron:     cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DefaultLogger))),
		coord:    coord,
		criteria: criteria,
		profile:  profile,
		spec:     fmt.Sprintf("@every %dm", intervalMinutes),
	}
}

// Start registers the job and starts the scheduler. Also runs one cycle
// immediately so results arrive without waiting for the first tick.
func (s *Scheduler) Start(ctx context.Context) error {
	_, err := s.cron.AddFunc(s.spec, func() {
		s.runCycle(ctx)
	})
	if err != nil {
		return fmt.Errorf("cron.AddFunc: %w", err)
	}

	s.cron.Start()
	log.Printf("[scheduler] Cron started — spec: %s", s.spec)

	// Run immediately on startup (non-blocking)
	go s.runCycle(ctx)

	return nil
}

// Stop gracefully shuts down the scheduler.
func (s *Scheduler) Stop() {
	s.cron.Stop()
	log.Println("[scheduler] Cron stopped")
}

// runCycle executes one cycle and logs the outcome. Only a durable-state
// error comes back from RunCycle; it is logged loudly but the process keeps
// its schedule — the operator decides whether to restart.
func (s *Scheduler) runCycle(ctx context.Context) {
	report, err := s.coord.RunCycle(ctx, s.criteria, s.profile)
	if err != nil {
		log.Printf("[scheduler] Cycle failed on durable state: %v", err)
		return
	}

	log.Printf("[scheduler] Cycle %s: %d new match(es), notified=%t, %d application(s)",
		report.RunID, len(report.NewMatches), report.Notified, len(report.Applications))
	for _, f := range report.SourceFailures {
		log.Printf("[scheduler] Source failure: %s", f)
	}
}
