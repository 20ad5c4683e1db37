// Package gate enforces the daily application cap and the
// no-duplicate-application invariant.
//
// Valid status graph for one history record:
//
//	PREPARED ──► SUBMITTED
//	    │
//	    └──────► FAILED
//
// SUBMITTED and FAILED are terminal. PREPARED is the reservation written at
// approval time, before the packaging outcome is known.
package gate

import "fmt"

// Status values mirror the application_history.status column.
type Status string

const (
	StatusPrepared  Status = "PREPARED"
	StatusSubmitted Status = "SUBMITTED"
	StatusFailed    Status = "FAILED"
)

// validTransitions lists every allowed (from → to) pair.
var validTransitions = map[Status][]Status{
	StatusPrepared: {StatusSubmitted, StatusFailed},
	// SUBMITTED and FAILED are terminal — no outgoing transitions
}

// ParseStatus converts a raw string to a Status, returning an error for
// unknown values.
func ParseStatus(s string) (Status, error) {
	st := Status(s)
	switch st {
	case StatusPrepared, StatusSubmitted, StatusFailed:
		return st, nil
	}
	return "", fmt.Errorf("unknown application status %q", s)
}

// IsTransitionAllowed returns true when moving from → to is permitted.
func IsTransitionAllowed(from, to Status) bool {
	allowed, ok := validTransitions[from]
	if !ok {
		return false // terminal state — no outgoing transitions
	}
	for _, s := range allowed {
		if s == to {
			return true
		}
	}
	return false
}

// CountsTowardCap reports whether a record in this status consumes daily cap
// headroom. Failed attempts release their slot.
func CountsTowardCap(s Status) bool { return s != StatusFailed }
