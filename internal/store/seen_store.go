// Package store provides the durable state backing the alert service: the
// seen-job set in Redis and the application history log in PostgreSQL.
package store

import (
	"context"
	"time"
)

// SeenStore persists the set of job identities that already triggered a
// notification. Entries are created the first time a job passes the
// criteria filter and are never mutated or deleted.
//
// Contract: once MarkSeen has returned for a jobID, IsNew never reports that
// jobID as new again — this is the at-most-once-notification guarantee.
type SeenStore interface {
	IsNew(ctx context.Context, jobID string) (bool, error)
	MarkSeen(ctx context.Context, jobID string, firstSeen time.Time) error
}
