package gate

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// memHistory is an in-memory HistoryStore for exercising the Gate without a
// database.
type memHistory struct {
	recs    []ApplicationRecord
	failAll bool
}

func (m *memHistory) Append(_ context.Context, rec ApplicationRecord) error {
	if m.failAll {
		return fmt.Errorf("store down")
	}
	m.recs = append(m.recs, rec)
	return nil
}

func (m *memHistory) Finalize(_ context.Context, jobID string, status Status, detail string) error {
	if m.failAll {
		return fmt.Errorf("store down")
	}
	for i := len(m.recs) - 1; i >= 0; i-- {
		if m.recs[i].JobID == jobID && m.recs[i].Status == StatusPrepared {
			m.recs[i].Status = status
			m.recs[i].OutcomeDetail = detail
			return nil
		}
	}
	return fmt.Errorf("no open reservation for %s", jobID)
}

func (m *memHistory) HasNonFailed(_ context.Context, jobID string) (bool, error) {
	if m.failAll {
		return false, fmt.Errorf("store down")
	}
	for _, r := range m.recs {
		if r.JobID == jobID && r.Status != StatusFailed {
			return true, nil
		}
	}
	return false, nil
}

func (m *memHistory) CountNonFailed(_ context.Context, day string) (int, error) {
	if m.failAll {
		return 0, fmt.Errorf("store down")
	}
	n := 0
	for _, r := range m.recs {
		if r.Day == day && r.Status != StatusFailed {
			n++
		}
	}
	return n, nil
}

func newTestGate(history HistoryStore, maxDaily int, now time.Time) *Gate {
	g := New(history, maxDaily)
	g.now = func() time.Time { return now }
	return g
}

var noon = time.Date(2026, 8, 30, 12, 0, 0, 0, time.Local)

func TestRequest_ApprovesAndReserves(t *testing.T) {
	h := &memHistory{}
	g := newTestGate(h, 5, noon)

	dec, err := g.Request(context.Background(), "job-1", "Acme")
	require.NoError(t, err)
	assert.True(t, dec.Approved)

	// The reservation must already be durable when Request returns.
	require.Len(t, h.recs, 1)
	assert.Equal(t, "job-1", h.recs[0].JobID)
	assert.Equal(t, StatusPrepared, h.recs[0].Status)
	assert.Equal(t, noon.Format(DayLayout), h.recs[0].Day)
}

func TestRequest_DeniesAlreadyApplied(t *testing.T) {
	h := &memHistory{}
	g := newTestGate(h, 5, noon)

	_, err := g.Request(context.Background(), "job-1", "Acme")
	require.NoError(t, err)
	require.NoError(t, g.Finalize(context.Background(), "job-1", StatusSubmitted, "ok"))

	dec, err := g.Request(context.Background(), "job-1", "Acme")
	require.NoError(t, err)
	assert.False(t, dec.Approved)
	assert.Equal(t, ReasonAlreadyApplied, dec.Reason)
}

func TestRequest_SubmittedNeverResurrected(t *testing.T) {
	h := &memHistory{}
	g := newTestGate(h, 5, noon)

	_, err := g.Request(context.Background(), "job-1", "Acme")
	require.NoError(t, err)
	require.NoError(t, g.Finalize(context.Background(), "job-1", StatusSubmitted, "ok"))

	// Even on a later day, a submitted application is never repeated.
	g.now = func() time.Time { return noon.AddDate(0, 0, 3) }
	dec, err := g.Request(context.Background(), "job-1", "Acme")
	require.NoError(t, err)
	assert.False(t, dec.Approved)
	assert.Equal(t, ReasonAlreadyApplied, dec.Reason)
}

func TestRequest_OpenReservationBlocksRetry(t *testing.T) {
	h := &memHistory{}
	g := newTestGate(h, 5, noon)

	_, err := g.Request(context.Background(), "job-1", "Acme")
	require.NoError(t, err)

	// Simulates a crash between approval and packaging: the PREPARED row
	// still blocks re-application.
	dec, err := g.Request(context.Background(), "job-1", "Acme")
	require.NoError(t, err)
	assert.False(t, dec.Approved)
	assert.Equal(t, ReasonAlreadyApplied, dec.Reason)
}

func TestRequest_DeniesWhenCapReached(t *testing.T) {
	h := &memHistory{}
	g := newTestGate(h, 5, noon)

	for i := 0; i < 5; i++ {
		jobID := fmt.Sprintf("job-%d", i)
		dec, err := g.Request(context.Background(), jobID, "Acme")
		require.NoError(t, err)
		require.True(t, dec.Approved)
		require.NoError(t, g.Finalize(context.Background(), jobID, StatusSubmitted, "ok"))
	}

	dec, err := g.Request(context.Background(), "job-6", "Acme")
	require.NoError(t, err)
	assert.False(t, dec.Approved)
	assert.Equal(t, ReasonDailyCapReached, dec.Reason)
}

func TestRequest_CapResetsNextDay(t *testing.T) {
	h := &memHistory{}
	g := newTestGate(h, 1, noon)

	dec, err := g.Request(context.Background(), "job-1", "Acme")
	require.NoError(t, err)
	require.True(t, dec.Approved)
	require.NoError(t, g.Finalize(context.Background(), "job-1", StatusSubmitted, "ok"))

	dec, err = g.Request(context.Background(), "job-2", "Acme")
	require.NoError(t, err)
	require.False(t, dec.Approved)

	// The day is evaluated at Request time, so a cycle crossing midnight
	// gets fresh headroom.
	g.now = func() time.Time { return noon.AddDate(0, 0, 1) }
	dec, err = g.Request(context.Background(), "job-2", "Acme")
	require.NoError(t, err)
	assert.True(t, dec.Approved)
}

func TestRequest_FailedAttemptAllowsRetryAndCountsAgain(t *testing.T) {
	h := &memHistory{}
	g := newTestGate(h, 5, noon)

	_, err := g.Request(context.Background(), "job-1", "Acme")
	require.NoError(t, err)
	require.NoError(t, g.Finalize(context.Background(), "job-1", StatusFailed, "form rejected"))

	// Failed attempts release the job for retry …
	dec, err := g.Request(context.Background(), "job-1", "Acme")
	require.NoError(t, err)
	assert.True(t, dec.Approved)

	// … and the retry consumes a fresh slot.
	day := noon.Format(DayLayout)
	n, err := h.CountNonFailed(context.Background(), day)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	require.Len(t, h.recs, 2)
}

func TestRequest_FailedAttemptsDoNotConsumeCap(t *testing.T) {
	h := &memHistory{}
	g := newTestGate(h, 2, noon)

	for _, jobID := range []string{"job-1", "job-2"} {
		_, err := g.Request(context.Background(), jobID, "Acme")
		require.NoError(t, err)
		require.NoError(t, g.Finalize(context.Background(), jobID, StatusFailed, "boom"))
	}

	// Both slots were released by the failures.
	dec, err := g.Request(context.Background(), "job-3", "Acme")
	require.NoError(t, err)
	assert.True(t, dec.Approved)
}

func TestFinalize_RejectsUnknownTarget(t *testing.T) {
	h := &memHistory{}
	g := newTestGate(h, 5, noon)

	_, err := g.Request(context.Background(), "job-1", "Acme")
	require.NoError(t, err)

	assert.Error(t, g.Finalize(context.Background(), "job-1", StatusPrepared, ""))
	assert.Error(t, g.Finalize(context.Background(), "job-1", Status("DONE"), ""))
}

func TestFinalize_WithoutReservation(t *testing.T) {
	g := newTestGate(&memHistory{}, 5, noon)
	assert.Error(t, g.Finalize(context.Background(), "job-1", StatusSubmitted, "ok"))
}

func TestRequest_SurfacesStoreErrors(t *testing.T) {
	g := newTestGate(&memHistory{failAll: true}, 5, noon)
	_, err := g.Request(context.Background(), "job-1", "Acme")
	assert.Error(t, err)
}
