package gate_test

import (
	"testing"

	"jobmate/alert-service/internal/gate"
)

// ── ParseStatus ────────────────────────────────────────────────────────────

func TestParseStatus_ValidValues(t *testing.T) {
	valid := []string{"PREPARED", "SUBMITTED", "FAILED"}
	for _, s := range valid {
		got, err := gate.ParseStatus(s)
		if err != nil {
			t.Errorf("ParseStatus(%q) returned unexpected error: %v", s, err)
		}
		if string(got) != s {
			t.Errorf("ParseStatus(%q) = %q, want %q", s, got, s)
		}
	}
}

func TestParseStatus_InvalidValue(t *testing.T) {
	_, err := gate.ParseStatus("PENDING")
	if err == nil {
		t.Error("ParseStatus(\"PENDING\") expected error, got nil")
	}
}

func TestParseStatus_EmptyString(t *testing.T) {
	_, err := gate.ParseStatus("")
	if err == nil {
		t.Error("ParseStatus(\"\") expected error, got nil")
	}
}

// ── IsTransitionAllowed ────────────────────────────────────────────────────

func TestIsTransitionAllowed_FromPrepared(t *testing.T) {
	for _, to := range []gate.Status{gate.StatusSubmitted, gate.StatusFailed} {
		if !gate.IsTransitionAllowed(gate.StatusPrepared, to) {
			t.Errorf("IsTransitionAllowed(PREPARED → %s) should be true", to)
		}
	}
}

func TestIsTransitionAllowed_FromTerminal(t *testing.T) {
	terminals := []gate.Status{gate.StatusSubmitted, gate.StatusFailed}
	targets := []gate.Status{gate.StatusPrepared, gate.StatusSubmitted, gate.StatusFailed}
	for _, from := range terminals {
		for _, to := range targets {
			if gate.IsTransitionAllowed(from, to) {
				t.Errorf("IsTransitionAllowed(%s → %s) should be false (terminal state)", from, to)
			}
		}
	}
}

func TestIsTransitionAllowed_SelfLoop(t *testing.T) {
	if gate.IsTransitionAllowed(gate.StatusPrepared, gate.StatusPrepared) {
		t.Error("IsTransitionAllowed(PREPARED → PREPARED) should be false")
	}
}

// ── CountsTowardCap ────────────────────────────────────────────────────────

func TestCountsTowardCap(t *testing.T) {
	if !gate.CountsTowardCap(gate.StatusPrepared) {
		t.Error("CountsTowardCap(PREPARED) should be true")
	}
	if !gate.CountsTowardCap(gate.StatusSubmitted) {
		t.Error("CountsTowardCap(SUBMITTED) should be true")
	}
	if gate.CountsTowardCap(gate.StatusFailed) {
		t.Error("CountsTowardCap(FAILED) should be false")
	}
}
