package quiz

import (
	"sync/atomic"
	"testing"
	"time"
)

func TestCountdown_FiresOnceAfterDeadline(t *testing.T) {
	var fired atomic.Int32
	c := startCountdown(time.Now().Add(500*time.Millisecond), func() {
		fired.Add(1)
	})
	defer c.Stop()

	deadline := time.Now().Add(5 * time.Second)
	for fired.Load() == 0 && time.Now().Before(deadline) {
		time.Sleep(50 * time.Millisecond)
	}
	if fired.Load() != 1 {
		t.Fatalf("fired = %d, want 1", fired.Load())
	}

	// The countdown self-cancels after firing; no second callback.
	time.Sleep(1500 * time.Millisecond)
	if fired.Load() != 1 {
		t.Errorf("fired = %d after self-cancel, want 1", fired.Load())
	}
}

func TestCountdown_StopPreventsFiring(t *testing.T) {
	var fired atomic.Int32
	c := startCountdown(time.Now().Add(1200*time.Millisecond), func() {
		fired.Add(1)
	})
	c.Stop()
	c.Stop() // safe to call twice

	time.Sleep(2 * time.Second)
	if fired.Load() != 0 {
		t.Errorf("fired = %d after Stop, want 0", fired.Load())
	}
}

func TestCountdown_RemainingDerivedFromDeadline(t *testing.T) {
	deadline := time.Now().Add(time.Hour)
	c := startCountdown(deadline, func() {})
	defer c.Stop()

	now := deadline.Add(-10 * time.Minute)
	if got := c.Remaining(now); got != 10*time.Minute {
		t.Errorf("Remaining = %v, want 10m", got)
	}
	if got := c.Remaining(deadline.Add(time.Minute)); got != 0 {
		t.Errorf("Remaining past deadline = %v, want 0", got)
	}
}

func TestSession_RemainingOnlyForTimedSessions(t *testing.T) {
	untimed := startedSession(t, SessionConfig{}, testQuestions())
	if _, ok := untimed.Remaining(); ok {
		t.Error("untimed session should report no remaining time")
	}

	timed := startedSession(t, SessionConfig{TimeLimit: time.Hour}, testQuestions())
	defer func() { _ = timed.Abandon() }()
	remaining, ok := timed.Remaining()
	if !ok {
		t.Fatal("timed session should report remaining time")
	}
	if remaining <= 0 || remaining > time.Hour {
		t.Errorf("Remaining = %v, want within (0, 1h]", remaining)
	}
}
