package redis

import (
	"errors"
	"testing"
	"time"
)

func TestConnGuard_AllowsUntilThresholdReached(t *testing.T) {
	g := newConnGuard(3, time.Minute)
	boom := errors.New("boom")

	for i := 0; i < 2; i++ {
		if !g.allow() {
			t.Fatalf("expected allow before threshold, iteration %d", i)
		}
		g.report(boom)
	}

	if !g.allow() {
		t.Fatalf("expected allow still true one short of threshold")
	}
}

func TestConnGuard_TripsAtThreshold(t *testing.T) {
	g := newConnGuard(2, time.Minute)
	boom := errors.New("boom")

	g.report(boom)
	g.report(boom)

	if g.allow() {
		t.Fatalf("expected guard to be tripped and reject calls")
	}
}

func TestConnGuard_SuccessResetsFailureCount(t *testing.T) {
	g := newConnGuard(2, time.Minute)
	boom := errors.New("boom")

	g.report(boom)
	g.report(nil)
	g.report(boom)

	if !g.allow() {
		t.Fatalf("expected allow true, success should have reset the failure count")
	}
}

func TestConnGuard_AllowsProbeAfterCooldown(t *testing.T) {
	g := newConnGuard(1, time.Millisecond)
	boom := errors.New("boom")

	g.report(boom)
	if g.allow() {
		t.Fatalf("expected guard tripped immediately after threshold")
	}

	time.Sleep(5 * time.Millisecond)

	if !g.allow() {
		t.Fatalf("expected guard to allow a probe call once cooldown elapsed")
	}
}

func TestConnGuard_ProbeSuccessClearsTrip(t *testing.T) {
	g := newConnGuard(1, time.Millisecond)
	boom := errors.New("boom")

	g.report(boom)
	time.Sleep(5 * time.Millisecond)
	if !g.allow() {
		t.Fatalf("expected probe to be allowed")
	}
	g.report(nil)

	if !g.allow() {
		t.Fatalf("expected guard to stay open after a successful probe")
	}
	if g.tripped {
		t.Fatalf("expected tripped to be cleared after successful probe")
	}
}

func TestConnGuard_ZeroThresholdDisablesGuard(t *testing.T) {
	g := newConnGuard(0, time.Minute)
	boom := errors.New("boom")

	for i := 0; i < 10; i++ {
		g.report(boom)
	}

	if !g.allow() {
		t.Fatalf("expected a zero threshold to disable the guard entirely")
	}
}
