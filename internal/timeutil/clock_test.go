package timeutil

import (
	"testing"
	"time"
)

func TestRealClock_Now(t *testing.T) {
	clock := RealClock{}
	before := time.Now()
	now := clock.Now()
	after := time.Now()

	if now.Before(before) || now.After(after) {
		t.Errorf("Now() = %v, expected between %v and %v", now, before, after)
	}
}

func TestRealClock_Since(t *testing.T) {
	clock := RealClock{}
	past := time.Now().Add(-time.Second)
	d := clock.Since(past)

	if d < time.Second {
		t.Errorf("Since() returned %v, expected >= 1s", d)
	}
}

func TestMockClock_Pinned(t *testing.T) {
	base := time.Unix(1_700_000_000, 0)
	clock := NewMockClock(base)

	if !clock.Now().Equal(base) {
		t.Errorf("Now() = %v, expected %v", clock.Now(), base)
	}
	if d := clock.Since(base); d != 0 {
		t.Errorf("Since(base) = %v, expected 0", d)
	}
	// A pinned clock does not drift between reads.
	if !clock.Now().Equal(clock.Now()) {
		t.Error("consecutive Now() reads differ")
	}
}

func TestMockClock_Advance(t *testing.T) {
	base := time.Unix(1_700_000_000, 0)
	clock := NewMockClock(base)

	clock.Advance(250 * time.Millisecond)
	if d := clock.Since(base); d != 250*time.Millisecond {
		t.Errorf("Since() after Advance = %v, expected 250ms", d)
	}

	clock.Advance(750 * time.Millisecond)
	if d := clock.Since(base); d != time.Second {
		t.Errorf("Since() after second Advance = %v, expected 1s", d)
	}
}

func TestMockClock_Set(t *testing.T) {
	base := time.Unix(1_700_000_000, 0)
	clock := NewMockClock(base)

	clock.Set(base.Add(time.Hour))
	if d := clock.Since(base); d != time.Hour {
		t.Errorf("Since() after Set = %v, expected 1h", d)
	}

	clock.Set(base)
	if !clock.Now().Equal(base) {
		t.Errorf("Now() after Set back = %v, expected %v", clock.Now(), base)
	}
}
