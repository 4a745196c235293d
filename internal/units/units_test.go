package units

import (
	"testing"
	"time"
)

func TestPxPerSecond(t *testing.T) {
	tests := []struct {
		name     string
		distPx   float64
		dtNanos  int64
		expected float64
	}{
		{"one px over one second", 1, NanosPerSecond, 1},
		{"100px over 50ms", 100, 50 * NanosPerMilli, 2000},
		{"zero distance", 0, 10 * NanosPerMilli, 0},
		{"zero dt floored to 1ms", 5, 0, 5000},
		{"negative dt floored to 1ms", 5, -300, 5000},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := PxPerSecond(tt.distPx, tt.dtNanos)
			if got != tt.expected {
				t.Errorf("PxPerSecond(%v, %v) = %v, want %v", tt.distPx, tt.dtNanos, got, tt.expected)
			}
		})
	}
}

func TestMillis(t *testing.T) {
	if got := Millis(1500 * int64(NanosPerMilli)); got != 1500 {
		t.Errorf("Millis = %v, want 1500", got)
	}
	if got := Millis(500000); got != 0.5 {
		t.Errorf("Millis = %v, want 0.5", got)
	}
}

func TestDurationRoundTrip(t *testing.T) {
	d := 125 * time.Millisecond
	if got := NanosToDuration(DurationNanos(d)); got != d {
		t.Errorf("round trip = %v, want %v", got, d)
	}
}
