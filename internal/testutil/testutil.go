// Package testutil provides shared test fixtures: a standard test
// geometry and synthetic gestures traced through key centers with
// deterministic jitter.
//
// All generation is seeded; two calls with the same inputs produce
// identical gestures, so recognition tests stay reproducible.
package testutil

import (
	"math"
	"math/rand"
	"testing"

	"github.com/featherkey/swipekit/internal/swipe/keymap"
	"github.com/featherkey/swipekit/internal/swipe/touch"
)

// TraceOpts controls synthetic gesture generation.
type TraceOpts struct {
	// SamplesPerSegment is the number of interpolated samples between
	// successive trace points. Speed then varies with leg length.
	SamplesPerSegment int

	// SampleSpacingPx, when positive, overrides SamplesPerSegment with a
	// per-leg count of legLength/SampleSpacingPx, giving a constant-speed
	// trace regardless of leg lengths.
	SampleSpacingPx float64

	// IntervalNanos is the timestamp step between samples.
	IntervalNanos int64

	// StartUnixNanos is the first sample's timestamp.
	StartUnixNanos int64

	// JitterPx adds seeded uniform noise in [-JitterPx, +JitterPx] to
	// every sample coordinate.
	JitterPx float64

	// Seed drives the jitter stream.
	Seed int64

	// DwellSamples holds extra stationary samples at every trace point,
	// long enough to register as a dwell when >= 4 at the default
	// interval.
	DwellSamples int
}

// DefaultTraceOpts mimics a 100Hz touch panel at a moderate swipe speed.
func DefaultTraceOpts() TraceOpts {
	return TraceOpts{
		SamplesPerSegment: 8,
		IntervalNanos:     10_000_000, // 10ms
		StartUnixNanos:    1_700_000_000_000_000_000,
		JitterPx:          0,
		Seed:              1,
		DwellSamples:      0,
	}
}

// Geometry returns the standard 1000x300 QWERTY geometry used across
// recognition tests.
func Geometry(t testing.TB) *keymap.Geometry {
	t.Helper()
	geom, err := keymap.NewGeometry(keymap.QWERTY(1000, 300), keymap.DefaultGeometryParams())
	if err != nil {
		t.Fatalf("test geometry: %v", err)
	}
	return geom
}

// TraceWord builds a gesture tracing the word's key centers in order.
// Consecutive repeated letters collapse to one visit, matching how real
// swipes handle double letters.
func TraceWord(t testing.TB, geom *keymap.Geometry, word string, opts TraceOpts) []touch.SwipePoint {
	t.Helper()
	var pts []keymap.Point
	var prev rune
	for i, ch := range word {
		if i > 0 && ch == prev {
			continue
		}
		pos, ok := geom.Position(ch)
		if !ok {
			t.Fatalf("trace word %q: no key for %q", word, ch)
		}
		pts = append(pts, pos)
		prev = ch
	}
	return TracePoints(t, pts, opts)
}

// TracePoints builds a gesture through the given points, interpolating
// SamplesPerSegment samples per leg, holding DwellSamples extra samples at
// every point, and deriving smoothed velocities the same way live capture
// does.
func TracePoints(t testing.TB, pts []keymap.Point, opts TraceOpts) []touch.SwipePoint {
	t.Helper()
	if len(pts) == 0 {
		t.Fatal("trace: no points")
	}
	if opts.SamplesPerSegment < 1 {
		opts.SamplesPerSegment = 1
	}
	if opts.IntervalNanos <= 0 {
		opts.IntervalNanos = 10_000_000
	}

	rng := rand.New(rand.NewSource(opts.Seed))
	jitter := func() float64 {
		if opts.JitterPx == 0 {
			return 0
		}
		return (rng.Float64()*2 - 1) * opts.JitterPx
	}

	var samples []touch.Sample
	ts := opts.StartUnixNanos
	push := func(x, y float64) {
		samples = append(samples, touch.Sample{
			X:                  x + jitter(),
			Y:                  y + jitter(),
			TimestampUnixNanos: ts,
		})
		ts += opts.IntervalNanos
	}

	push(pts[0].X, pts[0].Y)
	for d := 0; d < opts.DwellSamples; d++ {
		push(pts[0].X, pts[0].Y)
	}
	for i := 1; i < len(pts); i++ {
		a, b := pts[i-1], pts[i]
		count := opts.SamplesPerSegment
		if opts.SampleSpacingPx > 0 {
			count = int(math.Round(a.Dist(b) / opts.SampleSpacingPx))
			if count < 1 {
				count = 1
			}
		}
		for s := 1; s <= count; s++ {
			f := float64(s) / float64(count)
			push(a.X+(b.X-a.X)*f, a.Y+(b.Y-a.Y)*f)
		}
		for d := 0; d < opts.DwellSamples; d++ {
			push(b.X, b.Y)
		}
	}

	return touch.Derive(samples, touch.DefaultBuilderParams())
}
