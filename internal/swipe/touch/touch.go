package touch

import (
	"math"

	"github.com/featherkey/swipekit/internal/monitoring"
	"github.com/featherkey/swipekit/internal/units"
)

// DefaultVelocitySmoothingWindow is the moving-average window (in samples)
// applied to raw per-point velocities. Touch controllers quantize timestamps
// coarsely, so unsmoothed velocities alternate between spikes and zeros.
const DefaultVelocitySmoothingWindow = 3

// Sample is one raw touch event from the input layer.
type Sample struct {
	X, Y               float64
	TimestampUnixNanos int64
}

// SwipePoint is one sample of a captured gesture with its derived velocity
// in px/s. Sequences of SwipePoints are immutable once a gesture ends.
type SwipePoint struct {
	X, Y               float64
	TimestampUnixNanos int64
	Velocity           float64
}

// Point2 returns the spatial coordinates as a pair.
func (p SwipePoint) Point2() (float64, float64) { return p.X, p.Y }

// BuilderParams tunes gesture capture.
type BuilderParams struct {
	VelocitySmoothingWindow int
}

// DefaultBuilderParams returns the tuned defaults.
func DefaultBuilderParams() BuilderParams {
	return BuilderParams{VelocitySmoothingWindow: DefaultVelocitySmoothingWindow}
}

// GestureBuilder accumulates raw samples between Begin and End. Out-of-order
// timestamps are dropped (counted) rather than reordered: the gesture
// sequence must stay monotone for the temporal matching downstream.
type GestureBuilder struct {
	params  BuilderParams
	active  bool
	samples []Sample
	dropped int
}

// NewGestureBuilder creates a builder for one pointer.
func NewGestureBuilder(params BuilderParams) *GestureBuilder {
	if params.VelocitySmoothingWindow <= 0 {
		params.VelocitySmoothingWindow = DefaultVelocitySmoothingWindow
	}
	return &GestureBuilder{params: params}
}

// Begin starts a new gesture at the touch-down sample. Any gesture in
// flight is discarded.
func (b *GestureBuilder) Begin(s Sample) {
	if b.active && len(b.samples) > 0 {
		monitoring.Logf("[GestureBuilder] discarding in-flight gesture with %d samples", len(b.samples))
	}
	b.active = true
	b.samples = b.samples[:0]
	b.dropped = 0
	b.samples = append(b.samples, s)
}

// Add appends a move sample. Samples before Begin or with a timestamp
// earlier than the previous sample are dropped.
func (b *GestureBuilder) Add(s Sample) {
	if !b.active {
		b.dropped++
		return
	}
	if last := b.samples[len(b.samples)-1]; s.TimestampUnixNanos < last.TimestampUnixNanos {
		b.dropped++
		return
	}
	b.samples = append(b.samples, s)
}

// DroppedCount returns the number of samples rejected since Begin.
func (b *GestureBuilder) DroppedCount() int { return b.dropped }

// End closes the gesture at the touch-up sample and returns the captured
// points with smoothed velocities. The builder is reset for the next
// gesture. A nil End sample is allowed when touch-up carries no position.
func (b *GestureBuilder) End(s *Sample) []SwipePoint {
	if !b.active {
		return nil
	}
	if s != nil {
		b.Add(*s)
	}
	if b.dropped > 0 {
		monitoring.Logf("[GestureBuilder] dropped %d out-of-order samples", b.dropped)
	}
	points := Derive(b.samples, b.params)
	b.active = false
	b.samples = b.samples[:0]
	return points
}

// Derive converts a complete raw sample sequence into SwipePoints with
// smoothed velocities. The input is not modified. Fewer than two samples
// yield zero velocities; downstream signal building treats such captures
// as degenerate.
func Derive(samples []Sample, params BuilderParams) []SwipePoint {
	if params.VelocitySmoothingWindow <= 0 {
		params.VelocitySmoothingWindow = DefaultVelocitySmoothingWindow
	}

	points := make([]SwipePoint, len(samples))
	for i, s := range samples {
		points[i] = SwipePoint{X: s.X, Y: s.Y, TimestampUnixNanos: s.TimestampUnixNanos}
	}
	if len(points) < 2 {
		return points
	}

	raw := make([]float64, len(points))
	for i := 1; i < len(points); i++ {
		dx := points[i].X - points[i-1].X
		dy := points[i].Y - points[i-1].Y
		dist := math.Sqrt(dx*dx + dy*dy)
		raw[i] = units.PxPerSecond(dist, points[i].TimestampUnixNanos-points[i-1].TimestampUnixNanos)
	}
	raw[0] = raw[1]

	half := params.VelocitySmoothingWindow / 2
	for i := range points {
		lo := i - half
		if lo < 0 {
			lo = 0
		}
		hi := i + half
		if hi > len(raw)-1 {
			hi = len(raw) - 1
		}
		var sum float64
		for j := lo; j <= hi; j++ {
			sum += raw[j]
		}
		points[i].Velocity = sum / float64(hi-lo+1)
	}
	return points
}

// PathLength returns the total arc length of a point sequence.
func PathLength(points []SwipePoint) float64 {
	var total float64
	for i := 1; i < len(points); i++ {
		dx := points[i].X - points[i-1].X
		dy := points[i].Y - points[i-1].Y
		total += math.Sqrt(dx*dx + dy*dy)
	}
	return total
}
