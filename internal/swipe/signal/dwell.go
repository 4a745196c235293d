package signal

import (
	"sort"

	"gonum.org/v1/gonum/stat"

	"github.com/featherkey/swipekit/internal/swipe/touch"
)

// Dwell is a sustained low-velocity interval: evidence of intentional key
// selection mid-gesture.
type Dwell struct {
	// Start and End are the inclusive sample range below the velocity
	// threshold.
	Start, End int

	// Center is the index of the velocity minimum inside the range.
	Center int

	DurationNanos int64
}

// Contains reports whether path index i falls inside the dwell.
func (d Dwell) Contains(i int) bool { return i >= d.Start && i <= d.End }

// detectDwells finds runs of samples whose smoothed velocity stays below a
// quantile-derived threshold for at least the minimum duration. The
// threshold is capped relative to the mean so a uniform-speed gesture
// yields no dwells at all.
func detectDwells(points []touch.SwipePoint, meanVel float64, params Params) []Dwell {
	n := len(points)
	if n < 3 || meanVel <= 0 {
		return nil
	}

	velocities := make([]float64, n)
	for i, p := range points {
		velocities[i] = p.Velocity
	}
	sorted := append([]float64(nil), velocities...)
	sort.Float64s(sorted)

	threshold := stat.Quantile(params.DwellVelocityQuantile, stat.Empirical, sorted, nil)
	if ceil := params.DwellMeanVelocityCap * meanVel; threshold > ceil {
		threshold = ceil
	}

	var dwells []Dwell
	for i := 0; i < n; {
		if velocities[i] > threshold {
			i++
			continue
		}
		j := i
		for j+1 < n && velocities[j+1] <= threshold {
			j++
		}
		duration := points[j].TimestampUnixNanos - points[i].TimestampUnixNanos
		if duration >= params.MinDwellDurationNanos {
			center := i
			for k := i + 1; k <= j; k++ {
				if velocities[k] < velocities[center] {
					center = k
				}
			}
			dwells = append(dwells, Dwell{Start: i, End: j, Center: center, DurationNanos: duration})
		}
		i = j + 1
	}
	return dwells
}
