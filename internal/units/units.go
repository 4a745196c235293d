// Package units provides shared time and velocity conversions for touch input.
//
// Touch samples carry unix-nanosecond timestamps; geometry works in screen
// pixels. Velocities are expressed in pixels per second throughout the
// recognizer so thresholds stay comparable across sampling rates.
package units

import "time"

// NanosPerSecond is the number of nanoseconds in one second.
const NanosPerSecond = 1e9

// NanosPerMilli is the number of nanoseconds in one millisecond.
const NanosPerMilli = 1e6

// MinSampleIntervalNanos floors the dt used for velocity so duplicate or
// near-duplicate timestamps from jittery touch drivers cannot produce
// infinite speeds. 1ms matches the fastest realistic touch scan interval.
const MinSampleIntervalNanos int64 = 1 * NanosPerMilli

// PxPerSecond converts a pixel displacement over dtNanos into px/s.
// dt is floored to MinSampleIntervalNanos.
func PxPerSecond(distPx float64, dtNanos int64) float64 {
	if dtNanos < MinSampleIntervalNanos {
		dtNanos = MinSampleIntervalNanos
	}
	return distPx * NanosPerSecond / float64(dtNanos)
}

// Millis converts unix nanoseconds to fractional milliseconds.
func Millis(nanos int64) float64 {
	return float64(nanos) / NanosPerMilli
}

// DurationNanos converts a time.Duration to int64 nanoseconds.
func DurationNanos(d time.Duration) int64 {
	return d.Nanoseconds()
}

// NanosToDuration converts int64 nanoseconds to a time.Duration.
func NanosToDuration(nanos int64) time.Duration {
	return time.Duration(nanos)
}
