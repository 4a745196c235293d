// Package touch owns gesture capture: the raw (x, y, t) sample stream
// between touch-down and touch-up becomes one immutable []SwipePoint with
// smoothed per-point velocities.
//
// Key types: Sample (raw), SwipePoint (derived), GestureBuilder
// (accumulator). One GestureBuilder instance serves one pointer; it is not
// safe for concurrent use.
//
// Dependency rule: touch depends only on the standard library,
// internal/units and internal/monitoring.
package touch
