// Package keymap owns the key-geometry layer of the swipe data model.
//
// Responsibilities: key layout description, per-key anchor positions,
// key pitch estimation, density-adaptive tolerance radii, and precomputed
// key neighborhoods for adjacency rescue scoring.
// Key types: Layout, Geometry, Neighborhood.
//
// Everything here is precomputed once per layout or size change and read
// concurrently by any number of recognition passes; Geometry is immutable
// after NewGeometry returns.
//
// Dependency rule: keymap depends only on the standard library and
// internal/units. No signal, scoring, or dictionary code is allowed here.
package keymap
