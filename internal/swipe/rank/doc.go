// Package rank turns scored candidates into a gesture's ranked
// recognition output and orchestrates the whole pipeline behind a single
// Recognize call: signal build, candidate scoring, sort, truncate.
//
// Dependency rule: rank may import any other swipe package; nothing under
// internal/swipe imports rank.
package rank
