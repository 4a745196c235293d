// Package lexicon owns the dictionary snapshot consumed by candidate
// scoring: words with raw corpus frequencies, normalized frequency scores,
// and coarse frequency tiers.
//
// The snapshot is immutable after New returns and is read concurrently by
// any number of recognition passes. Dictionary persistence and updates are
// external responsibilities; this package only models the already-available
// word list.
//
// Dependency rule: lexicon depends only on the standard library and
// golang.org/x/text.
package lexicon
