// Package score turns (SwipeSignal, dictionary entry) pairs into bounded
// candidate scores. It covers the two middle pipeline stages: the cheap
// pruner that rejects incompatible entries in O(word length), and the
// residual scorer that runs the per-letter geometric search plus the
// multiplicative correction cascade on survivors.
//
// A Scorer owns reusable scratch buffers and is NOT safe for concurrent
// use; give each worker its own instance. Scoring itself is pure: same
// signal, same entry, same params, bit-identical result.
//
// Dependency rule: score may import keymap, touch, signal and lexicon,
// never rank.
package score
