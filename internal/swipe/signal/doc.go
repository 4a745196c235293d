// Package signal turns one captured gesture into a SwipeSignal: the
// normalized path plus every derived geometric feature candidate scoring
// needs (vertices, dwells, anchors, key sets, adaptive sigma).
//
// Build runs once per gesture. The returned SwipeSignal is immutable and
// may be read concurrently by any number of scoring calls.
//
// Dependency rule: signal may import keymap and touch, never score or rank.
package signal
