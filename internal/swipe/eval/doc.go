// Package eval runs the accuracy-regression harness: labeled gesture
// corpora in, recognition quality metrics out. It is how tuning changes
// are guarded; the scoring thresholds are heuristics, so every change is
// judged by this harness rather than by inspection.
//
// The harness wraps a rank.Recognizer and replays recorded gestures,
// aggregating top-1/top-3 accuracy, mean reciprocal rank, the expected
// word's residual, prune losses, and per-case latency. Store persists
// runs to SQLite so regressions are visible across commits.
//
// Dependency rule: eval may import any swipe package plus internal/db;
// nothing under internal/swipe imports eval.
package eval
