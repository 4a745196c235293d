package rank

import (
	"fmt"
	"runtime"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/featherkey/swipekit/internal/monitoring"
	"github.com/featherkey/swipekit/internal/swipe/keymap"
	"github.com/featherkey/swipekit/internal/swipe/lexicon"
	"github.com/featherkey/swipekit/internal/swipe/score"
	"github.com/featherkey/swipekit/internal/swipe/signal"
	"github.com/featherkey/swipekit/internal/swipe/touch"
)

// DefaultTopN is the ranked result length exposed to the commit layer.
const DefaultTopN = 5

// Options configures one Recognizer. Zero-value fields fall back to
// defaults; Workers 0 means one scoring worker per available CPU.
type Options struct {
	Signal  signal.Params
	Score   score.Params
	TopN    int
	Workers int
}

// DefaultOptions returns the tuned defaults: serial scoring, top 5.
func DefaultOptions() Options {
	return Options{
		Signal:  signal.DefaultParams(),
		Score:   score.DefaultParams(),
		TopN:    DefaultTopN,
		Workers: 1,
	}
}

// Result is one recognition pass over one gesture. Words is ordered
// best-first and may be empty, which tells the caller to fall back to
// normal typing. The ambiguity and degeneracy flags are advisory hints
// for UI layers; they do not change ranking.
type Result struct {
	PassID uuid.UUID
	Words  []score.CandidateResult

	Degenerate     bool
	StartAmbiguous bool
	EndAmbiguous   bool

	// Signal is the analysis the pass scored against, kept for
	// diagnostics and visualization. Read-only.
	Signal *signal.SwipeSignal

	ScoredCount int
	PrunedCount int
	Elapsed     time.Duration
}

// Recognizer runs the full pipeline for one keyboard instance: layout
// geometry and dictionary snapshot in, ranked words out. Safe for
// sequential reuse across gestures; one recognition pass is in flight at
// a time per Recognizer.
type Recognizer struct {
	geom *keymap.Geometry
	lex  *lexicon.Lexicon
	opts Options

	// serial-mode scorer, reused across passes
	scorer *score.Scorer
}

// NewRecognizer builds a recognizer over a layout and dictionary.
func NewRecognizer(geom *keymap.Geometry, lex *lexicon.Lexicon, opts Options) (*Recognizer, error) {
	if geom == nil {
		return nil, fmt.Errorf("rank: nil geometry")
	}
	if lex == nil {
		return nil, fmt.Errorf("rank: nil lexicon")
	}
	if opts.TopN <= 0 {
		opts.TopN = DefaultTopN
	}
	if opts.Workers < 0 {
		opts.Workers = 1
	}
	return &Recognizer{
		geom:   geom,
		lex:    lex,
		opts:   opts,
		scorer: score.NewScorer(geom, opts.Score),
	}, nil
}

// Lexicon returns the dictionary snapshot the recognizer scores against.
func (r *Recognizer) Lexicon() *lexicon.Lexicon { return r.lex }

// Geometry returns the layout geometry the recognizer was built over.
func (r *Recognizer) Geometry() *keymap.Geometry { return r.geom }

// Recognize analyzes one captured gesture and returns the ranked
// candidates. It never fails: degenerate input or an empty dictionary
// yield an empty Words list.
func (r *Recognizer) Recognize(points []touch.SwipePoint) *Result {
	start := time.Now()
	res := &Result{PassID: uuid.New()}

	sig := signal.Build(points, r.geom, r.opts.Signal)
	res.Signal = sig
	res.Degenerate = sig.Degenerate
	if sig.Degenerate {
		res.Elapsed = time.Since(start)
		monitoring.Logf("[Recognizer] pass %s: degenerate gesture (%d samples)", res.PassID, len(points))
		return res
	}
	res.StartAmbiguous = sig.StartAnchor.IsAmbiguous
	res.EndAmbiguous = sig.EndAnchor.IsAmbiguous

	entries := r.lex.Entries()
	results := make([]score.CandidateResult, len(entries))
	scored := make([]bool, len(entries))

	workers := r.opts.Workers
	if workers == 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	if workers > len(entries) {
		workers = len(entries)
	}

	if workers <= 1 {
		for i, e := range entries {
			results[i], scored[i] = r.scorer.ScoreCandidate(sig, e)
		}
	} else {
		// One scorer per worker: scratch buffers are never shared between
		// in-flight calls, and each candidate writes only its own slot.
		var g errgroup.Group
		chunk := (len(entries) + workers - 1) / workers
		for w := 0; w < workers; w++ {
			lo := w * chunk
			hi := lo + chunk
			if hi > len(entries) {
				hi = len(entries)
			}
			if lo >= hi {
				break
			}
			g.Go(func() error {
				sc := score.NewScorer(r.geom, r.opts.Score)
				for i := lo; i < hi; i++ {
					results[i], scored[i] = sc.ScoreCandidate(sig, entries[i])
				}
				return nil
			})
		}
		_ = g.Wait() // workers never return errors
	}

	kept := results[:0]
	for i := range results {
		if scored[i] {
			kept = append(kept, results[i])
		}
	}
	res.ScoredCount = len(kept)
	res.PrunedCount = len(entries) - len(kept)
	res.Words = Rank(kept, r.opts.TopN)
	res.Elapsed = time.Since(start)

	if len(res.Words) > 0 {
		monitoring.Logf("[Recognizer] pass %s: %d candidates, %d scored, best %q (%.3f) in %s",
			res.PassID, len(entries), res.ScoredCount, res.Words[0].Word, res.Words[0].CombinedScore, res.Elapsed)
	} else {
		monitoring.Logf("[Recognizer] pass %s: %d candidates, none survived pruning in %s",
			res.PassID, len(entries), res.Elapsed)
	}
	return res
}
