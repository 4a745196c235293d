package eval

import (
	"sort"
	"time"

	"github.com/google/uuid"
	"gonum.org/v1/gonum/stat"

	"github.com/featherkey/swipekit/internal/monitoring"
	"github.com/featherkey/swipekit/internal/swipe/keymap"
	"github.com/featherkey/swipekit/internal/swipe/lexicon"
	"github.com/featherkey/swipekit/internal/swipe/rank"
	"github.com/featherkey/swipekit/internal/timeutil"
)

// HarnessConfig tunes a harness run.
type HarnessConfig struct {
	// TopN is how many ranked words to record per case. Zero means
	// rank.DefaultTopN. This caps what is persisted; ranks and prune
	// losses are always computed over the full candidate list.
	TopN int

	// Clock measures per-case latency; nil means the real clock. Tests
	// inject a mock for deterministic timing.
	Clock timeutil.Clock

	// LogCases enables per-case diagnostic logging.
	LogCases bool
}

// CaseResult is the outcome of one labeled gesture.
type CaseResult struct {
	CaseID   string `json:"case_id"`
	Expected string `json:"expected"`

	// Rank is the expected word's 1-based position in the ranked output;
	// 0 when the word did not appear.
	Rank int `json:"rank"`

	// Residual is the expected word's residual, or 1 when the word was
	// absent from the output.
	Residual float64 `json:"residual"`

	// Pruned is set when the expected word is in the lexicon but was
	// eliminated before ranking. Out-of-vocabulary words are misses,
	// not prune losses.
	Pruned bool `json:"pruned,omitempty"`

	// Degenerate is set when the gesture was too short to analyze.
	Degenerate bool `json:"degenerate,omitempty"`

	Top     []string      `json:"top"`
	Elapsed time.Duration `json:"elapsed_ns"`
}

// Report aggregates one harness run over a corpus.
type Report struct {
	RunID     uuid.UUID `json:"run_id"`
	Corpus    string    `json:"corpus"`
	Layout    string    `json:"layout"`
	StartedAt time.Time `json:"started_at"`

	LexiconSize int `json:"lexicon_size"`
	CaseCount   int `json:"case_count"`

	// Top1Rate and Top3Rate are fractions in [0,1].
	Top1Rate float64 `json:"top1_rate"`
	Top3Rate float64 `json:"top3_rate"`

	// MRR is the mean reciprocal rank of the expected word; absent
	// words contribute zero.
	MRR float64 `json:"mrr"`

	// MeanResidual is the mean expected-word residual across all cases,
	// counting absent words as 1.
	MeanResidual float64 `json:"mean_residual"`

	// PruneLosses counts cases whose expected word was in the lexicon
	// but eliminated before ranking.
	PruneLosses int `json:"prune_losses"`

	MeanElapsedUs float64 `json:"mean_elapsed_us"`
	P95ElapsedUs  float64 `json:"p95_elapsed_us"`

	Cases []CaseResult `json:"cases"`
}

// Harness replays labeled gestures through the recognition pipeline and
// aggregates quality metrics. It ranks at full dictionary depth so the
// expected word's true rank is visible even when it falls outside the
// window a live keyboard would show. Runs are sequential.
type Harness struct {
	rec   *rank.Recognizer
	clock timeutil.Clock
	cfg   HarnessConfig
}

// NewHarness builds a harness over a layout and dictionary. opts carries
// the signal and scoring parameters under evaluation; its TopN is
// ignored in favor of full-depth ranking.
func NewHarness(geom *keymap.Geometry, lex *lexicon.Lexicon, opts rank.Options, cfg HarnessConfig) (*Harness, error) {
	if lex != nil && lex.Len() > 0 {
		opts.TopN = lex.Len()
	}
	rec, err := rank.NewRecognizer(geom, lex, opts)
	if err != nil {
		return nil, err
	}
	if cfg.TopN <= 0 {
		cfg.TopN = rank.DefaultTopN
	}
	clock := cfg.Clock
	if clock == nil {
		clock = timeutil.RealClock{}
	}
	return &Harness{rec: rec, clock: clock, cfg: cfg}, nil
}

// Run replays every case in the corpus and returns the aggregated
// report. Recognition never fails on a gesture, so neither does a run;
// bad cases surface as misses in the metrics.
func (h *Harness) Run(corpus *Corpus) *Report {
	rep := &Report{
		RunID:       uuid.New(),
		Corpus:      corpus.Name,
		Layout:      corpus.Layout,
		StartedAt:   h.clock.Now(),
		LexiconSize: h.rec.Lexicon().Len(),
		CaseCount:   len(corpus.Cases),
		Cases:       make([]CaseResult, 0, len(corpus.Cases)),
	}

	var (
		top1, top3  int
		mrrSum      float64
		residualSum float64
		elapsedUs   = make([]float64, 0, len(corpus.Cases))
	)

	for i := range corpus.Cases {
		cs := &corpus.Cases[i]
		cr := h.runCase(cs)
		rep.Cases = append(rep.Cases, cr)

		if cr.Rank == 1 {
			top1++
		}
		if cr.Rank >= 1 && cr.Rank <= 3 {
			top3++
		}
		if cr.Rank > 0 {
			mrrSum += 1.0 / float64(cr.Rank)
		}
		if cr.Pruned {
			rep.PruneLosses++
		}
		residualSum += cr.Residual
		elapsedUs = append(elapsedUs, float64(cr.Elapsed.Microseconds()))
	}

	if rep.CaseCount > 0 {
		n := float64(rep.CaseCount)
		rep.Top1Rate = float64(top1) / n
		rep.Top3Rate = float64(top3) / n
		rep.MRR = mrrSum / n
		rep.MeanResidual = residualSum / n

		rep.MeanElapsedUs = stat.Mean(elapsedUs, nil)
		sort.Float64s(elapsedUs)
		rep.P95ElapsedUs = stat.Quantile(0.95, stat.Empirical, elapsedUs, nil)
	}

	monitoring.Logf("[EvalHarness] run %s over %q: %d cases, top1 %.1f%%, top3 %.1f%%, mrr %.3f, %d prune losses",
		rep.RunID, rep.Corpus, rep.CaseCount, rep.Top1Rate*100, rep.Top3Rate*100, rep.MRR, rep.PruneLosses)
	return rep
}

func (h *Harness) runCase(cs *Case) CaseResult {
	cr := CaseResult{CaseID: cs.ID, Expected: cs.Expected}

	points := cs.SwipePoints()
	start := h.clock.Now()
	res := h.rec.Recognize(points)
	cr.Elapsed = h.clock.Since(start)
	cr.Degenerate = res.Degenerate

	expected := lexicon.Normalize(cs.Expected)
	cr.Residual = 1.0
	for i := range res.Words {
		if i < h.cfg.TopN {
			cr.Top = append(cr.Top, res.Words[i].Word)
		}
		if res.Words[i].Word == expected {
			cr.Rank = i + 1
			cr.Residual = res.Words[i].Residual
		}
	}

	// Full-depth ranking means an in-lexicon word missing from Words was
	// eliminated before scoring, not cut off by the result window.
	if cr.Rank == 0 && !res.Degenerate {
		if _, inLexicon := h.rec.Lexicon().Lookup(expected); inLexicon {
			cr.Pruned = true
		}
	}

	if h.cfg.LogCases {
		monitoring.Logf("[EvalHarness] case %s: expected %q rank %d residual %.3f in %s",
			cr.CaseID, cr.Expected, cr.Rank, cr.Residual, cr.Elapsed)
	}
	return cr
}
