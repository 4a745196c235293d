package score_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/featherkey/swipekit/internal/swipe/keymap"
	"github.com/featherkey/swipekit/internal/swipe/lexicon"
	"github.com/featherkey/swipekit/internal/swipe/score"
	"github.com/featherkey/swipekit/internal/swipe/signal"
	"github.com/featherkey/swipekit/internal/testutil"
)

func buildSignal(t *testing.T, geom *keymap.Geometry, word string, opts testutil.TraceOpts) *signal.SwipeSignal {
	t.Helper()
	points := testutil.TraceWord(t, geom, word, opts)
	sig := signal.Build(points, geom, signal.DefaultParams())
	require.False(t, sig.Degenerate)
	return sig
}

func TestScoreCandidateDeterministic(t *testing.T) {
	t.Parallel()

	geom := testutil.Geometry(t)
	opts := testutil.DefaultTraceOpts()
	opts.JitterPx = 2
	opts.Seed = 7
	sig := buildSignal(t, geom, "hello", opts)

	lex := lexicon.New([]lexicon.WordCount{
		{Word: "hello", Count: 5000},
		{Word: "help", Count: 3000},
		{Word: "hero", Count: 800},
		{Word: "jello", Count: 40},
	})

	scorer := score.NewScorer(geom, score.DefaultParams())

	var first []score.CandidateResult
	var firstOK []bool
	for _, e := range lex.Entries() {
		r, ok := scorer.ScoreCandidate(sig, e)
		first = append(first, r)
		firstOK = append(firstOK, ok)
	}
	for i, e := range lex.Entries() {
		r, ok := scorer.ScoreCandidate(sig, e)
		require.Equal(t, firstOK[i], ok, "word %q", e.Word)
		require.Equal(t, first[i], r, "word %q must score bit-identically", e.Word)
	}
}

func TestScoreCandidateScratchIsolation(t *testing.T) {
	t.Parallel()

	geom := testutil.Geometry(t)
	sig := buildSignal(t, geom, "water", testutil.DefaultTraceOpts())

	lex := lexicon.New([]lexicon.WordCount{
		{Word: "water", Count: 5000},
		{Word: "wa", Count: 10},
	})
	water, ok := lex.Lookup("water")
	require.True(t, ok)
	wa, ok := lex.Lookup("wa")
	require.True(t, ok)

	scorer := score.NewScorer(geom, score.DefaultParams())

	// Scoring a shorter word in between must not leak stale per-letter
	// state into the longer word's rescore.
	r1, ok1 := scorer.ScoreCandidate(sig, water)
	require.True(t, ok1)
	_, _ = scorer.ScoreCandidate(sig, wa)
	r2, ok2 := scorer.ScoreCandidate(sig, water)
	require.True(t, ok2)
	assert.Equal(t, r1, r2)
}

func TestScoreCandidateBoundedOutput(t *testing.T) {
	t.Parallel()

	geom := testutil.Geometry(t)
	lex := lexicon.New([]lexicon.WordCount{
		{Word: "a", Count: 9000},
		{Word: "hi", Count: 8000},
		{Word: "water", Count: 5000},
		{Word: "wate", Count: 2},
		{Word: "mmm", Count: 1},
		{Word: "qwertyuiop", Count: 1},
	})

	for _, gesture := range []string{"water", "hi"} {
		sig := buildSignal(t, geom, gesture, testutil.DefaultTraceOpts())
		scorer := score.NewScorer(geom, score.DefaultParams())

		for _, e := range lex.Entries() {
			r, ok := scorer.ScoreCandidate(sig, e)
			if !ok {
				continue
			}
			assert.GreaterOrEqual(t, r.CombinedScore, 0.0, "%q on %q", e.Word, gesture)
			assert.LessOrEqual(t, r.CombinedScore, 1.0, "%q on %q", e.Word, gesture)
			assert.InDelta(t, 1-r.CombinedScore, r.Residual, 1e-12)
			assert.GreaterOrEqual(t, r.SpatialScore, 0.0)
			assert.LessOrEqual(t, r.SpatialScore, 1.0)
			assert.GreaterOrEqual(t, r.PathCoverage, 0.0)
			assert.LessOrEqual(t, r.PathCoverage, 1.0)
			assert.Len(t, r.LetterPathIndices, len([]rune(e.Word)))
			assert.Equal(t, e.FrequencyScore, r.FrequencyScore)
		}
	}
}

func TestScoreCandidateFrequencyMonotone(t *testing.T) {
	t.Parallel()

	geom := testutil.Geometry(t)
	sig := buildSignal(t, geom, "hat", testutil.DefaultTraceOpts())

	scoreAt := func(count int64) float64 {
		lex := lexicon.New([]lexicon.WordCount{
			{Word: "the", Count: 10000},
			{Word: "hat", Count: count},
		})
		e, ok := lex.Lookup("hat")
		require.True(t, ok)
		r, ok := score.NewScorer(geom, score.DefaultParams()).ScoreCandidate(sig, e)
		require.True(t, ok)
		return r.CombinedScore
	}

	low := scoreAt(10)
	high := scoreAt(5000)
	assert.GreaterOrEqual(t, high, low,
		"raising raw frequency with spatial evidence fixed must not lower the score")
}

func TestScoreCandidateSkipsDegenerateAndEmpty(t *testing.T) {
	t.Parallel()

	geom := testutil.Geometry(t)
	degenerate := signal.Build(nil, geom, signal.DefaultParams())
	scorer := score.NewScorer(geom, score.DefaultParams())

	lex := lexicon.New([]lexicon.WordCount{{Word: "hi", Count: 10}})
	e, _ := lex.Lookup("hi")

	_, ok := scorer.ScoreCandidate(degenerate, e)
	assert.False(t, ok, "degenerate signals score nothing")

	sig := buildSignal(t, geom, "hi", testutil.DefaultTraceOpts())
	_, ok = scorer.ScoreCandidate(sig, lexicon.Entry{})
	assert.False(t, ok, "empty word scores nothing")
}

func TestScoreCandidateSkipsWordWithUnknownKey(t *testing.T) {
	t.Parallel()

	geom := testutil.Geometry(t)
	sig := buildSignal(t, geom, "cafe", testutil.DefaultTraceOpts())

	lex := lexicon.New([]lexicon.WordCount{{Word: "café", Count: 100}})
	e, ok := lex.Lookup("café")
	require.True(t, ok)

	_, scored := score.NewScorer(geom, score.DefaultParams()).ScoreCandidate(sig, e)
	assert.False(t, scored, "a letter with no key skips the candidate, not the batch")
}

func TestPassthroughDemotesMidWordCrossing(t *testing.T) {
	t.Parallel()

	geom := testutil.Geometry(t)
	aPos, _ := geom.Position('a')
	dPos, _ := geom.Position('d')

	// Hold on 'a' and 'd', sweep across 's' at speed: 's' classifies as
	// passthrough, so "asd" needs a stop it never got.
	opts := testutil.DefaultTraceOpts()
	opts.DwellSamples = 8
	points := testutil.TracePoints(t, []keymap.Point{aPos, dPos}, opts)
	sig := signal.Build(points, geom, signal.DefaultParams())
	require.Contains(t, sig.PassthroughKeys, 's')

	lex := lexicon.New([]lexicon.WordCount{
		{Word: "the", Count: 10000},
		{Word: "ad", Count: 100},
		{Word: "asd", Count: 100},
	})
	ad, _ := lex.Lookup("ad")
	asd, _ := lex.Lookup("asd")

	scorer := score.NewScorer(geom, score.DefaultParams())
	cp := score.DefaultParams().Cascade

	rAd, ok := scorer.ScoreCandidate(sig, ad)
	require.True(t, ok)
	rAsd, ok := scorer.ScoreCandidate(sig, asd)
	require.True(t, ok)

	assert.InDelta(t, 1.0, rAd.Factors.Passthrough, 1e-12)
	assert.InDelta(t, cp.PassthroughPenalty1, rAsd.Factors.Passthrough, 1e-12)
	assert.Greater(t, rAd.CombinedScore, rAsd.CombinedScore,
		"crossing a key at speed is evidence against words that need it")
}

func TestPathExcessSevereTier(t *testing.T) {
	t.Parallel()

	geom := testutil.Geometry(t)
	sig := buildSignal(t, geom, "water", testutil.DefaultTraceOpts())

	// The w->a->t->e->r path is roughly 8x the w->e ideal.
	lex := lexicon.New([]lexicon.WordCount{{Word: "we", Count: 9000}})
	we, _ := lex.Lookup("we")

	r, ok := score.NewScorer(geom, score.DefaultParams()).ScoreCandidate(sig, we)
	require.True(t, ok)
	assert.InDelta(t, score.DefaultParams().Cascade.PathExcessSeverePenalty, r.Factors.PathRatio, 1e-12)
}

func TestAmbiguousStartCreditsBothKeys(t *testing.T) {
	t.Parallel()

	geom := testutil.Geometry(t)

	// Start midway between 'a' and 's', end on 'd'.
	points := testutil.TracePoints(t, []keymap.Point{{X: 150, Y: 150}, {X: 300, Y: 150}}, testutil.DefaultTraceOpts())
	sig := signal.Build(points, geom, signal.DefaultParams())
	require.True(t, sig.StartAnchor.IsAmbiguous)

	lex := lexicon.New([]lexicon.WordCount{
		{Word: "ad", Count: 100},
		{Word: "sd", Count: 100},
	})
	ad, _ := lex.Lookup("ad")
	sd, _ := lex.Lookup("sd")

	scorer := score.NewScorer(geom, score.DefaultParams())
	cp := score.DefaultParams().Cascade

	rAd, ok := scorer.ScoreCandidate(sig, ad)
	require.True(t, ok)
	rSd, ok := scorer.ScoreCandidate(sig, sd)
	require.True(t, ok)

	assert.InDelta(t, cp.AnchorAmbiguousBonus, rAd.Factors.AnchorStart, 1e-12)
	assert.InDelta(t, cp.AnchorAmbiguousBonus, rSd.Factors.AnchorStart, 1e-12,
		"neither nearest key is favored off an ambiguous start")
}

func TestTwoLetterWordLeansOnSpatialEvidence(t *testing.T) {
	t.Parallel()

	geom := testutil.Geometry(t)
	sig := buildSignal(t, geom, "hi", testutil.DefaultTraceOpts())

	// "hi" is rare here; "ok" is very common but nowhere near the path.
	lex := lexicon.New([]lexicon.WordCount{
		{Word: "ok", Count: 10000},
		{Word: "hi", Count: 50},
	})
	hi, _ := lex.Lookup("hi")

	r, ok := score.NewScorer(geom, score.DefaultParams()).ScoreCandidate(sig, hi)
	require.True(t, ok)
	assert.Greater(t, r.SpatialScore, score.DefaultParams().Weights.ShortWordSpatialThreshold)
	assert.Greater(t, r.CombinedScore, 0.7,
		"an exact short match scores high despite low frequency")
}

func BenchmarkScoreCandidate(b *testing.B) {
	geom := testutil.Geometry(b)
	opts := testutil.DefaultTraceOpts()
	opts.JitterPx = 2
	points := testutil.TraceWord(b, geom, "together", opts)
	sig := signal.Build(points, geom, signal.DefaultParams())
	if sig.Degenerate {
		b.Fatal("degenerate signal")
	}

	lex := lexicon.New([]lexicon.WordCount{
		{Word: "the", Count: 10000},
		{Word: "together", Count: 9000},
		{Word: "tomorrow", Count: 8000},
		{Word: "gather", Count: 700},
		{Word: "tether", Count: 90},
	})
	entries := lex.Entries()
	scorer := score.NewScorer(geom, score.DefaultParams())

	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = scorer.ScoreCandidate(sig, entries[i%len(entries)])
	}
}
