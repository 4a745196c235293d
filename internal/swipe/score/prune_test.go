package score_test

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/featherkey/swipekit/internal/swipe/keymap"
	"github.com/featherkey/swipekit/internal/swipe/lexicon"
	"github.com/featherkey/swipekit/internal/swipe/score"
	"github.com/featherkey/swipekit/internal/swipe/signal"
	"github.com/featherkey/swipekit/internal/testutil"
)

func TestPruneRejectsZeroBoundsOverlap(t *testing.T) {
	t.Parallel()

	geom := testutil.Geometry(t)
	sig := buildSignal(t, geom, "hi", testutil.DefaultTraceOpts())

	lex := lexicon.New([]lexicon.WordCount{{Word: "zap", Count: 9000}})
	zap, _ := lex.Lookup("zap")

	_, ok := score.NewScorer(geom, score.DefaultParams()).ScoreCandidate(sig, zap)
	assert.False(t, ok, "letters entirely outside the path envelope never score")
}

func TestPruneHighFrequencyDiscount(t *testing.T) {
	t.Parallel()

	geom := testutil.Geometry(t)
	sig := buildSignal(t, geom, "water", testutil.DefaultTraceOpts())

	// Filler entries push "wonderland" past rank 1000 while "dragonfly"
	// stays top-100. Both sit in the discount band for long words: only
	// five of dragonfly's nine unique letters and five of wonderland's
	// eight are inside the w->a->t->e->r envelope.
	words := []lexicon.WordCount{
		{Word: "dragonfly", Count: 9000},
		{Word: "wonderland", Count: 1},
	}
	for i := 0; i < 1050; i++ {
		words = append(words, lexicon.WordCount{
			Word:  fmt.Sprintf("fill%c%c%c", 'a'+i/676, 'a'+(i/26)%26, 'a'+i%26),
			Count: 5,
		})
	}
	lex := lexicon.New(words)

	p := score.DefaultParams()
	dragonfly, _ := lex.Lookup("dragonfly")
	require.GreaterOrEqual(t, dragonfly.Tier, p.Prune.HighFrequencyTier)
	wonderland, _ := lex.Lookup("wonderland")
	require.Less(t, wonderland.Tier, p.Prune.HighFrequencyTier)

	scorer := score.NewScorer(geom, p)
	_, ok := scorer.ScoreCandidate(sig, dragonfly)
	assert.True(t, ok, "a top-tier word earns one coverage discount step")
	_, ok = scorer.ScoreCandidate(sig, wonderland)
	assert.False(t, ok, "the same coverage drops a rare word outright")
}

func TestPruneVertexCompatibility(t *testing.T) {
	t.Parallel()

	geom := testutil.Geometry(t)

	// A zigzag across eight interior corners cannot encode a 2-letter
	// word, however well its two keys sit in bounds.
	waypoints := []rune("qmwnebrvtc")
	var pts []keymap.Point
	for _, ch := range waypoints {
		pos, ok := geom.Position(ch)
		require.True(t, ok)
		pts = append(pts, pos)
	}
	points := testutil.TracePoints(t, pts, testutil.DefaultTraceOpts())
	sig := signal.Build(points, geom, signal.DefaultParams())
	require.GreaterOrEqual(t, len(sig.Vertices), 6)

	lex := lexicon.New([]lexicon.WordCount{
		{Word: "am", Count: 9000},
		{Word: "management", Count: 900},
	})
	am, _ := lex.Lookup("am")
	management, _ := lex.Lookup("management")

	scorer := score.NewScorer(geom, score.DefaultParams())
	_, ok := scorer.ScoreCandidate(sig, am)
	assert.False(t, ok, "far more corners than a 2-letter word can produce")
	_, ok = scorer.ScoreCandidate(sig, management)
	assert.True(t, ok, "a long word absorbs the corner count")
}

func TestPruneLengthBandsTightenForLongWords(t *testing.T) {
	t.Parallel()

	geom := testutil.Geometry(t)
	sig := buildSignal(t, geom, "water", testutil.DefaultTraceOpts())

	// "wet" needs half its letters in bounds and has all three;
	// "waterfowl" has six of eight unique letters in bounds (0.75),
	// clearing even the long-word bar.
	lex := lexicon.New([]lexicon.WordCount{
		{Word: "wet", Count: 500},
		{Word: "waterfowl", Count: 500},
	})
	wet, _ := lex.Lookup("wet")
	waterfowl, _ := lex.Lookup("waterfowl")

	scorer := score.NewScorer(geom, score.DefaultParams())
	_, ok := scorer.ScoreCandidate(sig, wet)
	assert.True(t, ok)
	_, ok = scorer.ScoreCandidate(sig, waterfowl)
	assert.True(t, ok)
}
