package rank_test

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/featherkey/swipekit/internal/swipe/keymap"
	"github.com/featherkey/swipekit/internal/swipe/lexicon"
	"github.com/featherkey/swipekit/internal/swipe/rank"
	"github.com/featherkey/swipekit/internal/testutil"
)

func TestNewRecognizerValidates(t *testing.T) {
	t.Parallel()

	geom := testutil.Geometry(t)
	lex := lexicon.New(nil)

	_, err := rank.NewRecognizer(nil, lex, rank.DefaultOptions())
	assert.Error(t, err)
	_, err = rank.NewRecognizer(geom, nil, rank.DefaultOptions())
	assert.Error(t, err)

	rec, err := rank.NewRecognizer(geom, lex, rank.Options{})
	require.NoError(t, err)
	require.NotNil(t, rec)
}

func TestRecognizeStraightLineFavorsExactShortWord(t *testing.T) {
	t.Parallel()

	geom := testutil.Geometry(t)
	lex := lexicon.New([]lexicon.WordCount{
		{Word: "hi", Count: 100},
		{Word: "ok", Count: 10000},
		{Word: "cab", Count: 9000},
	})
	rec, err := rank.NewRecognizer(geom, lex, rank.DefaultOptions())
	require.NoError(t, err)

	points := testutil.TraceWord(t, geom, "hi", testutil.DefaultTraceOpts())
	res := rec.Recognize(points)

	require.NotEmpty(t, res.Words)
	assert.Equal(t, "hi", res.Words[0].Word,
		"spatial fit beats the raw frequency of distant words")
	assert.GreaterOrEqual(t, res.PrunedCount, 1, "words off the path prune out")
	assert.Equal(t, lex.Len(), res.ScoredCount+res.PrunedCount)
	assert.False(t, res.Degenerate)
	assert.NotZero(t, res.PassID)
}

func TestRecognizeEmptyLexicon(t *testing.T) {
	t.Parallel()

	geom := testutil.Geometry(t)
	rec, err := rank.NewRecognizer(geom, lexicon.New(nil), rank.DefaultOptions())
	require.NoError(t, err)

	points := testutil.TraceWord(t, geom, "hi", testutil.DefaultTraceOpts())
	res := rec.Recognize(points)

	assert.Empty(t, res.Words, "no dictionary, no recognition, no panic")
	assert.Zero(t, res.ScoredCount)
}

func TestRecognizeDegenerateGesture(t *testing.T) {
	t.Parallel()

	geom := testutil.Geometry(t)
	lex := lexicon.New([]lexicon.WordCount{{Word: "hi", Count: 100}})
	rec, err := rank.NewRecognizer(geom, lex, rank.DefaultOptions())
	require.NoError(t, err)

	res := rec.Recognize(nil)
	assert.True(t, res.Degenerate)
	assert.Empty(t, res.Words, "callers fall back to manual typing")
}

func TestRecognizeParallelMatchesSerial(t *testing.T) {
	t.Parallel()

	geom := testutil.Geometry(t)
	var wc []lexicon.WordCount
	for i, w := range []string{
		"water", "wate", "waters", "qatar", "war", "wet", "what",
		"ate", "rate", "date", "gate", "late",
	} {
		wc = append(wc, lexicon.WordCount{Word: w, Count: int64(100 * (i + 1))})
	}
	lex := lexicon.New(wc)

	opts := testutil.DefaultTraceOpts()
	opts.JitterPx = 3
	opts.Seed = 11
	points := testutil.TraceWord(t, geom, "water", opts)

	serialOpts := rank.DefaultOptions()
	serialOpts.Workers = 1
	serial, err := rank.NewRecognizer(geom, lex, serialOpts)
	require.NoError(t, err)

	parallelOpts := rank.DefaultOptions()
	parallelOpts.Workers = 4
	parallel, err := rank.NewRecognizer(geom, lex, parallelOpts)
	require.NoError(t, err)

	rs := serial.Recognize(points)
	rp := parallel.Recognize(points)

	assert.Equal(t, rs.Words, rp.Words, "worker count must not change the ranking")
	assert.Equal(t, rs.ScoredCount, rp.ScoredCount)
	assert.Equal(t, rs.PrunedCount, rp.PrunedCount)
}

func TestRecognizeReportsAmbiguousStart(t *testing.T) {
	t.Parallel()

	geom := testutil.Geometry(t)
	lex := lexicon.New([]lexicon.WordCount{
		{Word: "ad", Count: 100},
		{Word: "sd", Count: 100},
	})
	rec, err := rank.NewRecognizer(geom, lex, rank.DefaultOptions())
	require.NoError(t, err)

	// Touch down midway between 'a' and 's'.
	points := testutil.TracePoints(t, []keymap.Point{{X: 150, Y: 150}, {X: 300, Y: 150}}, testutil.DefaultTraceOpts())
	res := rec.Recognize(points)

	assert.True(t, res.StartAmbiguous)
	assert.False(t, res.EndAmbiguous)
	require.Len(t, res.Words, 2, "both anchor readings stay in play")
}

func TestRecognizeTruncatesToTopN(t *testing.T) {
	t.Parallel()

	geom := testutil.Geometry(t)
	var wc []lexicon.WordCount
	// A spread of short home-row words that all survive an a->d sweep.
	for i, w := range []string{"ad", "as", "sad", "das", "dad", "add"} {
		wc = append(wc, lexicon.WordCount{Word: w, Count: int64(50 * (i + 1))})
	}
	lex := lexicon.New(wc)

	opts := rank.DefaultOptions()
	opts.TopN = 3
	rec, err := rank.NewRecognizer(geom, lex, opts)
	require.NoError(t, err)

	aPos, _ := geom.Position('a')
	dPos, _ := geom.Position('d')
	points := testutil.TracePoints(t, []keymap.Point{aPos, dPos}, testutil.DefaultTraceOpts())
	res := rec.Recognize(points)

	assert.LessOrEqual(t, len(res.Words), 3)
}

func benchmarkLexicon(size int) *lexicon.Lexicon {
	onsets := []string{"b", "c", "d", "f", "g", "h", "l", "m", "n", "p", "r", "s", "t", "w"}
	vowels := []string{"a", "e", "i", "o", "u"}
	codas := []string{"b", "d", "g", "k", "l", "m", "n", "p", "r", "s", "t", "st", "nd"}

	var wc []lexicon.WordCount
	i := 0
	for _, o := range onsets {
		for _, v := range vowels {
			for _, c := range codas {
				if len(wc) >= size {
					return lexicon.New(wc)
				}
				wc = append(wc, lexicon.WordCount{
					Word:  fmt.Sprintf("%s%s%s", o, v, c),
					Count: int64(i%997 + 1),
				})
				i++
			}
		}
	}
	return lexicon.New(wc)
}

func BenchmarkRecognize(b *testing.B) {
	geom := testutil.Geometry(b)
	lex := benchmarkLexicon(900)

	rec, err := rank.NewRecognizer(geom, lex, rank.DefaultOptions())
	if err != nil {
		b.Fatal(err)
	}
	opts := testutil.DefaultTraceOpts()
	opts.JitterPx = 2
	points := testutil.TraceWord(b, geom, "water", opts)

	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		res := rec.Recognize(points)
		if res == nil {
			b.Fatal("nil result")
		}
	}
}

func BenchmarkRecognizeParallel(b *testing.B) {
	geom := testutil.Geometry(b)
	lex := benchmarkLexicon(900)

	opts := rank.DefaultOptions()
	opts.Workers = 0 // one worker per CPU
	rec, err := rank.NewRecognizer(geom, lex, opts)
	if err != nil {
		b.Fatal(err)
	}
	traceOpts := testutil.DefaultTraceOpts()
	traceOpts.JitterPx = 2
	points := testutil.TraceWord(b, geom, "water", traceOpts)

	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		res := rec.Recognize(points)
		if res == nil {
			b.Fatal("nil result")
		}
	}
}
