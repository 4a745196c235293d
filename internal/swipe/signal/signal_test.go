package signal_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/featherkey/swipekit/internal/swipe/keymap"
	"github.com/featherkey/swipekit/internal/swipe/signal"
	"github.com/featherkey/swipekit/internal/swipe/touch"
	"github.com/featherkey/swipekit/internal/testutil"
)

func TestBuildDegenerateInput(t *testing.T) {
	t.Parallel()

	geom := testutil.Geometry(t)

	cases := []struct {
		name   string
		points []touch.SwipePoint
		geom   *keymap.Geometry
	}{
		{name: "nil points", points: nil, geom: geom},
		{name: "one sample", points: []touch.SwipePoint{{X: 100, Y: 150}}, geom: geom},
		{name: "two samples", points: []touch.SwipePoint{{X: 100, Y: 150}, {X: 120, Y: 150, TimestampUnixNanos: 10_000_000}}, geom: geom},
		{name: "nil geometry", points: make([]touch.SwipePoint, 10), geom: nil},
	}
	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			sig := signal.Build(tc.points, tc.geom, signal.DefaultParams())
			require.NotNil(t, sig)
			assert.True(t, sig.Degenerate)
			assert.Empty(t, sig.Vertices)
			assert.Empty(t, sig.Dwells)
			assert.Empty(t, sig.TraversedKeys)
			assert.Empty(t, sig.CharsInBounds)
			assert.Zero(t, sig.StartAnchor.ClosestKey)
			assert.Zero(t, sig.ExpectedWordLength)
		})
	}
}

func TestBuildStraightLineSignal(t *testing.T) {
	t.Parallel()

	geom := testutil.Geometry(t)
	hPos, _ := geom.Position('h')
	iPos, _ := geom.Position('i')
	points := testutil.TracePoints(t, []keymap.Point{hPos, iPos}, testutil.DefaultTraceOpts())

	sig := signal.Build(points, geom, signal.DefaultParams())
	require.False(t, sig.Degenerate)

	assert.Empty(t, sig.Vertices, "a straight stroke has no direction changes")
	assert.InDelta(t, hPos.Dist(iPos), sig.PathLength, 1e-9)

	assert.Equal(t, 'h', sig.StartAnchor.ClosestKey)
	assert.True(t, sig.StartAnchor.IsLocked)
	assert.False(t, sig.StartAnchor.IsAmbiguous)
	assert.Nil(t, sig.StartAnchor.Backprojected)
	assert.Equal(t, 'i', sig.EndAnchor.ClosestKey)
	assert.True(t, sig.EndAnchor.IsLocked)

	require.Contains(t, sig.StartAnchor.KeyDistances, 'q')
	assert.Equal(t, geom.KeyCount(), len(sig.StartAnchor.KeyDistances), "distance table covers every key")

	for _, ch := range []rune{'h', 'i', 'u', 'j'} {
		assert.Contains(t, sig.CharsInBounds, ch, "key %q inside padded envelope", ch)
	}
	assert.NotContains(t, sig.CharsInBounds, 'q')
	assert.NotContains(t, sig.CharsInBounds, 'z')

	assert.Contains(t, sig.TraversedKeys, 'h')
	assert.Contains(t, sig.TraversedKeys, 'i')

	assert.Equal(t, 2, sig.ExpectedWordLength)

	// h -> i runs right and up: +x, -y in screen coordinates.
	assert.Greater(t, sig.InitialHeadingX, 0.0)
	assert.Less(t, sig.InitialHeadingY, 0.0)
}

func TestBuildAmbiguousStartAnchor(t *testing.T) {
	t.Parallel()

	geom := testutil.Geometry(t)
	dPos, _ := geom.Position('d')
	// Start midway between 'a' (100,150) and 's' (200,150).
	points := testutil.TracePoints(t, []keymap.Point{{X: 150, Y: 150}, dPos}, testutil.DefaultTraceOpts())

	sig := signal.Build(points, geom, signal.DefaultParams())
	require.False(t, sig.Degenerate)

	assert.True(t, sig.StartAnchor.IsAmbiguous)
	assert.False(t, sig.StartAnchor.IsLocked, "ambiguous anchors never lock")
	got := []rune{sig.StartAnchor.PointZeroNearest, sig.StartAnchor.PointZeroSecond}
	assert.ElementsMatch(t, []rune{'a', 's'}, got)

	assert.Equal(t, 'd', sig.EndAnchor.ClosestKey)
	assert.True(t, sig.EndAnchor.IsLocked)
}

func TestBuildBackprojectsJitteredStart(t *testing.T) {
	t.Parallel()

	geom := testutil.Geometry(t)

	// Two jittered leading samples hanging below the stable heading
	// (a straight run along the home row at y=150), then clean motion.
	samples := []touch.Sample{
		{X: 200, Y: 195, TimestampUnixNanos: 0},
		{X: 210, Y: 170, TimestampUnixNanos: 10_000_000},
		{X: 220, Y: 150, TimestampUnixNanos: 20_000_000},
		{X: 240, Y: 150, TimestampUnixNanos: 30_000_000},
		{X: 260, Y: 150, TimestampUnixNanos: 40_000_000},
		{X: 280, Y: 150, TimestampUnixNanos: 50_000_000},
		{X: 300, Y: 150, TimestampUnixNanos: 60_000_000},
		{X: 320, Y: 150, TimestampUnixNanos: 70_000_000},
	}
	points := touch.Derive(samples, touch.DefaultBuilderParams())

	sig := signal.Build(points, geom, signal.DefaultParams())
	require.False(t, sig.Degenerate)

	require.NotNil(t, sig.StartAnchor.Backprojected)
	assert.Equal(t, 's', sig.StartAnchor.ClosestKey)
	assert.InDelta(t, 150.0, sig.StartAnchor.Backprojected.Y, 1e-9, "backprojection lands on the stable heading line")
	assert.Less(t, sig.StartAnchor.Backprojected.X, 220.0, "extrapolated against the direction of travel")

	sPos, _ := geom.Position('s')
	rawDist := sPos.Dist(keymap.Point{X: 200, Y: 195})
	assert.Less(t, sig.StartAnchor.KeyDistances['s'], rawDist, "distance table uses the backprojected point")

	assert.Nil(t, sig.EndAnchor.Backprojected, "clean tail needs no backprojection")
}

func TestBuildSigmaWidensWithSparseSampling(t *testing.T) {
	t.Parallel()

	geom := testutil.Geometry(t)
	aPos, _ := geom.Position('a')
	lPos, _ := geom.Position('l')

	dense := testutil.DefaultTraceOpts()
	dense.SamplesPerSegment = 16
	sparse := testutil.DefaultTraceOpts()
	sparse.SamplesPerSegment = 2

	sigDense := signal.Build(testutil.TracePoints(t, []keymap.Point{aPos, lPos}, dense), geom, signal.DefaultParams())
	sigSparse := signal.Build(testutil.TracePoints(t, []keymap.Point{aPos, lPos}, sparse), geom, signal.DefaultParams())

	base, ok := geom.Sigma('g')
	require.True(t, ok)
	assert.Greater(t, sigSparse.Sigma['g'], sigDense.Sigma['g'], "sparser sampling widens tolerance")
	assert.GreaterOrEqual(t, sigDense.Sigma['g'], base*signal.DefaultParams().SigmaScaleMin)
}

func TestBuildExpectedWordLengthGrowsWithPath(t *testing.T) {
	t.Parallel()

	geom := testutil.Geometry(t)
	opts := testutil.DefaultTraceOpts()

	short := signal.Build(testutil.TraceWord(t, geom, "hi", opts), geom, signal.DefaultParams())
	long := signal.Build(testutil.TraceWord(t, geom, "hello", opts), geom, signal.DefaultParams())

	assert.Equal(t, 2, short.ExpectedWordLength)
	assert.Greater(t, long.ExpectedWordLength, short.ExpectedWordLength)
	assert.InDelta(t, 5, long.ExpectedWordLength, 2, "estimate stays near the true letter count")
}

func TestBuildWeightsComeFromParams(t *testing.T) {
	t.Parallel()

	geom := testutil.Geometry(t)
	params := signal.DefaultParams()
	params.BaseSpatialWeight = 0.6
	params.BaseFrequencyWeight = 0.4

	sig := signal.Build(testutil.TraceWord(t, geom, "hi", testutil.DefaultTraceOpts()), geom, params)
	assert.Equal(t, 0.6, sig.SpatialWeight)
	assert.Equal(t, 0.4, sig.FrequencyWeight)
}
