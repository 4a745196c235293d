package signal

import (
	"math"

	"github.com/featherkey/swipekit/internal/swipe/keymap"
	"github.com/featherkey/swipekit/internal/swipe/touch"
)

// Bounds is the path's axis-aligned envelope in keyboard coordinates.
type Bounds struct {
	MinX, MinY, MaxX, MaxY float64
}

// Anchor describes which key a gesture most plausibly started or ended on,
// with a distance table to every key for penalty computation.
type Anchor struct {
	// ClosestKey is the nearest key to the anchor point, after any
	// backprojection. Zero when the signal is degenerate.
	ClosestKey rune

	// PointZeroNearest and PointZeroSecond are the two nearest keys to
	// the raw endpoint sample, before backprojection.
	PointZeroNearest rune
	PointZeroSecond  rune

	// KeyDistances maps every key to its distance from the anchor point.
	KeyDistances map[rune]float64

	// IsAmbiguous is set when the two nearest keys sit within the
	// ambiguity gap of each other; scoring then credits both instead of
	// guessing one.
	IsAmbiguous bool

	// IsLocked is set when the anchor is unambiguous and the nearest key
	// is inside the lock radius; candidates starting elsewhere pay a
	// mismatch penalty.
	IsLocked bool

	// Backprojected is the extrapolated anchor point when the raw
	// endpoint was classified as touch jitter, nil otherwise.
	Backprojected *keymap.Point
}

// SwipeSignal is the full geometric analysis of one gesture. It is built
// once, owned by a single recognition pass, and immutable afterwards, so
// any number of scoring calls may read it concurrently.
type SwipeSignal struct {
	Path       []touch.SwipePoint
	PathLength float64

	// Degenerate marks gestures too short to analyze (<3 samples). All
	// derived fields are empty; callers treat this as "no recognition".
	Degenerate bool

	Vertices []Vertex
	Dwells   []Dwell

	StartAnchor Anchor
	EndAnchor   Anchor

	// InitialHeadingX/Y is the unit direction of the earliest stable
	// motion, used to sanity-check a candidate's first letter pair.
	InitialHeadingX float64
	InitialHeadingY float64

	Bounds Bounds

	// CharsInBounds holds every key inside the padded path envelope: the
	// cheap pre-filter set.
	CharsInBounds map[rune]struct{}

	// TraversedKeys holds keys the path approached within their adaptive
	// sigma. PassthroughKeys is the traversed subset crossed at speed
	// with no dwell or vertex nearby, evidence against intent.
	TraversedKeys   map[rune]struct{}
	PassthroughKeys map[rune]struct{}

	// OffRowKeys are traversed keys whose row differs from the dominant
	// typing row.
	OffRowKeys map[rune]struct{}

	// Sigma is the per-key tolerance for this gesture: geometry sigma
	// scaled by sampling density, cached here so thousands of scoring
	// calls reuse it.
	Sigma map[rune]float64

	ExpectedWordLength int

	// SpatialWeight and FrequencyWeight are the gesture-level baseline
	// blend; scoring adapts them per candidate.
	SpatialWeight   float64
	FrequencyWeight float64

	meanVelocity float64
}

// MeanVelocity reports the gesture's mean smoothed speed in px/s.
func (s *SwipeSignal) MeanVelocity() float64 { return s.meanVelocity }

// Build derives a SwipeSignal from one captured gesture. Pure: one call
// per gesture, no retained references to anything mutable. Fewer than 3
// samples (or a nil geometry) yields a degenerate signal, never a panic.
func Build(points []touch.SwipePoint, geom *keymap.Geometry, params Params) *SwipeSignal {
	sig := &SwipeSignal{
		Path:            points,
		PathLength:      touch.PathLength(points),
		CharsInBounds:   make(map[rune]struct{}),
		TraversedKeys:   make(map[rune]struct{}),
		PassthroughKeys: make(map[rune]struct{}),
		OffRowKeys:      make(map[rune]struct{}),
		Sigma:           make(map[rune]float64),
		SpatialWeight:   params.BaseSpatialWeight,
		FrequencyWeight: params.BaseFrequencyWeight,
	}
	if len(points) < 3 || geom == nil {
		sig.Degenerate = true
		return sig
	}

	sig.meanVelocity = meanVelocity(points)
	sig.computeSigma(geom, params)

	sig.Vertices = detectVertices(points, geom, sig.Sigma, params)
	sig.Dwells = detectDwells(points, sig.meanVelocity, params)

	sig.StartAnchor = buildAnchor(points, geom, params, false)
	sig.EndAnchor = buildAnchor(points, geom, params, true)
	sig.InitialHeadingX, sig.InitialHeadingY = initialHeading(points, params)

	sig.Bounds = pathBounds(points)
	sig.computeKeySets(geom, params)

	sig.ExpectedWordLength = expectedWordLength(sig.PathLength, len(sig.Vertices), geom.Pitch(), params)
	return sig
}

// computeSigma caches per-key tolerance scaled by sampling density: sparse
// samples overestimate closest-approach distances, so sigma widens with
// mean sample spacing.
func (s *SwipeSignal) computeSigma(geom *keymap.Geometry, params Params) {
	spacing := s.PathLength / float64(len(s.Path)-1)
	scale := 1.0
	if pitch := geom.Pitch(); pitch > 0 {
		scale = 1.0 + params.SigmaSpacingBoost*(spacing/pitch)
	}
	if scale < params.SigmaScaleMin {
		scale = params.SigmaScaleMin
	}
	if scale > params.SigmaScaleMax {
		scale = params.SigmaScaleMax
	}
	for _, ch := range geom.Chars() {
		base, _ := geom.Sigma(ch)
		s.Sigma[ch] = base * scale
	}
}

// buildAnchor resolves the start (atEnd=false) or end (atEnd=true) anchor:
// nearest keys at the raw endpoint, optional backprojection past jitter,
// ambiguity and lock flags, and the full key-distance table.
func buildAnchor(points []touch.SwipePoint, geom *keymap.Geometry, params Params, atEnd bool) Anchor {
	raw := points[0]
	if atEnd {
		raw = points[len(points)-1]
	}
	rawPt := keymap.Point{X: raw.X, Y: raw.Y}
	n1, n2, _, _ := geom.TwoNearest(rawPt)

	anchorPt := rawPt
	var backprojected *keymap.Point
	if bp, ok := backproject(points, geom, params, atEnd); ok {
		anchorPt = bp
		backprojected = &bp
	}

	closest, _, d1, d2 := geom.TwoNearest(anchorPt)
	ambiguous := (d2 - d1) < params.AnchorAmbiguityGapFraction*geom.Pitch()
	sigma, _ := geom.Sigma(closest)
	locked := !ambiguous && d1 <= params.AnchorLockRadiusFraction*sigma

	return Anchor{
		ClosestKey:       closest,
		PointZeroNearest: n1,
		PointZeroSecond:  n2,
		KeyDistances:     geom.KeyDistances(anchorPt),
		IsAmbiguous:      ambiguous,
		IsLocked:         locked,
		Backprojected:    backprojected,
	}
}

// backproject checks the endpoint for touch jitter: if the raw endpoint
// sits off the stable early (late) heading line by more than the jitter
// tolerance, the stable segment is extrapolated outward by the jittered
// arc length and that point replaces the endpoint as the anchor.
func backproject(points []touch.SwipePoint, geom *keymap.Geometry, params Params, atEnd bool) (keymap.Point, bool) {
	lead, span := params.BackprojectionLead, params.BackprojectionSpan
	if lead < 1 || span < 1 || len(points) <= lead+span {
		return keymap.Point{}, false
	}

	n := len(points)
	var raw, a, b touch.SwipePoint
	if atEnd {
		raw = points[n-1]
		a = points[n-1-lead-span]
		b = points[n-1-lead]
	} else {
		raw = points[0]
		a = points[lead]
		b = points[lead+span]
	}

	hx, hy := b.X-a.X, b.Y-a.Y
	norm := math.Hypot(hx, hy)
	if norm < 1e-9 {
		return keymap.Point{}, false
	}
	hx /= norm
	hy /= norm

	// Perpendicular distance of the raw endpoint from the stable line.
	perp := math.Abs((raw.X-a.X)*hy - (raw.Y-a.Y)*hx)
	nearest, _ := geom.NearestKey(keymap.Point{X: raw.X, Y: raw.Y})
	sigma, _ := geom.Sigma(nearest)
	if perp <= params.BackprojectionJitterFraction*sigma {
		return keymap.Point{}, false
	}

	var arc float64
	if atEnd {
		for i := n - 1 - lead; i+1 < n; i++ {
			arc += math.Hypot(points[i+1].X-points[i].X, points[i+1].Y-points[i].Y)
		}
		return keymap.Point{X: b.X + hx*arc, Y: b.Y + hy*arc}, true
	}
	for i := 0; i < lead; i++ {
		arc += math.Hypot(points[i+1].X-points[i].X, points[i+1].Y-points[i].Y)
	}
	return keymap.Point{X: a.X - hx*arc, Y: a.Y - hy*arc}, true
}

// initialHeading returns the unit direction of the earliest stable motion,
// skipping the jitter-prone leading samples when the path is long enough.
func initialHeading(points []touch.SwipePoint, params Params) (float64, float64) {
	lead, span := params.BackprojectionLead, params.BackprojectionSpan
	i, j := 0, len(points)-1
	if len(points) > lead+span {
		i, j = lead, lead+span
	}
	dx, dy := points[j].X-points[i].X, points[j].Y-points[i].Y
	norm := math.Hypot(dx, dy)
	if norm < 1e-9 {
		return 0, 0
	}
	return dx / norm, dy / norm
}

func pathBounds(points []touch.SwipePoint) Bounds {
	b := Bounds{
		MinX: math.MaxFloat64, MinY: math.MaxFloat64,
		MaxX: -math.MaxFloat64, MaxY: -math.MaxFloat64,
	}
	for _, p := range points {
		b.MinX = math.Min(b.MinX, p.X)
		b.MinY = math.Min(b.MinY, p.Y)
		b.MaxX = math.Max(b.MaxX, p.X)
		b.MaxY = math.Max(b.MaxY, p.Y)
	}
	return b
}

// expectedWordLength blends two estimators: arc length in letter pitches,
// and vertex count plus the two endpoints.
func expectedWordLength(pathLen float64, vertexCount int, pitch float64, params Params) int {
	if pitch <= 0 || params.PitchPerLetter <= 0 {
		return 0
	}
	fromLength := 1.0 + pathLen/(pitch*params.PitchPerLetter)
	fromVertices := float64(vertexCount + 2)
	est := int(math.Round((fromLength + fromVertices) / 2))
	if est < 1 {
		est = 1
	}
	return est
}

func meanVelocity(points []touch.SwipePoint) float64 {
	if len(points) == 0 {
		return 0
	}
	var sum float64
	for _, p := range points {
		sum += p.Velocity
	}
	return sum / float64(len(points))
}
