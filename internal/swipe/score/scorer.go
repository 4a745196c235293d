package score

import (
	"github.com/featherkey/swipekit/internal/swipe/keymap"
	"github.com/featherkey/swipekit/internal/swipe/lexicon"
	"github.com/featherkey/swipekit/internal/swipe/signal"
)

// Scorer computes CandidateResults for dictionary entries against one
// SwipeSignal. It owns scratch buffers reused across calls to keep the
// hot path allocation-free, so a Scorer is not safe for concurrent use;
// give each worker its own instance.
type Scorer struct {
	geom   *keymap.Geometry
	params Params

	letterRunes []rune
	letterIdx   []int
	letterDist  []float64
	letterScore []float64
	seenScratch map[rune]struct{}
}

// NewScorer creates a scorer bound to one layout geometry.
func NewScorer(geom *keymap.Geometry, params Params) *Scorer {
	return &Scorer{
		geom:        geom,
		params:      params,
		seenScratch: make(map[rune]struct{}, 16),
	}
}

// ScoreCandidate scores one dictionary entry against a signal. ok is false
// when the candidate is pruned or a letter has no key in the layout; such
// candidates produce no result and the caller continues with the rest of
// the batch. Scoring the same (signal, entry) pair twice yields identical
// results: every scratch slot is overwritten before it is read.
func (s *Scorer) ScoreCandidate(sig *signal.SwipeSignal, entry lexicon.Entry) (CandidateResult, bool) {
	if sig == nil || sig.Degenerate || entry.Word == "" {
		return CandidateResult{}, false
	}

	letters := s.letterRunes[:0]
	for _, ch := range entry.Word {
		letters = append(letters, ch)
	}
	s.letterRunes = letters
	m := len(letters)

	if !s.prune(sig, entry, letters) {
		return CandidateResult{}, false
	}

	s.grow(m)
	if !s.searchLetterIndices(sig, letters) {
		return CandidateResult{}, false
	}
	s.scoreLetters(sig, letters)

	var spatial float64
	for _, g := range s.letterScore {
		spatial += g
	}
	spatial /= float64(m)

	clustered := wordIsClustered(s.geom, letters, s.params.Weights)
	cp := s.params.Cascade
	n := len(sig.Path)

	trace := FactorTrace{
		Monotonicity:   monotonicityFactor(s.letterIdx, n, clustered, cp),
		WrongLetter:    wrongLetterFactor(s.letterScore, cp),
		PathExhaustion: pathExhaustionFactor(s.letterIdx, n, cp),
		LengthBonus:    lengthBonusFactor(m, n, cp),
		RepeatRatio:    repeatRatioFactor(entry.UniqueLetterCount, m, cp),
		AnchorStart:    anchorStartFactor(sig.StartAnchor, letters[0], cp),
		AnchorEnd:      anchorEndFactor(sig.EndAnchor, letters[m-1], cp),
		StartDirection: 1,
		Traversal:      traversalFactor(sig, letters, cp),
		VertexLength:   vertexLengthFactor(sig.ExpectedWordLength, m, cp),
		PathRatio:      1,
		Passthrough:    passthroughFactor(sig, letters, cp),
	}

	coverage, covFactor := coverageFactor(s.letterIdx, n, cp)
	trace.Coverage = covFactor

	if m >= 2 {
		p0, ok0 := s.geom.Position(letters[0])
		p1, ok1 := s.geom.Position(letters[1])
		if ok0 && ok1 {
			trace.StartDirection = startDirectionFactor(sig, p0, p1, cp)
		}
	}
	if expected, ok := s.geom.ExpectedPathLength(entry.Word); ok {
		trace.PathRatio = pathRatioFactor(sig.PathLength, expected, cp)
	}

	wSpatial, wFrequency := s.blendWeights(sig, entry, m, spatial, clustered)
	blend := wSpatial*spatial + wFrequency*entry.FrequencyScore
	combined := clamp01(blend * trace.Product())

	indices := make([]int, m)
	copy(indices, s.letterIdx)

	return CandidateResult{
		Word:              entry.Word,
		Residual:          1 - combined,
		SpatialScore:      spatial,
		FrequencyScore:    entry.FrequencyScore,
		CombinedScore:     combined,
		PathCoverage:      coverage,
		LetterPathIndices: indices,
		Factors:           trace,
	}, true
}

// blendWeights resolves the adaptive spatial/frequency split for one
// candidate. Clustered words lean on frequency because their path shape
// is uninformative; otherwise frequency weight grows with the entry's own
// frequency score, except that a 2-letter word with strong spatial
// evidence is scored almost purely on geometry so common-word frequency
// cannot drown out an exact short match.
func (s *Scorer) blendWeights(sig *signal.SwipeSignal, entry lexicon.Entry, wordLen int, spatial float64, clustered bool) (wSpatial, wFrequency float64) {
	wp := s.params.Weights
	switch {
	case wordLen == 2 && spatial >= wp.ShortWordSpatialThreshold:
		// The short-word case wins over clustering: a 2-letter word is
		// nearly always clustered on a phone layout, and an exact short
		// match must not be drowned by common-word frequency.
		return wp.ShortWordSpatialWeight, 1 - wp.ShortWordSpatialWeight
	case clustered:
		wFrequency = wp.ClusteredFrequencyWeight
	default:
		wFrequency = sig.FrequencyWeight + wp.FrequencyWeightGain*entry.FrequencyScore
	}
	if wFrequency > 1 {
		wFrequency = 1
	}
	return 1 - wFrequency, wFrequency
}

// grow sizes the per-letter scratch buffers to exactly m slots.
func (s *Scorer) grow(m int) {
	if cap(s.letterIdx) < m {
		s.letterIdx = make([]int, m)
		s.letterDist = make([]float64, m)
		s.letterScore = make([]float64, m)
	}
	s.letterIdx = s.letterIdx[:m]
	s.letterDist = s.letterDist[:m]
	s.letterScore = s.letterScore[:m]
}
