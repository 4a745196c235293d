package score

import "github.com/featherkey/swipekit/internal/swipe/lexicon"

// PruneParams controls the hard pre-filters that run before any geometry.
type PruneParams struct {
	// MinBoundsCoverage* is the minimum fraction of a word's unique
	// letters that must appear in CharsInBounds, banded by word length.
	// Longer words must explain more of themselves.
	MinBoundsCoverageShort  float64
	MinBoundsCoverageMedium float64
	MinBoundsCoverageLong   float64

	// ShortWordMaxLen and MediumWordMaxLen bound the length bands.
	ShortWordMaxLen  int
	MediumWordMaxLen int

	// HighFrequencyTier marks entries that get one discount band instead
	// of outright rejection on a bounds miss.
	HighFrequencyTier lexicon.FrequencyTier

	// BoundsDiscountStep is subtracted from the required coverage for
	// entries at or above HighFrequencyTier.
	BoundsDiscountStep float64

	// LettersPerVertexMax drops words with more unique letters than
	// (vertices+2) x this factor: a 2-vertex path cannot encode an
	// 8-letter word that needs many corners.
	LettersPerVertexMax float64

	// VerticesPerLetterMax drops words when the path has far more
	// vertices than the word could produce.
	VerticesPerLetterMax float64
}

// DefaultPruneParams returns the tuned pruning thresholds.
func DefaultPruneParams() PruneParams {
	return PruneParams{
		MinBoundsCoverageShort:  0.50,
		MinBoundsCoverageMedium: 0.60,
		MinBoundsCoverageLong:   0.70,
		ShortWordMaxLen:         4,
		MediumWordMaxLen:        7,
		HighFrequencyTier:       lexicon.TierTop1000,
		BoundsDiscountStep:      0.15,
		LettersPerVertexMax:     2.0,
		VerticesPerLetterMax:    1.5,
	}
}

// LetterParams controls the per-letter path search and kernel scoring.
type LetterParams struct {
	// WindowSlackSlots widens the search window around each letter's
	// interpolated path index, in units of one letter slot (N/m samples).
	WindowSlackSlots float64

	// MinWindowRadius is the floor on the window half-width in samples.
	MinWindowRadius int

	// EdgeWindowFraction confines the first (last) letter's window to
	// this leading (trailing) fraction of the path.
	EdgeWindowFraction float64

	// TemporalDeviationWeight weighs index deviation against spatial
	// distance in the joint search cost. This is what stops an anagram's
	// late letter from matching an early path point.
	TemporalDeviationWeight float64

	// BoundarySigmaBoost widens sigma at the first and last letter,
	// where touch-down and lift-off are least precise.
	BoundarySigmaBoost float64

	// FastVelocityFactor and VelocityDiscount discount a letter matched
	// where the finger moved faster than factor x mean with no dwell.
	FastVelocityFactor float64
	VelocityDiscount   float64

	// CurvatureBoost credits letters matched within VertexIndexSlack of
	// a vertex, scaled by vertex class.
	CurvatureBoost   float64
	VertexIndexSlack int

	// DwellBoost credits letters matched inside a dwell interval.
	DwellBoost float64

	// NeighborRescue* re-scores a weak letter against its adjacent keys:
	// when a neighbor fits the path better, the letter earns credit x
	// the neighbor's kernel score, capped so a rescue never beats a
	// direct hit.
	NeighborRescueThreshold float64
	NeighborRescueCredit    float64
	NeighborRescueCap       float64
}

// DefaultLetterParams returns the tuned letter-scoring thresholds.
func DefaultLetterParams() LetterParams {
	return LetterParams{
		WindowSlackSlots:        1.25,
		MinWindowRadius:         3,
		EdgeWindowFraction:      0.15,
		TemporalDeviationWeight: 0.8,
		BoundarySigmaBoost:      1.25,
		FastVelocityFactor:      1.15,
		VelocityDiscount:        0.18,
		CurvatureBoost:          0.20,
		VertexIndexSlack:        2,
		DwellBoost:              0.25,
		NeighborRescueThreshold: 0.35,
		NeighborRescueCredit:    0.60,
		NeighborRescueCap:       0.55,
	}
}

// CascadeParams holds every multiplier in the correction cascade. Each
// value is a tuned heuristic; see the factor functions in cascade.go for
// what triggers each one.
type CascadeParams struct {
	// Sequence monotonicity: backward index jumps beyond the tolerance
	// (base + fraction of a letter slot, doubled for clustered words).
	BackstepBase           int
	BackstepSlotFraction   float64
	ClusteredBackstepScale float64
	MonotonicityPenalty1   float64
	MonotonicityPenalty2   float64
	MonotonicityPenalty3   float64

	// Wrong-letter tiers on very-low and low per-letter scores, with a
	// protective floor when most letters are high-confidence.
	VeryLowLetterThreshold      float64
	LowLetterThreshold          float64
	VeryLowPenalty1             float64
	VeryLowPenalty2             float64
	LowPenalty1                 float64
	LowPenalty2                 float64
	LowPenalty3                 float64
	HighConfidenceLetterScore   float64
	HighConfidenceFloorFraction float64
	WrongLetterFloor            float64

	// Path exhaustion: too many letters piled into the path's tail.
	PathExhaustionTailFraction   float64
	PathExhaustionMaxTailLetters int
	PathExhaustionPenalty        float64

	// Length bonus for long words with favorable point density.
	LengthBonusMinLetters      int
	LengthBonusPointsPerLetter float64
	LengthBonus                float64

	// Repeated-letter-ratio penalty for highly repetitive words.
	RepeatRatioThreshold float64
	RepeatPenalty        float64

	// Path coverage: order violations subtract from the index span, and
	// the softened multiplier tempers the raw coverage.
	CoverageOrderPenalty float64
	CoverageSoftening    float64

	// Anchor match bonuses and the locked-anchor mismatch penalty. An
	// ambiguous anchor credits both nearest keys instead of guessing.
	AnchorStartBonus            float64
	AnchorEndBonus              float64
	AnchorAmbiguousBonus        float64
	LockedAnchorMismatchPenalty float64

	// Start direction: expected first-to-second letter direction against
	// the gesture's earliest actual heading.
	StartDirectionDotThreshold float64
	StartDirectionPenalty      float64

	// Traversal completeness tiers on word letters absent from the
	// traversed set.
	TraversalMissPenalty1 float64
	TraversalMissPenalty2 float64
	TraversalMissPenalty3 float64

	// Vertex-length compatibility tiers on |expected - actual| letters.
	VertexLengthPenalty2 float64
	VertexLengthPenalty3 float64
	VertexLengthPenalty4 float64

	// Path length ratio: too-short soft penalty, too-long escalating
	// tiers. The severe tier marks a gesture that physically cannot be
	// this word.
	PathShortRatio          float64
	PathShortPenalty        float64
	PathExcessSoftRatio     float64
	PathExcessSoftPenalty   float64
	PathExcessHardRatio     float64
	PathExcessHardPenalty   float64
	PathExcessSevereRatio   float64
	PathExcessSeverePenalty float64

	// Passthrough tiers on mid-word letters matched to keys the gesture
	// only crossed incidentally.
	PassthroughPenalty1 float64
	PassthroughPenalty2 float64
	PassthroughPenalty3 float64
}

// DefaultCascadeParams returns the tuned cascade multipliers.
func DefaultCascadeParams() CascadeParams {
	return CascadeParams{
		BackstepBase:           2,
		BackstepSlotFraction:   0.5,
		ClusteredBackstepScale: 2.0,
		MonotonicityPenalty1:   0.92,
		MonotonicityPenalty2:   0.80,
		MonotonicityPenalty3:   0.62,

		VeryLowLetterThreshold:      0.15,
		LowLetterThreshold:          0.35,
		VeryLowPenalty1:             0.66,
		VeryLowPenalty2:             0.40,
		LowPenalty1:                 0.88,
		LowPenalty2:                 0.75,
		LowPenalty3:                 0.60,
		HighConfidenceLetterScore:   0.75,
		HighConfidenceFloorFraction: 0.75,
		WrongLetterFloor:            0.70,

		PathExhaustionTailFraction:   0.92,
		PathExhaustionMaxTailLetters: 2,
		PathExhaustionPenalty:        0.80,

		LengthBonusMinLetters:      6,
		LengthBonusPointsPerLetter: 2.5,
		LengthBonus:                1.06,

		RepeatRatioThreshold: 0.34,
		RepeatPenalty:        0.85,

		CoverageOrderPenalty: 0.08,
		CoverageSoftening:    0.5,

		AnchorStartBonus:            1.08,
		AnchorEndBonus:              1.05,
		AnchorAmbiguousBonus:        1.06,
		LockedAnchorMismatchPenalty: 0.72,

		StartDirectionDotThreshold: -0.25,
		StartDirectionPenalty:      0.80,

		TraversalMissPenalty1: 0.90,
		TraversalMissPenalty2: 0.78,
		TraversalMissPenalty3: 0.60,

		VertexLengthPenalty2: 0.95,
		VertexLengthPenalty3: 0.88,
		VertexLengthPenalty4: 0.78,

		PathShortRatio:          0.60,
		PathShortPenalty:        0.85,
		PathExcessSoftRatio:     2.0,
		PathExcessSoftPenalty:   0.88,
		PathExcessHardRatio:     2.5,
		PathExcessHardPenalty:   0.70,
		PathExcessSevereRatio:   3.0,
		PathExcessSeverePenalty: 0.45,

		PassthroughPenalty1: 0.90,
		PassthroughPenalty2: 0.80,
		PassthroughPenalty3: 0.65,
	}
}

// WeightParams controls the adaptive spatial/frequency blend.
type WeightParams struct {
	// ClusterRadiusFraction: a word whose keys all sit within this many
	// pitches of their centroid is "clustered" and its path shape is
	// uninformative, so weight shifts to frequency.
	ClusterRadiusFraction    float64
	ClusteredFrequencyWeight float64

	// FrequencyWeightGain grows the frequency weight with the entry's
	// frequency score. Must stay below the base frequency weight or
	// raising a word's frequency could lower its blended score.
	FrequencyWeightGain float64

	// ShortWordSpatial*: 2-letter candidates with spatial evidence above
	// the threshold weigh almost entirely spatial, so a common word's
	// frequency cannot drown out an exact short match.
	ShortWordSpatialThreshold float64
	ShortWordSpatialWeight    float64
}

// DefaultWeightParams returns the tuned blend weights.
func DefaultWeightParams() WeightParams {
	return WeightParams{
		ClusterRadiusFraction:     1.25,
		ClusteredFrequencyWeight:  0.62,
		FrequencyWeightGain:       0.18,
		ShortWordSpatialThreshold: 0.72,
		ShortWordSpatialWeight:    0.92,
	}
}

// Params bundles every scoring knob.
type Params struct {
	Prune   PruneParams
	Letter  LetterParams
	Cascade CascadeParams
	Weights WeightParams
}

// DefaultParams returns the full tuned parameter set.
func DefaultParams() Params {
	return Params{
		Prune:   DefaultPruneParams(),
		Letter:  DefaultLetterParams(),
		Cascade: DefaultCascadeParams(),
		Weights: DefaultWeightParams(),
	}
}
