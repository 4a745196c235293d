package score

import (
	"math"

	"github.com/featherkey/swipekit/internal/swipe/keymap"
	"github.com/featherkey/swipekit/internal/swipe/signal"
)

// The cascade is a pipeline of named multiplicative factors. Each function
// is pure: signal plus matched letter state in, one multiplier out. Keeping
// them separate keeps every penalty independently testable and the final
// product auditable through FactorTrace.

// monotonicityFactor penalizes matched indices that move backward along the
// path beyond a tolerance. The tolerance grows with path density and, for
// clustered words, doubles: tightly packed keys make small backsteps
// meaningless.
func monotonicityFactor(letterIdx []int, pathLen int, clustered bool, cp CascadeParams) float64 {
	m := len(letterIdx)
	if m < 2 {
		return 1
	}
	tol := float64(cp.BackstepBase) + cp.BackstepSlotFraction*float64(pathLen)/float64(m)
	if clustered {
		tol *= cp.ClusteredBackstepScale
	}
	tolerance := int(math.Round(tol))

	violations := 0
	for k := 1; k < m; k++ {
		if letterIdx[k] < letterIdx[k-1]-tolerance {
			violations++
		}
	}
	switch {
	case violations == 0:
		return 1
	case violations == 1:
		return cp.MonotonicityPenalty1
	case violations == 2:
		return cp.MonotonicityPenalty2
	default:
		return cp.MonotonicityPenalty3
	}
}

// wrongLetterFactor penalizes candidates with very-low and low per-letter
// scores in discrete tiers. When most letters are high-confidence matches
// the combined penalty is floored: one bad letter must not sink a word the
// rest of the path clearly spells.
func wrongLetterFactor(letterScore []float64, cp CascadeParams) float64 {
	veryLow, low, high := 0, 0, 0
	for _, g := range letterScore {
		switch {
		case g < cp.VeryLowLetterThreshold:
			veryLow++
		case g < cp.LowLetterThreshold:
			low++
		}
		if g >= cp.HighConfidenceLetterScore {
			high++
		}
	}

	factor := 1.0
	switch {
	case veryLow == 1:
		factor *= cp.VeryLowPenalty1
	case veryLow >= 2:
		factor *= cp.VeryLowPenalty2
	}
	switch {
	case low == 1:
		factor *= cp.LowPenalty1
	case low == 2:
		factor *= cp.LowPenalty2
	case low >= 3:
		factor *= cp.LowPenalty3
	}

	if float64(high) >= cp.HighConfidenceFloorFraction*float64(len(letterScore)) && factor < cp.WrongLetterFloor {
		factor = cp.WrongLetterFloor
	}
	return factor
}

// pathExhaustionFactor penalizes words whose tail letters all pile up at
// the very end of the path, the signature of a cut-off gesture matched to
// a too-long word.
func pathExhaustionFactor(letterIdx []int, pathLen int, cp CascadeParams) float64 {
	cutoff := cp.PathExhaustionTailFraction * float64(pathLen-1)
	tail := 0
	for _, idx := range letterIdx {
		if float64(idx) >= cutoff {
			tail++
		}
	}
	if tail > cp.PathExhaustionMaxTailLetters {
		return cp.PathExhaustionPenalty
	}
	return 1
}

// lengthBonusFactor rewards long words when the path carries enough sample
// points per letter to make the per-letter evidence trustworthy.
func lengthBonusFactor(wordLen, pathLen int, cp CascadeParams) float64 {
	if wordLen >= cp.LengthBonusMinLetters &&
		float64(pathLen)/float64(wordLen) >= cp.LengthBonusPointsPerLetter {
		return cp.LengthBonus
	}
	return 1
}

// repeatRatioFactor penalizes highly repetitive words. A path through two
// or three distinct keys matches "mmm"-like entries suspiciously well on
// raw letter scores.
func repeatRatioFactor(uniqueLetters, totalLetters int, cp CascadeParams) float64 {
	if totalLetters == 0 {
		return 1
	}
	if float64(uniqueLetters)/float64(totalLetters) < cp.RepeatRatioThreshold {
		return cp.RepeatPenalty
	}
	return 1
}

// coverageFactor measures how much of the path the matched indices span,
// docked per order violation, and softens the miss into a multiplier.
// Returns both the raw coverage (reported on the result) and the factor.
func coverageFactor(letterIdx []int, pathLen int, cp CascadeParams) (coverage, factor float64) {
	if len(letterIdx) == 0 || pathLen < 2 {
		return 0, 1
	}
	minIdx, maxIdx := letterIdx[0], letterIdx[0]
	violations := 0
	for k, idx := range letterIdx {
		if idx < minIdx {
			minIdx = idx
		}
		if idx > maxIdx {
			maxIdx = idx
		}
		if k > 0 && idx < letterIdx[k-1] {
			violations++
		}
	}
	span := float64(maxIdx-minIdx) / float64(pathLen-1)
	coverage = clamp01(span - cp.CoverageOrderPenalty*float64(violations))
	return coverage, 1 - cp.CoverageSoftening*(1-coverage)
}

// anchorStartFactor credits candidates whose first letter agrees with the
// start anchor. Ambiguous anchors credit either of the two nearest keys;
// locked anchors penalize a mismatch.
func anchorStartFactor(a signal.Anchor, ch rune, cp CascadeParams) float64 {
	return anchorFactor(a, ch, cp.AnchorStartBonus, cp)
}

// anchorEndFactor is the end-anchor analogue with a slightly smaller bonus:
// touch-up position is noisier than touch-down.
func anchorEndFactor(a signal.Anchor, ch rune, cp CascadeParams) float64 {
	return anchorFactor(a, ch, cp.AnchorEndBonus, cp)
}

func anchorFactor(a signal.Anchor, ch rune, matchBonus float64, cp CascadeParams) float64 {
	if a.IsAmbiguous {
		if ch == a.PointZeroNearest || ch == a.PointZeroSecond {
			return cp.AnchorAmbiguousBonus
		}
		return 1
	}
	if ch == a.ClosestKey {
		return matchBonus
	}
	if a.IsLocked {
		return cp.LockedAnchorMismatchPenalty
	}
	return 1
}

// startDirectionFactor penalizes words whose first-to-second key direction
// contradicts the gesture's earliest stable heading. Applies only when the
// two key positions differ.
func startDirectionFactor(sig *signal.SwipeSignal, first, second keymap.Point, cp CascadeParams) float64 {
	dx, dy := second.X-first.X, second.Y-first.Y
	norm := math.Hypot(dx, dy)
	if norm < 1e-9 {
		return 1
	}
	dot := (dx/norm)*sig.InitialHeadingX + (dy/norm)*sig.InitialHeadingY
	if dot < cp.StartDirectionDotThreshold {
		return cp.StartDirectionPenalty
	}
	return 1
}

// traversalFactor penalizes letters the path never came near, in discrete
// steps by distinct missing letter count.
func traversalFactor(sig *signal.SwipeSignal, letters []rune, cp CascadeParams) float64 {
	missing := 0
	for k, ch := range letters {
		if !firstOccurrence(letters, k) {
			continue
		}
		if _, ok := sig.TraversedKeys[ch]; !ok {
			missing++
		}
	}
	switch {
	case missing == 0:
		return 1
	case missing == 1:
		return cp.TraversalMissPenalty1
	case missing == 2:
		return cp.TraversalMissPenalty2
	default:
		return cp.TraversalMissPenalty3
	}
}

// vertexLengthFactor penalizes a mismatch between the word's letter count
// and the length the path's shape suggests.
func vertexLengthFactor(expectedLen, wordLen int, cp CascadeParams) float64 {
	diff := expectedLen - wordLen
	if diff < 0 {
		diff = -diff
	}
	switch {
	case diff <= 1:
		return 1
	case diff == 2:
		return cp.VertexLengthPenalty2
	case diff == 3:
		return cp.VertexLengthPenalty3
	default:
		return cp.VertexLengthPenalty4
	}
}

// pathRatioFactor compares physical path length against the ideal polyline
// through the word's keys. Too-short paths take one flat penalty; excess
// length escalates through soft, hard and severe tiers.
func pathRatioFactor(pathLen, expectedPathLen float64, cp CascadeParams) float64 {
	if expectedPathLen <= 0 {
		return 1
	}
	ratio := pathLen / expectedPathLen
	switch {
	case ratio < cp.PathShortRatio:
		return cp.PathShortPenalty
	case ratio > cp.PathExcessSevereRatio:
		return cp.PathExcessSeverePenalty
	case ratio > cp.PathExcessHardRatio:
		return cp.PathExcessHardPenalty
	case ratio > cp.PathExcessSoftRatio:
		return cp.PathExcessSoftPenalty
	}
	return 1
}

// passthroughFactor penalizes mid-word letters whose keys were crossed at
// speed with no dwell or corner, in discrete steps by distinct letter
// count. First and last letters are exempt: endpoints are claimed by the
// anchors, not by crossing evidence.
func passthroughFactor(sig *signal.SwipeSignal, letters []rune, cp CascadeParams) float64 {
	if len(letters) < 3 {
		return 1
	}
	mid := letters[1 : len(letters)-1]
	hits := 0
	for k, ch := range mid {
		if !firstOccurrence(mid, k) {
			continue
		}
		if _, ok := sig.PassthroughKeys[ch]; ok {
			hits++
		}
	}
	switch {
	case hits == 0:
		return 1
	case hits == 1:
		return cp.PassthroughPenalty1
	case hits == 2:
		return cp.PassthroughPenalty2
	default:
		return cp.PassthroughPenalty3
	}
}

// wordIsClustered reports whether every key of the word sits within the
// cluster radius of the word's key centroid. Path shape is uninformative
// for such words, so scoring leans on frequency instead.
func wordIsClustered(geom *keymap.Geometry, letters []rune, wp WeightParams) bool {
	centroid, ok := wordCentroid(geom, letters)
	if !ok {
		return false
	}
	radius := wp.ClusterRadiusFraction * geom.Pitch()
	for _, ch := range letters {
		pos, posOK := geom.Position(ch)
		if !posOK {
			return false
		}
		if centroid.Dist(pos) > radius {
			return false
		}
	}
	return true
}

// firstOccurrence reports whether letters[k] does not appear before index
// k. Quadratic over the word but allocation-free, which wins for the short
// words scoring sees.
func firstOccurrence(letters []rune, k int) bool {
	for i := 0; i < k; i++ {
		if letters[i] == letters[k] {
			return false
		}
	}
	return true
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
