package score

import (
	"github.com/featherkey/swipekit/internal/swipe/lexicon"
	"github.com/featherkey/swipekit/internal/swipe/signal"
)

// prune applies the hard pre-filters in O(word length): bounds coverage
// with a high-frequency discount band, then vertex-count compatibility.
// A false return means no CandidateResult is ever produced for this
// entry.
func (s *Scorer) prune(sig *signal.SwipeSignal, entry lexicon.Entry, letters []rune) bool {
	p := s.params.Prune

	unique := 0
	inBounds := 0
	seen := s.seenScratch
	clear(seen)
	for _, ch := range letters {
		if _, dup := seen[ch]; dup {
			continue
		}
		seen[ch] = struct{}{}
		unique++
		if _, ok := sig.CharsInBounds[ch]; ok {
			inBounds++
		}
	}
	if unique == 0 {
		return false
	}

	required := p.MinBoundsCoverageLong
	switch {
	case len(letters) <= p.ShortWordMaxLen:
		required = p.MinBoundsCoverageShort
	case len(letters) <= p.MediumWordMaxLen:
		required = p.MinBoundsCoverageMedium
	}
	// Frequent words survive minor bounds mismatches with one discount
	// band instead of rejection.
	if entry.Tier >= p.HighFrequencyTier {
		required -= p.BoundsDiscountStep
	}
	if float64(inBounds)/float64(unique) < required {
		return false
	}

	vertices := float64(len(sig.Vertices))
	if float64(unique) > (vertices+2)*p.LettersPerVertexMax {
		return false
	}
	if vertices > float64(len(letters))*p.VerticesPerLetterMax+2 {
		return false
	}

	return true
}
