package score

import (
	"math"

	"github.com/featherkey/swipekit/internal/swipe/keymap"
	"github.com/featherkey/swipekit/internal/swipe/signal"
)

// searchLetterIndices fills s.letterIdx[k] with the path index minimizing
// the joint spatio-temporal cost for each letter, and s.letterDist[k]
// with the spatial distance at that index. Returns false when a letter
// has no key position in the layout.
//
// The window for letter k centers on the linear interpolation of k across
// the path and is tightened to the leading/trailing edge region for the
// first/last letter. The temporal term keeps a late letter from stealing
// an early path point even when its key happens to sit nearby.
func (s *Scorer) searchLetterIndices(sig *signal.SwipeSignal, letters []rune) bool {
	n := len(sig.Path)
	m := len(letters)
	lp := s.params.Letter

	half := lp.MinWindowRadius
	if slots := int(math.Round(lp.WindowSlackSlots * float64(n) / float64(m))); slots > half {
		half = slots
	}
	edge := lp.MinWindowRadius
	if e := int(math.Round(lp.EdgeWindowFraction * float64(n))); e > edge {
		edge = e
	}

	for k, ch := range letters {
		pos, ok := s.geom.Position(ch)
		if !ok {
			return false
		}
		sigma := sig.Sigma[ch]
		if sigma <= 0 {
			return false
		}

		expected := 0
		if m > 1 {
			expected = k * (n - 1) / (m - 1)
		}
		lo, hi := expected-half, expected+half
		switch {
		case m == 1:
			lo, hi = 0, n-1
		case k == 0:
			lo, hi = 0, edge
		case k == m-1:
			lo, hi = n-1-edge, n-1
		}
		if lo < 0 {
			lo = 0
		}
		if hi > n-1 {
			hi = n - 1
		}

		bestIdx, bestCost, bestDist := lo, math.MaxFloat64, math.MaxFloat64
		for i := lo; i <= hi; i++ {
			p := sig.Path[i]
			d := math.Hypot(p.X-pos.X, p.Y-pos.Y)
			temporal := lp.TemporalDeviationWeight * math.Abs(float64(i-expected)) / float64(half)
			cost := d/sigma + temporal
			if cost < bestCost {
				bestIdx, bestCost, bestDist = i, cost, d
			}
		}
		s.letterIdx[k] = bestIdx
		s.letterDist[k] = bestDist
	}
	return true
}

// scoreLetters converts matched distances into per-letter scores via a
// Gaussian kernel on the key's adaptive sigma, modulated by boundary
// sigma widening, velocity discount, curvature and dwell boosts, and the
// neighbor rescue. Fills s.letterScore.
func (s *Scorer) scoreLetters(sig *signal.SwipeSignal, letters []rune) {
	m := len(letters)
	lp := s.params.Letter

	for k, ch := range letters {
		idx := s.letterIdx[k]
		d := s.letterDist[k]
		sigma := sig.Sigma[ch]
		if k == 0 || k == m-1 {
			sigma *= lp.BoundarySigmaBoost
		}

		// A corner-compensated apex nearby may explain the letter better
		// than the raw path point.
		if v, ok := vertexNear(sig, idx, lp.VertexIndexSlack); ok && v.Class != signal.VertexShallow {
			if pos, posOK := s.geom.Position(ch); posOK {
				if cd := pos.Dist(v.Compensated); cd < d {
					d = cd
				}
			}
		}

		g := math.Exp(-(d * d) / (2 * sigma * sigma))

		inDwell := dwellAt(sig, idx)
		if !inDwell && sig.Path[idx].Velocity > lp.FastVelocityFactor*sig.MeanVelocity() {
			g *= 1 - lp.VelocityDiscount
		}
		if v, ok := vertexNear(sig, idx, lp.VertexIndexSlack); ok {
			g *= 1 + lp.CurvatureBoost*vertexClassFactor(v.Class)
		}
		if inDwell {
			g *= 1 + lp.DwellBoost
		}
		if g > 1 {
			g = 1
		}

		if g < lp.NeighborRescueThreshold {
			g = s.rescueLetter(sig, ch, idx, g)
		}

		s.letterScore[k] = g
	}
}

// rescueLetter re-scores a weak letter against its key neighborhood: if an
// adjacent key fits the matched path point better, the letter earns
// partial credit for a plausible off-by-one-key touch.
func (s *Scorer) rescueLetter(sig *signal.SwipeSignal, ch rune, idx int, g float64) float64 {
	lp := s.params.Letter
	p := sig.Path[idx]

	d := math.MaxFloat64
	if pos, ok := s.geom.Position(ch); ok {
		d = math.Hypot(p.X-pos.X, p.Y-pos.Y)
	}

	best := g
	for _, nb := range s.geom.Neighbors(ch).Keys {
		pos, ok := s.geom.Position(nb)
		if !ok {
			continue
		}
		nd := math.Hypot(p.X-pos.X, p.Y-pos.Y)
		if nd >= d {
			continue
		}
		sigma := sig.Sigma[nb]
		if sigma <= 0 {
			continue
		}
		rescued := lp.NeighborRescueCredit * math.Exp(-(nd*nd)/(2*sigma*sigma))
		if rescued > lp.NeighborRescueCap {
			rescued = lp.NeighborRescueCap
		}
		if rescued > best {
			best = rescued
		}
	}
	return best
}

func vertexNear(sig *signal.SwipeSignal, idx, slack int) (signal.Vertex, bool) {
	for _, v := range sig.Vertices {
		diff := v.Index - idx
		if diff < 0 {
			diff = -diff
		}
		if diff <= slack {
			return v, true
		}
	}
	return signal.Vertex{}, false
}

func vertexClassFactor(c signal.VertexClass) float64 {
	switch c {
	case signal.VertexSharp:
		return 1.25
	case signal.VertexCorner:
		return 1.0
	default:
		return 0.5
	}
}

func dwellAt(sig *signal.SwipeSignal, idx int) bool {
	for _, d := range sig.Dwells {
		if d.Contains(idx) {
			return true
		}
	}
	return false
}

// wordCentroid returns the mean key position of the word's letters.
func wordCentroid(geom *keymap.Geometry, letters []rune) (keymap.Point, bool) {
	var cx, cy float64
	count := 0
	for _, ch := range letters {
		pos, ok := geom.Position(ch)
		if !ok {
			return keymap.Point{}, false
		}
		cx += pos.X
		cy += pos.Y
		count++
	}
	if count == 0 {
		return keymap.Point{}, false
	}
	return keymap.Point{X: cx / float64(count), Y: cy / float64(count)}, true
}
