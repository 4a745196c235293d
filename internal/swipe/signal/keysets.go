package signal

import (
	"math"

	"github.com/featherkey/swipekit/internal/swipe/keymap"
	"github.com/featherkey/swipekit/internal/swipe/touch"
)

// computeKeySets fills CharsInBounds, TraversedKeys, PassthroughKeys and
// OffRowKeys. Runs once per signal; scoring only reads the sets.
func (s *SwipeSignal) computeKeySets(geom *keymap.Geometry, params Params) {
	pad := params.BoundsPadFraction * geom.Pitch()
	for _, ch := range geom.KeysWithinRect(s.Bounds.MinX, s.Bounds.MinY, s.Bounds.MaxX, s.Bounds.MaxY, pad) {
		s.CharsInBounds[ch] = struct{}{}
	}

	for _, ch := range geom.Chars() {
		pos, ok := geom.Position(ch)
		if !ok {
			continue
		}
		idx, dist := closestApproach(s.Path, pos)
		if dist > params.TraversalSigmaFactor*s.Sigma[ch] {
			continue
		}
		s.TraversedKeys[ch] = struct{}{}
		if s.isPassthroughAt(idx, params) {
			s.PassthroughKeys[ch] = struct{}{}
		}
	}

	s.computeOffRowKeys(geom)
}

// isPassthroughAt classifies a closest-approach index as incidental
// crossing: high velocity, not inside any dwell, no vertex nearby.
func (s *SwipeSignal) isPassthroughAt(idx int, params Params) bool {
	if s.Path[idx].Velocity <= params.PassthroughVelocityFactor*s.meanVelocity {
		return false
	}
	for _, d := range s.Dwells {
		if d.Contains(idx) {
			return false
		}
	}
	for _, v := range s.Vertices {
		if absInt(v.Index-idx) <= params.PassthroughVertexSlack {
			return false
		}
	}
	return true
}

// computeOffRowKeys finds the dominant typing row by weighted vote
// (traversed keys count once, keys under dwell centers count extra) and
// marks traversed keys on other rows as elasticity candidates.
func (s *SwipeSignal) computeOffRowKeys(geom *keymap.Geometry) {
	if len(s.TraversedKeys) == 0 {
		return
	}

	weights := make(map[int]float64)
	for ch := range s.TraversedKeys {
		if row, ok := geom.Row(ch); ok {
			weights[row]++
		}
	}
	for _, d := range s.Dwells {
		p := s.Path[d.Center]
		ch, dist := geom.NearestKey(keymap.Point{X: p.X, Y: p.Y})
		if dist > s.Sigma[ch] {
			continue
		}
		if row, ok := geom.Row(ch); ok {
			weights[row] += 2
		}
	}

	dominant, best := 0, -1.0
	for row, w := range weights {
		if w > best || (w == best && row < dominant) {
			dominant, best = row, w
		}
	}

	for ch := range s.TraversedKeys {
		if row, ok := geom.Row(ch); ok && row != dominant {
			s.OffRowKeys[ch] = struct{}{}
		}
	}
}

// closestApproach returns the sample index nearest to pos, measuring
// against polyline segments so sparse sampling cannot miss a key sitting
// between two samples.
func closestApproach(points []touch.SwipePoint, pos keymap.Point) (int, float64) {
	if len(points) == 1 {
		return 0, math.Hypot(pos.X-points[0].X, pos.Y-points[0].Y)
	}
	bestIdx, best := 0, math.MaxFloat64
	for i := 0; i+1 < len(points); i++ {
		d, t := pointSegmentDist(pos, points[i], points[i+1])
		if d < best {
			best = d
			bestIdx = i
			if t > 0.5 {
				bestIdx = i + 1
			}
		}
	}
	return bestIdx, best
}

// pointSegmentDist returns the distance from p to segment ab and the
// parametric position t in [0,1] of the closest point.
func pointSegmentDist(p keymap.Point, a, b touch.SwipePoint) (float64, float64) {
	dx, dy := b.X-a.X, b.Y-a.Y
	l2 := dx*dx + dy*dy
	if l2 == 0 {
		return math.Hypot(p.X-a.X, p.Y-a.Y), 0
	}
	t := ((p.X-a.X)*dx + (p.Y-a.Y)*dy) / l2
	if t < 0 {
		t = 0
	} else if t > 1 {
		t = 1
	}
	cx, cy := a.X+t*dx, a.Y+t*dy
	return math.Hypot(p.X-cx, p.Y-cy), t
}
