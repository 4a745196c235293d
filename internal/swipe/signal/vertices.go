package signal

import (
	"math"
	"sort"

	"github.com/featherkey/swipekit/internal/swipe/keymap"
	"github.com/featherkey/swipekit/internal/swipe/touch"
)

// VertexClass bands a vertex by its turn sharpness.
type VertexClass int

const (
	VertexShallow VertexClass = iota
	VertexCorner
	VertexSharp
)

func (c VertexClass) String() string {
	switch c {
	case VertexCorner:
		return "corner"
	case VertexSharp:
		return "sharp"
	default:
		return "shallow"
	}
}

// Vertex is a direction-change point on the path. Vertices anchor the
// per-letter search windows during scoring: a letter matched at a vertex
// is stronger evidence than one matched mid-stroke.
type Vertex struct {
	// Index is the path index of the turn apex.
	Index int

	// TurnAngleDeg is the absolute heading change across the apex.
	TurnAngleDeg float64

	Class VertexClass

	// Compensated is the apex pushed outward along the turn bisector for
	// corner and sharp vertices. Fingers cut corners, so the intended key
	// sits outside the rounded apex. Shallow vertices keep the raw apex.
	Compensated keymap.Point
}

// detectVertices finds local maxima of the smoothed turn angle above the
// detection threshold, merges maxima closer than the minimum separation
// (sharper wins), classifies each by curvature band, and computes the
// corner-compensated apex.
func detectVertices(points []touch.SwipePoint, geom *keymap.Geometry, sigmas map[rune]float64, params Params) []Vertex {
	n := len(points)
	w := params.HeadingWindow
	if w < 1 {
		w = 1
	}
	if n < 2*w+1 {
		return nil
	}

	// Smoothed heading entering sample i: direction of the chord from
	// i-w to i. Zero-length chords stay invalid.
	headings := make([]float64, n)
	valid := make([]bool, n)
	for i := w; i < n; i++ {
		dx := points[i].X - points[i-w].X
		dy := points[i].Y - points[i-w].Y
		if math.Hypot(dx, dy) < 1e-9 {
			continue
		}
		headings[i] = math.Atan2(dy, dx)
		valid[i] = true
	}

	// Turn angle at i: heading change from entering to leaving.
	turns := make([]float64, n)
	for i := w; i+w < n; i++ {
		if !valid[i] || !valid[i+w] {
			continue
		}
		turns[i] = math.Abs(angleDiffDeg(headings[i+w], headings[i]))
	}

	type candidate struct {
		idx  int
		turn float64
	}
	var cands []candidate
	for i := w; i+w < n; i++ {
		if turns[i] < params.VertexTurnThresholdDeg {
			continue
		}
		if turns[i-1] > turns[i] || (i+1 < n && turns[i+1] > turns[i]) {
			continue
		}
		cands = append(cands, candidate{idx: i, turn: turns[i]})
	}

	// Greedy merge: sharpest first, drop anything inside its window.
	sort.Slice(cands, func(a, b int) bool {
		if cands[a].turn != cands[b].turn {
			return cands[a].turn > cands[b].turn
		}
		return cands[a].idx < cands[b].idx
	})
	var kept []candidate
	for _, c := range cands {
		clear := true
		for _, k := range kept {
			if absInt(c.idx-k.idx) < params.VertexMinSeparation {
				clear = false
				break
			}
		}
		if clear {
			kept = append(kept, c)
		}
	}
	sort.Slice(kept, func(a, b int) bool { return kept[a].idx < kept[b].idx })

	out := make([]Vertex, 0, len(kept))
	for _, k := range kept {
		v := Vertex{
			Index:        k.idx,
			TurnAngleDeg: k.turn,
			Class:        classifyTurn(k.turn, params),
		}
		v.Compensated = compensateApex(points, k.idx, v.Class, w, geom, sigmas, params)
		out = append(out, v)
	}
	return out
}

func classifyTurn(deg float64, params Params) VertexClass {
	switch {
	case deg >= params.SharpTurnThresholdDeg:
		return VertexSharp
	case deg >= params.CornerTurnThresholdDeg:
		return VertexCorner
	default:
		return VertexShallow
	}
}

// compensateApex pushes a corner/sharp apex outward along the bisector of
// the incoming-minus-outgoing directions, by a fraction of the nearest
// key's sigma. That is where the intended key center sits when the finger
// rounds the corner on the inside.
func compensateApex(points []touch.SwipePoint, idx int, class VertexClass, w int, geom *keymap.Geometry, sigmas map[rune]float64, params Params) keymap.Point {
	apex := keymap.Point{X: points[idx].X, Y: points[idx].Y}
	if class == VertexShallow {
		return apex
	}

	i0 := idx - w
	if i0 < 0 {
		i0 = 0
	}
	i1 := idx + w
	if i1 >= len(points) {
		i1 = len(points) - 1
	}
	ux, uy := unitVec(points[idx].X-points[i0].X, points[idx].Y-points[i0].Y)
	vx, vy := unitVec(points[i1].X-points[idx].X, points[i1].Y-points[idx].Y)
	ox, oy := unitVec(ux-vx, uy-vy)
	if ox == 0 && oy == 0 {
		return apex
	}

	nearest, _ := geom.NearestKey(apex)
	mag := params.CornerCompensationFraction * sigmas[nearest]
	return keymap.Point{X: apex.X + ox*mag, Y: apex.Y + oy*mag}
}

// angleDiffDeg returns the signed smallest difference a-b in degrees.
func angleDiffDeg(a, b float64) float64 {
	d := a - b
	for d > math.Pi {
		d -= 2 * math.Pi
	}
	for d < -math.Pi {
		d += 2 * math.Pi
	}
	return d * 180 / math.Pi
}

func unitVec(x, y float64) (float64, float64) {
	norm := math.Hypot(x, y)
	if norm < 1e-9 {
		return 0, 0
	}
	return x / norm, y / norm
}

func absInt(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
