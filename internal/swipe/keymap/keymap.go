package keymap

import (
	"fmt"
	"math"
	"sort"
)

// Constants for geometry precomputation
const (
	// DefaultSigmaPitchFraction is the base tolerance radius as a fraction of
	// the key pitch. Roughly half a key of slack before the Gaussian kernel
	// starts punishing distance hard.
	DefaultSigmaPitchFraction = 0.52

	// DefaultDensityRadiusPitch is the radius (in pitch units) within which
	// neighboring keys are counted when estimating local key density.
	DefaultDensityRadiusPitch = 1.6

	// DefaultSigmaSparseBoost widens sigma for keys in sparse regions (layout
	// edges, detached blocks) where fingers drift further from centers.
	DefaultSigmaSparseBoost = 0.30

	// DefaultSigmaDenseShrink narrows sigma for keys in tightly packed
	// regions where a wide kernel would blur adjacent keys together.
	DefaultSigmaDenseShrink = 0.10

	// DefaultAdjacencyRadiusPitch bounds the neighborhood used for adjacency
	// rescue scoring: keys within this many pitches count as neighbors.
	DefaultAdjacencyRadiusPitch = 1.55
)

// Point is a position in screen-space pixels.
type Point struct {
	X, Y float64
}

// Dist returns the Euclidean distance to q.
func (p Point) Dist(q Point) float64 {
	dx := p.X - q.X
	dy := p.Y - q.Y
	return math.Sqrt(dx*dx + dy*dy)
}

// Key describes one character key on the soft keyboard.
type Key struct {
	Char   rune
	Center Point
	Width  float64
	Height float64
	Row    int
}

// Layout is the static description of a keyboard: character keys plus the
// overall board dimensions. Layouts come from the rendering layer; the
// recognizer only reads them.
type Layout struct {
	Name   string
	Width  float64
	Height float64
	Keys   []Key
}

// GeometryParams tunes the per-layout precomputation.
type GeometryParams struct {
	SigmaPitchFraction   float64
	DensityRadiusPitch   float64
	SigmaSparseBoost     float64
	SigmaDenseShrink     float64
	AdjacencyRadiusPitch float64
}

// DefaultGeometryParams returns the tuned defaults.
func DefaultGeometryParams() GeometryParams {
	return GeometryParams{
		SigmaPitchFraction:   DefaultSigmaPitchFraction,
		DensityRadiusPitch:   DefaultDensityRadiusPitch,
		SigmaSparseBoost:     DefaultSigmaSparseBoost,
		SigmaDenseShrink:     DefaultSigmaDenseShrink,
		AdjacencyRadiusPitch: DefaultAdjacencyRadiusPitch,
	}
}

// Neighborhood is the precomputed adjacency set for one key, nearest first.
// Used for rescue scoring when the path favors a key adjacent to the
// expected letter.
type Neighborhood struct {
	Keys      []rune
	Distances []float64
}

// Geometry is the immutable per-layout snapshot consumed by the signal
// builder and the scorer: key anchors, pitch, density-adaptive sigma per
// key, and adjacency neighborhoods.
type Geometry struct {
	layout    Layout
	params    GeometryParams
	keys      map[rune]Key
	order     []rune // deterministic iteration order (sorted by char)
	pitch     float64
	sigma     map[rune]float64
	neighbors map[rune]Neighborhood
}

// NewGeometry precomputes the geometry snapshot for a layout.
func NewGeometry(layout Layout, params GeometryParams) (*Geometry, error) {
	if len(layout.Keys) == 0 {
		return nil, fmt.Errorf("keymap: layout %q has no keys", layout.Name)
	}
	if layout.Width <= 0 || layout.Height <= 0 {
		return nil, fmt.Errorf("keymap: layout %q has non-positive dimensions %gx%g",
			layout.Name, layout.Width, layout.Height)
	}
	if params.SigmaPitchFraction <= 0 {
		params = DefaultGeometryParams()
	}

	g := &Geometry{
		layout:    layout,
		params:    params,
		keys:      make(map[rune]Key, len(layout.Keys)),
		sigma:     make(map[rune]float64, len(layout.Keys)),
		neighbors: make(map[rune]Neighborhood, len(layout.Keys)),
	}
	for _, k := range layout.Keys {
		if _, dup := g.keys[k.Char]; dup {
			return nil, fmt.Errorf("keymap: layout %q defines %q twice", layout.Name, k.Char)
		}
		g.keys[k.Char] = k
		g.order = append(g.order, k.Char)
	}
	sort.Slice(g.order, func(i, j int) bool { return g.order[i] < g.order[j] })

	g.pitch = estimatePitch(layout)
	g.computeSigma()
	g.computeNeighborhoods()
	return g, nil
}

// estimatePitch returns the median horizontal spacing between adjacent key
// centers within a row. Falls back to mean key width for degenerate layouts.
func estimatePitch(layout Layout) float64 {
	byRow := make(map[int][]Key)
	for _, k := range layout.Keys {
		byRow[k.Row] = append(byRow[k.Row], k)
	}

	var gaps []float64
	for _, row := range byRow {
		sort.Slice(row, func(i, j int) bool { return row[i].Center.X < row[j].Center.X })
		for i := 1; i < len(row); i++ {
			gaps = append(gaps, row[i].Center.X-row[i-1].Center.X)
		}
	}
	if len(gaps) > 0 {
		sort.Float64s(gaps)
		return gaps[len(gaps)/2]
	}

	var sum float64
	for _, k := range layout.Keys {
		sum += k.Width
	}
	if sum > 0 {
		return sum / float64(len(layout.Keys))
	}
	return layout.Width / 10
}

// computeSigma derives the density-adaptive tolerance radius per key: base
// sigma widened where keys are sparse and narrowed where they pack tight.
func (g *Geometry) computeSigma() {
	base := g.params.SigmaPitchFraction * g.pitch
	radius := g.params.DensityRadiusPitch * g.pitch

	density := make(map[rune]int, len(g.keys))
	maxDensity := 0
	for _, ch := range g.order {
		n := 0
		c := g.keys[ch].Center
		for _, other := range g.order {
			if other == ch {
				continue
			}
			if c.Dist(g.keys[other].Center) <= radius {
				n++
			}
		}
		density[ch] = n
		if n > maxDensity {
			maxDensity = n
		}
	}

	for _, ch := range g.order {
		scale := 1.0
		if maxDensity > 0 {
			t := float64(density[ch]) / float64(maxDensity)
			scale = 1 + g.params.SigmaSparseBoost*(1-t) - g.params.SigmaDenseShrink*t
		}
		g.sigma[ch] = base * scale
	}
}

// computeNeighborhoods precomputes the adjacency set per key, nearest first.
func (g *Geometry) computeNeighborhoods() {
	radius := g.params.AdjacencyRadiusPitch * g.pitch

	for _, ch := range g.order {
		c := g.keys[ch].Center
		type pair struct {
			ch rune
			d  float64
		}
		var near []pair
		for _, other := range g.order {
			if other == ch {
				continue
			}
			if d := c.Dist(g.keys[other].Center); d <= radius {
				near = append(near, pair{other, d})
			}
		}
		sort.Slice(near, func(i, j int) bool {
			if near[i].d != near[j].d {
				return near[i].d < near[j].d
			}
			return near[i].ch < near[j].ch
		})

		nb := Neighborhood{
			Keys:      make([]rune, len(near)),
			Distances: make([]float64, len(near)),
		}
		for i, p := range near {
			nb.Keys[i] = p.ch
			nb.Distances[i] = p.d
		}
		g.neighbors[ch] = nb
	}
}

// Pitch returns the estimated key pitch in pixels.
func (g *Geometry) Pitch() float64 { return g.pitch }

// KeyCount returns the number of character keys.
func (g *Geometry) KeyCount() int { return len(g.keys) }

// Chars returns all key characters in deterministic (sorted) order.
// The returned slice must not be modified.
func (g *Geometry) Chars() []rune { return g.order }

// Position returns the center anchor for a key.
func (g *Geometry) Position(ch rune) (Point, bool) {
	k, ok := g.keys[ch]
	return k.Center, ok
}

// Row returns the row index for a key.
func (g *Geometry) Row(ch rune) (int, bool) {
	k, ok := g.keys[ch]
	return k.Row, ok
}

// Sigma returns the density-adaptive tolerance radius for a key.
func (g *Geometry) Sigma(ch rune) (float64, bool) {
	s, ok := g.sigma[ch]
	return s, ok
}

// Neighbors returns the precomputed adjacency set for a key. The zero
// Neighborhood is returned for unknown keys.
func (g *Geometry) Neighbors(ch rune) Neighborhood {
	return g.neighbors[ch]
}

// NearestKey returns the key whose center is closest to p and the distance.
func (g *Geometry) NearestKey(p Point) (rune, float64) {
	best := rune(0)
	bestD := math.Inf(1)
	for _, ch := range g.order {
		if d := p.Dist(g.keys[ch].Center); d < bestD {
			best, bestD = ch, d
		}
	}
	return best, bestD
}

// TwoNearest returns the two keys closest to p with their distances.
// For single-key layouts the second key is 0 with +Inf distance.
func (g *Geometry) TwoNearest(p Point) (first, second rune, d1, d2 float64) {
	d1, d2 = math.Inf(1), math.Inf(1)
	for _, ch := range g.order {
		d := p.Dist(g.keys[ch].Center)
		switch {
		case d < d1:
			second, d2 = first, d1
			first, d1 = ch, d
		case d < d2:
			second, d2 = ch, d
		}
	}
	return first, second, d1, d2
}

// KeyDistances returns the distance from p to every key center.
func (g *Geometry) KeyDistances(p Point) map[rune]float64 {
	out := make(map[rune]float64, len(g.keys))
	for _, ch := range g.order {
		out[ch] = p.Dist(g.keys[ch].Center)
	}
	return out
}

// KeysWithinRect returns, in sorted order, the keys whose centers lie inside
// the rectangle [minX,maxX]x[minY,maxY] inflated by pad on every side.
func (g *Geometry) KeysWithinRect(minX, minY, maxX, maxY, pad float64) []rune {
	var out []rune
	for _, ch := range g.order {
		c := g.keys[ch].Center
		if c.X >= minX-pad && c.X <= maxX+pad && c.Y >= minY-pad && c.Y <= maxY+pad {
			out = append(out, ch)
		}
	}
	return out
}

// ExpectedPathLength returns the length of the ideal polyline through the
// word's key centers. ok is false when the layout is missing a letter.
// Repeated letters contribute no length, matching a gesture that lingers.
func (g *Geometry) ExpectedPathLength(word string) (float64, bool) {
	var total float64
	havePrev := false
	var prev Point
	for _, ch := range word {
		k, ok := g.keys[ch]
		if !ok {
			return 0, false
		}
		if havePrev {
			total += prev.Dist(k.Center)
		}
		prev = k.Center
		havePrev = true
	}
	return total, true
}
