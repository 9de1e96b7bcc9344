package topology

import (
	"fmt"
	"sort"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/matzehuels/obj2acf/pkg/errors"
)

// Role tags a station by its position along the body.
type Role int

const (
	RoleTip Role = iota
	RoleMid
	RoleTail
)

func (r Role) String() string {
	switch r {
	case RoleTip:
		return "tip"
	case RoleMid:
		return "mid"
	case RoleTail:
		return "tail"
	default:
		return fmt.Sprintf("Role(%d)", int(r))
	}
}

// Section is one cross-section of a group before ring canonicalization:
// the vertex indices that belong to a single station.
type Section struct {
	Role Role
	// Distance is the BFS layer for topology stationing and the slice ordinal
	// for slice stationing.
	Distance int
	Vertices []int
}

// Strategy selects how vertices are assigned to stations.
type Strategy string

const (
	// StrategyTopology layers vertices by graph distance from the nose and
	// validates every layer strictly. This is the default.
	StrategyTopology Strategy = "topology"
	// StrategySlices sorts vertices along z and chunks them into fixed-size
	// loops. It ignores connectivity and never rejects a layer.
	StrategySlices Strategy = "slices"
)

// ParseStrategy maps a user-facing name to a Strategy. The empty string
// selects StrategyTopology.
func ParseStrategy(s string) (Strategy, error) {
	switch Strategy(s) {
	case "", StrategyTopology:
		return StrategyTopology, nil
	case StrategySlices:
		return StrategySlices, nil
	}
	return "", errors.New(errors.ErrCodeInvalidInput, "invalid strategy: %q (must be 'topology' or 'slices')", s)
}

// Limits bounds the vertex count of every interior topology layer.
type Limits struct {
	MinRing int
	MaxRing int
}

// DefaultLimits matches the ring densities the destination editor accepts:
// a full ring of 8 to 16 vertices, so a half-ring of 5 to 9 after the
// centerline points are shared.
func DefaultLimits() Limits {
	return Limits{MinRing: 8, MaxRing: 16}
}

// DefaultVertsPerLoop is the slice size of [StrategySlices].
const DefaultVertsPerLoop = 16

// Options configures [Stations].
type Options struct {
	Strategy     Strategy
	Limits       Limits
	VertsPerLoop int
}

// Stations assigns the vertices of a group to ordered stations
// (tip, mids..., tail) using the configured strategy.
func Stations(verts []r3.Vec, faces [][]int, opts Options) ([]Section, error) {
	switch opts.Strategy {
	case "", StrategyTopology:
		lim := opts.Limits
		if lim == (Limits{}) {
			lim = DefaultLimits()
		}
		secs, _, err := ByTopology(verts, faces, lim)
		return secs, err
	case StrategySlices:
		n := opts.VertsPerLoop
		if n == 0 {
			n = DefaultVertsPerLoop
		}
		return BySlices(verts, n)
	}
	return nil, errors.New(errors.ErrCodeInvalidInput, "unknown strategy %q", opts.Strategy)
}

// Nose returns the first vertex with the minimum z coordinate, or -1.
func Nose(verts []r3.Vec) int {
	best := -1
	for i, v := range verts {
		if best < 0 || v.Z < verts[best].Z {
			best = i
		}
	}
	return best
}

// Tail returns the first vertex with the maximum z coordinate, or -1.
func Tail(verts []r3.Vec) int {
	best := -1
	for i, v := range verts {
		if best < 0 || v.Z > verts[best].Z {
			best = i
		}
	}
	return best
}

// ByTopology stations a group by breadth-first distance from its nose.
//
// The nose is the topology root. Every other layer up to the tail's layer
// becomes one mid station, and the tail's layer must be a singleton. The
// layering is returned alongside the sections for diagnostics, also on
// failure when it could be computed.
//
// Failures are reported as ErrCodeMalformedTopology:
//   - the group is empty or has no extent along z
//   - some vertices are unreachable from the nose
//   - vertices lie in layers past the tail
//   - the tail layer holds more than one vertex
//   - an interior layer's size is outside lim
func ByTopology(verts []r3.Vec, faces [][]int, lim Limits) ([]Section, *Layering, error) {
	n := len(verts)
	switch n {
	case 0:
		return nil, nil, errors.New(errors.ErrCodeMalformedTopology, "group has no vertices")
	case 1:
		l := &Layering{Root: 0, Far: 0, Distance: []int{0}, Layers: [][]int{{0}}}
		return []Section{{Role: RoleTip, Vertices: []int{0}}}, l, nil
	}

	g, err := NewGraph(n, faces)
	if err != nil {
		return nil, nil, err
	}

	nose, tail := Nose(verts), Tail(verts)
	if nose == tail {
		return nil, nil, errors.New(errors.ErrCodeMalformedTopology, "group of %d vertices has no extent along z", n)
	}

	l := g.Layers(nose)
	l.Far = tail
	if len(l.Unreached) > 0 {
		return nil, l, errors.New(errors.ErrCodeMalformedTopology,
			"%d of %d vertices are not connected to the nose vertex %d", len(l.Unreached), n, nose)
	}

	td := l.Distance[tail]
	if last := len(l.Layers) - 1; last > td {
		beyond := 0
		for _, layer := range l.Layers[td+1:] {
			beyond += len(layer)
		}
		return nil, l, errors.New(errors.ErrCodeMalformedTopology,
			"%d vertices lie beyond the tail layer %d", beyond, td)
	}
	if got := len(l.Layers[td]); got != 1 {
		return nil, l, errors.New(errors.ErrCodeMalformedTopology,
			"tail layer %d has %d vertices, expected 1", td, got)
	}

	secs := make([]Section, 0, td+1)
	secs = append(secs, Section{Role: RoleTip, Distance: 0, Vertices: []int{nose}})
	for d := 1; d < td; d++ {
		layer := l.Layers[d]
		if len(layer) < lim.MinRing || len(layer) > lim.MaxRing {
			return nil, l, errors.New(errors.ErrCodeMalformedTopology,
				"layer %d has %d vertices, expected %d..%d", d, len(layer), lim.MinRing, lim.MaxRing)
		}
		secs = append(secs, Section{Role: RoleMid, Distance: d, Vertices: append([]int(nil), layer...)})
	}
	secs = append(secs, Section{Role: RoleTail, Distance: td, Vertices: []int{tail}})
	return secs, l, nil
}

// BySlices stations a group without using connectivity. Vertices are sorted
// by z (ties by index); the first becomes the tip, the last the tail, and the
// interior is cut into consecutive chunks of perLoop vertices. The final
// chunk may be short.
func BySlices(verts []r3.Vec, perLoop int) ([]Section, error) {
	n := len(verts)
	if n == 0 {
		return nil, errors.New(errors.ErrCodeMalformedTopology, "group has no vertices")
	}
	if perLoop <= 0 {
		return nil, errors.New(errors.ErrCodeInvalidInput, "verts per loop must be positive, got %d", perLoop)
	}
	if n == 1 {
		return []Section{{Role: RoleTip, Vertices: []int{0}}}, nil
	}

	idx := make([]int, n)
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(a, b int) bool { return verts[idx[a]].Z < verts[idx[b]].Z })

	secs := []Section{{Role: RoleTip, Distance: 0, Vertices: []int{idx[0]}}}
	interior := idx[1 : n-1]
	for start := 0; start < len(interior); start += perLoop {
		end := min(start+perLoop, len(interior))
		secs = append(secs, Section{
			Role:     RoleMid,
			Distance: len(secs),
			Vertices: append([]int(nil), interior[start:end]...),
		})
	}
	secs = append(secs, Section{Role: RoleTail, Distance: len(secs), Vertices: []int{idx[n-1]}})
	return secs, nil
}
