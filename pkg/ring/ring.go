// Package ring canonicalizes station cross-sections into fixed-width rings.
//
// A mid station's vertices are reduced to the half on the +x side of the
// symmetry plane, ordered top, sides by descending angle, bottom, fitted to
// ceil(slots/2) half slots, and mirrored across x = 0 into the remaining
// slots. Tip and tail stations broadcast their single vertex, moved onto
// x = 0, to every slot.
//
// The canonicalizer works in the mesh's own unit. Unit conversion belongs to
// the grid mapper, so the epsilons in [Options] are source-unit lengths.
package ring

import (
	"fmt"
	"math"
	"sort"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/matzehuels/obj2acf/pkg/errors"
	"github.com/matzehuels/obj2acf/pkg/topology"
)

// Default tolerances in meters. CenterEps and SnapEps correspond to 1e-4 ft
// and 1e-5 ft, the resolution of the destination format.
const (
	DefaultSplitEps  = 1e-5
	DefaultCenterEps = 3.048e-5
	DefaultSnapEps   = 3.048e-6

	DefaultMinHalf = 5
	DefaultMaxHalf = 9
)

// angleEps is the |x| below which a side point counts as lying on the plane
// when computing its sweep angle.
const angleEps = 1e-12

// Options holds the tolerances and half-ring bounds for canonicalization.
type Options struct {
	// SplitEps admits points with x >= -SplitEps into the half-ring.
	SplitEps float64
	// CenterEps marks points with |x| < CenterEps as centerline points.
	CenterEps float64
	// SnapEps snaps output components with |v| < SnapEps to exactly zero.
	SnapEps float64
	// MinHalf and MaxHalf bound the half-ring size of mid stations.
	// Both zero disables the check.
	MinHalf int
	MaxHalf int
}

// DefaultOptions returns the tolerances used for strict topology stationing.
func DefaultOptions() Options {
	return Options{
		SplitEps:  DefaultSplitEps,
		CenterEps: DefaultCenterEps,
		SnapEps:   DefaultSnapEps,
		MinHalf:   DefaultMinHalf,
		MaxHalf:   DefaultMaxHalf,
	}
}

// Lenient returns o without half-ring bounds, for slice stationing where
// chunk sizes are arbitrary.
func (o Options) Lenient() Options {
	o.MinHalf, o.MaxHalf = 0, 0
	return o
}

func (o Options) bounded() bool { return o.MinHalf != 0 || o.MaxHalf != 0 }

// Station is one canonical cross-section.
type Station struct {
	Index int
	Role  topology.Role
	// Half is the half-ring size before slot fitting. Zero for tip and tail.
	Half int
	// Ring holds exactly the requested number of slots.
	Ring []r3.Vec
}

func (s Station) String() string {
	return fmt.Sprintf("station %d (%s, %d slots)", s.Index, s.Role, len(s.Ring))
}

// Canonicalize builds the ring for one section of verts.
//
// Mid sections whose half-ring size falls outside the configured bounds fail
// with ErrCodeMalformedTopology.
func Canonicalize(verts []r3.Vec, sec topology.Section, index, slots int, opts Options) (Station, error) {
	if slots <= 0 {
		return Station{}, errors.New(errors.ErrCodeInvalidInput, "ring needs at least one slot, got %d", slots)
	}
	st := Station{Index: index, Role: sec.Role}

	switch sec.Role {
	case topology.RoleTip, topology.RoleTail:
		if len(sec.Vertices) != 1 {
			return Station{}, errors.New(errors.ErrCodeMalformedTopology,
				"%s station %d has %d vertices, expected 1", sec.Role, index, len(sec.Vertices))
		}
		p := snap(verts[sec.Vertices[0]], opts.SnapEps)
		p.X = 0
		st.Ring = make([]r3.Vec, slots)
		for j := range st.Ring {
			st.Ring[j] = p
		}
		return st, nil

	case topology.RoleMid:
		if len(sec.Vertices) == 0 {
			return Station{}, errors.New(errors.ErrCodeMalformedTopology, "mid station %d is empty", index)
		}
		layer := make([]r3.Vec, len(sec.Vertices))
		for i, v := range sec.Vertices {
			layer[i] = verts[v]
		}
		half := Half(layer, opts.SplitEps)
		st.Half = len(half)
		if opts.bounded() && (st.Half < opts.MinHalf || st.Half > opts.MaxHalf) {
			return Station{}, errors.New(errors.ErrCodeMalformedTopology,
				"station %d with %d vertices produced half-ring of %d, expected %d..%d",
				index, len(layer), st.Half, opts.MinHalf, opts.MaxHalf)
		}
		st.Ring = Mirror(Order(half, opts.CenterEps), slots, opts.SnapEps)
		return st, nil
	}

	return Station{}, errors.New(errors.ErrCodeInternal, "station %d has unknown role %v", index, sec.Role)
}

// CanonicalizeAll canonicalizes sections in order. The station index equals
// the section's position.
func CanonicalizeAll(verts []r3.Vec, secs []topology.Section, slots int, opts Options) ([]Station, error) {
	out := make([]Station, 0, len(secs))
	for i, sec := range secs {
		st, err := Canonicalize(verts, sec, i, slots, opts)
		if err != nil {
			return nil, err
		}
		out = append(out, st)
	}
	return out, nil
}

// MaxHalf returns the largest half-ring size among mid stations and whether
// any mid station exists.
func MaxHalf(stations []Station) (int, bool) {
	n, ok := 0, false
	for _, s := range stations {
		if s.Role == topology.RoleMid {
			n, ok = max(n, s.Half), true
		}
	}
	return n, ok
}

// Half returns the points with x >= -eps, in input order. A layer with no
// such point is returned whole.
func Half(layer []r3.Vec, eps float64) []r3.Vec {
	var half []r3.Vec
	for _, p := range layer {
		if p.X >= -eps {
			half = append(half, p)
		}
	}
	if len(half) == 0 {
		return append([]r3.Vec(nil), layer...)
	}
	return half
}

// Order arranges a half-ring canonically.
//
// With at least two centerline points (|x| < centerEps) the result is the
// highest centerline point, the remaining points by descending angle, then
// the lowest centerline point. Ties pick the earliest point. Otherwise, or
// when top and bottom coincide, every point is sorted by descending angle.
func Order(half []r3.Vec, centerEps float64) []r3.Vec {
	var center []int
	for i, p := range half {
		if math.Abs(p.X) < centerEps {
			center = append(center, i)
		}
	}

	if len(center) >= 2 {
		top, bot := center[0], center[0]
		for _, i := range center[1:] {
			if half[i].Y > half[top].Y {
				top = i
			}
			if half[i].Y < half[bot].Y {
				bot = i
			}
		}
		if top != bot {
			sides := make([]r3.Vec, 0, len(half)-2)
			for i, p := range half {
				if i != top && i != bot {
					sides = append(sides, p)
				}
			}
			sortByAngle(sides)
			out := make([]r3.Vec, 0, len(half))
			out = append(out, half[top])
			out = append(out, sides...)
			return append(out, half[bot])
		}
	}

	out := append([]r3.Vec(nil), half...)
	sortByAngle(out)
	return out
}

// Mirror fits an ordered half-ring into ceil(slots/2) half slots, repeating
// the last point or dropping extras, and fills the remaining slots with the
// half slots reflected across x = 0. Components are snapped to zero below eps.
func Mirror(ordered []r3.Vec, slots int, eps float64) []r3.Vec {
	ring := make([]r3.Vec, slots)
	if len(ordered) == 0 {
		return ring
	}
	half := (slots + 1) / 2
	for k := 0; k < half; k++ {
		ring[k] = snap(ordered[min(k, len(ordered)-1)], eps)
	}
	for k := 0; half+k < slots; k++ {
		p := ring[k]
		ring[half+k] = snap(r3.Vec{X: -p.X, Y: p.Y, Z: p.Z}, eps)
	}
	return ring
}

// sortByAngle orders points by atan2(y, x) descending, stable.
func sortByAngle(pts []r3.Vec) {
	sort.SliceStable(pts, func(a, b int) bool { return angle(pts[a]) > angle(pts[b]) })
}

func angle(p r3.Vec) float64 {
	x := p.X
	if math.Abs(x) < angleEps {
		x = 0
	}
	return math.Atan2(p.Y, x)
}

func snap(p r3.Vec, eps float64) r3.Vec {
	return r3.Vec{X: snap1(p.X, eps), Y: snap1(p.Y, eps), Z: snap1(p.Z, eps)}
}

func snap1(v, eps float64) float64 {
	if math.Abs(v) < eps || v == 0 {
		return 0
	}
	return v
}
