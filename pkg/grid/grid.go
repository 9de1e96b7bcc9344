// Package grid maps canonical stations onto the fixed station×slot grid of a
// destination body and serializes it as property lines.
//
// # Shape
//
// A [Grid] always has exactly [Shape.Stations] × [Shape.Slots] points,
// whatever the number of stations detected in the mesh. Missing stations are
// zero at the end of the grid; surplus stations are cut from the end.
//
// # Units
//
// Stations arrive in mesh units. [Build] applies [Options.Scale] (meters to
// feet by default) and snaps values within [Options.SnapEps] of zero, so the
// serializer never prints a signed zero.
//
// # Emission order
//
// Serialization order is injectable per axis via [Emission]. It only changes
// the text sequence: every line carries its full (station, slot, axis)
// address, so reading the lines back is order-independent.
package grid

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/matzehuels/obj2acf/pkg/errors"
	"github.com/matzehuels/obj2acf/pkg/ring"
	"github.com/matzehuels/obj2acf/pkg/topology"
)

// FeetPerMeter converts mesh meters to destination feet.
const FeetPerMeter = 3.28084

// Defaults for grid construction, in destination units.
const (
	DefaultStations = 20
	DefaultSlots    = 18
	DefaultSnapEps  = 1e-5
	DefaultMargin   = 1.0
)

// Shape is the target grid size.
type Shape struct {
	Stations int // target_i
	Slots    int // target_j
}

// DefaultShape is used when the destination file does not declare one.
func DefaultShape() Shape { return Shape{Stations: DefaultStations, Slots: DefaultSlots} }

// Validate checks that both dimensions are positive and sane.
func (s Shape) Validate() error { return errors.ValidateShape(s.Stations, s.Slots) }

func (s Shape) String() string { return fmt.Sprintf("%dx%d", s.Stations, s.Slots) }

// ParseShape parses "IxJ", for example "20x18".
func ParseShape(str string) (Shape, error) {
	a, b, ok := strings.Cut(strings.ToLower(strings.TrimSpace(str)), "x")
	if !ok {
		return Shape{}, errors.New(errors.ErrCodeInvalidInput, "invalid shape %q (want IxJ, e.g. 20x18)", str)
	}
	i, err1 := strconv.Atoi(a)
	j, err2 := strconv.Atoi(b)
	if err1 != nil || err2 != nil {
		return Shape{}, errors.New(errors.ErrCodeInvalidInput, "invalid shape %q (want IxJ, e.g. 20x18)", str)
	}
	s := Shape{Stations: i, Slots: j}
	return s, s.Validate()
}

// Options configures [Build].
type Options struct {
	// Scale multiplies every coordinate. Zero means FeetPerMeter.
	Scale float64
	// SnapEps snaps scaled values with |v| < SnapEps to zero.
	SnapEps float64
}

// DefaultOptions converts meters to feet.
func DefaultOptions() Options {
	return Options{Scale: FeetPerMeter, SnapEps: DefaultSnapEps}
}

// Grid is a station×slot array of points in destination units.
type Grid struct {
	Shape Shape
	// Real is the number of leading stations filled from the mesh.
	Real int

	values []float64
}

// New returns an all-zero grid.
func New(shape Shape) *Grid {
	return &Grid{Shape: shape, values: make([]float64, shape.Stations*shape.Slots*3)}
}

func (g *Grid) offset(i, j int) int { return (i*g.Shape.Slots + j) * 3 }

// At returns the point at station i, slot j.
func (g *Grid) At(i, j int) r3.Vec {
	o := g.offset(i, j)
	return r3.Vec{X: g.values[o], Y: g.values[o+1], Z: g.values[o+2]}
}

// Set stores p at station i, slot j.
func (g *Grid) Set(i, j int, p r3.Vec) {
	o := g.offset(i, j)
	g.values[o], g.values[o+1], g.values[o+2] = p.X, p.Y, p.Z
}

// Value returns axis k (0=x, 1=y, 2=z) at station i, slot j.
func (g *Grid) Value(i, j, k int) float64 { return g.values[g.offset(i, j)+k] }

// SetValue stores one axis value.
func (g *Grid) SetValue(i, j, k int, v float64) { g.values[g.offset(i, j)+k] = v }

// Contains reports whether (i, j, k) addresses a value in the grid.
func (g *Grid) Contains(i, j, k int) bool {
	return i >= 0 && i < g.Shape.Stations && j >= 0 && j < g.Shape.Slots && k >= 0 && k < 3
}

// Equal reports whether both grids have the same shape and values.
func (g *Grid) Equal(o *Grid) bool {
	if g.Shape != o.Shape || len(g.values) != len(o.values) {
		return false
	}
	for i, v := range g.values {
		if v != o.values[i] {
			return false
		}
	}
	return true
}

// Build places stations into a grid of the given shape.
//
// Tip and tail stations fill every slot with their single point. Mid rings
// fill slots in order and leave any slots past the ring's length zero.
// Stations beyond shape.Stations are dropped; missing ones stay zero.
func Build(stations []ring.Station, shape Shape, opts Options) (*Grid, error) {
	if err := shape.Validate(); err != nil {
		return nil, err
	}
	scale := opts.Scale
	if scale == 0 {
		scale = FeetPerMeter
	}
	conv := func(p r3.Vec) r3.Vec {
		return r3.Vec{
			X: snap(p.X*scale, opts.SnapEps),
			Y: snap(p.Y*scale, opts.SnapEps),
			Z: snap(p.Z*scale, opts.SnapEps),
		}
	}

	g := New(shape)
	g.Real = min(len(stations), shape.Stations)
	for i, st := range stations[:g.Real] {
		switch st.Role {
		case topology.RoleTip, topology.RoleTail:
			if len(st.Ring) == 0 {
				return nil, errors.New(errors.ErrCodeInternal, "%s station %d has no point", st.Role, i)
			}
			p := conv(st.Ring[0])
			for j := 0; j < shape.Slots; j++ {
				g.Set(i, j, p)
			}
		case topology.RoleMid:
			for j := 0; j < shape.Slots && j < len(st.Ring); j++ {
				g.Set(i, j, conv(st.Ring[j]))
			}
		default:
			return nil, errors.New(errors.ErrCodeInternal, "station %d has unknown role %v", i, st.Role)
		}
	}
	return g, nil
}

// Radius returns the largest |x| or |y| in the grid plus margin. The
// destination editor clips geometry outside this radius.
func (g *Grid) Radius(margin float64) float64 {
	m := 0.0
	for o := 0; o < len(g.values); o += 3 {
		m = math.Max(m, math.Max(math.Abs(g.values[o]), math.Abs(g.values[o+1])))
	}
	return m + margin
}

func snap(v, eps float64) float64 {
	if math.Abs(v) < eps || v == 0 {
		return 0
	}
	return v
}
