// Package meshtest builds synthetic body meshes for tests.
package meshtest

import (
	"fmt"
	"math"
	"strings"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/matzehuels/obj2acf/pkg/mesh"
)

// Body returns a closed body of revolution along z: a nose vertex at z=0,
// rings of perRing vertices at z=1..rings and a tail vertex at z=rings+1.
//
// Ring points start at the top (+y) and sweep clockwise through +x, so the
// first half of every ring lies on the x >= 0 side. Vertex 0 is the nose,
// ring r point k is 1+r*perRing+k and the tail comes last.
func Body(name string, rings, perRing int, radius float64) *mesh.Group {
	g := &mesh.Group{Name: name}
	g.Vertices = append(g.Vertices, r3.Vec{})
	for r := 0; r < rings; r++ {
		for k := 0; k < perRing; k++ {
			theta := math.Pi/2 - 2*math.Pi*float64(k)/float64(perRing)
			g.Vertices = append(g.Vertices, r3.Vec{
				X: clean(radius * math.Cos(theta)),
				Y: clean(radius * math.Sin(theta)),
				Z: float64(r + 1),
			})
		}
	}
	tail := len(g.Vertices)
	g.Vertices = append(g.Vertices, r3.Vec{Z: float64(rings + 1)})

	at := func(r, k int) int { return 1 + r*perRing + k%perRing }
	for k := 0; k < perRing; k++ {
		g.Faces = append(g.Faces, []int{0, at(0, k), at(0, k+1)})
	}
	for r := 0; r+1 < rings; r++ {
		for k := 0; k < perRing; k++ {
			g.Faces = append(g.Faces, []int{at(r, k), at(r, k+1), at(r+1, k+1), at(r+1, k)})
		}
	}
	for k := 0; k < perRing; k++ {
		g.Faces = append(g.Faces, []int{at(rings-1, k+1), at(rings-1, k), tail})
	}
	return g
}

// clean removes the floating point residue of cos/sin at right angles.
func clean(v float64) float64 {
	if math.Abs(v) < 1e-12 {
		return 0
	}
	return v
}

// Translate returns a copy of g shifted by d.
func Translate(g *mesh.Group, d r3.Vec) *mesh.Group {
	out := &mesh.Group{Name: g.Name, Faces: g.Faces, Vertices: make([]r3.Vec, len(g.Vertices))}
	for i, v := range g.Vertices {
		out.Vertices[i] = r3.Add(v, d)
	}
	return out
}

// OBJ renders groups as OBJ text with file-global, 1-based face indices.
func OBJ(groups ...*mesh.Group) string {
	var b strings.Builder
	b.WriteString("# meshtest\n")
	base := 0
	for _, g := range groups {
		for _, v := range g.Vertices {
			fmt.Fprintf(&b, "v %g %g %g\n", v.X, v.Y, v.Z)
		}
		fmt.Fprintf(&b, "g %s\n", g.Name)
		for _, f := range g.Faces {
			b.WriteString("f")
			for _, i := range f {
				fmt.Fprintf(&b, " %d", base+i+1)
			}
			b.WriteString("\n")
		}
		base += len(g.Vertices)
	}
	return b.String()
}
