// Package mesh reads OBJ geometry and exposes it as named vertex groups.
//
// A [Group] always carries a group-local vertex array: only the vertices its
// faces reference, in ascending order of their file position, with faces
// remapped to local indices. Downstream stationing code can therefore index
// Vertices directly with any face index.
//
// Coordinates are kept in the source file's linear unit (meters for the
// exporters this tool targets). Groups are never mutated after parsing;
// [Group.RecenterX] returns a new group.
package mesh

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

// Group is a named set of faces over a local vertex array.
type Group struct {
	Name     string
	Vertices []r3.Vec
	Faces    [][]int
}

// Len returns the number of local vertices.
func (g *Group) Len() int { return len(g.Vertices) }

// Bounds returns the axis-aligned bounding box of the group.
// An empty group returns two zero vectors.
func (g *Group) Bounds() (lo, hi r3.Vec) {
	if len(g.Vertices) == 0 {
		return r3.Vec{}, r3.Vec{}
	}
	lo = r3.Vec{X: math.Inf(1), Y: math.Inf(1), Z: math.Inf(1)}
	hi = r3.Vec{X: math.Inf(-1), Y: math.Inf(-1), Z: math.Inf(-1)}
	for _, v := range g.Vertices {
		lo.X, hi.X = math.Min(lo.X, v.X), math.Max(hi.X, v.X)
		lo.Y, hi.Y = math.Min(lo.Y, v.Y), math.Max(hi.Y, v.Y)
		lo.Z, hi.Z = math.Min(lo.Z, v.Z), math.Max(hi.Z, v.Z)
	}
	return lo, hi
}

// SpanZ returns the extent of the group along the stationing axis.
func (g *Group) SpanZ() float64 {
	lo, hi := g.Bounds()
	return hi.Z - lo.Z
}

// CenterX returns the midpoint of the group's lateral extent.
func (g *Group) CenterX() float64 {
	lo, hi := g.Bounds()
	return (lo.X + hi.X) / 2
}

// RecenterX returns a copy of g shifted so its lateral extent is centered on
// x = 0, together with the offset that was removed. Faces are shared with g.
func (g *Group) RecenterX() (*Group, float64) {
	cx := g.CenterX()
	verts := make([]r3.Vec, len(g.Vertices))
	for i, v := range g.Vertices {
		verts[i] = r3.Vec{X: v.X - cx, Y: v.Y, Z: v.Z}
	}
	return &Group{Name: g.Name, Vertices: verts, Faces: g.Faces}, cx
}
