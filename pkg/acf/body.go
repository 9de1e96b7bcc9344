package acf

import (
	"strconv"
	"strings"

	"github.com/matzehuels/obj2acf/pkg/errors"
	"github.com/matzehuels/obj2acf/pkg/grid"
)

// Dims returns the grid shape declared by body b's lock table
// ("_locked/i_count" and "_locked/j_count"). Missing or unreadable counts
// fall back to the default 20×18.
func (d *Document) Dims(b int) grid.Shape {
	shape := grid.DefaultShape()
	for _, l := range d.lines {
		if !owns(l, BodyPrefix(b)) {
			continue
		}
		p, ok := ParseProperty(l)
		if !ok {
			continue
		}
		n, err := strconv.Atoi(p.Value)
		if err != nil || n <= 0 {
			continue
		}
		switch p.Path.Key() {
		case "_locked/i_count":
			shape.Stations = n
		case "_locked/j_count":
			shape.Slots = n
		}
	}
	return shape
}

// Bodies returns the body indices with at least one parsable property line,
// in order of first appearance.
func (d *Document) Bodies() []int {
	seen := map[int]bool{}
	var out []int
	for _, l := range d.lines {
		if !strings.Contains(l, "_body/") {
			continue
		}
		p, ok := ParseProperty(l)
		if !ok {
			continue
		}
		if b, ok := p.Path.Body(); ok && !seen[b] {
			seen[b] = true
			out = append(out, b)
		}
	}
	return out
}

// Grid reads body b's geometry lines into a grid of the given shape. Line
// order does not matter. Addresses outside the shape are ignored; unset
// values stay zero. A geometry value that is not a number fails with
// ErrCodeInvalidFormat.
func (d *Document) Grid(b int, shape grid.Shape) (*grid.Grid, error) {
	if err := shape.Validate(); err != nil {
		return nil, err
	}
	g := grid.New(shape)
	prefix := BodyPrefix(b)
	for n, l := range d.lines {
		if !owns(l, prefix) {
			continue
		}
		p, ok := ParseProperty(l)
		if !ok {
			continue
		}
		i, j, k, ok := p.Path.Geo()
		if !ok || !g.Contains(i, j, k) {
			continue
		}
		v, err := strconv.ParseFloat(p.Value, 64)
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "line %d: geometry value %q", n+1, p.Value)
		}
		g.SetValue(i, j, k, v)
		g.Real = max(g.Real, i+1)
	}
	return g, nil
}
