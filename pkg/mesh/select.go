package mesh

import (
	"github.com/matzehuels/obj2acf/pkg/errors"
)

// PreferredGroup is chosen by [Select] when no explicit name is given.
const PreferredGroup = "fuselage"

// Classification thresholds. Wing panels are exported as flat quads and
// triangle fans; bodies need at least a nose, a ring and a tail.
const (
	MaxWingVertices = 8
	MinBodyVertices = 10
)

// Kind classifies a group by the part type it most likely represents.
type Kind int

const (
	KindUnknown Kind = iota
	KindWing
	KindBody
)

func (k Kind) String() string {
	switch k {
	case KindWing:
		return "wing"
	case KindBody:
		return "body"
	default:
		return "unknown"
	}
}

// Classify guesses whether g is a wing panel or a body from its vertex count.
// Groups without faces are always unknown.
func Classify(g *Group) Kind {
	switch n := g.Len(); {
	case len(g.Faces) == 0 || n == 0:
		return KindUnknown
	case n <= MaxWingVertices:
		return KindWing
	case n >= MinBodyVertices:
		return KindBody
	default:
		return KindUnknown
	}
}

// Select returns the group to convert.
//
// A non-empty name must match a group exactly. Otherwise the group named
// [PreferredGroup] wins, falling back to the group with the largest extent
// along the stationing axis (the first one on ties).
func Select(f *File, name string) (*Group, error) {
	if name != "" {
		if g, ok := f.Group(name); ok {
			return g, nil
		}
		return nil, errors.New(errors.ErrCodeNotFound, "group %q not found (have %v)", name, f.Names())
	}
	if g, ok := f.Group(PreferredGroup); ok {
		return g, nil
	}

	var best *Group
	bestSpan := -1.0
	for _, g := range f.Groups {
		if g.Len() == 0 {
			continue
		}
		if span := g.SpanZ(); span > bestSpan {
			best, bestSpan = g, span
		}
	}
	if best == nil {
		return nil, errors.New(errors.ErrCodeNotFound, "mesh has no groups with faces")
	}
	return best, nil
}
