package grid

import (
	"fmt"
	"math"
)

// Line is one geometry property: axis K of station I, slot J of a body.
type Line struct {
	Body    int
	I, J, K int
	Value   float64
}

// Path returns the property path without the leading "P ".
func (l Line) Path() string {
	return fmt.Sprintf("_body/%d/_geo_xyz/%d,%d,%d", l.Body, l.I, l.J, l.K)
}

func (l Line) String() string {
	return "P " + l.Path() + " " + FormatValue(l.Value)
}

// FormatValue prints v with nine decimals. Values that would print as
// "-0.000000000" print as "0.000000000".
func FormatValue(v float64) string {
	if math.Abs(v) < 5e-10 {
		v = 0
	}
	return fmt.Sprintf("%.9f", v)
}

// Lines serializes every value of g for the given body in emission order.
// The result always has Stations × Slots × 3 entries.
func (g *Grid) Lines(body int, em Emission) ([]Line, error) {
	is, js, err := em.resolve(g.Shape)
	if err != nil {
		return nil, err
	}
	out := make([]Line, 0, len(g.values))
	for _, i := range is {
		for _, j := range js {
			for k := 0; k < 3; k++ {
				out = append(out, Line{Body: body, I: i, J: j, K: k, Value: g.Value(i, j, k)})
			}
		}
	}
	return out, nil
}
