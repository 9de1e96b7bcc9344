package grid

import (
	"fmt"

	"github.com/matzehuels/obj2acf/pkg/ring"
)

// Owned scalar keys, relative to the body prefix. Template substitution
// replaces exactly these.
const (
	KeyPartX   = "_part_x"
	KeyPartY   = "_part_y"
	KeyPartZ   = "_part_z"
	KeyPartRad = "_part_rad"
	KeyRDim    = "_r_dim"
	KeySDim    = "_s_dim"
	KeyDescrip = "_descrip"
)

// Body is a fully mapped destination body ready for serialization.
type Body struct {
	Index int
	// Name is written as the body description when non-empty.
	Name string
	Grid *Grid
	// PartX is the lateral x offset in destination units, the shift undone by
	// recentering.
	PartX float64
	// Radius is the clipping radius in destination units.
	Radius float64
	RDim   int
	SDim   int
}

// NewBody derives the body scalars from the canonical stations and their
// grid. offset is the x recentering shift in mesh units; scale is the unit
// conversion used to build g (zero means FeetPerMeter).
func NewBody(index int, name string, stations []ring.Station, g *Grid, offset, scale, margin float64) *Body {
	if scale == 0 {
		scale = FeetPerMeter
	}
	rdim := g.Shape.Slots
	if h, ok := ring.MaxHalf(stations); ok {
		rdim = min(2*h, g.Shape.Slots)
	}
	return &Body{
		Index:  index,
		Name:   name,
		Grid:   g,
		PartX:  snap(offset*scale, DefaultSnapEps),
		Radius: g.Radius(margin),
		RDim:   rdim,
		SDim:   min(len(stations), g.Shape.Stations),
	}
}

// Prefix is the property path prefix owned by the body.
func (b *Body) Prefix() string { return fmt.Sprintf("_body/%d/", b.Index) }

// Scalars returns the owned scalar values keyed relative to the prefix, as
// they are written into a template.
func (b *Body) Scalars() map[string]string {
	m := map[string]string{
		KeyPartX:   FormatValue(b.PartX),
		KeyPartY:   FormatValue(0),
		KeyPartZ:   FormatValue(0),
		KeyPartRad: FormatValue(b.Radius),
		KeyRDim:    fmt.Sprint(b.RDim),
		KeySDim:    fmt.Sprint(b.SDim),
	}
	if b.Name != "" {
		m[KeyDescrip] = b.Name
	}
	return m
}

// Block returns the complete set of property lines for the body in the
// layout the destination editor writes for imported bodies: texture bounds,
// description, attachment flags, geometry, lock table, dimensions, part
// scalars.
func (b *Body) Block(em Emission) ([]string, error) {
	lines, err := b.Grid.Lines(b.Index, em)
	if err != nil {
		return nil, err
	}
	p := "P " + b.Prefix()
	shape := b.Grid.Shape
	out := make([]string, 0, len(lines)+shape.Stations*shape.Slots+32)
	add := func(key, val string) { out = append(out, p+key+" "+val) }

	add("_bot_s1", FormatValue(0))
	add("_bot_s2", FormatValue(1))
	add("_bot_t1", FormatValue(0))
	add("_bot_t2", FormatValue(1))
	if b.Name != "" {
		add(KeyDescrip, b.Name)
	}
	add("_engn_for_body", "-1")
	add("_gear_for_body", "-1")

	for _, l := range lines {
		out = append(out, l.String())
	}

	for i := 0; i < shape.Stations; i++ {
		for j := 0; j < shape.Slots; j++ {
			add(fmt.Sprintf("_locked/%d,%d", i, j), "0")
		}
	}
	add("_locked/i_count", fmt.Sprint(shape.Stations))
	add("_locked/j_count", fmt.Sprint(shape.Slots))
	add(KeyRDim, fmt.Sprint(b.RDim))
	add(KeySDim, fmt.Sprint(b.SDim))

	add("_part_area_rule", FormatValue(1))
	add("_part_cd", "0.075000003")
	add("_part_phi", FormatValue(0))
	add("_part_psi", FormatValue(0))
	add(KeyPartRad, FormatValue(b.Radius))
	add("_part_specs_eq", "1")
	add("_part_specs_invis", "0")
	add("_part_specs_rmod", "1")
	add("_part_tex", "1")
	add("_part_the", FormatValue(0))
	add(KeyPartX, FormatValue(b.PartX))
	add(KeyPartY, FormatValue(0))
	add(KeyPartZ, FormatValue(0))

	add("_top_s1", FormatValue(0))
	add("_top_s2", FormatValue(1))
	add("_top_t1", FormatValue(0))
	add("_top_t2", FormatValue(1))
	return out, nil
}
